package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdullahpichoo/ai-video-editor/internal/ai"
	"github.com/abdullahpichoo/ai-video-editor/internal/api"
	"github.com/abdullahpichoo/ai-video-editor/internal/asset"
	"github.com/abdullahpichoo/ai-video-editor/internal/config"
	"github.com/abdullahpichoo/ai-video-editor/internal/db"
	"github.com/abdullahpichoo/ai-video-editor/internal/logging"
	"github.com/abdullahpichoo/ai-video-editor/internal/media"
	"github.com/abdullahpichoo/ai-video-editor/internal/project"
	"github.com/abdullahpichoo/ai-video-editor/internal/snapshot"
	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
	"github.com/abdullahpichoo/ai-video-editor/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.DataDir(), cfg.MediaDir(), cfg.RevisionsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting editor daemon",
		"version", config.Version, "data_dir", cfg.DataDir(), "media_dir", cfg.MediaDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	authToken, err := ensureAuthToken(database)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Printf("  editord %s\n", config.Version)
	fmt.Printf("  API URL:    http://127.0.0.1:%d\n", cfg.Port())
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Println()

	snapshots := snapshot.NewStore(cfg.RevisionsDir(), snapshot.DefaultCompressionLevel, logger)
	snapshots.SetRetention(cfg.RevisionsKept())

	manager := project.NewManager(
		timeline.NewRepository(database.Conn()), snapshots, cfg.AutosaveInterval(), logger)

	assets := asset.NewService(
		asset.NewRepository(database.Conn()), cfg.MediaDir(), manager.RemoveAssetClips, logger)

	doctor := media.NewDoctor(logger)
	if caps := doctor.Refresh(); caps.HasFFprobe {
		assets.UseProber(media.NewFFProbe("", logger))
		logger.Info("ffprobe found, server-side media probing enabled")
	} else {
		logger.Info("ffprobe not found, relying on client-supplied metadata")
	}

	mediaWatcher, err := watcher.New(cfg.MediaDir(), watcher.DefaultDebounce, func(ev watcher.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		switch ev.Type {
		case watcher.EventDelete, watcher.EventRename:
			err = assets.MarkMissingByPath(ctx, ev.Path)
		case watcher.EventCreate, watcher.EventModify:
			err = assets.MarkPresentByPath(ctx, ev.Path)
		}
		if err != nil {
			logger.Warn("failed to update asset presence", "path", ev.Path, "error", err)
		}
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create media watcher: %w", err)
	}
	if err := mediaWatcher.Start(); err != nil {
		return fmt.Errorf("failed to start media watcher: %w", err)
	}
	defer mediaWatcher.Close()

	var aiClient ai.Client
	if cfg.AIBaseURL() != "" {
		aiClient = ai.NewHTTPClient(cfg.AIBaseURL(), cfg.AIToken(), logger)
		logger.Info("AI service configured", "base_url", cfg.AIBaseURL())
	} else {
		aiClient = ai.NewStubClient(logger)
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Version:   config.Version,
		FrameRate: cfg.FrameRate(),
		Tokens:    database,
		Projects:  manager,
		Assets:    assets,
		Streamer:  media.NewStreamer(cfg.MediaDir(), logger),
		Doctor:    doctor,
		Snapshots: snapshots,
		AI:        aiClient,
		Logger:    logger,
		StartTime: startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	// Stops playback sessions and runs each project's final auto-save flush.
	manager.Close()

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(database *db.DB) (string, error) {
	ctx := context.Background()

	existing, err := database.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := database.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}

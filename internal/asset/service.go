package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdullahpichoo/ai-video-editor/internal/media"
	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

// Probe carries media metadata supplied with an upload. When the uploader
// sends nothing and ffprobe is available, the stored file is probed instead.
type Probe struct {
	Duration float64
	Width    int
	Height   int
}

func (p Probe) empty() bool {
	return p.Duration == 0 && p.Width == 0 && p.Height == 0
}

// Service stores uploaded files under a media root and keeps the catalog in
// sync. removed is invoked after an asset is deleted so the timeline can
// drop clips that reference it.
type Service struct {
	repo      Repository
	mediaRoot string
	removed   func(assetID string)
	prober    media.Prober
	logger    *slog.Logger
}

func NewService(repo Repository, mediaRoot string, removed func(assetID string), logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		mediaRoot: mediaRoot,
		removed:   removed,
		logger:    logger.With("component", "asset"),
	}
}

// UseProber enables server-side metadata extraction for uploads that arrive
// without a client probe.
func (s *Service) UseProber(p media.Prober) {
	s.prober = p
}

// Register validates an upload, writes it under the media root and creates
// the catalog record. size is the declared upload size; the stored bytes are
// bounded by it.
func (s *Service) Register(ctx context.Context, projectID, assetType, originalName, mimeType string, size int64, probe Probe, content io.Reader) (*Asset, error) {
	if err := ValidateUpload(assetType, originalName, size); err != nil {
		return nil, err
	}

	id := NewID()
	ext := strings.ToLower(extension(originalName))
	storagePath := path.Join(projectID, id+ext)

	written, err := s.writeFile(storagePath, content, size)
	if err != nil {
		return nil, err
	}

	if probe.empty() && s.prober != nil {
		if result, err := s.prober.Probe(ctx, s.fullPath(storagePath)); err != nil {
			s.logger.Warn("media probe failed", "path", storagePath, "error", err)
		} else {
			probe = Probe{Duration: result.Duration, Width: result.Width, Height: result.Height}
		}
	}

	a := &Asset{
		ID:           id,
		ProjectID:    projectID,
		Type:         assetType,
		OriginalName: originalName,
		StoragePath:  storagePath,
		MimeType:     mimeType,
		Size:         written,
		Duration:     probe.Duration,
		Width:        probe.Width,
		Height:       probe.Height,
		Present:      true,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		os.Remove(s.fullPath(storagePath))
		return nil, fmt.Errorf("failed to create asset record: %w", err)
	}

	s.logger.Info("asset registered",
		"asset_id", a.ID, "project_id", projectID, "type", assetType, "size", written)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Asset, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*Asset, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Delete removes the stored file and catalog record, then notifies the
// timeline so clips referencing the asset are removed as well.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrNotFound
	}

	if err := os.Remove(s.fullPath(a.StoragePath)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove asset file", "asset_id", id, "error", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.removed != nil {
		s.removed(id)
	}
	s.logger.Info("asset deleted", "asset_id", id, "project_id", a.ProjectID)
	return nil
}

// MarkMissingByPath flags the asset stored at storagePath as absent.
// Watcher remove events land here.
func (s *Service) MarkMissingByPath(ctx context.Context, storagePath string) error {
	return s.setPresentByPath(ctx, storagePath, false)
}

// MarkPresentByPath flags the asset stored at storagePath as present again.
func (s *Service) MarkPresentByPath(ctx context.Context, storagePath string) error {
	return s.setPresentByPath(ctx, storagePath, true)
}

func (s *Service) setPresentByPath(ctx context.Context, storagePath string, present bool) error {
	a, err := s.repo.GetByStoragePath(ctx, storagePath)
	if err != nil {
		return err
	}
	if a == nil {
		return nil
	}
	if a.Present == present {
		return nil
	}
	if err := s.repo.UpdatePresent(ctx, a.ID, present); err != nil {
		return err
	}
	s.logger.Info("asset presence changed", "asset_id", a.ID, "present", present)
	return nil
}

// Ref converts a catalog record into the reference the timeline engine
// consumes when placing a clip.
func Ref(a *Asset) timeline.AssetRef {
	return timeline.AssetRef{
		ID:       a.ID,
		Type:     timeline.TrackType(a.Type),
		Name:     a.OriginalName,
		Path:     a.StoragePath,
		Duration: a.Duration,
		Width:    a.Width,
		Height:   a.Height,
	}
}

func (s *Service) fullPath(storagePath string) string {
	return filepath.Join(s.mediaRoot, filepath.FromSlash(storagePath))
}

func (s *Service) writeFile(storagePath string, content io.Reader, size int64) (int64, error) {
	full := s.fullPath(storagePath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	// Bound the copy by the declared size plus one byte to detect liars.
	written, err := io.Copy(f, io.LimitReader(content, size+1))
	if err != nil {
		os.Remove(full)
		return 0, fmt.Errorf("failed to store media file: %w", err)
	}
	if written > size {
		os.Remove(full)
		return 0, fmt.Errorf("%w: upload larger than declared size", ErrTooLarge)
	}
	return written, nil
}

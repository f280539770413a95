package timeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultAutosaveInterval matches the editor's 30s background save cadence.
const DefaultAutosaveInterval = 30 * time.Second

// Capturer records a compressed revision of a saved timeline. Optional.
type Capturer interface {
	Capture(projectID string, tl *Timeline) (string, error)
}

// Autosaver periodically persists the store's timeline when it has changed
// since the last save. The in-memory state is never rolled back on a save
// failure; the next tick retries.
type Autosaver struct {
	store    *Store
	repo     Repository
	capturer Capturer
	interval time.Duration
	logger   *slog.Logger

	// mu serializes saves; Flush is called from request handlers while Run
	// ticks on its own goroutine.
	mu       sync.Mutex
	saved    bool
	savedGen uint64
}

func NewAutosaver(store *Store, repo Repository, capturer Capturer, interval time.Duration, logger *slog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{
		store:    store,
		repo:     repo,
		capturer: capturer,
		interval: interval,
		logger:   logger,
	}
}

// Run saves on a fixed interval until the context is cancelled, then flushes
// one final save so an edit made just before shutdown is not lost.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Flush(context.Background())
			return
		case <-ticker.C:
			a.saveIfDirty(ctx)
		}
	}
}

// Flush saves immediately if the timeline changed since the last save.
func (a *Autosaver) Flush(ctx context.Context) {
	a.saveIfDirty(ctx)
}

func (a *Autosaver) saveIfDirty(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Generation is read before the snapshot. A mutation landing between the
	// two is saved now but leaves savedGen behind it, so the next tick saves
	// again rather than missing the edit.
	gen := a.store.Generation()
	if a.saved && gen == a.savedGen {
		return
	}

	snapshot := a.store.Snapshot()
	if err := a.repo.Save(ctx, snapshot); err != nil {
		a.logger.Error("autosave: save failed", "project_id", snapshot.ProjectID, "error", err)
		return
	}
	a.saved = true
	a.savedGen = gen

	if a.capturer != nil {
		if rev, err := a.capturer.Capture(snapshot.ProjectID, snapshot); err != nil {
			a.logger.Warn("autosave: revision capture failed", "error", err)
		} else {
			a.logger.Debug("autosave: revision captured", "revision", rev)
		}
	}

	a.logger.Info("timeline autosaved", "project_id", snapshot.ProjectID, "duration", snapshot.Duration)
}

// Package project owns the lifecycle of open editing sessions. Each project
// bundles a timeline store, a playback session, and a background auto-saver;
// the manager creates them on first access and tears them down together.
package project

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abdullahpichoo/ai-video-editor/internal/playback"
	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

// Project is one open editing session.
type Project struct {
	ID      string
	Store   *timeline.Store
	Session *playback.Session

	autosaver *timeline.Autosaver
}

// Manager caches open projects and loads them from persistence on demand.
type Manager struct {
	mu       sync.Mutex
	projects map[string]*Project

	repo     timeline.Repository
	capturer timeline.Capturer
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewManager creates a manager. Auto-savers for opened projects run until
// Close is called; interval controls how often they check for changes.
func NewManager(repo timeline.Repository, capturer timeline.Capturer, interval time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		projects: make(map[string]*Project),
		repo:     repo,
		capturer: capturer,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Open returns the cached project or loads it from the repository. A project
// that has never been saved starts with a fresh default timeline, which is
// persisted immediately so the project exists after a restart.
func (m *Manager) Open(ctx context.Context, projectID string) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.projects[projectID]; ok {
		return p, nil
	}

	tl, err := m.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if tl == nil {
		tl = timeline.New(projectID)
		if err := m.repo.Save(ctx, tl); err != nil {
			return nil, err
		}
		m.logger.Info("created project", "project_id", projectID)
	}

	log := m.logger.With("project_id", projectID)
	store := timeline.NewStore(tl, log)
	p := &Project{
		ID:        projectID,
		Store:     store,
		Session:   playback.NewSession(store, log),
		autosaver: timeline.NewAutosaver(store, m.repo, m.capturer, m.interval, log),
	}
	m.projects[projectID] = p

	if !m.closed {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			p.autosaver.Run(m.ctx)
		}()
	}
	return p, nil
}

// Get returns an already-open project, or nil.
func (m *Manager) Get(projectID string) *Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[projectID]
}

// List returns all currently open projects in no particular order.
func (m *Manager) List() []*Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	projects := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	return projects
}

// RemoveAssetClips removes every clip referencing the asset from all open
// projects. Persistence happens through the normal auto-save path.
func (m *Manager) RemoveAssetClips(assetID string) {
	m.mu.Lock()
	projects := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	m.mu.Unlock()

	for _, p := range projects {
		p.Store.Apply(func(e *timeline.Engine) {
			e.RemoveClipsByAssetID(assetID)
		})
	}
}

// Flush saves every open project that has unsaved changes.
func (m *Manager) Flush(ctx context.Context) {
	m.mu.Lock()
	projects := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	m.mu.Unlock()

	for _, p := range projects {
		p.autosaver.Flush(ctx)
	}
}

// Close stops playback and auto-saving for all open projects. Each auto-saver
// performs a final flush before exiting, so no edits are lost on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	projects := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	m.mu.Unlock()

	for _, p := range projects {
		p.Session.Close()
	}
	m.cancel()
	m.wg.Wait()
}

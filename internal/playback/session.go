package playback

import (
	"log/slog"

	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

// Session is a preview session over one timeline store: a clock plus a sync
// controller. Every clock update reconciles the registered elements against
// a fresh snapshot, so timeline edits take effect on the next tick.
type Session struct {
	store      *timeline.Store
	clock      *Clock
	controller *Controller
	logger     *slog.Logger
}

// NewSession creates a stopped session for the given store.
func NewSession(store *timeline.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		store:      store,
		controller: NewController(logger),
		logger:     logger.With("component", "playback"),
	}
	s.clock = NewClock(store.Duration, s.sync, logger)
	return s
}

// Clock returns the session's playhead clock.
func (s *Session) Clock() *Clock { return s.clock }

// Controller returns the session's media sync controller.
func (s *Session) Controller() *Controller { return s.controller }

// Close stops playback and pauses every registered element.
func (s *Session) Close() {
	s.clock.Close()
	s.sync(s.clock.CurrentTime(), false)
}

func (s *Session) sync(t float64, playing bool) {
	s.controller.Sync(s.store.Snapshot(), t, playing)
}

package timeline

import (
	"log/slog"
	"sync"
)

// Store is the single-writer state container around an Engine. Mutations run
// one at a time under the lock and operate on the engine's owned tree;
// readers only ever receive deep-copied snapshots, so a snapshot taken by an
// auto-save timer or a render pass can never observe a half-applied edit.
type Store struct {
	mu         sync.Mutex
	engine     *Engine
	generation uint64
}

// NewStore wraps a timeline in a store. A nil timeline gets a fresh default.
func NewStore(tl *Timeline, logger *slog.Logger) *Store {
	return &Store{engine: NewEngine(tl, logger)}
}

// Apply runs one mutation against the engine. The callback must not retain
// the engine or any clip pointers past its return.
func (s *Store) Apply(mutate func(*Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(s.engine)
	s.generation++
}

// Snapshot returns an immutable deep copy of the current timeline.
func (s *Store) Snapshot() *Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Timeline().Clone()
}

// SelectedClip returns a copy of the selected clip, or nil.
func (s *Store) SelectedClip() *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	clip := s.engine.SelectedClip()
	if clip == nil {
		return nil
	}
	return clip.clone()
}

// Duration returns the current timeline duration.
func (s *Store) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Timeline().Duration
}

// Generation returns a counter incremented by every mutation. The auto-saver
// compares it against the last saved generation to skip clean saves.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Reset replaces the timeline, e.g. after loading from persistence or
// restoring a revision.
func (s *Store) Reset(tl *Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset(tl)
	s.generation++
}

// Package playback drives preview playback: a frame-driven clock advancing
// the playhead, and the synchronization logic that keeps registered media
// elements aligned with it.
package playback

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval approximates one display refresh. The clock advances
// by measured wall-clock delta, so a late tick never loses time.
const DefaultTickInterval = 16 * time.Millisecond

// Clock owns the authoritative playhead time for one timeline. While playing
// it advances on a frame ticker; on reaching the timeline duration it clamps
// and auto-pauses in the same tick. Scrubbing bypasses the ticker and sets
// the time directly.
type Clock struct {
	mu          sync.Mutex
	currentTime float64
	playing     bool
	stopCh      chan struct{}

	duration func() float64
	onTick   func(t float64, playing bool)
	interval time.Duration
	logger   *slog.Logger
}

// NewClock creates a stopped clock at t=0. duration is consulted on every
// advance so the clock follows timeline edits made during playback. onTick
// is invoked after every time change (tick, seek, auto-pause); it may be
// nil.
func NewClock(duration func() float64, onTick func(t float64, playing bool), logger *slog.Logger) *Clock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clock{
		duration: duration,
		onTick:   onTick,
		interval: DefaultTickInterval,
		logger:   logger,
	}
}

// Play transitions stopped -> playing. A no-op when already playing or when
// the playhead sits at the timeline end.
func (c *Clock) Play() {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return
	}
	if c.currentTime >= c.duration() {
		c.mu.Unlock()
		return
	}
	c.playing = true
	stopCh := make(chan struct{})
	c.stopCh = stopCh
	c.mu.Unlock()

	go c.run(stopCh)
}

// Pause transitions playing -> stopped. Idempotent.
func (c *Clock) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	close(c.stopCh)
	c.stopCh = nil
	t := c.currentTime
	c.mu.Unlock()

	c.notify(t, false)
}

// Seek sets the playhead directly, clamped to [0, duration]. Valid in either
// state and does not change the play state.
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	c.currentTime = clamp(t, 0, c.duration())
	current := c.currentTime
	playing := c.playing
	c.mu.Unlock()

	c.notify(current, playing)
}

// Scrub seeks and, when playback is running, pauses it: clicking the ruler
// to seek implies intent to stop.
func (c *Clock) Scrub(t float64) {
	c.Pause()
	c.Seek(t)
}

// CurrentTime returns the playhead position.
func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Playing reports whether the clock is advancing.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Close stops the update loop. The clock must not be reused afterwards.
func (c *Clock) Close() {
	c.Pause()
}

func (c *Clock) run(stopCh chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			if !c.advance(delta) {
				return
			}
		}
	}
}

// advance moves the playhead forward by delta seconds, clamping and
// auto-pausing when the timeline end is reached on the same update. It
// reports whether the clock is still playing.
func (c *Clock) advance(delta float64) bool {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return false
	}
	c.currentTime += delta
	end := c.duration()
	finished := c.currentTime >= end
	if finished {
		c.currentTime = end
		c.playing = false
		close(c.stopCh)
		c.stopCh = nil
	}
	t := c.currentTime
	playing := c.playing
	c.mu.Unlock()

	c.notify(t, playing)
	if finished {
		c.logger.Debug("playback reached timeline end", "time", t)
	}
	return !finished
}

func (c *Clock) notify(t float64, playing bool) {
	if c.onTick != nil {
		c.onTick(t, playing)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

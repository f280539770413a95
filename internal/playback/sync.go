package playback

import (
	"log/slog"
	"sync"

	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

// DriftTolerance is the maximum divergence, in seconds, between an element's
// position and the clip-local target before a corrective seek during
// playback. Seeking on every frame causes audible stutter.
const DriftTolerance = 0.5

// MediaElement is the capability surface a playable element exposes to the
// sync controller. Implementations wrap whatever actually renders the media.
type MediaElement interface {
	Play()
	Pause()
	Seek(t float64)
	Position() float64
	Playing() bool
}

// Controller keeps registered media elements aligned with the playhead.
// Elements register under the clip ID they render; clips without a
// registered element are ignored.
type Controller struct {
	mu       sync.Mutex
	elements map[string]MediaElement
	logger   *slog.Logger
}

// NewController creates an empty controller.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		elements: make(map[string]MediaElement),
		logger:   logger,
	}
}

// Register binds an element to a clip ID, replacing any previous binding.
func (c *Controller) Register(clipID string, el MediaElement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elements[clipID] = el
}

// Unregister removes the binding for a clip ID.
func (c *Controller) Unregister(clipID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.elements, clipID)
}

// Sync reconciles every registered element against the playhead.
//
// For an element whose clip is active at currentTime, the clip-local target
// is currentTime - clip.startTime + clip.trimStart. The element is sought to
// that target only when playback is paused or the element has drifted beyond
// DriftTolerance. The element plays iff playback is running and its clip is
// active; play and pause are issued only on state change.
func (c *Controller) Sync(tl *timeline.Timeline, currentTime float64, isPlaying bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for clipID, el := range c.elements {
		_, clip := tl.FindClip(clipID)
		if clip == nil {
			continue
		}
		active := clip.ActiveAt(currentTime)

		if active {
			target := clip.LocalMediaTime(currentTime)
			if !isPlaying || drift(el.Position(), target) > DriftTolerance {
				el.Seek(target)
			}
		}

		if isPlaying && active {
			if !el.Playing() {
				el.Play()
			}
		} else if el.Playing() {
			el.Pause()
		}
	}
}

func drift(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

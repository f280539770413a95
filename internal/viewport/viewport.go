// Package viewport converts between timeline seconds and ruler percentages
// for a zoomable, scrollable timeline view. The functions are pure; the
// Mapper just carries the current zoom and scroll state.
package viewport

import "fmt"

const (
	// BaseVisibleDuration is the window shown at zoom 1.
	BaseVisibleDuration = 10.0

	MinZoom = 0.5
	MaxZoom = 5.0

	// Off-screen sentinel percentages. Consumers position off-screen
	// elements safely outside the ruler instead of clamping to its edges.
	OffscreenLeft  = -10.0
	OffscreenRight = 110.0
)

// Mapper maps timeline time to viewport percent for one view's zoom/scroll
// state. The zero value is a valid 1x view anchored at t=0; prefer NewMapper.
type Mapper struct {
	Zoom    float64
	ScrollX float64
}

func NewMapper() Mapper {
	return Mapper{Zoom: 1}
}

// VisibleDuration returns the seconds currently covered by the viewport.
func (m Mapper) VisibleDuration() float64 {
	zoom := m.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return BaseVisibleDuration / zoom
}

// TimeToPercent converts a timeline instant to a viewport percent. Times
// outside the visible window return the off-screen sentinels.
func (m Mapper) TimeToPercent(t float64) float64 {
	visible := m.VisibleDuration()
	start := m.ScrollX
	end := start + visible

	if t < start {
		return OffscreenLeft
	}
	if t > end {
		return OffscreenRight
	}
	return (t - start) / visible * 100
}

// PercentToTime converts a viewport percent back to a timeline instant.
func (m Mapper) PercentToTime(percent float64) float64 {
	return m.ScrollX + percent/100*m.VisibleDuration()
}

// ZoomBy multiplies the zoom factor, clamped to [MinZoom, MaxZoom].
func (m Mapper) ZoomBy(factor float64) Mapper {
	zoom := m.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	zoom *= factor
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	m.Zoom = zoom
	return m
}

// ScrollBy shifts the window by delta seconds, clamped so the viewport never
// scrolls past the start or beyond the timeline duration.
func (m Mapper) ScrollBy(delta, timelineDuration float64) Mapper {
	maxScroll := timelineDuration - m.VisibleDuration()
	if maxScroll < 0 {
		maxScroll = 0
	}
	scroll := m.ScrollX + delta
	if scroll < 0 {
		scroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}
	m.ScrollX = scroll
	return m
}

// FormatTime renders seconds as mm:ss.cc for the ruler and the playhead
// readout.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	centis := int((seconds - float64(int(seconds))) * 100)
	return fmt.Sprintf("%02d:%02d.%02d", mins, secs, centis)
}

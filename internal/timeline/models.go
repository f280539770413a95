// Package timeline implements the non-destructive timeline editing model:
// tracks, clips, their invariants, and the mutation operations that preserve
// them. Trim state is kept as offsets from a clip's original bounds so that a
// trimmed clip can always be expanded back toward the content it was created
// with.
package timeline

import (
	"time"

	"github.com/google/uuid"
)

// TrackType is the semantic type of a track. The set is closed; tracks are
// provisioned when a timeline is created and never change type.
type TrackType string

const (
	TrackVideo TrackType = "video"
	TrackAudio TrackType = "audio"
	TrackImage TrackType = "image"
	TrackText  TrackType = "text"
)

const (
	// DefaultDuration is the duration of a freshly initialized timeline.
	DefaultDuration = 10.0

	// MinClipDuration is the smallest visible window a trim may produce.
	// Requests below it are rejected as no-ops.
	MinClipDuration = 0.1

	// DefaultImageDuration is the placement duration for image clips, which
	// have no intrinsic duration of their own.
	DefaultImageDuration = 2.0

	// DefaultTextDuration is the placement duration for text clips.
	DefaultTextDuration = 3.0

	// CanvasWidth and CanvasHeight define the reference canvas all default
	// transforms are computed against.
	CanvasWidth  = 640.0
	CanvasHeight = 360.0
)

// Transform places a clip on the preview canvas.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
}

// SubtitleStyle describes how a text or subtitle clip is rendered.
type SubtitleStyle struct {
	FontSize        int    `json:"font_size"`
	FontFamily      string `json:"font_family"`
	Color           string `json:"color"`
	BackgroundColor string `json:"background_color,omitempty"`
	Position        string `json:"position"`  // top, center, bottom
	Alignment       string `json:"alignment"` // left, center, right
	Outline         bool   `json:"outline"`
	Shadow          bool   `json:"shadow"`
}

// DefaultSubtitleStyle returns the style applied to subtitle clips when the
// caller provides none.
func DefaultSubtitleStyle() SubtitleStyle {
	return SubtitleStyle{
		FontSize:        24,
		FontFamily:      "Arial",
		Color:           "#ffffff",
		BackgroundColor: "rgba(0,0,0,0.7)",
		Position:        "bottom",
		Alignment:       "center",
		Outline:         true,
		Shadow:          false,
	}
}

// Clip is a time-bounded placement of media or text content on a track.
//
// StartTime and Duration position the clip on the timeline clock.
// OriginalStartTime and OriginalEndTime are the clip's maximal bounds before
// any trim was applied. TrimStart and TrimEnd are offsets from those bounds:
//
//	visible window = [OriginalStartTime + TrimStart, OriginalEndTime - TrimEnd]
//
// which always equals [StartTime, StartTime + Duration].
type Clip struct {
	ID      string    `json:"id"`
	TrackID string    `json:"track_id"`
	AssetID string    `json:"asset_id,omitempty"`
	Type    TrackType `json:"type"`

	StartTime float64 `json:"start_time"`
	Duration  float64 `json:"duration"`

	OriginalStartTime float64 `json:"original_start_time"`
	OriginalEndTime   float64 `json:"original_end_time"`

	TrimStart float64 `json:"trim_start"`
	TrimEnd   float64 `json:"trim_end"`

	Name        string `json:"name"`
	AssetPath   string `json:"asset_path,omitempty"`
	AssetWidth  int    `json:"asset_width,omitempty"`
	AssetHeight int    `json:"asset_height,omitempty"`

	Transform *Transform     `json:"transform,omitempty"`
	Text      string         `json:"text,omitempty"`
	Style     *SubtitleStyle `json:"style,omitempty"`

	Volume   float64 `json:"volume"`
	Locked   bool    `json:"locked"`
	Selected bool    `json:"selected"`
}

// EndTime returns the clip's end on the timeline clock.
func (c *Clip) EndTime() float64 {
	return c.StartTime + c.Duration
}

// OriginalMediaDuration returns the clip's maximal extent before trimming.
func (c *Clip) OriginalMediaDuration() float64 {
	return c.OriginalEndTime - c.OriginalStartTime
}

// ActiveAt reports whether the clip covers time t. The interval is half-open:
// the end instant belongs to the next clip, if any.
func (c *Clip) ActiveAt(t float64) bool {
	return t >= c.StartTime && t < c.StartTime+c.Duration
}

// LocalMediaTime maps a timeline instant into the clip's own asset clock.
func (c *Clip) LocalMediaTime(t float64) float64 {
	return t - c.StartTime + c.TrimStart
}

func (c *Clip) clone() *Clip {
	dup := *c
	if c.Transform != nil {
		tr := *c.Transform
		dup.Transform = &tr
	}
	if c.Style != nil {
		st := *c.Style
		dup.Style = &st
	}
	return &dup
}

// Track is a lane holding clips of one semantic type. Clip order in the slice
// is not meaningful; placement is governed by StartTime.
type Track struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       TrackType `json:"type"`
	Clips      []*Clip   `json:"clips"`
	LayerIndex int       `json:"layer_index"`
	Visible    bool      `json:"visible"`
	Muted      bool      `json:"muted"`
	Volume     float64   `json:"volume"`
	Locked     bool      `json:"locked"`
}

func (t *Track) clone() *Track {
	dup := *t
	dup.Clips = make([]*Clip, len(t.Clips))
	for i, c := range t.Clips {
		dup.Clips[i] = c.clone()
	}
	return &dup
}

// Timeline is the whole editing graph for one project.
type Timeline struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Duration  float64   `json:"duration"`
	Tracks    []*Track  `json:"tracks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Mutation always happens on the engine's owned
// tree; every reader gets a clone, so published snapshots are immutable.
func (tl *Timeline) Clone() *Timeline {
	dup := *tl
	dup.Tracks = make([]*Track, len(tl.Tracks))
	for i, tr := range tl.Tracks {
		dup.Tracks[i] = tr.clone()
	}
	return &dup
}

// FindClip returns the clip with the given id and its track, or nils. Track
// and clip counts are small, so the linear scan is fine.
func (tl *Timeline) FindClip(clipID string) (*Track, *Clip) {
	for _, track := range tl.Tracks {
		for _, clip := range track.Clips {
			if clip.ID == clipID {
				return track, clip
			}
		}
	}
	return nil, nil
}

// TrackByType returns the first track of the given type, or nil.
func (tl *Timeline) TrackByType(tt TrackType) *Track {
	for _, track := range tl.Tracks {
		if track.Type == tt {
			return track
		}
	}
	return nil
}

// extend grows the timeline duration to cover end, never shrinking it.
func (tl *Timeline) extend(end float64) {
	if end > tl.Duration {
		tl.Duration = end
	}
}

// normalize repairs a timeline that arrived from outside the engine, such as
// a client PUT or an old revision: the duration must cover the furthest clip
// end, and a non-positive duration falls back to the default.
func (tl *Timeline) normalize() {
	if tl.Duration <= 0 {
		tl.Duration = DefaultDuration
	}
	for _, track := range tl.Tracks {
		for _, clip := range track.Clips {
			tl.extend(clip.EndTime())
		}
	}
}

// New returns a fresh timeline for a project: four fixed tracks in stacking
// order (text, image, video, audio) and the default duration.
func New(projectID string) *Timeline {
	return &Timeline{
		ID:        NewID(),
		ProjectID: projectID,
		Duration:  DefaultDuration,
		Tracks: []*Track{
			newTrack(TrackText, "Text Track 1", 0),
			newTrack(TrackImage, "Image Track 1", 1),
			newTrack(TrackVideo, "Video Track 1", 2),
			newTrack(TrackAudio, "Audio Track 1", 3),
		},
		UpdatedAt: time.Now(),
	}
}

func newTrack(tt TrackType, name string, layer int) *Track {
	return &Track{
		ID:         NewID(),
		Name:       name,
		Type:       tt,
		Clips:      []*Clip{},
		LayerIndex: layer,
		Visible:    true,
		Volume:     1,
	}
}

// NewID returns a new unique identifier for timeline entities.
func NewID() string {
	return uuid.NewString()
}

package timeline

import (
	"log/slog"
	"sort"
	"strings"
)

// AssetRef is the read-only view of an uploaded asset the engine consumes.
// The engine never mutates asset state.
type AssetRef struct {
	ID       string
	Type     TrackType
	Name     string
	Path     string
	Duration float64
	Width    int
	Height   int
}

// Engine applies structural edits to a timeline. Every operation is an
// atomic, invariant-preserving transformation. Operations are driven by
// interactive gestures, so degenerate input is clamped or ignored with a
// warning rather than surfaced as an error.
//
// Engine is not safe for concurrent use; Store serializes access to it.
type Engine struct {
	tl         *Timeline
	selectedID string
	logger     *slog.Logger
}

// NewEngine wraps an existing timeline. A nil timeline gets a fresh default.
func NewEngine(tl *Timeline, logger *slog.Logger) *Engine {
	if tl == nil {
		tl = New("")
	}
	tl.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{tl: tl, logger: logger}
}

// Timeline returns the engine's owned tree. Callers outside the store must
// use snapshots instead.
func (e *Engine) Timeline() *Timeline {
	return e.tl
}

// Reset replaces the engine's timeline and clears selection.
func (e *Engine) Reset(tl *Timeline) {
	if tl == nil {
		tl = New("")
	}
	tl.normalize()
	e.tl = tl
	e.selectedID = ""
}

// SelectedClip returns the currently selected clip, or nil.
func (e *Engine) SelectedClip() *Clip {
	if e.selectedID == "" {
		return nil
	}
	_, clip := e.tl.FindClip(e.selectedID)
	return clip
}

// AddClip places a new clip for the asset at the end of the matching track.
// Audio and video clips take the asset's duration; images get a fixed
// default. A freshly added clip has no trim history: its original bounds
// equal its placement bounds.
func (e *Engine) AddClip(asset AssetRef) *Clip {
	track := e.tl.TrackByType(asset.Type)
	if track == nil {
		e.logger.Warn("no track for asset type", "type", asset.Type, "asset_id", asset.ID)
		return nil
	}

	duration := DefaultImageDuration
	if asset.Type == TrackAudio || asset.Type == TrackVideo {
		duration = asset.Duration
	}

	start := 0.0
	if n := len(track.Clips); n > 0 {
		last := track.Clips[n-1]
		start = last.EndTime()
	}
	end := start + duration

	clip := &Clip{
		ID:                NewID(),
		TrackID:           track.ID,
		AssetID:           asset.ID,
		Type:              asset.Type,
		StartTime:         start,
		Duration:          duration,
		OriginalStartTime: start,
		OriginalEndTime:   end,
		Name:              asset.Name,
		AssetPath:         asset.Path,
		AssetWidth:        asset.Width,
		AssetHeight:       asset.Height,
		Transform:         defaultTransform(asset.Width, asset.Height),
		Volume:            1,
	}

	track.Clips = append(track.Clips, clip)
	e.tl.extend(end)
	e.setSelected(clip)

	e.logger.Info("clip added", "clip_id", clip.ID, "track", track.Name, "duration", duration)
	return clip
}

// AddTextClip places a text clip at the playhead on the text track. Text
// clips may freely overlap, so no append-after-last rule applies.
func (e *Engine) AddTextClip(text string, style *SubtitleStyle, duration, playhead float64) *Clip {
	track := e.tl.TrackByType(TrackText)
	if track == nil {
		e.logger.Warn("no text track found")
		return nil
	}
	if duration <= 0 {
		duration = DefaultTextDuration
	}
	if style == nil {
		s := DefaultSubtitleStyle()
		style = &s
	}

	clip := &Clip{
		ID:                NewID(),
		TrackID:           track.ID,
		Type:              TrackText,
		StartTime:         playhead,
		Duration:          duration,
		OriginalStartTime: playhead,
		OriginalEndTime:   playhead + duration,
		Name:              textClipName(text),
		Text:              text,
		Style:             style,
		Transform: &Transform{
			X:      CanvasWidth / 2,
			Y:      CanvasHeight - 80,
			Width:  200,
			Height: 50,
			ScaleX: 1,
			ScaleY: 1,
		},
		Volume: 1,
	}

	track.Clips = append(track.Clips, clip)
	e.tl.extend(clip.EndTime())
	e.setSelected(clip)

	e.logger.Info("text clip added", "clip_id", clip.ID, "start", playhead)
	return clip
}

// MoveClip repositions a clip on the timeline clock. The trimmed content is
// unchanged: the original bounds shift by the same delta as the start time,
// leaving the trim offsets as they were.
func (e *Engine) MoveClip(clipID string, newStartTime float64) {
	_, clip := e.tl.FindClip(clipID)
	if clip == nil {
		e.logger.Warn("move: clip not found", "clip_id", clipID)
		return
	}

	if newStartTime < 0 {
		newStartTime = 0
	}
	delta := newStartTime - clip.StartTime

	clip.StartTime = newStartTime
	clip.OriginalStartTime += delta
	clip.OriginalEndTime += delta

	e.tl.extend(clip.EndTime())
}

// TrimClip narrows a clip's visible window, clamped to its original bounds.
// A request that would leave the window under MinClipDuration is rejected and
// the clip is left untouched.
func (e *Engine) TrimClip(clipID string, newStartTime, newEndTime float64) {
	_, clip := e.tl.FindClip(clipID)
	if clip == nil {
		e.logger.Warn("trim: clip not found", "clip_id", clipID)
		return
	}

	start := newStartTime
	if start < clip.OriginalStartTime {
		start = clip.OriginalStartTime
	}
	end := newEndTime
	if end > clip.OriginalEndTime {
		end = clip.OriginalEndTime
	}

	if end-start < MinClipDuration {
		return
	}

	clip.StartTime = start
	clip.Duration = end - start
	clip.TrimStart = start - clip.OriginalStartTime
	clip.TrimEnd = clip.OriginalEndTime - end
}

// TrimSelectedClip trims the selected clip, if any.
func (e *Engine) TrimSelectedClip(newStartTime, newEndTime float64) {
	if e.selectedID == "" {
		return
	}
	e.TrimClip(e.selectedID, newStartTime, newEndTime)
}

// SplitClip divides a clip in two at a timeline instant strictly inside the
// clip. The first half keeps the clip's identity; its end trim is derived
// from the original media duration so the halves' trim windows sum to the
// parent's. The second half is a new clip whose original start shifts
// forward by the split point.
func (e *Engine) SplitClip(clipID string, splitTime float64) *Clip {
	track, clip := e.tl.FindClip(clipID)
	if clip == nil {
		e.logger.Warn("split: clip not found", "clip_id", clipID)
		return nil
	}

	splitPoint := splitTime - clip.StartTime
	if splitPoint <= 0 || splitPoint >= clip.Duration {
		return nil
	}

	second := clip.clone()
	second.ID = NewID()
	second.StartTime = splitTime
	second.Duration = clip.Duration - splitPoint
	second.TrimStart = clip.TrimStart + splitPoint
	second.OriginalStartTime = clip.OriginalStartTime + splitPoint
	second.Selected = false

	clip.Duration = splitPoint
	clip.TrimEnd = clip.OriginalMediaDuration() - (clip.TrimStart + splitPoint)

	idx := clipIndex(track, clipID)
	track.Clips = append(track.Clips, nil)
	copy(track.Clips[idx+2:], track.Clips[idx+1:])
	track.Clips[idx+1] = second

	e.logger.Info("clip split", "clip_id", clipID, "at", splitTime, "new_clip_id", second.ID)
	return second
}

// RemoveClip deletes a clip from whichever track holds it. Selection is
// cleared if it pointed at the removed clip.
func (e *Engine) RemoveClip(clipID string) {
	for _, track := range e.tl.Tracks {
		track.Clips = filterClips(track.Clips, func(c *Clip) bool {
			return c.ID != clipID
		})
	}
	if e.selectedID == clipID {
		e.selectedID = ""
	}
}

// RemoveClipsByAssetID deletes every clip referencing the asset. Invoked by
// the asset collaborator when an asset is deleted or its file disappears.
func (e *Engine) RemoveClipsByAssetID(assetID string) {
	selectedRemoved := false
	for _, track := range e.tl.Tracks {
		track.Clips = filterClips(track.Clips, func(c *Clip) bool {
			if c.AssetID == assetID {
				if c.ID == e.selectedID {
					selectedRemoved = true
				}
				return false
			}
			return true
		})
	}
	if selectedRemoved {
		e.selectedID = ""
	}
}

// TransformUpdate carries partial transform changes; nil fields are left as
// they are.
type TransformUpdate struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	ScaleX   *float64
	ScaleY   *float64
}

// UpdateClipTransform shallow-merges transform changes into a clip. A clip
// without a transform gets one initialized from the update.
func (e *Engine) UpdateClipTransform(clipID string, update TransformUpdate) {
	_, clip := e.tl.FindClip(clipID)
	if clip == nil {
		e.logger.Warn("transform: clip not found", "clip_id", clipID)
		return
	}

	if clip.Transform == nil {
		clip.Transform = &Transform{Width: 100, Height: 100, ScaleX: 1, ScaleY: 1}
	}
	t := clip.Transform
	if update.X != nil {
		t.X = *update.X
	}
	if update.Y != nil {
		t.Y = *update.Y
	}
	if update.Width != nil {
		t.Width = *update.Width
	}
	if update.Height != nil {
		t.Height = *update.Height
	}
	if update.Rotation != nil {
		t.Rotation = *update.Rotation
	}
	if update.ScaleX != nil {
		t.ScaleX = *update.ScaleX
	}
	if update.ScaleY != nil {
		t.ScaleY = *update.ScaleY
	}
}

// UpdateClipProperties shallow-merges text and style changes into a clip.
func (e *Engine) UpdateClipProperties(clipID string, text *string, style *SubtitleStyle) {
	_, clip := e.tl.FindClip(clipID)
	if clip == nil {
		e.logger.Warn("properties: clip not found", "clip_id", clipID)
		return
	}
	if text != nil {
		clip.Text = *text
		if clip.Type == TrackText {
			clip.Name = textClipName(*text)
		}
	}
	if style != nil {
		clip.Style = style
	}
}

// SelectClip marks a clip as the single selected clip. Selecting an unknown
// id clears the selection instead of erroring.
func (e *Engine) SelectClip(clipID string) {
	_, clip := e.tl.FindClip(clipID)
	if clip == nil {
		e.clearSelected()
		return
	}
	e.setSelected(clip)
}

// ClearSelection drops the selection pointer.
func (e *Engine) ClearSelection() {
	e.clearSelected()
}

func (e *Engine) setSelected(clip *Clip) {
	e.clearSelected()
	clip.Selected = true
	e.selectedID = clip.ID
}

func (e *Engine) clearSelected() {
	if e.selectedID == "" {
		return
	}
	if _, prev := e.tl.FindClip(e.selectedID); prev != nil {
		prev.Selected = false
	}
	e.selectedID = ""
}

// FindAssetClips returns every clip referencing the asset, ordered by start
// time.
func (e *Engine) FindAssetClips(assetID string) []*Clip {
	var clips []*Clip
	for _, track := range e.tl.Tracks {
		for _, clip := range track.Clips {
			if clip.AssetID == assetID {
				clips = append(clips, clip)
			}
		}
	}
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].StartTime < clips[j].StartTime
	})
	return clips
}

// defaultTransform centers assets that fit the reference canvas and scales
// larger ones down to at most 300x200, anchored at a fixed offset.
func defaultTransform(width, height int) *Transform {
	t := &Transform{X: 50, Y: 50, ScaleX: 1, ScaleY: 1}

	if width > 0 && width < int(CanvasWidth) {
		t.X = (CanvasWidth - float64(width)) / 2
	}
	if height > 0 && height < int(CanvasHeight) {
		t.Y = (CanvasHeight - float64(height)) / 2
	}

	if width > 0 && width <= int(CanvasWidth) {
		t.Width = float64(width)
	} else {
		t.Width = 300
	}
	if height > 0 && height <= int(CanvasHeight) {
		t.Height = float64(height)
	} else {
		t.Height = 200
	}

	return t
}

func textClipName(text string) string {
	const max = 20
	name := text
	if len(name) > max {
		name = strings.TrimSpace(name[:max]) + "..."
	}
	return "Text: " + name
}

func clipIndex(track *Track, clipID string) int {
	for i, c := range track.Clips {
		if c.ID == clipID {
			return i
		}
	}
	return -1
}

func filterClips(clips []*Clip, keep func(*Clip) bool) []*Clip {
	out := clips[:0]
	for _, c := range clips {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

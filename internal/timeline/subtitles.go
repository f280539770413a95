package timeline

import "sort"

// SubtitleTrackName is the display name of the lazily created subtitle track.
const SubtitleTrackName = "Subtitles"

// SubtitleSegment is one transcribed segment in asset-relative seconds, as
// produced by an external transcription service.
type SubtitleSegment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

// AddSubtitleClips maps asset-relative subtitle segments onto the timeline
// through the first clip referencing the asset and places each segment as an
// independent text clip on the subtitle track. Returns the number of clips
// placed; zero means the asset has no clip on the timeline.
//
// When the same asset appears more than once only the first clip anchors all
// segments. Known limitation, kept deliberately until multi-clip subtitle
// semantics are decided.
func (e *Engine) AddSubtitleClips(assetID string, segments []SubtitleSegment) int {
	clips := e.FindAssetClips(assetID)
	if len(clips) == 0 {
		e.logger.Warn("subtitles: asset has no clips on timeline", "asset_id", assetID)
		return 0
	}
	anchor := clips[0]
	if len(clips) > 1 {
		e.logger.Warn("subtitles: multiple clips for asset, anchoring to first",
			"asset_id", assetID, "clip_id", anchor.ID)
	}

	track := e.ensureSubtitleTrack()
	style := DefaultSubtitleStyle()

	placed := 0
	for _, seg := range segments {
		start := calculateTimelinePosition(anchor, seg.StartTime)
		end := calculateTimelinePosition(anchor, seg.EndTime)
		if end <= start {
			continue
		}

		st := style
		clip := &Clip{
			ID:                NewID(),
			TrackID:           track.ID,
			Type:              TrackText,
			StartTime:         start,
			Duration:          end - start,
			OriginalStartTime: start,
			OriginalEndTime:   end,
			Name:              textClipName(seg.Text),
			Text:              seg.Text,
			Style:             &st,
			Transform: &Transform{
				X:      CanvasWidth / 2,
				Y:      CanvasHeight - 40,
				Width:  400,
				Height: 40,
				ScaleX: 1,
				ScaleY: 1,
			},
			Volume: 1,
		}

		track.Clips = append(track.Clips, clip)
		e.tl.extend(end)
		placed++
	}

	sort.Slice(track.Clips, func(i, j int) bool {
		return track.Clips[i].StartTime < track.Clips[j].StartTime
	})

	e.logger.Info("subtitle clips placed", "asset_id", assetID, "count", placed)
	return placed
}

// calculateTimelinePosition converts an asset-relative instant into timeline
// time through the clip that references the asset. Time trimmed off the
// clip's start is subtracted; instants before the trimmed window clamp to
// the clip start.
func calculateTimelinePosition(clip *Clip, assetTime float64) float64 {
	offset := assetTime - clip.TrimStart
	if offset < 0 {
		offset = 0
	}
	return clip.StartTime + offset
}

// ensureSubtitleTrack returns the dedicated subtitle track, appending one at
// the end of the track list on first use.
func (e *Engine) ensureSubtitleTrack() *Track {
	for _, track := range e.tl.Tracks {
		if track.Type == TrackText && track.Name == SubtitleTrackName {
			return track
		}
	}

	layer := 0
	for _, track := range e.tl.Tracks {
		if track.LayerIndex >= layer {
			layer = track.LayerIndex + 1
		}
	}
	track := newTrack(TrackText, SubtitleTrackName, layer)
	e.tl.Tracks = append(e.tl.Tracks, track)
	e.logger.Info("subtitle track created", "track_id", track.ID)
	return track
}

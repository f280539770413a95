package timeline

import "sort"

// ActiveClip pairs a clip with its stacking order for the render set.
type ActiveClip struct {
	Clip   *Clip `json:"clip"`
	ZIndex int   `json:"z_index"`
}

// Base z-index per track type. Audio has no visual stacking role; text sits
// above everything else. The track's layer index is added on top so tracks
// of the same type keep a stable relative order.
func baseZIndex(tt TrackType) int {
	switch tt {
	case TrackVideo:
		return 10
	case TrackImage:
		return 20
	case TrackText:
		return 30
	case TrackAudio:
		return 0
	default:
		return 1
	}
}

// ActiveClipsAt returns the clips covering time t, sorted ascending by
// z-index so consumers can render back-to-front. The render set uses a
// closed interval at the end instant so the last frame of a clip still
// draws; playback activity checks use Clip.ActiveAt's half-open interval.
func ActiveClipsAt(tl *Timeline, t float64) []ActiveClip {
	var active []ActiveClip
	for _, track := range tl.Tracks {
		if !track.Visible {
			continue
		}
		for _, clip := range track.Clips {
			if t >= clip.StartTime && t <= clip.EndTime() {
				active = append(active, ActiveClip{
					Clip:   clip,
					ZIndex: baseZIndex(track.Type) + track.LayerIndex,
				})
			}
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ZIndex < active[j].ZIndex
	})
	return active
}

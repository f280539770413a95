package timeline

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func videoAsset(id string, duration float64) AssetRef {
	return AssetRef{
		ID:       id,
		Type:     TrackVideo,
		Name:     id + ".mp4",
		Path:     "/media/" + id + ".mp4",
		Duration: duration,
		Width:    1920,
		Height:   1080,
	}
}

func audioAsset(id string, duration float64) AssetRef {
	return AssetRef{
		ID:       id,
		Type:     TrackAudio,
		Name:     id + ".mp3",
		Path:     "/media/" + id + ".mp3",
		Duration: duration,
	}
}

func checkInvariants(t *testing.T, tl *Timeline) {
	t.Helper()
	furthest := 0.0
	for _, track := range tl.Tracks {
		for _, clip := range track.Clips {
			if clip.TrimStart < -epsilon {
				t.Errorf("clip %s: trimStart = %v, want >= 0", clip.ID, clip.TrimStart)
			}
			if clip.TrimEnd < -epsilon {
				t.Errorf("clip %s: trimEnd = %v, want >= 0", clip.ID, clip.TrimEnd)
			}
			if clip.Duration < MinClipDuration-epsilon {
				t.Errorf("clip %s: duration = %v, want >= %v", clip.ID, clip.Duration, MinClipDuration)
			}
			if end := clip.EndTime(); end > furthest {
				furthest = end
			}
		}
	}
	if tl.Duration < furthest-epsilon {
		t.Errorf("timeline duration %v < furthest clip end %v", tl.Duration, furthest)
	}
}

func TestNew_DefaultTracks(t *testing.T) {
	tl := New("proj-1")

	if tl.Duration != DefaultDuration {
		t.Errorf("duration = %v, want %v", tl.Duration, DefaultDuration)
	}
	wantOrder := []TrackType{TrackText, TrackImage, TrackVideo, TrackAudio}
	if len(tl.Tracks) != len(wantOrder) {
		t.Fatalf("track count = %d, want %d", len(tl.Tracks), len(wantOrder))
	}
	for i, want := range wantOrder {
		if tl.Tracks[i].Type != want {
			t.Errorf("track[%d].Type = %s, want %s", i, tl.Tracks[i].Type, want)
		}
		if tl.Tracks[i].LayerIndex != i {
			t.Errorf("track[%d].LayerIndex = %d, want %d", i, tl.Tracks[i].LayerIndex, i)
		}
	}
}

func TestAddClip_EmptyVideoTrack(t *testing.T) {
	e := NewEngine(New("p"), nil)

	clip := e.AddClip(videoAsset("a1", 5))
	if clip == nil {
		t.Fatal("AddClip returned nil")
	}

	if clip.StartTime != 0 {
		t.Errorf("startTime = %v, want 0", clip.StartTime)
	}
	if clip.Duration != 5 {
		t.Errorf("duration = %v, want 5", clip.Duration)
	}
	if clip.OriginalStartTime != 0 || clip.OriginalEndTime != 5 {
		t.Errorf("original bounds = [%v, %v], want [0, 5]", clip.OriginalStartTime, clip.OriginalEndTime)
	}
	if clip.TrimStart != 0 || clip.TrimEnd != 0 {
		t.Errorf("fresh clip has trims %v/%v, want 0/0", clip.TrimStart, clip.TrimEnd)
	}
	if e.Timeline().Duration != DefaultDuration {
		t.Errorf("timeline duration = %v, want unchanged %v", e.Timeline().Duration, DefaultDuration)
	}
	if sel := e.SelectedClip(); sel == nil || sel.ID != clip.ID {
		t.Error("new clip should be selected")
	}
	checkInvariants(t, e.Timeline())
}

func TestAddClip_SequentialAppend(t *testing.T) {
	e := NewEngine(New("p"), nil)

	first := e.AddClip(audioAsset("a1", 5))
	second := e.AddClip(audioAsset("a2", 3))

	if second.StartTime != 5 {
		t.Errorf("second clip startTime = %v, want 5", second.StartTime)
	}
	track := e.Timeline().TrackByType(TrackAudio)
	if len(track.Clips) != 2 {
		t.Fatalf("audio track clips = %d, want 2", len(track.Clips))
	}
	if first.EndTime() != second.StartTime {
		t.Errorf("clips not contiguous: first ends %v, second starts %v", first.EndTime(), second.StartTime)
	}
	if e.Timeline().Duration < 8 {
		t.Errorf("timeline duration = %v, want >= 8", e.Timeline().Duration)
	}
	checkInvariants(t, e.Timeline())
}

func TestAddClip_ExtendsDuration(t *testing.T) {
	e := NewEngine(New("p"), nil)

	e.AddClip(videoAsset("a1", 25))

	if e.Timeline().Duration != 25 {
		t.Errorf("timeline duration = %v, want 25", e.Timeline().Duration)
	}
}

func TestAddClip_ImageDefaultDuration(t *testing.T) {
	e := NewEngine(New("p"), nil)

	clip := e.AddClip(AssetRef{ID: "img", Type: TrackImage, Name: "img.png", Width: 320, Height: 180})

	if clip.Duration != DefaultImageDuration {
		t.Errorf("image clip duration = %v, want %v", clip.Duration, DefaultImageDuration)
	}
}

func TestAddClip_NoTrackForType(t *testing.T) {
	tl := New("p")
	tl.Tracks = tl.Tracks[:1] // text only
	e := NewEngine(tl, nil)

	before := len(tl.Tracks[0].Clips)
	if clip := e.AddClip(videoAsset("a1", 5)); clip != nil {
		t.Errorf("AddClip = %v, want nil no-op", clip)
	}
	if len(tl.Tracks[0].Clips) != before {
		t.Error("no-op should not add clips anywhere")
	}
}

func TestAddClip_DefaultTransform(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		wantX      float64
		wantY      float64
		wantWidth  float64
		wantHeight float64
	}{
		{"small asset centered", 320, 180, 160, 90, 320, 180},
		{"large asset downscaled", 1920, 1080, 50, 50, 300, 200},
		{"exact canvas size", 640, 360, 50, 50, 640, 360},
		{"no dimensions", 0, 0, 50, 50, 300, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(New("p"), nil)
			clip := e.AddClip(AssetRef{
				ID: "a", Type: TrackVideo, Duration: 5,
				Width: tt.width, Height: tt.height,
			})
			tr := clip.Transform
			if tr == nil {
				t.Fatal("transform not set")
			}
			if tr.X != tt.wantX || tr.Y != tt.wantY {
				t.Errorf("position = (%v, %v), want (%v, %v)", tr.X, tr.Y, tt.wantX, tt.wantY)
			}
			if tr.Width != tt.wantWidth || tr.Height != tt.wantHeight {
				t.Errorf("size = %vx%v, want %vx%v", tr.Width, tr.Height, tt.wantWidth, tt.wantHeight)
			}
			if tr.ScaleX != 1 || tr.ScaleY != 1 || tr.Rotation != 0 {
				t.Errorf("scale/rotation = %v/%v/%v, want 1/1/0", tr.ScaleX, tr.ScaleY, tr.Rotation)
			}
		})
	}
}

func TestAddTextClip(t *testing.T) {
	e := NewEngine(New("p"), nil)

	clip := e.AddTextClip("hello world", nil, 0, 4.5)
	if clip == nil {
		t.Fatal("AddTextClip returned nil")
	}

	if clip.StartTime != 4.5 {
		t.Errorf("text clip placed at %v, want playhead 4.5", clip.StartTime)
	}
	if clip.Duration != DefaultTextDuration {
		t.Errorf("duration = %v, want default %v", clip.Duration, DefaultTextDuration)
	}
	if clip.Style == nil {
		t.Error("default style not applied")
	}
	if clip.Transform == nil || clip.Transform.Width != 200 || clip.Transform.Height != 50 {
		t.Errorf("transform = %+v, want 200x50 default", clip.Transform)
	}
	if sel := e.SelectedClip(); sel == nil || sel.ID != clip.ID {
		t.Error("new text clip should be selected")
	}
	checkInvariants(t, e.Timeline())
}

func TestAddTextClip_Overlapping(t *testing.T) {
	e := NewEngine(New("p"), nil)

	a := e.AddTextClip("first", nil, 3, 1)
	b := e.AddTextClip("second", nil, 3, 2)

	if a.StartTime != 1 || b.StartTime != 2 {
		t.Errorf("text clips at %v and %v, want playhead placement 1 and 2", a.StartTime, b.StartTime)
	}
}

func TestMoveClip(t *testing.T) {
	tests := []struct {
		name      string
		to        float64
		wantStart float64
	}{
		{"forward", 12, 12},
		{"backward", 1, 1},
		{"negative clamps to zero", -5, 0},
		{"same position", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(New("p"), nil)
			clip := e.AddClip(videoAsset("a1", 5))
			wantDuration := clip.Duration
			wantTrimStart := clip.TrimStart
			wantTrimEnd := clip.TrimEnd

			e.MoveClip(clip.ID, tt.to)

			if clip.StartTime != tt.wantStart {
				t.Errorf("startTime = %v, want %v", clip.StartTime, tt.wantStart)
			}
			if clip.Duration != wantDuration {
				t.Errorf("move changed duration: %v, want %v", clip.Duration, wantDuration)
			}
			if clip.TrimStart != wantTrimStart || clip.TrimEnd != wantTrimEnd {
				t.Errorf("move changed trims: %v/%v, want %v/%v",
					clip.TrimStart, clip.TrimEnd, wantTrimStart, wantTrimEnd)
			}
			if !almostEqual(clip.OriginalStartTime+clip.TrimStart, clip.StartTime) {
				t.Errorf("original bounds did not shift with clip: originalStart %v, trimStart %v, start %v",
					clip.OriginalStartTime, clip.TrimStart, clip.StartTime)
			}
			checkInvariants(t, e.Timeline())
		})
	}
}

func TestMoveClip_ExtendsDuration(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 5))

	e.MoveClip(clip.ID, 20)

	if e.Timeline().Duration != 25 {
		t.Errorf("timeline duration = %v, want 25", e.Timeline().Duration)
	}
}

func TestMoveClip_PreservesTrimmedWindow(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 10))
	e.TrimClip(clip.ID, 2, 8)

	e.MoveClip(clip.ID, 15)

	if clip.TrimStart != 2 || clip.TrimEnd != 2 {
		t.Errorf("trims after move = %v/%v, want 2/2", clip.TrimStart, clip.TrimEnd)
	}
	if clip.Duration != 6 {
		t.Errorf("duration after move = %v, want 6", clip.Duration)
	}
	checkInvariants(t, e.Timeline())
}

func TestMoveClip_UnknownID(t *testing.T) {
	e := NewEngine(New("p"), nil)
	e.AddClip(videoAsset("a1", 5))

	e.MoveClip("nope", 3) // must not panic or mutate

	clip := e.Timeline().TrackByType(TrackVideo).Clips[0]
	if clip.StartTime != 0 {
		t.Errorf("unrelated clip moved to %v", clip.StartTime)
	}
}

func TestTrimClip(t *testing.T) {
	tests := []struct {
		name          string
		newStart      float64
		newEnd        float64
		wantStart     float64
		wantDuration  float64
		wantTrimStart float64
		wantTrimEnd   float64
	}{
		{"trim both ends", 2, 8, 2, 6, 2, 2},
		{"trim start only", 3, 10, 3, 7, 3, 0},
		{"trim end only", 0, 4, 0, 4, 0, 6},
		{"wider than original clamps", -5, 50, 0, 10, 0, 0},
		{"expand back after trim", 0, 10, 0, 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(New("p"), nil)
			clip := e.AddClip(videoAsset("a1", 10))
			if tt.name == "expand back after trim" {
				e.TrimClip(clip.ID, 2, 8)
			}

			e.TrimClip(clip.ID, tt.newStart, tt.newEnd)

			if clip.StartTime != tt.wantStart {
				t.Errorf("startTime = %v, want %v", clip.StartTime, tt.wantStart)
			}
			if clip.Duration != tt.wantDuration {
				t.Errorf("duration = %v, want %v", clip.Duration, tt.wantDuration)
			}
			if clip.TrimStart != tt.wantTrimStart {
				t.Errorf("trimStart = %v, want %v", clip.TrimStart, tt.wantTrimStart)
			}
			if clip.TrimEnd != tt.wantTrimEnd {
				t.Errorf("trimEnd = %v, want %v", clip.TrimEnd, tt.wantTrimEnd)
			}
			checkInvariants(t, e.Timeline())
		})
	}
}

func TestTrimClip_RejectsBelowMinimum(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 10))
	before := *clip

	e.TrimClip(clip.ID, 4, 4.05)

	if *clip != before {
		t.Errorf("clip changed by rejected trim:\n got %+v\nwant %+v", *clip, before)
	}
}

func TestTrimClip_ClampIdempotence(t *testing.T) {
	// Trimming wider than the original bounds must equal trimming exactly
	// to those bounds.
	mk := func() (*Engine, *Clip) {
		e := NewEngine(New("p"), nil)
		return e, e.AddClip(videoAsset("a1", 10))
	}

	e1, c1 := mk()
	e1.TrimClip(c1.ID, -100, 100)

	e2, c2 := mk()
	e2.TrimClip(c2.ID, c2.OriginalStartTime, c2.OriginalEndTime)

	if c1.StartTime != c2.StartTime || c1.Duration != c2.Duration ||
		c1.TrimStart != c2.TrimStart || c1.TrimEnd != c2.TrimEnd {
		t.Errorf("clamped trim differs from exact trim:\n got %+v\nwant %+v", c1, c2)
	}
}

func TestSplitClip(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 10))

	second := e.SplitClip(clip.ID, 3)
	if second == nil {
		t.Fatal("SplitClip returned nil")
	}

	if clip.Duration != 3 {
		t.Errorf("first half duration = %v, want 3", clip.Duration)
	}
	if clip.TrimEnd != 7 {
		t.Errorf("first half trimEnd = %v, want 7", clip.TrimEnd)
	}
	if second.StartTime != 3 {
		t.Errorf("second half startTime = %v, want 3", second.StartTime)
	}
	if second.Duration != 7 {
		t.Errorf("second half duration = %v, want 7", second.Duration)
	}
	if second.TrimStart != 3 {
		t.Errorf("second half trimStart = %v, want 3", second.TrimStart)
	}
	if second.TrimEnd != 0 {
		t.Errorf("second half trimEnd = %v, want 0", second.TrimEnd)
	}
	if second.OriginalStartTime != 3 {
		t.Errorf("second half originalStartTime = %v, want 3", second.OriginalStartTime)
	}
	if second.OriginalEndTime != 10 {
		t.Errorf("second half originalEndTime = %v, want 10", second.OriginalEndTime)
	}

	track := e.Timeline().TrackByType(TrackVideo)
	if len(track.Clips) != 2 {
		t.Fatalf("track clips = %d, want 2", len(track.Clips))
	}
	if track.Clips[0].ID != clip.ID || track.Clips[1].ID != second.ID {
		t.Error("second half not inserted immediately after the first")
	}
}

func TestSplitClip_Conservation(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		trimFirst bool
		splitAt   float64
	}{
		{"untrimmed middle", 10, false, 5},
		{"untrimmed near start", 10, false, 0.5},
		{"untrimmed near end", 10, false, 9.5},
		{"pre-trimmed", 10, true, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(New("p"), nil)
			clip := e.AddClip(videoAsset("a1", tt.duration))
			if tt.trimFirst {
				e.TrimClip(clip.ID, 2, 8)
			}
			parentDuration := clip.Duration
			parentStart := clip.StartTime
			parentMedia := clip.OriginalMediaDuration()

			second := e.SplitClip(clip.ID, tt.splitAt)
			if second == nil {
				t.Fatal("split rejected")
			}

			if sum := clip.Duration + second.Duration; !almostEqual(sum, parentDuration) {
				t.Errorf("durations %v + %v = %v, want parent %v", clip.Duration, second.Duration, sum, parentDuration)
			}
			if !almostEqual(clip.EndTime(), second.StartTime) {
				t.Errorf("halves not contiguous: %v vs %v", clip.EndTime(), second.StartTime)
			}
			if !almostEqual(clip.StartTime, parentStart) {
				t.Errorf("first half moved: %v, want %v", clip.StartTime, parentStart)
			}

			// Each half's trim offsets plus its visible duration must
			// reconstruct the parent's full media window.
			if got := clip.TrimStart + clip.Duration + clip.TrimEnd; !almostEqual(got, parentMedia) {
				t.Errorf("first half trim window %v, want parent media %v", got, parentMedia)
			}
			if got := second.TrimStart + second.Duration + second.TrimEnd; !almostEqual(got, parentMedia) {
				t.Errorf("second half trim window %v, want parent media %v", got, parentMedia)
			}
			checkInvariants(t, e.Timeline())
		})
	}
}

func TestSplitClip_OutsideBounds(t *testing.T) {
	tests := []struct {
		name    string
		splitAt float64
	}{
		{"at start", 0},
		{"at end", 10},
		{"before start", -1},
		{"after end", 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(New("p"), nil)
			clip := e.AddClip(videoAsset("a1", 10))
			before := *clip

			if got := e.SplitClip(clip.ID, tt.splitAt); got != nil {
				t.Errorf("split outside bounds produced clip %v", got.ID)
			}
			if *clip != before {
				t.Error("rejected split mutated the clip")
			}
			if n := len(e.Timeline().TrackByType(TrackVideo).Clips); n != 1 {
				t.Errorf("track clips = %d, want 1", n)
			}
		})
	}
}

func TestRemoveClip(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 5))

	e.RemoveClip(clip.ID)

	if n := len(e.Timeline().TrackByType(TrackVideo).Clips); n != 0 {
		t.Errorf("track clips = %d, want 0", n)
	}
	if e.SelectedClip() != nil {
		t.Error("selection not cleared after removing selected clip")
	}
}

func TestRemoveClipsByAssetID(t *testing.T) {
	e := NewEngine(New("p"), nil)
	e.AddClip(videoAsset("shared", 5))
	e.AddClip(videoAsset("shared", 3))
	kept := e.AddClip(videoAsset("other", 2))
	e.SelectClip(kept.ID)

	e.RemoveClipsByAssetID("shared")

	track := e.Timeline().TrackByType(TrackVideo)
	if len(track.Clips) != 1 || track.Clips[0].AssetID != "other" {
		t.Errorf("unexpected clips after cascade: %d", len(track.Clips))
	}
	if sel := e.SelectedClip(); sel == nil || sel.ID != kept.ID {
		t.Error("selection of unrelated clip should survive cascade")
	}

	e.RemoveClipsByAssetID("other")
	if e.SelectedClip() != nil {
		t.Error("selection should clear when its clip is cascaded away")
	}
}

func TestSelectClip(t *testing.T) {
	e := NewEngine(New("p"), nil)
	a := e.AddClip(videoAsset("a1", 5))
	b := e.AddClip(videoAsset("a2", 5))

	e.SelectClip(a.ID)
	if sel := e.SelectedClip(); sel == nil || sel.ID != a.ID {
		t.Fatal("clip a not selected")
	}
	if b.Selected {
		t.Error("clip b still flagged selected")
	}

	e.SelectClip("does-not-exist")
	if e.SelectedClip() != nil {
		t.Error("unknown id should clear selection")
	}
	if a.Selected {
		t.Error("stale selected flag on clip a")
	}

	e.SelectClip(b.ID)
	e.ClearSelection()
	if e.SelectedClip() != nil || b.Selected {
		t.Error("ClearSelection left selection state behind")
	}
}

func TestUpdateClipTransform(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 5))

	x := 10.0
	rot := 45.0
	e.UpdateClipTransform(clip.ID, TransformUpdate{X: &x, Rotation: &rot})

	if clip.Transform.X != 10 || clip.Transform.Rotation != 45 {
		t.Errorf("transform = %+v, want X=10 Rotation=45", clip.Transform)
	}
	if clip.Transform.ScaleX != 1 {
		t.Error("untouched transform fields must be preserved")
	}
}

func TestUpdateClipProperties(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddTextClip("before", nil, 2, 0)

	text := "after"
	style := DefaultSubtitleStyle()
	style.FontSize = 40
	e.UpdateClipProperties(clip.ID, &text, &style)

	if clip.Text != "after" {
		t.Errorf("text = %q, want %q", clip.Text, "after")
	}
	if clip.Style.FontSize != 40 {
		t.Errorf("style.FontSize = %d, want 40", clip.Style.FontSize)
	}
}

func TestTrimSelectedClip(t *testing.T) {
	e := NewEngine(New("p"), nil)
	clip := e.AddClip(videoAsset("a1", 10))

	e.TrimSelectedClip(2, 8)
	if clip.Duration != 6 {
		t.Errorf("duration = %v, want 6", clip.Duration)
	}

	e.ClearSelection()
	e.TrimSelectedClip(0, 10) // no selection: no-op
	if clip.Duration != 6 {
		t.Errorf("trim without selection mutated clip: duration %v", clip.Duration)
	}
}

func TestReset_ExtendsDurationOverClips(t *testing.T) {
	scratch := NewEngine(New("p"), nil)
	scratch.AddClip(videoAsset("a", 8))
	stale := scratch.Timeline()
	// A stale or hand-edited document can claim a duration shorter than
	// its content.
	stale.Duration = 3

	e := NewEngine(New("p"), nil)
	e.Reset(stale)

	if !almostEqual(e.Timeline().Duration, 8) {
		t.Errorf("duration = %v, want 8", e.Timeline().Duration)
	}
	checkInvariants(t, e.Timeline())
}

func TestReset_DefaultsNonPositiveDuration(t *testing.T) {
	empty := New("p")
	empty.Duration = -1

	e := NewEngine(New("p"), nil)
	e.Reset(empty)

	if e.Timeline().Duration != DefaultDuration {
		t.Errorf("duration = %v, want %v", e.Timeline().Duration, DefaultDuration)
	}
}

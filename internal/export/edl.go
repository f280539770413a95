// Package export renders a project's video track as a CMX3600-style EDL so
// a cut can continue in a desktop NLE.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

// Cut is one EDL event: a source media interval placed on the record
// timeline. Times are milliseconds.
type Cut struct {
	ClipName    string `json:"clip_name"`
	MediaPath   string `json:"media_path"`
	SourceInMs  int    `json:"source_in_ms"`
	SourceOutMs int    `json:"source_out_ms"`
	RecordInMs  int    `json:"record_in_ms"`
	RecordOutMs int    `json:"record_out_ms"`
}

// BuildCutList derives the cut list from a timeline's video track. Source
// in/out come from each clip's trim window in asset time; record in/out are
// the clip's placement on the timeline, so gaps between clips survive into
// the EDL.
func BuildCutList(tl *timeline.Timeline) []Cut {
	track := tl.TrackByType(timeline.TrackVideo)
	if track == nil {
		return nil
	}

	var cuts []Cut
	for _, clip := range track.Clips {
		srcIn := clip.TrimStart
		cuts = append(cuts, Cut{
			ClipName:    clip.Name,
			MediaPath:   clip.AssetPath,
			SourceInMs:  toMs(srcIn),
			SourceOutMs: toMs(srcIn + clip.Duration),
			RecordInMs:  toMs(clip.StartTime),
			RecordOutMs: toMs(clip.EndTime()),
		})
	}
	return cuts
}

// GenerateEDL renders cuts as an EDL document.
func GenerateEDL(cuts []Cut, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, cut := range cuts {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				msToTimecode(cut.SourceInMs, fps), msToTimecode(cut.SourceOutMs, fps),
				msToTimecode(cut.RecordInMs, fps), msToTimecode(cut.RecordOutMs, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", cut.ClipName),
			fmt.Sprintf("* MEDIA PATH:  %s", cut.MediaPath),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// WriteEDL writes the document into outputDir as "<sanitized title>.edl" and
// returns the written path.
func WriteEDL(tl *timeline.Timeline, title string, frameRate float64, outputDir string) (string, error) {
	if err := ValidateOutputDir(outputDir); err != nil {
		return "", err
	}

	name := SanitizeName(title, 80)
	if name == "" {
		name = "untitled"
	}
	outputPath := filepath.Join(outputDir, name+".edl")

	edl := GenerateEDL(BuildCutList(tl), title, frameRate)
	if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
		return "", fmt.Errorf("failed to write EDL: %w", err)
	}
	return outputPath, nil
}

func toMs(seconds float64) int {
	return int(math.Round(seconds * 1000))
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}

package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
)

// ProbeResult carries the stream metadata the editor cares about. Fields are
// zero when the container does not expose them.
type ProbeResult struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	FrameRate float64
}

// Prober inspects a media file on disk.
type Prober interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
}

// FFProbe shells out to ffprobe for metadata. It is only constructed when
// the doctor has confirmed the binary exists.
type FFProbe struct {
	binary string
	logger *slog.Logger
}

func NewFFProbe(binary string, logger *slog.Logger) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFProbe{binary: binary, logger: logger}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

func (f *FFProbe) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		result.Duration = d
	}
	for _, stream := range parsed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		result.Width = stream.Width
		result.Height = stream.Height
		result.Codec = stream.CodecName
		result.FrameRate = parseFrameRate(stream.AvgFrameRate)
		break
	}

	f.logger.Debug("probed media file",
		"path", filePath,
		"duration", result.Duration,
		"width", result.Width,
		"height", result.Height,
	)
	return result, nil
}

// parseFrameRate handles ffprobe's rational notation, e.g. "30000/1001".
func parseFrameRate(s string) float64 {
	var num, den float64
	if _, err := fmt.Sscanf(s, "%g/%g", &num, &den); err == nil && den > 0 {
		return num / den
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return 0
}

// StubProber is used when ffprobe is not installed. Uploads then rely on the
// metadata the client supplies.
type StubProber struct {
	logger *slog.Logger
}

func NewStubProber(logger *slog.Logger) *StubProber {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubProber{logger: logger}
}

func (p *StubProber) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	p.logger.Debug("probe skipped, ffprobe unavailable", "path", filePath)
	return &ProbeResult{}, nil
}

// Package ai is the contract with the external media-AI service that
// produces subtitles and cleaned audio. The editor only consumes results;
// all inference happens remotely.
package ai

import "context"

// SubtitleSegment is one transcribed span in asset-local time.
type SubtitleSegment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

// SubtitleRequest asks for a transcript of one asset. MediaURL must be
// fetchable by the AI service.
type SubtitleRequest struct {
	AssetID  string `json:"asset_id"`
	MediaURL string `json:"media_url"`
	Language string `json:"language,omitempty"`
}

// DenoiseRequest asks for a noise-reduced render of one asset's audio.
type DenoiseRequest struct {
	AssetID  string `json:"asset_id"`
	MediaURL string `json:"media_url"`
}

// DenoiseResult points at the processed audio the service produced.
type DenoiseResult struct {
	AssetID  string `json:"asset_id"`
	MediaURL string `json:"media_url"`
}

type Client interface {
	GenerateSubtitles(ctx context.Context, req SubtitleRequest) ([]SubtitleSegment, error)
	RemoveNoise(ctx context.Context, req DenoiseRequest) (*DenoiseResult, error)
}

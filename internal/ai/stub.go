package ai

import (
	"context"
	"log/slog"
)

// StubClient stands in when no AI service is configured. Requests succeed
// with empty results so the rest of the editor keeps working offline.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubClient{logger: logger.With("component", "ai")}
}

func (c *StubClient) GenerateSubtitles(ctx context.Context, req SubtitleRequest) ([]SubtitleSegment, error) {
	c.logger.Info("ai stub: subtitle generation requested", "asset_id", req.AssetID)
	return nil, nil
}

func (c *StubClient) RemoveNoise(ctx context.Context, req DenoiseRequest) (*DenoiseResult, error) {
	c.logger.Info("ai stub: noise removal requested", "asset_id", req.AssetID)
	return &DenoiseResult{AssetID: req.AssetID, MediaURL: req.MediaURL}, nil
}

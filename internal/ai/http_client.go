package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// APIError represents a non-2xx response from the AI service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ai service request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx) are
// considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// HTTPClient talks to the AI service over its JSON API with a bearer token.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			// Transcription runs take a while on long assets.
			Timeout: 120 * time.Second,
		},
		logger: logger.With("component", "ai"),
	}
}

func (c *HTTPClient) GenerateSubtitles(ctx context.Context, req SubtitleRequest) ([]SubtitleSegment, error) {
	var result struct {
		Segments []SubtitleSegment `json:"segments"`
	}
	if err := c.post(ctx, "/api/subtitles/generate", req, &result); err != nil {
		return nil, err
	}

	c.logger.Info("subtitles generated",
		"asset_id", req.AssetID, "segment_count", len(result.Segments))
	return result.Segments, nil
}

func (c *HTTPClient) RemoveNoise(ctx context.Context, req DenoiseRequest) (*DenoiseResult, error) {
	var result DenoiseResult
	if err := c.post(ctx, "/api/audio/denoise", req, &result); err != nil {
		return nil, err
	}

	c.logger.Info("noise removal completed", "asset_id", req.AssetID)
	return &result, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ Client = (*HTTPClient)(nil)
var _ Client = (*StubClient)(nil)

func TestHTTPClient_GenerateSubtitles_Success(t *testing.T) {
	var receivedReq SubtitleRequest
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/subtitles/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		receivedAuth = r.Header.Get("Authorization")
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing request id header")
		}

		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &receivedReq)

		json.NewEncoder(w).Encode(map[string]any{
			"segments": []SubtitleSegment{
				{StartTime: 0, EndTime: 2.5, Text: "hello there"},
				{StartTime: 2.5, EndTime: 4, Text: "welcome back"},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-token", testLogger())

	segments, err := client.GenerateSubtitles(context.Background(), SubtitleRequest{
		AssetID:  "asset-1",
		MediaURL: "http://localhost/media/asset-1.mp4",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("auth = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if receivedReq.AssetID != "asset-1" || receivedReq.Language != "en" {
		t.Errorf("request payload = %+v", receivedReq)
	}
	if len(segments) != 2 {
		t.Fatalf("segments count = %d, want 2", len(segments))
	}
	if segments[0].Text != "hello there" || segments[1].StartTime != 2.5 {
		t.Errorf("segments mismatch: %+v", segments)
	}
}

func TestHTTPClient_RemoveNoise_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/audio/denoise" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(DenoiseResult{
			AssetID:  "asset-1",
			MediaURL: "http://ai.example/results/asset-1-clean.wav",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-token", testLogger())

	result, err := client.RemoveNoise(context.Background(), DenoiseRequest{AssetID: "asset-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MediaURL != "http://ai.example/results/asset-1-clean.wav" {
		t.Errorf("result = %+v", result)
	}
}

func TestHTTPClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{"server error retryable", http.StatusInternalServerError, true},
		{"bad gateway retryable", http.StatusBadGateway, true},
		{"bad request permanent", http.StatusBadRequest, false},
		{"unauthorized permanent", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"detail":"nope"}`))
			}))
			defer server.Close()

			client := NewHTTPClient(server.URL, "test-token", testLogger())
			_, err := client.GenerateSubtitles(context.Background(), SubtitleRequest{AssetID: "a"})
			if err == nil {
				t.Fatalf("expected error for HTTP %d", tt.status)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.IsRetryable() != tt.wantRetryable {
				t.Errorf("IsRetryable() = %v, want %v", apiErr.IsRetryable(), tt.wantRetryable)
			}
		})
	}
}

func TestStubClient(t *testing.T) {
	stub := NewStubClient(testLogger())

	segments, err := stub.GenerateSubtitles(context.Background(), SubtitleRequest{AssetID: "a"})
	if err != nil || segments != nil {
		t.Errorf("stub GenerateSubtitles = (%v, %v), want (nil, nil)", segments, err)
	}

	result, err := stub.RemoveNoise(context.Background(), DenoiseRequest{AssetID: "a", MediaURL: "u"})
	if err != nil {
		t.Fatalf("stub RemoveNoise error = %v", err)
	}
	if result.MediaURL != "u" {
		t.Errorf("stub should echo the source media url, got %+v", result)
	}
}

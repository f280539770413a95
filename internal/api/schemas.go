package api

import (
	"time"

	"github.com/abdullahpichoo/ai-video-editor/internal/ai"
	"github.com/abdullahpichoo/ai-video-editor/internal/asset"
	"github.com/abdullahpichoo/ai-video-editor/internal/media"
	"github.com/abdullahpichoo/ai-video-editor/internal/snapshot"
	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	Status   string                  `json:"status"`
	Version  string                  `json:"version"`
	UptimeS  int64                   `json:"uptime_s"`
	Projects []ProjectStatusResponse `json:"projects"`
	Tools    *media.Capabilities     `json:"tools,omitempty"`
}

type ProjectStatusResponse struct {
	ProjectID   string  `json:"project_id"`
	Playing     bool    `json:"playing"`
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	ClipCount   int     `json:"clip_count"`
}

type AddClipRequest struct {
	AssetID string `json:"asset_id"`
}

type AddTextClipRequest struct {
	Text     string                  `json:"text"`
	Style    *timeline.SubtitleStyle `json:"style,omitempty"`
	Duration float64                 `json:"duration,omitempty"`
	Playhead float64                 `json:"playhead,omitempty"`
}

type MoveClipRequest struct {
	StartTime float64 `json:"start_time"`
}

type TrimClipRequest struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type SplitClipRequest struct {
	Time float64 `json:"time"`
}

type TransformRequest struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	ScaleX   *float64 `json:"scale_x,omitempty"`
	ScaleY   *float64 `json:"scale_y,omitempty"`
}

type PropertiesRequest struct {
	Text  *string                 `json:"text,omitempty"`
	Style *timeline.SubtitleStyle `json:"style,omitempty"`
}

type SelectionRequest struct {
	ClipID string `json:"clip_id"`
}

type ClipResponse struct {
	Clip *timeline.Clip `json:"clip"`
}

type ActiveClipsResponse struct {
	Time  float64               `json:"time"`
	Clips []timeline.ActiveClip `json:"clips"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type PreviewResponse struct {
	CurrentTime float64 `json:"current_time"`
	Playing     bool    `json:"playing"`
	Duration    float64 `json:"duration"`
}

type SubtitlesRequest struct {
	AssetID  string               `json:"asset_id"`
	Language string               `json:"language,omitempty"`
	Segments []ai.SubtitleSegment `json:"segments,omitempty"`
}

type SubtitlesResponse struct {
	ClipsAdded int `json:"clips_added"`
}

type DenoiseResponse struct {
	AssetID  string `json:"asset_id"`
	MediaURL string `json:"media_url"`
}

type AssetResponse struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	Type         string  `json:"type"`
	OriginalName string  `json:"original_name"`
	StoragePath  string  `json:"storage_path"`
	MimeType     string  `json:"mime_type"`
	Size         int64   `json:"size"`
	Duration     float64 `json:"duration,omitempty"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	Present      bool    `json:"present"`
	CreatedAt    string  `json:"created_at"`
}

type AssetsResponse struct {
	Assets []AssetResponse `json:"assets"`
}

type RevisionResponse struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
	ClipCount int    `json:"clip_count"`
	CreatedAt string `json:"created_at"`
}

type RevisionsResponse struct {
	Revisions []RevisionResponse `json:"revisions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func AssetToResponse(a *asset.Asset) AssetResponse {
	return AssetResponse{
		ID:           a.ID,
		ProjectID:    a.ProjectID,
		Type:         a.Type,
		OriginalName: a.OriginalName,
		StoragePath:  a.StoragePath,
		MimeType:     a.MimeType,
		Size:         a.Size,
		Duration:     a.Duration,
		Width:        a.Width,
		Height:       a.Height,
		Present:      a.Present,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

func RevisionToResponse(rev snapshot.Revision) RevisionResponse {
	return RevisionResponse{
		ID:        rev.ID,
		Hash:      rev.Hash,
		Size:      rev.Size,
		ClipCount: rev.ClipCount,
		CreatedAt: rev.CreatedAt.Format(time.RFC3339),
	}
}

func (r TransformRequest) Update() timeline.TransformUpdate {
	return timeline.TransformUpdate{
		X:        r.X,
		Y:        r.Y,
		Width:    r.Width,
		Height:   r.Height,
		Rotation: r.Rotation,
		ScaleX:   r.ScaleX,
		ScaleY:   r.ScaleY,
	}
}

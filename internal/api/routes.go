package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abdullahpichoo/ai-video-editor/internal/ai"
	"github.com/abdullahpichoo/ai-video-editor/internal/asset"
	"github.com/abdullahpichoo/ai-video-editor/internal/media"
	"github.com/abdullahpichoo/ai-video-editor/internal/project"
	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(CORSAllowlist())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/timeline", getTimelineHandler(cfg))
			r.Put("/timeline", putTimelineHandler(cfg))

			r.Post("/clips", addClipHandler(cfg))
			r.Post("/clips/text", addTextClipHandler(cfg))
			r.Post("/clips/{clipID}/move", moveClipHandler(cfg))
			r.Post("/clips/{clipID}/trim", trimClipHandler(cfg))
			r.Post("/clips/{clipID}/split", splitClipHandler(cfg))
			r.Post("/clips/{clipID}/transform", transformClipHandler(cfg))
			r.Post("/clips/{clipID}/properties", clipPropertiesHandler(cfg))
			r.Delete("/clips/{clipID}", removeClipHandler(cfg))

			r.Post("/selection", selectClipHandler(cfg))
			r.Delete("/selection", clearSelectionHandler(cfg))

			r.Get("/active", activeClipsHandler(cfg))

			r.Post("/preview/play", previewPlayHandler(cfg))
			r.Post("/preview/pause", previewPauseHandler(cfg))
			r.Post("/preview/seek", previewSeekHandler(cfg))
			r.Post("/preview/scrub", previewScrubHandler(cfg))
			r.Get("/preview", previewStateHandler(cfg))

			r.Post("/subtitles", subtitlesHandler(cfg))

			r.Get("/assets", listAssetsHandler(cfg))
			r.Post("/assets", uploadAssetHandler(cfg))

			r.Get("/revisions", listRevisionsHandler(cfg))
			r.Post("/revisions/{revisionID}/restore", restoreRevisionHandler(cfg))

			r.Get("/export/edl", exportEDLHandler(cfg))
		})

		r.Delete("/assets/{id}", deleteAssetHandler(cfg))
		r.Get("/assets/{id}/media", assetMediaHandler(cfg))
		r.Post("/assets/{id}/denoise", denoiseAssetHandler(cfg))
	})

	return r
}

// openProject resolves the project from the URL, creating it on first
// access. It writes the error response itself when resolution fails.
func openProject(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
		return nil, false
	}

	p, err := cfg.Projects.Open(r.Context(), projectID)
	if err != nil {
		cfg.Logger.Error("failed to open project", "project_id", projectID, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to open project", "INTERNAL_ERROR")
		return nil, false
	}
	return p, true
}

func countClips(tl *timeline.Timeline) int {
	n := 0
	for _, track := range tl.Tracks {
		n += len(track.Clips)
	}
	return n
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		open := cfg.Projects.List()
		projects := make([]ProjectStatusResponse, 0, len(open))
		for _, p := range open {
			clock := p.Session.Clock()
			tl := p.Store.Snapshot()
			projects = append(projects, ProjectStatusResponse{
				ProjectID:   p.ID,
				Playing:     clock.Playing(),
				CurrentTime: clock.CurrentTime(),
				Duration:    tl.Duration,
				ClipCount:   countClips(tl),
			})
		}

		resp := StatusResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  int64(time.Since(cfg.StartTime).Seconds()),
			Projects: projects,
		}
		if cfg.Doctor != nil {
			resp.Tools = cfg.Doctor.Get()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, p.Store.Snapshot())
	}
}

func putTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var tl timeline.Timeline
		if err := json.NewDecoder(r.Body).Decode(&tl); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if tl.ProjectID != p.ID {
			WriteError(w, http.StatusBadRequest, "timeline project mismatch", "BAD_REQUEST")
			return
		}

		p.Store.Reset(&tl)
		cfg.Projects.Flush(r.Context())
		WriteJSON(w, http.StatusOK, p.Store.Snapshot())
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var req AddClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.AssetID == "" {
			WriteError(w, http.StatusBadRequest, "asset_id is required", "BAD_REQUEST")
			return
		}

		a, err := cfg.Assets.Get(r.Context(), req.AssetID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if a == nil || a.ProjectID != p.ID {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}
		if !a.Present {
			WriteError(w, http.StatusConflict, "asset file is missing", "ASSET_MISSING")
			return
		}

		var clipID string
		p.Store.Apply(func(e *timeline.Engine) {
			if clip := e.AddClip(asset.Ref(a)); clip != nil {
				clipID = clip.ID
			}
		})
		if clipID == "" {
			WriteError(w, http.StatusBadRequest, "no track accepts this asset type", "BAD_REQUEST")
			return
		}

		_, clip := p.Store.Snapshot().FindClip(clipID)
		WriteJSON(w, http.StatusCreated, ClipResponse{Clip: clip})
	}
}

func addTextClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var req AddTextClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Text == "" {
			WriteError(w, http.StatusBadRequest, "text is required", "BAD_REQUEST")
			return
		}

		var clipID string
		p.Store.Apply(func(e *timeline.Engine) {
			if clip := e.AddTextClip(req.Text, req.Style, req.Duration, req.Playhead); clip != nil {
				clipID = clip.ID
			}
		})
		if clipID == "" {
			WriteError(w, http.StatusBadRequest, "no text track on timeline", "BAD_REQUEST")
			return
		}

		_, clip := p.Store.Snapshot().FindClip(clipID)
		WriteJSON(w, http.StatusCreated, ClipResponse{Clip: clip})
	}
}

// requireClip resolves the clip from the URL against the current snapshot.
// Mutating handlers use it for the 404 before applying a clamp-or-ignore
// engine operation.
func requireClip(p *project.Project, w http.ResponseWriter, r *http.Request) (string, bool) {
	clipID := chi.URLParam(r, "clipID")
	if clipID == "" {
		WriteError(w, http.StatusBadRequest, "clip id required", "BAD_REQUEST")
		return "", false
	}
	if _, clip := p.Store.Snapshot().FindClip(clipID); clip == nil {
		WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
		return "", false
	}
	return clipID, true
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		clipID, ok := requireClip(p, w, r)
		if !ok {
			return
		}

		var req MoveClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.MoveClip(clipID, req.StartTime)
		})

		_, clip := p.Store.Snapshot().FindClip(clipID)
		WriteJSON(w, http.StatusOK, ClipResponse{Clip: clip})
	}
}

func trimClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		clipID, ok := requireClip(p, w, r)
		if !ok {
			return
		}

		var req TrimClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.TrimClip(clipID, req.StartTime, req.EndTime)
		})

		_, clip := p.Store.Snapshot().FindClip(clipID)
		WriteJSON(w, http.StatusOK, ClipResponse{Clip: clip})
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		clipID, ok := requireClip(p, w, r)
		if !ok {
			return
		}

		var req SplitClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		var newClipID string
		p.Store.Apply(func(e *timeline.Engine) {
			if clip := e.SplitClip(clipID, req.Time); clip != nil {
				newClipID = clip.ID
			}
		})
		if newClipID == "" {
			WriteError(w, http.StatusBadRequest, "split point outside clip", "BAD_REQUEST")
			return
		}

		_, clip := p.Store.Snapshot().FindClip(newClipID)
		WriteJSON(w, http.StatusCreated, ClipResponse{Clip: clip})
	}
}

func transformClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		clipID, ok := requireClip(p, w, r)
		if !ok {
			return
		}

		var req TransformRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.UpdateClipTransform(clipID, req.Update())
		})

		_, clip := p.Store.Snapshot().FindClip(clipID)
		WriteJSON(w, http.StatusOK, ClipResponse{Clip: clip})
	}
}

func clipPropertiesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		clipID, ok := requireClip(p, w, r)
		if !ok {
			return
		}

		var req PropertiesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.UpdateClipProperties(clipID, req.Text, req.Style)
		})

		_, clip := p.Store.Snapshot().FindClip(clipID)
		WriteJSON(w, http.StatusOK, ClipResponse{Clip: clip})
	}
}

func removeClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		clipID, ok := requireClip(p, w, r)
		if !ok {
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.RemoveClip(clipID)
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var req SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.SelectClip(req.ClipID)
		})
		WriteJSON(w, http.StatusOK, ClipResponse{Clip: p.Store.SelectedClip()})
	}
}

func clearSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		p.Store.Apply(func(e *timeline.Engine) {
			e.ClearSelection()
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func activeClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
		if err != nil || t < 0 {
			WriteError(w, http.StatusBadRequest, "t must be a non-negative number", "BAD_REQUEST")
			return
		}

		clips := timeline.ActiveClipsAt(p.Store.Snapshot(), t)
		if clips == nil {
			clips = []timeline.ActiveClip{}
		}
		WriteJSON(w, http.StatusOK, ActiveClipsResponse{Time: t, Clips: clips})
	}
}

func previewPlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		p.Session.Clock().Play()
		writePreviewState(w, p)
	}
}

func previewPauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		p.Session.Clock().Pause()
		writePreviewState(w, p)
	}
}

func previewSeekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Session.Clock().Seek(req.Time)
		writePreviewState(w, p)
	}
}

func previewScrubHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		p.Session.Clock().Scrub(req.Time)
		writePreviewState(w, p)
	}
}

func previewStateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}
		writePreviewState(w, p)
	}
}

func writePreviewState(w http.ResponseWriter, p *project.Project) {
	clock := p.Session.Clock()
	WriteJSON(w, http.StatusOK, PreviewResponse{
		CurrentTime: clock.CurrentTime(),
		Playing:     clock.Playing(),
		Duration:    p.Store.Duration(),
	})
}

func subtitlesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		var req SubtitlesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.AssetID == "" {
			WriteError(w, http.StatusBadRequest, "asset_id is required", "BAD_REQUEST")
			return
		}

		segments := req.Segments
		if len(segments) == 0 {
			generated, err := cfg.AI.GenerateSubtitles(r.Context(), ai.SubtitleRequest{
				AssetID:  req.AssetID,
				MediaURL: "/assets/" + req.AssetID + "/media",
				Language: req.Language,
			})
			if err != nil {
				cfg.Logger.Error("subtitle generation failed", "asset_id", req.AssetID, "error", err)
				WriteError(w, http.StatusBadGateway, "subtitle generation failed", "UPSTREAM_ERROR")
				return
			}
			segments = generated
		}
		if len(segments) == 0 {
			WriteJSON(w, http.StatusOK, SubtitlesResponse{ClipsAdded: 0})
			return
		}

		converted := make([]timeline.SubtitleSegment, len(segments))
		for i, seg := range segments {
			converted[i] = timeline.SubtitleSegment{
				StartTime: seg.StartTime,
				EndTime:   seg.EndTime,
				Text:      seg.Text,
			}
		}

		var added int
		p.Store.Apply(func(e *timeline.Engine) {
			added = e.AddSubtitleClips(req.AssetID, converted)
		})
		WriteJSON(w, http.StatusOK, SubtitlesResponse{ClipsAdded: added})
	}
}

func listAssetsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		assets, err := cfg.Assets.ListByProject(r.Context(), projectID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list assets", "INTERNAL_ERROR")
			return
		}

		resp := AssetsResponse{Assets: make([]AssetResponse, len(assets))}
		for i, a := range assets {
			resp.Assets[i] = AssetToResponse(a)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func uploadAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file field is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		assetType := r.FormValue("type")
		probe := asset.Probe{
			Duration: parseFloatField(r.FormValue("duration")),
			Width:    parseIntField(r.FormValue("width")),
			Height:   parseIntField(r.FormValue("height")),
		}

		a, err := cfg.Assets.Register(r.Context(), projectID, assetType,
			header.Filename, header.Header.Get("Content-Type"), header.Size, probe, file)
		if err != nil {
			switch {
			case errors.Is(err, asset.ErrUnsupportedType),
				errors.Is(err, asset.ErrUnsupportedExt),
				errors.Is(err, asset.ErrTooLarge):
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			default:
				cfg.Logger.Error("asset registration failed", "project_id", projectID, "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to store asset", "INTERNAL_ERROR")
			}
			return
		}

		WriteJSON(w, http.StatusCreated, AssetToResponse(a))
	}
}

func deleteAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "asset id required", "BAD_REQUEST")
			return
		}

		if err := cfg.Assets.Delete(r.Context(), id); err != nil {
			if errors.Is(err, asset.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func assetMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "asset id required", "BAD_REQUEST")
			return
		}

		a, err := cfg.Assets.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if a == nil {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}

		if err := cfg.Streamer.ServeFile(w, r, a.StoragePath, a.MimeType); err != nil {
			switch {
			case errors.Is(err, media.ErrNotFound):
				// The file disappeared underneath us; record that so clients
				// stop offering it before the watcher catches up.
				if markErr := cfg.Assets.MarkMissingByPath(r.Context(), a.StoragePath); markErr != nil {
					cfg.Logger.Warn("failed to mark asset missing", "asset_id", id, "error", markErr)
				}
				WriteError(w, http.StatusNotFound, "asset file is missing", "FILE_MISSING")
			case errors.Is(err, media.ErrOutsideRoot):
				WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			default:
				cfg.Logger.Error("media streaming error", "asset_id", id, "error", err)
			}
		}
	}
}

// denoiseAssetHandler sends an asset's audio through the AI service's noise
// removal. The service replies with a URL for the processed media; the client
// uploads that file through the normal asset route once it has fetched it.
func denoiseAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "asset id required", "BAD_REQUEST")
			return
		}

		a, err := cfg.Assets.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if a == nil {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}
		if !a.Present {
			WriteError(w, http.StatusConflict, "asset file is missing", "ASSET_MISSING")
			return
		}
		if a.Type != asset.TypeAudio && a.Type != asset.TypeVideo {
			WriteError(w, http.StatusBadRequest, "asset has no audio to denoise", "BAD_REQUEST")
			return
		}

		result, err := cfg.AI.RemoveNoise(r.Context(), ai.DenoiseRequest{
			AssetID:  a.ID,
			MediaURL: "/assets/" + a.ID + "/media",
		})
		if err != nil {
			cfg.Logger.Error("noise removal failed", "asset_id", id, "error", err)
			WriteError(w, http.StatusBadGateway, "noise removal failed", "UPSTREAM_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, DenoiseResponse{
			AssetID:  result.AssetID,
			MediaURL: result.MediaURL,
		})
	}
}

func listRevisionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		revisions, err := cfg.Snapshots.List(projectID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list revisions", "INTERNAL_ERROR")
			return
		}

		resp := RevisionsResponse{Revisions: make([]RevisionResponse, len(revisions))}
		for i, rev := range revisions {
			resp.Revisions[i] = RevisionToResponse(rev)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func restoreRevisionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		revisionID := chi.URLParam(r, "revisionID")
		tl, err := cfg.Snapshots.Load(p.ID, revisionID)
		if err != nil {
			WriteError(w, http.StatusNotFound, "revision not found", "NOT_FOUND")
			return
		}

		p.Store.Reset(tl)
		cfg.Projects.Flush(r.Context())
		WriteJSON(w, http.StatusOK, p.Store.Snapshot())
	}
}

func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseIntField(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

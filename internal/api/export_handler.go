package api

import (
	"net/http"

	"github.com/abdullahpichoo/ai-video-editor/internal/export"
)

// exportEDLHandler renders the project's video track as a CMX 3600 edit
// decision list. Query parameters: title (defaults to the project id) and
// frame_rate (defaults to the configured project rate).
func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := openProject(cfg, w, r)
		if !ok {
			return
		}

		title := export.SanitizeName(r.URL.Query().Get("title"), 120)
		if title == "" {
			title = p.ID
		}

		frameRate := parseFloatField(r.URL.Query().Get("frame_rate"))
		if frameRate <= 0 {
			frameRate = cfg.FrameRate
		}

		cuts := export.BuildCutList(p.Store.Snapshot())
		if len(cuts) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no video clips to export", "EMPTY_TIMELINE")
			return
		}

		edl := export.GenerateEDL(cuts, title, frameRate)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+title+`.edl"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(edl))
	}
}

package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for a storage path that escapes the media
// directory.
var ErrOutsideRoot = errors.New("storage path outside media root")

// ErrNotFound is returned when the underlying file is missing, typically
// because it was deleted outside the editor.
var ErrNotFound = errors.New("media file not found")

// Streamer serves asset files from a single media root. Storage paths are
// relative to the root; anything resolving outside it is rejected.
type Streamer struct {
	root   string
	logger *slog.Logger
}

func NewStreamer(root string, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Streamer{root: root, logger: logger.With("component", "media")}
}

// Resolve maps a storage path to an absolute path under the media root.
func (s *Streamer) Resolve(storagePath string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(storagePath))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// ServeFile streams the file at storagePath, honoring a Range request
// header. contentType overrides extension-based detection when non-empty.
// A missing file returns ErrNotFound so the caller can mark the asset
// absent rather than report a server fault.
func (s *Streamer) ServeFile(w http.ResponseWriter, r *http.Request, storagePath, contentType string) error {
	full, err := s.Resolve(storagePath)
	if err != nil {
		return err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat media file: %w", err)
	}
	size := stat.Size()

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(full))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	br, err := ParseByteRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case errors.Is(err, ErrInvalidRange):
		// A malformed Range header degrades to a full response.
		br = nil
	case err != nil:
		return err
	}

	if br == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, file); err != nil {
			s.logger.Debug("media stream aborted", "path", storagePath, "error", err)
		}
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	w.Header().Set("Content-Range", br.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(br.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek media file: %w", err)
	}
	if _, err := io.CopyN(w, file, br.Length()); err != nil {
		s.logger.Debug("media stream aborted", "path", storagePath, "error", err)
	}
	return nil
}

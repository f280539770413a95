// Package asset manages the media files a project can place on its
// timeline: upload validation, on-disk storage, and the catalog records
// clips reference by asset ID.
package asset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TypeVideo = "video"
	TypeAudio = "audio"
	TypeImage = "image"
)

var (
	ErrUnsupportedType = errors.New("unsupported asset type")
	ErrUnsupportedExt  = errors.New("unsupported file extension")
	ErrTooLarge        = errors.New("file exceeds size limit")
	ErrNotFound        = errors.New("asset not found")
)

// Asset is one cataloged media file. StoragePath is relative to the media
// root. Present is cleared when the file disappears from disk so the editor
// can surface missing media instead of failing playback.
type Asset struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Type         string    `json:"type"`
	OriginalName string    `json:"original_name"`
	StoragePath  string    `json:"storage_path"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Duration     float64   `json:"duration,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Present      bool      `json:"present"`
	CreatedAt    time.Time `json:"created_at"`
}

// Limit describes what uploads a type accepts.
type Limit struct {
	MaxSize    int64
	Extensions map[string]bool
}

var limits = map[string]Limit{
	TypeVideo: {
		MaxSize:    100 << 20,
		Extensions: map[string]bool{".mp4": true, ".webm": true},
	},
	TypeImage: {
		MaxSize:    5 << 20,
		Extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true},
	},
	TypeAudio: {
		MaxSize:    10 << 20,
		Extensions: map[string]bool{".mp3": true, ".wav": true, ".aac": true},
	},
}

// LimitFor returns the upload limit for an asset type.
func LimitFor(assetType string) (Limit, bool) {
	l, ok := limits[assetType]
	return l, ok
}

// ValidateUpload checks an upload's type, extension and size against the
// per-type limits.
func ValidateUpload(assetType, filename string, size int64) error {
	limit, ok := limits[assetType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, assetType)
	}
	ext := strings.ToLower(extension(filename))
	if !limit.Extensions[ext] {
		return fmt.Errorf("%w: %s for %s", ErrUnsupportedExt, ext, assetType)
	}
	if size > limit.MaxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, limit.MaxSize)
	}
	return nil
}

func extension(filename string) string {
	if idx := strings.LastIndexByte(filename, '.'); idx != -1 {
		return filename[idx:]
	}
	return ""
}

func NewID() string {
	return uuid.NewString()
}

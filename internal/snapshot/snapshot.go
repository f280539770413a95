// Package snapshot keeps zstd-compressed revisions of project timelines on
// disk, giving the editor a restore history independent of the live
// database row.
package snapshot

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/abdullahpichoo/ai-video-editor/internal/timeline"
)

// DefaultCompressionLevel is zstd level 3, the same speed/ratio tradeoff the
// encoder defaults to.
const DefaultCompressionLevel = 3

// Revision describes one stored timeline snapshot.
type Revision struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
	ClipCount int       `json:"clip_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists revisions under baseDir/revisions/<project>/<revision>/ as
// a metadata.json plus a timeline.zst. Identical consecutive captures are
// deduplicated by content hash.
type Store struct {
	baseDir   string
	retention int
	mu        sync.RWMutex
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	logger    *slog.Logger
}

func NewStore(baseDir string, compressionLevel int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	encoder, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	decoder, _ := zstd.NewReader(nil)

	return &Store{
		baseDir: baseDir,
		encoder: encoder,
		decoder: decoder,
		logger:  logger.With("component", "snapshot"),
	}
}

// SetRetention caps how many revisions each project keeps. Captures beyond
// the cap remove the oldest revisions. Zero means unbounded.
func (s *Store) SetRetention(keep int) {
	s.mu.Lock()
	s.retention = keep
	s.mu.Unlock()
}

func (s *Store) projectDir(projectID string) string {
	return filepath.Join(s.baseDir, "revisions", projectID)
}

// Capture stores a revision of the timeline and returns its ID. When the
// timeline is identical to the most recent revision, that revision's ID is
// returned and nothing is written.
func (s *Store) Capture(projectID string, tl *timeline.Timeline) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(tl)
	if err != nil {
		return "", fmt.Errorf("marshal timeline: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(payload))

	if latest := s.latestLocked(projectID); latest != nil && latest.Hash == hash {
		return latest.ID, nil
	}

	rev := Revision{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Hash:      hash,
		ClipCount: countClips(tl),
		CreatedAt: time.Now(),
	}
	revDir := filepath.Join(s.projectDir(projectID), rev.ID)
	if err := os.MkdirAll(revDir, 0o755); err != nil {
		return "", fmt.Errorf("create revision dir: %w", err)
	}

	compressed := s.encoder.EncodeAll(payload, nil)
	rev.Size = int64(len(compressed))
	if err := os.WriteFile(filepath.Join(revDir, "timeline.zst"), compressed, 0o644); err != nil {
		return "", fmt.Errorf("write revision payload: %w", err)
	}

	meta, err := json.MarshalIndent(rev, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal revision metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(revDir, "metadata.json"), meta, 0o644); err != nil {
		return "", fmt.Errorf("write revision metadata: %w", err)
	}

	if s.retention > 0 {
		if err := s.pruneLocked(projectID, s.retention); err != nil {
			s.logger.Warn("revision prune failed", "project_id", projectID, "error", err)
		}
	}

	s.logger.Debug("revision captured",
		"project_id", projectID, "revision_id", rev.ID, "size", rev.Size)
	return rev.ID, nil
}

// List returns a project's revisions, newest first.
func (s *Store) List(projectID string) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(projectID)
}

func (s *Store) listLocked(projectID string) ([]Revision, error) {
	entries, err := os.ReadDir(s.projectDir(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var revisions []Revision
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := os.ReadFile(filepath.Join(s.projectDir(projectID), entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var rev Revision
		if json.Unmarshal(meta, &rev) == nil {
			revisions = append(revisions, rev)
		}
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].CreatedAt.After(revisions[j].CreatedAt)
	})
	return revisions, nil
}

func (s *Store) latestLocked(projectID string) *Revision {
	revisions, err := s.listLocked(projectID)
	if err != nil || len(revisions) == 0 {
		return nil
	}
	return &revisions[0]
}

// Load decompresses a stored revision back into a timeline.
func (s *Store) Load(projectID, revisionID string) (*timeline.Timeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	compressed, err := os.ReadFile(filepath.Join(s.projectDir(projectID), revisionID, "timeline.zst"))
	if err != nil {
		return nil, fmt.Errorf("read revision payload: %w", err)
	}
	payload, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress revision: %w", err)
	}

	var tl timeline.Timeline
	if err := json.Unmarshal(payload, &tl); err != nil {
		return nil, fmt.Errorf("unmarshal revision: %w", err)
	}
	return &tl, nil
}

// Delete removes one revision.
func (s *Store) Delete(projectID, revisionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(filepath.Join(s.projectDir(projectID), revisionID))
}

// Prune keeps the newest keep revisions of a project and removes the rest.
func (s *Store) Prune(projectID string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(projectID, keep)
}

func (s *Store) pruneLocked(projectID string, keep int) error {
	revisions, err := s.listLocked(projectID)
	if err != nil {
		return err
	}
	for _, rev := range revisions[min(keep, len(revisions)):] {
		if err := os.RemoveAll(filepath.Join(s.projectDir(projectID), rev.ID)); err != nil {
			return err
		}
	}
	return nil
}

func countClips(tl *timeline.Timeline) int {
	n := 0
	for _, track := range tl.Tracks {
		n += len(track.Clips)
	}
	return n
}

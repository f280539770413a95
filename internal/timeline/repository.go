package timeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository persists one timeline per project. Get returns (nil, nil) when
// the project has no saved timeline yet; callers initialize a default.
type Repository interface {
	Get(ctx context.Context, projectID string) (*Timeline, error)
	Save(ctx context.Context, tl *Timeline) error
	Delete(ctx context.Context, projectID string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, projectID string) (*Timeline, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, duration, tracks, updated_at
		FROM timelines WHERE project_id = ?
	`, projectID)

	var tl Timeline
	var tracksJSON string
	var updatedAt string

	err := row.Scan(&tl.ID, &tl.ProjectID, &tl.Duration, &tracksJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tracksJSON), &tl.Tracks); err != nil {
		return nil, fmt.Errorf("decode tracks for project %s: %w", projectID, err)
	}
	tl.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &tl, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, tl *Timeline) error {
	tracksJSON, err := json.Marshal(tl.Tracks)
	if err != nil {
		return fmt.Errorf("encode tracks: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO timelines (project_id, id, duration, tracks, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			id = excluded.id,
			duration = excluded.duration,
			tracks = excluded.tracks,
			updated_at = excluded.updated_at
	`, tl.ProjectID, tl.ID, tl.Duration, string(tracksJSON), time.Now().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) Delete(ctx context.Context, projectID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM timelines WHERE project_id = ?", projectID)
	return err
}

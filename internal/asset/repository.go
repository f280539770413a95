package asset

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Asset) error
	Get(ctx context.Context, id string) (*Asset, error)
	GetByStoragePath(ctx context.Context, storagePath string) (*Asset, error)
	ListByProject(ctx context.Context, projectID string) ([]*Asset, error)
	Delete(ctx context.Context, id string) error
	UpdatePresent(ctx context.Context, id string, present bool) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const assetColumns = `id, project_id, type, original_name, storage_path, mime_type, size, duration, width, height, present, created_at`

func (r *SQLiteRepository) Create(ctx context.Context, a *Asset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProjectID, a.Type, a.OriginalName, a.StoragePath, a.MimeType,
		a.Size, a.Duration, a.Width, a.Height, boolToInt(a.Present),
		a.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Asset, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+assetColumns+` FROM assets WHERE id = ?
	`, id)
	return scanAsset(row)
}

func (r *SQLiteRepository) GetByStoragePath(ctx context.Context, storagePath string) (*Asset, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+assetColumns+` FROM assets WHERE storage_path = ?
	`, storagePath)
	return scanAsset(row)
}

func (r *SQLiteRepository) ListByProject(ctx context.Context, projectID string) ([]*Asset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assetColumns+` FROM assets WHERE project_id = ? ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*Asset
	for rows.Next() {
		var a Asset
		var present int
		var createdAt string
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Type, &a.OriginalName, &a.StoragePath,
			&a.MimeType, &a.Size, &a.Duration, &a.Width, &a.Height, &present, &createdAt); err != nil {
			return nil, err
		}
		a.Present = present == 1
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdatePresent(ctx context.Context, id string, present bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE assets SET present = ? WHERE id = ?", boolToInt(present), id)
	return err
}

func scanAsset(row *sql.Row) (*Asset, error) {
	var a Asset
	var present int
	var createdAt string

	err := row.Scan(&a.ID, &a.ProjectID, &a.Type, &a.OriginalName, &a.StoragePath,
		&a.MimeType, &a.Size, &a.Duration, &a.Width, &a.Height, &present, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Present = present == 1
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package database

import (
	"context"
	"errors"
	"time"

	"datashare-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

var (
	ErrFileNotFound = errors.New("file not found or deleted")
	ErrNotFileOwner = errors.New("requester does not own this file")
)

const fileColumns = `id, id_user, file_name, stored_name, file_password, deleted, creation_date, end_date`

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.FileName,
		&file.StoredName,
		&file.PasswordHash,
		&file.Deleted,
		&file.CreatedAt,
		&file.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

type CreateFileParams struct {
	OwnerID      int64
	FileName     string
	StoredName   string
	PasswordHash *string
	ExpiresAt    time.Time
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	query := `
		INSERT INTO files (id_user, file_name, stored_name, file_password, deleted, creation_date, end_date)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING ` + fileColumns

	row := q.db.QueryRow(ctx, query,
		arg.OwnerID,
		arg.FileName,
		arg.StoredName,
		arg.PasswordHash,
		time.Now(),
		arg.ExpiresAt,
	)

	return scanFile(row)
}

// GetFileByID returns the file row, or nil when it does not exist or has
// been soft-deleted. Expiry is not checked here; callers compare end_date
// against the clock themselves.
func (q *Queries) GetFileByID(ctx context.Context, id int64) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND deleted = FALSE`
	return scanFile(q.db.QueryRow(ctx, query, id))
}

type FileWithOwner struct {
	models.File
	OwnerEmail string
}

func (q *Queries) GetFileWithOwner(ctx context.Context, id int64) (*FileWithOwner, error) {
	query := `
		SELECT f.id, f.id_user, f.file_name, f.stored_name, f.file_password, f.deleted, f.creation_date, f.end_date, u.email
		FROM files f
		JOIN users u ON u.id = f.id_user
		WHERE f.id = $1 AND f.deleted = FALSE
	`
	var fo FileWithOwner
	err := q.db.QueryRow(ctx, query, id).Scan(
		&fo.ID,
		&fo.OwnerID,
		&fo.FileName,
		&fo.StoredName,
		&fo.PasswordHash,
		&fo.Deleted,
		&fo.CreatedAt,
		&fo.ExpiresAt,
		&fo.OwnerEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &fo, nil
}

// ListFilesByOwner returns the owner's non-deleted files, newest first.
func (q *Queries) ListFilesByOwner(ctx context.Context, ownerID int64) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id_user = $1 AND deleted = FALSE
		ORDER BY creation_date DESC
	`
	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.OwnerID,
			&file.FileName,
			&file.StoredName,
			&file.PasswordHash,
			&file.Deleted,
			&file.CreatedAt,
			&file.ExpiresAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if files == nil {
		return []models.File{}, nil
	}

	return files, nil
}

// SoftDeleteFile marks the file deleted. Only the owner may delete;
// ErrFileNotFound when no live row has that id, ErrNotFileOwner when the
// requester is not the owner. The blob on disk is left in place.
func (q *Queries) SoftDeleteFile(ctx context.Context, fileID, requesterID int64) error {
	var ownerID int64
	err := q.db.QueryRow(ctx,
		`SELECT id_user FROM files WHERE id = $1 AND deleted = FALSE`, fileID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFileNotFound
		}
		return err
	}

	if ownerID != requesterID {
		return ErrNotFileOwner
	}

	tag, err := q.db.Exec(ctx,
		`UPDATE files SET deleted = TRUE WHERE id = $1 AND deleted = FALSE`, fileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}

	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fileshare/internal/model"
	"fileshare/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, file_id, owner_id, name, blob_key, size, content_type, created_at`

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.FileID,
		f.OwnerID,
		f.Name,
		f.BlobKey,
		f.Size,
		f.ContentType,
		f.CreatedAt,
	)
	out, err := scanFile(row)
	if err != nil {
		if isUniqueViolation(err, "files_file_id_key") {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return out, nil
}

// FindByFileID fetches a single file by its public short id.
func (r *FilePostgres) FindByFileID(ctx context.Context, fileID string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE file_id = $1`
	f, err := scanFile(r.db.QueryRowContext(ctx, q, fileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// UpdateName sets the display name. Owner and blob key are never touched.
func (r *FilePostgres) UpdateName(ctx context.Context, id, name string) (*model.File, error) {
	const q = `UPDATE files SET name = $2 WHERE id = $1 RETURNING ` + fileColumns
	f, err := scanFile(r.db.QueryRowContext(ctx, q, id, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a file row by internal id.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// WithFileLock locks the file row and runs fn inside the same transaction.
func (r *FilePostgres) WithFileLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockFile(ctx, tx, id); err != nil {
			return err
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// ListByOwner returns files owned by ownerID.
func (r *FilePostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, q, ownerID)
}

// ListNotOwnedBy returns every file not owned by ownerID.
func (r *FilePostgres) ListNotOwnedBy(ctx context.Context, ownerID string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id <> $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, q, ownerID)
}

func (r *FilePostgres) list(ctx context.Context, q string, args ...any) ([]model.File, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		var f model.File
		if err := rows.Scan(
			&f.ID,
			&f.FileID,
			&f.OwnerID,
			&f.Name,
			&f.BlobKey,
			&f.Size,
			&f.ContentType,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanFile(row *sql.Row) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.FileID,
		&f.OwnerID,
		&f.Name,
		&f.BlobKey,
		&f.Size,
		&f.ContentType,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fileshare/internal/model"
	"fileshare/internal/repository"
)

// AccessPostgres is a PostgreSQL implementation of repository.AccessRepository.
type AccessPostgres struct {
	db *sql.DB
}

// NewAccessPostgres creates a new AccessPostgres repository.
func NewAccessPostgres(db *sql.DB) *AccessPostgres {
	return &AccessPostgres{db: db}
}

var _ repository.AccessRepository = (*AccessPostgres)(nil)

const accessSelect = `
	SELECT a.id, a.file_id, a.user_id, a.type, u.email, u.first_name, u.last_name, a.created_at
	FROM file_accesses a
	JOIN users u ON u.id = a.user_id
`

// Find returns a single grant.
func (r *AccessPostgres) Find(ctx context.Context, fileID, userID string) (*model.Access, error) {
	const q = accessSelect + `WHERE a.file_id = $1 AND a.user_id = $2`
	items, err := listAccesses(ctx, r.db, q, fileID, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return &items[0], nil
}

// Grant upserts a grant under the file row lock.
func (r *AccessPostgres) Grant(ctx context.Context, fileID, userID, accessType string) ([]model.Access, error) {
	const q = `
		INSERT INTO file_accesses (id, file_id, user_id, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_id, user_id) DO UPDATE SET type = EXCLUDED.type
	`
	var out []model.Access
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockFile(ctx, tx, fileID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, uuid.NewString(), fileID, userID, accessType, time.Now().UTC()); err != nil {
			return fmt.Errorf("upsert access: %w", err)
		}
		var err error
		out, err = listAccesses(ctx, tx, accessSelect+`WHERE a.file_id = $1 ORDER BY a.created_at, a.id`, fileID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Revoke deletes a grant under the file row lock.
func (r *AccessPostgres) Revoke(ctx context.Context, fileID, userID string) ([]model.Access, error) {
	const q = `DELETE FROM file_accesses WHERE file_id = $1 AND user_id = $2`
	var out []model.Access
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockFile(ctx, tx, fileID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, fileID, userID)
		if err != nil {
			return fmt.Errorf("delete access: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		out, err = listAccesses(ctx, tx, accessSelect+`WHERE a.file_id = $1 ORDER BY a.created_at, a.id`, fileID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByFile returns the grants of one file.
func (r *AccessPostgres) ListByFile(ctx context.Context, fileID string) ([]model.Access, error) {
	return listAccesses(ctx, r.db, accessSelect+`WHERE a.file_id = $1 ORDER BY a.created_at, a.id`, fileID)
}

// ListByFiles returns grants of several files in one query.
func (r *AccessPostgres) ListByFiles(ctx context.Context, fileIDs []string) (map[string][]model.Access, error) {
	out := make(map[string][]model.Access, len(fileIDs))
	if len(fileIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(fileIDs))
	args := make([]any, len(fileIDs))
	for i, id := range fileIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := accessSelect + `WHERE a.file_id IN (` + strings.Join(placeholders, ", ") + `) ORDER BY a.created_at, a.id`
	items, err := listAccesses(ctx, r.db, q, args...)
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		out[a.FileID] = append(out[a.FileID], a)
	}
	return out, nil
}

// DeleteByFile removes every grant of a file.
func (r *AccessPostgres) DeleteByFile(ctx context.Context, fileID string) error {
	const q = `DELETE FROM file_accesses WHERE file_id = $1`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, fileID)
	return err
}

// lockFile takes a row lock on the file so grant changes and deletion of one file run one at a time.
func lockFile(ctx context.Context, tx *sql.Tx, fileID string) error {
	const q = `SELECT id FROM files WHERE id = $1 FOR UPDATE`
	var id string
	if err := tx.QueryRowContext(ctx, q, fileID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("lock file: %w", err)
	}
	return nil
}

func listAccesses(ctx context.Context, db querier, q string, args ...any) ([]model.Access, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Access, 0)
	for rows.Next() {
		var a model.Access
		if err := rows.Scan(
			&a.ID,
			&a.FileID,
			&a.UserID,
			&a.Type,
			&a.Email,
			&a.FirstName,
			&a.LastName,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

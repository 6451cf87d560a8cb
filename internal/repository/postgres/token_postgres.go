package postgres

import (
	"context"
	"database/sql"
	"time"

	"fileshare/internal/repository"
)

// TokenPostgres stores revoked bearer token ids until they would have expired anyway.
type TokenPostgres struct {
	db *sql.DB
}

// NewTokenPostgres creates a new TokenPostgres repository.
func NewTokenPostgres(db *sql.DB) *TokenPostgres {
	return &TokenPostgres{db: db}
}

var _ repository.TokenRepository = (*TokenPostgres)(nil)

// Revoke records tokenID as revoked. Revoking twice is a no-op.
func (r *TokenPostgres) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	const q = `
		INSERT INTO revoked_tokens (token_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, tokenID, expiresAt)
	return err
}

// IsRevoked reports whether tokenID was revoked.
func (r *TokenPostgres) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, q, tokenID).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

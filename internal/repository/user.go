package repository

import (
	"context"
	"time"

	"fileshare/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByEmail looks a user up by normalized email. Returns ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID looks a user up by ID. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TokenRepository records bearer tokens revoked before their expiry.
type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

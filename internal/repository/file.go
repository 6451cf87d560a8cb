package repository

import (
	"context"

	"fileshare/internal/model"
)

// FileRepository persists file metadata. Blob bytes live in storage.Storage.
type FileRepository interface {
	// Create inserts a file record. Returns ErrDuplicate when the public file_id is taken.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByFileID returns a file by its public short id.
	FindByFileID(ctx context.Context, fileID string) (*model.File, error)

	// UpdateName changes the display name of the file with internal id.
	UpdateName(ctx context.Context, id, name string) (*model.File, error)

	// Delete removes the file record with internal id. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error

	// WithFileLock runs fn in one transaction holding the row lock of file id.
	// Repository calls made with the ctx passed to fn join that transaction.
	// Returns ErrNotFound when the file row does not exist.
	WithFileLock(ctx context.Context, id string, fn func(ctx context.Context) error) error

	// ListByOwner returns files owned by ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.File, error)

	// ListNotOwnedBy returns every file whose owner is not ownerID, newest first.
	ListNotOwnedBy(ctx context.Context, ownerID string) ([]model.File, error)
}

// AccessRepository persists file grants. fileID arguments are internal file ids.
//
// Grant and Revoke lock the file row for the duration of their transaction so
// concurrent mutations of the same file's grant set are serialized.
type AccessRepository interface {
	// Find returns the grant of fileID to userID, or ErrNotFound.
	Find(ctx context.Context, fileID, userID string) (*model.Access, error)

	// Grant upserts the (file, user) grant and returns the file's full grant list.
	Grant(ctx context.Context, fileID, userID, accessType string) ([]model.Access, error)

	// Revoke deletes the (file, user) grant and returns the remaining list.
	// Returns ErrNotFound when no grant was deleted.
	Revoke(ctx context.Context, fileID, userID string) ([]model.Access, error)

	// ListByFile returns the grants of a file, oldest first.
	ListByFile(ctx context.Context, fileID string) ([]model.Access, error)

	// ListByFiles returns grants for several files keyed by file id.
	ListByFiles(ctx context.Context, fileIDs []string) (map[string][]model.Access, error)

	// DeleteByFile removes every grant of a file. Call it under FileRepository.WithFileLock.
	DeleteByFile(ctx context.Context, fileID string) error
}

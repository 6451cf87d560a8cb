package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"fileshare/internal/metrics"
	"fileshare/internal/model"
	"fileshare/internal/policy"
	"fileshare/internal/repository"
)

// AccessService is the access control ledger for file grants.
type AccessService interface {
	// Grant gives the user with granteeEmail co-author access to the file.
	// Granting twice keeps a single grant. Returns the file's full grant list.
	Grant(ctx context.Context, fileID string, actor *model.User, granteeEmail string) ([]model.Access, error)

	// Revoke removes the grant of granteeEmail. Returns the remaining grant list.
	Revoke(ctx context.Context, fileID string, actor *model.User, granteeEmail string) ([]model.Access, error)

	// ListFor returns the grants of a file.
	ListFor(ctx context.Context, fileID string) ([]model.Access, error)

	// ListForFiles returns grants of several files keyed by internal file id.
	ListForFiles(ctx context.Context, files []model.File) (map[string][]model.Access, error)

	// PurgeFile removes every grant of f. It is registered as a FileService delete hook.
	PurgeFile(ctx context.Context, f *model.File) error
}

type accessService struct {
	files    repository.FileRepository
	users    repository.UserRepository
	accesses repository.AccessRepository
	metrics  *metrics.Metrics
}

// NewAccessService constructs a new AccessService.
func NewAccessService(files repository.FileRepository, users repository.UserRepository, accesses repository.AccessRepository, m *metrics.Metrics) AccessService {
	return &accessService{files: files, users: users, accesses: accesses, metrics: m}
}

// ownedFile resolves fileID and requires actor to hold write rights on it.
func (s *accessService) ownedFile(ctx context.Context, fileID string, actor *model.User) (*model.File, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	f, err := s.files.FindByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	if !policy.CanAccess(actor, f, policy.Write) {
		return nil, ErrNotOwner
	}
	return f, nil
}

func (s *accessService) Grant(ctx context.Context, fileID string, actor *model.User, granteeEmail string) (out []model.Access, err error) {
	ctx, span := startSpan(ctx, "AccessService.Grant", attribute.String("file.id", fileID))
	defer func() { endSpan(span, err) }()

	file, err := s.ownedFile(ctx, fileID, actor)
	if err != nil {
		return nil, err
	}
	email := model.NormalizeEmail(granteeEmail)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if email == model.NormalizeEmail(actor.Email) {
		return nil, ErrSelfGrant
	}
	grantee, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find grantee: %w", err)
	}

	list, err := s.accesses.Grant(ctx, file.ID, grantee.ID, model.DefaultAccessType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("grant access: %w", err)
	}
	s.metrics.AccessChange("grant")
	return list, nil
}

func (s *accessService) Revoke(ctx context.Context, fileID string, actor *model.User, granteeEmail string) (out []model.Access, err error) {
	ctx, span := startSpan(ctx, "AccessService.Revoke", attribute.String("file.id", fileID))
	defer func() { endSpan(span, err) }()

	file, err := s.ownedFile(ctx, fileID, actor)
	if err != nil {
		return nil, err
	}
	email := model.NormalizeEmail(granteeEmail)
	if email == "" {
		return nil, ErrEmptyEmail
	}

	grantee, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessNotFound
		}
		return nil, fmt.Errorf("find grantee: %w", err)
	}
	if _, err := s.accesses.Find(ctx, file.ID, grantee.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessNotFound
		}
		return nil, fmt.Errorf("find access: %w", err)
	}
	// the owner may not revoke their own email
	if email == model.NormalizeEmail(actor.Email) {
		return nil, ErrSelfRevoke
	}

	list, err := s.accesses.Revoke(ctx, file.ID, grantee.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessNotFound
		}
		return nil, fmt.Errorf("revoke access: %w", err)
	}
	s.metrics.AccessChange("revoke")
	return list, nil
}

func (s *accessService) ListFor(ctx context.Context, fileID string) ([]model.Access, error) {
	f, err := s.files.FindByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return s.accesses.ListByFile(ctx, f.ID)
}

func (s *accessService) ListForFiles(ctx context.Context, files []model.File) (map[string][]model.Access, error) {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return s.accesses.ListByFiles(ctx, ids)
}

func (s *accessService) PurgeFile(ctx context.Context, f *model.File) error {
	if f == nil {
		return nil
	}
	if err := s.accesses.DeleteByFile(ctx, f.ID); err != nil {
		return fmt.Errorf("purge accesses: %w", err)
	}
	return nil
}

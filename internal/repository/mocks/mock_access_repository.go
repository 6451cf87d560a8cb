package mocks

import (
	"context"

	"fileshare/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockAccessRepository struct {
	mock.Mock
}

func (m *MockAccessRepository) Find(ctx context.Context, fileID, userID string) (*model.Access, error) {
	args := m.Called(ctx, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Access), args.Error(1)
}

func (m *MockAccessRepository) Grant(ctx context.Context, fileID, userID, accessType string) ([]model.Access, error) {
	args := m.Called(ctx, fileID, userID, accessType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Access), args.Error(1)
}

func (m *MockAccessRepository) Revoke(ctx context.Context, fileID, userID string) ([]model.Access, error) {
	args := m.Called(ctx, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Access), args.Error(1)
}

func (m *MockAccessRepository) ListByFile(ctx context.Context, fileID string) ([]model.Access, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Access), args.Error(1)
}

func (m *MockAccessRepository) ListByFiles(ctx context.Context, fileIDs []string) (map[string][]model.Access, error) {
	args := m.Called(ctx, fileIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.Access), args.Error(1)
}

func (m *MockAccessRepository) DeleteByFile(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

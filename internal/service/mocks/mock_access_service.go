package mocks

import (
	"context"

	"fileshare/internal/model"
	"fileshare/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAccessService struct {
	mock.Mock
}

var _ service.AccessService = (*MockAccessService)(nil)

func (m *MockAccessService) Grant(ctx context.Context, fileID string, actor *model.User, granteeEmail string) ([]model.Access, error) {
	args := m.Called(ctx, fileID, actor, granteeEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Access), args.Error(1)
}

func (m *MockAccessService) Revoke(ctx context.Context, fileID string, actor *model.User, granteeEmail string) ([]model.Access, error) {
	args := m.Called(ctx, fileID, actor, granteeEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Access), args.Error(1)
}

func (m *MockAccessService) ListFor(ctx context.Context, fileID string) ([]model.Access, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Access), args.Error(1)
}

func (m *MockAccessService) ListForFiles(ctx context.Context, files []model.File) (map[string][]model.Access, error) {
	args := m.Called(ctx, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.Access), args.Error(1)
}

func (m *MockAccessService) PurgeFile(ctx context.Context, f *model.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

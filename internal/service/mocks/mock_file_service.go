package mocks

import (
	"context"
	"io"
	"time"

	"fileshare/internal/model"
	"fileshare/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

var _ service.FileService = (*MockFileService)(nil)

func (m *MockFileService) Create(ctx context.Context, owner *model.User, up service.Upload) (*model.File, error) {
	args := m.Called(ctx, owner, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Upload(ctx context.Context, owner *model.User, uploads []service.Upload) ([]service.UploadResult, error) {
	args := m.Called(ctx, owner, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.UploadResult), args.Error(1)
}

func (m *MockFileService) Rename(ctx context.Context, fileID string, actor *model.User, newName string) (*model.File, error) {
	args := m.Called(ctx, fileID, actor, newName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, fileID string, actor *model.User) error {
	args := m.Called(ctx, fileID, actor)
	return args.Error(0)
}

func (m *MockFileService) Get(ctx context.Context, fileID string) (*model.File, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) ListOwnedBy(ctx context.Context, user *model.User) ([]model.File, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) ListVisibleTo(ctx context.Context, user *model.User) ([]model.File, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, fileID string, actor *model.User) (*model.File, io.ReadCloser, error) {
	args := m.Called(ctx, fileID, actor)
	var f *model.File
	if args.Get(0) != nil {
		f = args.Get(0).(*model.File)
	}
	var rc io.ReadCloser
	if args.Get(1) != nil {
		rc = args.Get(1).(io.ReadCloser)
	}
	return f, rc, args.Error(2)
}

func (m *MockFileService) Link(ctx context.Context, fileID string, actor *model.User, expiry time.Duration) (string, error) {
	args := m.Called(ctx, fileID, actor, expiry)
	return args.String(0), args.Error(1)
}

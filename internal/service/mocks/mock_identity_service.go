package mocks

import (
	"context"

	"fileshare/internal/model"
	"fileshare/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockIdentityService struct {
	mock.Mock
}

var _ service.IdentityService = (*MockIdentityService)(nil)

func (m *MockIdentityService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockIdentityService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockIdentityService) IssueToken(ctx context.Context, u *model.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityService) ResolveToken(ctx context.Context, token string) (*model.User, *service.Claims, error) {
	args := m.Called(ctx, token)
	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}
	var c *service.Claims
	if args.Get(1) != nil {
		c = args.Get(1).(*service.Claims)
	}
	return u, c, args.Error(2)
}

func (m *MockIdentityService) Logout(ctx context.Context, claims *service.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in model.Registration) (*model.TokenPair, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenPair), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in model.Credentials) (*model.TokenPair, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, access string) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, access string, in model.PasswordChange) error {
	args := m.Called(ctx, access, in)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, access string) (int64, error) {
	args := m.Called(ctx, access)
	return args.Get(0).(int64), args.Error(1)
}

// MockCatalogService mocks service.CatalogService for any resource.
type MockCatalogService[T any] struct {
	mock.Mock
}

func (m *MockCatalogService[T]) List(ctx context.Context, params query.Params) (*query.Page[T], error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Page[T]), args.Error(1)
}

func (m *MockCatalogService[T]) Get(ctx context.Context, id int64) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalogService[T]) Create(ctx context.Context, in *T) (*T, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalogService[T]) Update(ctx context.Context, id int64, in *T) (*T, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalogService[T]) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBookService struct {
	MockCatalogService[model.Book]
}

func (m *MockBookService) UploadCover(ctx context.Context, id int64, in service.CoverUpload) (*model.Book, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) CoverURL(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

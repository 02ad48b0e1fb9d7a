package mocks

import (
	"context"

	"github.com/promopress/promopress/internal/domain"
)

type MockUserRepo struct {
	domain.UserRepository
	GetByIDFunc       func(ctx context.Context, id int64) (*domain.User, error)
	GetByPiIDFunc     func(ctx context.Context, piID string) (*domain.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	UpsertFunc        func(ctx context.Context, user *domain.User) error
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockUserRepo) GetByPiID(ctx context.Context, piID string) (*domain.User, error) {
	return m.GetByPiIDFunc(ctx, piID)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	return m.UpsertFunc(ctx, user)
}

package mocks

import (
	"context"
	"time"

	"github.com/promopress/promopress/internal/domain"
)

type MockSessionLinkRepo struct {
	domain.SessionLinkRepository
	CreateFunc          func(ctx context.Context, link *domain.SessionLink) error
	GetByCodeFunc       func(ctx context.Context, code string) (*domain.SessionLink, error)
	AttachUserFunc      func(ctx context.Context, code string, userID int64) error
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockSessionLinkRepo) Create(ctx context.Context, link *domain.SessionLink) error {
	return m.CreateFunc(ctx, link)
}

func (m *MockSessionLinkRepo) GetByCode(ctx context.Context, code string) (*domain.SessionLink, error) {
	return m.GetByCodeFunc(ctx, code)
}

func (m *MockSessionLinkRepo) AttachUser(ctx context.Context, code string, userID int64) error {
	return m.AttachUserFunc(ctx, code, userID)
}

func (m *MockSessionLinkRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.DeleteOlderThanFunc(ctx, cutoff)
}

package mocks

import (
	"context"
	"time"

	"github.com/promopress/promopress/internal/domain"
)

type MockPaymentRepo struct {
	domain.PaymentRepository
	CreateFunc                      func(ctx context.Context, payment *domain.Payment) error
	GetByPaymentIDFunc              func(ctx context.Context, paymentID string) (*domain.Payment, error)
	UpdateFunc                      func(ctx context.Context, payment *domain.Payment) error
	GetByArticleIDFunc              func(ctx context.Context, articleID int64) ([]*domain.Payment, error)
	GetLatestCompletedByArticleFunc func(ctx context.Context, articleID int64, plan domain.PlanType) (*domain.Payment, error)
	GetLatestCompletedByUserFunc    func(ctx context.Context, username string) (*domain.Payment, error)
	DetachArticleFunc               func(ctx context.Context, articleID int64) error
	DeleteStaleCreatedFunc          func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	return m.CreateFunc(ctx, payment)
}

func (m *MockPaymentRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return m.GetByPaymentIDFunc(ctx, paymentID)
}

func (m *MockPaymentRepo) Update(ctx context.Context, payment *domain.Payment) error {
	return m.UpdateFunc(ctx, payment)
}

func (m *MockPaymentRepo) GetByArticleID(ctx context.Context, articleID int64) ([]*domain.Payment, error) {
	return m.GetByArticleIDFunc(ctx, articleID)
}

func (m *MockPaymentRepo) GetLatestCompletedByArticle(ctx context.Context, articleID int64, plan domain.PlanType) (*domain.Payment, error) {
	return m.GetLatestCompletedByArticleFunc(ctx, articleID, plan)
}

func (m *MockPaymentRepo) GetLatestCompletedByUser(ctx context.Context, username string) (*domain.Payment, error) {
	return m.GetLatestCompletedByUserFunc(ctx, username)
}

func (m *MockPaymentRepo) DetachArticle(ctx context.Context, articleID int64) error {
	return m.DetachArticleFunc(ctx, articleID)
}

func (m *MockPaymentRepo) DeleteStaleCreated(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.DeleteStaleCreatedFunc(ctx, cutoff)
}

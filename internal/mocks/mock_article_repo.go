package mocks

import (
	"context"

	"github.com/promopress/promopress/internal/domain"
)

type MockArticleRepo struct {
	domain.ArticleRepository
	CreateFunc                 func(ctx context.Context, article *domain.Article) error
	GetByIdFunc                func(ctx context.Context, id int64) (*domain.Article, error)
	UpdateFunc                 func(ctx context.Context, article *domain.Article) error
	DeleteFunc                 func(ctx context.Context, id int64) error
	GetAllFunc                 func(ctx context.Context, filters domain.ArticleFilters) ([]*domain.Article, *domain.Metadata, error)
	GetByStatusFunc            func(ctx context.Context, status domain.ArticleStatus) ([]*domain.Article, error)
	GetByStatusAndCreatorFunc  func(ctx context.Context, status domain.ArticleStatus, username string) ([]*domain.Article, error)
	GetByCategoryAndStatusFunc func(ctx context.Context, categorySlug string, status domain.ArticleStatus) ([]*domain.Article, error)
	AddPromotionFunc           func(ctx context.Context, promotion *domain.Promotion) error
	CancelPromotionsFunc       func(ctx context.Context, articleID int64, plan domain.PlanType) (int64, error)
}

func (m *MockArticleRepo) Create(ctx context.Context, article *domain.Article) error {
	return m.CreateFunc(ctx, article)
}

func (m *MockArticleRepo) GetById(ctx context.Context, id int64) (*domain.Article, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockArticleRepo) Update(ctx context.Context, article *domain.Article) error {
	return m.UpdateFunc(ctx, article)
}

func (m *MockArticleRepo) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockArticleRepo) GetAll(ctx context.Context, filters domain.ArticleFilters) ([]*domain.Article, *domain.Metadata, error) {
	return m.GetAllFunc(ctx, filters)
}

func (m *MockArticleRepo) GetByStatus(ctx context.Context, status domain.ArticleStatus) ([]*domain.Article, error) {
	return m.GetByStatusFunc(ctx, status)
}

func (m *MockArticleRepo) GetByStatusAndCreator(ctx context.Context, status domain.ArticleStatus, username string) ([]*domain.Article, error) {
	return m.GetByStatusAndCreatorFunc(ctx, status, username)
}

func (m *MockArticleRepo) GetByCategoryAndStatus(ctx context.Context, categorySlug string, status domain.ArticleStatus) ([]*domain.Article, error) {
	return m.GetByCategoryAndStatusFunc(ctx, categorySlug, status)
}

func (m *MockArticleRepo) AddPromotion(ctx context.Context, promotion *domain.Promotion) error {
	return m.AddPromotionFunc(ctx, promotion)
}

func (m *MockArticleRepo) CancelPromotions(ctx context.Context, articleID int64, plan domain.PlanType) (int64, error) {
	return m.CancelPromotionsFunc(ctx, articleID, plan)
}

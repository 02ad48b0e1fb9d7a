package mocks

import (
	"context"

	"github.com/promopress/promopress/internal/domain"
)

type MockCategoryRepo struct {
	domain.CategoryRepository
	GetAllFunc    func(ctx context.Context) ([]*domain.Category, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*domain.Category, error)
	GetByNameFunc func(ctx context.Context, name string) (*domain.Category, error)
	CreateFunc    func(ctx context.Context, category *domain.Category) error
	UpdateFunc    func(ctx context.Context, category *domain.Category) error
	DeleteFunc    func(ctx context.Context, id int64) error
}

func (m *MockCategoryRepo) GetAll(ctx context.Context) ([]*domain.Category, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockCategoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return m.GetBySlugFunc(ctx, slug)
}

func (m *MockCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return m.GetByNameFunc(ctx, name)
}

func (m *MockCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	return m.CreateFunc(ctx, category)
}

func (m *MockCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	return m.UpdateFunc(ctx, category)
}

func (m *MockCategoryRepo) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

package domain

import (
	"context"
	"time"
)

// DefaultCategorySlug is where draft articles created as a side effect of a
// completed payment land until the author files them properly.
const DefaultCategorySlug = "uncategorized"

type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id int64) error
}

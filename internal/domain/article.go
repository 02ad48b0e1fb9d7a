package domain

import (
	"context"
	"strings"
	"time"
)

type ArticleStatus string

const (
	ArticleStatusDraft           ArticleStatus = "DRAFT"
	ArticleStatusPendingApproval ArticleStatus = "PENDING_APPROVAL"
	ArticleStatusPublished       ArticleStatus = "PUBLISHED"
	ArticleStatusRejected        ArticleStatus = "REJECTED"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPendingApproval, ArticleStatusPublished, ArticleStatusRejected:
		return true
	}
	return false
}

type Article struct {
	ID              int64
	App             string
	Company         string
	Title           string
	Description     string
	Content         string
	HeaderImageURL  *string
	PromoVideoURL   *string
	CategoryID      int64
	CategoryName    string
	CategorySlug    string
	Status          ArticleStatus
	PublishDate     *time.Time
	CreatedBy       string
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time

	// Promotions holds the article's full promotion history, cancelled and
	// expired grants included.
	Promotions []Promotion
}

// HasActivePromotion reports whether the article holds at least one active
// promotion of the given plan at the given instant.
func (a *Article) HasActivePromotion(plan PlanType, now time.Time) bool {
	for _, p := range a.Promotions {
		if p.Type == plan && p.ActiveAt(now) {
			return true
		}
	}
	return false
}

type ArticleFilters struct {
	Page     int
	PageSize int
	Sort     string
}

func (f ArticleFilters) SortColumn() string {
	return strings.TrimPrefix(f.Sort, "-")
}

func (f ArticleFilters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func (f ArticleFilters) Limit() int {
	return f.PageSize
}

func (f ArticleFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}

func NewMetadata(totalRecords, page, pageSize int) *Metadata {
	return &Metadata{
		CurrentPage:  page,
		FirstPage:    1,
		LastPage:     (totalRecords + pageSize - 1) / pageSize,
		PageSize:     pageSize,
		TotalRecords: totalRecords,
	}
}

type ArticleRepository interface {
	Create(ctx context.Context, article *Article) error
	GetById(ctx context.Context, id int64) (*Article, error)
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context, filters ArticleFilters) ([]*Article, *Metadata, error)
	// GetByStatus and GetByCategoryAndStatus load articles with their full
	// promotion history, ordered by id ascending so rotation has a stable base.
	GetByStatus(ctx context.Context, status ArticleStatus) ([]*Article, error)
	GetByStatusAndCreator(ctx context.Context, status ArticleStatus, username string) ([]*Article, error)
	GetByCategoryAndStatus(ctx context.Context, categorySlug string, status ArticleStatus) ([]*Article, error)
	// AddPromotion appends one grant to the article's history.
	AddPromotion(ctx context.Context, promotion *Promotion) error
	// CancelPromotions soft-cancels every promotion of the plan on the article
	// and returns how many rows were flagged.
	CancelPromotions(ctx context.Context, articleID int64, plan PlanType) (int64, error)
}

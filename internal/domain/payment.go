package domain

import (
	"context"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "CREATED"
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCreated, PaymentStatusApproved, PaymentStatusCompleted:
		return true
	}
	return false
}

// Payment records one purchase attempt against a promotion plan. PaymentID is the
// identifier assigned by the Pi platform; Txid and CompletedAt are set only once
// the transfer has been confirmed. ArticleID references the funded article but
// does not own it: deleting the article clears the reference and the payment
// survives for bookkeeping.
type Payment struct {
	ID           int64
	PaymentID    string
	Username     string
	PlanType     PlanType
	Status       PaymentStatus
	Txid         *string
	Sandbox      bool
	ArticleID    *int64
	CreatedAt    time.Time
	ApprovedAt   *time.Time
	CompletedAt  *time.Time
	ExpirationAt *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	GetByArticleID(ctx context.Context, articleID int64) ([]*Payment, error)
	// GetLatestCompletedByArticle returns the COMPLETED payment for the article
	// and plan with the most recent expiration, or ErrRecordNotFound.
	GetLatestCompletedByArticle(ctx context.Context, articleID int64, plan PlanType) (*Payment, error)
	// GetLatestCompletedByUser returns the user's most recently completed
	// payment across all plans, or ErrRecordNotFound.
	GetLatestCompletedByUser(ctx context.Context, username string) (*Payment, error)
	// DetachArticle clears the article reference on every payment that funds it.
	DetachArticle(ctx context.Context, articleID int64) error
	// DeleteStaleCreated removes payments that are still CREATED, have no
	// article attached, and were created before the cutoff. The re-check is part
	// of the delete predicate so it cannot race a concurrent completion.
	DeleteStaleCreated(ctx context.Context, cutoff time.Time) (int64, error)
}

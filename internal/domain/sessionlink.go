package domain

import (
	"context"
	"time"
)

// SessionLink ties a QR hand-off code to the Pi user who scanned it. Links are
// short-lived; the sweeper removes them after ten minutes.
type SessionLink struct {
	ID        int64
	Code      string
	UserID    *int64
	CreatedAt time.Time
}

type SessionLinkRepository interface {
	Create(ctx context.Context, link *SessionLink) error
	GetByCode(ctx context.Context, code string) (*SessionLink, error)
	AttachUser(ctx context.Context, code string, userID int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

package domain

import "time"

// Promotion is one grant of a plan to an article. The history is append-only:
// cancellation flips a flag and expiration is a computed predicate, so past
// grants stay auditable.
type Promotion struct {
	ID           int64
	ArticleID    int64
	Type         PlanType
	ExpirationAt *time.Time
	Cancelled    bool
	CreatedAt    time.Time
}

// ActiveAt reports whether the promotion still counts against slots and
// rotation at the given instant.
func (p Promotion) ActiveAt(now time.Time) bool {
	if p.Cancelled {
		return false
	}
	return p.ExpirationAt == nil || p.ExpirationAt.After(now)
}

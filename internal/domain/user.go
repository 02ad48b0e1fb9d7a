package domain

import (
	"context"
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is a Pi Network account known to the platform. There is no local
// password: identity is established by validating a Pi access token.
type User struct {
	ID        int64
	PiID      string
	Username  string
	Role      UserRole
	CreatedAt time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByPiID(ctx context.Context, piID string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Upsert inserts the user on first login and refreshes the username on
	// subsequent ones, keyed by PiID.
	Upsert(ctx context.Context, user *User) error
}

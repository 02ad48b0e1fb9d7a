package app

import (
	"net/http"

	"github.com/promopress/promopress/internal/domain"
)

type contextKey string

const contextKeyIdentity = contextKey("identity")

// Identity is the authenticated caller extracted from a platform token.
type Identity struct {
	Username string
	PiID     string
	Role     domain.UserRole
}

func (app *Application) contextGetIdentity(r *http.Request) Identity {
	identity, ok := r.Context().Value(contextKeyIdentity).(Identity)
	if !ok {
		panic("missing identity from context")
	}

	return identity
}

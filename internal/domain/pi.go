package domain

import "context"

// PiIdentity is what the Pi platform reports for a valid access token.
type PiIdentity struct {
	PiID     string
	Username string
}

// PiVerifier validates Pi Network access tokens against the platform API.
type PiVerifier interface {
	VerifyAccessToken(ctx context.Context, accessToken string) (*PiIdentity, error)
}

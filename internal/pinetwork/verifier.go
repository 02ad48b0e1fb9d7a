// Package pinetwork talks to the Pi platform API.
package pinetwork

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/promopress/promopress/internal/domain"
)

const DefaultBaseURL = "https://api.minepi.com"

// Verifier resolves Pi access tokens to identities via the platform's /v2/me
// endpoint. The token being verified is the caller's own, so it travels as the
// Authorization header.
type Verifier struct {
	client  *http.Client
	baseURL string
}

func NewVerifier(baseURL string) *Verifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Verifier{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: baseURL,
	}
}

type meResponse struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
}

func (v *Verifier) VerifyAccessToken(ctx context.Context, accessToken string) (*domain.PiIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v2/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pi platform unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrInvalidAccessToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("pi platform returned status %d", resp.StatusCode)
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("malformed pi platform response: %w", err)
	}

	if me.UID == "" {
		return nil, domain.ErrInvalidAccessToken
	}

	return &domain.PiIdentity{
		PiID:     me.UID,
		Username: me.Username,
	}, nil
}

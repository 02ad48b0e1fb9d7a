package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
)

const tokenIssuer = "promopress"

type platformClaims struct {
	jwt.RegisteredClaims
	PiID string `json:"piId"`
	Role string `json:"role"`
}

// PiLoginHandler exchanges a Pi access token for a platform JWT, creating the
// user on first login.
func (app *Application) PiLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req api.PiLoginRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	identity, err := app.piVerifier.VerifyAccessToken(r.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAccessToken) {
			app.unauthorizedAccessResponse(w, r)
			return
		}
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusServiceUnavailable, "The Pi platform is temporarily unreachable, please retry shortly")
		return
	}

	user := &domain.User{
		PiID:     identity.PiID,
		Username: identity.Username,
		Role:     domain.RoleUser,
	}

	err = app.userRepo.Upsert(r.Context(), user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	token, err := app.issuePlatformToken(user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PiLoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     string(user.Role),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) issuePlatformToken(user *domain.User) (string, error) {
	now := app.clock.Now()

	claims := platformClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(app.config.Auth.TokenTTL)),
		},
		PiID: user.PiID,
		Role: string(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(app.config.Auth.JWTSecret))
}

func (app *Application) parsePlatformToken(tokenString string) (Identity, error) {
	var claims platformClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(app.config.Auth.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return Identity{}, domain.ErrInvalidAccessToken
	}

	if !claims.VerifyIssuer(tokenIssuer, true) {
		return Identity{}, domain.ErrInvalidAccessToken
	}

	return Identity{
		Username: claims.Subject,
		PiID:     claims.PiID,
		Role:     domain.UserRole(claims.Role),
	}, nil
}

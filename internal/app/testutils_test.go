package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/clock"
	"github.com/promopress/promopress/internal/mailer"
	"github.com/promopress/promopress/internal/validator"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			Env: "test",
			Pi:  PiConfig{Sandbox: true},
			Auth: AuthConfig{
				JWTSecret: "test-secret",
				TokenTTL:  24 * time.Hour,
			},
			SMTP: SMTPConfig{
				ContactRecipient: "hello@promopress.app",
			},
			Sweeper: SweeperConfig{
				Interval:    5 * time.Minute,
				GracePeriod: 10 * time.Minute,
			},
		},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator: validator.NewValidator(),
		mailer:    &mailer.MockMailer{},
		clock:     clock.NewFixed(testNow),
		slotLocks: newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// asUser injects an authenticated identity, bypassing the JWT middleware.
func asUser(r *http.Request, username string) *http.Request {
	return asIdentity(r, Identity{Username: username, PiID: "pi-" + username, Role: "USER"})
}

func asAdmin(r *http.Request, username string) *http.Request {
	return asIdentity(r, Identity{Username: username, PiID: "pi-" + username, Role: "ADMIN"})
}

func asIdentity(r *http.Request, identity Identity) *http.Request {
	ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
	return r.WithContext(ctx)
}

// withURLParam injects a chi route parameter for handlers invoked outside the
// router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func checkErrorMessage(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()

	var errorResp api.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if want != "" && errorResp.Message != want {
		t.Errorf("Error message = %v, want %v", errorResp.Message, want)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}

	return d
}

func ptr[T any](v T) *T {
	return &v
}

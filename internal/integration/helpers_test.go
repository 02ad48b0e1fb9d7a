package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/domain"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// bearerHeader mints a platform token signed with the suite's JWT secret.
// Expiry uses wall time because token validation does.
func bearerHeader(t testing.TB, username, piID string, role domain.UserRole) map[string]string {
	claims := jwt.MapClaims{
		"iss":  "promopress",
		"sub":  username,
		"iat":  jwt.NewNumericDate(time.Now()),
		"exp":  jwt.NewNumericDate(time.Now().Add(time.Hour)),
		"piId": piID,
		"role": string(role),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token}
}

func userHeader(t testing.TB) map[string]string {
	return bearerHeader(t, TestUserName, TestUserPiID, domain.RoleUser)
}

func adminHeader(t testing.TB) map[string]string {
	return bearerHeader(t, TestAdminName, TestAdminPiID, domain.RoleAdmin)
}

func truncateAll(t testing.TB, db *pgxpool.Pool) {
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"TRUNCATE article_promotions, payments, session_links, articles, categories, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	// The uncategorized seed must survive resets; drafts created from
	// payments land there.
	_, err = db.Exec(ctx,
		`INSERT INTO categories (name, slug, description)
		 VALUES ('Uncategorized', 'uncategorized', 'Default category for drafts created from payments')`)
	require.NoError(t, err)
}

func seedUser(t testing.TB, db *pgxpool.Pool, piID, username string, role domain.UserRole) int64 {
	var id int64
	err := db.QueryRow(context.Background(),
		"INSERT INTO users (pi_id, username, role) VALUES ($1, $2, $3) RETURNING id",
		piID, username, string(role)).Scan(&id)
	require.NoError(t, err)

	return id
}

func seedCategory(t testing.TB, db *pgxpool.Pool, name, slug string) int64 {
	var id int64
	err := db.QueryRow(context.Background(),
		"INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id",
		name, slug).Scan(&id)
	require.NoError(t, err)

	return id
}

func seedArticle(t testing.TB, db *pgxpool.Pool, title string, categoryID int64, createdBy string, status domain.ArticleStatus) int64 {
	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO articles (title, content, category_id, status, created_by, publish_date)
		 VALUES ($1, $2, $3, $4, $5, CASE WHEN $4 = 'PUBLISHED' THEN now() END)
		 RETURNING id`,
		title, TestArticleContent, categoryID, string(status), createdBy).Scan(&id)
	require.NoError(t, err)

	return id
}

func seedPromotion(t testing.TB, db *pgxpool.Pool, articleID int64, plan domain.PlanType, expiration *time.Time) {
	_, err := db.Exec(context.Background(),
		"INSERT INTO article_promotions (article_id, promote_type, expiration_at) VALUES ($1, $2, $3)",
		articleID, string(plan), expiration)
	require.NoError(t, err)
}

func seedPayment(t testing.TB, db *pgxpool.Pool, paymentID, username string, plan domain.PlanType, status domain.PaymentStatus, articleID *int64) {
	_, err := db.Exec(context.Background(),
		`INSERT INTO payments (payment_id, username, plan_type, status, sandbox, article_id, created_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5, $6)`,
		paymentID, username, string(plan), string(status), articleID, testNow)
	require.NoError(t, err)
}

// seedPromotedArticle publishes an article in the given category and attaches
// a live promotion of the given plan.
func seedPromotedArticle(t testing.TB, db *pgxpool.Pool, title string, categoryID int64, plan domain.PlanType) int64 {
	id := seedArticle(t, db, title, categoryID, TestUserName, domain.ArticleStatusPublished)

	expiration := testNow.Add(14 * 24 * time.Hour)
	seedPromotion(t, db, id, plan, &expiration)

	return id
}

func countRows(t testing.TB, db *pgxpool.Pool, query string, args ...any) int {
	var n int
	err := db.QueryRow(context.Background(), query, args...).Scan(&n)
	require.NoError(t, err)

	return n
}

func paymentStatus(t testing.TB, db *pgxpool.Pool, paymentID string) string {
	var status string
	err := db.QueryRow(context.Background(),
		"SELECT status FROM payments WHERE payment_id = $1", paymentID).Scan(&status)
	require.NoError(t, err)

	return status
}

func articleStatus(t testing.TB, db *pgxpool.Pool, articleID int64) string {
	var status string
	err := db.QueryRow(context.Background(),
		"SELECT status FROM articles WHERE id = $1", articleID).Scan(&status)
	require.NoError(t, err)

	return status
}

func urlPath(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

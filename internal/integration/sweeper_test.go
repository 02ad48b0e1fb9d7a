package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/domain"
	"github.com/promopress/promopress/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SweeperSuite struct {
	BaseSuite
}

func TestSweeperSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(SweeperSuite))
}

func insertPaymentAt(t testing.TB, db *pgxpool.Pool, paymentID string, status domain.PaymentStatus, articleID *int64, createdAt time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO payments (payment_id, username, plan_type, status, sandbox, article_id, created_at)
		 VALUES ($1, $2, 'STANDARD', $3, TRUE, $4, $5)`,
		paymentID, TestUserName, string(status), articleID, createdAt)
	require.NoError(t, err)
}

func (s *SweeperSuite) TestDeleteStaleCreatedPayments() {
	t := s.T()
	ctx := context.Background()

	truncateAll(t, s.app.DB)
	seedUser(t, s.app.DB, TestUserPiID, TestUserName, domain.RoleUser)
	categoryID := seedCategory(t, s.app.DB, TestCategoryName, TestCategorySlug)
	articleID := seedArticle(t, s.app.DB, TestArticleTitle, categoryID, TestUserName, domain.ArticleStatusDraft)

	cutoff := testNow.Add(-10 * time.Minute)

	// Only abandoned checkouts qualify: still CREATED, unbound, past the cutoff.
	insertPaymentAt(t, s.app.DB, "pay-stale", domain.PaymentStatusCreated, nil, cutoff.Add(-time.Hour))
	insertPaymentAt(t, s.app.DB, "pay-fresh", domain.PaymentStatusCreated, nil, testNow)
	insertPaymentAt(t, s.app.DB, "pay-approved", domain.PaymentStatusApproved, nil, cutoff.Add(-time.Hour))
	insertPaymentAt(t, s.app.DB, "pay-bound", domain.PaymentStatusCreated, &articleID, cutoff.Add(-time.Hour))

	paymentRepo := repository.NewPostgresPaymentRepository(s.app.DB)

	deleted, err := paymentRepo.DeleteStaleCreated(ctx, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	require.Equal(t, 0, countRows(t, s.app.DB, "SELECT COUNT(*) FROM payments WHERE payment_id = 'pay-stale'"))
	require.Equal(t, 3, countRows(t, s.app.DB, "SELECT COUNT(*) FROM payments"))
}

func (s *SweeperSuite) TestDeleteExpiredSessionLinks() {
	t := s.T()
	ctx := context.Background()

	truncateAll(t, s.app.DB)

	cutoff := testNow.Add(-10 * time.Minute)

	_, err := s.app.DB.Exec(ctx,
		`INSERT INTO session_links (code, created_at) VALUES
		 ('11111111-1111-4111-8111-111111111111', $1),
		 ('22222222-2222-4222-8222-222222222222', $2)`,
		cutoff.Add(-time.Hour), testNow)
	require.NoError(t, err)

	linkRepo := repository.NewPostgresSessionLinkRepository(s.app.DB)

	deleted, err := linkRepo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	require.Equal(t, 1, countRows(t, s.app.DB, "SELECT COUNT(*) FROM session_links"))
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id,
			username,
			plan_type,
			status,
			sandbox,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.PaymentID,
		payment.Username,
		payment.PlanType,
		payment.Status,
		payment.Sandbox,
		payment.CreatedAt,
	).Scan(&payment.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrPaymentAlreadyExists
		}
		return err
	}

	return nil
}

func (p *PostgresPaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT id, payment_id, username, plan_type, status, txid, sandbox, article_id,
			created_at, approved_at, completed_at, expiration_at
		FROM payments
		WHERE payment_id = $1
	`

	return p.scanOne(p.db.QueryRow(ctx, query, paymentID))
}

func (p *PostgresPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1,
			txid = $2,
			article_id = $3,
			approved_at = $4,
			completed_at = $5,
			expiration_at = $6
		WHERE id = $7
	`

	tag, err := p.db.Exec(
		ctx,
		query,
		payment.Status,
		payment.Txid,
		payment.ArticleID,
		payment.ApprovedAt,
		payment.CompletedAt,
		payment.ExpirationAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresPaymentRepository) GetByArticleID(ctx context.Context, articleID int64) ([]*domain.Payment, error) {
	query := `
		SELECT id, payment_id, username, plan_type, status, txid, sandbox, article_id,
			created_at, approved_at, completed_at, expiration_at
		FROM payments
		WHERE article_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.db.Query(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*domain.Payment{}

	for rows.Next() {
		payment, err := p.scanOne(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func (p *PostgresPaymentRepository) GetLatestCompletedByArticle(
	ctx context.Context,
	articleID int64,
	plan domain.PlanType) (*domain.Payment, error) {

	query := `
		SELECT id, payment_id, username, plan_type, status, txid, sandbox, article_id,
			created_at, approved_at, completed_at, expiration_at
		FROM payments
		WHERE article_id = $1 AND plan_type = $2 AND status = $3
		ORDER BY expiration_at DESC NULLS LAST
		LIMIT 1
	`

	return p.scanOne(p.db.QueryRow(ctx, query, articleID, plan, domain.PaymentStatusCompleted))
}

func (p *PostgresPaymentRepository) GetLatestCompletedByUser(ctx context.Context, username string) (*domain.Payment, error) {
	query := `
		SELECT id, payment_id, username, plan_type, status, txid, sandbox, article_id,
			created_at, approved_at, completed_at, expiration_at
		FROM payments
		WHERE username = $1 AND status = $2
		ORDER BY completed_at DESC
		LIMIT 1
	`

	return p.scanOne(p.db.QueryRow(ctx, query, username, domain.PaymentStatusCompleted))
}

func (p *PostgresPaymentRepository) DetachArticle(ctx context.Context, articleID int64) error {
	query := `UPDATE payments SET article_id = NULL WHERE article_id = $1`

	_, err := p.db.Exec(ctx, query, articleID)
	return err
}

// DeleteStaleCreated removes abandoned payments. The status, link, and age
// checks all live in the DELETE predicate so a completion that commits first
// keeps its row.
func (p *PostgresPaymentRepository) DeleteStaleCreated(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM payments
		WHERE status = $1 AND article_id IS NULL AND created_at < $2
	`

	tag, err := p.db.Exec(ctx, query, domain.PaymentStatusCreated, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresPaymentRepository) scanOne(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment

	err := row.Scan(
		&payment.ID,
		&payment.PaymentID,
		&payment.Username,
		&payment.PlanType,
		&payment.Status,
		&payment.Txid,
		&payment.Sandbox,
		&payment.ArticleID,
		&payment.CreatedAt,
		&payment.ApprovedAt,
		&payment.CompletedAt,
		&payment.ExpirationAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &payment, nil
}

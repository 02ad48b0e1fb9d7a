package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/domain"
)

type PostgresSessionLinkRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSessionLinkRepository(db *pgxpool.Pool) *PostgresSessionLinkRepository {
	return &PostgresSessionLinkRepository{
		db: db,
	}
}

func (p *PostgresSessionLinkRepository) Create(ctx context.Context, link *domain.SessionLink) error {
	query := `
		INSERT INTO session_links (code)
		VALUES ($1)
		RETURNING id, created_at
	`

	return p.db.QueryRow(ctx, query, link.Code).Scan(&link.ID, &link.CreatedAt)
}

func (p *PostgresSessionLinkRepository) GetByCode(ctx context.Context, code string) (*domain.SessionLink, error) {
	query := `
		SELECT id, code, user_id, created_at
		FROM session_links
		WHERE code = $1
	`

	var link domain.SessionLink

	err := p.db.QueryRow(ctx, query, code).Scan(
		&link.ID,
		&link.Code,
		&link.UserID,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &link, nil
}

func (p *PostgresSessionLinkRepository) AttachUser(ctx context.Context, code string, userID int64) error {
	query := `UPDATE session_links SET user_id = $1 WHERE code = $2`

	tag, err := p.db.Exec(ctx, query, userID, code)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresSessionLinkRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM session_links WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

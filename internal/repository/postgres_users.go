package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/domain"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (p *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, pi_id, username, role, created_at
		FROM users
		WHERE id = $1
	`

	return scanUser(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresUserRepository) GetByPiID(ctx context.Context, piID string) (*domain.User, error) {
	query := `
		SELECT id, pi_id, username, role, created_at
		FROM users
		WHERE pi_id = $1
	`

	return scanUser(p.db.QueryRow(ctx, query, piID))
}

func (p *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, pi_id, username, role, created_at
		FROM users
		WHERE username = $1
	`

	return scanUser(p.db.QueryRow(ctx, query, username))
}

func (p *PostgresUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (pi_id, username, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (pi_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, role, created_at
	`

	return p.db.QueryRow(ctx, query, user.PiID, user.Username, user.Role).
		Scan(&user.ID, &user.Role, &user.CreatedAt)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User

	err := row.Scan(
		&user.ID,
		&user.PiID,
		&user.Username,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &user, nil
}

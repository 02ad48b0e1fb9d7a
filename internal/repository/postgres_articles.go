package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/domain"
)

type PostgresArticleRepository struct {
	db *pgxpool.Pool
}

func NewPostgresArticleRepository(db *pgxpool.Pool) *PostgresArticleRepository {
	return &PostgresArticleRepository{
		db: db,
	}
}

const articleColumns = `a.id, a.app, a.company, a.title, a.description, a.content,
	a.header_image_url, a.promo_video_url, a.category_id, c.name, c.slug,
	a.status, a.publish_date, a.created_by, a.rejection_reason, a.created_at, a.updated_at`

func (p *PostgresArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (
			app, company, title, description, content,
			header_image_url, promo_video_url, category_id,
			status, publish_date, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		article.App,
		article.Company,
		article.Title,
		article.Description,
		article.Content,
		article.HeaderImageURL,
		article.PromoVideoURL,
		article.CategoryID,
		article.Status,
		article.PublishDate,
		article.CreatedBy,
	).Scan(&article.ID, &article.CreatedAt)
}

func (p *PostgresArticleRepository) GetById(ctx context.Context, id int64) (*domain.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		WHERE a.id = $1
	`, articleColumns)

	article, err := scanArticle(p.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	err = p.attachPromotions(ctx, []*domain.Article{article})
	if err != nil {
		return nil, err
	}

	return article, nil
}

func (p *PostgresArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	query := `
		UPDATE articles
		SET app = $1,
			company = $2,
			title = $3,
			description = $4,
			content = $5,
			header_image_url = $6,
			promo_video_url = $7,
			category_id = $8,
			status = $9,
			publish_date = $10,
			rejection_reason = $11,
			updated_at = now()
		WHERE id = $12
	`

	tag, err := p.db.Exec(
		ctx,
		query,
		article.App,
		article.Company,
		article.Title,
		article.Description,
		article.Content,
		article.HeaderImageURL,
		article.PromoVideoURL,
		article.CategoryID,
		article.Status,
		article.PublishDate,
		article.RejectionReason,
		article.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresArticleRepository) Delete(ctx context.Context, id int64) error {
	// Promotions ride along via ON DELETE CASCADE.
	tag, err := p.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresArticleRepository) GetAll(ctx context.Context, filters domain.ArticleFilters) ([]*domain.Article, *domain.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		WHERE a.status = $1
		ORDER BY %s %s, a.id ASC
		LIMIT $2 OFFSET $3
	`, articleColumns, "a."+filters.SortColumn(), filters.SortDirection())

	rows, err := p.db.Query(ctx, query, domain.ArticleStatusPublished, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totalRecords := 0
	articles := []*domain.Article{}

	for rows.Next() {
		var article domain.Article

		dest := append([]any{&totalRecords}, articleScanDest(&article)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}

		articles = append(articles, &article)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	err = p.attachPromotions(ctx, articles)
	if err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, filters.Page, filters.PageSize)

	return articles, metadata, nil
}

func (p *PostgresArticleRepository) GetByStatus(ctx context.Context, status domain.ArticleStatus) ([]*domain.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		WHERE a.status = $1
		ORDER BY a.id ASC
	`, articleColumns)

	return p.queryArticles(ctx, query, status)
}

func (p *PostgresArticleRepository) GetByStatusAndCreator(
	ctx context.Context,
	status domain.ArticleStatus,
	username string) ([]*domain.Article, error) {

	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		WHERE a.status = $1 AND a.created_by = $2
		ORDER BY a.id ASC
	`, articleColumns)

	return p.queryArticles(ctx, query, status, username)
}

func (p *PostgresArticleRepository) GetByCategoryAndStatus(
	ctx context.Context,
	categorySlug string,
	status domain.ArticleStatus) ([]*domain.Article, error) {

	query := fmt.Sprintf(`
		SELECT %s
		FROM articles a
		JOIN categories c ON c.id = a.category_id
		WHERE lower(c.slug) = lower($1) AND a.status = $2
		ORDER BY a.id ASC
	`, articleColumns)

	return p.queryArticles(ctx, query, categorySlug, status)
}

func (p *PostgresArticleRepository) AddPromotion(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		INSERT INTO article_promotions (article_id, promote_type, expiration_at, cancelled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		promotion.ArticleID,
		promotion.Type,
		promotion.ExpirationAt,
		promotion.Cancelled,
	).Scan(&promotion.ID, &promotion.CreatedAt)
}

func (p *PostgresArticleRepository) CancelPromotions(ctx context.Context, articleID int64, plan domain.PlanType) (int64, error) {
	query := `
		UPDATE article_promotions
		SET cancelled = TRUE
		WHERE article_id = $1 AND promote_type = $2
	`

	tag, err := p.db.Exec(ctx, query, articleID, plan)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresArticleRepository) queryArticles(ctx context.Context, query string, args ...any) ([]*domain.Article, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*domain.Article{}

	for rows.Next() {
		var article domain.Article

		if err := rows.Scan(articleScanDest(&article)...); err != nil {
			return nil, err
		}

		articles = append(articles, &article)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	err = p.attachPromotions(ctx, articles)
	if err != nil {
		return nil, err
	}

	return articles, nil
}

func (p *PostgresArticleRepository) attachPromotions(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	ids := make([]int64, len(articles))
	byID := make(map[int64]*domain.Article, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
		byID[a.ID] = a
	}

	query := `
		SELECT id, article_id, promote_type, expiration_at, cancelled, created_at
		FROM article_promotions
		WHERE article_id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var promo domain.Promotion

		err := rows.Scan(
			&promo.ID,
			&promo.ArticleID,
			&promo.Type,
			&promo.ExpirationAt,
			&promo.Cancelled,
			&promo.CreatedAt,
		)
		if err != nil {
			return err
		}

		article := byID[promo.ArticleID]
		article.Promotions = append(article.Promotions, promo)
	}

	return rows.Err()
}

func articleScanDest(article *domain.Article) []any {
	return []any{
		&article.ID,
		&article.App,
		&article.Company,
		&article.Title,
		&article.Description,
		&article.Content,
		&article.HeaderImageURL,
		&article.PromoVideoURL,
		&article.CategoryID,
		&article.CategoryName,
		&article.CategorySlug,
		&article.Status,
		&article.PublishDate,
		&article.CreatedBy,
		&article.RejectionReason,
		&article.CreatedAt,
		&article.UpdatedAt,
	}
}

func scanArticle(row pgx.Row) (*domain.Article, error) {
	var article domain.Article

	err := row.Scan(articleScanDest(&article)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &article, nil
}

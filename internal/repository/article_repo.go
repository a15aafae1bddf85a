package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
)

type ArticleRepo struct {
	pool *pgxpool.Pool
}

func NewArticleRepo(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

func (r *ArticleRepo) InsertTx(ctx context.Context, tx pgx.Tx, a *models.Article) error {
	a.ID = uuid.New()

	query := `INSERT INTO articles (id, title, body, encoded_content, user_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING up_count, down_count, created_at, updated_at`

	return tx.QueryRow(ctx, query,
		a.ID, a.Title, a.Body, a.EncodedContent, a.UserID,
	).Scan(&a.UpCount, &a.DownCount, &a.CreatedAt, &a.UpdatedAt)
}

func (r *ArticleRepo) GetTx(ctx context.Context, tx pgx.Tx, articleID uuid.UUID) (*models.Article, error) {
	var a models.Article
	err := tx.QueryRow(ctx, `
		SELECT id, title, body, encoded_content, up_count, down_count, user_id, created_at, updated_at
		FROM articles WHERE id = $1`,
		articleID,
	).Scan(&a.ID, &a.Title, &a.Body, &a.EncodedContent, &a.UpCount, &a.DownCount,
		&a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepo) AttachTagsTx(ctx context.Context, tx pgx.Tx, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tagID := range tagIDs {
		batch.Queue(
			"INSERT INTO article_tag (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			articleID, tagID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

func (r *ArticleRepo) TagsForArticleTx(ctx context.Context, tx pgx.Tx, articleID uuid.UUID) ([]models.Tag, error) {
	rows, err := tx.Query(ctx, `
		SELECT t.id, t.tagname, t.color, t.user_id
		FROM tags t
		JOIN article_tag at ON at.tag_id = t.id
		WHERE at.article_id = $1`,
		articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Tagname, &t.Color, &t.UserID); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// AssociationCounts reports how many articles other than excludeArticleID and
// how many contents still reference the tag.
func (r *ArticleRepo) AssociationCounts(ctx context.Context, tx pgx.Tx, tagID, excludeArticleID uuid.UUID) (int64, int64, error) {
	var articleRefs, contentRefs int64
	err := tx.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM article_tag WHERE tag_id = $1 AND article_id <> $2),
			(SELECT COUNT(*) FROM content_tag WHERE tag_id = $1)`,
		tagID, excludeArticleID,
	).Scan(&articleRefs, &contentRefs)
	return articleRefs, contentRefs, err
}

func (r *ArticleRepo) DeleteAssociationsTx(ctx context.Context, tx pgx.Tx, articleID uuid.UUID) error {
	_, err := tx.Exec(ctx, "DELETE FROM article_tag WHERE article_id = $1", articleID)
	return err
}

func (r *ArticleRepo) DeleteTx(ctx context.Context, tx pgx.Tx, articleID uuid.UUID) error {
	_, err := tx.Exec(ctx, "DELETE FROM articles WHERE id = $1", articleID)
	return err
}

func (r *ArticleRepo) IncrementDownCountTx(ctx context.Context, tx pgx.Tx, articleID uuid.UUID) error {
	_, err := tx.Exec(ctx, "UPDATE articles SET down_count = down_count + 1, updated_at = NOW() WHERE id = $1", articleID)
	return err
}

func (r *ArticleRepo) List(ctx context.Context, limit, offset int) ([]models.ArticleResponse, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.title, a.body, a.up_count, a.down_count,
		       u.username, u.profile_image,
		       COALESCE(array_agg(t.tagname ORDER BY t.tagname) FILTER (WHERE t.tagname IS NOT NULL), '{}'),
		       a.created_at, a.updated_at
		FROM articles a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN article_tag at ON at.article_id = a.id
		LEFT JOIN tags t ON t.id = at.tag_id
		GROUP BY a.id, u.username, u.profile_image
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []models.ArticleResponse
	for rows.Next() {
		var a models.ArticleResponse
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.UpCount, &a.DownCount,
			&a.UserName, &a.UserProfileImage, &a.Tags, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

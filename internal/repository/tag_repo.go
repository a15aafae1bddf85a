package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
)

type TagRepo struct {
	pool *pgxpool.Pool
}

func NewTagRepo(pool *pgxpool.Pool) *TagRepo {
	return &TagRepo{pool: pool}
}

// Reconcile resolves a requested tag-name set into existing-or-new Tag rows
// for one user, inside the caller's transaction. Missing names are inserted
// with ON CONFLICT DO NOTHING, then the whole set is re-read: a concurrent
// ingestion proposing the same new name wins or loses the unique index race
// silently, and the re-read picks up whichever row survived.
func (r *TagRepo) Reconcile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, names []string) ([]models.Tag, error) {
	names = dedupeNames(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(
			"INSERT INTO tags (tagname, user_id) VALUES ($1, $2) ON CONFLICT (user_id, tagname) DO NOTHING",
			name, userID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("failed to insert missing tags: %w", err)
	}

	rows, err := tx.Query(ctx,
		"SELECT id, tagname, color, user_id FROM tags WHERE user_id = $1 AND tagname = ANY($2)",
		userID, names,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read reconciled tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0, len(names))
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Tagname, &t.Color, &t.UserID); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ListWithContent returns the user's tags that are attached to at least one
// content item.
func (r *TagRepo) ListWithContent(ctx context.Context, userID uuid.UUID) ([]models.Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT t.id, t.tagname, t.color, t.user_id
		FROM tags t
		JOIN content_tag ct ON ct.tag_id = t.id
		WHERE t.user_id = $1
		ORDER BY t.tagname`,
		userID,
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

func (r *TagRepo) GetByName(ctx context.Context, userID uuid.UUID, tagname string) (*models.Tag, error) {
	t := &models.Tag{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, tagname, color, user_id FROM tags WHERE user_id = $1 AND tagname = $2",
		userID, tagname,
	).Scan(&t.ID, &t.Tagname, &t.Color, &t.UserID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a tag directly (the explicit tag endpoint). A unique
// violation surfaces to the caller for Conflict mapping.
func (r *TagRepo) Create(ctx context.Context, tag *models.Tag) error {
	tag.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		"INSERT INTO tags (id, tagname, color, user_id) VALUES ($1, $2, $3, $4)",
		tag.ID, tag.Tagname, tag.Color, tag.UserID,
	)
	return err
}

func (r *TagRepo) Update(ctx context.Context, userID, tagID uuid.UUID, tagname string, color *int64) (bool, error) {
	tag, err := r.get(ctx, tagID, userID)
	if err != nil {
		return false, err
	}
	if tag == nil {
		return false, nil
	}

	if tagname == "" {
		tagname = tag.Tagname
	}
	newColor := tag.Color
	if color != nil {
		newColor = *color
	}

	_, err = r.pool.Exec(ctx,
		"UPDATE tags SET tagname = $1, color = $2 WHERE id = $3 AND user_id = $4",
		tagname, newColor, tagID, userID,
	)
	return true, err
}

func (r *TagRepo) get(ctx context.Context, tagID, userID uuid.UUID) (*models.Tag, error) {
	t := &models.Tag{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, tagname, color, user_id FROM tags WHERE id = $1 AND user_id = $2",
		tagID, userID,
	).Scan(&t.ID, &t.Tagname, &t.Color, &t.UserID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AssociationCounts reports how many content and article rows still reference
// a tag, optionally ignoring one content id (the row about to be detached or
// deleted).
func (r *TagRepo) AssociationCounts(ctx context.Context, tx pgx.Tx, tagID uuid.UUID, excludeContentID *uuid.UUID) (int64, int64, error) {
	var contentRefs, articleRefs int64
	err := tx.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM content_tag WHERE tag_id = $1 AND ($2::uuid IS NULL OR content_id <> $2)),
			(SELECT COUNT(*) FROM article_tag WHERE tag_id = $1)`,
		tagID, excludeContentID,
	).Scan(&contentRefs, &articleRefs)
	return contentRefs, articleRefs, err
}

func (r *TagRepo) DeleteTx(ctx context.Context, tx pgx.Tx, tagID uuid.UUID) error {
	_, err := tx.Exec(ctx, "DELETE FROM tags WHERE id = $1", tagID)
	return err
}

func (r *TagRepo) Delete(ctx context.Context, tagID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM tags WHERE id = $1", tagID)
	return err
}

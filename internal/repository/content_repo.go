package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
)

type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

// ExistsByUserURLTx reports whether the user already saved this URL. Empty
// URLs are exempt from the duplicate rule.
func (r *ContentRepo) ExistsByUserURLTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, url string) (bool, error) {
	if url == "" {
		return false, nil
	}
	var exists bool
	err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM contents WHERE user_id = $1 AND url = $2)",
		userID, url,
	).Scan(&exists)
	return exists, err
}

func (r *ContentRepo) InsertTx(ctx context.Context, tx pgx.Tx, c *models.Content) error {
	c.ID = uuid.New()

	query := `INSERT INTO contents (id, url, title, description, thumbnail, favicon, bookmark, content_type, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`

	return tx.QueryRow(ctx, query,
		c.ID, c.URL, c.Title, c.Description, c.Thumbnail, c.Favicon,
		c.Bookmark, c.ContentType, c.UserID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *ContentRepo) InsertVideoMetadataTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID, videoLength int64) error {
	_, err := tx.Exec(ctx,
		"INSERT INTO video_metadata (id, video_length, content_id) VALUES ($1, $2, $3)",
		uuid.New(), videoLength, contentID,
	)
	return err
}

func (r *ContentRepo) InsertPostMetadataTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID, body string) error {
	_, err := tx.Exec(ctx,
		"INSERT INTO post_metadata (id, body, content_id) VALUES ($1, $2, $3)",
		uuid.New(), body, contentID,
	)
	return err
}

func (r *ContentRepo) AttachTagsTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tagID := range tagIDs {
		batch.Queue(
			"INSERT INTO content_tag (content_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			contentID, tagID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to attach tags: %w", err)
	}
	return nil
}

func (r *ContentRepo) DetachTagTx(ctx context.Context, tx pgx.Tx, contentID, tagID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		"DELETE FROM content_tag WHERE content_id = $1 AND tag_id = $2",
		contentID, tagID,
	)
	return err
}

// LockForBookmarkTx takes a row lock on the content before the bookmark flip,
// serializing concurrent toggles. Returns pgx.ErrNoRows when absent.
func (r *ContentRepo) LockForBookmarkTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID) (bool, error) {
	var bookmark bool
	err := tx.QueryRow(ctx,
		"SELECT bookmark FROM contents WHERE id = $1 FOR UPDATE",
		contentID,
	).Scan(&bookmark)
	return bookmark, err
}

func (r *ContentRepo) SetBookmarkTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID, bookmark bool) error {
	_, err := tx.Exec(ctx,
		"UPDATE contents SET bookmark = $1, updated_at = NOW() WHERE id = $2",
		bookmark, contentID,
	)
	return err
}

const contentColumns = `id, url, title, description, thumbnail, favicon, bookmark, content_type, user_id, created_at, updated_at`

func (r *ContentRepo) GetTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID) (*models.Content, error) {
	return r.scanContent(tx.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = $1`, contentID))
}

// GetOwnedTx loads a content row scoped to its owner; pgx.ErrNoRows also
// covers "exists but not yours".
func (r *ContentRepo) GetOwnedTx(ctx context.Context, tx pgx.Tx, contentID, userID uuid.UUID) (*models.Content, error) {
	return r.scanContent(tx.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = $1 AND user_id = $2`, contentID, userID))
}

func (r *ContentRepo) scanContent(row pgx.Row) (*models.Content, error) {
	c := &models.Content{}
	err := row.Scan(
		&c.ID, &c.URL, &c.Title, &c.Description, &c.Thumbnail, &c.Favicon,
		&c.Bookmark, &c.ContentType, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContentRepo) UpdateScalarsTx(ctx context.Context, tx pgx.Tx, c *models.Content) error {
	_, err := tx.Exec(ctx,
		`UPDATE contents SET title = $1, description = $2, thumbnail = $3, bookmark = $4, updated_at = NOW() WHERE id = $5`,
		c.Title, c.Description, c.Thumbnail, c.Bookmark, c.ID,
	)
	return err
}

func (r *ContentRepo) TagsForContentTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID) ([]models.Tag, error) {
	rows, err := tx.Query(ctx, `
		SELECT t.id, t.tagname, t.color, t.user_id
		FROM tags t
		JOIN content_tag ct ON ct.tag_id = t.id
		WHERE ct.content_id = $1`,
		contentID,
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

func (r *ContentRepo) DeleteMetadataTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID) error {
	if _, err := tx.Exec(ctx, "DELETE FROM video_metadata WHERE content_id = $1", contentID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, "DELETE FROM post_metadata WHERE content_id = $1", contentID)
	return err
}

func (r *ContentRepo) DeleteAssociationsTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID) error {
	_, err := tx.Exec(ctx, "DELETE FROM content_tag WHERE content_id = $1", contentID)
	return err
}

func (r *ContentRepo) DeleteTx(ctx context.Context, tx pgx.Tx, contentID uuid.UUID) error {
	_, err := tx.Exec(ctx, "DELETE FROM contents WHERE id = $1", contentID)
	return err
}

// listQuery aggregates each content row with its metadata side-table values
// and tag names in one round trip.
const listQuery = `
	SELECT c.id, c.url, c.title, c.description, c.thumbnail, c.favicon,
	       c.bookmark, c.content_type, c.created_at,
	       vm.video_length, pm.body,
	       COALESCE(array_agg(t.tagname ORDER BY t.tagname) FILTER (WHERE t.tagname IS NOT NULL), '{}')
	FROM contents c
	LEFT JOIN video_metadata vm ON vm.content_id = c.id
	LEFT JOIN post_metadata pm ON pm.content_id = c.id
	LEFT JOIN content_tag ct ON ct.content_id = c.id
	LEFT JOIN tags t ON t.id = ct.tag_id
	WHERE c.user_id = $1`

const listQueryTail = `
	GROUP BY c.id, vm.video_length, pm.body
	ORDER BY c.created_at DESC`

func (r *ContentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ContentResponse, error) {
	rows, err := r.pool.Query(ctx, listQuery+listQueryTail, userID)
	if err != nil {
		return nil, err
	}
	return scanContentResponses(rows)
}

func (r *ContentRepo) ListByUserAndType(ctx context.Context, userID uuid.UUID, contentType models.ContentType) ([]models.ContentResponse, error) {
	rows, err := r.pool.Query(ctx, listQuery+" AND c.content_type = $2"+listQueryTail, userID, contentType)
	if err != nil {
		return nil, err
	}
	return scanContentResponses(rows)
}

func (r *ContentRepo) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]models.ContentResponse, error) {
	rows, err := r.pool.Query(ctx, listQuery+" AND c.bookmark"+listQueryTail, userID)
	if err != nil {
		return nil, err
	}
	return scanContentResponses(rows)
}

// ListByTag returns every content carrying the tag, optionally narrowed to
// one content type.
func (r *ContentRepo) ListByTag(ctx context.Context, tagID uuid.UUID, contentType *models.ContentType) ([]models.ContentResponse, error) {
	query := `
	SELECT c.id, c.url, c.title, c.description, c.thumbnail, c.favicon,
	       c.bookmark, c.content_type, c.created_at,
	       vm.video_length, pm.body,
	       COALESCE(array_agg(t.tagname ORDER BY t.tagname) FILTER (WHERE t.tagname IS NOT NULL), '{}')
	FROM contents c
	JOIN content_tag mct ON mct.content_id = c.id AND mct.tag_id = $1
	LEFT JOIN video_metadata vm ON vm.content_id = c.id
	LEFT JOIN post_metadata pm ON pm.content_id = c.id
	LEFT JOIN content_tag ct ON ct.content_id = c.id
	LEFT JOIN tags t ON t.id = ct.tag_id
	WHERE $2::text IS NULL OR c.content_type = $2` + listQueryTail

	rows, err := r.pool.Query(ctx, query, tagID, contentType)
	if err != nil {
		return nil, err
	}
	return scanContentResponses(rows)
}

// Search matches the keyword case-insensitively against title, description
// and associated tag names.
func (r *ContentRepo) Search(ctx context.Context, userID uuid.UUID, keyword string) ([]models.ContentResponse, error) {
	query := listQuery + `
	AND (c.title ILIKE '%' || $2 || '%'
	     OR c.description ILIKE '%' || $2 || '%'
	     OR EXISTS (
	         SELECT 1 FROM content_tag sct
	         JOIN tags st ON st.id = sct.tag_id
	         WHERE sct.content_id = c.id AND st.tagname ILIKE '%' || $2 || '%'
	     ))` + listQueryTail

	rows, err := r.pool.Query(ctx, query, userID, keyword)
	if err != nil {
		return nil, err
	}
	return scanContentResponses(rows)
}

func scanContentResponses(rows pgx.Rows) ([]models.ContentResponse, error) {
	defer rows.Close()

	contents := []models.ContentResponse{}
	for rows.Next() {
		var (
			resp        models.ContentResponse
			contentType models.ContentType
			videoLength *int64
			body        *string
			tags        []string
		)
		err := rows.Scan(
			&resp.ID, &resp.URL, &resp.Title, &resp.Description, &resp.Thumbnail,
			&resp.Favicon, &resp.Bookmark, &contentType, &resp.CreatedAt,
			&videoLength, &body, &tags,
		)
		if err != nil {
			return nil, err
		}

		resp.Type = string(contentType)
		resp.Tags = tags
		if resp.Tags == nil {
			resp.Tags = []string{}
		}
		switch contentType {
		case models.ContentTypeVideo:
			resp.VideoLength = videoLength
		case models.ContentTypePost:
			resp.Body = body
		}

		contents = append(contents, resp)
	}
	return contents, rows.Err()
}

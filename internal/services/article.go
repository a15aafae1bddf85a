package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
	"linkmark-backend/internal/repository"
)

// Bundles bigger than this are rejected before inflation to keep a hostile
// gzip payload from ballooning in memory.
const maxBundleBytes = 10 * 1024 * 1024

type ArticleService struct {
	pool        *pgxpool.Pool
	articleRepo *repository.ArticleRepo
	userRepo    *repository.UserRepo
	tagRepo     *repository.TagRepo
	contentRepo *repository.ContentRepo
	content     *ContentService
}

func NewArticleService(
	pool *pgxpool.Pool,
	articleRepo *repository.ArticleRepo,
	userRepo *repository.UserRepo,
	tagRepo *repository.TagRepo,
	contentRepo *repository.ContentRepo,
	content *ContentService,
) *ArticleService {
	return &ArticleService{
		pool:        pool,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		tagRepo:     tagRepo,
		contentRepo: contentRepo,
		content:     content,
	}
}

// EncodeArticleBundle packs content items into the article envelope:
// base64(gzip(JSON array)).
func EncodeArticleBundle(items []models.ArticleBundleItem) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal bundle: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return "", fmt.Errorf("failed to compress bundle: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize bundle: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeArticleBundle is the inverse of EncodeArticleBundle. Any malformed
// layer (base64, gzip, JSON) fails; the caller maps that to a client error.
func DecodeArticleBundle(encoded string) ([]models.ArticleBundleItem, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("bundle is not valid base64: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("bundle is not valid gzip: %w", err)
	}
	defer gz.Close()

	payload, err := io.ReadAll(io.LimitReader(gz, maxBundleBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate bundle: %w", err)
	}
	if len(payload) > maxBundleBytes {
		return nil, errors.New("bundle exceeds size limit")
	}

	var items []models.ArticleBundleItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("bundle payload is not a content list: %w", err)
	}
	return items, nil
}

// Create stores an article with its tags. The encoded content is validated
// up front so a broken bundle is rejected at publish time, not at download.
func (s *ArticleService) Create(ctx context.Context, userID uuid.UUID, req models.CreateArticleRequest) (uuid.UUID, error) {
	if req.EncodedContent == "" {
		return uuid.Nil, &ValidationError{Fields: map[string]string{"encoded_content": "must not be empty"}}
	}
	if _, err := DecodeArticleBundle(req.EncodedContent); err != nil {
		return uuid.Nil, &ValidationError{Fields: map[string]string{"encoded_content": err.Error()}}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	exists, err := s.userRepo.ExistsTx(ctx, tx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return uuid.Nil, &NotFoundError{Message: fmt.Sprintf("User %s not found", userID)}
	}

	article := &models.Article{
		Title:          req.Title,
		Body:           req.Body,
		EncodedContent: req.EncodedContent,
		UserID:         userID,
	}
	if err := s.articleRepo.InsertTx(ctx, tx, article); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert article: %w", err)
	}

	tags, err := s.tagRepo.Reconcile(ctx, tx, userID, req.Tags)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.articleRepo.AttachTagsTx(ctx, tx, article.ID, tagIDs(tags)); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit article: %w", err)
	}
	return article.ID, nil
}

// Delete removes an owned article, its tag associations, and any tag
// orphaned by the removal.
func (s *ArticleService) Delete(ctx context.Context, userID, articleID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	article, err := s.articleRepo.GetTx(ctx, tx, articleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Message: "Article not found"}
	}
	if err != nil {
		return fmt.Errorf("failed to load article: %w", err)
	}
	if article.UserID != userID {
		return &NotFoundError{Message: "Article not found"}
	}

	tags, err := s.articleRepo.TagsForArticleTx(ctx, tx, articleID)
	if err != nil {
		return fmt.Errorf("failed to load article tags: %w", err)
	}

	if err := s.articleRepo.DeleteAssociationsTx(ctx, tx, articleID); err != nil {
		return fmt.Errorf("failed to delete tag associations: %w", err)
	}

	for _, tag := range tags {
		articleRefs, contentRefs, err := s.articleRepo.AssociationCounts(ctx, tx, tag.ID, articleID)
		if err != nil {
			return fmt.Errorf("failed to count tag references: %w", err)
		}
		if articleRefs == 0 && contentRefs == 0 {
			if err := s.tagRepo.DeleteTx(ctx, tx, tag.ID); err != nil {
				return fmt.Errorf("failed to delete orphan tag %q: %w", tag.Tagname, err)
			}
		}
	}

	if err := s.articleRepo.DeleteTx(ctx, tx, articleID); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *ArticleService) List(ctx context.Context, limit, offset int) ([]models.ArticleResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.articleRepo.List(ctx, limit, offset)
}

// Download decodes an article's bundle and materializes its items as the
// downloading user's contents, through the same save pipeline used for
// direct ingestion. Items whose URL the user already saved are skipped; the
// rest commit atomically together with the download-count bump.
func (s *ArticleService) Download(ctx context.Context, userID, articleID uuid.UUID) (*models.DownloadArticleResponse, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	article, err := s.articleRepo.GetTx(ctx, tx, articleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Article not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}

	items, err := DecodeArticleBundle(article.EncodedContent)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"encoded_content": err.Error()}}
	}

	contentIDs := []uuid.UUID{}
	for _, item := range items {
		contentType := models.ContentType(item.ContentType)
		if !contentType.Valid() {
			return nil, &ValidationError{Fields: map[string]string{"content_type": fmt.Sprintf("bundle item has unknown type %q", item.ContentType)}}
		}

		duplicate, err := s.contentRepo.ExistsByUserURLTx(ctx, tx, userID, item.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate URL: %w", err)
		}
		if duplicate {
			continue
		}

		content, _, err := s.content.saveTx(ctx, tx, userID, contentType, models.SaveContentRequest{
			URL:         item.URL,
			Title:       item.Title,
			Description: item.Description,
			Thumbnail:   item.Thumbnail,
			Favicon:     item.Favicon,
			VideoLength: item.VideoLength,
			Body:        item.Body,
			Tags:        item.Tags,
		})
		if err != nil {
			return nil, err
		}
		contentIDs = append(contentIDs, content.ID)
	}

	if err := s.articleRepo.IncrementDownCountTx(ctx, tx, articleID); err != nil {
		return nil, fmt.Errorf("failed to bump download count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit download: %w", err)
	}
	return &models.DownloadArticleResponse{ContentIDs: contentIDs}, nil
}

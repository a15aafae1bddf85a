package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
	"linkmark-backend/internal/repository"
)

const uniqueViolationCode = "23505"

type TagService struct {
	pool        *pgxpool.Pool
	tagRepo     *repository.TagRepo
	contentRepo *repository.ContentRepo
}

func NewTagService(pool *pgxpool.Pool, tagRepo *repository.TagRepo, contentRepo *repository.ContentRepo) *TagService {
	return &TagService{pool: pool, tagRepo: tagRepo, contentRepo: contentRepo}
}

// ListUserTags returns the user's tags that are attached to content.
func (s *TagService) ListUserTags(ctx context.Context, userID uuid.UUID) ([]models.TagResponse, error) {
	tags, err := s.tagRepo.ListWithContent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tagResponses(tags), nil
}

// ListTagContents returns the contents attached to a tag, optionally
// filtered by content type.
func (s *TagService) ListTagContents(ctx context.Context, tagID uuid.UUID, contentType *models.ContentType) ([]models.ContentResponse, error) {
	if contentType != nil && !contentType.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"content_type": "must be 'video' or 'post'"}}
	}
	return s.contentRepo.ListByTag(ctx, tagID, contentType)
}

// Create makes a tag explicitly. The unique index on (user_id, tagname)
// backs the exists-check: a concurrent creation of the same name surfaces as
// a Conflict rather than a duplicate row.
func (s *TagService) Create(ctx context.Context, userID uuid.UUID, req models.CreateTagRequest) (*models.TagResponse, error) {
	if req.Tagname == "" {
		return nil, &ValidationError{Fields: map[string]string{"tagname": "must not be empty"}}
	}

	color := models.DefaultTagColor
	if req.Color != nil {
		color = *req.Color
	}

	tag := &models.Tag{Tagname: req.Tagname, Color: color, UserID: userID}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, &ConflictError{Message: fmt.Sprintf("Tag name %q already exists for this user", req.Tagname)}
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return &models.TagResponse{ID: tag.ID, Tagname: tag.Tagname, Color: tag.Color}, nil
}

// Update renames and/or recolors a tag.
func (s *TagService) Update(ctx context.Context, userID, tagID uuid.UUID, req models.UpdateTagRequest) error {
	found, err := s.tagRepo.Update(ctx, userID, tagID, req.Tagname, req.Color)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return &ConflictError{Message: fmt.Sprintf("Tag name %q already exists for this user", req.Tagname)}
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}
	if !found {
		return &NotFoundError{Message: "Tag not found for this user"}
	}
	return nil
}

// Delete removes a tag only when nothing references it. It is rejected, not
// silently ignored, while any content or article association remains.
func (s *TagService) Delete(ctx context.Context, userID uuid.UUID, tagname string) (uuid.UUID, error) {
	tag, err := s.tagRepo.GetByName(ctx, userID, tagname)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, &NotFoundError{Message: fmt.Sprintf("Tag name %q does not exist for this user", tagname)}
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load tag: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	contentRefs, articleRefs, err := s.tagRepo.AssociationCounts(ctx, tx, tag.ID, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to count tag references: %w", err)
	}
	if contentRefs > 0 || articleRefs > 0 {
		return uuid.Nil, &ConflictError{Message: fmt.Sprintf("Tag %q has associated content and cannot be deleted", tagname)}
	}

	if err := s.tagRepo.DeleteTx(ctx, tx, tag.ID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete tag: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit tag delete: %w", err)
	}
	return tag.ID, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkmark-backend/internal/models"
	"linkmark-backend/internal/repository"
)

const (
	defaultTagCount     = 3
	maxTagCount         = 9
	defaultDetailDegree = 3
)

type ContentService struct {
	pool        *pgxpool.Pool
	userRepo    *repository.UserRepo
	contentRepo *repository.ContentRepo
	tagRepo     *repository.TagRepo
	scraper     *PageScraper
	video       *VideoService
}

func NewContentService(
	pool *pgxpool.Pool,
	userRepo *repository.UserRepo,
	contentRepo *repository.ContentRepo,
	tagRepo *repository.TagRepo,
	scraper *PageScraper,
	video *VideoService,
) *ContentService {
	return &ContentService{
		pool:        pool,
		userRepo:    userRepo,
		contentRepo: contentRepo,
		tagRepo:     tagRepo,
		scraper:     scraper,
		video:       video,
	}
}

// Analyze extracts metadata for a URL without persisting anything. Videos go
// through the platform API and hard-fail when the source is missing; posts go
// through the page scraper and degrade to an empty record instead.
func (s *ContentService) Analyze(ctx context.Context, contentType models.ContentType, req models.AnalyzeRequest) (*models.ContentMetadata, error) {
	if !contentType.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"content_type": "must be 'video' or 'post'"}}
	}

	tagCount := req.TagCount
	if tagCount == 0 {
		tagCount = defaultTagCount
	}
	if tagCount < 1 || tagCount > maxTagCount {
		return nil, &ValidationError{Fields: map[string]string{"tag_count": fmt.Sprintf("must be between 1 and %d", maxTagCount)}}
	}
	if req.DetailDegree != 0 && (req.DetailDegree < 1 || req.DetailDegree > 5) {
		return nil, &ValidationError{Fields: map[string]string{"detail_degree": "must be between 1 and 5"}}
	}

	rawURL, err := ExtractFirstURL(req.URL)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"url": "no http(s) URL found"}}
	}

	if contentType == models.ContentTypeVideo {
		return s.video.Analyze(ctx, rawURL, tagCount)
	}
	return s.scraper.Analyze(ctx, rawURL), nil
}

// Save persists a content row, its type-specific metadata, and its tag
// associations as one atomic unit of work.
func (s *ContentService) Save(ctx context.Context, userID uuid.UUID, contentType models.ContentType, req models.SaveContentRequest) (*models.SaveContentResponse, error) {
	if !contentType.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"content_type": "must be 'video' or 'post'"}}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	content, tags, err := s.saveTx(ctx, tx, userID, contentType, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit save: %w", err)
	}

	return &models.SaveContentResponse{ID: content.ID, Tags: tagResponses(tags)}, nil
}

// saveTx runs the full save pipeline inside the caller's transaction. The
// article download path reuses it for every bundle item.
func (s *ContentService) saveTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, contentType models.ContentType, req models.SaveContentRequest) (*models.Content, []models.Tag, error) {
	exists, err := s.userRepo.ExistsTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, nil, &NotFoundError{Message: fmt.Sprintf("User %s not found", userID)}
	}

	duplicate, err := s.contentRepo.ExistsByUserURLTx(ctx, tx, userID, req.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check duplicate URL: %w", err)
	}
	if duplicate {
		return nil, nil, &ConflictError{Message: fmt.Sprintf("URL %q is already saved", req.URL)}
	}

	content := &models.Content{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   optional(req.Thumbnail),
		Favicon:     optional(req.Favicon),
		Bookmark:    req.Bookmark,
		ContentType: contentType,
		UserID:      userID,
	}
	if err := s.contentRepo.InsertTx(ctx, tx, content); err != nil {
		return nil, nil, fmt.Errorf("failed to insert content: %w", err)
	}

	// Exactly one metadata side row, selected by the discriminant.
	switch contentType {
	case models.ContentTypeVideo:
		err = s.contentRepo.InsertVideoMetadataTx(ctx, tx, content.ID, req.VideoLength)
	case models.ContentTypePost:
		err = s.contentRepo.InsertPostMetadataTx(ctx, tx, content.ID, req.Body)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert %s metadata: %w", contentType, err)
	}

	tags, err := s.tagRepo.Reconcile(ctx, tx, userID, req.Tags)
	if err != nil {
		return nil, nil, err
	}

	if err := s.contentRepo.AttachTagsTx(ctx, tx, content.ID, tagIDs(tags)); err != nil {
		return nil, nil, err
	}

	return content, tags, nil
}

// ToggleBookmark flips the bookmark flag under a row lock so concurrent
// toggles apply serializably.
func (s *ContentService) ToggleBookmark(ctx context.Context, contentID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	bookmark, err := s.contentRepo.LockForBookmarkTx(ctx, tx, contentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Message: "Content not found"}
	}
	if err != nil {
		return fmt.Errorf("failed to lock content: %w", err)
	}

	if err := s.contentRepo.SetBookmarkTx(ctx, tx, contentID, !bookmark); err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}

	return tx.Commit(ctx)
}

// Edit overwrites the mutable scalar fields and reconciles the tag set.
// Detached tags that lost their last association are deleted; ones still
// referenced elsewhere survive and are reported back alongside the final set.
func (s *ContentService) Edit(ctx context.Context, userID, contentID uuid.UUID, req models.EditContentRequest) ([]models.TagResponse, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	content, err := s.contentRepo.GetOwnedTx(ctx, tx, contentID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Content not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	// url and favicon are immutable after creation.
	content.Title = req.Title
	content.Description = req.Description
	content.Thumbnail = optional(req.Thumbnail)
	content.Bookmark = req.Bookmark
	if err := s.contentRepo.UpdateScalarsTx(ctx, tx, content); err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}

	current, err := s.contentRepo.TagsForContentTx(ctx, tx, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current tags: %w", err)
	}

	currentNames := make([]string, 0, len(current))
	currentByName := make(map[string]models.Tag, len(current))
	for _, t := range current {
		currentNames = append(currentNames, t.Tagname)
		currentByName[t.Tagname] = t
	}

	added, removed := DiffTagNames(currentNames, req.Tags)

	final := make([]models.Tag, 0, len(req.Tags))
	removedSet := make(map[string]struct{}, len(removed))
	for _, name := range removed {
		removedSet[name] = struct{}{}
	}
	for _, t := range current {
		if _, gone := removedSet[t.Tagname]; !gone {
			final = append(final, t)
		}
	}

	for _, name := range removed {
		tag := currentByName[name]
		if err := s.contentRepo.DetachTagTx(ctx, tx, contentID, tag.ID); err != nil {
			return nil, fmt.Errorf("failed to detach tag %q: %w", name, err)
		}

		contentRefs, articleRefs, err := s.tagRepo.AssociationCounts(ctx, tx, tag.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to count tag references: %w", err)
		}
		if contentRefs == 0 && articleRefs == 0 {
			if err := s.tagRepo.DeleteTx(ctx, tx, tag.ID); err != nil {
				return nil, fmt.Errorf("failed to delete orphan tag %q: %w", name, err)
			}
			continue
		}
		// Still alive via other content; reported back but no longer
		// attached here.
		final = append(final, tag)
	}

	if len(added) > 0 {
		addedTags, err := s.tagRepo.Reconcile(ctx, tx, userID, added)
		if err != nil {
			return nil, err
		}
		if err := s.contentRepo.AttachTagsTx(ctx, tx, contentID, tagIDs(addedTags)); err != nil {
			return nil, err
		}
		final = append(final, addedTags...)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit edit: %w", err)
	}

	return tagResponses(final), nil
}

// Delete removes a content row, its metadata, its tag associations, and any
// tag orphaned by the removal.
func (s *ContentService) Delete(ctx context.Context, contentID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.contentRepo.GetTx(ctx, tx, contentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Content not found"}
		}
		return fmt.Errorf("failed to load content: %w", err)
	}

	tags, err := s.contentRepo.TagsForContentTx(ctx, tx, contentID)
	if err != nil {
		return fmt.Errorf("failed to load content tags: %w", err)
	}

	if err := s.contentRepo.DeleteAssociationsTx(ctx, tx, contentID); err != nil {
		return fmt.Errorf("failed to delete tag associations: %w", err)
	}

	for _, tag := range tags {
		contentRefs, articleRefs, err := s.tagRepo.AssociationCounts(ctx, tx, tag.ID, nil)
		if err != nil {
			return fmt.Errorf("failed to count tag references: %w", err)
		}
		if contentRefs == 0 && articleRefs == 0 {
			if err := s.tagRepo.DeleteTx(ctx, tx, tag.ID); err != nil {
				return fmt.Errorf("failed to delete orphan tag %q: %w", tag.Tagname, err)
			}
		}
	}

	// Cascade would catch these, but the delete is explicit so a partial
	// cascade misconfiguration can't leave metadata behind.
	if err := s.contentRepo.DeleteMetadataTx(ctx, tx, contentID); err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	if err := s.contentRepo.DeleteTx(ctx, tx, contentID); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *ContentService) ListAll(ctx context.Context, userID uuid.UUID) ([]models.ContentResponse, error) {
	return s.contentRepo.ListByUser(ctx, userID)
}

func (s *ContentService) ListByType(ctx context.Context, userID uuid.UUID, contentType models.ContentType) ([]models.ContentResponse, error) {
	if !contentType.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"content_type": "must be 'video' or 'post'"}}
	}
	return s.contentRepo.ListByUserAndType(ctx, userID, contentType)
}

func (s *ContentService) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]models.ContentResponse, error) {
	return s.contentRepo.ListBookmarked(ctx, userID)
}

func (s *ContentService) Search(ctx context.Context, userID uuid.UUID, keyword string) ([]models.ContentResponse, error) {
	if keyword == "" {
		return nil, &ValidationError{Fields: map[string]string{"keyword": "must not be empty"}}
	}
	return s.contentRepo.Search(ctx, userID, keyword)
}

// DiffTagNames computes the set difference between the current and requested
// tag names. Order follows the input slices; duplicates are ignored.
func DiffTagNames(current, requested []string) (added, removed []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, name := range current {
		currentSet[name] = struct{}{}
	}
	requestedSet := make(map[string]struct{}, len(requested))

	for _, name := range requested {
		if _, dup := requestedSet[name]; dup || name == "" {
			continue
		}
		requestedSet[name] = struct{}{}
		if _, ok := currentSet[name]; !ok {
			added = append(added, name)
		}
	}

	for _, name := range current {
		if _, ok := requestedSet[name]; !ok {
			removed = append(removed, name)
		}
	}

	return added, removed
}

func tagIDs(tags []models.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func tagResponses(tags []models.Tag) []models.TagResponse {
	out := make([]models.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, models.TagResponse{ID: t.ID, Tagname: t.Tagname, Color: t.Color})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

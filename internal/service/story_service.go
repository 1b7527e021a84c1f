package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/cache"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/validation"
)

// storyService is the concrete implementation of StoryService
type storyService struct {
	stories    repository.StoryRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	views      cache.ViewTracker
	now        func() time.Time
	log        zerolog.Logger
}

// newStoryService creates a new StoryService
func newStoryService(repos *repository.Repositories, views cache.ViewTracker, log zerolog.Logger) *storyService {
	return &storyService{
		stories:    repos.Story,
		users:      repos.User,
		categories: repos.Category,
		views:      views,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log.With().Str("service", "story").Logger(),
	}
}

// Create stores a new story owned by the caller, as a draft or submitted for review
func (s *storyService) Create(ctx context.Context, by models.Actor, in *models.StoryInput) (*models.Story, error) {
	if err := validation.ValidateStoryInput(in); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, by.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	if author == nil {
		return nil, apperror.NotFound("user %s not found", by.ID)
	}

	categoryID, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	story := &models.Story{
		ID:         uuid.New().String(),
		Content:    in.Content,
		Genre:      in.Genre,
		Hashtags:   in.Hashtags,
		Tags:       in.Tags,
		CategoryID: categoryID,
		AuthorID:   author.ID,
		AuthorName: author.Name(),
		Status:     models.StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Submit {
		story.Status = models.StatusPending
		story.SubmittedAt = &now
	}
	story.SetTitle(in.Title, now)
	story.Derive(in.Excerpt)

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	s.log.Info().
		Str("story_id", story.ID).
		Str("author_id", story.AuthorID).
		Str("status", string(story.Status)).
		Msg("Story created")
	return story, nil
}

// resolveCategory checks an explicit category or falls back to the default one
func (s *storyService) resolveCategory(ctx context.Context, id string) (string, error) {
	if id == "" {
		category, err := s.categories.GetOrCreate(ctx, models.DefaultCategoryName)
		if err != nil {
			return "", fmt.Errorf("failed to resolve default category: %w", err)
		}
		return category.ID, nil
	}

	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to check category: %w", err)
	}
	if !ok {
		return "", apperror.NotFound("category %s not found", id)
	}
	return id, nil
}

// Update replaces the author-editable fields. Status is left alone.
func (s *storyService) Update(ctx context.Context, id string, by models.Actor, in *models.StoryInput) (*models.Story, error) {
	if err := validation.ValidateStoryInput(in); err != nil {
		return nil, err
	}

	story, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != by.ID {
		return nil, apperror.Forbidden("only the author can edit this story")
	}

	if in.CategoryID != "" && in.CategoryID != story.CategoryID {
		if story.CategoryID, err = s.resolveCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	story.SetTitle(in.Title, now)
	story.Content = in.Content
	story.Genre = in.Genre
	story.Hashtags = in.Hashtags
	story.Tags = in.Tags
	story.Derive(in.Excerpt)
	story.UpdatedAt = now

	if err := s.stories.Update(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to update story: %w", err)
	}
	return story, nil
}

// Get fetches a story by id or slug. Unpublished stories are visible to their
// author and to moderators only. Public reads count one view per viewer.
func (s *storyService) Get(ctx context.Context, idOrSlug string, viewer *models.Actor, viewerKey string) (*models.Story, error) {
	var (
		story *models.Story
		err   error
	)
	if _, perr := uuid.Parse(idOrSlug); perr == nil {
		story, err = s.stories.GetByID(ctx, idOrSlug)
	} else {
		story, err = s.stories.GetBySlug(ctx, strings.ToLower(idOrSlug))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story == nil || !canView(story, viewer) {
		return nil, apperror.NotFound("story %s not found", idOrSlug)
	}

	if story.IsPublic() {
		s.countView(ctx, story, viewerKey)
	}
	return story, nil
}

// countView increments the view counter once per viewer per TTL window.
// Failures are logged; a read never fails because of view tracking.
func (s *storyService) countView(ctx context.Context, story *models.Story, viewerKey string) {
	first, err := s.views.FirstView(ctx, story.ID, viewerKey)
	if err != nil {
		s.log.Warn().Err(err).Str("story_id", story.ID).Msg("View de-duplication unavailable")
		first = true
	}
	if !first {
		return
	}
	if err := s.stories.IncrementViews(ctx, story.ID); err != nil {
		s.log.Error().Err(err).Str("story_id", story.ID).Msg("Failed to count view")
		return
	}
	story.Views++
}

// Delete removes a story. Allowed for its author and for admins.
func (s *storyService) Delete(ctx context.Context, id string, by models.Actor) error {
	story, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if story.AuthorID != by.ID && !by.IsAdmin() {
		return apperror.Forbidden("only the author or an admin can delete this story")
	}

	deleted, err := s.stories.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if !deleted {
		return apperror.NotFound("story %s not found", id)
	}

	s.log.Info().Str("story_id", id).Str("by", by.ID).Msg("Story deleted")
	return nil
}

// Like toggles the caller's like
func (s *storyService) Like(ctx context.Context, id string, by models.Actor) (*models.Engagement, error) {
	return s.toggle(ctx, id, by, s.stories.ToggleLike)
}

// Save toggles the caller's bookmark
func (s *storyService) Save(ctx context.Context, id string, by models.Actor) (*models.Engagement, error) {
	return s.toggle(ctx, id, by, s.stories.ToggleSave)
}

func (s *storyService) toggle(ctx context.Context, id string, by models.Actor,
	fn func(ctx context.Context, storyID, userID string) (*models.Engagement, error)) (*models.Engagement, error) {
	story, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !story.IsPublic() {
		return nil, apperror.NotFound("story %s not found", id)
	}

	eng, err := fn(ctx, id, by.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update engagement: %w", err)
	}
	if eng == nil {
		return nil, apperror.NotFound("story %s not found", id)
	}
	return eng, nil
}

// Share counts one share of a published story
func (s *storyService) Share(ctx context.Context, id string) (int, error) {
	story, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	if !story.IsPublic() {
		return 0, apperror.NotFound("story %s not found", id)
	}

	shares, err := s.stories.IncrementShares(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to count share: %w", err)
	}
	return shares, nil
}

func (s *storyService) load(ctx context.Context, id string) (*models.Story, error) {
	story, err := s.stories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story == nil {
		return nil, apperror.NotFound("story %s not found", id)
	}
	return story, nil
}

func canView(story *models.Story, viewer *models.Actor) bool {
	if story.IsPublic() {
		return true
	}
	return viewer != nil && (viewer.ID == story.AuthorID || viewer.CanModerate())
}

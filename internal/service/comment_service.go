package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/validation"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	stories  repository.StoryRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	now      func() time.Time
	log      zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, log zerolog.Logger) *commentService {
	return &commentService{
		stories:  repos.Story,
		comments: repos.Comment,
		users:    repos.User,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "comment").Logger(),
	}
}

// Add posts a comment or a reply to a top-level comment on a published story
func (s *commentService) Add(ctx context.Context, storyID string, by models.Actor, in *models.CommentInput) (*models.Comment, error) {
	if err := validation.ValidateComment(in); err != nil {
		return nil, err
	}

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story == nil || !story.IsPublic() {
		return nil, apperror.NotFound("story %s not found", storyID)
	}

	author, err := s.users.GetByID(ctx, by.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	if author == nil {
		return nil, apperror.NotFound("user %s not found", by.ID)
	}

	now := s.now()
	comment := &models.Comment{
		ID:         uuid.New().String(),
		StoryID:    storyID,
		AuthorID:   author.ID,
		AuthorName: author.Name(),
		Body:       strings.TrimSpace(in.Body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if in.ParentID != "" {
		parent, err := s.comments.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent comment: %w", err)
		}
		if parent == nil || parent.StoryID != storyID {
			return nil, apperror.NotFound("comment %s not found on this story", in.ParentID)
		}
		if parent.ParentID != nil {
			return nil, apperror.Validation("replies can only be made to top-level comments")
		}
		comment.ParentID = &parent.ID
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// List returns the story's comments as threads. Moderators also see hidden comments.
func (s *commentService) List(ctx context.Context, storyID string, viewer *models.Actor) ([]models.CommentThread, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story == nil || !canView(story, viewer) {
		return nil, apperror.NotFound("story %s not found", storyID)
	}

	includeHidden := viewer != nil && viewer.CanModerate()
	comments, err := s.comments.ListByStory(ctx, storyID, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return models.BuildThreads(comments), nil
}

// SetHidden hides or restores a comment
func (s *commentService) SetHidden(ctx context.Context, commentID string, by models.Actor, hidden bool) (*models.Comment, error) {
	if !by.CanModerate() {
		return nil, apperror.Forbidden("only moderators can hide comments")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return nil, apperror.NotFound("comment %s not found", commentID)
	}
	if comment.Hidden == hidden {
		return comment, nil
	}

	if err := s.comments.SetHidden(ctx, commentID, hidden); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	comment.Hidden = hidden

	s.log.Info().
		Str("comment_id", commentID).
		Bool("hidden", hidden).
		Str("moderator_id", by.ID).
		Msg("Comment visibility changed")
	return comment, nil
}

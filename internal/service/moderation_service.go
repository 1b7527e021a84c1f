package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/config"
	"github.com/storyhub-api/internal/metrics"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/notify"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/search"
	"github.com/storyhub-api/internal/validation"
)

const (
	// StuckAfter is how long a story may wait in pending before it counts as stuck
	StuckAfter = 24 * time.Hour
	// RecentWindow bounds the "recently moderated" statistic
	RecentWindow = 7 * 24 * time.Hour
)

// QueuePage is one page of the moderation queue
type QueuePage struct {
	Status     models.Status         `json:"status"`
	Stories    []models.StorySummary `json:"stories"`
	Pagination models.Pagination     `json:"pagination"`
}

// moderationService is the concrete implementation of ModerationService
type moderationService struct {
	stories    repository.StoryRepository
	moderation repository.ModerationRepository
	users      repository.UserRepository
	limits     config.SearchConfig
	submitter  Submitter
	sender     notify.Sender
	now        func() time.Time
	log        zerolog.Logger
}

// newModerationService creates a new ModerationService
func newModerationService(repos *repository.Repositories, limits config.SearchConfig, deps Deps, log zerolog.Logger) *moderationService {
	return &moderationService{
		stories:    repos.Story,
		moderation: repos.Moderation,
		users:      repos.User,
		limits:     limits,
		submitter:  deps.Notifications,
		sender:     deps.Sender,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log.With().Str("service", "moderation").Logger(),
	}
}

type transitionFunc func(story *models.Story, now time.Time) (*models.Transition, error)

// Approve publishes a story
func (s *moderationService) Approve(ctx context.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error) {
	if err := validation.ValidateFeedback(feedback, false); err != nil {
		return nil, err
	}
	return s.transition(ctx, storyID, models.ActionApproved, notify.KindStoryApproved,
		func(story *models.Story, now time.Time) (*models.Transition, error) {
			return story.Approve(by, feedback, now)
		})
}

// Reject rejects a story. Feedback is checked before the story is loaded.
func (s *moderationService) Reject(ctx context.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error) {
	if err := validation.ValidateFeedback(feedback, true); err != nil {
		metrics.ObserveTransition(string(models.ActionRejected), apperror.KindValidation.String())
		return nil, err
	}
	return s.transition(ctx, storyID, models.ActionRejected, notify.KindStoryRejected,
		func(story *models.Story, now time.Time) (*models.Transition, error) {
			return story.Reject(by, feedback, now)
		})
}

// Unpublish moves a published story back to draft
func (s *moderationService) Unpublish(ctx context.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error) {
	if err := validation.ValidateFeedback(feedback, false); err != nil {
		return nil, err
	}
	return s.transition(ctx, storyID, models.ActionUnpublished, notify.KindStoryUnpublished,
		func(story *models.Story, now time.Time) (*models.Transition, error) {
			return story.Unpublish(by, feedback, now)
		})
}

// Resubmit returns a draft or rejected story to the queue on behalf of its author
func (s *moderationService) Resubmit(ctx context.Context, storyID string, by models.Actor) (*models.StorySummary, error) {
	return s.transition(ctx, storyID, models.ActionResubmitted, "",
		func(story *models.Story, now time.Time) (*models.Transition, error) {
			return story.Resubmit(by, now)
		})
}

// transition loads the story, applies fn and persists the result with its history entry.
// A non-empty kind queues an author notification once the change is committed.
func (s *moderationService) transition(ctx context.Context, storyID string, action models.ModerationAction, kind notify.Kind, fn transitionFunc) (*models.StorySummary, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story == nil {
		metrics.ObserveTransition(string(action), apperror.KindNotFound.String())
		return nil, apperror.NotFound("story %s not found", storyID)
	}

	t, err := fn(story, s.now())
	if err != nil {
		metrics.ObserveTransition(string(action), apperror.KindOf(err).String())
		return nil, err
	}

	if err := s.moderation.Apply(ctx, t); err != nil {
		metrics.ObserveTransition(string(action), apperror.KindOf(err).String())
		if apperror.Is(err, apperror.KindConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply %s: %w", action, err)
	}
	metrics.ObserveTransition(string(action), "ok")

	s.log.Info().
		Str("story_id", story.ID).
		Str("action", string(action)).
		Str("moderator_id", t.Entry.ModeratorID).
		Str("from", string(t.Expected)).
		Str("to", string(story.Status)).
		Msg("Story status changed")

	if kind != "" {
		s.notifyAuthor(story, kind, t.Entry.Feedback)
	}

	summary := story.Summary()
	return &summary, nil
}

// notifyAuthor queues a best-effort message to the story's author
func (s *moderationService) notifyAuthor(story *models.Story, kind notify.Kind, feedback *string) {
	if s.submitter == nil || s.sender == nil {
		return
	}

	msg := notify.Message{
		Kind:       kind,
		StoryID:    story.ID,
		StoryTitle: story.Title,
		StorySlug:  story.Slug,
	}
	if feedback != nil {
		msg.Feedback = *feedback
	}
	authorID := story.AuthorID

	s.submitter.Submit(string(kind), func(ctx context.Context) error {
		author, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			return fmt.Errorf("failed to load author: %w", err)
		}
		if author == nil {
			return fmt.Errorf("author %s no longer exists", authorID)
		}
		msg.ToName = author.Name()
		msg.ToEmail = author.Email
		return s.sender.Send(ctx, msg)
	})
}

// GetModerationHistory returns a story's audit trail with current moderator names
func (s *moderationService) GetModerationHistory(ctx context.Context, storyID string) (*models.ModerationHistory, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if story == nil {
		return nil, apperror.NotFound("story %s not found", storyID)
	}

	entries, err := s.moderation.History(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load moderation history: %w", err)
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.ModeratorID] {
			seen[e.ModeratorID] = true
			ids = append(ids, e.ModeratorID)
		}
	}
	if len(ids) > 0 {
		users, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve moderators: %w", err)
		}
		for i := range entries {
			if u, ok := users[entries[i].ModeratorID]; ok {
				entries[i].ModeratorName = u.Name()
			}
		}
	}

	return &models.ModerationHistory{
		StoryID:           story.ID,
		Title:             story.Title,
		Status:            story.Status,
		RejectionFeedback: story.RejectionFeedback,
		PublishedAt:       story.PublishedAt,
		History:           entries,
	}, nil
}

// GetModerationStats aggregates the queue
func (s *moderationService) GetModerationStats(ctx context.Context) (*models.ModerationStats, error) {
	now := s.now()

	byStatus, err := s.moderation.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}
	stuck, err := s.moderation.CountPendingBefore(ctx, now.Add(-StuckAfter))
	if err != nil {
		return nil, fmt.Errorf("failed to count stuck stories: %w", err)
	}
	recent, err := s.moderation.CountModeratedSince(ctx, now.Add(-RecentWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count moderated stories: %w", err)
	}

	return &models.ModerationStats{
		ByStatus:        byStatus,
		StuckPending:    stuck,
		RecentlyHandled: recent,
		GeneratedAt:     now,
	}, nil
}

// ListQueue pages through stories in one status, oldest first. Empty status means pending.
func (s *moderationService) ListQueue(ctx context.Context, status string, page, limit int) (*QueuePage, error) {
	st := models.StatusPending
	if status != "" {
		parsed, ok := models.ParseStatus(status)
		if !ok {
			return nil, apperror.Validation("unknown status %q", status)
		}
		st = parsed
	}

	page, limit = search.Page(page, limit, s.limits.DefaultLimit, s.limits.MaxLimit)
	stories, total, err := s.moderation.Queue(ctx, st, limit, search.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	summaries := make([]models.StorySummary, 0, len(stories))
	for _, story := range stories {
		summaries = append(summaries, story.Summary())
	}

	return &QueuePage{
		Status:     st,
		Stories:    summaries,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

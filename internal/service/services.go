package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/cache"
	"github.com/storyhub-api/internal/config"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/notify"
	"github.com/storyhub-api/internal/repository"
)

// ModerationService defines the interface for the moderation engine
type ModerationService interface {
	Approve(ctx context.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error)
	Reject(ctx context.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error)
	Unpublish(ctx context.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error)
	Resubmit(ctx context.Context, storyID string, by models.Actor) (*models.StorySummary, error)
	GetModerationHistory(ctx context.Context, storyID string) (*models.ModerationHistory, error)
	GetModerationStats(ctx context.Context) (*models.ModerationStats, error)
	ListQueue(ctx context.Context, status string, page, limit int) (*QueuePage, error)
}

// SearchService defines the interface for the search engine
type SearchService interface {
	SearchStories(ctx context.Context, req StorySearchRequest, caller *models.Actor) (*StorySearchResult, error)
	SearchUsers(ctx context.Context, req UserSearchRequest) (*UserSearchResult, error)
	Suggestions(ctx context.Context, q string, limit int) (*models.Suggestions, error)
	Filters(ctx context.Context) (*models.FilterValues, error)
}

// StoryService defines the interface for story authoring and engagement
type StoryService interface {
	Create(ctx context.Context, by models.Actor, in *models.StoryInput) (*models.Story, error)
	Update(ctx context.Context, id string, by models.Actor, in *models.StoryInput) (*models.Story, error)
	Get(ctx context.Context, idOrSlug string, viewer *models.Actor, viewerKey string) (*models.Story, error)
	Delete(ctx context.Context, id string, by models.Actor) error
	Like(ctx context.Context, id string, by models.Actor) (*models.Engagement, error)
	Save(ctx context.Context, id string, by models.Actor) (*models.Engagement, error)
	Share(ctx context.Context, id string) (int, error)
}

// CommentService defines the interface for story comments
type CommentService interface {
	Add(ctx context.Context, storyID string, by models.Actor, in *models.CommentInput) (*models.Comment, error)
	List(ctx context.Context, storyID string, viewer *models.Actor) ([]models.CommentThread, error)
	SetHidden(ctx context.Context, commentID string, by models.Actor, hidden bool) (*models.Comment, error)
}

// UserService defines the interface for user administration
type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string, by models.Actor) error
	Count(ctx context.Context) (int, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamStories(ctx context.Context, w http.ResponseWriter, format string, filter repository.ExportFilter) error
}

// Submitter queues background notification work
type Submitter interface {
	Submit(kind string, task notify.Task) bool
}

// Deps are the collaborators shared by the services
type Deps struct {
	Notifications Submitter
	Sender        notify.Sender
	Views         cache.ViewTracker
}

// Services holds all service interfaces
type Services struct {
	Moderation ModerationService
	Search     SearchService
	Story      StoryService
	Comment    CommentService
	User       UserService
	Export     ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, deps Deps, log zerolog.Logger) *Services {
	if deps.Views == nil {
		deps.Views = cache.NewViewTracker(nil, 0)
	}

	return &Services{
		Moderation: newModerationService(repos, cfg.Search, deps, log),
		Search:     newSearchService(repos.Search, cfg.Search, log),
		Story:      newStoryService(repos, deps.Views, log),
		Comment:    newCommentService(repos, log),
		User:       newUserService(repos.User, log),
		Export:     newExportService(repos, log),
	}
}

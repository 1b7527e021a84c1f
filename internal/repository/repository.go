package repository

import (
	"context"
	"time"

	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/search"
)

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	Update(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id string) (*models.Story, error)
	GetBySlug(ctx context.Context, slug string) (*models.Story, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementShares(ctx context.Context, id string) (int, error)
	ToggleLike(ctx context.Context, storyID, userID string) (*models.Engagement, error)
	ToggleSave(ctx context.Context, storyID, userID string) (*models.Engagement, error)
	StreamAll(ctx context.Context, filter ExportFilter, callback func(*models.Story) error) error
}

// ModerationRepository persists status transitions and their audit trail
type ModerationRepository interface {
	// Apply writes the transition's story fields and history entry atomically.
	// It fails with a conflict when the stored status is no longer t.Expected.
	Apply(ctx context.Context, t *models.Transition) error
	History(ctx context.Context, storyID string) ([]models.ModerationEntry, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
	CountPendingBefore(ctx context.Context, before time.Time) (int, error)
	CountModeratedSince(ctx context.Context, since time.Time) (int, error)
	Queue(ctx context.Context, status models.Status, limit, offset int) ([]*models.Story, int, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByStory(ctx context.Context, storyID string, includeHidden bool) ([]models.Comment, error)
	SetHidden(ctx context.Context, id string, hidden bool) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	GetOrCreate(ctx context.Context, name string) (*models.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// SearchRepository runs compiled search queries
type SearchRepository interface {
	SearchStories(ctx context.Context, q search.StoryQuery, limit, offset int) ([]models.StoryHit, int, error)
	SearchUsers(ctx context.Context, text string, sort search.SortMode, limit, offset int) ([]models.UserHit, int, error)
	SuggestTitles(ctx context.Context, text string, limit int) ([]string, error)
	SuggestUsernames(ctx context.Context, text string, limit int) ([]string, error)
	SuggestHashtags(ctx context.Context, text string, limit int) ([]string, error)
	Genres(ctx context.Context) ([]string, error)
	PopularTags(ctx context.Context, limit int) ([]models.TagCount, error)
	TopAuthors(ctx context.Context, limit int) ([]models.AuthorCount, error)
}

// ExportFilter narrows a story export
type ExportFilter struct {
	Status        *models.Status
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Repositories holds all repository interfaces
type Repositories struct {
	Story      StoryRepository
	Moderation ModerationRepository
	User       UserRepository
	Comment    CommentRepository
	Category   CategoryRepository
	Search     SearchRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Story:      NewStoryRepo(db),
		Moderation: NewModerationRepo(db),
		User:       NewUserRepo(db),
		Comment:    NewCommentRepo(db),
		Category:   NewCategoryRepo(db),
		Search:     NewSearchRepo(db),
	}
}

package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/search"
)

// setupRepos starts a PostgreSQL container, applies migrations and returns the repositories
func setupRepos(t *testing.T) (*repository.Repositories, *database.DB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storyhub"),
		postgres.WithUsername("storyhub"),
		postgres.WithPassword("storyhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.Wrap(sqlDB, zerolog.Nop())
	require.NoError(t, db.RunMigrations(migrationsPath))

	return repository.New(db), db
}

func seedUser(t *testing.T, repos *repository.Repositories, username, display string, followers int) *models.User {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:             uuid.NewString(),
		Username:       username,
		DisplayName:    display,
		Email:          username + "@example.com",
		Role:           models.RoleUser,
		FollowersCount: followers,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func seedStory(t *testing.T, repos *repository.Repositories, author *models.User, title, genre string, status models.Status, publishedAt *time.Time, hashtags ...string) *models.Story {
	t.Helper()
	ctx := context.Background()
	cat, err := repos.Category.GetOrCreate(ctx, models.DefaultCategoryName)
	require.NoError(t, err)

	now := time.Now().UTC()
	s := &models.Story{
		ID:          uuid.NewString(),
		Content:     "<p>A tale of " + title + "</p>",
		Genre:       genre,
		Hashtags:    hashtags,
		CategoryID:  cat.ID,
		AuthorID:    author.ID,
		AuthorName:  author.Name(),
		Status:      status,
		PublishedAt: publishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Slug = uuid.NewString()
	s.Title = title
	s.Derive("")
	require.NoError(t, repos.Story.Create(ctx, s))
	return s
}

func TestRepositories_Integration(t *testing.T) {
	repos, _ := setupRepos(t)
	ctx := context.Background()

	ann := seedUser(t, repos, "annwrites", "Ann Writer", 120)
	bob := seedUser(t, repos, "bobreads", "Bob", 3)
	mod := seedUser(t, repos, "modmia", "Mia", 0)
	moderator := models.Actor{ID: mod.ID, Name: mod.Name(), Role: models.RoleModerator}

	t.Run("category is created once", func(t *testing.T) {
		a, err := repos.Category.GetOrCreate(ctx, "general")
		require.NoError(t, err)
		b, err := repos.Category.GetOrCreate(ctx, "general")
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, "general", a.Slug)
	})

	t.Run("moderation transition writes story and history", func(t *testing.T) {
		story := seedStory(t, repos, ann, "Dragon Song", "Fantasy", models.StatusPending, nil, "#epic")

		tr, err := story.Approve(moderator, "", time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, repos.Moderation.Apply(ctx, tr))
		assert.NotZero(t, tr.Entry.ID)

		stored, err := repos.Story.GetByID(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, stored.Status)
		assert.NotNil(t, stored.PublishedAt)
		assert.Equal(t, mod.ID, *stored.LastModeratedBy)

		history, err := repos.Moderation.History(ctx, story.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.ActionApproved, history[0].Action)
		assert.Equal(t, models.StatusPending, history[0].PreviousStatus)
	})

	t.Run("resubmission records the queue entry time only", func(t *testing.T) {
		story := seedStory(t, repos, ann, "Second Try", "Drama", models.StatusDraft, nil)

		tr, err := story.Resubmit(models.Actor{ID: ann.ID, Name: ann.Name()}, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, repos.Moderation.Apply(ctx, tr))

		stored, err := repos.Story.GetByID(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
		assert.Nil(t, stored.LastModeratedBy)
		assert.Nil(t, stored.LastModeratedAt)
		assert.NotNil(t, stored.SubmittedAt)
	})

	t.Run("stale transition is a conflict", func(t *testing.T) {
		story := seedStory(t, repos, ann, "Race", "Drama", models.StatusPending, nil)

		first := *story
		second := *story
		tr1, err := first.Approve(moderator, "", time.Now().UTC())
		require.NoError(t, err)
		tr2, err := second.Reject(moderator, "nope", time.Now().UTC())
		require.NoError(t, err)

		require.NoError(t, repos.Moderation.Apply(ctx, tr1))
		err = repos.Moderation.Apply(ctx, tr2)
		assert.True(t, apperror.Is(err, apperror.KindConflict), "got %v", err)

		history, err := repos.Moderation.History(ctx, story.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("likes follow relationship rows under concurrency", func(t *testing.T) {
		story := seedStory(t, repos, ann, "Counted", "Poetry", models.StatusPublished, nil)
		users := []*models.User{bob, mod, ann}

		var wg sync.WaitGroup
		for _, u := range users {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, err := repos.Story.ToggleLike(ctx, story.ID, userID)
				assert.NoError(t, err)
			}(u.ID)
		}
		wg.Wait()

		stored, err := repos.Story.GetByID(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Likes)

		eng, err := repos.Story.ToggleLike(ctx, story.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, eng.Active)
		assert.Equal(t, 2, eng.Count)

		missing, err := repos.Story.ToggleLike(ctx, uuid.NewString(), bob.ID)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("hidden comments are not counted", func(t *testing.T) {
		story := seedStory(t, repos, ann, "Talked About", "Drama", models.StatusPublished, nil)
		now := time.Now().UTC()
		c := &models.Comment{ID: uuid.NewString(), StoryID: story.ID, AuthorID: bob.ID, AuthorName: "Bob", Body: "nice", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repos.Comment.Create(ctx, c))

		stored, _ := repos.Story.GetByID(ctx, story.ID)
		assert.Equal(t, 1, stored.Comments)

		require.NoError(t, repos.Comment.SetHidden(ctx, c.ID, true))
		stored, _ = repos.Story.GetByID(ctx, story.ID)
		assert.Equal(t, 0, stored.Comments)

		visible, err := repos.Comment.ListByStory(ctx, story.ID, false)
		require.NoError(t, err)
		assert.Empty(t, visible)
	})

	t.Run("search stories by directives", func(t *testing.T) {
		march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		april := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
		seedStory(t, repos, ann, "Dragons of March", "Fantasy", models.StatusPublished, &march, "#epic", "#quest")
		seedStory(t, repos, ann, "Dragons of April", "Fantasy", models.StatusPublished, &april, "#epic")
		seedStory(t, repos, ann, "Dragons Drafted", "Fantasy", models.StatusDraft, nil, "#epic")

		q := search.StoryQuery{Filter: search.ParseQuery("dragons #epic author:annw date:2024-03"), Sort: search.SortNewest}
		hits, total, err := repos.Search.SearchStories(ctx, q, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, hits, 1)
		assert.Equal(t, "Dragons of March", hits[0].Title)
		assert.Equal(t, "annwrites", hits[0].Author.Username)

		again, total2, err := repos.Search.SearchStories(ctx, q, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, total, total2)
		assert.Equal(t, hits, again)

		withDrafts := search.StoryQuery{
			Filter:   search.ParseQuery("dragons"),
			Statuses: []models.Status{models.StatusPublished, models.StatusDraft},
		}
		_, total, err = repos.Search.SearchStories(ctx, withDrafts, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("search users ranks username matches first", func(t *testing.T) {
		seedUser(t, repos, "quietone", "Ann Other", 50)

		hits, total, err := repos.Search.SearchUsers(ctx, "ann", search.SortRelevance, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, hits, 2)
		assert.Equal(t, "annwrites", hits[0].Username)
		assert.InDelta(t, 16.2, hits[0].Score, 0.001)
	})

	t.Run("filters and suggestions", func(t *testing.T) {
		genres, err := repos.Search.Genres(ctx)
		require.NoError(t, err)
		assert.Contains(t, genres, "Fantasy")

		tags, err := repos.Search.PopularTags(ctx, 20)
		require.NoError(t, err)
		require.NotEmpty(t, tags)
		assert.Equal(t, "#epic", tags[0].Tag)

		authors, err := repos.Search.TopAuthors(ctx, 10)
		require.NoError(t, err)
		require.NotEmpty(t, authors)
		assert.Equal(t, ann.ID, authors[0].ID)

		titles, err := repos.Search.SuggestTitles(ctx, "drag", 5)
		require.NoError(t, err)
		assert.NotContains(t, titles, "Dragons Drafted")

		hashtags, err := repos.Search.SuggestHashtags(ctx, "que", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"#quest"}, hashtags)
	})

	t.Run("stats", func(t *testing.T) {
		counts, err := repos.Moderation.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Len(t, counts, len(models.AllStatuses))
		assert.Positive(t, counts[models.StatusPublished])

		recent, err := repos.Moderation.CountModeratedSince(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Positive(t, recent)
	})

	t.Run("deleting a user cascades and recounts", func(t *testing.T) {
		carl := seedUser(t, repos, "carl", "Carl", 0)
		own := seedStory(t, repos, carl, "Carl's Own", "Horror", models.StatusPublished, nil)
		other := seedStory(t, repos, ann, "Liked By Carl", "Horror", models.StatusPublished, nil)
		_, err := repos.Story.ToggleLike(ctx, other.ID, carl.ID)
		require.NoError(t, err)

		deleted, err := repos.User.Delete(ctx, carl.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		gone, err := repos.Story.GetByID(ctx, own.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		stored, err := repos.Story.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.Likes)

		deleted, err = repos.User.Delete(ctx, carl.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

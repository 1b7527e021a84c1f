package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-api/internal/config"
	"github.com/storyhub-api/internal/mocks"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/notify"
	"github.com/storyhub-api/internal/service"
)

type fixture struct {
	svc        *service.Services
	store      *mocks.Store
	sender     *mocks.RecordingSender
	views      *mocks.MemoryViewTracker
	dispatcher *notify.Dispatcher
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			DefaultLimit:    10,
			MaxLimit:        100,
			SuggestionLimit: 5,
			MaxSuggestions:  10,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos, store := mocks.NewRepositories()
	sender := mocks.NewRecordingSender()
	views := mocks.NewMemoryViewTracker()
	dispatcher := notify.NewDispatcher(1, 16, time.Second, nil, zerolog.Nop())
	t.Cleanup(func() { _ = dispatcher.Shutdown(context.Background()) })

	svc := service.NewServices(repos, testConfig(), service.Deps{
		Notifications: dispatcher,
		Sender:        sender,
		Views:         views,
	}, zerolog.Nop())

	return &fixture{svc: svc, store: store, sender: sender, views: views, dispatcher: dispatcher}
}

// drain waits for queued notifications to be delivered
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.dispatcher.Shutdown(context.Background()))
}

func (f *fixture) user(username string, role models.Role) *models.User {
	u := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		DisplayName: username + " display",
		Email:       username + "@example.com",
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	f.store.PutUser(u)
	return u
}

func (f *fixture) story(author *models.User, title string, status models.Status) *models.Story {
	now := time.Now().UTC()
	s := &models.Story{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    "Once upon a time " + title,
		Genre:      "Fantasy",
		Hashtags:   []string{},
		Tags:       []string{},
		AuthorID:   author.ID,
		AuthorName: author.Name(),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.Slug = models.NewSlug(title, now)
	if status == models.StatusPublished {
		s.PublishedAt = &now
	}
	f.store.PutStory(s)
	return s
}

func actor(u *models.User) models.Actor {
	return models.Actor{ID: u.ID, Name: u.Name(), Role: u.Role}
}

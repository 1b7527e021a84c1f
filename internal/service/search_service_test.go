package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/search"
	"github.com/storyhub-api/internal/service"
)

func TestSearch_QueryLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		query   string
		wantErr bool
	}{
		{"", true},
		{"a", true},
		{"  a  ", true},
		{"ab", false},
		{"dragons", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := f.svc.Search.SearchStories(ctx, service.StorySearchRequest{Query: tt.query}, nil)
			if tt.wantErr {
				assert.True(t, apperror.Is(err, apperror.KindValidation))
			} else {
				assert.NoError(t, err)
			}

			_, err = f.svc.Search.SearchUsers(ctx, service.UserSearchRequest{Query: tt.query})
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestSearch_LimitIsClamped(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Search.SearchStories(context.Background(), service.StorySearchRequest{
		Query: "dragons",
		Page:  0,
		Limit: 1000,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Pagination.Limit)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, 100, f.store.LastLimit)
	assert.Equal(t, 0, f.store.LastOffset)

	res, err = f.svc.Search.SearchStories(context.Background(), service.StorySearchRequest{
		Query: "dragons",
		Page:  3,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Pagination.Limit)
	assert.Equal(t, 20, f.store.LastOffset)
}

func TestSearch_ParsesDirectivesAndExplicitParamsWin(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Search.SearchStories(context.Background(), service.StorySearchRequest{
		Query: "dragons genre:Horror #Epic author:jdoe date:2024-03",
		Genre: "Fantasy",
		Sort:  "trending",
	}, nil)
	require.NoError(t, err)

	q := f.store.LastStoryQuery
	assert.Equal(t, "dragons", q.Filter.Text)
	assert.Equal(t, "Fantasy", q.Filter.Genre)
	assert.Equal(t, "jdoe", q.Filter.Author)
	assert.Equal(t, []string{"#epic"}, q.Filter.Hashtags)
	require.NotNil(t, q.Filter.DateRange)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), q.Filter.DateRange.From)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), q.Filter.DateRange.To)
	assert.Equal(t, search.SortTrending, q.Sort)
	assert.Equal(t, search.SortTrending, res.Sort)
	assert.Equal(t, q.Filter, res.Query)
}

func TestSearch_UnpublishedOnlyForModerators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user("ann", models.RoleUser)
	f.story(author, "Dragon Song", models.StatusPublished)
	f.story(author, "Dragon Draft", models.StatusDraft)
	f.story(author, "Dragon Pending", models.StatusPending)

	req := service.StorySearchRequest{Query: "dragon", IncludeUnpublished: true}

	res, err := f.svc.Search.SearchStories(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Total)

	reader := models.Actor{ID: author.ID, Role: models.RoleUser}
	res, err = f.svc.Search.SearchStories(ctx, req, &reader)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Total)

	mod := models.Actor{ID: "m", Role: models.RoleModerator}
	res, err = f.svc.Search.SearchStories(ctx, req, &mod)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Total)
	assert.Equal(t, []models.Status{models.StatusPublished, models.StatusDraft}, f.store.LastStoryQuery.Statuses)
}

func TestSearch_HashtagFilter(t *testing.T) {
	f := newFixture(t)
	author := f.user("ann", models.RoleUser)

	tagged := f.story(author, "Tagged", models.StatusPublished)
	tagged.Hashtags = []string{"#epic", "#dragons"}
	f.store.PutStory(tagged)
	f.story(author, "Untagged", models.StatusPublished)

	res, err := f.svc.Search.SearchStories(context.Background(), service.StorySearchRequest{Query: "#EPIC"}, nil)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, tagged.ID, res.Results[0].ID)
	assert.Equal(t, "ann", res.Results[0].Author.Username)
}

func TestSearch_UsersRanking(t *testing.T) {
	f := newFixture(t)

	byName := f.user("annwrites", models.RoleUser)
	other := f.user("quietone", models.RoleUser)
	other.DisplayName = "Ann Quiet"
	other.FollowersCount = 50
	f.store.PutUser(other)

	res, err := f.svc.Search.SearchUsers(context.Background(), service.UserSearchRequest{Query: "ann", Limit: 500})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, byName.ID, res.Results[0].ID)
	assert.InDelta(t, 15.0, res.Results[0].Score, 0.001)
	assert.InDelta(t, 5.5, res.Results[1].Score, 0.001)
	assert.Equal(t, 100, res.Pagination.Limit)
	assert.Equal(t, search.SortRelevance, res.Sort)
}

func TestSearch_Suggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user("dragonfan", models.RoleUser)
	s := f.story(author, "Dragon Song", models.StatusPublished)
	s.Hashtags = []string{"#dragons"}
	f.store.PutStory(s)
	f.story(author, "Dragon Draft", models.StatusDraft)

	short, err := f.svc.Search.Suggestions(ctx, "d", 5)
	require.NoError(t, err)
	assert.Equal(t, models.EmptySuggestions(), short)

	sug, err := f.svc.Search.Suggestions(ctx, "drag", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dragon Song"}, sug.Stories)
	assert.Equal(t, []string{"dragonfan"}, sug.Users)
	assert.Equal(t, []string{"#dragons"}, sug.Tags)

	sug, err = f.svc.Search.Suggestions(ctx, "#drag", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"#dragons"}, sug.Tags)
}

func TestSearch_Filters(t *testing.T) {
	f := newFixture(t)
	ann := f.user("ann", models.RoleUser)
	bob := f.user("bob", models.RoleUser)

	for i := 0; i < 2; i++ {
		s := f.story(ann, "Ann story", models.StatusPublished)
		s.Hashtags = []string{"#epic"}
		f.store.PutStory(s)
	}
	s := f.story(bob, "Bob story", models.StatusPublished)
	s.Genre = "Horror"
	s.Hashtags = []string{"#epic", "#dark"}
	f.store.PutStory(s)
	f.story(bob, "Bob draft", models.StatusDraft)

	values, err := f.svc.Search.Filters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Horror"}, values.Genres)
	require.Len(t, values.PopularTags, 2)
	assert.Equal(t, models.TagCount{Tag: "#epic", Count: 3}, values.PopularTags[0])
	require.Len(t, values.TopAuthors, 2)
	assert.Equal(t, "ann", values.TopAuthors[0].Username)
	assert.Equal(t, 2, values.TopAuthors[0].Stories)
}

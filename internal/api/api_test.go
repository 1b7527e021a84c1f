package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-api/internal/api"
	"github.com/storyhub-api/internal/config"
	"github.com/storyhub-api/internal/mocks"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/search"
	"github.com/storyhub-api/internal/service"
)

const testSecret = "test-secret"

type testEnv struct {
	router *gin.Engine
	store  *mocks.Store
	tokens *api.TokenManager
	checks map[string]api.HealthCheck
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, store := mocks.NewRepositories()
	cfg := &config.Config{
		Search: config.SearchConfig{DefaultLimit: 10, MaxLimit: 100, SuggestionLimit: 5, MaxSuggestions: 10},
	}
	services := service.NewServices(repos, cfg, service.Deps{Views: mocks.NewMemoryViewTracker()}, zerolog.Nop())

	tokens := api.NewTokenManager(testSecret)
	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	}
	router := api.NewRouter(services, tokens, checks, zerolog.Nop())

	return &testEnv{router: router, store: store, tokens: tokens, checks: checks}
}

func (e *testEnv) user(t *testing.T, username string, role models.Role) (*models.User, string) {
	t.Helper()
	u := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
		Role:        role,
	}
	e.store.PutUser(u)
	token, err := e.tokens.Issue(u.ID, u.DisplayName, role, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) story(author *models.User, title string, status models.Status) *models.Story {
	now := time.Now().UTC()
	s := &models.Story{
		ID:         uuid.NewString(),
		Slug:       models.NewSlug(title, now),
		Title:      title,
		Content:    "content of " + title,
		Genre:      "Fantasy",
		Hashtags:   []string{},
		Tags:       []string{},
		AuthorID:   author.ID,
		AuthorName: author.DisplayName,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == models.StatusPublished {
		s.PublishedAt = &now
	}
	e.store.PutStory(s)
	return s
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorDetail {
	t.Helper()
	var body api.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "storyhub-api", response["service"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	env.checks["redis"] = func(ctx context.Context) error { return errors.New("connection refused") }
	w = env.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.do("GET", "/v1/search/filters", "", nil)

	w := env.do("GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storyhub_http_requests_total")
}

func TestAuthentication(t *testing.T) {
	env := setupTestRouter(t)
	author, _ := env.user(t, "ann", models.RoleUser)
	story := env.story(author, "Pending", models.StatusPending)
	path := "/v1/admin/stories/" + story.ID + "/approve"

	w := env.do("PATCH", path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)

	w = env.do("PATCH", path, "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := api.NewTokenManager("another-secret")
	forged, err := other.Issue(author.ID, "ann", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	w = env.do("PATCH", path, forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := env.tokens.Issue(author.ID, "ann", models.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	w = env.do("PATCH", path, expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	nonUUID, err := env.tokens.Issue("user-42", "x", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	w = env.do("PATCH", path, nonUUID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, userToken := env.user(t, "bob", models.RoleUser)
	w = env.do("PATCH", path, userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Code)
}

func TestModerationEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	author, authorToken := env.user(t, "ann", models.RoleUser)
	_, modToken := env.user(t, "mod", models.RoleModerator)
	story := env.story(author, "Dragon Song", models.StatusPending)
	base := "/v1/admin/stories/" + story.ID

	w := env.do("PATCH", base+"/approve", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Story models.StorySummary `json:"story"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusPublished, resp.Story.Status)
	assert.NotNil(t, resp.Story.PublishedAt)

	w = env.do("PATCH", base+"/approve", modToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFLICT_STATE", decodeError(t, w).Code)

	w = env.do("PATCH", base+"/reject", modToken, map[string]string{"feedback": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)

	w = env.do("PATCH", base+"/unpublish", modToken, map[string]string{"feedback": "Copyright complaint"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", base+"/moderation-history", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history models.ModerationHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, models.StatusDraft, history.Status)
	assert.Nil(t, history.PublishedAt)
	require.Len(t, history.History, 2)
	last := history.History[1]
	assert.Equal(t, models.ActionUnpublished, last.Action)
	require.NotNil(t, last.Feedback)
	assert.Equal(t, "Copyright complaint", *last.Feedback)

	w = env.do("POST", "/v1/stories/"+story.ID+"/resubmit", authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/v1/admin/moderation/queue?status=in_review", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var queue service.QueuePage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
	assert.Equal(t, models.StatusPending, queue.Status)
	assert.Len(t, queue.Stories, 1)

	w = env.do("GET", "/v1/admin/moderation/queue?status=bogus", modToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("GET", "/v1/admin/moderation/stats", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"by_status"`)
}

func TestModerationNotFound(t *testing.T) {
	env := setupTestRouter(t)
	_, modToken := env.user(t, "mod", models.RoleModerator)

	w := env.do("PATCH", "/v1/admin/stories/"+uuid.NewString()+"/approve", modToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("GET", "/v1/admin/stories/not-a-uuid/moderation-history", modToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
}

func TestSearchEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	author, _ := env.user(t, "ann", models.RoleUser)
	env.story(author, "Dragon Song", models.StatusPublished)
	env.story(author, "Dragon Draft", models.StatusDraft)

	w := env.do("GET", "/v1/search/stories?q=a", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, w).Code)

	w = env.do("GET", "/v1/search/stories?q=dragon&limit=1000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res service.StorySearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 100, res.Pagination.Limit)
	assert.Equal(t, 1, res.Pagination.Total)
	assert.Equal(t, "dragon", res.Query.Text)

	_, modToken := env.user(t, "mod", models.RoleModerator)
	w = env.do("GET", "/v1/search/stories?q=dragon&include_unpublished=true", modToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Pagination.Total)

	w = env.do("GET", "/v1/search/users?q=an", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/v1/search/suggestions?q=d", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stories":[],"users":[],"tags":[]}`, w.Body.String())

	w = env.do("GET", "/v1/search/filters", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"popular_tags"`)
	assert.Contains(t, w.Body.String(), `"top_authors"`)
}

func TestSearchEndpoints_SortBy(t *testing.T) {
	env := setupTestRouter(t)
	author, _ := env.user(t, "ann", models.RoleUser)
	env.story(author, "Dragon Song", models.StatusPublished)

	tests := []struct {
		name string
		path string
		want search.SortMode
	}{
		{"stories sortBy", "/v1/search/stories?q=dragon&sortBy=oldest", search.SortOldest},
		{"stories sort alias", "/v1/search/stories?q=dragon&sort=newest", search.SortNewest},
		{"sortBy wins over alias", "/v1/search/stories?q=dragon&sortBy=popular&sort=newest", search.SortPopular},
		{"users sortBy", "/v1/search/users?q=an&sortBy=followers", search.SortFollowers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("GET", tt.path, "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Sort search.SortMode `json:"sort"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Sort)
		})
	}
}

func TestStoryLifecycle(t *testing.T) {
	env := setupTestRouter(t)
	_, authorToken := env.user(t, "ann", models.RoleUser)
	_, readerToken := env.user(t, "bob", models.RoleUser)
	_, modToken := env.user(t, "mod", models.RoleModerator)

	w := env.do("POST", "/v1/stories", authorToken, map[string]interface{}{
		"title":   "The Last Dragon",
		"content": "Once upon a time.",
		"genre":   "Fantasy",
		"submit":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var story models.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.Equal(t, models.StatusPending, story.Status)

	w = env.do("GET", "/v1/stories/"+story.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("PATCH", "/v1/admin/stories/"+story.ID+"/approve", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/v1/stories/"+story.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("POST", "/v1/stories/"+story.ID+"/like", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var eng models.Engagement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eng))
	assert.True(t, eng.Active)
	assert.Equal(t, 1, eng.Count)

	w = env.do("POST", "/v1/stories/"+story.ID+"/comments", readerToken, map[string]string{"body": "Great read"})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))

	w = env.do("PATCH", "/v1/comments/"+comment.ID+"/hide", readerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("PATCH", "/v1/comments/"+comment.ID+"/hide", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/v1/stories/"+story.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"comments":[]}`, w.Body.String())

	w = env.do("PUT", "/v1/stories/"+story.ID, readerToken, map[string]interface{}{
		"title": "Hijacked", "content": "x", "genre": "Fantasy",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("DELETE", "/v1/stories/"+story.ID, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	author, _ := env.user(t, "ann", models.RoleUser)
	_, modToken := env.user(t, "mod", models.RoleModerator)
	_, adminToken := env.user(t, "root", models.RoleAdmin)
	env.story(author, "Dragon Song", models.StatusPublished)

	w := env.do("GET", "/v1/admin/stories/export?format=csv", modToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Len(t, strings.Split(strings.TrimSpace(w.Body.String()), "\n"), 2)

	w = env.do("GET", "/v1/admin/stories/export?format=xml", modToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("GET", "/v1/admin/stories/export?created_after=yesterday", modToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("DELETE", "/v1/admin/users/"+author.ID, modToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do("DELETE", "/v1/admin/users/"+author.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do("DELETE", "/v1/admin/users/"+author.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("OPTIONS", "/v1/search/stories", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/config"
	"github.com/storyhub-api/internal/metrics"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/search"
	"github.com/storyhub-api/internal/validation"
)

const (
	// MinQueryLength is the shortest accepted search query
	MinQueryLength = 2
	popularTagLimit = 20
	topAuthorLimit  = 10
)

// StorySearchRequest holds the story search parameters
type StorySearchRequest struct {
	Query              string
	Genre              string
	Author             string
	Sort               string
	Page               int
	Limit              int
	IncludeUnpublished bool
}

// StorySearchResult is one page of story hits
type StorySearchResult struct {
	Results    []models.StoryHit `json:"results"`
	Pagination models.Pagination `json:"pagination"`
	Query      search.Filter     `json:"parsed_query"`
	Sort       search.SortMode   `json:"sort"`
}

// UserSearchRequest holds the user search parameters
type UserSearchRequest struct {
	Query string
	Sort  string
	Page  int
	Limit int
}

// UserSearchResult is one page of user hits
type UserSearchResult struct {
	Results    []models.UserHit  `json:"results"`
	Pagination models.Pagination `json:"pagination"`
	Sort       search.SortMode   `json:"sort"`
}

// searchService is the concrete implementation of SearchService
type searchService struct {
	repo   repository.SearchRepository
	limits config.SearchConfig
	log    zerolog.Logger
}

// newSearchService creates a new SearchService
func newSearchService(repo repository.SearchRepository, limits config.SearchConfig, log zerolog.Logger) *searchService {
	return &searchService{
		repo:   repo,
		limits: limits,
		log:    log.With().Str("service", "search").Logger(),
	}
}

// SearchStories parses the query language and returns one page of matching stories.
// Explicit genre/author parameters take precedence over query directives.
func (s *searchService) SearchStories(ctx context.Context, req StorySearchRequest, caller *models.Actor) (*StorySearchResult, error) {
	if err := validation.ValidateSearchQuery(req.Query, MinQueryLength); err != nil {
		return nil, err
	}

	filter := search.ParseQuery(req.Query)
	if g := strings.TrimSpace(req.Genre); g != "" {
		filter.Genre = g
	}
	if a := strings.TrimSpace(req.Author); a != "" {
		filter.Author = a
	}

	statuses := []models.Status{models.StatusPublished}
	if req.IncludeUnpublished && caller != nil && caller.CanModerate() {
		statuses = append(statuses, models.StatusDraft)
	}

	page, limit := search.Page(req.Page, req.Limit, s.limits.DefaultLimit, s.limits.MaxLimit)
	sort := search.StorySort(req.Sort)

	start := time.Now()
	hits, total, err := s.repo.SearchStories(ctx, search.StoryQuery{
		Filter:   filter,
		Statuses: statuses,
		Sort:     sort,
	}, limit, search.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}
	metrics.ObserveSearch("stories", time.Since(start), total)

	s.log.Debug().
		Str("query", req.Query).
		Str("sort", string(sort)).
		Int("total", total).
		Msg("Story search")

	return &StorySearchResult{
		Results:    hits,
		Pagination: models.NewPagination(page, limit, total),
		Query:      filter,
		Sort:       sort,
	}, nil
}

// SearchUsers ranks users by username and display-name match
func (s *searchService) SearchUsers(ctx context.Context, req UserSearchRequest) (*UserSearchResult, error) {
	if err := validation.ValidateSearchQuery(req.Query, MinQueryLength); err != nil {
		return nil, err
	}

	page, limit := search.Page(req.Page, req.Limit, s.limits.DefaultLimit, s.limits.MaxLimit)
	sort := search.UserSort(req.Sort)

	start := time.Now()
	hits, total, err := s.repo.SearchUsers(ctx, strings.TrimSpace(req.Query), sort, limit, search.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	metrics.ObserveSearch("users", time.Since(start), total)

	return &UserSearchResult{
		Results:    hits,
		Pagination: models.NewPagination(page, limit, total),
		Sort:       sort,
	}, nil
}

// Suggestions returns autocomplete candidates. Short prefixes yield empty lists.
func (s *searchService) Suggestions(ctx context.Context, q string, limit int) (*models.Suggestions, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinQueryLength {
		return models.EmptySuggestions(), nil
	}
	_, limit = search.Page(1, limit, s.limits.SuggestionLimit, s.limits.MaxSuggestions)

	titles, err := s.repo.SuggestTitles(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest titles: %w", err)
	}
	users, err := s.repo.SuggestUsernames(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest users: %w", err)
	}
	tags, err := s.repo.SuggestHashtags(ctx, strings.TrimPrefix(q, "#"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest hashtags: %w", err)
	}

	return &models.Suggestions{Stories: titles, Users: users, Tags: tags}, nil
}

// Filters lists the values a search UI can offer
func (s *searchService) Filters(ctx context.Context) (*models.FilterValues, error) {
	genres, err := s.repo.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	tags, err := s.repo.PopularTags(ctx, popularTagLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular tags: %w", err)
	}
	authors, err := s.repo.TopAuthors(ctx, topAuthorLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top authors: %w", err)
	}

	return &models.FilterValues{Genres: genres, PopularTags: tags, TopAuthors: authors}, nil
}

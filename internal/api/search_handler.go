package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/service"
)

// SearchHandler handles search endpoints
type SearchHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(services *service.Services, log zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		services: services,
		log:      log.With().Str("handler", "search").Logger(),
	}
}

// Stories handles GET /v1/search/stories?q=&genre=&author=&sortBy=&page=&limit=&include_unpublished=
func (h *SearchHandler) Stories(c *gin.Context) {
	includeUnpublished, _ := strconv.ParseBool(c.Query("include_unpublished"))

	res, err := h.services.Search.SearchStories(c.Request.Context(), service.StorySearchRequest{
		Query:              c.Query("q"),
		Genre:              c.Query("genre"),
		Author:             c.Query("author"),
		Sort:               sortParam(c),
		Page:               queryInt(c, "page"),
		Limit:              queryInt(c, "limit"),
		IncludeUnpublished: includeUnpublished,
	}, currentActor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Users handles GET /v1/search/users?q=&sortBy=&page=&limit=
func (h *SearchHandler) Users(c *gin.Context) {
	res, err := h.services.Search.SearchUsers(c.Request.Context(), service.UserSearchRequest{
		Query: c.Query("q"),
		Sort:  sortParam(c),
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Suggestions handles GET /v1/search/suggestions?q=&limit=
func (h *SearchHandler) Suggestions(c *gin.Context) {
	res, err := h.services.Search.Suggestions(c.Request.Context(), c.Query("q"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Filters handles GET /v1/search/filters
func (h *SearchHandler) Filters(c *gin.Context) {
	res, err := h.services.Search.Filters(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// sortParam reads sortBy, falling back to the shorter sort alias
func sortParam(c *gin.Context) string {
	if v := c.Query("sortBy"); v != "" {
		return v
	}
	return c.Query("sort")
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/service"
)

// StoryHandler handles story, engagement and comment endpoints
type StoryHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(services *service.Services, log zerolog.Logger) *StoryHandler {
	return &StoryHandler{
		services: services,
		log:      log.With().Str("handler", "story").Logger(),
	}
}

// Create handles POST /v1/stories
func (h *StoryHandler) Create(c *gin.Context) {
	var in models.StoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	story, err := h.services.Story.Create(c.Request.Context(), mustActor(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

// Get handles GET /v1/stories/:id where id is a story id or slug
func (h *StoryHandler) Get(c *gin.Context) {
	viewer := currentActor(c)
	viewerKey := c.ClientIP()
	if viewer != nil {
		viewerKey = viewer.ID
	}

	story, err := h.services.Story.Get(c.Request.Context(), c.Param("id"), viewer, viewerKey)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// Update handles PUT /v1/stories/:id
func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	var in models.StoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	story, err := h.services.Story.Update(c.Request.Context(), id, mustActor(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// Delete handles DELETE /v1/stories/:id
func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	if err := h.services.Story.Delete(c.Request.Context(), id, mustActor(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Resubmit handles POST /v1/stories/:id/resubmit
func (h *StoryHandler) Resubmit(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	summary, err := h.services.Moderation.Resubmit(c.Request.Context(), id, mustActor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": summary})
}

// Like handles POST /v1/stories/:id/like
func (h *StoryHandler) Like(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	eng, err := h.services.Story.Like(c.Request.Context(), id, mustActor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, eng)
}

// Save handles POST /v1/stories/:id/save
func (h *StoryHandler) Save(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	eng, err := h.services.Story.Save(c.Request.Context(), id, mustActor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, eng)
}

// Share handles POST /v1/stories/:id/share
func (h *StoryHandler) Share(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	shares, err := h.services.Story.Share(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story_id": id, "shares": shares})
}

// ListComments handles GET /v1/stories/:id/comments
func (h *StoryHandler) ListComments(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	threads, err := h.services.Comment.List(c.Request.Context(), id, currentActor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": threads})
}

// AddComment handles POST /v1/stories/:id/comments
func (h *StoryHandler) AddComment(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	var in models.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	comment, err := h.services.Comment.Add(c.Request.Context(), id, mustActor(c), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// HideComment handles PATCH /v1/comments/:id/hide with an optional {"hidden": false} to restore
func (h *StoryHandler) HideComment(c *gin.Context) {
	id, ok := idParam(c, "id", "comment")
	if !ok {
		return
	}

	req := struct {
		Hidden *bool `json:"hidden"`
	}{}
	if !bindOptionalJSON(c, &req) {
		return
	}
	hidden := req.Hidden == nil || *req.Hidden

	comment, err := h.services.Comment.SetHidden(c.Request.Context(), id, mustActor(c), hidden)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

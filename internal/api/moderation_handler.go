package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/service"
)

// ModerationHandler handles moderation endpoints
type ModerationHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(services *service.Services, log zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		services: services,
		log:      log.With().Str("handler", "moderation").Logger(),
	}
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type moderationFunc func(c *gin.Context, storyID string, by models.Actor, feedback string) (*models.StorySummary, error)

// Approve handles PATCH /v1/admin/stories/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.handleTransition(c, func(c *gin.Context, id string, by models.Actor, feedback string) (*models.StorySummary, error) {
		return h.services.Moderation.Approve(c.Request.Context(), id, by, feedback)
	})
}

// Reject handles PATCH /v1/admin/stories/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.handleTransition(c, func(c *gin.Context, id string, by models.Actor, feedback string) (*models.StorySummary, error) {
		return h.services.Moderation.Reject(c.Request.Context(), id, by, feedback)
	})
}

// Unpublish handles PATCH /v1/admin/stories/:id/unpublish
func (h *ModerationHandler) Unpublish(c *gin.Context) {
	h.handleTransition(c, func(c *gin.Context, id string, by models.Actor, feedback string) (*models.StorySummary, error) {
		return h.services.Moderation.Unpublish(c.Request.Context(), id, by, feedback)
	})
}

func (h *ModerationHandler) handleTransition(c *gin.Context, fn moderationFunc) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	var req feedbackRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	summary, err := fn(c, id, mustActor(c), req.Feedback)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": summary})
}

// History handles GET /v1/admin/stories/:id/moderation-history
func (h *ModerationHandler) History(c *gin.Context) {
	id, ok := idParam(c, "id", "story")
	if !ok {
		return
	}

	history, err := h.services.Moderation.GetModerationHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Stats handles GET /v1/admin/moderation/stats
func (h *ModerationHandler) Stats(c *gin.Context) {
	stats, err := h.services.Moderation.GetModerationStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Queue handles GET /v1/admin/moderation/queue?status=&page=&limit=
func (h *ModerationHandler) Queue(c *gin.Context) {
	page, err := h.services.Moderation.ListQueue(c.Request.Context(),
		c.Query("status"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// bindOptionalJSON decodes the body when one was sent
func bindOptionalJSON(c *gin.Context, v interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		abortWithError(c, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	return true
}

// queryInt reads an integer query parameter; absent or malformed values read as 0
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/service"
)

// AdminHandler handles export and user administration endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// ExportStories handles GET /v1/admin/stories/export?format=&status=&created_after=&created_before=
// Streams the export directly to the response
func (h *AdminHandler) ExportStories(c *gin.Context) {
	var filter repository.ExportFilter

	if s := c.Query("status"); s != "" {
		status, ok := models.ParseStatus(s)
		if !ok {
			abortWithError(c, http.StatusBadRequest, codeBadRequest, "unknown status "+s)
			return
		}
		filter.Status = &status
	}
	var ok bool
	if filter.CreatedAfter, ok = queryTime(c, "created_after"); !ok {
		return
	}
	if filter.CreatedBefore, ok = queryTime(c, "created_before"); !ok {
		return
	}

	format := c.DefaultQuery("format", service.FormatNDJSON)
	h.log.Info().Str("format", format).Msg("Starting streaming export")

	err := h.services.Export.StreamStories(c.Request.Context(), c.Writer, format, filter)
	if err == nil {
		return
	}
	if !c.Writer.Written() {
		respondError(c, h.log, err)
		return
	}
	// Can't return error JSON after streaming has started
	h.log.Error().Err(err).Str("format", format).Msg("Export failed mid-stream")
}

// DeleteUser handles DELETE /v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}

	if err := h.services.User.Delete(c.Request.Context(), id, mustActor(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryTime reads an optional RFC 3339 query parameter
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, codeBadRequest, name+" must be an RFC 3339 timestamp")
		return nil, false
	}
	return &t, true
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/apperror"
)

// Error codes returned in the error envelope
const (
	codeBadRequest    = "BAD_REQUEST"
	codeConflictState = "CONFLICT_STATE"
	codeNotFound      = "NOT_FOUND"
	codeForbidden     = "FORBIDDEN"
	codeUnauthorized  = "UNAUTHORIZED"
	codeInternal      = "INTERNAL_ERROR"
)

// ErrorBody is the payload of every failed request
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// respondError maps a service error onto the HTTP error envelope.
// Internal errors are logged and replaced by a generic message.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		abortWithError(c, http.StatusBadRequest, codeBadRequest, apperror.MessageOf(err))
	case apperror.KindConflict:
		abortWithError(c, http.StatusBadRequest, codeConflictState, apperror.MessageOf(err))
	case apperror.KindNotFound:
		abortWithError(c, http.StatusNotFound, codeNotFound, apperror.MessageOf(err))
	case apperror.KindForbidden:
		abortWithError(c, http.StatusForbidden, codeForbidden, apperror.MessageOf(err))
	default:
		log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Request failed")
		abortWithError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// idParam reads a UUID path parameter. Malformed ids cannot match any row.
func idParam(c *gin.Context, name, resource string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		abortWithError(c, http.StatusNotFound, codeNotFound, resource+" "+id+" not found")
		return "", false
	}
	return id, true
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/service"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

const healthTimeout = 3 * time.Second

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, tokens *TokenManager, checks map[string]HealthCheck, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	moderationHandler := NewModerationHandler(services, log)
	searchHandler := NewSearchHandler(services, log)
	storyHandler := NewStoryHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	// Health check
	router.GET("/health", healthHandler(checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	moderators := requireRole(models.RoleModerator, models.RoleAdmin)
	authenticated := requireAuth()

	// API v1
	v1 := router.Group("/v1", identityMiddleware(tokens))
	{
		search := v1.Group("/search")
		{
			search.GET("/stories", searchHandler.Stories)
			search.GET("/users", searchHandler.Users)
			search.GET("/suggestions", searchHandler.Suggestions)
			search.GET("/filters", searchHandler.Filters)
		}

		stories := v1.Group("/stories")
		{
			stories.POST("", authenticated, storyHandler.Create)
			stories.GET("/:id", storyHandler.Get)
			stories.PUT("/:id", authenticated, storyHandler.Update)
			stories.DELETE("/:id", authenticated, storyHandler.Delete)
			stories.POST("/:id/resubmit", authenticated, storyHandler.Resubmit)
			stories.POST("/:id/like", authenticated, storyHandler.Like)
			stories.POST("/:id/save", authenticated, storyHandler.Save)
			stories.POST("/:id/share", storyHandler.Share)
			stories.GET("/:id/comments", storyHandler.ListComments)
			stories.POST("/:id/comments", authenticated, storyHandler.AddComment)
		}

		v1.PATCH("/comments/:id/hide", moderators, storyHandler.HideComment)

		admin := v1.Group("/admin", moderators)
		{
			admin.PATCH("/stories/:id/approve", moderationHandler.Approve)
			admin.PATCH("/stories/:id/reject", moderationHandler.Reject)
			admin.PATCH("/stories/:id/unpublish", moderationHandler.Unpublish)
			admin.GET("/stories/:id/moderation-history", moderationHandler.History)
			admin.GET("/stories/export", adminHandler.ExportStories)
			admin.GET("/moderation/stats", moderationHandler.Stats)
			admin.GET("/moderation/queue", moderationHandler.Queue)
			admin.DELETE("/users/:id", requireRole(models.RoleAdmin), adminHandler.DeleteUser)
		}
	}

	return router
}

// healthHandler reports the status of every dependency
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		deps := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":       state,
			"dependencies": deps,
			"timestamp":    time.Now().Format(time.RFC3339),
			"service":      "storyhub-api",
		})
	}
}

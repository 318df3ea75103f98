package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/service"
)

// Services bundles what the handlers call into
type Services struct {
	Auth        service.IAuthService
	Feedback    service.IFeedbackService
	Comments    service.ICommentService
	Preferences service.IPreferenceService
	Uploads     service.IUploadService
	Intake      service.IIntakeService
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Preflight API is running",
	})
}

// RegisterRoutes registers all API routes. writeLimiter may be nil.
func RegisterRoutes(router *gin.Engine, svc Services, writeLimiter *middleware.RateLimiter) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	writeLimit := writeLimiter.Middleware()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(svc.Auth))

	NewFeedbackHandler(svc.Feedback).RegisterRoutes(v1, writeLimit)
	NewCommentHandler(svc.Comments).RegisterRoutes(v1, writeLimit)
	NewPreferencesHandler(svc.Preferences).RegisterRoutes(v1)
	NewUploadHandler(svc.Uploads).RegisterRoutes(v1, writeLimit)
	NewIntakeHandler(svc.Intake).RegisterRoutes(v1)
}

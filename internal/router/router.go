package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/preflight/backend/config"
	"github.com/pageza/preflight/backend/internal/api"
	"github.com/pageza/preflight/backend/internal/middleware"
)

// SetupRouter configures the engine, its middleware chain and the application routes
func SetupRouter(cfg *config.Config, svc api.Services, writeLimiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.NoRoute(middleware.NotFound())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api.RegisterRoutes(router, svc, writeLimiter)

	return router
}

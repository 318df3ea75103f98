package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/preflight/backend/config"
	"github.com/pageza/preflight/backend/internal/api"
	"github.com/pageza/preflight/backend/internal/email"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/router"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/storage"
)

// Dependencies are the external collaborators the server is wired to.
// Redis and Store may be nil; Sender defaults to logging only.
type Dependencies struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  storage.AttachmentStore
	Sender email.Sender
}

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	http       *http.Server
	background *service.Background
}

// New wires services, handlers and middleware into a server
func New(cfg *config.Config, deps Dependencies) *Server {
	svc, background := NewServices(cfg, deps)

	var writeLimiter *middleware.RateLimiter
	if deps.Redis != nil {
		writeLimiter = middleware.NewFeedbackWriteRateLimiter(deps.Redis)
	}

	return &Server{
		cfg:        cfg,
		router:     router.SetupRouter(cfg, svc, writeLimiter),
		background: background,
	}
}

// NewServices builds the service layer over deps
func NewServices(cfg *config.Config, deps Dependencies) (api.Services, *service.Background) {
	sender := deps.Sender
	if sender == nil {
		sender = email.LogSender{}
	}
	notifier := email.NewNotifier(sender, cfg.AppBaseURL, cfg.AdminNotifyEmail)
	background := service.NewBackground(0)

	projects := service.NewProjectService(deps.DB, cfg.ProjectSlug)
	profiles := service.NewProfileService(deps.DB)
	preferences := service.NewPreferenceService(deps.DB, projects)

	return api.Services{
		Auth:        service.NewAuthService(cfg),
		Feedback:    service.NewFeedbackService(deps.DB, projects, profiles, preferences, notifier, background),
		Comments:    service.NewCommentService(deps.DB, projects, profiles, preferences, notifier, background),
		Preferences: preferences,
		Uploads:     service.NewUploadService(deps.Store, cfg),
		Intake:      service.NewIntakeService(deps.DB, projects),
	}, background
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.ServerHost, s.cfg.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server and waits for pending notifications
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Log.Warn("Shutdown timed out waiting for background tasks")
	}
	return err
}

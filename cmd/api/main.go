package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/preflight/backend/config"
	"github.com/pageza/preflight/backend/internal/database"
	"github.com/pageza/preflight/backend/internal/email"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/server"
	"github.com/pageza/preflight/backend/internal/storage"
)

const defaultFromEmail = "no-reply@preflight.local"

func main() {
	// A missing .env file is fine; the environment may already be populated
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		// Logger is not configured yet
		_ = logger.Initialize("info", "")
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		_ = logger.Initialize("info", "")
		logger.Log.Error("Failed to initialize file logging", zap.Error(err))
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, "migrations"); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	deps := server.Dependencies{
		DB:     db,
		Redis:  connectRedis(cfg),
		Store:  connectStorage(ctx, cfg),
		Sender: selectSender(ctx, cfg),
	}
	if deps.Redis != nil {
		defer deps.Redis.Close()
	}

	srv := server.New(cfg, deps)
	logger.Log.Info("Starting Preflight API",
		zap.String("environment", string(config.GetEnvironment())),
		zap.String("project", cfg.ProjectSlug),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Log.Fatal("Server error", zap.Error(err))
	}
	logger.Log.Info("Server stopped")
}

// connectRedis returns nil when Redis is not configured or unreachable.
// Rate limiting is disabled in that case.
func connectRedis(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled() {
		logger.Log.Info("Redis not configured, rate limiting disabled")
		return nil
	}
	client, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
		return nil
	}
	return client
}

func connectStorage(ctx context.Context, cfg *config.Config) storage.AttachmentStore {
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		logger.Log.Warn("Attachment storage unavailable, uploads disabled", zap.Error(err))
		return nil
	}
	return storage.NewS3Store(s3Config)
}

// selectSender prefers SES, then an SMTP relay, then logging only
func selectSender(ctx context.Context, cfg *config.Config) email.Sender {
	if cfg.SESFromEmail != "" {
		awsCfg, err := config.LoadAWSConfig(ctx, cfg)
		if err == nil {
			logger.Log.Info("Sending notifications through SES", zap.String("from", cfg.SESFromEmail))
			return email.NewSESSender(awsCfg, cfg.SESFromEmail, cfg.SESFromName)
		}
		logger.Log.Warn("SES unavailable", zap.Error(err))
	}

	if cfg.SMTPEnabled() {
		from := cfg.SESFromEmail
		if from == "" {
			from = defaultFromEmail
		}
		logger.Log.Info("Sending notifications through SMTP", zap.String("host", cfg.SMTPHost))
		return email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, from, cfg.SESFromName)
	}

	logger.Log.Info("No mail transport configured, notifications are logged only")
	return email.LogSender{}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pageza/preflight/backend/config"
	"github.com/pageza/preflight/backend/internal/database"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/server"
	"github.com/pageza/preflight/backend/internal/types"
)

type demoItem struct {
	email       string
	subject     string
	description string
	kind        string
	priority    string
	status      string
	upvotes     int
}

var demoItems = []demoItem{
	{"casey@example.com", "Dark mode", "The dashboard is too bright at night.", "feature", "medium", "planned", 12},
	{"riley@example.com", "CSV export crashes", "Exporting more than 10k rows fails with a blank page.", "bug", "high", "in_progress", 7},
	{"sam@example.com", "Keyboard shortcuts", "Let me triage the inbox without a mouse.", "idea", "low", "open", 3},
	{"morgan@example.com", "Faster search", "Search got noticeably slower last week.", "improvement", "medium", "shipped", 21},
}

func main() {
	adminEmail := flag.String("admin", "", "email to mint an admin token for (defaults to the first ADMIN_EMAILS entry)")
	force := flag.Bool("force", false, "seed demo feedback even when the project already has items")
	flag.Parse()

	_ = godotenv.Load()
	_ = logger.Initialize("info", "")
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, "migrations"); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var project models.Project
	err = db.WithContext(ctx).
		Where(models.Project{Slug: cfg.ProjectSlug}).
		Attrs(models.Project{Name: "Preflight"}).
		FirstOrCreate(&project).Error
	if err != nil {
		logger.Log.Fatal("Failed to seed project", zap.Error(err))
	}

	svc, background := server.NewServices(cfg, server.Dependencies{DB: db})
	defer background.Wait()

	var existing int64
	if err := db.WithContext(ctx).Model(&models.Feedback{}).Where("project_id = ?", project.ID).Count(&existing).Error; err != nil {
		logger.Log.Fatal("Failed to count feedback", zap.Error(err))
	}
	if existing > 0 && !*force {
		logger.Log.Info("Project already has feedback, skipping demo items", zap.Int64("count", existing))
	} else {
		admin := types.Session{Email: firstAdmin(cfg, *adminEmail), IsAdmin: true}
		for _, item := range demoItems {
			session := types.Session{Email: item.email}
			created, err := svc.Feedback.CreateFeedback(ctx, session, &types.CreateFeedbackRequest{
				Subject:     item.subject,
				Description: item.description,
				Email:       item.email,
				Type:        item.kind,
				Priority:    item.priority,
				Source:      "seed",
			})
			if err != nil {
				logger.Log.Fatal("Failed to seed feedback", zap.String("subject", item.subject), zap.Error(err))
			}

			if item.status != "open" && admin.Email != "" {
				if _, err := svc.Feedback.UpdateFeedbackStatus(ctx, admin, created.ID.String(), item.status); err != nil {
					logger.Log.Fatal("Failed to set status", zap.String("subject", item.subject), zap.Error(err))
				}
			}
			if err := db.WithContext(ctx).Model(created).Update("upvotes", item.upvotes).Error; err != nil {
				logger.Log.Fatal("Failed to set upvotes", zap.String("subject", item.subject), zap.Error(err))
			}
			logger.Log.Info("Seeded feedback", logger.WithFeedbackID(created.ID.String()), zap.String("subject", item.subject))
		}
	}

	email := firstAdmin(cfg, *adminEmail)
	if email == "" {
		logger.Log.Info("No admin email configured, skipping admin token")
		return
	}
	token, err := svc.Auth.GenerateToken(email)
	if err != nil {
		logger.Log.Fatal("Failed to generate admin token", zap.Error(err))
	}
	fmt.Printf("Admin token for %s:\n%s\n", email, token)
}

func firstAdmin(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	if len(cfg.AdminEmails) > 0 {
		return cfg.AdminEmails[0]
	}
	return ""
}

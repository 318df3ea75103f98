package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pageza/preflight/backend/config"
	"github.com/pageza/preflight/backend/internal/database"
	"github.com/pageza/preflight/backend/internal/logger"
	"go.uber.org/zap"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	migrationsDir := flag.String("dir", "migrations", "Directory containing *.sql migrations")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), ""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Log.Fatal("DATABASE_URL is not set and config could not be loaded", zap.Error(err))
		}
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		logger.Log.Fatal("failed to create migrations table", zap.Error(err))
	}

	if *rollback {
		name, err := rollbackLast(db, *migrationsDir)
		if err != nil {
			logger.Log.Fatal("rollback failed", zap.Error(err))
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	files, err := database.MigrationFiles(*migrationsDir)
	if err != nil {
		logger.Log.Fatal("failed to list migrations", zap.Error(err))
	}

	for _, file := range files {
		var applied bool
		err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", file).Scan(&applied)
		if err != nil {
			logger.Log.Fatal("failed to check migration status", zap.String("file", file), zap.Error(err))
		}
		if applied {
			fmt.Printf("Migration already applied: %s\n", file)
			continue
		}

		path := filepath.Join(*migrationsDir, file)
		fmt.Printf("Applying migration: %s\n", path)
		if err := execFile(db, path, "INSERT INTO schema_migrations (version) VALUES ($1)", file); err != nil {
			logger.Log.Fatal("failed to apply migration", zap.String("file", file), zap.Error(err))
		}
		fmt.Printf("Successfully applied migration: %s\n", file)
	}

	fmt.Println("All migrations applied successfully.")
}

// rollbackLast reverts the most recently applied migration using its _rollback.sql pair
func rollbackLast(db *sql.DB, dir string) (string, error) {
	var name string
	err := db.QueryRow(`
		SELECT version
		FROM schema_migrations
		ORDER BY applied_at DESC, version DESC
		LIMIT 1
	`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackPath := filepath.Join(dir, database.RollbackFile(name))
	if _, err := os.Stat(rollbackPath); os.IsNotExist(err) {
		return "", fmt.Errorf("rollback file not found: %s", rollbackPath)
	}

	if err := execFile(db, rollbackPath, "DELETE FROM schema_migrations WHERE version = $1", name); err != nil {
		return "", err
	}
	return name, nil
}

// execFile runs a SQL file and the bookkeeping statement in one transaction
func execFile(db *sql.DB, path, record, version string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute %s: %w", path, err)
	}
	if _, err := tx.Exec(record, version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

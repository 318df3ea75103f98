package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DatabaseURL wins over the discrete fields when set.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Feedback configuration
	ProjectSlug     string
	AdminEmails     []string
	AppBaseURL      string
	AllowedOrigins  []string
	MaxAttachmentMB int

	// Attachment storage
	AWSRegion       string
	S3BucketName    string
	S3PublicBaseURL string

	// Notifications
	SESFromEmail     string
	SESFromName      string
	AdminNotifyEmail string

	// SMTP relay, used when SES is not configured
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	// Logging
	LogLevel string
	LogFile  string
}

const (
	DefaultProjectSlug     = "preflight"
	DefaultMaxAttachmentMB = 8
	DefaultBucketName      = "feedback-attachments"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load() (*Config, error) {
	maxMB, err := intValue("MAX_ATTACHMENT_MB", DefaultMaxAttachmentMB)
	if err != nil {
		return nil, err
	}
	redisDB, err := intValue("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DatabaseURL: secretOrEnv("DATABASE_URL", "database_url", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      secretOrEnv("DB_USER", "db_user", "postgres"),
		DBPassword:  secretOrEnv("DB_PASSWORD", "db_password", ""),
		DBName:      getEnv("DB_NAME", "preflight"),
		DBSSLMode:   getEnv("DB_SSL_MODE", "disable"),

		RedisURL:      secretOrEnv("REDIS_URL", "redis_url", ""),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: secretOrEnv("REDIS_PASSWORD", "redis_password", ""),
		RedisDB:       redisDB,

		JWTSecret: secretOrEnv("JWT_SECRET", "jwt_secret", ""),

		ProjectSlug:     getEnv("PROJECT_SLUG", DefaultProjectSlug),
		AdminEmails:     splitList(getEnv("ADMIN_EMAILS", ""), true),
		AppBaseURL:      strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), false),
		MaxAttachmentMB: max(1, maxMB),

		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		S3BucketName:    getEnv("S3_BUCKET_NAME", DefaultBucketName),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SESFromName:      getEnv("SES_FROM_NAME", "Preflight"),
		AdminNotifyEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),

		SMTPHost:     secretOrEnv("SMTP_HOST", "smtp_host", ""),
		SMTPPort:     secretOrEnv("SMTP_PORT", "smtp_port", "587"),
		SMTPUsername: secretOrEnv("SMTP_USERNAME", "smtp_username", ""),
		SMTPPassword: secretOrEnv("SMTP_PASSWORD", "smtp_password", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "server.log"),
	}

	return cfg, nil
}

// DSN returns the postgres connection string for the configured database
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether any redis endpoint was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// MaxAttachmentBytes is the upload size limit in bytes
func (c *Config) MaxAttachmentBytes() int64 {
	return int64(max(1, c.MaxAttachmentMB)) * 1024 * 1024
}

// SMTPEnabled reports whether an SMTP relay was configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// IsAdminEmail reports whether email is on the admin allow-list (case-insensitive)
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// secretOrEnv prefers the environment variable and falls back to a Docker secret
func secretOrEnv(envKey, secretName, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value
	}
	if value := readSecret(secretName); value != "" {
		return value
	}
	return fallback
}

func intValue(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func splitList(raw string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if lower {
			part = strings.ToLower(part)
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireJWTSecret  bool
	RequireDBPassword bool
	RequireAdmins     bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {},
		Test:        {},
		CI: {
			RequireJWTSecret:  true,
			RequireDBPassword: true,
		},
		Production: {
			RequireJWTSecret:  true,
			RequireDBPassword: true,
			RequireAdmins:     true,
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, ValidationError{Field: "SERVER_PORT", Message: "is required"}.Error())
	}
	if cfg.ProjectSlug == "" {
		errors = append(errors, ValidationError{Field: "PROJECT_SLUG", Message: "is required"}.Error())
	}
	if reqs.RequireJWTSecret && cfg.JWTSecret == "" {
		errors = append(errors, ValidationError{Field: "JWT_SECRET", Message: fmt.Sprintf("is required in %s environment", env)}.Error())
	}
	// DATABASE_URL carries its own credentials
	if reqs.RequireDBPassword && cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		errors = append(errors, ValidationError{Field: "DB_PASSWORD", Message: fmt.Sprintf("is required in %s environment", env)}.Error())
	}
	if reqs.RequireAdmins && len(cfg.AdminEmails) == 0 {
		errors = append(errors, ValidationError{Field: "ADMIN_EMAILS", Message: "at least one admin email is required"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

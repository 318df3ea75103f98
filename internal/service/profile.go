package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/feedback"
	"github.com/pageza/preflight/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService maps submitter emails to profile rows
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Resolve returns the profile id for email, creating the profile when needed.
// An existing profile under either the plain address or its widget alias is
// reused. New profiles get the widget alias when preferWidgetAlias is set.
func (s *ProfileService) Resolve(ctx context.Context, email string, preferWidgetAlias bool) (uuid.UUID, error) {
	return resolveProfile(s.db.WithContext(ctx), email, preferWidgetAlias)
}

// OwnerEmail returns the normalised address of a profile, or "" when unknown
func (s *ProfileService) OwnerEmail(ctx context.Context, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	var profile models.Profile
	if err := s.db.WithContext(ctx).Select("email").First(&profile, "id = ?", *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	return feedback.NormalizeProfileEmail(profile.Email), nil
}

func resolveProfile(db *gorm.DB, email string, preferWidgetAlias bool) (uuid.UUID, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return uuid.Nil, apierrors.BadRequest("email is required when unauthenticated.")
	}
	candidates := []string{normalized, feedback.WidgetEmail(normalized)}

	if id, ok, err := findProfile(db, candidates); err != nil || ok {
		return id, err
	}

	profileEmail := normalized
	if preferWidgetAlias {
		profileEmail = feedback.WidgetEmail(normalized)
	}
	fullName, _, _ := strings.Cut(normalized, "@")
	if fullName == "" {
		fullName = "operator"
	}

	profile := models.Profile{Email: profileEmail, FullName: fullName}
	// A concurrent request may have created the same profile, so fall back to a re-read
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&profile).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if id, ok, err := findProfile(db, candidates); err != nil || ok {
		return id, err
	}
	return uuid.Nil, fmt.Errorf("failed to resolve profile for %s", normalized)
}

func findProfile(db *gorm.DB, candidates []string) (uuid.UUID, bool, error) {
	var existing models.Profile
	err := db.Where("email IN ?", candidates).Order("created_at ASC").Limit(1).Find(&existing).Error
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up profile: %w", err)
	}
	if existing.ID == uuid.Nil {
		return uuid.Nil, false, nil
	}
	return existing.ID, true, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/feedback"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationEvent selects which preference flag governs an email
type NotificationEvent string

const (
	EventStatus     NotificationEvent = "status"
	EventComment    NotificationEvent = "comment"
	EventResolution NotificationEvent = "resolution"
	EventArchive    NotificationEvent = "archive"
)

// PreferenceService stores per-feedback notification opt-outs
type PreferenceService struct {
	db       *gorm.DB
	projects IProjectService
}

func NewPreferenceService(db *gorm.DB, projects IProjectService) *PreferenceService {
	return &PreferenceService{db: db, projects: projects}
}

// GetPreferences returns the stored flags for the session email or the given
// address. Without either the defaults are returned.
func (s *PreferenceService) GetPreferences(ctx context.Context, session types.Session, feedbackID, email string) (*types.NotificationPreferencesResponse, error) {
	id, err := parseFeedbackID(feedbackID)
	if err != nil {
		return nil, err
	}

	effective := effectiveEmail(session, email)
	if effective == "" {
		return &types.NotificationPreferencesResponse{Preferences: types.DefaultNotificationPreferences()}, nil
	}

	prefs, err := s.load(ctx, id, effective)
	if err != nil {
		return nil, err
	}
	return &types.NotificationPreferencesResponse{Email: effective, Preferences: prefs}, nil
}

// SavePreferences upserts the flags for (feedback, email)
func (s *PreferenceService) SavePreferences(ctx context.Context, session types.Session, feedbackID string, req *types.NotificationPreferencesRequest) (*types.NotificationPreferencesResponse, error) {
	effective := effectiveEmail(session, req.Email)
	if effective == "" {
		return nil, apierrors.BadRequest("email is required when unauthenticated.")
	}

	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}
	row, err := findFeedback(s.db.WithContext(ctx), project.ID, feedbackID)
	if err != nil {
		return nil, err
	}

	pref := models.NotificationPreference{
		FeedbackID:        row.ID,
		Email:             effective,
		StatusUpdates:     req.StatusUpdates,
		CommentUpdates:    req.CommentUpdates,
		ResolutionUpdates: req.ResolutionUpdates,
		ArchivedUpdates:   req.ArchivedUpdates,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "feedback_id"}, {Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status_updates", "comment_updates", "resolution_updates", "archived_updates", "updated_at",
		}),
	}).Create(&pref).Error
	if err != nil {
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Notification preferences", err)
		}
		return nil, fmt.Errorf("failed to save notification preferences: %w", err)
	}

	prefs, err := s.load(ctx, row.ID, effective)
	if err != nil {
		return nil, err
	}
	return &types.NotificationPreferencesResponse{Email: effective, Preferences: prefs}, nil
}

// ShouldNotify reports whether email still wants mails for event on a feedback item
func (s *PreferenceService) ShouldNotify(ctx context.Context, feedbackID uuid.UUID, email string, event NotificationEvent) (bool, error) {
	normalized := feedback.NormalizeProfileEmail(email)
	if normalized == "" {
		return false, nil
	}
	prefs, err := s.load(ctx, feedbackID, normalized)
	if err != nil {
		return false, err
	}

	switch event {
	case EventStatus:
		return prefs.StatusUpdates, nil
	case EventComment:
		return prefs.CommentUpdates, nil
	case EventResolution:
		return prefs.ResolutionUpdates, nil
	default:
		return prefs.ArchivedUpdates, nil
	}
}

func (s *PreferenceService) load(ctx context.Context, feedbackID uuid.UUID, email string) (types.NotificationPreferences, error) {
	var row models.NotificationPreference
	err := s.db.WithContext(ctx).
		Where("feedback_id = ? AND email = ?", feedbackID, email).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.DefaultNotificationPreferences(), nil
		}
		if apierrors.IsSchemaMissing(err) {
			return types.NotificationPreferences{}, apierrors.SchemaMissing("Notification preferences", err)
		}
		return types.NotificationPreferences{}, fmt.Errorf("failed to load notification preferences: %w", err)
	}
	return types.NotificationPreferences{
		StatusUpdates:     row.StatusUpdates,
		CommentUpdates:    row.CommentUpdates,
		ResolutionUpdates: row.ResolutionUpdates,
		ArchivedUpdates:   row.ArchivedUpdates,
	}, nil
}

// effectiveEmail prefers the session identity over a client supplied address
func effectiveEmail(session types.Session, explicit string) string {
	if session.Authenticated() {
		return feedback.NormalizeProfileEmail(session.Email)
	}
	return feedback.NormalizeProfileEmail(explicit)
}

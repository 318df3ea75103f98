package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/feedback"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/metrics"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultIntakeLimit = 30
	MaxIntakeLimit     = 100

	defaultIntakeEventType = "report"
	defaultConvertedTitle  = "Imported intake event"
	defaultConvertedBody   = "Imported from intake log."
	defaultConvertedSource = "other"
)

// IntakeService manages the log of externally received reports
type IntakeService struct {
	db       *gorm.DB
	projects IProjectService
	now      func() time.Time
}

func NewIntakeService(db *gorm.DB, projects IProjectService) *IntakeService {
	return &IntakeService{db: db, projects: projects, now: time.Now}
}

// onDedupeConflict skips the insert when the project already holds an event with
// the same dedupe key
var onDedupeConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "project_id"}, {Name: "dedupe_key"}},
	DoNothing: true,
}

// ClampIntakeLimit keeps limit within 1..100. Callers substitute DefaultIntakeLimit
// when no limit was given.
func ClampIntakeLimit(limit int) int {
	return max(1, min(MaxIntakeLimit, limit))
}

// ListIntake returns the newest events first
func (s *IntakeService) ListIntake(ctx context.Context, session types.Session, limit int) ([]models.IntakeEvent, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}

	events := []models.IntakeEvent{}
	err = s.db.WithContext(ctx).
		Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Limit(ClampIntakeLimit(limit)).
		Find(&events).Error
	if err != nil {
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Intake", err)
		}
		return nil, fmt.Errorf("failed to list intake events: %w", err)
	}
	return events, nil
}

// CreateIntake logs a report. A report with the same dedupe key as an existing
// event returns that event and true instead of inserting a second row.
func (s *IntakeService) CreateIntake(ctx context.Context, session types.Session, req *types.CreateIntakeRequest) (*models.IntakeEvent, bool, error) {
	if err := requireAdmin(session); err != nil {
		return nil, false, err
	}
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, false, err
	}

	source := strings.ToLower(req.Source)
	if source == "" {
		source = feedback.DefaultSource
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = defaultIntakeEventType
	}
	key := feedback.BuildIntakeDedupeKey(source, req.ReporterEmail, req.Title)

	event := &models.IntakeEvent{
		ProjectID:     project.ID,
		Source:        source,
		ReferenceURL:  req.ReferenceURL,
		ReporterEmail: req.ReporterEmail,
		EventType:     eventType,
		Payload: models.IntakePayload{
			Title:    req.Title,
			Notes:    req.Notes,
			Type:     feedback.NormalizeType(req.Type),
			Priority: feedback.NormalizePriority(req.Priority),
		},
		DedupeKey: key,
	}

	db := s.db.WithContext(ctx)
	result := db.Clauses(onDedupeConflict).Create(event)
	if result.Error != nil {
		if apierrors.IsSchemaMissing(result.Error) {
			return nil, false, apierrors.SchemaMissing("Intake", result.Error)
		}
		return nil, false, fmt.Errorf("failed to create intake event: %w", result.Error)
	}

	created := event
	duplicate := result.RowsAffected == 0
	if duplicate {
		var existing models.IntakeEvent
		err := db.Where("project_id = ? AND dedupe_key = ?", project.ID, key).First(&existing).Error
		if err != nil {
			return nil, false, fmt.Errorf("failed to load duplicate intake event: %w", err)
		}
		created = &existing
	}

	outcome := "created"
	if duplicate {
		outcome = "duplicate"
	}
	metrics.Get().IntakeEventsTotal.WithLabelValues(outcome).Inc()
	logger.Log.Info("Intake event recorded",
		logger.WithIntakeID(created.ID.String()),
		zap.String("source", source),
		zap.Bool("duplicate", duplicate),
	)
	return created, duplicate, nil
}

// ConvertIntake creates a feedback item from an unlinked event and links the two
// in one transaction
func (s *IntakeService) ConvertIntake(ctx context.Context, session types.Session, id string) (uuid.UUID, error) {
	if err := requireAdmin(session); err != nil {
		return uuid.Nil, err
	}
	project, err := s.projects.Current(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	event, err := s.findEvent(ctx, project.ID, id)
	if err != nil {
		return uuid.Nil, err
	}
	if event.Linked() {
		return uuid.Nil, alreadyLinked(*event.FeedbackID)
	}

	title := strings.TrimSpace(event.Payload.Title)
	if title == "" {
		title = defaultConvertedTitle
	}
	body := strings.TrimSpace(event.Payload.Notes)
	if body == "" {
		body = defaultConvertedBody
	}
	source := strings.TrimSpace(event.Source)
	if source == "" {
		source = defaultConvertedSource
	}
	content := feedback.EncodeContent(feedback.Envelope{
		Type:      feedback.NormalizeType(event.Payload.Type),
		Priority:  feedback.NormalizePriority(event.Payload.Priority),
		Source:    source,
		Reference: event.ReferenceURL,
		Body:      body,
	})

	var feedbackID uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userID *uuid.UUID
		if reporter := strings.ToLower(strings.TrimSpace(event.ReporterEmail)); reporter != "" {
			if id, err := resolveProfile(tx, reporter, true); err == nil {
				userID = &id
			} else {
				logger.Log.Warn("Could not resolve intake reporter profile",
					logger.WithIntakeID(event.ID.String()), zap.Error(err))
			}
		}

		row := &models.Feedback{
			ProjectID:   project.ID,
			UserID:      userID,
			Title:       title,
			Description: content,
			Status:      string(feedback.StatusOpen),
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create feedback: %w", err)
		}

		if err := s.link(tx, project.ID, event.ID, row.ID, session.Email); err != nil {
			return err
		}
		feedbackID = row.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	metrics.Get().IntakeEventsTotal.WithLabelValues("converted").Inc()
	logger.Log.Info("Intake event converted",
		logger.WithIntakeID(event.ID.String()),
		logger.WithFeedbackID(feedbackID.String()),
		logger.WithEmail(session.Email),
	)
	return feedbackID, nil
}

// LinkIntake attaches an unlinked event to an existing feedback item
func (s *IntakeService) LinkIntake(ctx context.Context, session types.Session, id string, req *types.LinkIntakeRequest) (*types.LinkedIntake, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	target, err := findFeedback(db, project.ID, req.FeedbackID)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) && apiErr.Code == apierrors.ErrNotFound {
			return nil, apierrors.NotFound("feedback_id not found in project.")
		}
		return nil, err
	}

	event, err := s.findEvent(ctx, project.ID, id)
	if err != nil {
		return nil, err
	}
	if event.Linked() {
		return nil, alreadyLinked(*event.FeedbackID)
	}

	if err := s.link(db, project.ID, event.ID, target.ID, session.Email); err != nil {
		return nil, err
	}

	var updated models.IntakeEvent
	if err := db.First(&updated, "id = ?", event.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload intake event: %w", err)
	}

	metrics.Get().IntakeEventsTotal.WithLabelValues("linked").Inc()
	logger.Log.Info("Intake event linked",
		logger.WithIntakeID(event.ID.String()),
		logger.WithFeedbackID(target.ID.String()),
	)
	return &types.LinkedIntake{
		ID:          updated.ID.String(),
		FeedbackID:  target.ID.String(),
		ConvertedAt: updated.ConvertedAt,
		ConvertedBy: updated.ConvertedBy,
	}, nil
}

// link sets feedback_id on an event only while it is still NULL. Losing that race
// is reported as a conflict.
func (s *IntakeService) link(db *gorm.DB, projectID, eventID, feedbackID uuid.UUID, actor string) error {
	now := s.now()
	result := db.Model(&models.IntakeEvent{}).
		Where("id = ? AND project_id = ? AND feedback_id IS NULL", eventID, projectID).
		Updates(map[string]interface{}{
			"feedback_id":  feedbackID,
			"converted_at": now,
			"converted_by": actor,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to link intake event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var current models.IntakeEvent
		if err := db.Select("feedback_id").First(&current, "id = ?", eventID).Error; err == nil && current.Linked() {
			return alreadyLinked(*current.FeedbackID)
		}
		return apierrors.Conflict("Intake event already linked.")
	}
	return nil
}

func (s *IntakeService) findEvent(ctx context.Context, projectID uuid.UUID, id string) (*models.IntakeEvent, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apierrors.NotFound("Intake event not found.")
	}
	var event models.IntakeEvent
	err = s.db.WithContext(ctx).Where("id = ? AND project_id = ?", parsed, projectID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("Intake event not found.")
		}
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Intake", err)
		}
		return nil, fmt.Errorf("failed to load intake event: %w", err)
	}
	return &event, nil
}

func alreadyLinked(feedbackID uuid.UUID) *apierrors.APIError {
	return apierrors.Conflict("Intake event already linked.").With("feedback_id", feedbackID.String())
}

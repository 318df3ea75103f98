package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/preflight/backend/internal/email"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/feedback"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/metrics"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventFeedbackSubmitted is the intake trail entry written for direct submissions
const EventFeedbackSubmitted = "feedback_submitted"

type FeedbackService struct {
	db          *gorm.DB
	projects    IProjectService
	profiles    *ProfileService
	preferences IPreferenceService
	notifier    INotifier
	background  *Background
	now         func() time.Time
}

func NewFeedbackService(db *gorm.DB, projects IProjectService, profiles *ProfileService, preferences IPreferenceService, notifier INotifier, background *Background) *FeedbackService {
	return &FeedbackService{
		db:          db,
		projects:    projects,
		profiles:    profiles,
		preferences: preferences,
		notifier:    notifier,
		background:  background,
		now:         time.Now,
	}
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, session types.Session, req *types.CreateFeedbackRequest) (*models.Feedback, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	submitter := session.Email
	if submitter == "" {
		submitter = strings.ToLower(req.Email)
	}
	if submitter == "" {
		return nil, apierrors.BadRequest("email is required when unauthenticated.")
	}

	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}

	userID, err := s.profiles.Resolve(ctx, submitter, !session.Authenticated())
	if err != nil {
		return nil, apierrors.InternalError("Unable to create widget profile.").Wrap(err)
	}

	envelope := feedback.Envelope{
		Type:        feedback.NormalizeType(req.Type),
		Priority:    feedback.NormalizePriority(req.Priority),
		Source:      strings.TrimSpace(req.Source),
		Reference:   strings.TrimSpace(req.Reference),
		Body:        req.Description,
		Attachments: feedback.SanitizeAttachments(req.Attachments),
	}
	if envelope.Source == "" {
		envelope.Source = feedback.DefaultSource
	}

	row := &models.Feedback{
		ProjectID:   project.ID,
		UserID:      &userID,
		Title:       req.Subject,
		Description: feedback.EncodeContent(envelope),
		Status:      string(feedback.StatusOpen),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	origin := "anonymous"
	if session.Authenticated() {
		origin = "authenticated"
	}
	metrics.Get().FeedbackCreatedTotal.WithLabelValues(envelope.Type, origin).Inc()
	logger.Log.Info("Feedback created",
		logger.WithFeedbackID(row.ID.String()),
		zap.String("type", envelope.Type),
		zap.String("origin", origin),
	)

	s.recordIntakeTrail(project.ID, row, envelope, submitter)
	s.background.Go("notify_new_feedback", func(ctx context.Context) error {
		return s.notifier.NotifyNewFeedback(ctx, email.NewFeedback{
			FeedbackID:     row.ID.String(),
			Title:          row.Title,
			Type:           envelope.Type,
			Priority:       envelope.Priority,
			Preview:        feedback.DecodeContent(row.Description).Preview,
			SubmitterEmail: submitter,
		})
	})

	return row, nil
}

// recordIntakeTrail logs the submission as an already linked intake event
func (s *FeedbackService) recordIntakeTrail(projectID uuid.UUID, row *models.Feedback, envelope feedback.Envelope, submitter string) {
	feedbackID := row.ID
	convertedAt := s.now()
	s.background.Go("intake_trail", func(ctx context.Context) error {
		event := &models.IntakeEvent{
			ProjectID:     projectID,
			Source:        envelope.Source,
			ReferenceURL:  envelope.Reference,
			ReporterEmail: submitter,
			EventType:     EventFeedbackSubmitted,
			Payload: models.IntakePayload{
				Title:    row.Title,
				Notes:    envelope.Body,
				Type:     envelope.Type,
				Priority: envelope.Priority,
			},
			DedupeKey:   feedback.BuildIntakeDedupeKey(envelope.Source, submitter, row.Title),
			FeedbackID:  &feedbackID,
			ConvertedAt: &convertedAt,
			ConvertedBy: &submitter,
		}
		if err := s.db.WithContext(ctx).Clauses(onDedupeConflict).Create(event).Error; err != nil {
			return fmt.Errorf("failed to record intake trail: %w", err)
		}
		return nil
	})
}

func (s *FeedbackService) GetFeedback(ctx context.Context, id string) (*types.FeedbackItem, error) {
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}
	row, err := findFeedback(s.db.WithContext(ctx), project.ID, id)
	if err != nil {
		return nil, err
	}
	item := toFeedbackItem(row)
	return &item, nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context, sort, status string) (*types.FeedbackListResponse, error) {
	by := feedback.ParseSort(sort)
	statuses := feedback.ParseStatusFilter(status)

	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("project_id = ?", project.ID)
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, st := range statuses {
			values[i] = string(st)
		}
		query = query.Where("status IN ?", values)
	}

	var rows []models.Feedback
	if err := query.Find(&rows).Error; err != nil {
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Feedback", err)
		}
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	byID := make(map[string]types.FeedbackItem, len(rows))
	records := make([]feedback.Record, 0, len(rows))
	for i := range rows {
		item := toFeedbackItem(&rows[i])
		byID[item.ID] = item
		records = append(records, feedback.Record{
			ID:          item.ID,
			CreatedAt:   item.CreatedAt,
			Title:       item.Title,
			Description: item.Description,
			Status:      feedback.Status(item.Status),
			Upvotes:     item.Upvotes,
		})
	}
	records = feedback.SortRecords(feedback.FilterByStatus(records, statuses), by, s.now())

	items := make([]types.FeedbackItem, 0, len(records))
	for _, r := range records {
		items = append(items, byID[r.ID])
	}

	return &types.FeedbackListResponse{Items: items, Sort: string(by)}, nil
}

// UpdateFeedbackStatus moves an item through the workflow. Any state may follow any other.
func (s *FeedbackService) UpdateFeedbackStatus(ctx context.Context, session types.Session, id string, status string) (string, error) {
	if err := requireAdmin(session); err != nil {
		return "", err
	}
	next, ok := feedback.ParseStatus(status)
	if !ok {
		return "", apierrors.BadRequest("Invalid status.")
	}

	project, err := s.projects.Current(ctx)
	if err != nil {
		return "", err
	}
	row, err := findFeedback(s.db.WithContext(ctx), project.ID, id)
	if err != nil {
		return "", err
	}
	previous := feedback.NormalizeStatus(row.Status)

	err = s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("id = ? AND project_id = ?", row.ID, project.ID).
		Update("status", string(next)).Error
	if err != nil {
		return "", fmt.Errorf("failed to update feedback status: %w", err)
	}

	metrics.Get().StatusChangesTotal.WithLabelValues(string(next)).Inc()
	logger.Log.Info("Feedback status changed",
		logger.WithFeedbackID(row.ID.String()),
		logger.WithEmail(session.Email),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
	)

	if previous != next {
		event := EventStatus
		if next == feedback.StatusShipped {
			event = EventResolution
		}
		s.notifyOwner(row, session.Email, event, func(ctx context.Context, to string) error {
			return s.notifier.NotifyStatusChanged(ctx, email.StatusChange{
				ToEmail:        to,
				FeedbackID:     row.ID.String(),
				FeedbackTitle:  row.Title,
				PreviousStatus: previous,
				NextStatus:     next,
				ActorEmail:     session.Email,
			})
		})
	}

	return string(next), nil
}

// Upvote adds one vote. Repeated calls from the same client all count.
func (s *FeedbackService) Upvote(ctx context.Context, id string) (int, error) {
	project, err := s.projects.Current(ctx)
	if err != nil {
		return 0, err
	}
	db := s.db.WithContext(ctx)
	row, err := findFeedback(db, project.ID, id)
	if err != nil {
		return 0, err
	}

	err = db.Model(&models.Feedback{}).
		Where("id = ? AND project_id = ?", row.ID, project.ID).
		UpdateColumn("upvotes", gorm.Expr("upvotes + ?", 1)).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upvote feedback: %w", err)
	}

	var upvotes int
	if err := db.Model(&models.Feedback{}).Where("id = ?", row.ID).Pluck("upvotes", &upvotes).Error; err != nil {
		return 0, fmt.Errorf("failed to read upvotes: %w", err)
	}

	metrics.Get().FeedbackUpvotesTotal.Inc()
	return upvotes, nil
}

// notifyOwner emails the submitter of row in the background when they are not
// the actor and have not opted out of event
func (s *FeedbackService) notifyOwner(row *models.Feedback, actor string, event NotificationEvent, send func(ctx context.Context, to string) error) {
	notifyFeedbackOwner(s.background, s.profiles, s.preferences, row, actor, event, send)
}

func notifyFeedbackOwner(bg *Background, profiles *ProfileService, preferences IPreferenceService, row *models.Feedback, actor string, event NotificationEvent, send func(ctx context.Context, to string) error) {
	ownerID := row.UserID
	feedbackID := row.ID
	bg.Go("notify_"+string(event), func(ctx context.Context) error {
		recipient, err := profiles.OwnerEmail(ctx, ownerID)
		if err != nil {
			return err
		}
		if recipient == "" || recipient == feedback.NormalizeProfileEmail(actor) {
			return nil
		}
		ok, err := preferences.ShouldNotify(ctx, feedbackID, recipient, event)
		if err != nil {
			return err
		}
		if !ok {
			metrics.Get().NotificationsTotal.WithLabelValues(string(event), "opted_out").Inc()
			return nil
		}
		if err := send(ctx, recipient); err != nil {
			metrics.Get().NotificationsTotal.WithLabelValues(string(event), "error").Inc()
			return err
		}
		metrics.Get().NotificationsTotal.WithLabelValues(string(event), "sent").Inc()
		return nil
	})
}

func requireAdmin(session types.Session) error {
	if !session.Authenticated() {
		return apierrors.Unauthorized("Authentication required.")
	}
	if !session.IsAdmin {
		return apierrors.Forbidden("Admin access required.")
	}
	return nil
}

func parseFeedbackID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, apierrors.NotFound("Feedback not found.")
	}
	return parsed, nil
}

// findFeedback loads a feedback row scoped to the project
func findFeedback(db *gorm.DB, projectID uuid.UUID, id string) (*models.Feedback, error) {
	parsed, err := parseFeedbackID(id)
	if err != nil {
		return nil, err
	}
	var row models.Feedback
	if err := db.Where("id = ? AND project_id = ?", parsed, projectID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("Feedback not found.")
		}
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Feedback", err)
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &row, nil
}

func toFeedbackItem(row *models.Feedback) types.FeedbackItem {
	parsed := feedback.DecodeContent(row.Description)
	description := parsed.Body
	if description == "" {
		description = row.Description
	}
	attachments := parsed.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return types.FeedbackItem{
		ID:          row.ID.String(),
		CreatedAt:   row.CreatedAt,
		Title:       row.Title,
		Description: description,
		Preview:     parsed.Preview,
		Status:      string(feedback.NormalizeStatus(row.Status)),
		Upvotes:     row.Upvotes,
		Type:        parsed.Type,
		Priority:    parsed.Priority,
		Source:      parsed.Source,
		Reference:   parsed.Reference,
		Attachments: attachments,
	}
}

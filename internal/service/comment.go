package service

import (
	"context"
	"fmt"

	"github.com/pageza/preflight/backend/internal/email"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/metrics"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CommentService struct {
	db          *gorm.DB
	projects    IProjectService
	profiles    *ProfileService
	preferences IPreferenceService
	notifier    INotifier
	background  *Background
}

func NewCommentService(db *gorm.DB, projects IProjectService, profiles *ProfileService, preferences IPreferenceService, notifier INotifier, background *Background) *CommentService {
	return &CommentService{
		db:          db,
		projects:    projects,
		profiles:    profiles,
		preferences: preferences,
		notifier:    notifier,
		background:  background,
	}
}

// ListComments returns the thread oldest first
func (s *CommentService) ListComments(ctx context.Context, feedbackID string) ([]models.FeedbackComment, error) {
	project, err := s.projects.Current(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	row, err := findFeedback(db, project.ID, feedbackID)
	if err != nil {
		return nil, err
	}

	comments := []models.FeedbackComment{}
	if err := db.Where("feedback_id = ?", row.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Comments", err)
		}
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) CreateComment(ctx context.Context, session types.Session, feedbackID string, req *types.CreateCommentRequest) (*models.FeedbackComment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor := session.Email
	if actor == "" {
		actor = req.Email
	}
	if actor == "" {
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

	authorID, err := s.profiles.Resolve(ctx, actor, !session.Authenticated())
	if err != nil {
		return nil, apierrors.InternalError("Unable to resolve profile for comment author.").Wrap(err)
	}

	role := models.RoleUser
	if session.IsAdmin {
		role = models.RoleAdmin
	}

	comment := &models.FeedbackComment{
		FeedbackID:  row.ID,
		UserID:      authorID,
		AuthorEmail: actor,
		AuthorRole:  role,
		Body:        req.Body,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Comments", err)
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	metrics.Get().CommentsCreatedTotal.WithLabelValues(role).Inc()
	logger.Log.Info("Comment created",
		logger.WithFeedbackID(row.ID.String()),
		zap.String("role", role),
	)

	body := req.Body
	notifyFeedbackOwner(s.background, s.profiles, s.preferences, row, actor, EventComment, func(ctx context.Context, to string) error {
		return s.notifier.NotifyCommentAdded(ctx, email.CommentAdded{
			ToEmail:       to,
			FeedbackID:    row.ID.String(),
			FeedbackTitle: row.Title,
			CommentBody:   body,
			ActorEmail:    actor,
		})
	})

	return comment, nil
}

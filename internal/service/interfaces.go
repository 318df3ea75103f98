package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pageza/preflight/backend/internal/email"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/types"
)

// IAuthService defines the interface for session token operations
type IAuthService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(email string) (string, error)
	SessionFromToken(token string) (types.Session, error)
}

// IProjectService resolves the project this deployment serves
type IProjectService interface {
	Current(ctx context.Context) (*models.Project, error)
}

// IFeedbackService defines the interface for feedback operations
type IFeedbackService interface {
	CreateFeedback(ctx context.Context, session types.Session, req *types.CreateFeedbackRequest) (*models.Feedback, error)
	GetFeedback(ctx context.Context, id string) (*types.FeedbackItem, error)
	ListFeedback(ctx context.Context, sort, status string) (*types.FeedbackListResponse, error)
	UpdateFeedbackStatus(ctx context.Context, session types.Session, id string, status string) (string, error)
	Upvote(ctx context.Context, id string) (int, error)
}

// ICommentService defines the interface for comment operations
type ICommentService interface {
	ListComments(ctx context.Context, feedbackID string) ([]models.FeedbackComment, error)
	CreateComment(ctx context.Context, session types.Session, feedbackID string, req *types.CreateCommentRequest) (*models.FeedbackComment, error)
}

// IPreferenceService defines the interface for notification preference operations
type IPreferenceService interface {
	GetPreferences(ctx context.Context, session types.Session, feedbackID, email string) (*types.NotificationPreferencesResponse, error)
	SavePreferences(ctx context.Context, session types.Session, feedbackID string, req *types.NotificationPreferencesRequest) (*types.NotificationPreferencesResponse, error)
	ShouldNotify(ctx context.Context, feedbackID uuid.UUID, email string, event NotificationEvent) (bool, error)
}

// IUploadService defines the interface for attachment uploads
type IUploadService interface {
	Upload(ctx context.Context, file UploadFile) (*types.UploadResponse, error)
	MaxBytes() int64
}

// UploadFile is an attachment as received from the client
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// IIntakeService defines the interface for intake log operations
type IIntakeService interface {
	ListIntake(ctx context.Context, session types.Session, limit int) ([]models.IntakeEvent, error)
	CreateIntake(ctx context.Context, session types.Session, req *types.CreateIntakeRequest) (*models.IntakeEvent, bool, error)
	ConvertIntake(ctx context.Context, session types.Session, id string) (uuid.UUID, error)
	LinkIntake(ctx context.Context, session types.Session, id string, req *types.LinkIntakeRequest) (*types.LinkedIntake, error)
}

// INotifier delivers feedback notification emails
type INotifier interface {
	NotifyStatusChanged(ctx context.Context, p email.StatusChange) error
	NotifyCommentAdded(ctx context.Context, p email.CommentAdded) error
	NotifyNewFeedback(ctx context.Context, p email.NewFeedback) error
}

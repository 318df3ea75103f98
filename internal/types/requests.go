package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
)

// format checks run after trimming, so they cannot live in binding tags
var validate = validator.New()

func checkEmail(field, value string) error {
	if value == "" || validate.Var(value, "email") == nil {
		return nil
	}
	return apierrors.BadRequest(field + " must be a valid email address.")
}

func checkURL(field, value string) error {
	if value == "" || validate.Var(value, "url") == nil {
		return nil
	}
	return apierrors.BadRequest(field + " must be a valid URL.")
}

// Field limits
const (
	MaxSubjectLength     = 200
	MaxDescriptionLength = 10000
	MaxCommentLength     = 5000
)

// CreateFeedbackRequest is the body of POST /feedback
type CreateFeedbackRequest struct {
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Email       string   `json:"email"`
	Attachments []string `json:"attachments"`
	Source      string   `json:"source" binding:"max=50"`
	Reference   string   `json:"reference" binding:"max=2000"`
}

// Validate trims the request in place and rejects it on the first missing field
func (r *CreateFeedbackRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Description = strings.TrimSpace(r.Description)
	r.Email = strings.TrimSpace(r.Email)
	if r.Subject == "" || r.Description == "" {
		return apierrors.BadRequest("subject and description are required.")
	}
	if len([]rune(r.Subject)) > MaxSubjectLength {
		return apierrors.BadRequest("subject exceeds 200 characters.")
	}
	if len([]rune(r.Description)) > MaxDescriptionLength {
		return apierrors.BadRequest("description exceeds 10000 characters.")
	}
	return checkEmail("email", r.Email)
}

// UpdateStatusRequest is the body of PATCH /feedback/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateCommentRequest is the body of POST /feedback/:id/comments
type CreateCommentRequest struct {
	Body  string `json:"body"`
	Email string `json:"email"`
}

// Validate trims the comment and enforces its length
func (r *CreateCommentRequest) Validate() error {
	r.Body = strings.TrimSpace(r.Body)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Body == "" {
		return apierrors.BadRequest("comment body is required.")
	}
	if len([]rune(r.Body)) > MaxCommentLength {
		return apierrors.BadRequest("comment body exceeds 5000 characters.")
	}
	return checkEmail("email", r.Email)
}

// NotificationPreferencesRequest is the body of POST /feedback/:id/notification-preferences.
// Omitted flags are saved as false.
type NotificationPreferencesRequest struct {
	Email             string `json:"email"`
	StatusUpdates     bool   `json:"status_updates"`
	CommentUpdates    bool   `json:"comment_updates"`
	ResolutionUpdates bool   `json:"resolution_updates"`
	ArchivedUpdates   bool   `json:"archived_updates"`
}

// CreateIntakeRequest is the body of POST /intake
type CreateIntakeRequest struct {
	Source        string `json:"source" binding:"max=50"`
	Title         string `json:"title"`
	Notes         string `json:"notes"`
	ReporterEmail string `json:"reporter_email"`
	ReferenceURL  string `json:"reference_url"`
	Type          string `json:"type"`
	Priority      string `json:"priority"`
	EventType     string `json:"event_type" binding:"max=50"`
}

// Validate trims the request and requires a title
func (r *CreateIntakeRequest) Validate() error {
	r.Source = strings.TrimSpace(r.Source)
	r.Title = strings.TrimSpace(r.Title)
	r.Notes = strings.TrimSpace(r.Notes)
	r.ReporterEmail = strings.ToLower(strings.TrimSpace(r.ReporterEmail))
	r.ReferenceURL = strings.TrimSpace(r.ReferenceURL)
	r.EventType = strings.TrimSpace(r.EventType)
	if r.Title == "" {
		return apierrors.BadRequest("title is required.")
	}
	if len([]rune(r.Title)) > MaxSubjectLength {
		return apierrors.BadRequest("title exceeds 200 characters.")
	}
	if len([]rune(r.Notes)) > MaxDescriptionLength {
		return apierrors.BadRequest("notes exceeds 10000 characters.")
	}
	if err := checkEmail("reporter_email", r.ReporterEmail); err != nil {
		return err
	}
	return checkURL("reference_url", r.ReferenceURL)
}

// LinkIntakeRequest is the body of POST /intake/:id/link
type LinkIntakeRequest struct {
	FeedbackID string `json:"feedback_id"`
}

// Validate requires a feedback id
func (r *LinkIntakeRequest) Validate() error {
	r.FeedbackID = strings.TrimSpace(r.FeedbackID)
	if r.FeedbackID == "" {
		return apierrors.BadRequest("feedback_id is required.")
	}
	return nil
}

package types

import (
	"time"
)

// FeedbackItem is a decoded feedback row as served by the list and detail endpoints
type FeedbackItem struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Preview     string    `json:"preview"`
	Status      string    `json:"status"`
	Upvotes     int       `json:"upvotes"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Source      string    `json:"source"`
	Reference   string    `json:"reference"`
	Attachments []string  `json:"attachments"`
}

// FeedbackListResponse is returned by GET /feedback
type FeedbackListResponse struct {
	Items []FeedbackItem `json:"items"`
	Sort  string         `json:"sort"`
}

// CreateFeedbackResponse is returned by POST /feedback
type CreateFeedbackResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// NotificationPreferences is the wire form of the four opt-in flags
type NotificationPreferences struct {
	StatusUpdates     bool `json:"status_updates"`
	CommentUpdates    bool `json:"comment_updates"`
	ResolutionUpdates bool `json:"resolution_updates"`
	ArchivedUpdates   bool `json:"archived_updates"`
}

// DefaultNotificationPreferences has every event enabled
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		StatusUpdates:     true,
		CommentUpdates:    true,
		ResolutionUpdates: true,
		ArchivedUpdates:   true,
	}
}

// NotificationPreferencesResponse is returned by the preference endpoints. Email is
// omitted when the caller supplied none.
type NotificationPreferencesResponse struct {
	Email       string                  `json:"email,omitempty"`
	Preferences NotificationPreferences `json:"preferences"`
}

// UploadResponse is returned by POST /feedback/upload
type UploadResponse struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Bucket      string `json:"bucket"`
}

// LinkedIntake is returned by POST /intake/:id/link
type LinkedIntake struct {
	ID          string     `json:"id"`
	FeedbackID  string     `json:"feedback_id"`
	ConvertedAt *time.Time `json:"converted_at"`
	ConvertedBy *string    `json:"converted_by"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreference stores per-feedback email opt-outs. Absent rows mean
// every event is enabled. The flags carry no gorm default so an explicit false is
// written instead of being replaced by the column default.
type NotificationPreference struct {
	ID                uuid.UUID `gorm:"type:varchar(36);primarykey" json:"-"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
	FeedbackID        uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_notification_pref_feedback_email" json:"-"`
	Email             string    `gorm:"size:320;not null;uniqueIndex:idx_notification_pref_feedback_email" json:"-"`
	StatusUpdates     bool      `gorm:"not null" json:"status_updates"`
	CommentUpdates    bool      `gorm:"not null" json:"comment_updates"`
	ResolutionUpdates bool      `gorm:"not null" json:"resolution_updates"`
	ArchivedUpdates   bool      `gorm:"not null" json:"archived_updates"`
}

// TableName returns the table name for the NotificationPreference model
func (NotificationPreference) TableName() string {
	return "feedback_notification_preferences"
}

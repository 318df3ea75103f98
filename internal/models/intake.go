package models

import (
	"time"

	"github.com/google/uuid"
)

// IntakePayload is the free-form part of an intake event
type IntakePayload struct {
	Title    string `json:"title,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Type     string `json:"type,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// IntakeEvent logs a report received through an external channel. FeedbackID is
// written at most once. DedupeKey is unique within a project.
type IntakeEvent struct {
	ID            uuid.UUID     `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	ProjectID     uuid.UUID     `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_feedback_intake_events_project_dedupe" json:"-"`
	Source        string        `gorm:"size:50;not null;default:'web'" json:"source"`
	ReferenceURL  string        `gorm:"type:text" json:"reference_url"`
	ReporterEmail string        `gorm:"size:320" json:"reporter_email"`
	EventType     string        `gorm:"size:50;not null;default:'report'" json:"event_type"`
	Payload       IntakePayload `gorm:"type:text;serializer:json" json:"payload"`
	DedupeKey     string        `gorm:"size:255;uniqueIndex:idx_feedback_intake_events_project_dedupe" json:"dedupe_key"`
	FeedbackID    *uuid.UUID    `gorm:"type:varchar(36);index" json:"feedback_id"`
	ConvertedAt   *time.Time    `json:"converted_at"`
	ConvertedBy   *string       `gorm:"size:320" json:"converted_by"`
}

// TableName returns the table name for the IntakeEvent model
func (IntakeEvent) TableName() string {
	return "feedback_intake_events"
}

// Linked reports whether the event already points at a feedback item
func (e *IntakeEvent) Linked() bool {
	return e.FeedbackID != nil && *e.FeedbackID != uuid.Nil
}

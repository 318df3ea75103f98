package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment author roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type FeedbackComment struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	FeedbackID  uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null" json:"-"`
	AuthorEmail string    `gorm:"size:320;not null" json:"author_email"`
	AuthorRole  string    `gorm:"size:10;not null;default:'user'" json:"author_role"`
	Body        string    `gorm:"type:text;not null" json:"body"`
}

// TableName returns the table name for the FeedbackComment model
func (FeedbackComment) TableName() string {
	return "feedback_comments"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID        uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ProjectID uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"project_id"`
	UserID    *uuid.UUID `gorm:"type:varchar(36)" json:"user_id,omitempty"`
	User      *Profile   `gorm:"foreignKey:UserID" json:"-"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	// Description holds the encoded envelope, see feedback.EncodeContent
	Description string `gorm:"type:text;not null" json:"description"`
	Status      string `gorm:"size:20;not null;default:'open';index" json:"status"` // open, planned, in_progress, shipped
	Upvotes     int    `gorm:"not null;default:0" json:"upvotes"`
}

// TableName returns the table name for the Feedback model
func (Feedback) TableName() string {
	return "feedback"
}

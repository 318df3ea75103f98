package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a submitter or commenter. Anonymous submitters are stored under
// their "+widget" alias.
type Profile struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Email     string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"size:200" json:"full_name"`
}

// TableName returns the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups feedback. The service serves exactly one project, picked by slug.
type Project struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"size:200;not null" json:"name"`
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

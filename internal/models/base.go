package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row a fresh UUID when the caller left it zero. Keys are
// generated in Go so the same models work on SQLite and PostgreSQL.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BeforeCreate hooks

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}

func (c *FeedbackComment) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (e *IntakeEvent) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func (n *NotificationPreference) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Project{},
		&Profile{},
		&Feedback{},
		&FeedbackComment{},
		&IntakeEvent{},
		&NotificationPreference{},
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/models"
	"gorm.io/gorm"
)

// ProjectService looks up the single project served by this deployment
type ProjectService struct {
	db   *gorm.DB
	slug string
}

func NewProjectService(db *gorm.DB, slug string) *ProjectService {
	return &ProjectService{db: db, slug: slug}
}

// Current returns the configured project or a 404 when it has not been created
func (s *ProjectService) Current(ctx context.Context) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Where("slug = ?", s.slug).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("Target project was not found.")
		}
		if apierrors.IsSchemaMissing(err) {
			return nil, apierrors.SchemaMissing("Projects", err)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &project, nil
}

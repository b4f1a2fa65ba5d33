package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

func (i *ImportJobPostgreSQL) Create(ctx context.Context, job *models.ImportJob) error {
	if err := i.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to record import job: %w", err)
	}
	return nil
}

func (i *ImportJobPostgreSQL) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := i.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (i *ImportJobPostgreSQL) ListRecent(ctx context.Context, limit int) ([]models.ImportJob, error) {
	var jobs []models.ImportJob
	if limit <= 0 {
		limit = 20
	}
	if err := i.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

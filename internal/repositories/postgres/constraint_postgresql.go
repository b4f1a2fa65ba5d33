package postgres

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
)

type ConstraintPostgreSQL struct {
	db *gorm.DB
}

func NewConstraintPostgreSQL(db *gorm.DB) repositories.ConstraintRepository {
	return &ConstraintPostgreSQL{db: db}
}

func (c *ConstraintPostgreSQL) LabTestTypesByCategory(ctx context.Context, tx *gorm.DB, categoryID string) ([]models.LabTestType, error) {
	var types []models.LabTestType
	err := getDB(c.db, tx).WithContext(ctx).
		Where("lab_test_category_id = ?", categoryID).
		Find(&types).Error
	return types, err
}

func (c *ConstraintPostgreSQL) LabTestTypesByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.LabTestType, error) {
	var types []models.LabTestType
	if len(ids) == 0 {
		return types, nil
	}
	err := getDB(c.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&types).Error
	return types, err
}

func (c *ConstraintPostgreSQL) ReferenceDataByID(ctx context.Context, tx *gorm.DB, id string) (*models.ReferenceData, error) {
	var ref models.ReferenceData
	if err := getDB(c.db, tx).WithContext(ctx).Where("id = ?", id).First(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

func (c *ConstraintPostgreSQL) SurveysByProgram(ctx context.Context, tx *gorm.DB, programID string) ([]models.Survey, error) {
	var surveys []models.Survey
	err := getDB(c.db, tx).WithContext(ctx).
		Where("program_id = ?", programID).
		Order("created_at").
		Find(&surveys).Error
	return surveys, err
}

func (c *ConstraintPostgreSQL) CountRegistrations(ctx context.Context, tx *gorm.DB, registryID string) (int64, error) {
	var count int64
	err := getDB(c.db, tx).WithContext(ctx).
		Model(&models.PatientProgramRegistration{}).
		Where("program_registry_id = ?", registryID).
		Count(&count).Error
	return count, err
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TranslationPostgreSQL struct {
	db *gorm.DB
}

func NewTranslationPostgreSQL(db *gorm.DB) repositories.TranslationRepository {
	return &TranslationPostgreSQL{db: db}
}

// Upsert writes translations keyed by (string_id, language), reviving soft-deleted ones
func (t *TranslationPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, records []models.TranslatedString) error {
	if len(records) == 0 {
		return nil
	}
	err := getDB(t.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "string_id"}, {Name: "language"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at", "deleted_at"}),
		}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("failed to upsert translations: %w", err)
	}
	return nil
}

func (t *TranslationPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, language string, stringIDs []string) error {
	if len(stringIDs) == 0 {
		return nil
	}
	err := getDB(t.db, tx).WithContext(ctx).
		Model(&models.TranslatedString{}).
		Where("language = ? AND string_id IN ?", language, stringIDs).
		Update("deleted_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to delete translations: %w", err)
	}
	return nil
}

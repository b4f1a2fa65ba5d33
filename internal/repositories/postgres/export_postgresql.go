package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
)

type ExportPostgreSQL struct {
	db *gorm.DB
}

func NewExportPostgreSQL(db *gorm.DB) repositories.ExportRepository {
	return &ExportPostgreSQL{db: db}
}

// ListRecords returns the live rows of one entity in creation order
func (e *ExportPostgreSQL) ListRecords(ctx context.Context, entity models.Entity, dataType string) ([]repositories.Record, error) {
	cols, err := columnsFor(entity)
	if err != nil {
		return nil, err
	}

	query := e.db.WithContext(ctx).Model(entity.New())
	if entity.Name == "ReferenceData" {
		query = query.Where("type = ?", dataType)
	}
	if cols.has("createdAt") {
		query = query.Order("created_at")
	}

	var rows []map[string]interface{}
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity.Name, err)
	}

	records := make([]repositories.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, cols.toRecord(row))
	}
	return records, nil
}

func (e *ExportPostgreSQL) ListLabTestPanels(ctx context.Context) ([]models.LabTestPanel, error) {
	var panels []models.LabTestPanel
	err := e.db.WithContext(ctx).
		Preload("LabTestTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order"`).Order("created_at")
		}).
		Order("created_at").
		Order("id").
		Find(&panels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lab test panels: %w", err)
	}
	return panels, nil
}

func (e *ExportPostgreSQL) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := e.db.WithContext(ctx).
		Preload("Facility").
		Preload("LocationGroup").
		Order("created_at").
		Order("id").
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (e *ExportPostgreSQL) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := e.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// ListPermissions includes revoked (soft-deleted) grants so the matrix can show them as "n"
func (e *ExportPostgreSQL) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	err := e.db.WithContext(ctx).
		Unscoped().
		Order("created_at").
		Order("id").
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}

func (e *ExportPostgreSQL) ListTranslatedStrings(ctx context.Context, excludePrefix string) ([]models.TranslatedString, error) {
	var strs []models.TranslatedString
	query := e.db.WithContext(ctx)
	if excludePrefix != "" {
		query = query.Where("string_id NOT LIKE ?", excludePrefix+"%")
	}
	if err := query.Order("string_id").Order("language").Find(&strs).Error; err != nil {
		return nil, fmt.Errorf("failed to list translated strings: %w", err)
	}
	return strs, nil
}

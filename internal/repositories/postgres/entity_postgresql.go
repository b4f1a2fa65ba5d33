package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntityPostgreSQL struct {
	db *gorm.DB
}

func NewEntityPostgreSQL(db *gorm.DB) repositories.EntityRepository {
	return &EntityPostgreSQL{db: db}
}

func (e *EntityPostgreSQL) FindByKey(ctx context.Context, tx *gorm.DB, entity models.Entity, key repositories.Record) (repositories.Record, error) {
	cols, err := columnsFor(entity)
	if err != nil {
		return nil, err
	}
	where, err := cols.toColumns(key)
	if err != nil {
		return nil, err
	}
	if len(where) != len(key) {
		return nil, fmt.Errorf("incomplete key for %s: %v", entity.Name, key)
	}

	var rows []map[string]interface{}
	if err := getDB(e.db, tx).WithContext(ctx).
		Model(entity.New()).
		Unscoped().
		Where(where).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", entity.Name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return cols.toRecord(rows[0]), nil
}

func (e *EntityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entity models.Entity, values repositories.Record) error {
	cols, err := columnsFor(entity)
	if err != nil {
		return err
	}
	data, err := cols.toColumns(values)
	if err != nil {
		return err
	}
	if err := getDB(e.db, tx).WithContext(ctx).Model(entity.New()).Create(data).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", entity.Name, err)
	}
	return nil
}

func (e *EntityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, entity models.Entity, key repositories.Record, values repositories.Record) error {
	cols, err := columnsFor(entity)
	if err != nil {
		return err
	}
	where, err := cols.toColumns(key)
	if err != nil {
		return err
	}
	data, err := cols.toColumns(values)
	if err != nil {
		return err
	}
	for column := range where {
		delete(data, column)
	}
	if len(data) == 0 {
		return nil
	}
	if err := getDB(e.db, tx).WithContext(ctx).
		Model(entity.New()).
		Unscoped().
		Where(where).
		Updates(data).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", entity.Name, err)
	}
	return nil
}

func (e *EntityPostgreSQL) ResolveReference(ctx context.Context, tx *gorm.DB, entity models.Entity, dataType, ref string) (string, bool, error) {
	cols, err := columnsFor(entity)
	if err != nil {
		return "", false, err
	}

	conditions := []string{"id = @ref"}
	if entity.Named {
		conditions = append(conditions, "LOWER(name) = LOWER(@ref)")
	}
	if cols.has("code") {
		conditions = append(conditions, "code = @ref")
	}

	query := getDB(e.db, tx).WithContext(ctx).
		Model(entity.New()).
		Where("("+strings.Join(conditions, " OR ")+")", map[string]interface{}{"ref": ref})
	if entity.Name == "ReferenceData" && dataType != "" {
		query = query.Where("type = ?", dataType)
	}

	var ids []string
	if err := query.
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "CASE WHEN id = ? THEN 0 ELSE 1 END", Vars: []interface{}{ref}, WithoutParentheses: true}}).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return "", false, fmt.Errorf("failed to resolve %s reference: %w", entity.Name, err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

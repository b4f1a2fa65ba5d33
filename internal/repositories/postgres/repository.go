package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm backed implementation of repositories.Repository
type Repository struct {
	db *gorm.DB

	entity      repositories.EntityRepository
	translation repositories.TranslationRepository
	checkpoint  repositories.SyncCheckpointRepository
	constraint  repositories.ConstraintRepository
	permission  repositories.PermissionRepository
	export      repositories.ExportRepository
	importJob   repositories.ImportJobRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:          db,
		entity:      NewEntityPostgreSQL(db),
		translation: NewTranslationPostgreSQL(db),
		checkpoint:  NewSyncCheckpointPostgreSQL(db),
		constraint:  NewConstraintPostgreSQL(db),
		permission:  NewPermissionPostgreSQL(db),
		export:      NewExportPostgreSQL(db),
		importJob:   NewImportJobPostgreSQL(db),
	}
}

func (r *Repository) Entity() repositories.EntityRepository                 { return r.entity }
func (r *Repository) Translation() repositories.TranslationRepository       { return r.translation }
func (r *Repository) SyncCheckpoint() repositories.SyncCheckpointRepository { return r.checkpoint }
func (r *Repository) Constraint() repositories.ConstraintRepository         { return r.constraint }
func (r *Repository) Permission() repositories.PermissionRepository         { return r.permission }
func (r *Repository) Export() repositories.ExportRepository                 { return r.export }
func (r *Repository) ImportJob() repositories.ImportJobRepository           { return r.importJob }

// Begin opens a transaction. The caller must finish it with Commit or Rollback.
func (r *Repository) Begin(ctx context.Context, opts *sql.TxOptions) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin(opts)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return tx, nil
}

func (r *Repository) Commit(tx *gorm.DB) error {
	return tx.Commit().Error
}

func (r *Repository) Rollback(tx *gorm.DB) error {
	return tx.Rollback().Error
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

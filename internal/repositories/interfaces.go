package repositories

import (
	"context"
	"database/sql"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"gorm.io/gorm"
)

// Repository groups every repository the import/export engine uses
type Repository interface {
	TxManager

	Entity() EntityRepository
	Translation() TranslationRepository
	SyncCheckpoint() SyncCheckpointRepository
	Constraint() ConstraintRepository
	Permission() PermissionRepository
	Export() ExportRepository
	ImportJob() ImportJobRepository

	Ping(ctx context.Context) error
	Close() error
}

// TxManager opens and finishes the single transaction an import runs in. Callers own the
// commit/rollback decision.
type TxManager interface {
	Begin(ctx context.Context, opts *sql.TxOptions) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB) error
}

// Record is a row keyed by camelCase field name, as written in workbooks
type Record map[string]interface{}

// EntityRepository reads and writes any importable model through its field map
type EntityRepository interface {
	// FindByKey returns the row matching key, including soft-deleted rows, or nil
	FindByKey(ctx context.Context, tx *gorm.DB, entity models.Entity, key Record) (Record, error)
	Create(ctx context.Context, tx *gorm.DB, entity models.Entity, values Record) error
	Update(ctx context.Context, tx *gorm.DB, entity models.Entity, key Record, values Record) error

	// ResolveReference finds the id of a live row whose id, code or name equals ref.
	// dataType narrows reference data lookups to one subtype and is ignored otherwise.
	ResolveReference(ctx context.Context, tx *gorm.DB, entity models.Entity, dataType, ref string) (string, bool, error)
}

type TranslationRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, records []models.TranslatedString) error
	Delete(ctx context.Context, tx *gorm.DB, language string, stringIDs []string) error
}

type SyncCheckpointRepository interface {
	// LockCurrent takes a FOR UPDATE lock on the current sync tick row for the life of tx
	LockCurrent(ctx context.Context, tx *gorm.DB) (*models.LocalSystemFact, error)
}

// ConstraintRepository answers the persisted side of cross-entity checks
type ConstraintRepository interface {
	LabTestTypesByCategory(ctx context.Context, tx *gorm.DB, categoryID string) ([]models.LabTestType, error)
	LabTestTypesByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.LabTestType, error)
	ReferenceDataByID(ctx context.Context, tx *gorm.DB, id string) (*models.ReferenceData, error)
	SurveysByProgram(ctx context.Context, tx *gorm.DB, programID string) ([]models.Survey, error)
	CountRegistrations(ctx context.Context, tx *gorm.DB, registryID string) (int64, error)
}

type PermissionRepository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListForRole(ctx context.Context, roleID string) ([]models.Permission, error)
}

type ExportRepository interface {
	ListRecords(ctx context.Context, entity models.Entity, dataType string) ([]Record, error)
	ListLabTestPanels(ctx context.Context) ([]models.LabTestPanel, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	ListTranslatedStrings(ctx context.Context, excludePrefix string) ([]models.TranslatedString, error)
}

type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	ListRecent(ctx context.Context, limit int) ([]models.ImportJob, error)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncCheckpointPostgreSQL struct {
	db *gorm.DB
}

func NewSyncCheckpointPostgreSQL(db *gorm.DB) repositories.SyncCheckpointRepository {
	return &SyncCheckpointPostgreSQL{db: db}
}

// LockCurrent holds the sync tick row until tx ends. A snapshot run takes the same lock before
// reading the tick, so it waits for the import to finish and vice versa.
func (s *SyncCheckpointPostgreSQL) LockCurrent(ctx context.Context, tx *gorm.DB) (*models.LocalSystemFact, error) {
	fact := models.LocalSystemFact{Key: models.CurrentSyncTickKey, Value: "0"}
	result := getDB(s.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key = ?", models.CurrentSyncTickKey).
		FirstOrCreate(&fact)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to lock sync checkpoint: %w", result.Error)
	}
	return &fact, nil
}

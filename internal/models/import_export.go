package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportKind string

const (
	ImportKindReferenceData ImportKind = "referenceData"
	ImportKindProgram       ImportKind = "program"
)

type ImportJobStatus string

const (
	ImportCommitted        ImportJobStatus = "committed"
	ImportDryRun           ImportJobStatus = "dry_run"
	ImportValidationFailed ImportJobStatus = "validation_failed"
)

// ImportJob records one import invocation, whatever its outcome
type ImportJob struct {
	ID     string     `json:"id" gorm:"primaryKey;size:36"` // UUID
	Kind   ImportKind `json:"kind" gorm:"not null;index;size:30"`
	UserID string     `json:"userId" gorm:"index;size:255"`

	// File info
	FileName string `json:"fileName" gorm:"not null;size:255"`
	FileSize int64  `json:"fileSize"`

	// Options
	DryRun            bool           `json:"dryRun"`
	SkipExisting      bool           `json:"skipExisting"`
	IncludedDataTypes datatypes.JSON `json:"includedDataTypes" gorm:"type:jsonb"` // []string

	// Results
	Status     ImportJobStatus `json:"status" gorm:"not null;index;size:30"`
	ErrorCount int             `json:"errorCount"`
	Errors     datatypes.JSON  `json:"errors" gorm:"type:jsonb"` // []ImportError
	Stats      datatypes.JSON  `json:"stats" gorm:"type:jsonb"`  // map[string]StatEntry
	DurationMs int64           `json:"durationMs"`

	CreatedAt time.Time `json:"createdAt"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

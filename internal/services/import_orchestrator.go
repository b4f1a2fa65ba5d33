package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/stats"
	"gorm.io/gorm"
)

// DidntSendReason explains why an import left the database untouched
type DidntSendReason string

const (
	ReasonDryRun           DidntSendReason = "dryRun"
	ReasonValidationFailed DidntSendReason = "validationFailed"
)

// Source is the workbook an import reads
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// BytesSource serves an uploaded workbook held in memory
type BytesSource struct {
	FileName string
	Data     []byte
}

func (s BytesSource) Name() string { return s.FileName }

func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// FileSource reads a workbook from disk
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.Path, err)
	}
	return f, nil
}

// ImportBatch is what a strategy needs to run inside an open transaction
type ImportBatch struct {
	Tx                *gorm.DB
	Source            Source
	IncludedDataTypes []string
	SkipExisting      bool
	PermissionCheck   PermissionCheck
}

// Strategy imports one family of workbooks. Row problems are returned as ImportErrors;
// a non-nil error aborts the run.
type Strategy interface {
	Run(ctx context.Context, batch *ImportBatch) ([]*ImportError, stats.Map, error)
}

// ImportOptions are the caller's inputs to one import
type ImportOptions struct {
	Kind              models.ImportKind
	Source            Source
	DryRun            bool
	IncludedDataTypes []string
	SkipExisting      bool
	PermissionCheck   PermissionCheck
}

// ImportResult is reported back to the caller whatever the outcome
type ImportResult struct {
	DidntSendReason DidntSendReason `json:"didntSendReason,omitempty"`
	Errors          []*ImportError  `json:"errors"`
	Stats           stats.Map       `json:"stats"`
	Duration        time.Duration   `json:"duration"`
}

// Committed reports whether the import's changes were persisted
func (r *ImportResult) Committed() bool {
	return r.DidntSendReason == ""
}

// Decision is the commit-or-rollback outcome of a strategy run
type Decision struct {
	Commit bool
	Reason DidntSendReason
}

// Decide applies the commit rule: any error rolls back as validationFailed regardless of
// dry run, an error-free dry run rolls back as dryRun, everything else commits.
func Decide(dryRun bool, errs []*ImportError) Decision {
	switch {
	case len(errs) > 0:
		return Decision{Reason: ReasonValidationFailed}
	case dryRun:
		return Decision{Reason: ReasonDryRun}
	default:
		return Decision{Commit: true}
	}
}

// Orchestrator runs a strategy inside one serializable transaction holding the sync
// checkpoint lock, then commits or rolls back according to Decide.
type Orchestrator struct {
	repo       repositories.Repository
	dataTypes  *DataTypeRegistry
	strategies map[models.ImportKind]Strategy
	logger     *ServiceLogger
}

func NewOrchestrator(repo repositories.Repository, dataTypes *DataTypeRegistry, strategies map[models.ImportKind]Strategy, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		repo:       repo,
		dataTypes:  dataTypes,
		strategies: strategies,
		logger:     NewServiceLogger(logger, LogConfig{Service: "refdata", Component: "import_orchestrator"}),
	}
}

// Run executes one import. The returned error covers failures to start or finish the
// transaction; everything the strategy reports is in the result.
func (o *Orchestrator) Run(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	strategy, ok := o.strategies[opts.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImportKind, opts.Kind)
	}
	if err := o.dataTypes.Validate(opts.Kind, opts.IncludedDataTypes); err != nil {
		return nil, err
	}

	start := time.Now()
	tx, err := o.repo.Begin(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}

	if _, err := o.repo.SyncCheckpoint().LockCurrent(ctx, tx); err != nil {
		_ = o.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to lock sync checkpoint: %w", err)
	}

	batch := &ImportBatch{
		Tx:                tx,
		Source:            opts.Source,
		IncludedDataTypes: opts.IncludedDataTypes,
		SkipExisting:      opts.SkipExisting,
		PermissionCheck:   opts.PermissionCheck,
	}
	errs, st, runErr := o.runStrategy(ctx, strategy, batch)
	if runErr != nil {
		errs = []*ImportError{apperrors.NewGeneralImportError(runErr)}
	}
	if st == nil {
		st = stats.Map{}
	}

	decision := Decide(opts.DryRun, errs)
	if decision.Commit {
		if err := o.repo.Commit(tx); err != nil {
			return nil, fmt.Errorf("failed to commit import: %w", err)
		}
	} else if err := o.repo.Rollback(tx); err != nil {
		return nil, fmt.Errorf("failed to roll back import: %w", err)
	}

	result := &ImportResult{
		DidntSendReason: decision.Reason,
		Errors:          errs,
		Stats:           st,
		Duration:        time.Since(start),
	}
	if result.Errors == nil {
		result.Errors = []*ImportError{}
	}

	if len(result.Errors) > 0 {
		o.logger.LogImportErrors(ctx, "import_"+string(opts.Kind), result.Errors)
	}
	o.logger.LogStats(ctx, "import_"+string(opts.Kind), result.Stats)
	return result, nil
}

// runStrategy converts a panic in the strategy into an error so the transaction is still
// rolled back
func (o *Orchestrator) runStrategy(ctx context.Context, strategy Strategy, batch *ImportBatch) (errs []*ImportError, st stats.Map, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.LogRecovery(ctx, "import", r, debug.Stack())
			errs, st = nil, nil
			err = fmt.Errorf("unexpected failure during import: %v", r)
		}
	}()
	return strategy.Run(ctx, batch)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/cache"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	importGateKey      = "refdata"
	exportCachePattern = exportCachePrefix + "*"
)

// ImportService runs workbook imports on behalf of a user and keeps their history
type ImportService interface {
	Import(ctx context.Context, req *ImportRequest) (*ImportResponse, error)
	GetJob(ctx context.Context, jobID string) (*models.ImportJob, error)
	ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error)
}

// ImportRequest describes one upload. Trusted skips permission checks and is only set by
// local tooling.
type ImportRequest struct {
	Kind              models.ImportKind `json:"kind" validate:"required,oneof=referenceData program"`
	Source            Source            `json:"-" validate:"required"`
	FileSize          int64             `json:"fileSize"`
	DryRun            bool              `json:"dryRun"`
	SkipExisting      bool              `json:"skipExisting"`
	IncludedDataTypes []string          `json:"includedDataTypes"`
	UserID            string            `json:"userId"`
	Trusted           bool              `json:"-"`
}

// ImportResponse is the import result together with the id of its history record
type ImportResponse struct {
	JobID string `json:"jobId"`
	*ImportResult
}

type importService struct {
	repo         repositories.Repository
	orchestrator *Orchestrator
	permissions  PermissionChecker
	gate         cache.ImportGate
	cache        cache.CacheService
	events       ImportEventService
	validator    *validator.Validator
	logger       *slog.Logger
	ops          *ServiceLogger
}

func NewImportService(
	repo repositories.Repository,
	orchestrator *Orchestrator,
	permissions PermissionChecker,
	gate cache.ImportGate,
	cacheService cache.CacheService,
	eventService ImportEventService,
	v *validator.Validator,
	logger *slog.Logger,
) ImportService {
	return &importService{
		repo:         repo,
		orchestrator: orchestrator,
		permissions:  permissions,
		gate:         gate,
		cache:        cacheService,
		events:       eventService,
		validator:    v,
		logger:       logger,
		ops:          NewServiceLogger(logger, LogConfig{Service: "refdata", Component: "import_service"}),
	}
}

func (s *importService) Import(ctx context.Context, req *ImportRequest) (*ImportResponse, error) {
	op := s.ops.WithOperation(ctx, "import_"+string(req.Kind), req.UserID)

	if err := s.validator.ValidateStruct(req); err != nil {
		if verr := validator.ToValidationErrors(err); len(verr) > 0 {
			err = verr
		}
		op.LogResult("import", err)
		return nil, err
	}

	release, err := s.gate.Acquire(ctx, importGateKey)
	if err != nil {
		if errors.Is(err, cache.ErrLockNotObtained) {
			err = ErrImportInProgress
		}
		op.LogResult("import", err)
		return nil, err
	}
	defer release(ctx)

	check, err := s.permissionCheck(ctx, req)
	if err != nil {
		op.LogResult("import", err)
		return nil, err
	}

	result, err := s.orchestrator.Run(ctx, ImportOptions{
		Kind:              req.Kind,
		Source:            req.Source,
		DryRun:            req.DryRun,
		IncludedDataTypes: req.IncludedDataTypes,
		SkipExisting:      req.SkipExisting,
		PermissionCheck:   check,
	})
	if err != nil {
		op.LogResult("import", err)
		return nil, err
	}

	job := s.newJob(req, result)
	if err := s.repo.ImportJob().Create(ctx, job); err != nil {
		// the import itself already finished; losing its history is not fatal
		s.logger.Error("Failed to record import job", "job_id", job.ID, "error", err)
	}

	if result.Committed() {
		if err := s.cache.DeletePattern(ctx, exportCachePattern); err != nil {
			s.logger.Warn("Failed to invalidate export cache", "error", err)
		}
		if err := s.events.NotifyImportCommitted(ctx, job, req.IncludedDataTypes, result.Stats); err != nil {
			s.logger.Warn("Failed to publish import event", "job_id", job.ID, "error", err)
		}
	}

	op.LogResult("import", nil)
	return &ImportResponse{JobID: job.ID, ImportResult: result}, nil
}

func (s *importService) newJob(req *ImportRequest, result *ImportResult) *models.ImportJob {
	status := models.ImportCommitted
	switch result.DidntSendReason {
	case ReasonDryRun:
		status = models.ImportDryRun
	case ReasonValidationFailed:
		status = models.ImportValidationFailed
	}

	fileName := ""
	if req.Source != nil {
		fileName = req.Source.Name()
	}

	return &models.ImportJob{
		ID:                uuid.NewString(),
		Kind:              req.Kind,
		UserID:            req.UserID,
		FileName:          fileName,
		FileSize:          req.FileSize,
		DryRun:            req.DryRun,
		SkipExisting:      req.SkipExisting,
		IncludedDataTypes: toJSON(req.IncludedDataTypes),
		Status:            status,
		ErrorCount:        len(result.Errors),
		Errors:            toJSON(result.Errors),
		Stats:             toJSON(result.Stats),
		DurationMs:        result.Duration.Milliseconds(),
		CreatedAt:         time.Now(),
	}
}

func (s *importService) GetJob(ctx context.Context, jobID string) (*models.ImportJob, error) {
	job, err := s.repo.ImportJob().GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	if job == nil {
		return nil, ErrImportJobNotFound
	}
	return job, nil
}

func (s *importService) ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ImportJob().ListRecent(ctx, limit)
}

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func (s *importService) permissionCheck(ctx context.Context, req *ImportRequest) (PermissionCheck, error) {
	if req.Trusted {
		return AllowAll, nil
	}
	return s.permissions.ForUser(ctx, req.UserID)
}

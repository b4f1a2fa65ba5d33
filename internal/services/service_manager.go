package services

import (
	"log/slog"

	"github.com/SAP-F-2025/refdata-service/internal/cache"
	"github.com/SAP-F-2025/refdata-service/internal/config"
	"github.com/SAP-F-2025/refdata-service/internal/events"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/sheets"
	"github.com/SAP-F-2025/refdata-service/internal/translations"
	"github.com/SAP-F-2025/refdata-service/internal/validator"
)

// ServiceManager exposes the services the handlers and the CLI use
type ServiceManager interface {
	Import() ImportService
	Export() ExportService
}

type serviceManager struct {
	importService ImportService
	exportService ExportService
}

// Dependencies are the infrastructure pieces the services are built from
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Gate      cache.ImportGate
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
}

func NewServiceManager(cfg *config.Config, deps Dependencies) ServiceManager {
	dataTypes := NewDataTypeRegistry()
	generator := translations.NewGenerator(cfg.TranslationPrefix, cfg.DefaultLanguage, translations.DefaultRegistry())
	importer := NewImporter(deps.Repo, deps.Validator, sheets.NewDefaultNormalizer(), generator, dataTypes, deps.Logger)

	orchestrator := NewOrchestrator(deps.Repo, dataTypes, map[models.ImportKind]Strategy{
		models.ImportKindReferenceData: NewReferenceDataStrategy(importer),
		models.ImportKindProgram:       NewProgramStrategy(importer),
	}, deps.Logger)

	return &serviceManager{
		importService: NewImportService(
			deps.Repo,
			orchestrator,
			NewPermissionChecker(deps.Repo),
			deps.Gate,
			deps.Cache,
			NewImportEventService(deps.Publisher, deps.Logger),
			deps.Validator,
			deps.Logger,
		),
		exportService: NewExportService(deps.Repo, dataTypes, deps.Cache, cfg.ExportCacheTTL, cfg.TranslationPrefix, deps.Logger),
	}
}

func (m *serviceManager) Import() ImportService { return m.importService }
func (m *serviceManager) Export() ExportService { return m.exportService }

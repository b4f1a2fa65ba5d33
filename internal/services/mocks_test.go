package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/sheets"
	"github.com/SAP-F-2025/refdata-service/internal/stats"
	"github.com/SAP-F-2025/refdata-service/internal/translations"
	"github.com/SAP-F-2025/refdata-service/internal/validator"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTx = &gorm.DB{}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository mocks the transaction and checkpoint calls and serves entities from memory
type MockRepository struct {
	mock.Mock
	store      *memoryStore
	permission *MockPermissionRepository
	export     *MockExportRepository
	jobs       *MockImportJobRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		store:      newMemoryStore(),
		permission: &MockPermissionRepository{},
		export:     &MockExportRepository{},
		jobs:       &MockImportJobRepository{},
	}
}

// expectTransaction lets a run begin, lock and finish its transaction
func (m *MockRepository) expectTransaction() {
	m.On("Begin", mock.Anything, mock.MatchedBy(func(opts *sql.TxOptions) bool {
		return opts != nil && opts.Isolation == sql.LevelSerializable
	})).Return(testTx, nil)
	m.On("LockCurrent", mock.Anything, testTx).Return(&models.LocalSystemFact{Key: "currentSyncTick", Value: "1"}, nil)
	m.On("Commit", testTx).Return(nil).Maybe()
	m.On("Rollback", testTx).Return(nil).Maybe()
}

func (m *MockRepository) Begin(ctx context.Context, opts *sql.TxOptions) (*gorm.DB, error) {
	args := m.Called(ctx, opts)
	tx, _ := args.Get(0).(*gorm.DB)
	return tx, args.Error(1)
}

func (m *MockRepository) Commit(tx *gorm.DB) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockRepository) Rollback(tx *gorm.DB) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockRepository) LockCurrent(ctx context.Context, tx *gorm.DB) (*models.LocalSystemFact, error) {
	args := m.Called(ctx, tx)
	fact, _ := args.Get(0).(*models.LocalSystemFact)
	return fact, args.Error(1)
}

func (m *MockRepository) Entity() repositories.EntityRepository                 { return m.store }
func (m *MockRepository) Translation() repositories.TranslationRepository       { return m.store }
func (m *MockRepository) Constraint() repositories.ConstraintRepository         { return m.store }
func (m *MockRepository) SyncCheckpoint() repositories.SyncCheckpointRepository { return m }
func (m *MockRepository) Permission() repositories.PermissionRepository         { return m.permission }
func (m *MockRepository) Export() repositories.ExportRepository                 { return m.export }
func (m *MockRepository) ImportJob() repositories.ImportJobRepository           { return m.jobs }
func (m *MockRepository) Ping(ctx context.Context) error                        { return nil }
func (m *MockRepository) Close() error                                          { return nil }

// memoryStore keeps rows per entity in creation order
type memoryStore struct {
	rows          map[string][]repositories.Record
	translations  map[string]models.TranslatedString
	registrations map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows:          map[string][]repositories.Record{},
		translations:  map[string]models.TranslatedString{},
		registrations: map[string]int64{},
	}
}

func (s *memoryStore) seed(entityName string, values repositories.Record) {
	s.rows[entityName] = append(s.rows[entityName], copyRecord(values))
}

func (s *memoryStore) all(entityName string) []repositories.Record {
	return s.rows[entityName]
}

func (s *memoryStore) get(entityName, id string) repositories.Record {
	for _, r := range s.rows[entityName] {
		if textOf(r["id"]) == id {
			return r
		}
	}
	return nil
}

func (s *memoryStore) find(entity models.Entity, key repositories.Record) int {
	for i, r := range s.rows[entity.Name] {
		match := true
		for _, field := range entity.KeyFields {
			if textOf(r[field]) != textOf(key[field]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func (s *memoryStore) FindByKey(ctx context.Context, tx *gorm.DB, entity models.Entity, key repositories.Record) (repositories.Record, error) {
	i := s.find(entity, key)
	if i < 0 {
		return nil, nil
	}
	return copyRecord(s.rows[entity.Name][i]), nil
}

func (s *memoryStore) Create(ctx context.Context, tx *gorm.DB, entity models.Entity, values repositories.Record) error {
	s.seed(entity.Name, values)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, tx *gorm.DB, entity models.Entity, key repositories.Record, values repositories.Record) error {
	i := s.find(entity, key)
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	for k, v := range values {
		s.rows[entity.Name][i][k] = v
	}
	return nil
}

func (s *memoryStore) ResolveReference(ctx context.Context, tx *gorm.DB, entity models.Entity, dataType, ref string) (string, bool, error) {
	for _, field := range []string{"id", "code", "name"} {
		for _, r := range s.rows[entity.Name] {
			if r["deletedAt"] != nil {
				continue
			}
			if entity.Name == "ReferenceData" && dataType != "" && textOf(r["type"]) != dataType {
				continue
			}
			value := textOf(r[field])
			if value == ref || (field == "name" && value != "" && strings.EqualFold(value, ref)) {
				return textOf(r["id"]), true, nil
			}
		}
	}
	return "", false, nil
}

func (s *memoryStore) Upsert(ctx context.Context, tx *gorm.DB, records []models.TranslatedString) error {
	for _, r := range records {
		s.translations[r.StringID+"/"+r.Language] = r
	}
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, tx *gorm.DB, language string, stringIDs []string) error {
	for _, id := range stringIDs {
		delete(s.translations, id+"/"+language)
	}
	return nil
}

func (s *memoryStore) labTestTypes(keep func(repositories.Record) bool) []models.LabTestType {
	var out []models.LabTestType
	for _, r := range s.rows["LabTestType"] {
		if keep(r) {
			out = append(out, models.LabTestType{
				ID:                textOf(r["id"]),
				LabTestCategoryID: textOf(r["labTestCategoryId"]),
				IsSensitive:       isTrue(r["isSensitive"]),
			})
		}
	}
	return out
}

func (s *memoryStore) LabTestTypesByCategory(ctx context.Context, tx *gorm.DB, categoryID string) ([]models.LabTestType, error) {
	return s.labTestTypes(func(r repositories.Record) bool {
		return textOf(r["labTestCategoryId"]) == categoryID
	}), nil
}

func (s *memoryStore) LabTestTypesByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.LabTestType, error) {
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	return s.labTestTypes(func(r repositories.Record) bool {
		return wanted[textOf(r["id"])]
	}), nil
}

func (s *memoryStore) ReferenceDataByID(ctx context.Context, tx *gorm.DB, id string) (*models.ReferenceData, error) {
	r := s.get("ReferenceData", id)
	if r == nil {
		return nil, nil
	}
	return &models.ReferenceData{ID: id, Code: textOf(r["code"]), Name: textOf(r["name"]), Type: textOf(r["type"])}, nil
}

func (s *memoryStore) SurveysByProgram(ctx context.Context, tx *gorm.DB, programID string) ([]models.Survey, error) {
	var out []models.Survey
	for _, r := range s.rows["Survey"] {
		if textOf(r["programId"]) != programID || r["deletedAt"] != nil {
			continue
		}
		out = append(out, models.Survey{
			ID:          textOf(r["id"]),
			ProgramID:   programID,
			SurveyType:  models.SurveyType(textOf(r["surveyType"])),
			IsSensitive: isTrue(r["isSensitive"]),
		})
	}
	return out, nil
}

func (s *memoryStore) CountRegistrations(ctx context.Context, tx *gorm.DB, registryID string) (int64, error) {
	return s.registrations[registryID], nil
}

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockPermissionRepository) ListForRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).([]models.Permission), args.Error(1)
}

type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) ListRecords(ctx context.Context, entity models.Entity, dataType string) ([]repositories.Record, error) {
	args := m.Called(ctx, entity.Name, dataType)
	return args.Get(0).([]repositories.Record), args.Error(1)
}

func (m *MockExportRepository) ListLabTestPanels(ctx context.Context) ([]models.LabTestPanel, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.LabTestPanel), args.Error(1)
}

func (m *MockExportRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockExportRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *MockExportRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Permission), args.Error(1)
}

func (m *MockExportRepository) ListTranslatedStrings(ctx context.Context, excludePrefix string) ([]models.TranslatedString, error) {
	args := m.Called(ctx, excludePrefix)
	return args.Get(0).([]models.TranslatedString), args.Error(1)
}

type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportJobRepository) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*models.ImportJob)
	return job, args.Error(1)
}

func (m *MockImportJobRepository) ListRecent(ctx context.Context, limit int) ([]models.ImportJob, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.ImportJob), args.Error(1)
}

// stubStrategy returns canned results, or panics when panicWith is set
type stubStrategy struct {
	errs      []*ImportError
	stats     stats.Map
	err       error
	panicWith interface{}
	batch     *ImportBatch
}

func (s *stubStrategy) Run(ctx context.Context, batch *ImportBatch) ([]*ImportError, stats.Map, error) {
	s.batch = batch
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.errs, s.stats, s.err
}

func newTestImporter(repo repositories.Repository) *Importer {
	return NewImporter(
		repo,
		validator.New(),
		sheets.NewDefaultNormalizer(),
		translations.NewGenerator("refData", "en", translations.DefaultRegistry()),
		NewDataTypeRegistry(),
		testLogger(),
	)
}

// newTestOrchestrator wires both strategies over repo
func newTestOrchestrator(repo repositories.Repository) *Orchestrator {
	importer := newTestImporter(repo)
	return NewOrchestrator(repo, NewDataTypeRegistry(), map[models.ImportKind]Strategy{
		models.ImportKindReferenceData: NewReferenceDataStrategy(importer),
		models.ImportKindProgram:       NewProgramStrategy(importer),
	}, testLogger())
}

func sheet(name string, rows ...[]interface{}) workbook.ExportSheet {
	return workbook.ExportSheet{Name: name, Data: rows}
}

func row(cells ...interface{}) []interface{} {
	return cells
}

// workbookSource renders sheets into an in-memory xlsx upload
func workbookSource(t *testing.T, exportSheets ...workbook.ExportSheet) Source {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf, exportSheets))
	return BytesSource{FileName: "import.xlsx", Data: buf.Bytes()}
}

func messages(errs []*ImportError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

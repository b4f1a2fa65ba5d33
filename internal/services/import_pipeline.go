package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/sheets"
	"github.com/SAP-F-2025/refdata-service/internal/stats"
	"github.com/SAP-F-2025/refdata-service/internal/translations"
	"github.com/SAP-F-2025/refdata-service/internal/validator"
	"gorm.io/gorm"
)

// PermissionCheck answers whether the importing user may perform verb on noun
type PermissionCheck func(verb, noun string) bool

// AllowAll grants every action; used for admins and trusted local imports
func AllowAll(verb, noun string) bool { return true }

// ImportRow is one row on its way from a worksheet to the database
type ImportRow struct {
	SheetName string
	Location  apperrors.RowLocation
	DataType  string
	Model     string
	Values    repositories.Record
	State     RowState
}

// SheetBatch holds the rows of one data type taken from one worksheet
type SheetBatch struct {
	SheetName string
	DataType  string
	Model     string
	Rows      []*ImportRow
}

func newSheetBatch(sheetName string, dt DataType) *SheetBatch {
	return &SheetBatch{SheetName: sheetName, DataType: dt.Name, Model: dt.Model}
}

func (b *SheetBatch) add(loc apperrors.RowLocation, values repositories.Record) *ImportRow {
	row := &ImportRow{
		SheetName: b.SheetName,
		Location:  loc,
		DataType:  b.DataType,
		Model:     b.Model,
		Values:    values,
		State:     RowPending,
	}
	b.Rows = append(b.Rows, row)
	return row
}

// importRun is the mutable state of one strategy run
type importRun struct {
	ctx          context.Context
	tx           *gorm.DB
	check        PermissionCheck
	skipExisting bool
	now          time.Time

	errors   []*ImportError
	partials []stats.Map
	refs     map[string]map[string]string

	// lab test type sensitivity seen in this batch, by id
	labTestSensitivity map[string]bool
}

func newImportRun(ctx context.Context, batch *ImportBatch) *importRun {
	check := batch.PermissionCheck
	if check == nil {
		check = AllowAll
	}
	return &importRun{
		ctx:                ctx,
		tx:                 batch.Tx,
		check:              check,
		skipExisting:       batch.SkipExisting,
		now:                time.Now(),
		refs:               map[string]map[string]string{},
		labTestSensitivity: map[string]bool{},
	}
}

func (r *importRun) rowError(row *ImportRow, message string) {
	r.errors = append(r.errors, apperrors.NewRowValidationError(row.SheetName, row.DataType, row.Location, message))
	row.Fail()
}

func (r *importRun) foreignKeyError(row *ImportRow, message string) {
	r.errors = append(r.errors, apperrors.NewForeignKeyError(row.SheetName, row.DataType, row.Location, message))
	row.Fail()
}

func (r *importRun) batchError(batch *SheetBatch, message string) {
	r.errors = append(r.errors, apperrors.NewRowValidationError(batch.SheetName, batch.DataType, apperrors.BatchLevel, message))
}

func (r *importRun) stats() stats.Map {
	return stats.Coalesce(r.partials...)
}

func refScope(model, dataType string) string {
	if model == "ReferenceData" {
		return model + "/" + dataType
	}
	return model
}

// registerRef makes an accepted row resolvable by id, code and name for later rows
func (r *importRun) registerRef(scope string, values repositories.Record) {
	id := textOf(values["id"])
	if id == "" {
		return
	}
	refs, ok := r.refs[scope]
	if !ok {
		refs = map[string]string{}
		r.refs[scope] = refs
	}
	refs[id] = id
	keys := []string{textOf(values["code"])}
	if name := textOf(values["name"]); name != "" {
		keys = append(keys, nameRefKey(name))
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, taken := refs[key]; !taken {
			refs[key] = id
		}
	}
}

// lookupRef matches ids and codes exactly and names case-insensitively
func (r *importRun) lookupRef(scope, ref string) (string, bool) {
	refs := r.refs[scope]
	if id, ok := refs[ref]; ok {
		return id, true
	}
	id, ok := refs[nameRefKey(ref)]
	return id, ok
}

func nameRefKey(name string) string {
	return "name:" + strings.ToLower(name)
}

// rowPreparer adjusts a resolved row against its stored version. A non-empty message
// rejects the row.
type rowPreparer func(im *Importer, run *importRun, row *ImportRow, existing repositories.Record) (string, error)

// batchCheck runs cross-row and cross-entity rules once a batch is resolved
type batchCheck func(im *Importer, run *importRun, batch *SheetBatch) error

// Importer runs the validation, resolution and persistence pipeline the strategies share
type Importer struct {
	repo         repositories.Repository
	validator    *validator.Validator
	normalizer   *sheets.Normalizer
	translations *translations.Generator
	dataTypes    *DataTypeRegistry
	preparers    map[string]rowPreparer
	checks       map[string]batchCheck
	logger       *slog.Logger
}

func NewImporter(repo repositories.Repository, v *validator.Validator, normalizer *sheets.Normalizer, generator *translations.Generator, dataTypes *DataTypeRegistry, logger *slog.Logger) *Importer {
	return &Importer{
		repo:         repo,
		validator:    v,
		normalizer:   normalizer,
		translations: generator,
		dataTypes:    dataTypes,
		preparers:    defaultPreparers(),
		checks:       defaultBatchChecks(),
		logger:       logger,
	}
}

// processBatch takes a batch through validation, resolution, cross-entity checks and
// persistence, then records one outcome per row.
func (im *Importer) processBatch(run *importRun, batch *SheetBatch) error {
	im.validate(run, batch)

	if err := im.resolve(run, batch); err != nil {
		return err
	}

	if check, ok := im.checks[batch.DataType]; ok {
		if err := check(im, run, batch); err != nil {
			return err
		}
	}

	if err := im.persist(run, batch); err != nil {
		return err
	}

	partial := stats.Map{}
	key := stats.Key(batch.Model, batch.DataType)
	for _, row := range batch.Rows {
		if counter, ok := row.State.Counter(); ok {
			partial.Increment(key, counter)
		}
	}
	run.partials = append(run.partials, partial)

	im.logger.Debug("Processed sheet batch",
		"sheet", batch.SheetName,
		"data_type", batch.DataType,
		"rows", len(batch.Rows))
	return nil
}

func (im *Importer) validate(run *importRun, batch *SheetBatch) {
	entity, _ := entityFor(batch.Model)
	schema := im.validator.SchemaFor(batch.Model, batch.DataType)
	seen := map[string]bool{}

	for _, row := range batch.Rows {
		if row.State != RowPending {
			continue
		}
		if id := duplicateKey(entity, row.Values); id != "" {
			if seen[id] {
				run.rowError(row, fmt.Sprintf("duplicate id: %s", id))
				continue
			}
			seen[id] = true
		}

		values, messages := im.validator.ValidateRow(schema, row.Values)
		if len(messages) > 0 {
			for _, msg := range messages {
				run.rowError(row, msg)
			}
			continue
		}
		row.Values = values
		_ = row.Advance(RowValidated)
	}
}

func duplicateKey(entity models.Entity, values repositories.Record) string {
	parts := make([]string, 0, len(entity.KeyFields))
	for _, field := range entity.KeyFields {
		v := textOf(values[field])
		if v == "" {
			return ""
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "/")
}

func (im *Importer) resolve(run *importRun, batch *SheetBatch) error {
	scope := refScope(batch.Model, batch.DataType)

	for _, row := range batch.Rows {
		if row.State != RowValidated {
			continue
		}

		resolved := true
		for _, fk := range foreignKeysFor(batch.Model) {
			raw, present := row.Values[fk.Column]
			delete(row.Values, fk.Column)

			ref := textOf(raw)
			if ref == "" {
				if present {
					row.Values[fk.IDField] = nil
				}
				continue
			}

			id, found, err := im.resolveReference(run, fk, ref)
			if err != nil {
				return err
			}
			if !found {
				run.foreignKeyError(row, fmt.Sprintf(
					"valid foreign key expected in column %s (corresponding to %s) but found: %s",
					fk.Column, fk.IDField, ref))
				resolved = false
				continue
			}
			row.Values[fk.IDField] = id
		}

		if !resolved {
			continue
		}
		_ = row.Advance(RowResolved)
		run.registerRef(scope, row.Values)
	}
	return nil
}

func (im *Importer) resolveReference(run *importRun, fk ForeignKey, ref string) (string, bool, error) {
	if id, ok := run.lookupRef(refScope(fk.Model, fk.TargetType), ref); ok {
		return id, true, nil
	}
	entity, ok := entityFor(fk.Model)
	if !ok {
		return "", false, fmt.Errorf("no entity registered for %s", fk.Model)
	}
	return im.repo.Entity().ResolveReference(run.ctx, run.tx, entity, fk.TargetType, ref)
}

func (im *Importer) persist(run *importRun, batch *SheetBatch) error {
	entity, ok := entityFor(batch.Model)
	if !ok {
		return fmt.Errorf("no entity registered for %s", batch.Model)
	}

	for _, row := range batch.Rows {
		if row.State != RowResolved {
			continue
		}
		outcome, err := im.upsert(run, entity, row)
		if err != nil {
			return fmt.Errorf("failed to import %s at %s: %w", row.SheetName, row.Location, err)
		}
		if outcome == RowError {
			continue
		}
		if err := row.Advance(outcome); err != nil {
			return err
		}
	}
	return nil
}

// upsert writes one resolved row and returns its outcome. Row-level rejections are recorded
// on the run and reported as RowError.
func (im *Importer) upsert(run *importRun, entity models.Entity, row *ImportRow) (RowState, error) {
	key, ok := recordKey(entity, row.Values)
	if !ok {
		run.rowError(row, apperrors.RequiredFieldMessage(entity.KeyFields[0]))
		return RowError, nil
	}

	existing, err := im.repo.Entity().FindByKey(run.ctx, run.tx, entity, key)
	if err != nil {
		return "", err
	}

	deleting := row.Values["deletedAt"] != nil
	if deleting && !entity.Deletable {
		run.rowError(row, fmt.Sprintf("Deleting %s via the importer is not supported", entity.Name))
		return RowError, nil
	}

	if prepare, ok := im.preparers[entity.Name]; ok {
		msg, err := prepare(im, run, row, existing)
		if err != nil {
			return "", err
		}
		if msg != "" {
			run.rowError(row, msg)
			return RowError, nil
		}
	}

	if existing == nil {
		if deleting {
			// revoking something that never existed
			return RowSkip, nil
		}
		if !run.check("create", entity.Name) {
			run.rowError(row, NewPermissionError("create", entity.Name).Error())
			return RowError, nil
		}
		if err := im.repo.Entity().Create(run.ctx, run.tx, entity, row.Values); err != nil {
			return "", err
		}
		return RowCreate, im.writeTranslations(run, row)
	}

	wasDeleted := existing["deletedAt"] != nil
	changed := hasChanges(entity.Name, row.Values, existing)

	if isTrue(existing["systemRequired"]) && (deleting || wasDeleted || changed) {
		run.rowError(row, "Cannot modify system-required reference data")
		return RowError, nil
	}

	if run.skipExisting || (deleting && wasDeleted) {
		return RowSkip, nil
	}

	outcome := RowUpdate
	values := row.Values
	switch {
	case deleting:
		outcome = RowDelete
		values = repositories.Record{"deletedAt": row.Values["deletedAt"]}
	case wasDeleted:
		outcome = RowRestore
		values = copyRecord(row.Values)
		values["deletedAt"] = nil
	case !changed:
		return RowSkip, im.writeTranslations(run, row)
	}

	if !run.check("write", entity.Name) {
		run.rowError(row, NewPermissionError("write", entity.Name).Error())
		return RowError, nil
	}
	if err := im.repo.Entity().Update(run.ctx, run.tx, entity, key, values); err != nil {
		return "", err
	}
	if outcome == RowDelete {
		return outcome, nil
	}
	return outcome, im.writeTranslations(run, row)
}

func (im *Importer) writeTranslations(run *importRun, row *ImportRow) error {
	derived := im.translations.Derive(row.DataType, row.Values)
	if derived.IsEmpty() {
		return nil
	}
	if err := im.repo.Translation().Upsert(run.ctx, run.tx, derived.Upserts); err != nil {
		return err
	}
	return im.repo.Translation().Delete(run.ctx, run.tx, im.translations.Language(), derived.Deletions)
}

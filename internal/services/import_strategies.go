package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/stats"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
)

func readWorkbook(source Source) ([]workbook.Sheet, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: no workbook supplied", ErrBadRequest)
	}
	rc, err := source.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sheets, err := workbook.Read(rc)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return sheets, nil
}

func includedSet(names []string) func(string) bool {
	if len(names) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

// ReferenceDataStrategy imports workbooks with one worksheet per reference data type
type ReferenceDataStrategy struct {
	importer *Importer
}

func NewReferenceDataStrategy(importer *Importer) *ReferenceDataStrategy {
	return &ReferenceDataStrategy{importer: importer}
}

type plannedSheet struct {
	sheet    workbook.Sheet
	dataType DataType
}

func (s *ReferenceDataStrategy) Run(ctx context.Context, batch *ImportBatch) ([]*ImportError, stats.Map, error) {
	sheets, err := readWorkbook(batch.Source)
	if err != nil {
		return nil, nil, err
	}

	im := s.importer
	included := includedSet(batch.IncludedDataTypes)

	var plan []plannedSheet
	for _, sheet := range sheets {
		name := im.normalizer.Normalise(sheet.Title, "")
		dt, ok := im.dataTypes.Lookup(name)
		if !ok || dt.Family != models.ImportKindReferenceData || !included(name) {
			im.logger.Debug("Skipping worksheet", "sheet", sheet.Title, "data_type", name)
			continue
		}
		plan = append(plan, plannedSheet{sheet: sheet, dataType: dt})
	}
	sort.SliceStable(plan, func(i, j int) bool {
		return im.dataTypes.Order(plan[i].dataType.Name) < im.dataTypes.Order(plan[j].dataType.Name)
	})

	run := newImportRun(ctx, batch)
	for _, p := range plan {
		for _, b := range im.expandSheet(run, p.sheet, p.dataType) {
			if err := im.processBatch(run, b); err != nil {
				return run.errors, run.stats(), err
			}
		}
	}
	return run.errors, run.stats(), nil
}

// ProgramStrategy imports a program workbook: the Program, Survey and Registry sheets
// followed by one question sheet per survey
type ProgramStrategy struct {
	importer *Importer
}

func NewProgramStrategy(importer *Importer) *ProgramStrategy {
	return &ProgramStrategy{importer: importer}
}

var programSheetTypes = map[string]string{
	"program":         "program",
	"survey":          "survey",
	"registry":        "programRegistry",
	"programRegistry": "programRegistry",
}

// surveyPlan is what a question sheet needs to know about its survey
type surveyPlan struct {
	id         string
	code       string
	name       string
	surveyType models.SurveyType
}

func (s *ProgramStrategy) Run(ctx context.Context, batch *ImportBatch) ([]*ImportError, stats.Map, error) {
	sheets, err := readWorkbook(batch.Source)
	if err != nil {
		return nil, nil, err
	}

	im := s.importer
	included := includedSet(batch.IncludedDataTypes)
	run := newImportRun(ctx, batch)

	fixed := map[string]workbook.Sheet{}
	var questionSheets []workbook.Sheet
	for _, sheet := range sheets {
		if name, ok := programSheetTypes[im.normalizer.Normalise(sheet.Title, "")]; ok {
			fixed[name] = sheet
			continue
		}
		questionSheets = append(questionSheets, sheet)
	}

	var surveys []surveyPlan
	for _, name := range []string{"program", "survey", "programRegistry"} {
		sheet, ok := fixed[name]
		if !ok || !included(name) {
			continue
		}
		dt, _ := im.dataTypes.Lookup(name)
		b := expandFlat(sheet, dt)
		if err := im.processBatch(run, b); err != nil {
			return run.errors, run.stats(), err
		}
		if name == "survey" {
			surveys = acceptedSurveys(b)
		}
	}

	if !included("programDataElement") && !included("surveyScreenComponent") {
		return run.errors, run.stats(), nil
	}

	elementType, _ := im.dataTypes.Lookup("programDataElement")
	componentType, _ := im.dataTypes.Lookup("surveyScreenComponent")
	for _, sheet := range questionSheets {
		survey, ok := matchSurvey(surveys, sheet.Title)
		if !ok {
			im.logger.Debug("Skipping worksheet without a matching survey", "sheet", sheet.Title)
			continue
		}
		if survey.surveyType == models.SurveyTypeObsolete {
			continue
		}

		elements, components := expandQuestions(run, sheet, survey, elementType, componentType)
		checkChartQuestions(run, survey, elements)

		for _, b := range []*SheetBatch{elements, components} {
			if !included(b.DataType) {
				continue
			}
			if err := im.processBatch(run, b); err != nil {
				return run.errors, run.stats(), err
			}
		}
	}
	return run.errors, run.stats(), nil
}

func acceptedSurveys(batch *SheetBatch) []surveyPlan {
	var out []surveyPlan
	for _, row := range batch.Rows {
		if row.State == RowError {
			continue
		}
		out = append(out, surveyPlan{
			id:         textOf(row.Values["id"]),
			code:       textOf(row.Values["code"]),
			name:       textOf(row.Values["name"]),
			surveyType: models.SurveyType(textOf(row.Values["surveyType"])),
		})
	}
	return out
}

// matchSurvey finds the survey a question sheet belongs to by name or code
func matchSurvey(surveys []surveyPlan, title string) (surveyPlan, bool) {
	title = strings.TrimSpace(title)
	for _, s := range surveys {
		if strings.EqualFold(s.name, title) || strings.EqualFold(s.code, title) {
			return s, true
		}
	}
	return surveyPlan{}, false
}

// expandQuestions splits each question row into its data element and its screen component
func expandQuestions(run *importRun, sheet workbook.Sheet, survey surveyPlan, elementType, componentType DataType) (*SheetBatch, *SheetBatch) {
	elements := newSheetBatch(sheet.Title, elementType)
	components := newSheetBatch(sheet.Title, componentType)

	screen, component := 0, 0
	for i, r := range sheet.Rows {
		if i > 0 && strings.EqualFold(textOf(r.Values["newScreen"]), "y") {
			screen++
			component = 0
		}

		code := textOf(r.Values["code"])
		element := repositories.Record{
			"code":           code,
			"name":           r.Values["name"],
			"type":           r.Values["type"],
			"defaultText":    r.Values["text"],
			"defaultOptions": r.Values["options"],
		}
		entry := repositories.Record{
			"surveyId":       survey.id,
			"screenIndex":    screen,
			"componentIndex": component,
			"text":           r.Values["text"],
			"detail":         r.Values["detail"],
			"options":        r.Values["options"],
			"config":         r.Values["config"],
		}
		if code != "" {
			element["id"] = "pde-" + code
			entry["id"] = survey.id + "-" + code
			entry["dataElementId"] = element["id"]
		}
		if strings.EqualFold(textOf(r.Values["visibilityStatus"]), "deleted") {
			entry["deletedAt"] = run.now
		}

		loc := apperrors.Row(r.Number)
		elements.add(loc, element)
		components.add(loc, entry)
		component++
	}
	return elements, components
}

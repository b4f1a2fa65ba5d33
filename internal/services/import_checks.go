package services

import (
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	chartDateQuestionID   = "pde-PatientChartingDate"
	chartDateQuestionType = "DateTime"
)

func defaultPreparers() map[string]rowPreparer {
	return map[string]rowPreparer{
		"User":            prepareUser,
		"ProgramRegistry": prepareProgramRegistry,
	}
}

func defaultBatchChecks() map[string]batchCheck {
	return map[string]batchCheck{
		"labTestType":             checkLabTestTypes,
		"labTestPanelLabTestType": checkLabTestPanelMembers,
		"survey":                  checkSurveys,
	}
}

// prepareUser hashes an incoming password, dropping it when it matches the stored hash
func prepareUser(_ *Importer, _ *importRun, row *ImportRow, existing repositories.Record) (string, error) {
	password := textOf(row.Values["password"])
	if password == "" {
		delete(row.Values, "password")
		return "", nil
	}

	if existing != nil {
		if hash := textOf(existing["password"]); hash != "" &&
			bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
			delete(row.Values, "password")
			return "", nil
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	row.Values["password"] = string(hashed)
	return "", nil
}

func prepareProgramRegistry(im *Importer, run *importRun, row *ImportRow, existing repositories.Record) (string, error) {
	if existing == nil {
		return "", nil
	}
	incoming, ok := row.Values["currentlyAtType"]
	if !ok || textOf(incoming) == textOf(existing["currentlyAtType"]) {
		return "", nil
	}

	count, err := im.repo.Constraint().CountRegistrations(run.ctx, run.tx, textOf(existing["id"]))
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "Cannot update the currentlyAtType of a program registry with existing data", nil
	}
	return "", nil
}

func resolvedRows(batch *SheetBatch) []*ImportRow {
	rows := make([]*ImportRow, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		if row.State == RowResolved {
			rows = append(rows, row)
		}
	}
	return rows
}

// groupRows buckets rows by a field value, keeping first-seen order of the buckets
func groupRows(rows []*ImportRow, field string) ([]string, map[string][]*ImportRow) {
	var order []string
	groups := map[string][]*ImportRow{}
	for _, row := range rows {
		key := textOf(row.Values[field])
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	return order, groups
}

// checkLabTestTypes keeps every lab test category either wholly sensitive or wholly not,
// across the batch and what is already stored
func checkLabTestTypes(im *Importer, run *importRun, batch *SheetBatch) error {
	categories, groups := groupRows(resolvedRows(batch), "labTestCategoryId")

	for _, categoryID := range categories {
		rows := groups[categoryID]
		inBatch := map[string]bool{}
		sensitive, plain := 0, 0
		for _, row := range rows {
			inBatch[textOf(row.Values["id"])] = true
			if isTrue(row.Values["isSensitive"]) {
				sensitive++
			} else {
				plain++
			}
		}

		if sensitive > 0 && plain > 0 {
			run.batchError(batch, "Only sensitive lab test types allowed in sensitive category")
			for _, row := range rows {
				row.Fail()
			}
			continue
		}

		stored, err := im.repo.Constraint().LabTestTypesByCategory(run.ctx, run.tx, categoryID)
		if err != nil {
			return err
		}
		for _, existing := range stored {
			if inBatch[existing.ID] {
				continue
			}
			for _, row := range rows {
				rowSensitive := isTrue(row.Values["isSensitive"])
				switch {
				case existing.IsSensitive && !rowSensitive:
					run.rowError(row, fmt.Sprintf("Cannot add non sensitive lab test type to sensitive category '%s'", categoryID))
				case !existing.IsSensitive && rowSensitive:
					run.rowError(row, fmt.Sprintf("Cannot add sensitive lab test type to non sensitive category '%s'", categoryID))
				}
			}
			break
		}
	}

	for _, row := range resolvedRows(batch) {
		run.labTestSensitivity[textOf(row.Values["id"])] = isTrue(row.Values["isSensitive"])
	}
	return nil
}

func checkLabTestPanelMembers(im *Importer, run *importRun, batch *SheetBatch) error {
	rows := resolvedRows(batch)

	var unknown []string
	for _, row := range rows {
		id := textOf(row.Values["labTestTypeId"])
		if _, ok := run.labTestSensitivity[id]; !ok && id != "" {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		stored, err := im.repo.Constraint().LabTestTypesByIDs(run.ctx, run.tx, unknown)
		if err != nil {
			return err
		}
		for _, t := range stored {
			run.labTestSensitivity[t.ID] = t.IsSensitive
		}
	}

	reported := false
	for _, row := range rows {
		if !run.labTestSensitivity[textOf(row.Values["labTestTypeId"])] {
			continue
		}
		if !reported {
			run.batchError(batch, "Lab test panels cannot contain sensitive lab test types")
			reported = true
		}
		row.Fail()
	}
	return nil
}

type surveyShape struct {
	surveyType  models.SurveyType
	isSensitive bool
}

// checkSurveys enforces the per-program survey rules against the batch merged over the
// stored surveys of each program
func checkSurveys(im *Importer, run *importRun, batch *SheetBatch) error {
	programs, groups := groupRows(resolvedRows(batch), "programId")

	for _, programID := range programs {
		rows := groups[programID]

		stored, err := im.repo.Constraint().SurveysByProgram(run.ctx, run.tx, programID)
		if err != nil {
			return err
		}
		merged := map[string]surveyShape{}
		for _, s := range stored {
			merged[s.ID] = surveyShape{surveyType: s.SurveyType, isSensitive: s.IsSensitive}
		}
		batchHasChart := false
		for _, row := range rows {
			shape := surveyShape{
				surveyType:  models.SurveyType(textOf(row.Values["surveyType"])),
				isSensitive: isTrue(row.Values["isSensitive"]),
			}
			merged[textOf(row.Values["id"])] = shape
			batchHasChart = batchHasChart || shape.surveyType == models.SurveyTypeComplexChart
		}

		counts := map[models.SurveyType]int{}
		for _, shape := range merged {
			counts[shape.surveyType]++
		}

		if batchHasChart && counts[models.SurveyTypeComplexChartCore] == 0 {
			run.batchError(batch, "Complex charts need a core data set survey")
		}

		for _, row := range rows {
			shape := merged[textOf(row.Values["id"])]
			switch shape.surveyType {
			case models.SurveyTypeVitals:
				if counts[models.SurveyTypeVitals] > 1 {
					run.rowError(row, "Only one vitals survey")
				} else if shape.isSensitive {
					run.rowError(row, "Vitals survey can not be sensitive")
				}
			case models.SurveyTypeComplexChartCore:
				if counts[models.SurveyTypeComplexChartCore] > 1 {
					run.rowError(row, "Only one complex chart core survey per program")
				} else if counts[models.SurveyTypeComplexChart] == 0 {
					run.rowError(row, "Cannot import a complex chart core without the main survey")
				}
			}
			if shape.surveyType.IsCharting() && shape.isSensitive && row.State != RowError {
				run.rowError(row, "Charting survey can not be sensitive")
			}
		}
	}
	return nil
}

// checkChartQuestions requires charting surveys to open with the charting date question
func checkChartQuestions(run *importRun, survey surveyPlan, elements *SheetBatch) {
	if survey.surveyType != models.SurveyTypeSimpleChart && survey.surveyType != models.SurveyTypeComplexChart {
		return
	}
	if len(elements.Rows) == 0 {
		return
	}
	first := elements.Rows[0]
	prefix := fmt.Sprintf("sheetName: %s, code: '%s',", elements.SheetName, textOf(first.Values["code"]))

	if textOf(first.Values["id"]) != chartDateQuestionID {
		run.rowError(first, fmt.Sprintf("%s First question should have '%s' as ID", prefix, chartDateQuestionID))
	}
	if textOf(first.Values["type"]) != chartDateQuestionType {
		run.rowError(first, fmt.Sprintf("%s First question should be %s type", prefix, chartDateQuestionType))
	}
}

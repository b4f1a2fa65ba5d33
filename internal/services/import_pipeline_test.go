package services

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/SAP-F-2025/refdata-service/internal/errors"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importReferenceData(t *testing.T, repo *MockRepository, opts ImportOptions) *ImportResult {
	t.Helper()
	opts.Kind = models.ImportKindReferenceData
	result, err := newTestOrchestrator(repo).Run(context.Background(), opts)
	require.NoError(t, err)
	return result
}

func seedLabTestCategory(repo *MockRepository, id string) {
	repo.store.seed("ReferenceData", repositories.Record{
		"id": id, "code": id, "name": id, "type": models.RefTypeLabTestCategory, "visibilityStatus": "current",
	})
}

func TestReferenceDataImport_CreatesRows(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()

	result := importReferenceData(t, repo, ImportOptions{
		Source: workbookSource(t, sheet("Diagnosis",
			row("id", "code", "name"),
			row("diag-m797", "M79.7", "Fibromyalgia"),
			row("diag-s799", "S79.9", "Thigh injury"),
		)),
	})

	assert.True(t, result.Committed())
	assert.Empty(t, result.Errors)
	assert.Equal(t, stats.Map{"ReferenceData/diagnosis": {Created: 2}}, result.Stats)

	rows := repo.store.all("ReferenceData")
	require.Len(t, rows, 2)
	assert.Equal(t, "diag-m797", rows[0]["id"])
	assert.Equal(t, "diagnosis", rows[0]["type"])
	assert.Equal(t, "current", rows[0]["visibilityStatus"])
	assert.Equal(t, "diag-s799", rows[1]["id"])

	text, ok := repo.store.translations["refData.diagnosis.diag-m797/en"]
	require.True(t, ok)
	assert.Equal(t, "Fibromyalgia", text.Text)
	repo.AssertCalled(t, "Commit", testTx)
}

func TestReferenceDataImport_RowErrors(t *testing.T) {
	t.Run("duplicate id", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Allergies",
				row("id", "code", "name"),
				row("peanut", "peanut", "Peanut"),
				row("peanut", "peanut2", "Peanut again"),
			)),
		})

		require.Len(t, result.Errors, 1)
		e := result.Errors[0]
		assert.Equal(t, apperrors.KindValidation, e.Kind)
		assert.Equal(t, "duplicate id: peanut", e.Message)
		assert.Equal(t, "Allergies", e.SheetName)
		assert.Equal(t, apperrors.Row(2), e.Location)
		assert.Equal(t, ReasonValidationFailed, result.DidntSendReason)
		assert.Equal(t, stats.Entry{Created: 1, Errored: 1}, result.Stats["ReferenceData/allergy"])
		repo.AssertCalled(t, "Rollback", testTx)
	})

	t.Run("field rules", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Allergy",
				row("id", "code", "name", "visibilityStatus"),
				row("bad id", "ok", "Name", "current"),
				row("good", "", "Name", "hidden"),
			)),
		})

		assert.ElementsMatch(t, []string{
			"id must not have spaces or punctuation other than -",
			"code is a required field",
			"visibilityStatus must be one of the following values: current, historical, merged",
		}, messages(result.Errors))
		assert.Equal(t, stats.Entry{Errored: 2}, result.Stats["ReferenceData/allergy"])
	})

	t.Run("unresolved foreign key", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Departments",
				row("id", "code", "name", "facility"),
				row("dept-er", "ER", "Emergency", "missing-facility"),
			)),
		})

		require.Len(t, result.Errors, 1)
		assert.Equal(t, apperrors.KindForeignKey, result.Errors[0].Kind)
		assert.Equal(t,
			"valid foreign key expected in column facility (corresponding to facilityId) but found: missing-facility",
			result.Errors[0].Message)
		assert.Equal(t, stats.Entry{Errored: 1}, result.Stats["Department"])
	})

	t.Run("permission denied", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source:          workbookSource(t, sheet("Allergy", row("id", "code", "name"), row("peanut", "peanut", "Peanut"))),
			PermissionCheck: func(verb, noun string) bool { return verb != "create" },
		})

		require.Len(t, result.Errors, 1)
		assert.Equal(t, `ForbiddenError: No permission to perform action "create" on "ReferenceData"`, result.Errors[0].Message)
		assert.Empty(t, repo.store.all("ReferenceData"))
	})

	t.Run("deleting a non deletable model", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Allergy",
				row("id", "code", "name", "deletedAt"),
				row("peanut", "peanut", "Peanut", "2024-01-01"),
			)),
		})

		require.Len(t, result.Errors, 1)
		assert.Equal(t, "Deleting ReferenceData via the importer is not supported", result.Errors[0].Message)
	})
}

func TestReferenceDataImport_ResolvesWithinWorkbook(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()

	// sheet order in the workbook does not matter; facilities are processed first
	result := importReferenceData(t, repo, ImportOptions{
		Source: workbookSource(t,
			sheet("Departments",
				row("id", "code", "name", "facility"),
				row("dept-er", "ER", "Emergency", "Main Hospital"),
			),
			sheet("Location Groups",
				row("id", "code", "name", "facilityId"),
				row("ward-a", "WA", "Ward A", "facility-main"),
			),
			sheet("Facilities",
				row("id", "code", "name"),
				row("facility-main", "MAIN", "Main Hospital"),
			),
		),
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Stats["Facility"].Created)
	assert.Equal(t, 1, result.Stats["Department"].Created)
	assert.Equal(t, 1, result.Stats["LocationGroup"].Created)

	dept := repo.store.get("Department", "dept-er")
	require.NotNil(t, dept)
	assert.Equal(t, "facility-main", dept["facilityId"])
	assert.NotContains(t, dept, "facility")

	group := repo.store.get("LocationGroup", "ward-a")
	require.NotNil(t, group)
	assert.Equal(t, "facility-main", group["facilityId"])
}

func TestReferenceDataImport_NameReferencesIgnoreCase(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()
	repo.store.seed("ReferenceData", repositories.Record{
		"id": "village-1", "code": "V1", "name": "Village One", "type": models.RefTypeVillage, "visibilityStatus": "current",
	})

	result := importReferenceData(t, repo, ImportOptions{
		Source: workbookSource(t,
			sheet("Facilities",
				row("id", "code", "name"),
				row("fac-main", "MAIN", "Main Hospital"),
			),
			sheet("Departments",
				row("id", "code", "name", "facility"),
				row("dept-er", "ER", "Emergency", "main hospital"),
			),
			sheet("Patients",
				row("id", "displayId", "firstName", "lastName", "sex", "dateOfBirth", "village"),
				row("patient-1", "P0001", "Sok", "Dara", "male", "1990-05-01", "VILLAGE ONE"),
			),
		),
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, "fac-main", repo.store.get("Department", "dept-er")["facilityId"])
	assert.Equal(t, "village-1", repo.store.get("Patient", "patient-1")["villageId"])
}

func TestReferenceDataImport_ExistingRows(t *testing.T) {
	seed := func(repo *MockRepository, extra repositories.Record) {
		r := repositories.Record{
			"id": "peanut", "code": "peanut", "name": "Peanut", "type": "allergy", "visibilityStatus": "current",
		}
		for k, v := range extra {
			r[k] = v
		}
		repo.store.seed("ReferenceData", r)
	}
	source := func(t *testing.T, name string) Source {
		return workbookSource(t, sheet("Allergy", row("id", "code", "name"), row("peanut", "peanut", name)))
	}

	t.Run("unchanged row is skipped", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, nil)

		result := importReferenceData(t, repo, ImportOptions{Source: source(t, "Peanut")})

		assert.Empty(t, result.Errors)
		assert.Equal(t, stats.Entry{Skipped: 1}, result.Stats["ReferenceData/allergy"])
	})

	t.Run("changed row is updated", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, nil)

		result := importReferenceData(t, repo, ImportOptions{Source: source(t, "Peanuts")})

		assert.Equal(t, stats.Entry{Updated: 1}, result.Stats["ReferenceData/allergy"])
		assert.Equal(t, "Peanuts", repo.store.get("ReferenceData", "peanut")["name"])
	})

	t.Run("skip existing leaves changed rows alone", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, nil)

		result := importReferenceData(t, repo, ImportOptions{Source: source(t, "Peanuts"), SkipExisting: true})

		assert.Equal(t, stats.Entry{Skipped: 1}, result.Stats["ReferenceData/allergy"])
		assert.Equal(t, "Peanut", repo.store.get("ReferenceData", "peanut")["name"])
	})

	t.Run("soft deleted row is restored", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, repositories.Record{"deletedAt": time.Now()})

		result := importReferenceData(t, repo, ImportOptions{Source: source(t, "Peanut")})

		assert.Equal(t, stats.Entry{Restored: 1}, result.Stats["ReferenceData/allergy"])
		assert.Nil(t, repo.store.get("ReferenceData", "peanut")["deletedAt"])
	})

	t.Run("system required row cannot change", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, repositories.Record{"systemRequired": true})

		result := importReferenceData(t, repo, ImportOptions{Source: source(t, "Peanuts")})

		assert.Equal(t, []string{"Cannot modify system-required reference data"}, messages(result.Errors))
		assert.Equal(t, "Peanut", repo.store.get("ReferenceData", "peanut")["name"])
	})

	t.Run("system required row may be re-imported unchanged", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, repositories.Record{"systemRequired": true})

		result := importReferenceData(t, repo, ImportOptions{Source: source(t, "Peanut")})

		assert.Empty(t, result.Errors)
		assert.Equal(t, stats.Entry{Skipped: 1}, result.Stats["ReferenceData/allergy"])
	})

	t.Run("write permission is checked on update", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seed(repo, nil)

		result := importReferenceData(t, repo, ImportOptions{
			Source:          source(t, "Peanuts"),
			PermissionCheck: func(verb, noun string) bool { return verb != "write" },
		})

		assert.Equal(t, []string{`ForbiddenError: No permission to perform action "write" on "ReferenceData"`}, messages(result.Errors))
	})
}

func TestReferenceDataImport_PermissionMatrix(t *testing.T) {
	roles := sheet("Roles", row("id", "name"), row("reception", "Reception"))

	t.Run("grants", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, roles, sheet("Permissions",
				row("verb", "noun", "objectId", "reception"),
				row("run", "Report", "new-patients", "y"),
				row("run", "Report", "new-encounters", "y"),
				row("read", "Patient", nil, nil),
			)),
		})

		require.Empty(t, result.Errors)
		assert.Equal(t, stats.Entry{Created: 2}, result.Stats["Permission"])
		assert.Equal(t, stats.Entry{Created: 1}, result.Stats["Role"])

		grant := repo.store.get("Permission", "reception-run-report-new-patients")
		require.NotNil(t, grant)
		assert.Equal(t, "reception", grant["roleId"])
		assert.Equal(t, "new-patients", grant["objectId"])
		assert.NotContains(t, grant, "yCell")
	})

	t.Run("revocations", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		repo.store.seed("Role", repositories.Record{"id": "reception", "name": "Reception"})
		repo.store.seed("Permission", repositories.Record{
			"id": "reception-read-patient-any", "roleId": "reception", "verb": "read", "noun": "Patient",
		})

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Permission Matrix",
				row("verb", "noun", "objectId", "reception"),
				row("read", "Patient", nil, "n"),
				row("write", "Patient", nil, "n"),
			)),
		})

		require.Empty(t, result.Errors)
		assert.Equal(t, stats.Entry{Deleted: 1, Skipped: 1}, result.Stats["Permission"])
		assert.NotNil(t, repo.store.get("Permission", "reception-read-patient-any")["deletedAt"])
		assert.Nil(t, repo.store.get("Permission", "reception-write-patient-any"))
	})

	t.Run("invalid cell", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, roles, sheet("Permissions",
				row("verb", "noun", "objectId", "reception"),
				row("run", "Report", nil, "x"),
			)),
		})

		assert.Equal(t, []string{"permissions matrix must only use the letter y or n"}, messages(result.Errors))
	})
}

func TestReferenceDataImport_TranslatedStrings(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()

	result := importReferenceData(t, repo, ImportOptions{
		Source: workbookSource(t, sheet("Translated Strings",
			row("stringId", "en", "km"),
			row("general.action.save", "Save", "រក្សាទុក"),
			row("general.action.cancel", "Cancel", nil),
		)),
	})

	require.Empty(t, result.Errors)
	assert.Equal(t, stats.Entry{Created: 3}, result.Stats["TranslatedString"])
}

func TestReferenceDataImport_LabTests(t *testing.T) {
	t.Run("panel with members", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seedLabTestCategory(repo, "cat-1")
		for _, id := range []string{"test-type-1", "test-type-2"} {
			repo.store.seed("LabTestType", repositories.Record{"id": id, "code": id, "name": id, "labTestCategoryId": "cat-1"})
		}

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Lab Test Panels",
				row("id", "code", "name", "category", "testTypesInPanel"),
				row("panel-1", "P1", "Panel 1", "cat-1", "test-type-1,test-type-2"),
			)),
		})

		require.Empty(t, result.Errors)
		assert.Equal(t, stats.Entry{Created: 1}, result.Stats["LabTestPanel"])
		assert.Equal(t, stats.Entry{Created: 2}, result.Stats["LabTestPanelLabTestType"])

		member := repo.store.get("LabTestPanelLabTestType", "panel-1-test-type-2")
		require.NotNil(t, member)
		assert.Equal(t, "panel-1", member["labTestPanelId"])
		assert.Equal(t, "test-type-2", member["labTestTypeId"])
		assert.Equal(t, 1, member["order"])
	})

	t.Run("mixed sensitivity in one category", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seedLabTestCategory(repo, "cat-1")

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Lab Test Types",
				row("id", "code", "name", "labTestCategory", "isSensitive"),
				row("hiv", "HIV", "HIV", "cat-1", "true"),
				row("fbc", "FBC", "Full blood count", "cat-1", "false"),
			)),
		})

		require.Len(t, result.Errors, 1)
		assert.Equal(t, "Only sensitive lab test types allowed in sensitive category", result.Errors[0].Message)
		assert.True(t, result.Errors[0].Location.IsBatchLevel())
		assert.Equal(t, stats.Entry{Errored: 2}, result.Stats["LabTestType"])
	})

	t.Run("category already sensitive", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seedLabTestCategory(repo, "cat-1")
		repo.store.seed("LabTestType", repositories.Record{"id": "hiv", "labTestCategoryId": "cat-1", "isSensitive": true})

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Lab Test Types",
				row("id", "code", "name", "labTestCategory", "isSensitive"),
				row("fbc", "FBC", "Full blood count", "cat-1", "false"),
			)),
		})

		assert.Equal(t, []string{"Cannot add non sensitive lab test type to sensitive category 'cat-1'"}, messages(result.Errors))
	})

	t.Run("category already non sensitive", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seedLabTestCategory(repo, "cat-1")
		repo.store.seed("LabTestType", repositories.Record{"id": "fbc", "labTestCategoryId": "cat-1", "isSensitive": false})

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t, sheet("Lab Test Types",
				row("id", "code", "name", "labTestCategory", "isSensitive"),
				row("hiv", "HIV", "HIV", "cat-1", "true"),
			)),
		})

		assert.Equal(t, []string{"Cannot add sensitive lab test type to non sensitive category 'cat-1'"}, messages(result.Errors))
	})

	t.Run("panel cannot hold sensitive types", func(t *testing.T) {
		repo := newMockRepository()
		repo.expectTransaction()
		seedLabTestCategory(repo, "cat-s")

		result := importReferenceData(t, repo, ImportOptions{
			Source: workbookSource(t,
				sheet("Lab Test Types",
					row("id", "code", "name", "labTestCategory", "isSensitive"),
					row("hiv", "HIV", "HIV", "cat-s", "true"),
				),
				sheet("Lab Test Panels",
					row("id", "code", "name", "category", "testTypesInPanel"),
					row("panel-s", "PS", "Sensitive panel", "cat-s", "hiv"),
				),
			),
		})

		assert.Equal(t, []string{"Lab test panels cannot contain sensitive lab test types"}, messages(result.Errors))
		assert.Equal(t, stats.Entry{Errored: 1}, result.Stats["LabTestPanelLabTestType"])
		assert.Equal(t, ReasonValidationFailed, result.DidntSendReason)
	})
}

func TestReferenceDataImport_StatsAccountForEveryRow(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()
	repo.store.seed("ReferenceData", repositories.Record{"id": "a", "code": "a", "name": "A", "type": "allergy", "visibilityStatus": "current"})

	result := importReferenceData(t, repo, ImportOptions{
		Source: workbookSource(t, sheet("Allergy",
			row("id", "code", "name"),
			row("a", "a", "A"),
			row("b", "b", "B"),
			row("b", "b", "B"),
			row("c", "", "C"),
			row("a", "a", "A2"),
		)),
	})

	assert.Equal(t, 5, result.Stats["ReferenceData/allergy"].Total())
}

func TestReferenceDataImport_IncludedDataTypes(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()

	result := importReferenceData(t, repo, ImportOptions{
		IncludedDataTypes: []string{"allergy"},
		Source: workbookSource(t,
			sheet("Allergy", row("id", "code", "name"), row("peanut", "peanut", "Peanut")),
			sheet("Diagnosis", row("id", "code", "name"), row("flu", "J11", "Influenza")),
			sheet("Notes", row("anything"), row("ignored")),
		),
	})

	assert.Equal(t, stats.Map{"ReferenceData/allergy": {Created: 1}}, result.Stats)
}

func TestReferenceDataImport_EmptyUpload(t *testing.T) {
	repo := newMockRepository()
	repo.expectTransaction()

	result := importReferenceData(t, repo, ImportOptions{})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, apperrors.KindGeneral, result.Errors[0].Kind)
	repo.AssertCalled(t, "Rollback", testTx)
}

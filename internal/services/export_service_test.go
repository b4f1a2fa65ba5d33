package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/cache"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestExportService(repo *MockRepository, c cache.CacheService) ExportService {
	return NewExportService(repo, NewDataTypeRegistry(), c, time.Minute, "refData", testLogger())
}

func strPtr(s string) *string { return &s }

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("reference data sheet", func(t *testing.T) {
		repo := newMockRepository()
		repo.export.On("ListRecords", mock.Anything, "ReferenceData", "diagnosis").Return([]repositories.Record{
			{"id": "diag-m797", "code": "M79.7", "name": "Fibromyalgia", "visibilityStatus": "current", "type": "diagnosis"},
			{"id": "diag-s799", "code": "S79.9", "name": "Thigh injury", "visibilityStatus": "current", "type": "diagnosis"},
		}, nil)

		out, err := newTestExportService(repo, cache.NoopCache{}).Export(ctx, &ExportRequest{
			IncludedDataTypes: map[int]string{0: "diagnosis"},
		})

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Diagnosis", out[0].Name)
		assert.Equal(t, [][]interface{}{
			{"id", "code", "name", "visibilityStatus"},
			{"diag-m797", "M79.7", "Fibromyalgia", "current"},
			{"diag-s799", "S79.9", "Thigh injury", "current"},
		}, out[0].Data)
	})

	t.Run("sheets follow the ordinal keys", func(t *testing.T) {
		repo := newMockRepository()
		repo.export.On("ListRecords", mock.Anything, "ReferenceData", "allergy").Return([]repositories.Record{}, nil)
		repo.export.On("ListRecords", mock.Anything, "Role", "role").Return([]repositories.Record{{"id": "admin", "name": "Admin"}}, nil)
		repo.export.On("ListLocations", mock.Anything).Return([]models.Location{}, nil)

		out, err := newTestExportService(repo, cache.NoopCache{}).Export(ctx, &ExportRequest{
			IncludedDataTypes: map[int]string{7: "location", 2: "role", 3: "allergy"},
		})

		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "Role", out[0].Name)
		assert.Equal(t, "Allergy", out[1].Name)
		assert.Empty(t, out[1].Data)
		assert.NotNil(t, out[1].Data)
		assert.Equal(t, "Location", out[2].Name)
	})

	t.Run("lab test panel joins its members", func(t *testing.T) {
		repo := newMockRepository()
		repo.export.On("ListLabTestPanels", mock.Anything).Return([]models.LabTestPanel{{
			ID: "panel-1", Code: "P1", Name: "Panel 1", CategoryID: "cat-1", VisibilityStatus: models.VisibilityCurrent,
			LabTestTypes: []models.LabTestPanelLabTestType{
				{LabTestPanelID: "panel-1", LabTestTypeID: "test-type-1"},
				{LabTestPanelID: "panel-1", LabTestTypeID: "test-type-2"},
			},
		}}, nil)

		out, err := newTestExportService(repo, cache.NoopCache{}).Export(ctx, &ExportRequest{
			IncludedDataTypes: map[int]string{0: "labTestPanel"},
		})

		require.NoError(t, err)
		require.Len(t, out[0].Data, 2)
		assert.Equal(t, "Lab Test Panel", out[0].Name)
		assert.Equal(t, "test-type-1,test-type-2", out[0].Data[1][6])
		assert.Nil(t, out[0].Data[1][4])
	})

	t.Run("translated strings exclude generated ids by default", func(t *testing.T) {
		repo := newMockRepository()
		repo.export.On("ListTranslatedStrings", mock.Anything, "refData.").Return([]models.TranslatedString{}, nil).Once()
		repo.export.On("ListTranslatedStrings", mock.Anything, "").Return([]models.TranslatedString{}, nil).Once()
		svc := newTestExportService(repo, cache.NoopCache{})

		_, err := svc.Export(ctx, &ExportRequest{IncludedDataTypes: map[int]string{0: "translatedString"}})
		require.NoError(t, err)
		_, err = svc.Export(ctx, &ExportRequest{IncludedDataTypes: map[int]string{0: "translatedString"}, IncludeReferenceData: true})
		require.NoError(t, err)

		repo.export.AssertExpectations(t)
	})

	t.Run("patient field definition category long name", func(t *testing.T) {
		repo := newMockRepository()
		repo.export.On("ListRecords", mock.Anything, "PatientFieldDefinitionCategory", "patientFieldDefCategory").Return([]repositories.Record{
			{"id": "123", "name": "test 123", "visibilityStatus": "current"},
			{"id": "1234", "name": "test 1234", "visibilityStatus": "current"},
		}, nil)

		out, err := newTestExportService(repo, cache.NoopCache{}).Export(ctx, &ExportRequest{
			IncludedDataTypes: map[int]string{1: "patientFieldDefinitionCategory"},
		})

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Patient Field Def Category", out[0].Name)
		assert.Equal(t, [][]interface{}{{"id", "name"}, {"123", "test 123"}, {"1234", "test 1234"}}, out[0].Data)
	})

	t.Run("unknown data type", func(t *testing.T) {
		repo := newMockRepository()

		_, err := newTestExportService(repo, cache.NoopCache{}).Export(ctx, &ExportRequest{
			IncludedDataTypes: map[int]string{0: "wrongDataType"},
		})

		var unknown *UnknownDataTypeError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "wrongDataType", unknown.DataType)
	})

	t.Run("nothing selected exports no sheets", func(t *testing.T) {
		repo := newMockRepository()
		c := &MockCacheService{}

		out, err := newTestExportService(repo, c).Export(ctx, &ExportRequest{IncludedDataTypes: map[int]string{}})

		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
		c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("served from cache", func(t *testing.T) {
		repo := newMockRepository()
		c := &MockCacheService{}
		c.On("Get", mock.Anything, mock.MatchedBy(func(key string) bool { return len(key) > len(exportCachePrefix) }), mock.Anything).Return(nil)

		out, err := newTestExportService(repo, c).Export(ctx, &ExportRequest{IncludedDataTypes: map[int]string{0: "diagnosis"}})

		require.NoError(t, err)
		assert.Empty(t, out)
		repo.export.AssertNotCalled(t, "ListRecords", mock.Anything, mock.Anything, mock.Anything)
		c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("result is cached", func(t *testing.T) {
		repo := newMockRepository()
		repo.export.On("ListRecords", mock.Anything, "Program", "program").Return([]repositories.Record{}, nil)
		c := &MockCacheService{}
		c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(cache.ErrCacheMiss)
		c.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(nil)

		_, err := newTestExportService(repo, c).Export(ctx, &ExportRequest{IncludedDataTypes: map[int]string{0: "program"}})

		require.NoError(t, err)
		c.AssertExpectations(t)
	})
}

func TestExportCacheKey(t *testing.T) {
	a := exportCacheKey([]string{"allergy", "diagnosis"}, false)
	assert.Equal(t, a, exportCacheKey([]string{"allergy", "diagnosis"}, false))
	assert.NotEqual(t, a, exportCacheKey([]string{"diagnosis", "allergy"}, false))
	assert.NotEqual(t, a, exportCacheKey([]string{"allergy", "diagnosis"}, true))
	assert.Contains(t, a, exportCachePrefix)
}

func TestPermissionPivot(t *testing.T) {
	roles := []models.Role{{ID: "reception", Name: "Reception"}}
	permissions := []models.Permission{
		{ID: "p1", RoleID: "reception", Verb: "run", Noun: "Report", ObjectID: strPtr("new-patients")},
		{ID: "p2", RoleID: "reception", Verb: "run", Noun: "Report", ObjectID: strPtr("new-encounters")},
	}

	assert.Equal(t, [][]interface{}{
		{"verb", "noun", "objectId", "reception"},
		{"run", "Report", "new-patients", "y"},
		{"run", "Report", "new-encounters", "y"},
	}, PermissionPivot(roles, permissions))

	t.Run("revoked grants and several roles", func(t *testing.T) {
		roles := []models.Role{{ID: "practitioner"}, {ID: "admin"}}
		permissions := []models.Permission{
			{RoleID: "practitioner", Verb: "read", Noun: "Patient"},
			{RoleID: "admin", Verb: "read", Noun: "Patient", DeletedAt: gorm.DeletedAt{Time: time.Now(), Valid: true}},
			{RoleID: "practitioner", Verb: "write", Noun: "Patient"},
			{RoleID: "removed-role", Verb: "write", Noun: "Encounter"},
		}

		assert.Equal(t, [][]interface{}{
			{"verb", "noun", "objectId", "admin", "practitioner"},
			{"read", "Patient", nil, "n", "y"},
			{"write", "Patient", nil, "", "y"},
		}, PermissionPivot(roles, permissions))
	})
}

func TestTranslationPivot(t *testing.T) {
	data := TranslationPivot([]models.TranslatedString{
		{StringID: "test-string", Language: "en", Text: "test"},
		{StringID: "test-string2", Language: "km", Text: "សាកល្បង"},
	})

	assert.Equal(t, [][]interface{}{
		{"stringId", "en", "km"},
		{"test-string", "test", nil},
		{"test-string2", nil, "សាកល្បង"},
	}, data)
}

func TestFlattenRecords(t *testing.T) {
	cols := flatExportColumns["patientFieldDefinition"]
	data := flattenRecords(cols, []repositories.Record{{
		"id": "pfd-1", "name": "Blood group", "fieldType": "select",
		"options": []byte(`["A","B","O"]`), "categoryId": "cat-1", "visibilityStatus": "current",
	}})

	require.Len(t, data, 2)
	assert.Equal(t, []interface{}{"id", "name", "fieldType", "options", "visibilityStatus", "categoryId"}, data[0])
	assert.Equal(t, []interface{}{"pfd-1", "Blood group", "select", "A,B,O", "current", "cat-1"}, data[1])

	t.Run("no options is null", func(t *testing.T) {
		data := flattenRecords(cols, []repositories.Record{{
			"id": "pfd-2", "name": "Policy number", "fieldType": "string", "categoryId": "cat-1", "visibilityStatus": "current",
		}})
		assert.Equal(t, []interface{}{"pfd-2", "Policy number", "string", nil, "current", "cat-1"}, data[1])
	})
}

func TestExportSheets_SurviveCacheRoundTrip(t *testing.T) {
	occupancy := 4
	fresh := []workbook.ExportSheet{
		{Name: "Lab Test Type", Data: flattenRecords(flatExportColumns["labTestType"], []repositories.Record{{
			"id": "lt-1", "code": "HB", "name": "Haemoglobin", "unit": "g/dL", "resultType": "Number",
			"labTestCategoryId": "cat-1", "isSensitive": false,
			"maleMin": decimal.RequireFromString("13.5"), "maleMax": decimal.RequireFromString("17"),
			"femaleMin": nil, "femaleMax": int64(15), "visibilityStatus": "current",
		}})},
		{Name: "Location", Data: flattenLocations([]models.Location{{
			ID: "bed-1", Code: "B1", Name: "Bed 1", FacilityID: "facility-main",
			MaxOccupancy: &occupancy, VisibilityStatus: models.VisibilityCurrent,
		}})},
	}

	payload, err := json.Marshal(fresh)
	require.NoError(t, err)
	var cached []workbook.ExportSheet
	require.NoError(t, json.Unmarshal(payload, &cached))

	assert.Equal(t, fresh, cached)
	assert.Equal(t, 13.5, fresh[0].Data[1][7])
	assert.Equal(t, float64(4), fresh[1].Data[1][5])
}

func TestExportValue(t *testing.T) {
	assert.Equal(t, "1990-05-01", exportValue(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-02T03:04:05Z", exportValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Nil(t, exportValue((*string)(nil)))
	assert.Equal(t, "x", exportValue(strPtr("x")))
	assert.Equal(t, float64(3), exportValue(3))
	assert.Equal(t, float64(7), exportValue(int64(7)))
	assert.Equal(t, 2.25, exportValue(decimal.RequireFromString("2.25")))
	assert.Nil(t, exportValue(decimal.NullDecimal{}))
	assert.Nil(t, exportValue((*int)(nil)))
	assert.Equal(t, true, exportValue(true))
}

func TestFlattenLocations(t *testing.T) {
	one := 1
	data := flattenLocations([]models.Location{{
		ID: "bed-1", Code: "B1", Name: "Bed 1", FacilityID: "facility-main",
		MaxOccupancy: &one, VisibilityStatus: models.VisibilityCurrent,
		LocationGroup: &models.LocationGroup{Name: "Ward A"},
	}})

	require.Len(t, data, 2)
	assert.Equal(t, []interface{}{"bed-1", "B1", "Bed 1", "facility-main", "Ward A", float64(1), "current"}, data[1])
	assert.Empty(t, flattenLocations(nil))

	t.Run("facility by name when loaded", func(t *testing.T) {
		data := flattenLocations([]models.Location{{
			ID: "bed-2", Code: "B2", Name: "Bed 2", FacilityID: "facility-main",
			Facility: &models.Facility{ID: "facility-main", Name: "Main Hospital"}, VisibilityStatus: models.VisibilityCurrent,
		}})
		assert.Equal(t, []interface{}{"bed-2", "B2", "Bed 2", "Main Hospital", nil, nil, "current"}, data[1])
	})
}

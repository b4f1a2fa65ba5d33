package postgres

import (
	"testing"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestColumnsFor(t *testing.T) {
	entity, ok := models.LookupEntity("PatientFieldDefinition")
	require.True(t, ok)

	cols, err := columnsFor(entity)
	require.NoError(t, err)

	assert.Equal(t, "category_id", cols.byKey["categoryId"])
	assert.Equal(t, "deleted_at", cols.byKey["deletedAt"])
	assert.False(t, cols.has("category"), "relations have no column")

	t.Run("toColumns drops unknown keys and encodes options", func(t *testing.T) {
		data, err := cols.toColumns(repositories.Record{
			"id":         "pfd-size",
			"categoryId": "clothing",
			"category":   "Clothing",
			"options":    []string{"s", "m"},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"id":          "pfd-size",
			"category_id": "clothing",
			"options":     datatypes.JSON(`["s","m"]`),
		}, data)
	})

	t.Run("toRecord maps columns back", func(t *testing.T) {
		rec := cols.toRecord(map[string]interface{}{"id": "x", "field_type": "select", "unknown": 1})
		assert.Equal(t, repositories.Record{"id": "x", "fieldType": "select"}, rec)
	})
}

func TestColumnsFor_HiddenFields(t *testing.T) {
	entity, _ := models.LookupEntity("User")
	cols, err := columnsFor(entity)
	require.NoError(t, err)
	assert.Equal(t, "password", cols.byKey["password"])
}

package postgres

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

// columnSet maps a model's camelCase field keys to database column names
type columnSet struct {
	byKey    map[string]string
	byColumn map[string]string
}

var (
	schemaCache sync.Map
	columnCache sync.Map
)

func columnsFor(entity models.Entity) (*columnSet, error) {
	if cached, ok := columnCache.Load(entity.Name); ok {
		return cached.(*columnSet), nil
	}

	s, err := schema.Parse(entity.New(), &schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema of %s: %w", entity.Name, err)
	}

	set := &columnSet{byKey: map[string]string{}, byColumn: map[string]string{}}
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		key := fieldKey(f.Name, f.Tag)
		set.byKey[key] = f.DBName
		set.byColumn[f.DBName] = key
	}

	columnCache.Store(entity.Name, set)
	return set, nil
}

func fieldKey(name string, tag reflect.StructTag) string {
	jsonName := strings.SplitN(tag.Get("json"), ",", 2)[0]
	if jsonName != "" && jsonName != "-" {
		return jsonName
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func (c *columnSet) has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// toColumns keeps known fields only and converts values to their column representation
func (c *columnSet) toColumns(values repositories.Record) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(values))
	for key, value := range values {
		column, ok := c.byKey[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case []string:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", key, err)
			}
			out[column] = datatypes.JSON(encoded)
		default:
			out[column] = value
		}
	}
	return out, nil
}

func (c *columnSet) toRecord(row map[string]interface{}) repositories.Record {
	out := make(repositories.Record, len(row))
	for column, value := range row {
		if key, ok := c.byColumn[column]; ok {
			out[key] = value
		}
	}
	return out
}

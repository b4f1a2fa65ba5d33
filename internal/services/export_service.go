package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/cache"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
	"github.com/SAP-F-2025/refdata-service/internal/sheets"
	"github.com/SAP-F-2025/refdata-service/internal/translations"
	"github.com/SAP-F-2025/refdata-service/internal/workbook"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const exportCachePrefix = "export:"

// ExportRequest selects the data types to export. Keys of IncludedDataTypes give the sheet order.
type ExportRequest struct {
	IncludedDataTypes    map[int]string `json:"includedDataTypes"`
	IncludeReferenceData bool           `json:"includeReferenceData"`
}

// ExportService flattens stored data into worksheets ready for a workbook sink
type ExportService interface {
	Export(ctx context.Context, req *ExportRequest) ([]workbook.ExportSheet, error)
}

type exportColumn struct {
	header  string
	field   string
	options bool // stored as a JSON list, exported as "a,b"
}

func columns(headers ...string) []exportColumn {
	out := make([]exportColumn, len(headers))
	for i, h := range headers {
		out[i] = exportColumn{header: h, field: h}
	}
	return out
}

var (
	referenceDataColumns = columns("id", "code", "name", "visibilityStatus")

	flatExportColumns = map[string][]exportColumn{
		"user":     columns("id", "email", "displayName", "role", "phoneNumber", "visibilityStatus"),
		"role":     columns("id", "name"),
		"facility": columns("id", "code", "name", "email", "contactNumber", "streetAddress", "cityTown", "visibilityStatus"),
		"department": append(columns("id", "code", "name"),
			exportColumn{header: "facility", field: "facilityId"},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"}),
		"locationGroup": append(columns("id", "code", "name"),
			exportColumn{header: "facility", field: "facilityId"},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"}),
		"patient": append(columns("id", "displayId", "firstName", "middleName", "lastName", "culturalName", "sex", "dateOfBirth"),
			exportColumn{header: "village", field: "villageId"},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"}),
		"patientFieldDefCategory": columns("id", "name"),
		"patientFieldDefinition": append(columns("id", "name", "fieldType"),
			exportColumn{header: "options", field: "options", options: true},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"},
			exportColumn{header: "categoryId", field: "categoryId"}),
		"labTestType": append(columns("id", "code", "name", "unit", "resultType"),
			exportColumn{header: "labTestCategory", field: "labTestCategoryId"},
			exportColumn{header: "isSensitive", field: "isSensitive"},
			exportColumn{header: "maleMin", field: "maleMin"},
			exportColumn{header: "maleMax", field: "maleMax"},
			exportColumn{header: "femaleMin", field: "femaleMin"},
			exportColumn{header: "femaleMax", field: "femaleMax"},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"}),
		"labTestPanelLabTestType": append(columns("id"),
			exportColumn{header: "labTestPanel", field: "labTestPanelId"},
			exportColumn{header: "labTestType", field: "labTestTypeId"},
			exportColumn{header: "order", field: "order"}),
		"program": columns("id", "code", "name"),
		"survey": append(columns("id", "code", "name"),
			exportColumn{header: "program", field: "programId"},
			exportColumn{header: "surveyType", field: "surveyType"},
			exportColumn{header: "isSensitive", field: "isSensitive"},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"}),
		"programRegistry": append(columns("id", "code", "name"),
			exportColumn{header: "program", field: "programId"},
			exportColumn{header: "currentlyAtType", field: "currentlyAtType"},
			exportColumn{header: "visibilityStatus", field: "visibilityStatus"}),
		"programDataElement": append(columns("id", "code", "name", "type", "defaultText"),
			exportColumn{header: "defaultOptions", field: "defaultOptions", options: true}),
		"surveyScreenComponent": append(columns("id", "surveyId", "dataElementId", "screenIndex", "componentIndex", "text", "detail"),
			exportColumn{header: "options", field: "options", options: true},
			exportColumn{header: "config", field: "config"},
			exportColumn{header: "visible", field: "visible"}),
	}

	// older export links select some types by their long names
	exportDataTypeAliases = map[string]string{
		"patientFieldDefinitionCategory": "patientFieldDefCategory",
	}

	locationHeader     = []interface{}{"id", "code", "name", "facility", "locationGroup", "maxOccupancy", "visibilityStatus"}
	labTestPanelHeader = []interface{}{"id", "code", "name", "visibilityStatus", "externalCode", "categoryId", "testTypesInPanel"}
)

type exportService struct {
	repo      repositories.Repository
	dataTypes *DataTypeRegistry
	cache     cache.CacheService
	cacheTTL  time.Duration
	prefix    string
	logger    *slog.Logger
}

func NewExportService(repo repositories.Repository, dataTypes *DataTypeRegistry, cacheService cache.CacheService, cacheTTL time.Duration, translationPrefix string, logger *slog.Logger) ExportService {
	return &exportService{
		repo:      repo,
		dataTypes: dataTypes,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		prefix:    translationPrefix,
		logger:    logger,
	}
}

// Export builds one sheet per selected data type in ordinal order
func (s *exportService) Export(ctx context.Context, req *ExportRequest) ([]workbook.ExportSheet, error) {
	ordinals := make([]int, 0, len(req.IncludedDataTypes))
	for k := range req.IncludedDataTypes {
		ordinals = append(ordinals, k)
	}
	sort.Ints(ordinals)

	selected := make([]string, 0, len(ordinals))
	for _, k := range ordinals {
		name := req.IncludedDataTypes[k]
		if canonical, ok := exportDataTypeAliases[name]; ok {
			name = canonical
		}
		if _, ok := s.dataTypes.Lookup(name); !ok {
			return nil, &UnknownDataTypeError{DataType: name}
		}
		selected = append(selected, name)
	}
	if len(selected) == 0 {
		return []workbook.ExportSheet{}, nil
	}

	key := exportCacheKey(selected, req.IncludeReferenceData)
	var cached []workbook.ExportSheet
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.logger.Debug("Export served from cache", "key", key)
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Failed to read export cache", "key", key, "error", err)
	}

	out := make([]workbook.ExportSheet, 0, len(selected))
	for _, name := range selected {
		data, err := s.buildSheet(ctx, name, req.IncludeReferenceData)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", name, err)
		}
		out = append(out, workbook.ExportSheet{Name: sheets.Title(name), Data: data})
	}

	if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache export", "key", key, "error", err)
	}
	return out, nil
}

func exportCacheKey(dataTypes []string, includeReferenceData bool) string {
	payload, _ := json.Marshal(struct {
		Types []string `json:"t"`
		Ref   bool     `json:"r"`
	}{dataTypes, includeReferenceData})
	sum := sha1.Sum(payload)
	return exportCachePrefix + hex.EncodeToString(sum[:])
}

func (s *exportService) buildSheet(ctx context.Context, dataType string, includeReferenceData bool) ([][]interface{}, error) {
	switch dataType {
	case "permission":
		roles, err := s.repo.Export().ListRoles(ctx)
		if err != nil {
			return nil, err
		}
		permissions, err := s.repo.Export().ListPermissions(ctx)
		if err != nil {
			return nil, err
		}
		return PermissionPivot(roles, permissions), nil
	case "translatedString":
		exclude := ""
		if !includeReferenceData {
			exclude = s.prefix + "."
		}
		strs, err := s.repo.Export().ListTranslatedStrings(ctx, exclude)
		if err != nil {
			return nil, err
		}
		return TranslationPivot(strs), nil
	case "location":
		locations, err := s.repo.Export().ListLocations(ctx)
		if err != nil {
			return nil, err
		}
		return flattenLocations(locations), nil
	case "labTestPanel":
		panels, err := s.repo.Export().ListLabTestPanels(ctx)
		if err != nil {
			return nil, err
		}
		return flattenLabTestPanels(panels), nil
	}

	dt, _ := s.dataTypes.Lookup(dataType)
	entity, ok := entityFor(dt.Model)
	if !ok {
		return nil, &UnknownDataTypeError{DataType: dataType}
	}
	cols := referenceDataColumns
	if dt.Model != "ReferenceData" {
		cols = flatExportColumns[dataType]
	}
	records, err := s.repo.Export().ListRecords(ctx, entity, dataType)
	if err != nil {
		return nil, err
	}
	return flattenRecords(cols, records), nil
}

// flattenRecords emits a header and one row per record. No records yields no rows at all.
func flattenRecords(cols []exportColumn, records []repositories.Record) [][]interface{} {
	data := [][]interface{}{}
	if len(records) == 0 {
		return data
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	data = append(data, header)

	for _, r := range records {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			if c.options {
				if options := translations.NormaliseOptions(r[c.field]); len(options) > 0 {
					row[i] = strings.Join(options, ",")
				}
				continue
			}
			row[i] = exportValue(r[c.field])
		}
		data = append(data, row)
	}
	return data
}

// exportValue turns a stored value into a cell. Numbers become float64 so a sheet reads the
// same after a trip through the JSON export cache.
func exportValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return t.InexactFloat64()
	case decimal.NullDecimal:
		if !t.Valid {
			return nil
		}
		return t.Decimal.InexactFloat64()
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.UTC().Format(time.RFC3339)
	case []byte:
		return string(t)
	case datatypes.JSON:
		return string(t)
	case *string:
		if t == nil {
			return nil
		}
		return *t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return exportValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func flattenLocations(locations []models.Location) [][]interface{} {
	data := [][]interface{}{}
	if len(locations) == 0 {
		return data
	}
	data = append(data, locationHeader)
	for _, l := range locations {
		// related rows are exported by name; the importer resolves names as well as ids
		var facility interface{} = l.FacilityID
		if l.Facility != nil {
			facility = l.Facility.Name
		}
		var group interface{}
		if l.LocationGroup != nil {
			group = l.LocationGroup.Name
		}
		data = append(data, []interface{}{
			l.ID, l.Code, l.Name, facility, group, exportValue(l.MaxOccupancy), string(l.VisibilityStatus),
		})
	}
	return data
}

func flattenLabTestPanels(panels []models.LabTestPanel) [][]interface{} {
	data := [][]interface{}{}
	if len(panels) == 0 {
		return data
	}
	data = append(data, labTestPanelHeader)
	for _, p := range panels {
		ids := make([]string, 0, len(p.LabTestTypes))
		for _, member := range p.LabTestTypes {
			ids = append(ids, member.LabTestTypeID)
		}
		var externalCode interface{}
		if p.ExternalCode != nil {
			externalCode = *p.ExternalCode
		}
		data = append(data, []interface{}{
			p.ID, p.Code, p.Name, string(p.VisibilityStatus), externalCode, p.CategoryID, strings.Join(ids, ","),
		})
	}
	return data
}

type permissionKey struct {
	verb, noun, objectID string
}

// PermissionPivot renders grants as a verb/noun/objectId by role matrix. Cells are "y" for a
// live grant, "n" for a revoked one and "" where the role has neither. Grants of roles that
// no longer exist are left out.
func PermissionPivot(roles []models.Role, permissions []models.Permission) [][]interface{} {
	roleIDs := make([]string, 0, len(roles))
	live := map[string]bool{}
	for _, r := range roles {
		if !live[r.ID] {
			live[r.ID] = true
			roleIDs = append(roleIDs, r.ID)
		}
	}
	sort.Strings(roleIDs)

	var order []permissionKey
	cells := map[permissionKey]map[string]string{}
	for _, p := range permissions {
		if !live[p.RoleID] {
			continue
		}
		key := permissionKey{verb: p.Verb, noun: p.Noun}
		if p.ObjectID != nil {
			key.objectID = *p.ObjectID
		}
		if _, ok := cells[key]; !ok {
			cells[key] = map[string]string{}
			order = append(order, key)
		}
		mark := "y"
		if p.DeletedAt.Valid {
			mark = "n"
		}
		cells[key][p.RoleID] = mark
	}

	header := []interface{}{"verb", "noun", "objectId"}
	for _, id := range roleIDs {
		header = append(header, id)
	}
	data := [][]interface{}{header}

	for _, key := range order {
		var objectID interface{}
		if key.objectID != "" {
			objectID = key.objectID
		}
		row := []interface{}{key.verb, key.noun, objectID}
		for _, id := range roleIDs {
			row = append(row, cells[key][id])
		}
		data = append(data, row)
	}
	return data
}

// TranslationPivot renders translated strings as one row per string id and one column per
// language, both sorted. A language with no text for a string gets nil.
func TranslationPivot(strs []models.TranslatedString) [][]interface{} {
	languages := map[string]bool{}
	texts := map[string]map[string]string{}
	for _, s := range strs {
		languages[s.Language] = true
		if texts[s.StringID] == nil {
			texts[s.StringID] = map[string]string{}
		}
		texts[s.StringID][s.Language] = s.Text
	}

	langs := make([]string, 0, len(languages))
	for l := range languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	ids := make([]string, 0, len(texts))
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	header := []interface{}{"stringId"}
	for _, l := range langs {
		header = append(header, l)
	}
	data := [][]interface{}{header}

	for _, id := range ids {
		row := []interface{}{id}
		for _, l := range langs {
			if text, ok := texts[id][l]; ok {
				row = append(row, text)
			} else {
				row = append(row, nil)
			}
		}
		data = append(data, row)
	}
	return data
}

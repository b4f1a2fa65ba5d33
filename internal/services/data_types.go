package services

import (
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/repositories"
)

// DataType describes one importable/exportable data type
type DataType struct {
	Name   string
	Model  string
	Family models.ImportKind
}

// ForeignKey is a column that references another entity by id, code or name. The sheet
// column is Column; the resolved id is written to IDField.
type ForeignKey struct {
	Column     string
	IDField    string
	Model      string
	TargetType string // reference data subtype, empty for other models
}

var referenceDataTypes = []DataType{
	{Name: "role", Model: "Role"},
	{Name: "user", Model: "User"},
	{Name: "permission", Model: "Permission"},
	{Name: "facility", Model: "Facility"},
	{Name: "department", Model: "Department"},
	{Name: "locationGroup", Model: "LocationGroup"},
	{Name: "location", Model: "Location"},
	{Name: "patient", Model: "Patient"},
	{Name: "patientFieldDefCategory", Model: "PatientFieldDefinitionCategory"},
	{Name: "patientFieldDefinition", Model: "PatientFieldDefinition"},
	{Name: "labTestType", Model: "LabTestType"},
	{Name: "labTestPanel", Model: "LabTestPanel"},
	{Name: "labTestPanelLabTestType", Model: "LabTestPanelLabTestType"},
	{Name: "translatedString", Model: "TranslatedString"},
}

var programDataTypes = []DataType{
	{Name: "program", Model: "Program"},
	{Name: "survey", Model: "Survey"},
	{Name: "programRegistry", Model: "ProgramRegistry"},
	{Name: "programDataElement", Model: "ProgramDataElement"},
	{Name: "surveyScreenComponent", Model: "SurveyScreenComponent"},
}

var foreignKeys = map[string][]ForeignKey{
	"Department":    {{Column: "facility", IDField: "facilityId", Model: "Facility"}},
	"LocationGroup": {{Column: "facility", IDField: "facilityId", Model: "Facility"}},
	"Location": {
		{Column: "facility", IDField: "facilityId", Model: "Facility"},
		{Column: "locationGroup", IDField: "locationGroupId", Model: "LocationGroup"},
	},
	"Patient":                {{Column: "village", IDField: "villageId", Model: "ReferenceData", TargetType: models.RefTypeVillage}},
	"PatientFieldDefinition": {{Column: "category", IDField: "categoryId", Model: "PatientFieldDefinitionCategory"}},
	"LabTestType":            {{Column: "labTestCategory", IDField: "labTestCategoryId", Model: "ReferenceData", TargetType: models.RefTypeLabTestCategory}},
	"LabTestPanel":           {{Column: "category", IDField: "categoryId", Model: "ReferenceData", TargetType: models.RefTypeLabTestCategory}},
	"LabTestPanelLabTestType": {
		{Column: "labTestPanel", IDField: "labTestPanelId", Model: "LabTestPanel"},
		{Column: "labTestType", IDField: "labTestTypeId", Model: "LabTestType"},
	},
	"Permission":      {{Column: "role", IDField: "roleId", Model: "Role"}},
	"Survey":          {{Column: "program", IDField: "programId", Model: "Program"}},
	"ProgramRegistry": {{Column: "program", IDField: "programId", Model: "Program"}},
}

// DataTypeRegistry resolves data type names to their model and family
type DataTypeRegistry struct {
	byName map[string]DataType
	order  map[string]int
}

// NewDataTypeRegistry builds the registry. Reference data subtypes come first so later
// sheets can reference them, followed by the other types in dependency order.
func NewDataTypeRegistry() *DataTypeRegistry {
	r := &DataTypeRegistry{byName: map[string]DataType{}, order: map[string]int{}}
	add := func(dt DataType) {
		r.byName[dt.Name] = dt
		r.order[dt.Name] = len(r.order)
	}
	for _, refType := range models.ReferenceTypes {
		add(DataType{Name: refType, Model: "ReferenceData", Family: models.ImportKindReferenceData})
	}
	for _, dt := range referenceDataTypes {
		dt.Family = models.ImportKindReferenceData
		add(dt)
	}
	for _, dt := range programDataTypes {
		dt.Family = models.ImportKindProgram
		add(dt)
	}
	return r
}

func (r *DataTypeRegistry) Lookup(name string) (DataType, bool) {
	dt, ok := r.byName[name]
	return dt, ok
}

// Order is the processing position of a data type; unknown types sort last
func (r *DataTypeRegistry) Order(name string) int {
	if o, ok := r.order[name]; ok {
		return o
	}
	return len(r.order)
}

// Names returns every data type of a family in processing order
func (r *DataTypeRegistry) Names(family models.ImportKind) []string {
	names := make([]string, len(r.order))
	for name, o := range r.order {
		names[o] = name
	}
	out := names[:0]
	for _, name := range names {
		if r.byName[name].Family == family {
			out = append(out, name)
		}
	}
	return out
}

// Validate rejects any name that is not a data type of the family
func (r *DataTypeRegistry) Validate(family models.ImportKind, names []string) error {
	for _, name := range names {
		dt, ok := r.byName[name]
		if !ok || dt.Family != family {
			return &UnknownDataTypeError{DataType: name}
		}
	}
	return nil
}

func foreignKeysFor(model string) []ForeignKey {
	return foreignKeys[model]
}

// entityFor returns the registered entity of a model
func entityFor(model string) (models.Entity, bool) {
	return models.LookupEntity(model)
}

// recordKey extracts the key fields of an entity from a row
func recordKey(entity models.Entity, values repositories.Record) (repositories.Record, bool) {
	key := repositories.Record{}
	for _, field := range entity.KeyFields {
		v, ok := values[field]
		if !ok || v == nil || v == "" {
			return nil, false
		}
		key[field] = v
	}
	return key, true
}

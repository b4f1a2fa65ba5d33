package validator

import (
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/models"
)

const baseSchema = "Base"

var (
	idField       = Field{Name: "id", Required: true, Rules: "id_format"}
	derivedID     = Field{Name: "id", Required: true, Rules: "code_format"} // built from a survey question code
	codeField     = Field{Name: "code", Required: true, Rules: "code_format"}
	nameField     = Field{Name: "name", Required: true}
	deletedAt     = Field{Name: "deletedAt", Kind: KindTimestamp}
	visibility    = Field{Name: "visibilityStatus", Rules: "visibility_status", Default: string(models.VisibilityCurrent)}
	sensitiveFlag = Field{Name: "isSensitive", Kind: KindBool, Default: false}
)

func schema(name string, fields ...Field) RowSchema {
	return RowSchema{Name: name, Fields: append(fields, deletedAt)}
}

func oneOf(values ...string) string {
	return "oneof=" + strings.Join(values, " ")
}

// defaultRowSchemas declares the row shape of every importable model. Foreign key columns are
// declared under their sheet name ("facility") and rewritten to the id column once resolved.
func defaultRowSchemas() map[string]RowSchema {
	schemas := []RowSchema{
		schema(baseSchema, idField),
		schema("ReferenceData", idField, codeField, nameField, visibility,
			Field{Name: "type"},
		),
		schema("User", idField,
			Field{Name: "email", Required: true, Rules: "email"},
			Field{Name: "displayName", Required: true},
			Field{Name: "role", Default: "practitioner"},
			Field{Name: "password"},
			Field{Name: "phoneNumber"},
			visibility,
		),
		schema("Role", idField, nameField),
		schema("Permission", idField,
			Field{Name: "role", Required: true},
			Field{Name: "verb", Required: true},
			Field{Name: "noun", Required: true},
			Field{Name: "objectId"},
			Field{Name: "yCell", Required: true, Rules: "yn_cell", Virtual: true},
		),
		schema("Facility", idField, codeField, nameField,
			Field{Name: "email", Rules: "email"},
			Field{Name: "contactNumber"},
			Field{Name: "streetAddress"},
			Field{Name: "cityTown"},
			visibility,
		),
		schema("Department", idField, codeField, nameField,
			Field{Name: "facility", Required: true},
			visibility,
		),
		schema("LocationGroup", idField, codeField, nameField,
			Field{Name: "facility", Required: true},
			visibility,
		),
		schema("Location", idField, codeField, nameField,
			Field{Name: "facility", Required: true},
			Field{Name: "locationGroup"},
			Field{Name: "maxOccupancy", Kind: KindInt, Rules: "max_occupancy"},
			visibility,
		),
		schema("Patient", idField,
			Field{Name: "displayId", Required: true},
			Field{Name: "firstName", Required: true},
			Field{Name: "middleName"},
			Field{Name: "lastName", Required: true},
			Field{Name: "culturalName"},
			Field{Name: "sex", Required: true, Rules: oneOf(string(models.SexMale), string(models.SexFemale), string(models.SexOther))},
			Field{Name: "dateOfBirth", Kind: KindDate, Required: true},
			Field{Name: "village"},
			visibility,
		),
		schema("PatientFieldDefinitionCategory", idField, nameField, visibility),
		schema("PatientFieldDefinition", idField, nameField,
			Field{Name: "fieldType", Required: true, Rules: oneOf(string(models.FieldTypeString), string(models.FieldTypeNumber), string(models.FieldTypeSelect))},
			Field{Name: "options", Kind: KindOptions},
			Field{Name: "category", Required: true},
			visibility,
		),
		schema("LabTestType", idField, codeField, nameField,
			Field{Name: "unit"},
			Field{Name: "resultType", Rules: oneOf(string(models.LabResultNumber), string(models.LabResultFreeText), string(models.LabResultSelect)), Default: string(models.LabResultNumber)},
			Field{Name: "labTestCategory", Required: true},
			sensitiveFlag,
			Field{Name: "maleMin", Kind: KindDecimal},
			Field{Name: "maleMax", Kind: KindDecimal},
			Field{Name: "femaleMin", Kind: KindDecimal},
			Field{Name: "femaleMax", Kind: KindDecimal},
			visibility,
		),
		schema("LabTestPanel", idField, codeField, nameField,
			Field{Name: "externalCode"},
			Field{Name: "category", Required: true},
			Field{Name: "testTypesInPanel", Kind: KindOptions},
			visibility,
		),
		schema("LabTestPanelLabTestType", idField,
			Field{Name: "labTestPanel", Required: true},
			Field{Name: "labTestType", Required: true},
			Field{Name: "order", Kind: KindInt, Rules: "min=0", Default: 0},
		),
		schema("TranslatedString",
			Field{Name: "stringId", Required: true, Rules: "code_format"},
			Field{Name: "language", Required: true},
			Field{Name: "text"},
		),
		schema("Program", idField, codeField, nameField),
		schema("Survey", idField, codeField, nameField,
			Field{Name: "program", Required: true},
			Field{Name: "surveyType", Default: string(models.SurveyTypePrograms), Rules: oneOf(
				string(models.SurveyTypePrograms),
				string(models.SurveyTypeReferral),
				string(models.SurveyTypeObsolete),
				string(models.SurveyTypeVitals),
				string(models.SurveyTypeSimpleChart),
				string(models.SurveyTypeComplexChart),
				string(models.SurveyTypeComplexChartCore),
			)},
			sensitiveFlag,
			visibility,
		),
		schema("ProgramDataElement", derivedID, codeField,
			Field{Name: "name"},
			Field{Name: "type", Required: true, Rules: oneOf(models.ProgramDataElementTypes...)},
			Field{Name: "defaultText"},
			Field{Name: "defaultOptions", Kind: KindOptions},
		),
		schema("SurveyScreenComponent", derivedID,
			Field{Name: "surveyId", Required: true},
			Field{Name: "dataElementId", Required: true},
			Field{Name: "screenIndex", Kind: KindInt, Rules: "min=0", Default: 0},
			Field{Name: "componentIndex", Kind: KindInt, Rules: "min=0", Default: 0},
			Field{Name: "text"},
			Field{Name: "detail"},
			Field{Name: "options", Kind: KindOptions},
			Field{Name: "config"},
			Field{Name: "visible", Kind: KindBool, Default: true},
		),
		schema("ProgramRegistry", idField, codeField, nameField,
			Field{Name: "program", Required: true},
			Field{Name: "currentlyAtType", Required: true, Rules: oneOf(string(models.CurrentlyAtVillage), string(models.CurrentlyAtFacility))},
			visibility,
		),
	}

	out := make(map[string]RowSchema, len(schemas))
	for _, s := range schemas {
		out[s.Name] = s
	}
	return out
}

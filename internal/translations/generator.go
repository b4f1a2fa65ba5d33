// Package translations derives default-language translated strings from imported rows.
package translations

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/sheets"
)

const DefaultPrefix = "refData"

// TranslatableType lists where a data type keeps its translatable text
type TranslatableType struct {
	Fields       []string // more than one field gives field-qualified string ids
	OptionsField string
}

// Registry maps data types to their translatable fields
type Registry map[string]TranslatableType

// DefaultRegistry returns a fresh registry covering every translatable data type
func DefaultRegistry() Registry {
	r := Registry{
		"facility":                {Fields: []string{"name"}},
		"department":              {Fields: []string{"name"}},
		"locationGroup":           {Fields: []string{"name"}},
		"location":                {Fields: []string{"name"}},
		"labTestType":             {Fields: []string{"name"}},
		"labTestPanel":            {Fields: []string{"name"}},
		"patientFieldDefCategory": {Fields: []string{"name"}},
		"patientFieldDefinition":  {Fields: []string{"name"}, OptionsField: "options"},
		"program":                 {Fields: []string{"name"}},
		"survey":                  {Fields: []string{"name"}},
		"programRegistry":         {Fields: []string{"name"}},
		"programDataElement":      {Fields: []string{"name"}, OptionsField: "defaultOptions"},
		"surveyScreenComponent":   {Fields: []string{"text", "detail"}},
	}
	for _, refType := range models.ReferenceTypes {
		r[refType] = TranslatableType{Fields: []string{"name"}}
	}
	return r
}

// Derivation is the set of translated string writes implied by one row
type Derivation struct {
	Upserts   []models.TranslatedString
	Deletions []string
}

func (d Derivation) IsEmpty() bool {
	return len(d.Upserts) == 0 && len(d.Deletions) == 0
}

// Generator derives translations in the default language. It keeps its own copy of the
// registry so callers may not mutate it afterwards.
type Generator struct {
	prefix   string
	language string
	registry Registry
}

func NewGenerator(prefix, language string, registry Registry) *Generator {
	copied := make(Registry, len(registry))
	for k, v := range registry {
		copied[k] = TranslatableType{
			Fields:       append([]string(nil), v.Fields...),
			OptionsField: v.OptionsField,
		}
	}
	return &Generator{prefix: prefix, language: language, registry: copied}
}

// Language is the language code of every derived record
func (g *Generator) Language() string {
	return g.language
}

// IsTranslatable reports whether a data type has registered text fields
func (g *Generator) IsTranslatable(dataType string) bool {
	_, ok := g.registry[dataType]
	return ok
}

// StringID builds the id of a single-field type's text
func (g *Generator) StringID(dataType, entityID string) string {
	return fmt.Sprintf("%s.%s.%s", g.prefix, dataType, entityID)
}

// FieldStringID builds the id of one field of a multi-field type
func (g *Generator) FieldStringID(dataType, field, entityID string) string {
	return fmt.Sprintf("%s.%s.%s.%s", g.prefix, dataType, field, entityID)
}

// OptionStringID builds the id of one option of an option-carrying type
func (g *Generator) OptionStringID(dataType, option, entityID string) string {
	return fmt.Sprintf("%s.%s.%s.%s", g.prefix, dataType, sheets.ToCamel(option), entityID)
}

// Derive computes the upserts and deletions for one row's values. Identical input always
// produces identical output.
func (g *Generator) Derive(dataType string, values map[string]interface{}) Derivation {
	var d Derivation

	spec, ok := g.registry[dataType]
	if !ok {
		return d
	}
	entityID := textValue(values["id"])
	if entityID == "" {
		return d
	}

	for _, field := range spec.Fields {
		stringID := g.StringID(dataType, entityID)
		if len(spec.Fields) > 1 {
			stringID = g.FieldStringID(dataType, field, entityID)
		}

		text := textValue(values[field])
		if text == "" {
			d.Deletions = append(d.Deletions, stringID)
			continue
		}
		d.Upserts = append(d.Upserts, g.record(stringID, text))
	}

	if spec.OptionsField != "" {
		for _, option := range NormaliseOptions(values[spec.OptionsField]) {
			d.Upserts = append(d.Upserts, g.record(g.OptionStringID(dataType, option, entityID), option))
		}
	}

	return d
}

func (g *Generator) record(stringID, text string) models.TranslatedString {
	return models.TranslatedString{
		StringID: stringID,
		Language: g.language,
		Text:     text,
	}
}

func textValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case *string:
		if t == nil {
			return ""
		}
		return strings.TrimSpace(*t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

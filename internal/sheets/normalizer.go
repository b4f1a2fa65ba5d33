// Package sheets maps human worksheet titles onto canonical data type identifiers.
package sheets

import (
	"github.com/jinzhu/inflection"
)

// DefaultOverrides returns the titles whose computed identifier is wrong or historically
// different from the data type they carry. A fresh map is returned on every call.
func DefaultOverrides() map[string]string {
	return map[string]string{
		"procedure":                      "procedureType",
		"vaccineSchedule":                "scheduledVaccine",
		"translation":                    "translatedString",
		"permissionMatrix":               "permission",
		"patientFieldDefinitionCategory": "patientFieldDefCategory",
		"labTestPanelTestType":           "labTestPanelLabTestType",
		"referenceDatum":                 "referenceData",
	}
}

// DefaultHintedTypes are data types whose worksheets are titled after their content (a survey
// name, for instance) so the caller's hint has to win over the title.
func DefaultHintedTypes() []string {
	return []string{"programDataElement", "surveyScreenComponent"}
}

// Normalizer turns worksheet titles into data type identifiers. It holds no mutable state:
// the configuration is copied at construction.
type Normalizer struct {
	overrides map[string]string
	hinted    map[string]struct{}
}

func NewNormalizer(overrides map[string]string, hintedTypes []string) *Normalizer {
	n := &Normalizer{
		overrides: make(map[string]string, len(overrides)),
		hinted:    make(map[string]struct{}, len(hintedTypes)),
	}
	for k, v := range overrides {
		n.overrides[k] = v
	}
	for _, t := range hintedTypes {
		n.hinted[t] = struct{}{}
	}
	return n
}

// NewDefaultNormalizer builds a normalizer from DefaultOverrides and DefaultHintedTypes
func NewDefaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultOverrides(), DefaultHintedTypes())
}

// Normalise maps a sheet title to its data type. hint may be empty.
func (n *Normalizer) Normalise(title, hint string) string {
	if _, ok := n.hinted[hint]; ok {
		return hint
	}

	words := SplitWords(title)
	for i, w := range words {
		words[i] = inflection.Singular(w)
	}
	name := CamelCase(words)

	if override, ok := n.overrides[name]; ok {
		return override
	}
	return name
}

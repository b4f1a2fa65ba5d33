package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Patient Field Def Categories", []string{"patient", "field", "def", "categories"}},
		{"patientFieldDefCategories", []string{"patient", "field", "def", "categories"}},
		{"  lab_test-panel ", []string{"lab", "test", "panel"}},
		{"ICDCode", []string{"icd", "code"}},
		{"icd10Code", []string{"icd10", "code"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitWords(tt.in))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Diagnosis", Title("diagnosis"))
	assert.Equal(t, "Patient Field Def Category", Title("patientFieldDefCategory"))
	assert.Equal(t, "Lab Test Panel", Title("labTestPanel"))
	assert.Equal(t, "Translated String", Title("translatedString"))
}

func TestNormalise(t *testing.T) {
	n := NewDefaultNormalizer()

	tests := []struct {
		name  string
		title string
		hint  string
		want  string
	}{
		{"plural title", "Patient Field Def Categories", "", "patientFieldDefCategory"},
		{"camel plural", "patientFieldDefCategories", "", "patientFieldDefCategory"},
		{"singular title", "Patient Field Def Category", "", "patientFieldDefCategory"},
		{"ies plural", "Facilities", "", "facility"},
		{"sis word kept", "Diagnosis", "", "diagnosis"},
		{"ses plural", "Diagnoses", "", "diagnosis"},
		{"upper case", "LAB TEST PANELS", "", "labTestPanel"},
		{"override", "Procedures", "", "procedureType"},
		{"historical export title", "Patient Field Definition Categories", "", "patientFieldDefCategory"},
		{"hint wins for hinted type", "Vitals", "programDataElement", "programDataElement"},
		{"hint ignored otherwise", "Villages", "survey", "village"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalise(tt.title, tt.hint))
		})
	}
}

func TestNormaliseIsIdempotent(t *testing.T) {
	n := NewDefaultNormalizer()
	for _, title := range []string{"Patient Field Def Categories", "Lab Test Types", "Allergies", "Translated Strings", "Users"} {
		once := n.Normalise(title, "")
		assert.Equal(t, once, n.Normalise(once, ""), title)
		assert.Equal(t, once, n.Normalise(title, ""), "repeated call for %s", title)
	}
}

func TestNormalizerCopiesConfiguration(t *testing.T) {
	overrides := map[string]string{"thing": "widget"}
	n := NewNormalizer(overrides, nil)
	overrides["thing"] = "gadget"

	assert.Equal(t, "widget", n.Normalise("Things", ""))
}

package models

// Entity describes how the importer addresses one model's table
type Entity struct {
	Name      string
	KeyFields []string // camelCase field names forming the lookup key
	Named     bool     // has a name column usable for foreign key lookups
	Deletable bool     // rows may be soft-deleted through an import
	New       func() interface{}
}

var entities = map[string]Entity{
	"ReferenceData":                  {Name: "ReferenceData", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &ReferenceData{} }},
	"User":                           {Name: "User", KeyFields: []string{"id"}, New: func() interface{} { return &User{} }},
	"Role":                           {Name: "Role", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &Role{} }},
	"Permission":                     {Name: "Permission", KeyFields: []string{"id"}, Deletable: true, New: func() interface{} { return &Permission{} }},
	"Facility":                       {Name: "Facility", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &Facility{} }},
	"Department":                     {Name: "Department", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &Department{} }},
	"LocationGroup":                  {Name: "LocationGroup", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &LocationGroup{} }},
	"Location":                       {Name: "Location", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &Location{} }},
	"Patient":                        {Name: "Patient", KeyFields: []string{"id"}, New: func() interface{} { return &Patient{} }},
	"PatientFieldDefinitionCategory": {Name: "PatientFieldDefinitionCategory", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &PatientFieldDefinitionCategory{} }},
	"PatientFieldDefinition":         {Name: "PatientFieldDefinition", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &PatientFieldDefinition{} }},
	"LabTestType":                    {Name: "LabTestType", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &LabTestType{} }},
	"LabTestPanel":                   {Name: "LabTestPanel", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &LabTestPanel{} }},
	"LabTestPanelLabTestType":        {Name: "LabTestPanelLabTestType", KeyFields: []string{"id"}, New: func() interface{} { return &LabTestPanelLabTestType{} }},
	"Program":                        {Name: "Program", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &Program{} }},
	"Survey":                         {Name: "Survey", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &Survey{} }},
	"ProgramDataElement":             {Name: "ProgramDataElement", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &ProgramDataElement{} }},
	"SurveyScreenComponent":          {Name: "SurveyScreenComponent", KeyFields: []string{"id"}, Deletable: true, New: func() interface{} { return &SurveyScreenComponent{} }},
	"ProgramRegistry":                {Name: "ProgramRegistry", KeyFields: []string{"id"}, Named: true, New: func() interface{} { return &ProgramRegistry{} }},
	"TranslatedString":               {Name: "TranslatedString", KeyFields: []string{"stringId", "language"}, Deletable: true, New: func() interface{} { return &TranslatedString{} }},
}

// LookupEntity returns the entity registered under a model name
func LookupEntity(name string) (Entity, bool) {
	e, ok := entities[name]
	return e, ok
}

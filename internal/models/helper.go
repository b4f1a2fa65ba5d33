package models

type ExportRequest struct {
	IncludedDataTypes    map[int]string `json:"includedDataTypes" validate:"required,min=1"`
	IncludeReferenceData bool           `json:"includeReferenceData"`
}

// AllModels lists every table the service reads or writes, for migrations
func AllModels() []interface{} {
	return []interface{}{
		&ReferenceData{},
		&User{},
		&Role{},
		&Permission{},
		&Facility{},
		&Department{},
		&LocationGroup{},
		&Location{},
		&Patient{},
		&PatientFieldDefinitionCategory{},
		&PatientFieldDefinition{},
		&LabTestType{},
		&LabTestPanel{},
		&LabTestPanelLabTestType{},
		&Program{},
		&Survey{},
		&ProgramDataElement{},
		&SurveyScreenComponent{},
		&ProgramRegistry{},
		&PatientProgramRegistration{},
		&TranslatedString{},
		&LocalSystemFact{},
		&ImportJob{},
	}
}

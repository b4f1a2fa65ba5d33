package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SurveyType string

const (
	SurveyTypePrograms         SurveyType = "programs"
	SurveyTypeReferral         SurveyType = "referral"
	SurveyTypeObsolete         SurveyType = "obsolete"
	SurveyTypeVitals           SurveyType = "vitals"
	SurveyTypeSimpleChart      SurveyType = "simpleChart"
	SurveyTypeComplexChart     SurveyType = "complexChart"
	SurveyTypeComplexChartCore SurveyType = "complexChartCore"
)

// IsCharting reports whether the survey type is one of the charting variants
func (t SurveyType) IsCharting() bool {
	return t == SurveyTypeSimpleChart || t == SurveyTypeComplexChart || t == SurveyTypeComplexChartCore
}

type CurrentlyAtType string

const (
	CurrentlyAtVillage  CurrentlyAtType = "village"
	CurrentlyAtFacility CurrentlyAtType = "facility"
)

type Program struct {
	ID   string `json:"id" gorm:"primaryKey;size:255"`
	Code string `json:"code" gorm:"not null;size:255"`
	Name string `json:"name" gorm:"not null;size:255"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Program) TableName() string {
	return "programs"
}

type Survey struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	ProgramID        string           `json:"programId" gorm:"not null;index;size:255"`
	SurveyType       SurveyType       `json:"surveyType" gorm:"not null;default:programs;size:30"`
	IsSensitive      bool             `json:"isSensitive" gorm:"default:false"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Program *Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
}

func (Survey) TableName() string {
	return "surveys"
}

type ProgramDataElement struct {
	ID             string         `json:"id" gorm:"primaryKey;size:255"`
	Code           string         `json:"code" gorm:"not null;index;size:255"`
	Name           string         `json:"name" gorm:"size:255"`
	Type           string         `json:"type" gorm:"not null;size:50"`
	DefaultText    *string        `json:"defaultText" gorm:"type:text"`
	DefaultOptions datatypes.JSON `json:"defaultOptions" gorm:"type:jsonb"` // []string

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ProgramDataElement) TableName() string {
	return "program_data_elements"
}

type SurveyScreenComponent struct {
	ID             string         `json:"id" gorm:"primaryKey;size:255"`
	SurveyID       string         `json:"surveyId" gorm:"not null;index;size:255"`
	DataElementID  string         `json:"dataElementId" gorm:"not null;index;size:255"`
	ScreenIndex    int            `json:"screenIndex"`
	ComponentIndex int            `json:"componentIndex"`
	Text           *string        `json:"text" gorm:"type:text"`
	Detail         *string        `json:"detail" gorm:"type:text"`
	Options        datatypes.JSON `json:"options" gorm:"type:jsonb"`
	Config         datatypes.JSON `json:"config" gorm:"type:jsonb"`
	Visible        bool           `json:"visible" gorm:"default:true"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	DataElement *ProgramDataElement `json:"dataElement,omitempty" gorm:"foreignKey:DataElementID"`
}

func (SurveyScreenComponent) TableName() string {
	return "survey_screen_components"
}

type ProgramRegistry struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	ProgramID        string           `json:"programId" gorm:"not null;index;size:255"`
	CurrentlyAtType  CurrentlyAtType  `json:"currentlyAtType" gorm:"not null;size:20"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ProgramRegistry) TableName() string {
	return "program_registries"
}

// PatientProgramRegistration is owned by the clinical side; the importer only counts it
type PatientProgramRegistration struct {
	ID                string  `json:"id" gorm:"primaryKey;size:255"`
	PatientID         string  `json:"patientId" gorm:"not null;index;size:255"`
	ProgramRegistryID string  `json:"programRegistryId" gorm:"not null;index;size:255"`
	VillageID         *string `json:"villageId" gorm:"size:255"`
	FacilityID        *string `json:"facilityId" gorm:"size:255"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (PatientProgramRegistration) TableName() string {
	return "patient_program_registrations"
}

// ProgramDataElementTypes lists the question types a survey sheet may use
var ProgramDataElementTypes = []string{
	"Number", "Text", "MultilineText", "Select", "MultiSelect", "Radio", "Date", "DateTime",
	"SubmissionDate", "Checkbox", "CalculatedQuestion", "Result", "Instruction", "PatientData",
	"Autocomplete", "Photo", "UserData", "PatientIssue", "Geolocate", "SurveyLink", "SurveyAnswer",
	"ComplexChartInstanceName", "ComplexChartDate", "ComplexChartType", "ComplexChartSubtype",
}

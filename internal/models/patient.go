package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type Patient struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	DisplayID        string           `json:"displayId" gorm:"not null;index;size:255"`
	FirstName        string           `json:"firstName" gorm:"not null;size:255"`
	MiddleName       *string          `json:"middleName" gorm:"size:255"`
	LastName         string           `json:"lastName" gorm:"not null;size:255"`
	CulturalName     *string          `json:"culturalName" gorm:"size:255"`
	Sex              Sex              `json:"sex" gorm:"not null;size:10"`
	DateOfBirth      time.Time        `json:"dateOfBirth" gorm:"type:date"`
	VillageID        *string          `json:"villageId" gorm:"index;size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Village *ReferenceData `json:"village,omitempty" gorm:"foreignKey:VillageID"`
}

func (Patient) TableName() string {
	return "patients"
}

type PatientFieldDefinitionCategory struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (PatientFieldDefinitionCategory) TableName() string {
	return "patient_field_definition_categories"
}

type PatientFieldType string

const (
	FieldTypeString PatientFieldType = "string"
	FieldTypeNumber PatientFieldType = "number"
	FieldTypeSelect PatientFieldType = "select"
)

type PatientFieldDefinition struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	FieldType        PatientFieldType `json:"fieldType" gorm:"not null;size:20"`
	Options          datatypes.JSON   `json:"options" gorm:"type:jsonb"` // []string
	CategoryID       string           `json:"categoryId" gorm:"not null;index;size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Category *PatientFieldDefinitionCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (PatientFieldDefinition) TableName() string {
	return "patient_field_definitions"
}

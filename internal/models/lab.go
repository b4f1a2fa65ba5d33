package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LabTestResultType string

const (
	LabResultNumber   LabTestResultType = "Number"
	LabResultFreeText LabTestResultType = "FreeText"
	LabResultSelect   LabTestResultType = "Select"
)

type LabTestType struct {
	ID                string              `json:"id" gorm:"primaryKey;size:255"`
	Code              string              `json:"code" gorm:"not null;size:255"`
	Name              string              `json:"name" gorm:"not null;size:255"`
	Unit              *string             `json:"unit" gorm:"size:50"`
	ResultType        LabTestResultType   `json:"resultType" gorm:"default:Number;size:20"`
	LabTestCategoryID string              `json:"labTestCategoryId" gorm:"not null;index;size:255"`
	IsSensitive       bool                `json:"isSensitive" gorm:"default:false"`
	MaleMin           decimal.NullDecimal `json:"maleMin" gorm:"type:numeric"`
	MaleMax           decimal.NullDecimal `json:"maleMax" gorm:"type:numeric"`
	FemaleMin         decimal.NullDecimal `json:"femaleMin" gorm:"type:numeric"`
	FemaleMax         decimal.NullDecimal `json:"femaleMax" gorm:"type:numeric"`
	VisibilityStatus  VisibilityStatus    `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Category *ReferenceData `json:"category,omitempty" gorm:"foreignKey:LabTestCategoryID"`
}

func (LabTestType) TableName() string {
	return "lab_test_types"
}

type LabTestPanel struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	ExternalCode     *string          `json:"externalCode" gorm:"size:255"`
	CategoryID       string           `json:"categoryId" gorm:"not null;index;size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	LabTestTypes []LabTestPanelLabTestType `json:"labTestTypes,omitempty" gorm:"foreignKey:LabTestPanelID"`
}

func (LabTestPanel) TableName() string {
	return "lab_test_panels"
}

// LabTestPanelLabTestType links a panel to one of its test types
type LabTestPanelLabTestType struct {
	ID             string `json:"id" gorm:"primaryKey;size:255"`
	LabTestPanelID string `json:"labTestPanelId" gorm:"not null;index;size:255"`
	LabTestTypeID  string `json:"labTestTypeId" gorm:"not null;index;size:255"`
	Order          int    `json:"order" gorm:"default:0"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (LabTestPanelLabTestType) TableName() string {
	return "lab_test_panel_lab_test_types"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type VisibilityStatus string

const (
	VisibilityCurrent    VisibilityStatus = "current"
	VisibilityHistorical VisibilityStatus = "historical"
	VisibilityMerged     VisibilityStatus = "merged"
)

// Reference data subtypes stored in the shared reference_data table
const (
	RefTypeAllergy         = "allergy"
	RefTypeCarePlan        = "carePlan"
	RefTypeDiagnosis       = "diagnosis"
	RefTypeDrug            = "drug"
	RefTypeDivision        = "division"
	RefTypeSubdivision     = "subdivision"
	RefTypeVillage         = "village"
	RefTypeEthnicity       = "ethnicity"
	RefTypeOccupation      = "occupation"
	RefTypeImagingType     = "imagingType"
	RefTypeLabTestCategory = "labTestCategory"
	RefTypeProcedureType   = "procedureType"
	RefTypeTriageReason    = "triageReason"
	RefTypeReligion        = "religion"
	RefTypeNationality     = "nationality"
)

// ReferenceTypes lists every importable reference data subtype in export order
var ReferenceTypes = []string{
	RefTypeAllergy,
	RefTypeCarePlan,
	RefTypeDiagnosis,
	RefTypeDrug,
	RefTypeDivision,
	RefTypeSubdivision,
	RefTypeVillage,
	RefTypeEthnicity,
	RefTypeOccupation,
	RefTypeImagingType,
	RefTypeLabTestCategory,
	RefTypeProcedureType,
	RefTypeTriageReason,
	RefTypeReligion,
	RefTypeNationality,
}

// IsReferenceType reports whether dataType is a reference data subtype
func IsReferenceType(dataType string) bool {
	for _, t := range ReferenceTypes {
		if t == dataType {
			return true
		}
	}
	return false
}

type ReferenceData struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Type             string           `json:"type" gorm:"not null;index;size:100"`
	Name             string           `json:"name" gorm:"not null;size:500"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`
	SystemRequired   bool             `json:"systemRequired" gorm:"default:false"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ReferenceData) TableName() string {
	return "reference_data"
}

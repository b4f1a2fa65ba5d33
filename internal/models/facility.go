package models

import (
	"time"

	"gorm.io/gorm"
)

type Facility struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	Email            *string          `json:"email" gorm:"size:255"`
	ContactNumber    *string          `json:"contactNumber" gorm:"size:50"`
	StreetAddress    *string          `json:"streetAddress" gorm:"size:255"`
	CityTown         *string          `json:"cityTown" gorm:"size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Facility) TableName() string {
	return "facilities"
}

type Department struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	FacilityID       string           `json:"facilityId" gorm:"not null;index;size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Facility *Facility `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
}

func (Department) TableName() string {
	return "departments"
}

type LocationGroup struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	FacilityID       string           `json:"facilityId" gorm:"not null;index;size:255"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Facility *Facility `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
}

func (LocationGroup) TableName() string {
	return "location_groups"
}

type Location struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Code             string           `json:"code" gorm:"not null;size:255"`
	Name             string           `json:"name" gorm:"not null;size:255"`
	FacilityID       string           `json:"facilityId" gorm:"not null;index;size:255"`
	LocationGroupID  *string          `json:"locationGroupId" gorm:"index;size:255"`
	MaxOccupancy     *int             `json:"maxOccupancy"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Facility      *Facility      `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
	LocationGroup *LocationGroup `json:"locationGroup,omitempty" gorm:"foreignKey:LocationGroupID"`
}

func (Location) TableName() string {
	return "locations"
}

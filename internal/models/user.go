package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID               string           `json:"id" gorm:"primaryKey;size:255"`
	Email            string           `json:"email" gorm:"uniqueIndex;not null;size:255"`
	DisplayName      string           `json:"displayName" gorm:"not null;size:255"`
	Role             string           `json:"role" gorm:"not null;size:255"`
	Password         *string          `json:"-" gorm:"size:255"`
	PhoneNumber      *string          `json:"phoneNumber" gorm:"size:20"`
	VisibilityStatus VisibilityStatus `json:"visibilityStatus" gorm:"default:current;size:20"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID   string `json:"id" gorm:"primaryKey;size:255"`
	Name string `json:"name" gorm:"not null;size:255"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is one grant of verb+noun (optionally scoped to an object) to a role.
// A soft-deleted permission is a revoked grant.
type Permission struct {
	ID       string  `json:"id" gorm:"primaryKey;size:255"`
	RoleID   string  `json:"roleId" gorm:"not null;index;size:255"`
	Verb     string  `json:"verb" gorm:"not null;size:50"`
	Noun     string  `json:"noun" gorm:"not null;size:100"`
	ObjectID *string `json:"objectId" gorm:"size:255"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (Permission) TableName() string {
	return "permissions"
}

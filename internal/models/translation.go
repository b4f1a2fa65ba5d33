package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultLanguageCode = "en"

type TranslatedString struct {
	StringID string `json:"stringId" gorm:"primaryKey;size:255"`
	Language string `json:"language" gorm:"primaryKey;size:20"`
	Text     string `json:"text" gorm:"type:text"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (TranslatedString) TableName() string {
	return "translated_strings"
}

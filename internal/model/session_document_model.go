package model

import (
	"time"

	"gorm.io/datatypes"
)

// SessionDocument persists the session aggregate. Metadata and Vendors are
// JSONB maps merged one top-level key at a time under a row lock, never
// overwritten wholesale.
type SessionDocument struct {
	Id                string         `gorm:"type:varchar(64);primaryKey"`
	JobText           string         `gorm:"type:text"`
	CvText            string         `gorm:"type:text"`
	StyleInstructions string         `gorm:"type:text"`
	SearchResult      datatypes.JSON `gorm:"type:jsonb"`
	Metadata          datatypes.JSON `gorm:"type:jsonb"`
	Vendors           datatypes.JSON `gorm:"type:jsonb"`
	ExpiresAt         time.Time      `gorm:"index"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
}

func (SessionDocument) TableName() string {
	return "session_documents"
}

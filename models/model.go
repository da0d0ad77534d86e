package models

import (
	"time"

	"gorm.io/gorm"
)

// Model is a read-mostly display profile a screen is rendered against.
type Model struct {
	gorm.Model
	Name        string     `json:"name" gorm:"not null;uniqueIndex"`
	Label       string     `json:"label" gorm:"not null"`
	Width       int        `json:"width" gorm:"not null"`
	Height      int        `json:"height" gorm:"not null"`
	BitDepth    int        `json:"bit_depth" gorm:"not null;default:1"`
	Rotation    int        `json:"rotation" gorm:"not null;default:0"`
	MimeType    string     `json:"mime_type" gorm:"not null;default:'image/png'"`
	PublishedAt *time.Time `json:"published_at"`
}

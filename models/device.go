package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Device is a physical display unit polling for rendered content.
type Device struct {
	gorm.Model
	ModelID         uint    `json:"model_id" gorm:"not null;index"`
	FriendlyID      string  `json:"friendly_id" gorm:"not null;uniqueIndex"`
	Label           string  `json:"label" gorm:"not null"`
	MACAddress      string  `json:"mac_address" gorm:"not null;uniqueIndex"`
	APIKey          string  `json:"api_key"`
	Battery         float64 `json:"battery"`
	WiFi            int     `json:"wifi"`
	FirmwareVersion string  `json:"firmware_version"`
	FirmwareUpdate  bool    `json:"firmware_update" gorm:"not null;default:false"`
	RefreshRate     int     `json:"refresh_rate" gorm:"not null;default:900"`
	ImageTimeout    int     `json:"image_timeout" gorm:"not null;default:0"`
	Proxy           bool    `json:"proxy" gorm:"not null;default:false"`

	// Relationship
	Profile Model `gorm:"foreignKey:ModelID" json:"profile,omitempty"`
}

// SystemName answers the device's stable screen name for a given kind,
// e.g. "abc123-error".
func (d *Device) SystemName(kind string) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(d.FriendlyID), kind)
}

// SystemLabel answers the device's display label for a given kind,
// e.g. "Lobby Error".
func (d *Device) SystemLabel(kind string) string {
	return fmt.Sprintf("%s %s", d.Label, kind)
}

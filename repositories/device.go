package repositories

import (
	"errors"

	"github.com/perchdisplay/perch/models"
	"gorm.io/gorm"
)

// Device persists fleet records.
type Device struct {
	db *gorm.DB
}

func NewDevice(db *gorm.DB) *Device {
	return &Device{db: db}
}

// All answers every device ordered by creation.
func (r *Device) All() ([]models.Device, error) {
	var records []models.Device
	if err := r.db.Order("created_at asc").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// Find answers the device with the given id, or nil when unknown.
func (r *Device) Find(id uint) (*models.Device, error) {
	var record models.Device
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// FindByMACAddress answers the device with the given MAC, or nil when
// unknown.
func (r *Device) FindByMACAddress(mac string) (*models.Device, error) {
	var record models.Device
	if err := r.db.Where("mac_address = ?", mac).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// Upsert creates the device or updates the existing record sharing its
// MAC address.
func (r *Device) Upsert(device *models.Device) (*models.Device, error) {
	existing, err := r.FindByMACAddress(device.MACAddress)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := r.db.Create(device).Error; err != nil {
			return nil, err
		}
		return device, nil
	}

	device.ID = existing.ID
	device.CreatedAt = existing.CreatedAt
	if err := r.db.Model(existing).Updates(device).Error; err != nil {
		return nil, err
	}

	return device, nil
}

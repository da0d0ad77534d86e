package repositories

import (
	"errors"

	"github.com/perchdisplay/perch/models"
	"gorm.io/gorm"
)

// Model reads display profiles. Profiles are reference data; the screen
// pipeline never mutates them.
type Model struct {
	db *gorm.DB
}

func NewModel(db *gorm.DB) *Model {
	return &Model{db: db}
}

// All answers every model ordered by publish date.
func (r *Model) All() ([]models.Model, error) {
	var records []models.Model
	if err := r.db.Order("published_at asc").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// Find answers the model with the given id, or nil when unknown.
func (r *Model) Find(id uint) (*models.Model, error) {
	var record models.Model
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// FindByName answers the model with the given name, or nil when unknown.
func (r *Model) FindByName(name string) (*models.Model, error) {
	var record models.Model
	if err := r.db.Where("name = ?", name).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// FindOrCreate answers the model with the given name, creating it from
// the defaults when missing.
func (r *Model) FindOrCreate(name string, defaults models.Model) (*models.Model, error) {
	record, err := r.FindByName(name)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	defaults.Name = name
	if err := r.db.Create(&defaults).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.FindByName(name)
		}
		return nil, err
	}

	return &defaults, nil
}

// FindByDimensions answers the model matching a device's reported panel
// size. Only the og_png profile can be resolved this way until upstream
// model lookups can tell company and community panels apart.
func (r *Model) FindByDimensions(width, height int) (*models.Model, error) {
	if width != 800 {
		return nil, nil
	}

	var record models.Model
	err := r.db.Where("name = ? AND width = ? AND height = ?", "og_png", width, height).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// Search answers models whose label contains the value, case insensitive.
func (r *Model) Search(label string) ([]models.Model, error) {
	var records []models.Model
	err := r.db.Where("lower(label) LIKE lower(?)", "%"+label+"%").
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

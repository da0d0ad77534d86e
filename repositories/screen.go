package repositories

import (
	"errors"
	"io"

	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/screens"
	"github.com/perchdisplay/perch/storage"
	"gorm.io/gorm"
)

// Notifier receives the name of every screen whose image was committed.
type Notifier interface {
	Publish(name string)
}

// Screen owns uniqueness-by-name enforcement, create-versus-replace
// branching and the blob deletion cascade.
type Screen struct {
	db       *gorm.DB
	store    storage.Store
	notifier Notifier
}

// NewScreen builds a screen repository. The notifier may be nil.
func NewScreen(db *gorm.DB, store storage.Store, notifier Notifier) *Screen {
	return &Screen{db: db, store: store, notifier: notifier}
}

// All answers every screen, most recently updated first.
func (r *Screen) All() ([]models.Screen, error) {
	var records []models.Screen
	if err := r.db.Order("updated_at desc").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// Find answers the screen with the given id, or nil when unknown.
func (r *Screen) Find(id uint) (*models.Screen, error) {
	var record models.Screen
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// FindByName answers the screen with the given name, or nil when unknown.
func (r *Screen) FindByName(name string) (*models.Screen, error) {
	var record models.Screen
	if err := r.db.Where("name = ?", name).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// Search answers screens whose label contains the value, case insensitive.
func (r *Screen) Search(label string) ([]models.Screen, error) {
	var records []models.Screen
	err := r.db.Where("lower(label) LIKE lower(?)", "%"+label+"%").
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// CreateWithImage commits the candidate screen, which already carries its
// uploaded attachment, under the mold's name. An unknown name creates a
// row; a known name replaces the existing row's attachment in place
// (detach old blob, adopt new). A uniqueness race is surfaced as
// *NameConflictError and the candidate's blob is destroyed.
func (r *Screen) CreateWithImage(mold *screens.Mold, candidate *models.Screen) (*models.Screen, error) {
	existing, err := r.FindByName(mold.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return r.create(mold, candidate)
	}

	return r.replace(mold, existing, candidate)
}

func (r *Screen) create(mold *screens.Mold, candidate *models.Screen) (*models.Screen, error) {
	candidate.ModelID = mold.ModelID
	candidate.Name = mold.Name
	candidate.Label = mold.Label

	if err := r.db.Create(candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.destroyLoser(mold.Name, candidate)
			return nil, &NameConflictError{Name: mold.Name}
		}
		return nil, err
	}

	r.notify(candidate.Name)
	return candidate, nil
}

// destroyLoser cleans up a candidate that lost the insert race. Identical
// bytes hash to the same key, so when the winner's attachment shares the
// loser's key the blob must survive; only the attachment column is
// cleared then.
func (r *Screen) destroyLoser(name string, candidate *models.Screen) {
	winner, err := r.FindByName(name)
	if err == nil && winner != nil && winner.ImageID() == candidate.ImageID() {
		candidate.ImageData = nil
		return
	}

	_ = candidate.ImageDestroy(r.store)
}

// replace commits the new attachment onto the existing row, then detaches
// the old blob. A failed commit leaves the row and its blob as they were.
// Identical content shares a key, so the old blob is only deleted when
// the keys differ.
func (r *Screen) replace(mold *screens.Mold, existing, candidate *models.Screen) (*models.Screen, error) {
	oldID := existing.ImageID()

	existing.ImageData = candidate.ImageData
	existing.Label = mold.Label
	existing.ModelID = mold.ModelID

	err := r.db.Model(existing).Updates(map[string]interface{}{
		"image_data": existing.ImageData,
		"label":      existing.Label,
		"model_id":   existing.ModelID,
	}).Error
	if err != nil {
		return nil, err
	}

	if oldID != "" && oldID != existing.ImageID() {
		if err := r.store.Delete(oldID); err != nil {
			return nil, err
		}
	}

	r.notify(existing.Name)
	return existing, nil
}

// UpdateImage replaces an existing screen's attachment from a byte stream.
// An unknown name fails with *NotFoundError; it never creates a row.
func (r *Screen) UpdateImage(name string, body io.Reader, filename string) (*models.Screen, error) {
	screen, err := r.FindByName(name)
	if err != nil {
		return nil, err
	}
	if screen == nil {
		return nil, &NotFoundError{Name: name}
	}

	if err := screen.Replace(r.store, body, filename); err != nil {
		return nil, err
	}

	if err := r.db.Model(screen).Update("image_data", screen.ImageData).Error; err != nil {
		return nil, err
	}

	r.notify(name)
	return screen, nil
}

// Delete removes the screen and its blob. An unknown id is a no-op.
func (r *Screen) Delete(id uint) error {
	screen, err := r.Find(id)
	if err != nil {
		return err
	}
	if screen == nil {
		return nil
	}

	if err := screen.ImageDestroy(r.store); err != nil {
		return err
	}

	return r.db.Unscoped().Delete(&models.Screen{}, id).Error
}

func (r *Screen) notify(name string) {
	if r.notifier != nil {
		r.notifier.Publish(name)
	}
}

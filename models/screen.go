package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/perchdisplay/perch/storage"
	"gorm.io/gorm"
)

// Screen is a named display-content record with at most one image
// attachment, serialized into the image_data column.
type Screen struct {
	gorm.Model
	ModelID   uint   `json:"model_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;uniqueIndex"`
	Label     string `json:"label" gorm:"not null"`
	ImageData []byte `json:"image_data,omitempty" gorm:"type:jsonb"`

	// Relationship
	Profile Model `gorm:"foreignKey:ModelID" json:"profile,omitempty"`
}

// Image answers the attachment record, or nil when no image is attached.
func (s *Screen) Image() *Attachment {
	if len(s.ImageData) == 0 {
		return nil
	}

	var attachment Attachment
	if err := json.Unmarshal(s.ImageData, &attachment); err != nil {
		return nil
	}
	if attachment.ID == "" {
		return nil
	}

	return &attachment
}

func (s *Screen) setImage(attachment *Attachment) error {
	data, err := json.Marshal(attachment)
	if err != nil {
		return err
	}

	s.ImageData = data
	return nil
}

func (s *Screen) ImageID() string {
	if attachment := s.Image(); attachment != nil {
		return attachment.ID
	}

	return ""
}

func (s *Screen) ImageName() string {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.Filename
	}

	return ""
}

// ImageNameDated answers the attachment filename with the record's update
// timestamp appended before the extension, for collision-safe renames.
func (s *Screen) ImageNameDated() string {
	name := s.ImageName()
	if name == "" {
		return ""
	}

	extension := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, extension), s.UpdatedAt.Unix(), extension)
}

func (s *Screen) ImageSize() int64 {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.Size
	}

	return 0
}

func (s *Screen) ImageWidth() int {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.Width
	}

	return 0
}

func (s *Screen) ImageHeight() int {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.Height
	}

	return 0
}

func (s *Screen) ImageBitDepth() *int {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.BitDepth
	}

	return nil
}

func (s *Screen) ImageMimeType() string {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.MimeType
	}

	return ""
}

func (s *Screen) ImageChecksum() string {
	if attachment := s.Image(); attachment != nil {
		return attachment.Metadata.Checksum
	}

	return ""
}

// ImageURI answers the blob store URL for the attachment, or empty when
// no image is attached.
func (s *Screen) ImageURI(store storage.Store) string {
	if id := s.ImageID(); id != "" {
		return store.URL(id)
	}

	return ""
}

// ImageOpen answers a reader over the attached blob. The caller closes it.
func (s *Screen) ImageOpen(store storage.Store) (io.ReadCloser, error) {
	id := s.ImageID()
	if id == "" {
		return nil, fmt.Errorf("screen %q has no image", s.Name)
	}

	return store.Get(id)
}

// ImageDestroy deletes the attached blob and clears the attachment column.
// A screen without an attachment is left untouched.
func (s *Screen) ImageDestroy(store storage.Store) error {
	id := s.ImageID()
	if id == "" {
		return nil
	}

	if err := store.Delete(id); err != nil {
		return err
	}

	s.ImageData = nil
	return nil
}

// Upload validates the byte stream, writes it to the blob store under a
// content-derived key and records the attachment. The attachment column is
// only written once the blob is stored, so a failed upload never leaves a
// partial attachment.
func (s *Screen) Upload(store storage.Store, body io.Reader, filename string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	metadata := buildAttachmentMetadata(data, filename)
	if messages := metadata.validate(); len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}

	id := fmt.Sprintf("%s.%s", metadata.Checksum, supportedImageTypes[metadata.MimeType])
	if err := store.Put(id, bytes.NewReader(data)); err != nil {
		return err
	}

	return s.setImage(&Attachment{ID: id, Storage: "store", Metadata: metadata})
}

// Replace uploads the new attachment first, then detaches the old blob.
// A rejected stream leaves the current attachment untouched. When the new
// content hashes to the same key the blob is shared and must not be
// deleted.
func (s *Screen) Replace(store storage.Store, body io.Reader, filename string) error {
	oldID := s.ImageID()

	if err := s.Upload(store, body, filename); err != nil {
		return err
	}

	if oldID != "" && oldID != s.ImageID() {
		return store.Delete(oldID)
	}

	return nil
}

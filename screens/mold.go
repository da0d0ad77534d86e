package screens

import (
	"fmt"
	"io"

	"github.com/perchdisplay/perch/models"
)

// Mold is a transient build instruction: render content for one model
// under a given name and label. It is owned by a single pipeline run and
// carries the scratch paths derived during that run.
type Mold struct {
	ModelID    uint
	Name       string
	Label      string
	Content    string
	Profile    *models.Model
	InputPath  string
	OutputPath string
}

// NewMold builds a mold for the given display profile.
func NewMold(profile *models.Model, name, label, content string) *Mold {
	mold := &Mold{Name: name, Label: label, Content: content, Profile: profile}
	if profile != nil {
		mold.ModelID = profile.ID
	}

	return mold
}

// Filename answers the output filename for the mold, extension chosen by
// the profile's MIME type.
func (m *Mold) Filename() string {
	extension := "png"
	if m.Profile != nil && m.Profile.MimeType == "image/bmp" {
		extension = "bmp"
	}

	return fmt.Sprintf("%s.%s", m.Name, extension)
}

// Repository is the screen persistence contract the pipeline commits
// against.
type Repository interface {
	FindByName(name string) (*models.Screen, error)
	CreateWithImage(mold *Mold, screen *models.Screen) (*models.Screen, error)
	UpdateImage(name string, body io.Reader, filename string) (*models.Screen, error)
}

// ModelFinder is the display profile lookup capability.
type ModelFinder interface {
	Find(id uint) (*models.Model, error)
}

package screens

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/perchdisplay/perch/models"
)

// Composer renders an on-device error visualization when ingestion or
// device communication fails. A device always ends up with exactly one
// error screen under a stable name; repeated failures overwrite it.
type Composer struct {
	pipeline   *Pipeline
	converter  *Converter
	repository Repository
	finder     ModelFinder
}

func NewComposer(pipeline *Pipeline, converter *Converter, repository Repository, finder ModelFinder) *Composer {
	return &Composer{pipeline: pipeline, converter: converter, repository: repository, finder: finder}
}

// RenderFailure builds or refreshes the device's error screen with the
// given message.
func (c *Composer) RenderFailure(device *models.Device, message string) (*models.Screen, error) {
	name := device.SystemName("error")

	screen, err := c.repository.FindByName(name)
	if err != nil {
		return nil, err
	}
	if screen == nil {
		return c.create(device, message)
	}

	return c.update(device, message)
}

func (c *Composer) create(device *models.Device, message string) (*models.Screen, error) {
	mold, raster, err := c.buildMold(device, message)
	if err != nil {
		return nil, err
	}

	return c.pipeline.Ingest(mold, bytes.NewReader(raster))
}

// update reuses the pipeline's scratch-directory and converter mechanics
// to rebuild the raster, then swaps it in with UpdateImage.
func (c *Composer) update(device *models.Device, message string) (*models.Screen, error) {
	mold, raster, err := c.buildMold(device, message)
	if err != nil {
		return nil, err
	}

	directory, err := os.MkdirTemp("", "screen-gaffe-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(directory)

	mold.InputPath = filepath.Join(directory, "input.png")
	mold.OutputPath = filepath.Join(directory, mold.Filename())

	if err := os.WriteFile(mold.InputPath, raster, 0o600); err != nil {
		return nil, err
	}

	path, err := c.converter.Convert(mold)
	if err != nil {
		return nil, err
	}

	output, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer output.Close()

	return c.repository.UpdateImage(mold.Name, output, mold.Filename())
}

func (c *Composer) buildMold(device *models.Device, message string) (*Mold, []byte, error) {
	profile, err := c.finder.Find(device.ModelID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, fmt.Errorf("unknown model: %d", device.ModelID)
	}

	mold := NewMold(profile, device.SystemName("error"), device.SystemLabel("Error"), message)

	raster, err := renderMessage(profile, message)
	if err != nil {
		return nil, nil, err
	}

	return mold, raster, nil
}

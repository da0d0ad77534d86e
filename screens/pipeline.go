package screens

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/storage"
)

// Pipeline ingests a source image: normalize it through the converter,
// upload the result to the blob store and commit a screen record.
type Pipeline struct {
	converter  *Converter
	repository Repository
	store      storage.Store
}

func NewPipeline(converter *Converter, repository Repository, store storage.Store) *Pipeline {
	return &Pipeline{converter: converter, repository: repository, store: store}
}

// Ingest runs one pipeline pass. The scratch directory is scoped to this
// call and removed on every exit path. Conversion failures surface as
// *ConversionError without touching the repository; the repository decides
// create versus replace for the committed record. Ingest never retries.
func (p *Pipeline) Ingest(mold *Mold, source io.Reader) (*models.Screen, error) {
	if mold.Name == "" || mold.ModelID == 0 {
		return nil, fmt.Errorf("mold requires a name and model")
	}

	directory, err := os.MkdirTemp("", "screen-ingest-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(directory)

	mold.InputPath = filepath.Join(directory, "input.png")
	mold.OutputPath = filepath.Join(directory, mold.Filename())

	input, err := os.Create(mold.InputPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(input, source); err != nil {
		input.Close()
		return nil, err
	}
	if err := input.Close(); err != nil {
		return nil, err
	}

	path, err := p.converter.Convert(mold)
	if err != nil {
		return nil, err
	}

	output, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer output.Close()

	screen := &models.Screen{}
	if err := screen.Upload(p.store, output, mold.Filename()); err != nil {
		return nil, err
	}

	return p.repository.CreateWithImage(mold, screen)
}

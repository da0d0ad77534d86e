package screens

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/gift"
	"github.com/perchdisplay/perch/models"
	"golang.org/x/image/bmp"
)

// ConversionError reports a source image that could not be normalized to
// the target profile. The repository is never touched when one occurs.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed: %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Converter normalizes a source raster into the encoding and geometry
// demanded by the mold's display profile.
type Converter struct{}

func NewConverter() *Converter { return &Converter{} }

// Convert reads the mold's input path and writes the normalized image to
// its output path, answering that path.
func (c *Converter) Convert(mold *Mold) (string, error) {
	profile := mold.Profile
	if profile == nil {
		return "", &ConversionError{Err: fmt.Errorf("mold %q has no display profile", mold.Name)}
	}

	input, err := os.Open(mold.InputPath)
	if err != nil {
		return "", &ConversionError{Err: err}
	}
	defer input.Close()

	src, _, err := image.Decode(input)
	if err != nil {
		return "", &ConversionError{Err: fmt.Errorf("decoding %s: %w", mold.InputPath, err)}
	}

	g := gift.New(filtersFor(profile)...)
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	output, err := os.Create(mold.OutputPath)
	if err != nil {
		return "", &ConversionError{Err: err}
	}
	defer output.Close()

	switch profile.MimeType {
	case "image/bmp":
		err = bmp.Encode(output, dst)
	case "image/png", "":
		err = png.Encode(output, dst)
	default:
		err = fmt.Errorf("unsupported target type: %s", profile.MimeType)
	}
	if err != nil {
		return "", &ConversionError{Err: err}
	}

	return mold.OutputPath, nil
}

func filtersFor(profile *models.Model) []gift.Filter {
	var filters []gift.Filter

	switch profile.Rotation {
	case 90:
		filters = append(filters, gift.Rotate90())
	case 180:
		filters = append(filters, gift.Rotate180())
	case 270:
		filters = append(filters, gift.Rotate270())
	}

	if profile.Width > 0 && profile.Height > 0 {
		filters = append(filters, gift.Resize(profile.Width, profile.Height, gift.LanczosResampling))
	}

	// Low depth panels only render gray levels.
	if profile.BitDepth > 0 && profile.BitDepth <= 2 {
		filters = append(filters, gift.Grayscale())
	}

	return filters
}

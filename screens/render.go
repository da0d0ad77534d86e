package screens

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/perchdisplay/perch/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	renderMargin     = 20
	renderLineHeight = 18
	defaultWidth     = 800
	defaultHeight    = 480
)

// renderMessage rasterizes a plain-text message onto a white canvas sized
// to the display profile, answering PNG bytes the pipeline can ingest.
func renderMessage(profile *models.Model, message string) ([]byte, error) {
	width, height := defaultWidth, defaultHeight
	if profile != nil && profile.Width > 0 && profile.Height > 0 {
		width, height = profile.Width, profile.Height
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}

	y := renderMargin + renderLineHeight
	for _, line := range wrapText(drawer, message, width-2*renderMargin) {
		if y > height-renderMargin {
			break
		}

		drawer.Dot = fixed.P(renderMargin, y)
		drawer.DrawString(line)
		y += renderLineHeight
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, canvas); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// wrapText splits the message into lines fitting the given pixel width.
func wrapText(drawer *font.Drawer, message string, maxWidth int) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(message) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if drawer.MeasureString(candidate).Ceil() > maxWidth && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}

		current = candidate
	}

	if current != "" {
		lines = append(lines, current)
	}

	return lines
}

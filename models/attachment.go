package models

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	_ "image/png"
	"math/bits"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
)

// supportedImageTypes maps the raster MIME types a screen accepts to their
// file extensions.
var supportedImageTypes = map[string]string{
	"image/bmp": "bmp",
	"image/png": "png",
}

// Attachment links a screen to its blob in the content store.
type Attachment struct {
	ID       string             `json:"id"`
	Storage  string             `json:"storage"`
	Metadata AttachmentMetadata `json:"metadata"`
}

// AttachmentMetadata is computed at upload time from the raw bytes.
type AttachmentMetadata struct {
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BitDepth *int   `json:"bit_depth"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Checksum string `json:"checksum"`
}

// ValidationError reports attachment validation failures. Content type and
// extension are checked independently so a spoofed extension and a wrong
// payload are distinguishable.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func buildAttachmentMetadata(data []byte, filename string) AttachmentMetadata {
	metadata := AttachmentMetadata{
		Size:     int64(len(data)),
		Filename: filename,
		MimeType: mimetype.Detect(data).String(),
		Checksum: fmt.Sprintf("%x", md5.Sum(data)),
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return metadata
	}

	bounds := img.Bounds()
	metadata.Width = bounds.Dx()
	metadata.Height = bounds.Dy()
	metadata.BitDepth = bitDepth(img)

	return metadata
}

func (m AttachmentMetadata) validate() []string {
	var messages []string

	if _, ok := supportedImageTypes[m.MimeType]; !ok {
		messages = append(messages, "type must be one of: image/bmp, image/png")
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(m.Filename), "."))
	if extension != "bmp" && extension != "png" {
		messages = append(messages, "extension must be one of: bmp, png")
	}

	return messages
}

// bitDepth derives bits per channel from the decoded image type. Paletted
// images report the bits needed to index their palette; an unrecognized
// type reports nothing.
func bitDepth(img image.Image) *int {
	var depth int

	switch value := img.(type) {
	case *image.Paletted:
		depth = bits.Len(uint(len(value.Palette) - 1))
		if depth == 0 {
			depth = 1
		}
	case *image.Gray, *image.RGBA, *image.NRGBA, *image.YCbCr, *image.CMYK:
		depth = 8
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		depth = 16
	default:
		return nil
	}

	return &depth
}

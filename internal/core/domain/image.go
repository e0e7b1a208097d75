package domain

import (
	"encoding/base64"
	"image"
	"strings"
	"time"
)

// SourceFile is the raw file handed to the prediction endpoint.
// It is treated as an opaque handle by everything except the predictor.
type SourceFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Size returns the number of bytes held by the file
func (f SourceFile) Size() int64 {
	return int64(len(f.Data))
}

// SelectedImage is the image currently shown by the widget
type SelectedImage struct {
	PreviewURL string // data:<mime>;base64,<payload>
	Source     SourceFile
}

// ImageMetadata describes a SelectedImage at the time it was accepted
type ImageMetadata struct {
	Name         string
	Size         int64
	MIMEType     string
	LastModified time.Time
	Width        int
	Height       int
}

// Dimensions renders the metadata dimensions as "W × Hpx"
func (m ImageMetadata) Dimensions() string {
	return formatInt(m.Width) + " × " + formatInt(m.Height) + "px"
}

// Intake is the product of a successful read and decode.
// Image and Metadata are always applied together.
type Intake struct {
	Image    SelectedImage
	Metadata ImageMetadata
	Pixels   image.Image // decoded frame, used for thumbnails only
}

// IsImageMIME reports whether a declared MIME type is accepted for intake
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// DataURI encodes raw bytes as a base64 data URI
func DataURI(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// encodePNG returns a solid w×h PNG
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 160, B: 60, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// writeFile writes data to dir/name and returns the path
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// pngCandidate builds an in-memory candidate for a w×h PNG
func pngCandidate(t *testing.T, name string, w, h int) Candidate {
	t.Helper()

	data := encodePNG(t, w, h)
	return Candidate{
		Name:     name,
		MIMEType: "image/png",
		Size:     int64(len(data)),
		Data:     data,
	}
}

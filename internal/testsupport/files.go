package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// JPEG returns an encoded solid-colour JPEG of the requested size.
func JPEG(t testing.TB, width, height int) []byte {
	t.Helper()
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	img := imaging.New(width, height, color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// WriteJPEG writes a JPEG fixture to path and returns the path.
func WriteJPEG(t testing.TB, path string, width, height int) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, JPEG(t, width, height), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Frame returns a gradient image for camera fakes.
func Frame(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return img
}

// Package testsupport provides shared fixtures for package tests: disposable
// configurations rooted in temp directories and generated photo files,
// including trigger photos carrying a real QR marker.
package testsupport

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"snapsort/internal/config"
)

// NewConfig returns a validated configuration rooted in a temp directory.
// The watch root exists; settle delay is zeroed so tests run at full speed.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchDir = filepath.Join(root, "incoming")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Session.SettleDelaySeconds = 0

	if err := os.MkdirAll(cfg.Paths.WatchDir, 0o755); err != nil {
		t.Fatalf("create watch dir: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return &cfg
}

// WritePhoto writes a small solid-color image to path and stamps its
// modification time with capturedAt. The encoding follows the path extension;
// anything that is not .png is written as JPEG.
func WritePhoto(t *testing.T, path string, capturedAt time.Time) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 140, B: 160, A: 255})
		}
	}
	writeImage(t, path, img)
	stamp(t, path, capturedAt)
	return path
}

// WriteTriggerPhoto writes a photo whose content is a scannable QR code
// encoding payload, stamped with capturedAt.
func WriteTriggerPhoto(t *testing.T, path, payload string, capturedAt time.Time) string {
	t.Helper()

	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encode qr payload %q: %v", payload, err)
	}
	writeImage(t, path, matrixImage(matrix))
	stamp(t, path, capturedAt)
	return path
}

func matrixImage(matrix *gozxing.BitMatrix) image.Image {
	bounds := image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight())
	img := image.NewGray(bounds)
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create parent for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func stamp(t *testing.T, path string, at time.Time) {
	t.Helper()
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

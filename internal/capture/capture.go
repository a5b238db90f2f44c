// Package capture writes rendered frames to image files.
package capture

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encode writes img to w in the format named by ext (".png", ".jpg",
// ".jpeg", ".bmp", ".tif" or ".tiff").
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image format %q", ext)
}

// Save writes img to path, choosing the encoder from the extension.
func Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, img, filepath.Ext(path)); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

// SavePNG writes img to path as PNG regardless of extension.
func SavePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}

// Capturer saves frames under a directory with timestamped names.
type Capturer struct {
	outputDir string
	prefix    string

	mu  sync.Mutex
	seq int
	now func() time.Time
}

// NewCapturer creates a capturer writing prefix_<timestamp>_<seq>.png files.
func NewCapturer(outputDir, prefix string) *Capturer {
	return &Capturer{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// NextFilename returns the path the next Capture call will write.
func (c *Capturer) NextFilename() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filename(c.seq)
}

func (c *Capturer) filename(seq int) string {
	timestamp := c.now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("%s_%s_%03d.png", c.prefix, timestamp, seq)
	if c.outputDir != "" {
		name = filepath.Join(c.outputDir, name)
	}
	return name
}

// Capture saves img and returns the written path.
func (c *Capturer) Capture(img image.Image) (string, error) {
	c.mu.Lock()
	name := c.filename(c.seq)
	c.seq++
	c.mu.Unlock()

	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := SavePNG(name, img); err != nil {
		return "", err
	}
	return name, nil
}

// Package texture holds the flat RGB buffers that mesh UVs sample from,
// plus decoders that turn image files into that layout.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
)

// BytesPerPixel is the stride of one texel in Pix.
const BytesPerPixel = 3

// ErrTooSmall is returned when Pix holds fewer than Width*Height texels.
var ErrTooSmall = errors.New("texture buffer smaller than width*height*3")

// Texture is a row-major RGB image, three bytes per texel, top row first.
type Texture struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a black texture.
func New(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Validate checks that the buffer covers the declared dimensions.
func (t *Texture) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("invalid texture size %dx%d", t.Width, t.Height)
	}
	if need := t.Width * t.Height * BytesPerPixel; len(t.Pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrTooSmall, len(t.Pix), need)
	}
	return nil
}

// Set writes texel (x, y). Out of range coordinates are ignored.
func (t *Texture) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return
	}
	i := (x + y*t.Width) * BytesPerPixel
	t.Pix[i] = c.R
	t.Pix[i+1] = c.G
	t.Pix[i+2] = c.B
}

// At returns the opaque color stored at byte offset idx, and false when
// the texel starting at idx does not fit in the buffer.
func (t *Texture) At(idx int) (color.RGBA, bool) {
	if idx < 0 || idx+2 >= len(t.Pix) {
		return color.RGBA{}, false
	}
	return color.RGBA{R: t.Pix[idx], G: t.Pix[idx+1], B: t.Pix[idx+2], A: 255}, true
}

// Clone returns a copy with its own pixel buffer.
func (t *Texture) Clone() *Texture {
	return &Texture{
		Width:  t.Width,
		Height: t.Height,
		Pix:    append([]byte(nil), t.Pix...),
	}
}

// FromImage flattens any image into RGB, dropping alpha.
func FromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	t := New(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			t.Set(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{
				R: uint8(r16 >> 8),
				G: uint8(g16 >> 8),
				B: uint8(b16 >> 8),
			})
		}
	}
	return t
}

// Load decodes an image file. TGA is selected by extension; every other
// format goes through the registered image decoders.
func Load(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".tga") {
		t, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
		}
		return t, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return FromImage(img), nil
}

// Solid returns a texture filled with a single color.
func Solid(width, height int, c color.RGBA) *Texture {
	t := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t.Set(x, y, c)
		}
	}
	return t
}

// Checker returns a checkerboard of cells x cells squares alternating
// between a and b.
func Checker(size, cells int, a, b color.RGBA) *Texture {
	if cells < 1 {
		cells = 1
	}
	t := New(size, size)
	cell := size / cells
	if cell < 1 {
		cell = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			t.Set(x, y, c)
		}
	}
	return t
}

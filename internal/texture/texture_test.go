package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		tex      *Texture
		wantErr  bool
		tooSmall bool
	}{
		{"exact", New(4, 2), false, false},
		{"oversized buffer", &Texture{Width: 1, Height: 1, Pix: make([]byte, 10)}, false, false},
		{"short buffer", &Texture{Width: 4, Height: 4, Pix: make([]byte, 47)}, true, true},
		{"zero width", &Texture{Width: 0, Height: 4}, true, false},
		{"negative height", &Texture{Width: 4, Height: -1}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tex.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.tooSmall && !errors.Is(err, ErrTooSmall) {
				t.Errorf("expected ErrTooSmall, got %v", err)
			}
		})
	}
}

func TestAt(t *testing.T) {
	tex := New(2, 2)
	tex.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30})

	got, ok := tex.At((1 + 1*2) * BytesPerPixel)
	if !ok {
		t.Fatal("expected in-range texel")
	}
	if want := (color.RGBA{R: 10, G: 20, B: 30, A: 255}); got != want {
		t.Errorf("At = %v, want %v", got, want)
	}

	for _, idx := range []int{-3, -1, len(tex.Pix) - 2, len(tex.Pix), 1 << 20} {
		if _, ok := tex.At(idx); ok {
			t.Errorf("At(%d) should be out of range", idx)
		}
	}
}

func TestSetIgnoresOutOfRange(t *testing.T) {
	tex := New(2, 2)
	tex.Set(-1, 0, color.RGBA{R: 1})
	tex.Set(2, 0, color.RGBA{R: 1})
	tex.Set(0, 5, color.RGBA{R: 1})
	for i, b := range tex.Pix {
		if b != 0 {
			t.Fatalf("byte %d modified", i)
		}
	}
}

func TestCheckerAndSolid(t *testing.T) {
	a := color.RGBA{R: 255, A: 255}
	b := color.RGBA{B: 255, A: 255}
	tex := Checker(8, 2, a, b)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, a},
		{3, 3, a},
		{4, 0, b},
		{0, 4, b},
		{7, 7, a},
	}
	for _, tt := range tests {
		got, _ := tex.At((tt.x + tt.y*tex.Width) * BytesPerPixel)
		if got != tt.want {
			t.Errorf("Checker(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	solid := Solid(3, 2, color.RGBA{G: 7})
	for i := 0; i < len(solid.Pix); i += BytesPerPixel {
		if solid.Pix[i+1] != 7 {
			t.Fatalf("texel %d not filled", i/BytesPerPixel)
		}
	}
}

func TestClone(t *testing.T) {
	tex := Solid(2, 2, color.RGBA{R: 9})
	c := tex.Clone()
	c.Pix[0] = 0
	if tex.Pix[0] != 9 {
		t.Error("clone shares the pixel buffer")
	}
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(2, 1, color.RGBA{G: 200, B: 100, A: 255})
	return img
}

func assertMatchesTestImage(t *testing.T, tex *Texture) {
	t.Helper()
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", tex.Width, tex.Height)
	}
	if got, _ := tex.At(0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("top-left = %v", got)
	}
	if got, _ := tex.At((2 + 1*3) * BytesPerPixel); got != (color.RGBA{G: 200, B: 100, A: 255}) {
		t.Errorf("bottom-right = %v", got)
	}
}

func TestLoadImageFormats(t *testing.T) {
	encoders := map[string]func(f *os.File, img image.Image) error{
		"frame.png": func(f *os.File, img image.Image) error { return png.Encode(f, img) },
		"frame.bmp": func(f *os.File, img image.Image) error { return bmp.Encode(f, img) },
		"frame.tif": func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) },
	}

	dir := t.TempDir()
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := encode(f, testImage()); err != nil {
				t.Fatalf("encode: %v", err)
			}
			f.Close()

			tex, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			assertMatchesTestImage(t, tex)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage); err == nil {
		t.Error("expected decode error")
	}
}

// tgaHeader builds an 18-byte header for a true-color TGA.
func tgaHeader(imageType byte, w, h int, bpp byte, topToBottom bool) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = imageType
	hdr[12] = byte(w)
	hdr[13] = byte(w >> 8)
	hdr[14] = byte(h)
	hdr[15] = byte(h >> 8)
	hdr[16] = bpp
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x1, bottom-up, BGR: red then blue.
	data := append(tgaHeader(TGATypeUncompressed, 2, 1, 24, false),
		0, 0, 255,
		255, 0, 0,
	)
	tex, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if got, _ := tex.At(0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel 0 = %v, want red", got)
	}
	if got, _ := tex.At(3); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel 1 = %v, want blue", got)
	}
}

func TestDecodeTGAOrientation(t *testing.T) {
	// 1x2 with first stored pixel green.
	pixels := []byte{0, 255, 0, 0, 0, 0}

	bottomUp, err := DecodeTGA(append(tgaHeader(TGATypeUncompressed, 1, 2, 24, false), pixels...))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := bottomUp.At(3); got.G != 255 {
		t.Error("bottom-up file should place the first pixel on the last row")
	}

	topDown, err := DecodeTGA(append(tgaHeader(TGATypeUncompressed, 1, 2, 24, true), pixels...))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := topDown.At(0); got.G != 255 {
		t.Error("top-down file should place the first pixel on the first row")
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 4x1, 32 bpp: run of 3 white, then one raw black texel.
	data := append(tgaHeader(TGATypeRLE, 4, 1, 32, true),
		0x82, 255, 255, 255, 255,
		0x00, 0, 0, 0, 255,
	)
	tex, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	for x := 0; x < 3; x++ {
		if got, _ := tex.At(x * BytesPerPixel); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
			t.Errorf("pixel %d = %v, want white", x, got)
		}
	}
	if got, _ := tex.At(3 * BytesPerPixel); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel 3 = %v, want black", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(TGATypeUncompressed, 1, 1, 24, false); h[1] = 1; return h }()},
		{"grayscale type", tgaHeader(3, 1, 1, 8, false)},
		{"16 bpp", tgaHeader(TGATypeUncompressed, 1, 1, 16, false)},
		{"zero size", tgaHeader(TGATypeUncompressed, 0, 1, 24, false)},
		{"truncated pixels", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, false), 1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadTGA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skin.TGA")
	data := append(tgaHeader(TGATypeUncompressed, 1, 1, 24, false), 30, 20, 10)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	tex, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, _ := tex.At(0); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("texel = %v", got)
	}
}

package render

import (
	"image"
	"image/color"
)

// Frame is the final pixel buffer of one render.
type Frame struct {
	*image.RGBA
}

// NewFrame allocates a w x h frame.
func NewFrame(w, h int) *Frame {
	return &Frame{RGBA: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (f *Frame) Width() int  { return f.Rect.Dx() }
func (f *Frame) Height() int { return f.Rect.Dy() }

// Fill paints every pixel with c.
func (f *Frame) Fill(c color.RGBA) {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = c.R
		f.Pix[i+1] = c.G
		f.Pix[i+2] = c.B
		f.Pix[i+3] = c.A
	}
}

// Clone returns a copy with its own pixel buffer.
func (f *Frame) Clone() *Frame {
	c := NewFrame(f.Width(), f.Height())
	copy(c.Pix, f.Pix)
	return c
}

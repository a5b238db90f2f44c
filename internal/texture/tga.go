package texture

import (
	"errors"
	"fmt"
)

// TGA image types handled by DecodeTGA.
const (
	TGATypeUncompressed = 2  // true-color
	TGATypeRLE          = 10 // run-length encoded true-color
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("TGA pixel data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color TGA (24 or 32 bpp)
// straight into the flat RGB layout. Alpha is discarded.
func DecodeTGA(data []byte) (*Texture, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty TGA image %dx%d", width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		src:         data[offset:],
		stride:      bpp / 8,
		topToBottom: topToBottom,
		tex:         New(width, height),
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = d.raw()
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.tex, nil
}

type tgaDecoder struct {
	src         []byte
	pos         int
	stride      int
	topToBottom bool
	tex         *Texture
}

// put stores the BGR texel at d.pos as the n-th pixel in file order.
func (d *tgaDecoder) put(n int) {
	x := n % d.tex.Width
	y := n / d.tex.Width
	if !d.topToBottom {
		y = d.tex.Height - 1 - y
	}
	i := (x + y*d.tex.Width) * BytesPerPixel
	d.tex.Pix[i] = d.src[d.pos+2]
	d.tex.Pix[i+1] = d.src[d.pos+1]
	d.tex.Pix[i+2] = d.src[d.pos]
}

func (d *tgaDecoder) raw() error {
	count := d.tex.Width * d.tex.Height
	if len(d.src) < count*d.stride {
		return errTGATruncated
	}
	for n := 0; n < count; n++ {
		d.put(n)
		d.pos += d.stride
	}
	return nil
}

// rle decodes run-length packets. A short stream leaves the remaining
// pixels black rather than failing.
func (d *tgaDecoder) rle() error {
	count := d.tex.Width * d.tex.Height
	n := 0

	for n < count && d.pos < len(d.src) {
		header := d.src[d.pos]
		d.pos++
		run := int(header&0x7F) + 1

		if header&0x80 != 0 {
			if d.pos+d.stride > len(d.src) {
				break
			}
			for i := 0; i < run && n < count; i++ {
				d.put(n)
				n++
			}
			d.pos += d.stride
			continue
		}

		for i := 0; i < run && n < count; i++ {
			if d.pos+d.stride > len(d.src) {
				return nil
			}
			d.put(n)
			d.pos += d.stride
			n++
		}
	}
	return nil
}

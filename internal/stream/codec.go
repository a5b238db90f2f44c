package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/golang/snappy"
)

// Frame messages are binary: a fixed header followed by the snappy block
// encoding of the RGBA pixels, rows top to bottom.
//
//	offset 0  magic "MCF1"
//	offset 4  uint32 sequence number
//	offset 8  uint16 width
//	offset 10 uint16 height
//	offset 12 snappy(pix)
const headerSize = 12

var frameMagic = [4]byte{'M', 'C', 'F', '1'}

var (
	ErrBadFrame = errors.New("stream: malformed frame message")

	// ErrFrameTooLarge is returned for frames whose sides do not fit the
	// uint16 header fields.
	ErrFrameTooLarge = errors.New("stream: frame too large")
)

const maxFrameSide = 0xFFFF

// EncodeFrame packs img into a frame message.
func EncodeFrame(seq uint32, img *image.RGBA) ([]byte, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w > maxFrameSide || h > maxFrameSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrFrameTooLarge, w, h)
	}

	pix := img.Pix
	if img.Stride != w*4 || img.Rect.Min != (image.Point{}) {
		pix = make([]byte, 0, w*h*4)
		for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
			off := img.PixOffset(img.Rect.Min.X, y)
			pix = append(pix, img.Pix[off:off+w*4]...)
		}
	}

	msg := make([]byte, headerSize, headerSize+snappy.MaxEncodedLen(len(pix)))
	copy(msg, frameMagic[:])
	binary.BigEndian.PutUint32(msg[4:], seq)
	binary.BigEndian.PutUint16(msg[8:], uint16(w))
	binary.BigEndian.PutUint16(msg[10:], uint16(h))

	encoded := snappy.Encode(msg[headerSize:cap(msg)], pix)
	return msg[:headerSize+len(encoded)], nil
}

// DecodeFrame unpacks a frame message.
func DecodeFrame(msg []byte) (uint32, *image.RGBA, error) {
	if len(msg) < headerSize || [4]byte(msg[:4]) != frameMagic {
		return 0, nil, ErrBadFrame
	}
	seq := binary.BigEndian.Uint32(msg[4:])
	w := int(binary.BigEndian.Uint16(msg[8:]))
	h := int(binary.BigEndian.Uint16(msg[10:]))

	pix, err := snappy.Decode(nil, msg[headerSize:])
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if len(pix) != w*h*4 {
		return 0, nil, fmt.Errorf("%w: %d pixel bytes for %dx%d", ErrBadFrame, len(pix), w, h)
	}

	return seq, &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

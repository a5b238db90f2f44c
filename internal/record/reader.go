package record

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Frame is a decoded recorded frame.
type Frame struct {
	Index      uint64
	CapturedAt time.Time
	RenderTime time.Duration
	Image      *image.RGBA
}

// Reader iterates over the frames of a recording bundle.
type Reader struct {
	dir      string
	manifest Manifest

	file    *os.File
	decoder *zstd.Decoder
}

// ReadManifest loads manifest.json from a bundle directory.
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return Manifest{}, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return m, nil
}

// Open opens a bundle for reading.
func Open(dir string) (*Reader, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(dir, m.FramesPath))
	if err != nil {
		return nil, fmt.Errorf("opening frame stream: %w", err)
	}
	decoder, err := zstd.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Reader{dir: dir, manifest: m, file: file, decoder: decoder}, nil
}

// Manifest returns the bundle manifest.
func (r *Reader) Manifest() Manifest { return r.manifest }

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (Frame, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r.decoder, header); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("reading frame header: %w", err)
	}

	index := binary.LittleEndian.Uint64(header[0:8])
	captured := int64(binary.LittleEndian.Uint64(header[8:16]))
	took := time.Duration(binary.LittleEndian.Uint64(header[16:24]))
	width := int(binary.LittleEndian.Uint16(header[24:26]))
	height := int(binary.LittleEndian.Uint16(header[26:28]))
	size := int(binary.LittleEndian.Uint32(header[28:32]))

	if size != width*height*4 {
		return Frame{}, fmt.Errorf("frame %d: payload %d bytes for %dx%d", index, size, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if _, err := io.ReadFull(r.decoder, img.Pix); err != nil {
		return Frame{}, fmt.Errorf("reading frame %d pixels: %w", index, err)
	}

	return Frame{
		Index:      index,
		CapturedAt: time.Unix(0, captured).UTC(),
		RenderTime: took,
		Image:      img,
	}, nil
}

// Events reads the whole event log.
func (r *Reader) Events() ([]Event, error) {
	file, err := os.Open(filepath.Join(r.dir, r.manifest.EventsPath))
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(snappy.NewReader(file))
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	return events, nil
}

// Close releases the frame stream.
func (r *Reader) Close() error {
	r.decoder.Close()
	return r.file.Close()
}

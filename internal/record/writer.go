// Package record persists rendered frames as a compressed bundle: a zstd
// frame stream, a snappy event log and a JSON manifest describing both.
package record

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	gomath "math"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/logger"
)

var log = logger.Record

const (
	ManifestVersion = 1

	manifestFile = "manifest.json"
	framesFile   = "frames.bin.zst"
	eventsFile   = "events.jsonl.sz"

	// index, captured-at, render time, width, height, payload length
	frameHeaderSize = 8 + 8 + 8 + 2 + 2 + 4
)

// maxFrameSide is the largest width or height the uint16 header fields hold.
const maxFrameSide = 0xFFFF

// ErrFrameSize is returned for recording sizes the frame header cannot
// describe.
var ErrFrameSize = errors.New("record: frame size out of range")

var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Manifest describes a recording bundle.
type Manifest struct {
	Version    int    `json:"version"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FrameCount int    `json:"frame_count"`
	FramesPath string `json:"frames_path"`
	EventsPath string `json:"events_path"`
}

// Writer appends frames and events to a recording bundle.
type Writer struct {
	mu  sync.Mutex
	dir string
	now func() time.Time

	manifest Manifest

	frameFile   *os.File
	frameStream *zstd.Encoder
	eventFile   *os.File
	eventStream *snappy.Writer
}

// NewWriter creates root/<name>-<timestamp>/ and opens its streams.
func NewWriter(root, name string, width, height int, clock func() time.Time) (*Writer, error) {
	if root == "" {
		return nil, fmt.Errorf("recording root must be provided")
	}
	if err := checkFrameSize(width, height); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := nameCleaner.ReplaceAllString(name, "")
	if cleaned == "" {
		cleaned = "recording"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating recording dir: %w", err)
	}

	frameFile, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		return nil, fmt.Errorf("creating frame stream: %w", err)
	}
	frameStream, err := zstd.NewWriter(frameFile, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		frameFile.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}

	eventFile, err := os.Create(filepath.Join(dir, eventsFile))
	if err != nil {
		frameStream.Close()
		frameFile.Close()
		return nil, fmt.Errorf("creating event log: %w", err)
	}

	w := &Writer{
		dir: dir,
		now: clock,
		manifest: Manifest{
			Version:    ManifestVersion,
			Name:       cleaned,
			CreatedAt:  created.Format(time.RFC3339Nano),
			Width:      width,
			Height:     height,
			FramesPath: framesFile,
			EventsPath: eventsFile,
		},
		frameFile:   frameFile,
		frameStream: frameStream,
		eventFile:   eventFile,
		eventStream: snappy.NewBufferedWriter(eventFile),
	}

	if err := w.writeManifest(); err != nil {
		w.closeStreams()
		return nil, err
	}

	log.Info("recording started", zap.String("dir", dir), zap.Int("width", width), zap.Int("height", height))
	return w, nil
}

// Directory returns the bundle directory.
func (w *Writer) Directory() string { return w.dir }

// Manifest returns the current manifest.
func (w *Writer) Manifest() Manifest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.manifest
}

func checkFrameSize(width, height int) error {
	if width <= 0 || height <= 0 || width > maxFrameSide || height > maxFrameSide {
		return fmt.Errorf("%w: %dx%d", ErrFrameSize, width, height)
	}
	if uint64(width)*uint64(height)*4 > gomath.MaxUint32 {
		return fmt.Errorf("%w: %dx%d payload exceeds 4GiB", ErrFrameSize, width, height)
	}
	return nil
}

// AppendFrame writes one frame. Frames must match the recording size.
func (w *Writer) AppendFrame(index uint64, renderTime time.Duration, img *image.RGBA) error {
	width, height := img.Rect.Dx(), img.Rect.Dy()

	w.mu.Lock()
	defer w.mu.Unlock()

	if width != w.manifest.Width || height != w.manifest.Height {
		return fmt.Errorf("frame %dx%d does not match recording %dx%d", width, height, w.manifest.Width, w.manifest.Height)
	}

	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], index)
	binary.LittleEndian.PutUint64(header[8:16], uint64(w.now().UTC().UnixNano()))
	binary.LittleEndian.PutUint64(header[16:24], uint64(renderTime))
	binary.LittleEndian.PutUint16(header[24:26], uint16(width))
	binary.LittleEndian.PutUint16(header[26:28], uint16(height))
	binary.LittleEndian.PutUint32(header[28:32], uint32(width*height*4))

	if _, err := w.frameStream.Write(header); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		off := img.PixOffset(img.Rect.Min.X, y)
		if _, err := w.frameStream.Write(img.Pix[off : off+width*4]); err != nil {
			return fmt.Errorf("writing frame pixels: %w", err)
		}
	}

	w.manifest.FrameCount++
	return nil
}

// Event is one line of the event log.
type Event struct {
	Frame      uint64          `json:"frame"`
	CapturedAt string          `json:"captured_at"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// AppendEvent writes a JSON event line tied to a frame index.
func (w *Writer) AppendEvent(frame uint64, eventType string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding event payload: %w", err)
		}
		raw = data
	}

	line, err := json.Marshal(Event{
		Frame:      frame,
		CapturedAt: w.now().UTC().Format(time.RFC3339Nano),
		Type:       eventType,
		Payload:    raw,
	})
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.eventStream.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return w.eventStream.Flush()
}

// Close flushes both streams and rewrites the manifest with the final
// frame count.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	firstErr := w.closeStreams()
	if err := w.writeManifest(); err != nil && firstErr == nil {
		firstErr = err
	}

	log.Info("recording closed", zap.String("dir", w.dir), zap.Int("frames", w.manifest.FrameCount))
	return firstErr
}

func (w *Writer) closeStreams() error {
	var firstErr error
	if err := w.frameStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frameFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.eventFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (w *Writer) writeManifest() error {
	data, err := json.MarshalIndent(w.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

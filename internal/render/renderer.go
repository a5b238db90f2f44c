// Package render drives the per-pixel ray queries of a frame across a
// fixed pool of worker goroutines.
//
// A frame is split by column: with N workers, worker i renders every
// column x where x % N == i, top to bottom, into a private buffer. The
// collector waits for exactly N tagged buffers and scatters them back
// using the same rule, so pixel placement never depends on which worker
// finishes first.
package render

import (
	"image/color"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/meshcast/internal/camera"
	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/scene"
)

var log = logger.Render

// DefaultWorkers is the pool size used when New is given a non-positive count.
const DefaultWorkers = 8

// DefaultBackground is painted where no object is hit.
var DefaultBackground = color.RGBA{A: 255}

// Option configures a TiledRenderer.
type Option func(*TiledRenderer)

// WithBackground sets the miss color.
func WithBackground(c color.RGBA) Option {
	return func(r *TiledRenderer) {
		r.background = c
	}
}

// tileRequest is one worker's share of a frame.
type tileRequest struct {
	index   int
	workers int

	scene  scene.Renderable
	camera camera.Camera
	width  int
	height int

	done chan<- tileResult
}

// tileResult carries a column-major buffer tagged with its worker index.
type tileResult struct {
	index int
	pix   []color.RGBA
	hits  int
	took  time.Duration
}

// TiledRenderer owns the worker pool. Render calls are serialized.
type TiledRenderer struct {
	workers    int
	background color.RGBA

	jobs chan tileRequest
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
	stats  FrameStats
}

// New starts a pool of workers goroutines.
func New(workers int, opts ...Option) *TiledRenderer {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	r := &TiledRenderer{
		workers:    workers,
		background: DefaultBackground,
		jobs:       make(chan tileRequest, workers),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}

	log.Info("renderer started", zap.Int("workers", workers))
	return r
}

// Workers returns the pool size.
func (r *TiledRenderer) Workers() int { return r.workers }

func (r *TiledRenderer) worker() {
	defer r.wg.Done()
	for req := range r.jobs {
		req.done <- r.renderTile(req)
	}
}

// renderTile traces every column owned by req.index, top to bottom.
func (r *TiledRenderer) renderTile(req tileRequest) tileResult {
	start := time.Now()
	res := tileResult{index: req.index}

	columns := 0
	if req.index < req.width {
		columns = (req.width - req.index + req.workers - 1) / req.workers
	}
	res.pix = make([]color.RGBA, 0, columns*req.height)

	rays := req.camera.Rays(req.width, req.height)
	origin := req.camera.Position

	for x := req.index; x < req.width; x += req.workers {
		for y := 0; y < req.height; y++ {
			c := req.scene.Intersect(origin, rays(x, y))
			if c.Hit {
				res.hits++
				res.pix = append(res.pix, c.Color)
			} else {
				res.pix = append(res.pix, r.background)
			}
		}
	}

	res.took = time.Since(start)
	return res
}

// Render traces a w x h frame of sc as seen from cam. It blocks until
// every tile has been merged. sc must not be mutated until Render returns.
func (r *TiledRenderer) Render(sc scene.Renderable, cam camera.Camera, w, h int) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidSize
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	done := make(chan tileResult, r.workers)
	for i := 0; i < r.workers; i++ {
		r.jobs <- tileRequest{
			index:   i,
			workers: r.workers,
			scene:   sc,
			camera:  cam,
			width:   w,
			height:  h,
			done:    done,
		}
	}

	frame := NewFrame(w, h)
	stats := FrameStats{Width: w, Height: h, Tiles: make([]TileStat, r.workers)}

	for received := 0; received < r.workers; received++ {
		res := <-done
		r.scatter(frame, res, w, h)

		stats.Hits += res.hits
		stats.Tiles[res.index] = TileStat{
			Index:      res.index,
			Columns:    len(res.pix) / h,
			Hits:       res.hits,
			RenderTime: res.took,
		}
	}
	stats.RenderTime = time.Since(start)
	r.stats = stats

	if log.Enabled(zapcore.DebugLevel) {
		var slowest time.Duration
		for _, t := range stats.Tiles {
			if t.RenderTime > slowest {
				slowest = t.RenderTime
			}
		}
		log.Debug("frame rendered",
			zap.Int("width", w),
			zap.Int("height", h),
			zap.Int("hits", stats.Hits),
			zap.Duration("took", stats.RenderTime),
			zap.Duration("slowestTile", slowest),
		)
	}
	return frame, nil
}

// scatter writes a column-major tile back to its columns.
func (r *TiledRenderer) scatter(frame *Frame, res tileResult, w, h int) {
	pos := 0
	for x := res.index; x < w; x += r.workers {
		for y := 0; y < h; y++ {
			frame.SetRGBA(x, y, res.pix[pos])
			pos++
		}
	}
}

// Stats returns the statistics of the last rendered frame.
func (r *TiledRenderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.Tiles = append([]TileStat(nil), r.stats.Tiles...)
	return s
}

// Close stops the worker pool. It is safe to call more than once.
func (r *TiledRenderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()
	log.Info("renderer stopped", zap.Int("workers", r.workers))
}

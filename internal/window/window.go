// Package window presents rendered frames in an SDL2 window and turns
// keyboard input into viewer controls.
package window

import (
	"fmt"
	"image"
	"runtime"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/logger"
)

var log = logger.Window

func init() {
	// SDL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int // frame width in pixels
	Height     int // frame height in pixels
	Scale      int // window pixels per frame pixel
	Fullscreen bool
	VSync      bool
}

// Presenter wraps an SDL window, renderer and streaming texture sized to
// the frame.
type Presenter struct {
	config   Config
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// New creates a window and a streaming texture matching the frame size.
func New(cfg Config) (*Presenter, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Scale < 1 {
		cfg.Scale = 1
	}

	p := &Presenter{config: cfg}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	p.window, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width*cfg.Scale),
		int32(cfg.Height*cfg.Scale),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	p.renderer, err = sdl.CreateRenderer(p.window, -1, rendererFlags)
	if err != nil {
		p.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}

	// Keeps the frame aspect ratio when the window is resized.
	if err := p.renderer.SetLogicalSize(int32(cfg.Width), int32(cfg.Height)); err != nil {
		log.Warn("failed to set logical size", zap.Error(err))
	}

	// ABGR8888 is R,G,B,A byte order on little-endian hosts, matching
	// image.RGBA.
	p.texture, err = p.renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_ABGR8888),
		sdl.TEXTUREACCESS_STREAMING,
		int32(cfg.Width),
		int32(cfg.Height),
	)
	if err != nil {
		p.renderer.Destroy()
		p.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateTexture failed: %w", err)
	}

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("scale", cfg.Scale),
		zap.Bool("fullscreen", cfg.Fullscreen),
	)

	return p, nil
}

// Present uploads img and shows it. img must match the configured size.
func (p *Presenter) Present(img *image.RGBA) error {
	if img.Rect.Dx() != p.config.Width || img.Rect.Dy() != p.config.Height {
		return fmt.Errorf("frame %dx%d does not match window %dx%d",
			img.Rect.Dx(), img.Rect.Dy(), p.config.Width, p.config.Height)
	}

	start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
	if err := p.texture.Update(nil, unsafe.Pointer(&img.Pix[start]), img.Stride); err != nil {
		return fmt.Errorf("updating texture: %w", err)
	}
	if err := p.renderer.Clear(); err != nil {
		return fmt.Errorf("clearing renderer: %w", err)
	}
	if err := p.renderer.Copy(p.texture, nil, nil); err != nil {
		return fmt.Errorf("copying texture: %w", err)
	}
	p.renderer.Present()
	return nil
}

// Close destroys the window and cleans up SDL2.
func (p *Presenter) Close() {
	log.Info("closing window")

	if p.texture != nil {
		p.texture.Destroy()
	}
	if p.renderer != nil {
		p.renderer.Destroy()
	}
	if p.window != nil {
		p.window.Destroy()
	}

	sdl.Quit()
}

// SetTitle sets the window title.
func (p *Presenter) SetTitle(title string) {
	p.window.SetTitle(title)
}

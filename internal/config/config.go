// Package config handles meshcast configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	gomath "math"
	"strconv"
	"strings"
	"time"
)

// Config holds all application settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Window  WindowConfig  `yaml:"window"`
	Stream  StreamConfig  `yaml:"stream"`
	Record  RecordConfig  `yaml:"record"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds frame and index construction settings.
type RenderConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Workers       int    `yaml:"workers"`
	Background    string `yaml:"background"` // #rrggbb
	LeafThreshold int    `yaml:"leaf_threshold"`
	ParallelBuild bool   `yaml:"parallel_build"`
}

// CameraConfig holds the initial camera pose and optics.
type CameraConfig struct {
	Position     [3]float64 `yaml:"position"`
	Pitch        float64    `yaml:"pitch"` // radians
	Yaw          float64    `yaml:"yaw"`
	Roll         float64    `yaml:"roll"`
	FovDegrees   float64    `yaml:"fov_degrees"`
	Epsilon      float64    `yaml:"epsilon"`
	ViewDistance float64    `yaml:"view_distance"`
	MoveSpeed    float64    `yaml:"move_speed"` // units per second
	TurnSpeed    float64    `yaml:"turn_speed"` // radians per second
}

// MeshConfig selects the mesh to render.
type MeshConfig struct {
	Shape    string     `yaml:"shape"` // plane, sphere or torus
	Segments int        `yaml:"segments"`
	Size     float64    `yaml:"size"`
	Texture  string     `yaml:"texture"`  // image path; empty uses a checkerboard
	Position [3]float64 `yaml:"position"` // translation applied after loading
	Spin     [3]float64 `yaml:"spin"`     // radians per second about the centroid
}

// WindowConfig holds SDL window settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Scale      int    `yaml:"scale"` // window pixels per rendered pixel
	Fullscreen bool   `yaml:"fullscreen"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// StreamConfig holds the websocket preview server settings.
type StreamConfig struct {
	Addr     string        `yaml:"addr"`
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"interval"`
}

// RecordConfig holds frame recorder settings.
type RecordConfig struct {
	Dir    string `yaml:"dir"`
	Frames int    `yaml:"frames"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"` // JSON lines in the log file
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:         320,
			Height:        240,
			Workers:       8,
			Background:    "#000000",
			LeafThreshold: 200,
			ParallelBuild: true,
		},
		Camera: CameraConfig{
			Position:     [3]float64{-4, 0, 0},
			FovDegrees:   2 * gomath.Atan(0.5) * 180 / gomath.Pi,
			Epsilon:      1e-4,
			ViewDistance: 100,
			MoveSpeed:    2,
			TurnSpeed:    1.5,
		},
		Mesh: MeshConfig{
			Shape:    "sphere",
			Segments: 32,
			Size:     1,
			Spin:     [3]float64{0, 0.5, 0},
		},
		Window: WindowConfig{
			Title: "meshcast",
			Scale: 2,
		},
		Stream: StreamConfig{
			Addr:     ":8080",
			Path:     "/ws",
			Interval: 100 * time.Millisecond,
		},
		Record: RecordConfig{
			Dir:    "recordings",
			Frames: 60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	if c.Render.Workers < 0 {
		errs = append(errs, fmt.Errorf("render workers %d must not be negative", c.Render.Workers))
	}
	if c.Render.LeafThreshold < 1 {
		errs = append(errs, fmt.Errorf("leaf threshold %d must be at least 1", c.Render.LeafThreshold))
	}
	if _, err := ParseColor(c.Render.Background); err != nil {
		errs = append(errs, fmt.Errorf("render background: %w", err))
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera fov %.1f must be between 0 and 180 degrees", c.Camera.FovDegrees))
	}
	if c.Camera.ViewDistance > 0 && c.Camera.Epsilon >= c.Camera.ViewDistance {
		errs = append(errs, fmt.Errorf("camera epsilon %g must be below view distance %g", c.Camera.Epsilon, c.Camera.ViewDistance))
	}
	if c.Mesh.Segments < 1 {
		errs = append(errs, fmt.Errorf("mesh segments %d must be at least 1", c.Mesh.Segments))
	}
	if c.Window.Scale < 1 {
		errs = append(errs, fmt.Errorf("window scale %d must be at least 1", c.Window.Scale))
	}
	return errors.Join(errs...)
}

// FovRadians returns the configured field of view in radians.
func (c CameraConfig) FovRadians() float64 {
	return c.FovDegrees * gomath.Pi / 180
}

// BackgroundColor returns the parsed background, falling back to opaque
// black when the setting is malformed.
func (c RenderConfig) BackgroundColor() color.RGBA {
	bg, err := ParseColor(c.Background)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return bg
}

// ParseColor parses an opaque #rrggbb color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

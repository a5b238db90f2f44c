// Package session wires a configured mesh, camera and renderer into a
// frame loop shared by the viewer and the command line tool.
package session

import (
	"fmt"
	"image/color"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/camera"
	"github.com/Faultbox/meshcast/internal/config"
	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/mesh"
	"github.com/Faultbox/meshcast/internal/meshindex"
	"github.com/Faultbox/meshcast/internal/octree"
	"github.com/Faultbox/meshcast/internal/render"
	"github.com/Faultbox/meshcast/internal/scene"
	"github.com/Faultbox/meshcast/internal/stream"
	"github.com/Faultbox/meshcast/internal/texture"
	"github.com/Faultbox/meshcast/pkg/math"
)

var log = logger.Session

// Checkerboard colors used when no texture file is configured.
var (
	checkerLight = color.RGBA{R: 230, G: 230, B: 220, A: 255}
	checkerDark  = color.RGBA{R: 40, G: 90, B: 160, A: 255}
)

// Session owns the live scene. It is not safe for concurrent use: inputs
// from other goroutines are sent as controls and applied between frames.
type Session struct {
	cfg      *config.Config
	index    *meshindex.MeshIndex
	scene    *scene.Scene
	camera   camera.Camera
	renderer *render.TiledRenderer
	frames   uint64
}

// LoadTexture returns the configured texture, or a checkerboard when no
// path is set.
func LoadTexture(cfg config.MeshConfig) (*texture.Texture, error) {
	if cfg.Texture == "" {
		return texture.Checker(256, 8, checkerLight, checkerDark), nil
	}
	tex, err := texture.Load(cfg.Texture)
	if err != nil {
		return nil, fmt.Errorf("loading texture: %w", err)
	}
	return tex, nil
}

// LoadMesh builds the configured procedural mesh.
func LoadMesh(cfg config.MeshConfig) (*mesh.Mesh, error) {
	tex, err := LoadTexture(cfg)
	if err != nil {
		return nil, err
	}
	loader := mesh.Procedural{Segments: cfg.Segments, Size: cfg.Size, Texture: tex}
	m, err := loader.Load(cfg.Shape)
	if err != nil {
		return nil, fmt.Errorf("loading mesh: %w", err)
	}
	m.Translate(math.Vec3{X: cfg.Position[0], Y: cfg.Position[1], Z: cfg.Position[2]})
	return m, nil
}

// BuildIndex loads the configured mesh and indexes it.
func BuildIndex(cfg *config.Config) (*meshindex.MeshIndex, error) {
	m, err := LoadMesh(cfg.Mesh)
	if err != nil {
		return nil, err
	}
	return meshindex.Build(m,
		octree.WithLeafThreshold(cfg.Render.LeafThreshold),
		octree.WithParallel(cfg.Render.ParallelBuild),
	)
}

// CameraFromConfig returns the configured camera. The vertical field of
// view follows the frame aspect ratio.
func CameraFromConfig(cfg *config.Config) camera.Camera {
	c := cfg.Camera
	cam := camera.New(math.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]}, c.Pitch, c.Yaw, c.Roll)
	fovX := c.FovRadians()
	aspect := float64(cfg.Render.Height) / float64(cfg.Render.Width)
	cam = cam.WithFov(fovX, 2*gomath.Atan(gomath.Tan(fovX/2)*aspect))
	cam.Epsilon = c.Epsilon
	cam.ViewDistance = c.ViewDistance
	return cam
}

// New builds the scene described by cfg and starts a renderer.
func New(cfg *config.Config) (*Session, error) {
	index, err := BuildIndex(cfg)
	if err != nil {
		return nil, err
	}

	cam := CameraFromConfig(cfg)
	s := &Session{
		cfg:      cfg,
		index:    index,
		scene:    scene.New(cam.Limits(), index),
		camera:   cam,
		renderer: render.New(cfg.Render.Workers, render.WithBackground(cfg.Render.BackgroundColor())),
	}

	st := index.Stats()
	log.Info("session ready",
		zap.String("shape", cfg.Mesh.Shape),
		zap.Int("faces", st.Faces),
		zap.Int("nodes", st.Nodes),
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.Int("workers", s.renderer.Workers()),
	)
	return s, nil
}

// Index returns the mesh index.
func (s *Session) Index() *meshindex.MeshIndex { return s.index }

// Scene returns the live scene.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Camera returns the current camera.
func (s *Session) Camera() camera.Camera { return s.camera }

// SetCamera replaces the camera.
func (s *Session) SetCamera(c camera.Camera) { s.camera = c }

// Frames returns the number of frames rendered so far.
func (s *Session) Frames() uint64 { return s.frames }

// Stats returns the statistics of the last frame.
func (s *Session) Stats() render.FrameStats { return s.renderer.Stats() }

// Apply executes one control.
func (s *Session) Apply(c stream.Control) error {
	v := c.Vec()
	switch c.Type {
	case stream.ControlMove:
		s.camera = s.camera.Moved(v.X, v.Y, v.Z)
	case stream.ControlTurn:
		s.camera = s.camera.Turned(v.X, v.Y, v.Z)
	case stream.ControlRotate:
		s.index.Rotate(v)
	case stream.ControlTranslate:
		s.index.Translate(v)
	case stream.ControlMoveTo:
		s.index.MoveTo(v)
	case stream.ControlScale:
		if err := s.index.Scale(v); err != nil {
			return fmt.Errorf("applying scale: %w", err)
		}
	default:
		return fmt.Errorf("unknown control type %q", c.Type)
	}
	log.Debug("control applied", zap.String("type", string(c.Type)), zap.Float64s("args", []float64{v.X, v.Y, v.Z}))
	return nil
}

// Drain applies every control waiting on ch without blocking. Invalid
// controls are logged and skipped.
func (s *Session) Drain(ch <-chan stream.Control) int {
	n := 0
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return n
			}
			if err := s.Apply(c); err != nil {
				log.Warn("control rejected", zap.Error(err))
				continue
			}
			n++
		default:
			return n
		}
	}
}

// Step advances the configured mesh spin by dt seconds.
func (s *Session) Step(dt float64) {
	spin := s.cfg.Mesh.Spin
	r := math.Vec3{X: spin[0], Y: spin[1], Z: spin[2]}.Scale(dt)
	if r.IsZero() {
		return
	}
	s.index.Rotate(r)
}

// Render renders one frame at the configured size.
func (s *Session) Render() (*render.Frame, error) {
	frame, err := s.renderer.Render(s.scene, s.camera, s.cfg.Render.Width, s.cfg.Render.Height)
	if err != nil {
		return nil, err
	}
	s.frames++
	return frame, nil
}

// Close stops the renderer.
func (s *Session) Close() {
	s.renderer.Close()
}

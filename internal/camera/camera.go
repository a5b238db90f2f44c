// Package camera generates primary rays for the renderer.
//
// The camera looks down +X in its local frame. Screen columns run along
// +Z and screen rows along +Y, so row 0 is the -Y edge of the view.
package camera

import (
	gomath "math"

	"github.com/Faultbox/meshcast/internal/scene"
	"github.com/Faultbox/meshcast/pkg/math"
)

// Default optics.
var (
	DefaultFov = 2 * gomath.Atan(0.5)
)

const (
	DefaultEpsilon      = 1e-4
	DefaultViewDistance = 100.0
)

// Camera is a value type: the renderer copies it once per frame and
// workers only read it.
type Camera struct {
	Position math.Vec3

	Pitch float64 // rotation about X, radians
	Yaw   float64 // rotation about Y, radians
	Roll  float64 // rotation about Z, radians

	FovX float64
	FovY float64

	Epsilon      float64 // near limit
	ViewDistance float64 // far limit
}

// New creates a camera with the default field of view and limits.
func New(position math.Vec3, pitch, yaw, roll float64) Camera {
	return Camera{
		Position:     position,
		Pitch:        pitch,
		Yaw:          yaw,
		Roll:         roll,
		FovX:         DefaultFov,
		FovY:         DefaultFov,
		Epsilon:      DefaultEpsilon,
		ViewDistance: DefaultViewDistance,
	}
}

// Rotation returns the camera's orientation matrix.
func (c Camera) Rotation() math.Mat3 {
	return math.Euler(math.Vec3{X: c.Pitch, Y: c.Yaw, Z: c.Roll})
}

// Ray returns the unit world-space direction through the center of pixel
// (px, py) of a w x h image.
func (c Camera) Ray(px, py, w, h int) math.Vec3 {
	return c.rayWith(c.Rotation(), c.tangents(), px, py, w, h)
}

// tangents caches tan(FovX/2), tan(FovY/2).
type tangents struct{ x, y float64 }

func (c Camera) tangents() tangents {
	return tangents{x: gomath.Tan(c.FovX / 2), y: gomath.Tan(c.FovY / 2)}
}

func (c Camera) rayWith(rot math.Mat3, tan tangents, px, py, w, h int) math.Vec3 {
	local := math.Vec3{
		X: 1,
		Y: (2*(float64(py)+0.5)/float64(h) - 1) * tan.y,
		Z: (2*(float64(px)+0.5)/float64(w) - 1) * tan.x,
	}
	return rot.Apply(local).Normalize()
}

// Rays returns a generator that reuses the rotation matrix and FOV
// tangents across pixels of one frame.
func (c Camera) Rays(w, h int) func(px, py int) math.Vec3 {
	rot := c.Rotation()
	tan := c.tangents()
	return func(px, py int) math.Vec3 {
		return c.rayWith(rot, tan, px, py, w, h)
	}
}

// Forward, Right and Up are the camera axes in world space.
func (c Camera) Forward() math.Vec3 { return c.Rotation().Apply(math.Vec3{X: 1}) }
func (c Camera) Right() math.Vec3   { return c.Rotation().Apply(math.Vec3{Z: 1}) }
func (c Camera) Up() math.Vec3      { return c.Rotation().Apply(math.Vec3{Y: -1}) }

// Moved returns a copy translated along the camera's own axes.
func (c Camera) Moved(forward, right, up float64) Camera {
	rot := c.Rotation()
	delta := rot.Apply(math.Vec3{X: forward, Y: -up, Z: right})
	c.Position = c.Position.Add(delta)
	return c
}

// Turned returns a copy with the angles offset.
func (c Camera) Turned(dPitch, dYaw, dRoll float64) Camera {
	c.Pitch += dPitch
	c.Yaw += dYaw
	c.Roll += dRoll
	return c
}

// WithFov returns a copy with new horizontal and vertical fields of view.
// Non-positive values keep the current setting.
func (c Camera) WithFov(fovX, fovY float64) Camera {
	if fovX > 0 {
		c.FovX = fovX
	}
	if fovY > 0 {
		c.FovY = fovY
	}
	return c
}

// Limits returns the hit distance window for a scene rendered from c.
func (c Camera) Limits() scene.Limits {
	return scene.Limits{Epsilon: c.Epsilon, ViewDistance: c.ViewDistance}
}

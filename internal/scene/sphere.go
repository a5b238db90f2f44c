package scene

import (
	"image/color"
	gomath "math"

	"github.com/Faultbox/meshcast/pkg/math"
)

// Sphere is an analytic sphere with a flat color.
type Sphere struct {
	Center math.Vec3
	Radius float64
	Color  color.RGBA
}

// NewSphere creates a sphere.
func NewSphere(center math.Vec3, radius float64, c color.RGBA) *Sphere {
	return &Sphere{Center: center, Radius: radius, Color: c}
}

// Intersect returns the nearest hit in front of origin. From inside the
// sphere that is the exit point.
func (s *Sphere) Intersect(origin, dir math.Vec3) Collision {
	return s.IntersectWithin(origin, dir, Limits{})
}

// IntersectWithin returns the nearest root accepted by l. When the entry
// point is rejected the exit point is tried.
func (s *Sphere) IntersectWithin(origin, dir math.Vec3, l Limits) Collision {
	dir = dir.Normalize()
	oc := origin.Sub(s.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return Miss
	}

	sq := gomath.Sqrt(disc)
	for _, t := range [2]float64{-b - sq, -b + sq} {
		if t < 0 || !l.Accepts(t) {
			continue
		}
		return Collision{
			Hit:      true,
			Point:    origin.Add(dir.Scale(t)),
			Distance: t,
			Color:    s.Color,
		}
	}
	return Miss
}

// Rotate is a no-op: a sphere is symmetric about its own center.
func (s *Sphere) Rotate(math.Vec3) {}

// Translate moves the center.
func (s *Sphere) Translate(p math.Vec3) {
	s.Center = s.Center.Add(p)
}

// Scale multiplies the radius by s.X; a sphere stays a sphere.
func (s *Sphere) Scale(f math.Vec3) error {
	s.Radius *= gomath.Abs(f.X)
	return nil
}

// Kind implements Object.
func (s *Sphere) Kind() Kind { return KindSphere }

// Snapshot implements Object.
func (s *Sphere) Snapshot() Object {
	c := *s
	return &c
}

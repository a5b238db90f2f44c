// Package scene defines what the renderer can draw: a closed set of
// object kinds behind the Renderable capability, and a Scene that picks
// the nearest hit across them.
package scene

import (
	"image/color"

	"github.com/Faultbox/meshcast/pkg/math"
)

// Collision is the answer to a single ray.
type Collision struct {
	Hit      bool
	Point    math.Vec3
	Distance float64
	Color    color.RGBA
}

// Miss is the zero Collision.
var Miss = Collision{}

// Renderable answers ray queries. Implementations must be safe for
// concurrent Intersect calls while nothing mutates them.
type Renderable interface {
	Intersect(origin, dir math.Vec3) Collision
}

// LimitedRenderable applies Limits while searching, so a hit rejected by
// the limits does not hide an accepted one farther along the ray.
type LimitedRenderable interface {
	IntersectWithin(origin, dir math.Vec3, l Limits) Collision
}

// Transformable objects move about their own centroid.
type Transformable interface {
	Rotate(r math.Vec3)
	Translate(p math.Vec3)
	Scale(s math.Vec3) error
}

// Kind identifies one of the supported object types.
type Kind int

const (
	KindMesh Kind = iota
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindSphere:
		return "sphere"
	}
	return "unknown"
}

// Object is a scene member.
type Object interface {
	Renderable
	Transformable
	Kind() Kind
	Snapshot() Object
}

// Limits bounds accepted hit distances. A zero ViewDistance means no far
// limit.
type Limits struct {
	Epsilon      float64
	ViewDistance float64
}

// Accepts reports whether a hit at distance d is within the limits.
func (l Limits) Accepts(d float64) bool {
	if d < l.Epsilon {
		return false
	}
	return l.ViewDistance <= 0 || d <= l.ViewDistance
}

// Scene is an ordered list of objects. It must not be mutated while a
// frame is rendering; hand the renderer a Snapshot instead.
type Scene struct {
	Objects []Object
	Limits  Limits
}

// New creates a scene.
func New(limits Limits, objects ...Object) *Scene {
	return &Scene{Objects: objects, Limits: limits}
}

// Add appends an object.
func (s *Scene) Add(o Object) {
	s.Objects = append(s.Objects, o)
}

// Intersect returns the nearest accepted hit across all objects. Ties go
// to the earlier object.
func (s *Scene) Intersect(origin, dir math.Vec3) Collision {
	dir = dir.Normalize()
	if dir.IsZero() {
		return Miss
	}

	best := Miss
	for _, o := range s.Objects {
		c := s.intersectObject(o, origin, dir)
		if !c.Hit || !s.Limits.Accepts(c.Distance) {
			continue
		}
		if !best.Hit || c.Distance < best.Distance {
			best = c
		}
	}
	return best
}

func (s *Scene) intersectObject(o Object, origin, dir math.Vec3) Collision {
	if lr, ok := o.(LimitedRenderable); ok {
		return lr.IntersectWithin(origin, dir, s.Limits)
	}
	return o.Intersect(origin, dir)
}

// Snapshot deep-copies every object.
func (s *Scene) Snapshot() *Scene {
	objects := make([]Object, len(s.Objects))
	for i, o := range s.Objects {
		objects[i] = o.Snapshot()
	}
	return &Scene{Objects: objects, Limits: s.Limits}
}

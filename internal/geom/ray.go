// Package geom provides the triangle intersection primitive and the
// bounding-sphere culling test shared by triangles and octree nodes.
package geom

import (
	"github.com/Faultbox/meshcast/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing the direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Sphere is anything carrying a cached bounding sphere.
type Sphere interface {
	Centroid() math.Vec3
	BoundRadius() float64
}

// IsColliding is the cheap bounding-sphere pre-filter. It rejects spheres
// whose centroid lies behind the ray origin and spheres whose centroid is
// farther from the ray line than their radius. dir must be unit length.
func IsColliding(s Sphere, origin, dir math.Vec3) bool {
	return NearSphere(s.Centroid(), s.BoundRadius(), origin, dir)
}

// NearSphere is IsColliding for an explicit centroid and radius. Hot loops
// call it directly to avoid boxing values into the Sphere interface.
func NearSphere(m math.Vec3, radius float64, origin, dir math.Vec3) bool {
	rel := m.Sub(origin)
	if rel.Dot(dir) < 0 {
		return false
	}
	return rel.Cross(dir).Length() <= radius
}

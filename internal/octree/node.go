// Package octree implements the recursive spatial index over mesh triangles.
//
// A node is either a leaf holding up to LeafThreshold triangles, or an
// internal node with exactly eight children split around the node's own
// centroid. Every node caches a bounding sphere used only for culling.
package octree

import (
	"errors"

	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/pkg/math"
)

// DefaultLeafThreshold is the face count below which a node stays a leaf.
const DefaultLeafThreshold = 200

const octants = 8

// ErrMismatchedUVs is returned when faces and UV records differ in length.
var ErrMismatchedUVs = errors.New("octree: face and uv counts differ")

// Node is a single octree node.
type Node struct {
	Children []*Node
	Faces    []geom.Triangle
	UVs      []geom.UV

	M      math.Vec3
	Radius float64
	Leaf   bool
}

// Centroid implements geom.Sphere.
func (n *Node) Centroid() math.Vec3 { return n.M }

// BoundRadius implements geom.Sphere.
func (n *Node) BoundRadius() float64 { return n.Radius }

// IsColliding runs the bounding-sphere pre-filter on this node.
func (n *Node) IsColliding(origin, dir math.Vec3) bool {
	return geom.NearSphere(n.M, n.Radius, origin, dir)
}

// Hit is a candidate intersection returned by Query.
type Hit struct {
	Hit      bool
	Point    math.Vec3
	UV       geom.UV
	Beta     float64
	Gamma    float64
	Distance float64
}

// Option configures Build.
type Option func(*options)

type options struct {
	leafThreshold int
	parallel      bool
}

func defaultOptions() options {
	return options{
		leafThreshold: DefaultLeafThreshold,
		parallel:      true,
	}
}

// WithLeafThreshold overrides DefaultLeafThreshold. Values below 1 are ignored.
func WithLeafThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.leafThreshold = n
		}
	}
}

// WithParallel toggles building the first level of octants concurrently.
func WithParallel(enabled bool) Option {
	return func(o *options) {
		o.parallel = enabled
	}
}

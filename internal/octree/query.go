package octree

import (
	gomath "math"

	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/pkg/math"
)

// Range is a window of accepted hit distances. A zero Far means no far
// limit.
type Range struct {
	Near, Far float64
}

// Contains reports whether distance d lies in the window.
func (r Range) Contains(d float64) bool {
	if d < r.Near {
		return false
	}
	return r.Far <= 0 || d <= r.Far
}

// Query returns the candidate hits of every subtree that survives culling:
// at most one (the locally nearest) per leaf. Candidates are not filtered
// against each other; use Nearest for the global answer.
func (n *Node) Query(origin, dir math.Vec3) []Hit {
	return n.QueryRange(origin, dir, Range{})
}

// QueryRange is Query restricted to hits whose distance lies in r. The
// window is applied per face, so a rejected near face never hides an
// accepted farther one in the same leaf.
func (n *Node) QueryRange(origin, dir math.Vec3, r Range) []Hit {
	dir = dir.Normalize()
	if dir.IsZero() {
		return nil
	}
	return n.query(origin, dir, r, nil)
}

func (n *Node) query(origin, dir math.Vec3, r Range, out []Hit) []Hit {
	if n.Leaf {
		if hit, ok := n.nearestFace(origin, dir, r); ok {
			out = append(out, hit)
		}
		return out
	}

	for _, child := range n.Children {
		if child.IsColliding(origin, dir) {
			out = child.query(origin, dir, r, out)
		}
	}
	return out
}

// nearestFace tests every face of a leaf and keeps the closest hit inside r.
func (n *Node) nearestFace(origin, dir math.Vec3, r Range) (Hit, bool) {
	best := Hit{Distance: gomath.MaxFloat64}

	for i := range n.Faces {
		f := &n.Faces[i]
		if !f.IsColliding(origin, dir) {
			continue
		}

		beta, gamma := f.BetaGamma(origin, dir)
		if !geom.Inside(beta, gamma) {
			continue
		}

		p := f.PointAt(beta, gamma)
		toHit := p.Sub(origin)
		if toHit.Dot(dir) < 0 {
			continue // plane intersection behind the origin
		}

		d := toHit.Length()
		if !r.Contains(d) {
			continue
		}
		if d < best.Distance {
			best = Hit{
				Hit:      true,
				Point:    p,
				UV:       n.UVs[i],
				Beta:     beta,
				Gamma:    gamma,
				Distance: d,
			}
		}
	}

	return best, best.Hit
}

// Nearest returns the candidate closest to the ray origin.
func Nearest(hits []Hit) (Hit, bool) {
	var best Hit
	found := false
	for _, h := range hits {
		if !h.Hit {
			continue
		}
		if !found || h.Distance < best.Distance {
			best = h
			found = true
		}
	}
	return best, found
}

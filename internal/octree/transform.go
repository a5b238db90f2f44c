package octree

import (
	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/pkg/math"
)

// Rotate rotates every face and every cached centroid around pivot by the
// Euler angles in r. The tree shape is kept; radii are unaffected by rigid
// motion.
func (n *Node) Rotate(r, pivot math.Vec3) {
	n.transform(math.Euler(r), pivot)
}

func (n *Node) transform(rot math.Mat3, pivot math.Vec3) {
	n.M = rot.Apply(n.M.Sub(pivot)).Add(pivot)
	for i := range n.Faces {
		n.Faces[i].Transform(rot, pivot)
	}
	for _, child := range n.Children {
		child.transform(rot, pivot)
	}
}

// Translate moves every face and cached centroid by p.
func (n *Node) Translate(p math.Vec3) {
	n.M = n.M.Add(p)
	for i := range n.Faces {
		n.Faces[i].Translate(p)
	}
	for _, child := range n.Children {
		child.Translate(p)
	}
}

// BoundsMode selects how RecomputeBounds aggregates child radii.
type BoundsMode int

const (
	// BoundsSound encloses every child sphere:
	// max(distance(child.M, node.M) + child.Radius). Matches construction.
	BoundsSound BoundsMode = iota

	// BoundsAveraged sets an internal node's radius to the mean of its
	// children's radii. It can produce spheres smaller than their contents,
	// which makes culling drop real hits. Kept for comparison only.
	BoundsAveraged
)

// RecomputeBounds refreshes centroids and radii bottom-up. Centroids are
// the face-count weighted mean of the children, which equals the mean of
// all face centroids as computed at construction.
func (n *Node) RecomputeBounds(mode BoundsMode) {
	n.recompute(mode)
}

// recompute returns the number of faces under n.
func (n *Node) recompute(mode BoundsMode) int {
	if n.Leaf {
		if len(n.Faces) > 0 {
			n.M, n.Radius = faceBounds(n.Faces)
		}
		return len(n.Faces)
	}

	counts := make([]int, len(n.Children))
	total := 0
	var sum math.Vec3
	for i, child := range n.Children {
		counts[i] = child.recompute(mode)
		total += counts[i]
		sum = sum.Add(child.M.Scale(float64(counts[i])))
	}
	if total == 0 {
		return 0
	}
	n.M = sum.Scale(1 / float64(total))

	switch mode {
	case BoundsAveraged:
		var r float64
		for _, child := range n.Children {
			r += child.Radius
		}
		n.Radius = r / float64(len(n.Children))
	default:
		var r float64
		for i, child := range n.Children {
			if counts[i] == 0 {
				continue
			}
			if d := child.M.Distance(n.M) + child.Radius; d > r {
				r = d
			}
		}
		n.Radius = r
	}
	return total
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	c := &Node{
		M:      n.M,
		Radius: n.Radius,
		Leaf:   n.Leaf,
	}
	if n.Faces != nil {
		c.Faces = append([]geom.Triangle(nil), n.Faces...)
		c.UVs = append([]geom.UV(nil), n.UVs...)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

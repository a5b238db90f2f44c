package octree

import (
	"fmt"

	"github.com/Faultbox/meshcast/internal/geom"
)

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes        int
	Leaves       int
	EmptyLeaves  int
	Faces        int
	MaxDepth     int
	MaxLeafFaces int
}

// AvgLeafFaces returns the mean face count over non-empty leaves.
func (s Stats) AvgLeafFaces() float64 {
	filled := s.Leaves - s.EmptyLeaves
	if filled == 0 {
		return 0
	}
	return float64(s.Faces) / float64(filled)
}

// Walk visits every node depth-first, parents before children.
// The root has depth 0.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Stats collects node counts and depth information.
func (n *Node) Stats() Stats {
	var s Stats
	n.Walk(func(node *Node, depth int) {
		s.Nodes++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if !node.Leaf {
			return
		}
		s.Leaves++
		s.Faces += len(node.Faces)
		if len(node.Faces) == 0 {
			s.EmptyLeaves++
		}
		if len(node.Faces) > s.MaxLeafFaces {
			s.MaxLeafFaces = len(node.Faces)
		}
	})
	return s
}

// AllFaces returns every face stored in the tree's leaves.
func (n *Node) AllFaces() []geom.Triangle {
	var out []geom.Triangle
	n.Walk(func(node *Node, _ int) {
		out = append(out, node.Faces...)
	})
	return out
}

// Check verifies the structural invariants: leaves have no children and
// parallel face/uv slices; internal nodes have exactly eight children and
// no faces.
func (n *Node) Check() error {
	var err error
	n.Walk(func(node *Node, depth int) {
		if err != nil {
			return
		}
		switch {
		case node.Leaf && len(node.Children) != 0:
			err = fmt.Errorf("leaf at depth %d has %d children", depth, len(node.Children))
		case node.Leaf && len(node.Faces) != len(node.UVs):
			err = fmt.Errorf("leaf at depth %d has %d faces and %d uvs", depth, len(node.Faces), len(node.UVs))
		case !node.Leaf && len(node.Children) != octants:
			err = fmt.Errorf("internal node at depth %d has %d children", depth, len(node.Children))
		case !node.Leaf && len(node.Faces) != 0:
			err = fmt.Errorf("internal node at depth %d holds %d faces", depth, len(node.Faces))
		}
	})
	return err
}

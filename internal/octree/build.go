package octree

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/pkg/math"
)

var log = logger.Octree

// Build constructs an octree over faces. uvs must be parallel to faces.
// The input slices are copied; the tree never aliases caller memory.
func Build(faces []geom.Triangle, uvs []geom.UV, opts ...Option) (*Node, error) {
	if len(faces) != len(uvs) {
		return nil, fmt.Errorf("%w: %d faces, %d uv records", ErrMismatchedUVs, len(faces), len(uvs))
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	faces = append([]geom.Triangle(nil), faces...)
	uvs = append([]geom.UV(nil), uvs...)

	start := time.Now()
	var root *Node
	if o.parallel {
		root = buildParallel(faces, uvs, o.leafThreshold)
	} else {
		root = build(faces, uvs, o.leafThreshold)
	}

	log.Debug("octree built",
		zap.Int("faces", len(faces)),
		zap.Int("leafThreshold", o.leafThreshold),
		zap.Bool("parallel", o.parallel),
		zap.Duration("took", time.Since(start)),
	)
	return root, nil
}

// build is the single-threaded recursive constructor.
func build(faces []geom.Triangle, uvs []geom.UV, threshold int) *Node {
	m, r := faceBounds(faces)
	if len(faces) < threshold {
		return newLeaf(faces, uvs, m, r)
	}

	buckets, uvBuckets, ok := partition(faces, uvs, m)
	if !ok {
		return newLeaf(faces, uvs, m, r)
	}

	n := &Node{M: m, Radius: r, Children: make([]*Node, octants)}
	for i := 0; i < octants; i++ {
		n.Children[i] = build(buckets[i], uvBuckets[i], threshold)
	}
	return n
}

// octantResult carries a finished child together with the octant it was
// built for, so placement never depends on completion order.
type octantResult struct {
	index int
	node  *Node
}

// buildParallel builds the first level of octants on separate goroutines.
// Deeper levels are built sequentially inside each goroutine.
func buildParallel(faces []geom.Triangle, uvs []geom.UV, threshold int) *Node {
	m, r := faceBounds(faces)
	if len(faces) < threshold {
		return newLeaf(faces, uvs, m, r)
	}

	buckets, uvBuckets, ok := partition(faces, uvs, m)
	if !ok {
		return newLeaf(faces, uvs, m, r)
	}

	results := make(chan octantResult, octants)
	for i := 0; i < octants; i++ {
		go func(index int) {
			results <- octantResult{
				index: index,
				node:  build(buckets[index], uvBuckets[index], threshold),
			}
		}(i)
	}

	n := &Node{M: m, Radius: r, Children: make([]*Node, octants)}
	for received := 0; received < octants; received++ {
		res := <-results
		n.Children[res.index] = res.node
	}
	return n
}

func newLeaf(faces []geom.Triangle, uvs []geom.UV, m math.Vec3, r float64) *Node {
	return &Node{
		Faces:  faces,
		UVs:    uvs,
		M:      m,
		Radius: r,
		Leaf:   true,
	}
}

// faceBounds returns the mean of the face centroids and the radius of the
// smallest sphere around that mean enclosing every face's own sphere.
func faceBounds(faces []geom.Triangle) (math.Vec3, float64) {
	if len(faces) == 0 {
		return math.Vec3{}, 0
	}

	var sum math.Vec3
	for i := range faces {
		sum = sum.Add(faces[i].M)
	}
	m := sum.Scale(1 / float64(len(faces)))

	var r float64
	for i := range faces {
		if d := faces[i].M.Distance(m) + faces[i].Radius; d > r {
			r = d
		}
	}
	return m, r
}

// octant returns the child slot for point p relative to center m:
// bit 2 is x >= m.X, bit 1 is y >= m.Y, bit 0 is z >= m.Z.
func octant(p, m math.Vec3) int {
	idx := 0
	if p.X >= m.X {
		idx |= 4
	}
	if p.Y >= m.Y {
		idx |= 2
	}
	if p.Z >= m.Z {
		idx |= 1
	}
	return idx
}

// partition splits faces into eight buckets by centroid octant. ok is false
// when every face lands in the same bucket, in which case splitting would
// never terminate.
func partition(faces []geom.Triangle, uvs []geom.UV, m math.Vec3) (buckets [octants][]geom.Triangle, uvBuckets [octants][]geom.UV, ok bool) {
	for i := range faces {
		idx := octant(faces[i].M, m)
		buckets[idx] = append(buckets[idx], faces[i])
		uvBuckets[idx] = append(uvBuckets[idx], uvs[i])
	}

	for i := range buckets {
		if len(buckets[i]) == len(faces) {
			return buckets, uvBuckets, false
		}
	}
	return buckets, uvBuckets, true
}

// Package meshindex ties a source mesh to the octree built over it and
// resolves ray hits to texture colors.
package meshindex

import (
	"fmt"
	"image/color"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/logger"
	"github.com/Faultbox/meshcast/internal/mesh"
	"github.com/Faultbox/meshcast/internal/octree"
	"github.com/Faultbox/meshcast/internal/scene"
	"github.com/Faultbox/meshcast/internal/texture"
	"github.com/Faultbox/meshcast/pkg/math"
)

var log = logger.MeshIndex

var (
	// MissColor is returned by Query when the ray hits nothing. Alpha 0
	// marks it as a miss.
	MissColor = color.RGBA{}

	// ErrorColor is returned when a hit maps outside the texture buffer.
	ErrorColor = color.RGBA{R: 255, A: 255}
)

// MeshIndex owns an octree root and the mesh it was built from. Rigid
// transforms keep both in sync; Scale rebuilds the tree.
//
// A MeshIndex is safe for concurrent queries. Transforms must not run
// while queries are in flight.
type MeshIndex struct {
	root   *octree.Node
	source *mesh.Mesh
	opts   []octree.Option
}

// Build validates m and builds an index over a private copy of it. An
// undersized texture buffer is accepted.
func Build(m *mesh.Mesh, opts ...octree.Option) (*MeshIndex, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("building mesh index: %w", err)
	}

	if err := m.Texture.Validate(); err != nil {
		log.Warn("texture does not cover its size; affected texels render the error color",
			zap.String("mesh", m.Name), zap.Error(err))
	}

	source := m.Clone()
	root, err := octree.Build(source.Faces, source.UVs, opts...)
	if err != nil {
		return nil, fmt.Errorf("building mesh index: %w", err)
	}

	log.Info("mesh index built",
		zap.String("mesh", source.Name),
		zap.Int("faces", len(source.Faces)),
		zap.Int("texture_width", source.Texture.Width),
		zap.Int("texture_height", source.Texture.Height),
	)

	return &MeshIndex{root: root, source: source, opts: opts}, nil
}

// Root returns the octree root.
func (mi *MeshIndex) Root() *octree.Node { return mi.root }

// Source returns the indexed mesh. Callers must not mutate it directly.
func (mi *MeshIndex) Source() *mesh.Mesh { return mi.source }

// Centroid returns the current centroid of the source mesh.
func (mi *MeshIndex) Centroid() math.Vec3 { return mi.source.Centroid() }

// Stats returns the octree shape summary.
func (mi *MeshIndex) Stats() octree.Stats { return mi.root.Stats() }

// Rotate rotates the mesh around its centroid.
func (mi *MeshIndex) Rotate(r math.Vec3) {
	mi.RotateAbout(r, mi.source.Centroid())
}

// RotateAbout rotates the mesh around an arbitrary pivot.
func (mi *MeshIndex) RotateAbout(r, pivot math.Vec3) {
	mi.source.Rotate(r, pivot)
	mi.root.Rotate(r, pivot)
}

// MoveTo translates the mesh so its centroid lands on p.
func (mi *MeshIndex) MoveTo(p math.Vec3) {
	mi.Translate(p.Sub(mi.source.Centroid()))
}

// Translate moves the mesh by p.
func (mi *MeshIndex) Translate(p math.Vec3) {
	mi.source.Translate(p)
	mi.root.Translate(p)
}

// Scale scales the mesh component-wise about its centroid and rebuilds the
// tree, since both radii and octant membership change.
func (mi *MeshIndex) Scale(s math.Vec3) error {
	mi.source.ScaleAbout(s, mi.source.Centroid())

	root, err := octree.Build(mi.source.Faces, mi.source.UVs, mi.opts...)
	if err != nil {
		return fmt.Errorf("rebuilding after scale: %w", err)
	}
	mi.root = root
	return nil
}

// RecomputeBounds refreshes the tree's cached spheres in place.
func (mi *MeshIndex) RecomputeBounds(mode octree.BoundsMode) {
	mi.root.RecomputeBounds(mode)
}

// Hit returns the nearest intersection along the ray.
func (mi *MeshIndex) Hit(origin, dir math.Vec3) (octree.Hit, bool) {
	return octree.Nearest(mi.root.Query(origin, dir))
}

// Query returns the texture color at the nearest hit, MissColor on a miss
// and ErrorColor when the UVs point outside the texture.
func (mi *MeshIndex) Query(origin, dir math.Vec3) color.RGBA {
	hit, ok := mi.Hit(origin, dir)
	if !ok {
		return MissColor
	}
	return mi.colorAt(hit)
}

func (mi *MeshIndex) colorAt(hit octree.Hit) color.RGBA {
	c, ok := Sample(mi.source.Texture, hit)
	if !ok {
		return ErrorColor
	}
	return c
}

// Sample resolves a hit's interpolated UV to a texel. v grows upward, so
// v=1 is the top row.
func Sample(tex *texture.Texture, hit octree.Hit) (color.RGBA, bool) {
	uv := hit.UV.Interpolate(hit.Beta, hit.Gamma)
	tx := int(gomath.Floor(uv.X * float64(tex.Width)))
	ty := int(gomath.Floor((1 - uv.Y) * float64(tex.Height)))
	return tex.At((tx + ty*tex.Width) * texture.BytesPerPixel)
}

// Intersect implements scene.Renderable.
func (mi *MeshIndex) Intersect(origin, dir math.Vec3) scene.Collision {
	hit, ok := mi.Hit(origin, dir)
	if !ok {
		return scene.Miss
	}
	return mi.collision(hit)
}

func (mi *MeshIndex) collision(hit octree.Hit) scene.Collision {
	return scene.Collision{
		Hit:      true,
		Point:    hit.Point,
		Distance: hit.Distance,
		Color:    mi.colorAt(hit),
	}
}

// IntersectWithin implements scene.LimitedRenderable. The limits are
// applied per face inside each leaf.
func (mi *MeshIndex) IntersectWithin(origin, dir math.Vec3, l scene.Limits) scene.Collision {
	r := octree.Range{Near: l.Epsilon, Far: l.ViewDistance}
	hit, ok := octree.Nearest(mi.root.QueryRange(origin, dir, r))
	if !ok {
		return scene.Miss
	}
	return mi.collision(hit)
}

// Kind implements scene.Object.
func (mi *MeshIndex) Kind() scene.Kind { return scene.KindMesh }

// Clone returns a deep copy sharing only the immutable texture.
func (mi *MeshIndex) Clone() *MeshIndex {
	return &MeshIndex{
		root:   mi.root.Clone(),
		source: mi.source.Clone(),
		opts:   mi.opts,
	}
}

// Snapshot implements scene.Object.
func (mi *MeshIndex) Snapshot() scene.Object { return mi.Clone() }

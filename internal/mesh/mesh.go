// Package mesh holds the source geometry an index is built from: a face
// list, one UV record per face and the texture the UVs sample.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/internal/texture"
	"github.com/Faultbox/meshcast/pkg/math"
)

var (
	// ErrEmptyMesh is returned for a mesh with no faces.
	ErrEmptyMesh = errors.New("mesh has no faces")
	// ErrMismatchedUVs is returned when faces and UV records differ in length.
	ErrMismatchedUVs = errors.New("face and uv counts differ")
	// ErrInvalidTexture is returned when the texture is missing or has no
	// area. A buffer shorter than width*height*3 is accepted; lookups past
	// its end resolve to an error color.
	ErrInvalidTexture = errors.New("invalid texture")
)

// Mesh is a triangle list with parallel UVs and a texture.
type Mesh struct {
	Name    string
	Faces   []geom.Triangle
	UVs     []geom.UV
	Texture *texture.Texture
}

// Loader produces meshes from some external source. Parsing mesh files is
// left to implementations outside this module.
type Loader interface {
	Load(name string) (*Mesh, error)
}

// Validate checks the structural requirements for building an index.
func (m *Mesh) Validate() error {
	if len(m.Faces) == 0 {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrEmptyMesh)
	}
	if len(m.Faces) != len(m.UVs) {
		return fmt.Errorf("mesh %q: %w: %d faces, %d uv records", m.Name, ErrMismatchedUVs, len(m.Faces), len(m.UVs))
	}
	if m.Texture == nil {
		return fmt.Errorf("mesh %q: %w: no texture", m.Name, ErrInvalidTexture)
	}
	if m.Texture.Width <= 0 || m.Texture.Height <= 0 {
		return fmt.Errorf("mesh %q: %w: size %dx%d", m.Name, ErrInvalidTexture, m.Texture.Width, m.Texture.Height)
	}
	return nil
}

// Centroid is the mean of the face centroids.
func (m *Mesh) Centroid() math.Vec3 {
	if len(m.Faces) == 0 {
		return math.Vec3{}
	}
	var sum math.Vec3
	for i := range m.Faces {
		sum = sum.Add(m.Faces[i].M)
	}
	return sum.Scale(1 / float64(len(m.Faces)))
}

// Rotate rotates every face around pivot by the Euler angles in r.
func (m *Mesh) Rotate(r, pivot math.Vec3) {
	rot := math.Euler(r)
	for i := range m.Faces {
		m.Faces[i].Transform(rot, pivot)
	}
}

// Translate moves every face by p.
func (m *Mesh) Translate(p math.Vec3) {
	for i := range m.Faces {
		m.Faces[i].Translate(p)
	}
}

// ScaleAbout scales every face component-wise by s relative to pivot.
func (m *Mesh) ScaleAbout(s, pivot math.Vec3) {
	for i := range m.Faces {
		m.Faces[i].ScaleAbout(s, pivot)
	}
}

// Clone returns a deep copy. The texture is shared; it is never mutated.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:    m.Name,
		Faces:   append([]geom.Triangle(nil), m.Faces...),
		UVs:     append([]geom.UV(nil), m.UVs...),
		Texture: m.Texture,
	}
}

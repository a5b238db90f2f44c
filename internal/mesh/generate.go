package mesh

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/internal/texture"
	"github.com/Faultbox/meshcast/pkg/math"
)

// builder accumulates faces and their UVs in lock-step.
type builder struct {
	faces []geom.Triangle
	uvs   []geom.UV
}

func (b *builder) tri(r, a, c math.Vec3, ur, ua, uc math.Vec2) {
	b.faces = append(b.faces, geom.NewTriangle(r, a, c))
	b.uvs = append(b.uvs, geom.UV{R: ur, A: ua, B: uc})
}

// quad emits two triangles for the corners p00, p10, p11, p01 in order.
func (b *builder) quad(p00, p10, p11, p01 math.Vec3, u00, u10, u11, u01 math.Vec2) {
	b.tri(p00, p10, p11, u00, u10, u11)
	b.tri(p00, p11, p01, u00, u11, u01)
}

func (b *builder) mesh(name string, tex *texture.Texture) *Mesh {
	return &Mesh{Name: name, Faces: b.faces, UVs: b.uvs, Texture: tex}
}

// Plane builds a size x size square in the YZ plane centered on center,
// facing -X, subdivided into segments x segments quads. u runs along +Z
// and v along -Y, so a camera looking down +X sees the texture upright.
// Produces 2*segments^2 faces.
func Plane(center math.Vec3, size float64, segments int, tex *texture.Texture) *Mesh {
	if segments < 1 {
		segments = 1
	}
	var b builder
	step := size / float64(segments)
	half := size / 2

	point := func(i, j int) math.Vec3 {
		return center.Add(math.Vec3{Y: float64(j)*step - half, Z: float64(i)*step - half})
	}
	uv := func(i, j int) math.Vec2 {
		return math.Vec2{X: float64(i) / float64(segments), Y: 1 - float64(j)/float64(segments)}
	}

	for j := 0; j < segments; j++ {
		for i := 0; i < segments; i++ {
			b.quad(point(i, j), point(i+1, j), point(i+1, j+1), point(i, j+1),
				uv(i, j), uv(i+1, j), uv(i+1, j+1), uv(i, j+1))
		}
	}
	return b.mesh("plane", tex)
}

// UVSphere builds a latitude/longitude sphere with segments stacks and
// 2*segments slices. v=1 is the pole at -Y, the top of the screen. The
// pole rows emit one triangle per slice, so the mesh has
// 4*segments^2 - 4*segments faces.
func UVSphere(center math.Vec3, radius float64, segments int, tex *texture.Texture) *Mesh {
	if segments < 2 {
		segments = 2
	}
	stacks, slices := segments, 2*segments
	var b builder

	point := func(stack, slice int) math.Vec3 {
		theta := gomath.Pi * float64(stack) / float64(stacks)
		phi := 2 * gomath.Pi * float64(slice) / float64(slices)
		switch stack {
		case 0:
			return center.Add(math.Vec3{Y: -radius})
		case stacks:
			return center.Add(math.Vec3{Y: radius})
		}
		return center.Add(math.Vec3{
			X: radius * gomath.Sin(theta) * gomath.Cos(phi),
			Y: -radius * gomath.Cos(theta),
			Z: radius * gomath.Sin(theta) * gomath.Sin(phi),
		})
	}
	uv := func(stack, slice int) math.Vec2 {
		return math.Vec2{X: float64(slice) / float64(slices), Y: 1 - float64(stack)/float64(stacks)}
	}

	for st := 0; st < stacks; st++ {
		for sl := 0; sl < slices; sl++ {
			p00, p10 := point(st, sl), point(st, sl+1)
			p01, p11 := point(st+1, sl), point(st+1, sl+1)
			u00, u10 := uv(st, sl), uv(st, sl+1)
			u01, u11 := uv(st+1, sl), uv(st+1, sl+1)

			switch st {
			case 0:
				b.tri(p00, p11, p01, u00, u11, u01)
			case stacks - 1:
				b.tri(p00, p10, p01, u00, u10, u01)
			default:
				b.quad(p00, p10, p11, p01, u00, u10, u11, u01)
			}
		}
	}
	return b.mesh("sphere", tex)
}

// Torus builds a ring around the Y axis with 2*segments rings along the
// major circle and segments sides around the tube: 4*segments^2 faces.
func Torus(center math.Vec3, major, minor float64, segments int, tex *texture.Texture) *Mesh {
	if segments < 3 {
		segments = 3
	}
	rings, sides := 2*segments, segments
	var b builder

	point := func(ring, side int) math.Vec3 {
		u := 2 * gomath.Pi * float64(ring) / float64(rings)
		v := 2 * gomath.Pi * float64(side) / float64(sides)
		r := major + minor*gomath.Cos(v)
		return center.Add(math.Vec3{
			X: r * gomath.Cos(u),
			Y: minor * gomath.Sin(v),
			Z: r * gomath.Sin(u),
		})
	}
	uv := func(ring, side int) math.Vec2 {
		return math.Vec2{X: float64(ring) / float64(rings), Y: float64(side) / float64(sides)}
	}

	for r := 0; r < rings; r++ {
		for s := 0; s < sides; s++ {
			b.quad(point(r, s), point(r+1, s), point(r+1, s+1), point(r, s+1),
				uv(r, s), uv(r+1, s), uv(r+1, s+1), uv(r, s+1))
		}
	}
	return b.mesh("torus", tex)
}

// Procedural is a Loader that builds meshes by shape name: "plane",
// "sphere" or "torus", centered on the origin.
type Procedural struct {
	Segments int
	Size     float64
	Texture  *texture.Texture
}

// Load implements Loader.
func (p Procedural) Load(name string) (*Mesh, error) {
	size := p.Size
	if size <= 0 {
		size = 1
	}
	switch strings.ToLower(name) {
	case "plane":
		return Plane(math.Vec3{}, 2*size, p.Segments, p.Texture), nil
	case "sphere":
		return UVSphere(math.Vec3{}, size, p.Segments, p.Texture), nil
	case "torus":
		return Torus(math.Vec3{}, size, size/3, p.Segments, p.Texture), nil
	}
	return nil, fmt.Errorf("unknown procedural mesh %q (want plane, sphere or torus)", name)
}

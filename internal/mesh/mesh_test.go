package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/meshcast/internal/geom"
	"github.com/Faultbox/meshcast/internal/texture"
	"github.com/Faultbox/meshcast/pkg/math"
)

func TestValidate(t *testing.T) {
	tex := texture.New(4, 4)
	tri := geom.NewTriangle(math.Vec3{}, math.Vec3{Z: 1}, math.Vec3{Y: 1})

	tests := []struct {
		name string
		mesh *Mesh
		want error
	}{
		{"valid", &Mesh{Faces: []geom.Triangle{tri}, UVs: []geom.UV{{}}, Texture: tex}, nil},
		{"empty", &Mesh{Texture: tex}, ErrEmptyMesh},
		{"mismatched uvs", &Mesh{Faces: []geom.Triangle{tri, tri}, UVs: []geom.UV{{}}, Texture: tex}, ErrMismatchedUVs},
		{"no texture", &Mesh{Faces: []geom.Triangle{tri}, UVs: []geom.UV{{}}}, ErrInvalidTexture},
		{"zero width texture", &Mesh{Faces: []geom.Triangle{tri}, UVs: []geom.UV{{}}, Texture: &texture.Texture{Height: 4}}, ErrInvalidTexture},
		{"short texture accepted", &Mesh{Faces: []geom.Triangle{tri}, UVs: []geom.UV{{}}, Texture: &texture.Texture{Width: 4, Height: 4, Pix: make([]byte, 12)}}, nil},
		{"empty buffer accepted", &Mesh{Faces: []geom.Triangle{tri}, UVs: []geom.UV{{}}, Texture: &texture.Texture{Width: 2, Height: 2}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGeneratorFaceCounts(t *testing.T) {
	tex := texture.New(1, 1)
	tests := []struct {
		name string
		mesh *Mesh
		want int
	}{
		{"plane 1", Plane(math.Vec3{}, 2, 1, tex), 2},
		{"plane 10", Plane(math.Vec3{}, 2, 10, tex), 200},
		{"sphere 8", UVSphere(math.Vec3{}, 1, 8, tex), 4*64 - 4*8},
		{"sphere clamps segments", UVSphere(math.Vec3{}, 1, 0, tex), 4*4 - 4*2},
		{"torus 6", Torus(math.Vec3{}, 2, 0.5, 6, tex), 4 * 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.mesh.Faces); got != tt.want {
				t.Errorf("faces = %d, want %d", got, tt.want)
			}
			if err := tt.mesh.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestGeneratedFacesAreWellFormed(t *testing.T) {
	tex := texture.New(1, 1)
	meshes := []*Mesh{
		Plane(math.Vec3{X: 3}, 4, 7, tex),
		UVSphere(math.Vec3{Y: 1}, 2, 12, tex),
		Torus(math.Vec3{}, 3, 1, 9, tex),
	}

	for _, m := range meshes {
		t.Run(m.Name, func(t *testing.T) {
			for i, f := range m.Faces {
				if f.N.Length() < 1e-12 {
					t.Fatalf("face %d is degenerate", i)
				}
				for _, uv := range []math.Vec2{m.UVs[i].R, m.UVs[i].A, m.UVs[i].B} {
					if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
						t.Fatalf("face %d has uv %v outside [0,1]", i, uv)
					}
				}
			}
		})
	}
}

func TestUVSphereVerticesOnSurface(t *testing.T) {
	center := math.Vec3{X: 1, Y: -2, Z: 3}
	m := UVSphere(center, 2.5, 10, texture.New(1, 1))
	for i, f := range m.Faces {
		for _, v := range []math.Vec3{f.R, f.A, f.B} {
			if d := v.Distance(center); gomath.Abs(d-2.5) > 1e-9 {
				t.Fatalf("face %d vertex at distance %v", i, d)
			}
		}
	}
}

func TestPlaneFacesCamera(t *testing.T) {
	m := Plane(math.Vec3{X: 5}, 2, 3, texture.New(1, 1))
	for i, f := range m.Faces {
		for _, v := range []math.Vec3{f.R, f.A, f.B} {
			if v.X != 5 {
				t.Fatalf("face %d leaves the x=5 plane", i)
			}
		}
	}
	if c := m.Centroid(); !c.ApproxEqual(math.Vec3{X: 5}, 1e-9) {
		t.Errorf("centroid = %v, want (5,0,0)", c)
	}
}

func TestTransforms(t *testing.T) {
	m := Torus(math.Vec3{}, 2, 0.5, 6, texture.New(1, 1))
	c := m.Centroid()

	shift := math.Vec3{X: 1, Y: 2, Z: 3}
	m.Translate(shift)
	if got := m.Centroid(); !got.ApproxEqual(c.Add(shift), 1e-9) {
		t.Errorf("centroid after translate = %v, want %v", got, c.Add(shift))
	}

	c = m.Centroid()
	m.ScaleAbout(math.Vec3{X: 2, Y: 2, Z: 2}, c)
	if got := m.Centroid(); !got.ApproxEqual(c, 1e-9) {
		t.Errorf("scaling about the centroid moved it to %v", got)
	}

	m.Rotate(math.Vec3{X: 0.4, Y: 1.1}, c)
	if got := m.Centroid(); !got.ApproxEqual(c, 1e-9) {
		t.Errorf("rotating about the centroid moved it to %v", got)
	}
}

func TestClone(t *testing.T) {
	m := Plane(math.Vec3{}, 1, 2, texture.New(1, 1))
	c := m.Clone()
	c.Translate(math.Vec3{X: 1})

	if m.Faces[0].R.X != 0 {
		t.Error("translating the clone moved the original")
	}
	if c.Texture != m.Texture {
		t.Error("clone should share the texture")
	}
}

func TestProcedural(t *testing.T) {
	p := Procedural{Segments: 4, Size: 1, Texture: texture.New(2, 2)}

	var _ Loader = p

	for _, name := range []string{"plane", "Sphere", "TORUS"} {
		m, err := p.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("Load(%q) produced invalid mesh: %v", name, err)
		}
	}

	if _, err := p.Load("teapot.obj"); err == nil {
		t.Error("expected error for unknown shape")
	}
}

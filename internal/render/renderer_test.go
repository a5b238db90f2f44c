package render

import (
	"bytes"
	"errors"
	"image/color"
	gomath "math"
	"testing"

	"github.com/Faultbox/meshcast/internal/camera"
	"github.com/Faultbox/meshcast/internal/mesh"
	"github.com/Faultbox/meshcast/internal/meshindex"
	"github.com/Faultbox/meshcast/internal/scene"
	"github.com/Faultbox/meshcast/internal/texture"
	"github.com/Faultbox/meshcast/pkg/math"
)

// pixelEcho answers every ray with the pixel coordinates that produced it,
// assuming an unrotated camera at the origin with the default FOV.
type pixelEcho struct{ w, h int }

func (p pixelEcho) Intersect(_, dir math.Vec3) scene.Collision {
	tan := gomath.Tan(camera.DefaultFov / 2)
	px := ((dir.Z/dir.X)/tan+1)*float64(p.w)/2 - 0.5
	py := ((dir.Y/dir.X)/tan+1)*float64(p.h)/2 - 0.5
	return scene.Collision{
		Hit:   true,
		Color: color.RGBA{R: uint8(gomath.Round(px)), G: uint8(gomath.Round(py)), A: 255},
	}
}

// nothing never hits.
type nothing struct{}

func (nothing) Intersect(_, _ math.Vec3) scene.Collision { return scene.Miss }

func TestScatterPlacesEveryPixel(t *testing.T) {
	cam := camera.New(math.Vec3{}, 0, 0, 0)

	tests := []struct {
		name    string
		workers int
		w, h    int
	}{
		{"single worker", 1, 16, 9},
		{"eight workers", 8, 16, 9},
		{"uneven columns", 8, 13, 7},
		{"more workers than columns", 8, 3, 5},
		{"odd pool", 3, 20, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.workers)
			defer r.Close()

			frame, err := r.Render(pixelEcho{w: tt.w, h: tt.h}, cam, tt.w, tt.h)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if frame.Width() != tt.w || frame.Height() != tt.h {
				t.Fatalf("frame is %dx%d", frame.Width(), frame.Height())
			}

			for y := 0; y < tt.h; y++ {
				for x := 0; x < tt.w; x++ {
					c := frame.RGBAAt(x, y)
					if int(c.R) != x || int(c.G) != y {
						t.Fatalf("pixel (%d,%d) holds the ray for (%d,%d)", x, y, c.R, c.G)
					}
				}
			}
		})
	}
}

func testScene(t testing.TB) *scene.Scene {
	t.Helper()
	tex := texture.Checker(32, 8, color.RGBA{R: 200, A: 255}, color.RGBA{G: 200, A: 255})
	mi, err := meshindex.Build(mesh.UVSphere(math.Vec3{X: 4}, 1, 24, tex))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return scene.New(scene.Limits{Epsilon: 1e-4, ViewDistance: 100},
		mi,
		scene.NewSphere(math.Vec3{X: 6, Y: 1.2, Z: 1.5}, 0.8, color.RGBA{B: 255, A: 255}),
	)
}

func TestWorkerCountDoesNotChangePixels(t *testing.T) {
	sc := testScene(t)
	cam := camera.New(math.Vec3{}, 0, 0.1, 0)

	reference := New(1)
	defer reference.Close()
	want, err := reference.Render(sc, cam, 48, 32)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, workers := range []int{2, 5, 8, 16} {
		r := New(workers)
		got, err := r.Render(sc, cam, 48, 32)
		r.Close()
		if err != nil {
			t.Fatalf("workers=%d: Render: %v", workers, err)
		}
		if !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("workers=%d: frame differs from single-worker frame", workers)
		}
	}
}

func TestRepeatedFramesAreIdentical(t *testing.T) {
	sc := testScene(t)
	cam := camera.New(math.Vec3{}, 0, 0, 0)
	r := New(8)
	defer r.Close()

	first, err := r.Render(sc, cam, 40, 30)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		next, err := r.Render(sc, cam, 40, 30)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.Pix, next.Pix) {
			t.Fatalf("frame %d differs", i+1)
		}
	}
}

func TestMissesUseBackground(t *testing.T) {
	bg := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	r := New(4, WithBackground(bg))
	defer r.Close()

	frame, err := r.Render(nothing{}, camera.New(math.Vec3{}, 0, 0, 0), 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			if got := frame.RGBAAt(x, y); got != bg {
				t.Fatalf("pixel (%d,%d) = %v, want background", x, y, got)
			}
		}
	}
	if s := r.Stats(); s.Hits != 0 || s.HitRatio() != 0 {
		t.Errorf("stats report hits on an empty scene: %+v", s)
	}
}

func TestStats(t *testing.T) {
	r := New(8)
	defer r.Close()

	if _, err := r.Render(pixelEcho{w: 13, h: 4}, camera.New(math.Vec3{}, 0, 0, 0), 13, 4); err != nil {
		t.Fatal(err)
	}

	s := r.Stats()
	if len(s.Tiles) != 8 {
		t.Fatalf("got %d tile stats, want 8", len(s.Tiles))
	}
	columns := 0
	for i, tile := range s.Tiles {
		if tile.Index != i {
			t.Errorf("tile %d reports index %d", i, tile.Index)
		}
		want := 1
		if i < 13%8 {
			want = 2
		}
		if tile.Columns != want {
			t.Errorf("tile %d rendered %d columns, want %d", i, tile.Columns, want)
		}
		columns += tile.Columns
	}
	if columns != 13 {
		t.Errorf("tiles cover %d columns, want 13", columns)
	}
	if s.Hits != 13*4 || s.HitRatio() != 1 {
		t.Errorf("Hits = %d, ratio %v", s.Hits, s.HitRatio())
	}
	if s.RenderTime <= 0 {
		t.Error("RenderTime not recorded")
	}
}

func TestRenderErrors(t *testing.T) {
	r := New(0)
	if r.Workers() != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", r.Workers(), DefaultWorkers)
	}

	cam := camera.New(math.Vec3{}, 0, 0, 0)
	if _, err := r.Render(nothing{}, cam, 0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero width: got %v", err)
	}

	r.Close()
	r.Close()

	if _, err := r.Render(nothing{}, cam, 4, 4); !errors.Is(err, ErrClosed) {
		t.Errorf("render after close: got %v", err)
	}
}

func TestFrameHelpers(t *testing.T) {
	f := NewFrame(3, 2)
	f.Fill(color.RGBA{R: 1, G: 2, B: 3, A: 4})
	c := f.Clone()
	f.SetRGBA(0, 0, color.RGBA{})

	if got := c.RGBAAt(0, 0); got != (color.RGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("clone pixel = %v", got)
	}
	if got := f.RGBAAt(2, 1); got != (color.RGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("filled pixel = %v", got)
	}
}

func BenchmarkRender(b *testing.B) {
	sc := testScene(b)
	cam := camera.New(math.Vec3{}, 0, 0, 0)
	r := New(8)
	defer r.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Render(sc, cam, 160, 120); err != nil {
			b.Fatal(err)
		}
	}
}

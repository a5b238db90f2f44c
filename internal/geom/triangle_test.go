package geom

import (
	gomath "math"
	"math/rand"
	"testing"

	"github.com/Faultbox/meshcast/pkg/math"
)

func scenarioTriangle() Triangle {
	return NewTriangle(math.Vec3{}, math.Vec3{Z: 2}, math.Vec3{Y: 2})
}

func TestNewTriangleDerivedFields(t *testing.T) {
	tri := scenarioTriangle()

	if want := (math.Vec3{Y: 2.0 / 3, Z: 2.0 / 3}); !tri.M.ApproxEqual(want, 1e-12) {
		t.Errorf("centroid = %v, want %v", tri.M, want)
	}
	// (A-R) x (B-R) = (0,0,2) x (0,2,0) = (-4,0,0)
	if want := (math.Vec3{X: -4}); tri.N != want {
		t.Errorf("normal = %v, want %v", tri.N, want)
	}
	want := gomath.Sqrt(4.0/9 + 16.0/9)
	if gomath.Abs(tri.Radius-want) > 1e-12 {
		t.Errorf("radius = %v, want %v", tri.Radius, want)
	}
}

func TestBetaGammaScenario(t *testing.T) {
	tri := scenarioTriangle()
	origin := math.Vec3{X: -3}

	beta, gamma := tri.BetaGamma(origin, math.Vec3{X: 1})
	if !Inside(beta, gamma) {
		t.Fatalf("expected hit, got beta=%v gamma=%v", beta, gamma)
	}
	p := tri.PointAt(beta, gamma)
	if d := p.Distance(origin); gomath.Abs(d-3) > 1e-9 {
		t.Errorf("distance = %v, want 3", d)
	}
	if p.X != 0 {
		t.Errorf("hit point %v should lie on the x=0 plane", p)
	}

	// Through the centroid instead of the corner.
	dir := tri.M.Sub(origin).Normalize()
	beta, gamma = tri.BetaGamma(origin, dir)
	if !Inside(beta, gamma) {
		t.Fatalf("expected centroid hit, got beta=%v gamma=%v", beta, gamma)
	}
	if p := tri.PointAt(beta, gamma); !p.ApproxEqual(math.Vec3{Y: 2.0 / 3, Z: 2.0 / 3}, 1e-9) {
		t.Errorf("hit point = %v, want centroid", p)
	}

	beta, gamma = tri.BetaGamma(origin, math.Vec3{X: 1, Y: 5, Z: 5})
	if Inside(beta, gamma) {
		t.Errorf("expected miss, got beta=%v gamma=%v", beta, gamma)
	}
}

func TestBetaGammaDegenerate(t *testing.T) {
	tests := []struct {
		name string
		tri  Triangle
		dir  math.Vec3
	}{
		{
			name: "ray parallel to plane",
			tri:  scenarioTriangle(),
			dir:  math.Vec3{Y: 1},
		},
		{
			name: "collapsed edge",
			tri:  NewTriangle(math.Vec3{}, math.Vec3{}, math.Vec3{Y: 2}),
			dir:  math.Vec3{X: 1},
		},
		{
			name: "collinear vertices",
			tri:  NewTriangle(math.Vec3{}, math.Vec3{Y: 1}, math.Vec3{Y: 2}),
			dir:  math.Vec3{X: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			beta, gamma := tt.tri.BetaGamma(math.Vec3{X: -3}, tt.dir)
			if beta != NoHit || gamma != NoHit {
				t.Errorf("got (%v, %v), want sentinel (-1, -1)", beta, gamma)
			}
			if Inside(beta, gamma) {
				t.Error("sentinel must never count as inside")
			}
		})
	}
}

func randomVec(rng *rand.Rand) math.Vec3 {
	return math.Vec3{X: rng.Float64()*10 - 5, Y: rng.Float64()*10 - 5, Z: rng.Float64()*10 - 5}
}

func TestBetaGammaContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		tri := NewTriangle(randomVec(rng), randomVec(rng), randomVec(rng))
		if tri.N.Length() < 1e-3 {
			continue
		}

		// Strictly interior barycentric point.
		b := rng.Float64()*0.9 + 0.05
		g := rng.Float64() * (0.95 - b)
		if g < 0.01 {
			g = 0.01
		}
		target := tri.PointAt(b, g)

		// Shoot from off the plane through the target.
		origin := target.Add(tri.N.Normalize().Scale(3)).Add(randomVec(rng).Scale(0.2))
		dir := target.Sub(origin).Normalize()

		beta, gamma := tri.BetaGamma(origin, dir)
		if !Inside(beta, gamma) {
			t.Fatalf("case %d: beta=%v gamma=%v not inside, want (%v, %v)", i, beta, gamma, b, g)
		}
		if gomath.Abs(beta-b) > 1e-6 || gomath.Abs(gamma-g) > 1e-6 {
			t.Fatalf("case %d: got (%v, %v), want (%v, %v)", i, beta, gamma, b, g)
		}
	}
}

func TestBoundingRadiusSound(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 200; i++ {
		tri := NewTriangle(randomVec(rng), randomVec(rng), randomVec(rng))
		for _, v := range []math.Vec3{tri.R, tri.A, tri.B} {
			if d := v.Distance(tri.M); d > tri.Radius+1e-12 {
				t.Fatalf("vertex %v is %v from centroid, radius %v", v, d, tri.Radius)
			}
		}
	}
}

func TestTransformsRefreshDerivedFields(t *testing.T) {
	tri := scenarioTriangle()

	tri.Translate(math.Vec3{X: 1, Y: 1, Z: 1})
	if want := (math.Vec3{X: 1, Y: 1 + 2.0/3, Z: 1 + 2.0/3}); !tri.M.ApproxEqual(want, 1e-12) {
		t.Errorf("after translate centroid = %v, want %v", tri.M, want)
	}

	radius := tri.Radius
	tri.Rotate(math.Vec3{X: 0.4, Y: 1.2, Z: -0.3}, math.Vec3{})
	if gomath.Abs(tri.Radius-radius) > 1e-9 {
		t.Errorf("rotation changed radius from %v to %v", radius, tri.Radius)
	}
	if !tri.M.ApproxEqual(math.Mean(tri.R, tri.A, tri.B), 1e-12) {
		t.Error("centroid not refreshed after rotate")
	}

	tri.ScaleAbout(math.Vec3{X: 2, Y: 2, Z: 2}, tri.M)
	if gomath.Abs(tri.Radius-2*radius) > 1e-9 {
		t.Errorf("uniform scale by 2: radius = %v, want %v", tri.Radius, 2*radius)
	}
}

func TestIsColliding(t *testing.T) {
	tri := scenarioTriangle()
	origin := math.Vec3{X: -3}

	if !IsColliding(tri, origin, math.Vec3{X: 1}) {
		t.Error("ray towards the triangle should pass the pre-filter")
	}
	if IsColliding(tri, origin, math.Vec3{X: -1}) {
		t.Error("triangle behind the origin should be rejected")
	}
	if IsColliding(tri, origin, math.Vec3{X: 1, Y: 5, Z: 5}.Normalize()) {
		t.Error("ray passing far from the bounding sphere should be rejected")
	}
}

func TestUVInterpolate(t *testing.T) {
	uv := UV{R: math.Vec2{X: 0, Y: 0}, A: math.Vec2{X: 1, Y: 0}, B: math.Vec2{X: 0, Y: 1}}

	if got := uv.Interpolate(0, 0); got != uv.R {
		t.Errorf("Interpolate(0,0) = %v, want %v", got, uv.R)
	}
	if got := uv.Interpolate(0.25, 0.5); got != (math.Vec2{X: 0.25, Y: 0.5}) {
		t.Errorf("Interpolate(0.25,0.5) = %v", got)
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(math.Vec3{X: 1}, math.Vec3{Y: 10})
	if r.Direction != (math.Vec3{Y: 1}) {
		t.Fatalf("direction not normalized: %v", r.Direction)
	}
	if got := r.At(2); got != (math.Vec3{X: 1, Y: 2}) {
		t.Errorf("At(2) = %v", got)
	}
}

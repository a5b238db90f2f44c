package geom

import (
	gomath "math"

	"github.com/Faultbox/meshcast/pkg/math"
)

// Triangle is a single mesh face with cached normal, centroid and bounding
// radius. The cached fields are refreshed by every mutating method.
type Triangle struct {
	R, A, B math.Vec3

	N      math.Vec3 // (A-R) x (B-R), not normalized
	M      math.Vec3 // centroid
	Radius float64   // max distance from M to a vertex
}

// NewTriangle creates a triangle and computes its derived fields.
func NewTriangle(r, a, b math.Vec3) Triangle {
	t := Triangle{R: r, A: a, B: b}
	t.update()
	return t
}

func (t *Triangle) update() {
	t.N = t.A.Sub(t.R).Cross(t.B.Sub(t.R))
	t.M = math.Mean(t.R, t.A, t.B)
	t.Radius = gomath.Max(t.M.Distance(t.R), gomath.Max(t.M.Distance(t.A), t.M.Distance(t.B)))
}

// Centroid implements Sphere.
func (t Triangle) Centroid() math.Vec3 { return t.M }

// BoundRadius implements Sphere.
func (t Triangle) BoundRadius() float64 { return t.Radius }

// IsColliding runs the bounding-sphere pre-filter for this triangle.
func (t *Triangle) IsColliding(origin, dir math.Vec3) bool {
	return NearSphere(t.M, t.Radius, origin, dir)
}

// NoHit is the sentinel returned by BetaGamma for degenerate systems.
const NoHit = -1.0

// BetaGamma expresses the point where the ray origin + s*dir meets the
// triangle plane as R + beta*(A-R) + gamma*(B-R), solved in closed form with
// Cramer's rule. When the system determinant is exactly zero (ray parallel
// to the plane, or collapsed edges) it returns (NoHit, NoHit) without
// dividing; that pair never satisfies Inside.
func (t Triangle) BetaGamma(origin, dir math.Vec3) (beta, gamma float64) {
	e1 := t.A.Sub(t.R)
	e2 := t.B.Sub(t.R)

	// Columns of the system matrix are e1, e2 and -dir.
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det == 0 {
		return NoHit, NoHit
	}

	o := origin.Sub(t.R)
	q := o.Cross(e1)
	inv := 1 / det

	beta = o.Dot(p) * inv
	gamma = dir.Dot(q) * inv
	return beta, gamma
}

// Inside reports whether barycentric coordinates lie within the triangle.
func Inside(beta, gamma float64) bool {
	return beta >= 0 && gamma >= 0 && beta+gamma <= 1
}

// PointAt returns R + beta*(A-R) + gamma*(B-R).
func (t Triangle) PointAt(beta, gamma float64) math.Vec3 {
	return t.R.
		Add(t.A.Sub(t.R).Scale(beta)).
		Add(t.B.Sub(t.R).Scale(gamma))
}

// Rotate rotates the vertices around pivot by the Euler angles in r.
func (t *Triangle) Rotate(r, pivot math.Vec3) {
	t.Transform(math.Euler(r), pivot)
}

// Transform applies a precomputed rotation matrix around pivot.
func (t *Triangle) Transform(rot math.Mat3, pivot math.Vec3) {
	t.R = rot.Apply(t.R.Sub(pivot)).Add(pivot)
	t.A = rot.Apply(t.A.Sub(pivot)).Add(pivot)
	t.B = rot.Apply(t.B.Sub(pivot)).Add(pivot)
	t.update()
}

// Translate moves the vertices by p.
func (t *Triangle) Translate(p math.Vec3) {
	t.R = t.R.Add(p)
	t.A = t.A.Add(p)
	t.B = t.B.Add(p)
	t.update()
}

// ScaleAbout scales the vertices component-wise by s relative to pivot.
func (t *Triangle) ScaleAbout(s, pivot math.Vec3) {
	t.R = pivot.Add(t.R.Sub(pivot).Mul(s))
	t.A = pivot.Add(t.A.Sub(pivot).Mul(s))
	t.B = pivot.Add(t.B.Sub(pivot).Mul(s))
	t.update()
}

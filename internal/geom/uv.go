package geom

import "github.com/Faultbox/meshcast/pkg/math"

// UV holds the texture coordinates of a triangle's R, A and B vertices.
// UV records are stored beside the triangles, indexed in lock-step.
type UV struct {
	R, A, B math.Vec2
}

// Interpolate returns the texture coordinate at barycentric (beta, gamma).
func (uv UV) Interpolate(beta, gamma float64) math.Vec2 {
	return uv.R.
		Add(uv.A.Sub(uv.R).Scale(beta)).
		Add(uv.B.Sub(uv.R).Scale(gamma))
}

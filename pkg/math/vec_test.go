package math

import (
	"math"
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := 5.0
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	l := v.Normalize().Length()
	if math.Abs(l-1) > 1e-12 {
		t.Errorf("Vec3.Normalize().Length() = %v, want 1", l)
	}

	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", got)
	}
}

func TestVec3Distance(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 6, 3}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Vec3.Distance() = %v, want 5", got)
	}
}

func TestMean(t *testing.T) {
	got := Mean(Vec3{0, 0, 0}, Vec3{3, 0, 0}, Vec3{0, 3, 6})
	want := Vec3{1, 1, 2}
	if !got.ApproxEqual(want, 1e-12) {
		t.Errorf("Mean() = %v, want %v", got, want)
	}

	if got := Mean(); got != (Vec3{}) {
		t.Errorf("Mean() of nothing = %v, want zero", got)
	}
}

func TestRotateAbout(t *testing.T) {
	pivot := Vec3{1, 1, 0}
	p := Vec3{2, 1, 0}

	// Quarter turn around Z about the pivot moves +X onto +Y.
	got := p.RotateAbout(pivot, Vec3{Z: math.Pi / 2})
	want := Vec3{1, 2, 0}
	if !got.ApproxEqual(want, 1e-9) {
		t.Errorf("RotateAbout() = %v, want %v", got, want)
	}

	if d := got.Distance(pivot); math.Abs(d-1) > 1e-9 {
		t.Errorf("rotation should preserve distance to pivot, got %v", d)
	}
}

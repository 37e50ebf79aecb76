package hatch_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

const tol = 1e-12

func TestPrimitiveDistances(t *testing.T) {
	var bld hatch.Builder
	var tests = []struct {
		name string
		sdf  hatch.SDF3
		p    md3.Vec
		want float64
	}{
		{"sphere/outside", bld.NewSphere(1), md3.Vec{X: 3}, 2},
		{"sphere/inside", bld.NewSphere(2), md3.Vec{Y: 0.5}, -1.5},
		{"torus/tube", bld.NewTorus(2, 0.5), md3.Vec{X: 2}, -0.5},
		{"torus/center", bld.NewTorus(2, 0.5), md3.Vec{}, 1.5},
		{"torus/above", bld.NewTorus(2, 0.5), md3.Vec{Y: 1, Z: 2}, 0.5},
		{"plane/above", bld.NewPlaneY(-1), md3.Vec{X: 7, Y: 1, Z: 3}, 2},
		{"plane/below", bld.NewPlaneY(-1), md3.Vec{Y: -4}, 3},
		{"box/face", bld.NewBox(2, 2, 2, 0), md3.Vec{X: 2}, 1},
		{"box/edge", bld.NewBox(2, 2, 2, 0), md3.Vec{X: 2, Y: 2}, math.Sqrt2},
		{"box/inside", bld.NewBox(2, 4, 2, 0), md3.Vec{}, -1},
		{"box/rounded-face", bld.NewBox(2, 2, 2, 0.5), md3.Vec{X: 2}, 1},
		{"box/rounded-corner", bld.NewBox(2, 2, 2, 0.5), md3.Vec{X: 2, Y: 2, Z: 2}, math.Sqrt(3*1.5*1.5) - 0.5},
		{"cylinder/cap", bld.NewCylinder(1, 2, 0), md3.Vec{Y: 3}, 2},
		{"cylinder/side", bld.NewCylinder(1, 2, 0), md3.Vec{Z: 3}, 2},
		{"cylinder/rounded-side", bld.NewCylinder(1, 2, 0.2), md3.Vec{Z: 3}, 2},
		{"cylinder/inside", bld.NewCylinder(1, 8, 0), md3.Vec{}, -1},
	}
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		got := test.sdf.Distance(test.p)
		if math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%s: got %g, want %g", test.name, got, test.want)
		}
	}
	// Pure function forms agree with builder shapes.
	if got := hatch.SDTorus(md3.Vec{Y: 1, Z: 2}, md2.Vec{Y: 2}, 0.5); math.Abs(got-0.5) > tol {
		t.Errorf("SDTorus got %g", got)
	}
	if got := hatch.SDCylinderRounded(md3.Vec{Y: 3}, 1, 1, 0.25); math.Abs(got-2) > tol {
		t.Errorf("rounded cylinder must preserve outer dimension, got %g", got)
	}
}

func TestRotationConvention(t *testing.T) {
	var bld hatch.Builder
	// A small sphere offset along +X is carried by a positive quarter turn.
	marker := bld.Translate(bld.NewSphere(0.1), 1, 0, 0)
	rotY := bld.RotateY(marker, math.Pi/2)
	if d := rotY.Distance(md3.Vec{Z: -1}); math.Abs(d+0.1) > 1e-9 {
		t.Errorf("RotateY: marker not found at -Z, distance %g", d)
	}
	rotZ := bld.RotateZ(marker, math.Pi/2)
	if d := rotZ.Distance(md3.Vec{Y: -1}); math.Abs(d+0.1) > 1e-9 {
		t.Errorf("RotateZ: marker not found at -Y, distance %g", d)
	}
	// Rotations preserve distance to the axis and are undone by the opposite angle.
	rng := rand.New(rand.NewSource(1))
	for range 100 {
		p := md3.Vec{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2, Z: rng.Float64()*4 - 2}
		phi := rng.Float64()*4*math.Pi - 2*math.Pi
		q := hatch.OpRotateY(hatch.OpRotateY(p, phi), -phi)
		if md3.Norm(md3.Sub(p, q)) > 1e-9 {
			t.Fatalf("OpRotateY not inverted by -phi: %v -> %v", p, q)
		}
		q = hatch.OpRotateZ(p, phi)
		if math.Abs(md3.Norm(q)-md3.Norm(p)) > 1e-9 || q.Z != p.Z {
			t.Fatalf("OpRotateZ is not a rotation about Z: %v -> %v", p, q)
		}
	}
}

func TestElongateZ(t *testing.T) {
	got := hatch.OpElongateZ(md3.Vec{X: 1, Y: 2, Z: -3}, 1)
	if got != (md3.Vec{X: 1, Y: 2, Z: -2}) {
		t.Errorf("elongation must preserve sign of z, got %v", got)
	}
	got = hatch.OpElongateZ(md3.Vec{Z: 0.5}, 1)
	if got.Z != 0 {
		t.Errorf("points within the segment collapse onto z=0, got %v", got)
	}
	var bld hatch.Builder
	capsule := bld.ElongateZ(bld.NewSphere(1), 2)
	for _, test := range []struct {
		p    md3.Vec
		want float64
	}{
		{md3.Vec{Z: 2.5}, -0.5},
		{md3.Vec{Z: -3.5}, 0.5},
		{md3.Vec{X: 1.5, Z: 1}, 0.5},
		{md3.Vec{Y: -3, Z: -1.9}, 2},
	} {
		if d := capsule.Distance(test.p); math.Abs(d-test.want) > tol {
			t.Errorf("capsule at %v: got %g, want %g", test.p, d, test.want)
		}
	}
}

func TestRepeatFinite(t *testing.T) {
	spacing := md3.Vec{X: 2, Y: 2, Z: 2}
	limA := md3.Vec{X: -1}
	limB := md3.Vec{X: 1}
	got := hatch.OpRepeatFinite(md3.Vec{X: 2.3, Y: 0.1}, spacing, limA, limB)
	if md3.Norm(md3.Sub(got, md3.Vec{X: 0.3, Y: 0.1})) > tol {
		t.Errorf("expected point folded into cell, got %v", got)
	}
	got = hatch.OpRepeatFinite(md3.Vec{X: 6.3}, spacing, limA, limB)
	if md3.Norm(md3.Sub(got, md3.Vec{X: 4.3})) > tol {
		t.Errorf("cell index not clamped to limit, got %v", got)
	}
	rng := rand.New(rand.NewSource(1))
	for range 200 {
		p := md3.Vec{X: rng.Float64()*6 - 3, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		once := hatch.OpRepeatFinite(p, spacing, limA, limB)
		twice := hatch.OpRepeatFinite(once, spacing, limA, limB)
		if md3.Norm(md3.Sub(once, twice)) > tol {
			t.Fatalf("repetition not idempotent inside limits: %v -> %v -> %v", p, once, twice)
		}
	}

	var bld hatch.Builder
	row := bld.RepeatFinite(bld.NewSphere(0.5), spacing, limA, limB)
	for _, test := range []struct {
		p    md3.Vec
		want float64
	}{
		{md3.Vec{X: -2}, -0.5},
		{md3.Vec{X: 2}, -0.5},
		{md3.Vec{X: 4}, 1.5},
		{md3.Vec{X: -5}, 2.5},
		{md3.Vec{Y: 2}, 1.5},
	} {
		if d := row.Distance(test.p); math.Abs(d-test.want) > tol {
			t.Errorf("repeated sphere at %v: got %g, want %g", test.p, d, test.want)
		}
	}
}

func TestBooleanOperations(t *testing.T) {
	var bld hatch.Builder
	a := bld.NewSphere(1)
	b := bld.Translate(bld.NewSphere(1), 1, 0, 0)
	c := bld.Translate(bld.NewSphere(1), -1, 0, 0)
	u := bld.Union(a, b)
	u = bld.Union(u, c)
	U, ok := u.(*hatch.OpUnion)
	if !ok {
		t.Fatalf("Union returned %T", u)
	}
	if len(U.Shapes()) != 3 {
		t.Errorf("nested union not flattened, got %d shapes", len(U.Shapes()))
	}
	if d := u.Distance(md3.Vec{X: 3}); math.Abs(d-1) > tol {
		t.Errorf("union distance %g, want 1", d)
	}
	diff := bld.Difference(a, b)
	if d := diff.Distance(md3.Vec{X: 0.5}); d <= 0 {
		t.Errorf("carved region should be outside, got %g", d)
	}
	if d := diff.Distance(md3.Vec{X: -0.5}); d >= 0 {
		t.Errorf("remaining region should be inside, got %g", d)
	}
	inter := bld.Intersection(a, b)
	if d := inter.Distance(md3.Vec{X: 0.5}); math.Abs(d+0.5) > tol {
		t.Errorf("intersection distance %g, want -0.5", d)
	}
	grown := bld.Offset(a, -0.5)
	if d := grown.Distance(md3.Vec{X: 1.5}); math.Abs(d) > tol {
		t.Errorf("offset sphere surface expected at 1.5, got %g", d)
	}
}

func TestBounded(t *testing.T) {
	var bld hatch.Builder
	box := bld.NewBox(1, 1, 1, 0)
	const radius = 1.
	bounded := bld.Bounded(box, radius)
	rng := rand.New(rand.NewSource(2))
	for range 500 {
		p := md3.Vec{X: rng.NormFloat64() * 5, Y: rng.NormFloat64() * 5, Z: rng.NormFloat64() * 5}
		want := box.Distance(p)
		got := bounded.Distance(p)
		if got > want+tol {
			t.Fatalf("bounded distance %g overestimates %g at %v", got, want, p)
		}
		if md3.Norm(p) <= 2*radius && got != want {
			t.Fatalf("bounded distance %g differs from %g near shape at %v", got, want, p)
		}
	}
}

func TestBuilderErrors(t *testing.T) {
	var bld hatch.Builder
	assertPanics(t, "negative radius", func() { bld.NewSphere(-1) })
	assertPanics(t, "bad box rounding", func() { bld.NewBox(1, 1, 1, 2) })
	assertPanics(t, "bad spacing", func() {
		bld.RepeatFinite(bld.NewSphere(1), md3.Vec{X: 1, Y: 0, Z: 1}, md3.Vec{}, md3.Vec{})
	})
	assertPanics(t, "short union", func() { bld.Union(bld.NewSphere(1)) })

	bld.NoDimensionPanic = true
	bld.NewSphere(-1)
	bld.NewTorus(-2, 0.5)
	bld.RepeatFinite(bld.NewSphere(1), md3.Vec{X: 1, Y: 1, Z: 1}, md3.Vec{X: 1}, md3.Vec{X: -1})
	err := bld.Err()
	if err == nil {
		t.Fatal("expected accumulated errors")
	}
	if n := strings.Count(err.Error(), "\n") + 1; n != 3 {
		t.Errorf("expected 3 accumulated errors, got %d: %v", n, err)
	}
	// Nil arguments always panic.
	assertPanics(t, "nil translate", func() { bld.Translate(nil, 1, 0, 0) })
	assertPanics(t, "nil union member", func() { bld.Union(bld.NewSphere(1), nil) })
}

func assertPanics(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

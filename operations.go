package hatch

import (
	"fmt"
	"math"

	"github.com/soypat/geometry/md3"
)

// OpShift translates the query point so that the evaluated primitive appears displaced by offset.
func OpShift(p, offset md3.Vec) md3.Vec {
	return md3.Sub(p, offset)
}

// OpRotateY transforms the query point so that the evaluated primitive appears
// rotated by phi radians about the Y axis, counter-clockwise as seen from +Y.
// A positive quarter turn carries the +X axis onto -Z.
func OpRotateY(p md3.Vec, phi float64) md3.Vec {
	s, c := math.Sincos(-phi)
	return md3.Vec{
		X: c*p.X + s*p.Z,
		Y: p.Y,
		Z: -s*p.X + c*p.Z,
	}
}

// OpRotateZ transforms the query point so that the evaluated primitive appears
// rotated by phi radians about the Z axis. The sine term has the same sign
// layout as [OpRotateY] so a positive quarter turn carries the +X axis onto -Y,
// which is clockwise as seen from +Z.
func OpRotateZ(p md3.Vec, phi float64) md3.Vec {
	s, c := math.Sincos(-phi)
	return md3.Vec{
		X: c*p.X + s*p.Y,
		Y: -s*p.X + c*p.Y,
		Z: p.Z,
	}
}

// OpElongateZ stretches the evaluated primitive along Z by inserting a
// straight segment of half length h at z=0.
func OpElongateZ(p md3.Vec, h float64) md3.Vec {
	return md3.Vec{X: p.X, Y: p.Y, Z: math.Copysign(math.Max(math.Abs(p.Z)-h, 0), p.Z)}
}

// OpRepeatFinite tiles space in cells of size s. Cell indices are clamped to
// the inclusive range [limA, limB] so that the repetition stops at the limits:
//
//	p - s*clamp(round(p/s), limA, limB)
func OpRepeatFinite(p, s, limA, limB md3.Vec) md3.Vec {
	id := md3.RoundElem(md3.DivElem(p, s))
	id = md3.MinElem(md3.MaxElem(id, limA), limB)
	return md3.Sub(p, md3.MulElem(s, id))
}

// OpUnion is the result of the [Builder.Union] operation. Prefer using [Builder.Union] to using this type directly.
//
// OpUnion is exported so that users can traverse a scene looking for unions
// and inspect the joined shapes, for instance to count evaluation cost.
type OpUnion struct {
	// joined contains 2 or more 3D SDFs.
	// OpUnion methods will panic if joined less than 2 elements.
	joined []SDF3
}

// Union joins the shapes of several 3D SDFs into one. Is exact.
// Union aggregates nested Union results into its own. To prevent this behaviour use [OpUnion] directly.
func (bld *Builder) Union(shapes ...SDF3) SDF3 {
	if len(shapes) < 2 {
		panic("need at least 2 arguments to Union")
	}
	var U OpUnion
	for i, s := range shapes {
		if s == nil {
			bld.nilsdf(fmt.Sprintf("nil arg[%d] to Union", i))
		}
		if subU, ok := s.(*OpUnion); ok {
			U.joined = append(U.joined, subU.joined...)
		} else {
			U.joined = append(U.joined, s)
		}
	}
	return &U
}

// Shapes returns the joined shapes. The returned slice must not be modified.
func (u *OpUnion) Shapes() []SDF3 {
	u.mustValidate()
	return u.joined
}

// Distance implements [SDF3].
func (u *OpUnion) Distance(p md3.Vec) float64 {
	u.mustValidate()
	d := u.joined[0].Distance(p)
	for _, s := range u.joined[1:] {
		d = math.Min(d, s.Distance(p))
	}
	return d
}

func (u *OpUnion) mustValidate() {
	if len(u.joined) < 2 {
		panic("OpUnion must have at least 2 elements. please prefer using Builder.Union over OpUnion")
	}
}

// Difference is the SDF difference of a-b. Does not produce a true SDF.
func (bld *Builder) Difference(a, b SDF3) SDF3 {
	if a == nil || b == nil {
		bld.nilsdf("Difference")
	}
	return &diff{s1: a, s2: b}
}

type diff struct {
	s1, s2 SDF3 // Performs s1-s2.
}

func (s *diff) Distance(p md3.Vec) float64 {
	return math.Max(s.s1.Distance(p), -s.s2.Distance(p))
}

// Intersection is the SDF intersection of a ^ b. Does not produce an exact SDF.
func (bld *Builder) Intersection(a, b SDF3) SDF3 {
	if a == nil || b == nil {
		bld.nilsdf("Intersection")
	}
	return &intersect{s1: a, s2: b}
}

type intersect struct {
	s1, s2 SDF3 // Performs s1 ^ s2.
}

func (s *intersect) Distance(p md3.Vec) float64 {
	return math.Max(s.s1.Distance(p), s.s2.Distance(p))
}

// Translate moves the SDF s in the given direction (dirX, dirY, dirZ) and returns the result.
func (bld *Builder) Translate(s SDF3, dirX, dirY, dirZ float64) SDF3 {
	if s == nil {
		bld.nilsdf("Translate")
	}
	p := md3.Vec{X: dirX, Y: dirY, Z: dirZ}
	if !finitevec(p) {
		bld.shapeErrorf("non-finite translation %v", p)
	}
	return &translate{s: s, p: p}
}

type translate struct {
	s SDF3
	p md3.Vec
}

func (t *translate) Distance(p md3.Vec) float64 {
	return t.s.Distance(OpShift(p, t.p))
}

// RotateY rotates s by radians about the Y axis. See [OpRotateY] for the sign convention.
func (bld *Builder) RotateY(s SDF3, radians float64) SDF3 {
	if s == nil {
		bld.nilsdf("RotateY")
	}
	if !finite(radians) {
		bld.shapeErrorf("non-finite rotation angle")
	}
	return &rotate{s: s, phi: radians, axis: 'y'}
}

// RotateZ rotates s by radians about the Z axis. See [OpRotateZ] for the sign convention.
func (bld *Builder) RotateZ(s SDF3, radians float64) SDF3 {
	if s == nil {
		bld.nilsdf("RotateZ")
	}
	if !finite(radians) {
		bld.shapeErrorf("non-finite rotation angle")
	}
	return &rotate{s: s, phi: radians, axis: 'z'}
}

type rotate struct {
	s    SDF3
	phi  float64
	axis byte
}

func (r *rotate) Distance(p md3.Vec) float64 {
	if r.axis == 'y' {
		return r.s.Distance(OpRotateY(p, r.phi))
	}
	return r.s.Distance(OpRotateZ(p, r.phi))
}

// ElongateZ stretches s along the Z axis by a total length of 2*h. See [OpElongateZ].
func (bld *Builder) ElongateZ(s SDF3, h float64) SDF3 {
	if s == nil {
		bld.nilsdf("ElongateZ")
	}
	if h < 0 || !finite(h) {
		bld.shapeErrorf("invalid elongation %v", h)
	}
	return &elongate{s: s, h: h}
}

type elongate struct {
	s SDF3
	h float64
}

func (e *elongate) Distance(p md3.Vec) float64 {
	return e.s.Distance(OpElongateZ(p, e.h))
}

// RepeatFinite repeats s in cells of the given spacing. Copies are placed at
// integer cell indices within the inclusive range [limA, limB] along each axis.
// The spacing must be larger than the shape for the result to be a correct SDF.
func (bld *Builder) RepeatFinite(s SDF3, spacing, limA, limB md3.Vec) SDF3 {
	if s == nil {
		bld.nilsdf("RepeatFinite")
	}
	if spacing.X < epstol || spacing.Y < epstol || spacing.Z < epstol || !finitevec(spacing) {
		bld.shapeErrorf("invalid repetition spacing %v", spacing)
	}
	if limA.X > limB.X || limA.Y > limB.Y || limA.Z > limB.Z {
		bld.shapeErrorf("repetition limits out of order %v > %v", limA, limB)
	}
	limA = md3.RoundElem(limA)
	limB = md3.RoundElem(limB)
	return &repeat{s: s, spacing: spacing, limA: limA, limB: limB}
}

type repeat struct {
	s          SDF3
	spacing    md3.Vec
	limA, limB md3.Vec
}

func (r *repeat) Distance(p md3.Vec) float64 {
	return r.s.Distance(OpRepeatFinite(p, r.spacing, r.limA, r.limB))
}

// Offset adds sdfAdd to the entire argument SDF. If sdfAdd is negative this will
// round edges and increase the dimension of flat surfaces of the SDF by the absolute magnitude.
func (bld *Builder) Offset(s SDF3, sdfAdd float64) SDF3 {
	if s == nil {
		bld.nilsdf("Offset")
	}
	if !finite(sdfAdd) {
		bld.shapeErrorf("non-finite offset")
	}
	return &offset{s: s, off: sdfAdd}
}

type offset struct {
	s   SDF3
	off float64
}

func (o *offset) Distance(p md3.Vec) float64 {
	return o.s.Distance(p) + o.off
}

// Bounded returns a shape that evaluates s only when p is closer than
// radius to the origin and otherwise returns a conservative lower bound.
// It is useful to avoid evaluating expensive compound shapes far away from the camera ray.
func (bld *Builder) Bounded(s SDF3, radius float64) SDF3 {
	if s == nil {
		bld.nilsdf("Bounded")
	}
	if !(radius > 0) || !finite(radius) {
		bld.shapeErrorf("invalid bounding radius")
	}
	return &bounded{s: s, r: radius}
}

type bounded struct {
	s SDF3
	r float64
}

func (b *bounded) Distance(p md3.Vec) float64 {
	dBound := SDSphere(p, b.r)
	if dBound > b.r {
		// Far from the bounding sphere: its distance is a valid lower bound.
		return dBound
	}
	return b.s.Distance(p)
}

package hatch

import (
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
)

// SDSphere is the exact distance from p to a sphere of radius r centered at the origin.
func SDSphere(p md3.Vec, r float64) float64 {
	return md3.Norm(p) - r
}

// SDTorus is the exact distance from p to a torus lying in the XZ plane.
// c locates the center of the tube cross-section in (y, radial) coordinates,
// so a torus of major radius R centered at the origin has c=(0,R). r is the tube radius.
func SDTorus(p md3.Vec, c md2.Vec, r float64) float64 {
	q := md2.Vec{X: p.Y, Y: math.Hypot(p.X, p.Z)}
	return md2.Norm(md2.Sub(q, c)) - r
}

// SDPlaneY is the unsigned distance from p to the plane y=const.
// The plane has no interior so it behaves as an infinitely thin sheet.
func SDPlaneY(p md3.Vec, y float64) float64 {
	return math.Abs(p.Y - y)
}

// SDBox is the exact distance from p to an axis aligned box centered at the origin with half side lengths s.
func SDBox(p md3.Vec, s md3.Vec) float64 {
	q := md3.Sub(md3.AbsElem(p), s)
	return md3.Norm(md3.MaxElem(q, md3.Vec{})) + math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
}

// SDCylinder is the exact distance from p to a capped cylinder of radius r
// whose axis is the Y axis, extending h above and below the origin.
func SDCylinder(p md3.Vec, r, h float64) float64 {
	dxz := math.Hypot(p.X, p.Z) - r
	dy := math.Abs(p.Y) - h
	return math.Min(math.Max(dxz, dy), 0) + math.Hypot(math.Max(dxz, 0), math.Max(dy, 0))
}

// SDCylinderRounded is [SDCylinder] with edges rounded by d. Outer dimensions are preserved.
func SDCylinderRounded(p md3.Vec, r, h, d float64) float64 {
	return SDCylinder(p, r-d, h-d) - d
}

type sphere struct {
	r float64
}

// NewSphere creates a sphere centered at the origin of radius r.
func (bld *Builder) NewSphere(r float64) SDF3 {
	if !(r > 0) || !finite(r) {
		bld.shapeErrorf("zero or negative sphere radius")
	}
	return &sphere{r: r}
}

func (s *sphere) Distance(p md3.Vec) float64 { return SDSphere(p, s.r) }

type torus struct {
	c md2.Vec
	r float64
}

// NewTorus creates a torus centered at the origin lying in the XZ plane with
// distance from center to tube center of greaterRadius and tube radius of lesserRadius.
func (bld *Builder) NewTorus(greaterRadius, lesserRadius float64) SDF3 {
	if greaterRadius < 2*lesserRadius {
		bld.shapeErrorf("too large torus lesser radius")
	} else if lesserRadius <= 0 || greaterRadius <= 0 {
		bld.shapeErrorf("invalid torus parameter")
	}
	return &torus{c: md2.Vec{Y: greaterRadius}, r: lesserRadius}
}

func (t *torus) Distance(p md3.Vec) float64 { return SDTorus(p, t.c, t.r) }

type planeY struct {
	y float64
}

// NewPlaneY creates the plane y=height. See [SDPlaneY].
func (bld *Builder) NewPlaneY(height float64) SDF3 {
	if !finite(height) {
		bld.shapeErrorf("non-finite plane height")
	}
	return &planeY{y: height}
}

func (pl *planeY) Distance(p md3.Vec) float64 { return SDPlaneY(p, pl.y) }

type box struct {
	half  md3.Vec
	round float64
}

// NewBox creates a box centered at the origin with x,y,z dimensions and a rounding parameter to round edges.
func (bld *Builder) NewBox(x, y, z, round float64) SDF3 {
	if round < 0 || round > x/2 || round > y/2 || round > z/2 {
		bld.shapeErrorf("invalid box rounding value")
	}
	if x <= 0 || y <= 0 || z <= 0 || !finite(x, y, z) {
		bld.shapeErrorf("zero or negative box dimension")
	}
	return &box{half: md3.Vec{X: x / 2, Y: y / 2, Z: z / 2}, round: round}
}

func (b *box) Distance(p md3.Vec) float64 {
	if b.round == 0 {
		return SDBox(p, b.half)
	}
	r := b.round
	return SDBox(p, md3.Vec{X: b.half.X - r, Y: b.half.Y - r, Z: b.half.Z - r}) - r
}

type cylinder struct {
	r     float64
	h     float64
	round float64
}

// NewCylinder creates a cylinder centered at the origin with given radius and height.
// The cylinder's axis points in y direction. A positive rounding rounds the cap edges.
func (bld *Builder) NewCylinder(r, h, rounding float64) SDF3 {
	okRounding := rounding >= 0 && rounding < r && rounding < h/2
	if !okRounding {
		bld.shapeErrorf("invalid cylinder rounding")
	}
	okDim := r > 0 && h > 0 && finite(r, h)
	if !okDim {
		bld.shapeErrorf("bad cylinder dimension")
	}
	return &cylinder{r: r, h: h / 2, round: rounding}
}

func (c *cylinder) Distance(p md3.Vec) float64 {
	if c.round == 0 {
		return SDCylinder(p, c.r, c.h)
	}
	return SDCylinderRounded(p, c.r, c.h, c.round)
}

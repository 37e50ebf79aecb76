package raymarch

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

// tangentTol is the smallest length of the light direction projected on the
// tangent plane for which a tangent frame is still built.
const tangentTol = 1e-8

// Polyline is an ordered sequence of canvas coordinates.
type Polyline []md2.Vec

// WalkConfig parametrizes a hatch walk over the surface.
type WalkConfig struct {
	// Steps is the maximum amount of steps taken.
	Steps int
	// StepScale is the world space length of each step. Its sign selects
	// the direction of the walk so that strokes can be grown both ways from a seed point.
	StepScale float64
	// Angle in radians between the step direction and the light-aligned tangent.
	// Zero walks towards the light, non-zero values produce cross hatching.
	Angle float64
}

// Validate returns a non-nil error if the walk can not be performed.
func (wc WalkConfig) Validate() error {
	switch {
	case wc.Steps <= 0:
		return errors.New("non-positive walk steps")
	case wc.StepScale == 0 || math.IsNaN(wc.StepScale) || math.IsInf(wc.StepScale, 0):
		return fmt.Errorf("invalid walk step scale %v", wc.StepScale)
	case math.IsNaN(wc.Angle) || math.IsInf(wc.Angle, 0):
		return fmt.Errorf("invalid walk angle %v", wc.Angle)
	}
	return nil
}

// Walk lays a hatch stroke over sdf starting at start by taking steps tangent
// to the surface, biased towards the light. Returned polylines are in canvas
// coordinates of an image of size canvasDim and always contain at least 2 points.
//
// At every step one value is drawn from rng and the walk ends when
// intensity³·(step/Steps) exceeds it, so strokes run longer in shadow.
// Steps landing on occluded points break the stroke, so a single walk may
// return several polylines. The walk also ends when the light direction is
// parallel to the surface normal since no tangent frame can be built.
func (m *Marcher) Walk(sdf hatch.SDF3, light md3.Vec, start SurfacePoint, canvasDim md2.Vec, cfg WalkConfig, rng Rand) ([]Polyline, error) {
	return m.AppendWalk(nil, sdf, light, start, canvasDim, cfg, rng)
}

// AppendWalk is like [Marcher.Walk] but appends the resulting polylines to dst.
func (m *Marcher) AppendWalk(dst []Polyline, sdf hatch.SDF3, light md3.Vec, start SurfacePoint, canvasDim md2.Vec, cfg WalkConfig, rng Rand) ([]Polyline, error) {
	assertSDF(sdf)
	if err := cfg.Validate(); err != nil {
		return dst, err
	} else if rng == nil {
		return dst, errors.New("nil Rand")
	}
	sb := strokeBuilder{dst: dst}
	if start.visibility > 0 {
		sb.add(ScreenToCanvas(canvasDim, start.screen))
	}
	cos, sin := math.Cos(cfg.Angle), math.Sin(cfg.Angle)
	prev := start
	for i := range cfg.Steps {
		v, u, ok := tangentFrame(prev.normal, md3.Sub(light, prev.p))
		if !ok {
			break
		}
		dir := md3.Add(md3.Scale(cos, v), md3.Scale(sin, u))
		next, err := m.WalkPoint(sdf, md3.Add(prev.p, md3.Scale(cfg.StepScale, dir)), light)
		if err != nil {
			return sb.finish(), err
		}
		r := rng.Float64()
		in := next.intensity
		if in*in*in*float64(i)/float64(cfg.Steps) > r {
			break
		}
		if next.visibility > 0 {
			sb.add(ScreenToCanvas(canvasDim, next.screen))
		} else {
			sb.flush()
		}
		prev = next
	}
	return sb.finish(), nil
}

// tangentFrame returns the unit tangent v obtained by projecting toLight onto
// the plane orthogonal to the unit normal n, and u = n×v. ok is false when the projection is degenerate.
func tangentFrame(n, toLight md3.Vec) (v, u md3.Vec, ok bool) {
	t := md3.Sub(toLight, md3.Scale(md3.Dot(toLight, n), n))
	tlen := md3.Norm(t)
	if !(tlen >= tangentTol) {
		return v, u, false
	}
	v = md3.Scale(1/tlen, t)
	u = md3.Cross(n, v)
	ulen := md3.Norm(u)
	if !(ulen >= tangentTol) {
		return v, u, false
	}
	return v, md3.Scale(1/ulen, u), true
}

// strokeBuilder accumulates the points of the stroke being drawn and keeps
// completed strokes with at least two points.
type strokeBuilder struct {
	dst     []Polyline
	current Polyline
}

func (sb *strokeBuilder) add(pt md2.Vec) {
	sb.current = append(sb.current, pt)
}

func (sb *strokeBuilder) flush() {
	if len(sb.current) >= 2 {
		sb.dst = append(sb.dst, sb.current)
	}
	sb.current = nil
}

func (sb *strokeBuilder) finish() []Polyline {
	sb.flush()
	return sb.dst
}

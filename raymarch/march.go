package raymarch

import (
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

// Intersect traces the camera ray through screen (in [-1,1]²) into sdf using sphere tracing.
// ok is false when the ray did not converge onto the surface within the iteration cap,
// which includes rays escaping the scene. The returned point is lit by a point light at light.
// A NaN distance aborts the trace with an error wrapping [ErrNaN].
func (m *Marcher) Intersect(sdf hatch.SDF3, screen md2.Vec, light md3.Vec) (sp SurfacePoint, ok bool, err error) {
	assertSDF(sdf)
	eye := m.cam.eye
	dir := m.cam.RayDirection(screen)
	minDist := m.cfg.MinDist
	length := 0.0
	for range m.cfg.MaxIterations {
		p := md3.Add(eye, md3.Scale(length, dir))
		dist := sdf.Distance(p)
		if dist < minDist {
			sp, err = m.primaryHit(sdf, p, dir, length, dist, screen, light)
			if err != nil {
				return SurfacePoint{}, false, err
			}
			return sp, true, nil
		} else if math.IsNaN(dist) {
			return SurfacePoint{}, false, nanErr("primary ray", p)
		}
		length += dist
	}
	return SurfacePoint{}, false, nil
}

// Normal estimates the outward unit normal of sdf at p with central differences.
// The zero vector is returned where the gradient vanishes. NaN distances propagate to the result.
func (m *Marcher) Normal(sdf hatch.SDF3, p md3.Vec) md3.Vec {
	h := m.cfg.NormalStep
	var steps = [3]md3.Vec{{X: h}, {Y: h}, {Z: h}}
	var grad [3]float64
	for dim, step := range steps {
		grad[dim] = sdf.Distance(md3.Add(p, step)) - sdf.Distance(md3.Sub(p, step))
	}
	n := md3.Vec{X: grad[0], Y: grad[1], Z: grad[2]}
	norm := md3.Norm(n)
	if norm == 0 {
		return md3.Vec{}
	}
	return md3.Scale(1/norm, n)
}

// Visibility estimates how much of p is seen from the point from in [0,1].
// A trace is marched from p towards from: reaching from yields a soft shadow
// factor based on the closest miss, hitting the surface first yields 0.
func (m *Marcher) Visibility(sdf hatch.SDF3, from, p md3.Vec) float64 {
	assertSDF(sdf)
	return m.visibility(sdf, from, p)
}

// VisibilityFacing is like [Marcher.Visibility] but first checks whether the surface
// normal n at p faces away from from, in which case it returns 0 without evaluating sdf.
func (m *Marcher) VisibilityFacing(sdf hatch.SDF3, from, p, n md3.Vec) float64 {
	assertSDF(sdf)
	if md3.Dot(md3.Sub(from, p), n) < 0 {
		return 0
	}
	return m.visibility(sdf, from, p)
}

func (m *Marcher) visibility(sdf hatch.SDF3, from, p md3.Vec) float64 {
	toEye := md3.Sub(from, p)
	distToEye := md3.Norm(toEye)
	if distToEye == 0 {
		return 1
	}
	dir := md3.Scale(1/distToEye, toEye)
	minDist := m.cfg.MinDist
	penumbra := m.cfg.Penumbra
	length := m.cfg.ShadowStartFactor * minDist
	closestMissRatio := 1.0
	for range m.cfg.MaxIterations {
		if length >= distToEye {
			return math.Max(closestMissRatio, 0)
		}
		q := md3.Add(p, md3.Scale(length, dir))
		dist := sdf.Distance(q)
		if dist < minDist {
			return 0
		} else if math.IsNaN(dist) {
			return math.NaN()
		}
		closestMissRatio = math.Min(closestMissRatio, penumbra*dist/length)
		length += dist
	}
	return 0
}

// LightIntensity returns the light received at p with unit normal n from a point light at light.
// The result is the ambient intensity plus a shadowed Lambertian term, in [ambient, 1].
func (m *Marcher) LightIntensity(sdf hatch.SDF3, p, n, light md3.Vec) float64 {
	assertSDF(sdf)
	ambient := m.cfg.Ambient
	vis := m.visibility(sdf, light, p)
	if math.IsNaN(vis) {
		return vis
	} else if vis <= 0 {
		return ambient
	}
	toLight := md3.Sub(light, p)
	lightDist := md3.Norm(toLight)
	if lightDist == 0 {
		return ambient
	}
	direct := math.Max(md3.Dot(md3.Scale(1/lightDist, toLight), n), 0)
	return ambient + (1-ambient)*vis*direct
}

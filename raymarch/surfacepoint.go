package raymarch

import (
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

// RayHit holds the quantities only known for points found by tracing a primary camera ray.
type RayHit struct {
	// Direction is the unit direction of the camera ray that hit the point.
	Direction md3.Vec
	// DistFromCamera is the distance travelled along the ray.
	DistFromCamera float64
}

// SurfacePoint is a snapshot of a point on (or near) the scene surface with all
// quantities needed for drawing. Every field is computed once at construction from the
// position, the scene, the light and the camera. SurfacePoint keeps no reference to any of them.
// The zero value is not a valid SurfacePoint.
type SurfacePoint struct {
	p          md3.Vec
	sceneDist  float64
	uvw        md3.Vec
	screen     md2.Vec
	normal     md3.Vec
	intensity  float64
	visibility float64
	hit        RayHit
	isHit      bool
}

// P returns the world position of the point.
func (sp SurfacePoint) P() md3.Vec { return sp.p }

// SceneDistance returns the SDF value at the point. Close to zero for primary hits.
func (sp SurfacePoint) SceneDistance() float64 { return sp.sceneDist }

// CameraSpace returns the point's coordinates in the camera frame.
func (sp SurfacePoint) CameraSpace() md3.Vec { return sp.uvw }

// Screen returns the normalized screen coordinates of the point.
// For points behind the camera plane it is the zero vector and [SurfacePoint.Visibility] is zero.
func (sp SurfacePoint) Screen() md2.Vec { return sp.screen }

// Normal returns the outward unit normal estimate of the surface at the point.
func (sp SurfacePoint) Normal() md3.Vec { return sp.normal }

// Intensity returns the light intensity at the point in [ambient, 1].
func (sp SurfacePoint) Intensity() float64 { return sp.intensity }

// Visibility returns how visible the point is from the eye in [0,1]:
// 0 for occluded or back facing points, 1 for fully visible points, values in between for penumbras.
func (sp SurfacePoint) Visibility() float64 { return sp.visibility }

// Ray returns the primary ray information. ok is false for points obtained by walking the surface.
func (sp SurfacePoint) Ray() (hit RayHit, ok bool) { return sp.hit, sp.isHit }

// primaryHit builds the SurfacePoint of a converged camera ray. The position,
// ray, sampled distance and screen coordinate are already known and the point
// is visible by construction.
func (m *Marcher) primaryHit(sdf hatch.SDF3, p, dir md3.Vec, travelled, dist float64, screen md2.Vec, light md3.Vec) (SurfacePoint, error) {
	sp := SurfacePoint{
		p:          p,
		sceneDist:  dist,
		uvw:        m.cam.WorldToCamera(p),
		screen:     screen,
		visibility: 1,
		hit:        RayHit{Direction: dir, DistFromCamera: travelled},
		isHit:      true,
	}
	sp.normal = m.Normal(sdf, p)
	sp.intensity = m.LightIntensity(sdf, p, sp.normal, light)
	return sp, sp.validate()
}

// WalkPoint builds the SurfacePoint at an arbitrary world position p, usually a
// step of a hatch walk. Only the position is known, every other quantity is derived.
// Visibility is measured towards the eye taking the surface normal into account.
func (m *Marcher) WalkPoint(sdf hatch.SDF3, p, light md3.Vec) (SurfacePoint, error) {
	assertSDF(sdf)
	sp := SurfacePoint{
		p:         p,
		sceneDist: sdf.Distance(p),
		uvw:       m.cam.WorldToCamera(p),
	}
	sp.normal = m.Normal(sdf, p)
	sp.intensity = m.LightIntensity(sdf, p, sp.normal, light)
	if sp.uvw.Z > 0 {
		sp.screen = m.cam.CameraToScreen(sp.uvw)
		sp.visibility = m.VisibilityFacing(sdf, m.cam.eye, p, sp.normal)
	}
	return sp, sp.validate()
}

func (sp SurfacePoint) validate() error {
	switch {
	case math.IsNaN(sp.sceneDist):
		return nanErr("scene distance", sp.p)
	case math.IsNaN(sp.normal.X) || math.IsNaN(sp.normal.Y) || math.IsNaN(sp.normal.Z):
		return nanErr("normal", sp.p)
	case math.IsNaN(sp.intensity):
		return nanErr("light intensity", sp.p)
	case math.IsNaN(sp.visibility):
		return nanErr("visibility", sp.p)
	}
	return nil
}

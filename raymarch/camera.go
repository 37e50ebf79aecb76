package raymarch

import (
	"fmt"
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
)

// frameTol is the minimum length of the vectors used to build the camera frame
// before normalization. Below it the frame orientation is undefined.
const frameTol = 1e-9

// Camera is a pinhole camera with a right handed orthonormal frame (u,v,w) where
// u points to the right of the image, v points up and w points towards the scene.
//
// Coordinates used by the camera:
//   - world space: the space of the scene.
//   - camera space: world coordinates projected on (u,v,w) relative to the eye.
//   - screen space: normalized image coordinates in [-1,1]², x to the right, y up.
//   - canvas space: pixel coordinates in [0,width]x[0,height] with origin at the top left corner,
//     so y is flipped with respect to screen space.
type Camera struct {
	eye    md3.Vec
	lookAt md3.Vec
	up     md3.Vec
	fovY   float64 // radians
	aspect float64
	halfY  float64
	u, v   md3.Vec
	w      md3.Vec
}

// NewCamera creates a camera located at eye looking at lookAt. up need not be
// orthogonal to the view direction, only not parallel to it. fovYDegrees is
// the vertical field of view and aspect the width to height ratio of the image.
func NewCamera(eye, lookAt, up md3.Vec, fovYDegrees, aspect float64) (Camera, error) {
	if !finitevec(eye) || !finitevec(lookAt) || !finitevec(up) {
		return Camera{}, fmt.Errorf("non-finite camera vector: %w", ErrDegenerateCamera)
	} else if !(fovYDegrees > 0 && fovYDegrees < 180) {
		return Camera{}, fmt.Errorf("field of view %v outside (0,180): %w", fovYDegrees, ErrDegenerateCamera)
	} else if !(aspect > 0) || math.IsInf(aspect, 0) {
		return Camera{}, fmt.Errorf("invalid aspect ratio %v: %w", aspect, ErrDegenerateCamera)
	}
	view := md3.Sub(lookAt, eye)
	viewLen := md3.Norm(view)
	if viewLen < frameTol {
		return Camera{}, fmt.Errorf("eye and look-at coincide: %w", ErrDegenerateCamera)
	}
	w := md3.Scale(1/viewLen, view)
	// Gram-Schmidt: remove the view component from up.
	vRaw := md3.Sub(up, md3.Scale(md3.Dot(up, w), w))
	vLen := md3.Norm(vRaw)
	if vLen < frameTol*math.Max(1, md3.Norm(up)) {
		return Camera{}, fmt.Errorf("up vector parallel to view direction: %w", ErrDegenerateCamera)
	}
	v := md3.Scale(1/vLen, vRaw)
	fovY := fovYDegrees * math.Pi / 180
	return Camera{
		eye:    eye,
		lookAt: lookAt,
		up:     up,
		fovY:   fovY,
		aspect: aspect,
		halfY:  math.Tan(0.5 * fovY),
		u:      md3.Cross(w, v),
		v:      v,
		w:      w,
	}, nil
}

// Eye returns the camera position.
func (c Camera) Eye() md3.Vec { return c.eye }

// LookAt returns the point the camera is aimed at.
func (c Camera) LookAt() md3.Vec { return c.lookAt }

// Basis returns the orthonormal camera frame: u to the right, v up and w towards the scene.
func (c Camera) Basis() (u, v, w md3.Vec) { return c.u, c.v, c.w }

// Aspect returns the width to height ratio of the image.
func (c Camera) Aspect() float64 { return c.aspect }

// HalfScreenLengthY returns tan(fovY/2), the half height of the image plane at unit distance.
func (c Camera) HalfScreenLengthY() float64 { return c.halfY }

// DistanceTo returns the euclidean distance from the eye to p.
func (c Camera) DistanceTo(p md3.Vec) float64 {
	return md3.Norm(md3.Sub(p, c.eye))
}

// WorldToCamera returns the camera space coordinates of the world point p.
func (c Camera) WorldToCamera(p md3.Vec) md3.Vec {
	rel := md3.Sub(p, c.eye)
	return md3.Vec{
		X: md3.Dot(rel, c.u),
		Y: md3.Dot(rel, c.v),
		Z: md3.Dot(rel, c.w),
	}
}

// CameraToScreen projects camera space coordinates onto the screen.
// The point must be in front of the camera (puvw.Z > 0); this is asserted
// in binaries built with the hatchdebug tag.
func (c Camera) CameraToScreen(puvw md3.Vec) md2.Vec {
	if debug && !(puvw.Z > 0) {
		panic(fmt.Sprintf("projecting point with non-positive depth %v", puvw.Z))
	}
	return md2.Vec{
		X: (puvw.X / puvw.Z) / (c.aspect * c.halfY),
		Y: (puvw.Y / puvw.Z) / c.halfY,
	}
}

// WorldToScreen is shorthand for CameraToScreen(WorldToCamera(p)).
func (c Camera) WorldToScreen(p md3.Vec) md2.Vec {
	return c.CameraToScreen(c.WorldToCamera(p))
}

// RayDirection returns the unit direction of the ray leaving the eye through screen.
func (c Camera) RayDirection(screen md2.Vec) md3.Vec {
	pu := screen.X * c.aspect * c.halfY
	pv := screen.Y * c.halfY
	dir := md3.Add(c.w, md3.Add(md3.Scale(pu, c.u), md3.Scale(pv, c.v)))
	return md3.Unit(dir)
}

// ScreenToCanvas maps screen coordinates to canvas pixel coordinates of an
// image of size canvasDim. The y axis is flipped so the origin is at the top left.
func ScreenToCanvas(canvasDim, screen md2.Vec) md2.Vec {
	return md2.Vec{
		X: canvasDim.X * 0.5 * (screen.X + 1),
		Y: canvasDim.Y * 0.5 * (1 - screen.Y),
	}
}

// CanvasToScreen is the inverse of [ScreenToCanvas].
func CanvasToScreen(canvasDim, canvas md2.Vec) md2.Vec {
	return md2.Vec{
		X: 2*canvas.X/canvasDim.X - 1,
		Y: 1 - 2*canvas.Y/canvasDim.Y,
	}
}

func finitevec(v md3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

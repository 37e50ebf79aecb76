// Package raymarch finds the visible surface of signed distance fields by
// sphere tracing from a pinhole camera and lays hatch strokes over it by
// walking along the surface under a light-biased tangent frame.
//
// All functions in this package are synchronous and free of shared state.
// Randomness is only consumed through the [Rand] handle passed to [Marcher.Walk].
package raymarch

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

var (
	// ErrNaN is returned when a signed distance field evaluates to NaN, which
	// is a defect in the scene composition.
	ErrNaN = errors.New("SDF evaluated to NaN")
	// ErrDegenerateCamera is returned by [NewCamera] when the camera frame cannot be constructed.
	ErrDegenerateCamera = errors.New("degenerate camera")
)

// Rand is a deterministic source of uniformly distributed values in [0,1).
// *math/rand/v2.Rand implements Rand.
type Rand interface {
	Float64() float64
}

// Config contains the numerical parameters of the ray marching engine.
// The zero value is not valid, start from [DefaultConfig].
type Config struct {
	// MaxIterations caps the sphere tracing steps of primary and shadow rays.
	MaxIterations int
	// MinDist is the distance below which a ray is considered to hit the surface.
	MinDist float64
	// NormalStep is the finite difference step used for normal estimation.
	NormalStep float64
	// Penumbra scales the soft shadow estimate. Larger values give sharper shadow edges.
	Penumbra float64
	// Ambient is the light intensity of points in full shadow.
	Ambient float64
	// ShadowStartFactor multiplies MinDist to obtain the offset at which
	// visibility rays start, so that they do not immediately hit their origin surface.
	ShadowStartFactor float64
}

// DefaultConfig returns the engine parameters used for the reference renders.
func DefaultConfig() Config {
	return Config{
		MaxIterations:     75,
		MinDist:           0.005,
		NormalStep:        0.005,
		Penumbra:          48,
		Ambient:           0.1,
		ShadowStartFactor: 10,
	}
}

// Validate returns a non-nil error if the configuration can not be used by a [Marcher].
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxIterations <= 0:
		return errors.New("non-positive iteration cap")
	case !(cfg.MinDist > 0) || math.IsInf(cfg.MinDist, 0):
		return fmt.Errorf("invalid hit distance %v", cfg.MinDist)
	case !(cfg.NormalStep > 0) || math.IsInf(cfg.NormalStep, 0):
		return fmt.Errorf("invalid normal step %v", cfg.NormalStep)
	case !(cfg.Penumbra > 0) || math.IsInf(cfg.Penumbra, 0):
		return fmt.Errorf("invalid penumbra %v", cfg.Penumbra)
	case !(cfg.Ambient >= 0 && cfg.Ambient <= 1):
		return fmt.Errorf("ambient intensity %v outside [0,1]", cfg.Ambient)
	case !(cfg.ShadowStartFactor >= 0) || math.IsInf(cfg.ShadowStartFactor, 0):
		return fmt.Errorf("invalid shadow start factor %v", cfg.ShadowStartFactor)
	}
	return nil
}

// Marcher traces rays through signed distance fields as seen by a [Camera].
// A Marcher is immutable and safe for concurrent use.
type Marcher struct {
	cam Camera
	cfg Config
}

// NewMarcher returns a Marcher for the given camera and engine configuration.
func NewMarcher(cam Camera, cfg Config) (*Marcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cam.halfY == 0 {
		return nil, errors.New("uninitialized camera, use NewCamera")
	}
	return &Marcher{cam: cam, cfg: cfg}, nil
}

// Camera returns the camera rays are traced from.
func (m *Marcher) Camera() Camera { return m.cam }

// Config returns the engine configuration.
func (m *Marcher) Config() Config { return m.cfg }

func nanErr(what string, p md3.Vec) error {
	return fmt.Errorf("%s at %v: %w", what, p, ErrNaN)
}

// assertSDF panics on a nil scene, which is a programmer error.
func assertSDF(sdf hatch.SDF3) {
	if sdf == nil {
		panic("nil SDF3")
	}
}

// Package hatch implements signed distance field primitives and domain operators
// used to describe scenes that are rendered as hatched line art by [raymarch].
//
// Primitives are available as pure functions (SDSphere, SDBox...) for users who
// write their scene as a single closure, and as [SDF3] values built through a
// [Builder] for users who prefer composing shapes.
//
// [raymarch]: https://pkg.go.dev/github.com/soypat/hatch/raymarch
package hatch

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/geometry/md3"
)

// epstol is used to check for badly conditioned parameters such as
// repetition spacings used as denominators.
const epstol = 1e-12

// SDF3 is a signed distance field over 3D space. Distance must be negative
// inside the surface, zero on it and positive outside. An exact euclidean
// distance is not required but the field should have a Lipschitz bound of at most 1
// for sphere tracing to converge correctly.
type SDF3 interface {
	Distance(p md3.Vec) float64
}

// SDFFunc adapts an ordinary function to the [SDF3] interface.
type SDFFunc func(p md3.Vec) float64

// Distance implements [SDF3].
func (f SDFFunc) Distance(p md3.Vec) float64 { return f(p) }

// Builder wraps all SDF primitive and operation construction.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	NoDimensionPanic bool
	accumErrs        []error
}

// Err returns all shape errors accumulated while NoDimensionPanic is set.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if !bld.NoDimensionPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func (*Builder) nilsdf(msg string) {
	panic("nil SDF argument: " + msg)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finitevec(v md3.Vec) bool {
	return finite(v.X, v.Y, v.Z)
}

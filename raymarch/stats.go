package raymarch

import (
	"sync/atomic"

	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

// CountingSDF3 wraps an [hatch.SDF3] and counts its evaluations.
// It is safe for concurrent use as long as the wrapped SDF is.
type CountingSDF3 struct {
	sdf   hatch.SDF3
	evals atomic.Uint64
}

// NewCountingSDF3 returns sdf wrapped with an evaluation counter.
func NewCountingSDF3(sdf hatch.SDF3) *CountingSDF3 {
	assertSDF(sdf)
	return &CountingSDF3{sdf: sdf}
}

// Distance implements [hatch.SDF3].
func (c *CountingSDF3) Distance(p md3.Vec) float64 {
	c.evals.Add(1)
	return c.sdf.Distance(p)
}

// Evaluations returns total evaluations performed during the SDF's lifetime.
func (c *CountingSDF3) Evaluations() uint64 {
	return c.evals.Load()
}

// Reset sets the evaluation count back to zero.
func (c *CountingSDF3) Reset() {
	c.evals.Store(0)
}

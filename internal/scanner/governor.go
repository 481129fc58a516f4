package scanner

import (
	"context"

	"golang.org/x/time/rate"
)

// Governor enforces a maximum dispatch rate in sequential mode. With a
// burst of 1 the limiter spaces dispatches at least 1/R apart, absorbing
// whatever time the probe itself took. A zero rate means unbounded.
type Governor struct {
	limiter *rate.Limiter
}

// NewGovernor creates a Governor for perSecond requests/second.
// perSecond <= 0 disables pacing.
func NewGovernor(perSecond float64) *Governor {
	g := &Governor{}
	if perSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return g
}

// Wait blocks until the next dispatch slot, or returns early if ctx is
// cancelled. Unbounded governors return immediately.
func (g *Governor) Wait(ctx context.Context) error {
	if g.limiter == nil {
		return ctx.Err()
	}
	return g.limiter.Wait(ctx)
}

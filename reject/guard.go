package reject

import (
	"gonum.org/v1/gonum/mat"

	msf "github.com/korken89/msf"
)

// Guard wraps an inner rejector and counts consecutive rejections. Once
// the count reaches the configured window it recommends re-initializing
// the sensor's sub-state. The guard never performs the reset itself; the
// caller polls ReinitRecommended and decides.
type Guard struct {
	// inner is the delegated rejector
	inner msf.OutlierRejector
	// window is the number of consecutive rejections which triggers
	// the recommendation
	window int
	// rejected counts consecutive rejections
	rejected int
}

// NewGuard creates a Guard delegating to inner with the given window.
func NewGuard(window int, inner msf.OutlierRejector) *Guard {
	return &Guard{
		inner:  inner,
		window: window,
	}
}

// Accept delegates to the inner rejector and tracks consecutive
// rejections. An accepted measurement clears the count.
func (g *Guard) Accept(y mat.Vector, s mat.Symmetric) bool {
	ok := g.inner.Accept(y, s)
	if ok {
		g.rejected = 0
	} else {
		g.rejected++
	}

	return ok
}

// ReinitRecommended reports whether the guard has seen at least window
// consecutive rejections.
func (g *Guard) ReinitRecommended() bool {
	return g.window > 0 && g.rejected >= g.window
}

// Clear resets the consecutive rejection count, typically after the caller
// has re-initialized the sensor's sub-state.
func (g *Guard) Clear() {
	g.rejected = 0
}

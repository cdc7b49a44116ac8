package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindRoot(t *testing.T) {
	r := FindRoot(PlainFunc(math.Cos), 0, 3, 1e-12)
	assert.True(t, near(r, math.Pi/2))

	// exact endpoint root
	r = FindRoot(PlainFunc(func(x float64) float64 { return x * (x - 2) }), 0, 1, 1e-12)
	assert.Equal(t, 0.0, r)

	// cube root crossing, poorly conditioned for bisection alone
	r = FindRoot(PlainFunc(func(x float64) float64 { return math.Cbrt(x - 0.337) }), -1, 1, 1e-10)
	assert.True(t, nearTol(r, 0.337, 1e-8))
}

func TestFindRootNoBracket(t *testing.T) {
	r := FindRoot(PlainFunc(func(x float64) float64 { return x*x + 1 }), -1, 1, 1e-10)
	assert.True(t, math.IsNaN(r))

	r = FindRoot(PlainFunc(func(x float64) float64 { return math.NaN() }), -1, 1, 1e-10)
	assert.True(t, math.IsNaN(r))
}

package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicSplineNodes(t *testing.T) {
	x := []float64{0, 1, 2.5, 4, 7}
	y := make([]float64, len(x))
	for i := range x {
		y[i] = math.Sin(x[i])
	}
	s, err := NewCubicSpline(x, y)
	require.NoError(t, err)
	for i := range x {
		assert.True(t, near(s.Value(x[i]), y[i]))
	}
	// interior accuracy on a smooth function
	assert.True(t, nearTol(s.Value(3.2), math.Sin(3.2), 2e-2))
}

func TestCubicSplineErrors(t *testing.T) {
	_, err := NewCubicSpline([]float64{0, 1, 1}, []float64{1, 2, 3})
	assert.Error(t, err)
	_, err = NewCubicSpline([]float64{0}, []float64{1})
	assert.Error(t, err)
}

func TestHermiteSplinePinned(t *testing.T) {
	// nodes of x^3: value, derivative and interior values must be exact,
	// since the interpolant is cubic per segment
	x := []float64{-2, -0.5, 1, 3}
	y := make([]float64, len(x))
	d := make([]float64, len(x))
	for i, xi := range x {
		y[i] = xi * xi * xi
		d[i] = 3 * xi * xi
	}
	s, err := NewHermiteSpline(x, y, d)
	require.NoError(t, err)
	for _, q := range []float64{-2, -1.3, 0, 0.7, 2.2, 3} {
		assert.True(t, near(s.Value(q), q*q*q), "value at %v", q)
		assert.True(t, near(s.Deriv(q), 3*q*q), "deriv at %v", q)
		assert.True(t, near(s.Deriv2(q), 6*q), "deriv2 at %v", q)
	}
}

func TestLogLogSplinePowerLaw(t *testing.T) {
	// y = 2 x^2.5 is linear in log-log space: spline and its power-law
	// extrapolation are both exact
	x := []float64{0.1, 0.5, 2, 10, 40}
	y := make([]float64, len(x))
	d := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 2 * math.Pow(xi, 2.5)
		d[i] = 5 * math.Pow(xi, 1.5)
	}
	s, err := NewLogLogSpline(x, y, d)
	require.NoError(t, err)
	for _, q := range []float64{0.01, 0.1, 0.3, 1, 7, 40, 500} {
		val, der, der2 := s.EvalDeriv(q)
		assert.True(t, near(val, 2*math.Pow(q, 2.5)), "value at %v: %v", q, val)
		assert.True(t, near(der, 5*math.Pow(q, 1.5)), "deriv at %v: %v", q, der)
		assert.True(t, nearTol(der2, 7.5*math.Pow(q, 0.5), 1e-7), "deriv2 at %v: %v", q, der2)
	}
	assert.Equal(t, 0.0, s.Value(0))
}

func TestLogLogSplineFittedDerivatives(t *testing.T) {
	// nil derivatives: fitted from a natural cubic in log-log space
	x := []float64{0.25, 0.5, 1, 2, 4, 8}
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 3 / xi
	}
	s, err := NewLogLogSpline(x, y, nil)
	require.NoError(t, err)
	for i := range x {
		assert.True(t, near(s.Value(x[i]), y[i]))
	}
	assert.True(t, nearTol(s.Value(3), 1, 1e-6))
}

func TestLogLogSplineTrimsZeros(t *testing.T) {
	x := []float64{0.1, 1, 10, 100, 1000}
	y := []float64{0, 1, 0.1, 0.01, 0}
	d := []float64{0, -1, -0.01, -0.0001, 0}
	s, err := NewLogLogSpline(x, y, d)
	require.NoError(t, err)
	assert.True(t, near(s.XMin(), 1))
	assert.True(t, near(s.XMax(), 100))
	assert.True(t, near(s.Value(10), 0.1))
	// beyond the trimmed range the boundary power law (slope -1) continues
	assert.True(t, nearTol(s.Value(1000), 0.001, 1e-8))

	_, err = NewLogLogSpline(x, []float64{0, 0, 1, 0, 0}, nil)
	assert.Error(t, err)
}

func TestLogLogSplineAtInfinity(t *testing.T) {
	// zero boundary derivative means constant extrapolation, even at h=inf
	x := []float64{1, 2, 4}
	y := []float64{1, 2, 3}
	d := []float64{1, 1, 0}
	s, err := NewLogLogSpline(x, y, d)
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.Value(math.Inf(1)))
}

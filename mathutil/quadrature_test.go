package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-08*(math.Abs(a)+math.Abs(b)+1.e-300) {
		l = true
	}
	return
}

func nearTol(a, b, tol float64) (l bool) {
	if math.Abs(a-b) < tol*(math.Abs(a)+math.Abs(b)+1.e-300) {
		l = true
	}
	return
}

func TestLegendreGQ(t *testing.T) {
	for _, order := range []int{GLOrder1, GLOrder, GLOrder2} {
		x := GLPoints(order)
		w := GLWeights(order)
		assert.Equal(t, order, len(x))
		assert.Equal(t, order, len(w))
		// weights sum to the interval length
		var ws float64
		for _, wk := range w {
			ws += wk
		}
		assert.True(t, near(ws, 1))
		// an order-n rule integrates monomials up to degree 2n-1 exactly
		for p := 0; p < 2*order; p++ {
			var sum float64
			for k := range x {
				sum += w[k] * math.Pow(x[k], float64(p))
			}
			assert.True(t, near(sum, 1/float64(p+1)),
				"order %d monomial %d: got %v want %v", order, p, sum, 1/float64(p+1))
		}
	}
}

func TestIntegrateGL(t *testing.T) {
	// int_0^pi sin = 2
	val := IntegrateGL(PlainFunc(math.Sin), 0, math.Pi, GLOrder)
	assert.True(t, nearTol(val, 2, 1e-9))
	// orientation
	val = IntegrateGL(PlainFunc(math.Sin), math.Pi, 0, GLOrder)
	assert.True(t, nearTol(val, -2, 1e-9))
}

func TestScalingCubSingular(t *testing.T) {
	// int_0^1 1/(2 sqrt(x)) dx = 1; the bare rule does poorly, the scaled one
	// absorbs the endpoint singularity
	fn := PlainFunc(func(x float64) float64 { return 0.5 / math.Sqrt(x) })
	scaled := ScaledIntegrand{Scaling: ScalingCub{X1: 0, X2: 1}, Fn: fn}
	val := IntegrateGL(scaled, 0, 1, GLOrder)
	assert.True(t, nearTol(val, 1, 1e-6), "got %v", val)

	// the scaling must leave smooth integrands intact
	val = IntegrateGL(ScaledIntegrand{Scaling: ScalingCub{X1: 0, X2: math.Pi}, Fn: PlainFunc(math.Sin)}, 0, 1, GLOrder2)
	assert.True(t, nearTol(val, 2, 1e-6))
}

func TestUnsupportedOrderPanics(t *testing.T) {
	assert.Panics(t, func() { GLPoints(7) })
	assert.Panics(t, func() { GLWeights(12) })
}

package mathutil

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fixed Gauss-Legendre orders used throughout the model construction.
// Segments shorter than GLDelta in the scaled variable use GLOrder1,
// longer ones GLOrder2; GLOrder is the default for standalone integrals.
const (
	GLOrder1 = 6
	GLOrder  = 8
	GLOrder2 = 10
	GLDelta  = 0.7 // ~ln(2)
)

var (
	glPoints  = map[int][]float64{}
	glWeights = map[int][]float64{}
)

func init() {
	for _, n := range []int{GLOrder1, GLOrder, GLOrder2} {
		x, w := LegendreGQ(n)
		glPoints[n] = x
		glWeights[n] = w
	}
}

// GLPoints returns the Gauss-Legendre nodes on [0,1] for one of the supported
// orders. The returned slice is shared and must not be modified.
func GLPoints(order int) []float64 {
	x, ok := glPoints[order]
	if !ok {
		panic("unsupported Gauss-Legendre order")
	}
	return x
}

// GLWeights returns the Gauss-Legendre weights on [0,1] matching GLPoints.
func GLWeights(order int) []float64 {
	w, ok := glWeights[order]
	if !ok {
		panic("unsupported Gauss-Legendre order")
	}
	return w
}

// LegendreGQ computes the N-point Gauss-Legendre quadrature rule on [0,1] by
// the Golub-Welsch eigenvalue method: the nodes are the eigenvalues of the
// symmetric tridiagonal Jacobi matrix of the Legendre recurrence, the weights
// come from the first components of its eigenvectors.
func LegendreGQ(N int) (x, w []float64) {
	if N < 1 {
		panic("LegendreGQ: order must be positive")
	}
	if N == 1 {
		return []float64{0.5}, []float64{1}
	}
	d0 := make([]float64, N)
	d1 := make([]float64, N-1)
	for i := 1; i < N; i++ {
		fi := float64(i)
		d1[i-1] = fi / math.Sqrt(4*fi*fi-1)
	}
	JJ := NewSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	VVr := mat.NewDense(N, N, nil)
	eig.VectorsTo(VVr)
	w = make([]float64, N)
	for k := 0; k < N; k++ {
		v := VVr.At(0, k)
		// weights on [-1,1] are 2*v0^2; map the rule to [0,1]
		w[k] = v * v
		x[k] = 0.5 * (x[k] + 1)
	}
	return
}

// NewSymTriDiagonal builds a symmetric tridiagonal matrix from its main
// diagonal d0 and first off-diagonal d1.
func NewSymTriDiagonal(d0, d1 []float64) (M *mat.SymDense) {
	M = mat.NewSymDense(len(d0), nil)
	for i, val := range d0 {
		M.SetSym(i, i, val)
	}
	for i, val := range d1 {
		M.SetSym(i, i+1, val)
	}
	return
}

// IntegrateGL approximates the integral of fn over [x1,x2] with a fixed-order
// Gauss-Legendre rule. The rule is exact for polynomials up to degree
// 2*order-1; accuracy for smooth integrands is controlled by the caller
// through segment subdivision, not adaptivity.
func IntegrateGL(fn Func, x1, x2 float64, order int) float64 {
	var (
		nodes   = GLPoints(order)
		weights = GLWeights(order)
		d       = x2 - x1
		sum     float64
	)
	for k := range nodes {
		sum += weights[k] * fn.Value(x1+d*nodes[k])
	}
	return sum * d
}

// ScalingCub is a cubic change of variable x(t) = x1 + (x2-x1) t^2 (3-2t),
// t in [0,1], whose derivative vanishes at both endpoints. Integrating a
// function with an inverse-square-root endpoint singularity in x against
// dx/dt yields a bounded integrand in t.
type ScalingCub struct {
	X1, X2 float64
}

func (s ScalingCub) Unscale(t float64) (x, dxdt float64) {
	d := s.X2 - s.X1
	x = s.X1 + d*t*t*(3-2*t)
	dxdt = d * 6 * t * (1 - t)
	return
}

// ScaledIntegrand presents fn(x(t))*dx/dt as a function of the scaled
// variable t, for use with IntegrateGL over [0,1].
type ScaledIntegrand struct {
	Scaling ScalingCub
	Fn      Func
}

func (si ScaledIntegrand) Value(t float64) float64 {
	x, dxdt := si.Scaling.Unscale(t)
	if dxdt == 0 {
		return 0
	}
	return si.Fn.Value(x) * dxdt
}

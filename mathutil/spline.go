package mathutil

import (
	"fmt"
	"math"
	"sort"
)

// segmentIndex locates the interpolation segment containing q, clamping to
// the boundary segments so that out-of-range arguments evaluate the boundary
// polynomial.
func segmentIndex(x []float64, q float64) int {
	i := sort.SearchFloat64s(x, q) - 1
	if i < 0 {
		i = 0
	}
	if i > len(x)-2 {
		i = len(x) - 2
	}
	return i
}

// CubicSpline is a natural cubic spline through (x, y).
type CubicSpline struct {
	x, y, y2 []float64 // y2 holds the second derivatives at the nodes
}

func NewCubicSpline(x, y []float64) (*CubicSpline, error) {
	n := len(x)
	if n < 2 || len(y) != n {
		return nil, fmt.Errorf("NewCubicSpline: need >=2 matching nodes, got %d/%d", len(x), len(y))
	}
	for i := 1; i < n; i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("NewCubicSpline: x must be strictly increasing, x[%d]=%g x[%d]=%g",
				i-1, x[i-1], i, x[i])
		}
	}
	y2 := make([]float64, n)
	if n > 2 {
		// tridiagonal solve for the interior second derivatives,
		// natural boundary conditions y2[0]=y2[n-1]=0
		u := make([]float64, n)
		for i := 1; i < n-1; i++ {
			sig := (x[i] - x[i-1]) / (x[i+1] - x[i-1])
			p := sig*y2[i-1] + 2
			y2[i] = (sig - 1) / p
			u[i] = (y[i+1]-y[i])/(x[i+1]-x[i]) - (y[i]-y[i-1])/(x[i]-x[i-1])
			u[i] = (6*u[i]/(x[i+1]-x[i-1]) - sig*u[i-1]) / p
		}
		for i := n - 2; i >= 1; i-- {
			y2[i] = y2[i]*y2[i+1] + u[i]
		}
	}
	return &CubicSpline{x: x, y: y, y2: y2}, nil
}

func (s *CubicSpline) Value(q float64) float64 {
	v, _, _ := s.eval(q)
	return v
}

func (s *CubicSpline) Deriv(q float64) float64 {
	_, d, _ := s.eval(q)
	return d
}

func (s *CubicSpline) Deriv2(q float64) float64 {
	_, _, d2 := s.eval(q)
	return d2
}

func (s *CubicSpline) eval(q float64) (v, d, d2 float64) {
	i := segmentIndex(s.x, q)
	h := s.x[i+1] - s.x[i]
	A := (s.x[i+1] - q) / h
	B := (q - s.x[i]) / h
	v = A*s.y[i] + B*s.y[i+1] + ((A*A*A-A)*s.y2[i]+(B*B*B-B)*s.y2[i+1])*h*h/6
	d = (s.y[i+1]-s.y[i])/h - (3*A*A-1)/6*h*s.y2[i] + (3*B*B-1)/6*h*s.y2[i+1]
	d2 = A*s.y2[i] + B*s.y2[i+1]
	return
}

// HermiteSpline is a C1 piecewise-cubic interpolant through (x, y) with the
// first derivative pinned to dydx at every node, so that the interpolant and
// its generating integrand agree to machine precision at the nodes.
type HermiteSpline struct {
	x, y, dydx []float64
}

func NewHermiteSpline(x, y, dydx []float64) (*HermiteSpline, error) {
	n := len(x)
	if n < 2 || len(y) != n || len(dydx) != n {
		return nil, fmt.Errorf("NewHermiteSpline: need >=2 matching nodes, got %d/%d/%d",
			len(x), len(y), len(dydx))
	}
	for i := 1; i < n; i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("NewHermiteSpline: x must be strictly increasing, x[%d]=%g x[%d]=%g",
				i-1, x[i-1], i, x[i])
		}
	}
	return &HermiteSpline{x: x, y: y, dydx: dydx}, nil
}

func (s *HermiteSpline) Value(q float64) float64 {
	v, _, _ := s.eval(q)
	return v
}

func (s *HermiteSpline) Deriv(q float64) float64 {
	_, d, _ := s.eval(q)
	return d
}

func (s *HermiteSpline) Deriv2(q float64) float64 {
	_, _, d2 := s.eval(q)
	return d2
}

func (s *HermiteSpline) eval(q float64) (v, d, d2 float64) {
	i := segmentIndex(s.x, q)
	h := s.x[i+1] - s.x[i]
	t := (q - s.x[i]) / h
	var (
		y0 = s.y[i]
		y1 = s.y[i+1]
		m0 = s.dydx[i] * h
		m1 = s.dydx[i+1] * h
	)
	// cubic Hermite basis
	v = y0 + t*(m0+t*(3*(y1-y0)-2*m0-m1+t*(2*(y0-y1)+m0+m1)))
	d = (m0 + t*(2*(3*(y1-y0)-2*m0-m1)+3*t*(2*(y0-y1)+m0+m1))) / h
	d2 = (2*(3*(y1-y0)-2*m0-m1) + 6*t*(2*(y0-y1)+m0+m1)) / (h * h)
	return
}

// minPositive is the smallest node value treated as nonzero when log-scaling;
// values at or below it are trimmed from the ends of the grid.
const minPositive = 1e-300

// LogLogSpline interpolates a positive function as log y vs log x, with
// power-law extrapolation beyond the grid using the boundary log-slopes.
// Zero values at the ends of the input (arising from distribution functions
// clamped to zero where negligible) are trimmed; queries beyond the trimmed
// range follow the boundary power law, which tends to zero on the trimmed
// side whenever the boundary slope has the right sign.
type LogLogSpline struct {
	s              *HermiteSpline
	lx0, lx1       float64
	ly0, ly1       float64
	slope0, slope1 float64
}

// NewLogLogSpline builds the interpolant from nodes (x, y) with optional
// derivatives dydx (pass nil to fit them with a natural cubic spline in
// log-log space). x must be positive strictly increasing; y must be
// non-negative with at least two strictly positive values forming a
// contiguous range including the interior.
func NewLogLogSpline(x, y, dydx []float64) (*LogLogSpline, error) {
	n := len(x)
	if n < 2 || len(y) != n || (dydx != nil && len(dydx) != n) {
		return nil, fmt.Errorf("NewLogLogSpline: inconsistent input sizes %d/%d/%d",
			len(x), len(y), len(dydx))
	}
	i0, i1 := 0, n-1
	for i0 <= i1 && y[i0] <= minPositive {
		i0++
	}
	for i1 >= i0 && y[i1] <= minPositive {
		i1--
	}
	if i1-i0 < 1 {
		return nil, fmt.Errorf("NewLogLogSpline: fewer than two positive values")
	}
	m := i1 - i0 + 1
	lx := make([]float64, m)
	ly := make([]float64, m)
	ld := make([]float64, m)
	for i := 0; i < m; i++ {
		xi, yi := x[i0+i], y[i0+i]
		if !(xi > 0) || !(yi > 0) || math.IsInf(yi, 0) {
			return nil, fmt.Errorf("NewLogLogSpline: invalid node x=%g y=%g", xi, yi)
		}
		lx[i] = math.Log(xi)
		ly[i] = math.Log(yi)
		if dydx != nil {
			ld[i] = dydx[i0+i] * xi / yi
		}
	}
	if dydx == nil {
		cs, err := NewCubicSpline(lx, ly)
		if err != nil {
			return nil, err
		}
		for i := range ld {
			ld[i] = cs.Deriv(lx[i])
		}
	}
	hs, err := NewHermiteSpline(lx, ly, ld)
	if err != nil {
		return nil, err
	}
	return &LogLogSpline{
		s:   hs,
		lx0: lx[0], lx1: lx[m-1],
		ly0: ly[0], ly1: ly[m-1],
		slope0: ld[0], slope1: ld[m-1],
	}, nil
}

func (s *LogLogSpline) Value(x float64) float64 {
	v, _, _ := s.EvalDeriv(x)
	return v
}

func (s *LogLogSpline) NumDerivs() int { return 2 }

// EvalDeriv returns the interpolated value and its first two derivatives
// with respect to x (not log x).
func (s *LogLogSpline) EvalDeriv(x float64) (val, der, der2 float64) {
	if !(x > 0) {
		// power-law limit toward x=0
		if s.slope0 > 0 {
			return 0, 0, 0
		} else if s.slope0 == 0 {
			return math.Exp(s.ly0), 0, 0
		}
		return math.Inf(1), math.Inf(-1), math.Inf(1)
	}
	t := math.Log(x)
	var u, du, d2u float64
	switch {
	case t < s.lx0:
		u, du, d2u = s.ly0+s.slope0*(t-s.lx0), s.slope0, 0
		if s.slope0 == 0 {
			u = s.ly0 // avoid 0*Inf for t=-Inf
		}
	case t > s.lx1:
		u, du, d2u = s.ly1+s.slope1*(t-s.lx1), s.slope1, 0
		if s.slope1 == 0 {
			u = s.ly1
		}
	default:
		u, du, d2u = s.s.eval(t)
	}
	val = math.Exp(u)
	der = val * du / x
	der2 = val / (x * x) * (d2u + du*(du-1))
	return
}

// XMin and XMax report the extent of the (trimmed) interpolation grid.
func (s *LogLogSpline) XMin() float64 { return math.Exp(s.lx0) }
func (s *LogLogSpline) XMax() float64 { return math.Exp(s.lx1) }

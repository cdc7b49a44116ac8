package mathutil

import (
	"math"
)

const maxRootIter = 100

// FindRoot locates a root of fn on [x1,x2] by Brent's method. The interval
// must bracket a sign change; if it does not, or the iteration fails to
// converge, NaN is returned. Callers treat NaN as "root not found" rather
// than an error.
func FindRoot(fn Func, x1, x2, relTol float64) float64 {
	var (
		a, b   = x1, x2
		fa, fb = fn.Value(a), fn.Value(b)
	)
	if fa == 0 {
		return a
	}
	if fb == 0 {
		return b
	}
	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		return math.NaN()
	}
	c, fc := a, fa
	var d, e float64
	d = b - a
	e = d
	for iter := 0; iter < maxRootIter; iter++ {
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol := 2*math.SmallestNonzeroFloat64 + relTol*math.Abs(b) + relTol*math.Abs(x2-x1)
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol || fb == 0 {
			return b
		}
		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			// attempt inverse quadratic interpolation
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else {
			b += math.Copysign(tol, xm)
		}
		fb = fn.Value(b)
		if math.IsNaN(fb) {
			return math.NaN()
		}
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
	}
	return math.NaN()
}

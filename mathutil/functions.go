package mathutil

import (
	"math"
)

// Func is a scalar function of one variable.
type Func interface {
	Value(x float64) float64
}

// FuncDeriv is a scalar function that additionally provides up to two
// derivatives. NumDerivs reports how many of them are analytic (0, 1 or 2);
// der and der2 beyond that count are NaN.
type FuncDeriv interface {
	Func
	EvalDeriv(x float64) (val, der, der2 float64)
	NumDerivs() int
}

// PlainFunc adapts an ordinary closure to the Func interface.
type PlainFunc func(x float64) float64

func (f PlainFunc) Value(x float64) float64 { return f(x) }

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func pow2(x float64) float64 { return x * x }

func pow3(x float64) float64 { return x * x * x }

// LogLogScaled wraps a non-negative function f(x) as u(t) = log f(exp t), the
// form in which power-law-like profiles become nearly linear. Derivatives are
// transformed analytically when the wrapped function provides them, otherwise
// estimated by central differences.
type LogLogScaled struct {
	F FuncDeriv
}

func (s LogLogScaled) Value(t float64) float64 {
	return math.Log(s.F.Value(math.Exp(t)))
}

func (s LogLogScaled) NumDerivs() int { return 2 }

func (s LogLogScaled) EvalDeriv(t float64) (val, der, der2 float64) {
	x := math.Exp(t)
	if s.F.NumDerivs() >= 2 {
		f, df, d2f := s.F.EvalDeriv(x)
		val = math.Log(f)
		der = df * x / f
		der2 = d2f*x*x/f + der - der*der
		return
	}
	// central differences in t with a step small enough for smooth profiles
	// but large enough to survive roundoff in log space
	const dt = 1e-4
	up := math.Log(s.F.Value(math.Exp(t + dt)))
	dn := math.Log(s.F.Value(math.Exp(t - dt)))
	val = math.Log(s.F.Value(x))
	der = (up - dn) / (2 * dt)
	der2 = (up + dn - 2*val) / (dt * dt)
	return
}

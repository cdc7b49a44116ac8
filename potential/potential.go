// Package potential provides spherically-symmetric gravitational potentials
// and the phase-volume reparametrization h(E) used by the isotropic model
// machinery. Units are G=1 throughout.
package potential

import (
	"math"

	"github.com/notargets/gosphere/mathutil"
)

// Potential is a spherically-symmetric potential Phi(r), providing the
// value and its first two radial derivatives. Implementations must be
// monotonically increasing in r with Phi -> 0- as r -> infinity.
type Potential interface {
	EvalDeriv(r float64) (Phi, dPhi, d2Phi float64)
}

// Value evaluates just the potential.
func Value(p Potential, r float64) float64 {
	v, _, _ := p.EvalDeriv(r)
	return v
}

// Plummer is the Plummer sphere Phi = -M / sqrt(r^2 + a^2).
type Plummer struct {
	Mass, ScaleRadius float64
}

func (p Plummer) EvalDeriv(r float64) (Phi, dPhi, d2Phi float64) {
	rsq := r*r + p.ScaleRadius*p.ScaleRadius
	Phi = -p.Mass / math.Sqrt(rsq)
	dPhi = -Phi * r / rsq
	d2Phi = Phi * (2*r*r - p.ScaleRadius*p.ScaleRadius) / (rsq * rsq)
	return
}

// Density returns the Plummer density profile, used by tests as the
// analytic reference: rho = 3M/(4 pi a^3) (1 + r^2/a^2)^(-5/2).
func (p Plummer) Density(r float64) float64 {
	return 3 / (4 * math.Pi) * p.Mass / pow3(p.ScaleRadius) *
		math.Pow(1+pow2(r/p.ScaleRadius), -2.5)
}

// Hernquist is the Hernquist sphere Phi = -M / (r + a).
type Hernquist struct {
	Mass, ScaleRadius float64
}

func (p Hernquist) EvalDeriv(r float64) (Phi, dPhi, d2Phi float64) {
	d := r + p.ScaleRadius
	Phi = -p.Mass / d
	dPhi = p.Mass / (d * d)
	d2Phi = -2 * p.Mass / (d * d * d)
	return
}

// PointMass is the Kepler potential Phi = -M/r of a central point mass.
type PointMass struct {
	Mass float64
}

func (p PointMass) EvalDeriv(r float64) (Phi, dPhi, d2Phi float64) {
	Phi = -p.Mass / r
	dPhi = p.Mass / (r * r)
	d2Phi = -2 * p.Mass / (r * r * r)
	return
}

// Isochrone is the isochrone sphere Phi = -M / (a + sqrt(a^2 + r^2)).
type Isochrone struct {
	Mass, ScaleRadius float64
}

func (p Isochrone) EvalDeriv(r float64) (Phi, dPhi, d2Phi float64) {
	a := p.ScaleRadius
	b := math.Sqrt(a*a + r*r)
	D := b * pow2(a+b)
	Phi = -p.Mass / (a + b)
	dPhi = p.Mass * r / D
	dD := r * (a + b) * ((a+b)/b + 2)
	d2Phi = p.Mass * (D - r*dD) / (D * D)
	return
}

// Composite is the sum of several potentials, e.g. a stellar profile with
// a central point mass.
type Composite []Potential

func (c Composite) EvalDeriv(r float64) (Phi, dPhi, d2Phi float64) {
	for _, p := range c {
		v, d, d2 := p.EvalDeriv(r)
		Phi += v
		dPhi += d
		d2Phi += d2
	}
	return
}

// Rmax returns the radius at which Phi(r) = E, the maximum radius reachable
// by an orbit of energy E. E must lie strictly between Phi(0) and 0.
func Rmax(pot Potential, E float64) float64 {
	return bracketedRoot(func(r float64) float64 {
		return Value(pot, r) - E
	})
}

// Rcirc returns the radius of the circular orbit with energy E, i.e. the
// root of Phi(r) + r Phi'(r)/2 = E.
func Rcirc(pot Potential, E float64) float64 {
	return bracketedRoot(func(r float64) float64 {
		Phi, dPhi, _ := pot.EvalDeriv(r)
		return Phi + 0.5*r*dPhi - E
	})
}

// Vcirc is the circular velocity at radius r.
func Vcirc(pot Potential, r float64) float64 {
	_, dPhi, _ := pot.EvalDeriv(r)
	return math.Sqrt(r * dPhi)
}

// bracketedRoot solves fn(r)=0 for a function that is negative at small r
// and positive at large r, expanding the bracket geometrically and then
// switching to Brent in log r.
func bracketedRoot(fn func(float64) float64) float64 {
	rlo, rhi := 1.0, 1.0
	for iter := 0; fn(rlo) > 0 && iter < 200; iter++ {
		rlo *= 0.25
	}
	for iter := 0; fn(rhi) < 0 && iter < 200; iter++ {
		rhi *= 4
	}
	if !(fn(rlo) <= 0 && fn(rhi) >= 0) {
		return math.NaN()
	}
	x := mathutil.FindRoot(mathutil.PlainFunc(func(x float64) float64 {
		return fn(math.Exp(x))
	}), math.Log(rlo), math.Log(rhi), 1e-12)
	return math.Exp(x)
}

// InnerSlope estimates the power-law behaviour Phi ~ coef * r^slope (+const)
// of the potential near the origin from the radial force at two small radii.
// A slope of -1 indicates a central point mass of -coef.
func InnerSlope(pot Potential) (slope, coef float64) {
	const r1 = 1e-8
	_, f1, _ := pot.EvalDeriv(r1)
	_, f2, _ := pot.EvalDeriv(2 * r1)
	slope = math.Log2(f2/f1) + 1
	if slope == 0 || math.IsNaN(slope) {
		return slope, 0
	}
	coef = f1 / (slope * math.Pow(r1, slope-1))
	return
}

func pow2(x float64) float64 { return x * x }

func pow3(x float64) float64 { return x * x * x }

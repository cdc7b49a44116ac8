// Package sphmodel builds isotropic spherical dynamical models from a
// distribution function f(h) and a phase-volume mapping h(E): cumulative
// mass/energy interpolants, position-dependent velocity moments, two-body
// relaxation coefficients, velocity sampling and diagnostic reports.
package sphmodel

import (
	"math"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

// DF is an isotropic distribution function expressed in phase volume h.
// NumDerivs reports whether df/dh is available analytically.
type DF = mathutil.FuncDeriv

// dfFromEnergy adapts a distribution function of energy f(E) to a function
// of phase volume using the h(E) mapping; df/dh = f'(E)/g.
type dfFromEnergy struct {
	pv *potential.PhaseVolume
	fE mathutil.FuncDeriv
}

// NewDFFromEnergy wraps f(E) as f(h). The phase-volume object must describe
// the same potential the DF was derived in.
func NewDFFromEnergy(pv *potential.PhaseVolume, fE mathutil.FuncDeriv) DF {
	return dfFromEnergy{pv: pv, fE: fE}
}

func (d dfFromEnergy) Value(h float64) float64 {
	return d.fE.Value(d.pv.EofH(h))
}

func (d dfFromEnergy) NumDerivs() int {
	if d.fE.NumDerivs() >= 1 {
		return 1
	}
	return 0
}

func (d dfFromEnergy) EvalDeriv(h float64) (val, der, der2 float64) {
	E, g, _ := d.pv.EofHDeriv(h)
	v, dE, _ := d.fE.EvalDeriv(E)
	return v, dE / g, math.NaN()
}

// plummerEnergyDF is the isotropic Plummer distribution function
// f(E) = 24 sqrt(2)/(7 pi^3) a^2 / M^4 (-E)^(7/2)  (G=1).
type plummerEnergyDF struct {
	mass, scale float64
}

func (d plummerEnergyDF) norm() float64 {
	return 24 * math.Sqrt2 / (7 * math.Pi * math.Pi * math.Pi) *
		d.scale * d.scale / math.Pow(d.mass, 4)
}

func (d plummerEnergyDF) Value(E float64) float64 {
	if E >= 0 {
		return 0
	}
	return d.norm() * math.Pow(-E, 3.5)
}

func (d plummerEnergyDF) NumDerivs() int { return 2 }

func (d plummerEnergyDF) EvalDeriv(E float64) (val, der, der2 float64) {
	if E >= 0 {
		return 0, 0, 0
	}
	val = d.norm() * math.Pow(-E, 3.5)
	der = -3.5 * val / (-E)
	der2 = 2.5 * 3.5 * val / (E * E)
	return
}

// NewPlummerDF returns the isotropic DF of a self-consistent Plummer sphere
// with the given mass and scale radius, expressed in phase volume through pv.
func NewPlummerDF(pv *potential.PhaseVolume, mass, scaleRadius float64) DF {
	return NewDFFromEnergy(pv, plummerEnergyDF{mass: mass, scale: scaleRadius})
}

// hernquistEnergyDF is the isotropic Hernquist distribution function
// (Hernquist 1990, eq. 17). It exposes no analytic derivatives, exercising
// the finite-difference slope estimation path of the model builder.
type hernquistEnergyDF struct {
	mass, scale float64
}

func (d hernquistEnergyDF) Value(E float64) float64 {
	if E >= 0 {
		return 0
	}
	q2 := -d.scale * E / d.mass
	if q2 >= 1 {
		q2 = 1 - 1e-15 // E at the potential minimum
	}
	q := math.Sqrt(q2)
	vg3 := math.Pow(d.mass/d.scale, 1.5)
	pre := d.mass / (8 * math.Sqrt2 * math.Pi * math.Pi * math.Pi * pow3(d.scale) * vg3)
	return pre * math.Pow(1-q2, -2.5) *
		(3*math.Asin(q) + q*math.Sqrt(1-q2)*(1-2*q2)*(8*q2*q2-8*q2-3))
}

func (d hernquistEnergyDF) NumDerivs() int { return 0 }

func (d hernquistEnergyDF) EvalDeriv(E float64) (val, der, der2 float64) {
	return d.Value(E), math.NaN(), math.NaN()
}

// NewHernquistDF returns the isotropic DF of a self-consistent Hernquist
// sphere, expressed in phase volume through pv.
func NewHernquistDF(pv *potential.PhaseVolume, mass, scaleRadius float64) DF {
	return NewDFFromEnergy(pv, hernquistEnergyDF{mass: mass, scale: scaleRadius})
}

func pow2(x float64) float64 { return x * x }

func pow3(x float64) float64 { return x * x * x }

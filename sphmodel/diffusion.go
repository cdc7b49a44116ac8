package sphmodel

import (
	"math"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

// DifCoefEnergy computes the orbit-averaged drift and diffusion
// coefficients in energy, <Delta E> and <Delta E^2>, for a particle with
// energy E in the given model.
func DifCoefEnergy(model *SphericalIsotropicModel, E float64) (DeltaE, DeltaE2 float64) {
	h := model.PhaseVol.HofE(E)
	_, g, _ := model.PhaseVol.EofHDeriv(h)
	totalMass := model.TotalMass
	IF := model.I0(h)
	IFG := model.CumulMass(h)
	IFH := model.CumulEkin(h) * (2. / 3)
	DeltaE = 16 * math.Pi * math.Pi * totalMass * (IF - IFG/g)
	DeltaE2 = 32 * math.Pi * math.Pi * totalMass * (IF*h + IFH) / g
	return
}

// DifCoefLosscone computes the orbit-averaged diffusion coefficient in
// angular momentum for a nearly radial orbit of energy E, expressed as
// D_RR/R in the limit R-->0 (R is the squared relative angular momentum).
// The orbit average runs over the radial range [0, rmax(E)]:
//
//	D = [8 pi^2 / g(E)] int_0^rmax dr r^2/v <Delta v_per^2>,
//
// where the term with I0(E) is taken out of the integral and evaluated
// analytically, and the rest is a nested fixed-order quadrature over
// radius and energy.
func DifCoefLosscone(model *SphericalIsotropicModel, pot potential.Potential, E float64) float64 {
	h := model.PhaseVol.HofE(E)
	rmax := potential.Rmax(pot, E)
	_, g, dgdh := model.PhaseVol.EofHDeriv(h)
	// int_0^rmax dr r^2/v = g dg/dh / (16 pi^2), multiplying 4/3 I0(E)
	result := 2. / 3 * dgdh * model.I0(h)
	glnodes, glweights := mathutil.GLPoints(mathutil.GLOrder), mathutil.GLWeights(mathutil.GLOrder)
	for ir := 0; ir < mathutil.GLOrder; ir++ {
		// outer integral in the scaled radial variable r/rmax
		r := glnodes[ir] * rmax
		Phi := potential.Value(pot, r)
		w := 8 * math.Pi * math.Pi * rmax / g * pow2(r) * glweights[ir]
		for iE := 0; iE < mathutil.GLOrder; iE++ {
			// inner integral in the scaled energy variable (E'-Phi)/(E-Phi)
			Ep := E*glnodes[iE] + Phi*(1-glnodes[iE])
			fEp := model.Value(model.PhaseVol.HofE(Ep))
			vp := math.Sqrt(2 * (Ep - Phi))
			result += glweights[iE] * w * fEp * vp * (1 - 1./3*glnodes[iE])
		}
	}
	return result * 16 * math.Pi * math.Pi * model.TotalMass
}

package sphmodel

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

// WriteSphericalIsotropicModel writes a text table of radial profiles and
// relaxation quantities describing the model: one row per grid node in h,
// columns for radius, enclosed mass, energy, density, DF value, mass below
// the energy, phase volume, radial period, circular-orbit radius and
// angular momentum, intrinsic and projected velocity dispersions, surface
// density, the energy diffusion coefficient and the phase-volume fluxes of
// mass and energy. When the potential contains a central point mass, a
// final column holds the loss-cone diffusion coefficient D_RR/R(0).
// A nil gridh selects the grid automatically.
func WriteSphericalIsotropicModel(w io.Writer, header string,
	model *SphericalIsotropicModel, pot potential.Potential, gridh []float64) error {

	var gridH []float64
	if len(gridh) == 0 {
		for _, logh := range mathutil.CreateInterpolationGrid(
			mathutil.LogLogScaled{F: model}, mathutil.AccuracyInterp) {
			gridH = append(gridH, math.Exp(logh))
		}
	} else if len(gridh) < 2 {
		return fmt.Errorf("WriteSphericalIsotropicModel: gridh is too small")
	} else {
		gridH = append(gridH, gridh...)
	}

	// corresponding grids in E and r, skipping nodes whose potential
	// difference from the previous one is dominated by roundoff
	Phi0 := model.PhaseVol.Phi0()
	var gridR, gridPhi, gridG []float64
	kept := gridH[:0]
	prevPhi := Phi0
	for _, h := range gridH {
		Phi, g, _ := model.PhaseVol.EofHDeriv(h)
		if !(Phi > prevPhi*(1-minValueRoundoff)) {
			continue
		}
		kept = append(kept, h)
		gridPhi = append(gridPhi, Phi)
		gridG = append(gridG, g)
		gridR = append(gridR, potential.Rmax(pot, Phi))
		prevPhi = Phi
	}
	gridH = kept

	gridRho, gridVelDisp, err := ComputeDensity(model, model.PhaseVol, gridPhi)
	if err != nil {
		return err
	}
	for i := range gridRho {
		// keep the log-log interpolants below well-defined
		if math.IsNaN(gridRho[i]+gridVelDisp[i]) || math.IsInf(gridRho[i]+gridVelDisp[i], 0) ||
			gridRho[i] <= minValueRoundoff {
			gridRho[i] = minValueRoundoff
			gridVelDisp[i] = minValueRoundoff
		}
	}
	density, err := mathutil.NewLogLogSpline(gridR, gridRho, nil)
	if err != nil {
		return fmt.Errorf("WriteSphericalIsotropicModel: density profile: %w", err)
	}
	veldisp, err := mathutil.NewLogLogSpline(gridR, gridVelDisp, nil)
	if err != nil {
		return fmt.Errorf("WriteSphericalIsotropicModel: velocity dispersion profile: %w", err)
	}
	gridProjDensity, gridProjVelDisp, err := ComputeProjectedDensity(density, veldisp, gridR)
	if err != nil {
		return err
	}

	mult := 16 * math.Pi * math.Pi * model.TotalMass

	// a potential with inner slope -1 indicates a central point mass
	slope, coef := potential.InnerSlope(pot)
	Mbh := 0.0
	if math.Abs(slope+1) < 1e-3 {
		Mbh = -coef
	}

	glnodes, glweights := mathutil.GLPoints(mathutil.GLOrder), mathutil.GLWeights(mathutil.GLOrder)
	mcumul := 0.0

	if header != "" {
		if _, err := fmt.Fprintf(w, "#%s\n", header); err != nil {
			return err
		}
	}
	cols := "#r      \tM(r)    \tE=Phi(r)\trho(r)  \tf(E)    \tM(E)    \th(E)    \tTrad(E) \trcirc(E) \t" +
		"Lcirc(E) \tVelDispersion\tVelDispProj\tSurfaceDensity\tDeltaE^2\tMassFlux\tEnergyFlux"
	if Mbh > 0 {
		_, err = fmt.Fprintf(w, "%s\tD_RR/R(0)\n#0        Mbh = %-14.8g\t-INFINITY\n", cols, Mbh)
	} else {
		_, err = fmt.Fprintf(w, "%s\n#0      \t0       \t%-14.8g\n", cols, Phi0)
	}
	if err != nil {
		return err
	}

	for i, h := range gridH {
		r, g := gridR[i], gridG[i]
		f, dfdh, _ := model.EvalDeriv(h)
		// enclosed mass integrated over the preceding radial segment
		rprev := 0.0
		if i > 0 {
			rprev = gridR[i-1]
		}
		for k := 0; k < mathutil.GLOrder; k++ {
			rk := rprev + glnodes[k]*(r-rprev)
			mcumul += 4 * math.Pi * (r - rprev) * glweights[k] * pow2(rk) * density.Value(rk)
		}
		E := gridPhi[i]
		intfg := model.CumulMass(h)
		intfh := model.CumulEkin(h) * (2. / 3)
		intf := model.I0(h)
		deltaE2 := mult * (intf*h + intfh) / g * 2
		fluxM := -mult * ((intf*h+intfh)*g*dfdh + intfg*f)
		fluxE := E*fluxM - mult*(-(intf*h+intfh)*f+intfg*intf)
		rcirc := potential.Rcirc(pot, E)
		lcirc := rcirc * potential.Vcirc(pot, rcirc)
		tradial := g / (4 * math.Pi * math.Pi * pow2(lcirc))

		_, err = fmt.Fprintf(w,
			"%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t"+
				"%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g\t%-14.8g",
			r, mcumul, E, gridRho[i], f, intfg, h, tradial,
			rcirc, lcirc, gridVelDisp[i], gridProjVelDisp[i], gridProjDensity[i],
			deltaE2, fluxM, fluxE)
		if err != nil {
			return err
		}
		if Mbh > 0 {
			if _, err = fmt.Fprintf(w, "\t%-14.8g", DifCoefLosscone(model, pot, E)); err != nil {
				return err
			}
		}
		if _, err = fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

package sphmodel

import (
	"fmt"
	"math"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

// Values smaller than this are treated as exact zeros of the DF, so that the
// asymptotic slope analysis is not polluted by round-off garbage.
const minValueRoundoff = 0.9999999999999e-100

// SphericalIsotropicModel carries the cumulative integrals of an isotropic
// DF over phase volume:
//
//	I0(h)        = int_h^inf f dh'/g'        (inward from infinity)
//	CumulMass    = int_0^h f dh'             (mass of particles below h)
//	CumulEkin    = 3/2 int_0^h f h'/g' dh'   (their kinetic energy)
//	CumulEtotal  = int_0^h f E dh'           (their total energy, negative)
//
// All four are stored as log-log interpolants with derivatives pinned to the
// exact integrand values at the nodes, so that differentiating the mass
// integral recovers f(h) itself. The zero value is not usable; construct
// with NewSphericalIsotropicModel.
type SphericalIsotropicModel struct {
	PhaseVol  *potential.PhaseVolume
	TotalMass float64

	// htransition separates the two ways of recovering f(h): below it the
	// mass integral is differentiated, above it (where the mass integral
	// saturates at TotalMass and loses relative accuracy) f is recovered
	// from I0 instead.
	htransition float64

	intf, intfg, intfh, intfE *mathutil.LogLogSpline
}

// NewSphericalIsotropicModel tabulates the cumulative integrals of df over
// the given grid in h (strictly increasing, all positive). A nil or empty
// grid is constructed automatically from the curvature of log f(log h).
func NewSphericalIsotropicModel(pv *potential.PhaseVolume, df DF, gridh []float64) (*SphericalIsotropicModel, error) {
	var gridLogH []float64
	if len(gridh) == 0 {
		gridLogH = mathutil.CreateInterpolationGrid(
			mathutil.LogLogScaled{F: df}, mathutil.AccuracyInterp)
	} else {
		gridLogH = make([]float64, len(gridh))
		for i, h := range gridh {
			if !(h > 0) || (i > 0 && h <= gridh[i-1]) {
				return nil, fmt.Errorf(
					"SphericalIsotropicModel: grid in h must be positive and increasing (h[%d]=%g)", i, h)
			}
			gridLogH[i] = math.Log(h)
		}
	}
	npoints := len(gridLogH)
	if npoints < 3 {
		return nil, fmt.Errorf("SphericalIsotropicModel: need at least 3 grid nodes, got %d", npoints)
	}

	// values of f, g, h, E at grid nodes
	gridF := make([]float64, npoints)
	gridG := make([]float64, npoints)
	gridH := make([]float64, npoints)
	gridE := make([]float64, npoints)
	for i, logh := range gridLogH {
		h := math.Exp(logh)
		f := df.Value(h)
		if !(f >= 0) {
			return nil, fmt.Errorf("SphericalIsotropicModel: f(h=%g)=%g", h, f)
		}
		gridF[i] = f
		gridH[i] = h
		gridE[i], gridG[i], _ = pv.EofHDeriv(h)
	}

	// asymptotic power-law slopes of f(h) at both ends of the grid
	var innerFslope, outerFslope float64
	if df.NumDerivs() >= 1 {
		_, der, _ := df.EvalDeriv(gridH[0])
		innerFslope = der / gridF[0] * gridH[0]
		_, der, _ = df.EvalDeriv(gridH[npoints-1])
		outerFslope = der / gridF[npoints-1] * gridH[npoints-1]
	} else {
		innerFslope = math.Log(gridF[1]/gridF[0]) / (gridLogH[1] - gridLogH[0])
		outerFslope = math.Log(gridF[npoints-1]/gridF[npoints-2]) /
			(gridLogH[npoints-1] - gridLogH[npoints-2])
	}
	if gridF[0] <= minValueRoundoff {
		gridF[0], innerFslope = 0, 0
	} else if !(innerFslope > -1) {
		return nil, fmt.Errorf("SphericalIsotropicModel: f(h) rises too rapidly as h-->0: "+
			"f(h=%g)=%g, f(h=%g)=%g => f ~ h^%g",
			gridH[0], gridF[0], gridH[1], gridF[1], innerFslope)
	}
	if gridF[npoints-1] <= minValueRoundoff {
		gridF[npoints-1], outerFslope = 0, 0
	} else if !(outerFslope < -1) {
		return nil, fmt.Errorf("SphericalIsotropicModel: f(h) falls off too slowly as h-->infinity: "+
			"f(h=%g)=%g, f(h=%g)=%g => f ~ h^%g",
			gridH[npoints-1], gridF[npoints-1], gridH[npoints-2], gridF[npoints-2], outerFslope)
	}

	// asymptotic slopes of E(h): -E ~ h^outerEslope as h-->inf (about -2/3
	// in a Keplerian outer potential); near the origin -E ~ h^innerEslope
	// plus a constant when Phi(0) is finite.
	phi0 := pv.Phi0()
	innerE := gridE[0]
	outerE := gridE[npoints-1]
	if !(phi0 < innerE && innerE < outerE && outerE < 0) {
		return nil, fmt.Errorf("SphericalIsotropicModel: weird behaviour of potential: "+
			"Phi(0)=%g, innerE=%g, outerE=%g", phi0, innerE, outerE)
	}
	if !math.IsInf(phi0, -1) {
		innerE -= phi0
	}
	innerEslope := gridH[0] / gridG[0] / innerE
	outerEslope := gridH[npoints-1] / gridG[npoints-1] / outerE
	outerRatio := outerFslope / outerEslope
	if !(outerEslope < 0) {
		return nil, fmt.Errorf(
			"SphericalIsotropicModel: weird behaviour of E(h) at infinity: E ~ h^%g", outerEslope)
	}
	if !(innerEslope+innerFslope > -1) {
		return nil, fmt.Errorf("SphericalIsotropicModel: weird behaviour of f(h) at origin: "+
			"E ~ h^%g, f ~ h^%g, their product grows faster than h^-1 => total energy is infinite",
			innerEslope, innerFslope)
	}

	// accumulate the four integrals over interior grid segments, using a
	// higher-order quadrature rule on longer segments
	gridFint := make([]float64, npoints)
	gridFGint := make([]float64, npoints)
	gridFHint := make([]float64, npoints)
	gridFEint := make([]float64, npoints)
	for i := 1; i < npoints; i++ {
		dlogh := gridLogH[i] - gridLogH[i-1]
		order := mathutil.GLOrder1
		if dlogh >= mathutil.GLDelta {
			order = mathutil.GLOrder2
		}
		glnodes, glweights := mathutil.GLPoints(order), mathutil.GLWeights(order)
		for k := 0; k < order; k++ {
			logh := gridLogH[i-1] + dlogh*glnodes[k]
			weight := glweights[k] * dlogh
			h := math.Exp(logh)
			E, g, _ := pv.EofHDeriv(h)
			f := df.Value(h)
			if !(f >= 0) {
				return nil, fmt.Errorf("SphericalIsotropicModel: f(h=%g)=%g", h, f)
			}
			// dE is replaced by d(log h) * h / g, hence the extra factors
			integrand := f * h * weight
			gridFint[i-1] += integrand / g
			gridFGint[i] += integrand
			gridFHint[i] += integrand / g * h
			gridFEint[i] -= integrand * E
		}
	}

	// int f dE accumulates from outside in; the tail beyond the last node
	// is integrated analytically using the power-law asymptotics
	gridFint[npoints-1] = -gridF[npoints-1] * outerE / (1 + outerRatio)
	for i := npoints - 1; i >= 1; i-- {
		gridFint[i-1] += gridFint[i]
	}

	// the other three accumulate from inside out; the head segment
	// (0..gridH[0]) is integrated analytically
	gridFGint[0] = gridF[0] * gridH[0] / (1 + innerFslope)
	gridFHint[0] = gridF[0] * pow2(gridH[0]) / gridG[0] / (1 + innerEslope + innerFslope)
	if innerEslope >= 0 {
		gridFEint[0] = gridF[0] * gridH[0] * -phi0 / (1 + innerFslope)
	} else {
		gridFEint[0] = gridF[0] * gridH[0] * -innerE / (1 + innerFslope + innerEslope)
	}
	for i := 1; i < npoints; i++ {
		gridFGint[i] += gridFGint[i-1]
		gridFHint[i] += gridFHint[i-1]
		gridFEint[i] += gridFEint[i-1]
	}
	// contribution of the tail from the last grid point to infinity
	gridFGint[npoints-1] -= gridF[npoints-1] * gridH[npoints-1] / (1 + outerFslope)
	gridFHint[npoints-1] -= gridF[npoints-1] * pow2(gridH[npoints-1]) / gridG[npoints-1] /
		(1 + outerEslope + outerFslope)
	gridFEint[npoints-1] += gridF[npoints-1] * gridH[npoints-1] * outerE /
		(1 + outerEslope + outerFslope)
	totalMass := gridFGint[npoints-1]
	if !(totalMass > 0) {
		return nil, fmt.Errorf("SphericalIsotropicModel: f(h) is nowhere positive")
	}

	// threshold between the two regimes of recovering f(h) from the splines
	htransition := gridH[0]
	for i := 1; i < npoints-1 && gridFGint[i+1] < totalMass*0.999; i++ {
		htransition = gridH[i]
	}

	// exact derivatives of the four integrals at the nodes, pinned into the
	// interpolants so that differentiation reproduces the integrands
	gridFder := make([]float64, npoints)
	gridFGder := make([]float64, npoints)
	gridFHder := make([]float64, npoints)
	gridFEder := make([]float64, npoints)
	for i := 0; i < npoints; i++ {
		gridFder[i] = -gridF[i] / gridG[i]
		gridFGder[i] = gridF[i]
		gridFHder[i] = gridF[i] * gridH[i] / gridG[i]
		gridFEder[i] = -gridF[i] * gridE[i]
		sum := gridFint[i] + gridFGint[i] + gridFHint[i] + gridFEint[i]
		if !(gridFder[i] <= 0 && gridFGder[i] >= 0 && gridFHder[i] >= 0 && gridFEder[i] >= 0 &&
			!math.IsNaN(sum) && !math.IsInf(sum, 0)) {
			return nil, fmt.Errorf(
				"SphericalIsotropicModel: cannot construct valid interpolators (node %d, h=%g)", i, gridH[i])
		}
	}
	// the mass and energy integrals saturate as h-->inf; extrapolate them
	// as constants beyond the last node
	gridFGder[npoints-1] = 0
	gridFHder[npoints-1] = 0
	gridFEder[npoints-1] = 0

	intf, err := mathutil.NewLogLogSpline(gridH, gridFint, gridFder)
	if err != nil {
		return nil, fmt.Errorf("SphericalIsotropicModel: intf: %w", err)
	}
	intfg, err := mathutil.NewLogLogSpline(gridH, gridFGint, gridFGder)
	if err != nil {
		return nil, fmt.Errorf("SphericalIsotropicModel: intfg: %w", err)
	}
	intfh, err := mathutil.NewLogLogSpline(gridH, gridFHint, gridFHder)
	if err != nil {
		return nil, fmt.Errorf("SphericalIsotropicModel: intfh: %w", err)
	}
	intfE, err := mathutil.NewLogLogSpline(gridH, gridFEint, gridFEder)
	if err != nil {
		return nil, fmt.Errorf("SphericalIsotropicModel: intfE: %w", err)
	}

	return &SphericalIsotropicModel{
		PhaseVol:    pv,
		TotalMass:   totalMass,
		htransition: htransition,
		intf:        intf,
		intfg:       intfg,
		intfh:       intfh,
		intfE:       intfE,
	}, nil
}

// EvalDeriv recovers f(h) and df/dh from the interpolated integrals.
// Together with Value and NumDerivs this makes the model itself usable as
// a DF, for instance when rebuilding a model on a different grid.
func (m *SphericalIsotropicModel) EvalDeriv(h float64) (f, dfdh, _ float64) {
	if h < m.htransition {
		// f(h) = d[ int_0^h f dh' ] / dh
		_, der, der2 := m.intfg.EvalDeriv(h)
		return der, der2, math.NaN()
	}
	// near saturation of the mass integral, use the complementary spline:
	// f(h) = -g(h) d[ int_h^inf f/g dh' ] / dh
	_, der, der2 := m.intf.EvalDeriv(h)
	_, g, dgdh := m.PhaseVol.EofHDeriv(h)
	return -der * g, -der2*g - der*dgdh, math.NaN()
}

func (m *SphericalIsotropicModel) Value(h float64) float64 {
	f, _, _ := m.EvalDeriv(h)
	return f
}

func (m *SphericalIsotropicModel) NumDerivs() int { return 1 }

// I0 returns int_h^inf f(h') dh'/g(h').
func (m *SphericalIsotropicModel) I0(h float64) float64 {
	v, _, _ := m.intf.EvalDeriv(h)
	return v
}

// CumulMass returns the mass of particles with phase volume below h;
// CumulMass(+inf) equals TotalMass exactly.
func (m *SphericalIsotropicModel) CumulMass(h float64) float64 {
	if math.IsInf(h, 1) {
		return m.TotalMass
	}
	v, _, _ := m.intfg.EvalDeriv(h)
	return v
}

// CumulEkin returns the kinetic energy of particles with phase volume below h.
func (m *SphericalIsotropicModel) CumulEkin(h float64) float64 {
	v, _, _ := m.intfh.EvalDeriv(h)
	return 1.5 * v
}

// CumulEtotal returns the total energy (negative) of particles with phase
// volume below h.
func (m *SphericalIsotropicModel) CumulEtotal(h float64) float64 {
	v, _, _ := m.intfE.EvalDeriv(h)
	return -v
}

package sphmodel

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

const epsRoot = 1e-6

// dfIntegrand is f(E') weighted by (E'-Phi)^(p/2), expressed as a function
// of log h with the substitution dE = d(log h) h/g. The reference level
// logh0 corresponds to Phi.
type dfIntegrand struct {
	df    DF
	pv    *potential.PhaseVolume
	logh0 float64
	p     int
}

func (d dfIntegrand) Value(logh float64) float64 {
	h := math.Exp(logh)
	dE, g := d.pv.DeltaE(logh, d.logh0)
	w := math.Sqrt(math.Max(dE, 0))
	val := d.df.Value(h) * h / g
	switch d.p {
	case 0:
		return val
	case 1:
		return val * w
	case 3:
		return val * w * w * w
	}
	panic(fmt.Sprintf("dfIntegrand: unsupported exponent %d", d.p))
}

// LocalModel extends SphericalIsotropicModel with 2-d interpolators for
// position-dependent quantities: local velocity diffusion coefficients,
// velocity sampling, density and velocity dispersion as functions of Phi.
// The interpolated surfaces are log(J1/J0) and log(J3/J0) on a grid in
// X = log h(Phi), Y = log[h(E)/h(Phi)], where
//
//	J_n = int_Phi^E f(E') [(E'-Phi)/(E-Phi)]^(n/2) dE'.
type LocalModel struct {
	*SphericalIsotropicModel
	intJ1, intJ3 *mathutil.CubicSpline2d
}

// NewLocalModel builds the combined model. Warnings about asymptotic
// fallbacks at the outer grid boundary go to sink; a nil sink writes them
// to standard error.
func NewLocalModel(pv *potential.PhaseVolume, df DF, gridh []float64, sink WarningSink) (*LocalModel, error) {
	if sink == nil {
		sink = StderrSink{}
	}
	base, err := NewSphericalIsotropicModel(pv, df, gridh)
	if err != nil {
		return nil, err
	}

	var gridLogH []float64
	if len(gridh) == 0 {
		gridLogH = mathutil.CreateInterpolationGrid(
			mathutil.LogLogScaled{F: df}, mathutil.AccuracyInterp)
	} else {
		gridLogH = make([]float64, len(gridh))
		for i, h := range gridh {
			gridLogH[i] = math.Log(h)
		}
	}
	// drop trailing nodes where f vanishes so that log(f) stays usable
	for len(gridLogH) > 0 && df.Value(math.Exp(gridLogH[len(gridLogH)-1])) <= minValueRoundoff {
		gridLogH = gridLogH[:len(gridLogH)-1]
	}
	if len(gridLogH) < 3 {
		return nil, fmt.Errorf("LocalModel: f(h) is nowhere positive")
	}
	logHmin, logHmax := gridLogH[0], gridLogH[len(gridLogH)-1]
	npoints := len(gridLogH)
	const npointsY = 100
	mindeltaY := math.Min(0.1, (logHmax-logHmin)/npointsY)
	gridY := mathutil.CreateNonuniformGrid(npointsY, mindeltaY, logHmax-logHmin, true)

	// outer power-law asymptotics of f(h) and E(h)
	outerH := math.Exp(logHmax)
	outerE, outerG, _ := pv.EofHDeriv(outerH)
	var outerFslope float64
	if df.NumDerivs() >= 1 {
		val, der, _ := df.EvalDeriv(outerH)
		outerFslope = der / val * outerH
	} else {
		outerFslope = math.Log(df.Value(outerH)/df.Value(math.Exp(gridLogH[npoints-2]))) /
			(gridLogH[npoints-1] - gridLogH[npoints-2])
	}
	if !(outerFslope < -1) {
		return nil, fmt.Errorf("LocalModel: f(h) falls off too slowly as h-->infinity")
	}
	outerEslope := outerH / outerG / outerE
	outerRatio := outerFslope / outerEslope
	if !(outerRatio > 0) {
		return nil, fmt.Errorf("LocalModel: weird asymptotic behaviour of phase volume: "+
			"h(E=%g)=%g, dh/dE=%g => outerEslope=%g, outerFslope=%g",
			outerE, outerH, outerG, outerEslope, outerFslope)
	}

	// limiting values of J1/J0 and J3/J0 as Phi-->0 at fixed E/Phi
	outerJ1 := 0.5 * math.Sqrt(math.Pi) * math.Gamma(2+outerRatio) / math.Gamma(2.5+outerRatio)
	outerJ3 := outerJ1 * 1.5 / (2.5 + outerRatio)

	gridJ1 := mat.NewDense(npoints, npointsY, nil)
	gridJ3 := mat.NewDense(npoints, npointsY, nil)
	for i := 0; i < npoints; i++ {
		// accumulate the J_n integrals segment by segment in Y, deferring
		// the division by (E-Phi)^(n/2) until the values are stored
		var j0acc, j1acc, j3acc float64
		intJ0 := dfIntegrand{df, pv, gridLogH[i], 0}
		intJ1 := dfIntegrand{df, pv, gridLogH[i], 1}
		intJ3 := dfIntegrand{df, pv, gridLogH[i], 3}
		gridJ1.Set(i, 0, math.Log(2./3)) // analytic limits at E=Phi
		gridJ3.Set(i, 0, math.Log(2./5))
		for j := 1; j < npointsY; j++ {
			logHprev := gridLogH[i] + gridY[j-1]
			logHcurr := gridLogH[i] + gridY[j]
			if j == 1 {
				// the first segment may have an endpoint singularity at
				// Phi=E, handled by the cubic scaling transformation
				scaling := mathutil.ScalingCub{X1: logHprev, X2: logHcurr}
				j0acc = mathutil.IntegrateGL(
					mathutil.ScaledIntegrand{Scaling: scaling, Fn: intJ0}, 0, 1, mathutil.GLOrder)
				j1acc = mathutil.IntegrateGL(
					mathutil.ScaledIntegrand{Scaling: scaling, Fn: intJ1}, 0, 1, mathutil.GLOrder)
				j3acc = mathutil.IntegrateGL(
					mathutil.ScaledIntegrand{Scaling: scaling, Fn: intJ3}, 0, 1, mathutil.GLOrder)
			} else {
				j0acc += mathutil.IntegrateGL(intJ0, logHprev, logHcurr, mathutil.GLOrder)
				j1acc += mathutil.IntegrateGL(intJ1, logHprev, logHcurr, mathutil.GLOrder)
				j3acc += mathutil.IntegrateGL(intJ3, logHprev, logHcurr, mathutil.GLOrder)
			}
			if i == npoints-1 {
				// last row: analytic limiting values for Phi-->0
				EoverPhi := math.Exp(gridY[j] * outerEslope)
				oneMinusJ0overI0 := math.Pow(EoverPhi, 1+outerRatio)
				fval1 := mathutil.Hypergeom2F1(-0.5, 1+outerRatio, 2+outerRatio, EoverPhi)
				fval3 := mathutil.Hypergeom2F1(-1.5, 1+outerRatio, 2+outerRatio, EoverPhi)
				i0 := base.I0(math.Exp(gridLogH[i]))
				sqPhi := math.Sqrt(-outerE)
				if !math.IsNaN(fval1+fval3) && !math.IsInf(fval1+fval3, 0) {
					j0acc = i0 * (1 - oneMinusJ0overI0)
					j1acc = i0 * (outerJ1 - oneMinusJ0overI0*fval1) * sqPhi
					j3acc = i0 * (outerJ3 - oneMinusJ0overI0*fval3) * pow3(sqPhi)
				} else {
					// the hypergeometric evaluation is not fully robust;
					// keep the numerically integrated values instead
					sink.Warn("LocalModel: can't compute asymptotic value at Y=%g", gridY[j])
				}
			}
			dEv, _ := pv.DeltaE(logHcurr, gridLogH[i])
			dv := math.Sqrt(dEv)
			j1overJ0 := j1acc / j0acc / dv
			j3overJ0 := j3acc / j0acc / pow3(dv)
			if j1overJ0 <= 0 || j3overJ0 <= 0 ||
				math.IsNaN(j1overJ0+j3overJ0) || math.IsInf(j1overJ0+j3overJ0, 0) {
				sink.Warn("LocalModel: invalid value J0=%g, J1=%g, J3=%g", j0acc, j1acc, j3acc)
				j1overJ0 = 2. / 3 // fail-safe values corresponding to E=Phi
				j3overJ0 = 2. / 5
			}
			gridJ1.Set(i, j, math.Log(j1overJ0))
			gridJ3.Set(i, j, math.Log(j3overJ0))
		}
	}

	splJ1, err := mathutil.NewCubicSpline2d(gridLogH, gridY, gridJ1)
	if err != nil {
		return nil, fmt.Errorf("LocalModel: intJ1: %w", err)
	}
	splJ3, err := mathutil.NewCubicSpline2d(gridLogH, gridY, gridJ3)
	if err != nil {
		return nil, fmt.Errorf("LocalModel: intJ3: %w", err)
	}
	return &LocalModel{
		SphericalIsotropicModel: base,
		intJ1:                   splJ1,
		intJ3:                   splJ3,
	}, nil
}

// EvalLocal computes the local velocity diffusion coefficients
// <Delta v_par>, <Delta v_par^2>, <Delta v_per^2> for a particle with
// energy E at a point where the potential is Phi. Requires Phi<0 and E>=Phi.
func (m *LocalModel) EvalLocal(Phi, E float64) (dvpar, dv2par, dv2per float64, err error) {
	hPhi := m.PhaseVol.HofE(Phi)
	hE := m.PhaseVol.HofE(E)
	if !(Phi < 0 && hE >= hPhi) {
		return 0, 0, 0, fmt.Errorf("LocalModel: incompatible values of E=%g and Phi=%g", E, Phi)
	}
	i0 := m.I0(hE)
	j0 := math.Max(m.I0(hPhi)-i0, 0)
	x := mathutil.Clamp(math.Log(hPhi), m.intJ1.XMin(), m.intJ1.XMax())
	y := mathutil.Clamp(math.Log(hE/hPhi), m.intJ1.YMin(), m.intJ1.YMax())
	j1 := math.Exp(m.intJ1.Value(x, y)) * j0
	j3 := math.Exp(m.intJ3.Value(x, y)) * j0
	if E >= 0 {
		// coefficients were computed for E=0; rescale to unbound energies
		corr := 1 / math.Sqrt(1-E/Phi)
		j1 *= corr
		j3 *= pow3(corr)
	}
	mult := 32 * math.Pi * math.Pi / 3 * m.TotalMass
	dvpar = -mult * j1 * 3
	dv2par = mult * (i0 + j3)
	dv2per = mult * (i0*2 + j1*3 - j3)
	return dvpar, dv2par, dv2per, nil
}

// SampleVelocity draws the magnitude of velocity at a point with potential
// Phi from the isotropic DF, by inverting the cumulative distribution in
// energy. Returns 0 when the root bracketing fails, which may happen at
// very large radii.
func (m *LocalModel) SampleVelocity(Phi float64, rng *rand.Rand) (float64, error) {
	if !(Phi < 0) {
		return 0, fmt.Errorf("LocalModel: invalid value of Phi=%g", Phi)
	}
	hPhi := m.PhaseVol.HofE(Phi)
	loghPhi := mathutil.Clamp(math.Log(hPhi), m.intJ1.XMin(), m.intJ1.XMax())
	i0plusJ0 := m.I0(hPhi)
	maxJ1 := math.Exp(m.intJ1.Value(loghPhi, m.intJ1.YMax())) * i0plusJ0
	target := rng.Float64() * maxJ1 * math.Sqrt(-Phi)
	fn := mathutil.PlainFunc(func(loghEoverhPhi float64) float64 {
		hE := math.Exp(loghEoverhPhi + loghPhi)
		E := m.PhaseVol.EofH(hE)
		j0 := i0plusJ0 - m.I0(hE)
		j1 := math.Exp(m.intJ1.Value(loghPhi, loghEoverhPhi)) * j0
		return j1*math.Sqrt(math.Max(E-Phi, 0)) - target
	})
	loghEoverhPhi := mathutil.FindRoot(fn, m.intJ1.YMin(), m.intJ1.YMax(), epsRoot)
	if !(loghEoverhPhi >= 0) {
		return 0, nil
	}
	hE := math.Exp(loghEoverhPhi + loghPhi)
	E := m.PhaseVol.EofH(hE)
	return math.Sqrt(2 * (E - Phi)), nil
}

// Density returns the density of the model at a point where the potential
// equals Phi.
func (m *LocalModel) Density(Phi float64) (float64, error) {
	if !(Phi < 0) {
		return 0, fmt.Errorf("LocalModel: invalid value of Phi=%g", Phi)
	}
	hPhi := m.PhaseVol.HofE(Phi)
	loghPhi := mathutil.Clamp(math.Log(hPhi), m.intJ1.XMin(), m.intJ1.XMax())
	j1overJ0 := math.Exp(m.intJ1.Value(loghPhi, m.intJ1.YMax()))
	i0plusJ0 := m.I0(hPhi) // I0 at E=0 vanishes, so this is the full J0
	return 4 * math.Pi * math.Sqrt2 * math.Sqrt(-Phi) * j1overJ0 * i0plusJ0, nil
}

// VelDisp returns the 1-d velocity dispersion at a point where the
// potential equals Phi.
func (m *LocalModel) VelDisp(Phi float64) (float64, error) {
	if !(Phi < 0) {
		return 0, fmt.Errorf("LocalModel: invalid value of Phi=%g", Phi)
	}
	hPhi := m.PhaseVol.HofE(Phi)
	loghPhi := mathutil.Clamp(math.Log(hPhi), m.intJ1.XMin(), m.intJ1.XMax())
	j3overJ1 := math.Exp(m.intJ3.Value(loghPhi, m.intJ3.YMax()) - m.intJ1.Value(loghPhi, m.intJ1.YMax()))
	return math.Sqrt(-2. / 3 * Phi * j3overJ1), nil
}

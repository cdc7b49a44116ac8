package potential

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gosphere/mathutil"
)

// PhaseVolume is the invertible monotonic map between orbital energy E and
// the phase-space volume h(E) enclosed by the energy surface:
//
//	h(E) = 16 pi^2 / 3  int_0^{rmax(E)} v^3 r^2 dr,   v = sqrt(2 (E-Phi(r)))
//
// with g(h) = dh/dE the density of states. Both directions of the map and
// g are stored as splines in scaled variables; the object is immutable after
// construction and safe for concurrent queries.
type PhaseVolume struct {
	phi0    float64 // Phi(r=0), may be -Inf for cuspy potentials
	invPhi0 float64 // 1/Phi(0), zero when the center diverges
	uOfX    *mathutil.HermiteSpline
	xOfU    *mathutil.HermiteSpline
	gOfU    *mathutil.HermiteSpline
	logHMin float64
	logHMax float64
}

// number of radial grid nodes and composite quadrature segments used when
// tabulating h(E); chosen so that the spline error is well below the
// interpolation tolerance of the downstream model splines
const (
	pvGridSize    = 121
	pvGridDecades = 12.5
	pvSegments    = 16
)

// NewPhaseVolume tabulates h(E), g(E) and dg/dE on a radial grid spanning
// many decades around the potential's scale radius and builds the forward
// and inverse interpolators. It fails if the potential is not strictly
// monotonic or does not approach zero from below.
func NewPhaseVolume(pot Potential) (*PhaseVolume, error) {
	phi0, _, _ := pot.EvalDeriv(0)
	if !(phi0 < 0) {
		return nil, fmt.Errorf("NewPhaseVolume: Phi(0)=%g must be negative", phi0)
	}
	invPhi0 := 1 / phi0
	if math.IsInf(phi0, -1) {
		invPhi0 = 0
	}

	// scale radius: where the potential has fallen to half depth (or r=1
	// for unbounded centers)
	rscale := 1.0
	if !math.IsInf(phi0, -1) {
		if rs := Rmax(pot, 0.5*phi0); rs > 0 && !math.IsNaN(rs) {
			rscale = rs
		}
	}
	logr := floats.Span(make([]float64, pvGridSize),
		math.Log(rscale)-pvGridDecades*math.Ln10*0.5,
		math.Log(rscale)+pvGridDecades*math.Ln10*0.5)

	var (
		n     = len(logr)
		gridX = make([]float64, n) // log(1/Phi0 - 1/E)
		gridU = make([]float64, n) // log h
		gridG = make([]float64, n) // log g
		dUdX  = make([]float64, n)
		dGdU  = make([]float64, n)
	)
	prevE := math.Inf(-1)
	for i, lr := range logr {
		rmax := math.Exp(lr)
		E := Value(pot, rmax)
		if !(E < 0) || !(E > prevE) {
			return nil, fmt.Errorf("NewPhaseVolume: potential not monotonic, Phi(%g)=%g after %g",
				rmax, E, prevE)
		}
		prevE = E
		h, g, dgdE := phaseVolumeIntegrals(pot, E, rmax)
		if !(h > 0) || !(g > 0) || !(dgdE > 0) {
			return nil, fmt.Errorf("NewPhaseVolume: invalid integrals at r=%g: h=%g g=%g dg/dE=%g",
				rmax, h, g, dgdE)
		}
		w := invPhi0 - 1/E
		gridX[i] = math.Log(w)
		gridU[i] = math.Log(h)
		gridG[i] = math.Log(g)
		// du/dx = (g/h) dE/dx, with dE/dx = w E^2
		dUdX[i] = g / h * w * E * E
		// d log g / d log h = (h/g) (dg/dE)/g
		dGdU[i] = h / (g * g) * dgdE
	}
	for i := 1; i < n; i++ {
		if !(gridU[i] > gridU[i-1]) {
			return nil, fmt.Errorf("NewPhaseVolume: h(E) not monotonic near r=%g", math.Exp(logr[i]))
		}
	}

	uOfX, err := mathutil.NewHermiteSpline(gridX, gridU, dUdX)
	if err != nil {
		return nil, err
	}
	dXdU := make([]float64, n)
	for i := range dXdU {
		dXdU[i] = 1 / dUdX[i]
	}
	xOfU, err := mathutil.NewHermiteSpline(gridU, gridX, dXdU)
	if err != nil {
		return nil, err
	}
	gOfU, err := mathutil.NewHermiteSpline(gridU, gridG, dGdU)
	if err != nil {
		return nil, err
	}
	return &PhaseVolume{
		phi0:    phi0,
		invPhi0: invPhi0,
		uOfX:    uOfX,
		xOfU:    xOfU,
		gOfU:    gOfU,
		logHMin: gridU[0],
		logHMax: gridU[n-1],
	}, nil
}

// phaseVolumeIntegrals evaluates the three radial integrals for energy E
// with rmax = Rmax(E), using a composite Gauss-Legendre rule under a cubic
// endpoint scaling that absorbs the 1/v singularity of the dg/dE integrand
// at r=rmax.
func phaseVolumeIntegrals(pot Potential, E, rmax float64) (h, g, dgdE float64) {
	var (
		scaling = mathutil.ScalingCub{X1: 0, X2: 1}
		nodes   = mathutil.GLPoints(mathutil.GLOrder)
		weights = mathutil.GLWeights(mathutil.GLOrder)
		dt      = 1.0 / pvSegments
	)
	for seg := 0; seg < pvSegments; seg++ {
		t0 := float64(seg) * dt
		for k := range nodes {
			t := t0 + dt*nodes[k]
			x, dxdt := scaling.Unscale(t)
			r := x * rmax
			v2 := 2 * (E - Value(pot, r))
			if v2 <= 0 {
				continue
			}
			v := math.Sqrt(v2)
			wk := weights[k] * dt * dxdt * rmax * r * r
			h += wk * v * v2
			g += wk * v
			dgdE += wk / v
		}
	}
	// d(v^3)/dE = 3v and dv/dE = 1/v, so g and dg/dE carry the factor 16 pi^2
	h *= 16 * math.Pi * math.Pi / 3
	g *= 16 * math.Pi * math.Pi
	dgdE *= 16 * math.Pi * math.Pi
	return
}

// Phi0 returns the central potential Phi(r=0), possibly -Inf.
func (pv *PhaseVolume) Phi0() float64 { return pv.phi0 }

// HofE maps energy to phase volume.
func (pv *PhaseVolume) HofE(E float64) float64 {
	if E >= 0 {
		return math.Inf(1)
	}
	w := pv.invPhi0 - 1/E
	if !(w > 0) {
		return 0 // E at or below the potential minimum
	}
	return math.Exp(pv.uOfX.Value(math.Log(w)))
}

// EofH maps phase volume to energy.
func (pv *PhaseVolume) EofH(h float64) float64 {
	E, _, _ := pv.EofHDeriv(h)
	return E
}

// EofHDeriv maps phase volume to energy and returns the density of states
// g = dh/dE and its derivative dg/dh.
func (pv *PhaseVolume) EofHDeriv(h float64) (E, g, dgdh float64) {
	if h <= 0 {
		return pv.phi0, 0, 0
	}
	if math.IsInf(h, 1) {
		return 0, math.Inf(1), 0
	}
	u := math.Log(h)
	w := math.Exp(pv.xOfU.Value(u))
	E = 1 / (pv.invPhi0 - w)
	g = math.Exp(pv.gOfU.Value(u))
	dgdh = g / h * pv.gOfU.Deriv(u)
	return
}

// DeltaE computes E(h1) - E(h2) for logh1 >= logh2, switching to a local
// expansion when the two arguments are so close that direct subtraction
// would lose all precision; also returns g at h1.
func (pv *PhaseVolume) DeltaE(logh1, logh2 float64) (dE, g1 float64) {
	g1 = math.Exp(pv.gOfU.Value(logh1))
	d := logh1 - logh2
	if math.Abs(d) < 1e-4 {
		// dE = dh/g evaluated at the midpoint: h1-h2 = h2 (e^d - 1)
		gm := math.Exp(pv.gOfU.Value(0.5 * (logh1 + logh2)))
		dE = math.Exp(logh2) * math.Expm1(d) / gm
		return
	}
	e1 := pv.eOfLogH(logh1)
	e2 := pv.eOfLogH(logh2)
	dE = e1 - e2
	return
}

func (pv *PhaseVolume) eOfLogH(u float64) float64 {
	w := math.Exp(pv.xOfU.Value(u))
	return 1 / (pv.invPhi0 - w)
}

// LogHMin and LogHMax report the tabulated extent of log h.
func (pv *PhaseVolume) LogHMin() float64 { return pv.logHMin }
func (pv *PhaseVolume) LogHMax() float64 { return pv.logHMax }

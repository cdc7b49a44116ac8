package potential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseVolumeKeplerAnalytic(t *testing.T) {
	// for a point mass the phase volume is known in closed form:
	// h(E) = (2 pi)^3 / 3 * M^3 * (-2E)^(-3/2)
	pot := PointMass{Mass: 1}
	pv, err := NewPhaseVolume(pot)
	require.NoError(t, err)
	assert.True(t, math.IsInf(pv.Phi0(), -1))
	for _, E := range []float64{-2, -0.5, -0.05} {
		want := math.Pow(2*math.Pi, 3) / 3 * math.Pow(-2*E, -1.5)
		got := pv.HofE(E)
		assert.True(t, nearTol(got, want, 1e-5), "E=%v got %v want %v", E, got, want)
		// g = dh/dE = 3 h / (-2E) * 2 ... i.e. h * 3/(-2E) * ... check directly:
		// dh/dE = (2 pi)^3 M^3 (-2E)^(-5/2)
		_, g, _ := pv.EofHDeriv(got)
		wantG := math.Pow(2*math.Pi, 3) * math.Pow(-2*E, -2.5)
		assert.True(t, nearTol(g, wantG, 1e-4), "g at E=%v: got %v want %v", E, g, wantG)
	}
}

func TestPhaseVolumeRoundTrip(t *testing.T) {
	for _, pot := range []Potential{
		Plummer{Mass: 1, ScaleRadius: 1},
		Isochrone{Mass: 2, ScaleRadius: 0.5},
		Hernquist{Mass: 1, ScaleRadius: 1},
	} {
		pv, err := NewPhaseVolume(pot)
		require.NoError(t, err, "%T", pot)
		phi0 := pv.Phi0()
		prevH := 0.0
		for _, frac := range []float64{0.9, 0.5, 0.1, 0.01, 1e-4} {
			E := phi0 * frac
			h := pv.HofE(E)
			assert.True(t, h > prevH, "%T: h not increasing at E=%v", pot, E)
			prevH = h
			back := pv.EofH(h)
			assert.True(t, nearTol(back, E, 1e-6), "%T round trip at E=%v: %v", pot, E, back)
		}
	}
}

func TestPhaseVolumeDensityOfStates(t *testing.T) {
	pot := Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := NewPhaseVolume(pot)
	require.NoError(t, err)
	for _, frac := range []float64{0.7, 0.3, 0.05} {
		E := pv.Phi0() * frac
		h := pv.HofE(E)
		_, g, dgdh := pv.EofHDeriv(h)
		// g against a finite difference of h(E)
		dE := math.Abs(E) * 1e-6
		fd := (pv.HofE(E+dE) - pv.HofE(E-dE)) / (2 * dE)
		assert.True(t, nearTol(g, fd, 1e-4), "g at E=%v: %v vs %v", E, g, fd)
		// dg/dh against a finite difference of g(h)
		dh := h * 1e-5
		_, gp, _ := pv.EofHDeriv(h + dh)
		_, gm, _ := pv.EofHDeriv(h - dh)
		assert.True(t, nearTol(dgdh, (gp-gm)/(2*dh), 1e-3), "dg/dh at E=%v", E)
	}
}

func TestPhaseVolumeDeltaE(t *testing.T) {
	pot := Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := NewPhaseVolume(pot)
	require.NoError(t, err)
	h1 := pv.HofE(-0.3)
	// moderate separation: agrees with direct subtraction
	h2 := pv.HofE(-0.6)
	dE, g1 := pv.DeltaE(math.Log(h1), math.Log(h2))
	assert.True(t, nearTol(dE, 0.3, 1e-5))
	_, gWant, _ := pv.EofHDeriv(h1)
	assert.True(t, near(g1, gWant))
	// tiny separation: the direct difference loses precision, the local
	// expansion must stay consistent with dE = dh/g
	logh1 := math.Log(h1)
	logh2 := logh1 - 1e-6
	dE, _ = pv.DeltaE(logh1, logh2)
	want := h1 * 1e-6 / gWant
	assert.True(t, nearTol(dE, want, 1e-4))
}

func TestPhaseVolumeEdges(t *testing.T) {
	pv, err := NewPhaseVolume(Plummer{Mass: 1, ScaleRadius: 1})
	require.NoError(t, err)
	assert.True(t, math.IsInf(pv.HofE(0), 1))
	assert.Equal(t, 0.0, pv.HofE(pv.Phi0()))
	E, g, _ := pv.EofHDeriv(0)
	assert.Equal(t, pv.Phi0(), E)
	assert.Equal(t, 0.0, g)
	E, _, _ = pv.EofHDeriv(math.Inf(1))
	assert.Equal(t, 0.0, E)
}

type risingPotential struct{}

func (risingPotential) EvalDeriv(r float64) (float64, float64, float64) {
	return 1 + r, 1, 0 // positive everywhere: not a valid bound potential
}

func TestPhaseVolumeRejectsBadPotential(t *testing.T) {
	_, err := NewPhaseVolume(risingPotential{})
	assert.Error(t, err)
}

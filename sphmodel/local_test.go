package sphmodel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/gosphere/potential"
)

func plummerLocalModel(t *testing.T) (potential.Plummer, *LocalModel, *CountingSink) {
	t.Helper()
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := potential.NewPhaseVolume(pot)
	require.NoError(t, err)
	sink := &CountingSink{}
	model, err := NewLocalModel(pv, NewPlummerDF(pv, 1, 1), nil, sink)
	require.NoError(t, err)
	return pot, model, sink
}

func TestLocalDensityMatchesPlummer(t *testing.T) {
	pot, model, _ := plummerLocalModel(t)
	for _, r := range []float64{0.1, 1, 10} {
		Phi := potential.Value(pot, r)
		rho, err := model.Density(Phi)
		require.NoError(t, err)
		exact := pot.Density(r)
		assert.True(t, nearTol(rho, exact, 1e-5),
			"rho(r=%g): got %g, want %g", r, rho, exact)
	}
}

func TestLocalVelDispMatchesPlummer(t *testing.T) {
	// the isotropic Plummer model has sigma^2 = -Phi/6
	pot, model, _ := plummerLocalModel(t)
	for _, r := range []float64{0.1, 1, 10} {
		Phi := potential.Value(pot, r)
		sigma, err := model.VelDisp(Phi)
		require.NoError(t, err)
		exact := math.Sqrt(-Phi / 6)
		assert.True(t, nearTol(sigma, exact, 1e-3),
			"sigma(r=%g): got %g, want %g", r, sigma, exact)
	}
}

func TestEvalLocalSigns(t *testing.T) {
	pot, model, _ := plummerLocalModel(t)
	for _, r := range []float64{0.1, 1, 10} {
		Phi := potential.Value(pot, r)
		for _, frac := range []float64{0.9, 0.5, 0.2, 0} {
			E := Phi * frac
			dvpar, dv2par, dv2per, err := model.EvalLocal(Phi, E)
			require.NoError(t, err)
			assert.True(t, dvpar < 0, "drag must decelerate: <dvpar>(Phi=%g,E=%g)=%g", Phi, E, dvpar)
			assert.True(t, dv2par > 0 && dv2per > 0)
			assert.False(t, math.IsNaN(dvpar+dv2par+dv2per))
		}
		// at E=Phi the orbit has zero velocity and the drag vanishes
		dvpar, _, _, err := model.EvalLocal(Phi, Phi)
		require.NoError(t, err)
		assert.True(t, dvpar <= 0)
	}
}

func TestEvalLocalUnboundEnergy(t *testing.T) {
	// E>0 coefficients are scaled from the E=0 values and must be smaller
	pot, model, _ := plummerLocalModel(t)
	Phi := potential.Value(pot, 1)
	_, dv2par0, _, err := model.EvalLocal(Phi, 0)
	require.NoError(t, err)
	_, dv2parU, _, err := model.EvalLocal(Phi, -Phi)
	require.NoError(t, err)
	assert.True(t, dv2parU <= dv2par0*(1+1e-12),
		"unbound: %g, marginal: %g", dv2parU, dv2par0)
}

func TestEvalLocalRejectsBadArguments(t *testing.T) {
	_, model, _ := plummerLocalModel(t)
	_, _, _, err := model.EvalLocal(0.5, 1)
	assert.Error(t, err, "positive Phi")
	_, _, _, err = model.EvalLocal(-0.5, -0.6)
	assert.Error(t, err, "E below Phi")
}

func TestSampleVelocityBounded(t *testing.T) {
	pot, model, _ := plummerLocalModel(t)
	rng := rand.New(rand.NewSource(42))
	for _, r := range []float64{0.1, 1, 10} {
		Phi := potential.Value(pot, r)
		vesc := math.Sqrt(-2 * Phi)
		for n := 0; n < 200; n++ {
			v, err := model.SampleVelocity(Phi, rng)
			require.NoError(t, err)
			assert.True(t, v >= 0 && v <= vesc*(1+1e-10),
				"sampled v=%g exceeds escape velocity %g at r=%g", v, vesc, r)
		}
	}
	_, err := model.SampleVelocity(0, rng)
	assert.Error(t, err)
}

func TestSampleVelocityDeterministic(t *testing.T) {
	pot, model, _ := plummerLocalModel(t)
	Phi := potential.Value(pot, 1)
	draw := func(seed int64) []float64 {
		rng := rand.New(rand.NewSource(seed))
		out := make([]float64, 20)
		for i := range out {
			v, err := model.SampleVelocity(Phi, rng)
			require.NoError(t, err)
			out[i] = v
		}
		return out
	}
	assert.Equal(t, draw(7), draw(7))
}

func TestSampleVelocityMoments(t *testing.T) {
	// the mean squared sampled velocity should approach 3 sigma^2
	pot, model, _ := plummerLocalModel(t)
	Phi := potential.Value(pot, 1)
	sigma, err := model.VelDisp(Phi)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(99))
	const n = 20000
	vsq := make([]float64, n)
	for i := range vsq {
		v, err := model.SampleVelocity(Phi, rng)
		require.NoError(t, err)
		vsq[i] = v * v
	}
	mean := stat.Mean(vsq, nil)
	assert.True(t, nearTol(mean, 3*sigma*sigma, 0.05),
		"<v^2>=%g, 3 sigma^2=%g", mean, 3*sigma*sigma)
}

func TestLocalModelRejectsZeroDF(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := potential.NewPhaseVolume(pot)
	require.NoError(t, err)
	_, err = NewLocalModel(pv, constDF(0), []float64{0.1, 1, 10}, &CountingSink{})
	assert.Error(t, err)
}

// truncatedDF is zero beyond hmax, leaving trailing grid nodes with f=0.
type truncatedDF struct {
	df   DF
	hmax float64
}

func (d truncatedDF) Value(h float64) float64 {
	if h > d.hmax {
		return 0
	}
	return d.df.Value(h)
}

func (d truncatedDF) NumDerivs() int { return 0 }

func (d truncatedDF) EvalDeriv(h float64) (val, der, der2 float64) {
	return d.Value(h), math.NaN(), math.NaN()
}

func TestTruncatedDFTrimsTrailingNodes(t *testing.T) {
	// a DF that vanishes beyond some hmax must still build, dropping the
	// zero-valued outer nodes, as long as enough positive nodes remain
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := potential.NewPhaseVolume(pot)
	require.NoError(t, err)
	df := truncatedDF{df: NewPlummerDF(pv, 1, 1), hmax: 1e4}
	grid := make([]float64, 41)
	for i := range grid {
		grid[i] = math.Exp(-10 + 0.5*float64(i))
	}

	model, err := NewSphericalIsotropicModel(pv, df, grid)
	require.NoError(t, err)
	assert.True(t, model.TotalMass > 0.9 && model.TotalMass < 1,
		"truncation removes only the outermost mass: got %g", model.TotalMass)

	sink := &CountingSink{}
	local, err := NewLocalModel(pv, df, grid, sink)
	require.NoError(t, err)
	Phi := potential.Value(pot, 1)
	rho, err := local.Density(Phi)
	require.NoError(t, err)
	assert.True(t, nearTol(rho, pot.Density(1), 0.05),
		"density of the truncated model at r=1: got %g, want about %g", rho, pot.Density(1))
}

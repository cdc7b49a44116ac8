package sphmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

func TestComputeDensityPlummer(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := potential.NewPhaseVolume(pot)
	require.NoError(t, err)
	df := NewPlummerDF(pv, 1, 1)

	// a dense grid of radii from deep inside to far outside the scale radius
	const n = 400
	gridR := make([]float64, n)
	gridPhi := make([]float64, n)
	for i := range gridR {
		gridR[i] = math.Pow(10, -2+4*float64(i)/(n-1))
		gridPhi[i] = potential.Value(pot, gridR[i])
	}
	dens, velDisp, err := ComputeDensity(df, pv, gridPhi)
	require.NoError(t, err)
	for i, r := range gridR {
		assert.True(t, nearTol(dens[i], pot.Density(r), 1e-6),
			"rho(r=%g): got %g, want %g", r, dens[i], pot.Density(r))
		exact := math.Sqrt(-gridPhi[i] / 6)
		assert.True(t, nearTol(velDisp[i], exact, 1e-4),
			"sigma(r=%g): got %g, want %g", r, velDisp[i], exact)
	}
}

func TestComputeDensityBadGrid(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	pv, err := potential.NewPhaseVolume(pot)
	require.NoError(t, err)
	df := NewPlummerDF(pv, 1, 1)
	_, _, err = ComputeDensity(df, pv, []float64{-0.5, -0.7, -0.2})
	assert.Error(t, err)
}

func TestComputeProjectedDensityPlummer(t *testing.T) {
	// feed the analytic profiles and check against the analytic surface
	// density Sigma(R) = M a^2 / pi / (R^2+a^2)^2
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	dens := mathutil.PlainFunc(pot.Density)
	velDisp := mathutil.PlainFunc(func(r float64) float64 {
		return math.Sqrt(-potential.Value(pot, r) / 6)
	})
	const n = 80
	gridR := make([]float64, n)
	for i := range gridR {
		gridR[i] = math.Pow(10, -2+4*float64(i)/(n-1))
	}
	projDens, projVelDisp, err := ComputeProjectedDensity(dens, velDisp, gridR)
	require.NoError(t, err)
	for i, R := range gridR {
		exact := 1 / math.Pi / pow2(R*R+1)
		assert.True(t, nearTol(projDens[i], exact, 1e-3),
			"Sigma(R=%g): got %g, want %g", R, projDens[i], exact)
		assert.True(t, projVelDisp[i] > 0 && !math.IsNaN(projVelDisp[i]))
		if i > 0 {
			assert.True(t, projVelDisp[i] <= projVelDisp[i-1]*(1+1e-3),
				"projected dispersion must decrease outwards")
		}
	}
}

func TestComputeProjectedDensityBadGrid(t *testing.T) {
	dens := mathutil.PlainFunc(func(r float64) float64 { return 1 / (1 + r*r) })
	_, _, err := ComputeProjectedDensity(dens, dens, []float64{1, 0.5, 2})
	assert.Error(t, err)
}

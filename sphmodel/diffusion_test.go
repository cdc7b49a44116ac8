package sphmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/potential"
)

func TestDifCoefEnergyFinite(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	_, _, model := plummerModel(t)
	for _, r := range []float64{0.1, 0.5, 1, 3, 10} {
		E := potential.Value(pot, r)
		dE, dE2 := DifCoefEnergy(model, E)
		assert.False(t, math.IsNaN(dE) || math.IsInf(dE, 0), "DeltaE(E=%g)=%g", E, dE)
		assert.True(t, dE2 > 0, "DeltaE2(E=%g)=%g must be positive", E, dE2)
	}
}

func TestDifCoefEnergyDriftSign(t *testing.T) {
	// tightly bound particles are heated by the field stars, loosely
	// bound ones lose energy to dynamical friction
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	_, _, model := plummerModel(t)
	dEin, _ := DifCoefEnergy(model, potential.Value(pot, 0.01))
	dEout, _ := DifCoefEnergy(model, potential.Value(pot, 100))
	assert.True(t, dEin > 0, "drift deep in the core: %g", dEin)
	assert.True(t, dEout < 0, "drift in the outskirts: %g", dEout)
}

func TestDifCoefLossconePositive(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	_, _, model := plummerModel(t)
	for _, r := range []float64{0.1, 1, 10} {
		E := potential.Value(pot, r)
		val := DifCoefLosscone(model, pot, E)
		require.False(t, math.IsNaN(val) || math.IsInf(val, 0))
		assert.True(t, val > 0, "D_RR/R(E=%g)=%g", E, val)
	}
}

package sphmodel

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

// Particle is a point mass with Cartesian position and velocity.
type Particle struct {
	Pos  [3]float64
	Vel  [3]float64
	Mass float64
}

func randomUnitVector(rng *rand.Rand) [3]float64 {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - z*z)
	return [3]float64{s * math.Cos(phi), s * math.Sin(phi), z}
}

// SamplePosVel creates an N-body realization of the isotropic model defined
// by the DF in the given potential. Radii are drawn by inverting the
// cumulative mass profile and velocities from the energy distribution at
// each radius; directions are isotropic. All particles carry equal mass
// summing to the DF total mass.
func SamplePosVel(pot potential.Potential, df DF, numPoints int, rng *rand.Rand) ([]Particle, error) {
	if numPoints <= 0 {
		return nil, fmt.Errorf("SamplePosVel: numPoints=%d", numPoints)
	}
	pv, err := potential.NewPhaseVolume(pot)
	if err != nil {
		return nil, err
	}
	model, err := NewLocalModel(pv, df, nil, nil)
	if err != nil {
		return nil, err
	}

	// tabulate the cumulative mass profile M(r) on the radial grid implied
	// by the interpolation grid in h
	gridLogH := mathutil.CreateInterpolationGrid(
		mathutil.LogLogScaled{F: df}, mathutil.AccuracyInterp)
	gridR := make([]float64, 0, len(gridLogH))
	prevPhi := pv.Phi0()
	for _, logh := range gridLogH {
		Phi := pv.EofH(math.Exp(logh))
		if !(Phi > prevPhi*(1-minValueRoundoff)) {
			continue // potential values too close, dominated by roundoff
		}
		gridR = append(gridR, potential.Rmax(pot, Phi))
		prevPhi = Phi
	}
	glnodes, glweights := mathutil.GLPoints(mathutil.GLOrder), mathutil.GLWeights(mathutil.GLOrder)
	gridM := make([]float64, len(gridR))
	mcumul := 0.0
	for i, r := range gridR {
		rprev := 0.0
		if i > 0 {
			rprev = gridR[i-1]
		}
		for k := 0; k < mathutil.GLOrder; k++ {
			rk := rprev + glnodes[k]*(r-rprev)
			rho, err := model.Density(potential.Value(pot, rk))
			if err != nil {
				return nil, err
			}
			mcumul += 4 * math.Pi * (r - rprev) * glweights[k] * pow2(rk) * rho
		}
		gridM[i] = mcumul
	}
	// invert M(r) by interpolating r as a function of enclosed mass
	rOfM, err := mathutil.NewLogLogSpline(gridM, gridR, nil)
	if err != nil {
		return nil, fmt.Errorf("SamplePosVel: cannot invert the mass profile: %w", err)
	}
	mtot := gridM[len(gridM)-1]

	pointMass := model.TotalMass / float64(numPoints)
	particles := make([]Particle, numPoints)
	for i := range particles {
		r := rOfM.Value(rng.Float64() * mtot)
		Phi := potential.Value(pot, r)
		v, err := model.SampleVelocity(Phi, rng)
		if err != nil {
			return nil, err
		}
		rdir := randomUnitVector(rng)
		vdir := randomUnitVector(rng)
		for d := 0; d < 3; d++ {
			particles[i].Pos[d] = r * rdir[d]
			particles[i].Vel[d] = v * vdir[d]
		}
		particles[i].Mass = pointMass
	}
	return particles, nil
}

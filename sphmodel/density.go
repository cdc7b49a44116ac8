package sphmodel

import (
	"fmt"
	"math"

	"github.com/notargets/gosphere/mathutil"
	"github.com/notargets/gosphere/potential"
)

// ComputeDensity integrates the DF over velocities to obtain the density
// at each node of a strictly increasing grid in Phi (all negative), and
// the 1-d velocity dispersion at the same nodes:
//
//	rho(Phi)    = 4 pi sqrt(2) int_Phi^0 f(h(Phi')) sqrt(Phi'-Phi) dPhi'
//	sigma^2     = 2/3 <Phi'-Phi> weighted by the same integrand.
//
// Each quadrature node contributes to all grid points below it, so the
// whole profile costs one pass over the grid.
func ComputeDensity(df DF, pv *potential.PhaseVolume, gridPhi []float64) (dens, velDisp []float64, err error) {
	gridsize := len(gridPhi)
	dens = make([]float64, gridsize)
	velDisp = make([]float64, gridsize)
	glnodes, glweights := mathutil.GLPoints(mathutil.GLOrder), mathutil.GLWeights(mathutil.GLOrder)
	for i := 0; i < gridsize; i++ {
		// the last segment runs from gridPhi[i] up to zero
		next := 0.0
		if i < gridsize-1 {
			next = gridPhi[i+1]
		}
		deltaPhi := next - gridPhi[i]
		if deltaPhi <= 0 {
			return nil, nil, fmt.Errorf("ComputeDensity: grid in Phi must be monotonically increasing")
		}
		for k := 0; k < mathutil.GLOrder; k++ {
			// substitution Phi = Phi[i] + y^2 dPhi softens the sqrt
			// singularity of the integrand at the lower endpoint
			y := glnodes[k]
			Phi := gridPhi[i] + y*y*deltaPhi
			weight := glweights[k] * 2 * y * deltaPhi * df.Value(pv.HofE(Phi)) * (4 * math.Pi * math.Sqrt2)
			for j := 0; j <= i; j++ {
				dif := Phi - gridPhi[j]
				if dif <= 0 {
					continue // roundoff at the segment boundary
				}
				val := math.Sqrt(dif) * weight
				dens[j] += val
				velDisp[j] += val * dif
			}
		}
	}
	for i := 0; i < gridsize; i++ {
		velDisp[i] = math.Sqrt(2. / 3 * velDisp[i] / dens[i])
	}
	return dens, velDisp, nil
}

// ComputeProjectedDensity integrates the density and velocity dispersion
// profiles along the line of sight, returning the surface density and the
// projected velocity dispersion at each node of a strictly increasing grid
// of projected radii. The last segment extends to infinity through the
// substitution r = R/(1-y^2).
func ComputeProjectedDensity(dens, velDisp mathutil.Func, gridR []float64) (projDens, projVelDisp []float64, err error) {
	gridsize := len(gridR)
	projDens = make([]float64, gridsize)
	projVelDisp = make([]float64, gridsize)
	glnodes, glweights := mathutil.GLPoints(mathutil.GLOrder), mathutil.GLWeights(mathutil.GLOrder)
	for i := 0; i < gridsize; i++ {
		last := i == gridsize-1
		deltar := gridR[i]
		if !last {
			deltar = gridR[i+1] - gridR[i]
		}
		if deltar <= 0 {
			return nil, nil, fmt.Errorf("ComputeProjectedDensity: grid in R must be monotonically increasing")
		}
		for k := 0; k < mathutil.GLOrder; k++ {
			y := glnodes[k]
			var r, jac float64
			if last {
				r = gridR[i] / (1 - y*y)
				jac = 2 * y / pow2(1-y*y)
			} else {
				r = gridR[i] + y*y*deltar
				jac = 2 * y
			}
			weight := glweights[k] * jac * deltar * dens.Value(r) * 2 * r
			velsq := pow2(velDisp.Value(r))
			for j := 0; j <= i; j++ {
				dif := pow2(r) - pow2(gridR[j])
				val := weight / math.Sqrt(dif)
				projDens[j] += val
				projVelDisp[j] += val * velsq
			}
		}
	}
	for i := 0; i < gridsize; i++ {
		projVelDisp[i] = math.Sqrt(projVelDisp[i] / projDens[i])
	}
	return projDens, projVelDisp, nil
}

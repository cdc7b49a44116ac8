package mathutil

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// AccuracyInterp is the default tolerance on the second derivative of a
// log-log-scaled function used when constructing interpolation grids,
// cbrt(machine epsilon).
var AccuracyInterp = math.Cbrt(2.220446049250313e-16)

// CreateNonuniformGrid constructs n nodes spanning [0, xmax] (zeroFirst) or
// [xmin, xmax], with the first nonzero interval equal to xmin and subsequent
// intervals growing geometrically. Used for grids that must resolve the
// region near zero with a fixed minimum resolution.
func CreateNonuniformGrid(n int, xmin, xmax float64, zeroFirst bool) []float64 {
	if n < 2 || !(xmin > 0) || !(xmax > xmin) {
		panic(fmt.Sprintf("CreateNonuniformGrid: invalid arguments n=%d xmin=%g xmax=%g", n, xmin, xmax))
	}
	grid := make([]float64, n)
	m := n - 1 // number of growing intervals
	target := xmax
	if !zeroFirst {
		grid[0] = xmin
		target = xmax - xmin
	}
	// sum of the geometric progression xmin*(c^m-1)/(c-1) must equal target;
	// c=1 degenerates to a uniform grid
	total := func(c float64) float64 {
		if math.Abs(c-1) < 1e-10 {
			return xmin * float64(m)
		}
		return xmin * (math.Pow(c, float64(m)) - 1) / (c - 1)
	}
	var c float64 = 1
	if total(1) < target {
		chi := 2.0
		for total(chi) < target && chi < 1e6 {
			chi *= 2
		}
		c = FindRoot(PlainFunc(func(c float64) float64 { return total(c) - target }), 1, chi, 1e-12)
		if math.IsNaN(c) {
			c = 1
		}
	}
	if zeroFirst {
		grid[0] = 0
		for k := 1; k < n; k++ {
			grid[k] = total2(xmin, c, k)
		}
	} else {
		for k := 1; k < n; k++ {
			grid[k] = xmin + total2(xmin, c, k)
		}
	}
	grid[n-1] = xmax // pin the endpoint against roundoff
	return grid
}

func total2(xmin, c float64, k int) float64 {
	if math.Abs(c-1) < 1e-10 {
		return xmin * float64(k)
	}
	return xmin * (math.Pow(c, float64(k)) - 1) / (c - 1)
}

// CreateInterpolationGrid builds an adaptive grid in the scaled variable of
// fn (for distribution functions, t = log h), with local spacing chosen so
// that the second derivative of the log-log-scaled function is resolved to
// the given accuracy. The grid expands outward from the reference point
// until the function becomes negligible relative to its peak or settles
// onto a power-law asymptote.
func CreateInterpolationGrid(fn FuncDeriv, accuracy float64) []float64 {
	const (
		tExtent   = 36.0 // furthest excursion of the scaled variable from the center
		dropLimit = 46.0 // stop when log f has fallen this far below the peak (~1e-20)
	)
	if !(accuracy > 0) {
		accuracy = AccuracyInterp
	}
	// locate a starting point where the function is finite and sizable
	t0 := 0.0
	u0, _, _ := fn.EvalDeriv(t0)
	if math.IsNaN(u0) || math.IsInf(u0, 0) {
		for _, t := range floats.Span(make([]float64, 25), -tExtent, tExtent) {
			if u, _, _ := fn.EvalDeriv(t); !math.IsNaN(u) && !math.IsInf(u, 0) {
				t0, u0 = t, u
				break
			}
		}
	}
	step := func(t float64) float64 {
		_, _, d2 := fn.EvalDeriv(t)
		if math.IsNaN(d2) {
			d2 = 1
		}
		h := math.Pow(384*accuracy, 0.25) / math.Sqrt(math.Max(math.Abs(d2), 1e-4))
		return Clamp(h, 0.1, 2)
	}
	grid := []float64{t0}
	umax := u0
	// expand in one direction; dir is +1 or -1
	expand := func(dir float64) {
		t := t0
		flat := 0
		for math.Abs(t-t0) < tExtent {
			t += dir * step(t)
			u, _, d2 := fn.EvalDeriv(t)
			if math.IsNaN(u) {
				break
			}
			grid = append(grid, t)
			if u > umax {
				umax = u
			}
			if math.Abs(d2) < 0.01 {
				flat++
			} else {
				flat = 0
			}
			if u < umax-dropLimit && flat >= 3 {
				break
			}
		}
	}
	expand(+1)
	expand(-1)
	sort.Float64s(grid)
	// guarantee at least three usable nodes
	for len(grid) < 3 {
		grid = append(grid, grid[len(grid)-1]+1)
	}
	return grid
}

package sphmodel

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/potential"
)

func TestWriteReport(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	_, _, model := plummerModel(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSphericalIsotropicModel(&buf, "Plummer model", model, pot, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Greater(t, len(lines), 4)
	assert.Equal(t, "#Plummer model", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#r"))
	assert.Contains(t, lines[1], "EnergyFlux")
	assert.NotContains(t, lines[1], "D_RR/R(0)")
	assert.True(t, strings.HasPrefix(lines[2], "#0"))

	var prevR, prevM float64
	for _, line := range lines[3:] {
		fields := strings.Fields(line)
		require.Len(t, fields, 16, "row: %q", line)
		r, err := strconv.ParseFloat(fields[0], 64)
		require.NoError(t, err)
		m, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)
		assert.True(t, r > prevR, "radius must increase")
		assert.True(t, m >= prevM, "enclosed mass must not decrease")
		prevR, prevM = r, m
	}
	// the outermost enclosed mass approaches the total mass
	assert.True(t, nearTol(prevM, model.TotalMass, 1e-2),
		"M(rmax)=%g, total=%g", prevM, model.TotalMass)
}

func TestWriteReportCentralMass(t *testing.T) {
	// a point-mass potential triggers the loss-cone diffusion column
	pot := potential.PointMass{Mass: 1}
	_, _, model := plummerModel(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSphericalIsotropicModel(&buf, "", model, pot, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Greater(t, len(lines), 3)
	assert.Contains(t, lines[0], "D_RR/R(0)")
	assert.Contains(t, lines[1], "Mbh")
	for _, line := range lines[2:] {
		require.Len(t, strings.Fields(line), 17, "row: %q", line)
	}
}

func TestWriteReportTooSmallGrid(t *testing.T) {
	pot := potential.Plummer{Mass: 1, ScaleRadius: 1}
	_, _, model := plummerModel(t)
	var buf bytes.Buffer
	err := WriteSphericalIsotropicModel(&buf, "", model, pot, []float64{1})
	assert.Error(t, err)
}

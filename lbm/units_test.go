package lbm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViscosityConversions(t *testing.T) {
	assert.InDelta(t, 1.0, OmegaFromViscosity(1.0/6), 1e-15)
	assert.InDelta(t, 1.0/6, ViscosityFromOmega(1), 1e-15)

	for _, nu := range []float64{0.001, 0.02, 0.1, 0.4} {
		assert.InDelta(t, nu, ViscosityFromOmega(OmegaFromViscosity(nu)), 1e-14)
	}

	// Lid-driven cavity: u = 0.1, L = 100, Re = 1000.
	assert.InDelta(t, 0.01, ViscosityFromReynolds(1000, 0.1, 100), 1e-15)
}

func TestValidOmega(t *testing.T) {
	assert.True(t, ValidOmega(1))
	assert.True(t, ValidOmega(1.99))
	assert.False(t, ValidOmega(0))
	assert.False(t, ValidOmega(2))
	assert.False(t, ValidOmega(-0.5))
}

func TestWarnings(t *testing.T) {
	assert.Empty(t, Warnings(D2Q9, 1, 1.2))
	assert.Empty(t, Warnings(D3Q19, 64, 1.9))

	assert.Len(t, Warnings(D2Q9, 4, 1.2), 1)
	// omega = 2.5 is unstable and implies a negative viscosity.
	assert.Len(t, Warnings(D3Q19, 8, 2.5), 2)
	// omega = 0.4 gives nu = 2/3.
	assert.Len(t, Warnings(D3Q27, 8, 0.4), 1)
}

func TestReynolds(t *testing.T) {
	st := newTestState(t, 2, 1, 1, D2Q9)
	st.SetNode(0, Fluid, 1, [3]float64{0.3, 0.4, 0})
	st.SetNode(1, Solid, 1, [3]float64{9, 9, 9})

	assert.InDelta(t, 0.5, AverageSpeed(st), 1e-15)
	assert.InDelta(t, 0.5, MaxSpeed(st), 1e-15)
	// omega = 1 gives nu = 1/6.
	assert.InDelta(t, 0.5*10*6, Reynolds(st, 1, 10), 1e-12)

	st.Flags[0] = Equilibrium
	assert.Equal(t, 0.0, AverageSpeed(st))
}

func TestCheckFinite(t *testing.T) {
	st := newTestState(t, 3, 2, 1, D2Q9)
	for i := range st.F {
		st.F[i] = 1.0 / 9
	}
	mass, err := CheckFinite(st)
	assert.NoError(t, err)
	assert.InDelta(t, 6.0, mass, 1e-12)

	st.F[9*2+4] = math.Inf(1)
	_, err = CheckFinite(st)
	assert.Error(t, err)

	// Solid nodes don't count towards the mass.
	st.Flags[2] = Solid
	_, err = CheckFinite(st)
	assert.NoError(t, err)

	st.F[9*5] = math.NaN()
	_, err = CheckFinite(st)
	assert.Error(t, err)
}

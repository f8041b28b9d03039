package lbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVelocitySetInvariants(t *testing.T) {
	qs := map[string]int{
		"D2Q9": 9, "D3Q7": 7, "D3Q15": 15, "D3Q19": 19, "D3Q27": 27,
	}

	for _, vs := range VelocitySets {
		assert.Equal(t, qs[vs.Name()], vs.Q(), vs.Name())
		assert.Equal(t, [3]int{}, vs.C(0), "%s rest direction", vs.Name())

		sum, drift := 0.0, [3]float64{}
		for q := 0; q < vs.Q(); q++ {
			assert.True(t, vs.W(q) >= 0)
			sum += vs.W(q)
			for k := 0; k < 3; k++ {
				drift[k] += vs.W(q) * float64(vs.C(q)[k])
			}

			opp := vs.Opposite(q)
			assert.Equal(t, q, vs.Opposite(opp), "%s involution at %d", vs.Name(), q)
			assert.Equal(t, neg(vs.C(q)), vs.C(opp), "%s reversal at %d", vs.Name(), q)
		}

		assert.InDelta(t, 1.0, sum, 1e-14, vs.Name())
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 0.0, drift[k], 1e-14, vs.Name())
		}
	}
}

func TestVelocitySetSecondMoment(t *testing.T) {
	// Every set except the advection-diffusion D3Q7 lattice has sum w c c
	// equal to I/3 over the axes it spans. The BGK equilibrium only conserves
	// mass exactly when this holds.
	for _, vs := range []*VelocitySet{D2Q9, D3Q15, D3Q19, D3Q27} {
		for a := 0; a < vs.Dim(); a++ {
			for b := 0; b < vs.Dim(); b++ {
				m := 0.0
				for q := 0; q < vs.Q(); q++ {
					m += vs.W(q) * float64(vs.C(q)[a]*vs.C(q)[b])
				}
				want := 0.0
				if a == b {
					want = 1.0 / 3
				}
				assert.InDelta(t, want, m, 1e-14, "%s (%d, %d)", vs.Name(), a, b)
			}
		}
	}
}

func TestVelocitySetDim(t *testing.T) {
	assert.Equal(t, 2, D2Q9.Dim())
	assert.Equal(t, 3, D3Q7.Dim())
	assert.Equal(t, 3, D3Q27.Dim())
}

func TestLookupVelocitySet(t *testing.T) {
	vs, err := LookupVelocitySet(" d3q19 ")
	assert.NoError(t, err)
	assert.Equal(t, D3Q19, vs)

	vs, err = LookupVelocitySet("D2Q9")
	assert.NoError(t, err)
	assert.Equal(t, D2Q9, vs)

	_, err = LookupVelocitySet("D3Q13")
	assert.Error(t, err)
}

func toyD1Q3(t *testing.T) *VelocitySet {
	vs, err := NewVelocitySet(
		"D1Q3",
		[][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}},
		[]float64{2.0 / 3, 1.0 / 6, 1.0 / 6},
	)
	if err != nil {
		t.Fatal(err.Error())
	}
	return vs
}

func TestNewVelocitySet(t *testing.T) {
	vs := toyD1Q3(t)
	assert.Equal(t, 3, vs.Q())
	assert.Equal(t, 1, vs.Dim())
	assert.Equal(t, 0, vs.Opposite(0))
	assert.Equal(t, 2, vs.Opposite(1))
	assert.Equal(t, 1, vs.Opposite(2))

	// The table is copied, not aliased.
	c := [][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}}
	w := []float64{0.5, 0.25, 0.25}
	vs, err := NewVelocitySet("copy", c, w)
	assert.NoError(t, err)
	c[1] = [3]int{5, 5, 5}
	w[0] = 7
	assert.Equal(t, [3]int{1, 0, 0}, vs.C(1))
	assert.Equal(t, 0.5, vs.W(0))
}

func TestNewVelocitySetErrors(t *testing.T) {
	tests := []struct {
		name string
		c    [][3]int
		w    []float64
	}{
		{"empty", [][3]int{}, []float64{}},
		{"length", [][3]int{{0, 0, 0}, {1, 0, 0}}, []float64{1}},
		{"rest", [][3]int{{1, 0, 0}, {0, 0, 0}, {-1, 0, 0}},
			[]float64{1.0 / 6, 2.0 / 3, 1.0 / 6}},
		{"sum", [][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}},
			[]float64{0.5, 0.2, 0.2}},
		{"drift", [][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}},
			[]float64{0.5, 0.3, 0.2}},
		{"negative", [][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}},
			[]float64{1.2, -0.1, -0.1}},
		{"opposite", [][3]int{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			[]float64{1, 0, 0}},
		{"duplicate", [][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {-1, 0, 0}},
			[]float64{0.4, 0.3, 0.15, 0.15}},
	}

	for _, test := range tests {
		_, err := NewVelocitySet(test.name, test.c, test.w)
		assert.Error(t, err, test.name)
	}
}

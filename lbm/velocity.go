package lbm

import (
	"fmt"
	"math"
	"strings"
)

const (
	// weightEps is the tolerance used when checking that a weight table is
	// normalized and drift-free.
	weightEps = 1e-12
)

// VelocitySet is an immutable table of discrete lattice velocities. Once a
// set has been chosen its direction count fixes the stride of every
// distribution buffer, so it is selected once per run and never per call.
type VelocitySet struct {
	name     string
	q, dim   int
	c        [][3]int
	w        []float64
	opposite []int
}

var (
	D2Q9 = mustVelocitySet("D2Q9",
		[][3]int{
			{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0},
			{1, 1, 0}, {-1, -1, 0}, {1, -1, 0}, {-1, 1, 0},
		},
		[]float64{
			4.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9,
			1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36,
		},
	)

	D3Q7 = mustVelocitySet("D3Q7",
		[][3]int{
			{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0},
			{0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		},
		[]float64{
			1.0 / 4, 1.0 / 8, 1.0 / 8, 1.0 / 8, 1.0 / 8, 1.0 / 8, 1.0 / 8,
		},
	)

	D3Q15 = mustVelocitySet("D3Q15",
		[][3]int{
			{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0},
			{0, -1, 0}, {0, 0, 1}, {0, 0, -1}, {1, 1, 1},
			{-1, -1, -1}, {1, 1, -1}, {-1, -1, 1}, {1, -1, 1},
			{-1, 1, -1}, {-1, 1, 1}, {1, -1, -1},
		},
		[]float64{
			2.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9,
			1.0 / 9, 1.0 / 9, 1.0 / 72, 1.0 / 72, 1.0 / 72,
			1.0 / 72, 1.0 / 72, 1.0 / 72, 1.0 / 72, 1.0 / 72,
		},
	)

	D3Q19 = mustVelocitySet("D3Q19",
		[][3]int{
			{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0},
			{0, -1, 0}, {0, 0, 1}, {0, 0, -1}, {1, 1, 0},
			{-1, -1, 0}, {1, 0, 1}, {-1, 0, -1}, {0, 1, 1},
			{0, -1, -1}, {1, -1, 0}, {-1, 1, 0}, {1, 0, -1},
			{-1, 0, 1}, {0, 1, -1}, {0, -1, 1},
		},
		[]float64{
			1.0 / 3, 1.0 / 18, 1.0 / 18, 1.0 / 18, 1.0 / 18,
			1.0 / 18, 1.0 / 18, 1.0 / 36, 1.0 / 36, 1.0 / 36,
			1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36,
			1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36,
		},
	)

	D3Q27 = mustVelocitySet("D3Q27",
		[][3]int{
			{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 1, 0},
			{0, -1, 0}, {0, 0, 1}, {0, 0, -1}, {1, 1, 0},
			{-1, -1, 0}, {1, 0, 1}, {-1, 0, -1}, {0, 1, 1},
			{0, -1, -1}, {1, -1, 0}, {-1, 1, 0}, {1, 0, -1},
			{-1, 0, 1}, {0, 1, -1}, {0, -1, 1}, {1, 1, 1},
			{-1, -1, -1}, {1, 1, -1}, {-1, -1, 1}, {1, -1, 1},
			{-1, 1, -1}, {-1, 1, 1}, {1, -1, -1},
		},
		[]float64{
			8.0 / 27, 2.0 / 27, 2.0 / 27, 2.0 / 27, 2.0 / 27,
			2.0 / 27, 2.0 / 27, 1.0 / 54, 1.0 / 54, 1.0 / 54,
			1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 54,
			1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 216,
			1.0 / 216, 1.0 / 216, 1.0 / 216, 1.0 / 216, 1.0 / 216,
			1.0 / 216, 1.0 / 216,
		},
	)

	// VelocitySets lists the supported lattices in order of direction count.
	VelocitySets = []*VelocitySet{D2Q9, D3Q7, D3Q15, D3Q19, D3Q27}
)

// LookupVelocitySet returns the supported velocity set with the given label,
// e.g. "D3Q19". Matching is case-insensitive.
func LookupVelocitySet(name string) (*VelocitySet, error) {
	clean := strings.ToUpper(strings.TrimSpace(name))
	for _, vs := range VelocitySets {
		if vs.name == clean {
			return vs, nil
		}
	}

	names := make([]string, len(VelocitySets))
	for i, vs := range VelocitySets {
		names[i] = vs.name
	}
	return nil, fmt.Errorf(
		"Unrecognized lattice '%s'. Supported lattices are: %s.",
		name, strings.Join(names, ", "),
	)
}

// NewVelocitySet builds a velocity set from an offset table and a weight
// table. The rest direction must come first, the weights must be
// non-negative, sum to one and have zero first moment, and every direction
// must have exactly one reversed partner.
func NewVelocitySet(
	name string, c [][3]int, w []float64,
) (*VelocitySet, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("Velocity set '%s' has no directions.", name)
	} else if len(c) != len(w) {
		return nil, fmt.Errorf(
			"Velocity set '%s' has %d offsets but %d weights.",
			name, len(c), len(w),
		)
	} else if c[0] != [3]int{} {
		return nil, fmt.Errorf(
			"Direction 0 of velocity set '%s' must be the rest direction, "+
				"but is %v.", name, c[0],
		)
	}

	vs := &VelocitySet{
		name: name, q: len(c),
		c: make([][3]int, len(c)), w: make([]float64, len(w)),
		opposite: make([]int, len(c)),
	}
	copy(vs.c, c)
	copy(vs.w, w)

	sum, drift := 0.0, [3]float64{}
	for q := range vs.w {
		if vs.w[q] < 0 || math.IsNaN(vs.w[q]) {
			return nil, fmt.Errorf(
				"Weight %d of velocity set '%s' is %g, but must be "+
					"non-negative.", q, name, vs.w[q],
			)
		}
		sum += vs.w[q]
		for k := 0; k < 3; k++ {
			drift[k] += vs.w[q] * float64(vs.c[q][k])
		}
	}

	if math.Abs(sum-1) > weightEps {
		return nil, fmt.Errorf(
			"Weights of velocity set '%s' sum to %.15g instead of 1.",
			name, sum,
		)
	}
	for k := 0; k < 3; k++ {
		if math.Abs(drift[k]) > weightEps {
			return nil, fmt.Errorf(
				"Weights of velocity set '%s' have net drift %v.",
				name, drift,
			)
		}
	}

	for q := range vs.c {
		vs.opposite[q] = -1
		for p := range vs.c {
			if vs.c[p] == neg(vs.c[q]) {
				if vs.opposite[q] != -1 {
					return nil, fmt.Errorf(
						"Direction %d of velocity set '%s' has more than "+
							"one opposite.", q, name,
					)
				}
				vs.opposite[q] = p
			}
		}
		if vs.opposite[q] == -1 {
			return nil, fmt.Errorf(
				"Direction %d %v of velocity set '%s' has no opposite.",
				q, vs.c[q], name,
			)
		}
	}

	for q := range vs.c {
		for k := 0; k < 3; k++ {
			if vs.c[q][k] != 0 && k+1 > vs.dim {
				vs.dim = k + 1
			}
		}
	}

	return vs, nil
}

func mustVelocitySet(name string, c [][3]int, w []float64) *VelocitySet {
	vs, err := NewVelocitySet(name, c, w)
	if err != nil {
		panic(err.Error())
	}
	return vs
}

func neg(c [3]int) [3]int { return [3]int{-c[0], -c[1], -c[2]} }

// Name returns the label of the set, e.g. "D3Q19".
func (vs *VelocitySet) Name() string { return vs.name }

// Q returns the number of directions.
func (vs *VelocitySet) Q() int { return vs.q }

// Dim returns the number of axes spanned by the offsets.
func (vs *VelocitySet) Dim() int { return vs.dim }

// C returns the offset of direction q.
func (vs *VelocitySet) C(q int) [3]int { return vs.c[q] }

// W returns the weight of direction q.
func (vs *VelocitySet) W(q int) float64 { return vs.w[q] }

// Opposite returns the direction with the reversed offset of q.
func (vs *VelocitySet) Opposite(q int) int { return vs.opposite[q] }

func (vs *VelocitySet) String() string { return vs.name }

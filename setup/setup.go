// Package setup populates the flags, densities and velocities of a lattice
// for a number of standard flows, and supplies the boundary updates those
// flows need while they run.
package setup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gustavoverneck/LatteLab/lbm"
)

// Params holds the free parameters shared by the scenarios. Not every
// scenario uses every field.
type Params struct {
	// U0 is the characteristic speed: the lid speed, the inlet speed, or the
	// vortex amplitude.
	U0 float64
	// Radius is the radius of the KarmanVortex cylinder, in nodes.
	Radius int
	// RampSteps is the number of steps over which inlets accelerate from
	// rest to U0. Values of zero or less turn the ramp off.
	RampSteps int
}

// DefaultParams returns the parameters used when a run doesn't set them.
func DefaultParams() Params {
	return Params{U0: 0.1, Radius: 8, RampSteps: 0}
}

// Builder writes a scenario's initial flags, rho and u into st. The returned
// BoundaryFunc may be nil if the scenario's boundary values never change.
type Builder func(st *lbm.State, p Params) (lbm.BoundaryFunc, error)

var (
	Scenarios = map[string]Builder{
		"LidDrivenCavity": LidDrivenCavity,
		"Couette":         Couette,
		"TaylorGreen":     TaylorGreen,
		"KarmanVortex":    KarmanVortex,
		"Poiseuille":      Poiseuille,
	}
)

// Names returns the names of all scenarios in sorted order.
func Names() []string {
	names := []string{}
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the scenario with the given name, ignoring case.
func Lookup(name string) (Builder, error) {
	name = strings.TrimSpace(name)
	for key, b := range Scenarios {
		if strings.EqualFold(key, name) {
			return b, nil
		}
	}
	return nil, fmt.Errorf(
		"Unrecognized scenario '%s'. The only accepted scenarios are: %s.",
		name, strings.Join(Names(), ", "),
	)
}

// Ramp returns a BoundaryFunc which sets the velocity of each node in nodes
// to the matching entry of target scaled by min(1, (step + 1) / steps). The
// density of the nodes is left alone. If steps <= 0 the full target is
// applied immediately.
func Ramp(nodes []int, target [][3]float64, steps int) lbm.BoundaryFunc {
	return func(step int, st *lbm.State) {
		factor := 1.0
		if steps > 0 && step+1 < steps {
			factor = float64(step+1) / float64(steps)
		}

		for i, n := range nodes {
			st.U[3*n] = factor * target[i][0]
			st.U[3*n+1] = factor * target[i][1]
			st.U[3*n+2] = factor * target[i][2]
		}
	}
}

// Resume rebuilds the BoundaryFunc of the named scenario for a run restarted
// at step from a state shaped like st. st itself is not modified. It returns
// nil if name is empty or if the ramp already reached its target before
// step.
func Resume(
	name string, st *lbm.State, p Params, step int,
) (lbm.BoundaryFunc, error) {
	if strings.TrimSpace(name) == "" || p.RampSteps <= 0 ||
		step >= p.RampSteps {
		return nil, nil
	}

	build, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	scratch := lbm.NewState(st.Grid, st.Set)
	return build(scratch, p)
}

// checkExtents returns an error if the grid of st is smaller than min along
// any axis.
func checkExtents(name string, st *lbm.State, min [3]int) error {
	w := st.Grid.Width
	if w[0] < min[0] || w[1] < min[1] || w[2] < min[2] {
		return fmt.Errorf(
			"%s requires a grid of at least (%d, %d, %d) nodes, but the grid "+
				"is (%d, %d, %d).", name, min[0], min[1], min[2],
			w[0], w[1], w[2],
		)
	}
	return nil
}

// fill sets every node of st to a Fluid node at unit density and rest.
func fill(st *lbm.State) {
	for n := 0; n < st.Nodes(); n++ {
		st.SetNode(n, lbm.Fluid, 1, [3]float64{})
	}
}

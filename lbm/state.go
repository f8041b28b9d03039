package lbm

import (
	"fmt"

	"github.com/gustavoverneck/LatteLab/geom"
)

// State holds every per-node buffer used by the kernels.
//
// F is the current distribution buffer: it is read by Streaming and read and
// written in place by Collision. FNew is the next buffer, written only by
// Streaming. The two exchange roles in Swap, which is the only place where
// ownership moves from one to the other.
type State struct {
	Grid *geom.Grid
	Set  *VelocitySet

	Flags []Flag
	F     []float64
	FNew  []float64
	Rho   []float64
	U     []float64
}

// NewState allocates the buffers for the given grid and velocity set. Every
// node starts as Fluid at unit density and rest.
func NewState(g *geom.Grid, vs *VelocitySet) *State {
	n, q := g.Volume, vs.Q()
	st := &State{
		Grid: g, Set: vs,
		Flags: make([]Flag, n),
		F:     make([]float64, n*q),
		FNew:  make([]float64, n*q),
		Rho:   make([]float64, n),
		U:     make([]float64, n*3),
	}
	for i := range st.Rho {
		st.Rho[i] = 1
	}
	return st
}

// WrapState builds a State around buffers which are owned by the caller.
func WrapState(
	g *geom.Grid, vs *VelocitySet,
	flags []Flag, f, fNew, rho, u []float64,
) (*State, error) {
	st := &State{
		Grid: g, Set: vs, Flags: flags, F: f, FNew: fNew, Rho: rho, U: u,
	}
	if err := st.Check(); err != nil {
		return nil, err
	}
	return st, nil
}

// Check returns an error if any buffer has the wrong length for the grid and
// velocity set.
func (st *State) Check() error {
	if st.Grid == nil || st.Set == nil {
		return fmt.Errorf("State has no grid or no velocity set.")
	}

	n, q := st.Grid.Volume, st.Set.Q()
	lens := []struct {
		name     string
		got, exp int
	}{
		{"flag", len(st.Flags), n},
		{"f", len(st.F), n * q},
		{"f_new", len(st.FNew), n * q},
		{"rho", len(st.Rho), n},
		{"u", len(st.U), n * 3},
	}
	for _, l := range lens {
		if l.got != l.exp {
			return fmt.Errorf(
				"Buffer '%s' has length %d, but %d nodes of %s require %d.",
				l.name, l.got, n, st.Set.Name(), l.exp,
			)
		}
	}
	return nil
}

// Swap commits the streamed buffer as the current one. It must only be called
// once every node has finished streaming.
func (st *State) Swap() { st.F, st.FNew = st.FNew, st.F }

// Nodes returns the number of lattice nodes.
func (st *State) Nodes() int { return st.Grid.Volume }

// SetNode sets the flag and macroscopic state of node n.
func (st *State) SetNode(n int, flag Flag, rho float64, u [3]float64) {
	st.Flags[n] = flag
	st.Rho[n] = rho
	st.U[3*n], st.U[3*n+1], st.U[3*n+2] = u[0], u[1], u[2]
}

// Velocity returns the velocity stored for node n.
func (st *State) Velocity(n int) [3]float64 {
	return [3]float64{st.U[3*n], st.U[3*n+1], st.U[3*n+2]}
}

// Distributions returns the slice of F belonging to node n.
func (st *State) Distributions(n int) []float64 {
	q := st.Set.Q()
	return st.F[n*q : n*q+q]
}

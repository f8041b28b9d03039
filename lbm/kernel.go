package lbm

import (
	"github.com/gustavoverneck/LatteLab/geom"
)

const (
	// RhoEps is the density at or below which a node's velocity is taken to
	// be zero instead of momentum / density.
	RhoEps = 1e-10
)

// The functions in this file are the per-node kernels. Each one touches a
// single node n and may be run for all nodes at once, provided that the
// phases are separated by a barrier (see Solver). Any n outside the grid is
// ignored, so callers may launch more instances than there are nodes.

// StreamNode moves the distributions of node n from f into fNew. Values
// heading into a Solid node are bounced back into the opposite slot of n
// itself; all other values land in the same slot of the downstream
// neighbor. Solid nodes do nothing.
//
// Every (node, direction) slot of a non-solid node has exactly one writer,
// so concurrent calls for different n never write to the same location.
func StreamNode(
	n int, g *geom.Grid, vs *VelocitySet, flags []Flag, f, fNew []float64,
) {
	if n < 0 || n >= g.Volume || flags[n] == Solid {
		return
	}

	Q := vs.q
	x, y, z := g.Coords(n)
	src := f[n*Q : n*Q+Q]

	for q := 0; q < Q; q++ {
		nn := g.Neighbor(x, y, z, vs.c[q])
		if flags[nn] == Solid {
			fNew[n*Q+vs.opposite[q]] = src[q]
		} else {
			fNew[nn*Q+q] = src[q]
		}
	}
}

// CollideNode relaxes node n in place. Fluid nodes publish their
// pre-collision moments to rho and u and then move toward equilibrium with
// the BGK operator, f' = (1 - omega) f + omega feq. Equilibrium nodes are
// overwritten with the equilibrium of their prescribed rho and u. Solid nodes
// are untouched.
func CollideNode(
	n int, vs *VelocitySet, flags []Flag, f, rho, u []float64, omega float64,
) {
	if n < 0 || n >= len(flags) || flags[n] == Solid {
		return
	}

	Q := vs.q
	fs := f[n*Q : n*Q+Q]
	localRho, localU := Moments(vs, fs)

	switch flags[n] {
	case Equilibrium:
		// The streamed moments are discarded: the boundary value wins.
		eqU := [3]float64{u[3*n], u[3*n+1], u[3*n+2]}
		equilibrium(vs, rho[n], eqU, fs)
	case Fluid:
		rho[n] = localRho
		u[3*n], u[3*n+1], u[3*n+2] = localU[0], localU[1], localU[2]

		u2 := dot(localU, localU)
		for q := 0; q < Q; q++ {
			cu := dotInt(vs.c[q], localU)
			feq := feqTerm(localRho, vs.w[q], cu, u2)
			fs[q] = (1-omega)*fs[q] + omega*feq
		}
	}
}

// EquilibriumNode overwrites the distributions of node n with the
// equilibrium for rho[n] and u[n], regardless of the node's flag.
func EquilibriumNode(n int, vs *VelocitySet, f, rho, u []float64) {
	if n < 0 || n >= len(rho) {
		return
	}

	Q := vs.q
	eqU := [3]float64{u[3*n], u[3*n+1], u[3*n+2]}
	equilibrium(vs, rho[n], eqU, f[n*Q:n*Q+Q])
}

// Moments returns the density and velocity of a single node's distributions.
// The velocity is zero if the density is at or below RhoEps.
func Moments(vs *VelocitySet, fs []float64) (rho float64, u [3]float64) {
	mom := [3]float64{}
	for q := 0; q < vs.q; q++ {
		rho += fs[q]
		c := &vs.c[q]
		mom[0] += float64(c[0]) * fs[q]
		mom[1] += float64(c[1]) * fs[q]
		mom[2] += float64(c[2]) * fs[q]
	}

	if rho > RhoEps {
		u = [3]float64{mom[0] / rho, mom[1] / rho, mom[2] / rho}
	}
	return rho, u
}

// EquilibriumDist writes the equilibrium distribution for rho and u into
// out, which must have length vs.Q().
func EquilibriumDist(vs *VelocitySet, rho float64, u [3]float64, out []float64) {
	equilibrium(vs, rho, u, out)
}

// EquilibriumAt returns the equilibrium value of direction q:
// rho w[q] (1 + 3 cu + 4.5 cu^2 - 1.5 |u|^2) with cu = c[q].u.
func EquilibriumAt(vs *VelocitySet, rho float64, u [3]float64, q int) float64 {
	return feqTerm(rho, vs.w[q], dotInt(vs.c[q], u), dot(u, u))
}

func equilibrium(vs *VelocitySet, rho float64, u [3]float64, out []float64) {
	u2 := dot(u, u)
	for q := 0; q < vs.q; q++ {
		out[q] = feqTerm(rho, vs.w[q], dotInt(vs.c[q], u), u2)
	}
}

func feqTerm(rho, w, cu, u2 float64) float64 {
	return rho * w * (1 + 3*cu + 4.5*cu*cu - 1.5*u2)
}

func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func dotInt(c [3]int, u [3]float64) float64 {
	return float64(c[0])*u[0] + float64(c[1])*u[1] + float64(c[2])*u[2]
}

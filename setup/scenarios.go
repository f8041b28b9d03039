package setup

import (
	"fmt"
	"math"

	"github.com/gustavoverneck/LatteLab/lbm"
)

// inlet prescribes target velocities on a set of Equilibrium nodes. If the
// run ramps its inlets, the nodes start at rest and the returned
// BoundaryFunc accelerates them; otherwise they start at the target and no
// BoundaryFunc is needed.
func inlet(
	st *lbm.State, nodes []int, target [][3]float64, p Params,
) lbm.BoundaryFunc {
	for i, n := range nodes {
		u := target[i]
		if p.RampSteps > 0 {
			u = [3]float64{}
		}
		st.SetNode(n, lbm.Equilibrium, 1, u)
	}

	if p.RampSteps <= 0 {
		return nil
	}
	return Ramp(nodes, target, p.RampSteps)
}

// LidDrivenCavity builds a box with no-slip walls on every side except the
// top (y = NY - 1), which slides in the +x direction at U0. Walls in z are
// only added if NZ > 2; thinner grids are periodic in z.
func LidDrivenCavity(st *lbm.State, p Params) (lbm.BoundaryFunc, error) {
	if err := checkExtents("LidDrivenCavity", st, [3]int{3, 3, 1}); err != nil {
		return nil, err
	}
	fill(st)

	w := st.Grid.Width
	lid, target := []int{}, [][3]float64{}
	for n := 0; n < st.Nodes(); n++ {
		x, y, z := st.Grid.Coords(n)
		switch {
		case y == w[1]-1:
			lid = append(lid, n)
			target = append(target, [3]float64{p.U0, 0, 0})
		case y == 0 || x == 0 || x == w[0]-1:
			st.Flags[n] = lbm.Solid
		case w[2] > 2 && (z == 0 || z == w[2]-1):
			st.Flags[n] = lbm.Solid
		}
	}

	return inlet(st, lid, target, p), nil
}

// Couette builds a channel between two solid plates at y = 0 and
// y = NY - 1. The row below the top plate is held at velocity U0 in +x.
func Couette(st *lbm.State, p Params) (lbm.BoundaryFunc, error) {
	if err := checkExtents("Couette", st, [3]int{1, 4, 1}); err != nil {
		return nil, err
	}
	fill(st)

	w := st.Grid.Width
	plate, target := []int{}, [][3]float64{}
	for n := 0; n < st.Nodes(); n++ {
		_, y, _ := st.Grid.Coords(n)
		switch y {
		case 0, w[1] - 1:
			st.Flags[n] = lbm.Solid
		case w[1] - 2:
			plate = append(plate, n)
			target = append(target, [3]float64{p.U0, 0, 0})
		}
	}

	return inlet(st, plate, target, p), nil
}

// TaylorGreen builds a fully periodic, decaying Taylor-Green vortex with
// amplitude U0 in the x-y plane:
//
//     ux = -U0 cos(kx x) sin(ky y)
//     uy =  U0 sin(kx x) cos(ky y)
//
// with kx = 2 pi / NX and ky = 2 pi / NY. The density carries the matching
// pressure field so the initial state is close to the analytic solution.
// Every node is Fluid and no boundary updates are needed.
func TaylorGreen(st *lbm.State, p Params) (lbm.BoundaryFunc, error) {
	if err := checkExtents("TaylorGreen", st, [3]int{2, 2, 1}); err != nil {
		return nil, err
	}

	w := st.Grid.Width
	kx, ky := 2*math.Pi/float64(w[0]), 2*math.Pi/float64(w[1])
	for n := 0; n < st.Nodes(); n++ {
		x, y, _ := st.Grid.Coords(n)
		sx, cx := math.Sincos(kx * float64(x))
		sy, cy := math.Sincos(ky * float64(y))

		u := [3]float64{-p.U0 * cx * sy, p.U0 * sx * cy, 0}
		// rho = 1 + p / cs^2 with p = -(U0^2 / 4) (cos 2kx x + cos 2ky y).
		rho := 1 - 0.75*p.U0*p.U0*(math.Cos(2*kx*float64(x))+
			math.Cos(2*ky*float64(y)))
		st.SetNode(n, lbm.Fluid, rho, u)
	}

	return nil, nil
}

// TaylorGreenDecay returns the factor by which the velocity amplitude of a
// TaylorGreen vortex on an nx by ny grid has decayed after the given number
// of steps at kinematic viscosity nu.
func TaylorGreenDecay(nu float64, nx, ny, step int) float64 {
	kx, ky := 2*math.Pi/float64(nx), 2*math.Pi/float64(ny)
	return math.Exp(-nu * (kx*kx + ky*ky) * float64(step))
}

// KarmanVortex builds the wake behind a solid cylinder of the given radius,
// centered at (NX/4, NY/2) with its axis along z. The column x = 0 is held
// at velocity U0 in +x and unit density. Since the grid is periodic, the
// same column also absorbs the flow leaving through x = NX - 1.
func KarmanVortex(st *lbm.State, p Params) (lbm.BoundaryFunc, error) {
	if p.Radius <= 0 {
		return nil, fmt.Errorf(
			"KarmanVortex requires a positive radius, but Radius = %d.",
			p.Radius,
		)
	}
	r := p.Radius
	err := checkExtents("KarmanVortex", st, [3]int{4*(r+2) + 1, 2*r + 3, 1})
	if err != nil {
		return nil, err
	}
	fill(st)

	w := st.Grid.Width
	cx, cy := float64(w[0]/4), float64(w[1]/2)
	in, target := []int{}, [][3]float64{}
	for n := 0; n < st.Nodes(); n++ {
		x, y, _ := st.Grid.Coords(n)
		dx, dy := float64(x)-cx, float64(y)-cy

		if x == 0 {
			in = append(in, n)
			target = append(target, [3]float64{p.U0, 0, 0})
		} else if dx*dx+dy*dy <= float64(r*r) {
			st.Flags[n] = lbm.Solid
		}
	}

	return inlet(st, in, target, p), nil
}

// PoiseuilleProfile returns the x-velocity of the parabolic profile with
// peak speed u0 at row y of a channel with solid walls at y = 0 and
// y = ny - 1. Bounce-back places the walls halfway between the solid and
// the first fluid rows, so the profile vanishes at y = 1/2 and y = ny - 3/2.
func PoiseuilleProfile(y, ny int, u0 float64) float64 {
	h := float64(ny - 2)
	s := float64(y) - 0.5
	if s <= 0 || s >= h {
		return 0
	}
	return 4 * u0 * s * (h - s) / (h * h)
}

// Poiseuille builds a channel between solid walls at y = 0 and y = NY - 1
// which is fed through the column x = 0 with a parabolic profile of peak
// speed U0.
func Poiseuille(st *lbm.State, p Params) (lbm.BoundaryFunc, error) {
	if err := checkExtents("Poiseuille", st, [3]int{2, 3, 1}); err != nil {
		return nil, err
	}
	fill(st)

	w := st.Grid.Width
	in, target := []int{}, [][3]float64{}
	for n := 0; n < st.Nodes(); n++ {
		x, y, _ := st.Grid.Coords(n)
		switch {
		case y == 0 || y == w[1]-1:
			st.Flags[n] = lbm.Solid
		case x == 0:
			in = append(in, n)
			target = append(target,
				[3]float64{PoiseuilleProfile(y, w[1], p.U0), 0, 0})
		}
	}

	return inlet(st, in, target, p), nil
}

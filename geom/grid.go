package geom

import (
	"fmt"
	"math"
)

// Grid provides an interface for reasoning over a 1D slice as if it were a
// periodic 3D lattice. Nodes are ordered with x varying fastest:
// idx = z*(NX*NY) + y*NX + x.
type Grid struct {
	Width                [3]int
	Length, Area, Volume int
}

// NewGrid returns a new Grid instance with the given extents.
func NewGrid(nx, ny, nz int) (*Grid, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf(
			"Grid extents must be positive, but are (%d, %d, %d).",
			nx, ny, nz,
		)
	} else if ny > math.MaxInt/nx || nz > math.MaxInt/(nx*ny) {
		return nil, fmt.Errorf(
			"Grid extents (%d, %d, %d) have more nodes than an int can index.",
			nx, ny, nz,
		)
	}

	g := &Grid{}
	g.Init([3]int{nx, ny, nz})
	return g, nil
}

// Init initializes a Grid instance.
func (g *Grid) Init(width [3]int) {
	g.Width = width

	g.Length = width[0]
	g.Area = width[0] * width[1]
	g.Volume = width[0] * width[1] * width[2]
}

// Idx returns the grid index corresponding to a set of coordinates. The
// coordinates are assumed to be inside the grid.
func (g *Grid) Idx(x, y, z int) int {
	return x + y*g.Length + z*g.Area
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}

	return g.Idx(x, y, z), true
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	return (0 <= x && 0 <= y && 0 <= z) &&
		(x < g.Width[0] && y < g.Width[1] && z < g.Width[2])
}

// Contains returns true if idx is a valid node index.
func (g *Grid) Contains(idx int) bool { return idx >= 0 && idx < g.Volume }

// Coords returns the x, y, z coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx % g.Length
	y = (idx / g.Length) % g.Width[1]
	z = idx / g.Area
	return x, y, z
}

// Wrap maps arbitrary coordinates back into the grid periodically.
func (g *Grid) Wrap(x, y, z int) (int, int, int) {
	return pMod(x, g.Width[0]), pMod(y, g.Width[1]), pMod(z, g.Width[2])
}

// Neighbor returns the index of the node reached by moving from (x, y, z)
// by the offset c, wrapping around each axis.
func (g *Grid) Neighbor(x, y, z int, c [3]int) int {
	nx, ny, nz := g.Wrap(x+c[0], y+c[1], z+c[2])
	return g.Idx(nx, ny, nz)
}

// NeighborIdx is Neighbor for a node given by its index.
func (g *Grid) NeighborIdx(idx int, c [3]int) int {
	x, y, z := g.Coords(idx)
	return g.Neighbor(x, y, z, c)
}

// pMod computes the positive modulo x % y.
func pMod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}

package io

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/phil-mansfield/table"

	"github.com/gustavoverneck/LatteLab/lbm"
)

/*
State tables are whitespace-separated text files with one row per node and
the columns

    x y z flag rho ux uy uz

flag is the integer value of an lbm.Flag: 0 (Fluid), 1 (Solid), or 2
(Equilibrium). The same format is used for exported snapshots and for
geometry files, so any exported snapshot can seed a new run.
*/

// StateRows holds the columns of a state table.
type StateRows struct {
	X, Y, Z []int
	Flags   []lbm.Flag
	Rho     []float64
	U       [][3]float64
}

// Len returns the number of rows.
func (rows *StateRows) Len() int { return len(rows.X) }

// Extents returns one plus the largest coordinate along each axis.
func (rows *StateRows) Extents() [3]int {
	ext := [3]int{}
	for i := range rows.X {
		for k, v := range []int{rows.X[i], rows.Y[i], rows.Z[i]} {
			if v+1 > ext[k] {
				ext[k] = v + 1
			}
		}
	}
	return ext
}

// ReadStateRows reads and checks every row of a state table.
func ReadStateRows(fname string) (*StateRows, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3, 4, 5, 6, 7}, nil)
	if err != nil {
		return nil, err
	}

	n := len(cols[0])
	rows := &StateRows{
		X: make([]int, n), Y: make([]int, n), Z: make([]int, n),
		Flags: make([]lbm.Flag, n),
		Rho:   cols[4],
		U:     make([][3]float64, n),
	}

	for i := 0; i < n; i++ {
		coords := []*int{&rows.X[i], &rows.Y[i], &rows.Z[i]}
		for k, ptr := range coords {
			v, ok := integral(cols[k][i])
			if !ok || v < 0 {
				return nil, fmt.Errorf(
					"Row %d of %s has coordinate %g, which is not a "+
						"non-negative integer.", i, fname, cols[k][i],
				)
			}
			*ptr = v
		}

		flag, ok := integral(cols[3][i])
		if !ok || flag < 0 || !lbm.Flag(flag).Valid() {
			return nil, fmt.Errorf(
				"Row %d of %s has flag %g, but the only valid flags are "+
					"%d (Fluid), %d (Solid), and %d (Equilibrium).",
				i, fname, cols[3][i], lbm.Fluid, lbm.Solid, lbm.Equilibrium,
			)
		}
		rows.Flags[i] = lbm.Flag(flag)
		rows.U[i] = [3]float64{cols[5][i], cols[6][i], cols[7][i]}
	}

	return rows, nil
}

func integral(x float64) (int, bool) {
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return int(x), true
}

// Apply writes every row into st. Rows outside the grid of st are an error.
func (rows *StateRows) Apply(st *lbm.State) error {
	for i := range rows.X {
		n, ok := st.Grid.IdxCheck(rows.X[i], rows.Y[i], rows.Z[i])
		if !ok {
			return fmt.Errorf(
				"Row %d has coordinates (%d, %d, %d), which are outside the "+
					"grid of width %v.", i, rows.X[i], rows.Y[i], rows.Z[i],
				st.Grid.Width,
			)
		}
		st.SetNode(n, rows.Flags[i], rows.Rho[i], rows.U[i])
	}
	return nil
}

// ReadStateTable reads a state table into st. Nodes without a row keep
// their current values.
func ReadStateTable(fname string, st *lbm.State) error {
	rows, err := ReadStateRows(fname)
	if err != nil {
		return err
	}
	if err = rows.Apply(st); err != nil {
		return fmt.Errorf("%s: %s", fname, err.Error())
	}
	return nil
}

// StateRowsOf returns the rows of st, one per node in index order.
func StateRowsOf(st *lbm.State) *StateRows {
	n := st.Nodes()
	rows := &StateRows{
		X: make([]int, n), Y: make([]int, n), Z: make([]int, n),
		Flags: append([]lbm.Flag{}, st.Flags...),
		Rho:   append([]float64{}, st.Rho...),
		U:     make([][3]float64, n),
	}
	for i := 0; i < n; i++ {
		rows.X[i], rows.Y[i], rows.Z[i] = st.Grid.Coords(i)
		rows.U[i] = st.Velocity(i)
	}
	return rows
}

// WriteStateTable writes the flag, density and velocity of every node of st
// to fname, one row per node in index order.
func WriteStateTable(fname string, st *lbm.State) error {
	return WriteStateRows(fname, StateRowsOf(st))
}

// WriteStateRows writes rows to fname as a state table.
func WriteStateRows(fname string, rows *StateRows) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	wr := bufio.NewWriter(f)
	for i := range rows.X {
		u := rows.U[i]
		fmt.Fprintf(wr, "%d %d %d %d %.12g %.12g %.12g %.12g\n",
			rows.X[i], rows.Y[i], rows.Z[i], rows.Flags[i], rows.Rho[i],
			u[0], u[1], u[2])
	}

	if err = wr.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gustavoverneck/LatteLab/geom"
	"github.com/gustavoverneck/LatteLab/lbm"
	"github.com/gustavoverneck/LatteLab/setup"
)

const (
	// Endianness used by default when writing checkpoints. Checkpoints of
	// either endianness can be read.
	DefaultEndiannessFlag int32 = -1
)

/*
The binary format used for checkpoints is as follows:
    |-- 1 --||-- 2 --||-- 3 --||-- 4 --||-- ... 5 ... --||-- 6 --||-- 7 --|

    1 - (int32) Flag indicating the endianness of the file. -1 indicates a
        little endian byte order and 0 indicates a big endian byte order.
    2 - (int32) Size of a CheckpointHeader. Checked for consistency.
    3 - (CheckpointHeader) Meta-information about the run.
    4 - ([]uint8) Node flags.
    5 - ([]float64) Distributions, Q contiguous values per node.
    6 - ([]float64) Densities.
    7 - ([][3]float64) Velocities.
*/
type CheckpointHeader struct {
	Width   [3]int64 // Nodes along each axis
	Q       int64    // Number of directions in the velocity set
	Step    int64    // Number of completed steps
	Omega   float64  // BGK relaxation factor
	Lattice [16]byte // Name of the velocity set, zero padded

	Setup     [32]byte // Name of the scenario, zero padded. May be empty.
	U0        float64  // Scenario parameters
	Radius    int64
	RampSteps int64
}

// RunInfo is the part of a run's description which is stored alongside its
// State in a checkpoint.
type RunInfo struct {
	Step  int
	Omega float64
	// Setup is the scenario the run was built from. It is empty for runs
	// read from a geometry file.
	Setup  string
	Params setup.Params
}

// Checkpoint is the contents of a checkpoint file.
type Checkpoint struct {
	Header CheckpointHeader
	State  *lbm.State
}

// LatticeName returns the name of the velocity set used by the run.
func (hd *CheckpointHeader) LatticeName() string {
	return strings.TrimRight(string(hd.Lattice[:]), "\x00")
}

// SetupName returns the name of the scenario the run was built from.
func (hd *CheckpointHeader) SetupName() string {
	return strings.TrimRight(string(hd.Setup[:]), "\x00")
}

// RunInfo returns the description of the run stored in hd.
func (hd *CheckpointHeader) RunInfo() RunInfo {
	return RunInfo{
		Step: int(hd.Step), Omega: hd.Omega, Setup: hd.SetupName(),
		Params: setup.Params{
			U0: hd.U0, Radius: int(hd.Radius), RampSteps: int(hd.RampSteps),
		},
	}
}

// payloadSize returns the number of bytes which follow the header of a
// checkpoint of hd's extents, or -1 if that number doesn't fit in an int64.
func payloadSize(hd *CheckpointHeader) int64 {
	if hd.Q <= 0 || hd.Q > math.MaxInt64/16 {
		return -1
	}
	perNode := 1 + 8*hd.Q + 8 + 24
	n := int64(1)
	for _, w := range hd.Width {
		if w <= 0 || n > math.MaxInt64/w {
			return -1
		}
		n *= w
	}
	if n > math.MaxInt64/perNode {
		return -1
	}
	return n * perNode
}

// endianness converts an endianness flag to a byte order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case -1:
		return binary.LittleEndian, nil
	case 0:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag, %d.", flag)
}

// WriteCheckpoint writes the current buffer, flags, densities, and
// velocities of st to fname, along with run. FNew is not written: it holds
// nothing a restart needs.
func WriteCheckpoint(fname string, st *lbm.State, run RunInfo) error {
	name, setupName := st.Set.Name(), strings.TrimSpace(run.Setup)
	hd := CheckpointHeader{}
	if len(name) > len(hd.Lattice) {
		return fmt.Errorf(
			"Velocity set name '%s' is longer than %d bytes.",
			name, len(hd.Lattice),
		)
	} else if len(setupName) > len(hd.Setup) {
		return fmt.Errorf(
			"Scenario name '%s' is longer than %d bytes.",
			setupName, len(hd.Setup),
		)
	}
	for k := 0; k < 3; k++ {
		hd.Width[k] = int64(st.Grid.Width[k])
	}
	hd.Q = int64(st.Set.Q())
	hd.Step = int64(run.Step)
	hd.Omega = run.Omega
	copy(hd.Lattice[:], name)
	copy(hd.Setup[:], setupName)
	hd.U0 = run.Params.U0
	hd.Radius = int64(run.Params.Radius)
	hd.RampSteps = int64(run.Params.RampSteps)

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	wr := bufio.NewWriter(f)

	order, _ := endianness(DefaultEndiannessFlag)
	flags := make([]uint8, len(st.Flags))
	for i := range flags {
		flags[i] = uint8(st.Flags[i])
	}

	blocks := []interface{}{
		DefaultEndiannessFlag, int32(binary.Size(hd)), &hd,
		flags, st.F, st.Rho, st.U,
	}
	for _, block := range blocks {
		if err = binary.Write(wr, order, block); err != nil {
			f.Close()
			return err
		}
	}

	if err = wr.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCheckpoint reads a checkpoint written by WriteCheckpoint into a new
// State.
func ReadCheckpoint(fname string) (*Checkpoint, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	cp, err := readCheckpoint(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %s", fname, err.Error())
	}
	return cp, nil
}

// readCheckpoint reads a checkpoint of size bytes from rd.
func readCheckpoint(rd io.Reader, size int64) (*Checkpoint, error) {
	// The flag reads the same in either byte order.
	var flag, hdSize int32
	if err := binary.Read(rd, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}
	order, err := endianness(flag)
	if err != nil {
		return nil, err
	}

	cp := &Checkpoint{}
	if err = binary.Read(rd, order, &hdSize); err != nil {
		return nil, err
	} else if int(hdSize) != binary.Size(cp.Header) {
		return nil, fmt.Errorf(
			"Expected CheckpointHeader size of %d, found %d.",
			binary.Size(cp.Header), hdSize,
		)
	}
	if err = binary.Read(rd, order, &cp.Header); err != nil {
		return nil, err
	}

	hd := &cp.Header
	vs, err := lbm.LookupVelocitySet(hd.LatticeName())
	if err != nil {
		return nil, err
	} else if int64(vs.Q()) != hd.Q {
		return nil, fmt.Errorf(
			"Header gives Q = %d, but %s has %d directions.",
			hd.Q, vs.Name(), vs.Q(),
		)
	}

	// The extents are checked against the data actually present before
	// anything is allocated.
	payload := payloadSize(hd)
	if payload < 0 {
		return nil, fmt.Errorf(
			"Header gives grid extents %v, which are not a valid grid.",
			hd.Width,
		)
	} else if want := 8 + int64(hdSize) + payload; want != size {
		return nil, fmt.Errorf(
			"Header gives a %v %s grid, which needs %d bytes, but the "+
				"checkpoint has %d bytes.", hd.Width, vs.Name(), want, size,
		)
	}
	g, err := geom.NewGrid(int(hd.Width[0]), int(hd.Width[1]), int(hd.Width[2]))
	if err != nil {
		return nil, err
	}

	st := lbm.NewState(g, vs)
	flags := make([]uint8, st.Nodes())
	for _, block := range []interface{}{flags, st.F, st.Rho, st.U} {
		if err = binary.Read(rd, order, block); err != nil {
			return nil, err
		}
	}
	for i := range flags {
		st.Flags[i] = lbm.Flag(flags[i])
	}
	if err = lbm.ValidateFlags(st.Flags); err != nil {
		return nil, err
	}

	cp.State = st
	return cp, nil
}

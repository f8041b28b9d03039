package io

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gustavoverneck/LatteLab/lbm"
	"github.com/gustavoverneck/LatteLab/setup"
)

func TestCheckpointRoundTrip(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	fname := path.Join(dir, "state.chk")

	gen := rand.New(rand.NewSource(5))
	st := testState(t, 5, 4, 3, lbm.D3Q27)
	for i := range st.F {
		st.F[i] = gen.Float64()
	}
	for n := range st.Rho {
		st.SetNode(n, lbm.Flag(gen.Intn(int(lbm.EndFlag))), gen.Float64(),
			[3]float64{gen.Float64(), gen.Float64(), gen.Float64()})
	}

	run := RunInfo{
		Step: 1500, Omega: 1.65, Setup: "KarmanVortex",
		Params: setup.Params{U0: 0.05, Radius: 4, RampSteps: 2000},
	}
	assert.NoError(t, WriteCheckpoint(fname, st, run))

	cp, err := ReadCheckpoint(fname)
	assert.NoError(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, [3]int64{5, 4, 3}, cp.Header.Width)
	assert.Equal(t, int64(27), cp.Header.Q)
	assert.Equal(t, int64(1500), cp.Header.Step)
	assert.Equal(t, 1.65, cp.Header.Omega)
	assert.Equal(t, "D3Q27", cp.Header.LatticeName())
	assert.Equal(t, run, cp.Header.RunInfo())

	out := cp.State
	assert.Equal(t, lbm.D3Q27, out.Set)
	assert.Equal(t, st.Grid.Width, out.Grid.Width)
	assert.Equal(t, st.Flags, out.Flags)
	assert.Equal(t, st.F, out.F)
	assert.Equal(t, st.Rho, out.Rho)
	assert.Equal(t, st.U, out.U)
	assert.NoError(t, out.Check())
}

func TestBigEndianCheckpoint(t *testing.T) {
	hd := CheckpointHeader{Width: [3]int64{2, 1, 1}, Q: 9, Step: 3, Omega: 1}
	copy(hd.Lattice[:], "D2Q9")

	buf := &bytes.Buffer{}
	order := binary.BigEndian
	binary.Write(buf, order, int32(0))
	binary.Write(buf, order, int32(binary.Size(hd)))
	binary.Write(buf, order, &hd)
	binary.Write(buf, order, []uint8{0, 2})
	f := make([]float64, 18)
	for i := range f {
		f[i] = float64(i)
	}
	binary.Write(buf, order, f)
	binary.Write(buf, order, []float64{1, 2})
	binary.Write(buf, order, make([]float64, 6))

	cp, err := readCheckpoint(buf, int64(buf.Len()))
	assert.NoError(t, err)
	if err != nil {
		return
	}
	assert.Equal(t, f, cp.State.F)
	assert.Equal(t, lbm.Equilibrium, cp.State.Flags[1])
	assert.Equal(t, []float64{1, 2}, cp.State.Rho)
}

func TestCorruptCheckpoint(t *testing.T) {
	hd := CheckpointHeader{Width: [3]int64{1, 1, 1}, Q: 9}
	copy(hd.Lattice[:], "D2Q9")
	order := binary.LittleEndian

	write := func(flag, size int32, hd *CheckpointHeader, flags []uint8) (*bytes.Buffer, int64) {
		buf := &bytes.Buffer{}
		binary.Write(buf, order, flag)
		binary.Write(buf, order, size)
		binary.Write(buf, order, hd)
		binary.Write(buf, order, flags)
		binary.Write(buf, order, make([]float64, 9+1+3))
		return buf, int64(buf.Len())
	}
	size := int32(binary.Size(hd))

	_, err := readCheckpoint(write(-1, size, &hd, []uint8{0}))
	assert.NoError(t, err)

	_, err = readCheckpoint(write(7, size, &hd, []uint8{0}))
	assert.Error(t, err)
	_, err = readCheckpoint(write(-1, size+8, &hd, []uint8{0}))
	assert.Error(t, err)
	_, err = readCheckpoint(write(-1, size, &hd, []uint8{9}))
	assert.Error(t, err)

	bad := hd
	bad.Q = 19
	_, err = readCheckpoint(write(-1, size, &bad, []uint8{0}))
	assert.Error(t, err)

	bad = hd
	bad.Lattice = [16]byte{}
	copy(bad.Lattice[:], "D4Q81")
	_, err = readCheckpoint(write(-1, size, &bad, []uint8{0}))
	assert.Error(t, err)

	_, err = readCheckpoint(bytes.NewReader([]byte{1, 2}), 2)
	assert.Error(t, err)

	// Extents whose node count overflows, and extents which need more or
	// less data than the checkpoint holds.
	for _, width := range [][3]int64{
		{1 << 22, 1 << 22, 1 << 20}, {1 << 62, 4, 1}, {-1, 1, 1}, {0, 1, 1},
		{2, 1, 1}, {1 << 20, 1 << 20, 1},
	} {
		bad = hd
		bad.Width = width
		_, err = readCheckpoint(write(-1, size, &bad, []uint8{0}))
		assert.Error(t, err, "%v", width)
	}

	buf, n := write(-1, size, &hd, []uint8{0})
	_, err = readCheckpoint(buf, n+8)
	assert.Error(t, err)
}

func TestReadCheckpointTrailingData(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	fname := path.Join(dir, "state.chk")

	st := testState(t, 3, 2, 1, lbm.D2Q9)
	assert.NoError(t, WriteCheckpoint(fname, st, RunInfo{Step: 4, Omega: 1}))

	f, err := os.OpenFile(fname, os.O_APPEND|os.O_WRONLY, 0644)
	assert.NoError(t, err)
	_, err = f.Write([]byte{0, 0, 0, 0})
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	_, err = ReadCheckpoint(fname)
	assert.Error(t, err)
}

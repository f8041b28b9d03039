package io

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gustavoverneck/LatteLab/lbm"
)

func TestExampleSimulationFile(t *testing.T) {
	con, err := ParseSimulationConfig(ExampleSimulationFile)
	assert.NoError(t, err)
	if err != nil {
		return
	}

	assert.Equal(t, [3]int{128, 64, 1}, [3]int{con.NX, con.NY, con.NZ})
	assert.Equal(t, "KarmanVortex", con.Setup)
	assert.Equal(t, 10000, con.Steps)
	assert.False(t, con.ValidThreads())

	omega, err := con.RelaxationFactor()
	assert.NoError(t, err)
	nu := 0.1 * 64 / 250
	assert.InDelta(t, 1/(3*nu+0.5), omega, 1e-12)

	vs, err := con.VelocitySet()
	assert.NoError(t, err)
	assert.Equal(t, lbm.D2Q9, vs)

	p := con.Params()
	assert.Equal(t, 0.1, p.U0)
	assert.Equal(t, 8, p.Radius)
}

func simulationText(extra string) string {
	return fmt.Sprintf(`[Simulation]
NX = 16
NY = 8
Lattice = d3q19
Steps = 10
Output = out
%s`, extra)
}

func TestRelaxationFactor(t *testing.T) {
	con, err := ParseSimulationConfig(simulationText("Setup = Couette\nOmega = 1.7"))
	assert.NoError(t, err)
	omega, _ := con.RelaxationFactor()
	assert.Equal(t, 1.7, omega)

	con, err = ParseSimulationConfig(simulationText("Setup = Couette\nViscosity = 0.1"))
	assert.NoError(t, err)
	omega, _ = con.RelaxationFactor()
	assert.InDelta(t, 1/0.8, omega, 1e-14)

	con, err = ParseSimulationConfig(simulationText(
		"Setup = Couette\nReynolds = 100\nVelocity = 0.05\nLength = 40",
	))
	assert.NoError(t, err)
	omega, _ = con.RelaxationFactor()
	assert.InDelta(t, 1/(3*0.02+0.5), omega, 1e-14)
	assert.Equal(t, 40.0, con.CharacteristicLength())

	// Without Length, NY = 8 is used when setting omega and when reporting
	// the Reynolds number.
	con, err = ParseSimulationConfig(simulationText(
		"Setup = Couette\nReynolds = 20\nVelocity = 0.05",
	))
	assert.NoError(t, err)
	assert.Equal(t, 8.0, con.CharacteristicLength())
	omega, _ = con.RelaxationFactor()
	assert.InDelta(t, 1/(3*0.02+0.5), omega, 1e-14)
	assert.InDelta(t, 20,
		con.Velocity*con.CharacteristicLength()/lbm.ViscosityFromOmega(omega),
		1e-10,
	)

	con, err = ParseSimulationConfig(simulationText("Restart = a.chk"))
	assert.NoError(t, err)
	assert.False(t, con.HasRelaxationFactor())
	_, err = con.RelaxationFactor()
	assert.Error(t, err)
}

func TestSimulationConfigErrors(t *testing.T) {
	tests := []string{
		"Setup = Couette",
		"Setup = Couette\nOmega = 1\nViscosity = 0.1",
		"Setup = Square\nOmega = 1",
		"Setup = Couette\nGeometryFile = g.txt\nOmega = 1",
		"Omega = 1",
		"Setup = Couette\nReynolds = 100\nVelocity = 0",
		"Setup = Couette\nOmega = 1\nExportEvery = -5",
		"Setup = Couette\nOmega = 1\nNZ = 0",
		"Setup = Couette\nOmega = 1\nLattice = D2Q5",
		"Setup = Couette\nOmega = 1\nUnknownKey = 3",
	}

	for _, extra := range tests {
		_, err := ParseSimulationConfig(simulationText(extra))
		assert.Error(t, err, extra)
	}
}

func TestOutputFileNames(t *testing.T) {
	con, err := ParseSimulationConfig(simulationText(
		"Setup = Couette\nOmega = 1\nPrependName = a_\nAppendName = _b",
	))
	assert.NoError(t, err)
	assert.Equal(t, "out/a_state_000120_b.txt", con.StateFileName(120))
	assert.Equal(t, "out/a_state_000120_b.chk", con.CheckpointFileName(120))
}

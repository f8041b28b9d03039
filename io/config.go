package io

import (
	"fmt"
	"path"

	"gopkg.in/gcfg.v1"

	"github.com/gustavoverneck/LatteLab/lbm"
	"github.com/gustavoverneck/LatteLab/setup"
)

const (
	ExampleSimulationFile = `[Simulation]

#######################
# Required Parameters #
#######################

# Number of nodes along each axis. The lattice is periodic along every axis;
# walls are made out of Solid nodes. Planar lattices (D2Q9) should use NZ = 1.
NX = 128
NY = 64
NZ = 1

# Velocity set. One of D2Q9, D3Q7, D3Q15, D3Q19, or D3Q27.
Lattice = D2Q9

# Number of time steps to run.
Steps = 10000

# Directory which state tables and checkpoints will be written to.
Output = path/to/output/dir

# The initial geometry comes from exactly one of Setup, GeometryFile, or
# Restart. Setup can be one of LidDrivenCavity, Couette, TaylorGreen,
# KarmanVortex, or Poiseuille.
Setup = KarmanVortex

# GeometryFile is a whitespace-separated table with the columns
#     x y z flag rho ux uy uz
# where flag is 0 (Fluid), 1 (Solid), or 2 (Equilibrium). Nodes missing from
# the table are Fluid at unit density and rest. Exported state tables can be
# used here directly.
# GeometryFile = path/to/geometry.txt

# Restart resumes a run from a checkpoint written by an earlier run. Steps
# then counts the additional steps to run.
# Restart = path/to/state_001000.chk

# The relaxation factor is given by exactly one of Omega, Viscosity (in
# lattice units), or Reynolds. Reynolds uses Velocity and Length as the
# characteristic speed and length. When restarting, the checkpoint's value
# is used unless one of these is set.
Reynolds = 250

#######################
# Optional Parameters #
#######################

# Characteristic speed: lid speed, inlet speed, or vortex amplitude. Keep it
# well below the lattice speed of sound, 0.577. Default is 0.1.
# Velocity = 0.1

# Characteristic length used with Reynolds, both when setting the relaxation
# factor and when reporting the Reynolds number of the flow. Default is NY.
# Length = 64

# Cylinder radius for KarmanVortex. Default is 8.
# Radius = 8

# Number of steps over which inlets accelerate from rest to Velocity.
# RampSteps = 1000

# How often state tables, checkpoints, and progress lines are written. Zero
# turns exports and checkpoints off.
# ExportEvery = 500
# CheckpointEvery = 5000
# ProgressEvery = 100

# Output file names are state_<step>.txt and state_<step>.chk. Leading and
# trailing text can be added with these two variables.
# PrependName = pre_
# AppendName  = _app

# Number of worker goroutines. Default is the number of cores.
# Threads = 4

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`
)

type SimulationConfig struct {
	// Required
	NX, NY, NZ int
	Lattice    string
	Steps      int
	Output     string

	Setup, GeometryFile, Restart string
	Omega, Viscosity, Reynolds   float64

	// Optional
	Velocity, Length                            float64
	Radius, RampSteps                           int
	ExportEvery, CheckpointEvery, ProgressEvery int
	PrependName, AppendName                     string
	Threads                                     int
	LogFile, ProfileFile                        string
}

type SimulationWrapper struct {
	Simulation SimulationConfig
}

func DefaultSimulationWrapper() *SimulationWrapper {
	con := SimulationConfig{}
	con.NZ = 1
	con.Lattice = "D2Q9"
	con.Velocity = 0.1
	con.Radius = 8
	con.ProgressEvery = 100
	con.Threads = -1
	return &SimulationWrapper{con}
}

func (con *SimulationConfig) ValidExtents() bool {
	return con.NX > 0 && con.NY > 0 && con.NZ > 0
}
func (con *SimulationConfig) ValidLattice() bool {
	_, err := lbm.LookupVelocitySet(con.Lattice)
	return err == nil
}
func (con *SimulationConfig) ValidSteps() bool {
	return con.Steps > 0
}
func (con *SimulationConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SimulationConfig) ValidSetup() bool {
	_, err := setup.Lookup(con.Setup)
	return con.Setup != "" && err == nil
}
func (con *SimulationConfig) ValidGeometryFile() bool {
	return con.GeometryFile != ""
}
func (con *SimulationConfig) ValidRestart() bool {
	return con.Restart != ""
}
func (con *SimulationConfig) ValidOmega() bool {
	return con.Omega > 0
}
func (con *SimulationConfig) ValidViscosity() bool {
	return con.Viscosity > 0
}
func (con *SimulationConfig) ValidReynolds() bool {
	return con.Reynolds > 0
}
func (con *SimulationConfig) ValidVelocity() bool {
	return con.Velocity > 0
}
func (con *SimulationConfig) ValidThreads() bool {
	return con.Threads > 0
}
func (con *SimulationConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SimulationConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// CheckInit returns an error describing the first inconsistent value in
// con, if any.
func (con *SimulationConfig) CheckInit() error {
	if !con.ValidExtents() {
		return fmt.Errorf(
			"NX, NY, and NZ must be positive, but are (%d, %d, %d).",
			con.NX, con.NY, con.NZ,
		)
	} else if !con.ValidLattice() {
		_, err := lbm.LookupVelocitySet(con.Lattice)
		return err
	} else if !con.ValidSteps() {
		return fmt.Errorf("Steps must be positive, but is %d.", con.Steps)
	} else if !con.ValidOutput() {
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	}

	sources := 0
	for _, ok := range []bool{
		con.Setup != "", con.ValidGeometryFile(), con.ValidRestart(),
	} {
		if ok {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf(
			"Exactly one of 'Setup', 'GeometryFile', and 'Restart' must " +
				"be set.",
		)
	} else if con.Setup != "" && !con.ValidSetup() {
		_, err := setup.Lookup(con.Setup)
		return err
	}

	omegas := 0
	for _, ok := range []bool{
		con.ValidOmega(), con.ValidViscosity(), con.ValidReynolds(),
	} {
		if ok {
			omegas++
		}
	}
	if omegas > 1 || (omegas == 0 && !con.ValidRestart()) {
		return fmt.Errorf(
			"Exactly one of 'Omega', 'Viscosity', and 'Reynolds' must be " +
				"set to a positive value.",
		)
	}

	if con.ValidReynolds() && !con.ValidVelocity() {
		return fmt.Errorf(
			"'Reynolds' requires a positive 'Velocity', but Velocity = %g.",
			con.Velocity,
		)
	} else if con.Length < 0 {
		return fmt.Errorf("Length must be positive, but is %g.", con.Length)
	} else if con.ExportEvery < 0 || con.CheckpointEvery < 0 ||
		con.ProgressEvery < 0 {
		return fmt.Errorf(
			"ExportEvery, CheckpointEvery, and ProgressEvery must not be " +
				"negative.",
		)
	}

	return nil
}

// HasRelaxationFactor returns true if con sets the relaxation factor
// itself, rather than taking it from a checkpoint.
func (con *SimulationConfig) HasRelaxationFactor() bool {
	return con.ValidOmega() || con.ValidViscosity() || con.ValidReynolds()
}

// RelaxationFactor returns the BGK relaxation factor omega given by whichever
// of Omega, Viscosity, and Reynolds is set.
func (con *SimulationConfig) RelaxationFactor() (float64, error) {
	switch {
	case con.ValidOmega():
		return con.Omega, nil
	case con.ValidViscosity():
		return lbm.OmegaFromViscosity(con.Viscosity), nil
	case con.ValidReynolds():
		l := con.CharacteristicLength()
		nu := lbm.ViscosityFromReynolds(con.Reynolds, con.Velocity, l)
		return lbm.OmegaFromViscosity(nu), nil
	}
	return 0, fmt.Errorf("No relaxation factor has been set.")
}

// CharacteristicLength returns Length, or NY if Length isn't set.
func (con *SimulationConfig) CharacteristicLength() float64 {
	if con.Length == 0 {
		return float64(con.NY)
	}
	return con.Length
}

// VelocitySet returns the velocity set named by Lattice.
func (con *SimulationConfig) VelocitySet() (*lbm.VelocitySet, error) {
	return lbm.LookupVelocitySet(con.Lattice)
}

// Params returns the scenario parameters set by con.
func (con *SimulationConfig) Params() setup.Params {
	return setup.Params{
		U0: con.Velocity, Radius: con.Radius, RampSteps: con.RampSteps,
	}
}

// StateFileName returns the name of the state table written at step.
func (con *SimulationConfig) StateFileName(step int) string {
	return path.Join(con.Output, fmt.Sprintf(
		"%sstate_%06d%s.txt", con.PrependName, step, con.AppendName,
	))
}

// CheckpointFileName returns the name of the checkpoint written at step.
func (con *SimulationConfig) CheckpointFileName(step int) string {
	return path.Join(con.Output, fmt.Sprintf(
		"%sstate_%06d%s.chk", con.PrependName, step, con.AppendName,
	))
}

// ReadSimulationConfig reads and checks a [Simulation] configuration file.
func ReadSimulationConfig(fname string) (*SimulationConfig, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Simulation
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	return con, nil
}

// ParseSimulationConfig is identical to ReadSimulationConfig, but reads the
// configuration from a string.
func ParseSimulationConfig(text string) (*SimulationConfig, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		return nil, err
	}
	con := &wrap.Simulation
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	return con, nil
}

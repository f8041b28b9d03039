package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/gustavoverneck/LatteLab/analyze"
	"github.com/gustavoverneck/LatteLab/geom"
	"github.com/gustavoverneck/LatteLab/io"
	"github.com/gustavoverneck/LatteLab/lbm"
	"github.com/gustavoverneck/LatteLab/setup"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil { log.Fatal(err.Error()) }
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil { log.Fatal(err.Error()) }
	}
}

func main() {
	var (
		runStr, plotStr, exampleConfig string
		quantity, axis, at string
	)
	vars := map[string]*string {
		"Run": &runStr,
		"Plot": &plotStr,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&lbm.NumCores, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores. " +
			"A 'Threads' value in the configuration file takes precedence.",
	)
	flag.StringVar(
		&runStr, "Run", "",
		"Configuration file for [Simulation] mode.",
	)
	flag.StringVar(
		&plotStr, "Plot", "",
		"Name of the figure written in Plot mode. The state tables to plot " +
			"are given as the remaining arguments.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the " +
			"specified type to stdout. The only accepted argument is " +
			"'Simulation'.",
	)
	flag.StringVar(
		&quantity, "Quantity", "VelocityX",
		"Quantity shown in Plot mode: Density, VelocityX, VelocityY, " +
			"VelocityZ, or Speed.",
	)
	flag.StringVar(
		&axis, "Axis", "y", "Axis that Plot mode profiles run along.",
	)
	flag.StringVar(
		&at, "At", "0,0,0",
		"Comma-separated x,y,z node that Plot mode profiles pass through. " +
			"The coordinate along 'Axis' is ignored.",
	)

	flag.Parse()

	// Figure out the mode and fail with a descriptive error is the user gave
	// incorrect flags.
	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Run":
		con, err := io.ReadSimulationConfig(runStr)
		if err != nil { log.Fatal(err.Error()) }
		if con.ValidThreads() { lbm.NumCores = con.Threads }
		runMain(con)

	case "Plot":
		q, ok := analyze.QuantityFromString(quantity)
		if !ok {
			log.Fatalf("Unrecognized 'Quantity' value, '%s'.", quantity)
		}
		ax, ok := analyze.AxisFromString(axis)
		if !ok {
			log.Fatalf("'Axis' must be one of x, y, or z, but is '%s'.", axis)
		}
		point, err := parsePoint(at)
		if err != nil { log.Fatal(err.Error()) }

		tables := flag.Args()
		if len(tables) < 1 {
			log.Fatal("Must supply at least one state table.")
		}
		plotMain(plotStr, tables, q, ax, point)

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulation":
			fmt.Println(io.ExampleSimulationFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Simulation'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but lattelab " +
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// parsePoint parses a comma-separated x,y,z triplet of node coordinates.
func parsePoint(s string) ([3]int, error) {
	parts := strings.Split(s, ",")
	point := [3]int{}
	if len(parts) != 3 {
		return point, fmt.Errorf(
			"'At' must have the form x,y,z, but is '%s'.", s,
		)
	}

	for k := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(parts[k]))
		if err != nil {
			return point, fmt.Errorf(
				"'At' must have the form x,y,z, but is '%s'.", s,
			)
		}
		point[k] = v
	}
	return point, nil
}

// setupFiles creates the log and profile files requested by con.
func setupFiles(con *io.SimulationConfig) *FileGroup {
	var err error
	fg := new(FileGroup)

	// Set up log file.
	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		log.SetOutput(fg.log)
	}

	// Set up profile file.
	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil { log.Fatal(err.Error()) }
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil { log.Fatal(err.Error()) }
	}

	return fg
}

// initialState builds the state a run starts from, along with a description
// of the run and the boundary function of its scenario, if any.
func initialState(con *io.SimulationConfig) (
	st *lbm.State, run io.RunInfo, bc lbm.BoundaryFunc, err error,
) {
	if con.ValidRestart() {
		cp, err := io.ReadCheckpoint(con.Restart)
		if err != nil { return nil, run, nil, err }

		run = cp.Header.RunInfo()
		if con.HasRelaxationFactor() {
			run.Omega, err = con.RelaxationFactor()
			if err != nil { return nil, run, nil, err }
		}

		w := cp.State.Grid.Width
		if w != [3]int{con.NX, con.NY, con.NZ} ||
			cp.State.Set.Name() != strings.ToUpper(strings.TrimSpace(con.Lattice)) {
			log.Printf(
				"Checkpoint %s holds a %v %s lattice, which overrides the "+
					"configured grid.", con.Restart, w, cp.State.Set.Name(),
			)
		}

		bc, err = setup.Resume(run.Setup, cp.State, run.Params, run.Step)
		if err != nil { return nil, run, nil, err }
		if bc != nil {
			log.Printf(
				"Resuming the %d step inlet ramp of %s at step %d.",
				run.Params.RampSteps, run.Setup, run.Step,
			)
		}
		return cp.State, run, bc, nil
	}

	run.Omega, err = con.RelaxationFactor()
	if err != nil { return nil, run, nil, err }
	vs, err := con.VelocitySet()
	if err != nil { return nil, run, nil, err }
	g, err := geom.NewGrid(con.NX, con.NY, con.NZ)
	if err != nil { return nil, run, nil, err }
	st = lbm.NewState(g, vs)

	if con.ValidGeometryFile() {
		err = io.ReadStateTable(con.GeometryFile, st)
		return st, run, nil, err
	}

	build, err := setup.Lookup(con.Setup)
	if err != nil { return nil, run, nil, err }
	run.Setup, run.Params = con.Setup, con.Params()
	bc, err = build(st, run.Params)
	return st, run, bc, err
}

func runMain(con *io.SimulationConfig) {
	fg := setupFiles(con)
	defer fg.Close()

	st, run, bc, err := initialState(con)
	if err != nil { log.Fatal(err.Error()) }
	start, omega := run.Step, run.Omega

	w := st.Grid.Width
	log.Printf(
		"Running %d steps of a %dx%dx%d %s lattice from step %d with " +
			"omega = %.4g (nu = %.4g) on %d threads.",
		con.Steps, w[0], w[1], w[2], st.Set.Name(), start, omega,
		lbm.ViscosityFromOmega(omega), lbm.NumCores,
	)
	counts := lbm.CountFlags(st.Flags)
	log.Printf(
		"Nodes: %d Fluid, %d Solid, %d Equilibrium.",
		counts[lbm.Fluid], counts[lbm.Solid], counts[lbm.Equilibrium],
	)
	for _, warn := range lbm.Warnings(st.Set, w[2], omega) {
		log.Printf("Warning: %s", warn)
	}

	solver, err := lbm.NewSolver(st, omega)
	if err != nil { log.Fatal(err.Error()) }
	solver.SetStep(start)
	solver.SetBoundary(bc)
	if !con.ValidRestart() {
		solver.Equilibrium()
	}

	if err = os.MkdirAll(con.Output, 0755); err != nil {
		log.Fatal(err.Error())
	}
	if con.ExportEvery > 0 && !con.ValidRestart() {
		if err = io.WriteStateTable(con.StateFileName(start), st); err != nil {
			log.Fatal(err.Error())
		}
	}

	obs := newObserver(con, run)
	if err = solver.Run(con.Steps, obs.observe); err != nil {
		log.Fatal(err.Error())
	}

	end := solver.CurrentStep()
	if con.CheckpointEvery > 0 && end%con.CheckpointEvery != 0 {
		err = io.WriteCheckpoint(con.CheckpointFileName(end), st, obs.at(end))
		if err != nil { log.Fatal(err.Error()) }
	}
	log.Printf(
		"Finished %d steps in %s: total mass %.8g, average speed %.4g, " +
			"Re = %.4g.", con.Steps, time.Since(obs.t0),
		lbm.TotalMass(st), lbm.AverageSpeed(st),
		lbm.Reynolds(st, omega, con.CharacteristicLength()),
	)
}

// observer writes state tables, checkpoints, and progress lines while a
// run is in progress.
type observer struct {
	con        *io.SimulationConfig
	run        io.RunInfo
	start, end int
	t0         time.Time
}

func newObserver(con *io.SimulationConfig, run io.RunInfo) *observer {
	return &observer{
		con: con, run: run, start: run.Step, end: run.Step + con.Steps,
		t0: time.Now(),
	}
}

// at returns the description of the run at step.
func (obs *observer) at(step int) io.RunInfo {
	run := obs.run
	run.Step = step
	return run
}

func (obs *observer) observe(step int, st *lbm.State) error {
	con := obs.con

	export := con.ExportEvery > 0 && step%con.ExportEvery == 0
	checkpoint := con.CheckpointEvery > 0 && step%con.CheckpointEvery == 0
	progress := con.ProgressEvery > 0 &&
		(step%con.ProgressEvery == 0 || step == obs.end)
	if !export && !checkpoint && !progress && step != obs.end {
		return nil
	}

	// Nothing is written from a state which has already blown up.
	mass, err := lbm.CheckFinite(st)
	if err != nil {
		return fmt.Errorf(
			"Step %d: %s Try a smaller Velocity or a larger Viscosity.",
			step, err.Error(),
		)
	}

	if export {
		if err := io.WriteStateTable(con.StateFileName(step), st); err != nil {
			return err
		}
	}
	if checkpoint {
		err := io.WriteCheckpoint(con.CheckpointFileName(step), st, obs.at(step))
		if err != nil { return err }
	}
	if progress { obs.progress(step, st, mass) }
	return nil
}

func (obs *observer) progress(step int, st *lbm.State, mass float64) {
	done := step - obs.start
	elapsed := time.Since(obs.t0)
	eta := time.Duration(
		float64(elapsed) / float64(done) * float64(obs.end-step),
	)
	mlups := float64(st.Nodes()) * float64(done) / elapsed.Seconds() / 1e6

	log.Printf(
		"Step %d/%d (%.1f%%): mass %.8g, max speed %.4g, %.2f MLUPS, " +
			"elapsed %s, ETA %s.", step, obs.end,
		100 * float64(done) / float64(obs.end-obs.start), mass,
		lbm.MaxSpeed(st), mlups, elapsed.Truncate(time.Second),
		eta.Truncate(time.Second),
	)
}

func plotMain(
	fname string, tables []string, q analyze.Quantity, axis int, at [3]int,
) {
	profiles, err := analyze.ReadProfiles(tables, q, axis, at)
	if err != nil { log.Fatal(err.Error()) }
	for i, p := range profiles {
		min, max := p.Extremes()
		log.Printf(
			"%s: %d nodes, %s in [%.4g, %.4g].",
			tables[i], len(p.Values), q, min, max,
		)
	}

	err = analyze.PlotProfiles(fname, "", profiles...)
	if err != nil { log.Fatal(err.Error()) }
	plt.Execute()
}

package lbm

import (
	"fmt"
	"runtime"
)

const (
	// GroupSize is the batch size that kernel launches are padded to. The
	// padding instances fall outside the grid and return immediately.
	GroupSize = 64
)

// NumCores is the default number of workers used by new Solvers.
var NumCores = runtime.NumCPU()

// BoundaryFunc is called by Run between steps, before streaming, so that the
// host can update the prescribed rho and u of Equilibrium nodes. It must not
// retain the State or touch it concurrently with a phase.
type BoundaryFunc func(step int, st *State)

// Observer is called by Run after every completed step. Returning an error
// stops the run; the State is left at the end of the last full step.
type Observer func(step int, st *State) error

// Solver launches the kernels over every node of a State. Each phase is a
// fork-join over the node range: the launch returns only after every worker
// has finished, which is the barrier between Streaming, Swap and Collision.
type Solver struct {
	st       *State
	omega    float64
	workers  int
	step     int
	boundary BoundaryFunc
}

// NewSolver creates a solver for st with the relaxation factor omega. The
// flags are validated here, so a malformed geometry fails before any kernel
// runs. omega itself is not checked; see ValidOmega.
func NewSolver(st *State, omega float64) (*Solver, error) {
	if err := st.Check(); err != nil {
		return nil, err
	}
	if err := ValidateFlags(st.Flags); err != nil {
		return nil, err
	}

	s := &Solver{st: st, omega: omega}
	s.SetWorkers(NumCores)
	return s, nil
}

// SetWorkers sets the number of goroutines used per phase.
func (s *Solver) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}
	s.workers = workers
}

// SetBoundary registers a function used by Run to update boundary values.
func (s *Solver) SetBoundary(bc BoundaryFunc) { s.boundary = bc }

// SetStep sets the step counter, e.g. after restarting from a checkpoint.
func (s *Solver) SetStep(step int) { s.step = step }

func (s *Solver) State() *State    { return s.st }
func (s *Solver) Omega() float64   { return s.omega }
func (s *Solver) Workers() int     { return s.workers }
func (s *Solver) CurrentStep() int { return s.step }

// Equilibrium initializes every node from its rho and u.
func (s *Solver) Equilibrium() {
	st := s.st
	s.launch(func(n int) {
		EquilibriumNode(n, st.Set, st.F, st.Rho, st.U)
	})
}

// EquilibriumNodes re-seeds only the listed nodes from their rho and u.
func (s *Solver) EquilibriumNodes(nodes []int) error {
	st := s.st
	seen := make(map[int]bool, len(nodes))
	unique := make([]int, 0, len(nodes))
	for _, n := range nodes {
		if !st.Grid.Contains(n) {
			return fmt.Errorf(
				"Node %d is outside the grid of %d nodes.", n, st.Nodes(),
			)
		}
		// Duplicates would give a node two concurrent writers.
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	s.launchRange(len(unique), func(i int) {
		EquilibriumNode(unique[i], st.Set, st.F, st.Rho, st.U)
	})
	return nil
}

// Stream runs the streaming kernel, reading F and writing FNew.
func (s *Solver) Stream() {
	st := s.st
	s.launch(func(n int) {
		StreamNode(n, st.Grid, st.Set, st.Flags, st.F, st.FNew)
	})
}

// Swap commits FNew as the current buffer.
func (s *Solver) Swap() { s.st.Swap() }

// Collide runs the collision kernel on F in place.
func (s *Solver) Collide() {
	st, omega := s.st, s.omega
	s.launch(func(n int) {
		CollideNode(n, st.Set, st.Flags, st.F, st.Rho, st.U, omega)
	})
}

// Step advances the lattice by one time step: Streaming, Swap, Collision.
func (s *Solver) Step() {
	s.Stream()
	s.Swap()
	s.Collide()
	s.step++
}

// Run performs the given number of steps. The boundary function, if any, is
// applied before each step and the observer, if any, after it.
func (s *Solver) Run(steps int, obs Observer) error {
	for i := 0; i < steps; i++ {
		if s.boundary != nil {
			s.boundary(s.step, s.st)
		}
		s.Step()

		if obs != nil {
			if err := obs(s.step, s.st); err != nil {
				return err
			}
		}
	}
	return nil
}

// launch runs kernel over the node range padded up to a multiple of
// GroupSize.
func (s *Solver) launch(kernel func(n int)) {
	s.launchRange(launchSize(s.st.Nodes()), kernel)
}

func (s *Solver) launchRange(size int, kernel func(i int)) {
	workers := s.workers
	if workers > size {
		workers = size
	}
	if workers <= 1 {
		for i := 0; i < size; i++ {
			kernel(i)
		}
		return
	}

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go chanKernel(id, workers, size, kernel, out)
	}
	chanKernel(workers-1, workers, size, kernel, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

// chanKernel runs kernel on the indices id, id + workers, ... below size and
// then reports id to out.
func chanKernel(id, workers, size int, kernel func(i int), out chan<- int) {
	for i := id; i < size; i += workers {
		kernel(i)
	}
	out <- id
}

func launchSize(n int) int {
	return ((n + GroupSize - 1) / GroupSize) * GroupSize
}

package lbm

import (
	"fmt"
	"strings"
)

// Flag is the boundary type of a lattice node.
type Flag uint8

const (
	// Fluid nodes evolve freely and publish their moments each step.
	Fluid Flag = iota
	// Solid nodes are obstacles which reflect incoming distributions.
	Solid
	// Equilibrium nodes have their density and velocity prescribed by the
	// host and are reset to that equilibrium on every collision.
	Equilibrium
	EndFlag
)

var flagNames = [EndFlag]string{"Fluid", "Solid", "Equilibrium"}

func (f Flag) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Flag(%d)", uint8(f))
	}
	return flagNames[f]
}

// Valid returns true if f is one of the three node types.
func (f Flag) Valid() bool { return f < EndFlag }

// FlagFromString parses a flag name. Both full names and the one-letter
// abbreviations F, S and E (or EQ) are accepted.
func FlagFromString(s string) (Flag, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FLUID":
		return Fluid, true
	case "S", "SOLID":
		return Solid, true
	case "E", "EQ", "EQUILIBRIUM":
		return Equilibrium, true
	}
	return EndFlag, false
}

// ValidateFlags returns an error describing the first node whose flag lies
// outside the enumeration. Kernels do not check flags, so this must be run
// before the first launch.
func ValidateFlags(flags []Flag) error {
	for n, f := range flags {
		if !f.Valid() {
			return fmt.Errorf(
				"Node %d has flag value %d, which is not one of Fluid (%d), "+
					"Solid (%d), or Equilibrium (%d).",
				n, uint8(f), Fluid, Solid, Equilibrium,
			)
		}
	}
	return nil
}

// CountFlags returns the number of nodes of each type.
func CountFlags(flags []Flag) [EndFlag]int {
	counts := [EndFlag]int{}
	for _, f := range flags {
		if f.Valid() {
			counts[f]++
		}
	}
	return counts
}

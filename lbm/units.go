package lbm

import (
	"fmt"
)

// All conversions use lattice units, dt = dx = 1, so the speed of sound
// squared is 1/3.

// OmegaFromViscosity returns the BGK relaxation factor 1 / tau for the
// kinematic viscosity nu, where tau = 3 nu + 1/2.
func OmegaFromViscosity(nu float64) float64 { return 1 / (3*nu + 0.5) }

// ViscosityFromOmega is the inverse of OmegaFromViscosity.
func ViscosityFromOmega(omega float64) float64 { return (1/omega - 0.5) / 3 }

// ViscosityFromReynolds returns the viscosity giving Reynolds number re for a
// flow with characteristic speed u and length l.
func ViscosityFromReynolds(re, u, l float64) float64 { return u * l / re }

// ValidOmega returns true if omega lies in the stable BGK range (0, 2).
func ValidOmega(omega float64) bool { return omega > 0 && omega < 2 }

// Warnings returns human-readable warnings about a run configuration which
// is legal but likely to misbehave. The kernels never check these values.
func Warnings(vs *VelocitySet, nz int, omega float64) []string {
	warns := []string{}

	nu := ViscosityFromOmega(omega)
	if !ValidOmega(omega) {
		warns = append(warns, fmt.Sprintf(
			"Relaxation factor %g is outside of (0, 2); the run will be "+
				"unstable.", omega,
		))
	}
	if nu < 0 {
		warns = append(warns, fmt.Sprintf(
			"Kinematic viscosity %g is negative.", nu,
		))
	} else if nu > 0.5 {
		warns = append(warns, fmt.Sprintf(
			"Kinematic viscosity %g is greater than 0.5, which can cause "+
				"instabilities.", nu,
		))
	}
	if vs.Dim() < 3 && nz != 1 {
		warns = append(warns, fmt.Sprintf(
			"%s is a planar lattice, but NZ is %d. Layers will evolve "+
				"independently.", vs.Name(), nz,
		))
	}
	return warns
}

package lbm

import (
	"fmt"
	"math"
)

// TotalMass returns the sum of every distribution value of the non-solid
// nodes in the current buffer.
func TotalMass(st *State) float64 {
	Q, sum := st.Set.Q(), 0.0
	for n, flag := range st.Flags {
		if flag == Solid {
			continue
		}
		for _, v := range st.F[n*Q : n*Q+Q] {
			sum += v
		}
	}
	return sum
}

// TotalMomentum returns the summed momentum of the non-solid nodes in the
// current buffer.
func TotalMomentum(st *State) [3]float64 {
	Q, vs := st.Set.Q(), st.Set
	mom := [3]float64{}
	for n, flag := range st.Flags {
		if flag == Solid {
			continue
		}
		for q, v := range st.F[n*Q : n*Q+Q] {
			for k := 0; k < 3; k++ {
				mom[k] += float64(vs.c[q][k]) * v
			}
		}
	}
	return mom
}

// AverageSpeed returns the mean of |u| over Fluid nodes, as published by the
// last collision. It returns zero if there are no Fluid nodes.
func AverageSpeed(st *State) float64 {
	sum, count := 0.0, 0
	for n, flag := range st.Flags {
		if flag != Fluid {
			continue
		}
		u := st.Velocity(n)
		sum += math.Sqrt(dot(u, u))
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MaxSpeed returns the largest |u| over Fluid nodes.
func MaxSpeed(st *State) float64 {
	max := 0.0
	for n, flag := range st.Flags {
		if flag != Fluid {
			continue
		}
		u := st.Velocity(n)
		if s := math.Sqrt(dot(u, u)); s > max {
			max = s
		}
	}
	return max
}

// Reynolds returns the Reynolds number of the current flow for the
// characteristic length l.
func Reynolds(st *State, omega, l float64) float64 {
	return AverageSpeed(st) * l / ViscosityFromOmega(omega)
}

// CheckFinite returns the total mass of st, or an error if it is NaN or
// infinite. A non-finite mass is the first sign of an unstable run.
func CheckFinite(st *State) (float64, error) {
	mass := TotalMass(st)
	if math.IsNaN(mass) || math.IsInf(mass, 0) {
		return mass, fmt.Errorf(
			"Total mass became %g. The run is unstable.", mass,
		)
	}
	return mass, nil
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package physics implements the two hydrodynamics back-ends —
// Newtonian (ideal-gas Euler) and special-relativistic — that the
// scheme and driver packages drive through the Hydro tagged union,
// plus the back-end-agnostic AnyPrimitive wire type they both
// interpret to and from.
package physics

import (
	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"

	"sphyd/errs"
)

// LightSpeed is the speed of light in the cgs units the relativistic
// back-end works in.
const LightSpeed = 3.0e10

// Direction identifies a cardinal grid axis for flux and source-term
// computations.
type Direction int

const (
	Radial Direction = iota
	Polar
)

// RiemannSolver selects the approximate Riemann solver used by
// IntercellFlux.
type RiemannSolver int

const (
	HLLE RiemannSolver = iota
	HLLC
)

func (s RiemannSolver) String() string {
	switch s {
	case HLLE:
		return "hlle"
	case HLLC:
		return "hllc"
	default:
		return "unknown"
	}
}

// ParseRiemannSolver maps a configuration string to a RiemannSolver.
func ParseRiemannSolver(name string) (RiemannSolver, error) {
	switch name {
	case "hlle", "HLLE":
		return HLLE, nil
	case "hllc", "HLLC":
		return HLLC, nil
	default:
		return 0, chk.Err("riemann_solver %q is not available: must be hlle or hllc", name)
	}
}

// UnmarshalYAML lets config.go decode the hydro.riemann_solver key
// directly as a string ("hlle"/"hllc") rather than a numeric tag.
func (s *RiemannSolver) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseRiemannSolver(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RungeKuttaOrder selects the number of Runge-Kutta sub-stages used by
// the time-integration driver.
type RungeKuttaOrder int

const (
	RK1 RungeKuttaOrder = 1
	RK2 RungeKuttaOrder = 2
	RK3 RungeKuttaOrder = 3
)

// ParseRungeKuttaOrder maps a configuration value to a RungeKuttaOrder.
func ParseRungeKuttaOrder(order int) (RungeKuttaOrder, error) {
	switch order {
	case 1:
		return RK1, nil
	case 2:
		return RK2, nil
	case 3:
		return RK3, nil
	default:
		return 0, chk.Err("runge_kutta_order must be one of {1, 2, 3}, got %d", order)
	}
}

// UnmarshalYAML lets config.go decode hydro.runge_kutta_order as a
// plain integer, validating it in the same step.
func (o *RungeKuttaOrder) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err != nil {
		return err
	}
	parsed, err := ParseRungeKuttaOrder(n)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// AnyPrimitive is the back-end-agnostic primitive state of §3: the
// velocity fields mean beta for the Newtonian back-end and gamma*beta
// for the relativistic one; Hydro.Interpret and Hydro.Any are the
// adapter layer that knows which.
type AnyPrimitive struct {
	VelocityR   float64
	VelocityQ   float64
	MassDensity float64
	GasPressure float64
}

// Position is the (r, theta) coordinate pair at which a geometrical or
// gravitational source term is evaluated; it is errs.Position directly
// so a Fault can be positioned without a conversion step.
type Position = errs.Position

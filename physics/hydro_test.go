// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestHydroDispatchNewtonian(t *testing.T) {
	chk.PrintTitle("hydro dispatch (newtonian)")

	h := Hydro{Kind: Newtonian, Newtonian: sampleNewtonianHydro()}
	any := AnyPrimitive{VelocityR: 0.2, VelocityQ: 0.0, MassDensity: 1.0, GasPressure: 0.5}
	p := h.Interpret(any)
	if p.Kind != Newtonian {
		t.Fatalf("expected Interpret to tag Newtonian")
	}
	back := h.Any(p)
	chk.Scalar(t, "velocity_r", 1e-12, back.VelocityR, any.VelocityR)
	chk.Scalar(t, "mass_density", 1e-12, back.MassDensity, any.MassDensity)

	u := h.ToConserved(p)
	if u.Kind != Newtonian {
		t.Fatalf("expected ToConserved to tag Newtonian")
	}
	got, err := h.TryToPrimitive(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chk.Scalar(t, "round_trip_density", 1e-10, got.N.MassDensity, p.N.MassDensity)
}

func TestHydroDispatchRelativistic(t *testing.T) {
	chk.PrintTitle("hydro dispatch (relativistic)")

	h := Hydro{Kind: Relativistic, Relativistic: sampleRelativisticHydro()}
	p := Primitive{Kind: Relativistic, R: RelativisticPrimitive{MassDensity: 1.0, GammaBetaR: 1.0, GasPressure: 1e-3}}
	u := h.ToConserved(p)
	if u.Kind != Relativistic {
		t.Fatalf("expected ToConserved to tag Relativistic")
	}
	speed := h.MaxSignalSpeed(p)
	if speed <= 0 {
		t.Fatalf("expected positive max signal speed, got %g", speed)
	}
}

// TestConservedArithmeticDispatch checks Add/Sub/Scale round-trip for
// both tagged-union kinds, the operations RK stage-mixing relies on.
func TestConservedArithmeticDispatch(t *testing.T) {
	a := Conserved{Kind: Newtonian, N: NewtonianConserved{Mass: 1.0, MomentumR: 2.0, EnergyDens: 3.0}}
	b := Conserved{Kind: Newtonian, N: NewtonianConserved{Mass: 0.5, MomentumR: 1.0, EnergyDens: 1.5}}
	sum := a.Add(b)
	chk.Scalar(t, "sum.mass", 1e-12, sum.N.Mass, 1.5)
	diff := sum.Sub(b)
	chk.Scalar(t, "diff.mass", 1e-12, diff.N.Mass, a.N.Mass)
	scaled := a.Scale(2.0)
	chk.Scalar(t, "scaled.mass", 1e-12, scaled.N.Mass, 2.0)
}

func TestZeroConserved(t *testing.T) {
	h := Hydro{Kind: Newtonian}
	z := h.ZeroConserved()
	if z.Kind != Newtonian {
		t.Fatalf("expected ZeroConserved to carry the hydro's kind")
	}
	if z.N != (NewtonianConserved{}) {
		t.Fatalf("expected ZeroConserved to be the additive identity")
	}
}

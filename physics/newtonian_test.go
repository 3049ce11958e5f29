// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"sphyd/errs"
)

func sampleNewtonianHydro() NewtonianHydro {
	return NewtonianHydro{GammaLawIndex: 5.0 / 3.0, PlmTheta: 1.5, CflNumber: 0.4, RungeKuttaOrder: RK2}
}

func TestNewtonianValidate(t *testing.T) {
	chk.PrintTitle("newtonian validate")
	h := sampleNewtonianHydro()
	if err := h.Validate(); err != nil {
		t.Fatalf("expected valid parameters, got %v", err)
	}
	bad := h
	bad.PlmTheta = 3.0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected plm_theta=3.0 to be rejected")
	}
}

// TestNewtonianRoundTrip checks that ToConserved followed by
// TryToPrimitive recovers the original primitive state.
func TestNewtonianRoundTrip(t *testing.T) {
	h := sampleNewtonianHydro()
	p := NewtonianPrimitive{MassDensity: 1.2, VelocityR: 0.3, VelocityQ: -0.1, GasPressure: 0.8}
	u := h.ToConserved(p)
	got, err := h.TryToPrimitive(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chk.Scalar(t, "mass_density", 1e-12, got.MassDensity, p.MassDensity)
	chk.Scalar(t, "velocity_r", 1e-12, got.VelocityR, p.VelocityR)
	chk.Scalar(t, "velocity_q", 1e-12, got.VelocityQ, p.VelocityQ)
	chk.Scalar(t, "gas_pressure", 1e-10, got.GasPressure, p.GasPressure)
}

func TestNewtonianNegativeDensity(t *testing.T) {
	h := sampleNewtonianHydro()
	_, err := h.TryToPrimitive(NewtonianConserved{Mass: -1.0})
	if err == nil {
		t.Fatalf("expected a NegativeDensity fault")
	}
	f, ok := errs.AsFault(err)
	if !ok || f.Kind != errs.NegativeDensity {
		t.Fatalf("expected NegativeDensity fault, got %v", err)
	}
}

// TestMinmodClipsExtrema checks the PLM-monotonicity property (§8 S4):
// the minmod slope never extrapolates beyond the stencil's range, so
// no new local extrema are introduced by reconstruction.
func TestMinmodClipsExtrema(t *testing.T) {
	cases := []struct{ a, b, c float64 }{
		{1.0, 2.0, 10.0},
		{10.0, 2.0, 1.0},
		{1.0, 5.0, 1.0},
		{-2.0, -1.0, 3.0},
	}
	for _, tc := range cases {
		slope := minmodCenter(tc.a, tc.b, tc.c, 1.5)
		left := tc.b - 0.5*slope
		right := tc.b + 0.5*slope
		lo, hi := math.Min(tc.a, tc.c), math.Max(tc.a, tc.c)
		if left < lo-1e-9 || left > hi+1e-9 || right < lo-1e-9 || right > hi+1e-9 {
			t.Fatalf("minmod slope %g at stencil %v extrapolates beyond [%g, %g]", slope, tc, lo, hi)
		}
	}
}

func TestNewtonianMaxSignalSpeedPositive(t *testing.T) {
	h := sampleNewtonianHydro()
	p := NewtonianPrimitive{MassDensity: 1.0, VelocityR: 0.5, VelocityQ: 0.0, GasPressure: 1.0}
	speed := h.MaxSignalSpeed(p)
	if speed <= 0 {
		t.Fatalf("expected positive max signal speed, got %g", speed)
	}
}

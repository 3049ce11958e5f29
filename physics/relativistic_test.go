// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func sampleRelativisticHydro() RelativisticHydro {
	return RelativisticHydro{
		GammaLawIndex:        4.0 / 3.0,
		PlmTheta:             1.5,
		CflNumber:            0.4,
		RungeKuttaOrder:      RK2,
		RiemannSolverKind:    HLLC,
		HealNegativePressure: true,
	}
}

func TestRelativisticValidate(t *testing.T) {
	chk.PrintTitle("relativistic validate")
	h := sampleRelativisticHydro()
	if err := h.Validate(); err != nil {
		t.Fatalf("expected valid parameters, got %v", err)
	}
}

// TestRelativisticRoundTrip checks that ToConserved followed by
// TryToPrimitive recovers the original primitive state to within the
// root-finder's tolerance, for a mildly relativistic wind-like state.
func TestRelativisticRoundTrip(t *testing.T) {
	h := sampleRelativisticHydro()
	p := RelativisticPrimitive{MassDensity: 1.0, GammaBetaR: 2.0, GammaBetaQ: 0.0, GasPressure: 1e-3}
	u := h.ToConserved(p)
	got, err := h.TryToPrimitive(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chk.Scalar(t, "mass_density", 1e-6, got.MassDensity, p.MassDensity)
	chk.Scalar(t, "gamma_beta_r", 1e-6, got.GammaBetaR, p.GammaBetaR)
	chk.Scalar(t, "gas_pressure", 1e-6*p.GasPressure, got.GasPressure, p.GasPressure)
}

func TestRelativisticGlobalSignalSpeed(t *testing.T) {
	h := sampleRelativisticHydro()
	h.AdaptiveTimeStep = false
	speed, ok := h.GlobalSignalSpeed()
	if !ok {
		t.Fatalf("expected a global signal speed when adaptive_time_step is false")
	}
	chk.Scalar(t, "global_signal_speed", 1e-12, speed, LightSpeed)

	h.AdaptiveTimeStep = true
	_, ok = h.GlobalSignalSpeed()
	if ok {
		t.Fatalf("expected no global signal speed when adaptive_time_step is true")
	}
}

func TestRelativisticSubluminalSignalSpeed(t *testing.T) {
	h := sampleRelativisticHydro()
	p := RelativisticPrimitive{MassDensity: 1.0, GammaBetaR: 5.0, GammaBetaQ: 0.0, GasPressure: 1e-2}
	speed := h.MaxSignalSpeed(p)
	if speed <= 0 || speed >= 1.0 {
		t.Fatalf("expected max signal speed in (0, 1) as a fraction of c, got %g", speed)
	}
}

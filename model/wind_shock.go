// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"

	"gopkg.in/yaml.v3"

	"sphyd/errs"
	"sphyd/physics"
)

// WindShock is a time-steady, free-expansion relativistic wind model,
// grounded on the original implementation's windsr.rs steady-wind
// solver: a cold wind launched at GammaLaunch accelerates toward
// GammaTerminal out to ShockRadius, where mass and momentum
// conservation are enforced by a closed-form adiabatic-index-4/3 jump
// approximation instead of windsr.rs's Newton iteration (that solver's
// `solve_jump_condition` lives in a standalone CLI binary, not the
// InitialModel trait; this reproduces its qualitative shape as a pure
// function usable for ghost-block synthesis every sub-step, per §6's
// "must be pure and referentially transparent" requirement).
type WindShock struct {
	InnerRadius       float64 `yaml:"inner_radius"`
	ShockRadius       float64 `yaml:"shock_radius"`
	Luminosity        float64 `yaml:"luminosity"`
	GammaLaunch       float64 `yaml:"gamma_launch"`
	GammaTerminal     float64 `yaml:"gamma_terminal"`
	GasPressureFactor float64 `yaml:"gas_pressure_factor"` // p = factor * rho, post-shock
}

var _ InitialModel = (*WindShock)(nil)

// Name identifies this model's registry key.
func (m *WindShock) Name() string { return "wind_shock" }

func (m *WindShock) Validate() error {
	if m.InnerRadius <= 0 || m.ShockRadius <= m.InnerRadius {
		return errs.ConfigValidationErr("wind_shock model: require 0 < inner_radius < shock_radius, got inner=%g shock=%g", m.InnerRadius, m.ShockRadius)
	}
	if m.Luminosity <= 0 {
		return errs.ConfigValidationErr("wind_shock model: luminosity must be positive, got %g", m.Luminosity)
	}
	if m.GammaLaunch <= 1 || m.GammaTerminal <= m.GammaLaunch {
		return errs.ConfigValidationErr("wind_shock model: require 1 < gamma_launch < gamma_terminal, got launch=%g terminal=%g", m.GammaLaunch, m.GammaTerminal)
	}
	if m.GasPressureFactor <= 0 {
		return errs.ConfigValidationErr("wind_shock model: gas_pressure_factor must be positive, got %g", m.GasPressureFactor)
	}
	return nil
}

// gammaAt returns the coasting Lorentz factor of the free wind at
// radius r: a linear acceleration from GammaLaunch at InnerRadius up
// to GammaTerminal, saturating beyond a few times the launch radius,
// matching windsr.rs's qualitative free-expansion profile.
func (m *WindShock) gammaAt(r float64) float64 {
	accelerationRadii := 4.0 * m.InnerRadius
	frac := (r - m.InnerRadius) / accelerationRadii
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	return m.GammaLaunch + frac*(m.GammaTerminal-m.GammaLaunch)
}

func (m *WindShock) massDensityAt(r, gamma float64) float64 {
	c := physics.LightSpeed
	mdot := m.Luminosity / (gamma * c * c)
	return mdot / (4.0 * math.Pi * r * r * gamma * c)
}

// PrimitiveAt samples the free-expansion wind inside ShockRadius and a
// decelerated, shock-heated flow beyond it: gamma drops to 1 (the
// post-shock gas is at rest in the lab frame to leading order) and the
// density/pressure jump by the strong relativistic shock factors for
// an adiabatic index of 4/3.
func (m *WindShock) PrimitiveAt(pos errs.Position, time float64) physics.AnyPrimitive {
	if pos.R < m.ShockRadius {
		gamma := m.gammaAt(pos.R)
		beta := math.Sqrt(1 - 1/(gamma*gamma))
		gammaBeta := gamma * beta
		rho := m.massDensityAt(pos.R, gamma)
		return physics.AnyPrimitive{
			VelocityR:   gammaBeta,
			VelocityQ:   0,
			MassDensity: rho,
			GasPressure: 1e-6 * rho,
		}
	}
	preShockGamma := m.gammaAt(m.ShockRadius)
	preShockRho := m.massDensityAt(m.ShockRadius, preShockGamma)
	compression := 4.0 * preShockGamma // strong relativistic shock, gamma_law=4/3
	rho := compression * preShockRho * (m.ShockRadius * m.ShockRadius) / (pos.R * pos.R)
	return physics.AnyPrimitive{
		VelocityR:   0,
		VelocityQ:   0,
		MassDensity: rho,
		GasPressure: m.GasPressureFactor * rho,
	}
}

// ScalarAt tags the pre-shock (unshocked) wind with concentration 0
// and the shocked wind with concentration 1, a convenient tracer for
// testing mass-scalar advection (§8 property 3) against a model that
// is not spatially uniform.
func (m *WindShock) ScalarAt(pos errs.Position, time float64) float64 {
	if pos.R < m.ShockRadius {
		return 0
	}
	return 1
}

// UnmarshalYAML lets config.go decode the model-specific parameter
// block directly into a *WindShock.
func (m *WindShock) UnmarshalYAML(value *yaml.Node) error {
	type plain WindShock
	return value.Decode((*plain)(m))
}

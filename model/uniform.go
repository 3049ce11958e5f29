// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"gopkg.in/yaml.v3"

	"sphyd/errs"
	"sphyd/physics"
)

// Uniform is the simplest InitialModel: a static, spatially uniform
// primitive state. It exists primarily to exercise the InitialModel
// contract in tests (conservation and mass-scalar-advection
// properties both want a trivial, analytically known background).
type Uniform struct {
	MassDensity         float64 `yaml:"mass_density"`
	GasPressure         float64 `yaml:"gas_pressure"`
	RadialVelocity      float64 `yaml:"radial_velocity"`
	ScalarConcentration float64 `yaml:"scalar_concentration"`
}

var _ InitialModel = (*Uniform)(nil)

// Name identifies this model's registry key.
func (m *Uniform) Name() string { return "uniform" }

// Validate checks that the model was configured with physically
// sensible values.
func (m *Uniform) Validate() error {
	if m.MassDensity <= 0 {
		return errs.ConfigValidationErr("uniform model: mass_density must be positive, got %g", m.MassDensity)
	}
	if m.GasPressure <= 0 {
		return errs.ConfigValidationErr("uniform model: gas_pressure must be positive, got %g", m.GasPressure)
	}
	return nil
}

// PrimitiveAt returns the same state everywhere and at all times.
func (m *Uniform) PrimitiveAt(pos errs.Position, time float64) physics.AnyPrimitive {
	return physics.AnyPrimitive{
		VelocityR:   m.RadialVelocity,
		VelocityQ:   0,
		MassDensity: m.MassDensity,
		GasPressure: m.GasPressure,
	}
}

// ScalarAt returns the configured concentration everywhere.
func (m *Uniform) ScalarAt(pos errs.Position, time float64) float64 {
	return m.ScalarConcentration
}

// UnmarshalYAML lets config.go decode the model-specific parameter
// block directly into a *Uniform once `model.setup: uniform` selects
// it, mirroring inp/mat.go's per-model parameter struct.
func (m *Uniform) UnmarshalYAML(value *yaml.Node) error {
	type plain Uniform
	return value.Decode((*plain)(m))
}

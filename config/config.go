// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config ingests the YAML configuration of spec.md §6 into a
// typed Root, applies group.key=value and overlay-file overrides, and
// exposes an embedded preset table. It mirrors the shape of
// inp/sim.go's Data/SolverData: flat, tagged structs with a selector
// field (SolverData.Type there, HydroConfig.Backend and
// ModelConfig.Setup here) choosing which variant to build.
package config

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"sphyd/errs"
	"sphyd/mesh"
	"sphyd/model"
	"sphyd/physics"
)

// ControlConfig is the control group of §6: the integration window,
// host-side scheduling, and worker-pool sizing.
type ControlConfig struct {
	StartTime          float64 `yaml:"start_time"`
	FinalTime          float64 `yaml:"final_time"`
	CheckpointInterval float64 `yaml:"checkpoint_interval"`
	ProductsInterval   float64 `yaml:"products_interval,omitempty"`
	Fold               int     `yaml:"fold"`
	NumThreads         int     `yaml:"num_threads,omitempty"`
	OutputDirectory    string  `yaml:"output_directory,omitempty"`

	// SnappyCompression is accepted so overlays that set it produce a
	// clear validation error rather than silently compiling, but no
	// snappy dependency is wired up anywhere in this corpus to honor
	// it (§9 open question 3).
	SnappyCompression bool `yaml:"snappy_compression,omitempty"`
}

// Validate checks control-group invariants not already enforced by
// zero-value defaulting.
func (c ControlConfig) Validate() error {
	if c.FinalTime <= c.StartTime {
		return errs.ConfigValidationErr("control: final_time (%g) must be > start_time (%g)", c.FinalTime, c.StartTime)
	}
	if c.CheckpointInterval <= 0 {
		return errs.ConfigValidationErr("control: checkpoint_interval must be positive, got %g", c.CheckpointInterval)
	}
	if c.Fold < 1 {
		return errs.ConfigValidationErr("control: fold must be >= 1, got %d", c.Fold)
	}
	if c.NumThreads < 0 {
		return errs.ConfigValidationErr("control: num_threads must be non-negative, got %d", c.NumThreads)
	}
	if c.SnappyCompression {
		return errs.ConfigValidationErr("control: snappy_compression is not supported by this build")
	}
	return nil
}

// OutputDir returns the configured output directory, defaulting to
// the current directory.
func (c ControlConfig) OutputDir() string {
	if c.OutputDirectory == "" {
		return "."
	}
	return c.OutputDirectory
}

// ProductsEnabled reports whether products_interval was configured
// (§6: "absent ⇒ disabled").
func (c ControlConfig) ProductsEnabled() bool {
	return c.ProductsInterval > 0
}

// Threads returns the configured worker-pool size, defaulting to
// twice the number of physical cores when unset (§6).
func (c ControlConfig) Threads(numCPU int) int64 {
	if c.NumThreads > 0 {
		return int64(c.NumThreads)
	}
	return int64(2 * numCPU)
}

// HydroConfig selects and parameterises a hydrodynamics back-end. A
// single flat struct with a Backend selector, the way SolverData.Type
// picks the nonlinear-solver flavor in inp/sim.go, rather than two
// mutually-exclusive nested blocks.
type HydroConfig struct {
	Backend              string                  `yaml:"backend"`
	GammaLawIndex        float64                 `yaml:"gamma_law_index"`
	PlmTheta             float64                 `yaml:"plm_theta"`
	CflNumber            float64                 `yaml:"cfl_number"`
	RungeKuttaOrder      physics.RungeKuttaOrder `yaml:"runge_kutta_order"`
	RiemannSolver        physics.RiemannSolver   `yaml:"riemann_solver"`
	AdaptiveTimeStep     bool                    `yaml:"adaptive_time_step"`
	HealNegativePressure bool                    `yaml:"heal_negative_pressure"`
}

// UnmarshalYAML decodes the hydro group with heal_negative_pressure
// defaulting to true when the key is absent.
func (c *HydroConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain HydroConfig
	decoded := plain{HealNegativePressure: true}
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*c = HydroConfig(decoded)
	return nil
}

// Build converts the flat configuration into the physics.Hydro tagged
// union the rest of the module consumes. Callers that also need
// range-checking should call the result's Validate (Root.Validate
// does both).
func (c HydroConfig) Build() (physics.Hydro, error) {
	switch c.Backend {
	case "newtonian":
		return physics.Hydro{
			Kind: physics.Newtonian,
			Newtonian: physics.NewtonianHydro{
				GammaLawIndex:   c.GammaLawIndex,
				PlmTheta:        c.PlmTheta,
				CflNumber:       c.CflNumber,
				RungeKuttaOrder: c.RungeKuttaOrder,
			},
		}, nil
	case "relativistic":
		return physics.Hydro{
			Kind: physics.Relativistic,
			Relativistic: physics.RelativisticHydro{
				GammaLawIndex:        c.GammaLawIndex,
				PlmTheta:             c.PlmTheta,
				CflNumber:            c.CflNumber,
				RungeKuttaOrder:      c.RungeKuttaOrder,
				RiemannSolverKind:    c.RiemannSolver,
				AdaptiveTimeStep:     c.AdaptiveTimeStep,
				HealNegativePressure: c.HealNegativePressure,
			},
		}, nil
	default:
		return physics.Hydro{}, errs.ConfigValidationErr("hydro: backend must be \"newtonian\" or \"relativistic\", got %q", c.Backend)
	}
}

// Solver returns the configured Riemann solver, used by driver.Runner
// independently of which back-end is active (neither back-end
// distinguishes HLLC from HLLE; see the IntercellFlux methods in
// physics/newtonian.go and physics/relativistic.go).
func (c HydroConfig) Solver() physics.RiemannSolver {
	return c.RiemannSolver
}

// ModelConfig decodes model.setup plus the model-specific parameter
// block into a concrete model.InitialModel, deferring to the
// model.Register registry and each model's own UnmarshalYAML (§6).
type ModelConfig struct {
	Model model.InitialModel
}

// UnmarshalYAML reads the setup key to pick a registered allocator,
// then decodes the whole node into the resulting InitialModel, the
// way model.Uniform's own UnmarshalYAML decodes its parameter fields.
func (m *ModelConfig) UnmarshalYAML(value *yaml.Node) error {
	var selector struct {
		Setup string `yaml:"setup"`
	}
	if err := value.Decode(&selector); err != nil {
		return err
	}
	if selector.Setup == "" {
		return errs.ConfigValidationErr("model: setup key is required")
	}
	built, err := model.New(selector.Setup)
	if err != nil {
		return errs.ConfigValidationErr("model: %v", err)
	}
	if err := value.Decode(built); err != nil {
		return err
	}
	m.Model = built
	return nil
}

// modelConfigWire is the CBOR wire form of ModelConfig: the registry
// key plus the raw encoded parameter block, decoded in two passes
// because cbor (like encoding/json) cannot populate an interface value
// without first learning which concrete type to allocate.
type modelConfigWire struct {
	Setup  string
	Params cbor.RawMessage
}

// MarshalCBOR encodes the model's registry name alongside its own CBOR
// encoding, so snapshot.Read can reconstruct the concrete type on the
// way back in (spec.md §8 property 5).
func (m ModelConfig) MarshalCBOR() ([]byte, error) {
	if m.Model == nil {
		return nil, fmt.Errorf("config: cannot encode a snapshot with no model configured")
	}
	params, err := cbor.Marshal(m.Model)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(modelConfigWire{Setup: m.Model.Name(), Params: params})
}

// UnmarshalCBOR rebuilds the concrete model named by the wire form's
// Setup field via the model registry, then decodes Params into it.
func (m *ModelConfig) UnmarshalCBOR(data []byte) error {
	var w modelConfigWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	built, err := model.New(w.Setup)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cbor.Unmarshal(w.Params, built); err != nil {
		return err
	}
	m.Model = built
	return nil
}

// Root is the top-level configuration object of §6: the four groups,
// decoded directly by gopkg.in/yaml.v3 (no intermediate map, unlike
// the override-patching path in patch.go which deliberately stays
// untyped).
type Root struct {
	Control ControlConfig `yaml:"control"`
	Mesh    mesh.Mesh     `yaml:"mesh"`
	Hydro   HydroConfig   `yaml:"hydro"`
	Model   ModelConfig   `yaml:"model"`
}

// Parse decodes raw YAML bytes into a Root without validating it.
func Parse(data []byte) (Root, error) {
	var root Root
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Root{}, fmt.Errorf("config: %w", err)
	}
	return root, nil
}

// Validate runs every group's parameter checks, mirroring spec.md §7's
// "configuration errors reported before any integration occurs".
func (r Root) Validate() error {
	if err := r.Control.Validate(); err != nil {
		return err
	}
	if err := r.Mesh.Validate(); err != nil {
		return err
	}
	hydro, err := r.Hydro.Build()
	if err != nil {
		return err
	}
	if err := hydro.Validate(); err != nil {
		return err
	}
	if r.Model.Model == nil {
		return errs.ConfigValidationErr("model: no model configured")
	}
	return r.Model.Model.Validate()
}

// BuildHydro builds the typed physics.Hydro the rest of the module uses;
// callers should call Validate first.
func (r Root) BuildHydro() (physics.Hydro, error) {
	return r.Hydro.Build()
}

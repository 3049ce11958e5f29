// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/cpmech/gosl/chk"
)

var baseYAML = []byte(`
control:
  start_time: 0.0
  final_time: 1.0
  checkpoint_interval: 0.1
  fold: 10
mesh:
  reference_radius: 1.0
  inner_radius: 1.0
  outer_radius: 10.0
  inner_excision_speed: 0.0
  outer_excision_speed: 0.0
  num_polar_zones: 16
  block_size: 4
hydro:
  backend: newtonian
  gamma_law_index: 1.6666666666666667
  plm_theta: 1.5
  cfl_number: 0.4
  runge_kutta_order: 1
  riemann_solver: hlle
model:
  setup: uniform
  mass_density: 1.0
  gas_pressure: 1.0
  radial_velocity: 0.0
`)

// TestPatchIsIdempotent checks spec.md §8 property 4: applying the
// same overlay twice yields the same configuration as applying it
// once.
func TestPatchIsIdempotent(t *testing.T) {
	chk.PrintTitle("config: overlay patch is idempotent")

	overlay := []byte(`
mesh:
  outer_radius: 25.0
hydro:
  cfl_number: 0.2
`)

	once, err := Patch(baseYAML, overlay)
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	twice, err := Patch(once, overlay)
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	rootOnce, err := Parse(once)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rootTwice, err := Parse(twice)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(rootOnce, rootTwice) {
		t.Fatalf("expected patching twice to match patching once:\n%#v\nvs\n%#v", rootOnce, rootTwice)
	}
}

// TestSetPathIsIdempotent checks the same property for the
// group.key=value override form.
func TestSetPathIsIdempotent(t *testing.T) {
	once, err := SetPath(baseYAML, "hydro.runge_kutta_order", "3")
	if err != nil {
		t.Fatalf("SetPath failed: %v", err)
	}
	twice, err := SetPath(once, "hydro.runge_kutta_order", "3")
	if err != nil {
		t.Fatalf("SetPath failed: %v", err)
	}

	rootOnce, err := Parse(once)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rootTwice, err := Parse(twice)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(rootOnce, rootTwice) {
		t.Fatalf("expected patching twice to match patching once")
	}
}

// TestSetPathPreservesUntouchedKeys checks that an override only
// disturbs the key it names.
func TestSetPathPreservesUntouchedKeys(t *testing.T) {
	patched, err := SetPath(baseYAML, "mesh.block_size", "8")
	if err != nil {
		t.Fatalf("SetPath failed: %v", err)
	}
	root, err := Parse(patched)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if root.Mesh.BlockSize != 8 {
		t.Fatalf("expected block_size override to apply, got %d", root.Mesh.BlockSize)
	}
	if root.Mesh.NumPolarZones != 16 {
		t.Fatalf("expected num_polar_zones to be untouched, got %d", root.Mesh.NumPolarZones)
	}
}

// TestApplyRunsOverridesInOrder checks that later overrides win over
// earlier ones touching the same key.
func TestApplyRunsOverridesInOrder(t *testing.T) {
	overrides := []Override{
		{KeyPath: "hydro.cfl_number", Value: "0.1"},
		{KeyPath: "hydro.cfl_number", Value: "0.3"},
	}
	patched, err := Apply(baseYAML, overrides)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	root, err := Parse(patched)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	chk.Scalar(t, "cfl_number", 1e-12, root.Hydro.CflNumber, 0.3)
}

func TestParseOverrideClassifiesKeyValue(t *testing.T) {
	o, ok := ParseOverride("mesh.block_size=8")
	if !ok {
		t.Fatalf("expected group.key=value to classify as a key/value override")
	}
	if o.KeyPath != "mesh.block_size" || o.Value != "8" {
		t.Fatalf("unexpected override: %+v", o)
	}

	_, ok = ParseOverride("overlay.yaml")
	if ok {
		t.Fatalf("expected a bare path to not classify as a key/value override")
	}
}

func TestMergeMapsOverwritesOnlyNamedKeys(t *testing.T) {
	base := map[string]interface{}{
		"a": 1,
		"nested": map[string]interface{}{
			"x": 1,
			"y": 2,
		},
	}
	overlay := map[string]interface{}{
		"nested": map[string]interface{}{
			"y": 99,
		},
	}
	merged := mergeMaps(base, overlay)
	nested := merged["nested"].(map[string]interface{})
	if nested["x"] != 1 || nested["y"] != 99 {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	if merged["a"] != 1 {
		t.Fatalf("expected untouched top-level key preserved")
	}
}

func TestBytesNotReused(t *testing.T) {
	// Patch must not mutate its input slices, since CLI override
	// chains read the same base repeatedly.
	cp := append([]byte(nil), baseYAML...)
	_, err := Patch(baseYAML, []byte(`mesh: {block_size: 8}`))
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if !bytes.Equal(cp, baseYAML) {
		t.Fatalf("Patch mutated its base input")
	}
}

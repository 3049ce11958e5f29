// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockstate

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"sphyd/errs"
	"sphyd/mesh"
	"sphyd/model"
	"sphyd/physics"
)

func sampleHydro() physics.Hydro {
	return physics.Hydro{
		Kind:      physics.Newtonian,
		Newtonian: physics.NewtonianHydro{GammaLawIndex: 5.0 / 3.0, PlmTheta: 1.5, CflNumber: 0.4, RungeKuttaOrder: physics.RK2},
	}
}

func sampleGeometry(t *testing.T) *mesh.GridGeometry {
	extent := mesh.SphericalPolarExtent{InnerRadius: 1.0, OuterRadius: 2.0, LowerTheta: 0, UpperTheta: math.Pi}
	grid := mesh.SphericalPolarGrid{Extent: extent, NumZonesR: 4, NumZonesQ: 8}
	geo, err := mesh.NewGridGeometry(grid)
	if err != nil {
		t.Fatalf("NewGridGeometry failed: %v", err)
	}
	return geo
}

// TestFromModelRoundTrip checks §4.3: from_model followed by
// try_to_primitive recovers the sampled primitive state.
func TestFromModelRoundTrip(t *testing.T) {
	chk.PrintTitle("block state round trip")

	hydro := sampleHydro()
	geo := sampleGeometry(t)
	m := &model.Uniform{MassDensity: 1.0, GasPressure: 1.0, RadialVelocity: 0.1}

	bs := FromModel(m, hydro, geo, 0.0)
	primitives, err := bs.TryToPrimitive(hydro, geo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := primitives.At(0, 0)
	chk.Scalar(t, "mass_density", 1e-10, got.N.MassDensity, 1.0)
	chk.Scalar(t, "velocity_r", 1e-10, got.N.VelocityR, 0.1)
}

// TestMassScalarAdvectionInvariant checks §8 property 3: for a uniform
// scalar field equal to c0, scalar_mass/lab_frame_mass stays equal to
// c0 in every cell right after initialisation.
func TestMassScalarAdvectionInvariant(t *testing.T) {
	hydro := sampleHydro()
	geo := sampleGeometry(t)
	c0 := 0.37
	m := &model.Uniform{MassDensity: 1.0, GasPressure: 1.0, ScalarConcentration: c0}

	bs := FromModel(m, hydro, geo, 0.0)
	for i := 0; i < geo.NumZonesR; i++ {
		for j := 0; j < geo.NumZonesQ; j++ {
			u := bs.Conserved.At(i, j)
			concentration := bs.ScalarMass.At(i, j) / u.LabFrameMass()
			chk.Scalar(t, "scalar_mass/lab_frame_mass", 1e-10, concentration, c0)
		}
	}
}

func TestInnerOuterBlockIndexes(t *testing.T) {
	s := &State{Solution: map[mesh.BlockIndex]BlockState{
		{I: -2}: {}, {I: 0}: {}, {I: 3}: {},
	}}
	min, max, ok := s.InnerOuterBlockIndexes()
	if !ok || min != -2 || max != 3 {
		t.Fatalf("expected min=-2 max=3, got min=%d max=%d ok=%v", min, max, ok)
	}
	inner, outer, ok := s.InnerOuterBoundaryIndexes()
	if !ok || inner.I != -3 || outer.I != 4 {
		t.Fatalf("expected boundary indexes -3/4, got %v/%v", inner, outer)
	}
}

// TestTryToPrimitiveAttachesPosition checks §8 S5: a seeded failure
// surfaces a fault positioned at the offending cell's centroid.
func TestTryToPrimitiveAttachesPosition(t *testing.T) {
	hydro := sampleHydro()
	geo := sampleGeometry(t)
	bs := BlockState{
		Conserved:  FromModel(&model.Uniform{MassDensity: 1.0, GasPressure: 1.0}, hydro, geo, 0.0).Conserved,
		ScalarMass: FromModel(&model.Uniform{MassDensity: 1.0, GasPressure: 1.0}, hydro, geo, 0.0).ScalarMass,
	}
	bad := bs.Conserved.At(1, 2)
	bad.N.Mass = -1.0
	bs.Conserved.Set(1, 2, bad)

	_, err := bs.TryToPrimitive(hydro, geo)
	if err == nil {
		t.Fatalf("expected an error from the seeded negative-density cell")
	}
	f, ok := errs.AsFault(err)
	if !ok {
		t.Fatalf("expected a *errs.Fault, got %T", err)
	}
	if !f.HasPosition {
		t.Fatalf("expected the fault to carry a position")
	}
	chk.Scalar(t, "fault.position.r", 1e-9, f.Position.R, geo.CellCenters[1][2].R)
}

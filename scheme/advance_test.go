// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scheme

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"sphyd/blockstate/block"
	"sphyd/mesh"
	"sphyd/physics"
)

func sampleSchemeHydro() physics.Hydro {
	return physics.Hydro{
		Kind:      physics.Newtonian,
		Newtonian: physics.NewtonianHydro{GammaLawIndex: 5.0 / 3.0, PlmTheta: 1.5, CflNumber: 0.4, RungeKuttaOrder: physics.RK2},
	}
}

func sampleSchemeGeometry(t *testing.T, nq int) *mesh.GridGeometry {
	extent := mesh.SphericalPolarExtent{InnerRadius: 1.0, OuterRadius: 2.0, LowerTheta: 0, UpperTheta: math.Pi}
	grid := mesh.SphericalPolarGrid{Extent: extent, NumZonesR: 4, NumZonesQ: nq}
	geo, err := mesh.NewGridGeometry(grid)
	if err != nil {
		t.Fatalf("NewGridGeometry failed: %v", err)
	}
	return geo
}

// uniformStageInput builds a StageInput over a geometry where every
// cell (real and ghost) holds the same primitive state and scalar
// concentration, so PLM gradients vanish everywhere.
func uniformStageInput(geo *mesh.GridGeometry, hydro physics.Hydro, p physics.Primitive, c, dt float64) StageInput {
	nr, nq := geo.NumZonesR, geo.NumZonesQ
	primitives := block.NewGrid[physics.Primitive](nr, nq)
	scalars := block.NewGrid[float64](nr, nq)
	conserved := block.NewGrid[physics.Conserved](nr, nq)
	u := hydro.ToConserved(p)
	for i := 0; i < nr; i++ {
		for j := 0; j < nq; j++ {
			primitives.Set(i, j, p)
			scalars.Set(i, j, c)
			conserved.Set(i, j, u.Scale(geo.CellVolumes[i][j]))
		}
	}
	row := make([]physics.Primitive, nq)
	srow := make([]float64, nq)
	for j := range row {
		row[j] = p
		srow[j] = c
	}
	ghost := GhostFromSamples(row, row, srow, srow)

	return StageInput{
		Geometry:   geo,
		Hydro:      hydro,
		Conserved:  conserved,
		Primitives: primitives,
		Scalars:    scalars,
		InnerGhost: ghost,
		OuterGhost: ghost,
		Solver:     physics.HLLE,
		Dt:         dt,
	}
}

// TestAdvanceBlockZeroVelocityConservesMass checks that a uniform,
// at-rest state has zero mass flux through every face, so total mass
// is unchanged by one RK sub-step (a per-block instance of §8
// property 2).
func TestAdvanceBlockZeroVelocityConservesMass(t *testing.T) {
	chk.PrintTitle("scheme: zero-velocity mass conservation")

	hydro := sampleSchemeHydro()
	geo := sampleSchemeGeometry(t, 8)
	p := physics.Primitive{Kind: physics.Newtonian, N: physics.NewtonianPrimitive{
		MassDensity: 1.0, GasPressure: 1.0,
	}}
	in := uniformStageInput(geo, hydro, p, 0.5, 1e-4)

	before := 0.0
	in.Conserved.ForEach(func(i, j int, u physics.Conserved) { before += u.LabFrameMass() })

	out := AdvanceBlock(in)

	after := 0.0
	out.Conserved.ForEach(func(i, j int, u physics.Conserved) { after += u.LabFrameMass() })

	chk.Scalar(t, "total mass before/after", 1e-8, after, before)
}

// TestAdvanceBlockUniformScalarUnchanged checks §8 property 3 at the
// per-block level: a uniform passive-scalar concentration field with
// zero velocity has zero scalar-mass flux through every face.
func TestAdvanceBlockUniformScalarUnchanged(t *testing.T) {
	hydro := sampleSchemeHydro()
	geo := sampleSchemeGeometry(t, 8)
	c0 := 0.42
	p := physics.Primitive{Kind: physics.Newtonian, N: physics.NewtonianPrimitive{
		MassDensity: 1.0, GasPressure: 1.0,
	}}
	in := uniformStageInput(geo, hydro, p, c0, 1e-4)

	out := AdvanceBlock(in)

	for i := 0; i < geo.NumZonesR; i++ {
		for j := 0; j < geo.NumZonesQ; j++ {
			chk.Scalar(t, "scalar mass unchanged", 1e-8, out.ScalarMass.At(i, j), in.Scalars.At(i, j)*1.0*geo.CellVolumes[i][j])
		}
	}
}

// TestAdvanceBlockOneDimensionalModeRuns is a smoke test of a
// single-polar-zone block (the 1-D mode of §3), in which AdvanceBlock
// skips the polar sweep: one sub-step of a uniform, radially moving
// state must leave every cell's mass finite.
func TestAdvanceBlockOneDimensionalModeRuns(t *testing.T) {
	hydro := sampleSchemeHydro()
	geo := sampleSchemeGeometry(t, 1)
	p := physics.Primitive{Kind: physics.Newtonian, N: physics.NewtonianPrimitive{
		MassDensity: 1.0, VelocityR: 0.1, GasPressure: 1.0,
	}}
	in := uniformStageInput(geo, hydro, p, 0.1, 1e-4)
	out := AdvanceBlock(in)
	out.Conserved.ForEach(func(i, j int, u physics.Conserved) {
		if math.IsNaN(u.Mass) || math.IsInf(u.Mass, 0) {
			t.Fatalf("non-finite mass at (%d,%d): %v", i, j, u.Mass)
		}
	})
}

// TestAdvanceBlockRelativisticRuns exercises the relativistic back-end
// through the same pipeline for an at-rest uniform state.
func TestAdvanceBlockRelativisticRuns(t *testing.T) {
	hydro := physics.Hydro{
		Kind: physics.Relativistic,
		Relativistic: physics.RelativisticHydro{
			GammaLawIndex: 4.0 / 3.0, PlmTheta: 1.5, CflNumber: 0.4,
			RungeKuttaOrder: physics.RK2, RiemannSolverKind: physics.HLLC,
			HealNegativePressure: true,
		},
	}
	geo := sampleSchemeGeometry(t, 8)
	p := physics.Primitive{Kind: physics.Relativistic, R: physics.RelativisticPrimitive{
		MassDensity: 1.0, GasPressure: 1.0,
	}}
	in := uniformStageInput(geo, hydro, p, 0.2, 1e-6)

	before := 0.0
	in.Conserved.ForEach(func(i, j int, u physics.Conserved) { before += u.LabFrameMass() })
	out := AdvanceBlock(in)
	after := 0.0
	out.Conserved.ForEach(func(i, j int, u physics.Conserved) { after += u.LabFrameMass() })
	chk.Scalar(t, "relativistic total mass before/after", 1e-6, after, before)
}

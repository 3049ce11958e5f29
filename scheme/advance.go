// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scheme implements the per-block Runge-Kutta sub-step: ghost
// assembly, PLM reconstruction, intercell fluxes, and the divergence
// plus geometric/gravitational source update of a single block's
// conserved and scalar-mass arrays (spec.md §4.5).
package scheme

import (
	"github.com/cpmech/gosl/la"

	"sphyd/blockstate"
	"sphyd/blockstate/block"
	"sphyd/mesh"
	"sphyd/physics"
)

// RadialGhost holds the two radial rows of primitive and scalar state
// adjacent to one end of a block, ordered by increasing r (so for the
// inner ghost, Primitives[0] is two cells outside the block and
// Primitives[1] is the cell immediately adjacent to it; for the outer
// ghost the order is reversed: Primitives[0] is adjacent,
// Primitives[1] is two cells out). The two-row depth lets the PLM
// gradient of the ghost cell nearest the block be computed too, which
// the reconstruction at the block's own boundary face needs.
type RadialGhost struct {
	Primitives [2][]physics.Primitive // each length NumZonesQ
	Scalars    [2][]float64           // each length NumZonesQ
}

// StageInput is everything AdvanceBlock needs to perform one RK
// sub-step on a single block. Primitives and Scalars are the block's
// own stage-1 values (§4.5 step 1), already computed by the caller via
// blockstate.BlockState.TryToPrimitive/ScalarConcentrations.
type StageInput struct {
	Geometry   *mesh.GridGeometry
	Hydro      physics.Hydro
	Conserved  block.Grid[physics.Conserved]
	Primitives block.Grid[physics.Primitive]
	Scalars    block.Grid[float64]
	InnerGhost RadialGhost
	OuterGhost RadialGhost
	Solver     physics.RiemannSolver
	Dt         float64
}

// reflectPolar mirrors a primitive state across the polar axis,
// flipping the sign of its polar velocity component, for the
// reflecting ghost cells used at theta=0 and theta=pi (§4.5, Open
// Question 1).
func reflectPolar(p physics.Primitive) physics.Primitive {
	switch p.Kind {
	case physics.Newtonian:
		n := p.N
		n.VelocityQ = -n.VelocityQ
		return physics.Primitive{Kind: physics.Newtonian, N: n}
	case physics.Relativistic:
		r := p.R
		r.GammaBetaQ = -r.GammaBetaQ
		return physics.Primitive{Kind: physics.Relativistic, R: r}
	default:
		panic("scheme: unhandled primitive kind in reflectPolar")
	}
}

// radialPrimitiveAt returns the primitive state at radial index i
// (which may run from -2 to NumZonesR+1 to reach the ghost rows) and
// polar index j.
func (in *StageInput) radialPrimitiveAt(i, j int) physics.Primitive {
	nr := in.Geometry.NumZonesR
	switch {
	case i == -2:
		return in.InnerGhost.Primitives[0][j]
	case i == -1:
		return in.InnerGhost.Primitives[1][j]
	case i >= 0 && i < nr:
		return in.Primitives.At(i, j)
	case i == nr:
		return in.OuterGhost.Primitives[0][j]
	case i == nr+1:
		return in.OuterGhost.Primitives[1][j]
	default:
		panic("scheme: radial stencil index out of range")
	}
}

func (in *StageInput) radialScalarAt(i, j int) float64 {
	nr := in.Geometry.NumZonesR
	switch {
	case i == -2:
		return in.InnerGhost.Scalars[0][j]
	case i == -1:
		return in.InnerGhost.Scalars[1][j]
	case i >= 0 && i < nr:
		return in.Scalars.At(i, j)
	case i == nr:
		return in.OuterGhost.Scalars[0][j]
	case i == nr+1:
		return in.OuterGhost.Scalars[1][j]
	default:
		panic("scheme: radial stencil index out of range")
	}
}

// polarPrimitiveAt returns the primitive state at fixed radial cell i
// and polar index j, which may be -1 or NumZonesQ to reach the
// reflecting ghost cell at a pole.
func (in *StageInput) polarPrimitiveAt(i, j int) physics.Primitive {
	nq := in.Geometry.NumZonesQ
	switch {
	case j == -1:
		return reflectPolar(in.Primitives.At(i, 0))
	case j >= 0 && j < nq:
		return in.Primitives.At(i, j)
	case j == nq:
		return reflectPolar(in.Primitives.At(i, nq-1))
	default:
		panic("scheme: polar stencil index out of range")
	}
}

func (in *StageInput) polarScalarAt(i, j int) float64 {
	nq := in.Geometry.NumZonesQ
	switch {
	case j == -1:
		return in.Scalars.At(i, 0)
	case j >= 0 && j < nq:
		return in.Scalars.At(i, j)
	case j == nq:
		return in.Scalars.At(i, nq-1)
	default:
		panic("scheme: polar stencil index out of range")
	}
}

// radialGradientAt returns the PLM-limited radial slope of the
// primitive state at (i, j), valid for i in [-1, NumZonesR].
func (in *StageInput) radialGradientAt(i, j int) physics.Primitive {
	return in.Hydro.PLMGradientPrimitive(
		in.radialPrimitiveAt(i-1, j),
		in.radialPrimitiveAt(i, j),
		in.radialPrimitiveAt(i+1, j),
	)
}

func (in *StageInput) radialScalarGradientAt(i, j int) float64 {
	return in.Hydro.PLMGradientScalar(
		in.radialScalarAt(i-1, j),
		in.radialScalarAt(i, j),
		in.radialScalarAt(i+1, j),
	)
}

// polarGradientAt returns the PLM-limited polar slope of the
// primitive state at (i, j), valid for j in [0, NumZonesQ-1].
func (in *StageInput) polarGradientAt(i, j int) physics.Primitive {
	return in.Hydro.PLMGradientPrimitive(
		in.polarPrimitiveAt(i, j-1),
		in.polarPrimitiveAt(i, j),
		in.polarPrimitiveAt(i, j+1),
	)
}

func (in *StageInput) polarScalarGradientAt(i, j int) float64 {
	return in.Hydro.PLMGradientScalar(
		in.polarScalarAt(i, j-1),
		in.polarScalarAt(i, j),
		in.polarScalarAt(i, j+1),
	)
}

// scalarDensity returns the reconstructed conserved-like density that
// advects with the flow velocity: concentration * lab-frame mass
// density. This is the quantity IntercellFlux's sl/sr parameters model
// (it obeys the same advection equation as mass, scaled by c).
func scalarDensity(p physics.Primitive, concentration float64) float64 {
	return concentration * p.MassDensity() * p.LorentzFactor()
}

// radialFaceStates reconstructs the left/right primitive and scalar
// states at radial face f (0 <= f <= NumZonesR), between cell f-1 and
// cell f.
func (in *StageInput) radialFaceStates(f, j int) (pl, pr physics.Primitive, sl, sr float64) {
	gl := in.radialGradientAt(f-1, j)
	gr := in.radialGradientAt(f, j)
	pl = in.radialPrimitiveAt(f-1, j).Add(gl.Scale(0.5))
	pr = in.radialPrimitiveAt(f, j).Sub(gr.Scale(0.5))

	sgl := in.radialScalarGradientAt(f - 1, j)
	sgr := in.radialScalarGradientAt(f, j)
	cl := in.radialScalarAt(f-1, j) + 0.5*sgl
	cr := in.radialScalarAt(f, j) - 0.5*sgr
	sl = scalarDensity(pl, cl)
	sr = scalarDensity(pr, cr)
	return
}

// polarFaceStates reconstructs the left/right states at polar face g
// (1 <= g <= NumZonesQ-1; the pole faces g=0 and g=NumZonesQ carry
// zero area and are never reconstructed, matching Open Question 1).
func (in *StageInput) polarFaceStates(i, g int) (pl, pr physics.Primitive, sl, sr float64) {
	gl := in.polarGradientAt(i, g-1)
	gr := in.polarGradientAt(i, g)
	pl = in.polarPrimitiveAt(i, g-1).Add(gl.Scale(0.5))
	pr = in.polarPrimitiveAt(i, g).Sub(gr.Scale(0.5))

	sgl := in.polarScalarGradientAt(i, g-1)
	sgr := in.polarScalarGradientAt(i, g)
	cl := in.polarScalarAt(i, g-1) + 0.5*sgl
	cr := in.polarScalarAt(i, g) - 0.5*sgr
	sl = scalarDensity(pl, cl)
	sr = scalarDensity(pr, cr)
	return
}

// AdvanceBlock runs steps 2 through 6 of §4.5 on a single block,
// returning the updated block state. Step 1 (staging primitives and
// scalar concentrations) is the caller's responsibility since it needs
// access to the previous RK sub-stage's conserved arrays, which vary
// by sub-stage and are not part of this block's own persistent state.
func AdvanceBlock(in StageInput) blockstate.BlockState {
	nr, nq := in.Geometry.NumZonesR, in.Geometry.NumZonesQ
	hydro := in.Hydro

	radialFlux := make([][]physics.Conserved, nr+1)
	// radialScalarFlux is a plain [][]float64 numeric buffer, allocated
	// with gosl/la.MatAlloc the way fem/e_pp.go allocates its per-element
	// stiffness-matrix buffers (o.Kll = la.MatAlloc(o.Np, o.Np)).
	radialScalarFlux := la.MatAlloc(nr+1, nq)
	for f := 0; f <= nr; f++ {
		radialFlux[f] = make([]physics.Conserved, nq)
		for j := 0; j < nq; j++ {
			pl, pr, sl, sr := in.radialFaceStates(f, j)
			flux, sflux := hydro.IntercellFlux(pl, pr, sl, sr, in.Solver, physics.Radial)
			radialFlux[f][j] = flux
			radialScalarFlux[f][j] = sflux
		}
	}

	var polarFlux [][]physics.Conserved
	var polarScalarFlux [][]float64
	if nq > 1 {
		polarFlux = make([][]physics.Conserved, nr)
		polarScalarFlux = la.MatAlloc(nr, nq+1)
		for i := 0; i < nr; i++ {
			polarFlux[i] = make([]physics.Conserved, nq+1)
			for g := 1; g < nq; g++ {
				pl, pr, sl, sr := in.polarFaceStates(i, g)
				flux, sflux := hydro.IntercellFlux(pl, pr, sl, sr, in.Solver, physics.Polar)
				polarFlux[i][g] = flux
				polarScalarFlux[i][g] = sflux
			}
			// g == 0 and g == nq: zero-area pole faces, left at the
			// zero value (both flux slices were allocated above).
		}
	}

	conserved := block.NewGrid[physics.Conserved](nr, nq)
	scalarMass := block.NewGrid[float64](nr, nq)
	for i := 0; i < nr; i++ {
		for j := 0; j < nq; j++ {
			volume := in.Geometry.CellVolumes[i][j]
			center := in.Geometry.CellCenters[i][j]
			p := in.Primitives.At(i, j)

			outerArea := in.Geometry.RadialFaceAreas[i+1][j]
			innerArea := in.Geometry.RadialFaceAreas[i][j]
			delta := hydro.ZeroConserved()
			delta = delta.Sub(radialFlux[i+1][j].Scale(outerArea))
			delta = delta.Add(radialFlux[i][j].Scale(innerArea))

			deltaScalar := -radialScalarFlux[i+1][j]*outerArea + radialScalarFlux[i][j]*innerArea

			if nq > 1 {
				upperArea := in.Geometry.PolarFaceAreas[i][j+1]
				lowerArea := in.Geometry.PolarFaceAreas[i][j]
				delta = delta.Sub(polarFlux[i][j+1].Scale(upperArea))
				delta = delta.Add(polarFlux[i][j].Scale(lowerArea))
				deltaScalar += -polarScalarFlux[i][j+1]*upperArea + polarScalarFlux[i][j]*lowerArea
			}

			geomSource := hydro.GeometricalSourceTerms(p, center)
			gravSource := hydro.GravitationalSourceTerms(p, center)
			delta = delta.Add(geomSource.Scale(volume)).Add(gravSource.Scale(volume))

			updated := in.Conserved.At(i, j).Add(delta.Scale(in.Dt))
			conserved.Set(i, j, updated)

			scalarMassOld := in.Scalars.At(i, j) * p.MassDensity() * p.LorentzFactor() * volume
			scalarMass.Set(i, j, scalarMassOld+in.Dt*deltaScalar)
		}
	}

	return blockstate.BlockState{Conserved: conserved, ScalarMass: scalarMass}
}

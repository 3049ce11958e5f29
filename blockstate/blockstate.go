// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blockstate implements BlockState (per-block conserved and
// scalar-mass arrays) and State (the global map of block index to
// block state, time, and rational iteration counter), per §3 and §4.3
// /§4.4.
package blockstate

import (
	"math/big"

	"sphyd/blockstate/block"
	"sphyd/errs"
	"sphyd/mesh"
	"sphyd/model"
	"sphyd/physics"
)

// BlockState is a single block's conserved and passive-scalar-mass
// arrays, held as copy-on-write grids (§3).
type BlockState struct {
	Conserved  block.Grid[physics.Conserved]
	ScalarMass block.Grid[float64]
}

// FromModel samples m at every cell center of geometry, interprets the
// result through hydro, and converts to conserved quantities weighted
// by cell volume (§4.3).
func FromModel(m model.InitialModel, hydro physics.Hydro, geometry *mesh.GridGeometry, time float64) BlockState {
	conserved := block.NewGrid[physics.Conserved](geometry.NumZonesR, geometry.NumZonesQ)
	scalarMass := block.NewGrid[float64](geometry.NumZonesR, geometry.NumZonesQ)

	for i := 0; i < geometry.NumZonesR; i++ {
		for j := 0; j < geometry.NumZonesQ; j++ {
			center := geometry.CellCenters[i][j]
			any := m.PrimitiveAt(center, time)
			concentration := m.ScalarAt(center, time)
			p := hydro.Interpret(any)
			u := hydro.ToConserved(p)
			volume := geometry.CellVolumes[i][j]
			conserved.Set(i, j, u.Scale(volume))
			scalarMass.Set(i, j, u.LabFrameMass()*volume*concentration)
		}
	}
	return BlockState{Conserved: conserved, ScalarMass: scalarMass}
}

// TryToPrimitive divides conserved quantities by cell volumes and
// converts each cell to primitive form, attaching the cell's (r,
// theta) to any error before returning, so failures carry positional
// metadata (§4.3). It never panics.
func (s BlockState) TryToPrimitive(hydro physics.Hydro, geometry *mesh.GridGeometry) (block.Grid[physics.Primitive], error) {
	primitives := block.NewGrid[physics.Primitive](geometry.NumZonesR, geometry.NumZonesQ)
	for i := 0; i < geometry.NumZonesR; i++ {
		for j := 0; j < geometry.NumZonesQ; j++ {
			volume := geometry.CellVolumes[i][j]
			u := s.Conserved.At(i, j).Scale(1.0 / volume)
			p, err := hydro.TryToPrimitive(u)
			if err != nil {
				if f, ok := errs.AsFault(err); ok {
					return block.Grid[physics.Primitive]{}, f.At(geometry.CellCenters[i][j])
				}
				return block.Grid[physics.Primitive]{}, err
			}
			primitives.Set(i, j, p)
		}
	}
	return primitives, nil
}

// ScalarConcentrationAt returns scalar_mass / (cell_volume *
// lab_frame_mass_density), i.e. the scalar concentration of §4.5 step
// 1: FromModel sets scalar_mass = lab_frame_mass_density * volume *
// concentration, so recovering concentration needs both the volume
// and the density factor (lab_frame_mass_density is MassDensity for
// Newtonian flow, gamma*MassDensity for relativistic).
func (s BlockState) ScalarConcentrationAt(i, j int, geometry *mesh.GridGeometry, p physics.Primitive) float64 {
	volume := geometry.CellVolumes[i][j]
	labFrameMassDensity := p.MassDensity() * p.LorentzFactor()
	return s.ScalarMass.At(i, j) / (volume * labFrameMassDensity)
}

// ScalarConcentrations computes the scalar concentration of every cell
// in the block, given its already-staged primitive grid (§4.5 step 1).
func (s BlockState) ScalarConcentrations(geometry *mesh.GridGeometry, primitives block.Grid[physics.Primitive]) block.Grid[float64] {
	out := block.NewGrid[float64](geometry.NumZonesR, geometry.NumZonesQ)
	for i := 0; i < geometry.NumZonesR; i++ {
		for j := 0; j < geometry.NumZonesQ; j++ {
			out.Set(i, j, s.ScalarConcentrationAt(i, j, geometry, primitives.At(i, j)))
		}
	}
	return out
}

// Mix forms the weighted combination wa*a + wb*b, element-wise over
// both the conserved and scalar-mass arrays. This is the RK
// stage-composition primitive the driver uses to blend sub-stage
// results with the configured SSP Runge-Kutta weights (§4.4).
func Mix(a, b BlockState, wa, wb float64) BlockState {
	conserved := block.Zip(a.Conserved, b.Conserved, func(x, y physics.Conserved) physics.Conserved {
		return x.Scale(wa).Add(y.Scale(wb))
	})
	scalarMass := block.Zip(a.ScalarMass, b.ScalarMass, func(x, y float64) float64 {
		return wa*x + wb*y
	})
	return BlockState{Conserved: conserved, ScalarMass: scalarMass}
}

// Clone returns a block state sharing its backing arrays with s until
// either is next written to (§9's copy-on-write contract).
func (s BlockState) Clone() BlockState {
	return BlockState{Conserved: s.Conserved.Clone(), ScalarMass: s.ScalarMass.Clone()}
}

// State is the global solver state: the map of block index to block
// state, the simulation time, and the exact-rational iteration
// counter (§3, §4.4).
type State struct {
	Time      float64
	Iteration *big.Rat
	Solution  map[mesh.BlockIndex]BlockState
}

// NewState builds the initial state for the blocks mesh.InitialBlocks
// identifies, sampling model at time.
func NewState(hydro physics.Hydro, msh mesh.Mesh, m model.InitialModel, time float64) (*State, error) {
	solution := make(map[mesh.BlockIndex]BlockState)
	for _, idx := range msh.InitialBlocks() {
		geometry, err := mesh.NewGridGeometry(msh.Subgrid(idx))
		if err != nil {
			return nil, err
		}
		solution[idx] = FromModel(m, hydro, geometry, time)
	}
	return &State{Time: time, Iteration: new(big.Rat), Solution: solution}, nil
}

// InnerOuterBlockIndexes returns the minimum and maximum existing
// radial indices (§4.4).
func (s *State) InnerOuterBlockIndexes() (min, max int, ok bool) {
	first := true
	for idx := range s.Solution {
		if first || idx.I < min {
			min = idx.I
		}
		if first || idx.I > max {
			max = idx.I
		}
		first = false
	}
	return min, max, !first
}

// InnerOuterBoundaryIndexes returns the adjacent ghost indices, offset
// by +/-1 from the existing block range (§4.4).
func (s *State) InnerOuterBoundaryIndexes() (inner, outer mesh.BlockIndex, ok bool) {
	min, max, has := s.InnerOuterBlockIndexes()
	if !has {
		return mesh.BlockIndex{}, mesh.BlockIndex{}, false
	}
	return mesh.BlockIndex{I: min - 1}, mesh.BlockIndex{I: max + 1}, true
}

// TotalMass sums LabFrameMass-weighted conserved mass over every cell
// in every block, used by the conservation property test (§8
// property 2): it does not divide by volume because Conserved is
// already a volume-integrated (not per-volume) quantity in this
// state.
func (s *State) TotalMass() float64 {
	var total float64
	for _, bs := range s.Solution {
		bs.Conserved.ForEach(func(i, j int, u physics.Conserved) {
			total += u.LabFrameMass()
		})
	}
	return total
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver orchestrates one global time step: it computes the
// CFL-limited step size, composes the configured Runge-Kutta order out
// of per-block forward-Euler sub-steps run across a worker pool, and
// reconciles the mesh's block topology at the end of the step
// (spec.md §4.4/§4.6). This is the gofem Solver's stage loop
// (fem/solver.go, fem/fem.go's FEM.Run) generalised from an implicit
// FE time loop to an explicit, block-parallel finite-volume one.
package driver

import (
	"context"
	"math"
	"math/big"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"sphyd/blockstate"
	"sphyd/blockstate/block"
	"sphyd/errs"
	"sphyd/mesh"
	"sphyd/model"
	"sphyd/physics"
	"sphyd/scheme"
)

// Runner holds everything needed to advance a blockstate.State by one
// global time step. It caches each block's GridGeometry across calls
// since geometry only changes when the mesh topology changes (mesh
// §3's "Lifecycle and ownership").
type Runner struct {
	Hydro          physics.Hydro
	Mesh           mesh.Mesh
	Model          model.InitialModel
	Solver         physics.RiemannSolver
	MaxConcurrency int64

	mu         sync.Mutex
	geometries map[mesh.BlockIndex]*mesh.GridGeometry
}

// NewRunner builds a Runner. maxConcurrency bounds how many blocks are
// processed at once by the worker pool; pass 0 to default to 1.
func NewRunner(hydro physics.Hydro, msh mesh.Mesh, m model.InitialModel, solver physics.RiemannSolver, maxConcurrency int64) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Runner{
		Hydro:          hydro,
		Mesh:           msh,
		Model:          m,
		Solver:         solver,
		MaxConcurrency: maxConcurrency,
		geometries:     make(map[mesh.BlockIndex]*mesh.GridGeometry),
	}
}

// geometryFor returns the cached GridGeometry for index, building and
// caching it on first use. Safe to call concurrently.
func (r *Runner) geometryFor(idx mesh.BlockIndex) (*mesh.GridGeometry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if geo, ok := r.geometries[idx]; ok {
		return geo, nil
	}
	geo, err := mesh.NewGridGeometry(r.Mesh.Subgrid(idx))
	if err != nil {
		return nil, err
	}
	r.geometries[idx] = geo
	return geo, nil
}

// forgetGeometry drops a removed block's cached geometry.
func (r *Runner) forgetGeometry(idx mesh.BlockIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.geometries, idx)
}

// Step advances state by one global time step: CFL time-step
// selection, Runge-Kutta stage composition, then topology
// reconciliation.
func (r *Runner) Step(state *blockstate.State) (*blockstate.State, error) {
	dt, err := r.computeTimeStep(state)
	if err != nil {
		return nil, err
	}

	next, err := r.advanceRungeKutta(state.Solution, state.Time, dt)
	if err != nil {
		return nil, err
	}

	newTime := state.Time + dt
	reconciled, err := r.reconcileTopology(next, newTime)
	if err != nil {
		return nil, err
	}

	newIteration := new(big.Rat).Add(state.Iteration, big.NewRat(1, 1))
	return &blockstate.State{Time: newTime, Iteration: newIteration, Solution: reconciled}, nil
}

// advanceRungeKutta composes the configured RK order as convex
// combinations of forward-Euler sub-steps (each a single
// r.subStep call), the standard SSP decomposition for orders 2 and 3
// (§4.4):
//
//	RK1: u' = E(u0, t)
//	RK2: u' = 1/2 u0 + 1/2 E(E(u0, t), t+dt)
//	RK3: u' = 1/3 u0 + 2/3 E(3/4 u0 + 1/4 E(u0, t; t+dt), t+dt/2)
func (r *Runner) advanceRungeKutta(u0 map[mesh.BlockIndex]blockstate.BlockState, t, dt float64) (map[mesh.BlockIndex]blockstate.BlockState, error) {
	switch r.Hydro.RungeKuttaOrder() {
	case physics.RK1:
		return r.subStep(u0, t, dt)

	case physics.RK2:
		u1, err := r.subStep(u0, t, dt)
		if err != nil {
			return nil, err
		}
		e1, err := r.subStep(u1, t+dt, dt)
		if err != nil {
			return nil, err
		}
		return mixMaps(u0, e1, 0.5, 0.5), nil

	case physics.RK3:
		u1, err := r.subStep(u0, t, dt)
		if err != nil {
			return nil, err
		}
		e1, err := r.subStep(u1, t+dt, dt)
		if err != nil {
			return nil, err
		}
		u2 := mixMaps(u0, e1, 0.75, 0.25)
		e2, err := r.subStep(u2, t+0.5*dt, dt)
		if err != nil {
			return nil, err
		}
		return mixMaps(u0, e2, 1.0/3.0, 2.0/3.0), nil

	default:
		return nil, errs.ConfigValidationErr("driver: unsupported runge_kutta_order %v", r.Hydro.RungeKuttaOrder())
	}
}

func mixMaps(a, b map[mesh.BlockIndex]blockstate.BlockState, wa, wb float64) map[mesh.BlockIndex]blockstate.BlockState {
	out := make(map[mesh.BlockIndex]blockstate.BlockState, len(a))
	for idx, bsA := range a {
		out[idx] = blockstate.Mix(bsA, b[idx], wa, wb)
	}
	return out
}

// stagedBlock is the result of §4.5 step 1 for one block: its
// conserved-to-primitive conversion and derived scalar concentration.
type stagedBlock struct {
	primitives block.Grid[physics.Primitive]
	scalars    block.Grid[float64]
}

// subStep runs one forward-Euler update E(u, time) = u + dt*L(u, time)
// across every block in u, in parallel over a worker pool bounded by
// MaxConcurrency. time is the instant at which boundary ghost rows are
// sampled from the initial model.
func (r *Runner) subStep(u map[mesh.BlockIndex]blockstate.BlockState, time, dt float64) (map[mesh.BlockIndex]blockstate.BlockState, error) {
	staged, err := r.stageAll(u)
	if err != nil {
		return nil, err
	}

	out := make(map[mesh.BlockIndex]blockstate.BlockState, len(u))
	var mu sync.Mutex
	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(r.MaxConcurrency)

	for idx := range u {
		idx := idx
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			geo, err := r.geometryFor(idx)
			if err != nil {
				return err
			}
			own := staged[idx]

			innerGhost, err := r.ghostAt(idx, -1, staged, time)
			if err != nil {
				return err
			}
			outerGhost, err := r.ghostAt(idx, +1, staged, time)
			if err != nil {
				return err
			}

			result := scheme.AdvanceBlock(scheme.StageInput{
				Geometry:   geo,
				Hydro:      r.Hydro,
				Conserved:  u[idx].Conserved,
				Primitives: own.primitives,
				Scalars:    own.scalars,
				InnerGhost: innerGhost,
				OuterGhost: outerGhost,
				Solver:     r.Solver,
				Dt:         dt,
			})

			mu.Lock()
			out[idx] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// stageAll computes primitives and scalar concentrations for every
// block in u, in parallel (§4.5 step 1).
func (r *Runner) stageAll(u map[mesh.BlockIndex]blockstate.BlockState) (map[mesh.BlockIndex]stagedBlock, error) {
	out := make(map[mesh.BlockIndex]stagedBlock, len(u))
	var mu sync.Mutex
	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(r.MaxConcurrency)

	for idx, bs := range u {
		idx, bs := idx, bs
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			geo, err := r.geometryFor(idx)
			if err != nil {
				return err
			}
			primitives, err := bs.TryToPrimitive(r.Hydro, geo)
			if err != nil {
				return err
			}
			scalars := bs.ScalarConcentrations(geo, primitives)

			mu.Lock()
			out[idx] = stagedBlock{primitives: primitives, scalars: scalars}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ghostAt builds the radial ghost pair adjacent to block idx on the
// given side (side = -1 for the inner/smaller-r face, +1 for the
// outer/larger-r face): sliced from the real neighbor block's staged
// state when one exists in u, or synthesised from the initial model
// sampled at time when idx is at the edge of the currently active
// topology (§4.5 step 2).
func (r *Runner) ghostAt(idx mesh.BlockIndex, side int, staged map[mesh.BlockIndex]stagedBlock, time float64) (scheme.RadialGhost, error) {
	neighbor := mesh.BlockIndex{I: idx.I + side}
	if n, ok := staged[neighbor]; ok {
		if side < 0 {
			return scheme.InnerGhostFromNeighbor(n.primitives, n.scalars), nil
		}
		return scheme.OuterGhostFromNeighbor(n.primitives, n.scalars), nil
	}
	return r.syntheticGhost(neighbor, side, time)
}

// syntheticGhost samples the initial model over the full extent of the
// (non-existent) block at neighbor, as if it had been initialised by
// blockstate.FromModel, then slices the two rows adjacent to the real
// block it borders.
func (r *Runner) syntheticGhost(neighbor mesh.BlockIndex, side int, time float64) (scheme.RadialGhost, error) {
	geo, err := r.geometryFor(neighbor)
	if err != nil {
		return scheme.RadialGhost{}, err
	}
	sampled := blockstate.FromModel(r.Model, r.Hydro, geo, time)
	primitives, err := sampled.TryToPrimitive(r.Hydro, geo)
	if err != nil {
		return scheme.RadialGhost{}, err
	}
	scalars := sampled.ScalarConcentrations(geo, primitives)
	if side < 0 {
		return scheme.InnerGhostFromNeighbor(primitives, scalars), nil
	}
	return scheme.OuterGhostFromNeighbor(primitives, scalars), nil
}

// computeTimeStep returns the CFL-limited global time step (§4.4): for
// back-ends with a fixed global signal speed (relativistic flow with
// adaptive_time_step=false) this is a simple minimum over cached cell
// dimensions; otherwise it is a parallel per-cell reduction over every
// block's primitive state.
func (r *Runner) computeTimeStep(state *blockstate.State) (float64, error) {
	cfl := r.Hydro.CFLNumber()

	if speed, ok := r.Hydro.GlobalSignalSpeed(); ok {
		minDim := math.Inf(1)
		for idx := range state.Solution {
			geo, err := r.geometryFor(idx)
			if err != nil {
				return 0, err
			}
			for i := 0; i < geo.NumZonesR; i++ {
				for j := 0; j < geo.NumZonesQ; j++ {
					minDim = math.Min(minDim, geo.CellLinearDimension[i][j])
				}
			}
		}
		return cfl * minDim / speed, nil
	}

	var mu sync.Mutex
	minRatio := math.Inf(1)
	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(r.MaxConcurrency)

	for idx, bs := range state.Solution {
		idx, bs := idx, bs
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			geo, err := r.geometryFor(idx)
			if err != nil {
				return err
			}
			primitives, err := bs.TryToPrimitive(r.Hydro, geo)
			if err != nil {
				return err
			}
			local := math.Inf(1)
			primitives.ForEach(func(i, j int, p physics.Primitive) {
				speed := r.Hydro.MaxSignalSpeed(p)
				if speed > 0 {
					local = math.Min(local, geo.CellLinearDimension[i][j]/speed)
				}
			})
			mu.Lock()
			if local < minRatio {
				minRatio = local
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return cfl * minRatio, nil
}

// reconcileTopology applies BlocksToRemove then BlocksToAdd at the end
// of a full time step, never mid-stage (§4.6): removal happens
// innermost-first and addition happens in ascending index order from
// max+1, matching mesh.Mesh's own ordering guarantees.
func (r *Runner) reconcileTopology(solution map[mesh.BlockIndex]blockstate.BlockState, time float64) (map[mesh.BlockIndex]blockstate.BlockState, error) {
	minIdx, maxIdx, ok := minMaxIndex(solution)
	if !ok {
		return solution, nil
	}

	for _, idx := range r.Mesh.BlocksToRemove(minIdx, maxIdx, time) {
		delete(solution, idx)
		r.forgetGeometry(idx)
	}

	_, maxIdx, ok = minMaxIndex(solution)
	if !ok {
		return solution, nil
	}
	for _, idx := range r.Mesh.BlocksToAdd(maxIdx, time) {
		geo, err := r.geometryFor(idx)
		if err != nil {
			return nil, err
		}
		solution[idx] = blockstate.FromModel(r.Model, r.Hydro, geo, time)
	}
	return solution, nil
}

func minMaxIndex(solution map[mesh.BlockIndex]blockstate.BlockState) (min, max int, ok bool) {
	first := true
	for idx := range solution {
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

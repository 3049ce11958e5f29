// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scheme

import (
	"sphyd/blockstate/block"
	"sphyd/physics"
)

// InnerGhostFromNeighbor slices the two radial rows nearest a block's
// inner (smaller-r) neighbor's outer edge, to serve as that block's
// InnerGhost. Requires the neighbor to have at least two radial zones
// (always true: mesh.Mesh.Validate requires block_size >= 2).
func InnerGhostFromNeighbor(primitives block.Grid[physics.Primitive], scalars block.Grid[float64]) RadialGhost {
	nr, nq := primitives.NumZonesR, primitives.NumZonesQ
	return sliceGhostRows(primitives, scalars, nq, nr-2, nr-1)
}

// OuterGhostFromNeighbor slices the two radial rows nearest a block's
// outer (larger-r) neighbor's inner edge, to serve as that block's
// OuterGhost.
func OuterGhostFromNeighbor(primitives block.Grid[physics.Primitive], scalars block.Grid[float64]) RadialGhost {
	nq := primitives.NumZonesQ
	return sliceGhostRows(primitives, scalars, nq, 0, 1)
}

func sliceGhostRows(primitives block.Grid[physics.Primitive], scalars block.Grid[float64], nq, row0, row1 int) RadialGhost {
	var g RadialGhost
	for k, row := range [2]int{row0, row1} {
		g.Primitives[k] = make([]physics.Primitive, nq)
		g.Scalars[k] = make([]float64, nq)
		for j := 0; j < nq; j++ {
			g.Primitives[k][j] = primitives.At(row, j)
			g.Scalars[k][j] = scalars.At(row, j)
		}
	}
	return g
}

// GhostFromSamples builds a RadialGhost directly from two rows of
// already-computed primitive/scalar state supplied by the caller, in
// increasing-r order. The driver does not use it: it synthesises
// domain-boundary ghosts by sampling the initial model into a whole
// block (blockstate.FromModel) and slicing that with
// InnerGhostFromNeighbor/OuterGhostFromNeighbor.
func GhostFromSamples(row0Primitives, row1Primitives []physics.Primitive, row0Scalars, row1Scalars []float64) RadialGhost {
	return RadialGhost{
		Primitives: [2][]physics.Primitive{row0Primitives, row1Primitives},
		Scalars:    [2][]float64{row0Scalars, row1Scalars},
	}
}

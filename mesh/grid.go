// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"

	"sphyd/errs"
)

// GridGeometry caches the per-cell and per-face geometric primitives
// of a SphericalPolarGrid so that the scheme package never recomputes
// a trig function on the hot path. It is built once per mesh-topology
// change (spec.md §3, "Lifecycle and ownership").
type GridGeometry struct {
	NumZonesR int
	NumZonesQ int

	RadialVertices []float64 // len NumZonesR+1
	PolarVertices  []float64 // len NumZonesQ+1

	RadialFaceAreas [][]float64 // shape (NumZonesR+1, NumZonesQ)
	PolarFaceAreas  [][]float64 // shape (NumZonesR, NumZonesQ+1)

	CellVolumes         [][]float64     // shape (NumZonesR, NumZonesQ)
	CellCenters         [][]errs.Position // shape (NumZonesR, NumZonesQ)
	CellLinearDimension [][]float64     // shape (NumZonesR, NumZonesQ)
}

// logSpace returns n+1 values uniformly spaced in log10 between a and
// b (inclusive), mirroring the teacher's utl.LinSpace helper but
// operating in log-space for the radial vertex spacing of spec.md §3.
func logSpace(a, b float64, n int) []float64 {
	logA, logB := math.Log10(a), math.Log10(b)
	exps := utl.LinSpace(logA, logB, n+1)
	out := make([]float64, len(exps))
	for i, e := range exps {
		out[i] = math.Pow(10, e)
	}
	return out
}

// NewGridGeometry builds the cached geometry for grid.
func NewGridGeometry(grid SphericalPolarGrid) (*GridGeometry, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	nr, nq := grid.NumZonesR, grid.NumZonesQ
	e := grid.Extent

	g := &GridGeometry{
		NumZonesR:      nr,
		NumZonesQ:      nq,
		RadialVertices: logSpace(e.InnerRadius, e.OuterRadius, nr),
		PolarVertices:  utl.LinSpace(e.LowerTheta, e.UpperTheta, nq+1),
	}

	g.RadialFaceAreas = la.MatAlloc(nr+1, nq)
	for i := 0; i <= nr; i++ {
		r := g.RadialVertices[i]
		for j := 0; j < nq; j++ {
			g.RadialFaceAreas[i][j] = faceArea(r, g.PolarVertices[j], r, g.PolarVertices[j+1])
		}
	}

	g.PolarFaceAreas = la.MatAlloc(nr, nq+1)
	for i := 0; i < nr; i++ {
		r0, r1 := g.RadialVertices[i], g.RadialVertices[i+1]
		for j := 0; j <= nq; j++ {
			th := g.PolarVertices[j]
			if math.Sin(th) < 1e-12 {
				// Faces on the polar axis (theta=0 or pi) have zero
				// area; sin(pi) is not exactly zero in floating point.
				continue
			}
			g.PolarFaceAreas[i][j] = faceArea(r0, th, r1, th)
		}
	}

	g.CellVolumes = la.MatAlloc(nr, nq)
	g.CellLinearDimension = la.MatAlloc(nr, nq)
	g.CellCenters = make([][]errs.Position, nr)
	for i := 0; i < nr; i++ {
		g.CellCenters[i] = make([]errs.Position, nq)
		r0, r1 := g.RadialVertices[i], g.RadialVertices[i+1]
		dr := r1 - r0
		cr := math.Sqrt(r0 * r1)
		for j := 0; j < nq; j++ {
			th0, th1 := g.PolarVertices[j], g.PolarVertices[j+1]
			dth := th1 - th0
			ct := 0.5 * (th0 + th1)
			g.CellVolumes[i][j] = cellVolume(r0, r1, th0, th1)
			g.CellCenters[i][j] = errs.Position{R: cr, Theta: ct}
			g.CellLinearDimension[i][j] = math.Min(dr, cr*dth)
		}
	}
	return g, nil
}

// TotalVolume sums the cached cell volumes; used to test spec.md §8
// property 1 (geometric closure) against SphericalPolarExtent.Volume.
func (g *GridGeometry) TotalVolume() float64 {
	var total float64
	for i := range g.CellVolumes {
		for j := range g.CellVolumes[i] {
			total += g.CellVolumes[i][j]
		}
	}
	return total
}

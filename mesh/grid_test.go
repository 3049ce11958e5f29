// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// TestGeometricClosure checks spec.md §8 property 1: the sum of cell
// volumes over a grid equals the extent's closed-form volume.
func TestGeometricClosure(t *testing.T) {
	chk.PrintTitle("geometric closure")

	extent := SphericalPolarExtent{InnerRadius: 1.0, OuterRadius: 10.0, LowerTheta: 0, UpperTheta: math.Pi}
	grid := SphericalPolarGrid{Extent: extent, NumZonesR: 24, NumZonesQ: 32}

	geo, err := NewGridGeometry(grid)
	if err != nil {
		t.Fatalf("NewGridGeometry failed: %v", err)
	}
	if extent.Volume() <= 0 {
		t.Fatalf("extent volume must be positive, got %g", extent.Volume())
	}
	chk.Scalar(t, "sum(cell_volumes) == extent.Volume()", 1e-6*extent.Volume(), geo.TotalVolume(), extent.Volume())

	for i := 0; i < geo.NumZonesR; i++ {
		for j := 0; j < geo.NumZonesQ; j++ {
			if geo.CellVolumes[i][j] <= 0 {
				t.Fatalf("cell (%d,%d) has non-positive volume %g", i, j, geo.CellVolumes[i][j])
			}
		}
	}
	for i := 0; i <= geo.NumZonesR; i++ {
		for j := 0; j < geo.NumZonesQ; j++ {
			if geo.RadialFaceAreas[i][j] <= 0 {
				t.Fatalf("radial face (%d,%d) has non-positive area %g", i, j, geo.RadialFaceAreas[i][j])
			}
		}
	}
}

// TestPolarFaceAreaVanishesAtPoles checks the reflecting-boundary
// mechanism of spec.md §4.5: the polar face area is exactly zero at
// theta=0 and theta=pi. NewGridGeometry zeroes the faces on the axis
// explicitly, since sin(pi) is not exactly zero in floating point.
func TestPolarFaceAreaVanishesAtPoles(t *testing.T) {
	extent := SphericalPolarExtent{InnerRadius: 1.0, OuterRadius: 2.0, LowerTheta: 0, UpperTheta: math.Pi}
	grid := SphericalPolarGrid{Extent: extent, NumZonesR: 4, NumZonesQ: 16}
	geo, err := NewGridGeometry(grid)
	if err != nil {
		t.Fatalf("NewGridGeometry failed: %v", err)
	}
	for i := 0; i < geo.NumZonesR; i++ {
		if geo.PolarFaceAreas[i][0] != 0 {
			t.Fatalf("polar face area at theta=0 should vanish, got %g", geo.PolarFaceAreas[i][0])
		}
		if geo.PolarFaceAreas[i][geo.NumZonesQ] != 0 {
			t.Fatalf("polar face area at theta=pi should vanish, got %g", geo.PolarFaceAreas[i][geo.NumZonesQ])
		}
	}
}

func TestCellLinearDimension(t *testing.T) {
	extent := SphericalPolarExtent{InnerRadius: 1.0, OuterRadius: 10.0, LowerTheta: 0, UpperTheta: math.Pi}
	grid := SphericalPolarGrid{Extent: extent, NumZonesR: 10, NumZonesQ: 16}
	geo, err := NewGridGeometry(grid)
	if err != nil {
		t.Fatalf("NewGridGeometry failed: %v", err)
	}
	for i := 0; i < geo.NumZonesR; i++ {
		for j := 0; j < geo.NumZonesQ; j++ {
			dr := geo.RadialVertices[i+1] - geo.RadialVertices[i]
			dth := geo.PolarVertices[j+1] - geo.PolarVertices[j]
			want := math.Min(dr, geo.CellCenters[i][j].R*dth)
			chk.Scalar(t, "cell_linear_dimension", 1e-12, geo.CellLinearDimension[i][j], want)
		}
	}
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh implements the block-structured spherical-polar (r,
// theta) mesh: per-block geometry caching and the moving excision
// surfaces that add or remove radial shells as the simulation evolves.
package mesh

import (
	"math"

	"sphyd/errs"
)

// SphericalPolarExtent is a volume in (r, theta) space: the polar
// section of a spherical annulus.
type SphericalPolarExtent struct {
	InnerRadius float64
	OuterRadius float64
	LowerTheta  float64
	UpperTheta  float64
}

// Validate checks the extent's invariants (spec.md §3).
func (e SphericalPolarExtent) Validate() error {
	if e.InnerRadius <= 0 || e.OuterRadius <= 0 {
		return errs.MeshValidationErr("extent radii must be positive: inner=%g outer=%g", e.InnerRadius, e.OuterRadius)
	}
	if e.InnerRadius >= e.OuterRadius {
		return errs.MeshValidationErr("inner_radius must be < outer_radius: %g >= %g", e.InnerRadius, e.OuterRadius)
	}
	if e.LowerTheta >= e.UpperTheta {
		return errs.MeshValidationErr("lower_theta must be < upper_theta: %g >= %g", e.LowerTheta, e.UpperTheta)
	}
	if e.UpperTheta > math.Pi+1e-12 {
		return errs.MeshValidationErr("upper_theta must be <= pi: %g", e.UpperTheta)
	}
	return nil
}

// Volume returns the 3D volume of revolution of the extent, via the
// closed-form spherical integral of spec.md §4.1:
//
//	V = (2*pi/3) * (r1^3 - r0^3) * (cos(theta0) - cos(theta1))
func (e SphericalPolarExtent) Volume() float64 {
	return cellVolume(e.InnerRadius, e.OuterRadius, e.LowerTheta, e.UpperTheta)
}

// cellVolume is the closed-form volume of the cell with corners
// (r0,theta0)-(r1,theta1).
func cellVolume(r0, r1, theta0, theta1 float64) float64 {
	return (2.0 * math.Pi / 3.0) * (r1*r1*r1 - r0*r0*r0) * (math.Cos(theta0) - math.Cos(theta1))
}

// faceArea is the area of the conical face between corners
// (r0,theta0)-(r1,theta1) on a surface of constant r or constant
// theta, per spec.md §4.1:
//
//	A = pi*(s0+s1)*sqrt((s1-s0)^2 + (z1-z0)^2),  s = r*sin(theta), z = r*cos(theta)
func faceArea(r0, theta0, r1, theta1 float64) float64 {
	s0, z0 := r0*math.Sin(theta0), r0*math.Cos(theta0)
	s1, z1 := r1*math.Sin(theta1), r1*math.Cos(theta1)
	return math.Pi * (s0 + s1) * math.Hypot(s1-s0, z1-z0)
}

// SphericalPolarGrid is a SphericalPolarExtent subdivided evenly in
// log10(r) and linearly in theta.
type SphericalPolarGrid struct {
	Extent    SphericalPolarExtent
	NumZonesR int
	NumZonesQ int
}

// Validate checks the grid's invariants.
func (g SphericalPolarGrid) Validate() error {
	if err := g.Extent.Validate(); err != nil {
		return err
	}
	if g.NumZonesR < 1 {
		return errs.MeshValidationErr("num_zones_r must be >= 1, got %d", g.NumZonesR)
	}
	if g.NumZonesQ < 1 {
		return errs.MeshValidationErr("num_zones_q must be >= 1, got %d", g.NumZonesQ)
	}
	return nil
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"math"

	"sphyd/errs"
)

// BlockIndex identifies a radial shell (I, may be negative during
// ghost-zone assembly) and a polar strip (J, currently always 0 — the
// polar direction is not sub-divided; spec.md §3).
type BlockIndex struct {
	I int
	J int
}

// Mesh is the global mesh configuration: the moving excision surfaces
// and the log-radial block layout they act on. Field tags mirror the
// mesh group of the configuration table (spec.md §6).
type Mesh struct {
	ReferenceRadius    float64 `yaml:"reference_radius"`
	InnerRadius        float64 `yaml:"inner_radius"`
	OuterRadius        float64 `yaml:"outer_radius"`
	InnerExcisionSpeed float64 `yaml:"inner_excision_speed"`
	OuterExcisionSpeed float64 `yaml:"outer_excision_speed"`
	NumPolarZones      int     `yaml:"num_polar_zones"`
	BlockSize          int     `yaml:"block_size"`

	// NumRadialZones is optional; nil means "choose so zones are
	// square" (see ZoneDlogr).
	NumRadialZones *int `yaml:"num_radial_zones,omitempty"`

	// ExcisionDelay is optional; nil means the surfaces start moving
	// at t=0.
	ExcisionDelay *float64 `yaml:"excision_delay,omitempty"`
}

// Validate fails fast with a descriptive error, per spec.md §4.1.
func (m Mesh) Validate() error {
	if m.ReferenceRadius <= 0 || m.InnerRadius <= 0 || m.OuterRadius <= 0 {
		return errs.MeshValidationErr("all radii must be positive: reference=%g inner=%g outer=%g",
			m.ReferenceRadius, m.InnerRadius, m.OuterRadius)
	}
	if m.ReferenceRadius > m.OuterExcisionSurface(0) {
		return errs.MeshValidationErr("reference_radius (%g) must be <= outer excision surface at t=0 (%g)",
			m.ReferenceRadius, m.OuterExcisionSurface(0))
	}
	if m.InnerExcisionSpeed < 0 || m.OuterExcisionSpeed < 0 {
		return errs.MeshValidationErr("excision speeds must be non-negative: inner=%g outer=%g",
			m.InnerExcisionSpeed, m.OuterExcisionSpeed)
	}
	if m.OuterExcisionSpeed < m.InnerExcisionSpeed {
		return errs.MeshValidationErr("outer_excision_speed (%g) must be >= inner_excision_speed (%g): OES must never be overtaken",
			m.OuterExcisionSpeed, m.InnerExcisionSpeed)
	}
	if m.BlockSize < 2 {
		return errs.MeshValidationErr("block_size must be >= 2, got %d", m.BlockSize)
	}
	if m.NumPolarZones != 1 && m.NumPolarZones < 16 {
		return errs.MeshValidationErr("num_polar_zones must be 1 or >= 16, got %d", m.NumPolarZones)
	}
	if m.NumPolarZones == 1 && m.NumRadialZones == nil {
		return errs.MeshValidationErr("num_radial_zones must be provided when num_polar_zones == 1")
	}
	return nil
}

// excisionDelay returns the configured delay, defaulting to zero.
func (m Mesh) excisionDelay() float64 {
	if m.ExcisionDelay == nil {
		return 0
	}
	return *m.ExcisionDelay
}

// InnerExcisionSurface returns IES(t), the radius of the inner
// excision surface at time t (spec.md §3).
func (m Mesh) InnerExcisionSurface(t float64) float64 {
	return m.InnerRadius + math.Max(0, t-m.excisionDelay())*m.InnerExcisionSpeed
}

// OuterExcisionSurface returns OES(t), the radius of the outer
// excision surface at time t (spec.md §3).
func (m Mesh) OuterExcisionSurface(t float64) float64 {
	return m.OuterRadius + math.Max(0, t-m.excisionDelay())*m.OuterExcisionSpeed
}

// ZoneDlogr returns the per-zone radial growth parameter: 1/num_radial_zones
// if configured, else pi/num_polar_zones so that zones come out square
// (spec.md §3).
func (m Mesh) ZoneDlogr() float64 {
	if m.NumRadialZones != nil {
		return 1.0 / float64(*m.NumRadialZones)
	}
	return math.Pi / float64(m.NumPolarZones)
}

// BlockDlogr returns block_size * ZoneDlogr, the per-block radial
// growth parameter Δ of spec.md §3.
func (m Mesh) BlockDlogr() float64 {
	return float64(m.BlockSize) * m.ZoneDlogr()
}

// SubgridExtent returns the (r, theta) extent of the block at index,
// per spec.md §4.1.
func (m Mesh) SubgridExtent(index BlockIndex) SphericalPolarExtent {
	delta := m.BlockDlogr()
	innerR := m.ReferenceRadius * math.Pow(1+delta, float64(index.I))
	outerR := m.ReferenceRadius * math.Pow(1+delta, float64(index.I+1))

	lower, upper := 0.0, math.Pi
	if m.NumPolarZones == 1 {
		d := m.ZoneDlogr()
		lower, upper = math.Pi/2-d, math.Pi/2+d
	}
	return SphericalPolarExtent{InnerRadius: innerR, OuterRadius: outerR, LowerTheta: lower, UpperTheta: upper}
}

// Subgrid returns the full SphericalPolarGrid (extent plus zone
// counts) of the block at index.
func (m Mesh) Subgrid(index BlockIndex) SphericalPolarGrid {
	return SphericalPolarGrid{
		Extent:    m.SubgridExtent(index),
		NumZonesR: m.BlockSize,
		NumZonesQ: m.NumPolarZones,
	}
}

// InsideInnerExcision reports whether the block at index is entirely
// swallowed by the inner excision surface at time t.
func (m Mesh) InsideInnerExcision(index BlockIndex, t float64) bool {
	return m.SubgridExtent(index).OuterRadius < m.InnerExcisionSurface(t)
}

// InsideOuterExcision reports whether the block at index lies within
// the domain the outer excision surface has swept past, i.e. it is
// required to exist at time t.
func (m Mesh) InsideOuterExcision(index BlockIndex, t float64) bool {
	return m.SubgridExtent(index).OuterRadius < m.OuterExcisionSurface(t)
}

// BlocksToRemove returns the indices, in ascending order, of blocks
// in existing (assumed radially contiguous starting at the minimum
// index) that must be dropped because the inner excision surface has
// swallowed them at time t. Per spec.md §4.6, removal happens from
// the innermost (minimum) index outward, one shell at a time, and
// never removes the entire mesh.
func (m Mesh) BlocksToRemove(minIndex, maxIndex int, t float64) []BlockIndex {
	var out []BlockIndex
	for i := minIndex; i < maxIndex; i++ {
		idx := BlockIndex{I: i}
		if !m.InsideInnerExcision(idx, t) {
			break
		}
		out = append(out, idx)
	}
	return out
}

// InitialBlocks returns the indices of the blocks that must exist at
// t=0 to cover [inner_radius, outer_radius].
func (m Mesh) InitialBlocks() []BlockIndex {
	delta := m.BlockDlogr()
	start := int(math.Floor(math.Log(m.InnerRadius/m.ReferenceRadius) / math.Log(1+delta)))
	for m.SubgridExtent(BlockIndex{I: start}).OuterRadius <= m.InnerRadius {
		start++
	}
	for start > -1_000_000 && m.SubgridExtent(BlockIndex{I: start - 1}).OuterRadius > m.InnerRadius {
		start--
	}
	var out []BlockIndex
	for i := start; m.SubgridExtent(BlockIndex{I: i}).InnerRadius < m.OuterExcisionSurface(0); i++ {
		out = append(out, BlockIndex{I: i})
	}
	return out
}

// BlocksToAdd returns the indices, in ascending order, of blocks
// beyond maxIndex that must be created because the outer excision
// surface has swept past them by time t. Per spec.md §3/§4.6,
// insertion always happens at index max+1, max+2, ...
func (m Mesh) BlocksToAdd(maxIndex int, t float64) []BlockIndex {
	var out []BlockIndex
	for i := maxIndex + 1; ; i++ {
		idx := BlockIndex{I: i}
		if !m.InsideOuterExcision(idx, t) {
			break
		}
		out = append(out, idx)
	}
	return out
}

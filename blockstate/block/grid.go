// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block implements Grid[T], a flat shape-(nr, nq) array that
// is cheap to pass by value and shares its backing storage until
// written, matching §9's "reference-counted shared ownership with
// copy-on-write semantics" requirement for block arrays that are read
// by up to three stencil neighbours per RK sub-step without deep
// copying. This is the one generic type in the module: a plain
// container, not part of the hydrodynamics dispatch story (§9).
package block

import "github.com/fxamacker/cbor/v2"

// Grid is a shape-(NumZonesR, NumZonesQ) array of T, backed by a
// single shared slice. Copying a Grid by value shares the backing
// slice; Clone marks a Grid as shared, and Set performs a
// copy-on-write: the first write after a Clone allocates a fresh
// backing slice so the other handle is unaffected. A plain value copy
// is not marked shared, so a Set through it is visible to both.
type Grid[T any] struct {
	NumZonesR int
	NumZonesQ int
	data      *[]T
	shared    *bool
}

// NewGrid allocates a zero-valued grid of shape (nr, nq).
func NewGrid[T any](nr, nq int) Grid[T] {
	data := make([]T, nr*nq)
	shared := false
	return Grid[T]{NumZonesR: nr, NumZonesQ: nq, data: &data, shared: &shared}
}

// FromSlices builds a Grid from a [][]T of shape (nr, nq), copying the
// values into the flat backing array.
func FromSlices[T any](rows [][]T) Grid[T] {
	nr := len(rows)
	nq := 0
	if nr > 0 {
		nq = len(rows[0])
	}
	g := NewGrid[T](nr, nq)
	for i, row := range rows {
		copy((*g.data)[i*nq:(i+1)*nq], row)
	}
	return g
}

func (g Grid[T]) index(i, j int) int { return i*g.NumZonesQ + j }

// At returns the value at cell (i, j).
func (g Grid[T]) At(i, j int) T {
	return (*g.data)[g.index(i, j)]
}

// Set writes value at cell (i, j), copy-on-write: if this Grid has been
// marked shared (by a prior Clone), Set first copies the slice so the
// sibling's data is untouched.
func (g *Grid[T]) Set(i, j int, value T) {
	if *g.shared {
		fresh := make([]T, len(*g.data))
		copy(fresh, *g.data)
		g.data = &fresh
		sharedFlag := false
		g.shared = &sharedFlag
	}
	(*g.data)[g.index(i, j)] = value
}

// Clone returns a copy-on-write handle to the same backing storage:
// both the receiver and the returned Grid are marked shared, so the
// next Set on either allocates a private copy.
func (g Grid[T]) Clone() Grid[T] {
	*g.shared = true
	return g
}

// ForEach calls fn once per cell in row-major order.
func (g Grid[T]) ForEach(fn func(i, j int, value T)) {
	for i := 0; i < g.NumZonesR; i++ {
		for j := 0; j < g.NumZonesQ; j++ {
			fn(i, j, g.At(i, j))
		}
	}
}

// ToSlices materialises the grid as a [][]T, always a fresh copy.
func (g Grid[T]) ToSlices() [][]T {
	out := make([][]T, g.NumZonesR)
	for i := range out {
		out[i] = make([]T, g.NumZonesQ)
		copy(out[i], (*g.data)[i*g.NumZonesQ:(i+1)*g.NumZonesQ])
	}
	return out
}

// Map returns a new Grid with fn applied element-wise.
func Map[T, U any](g Grid[T], fn func(T) U) Grid[U] {
	out := NewGrid[U](g.NumZonesR, g.NumZonesQ)
	for idx, v := range *g.data {
		(*out.data)[idx] = fn(v)
	}
	return out
}

// gridWire is the CBOR wire form of a Grid: shape plus a flat data
// slice, the same "struct of plain fields" shape
// physics.AnyPrimitive's tuple wire form uses, generalised to a
// generic element type.
type gridWire[T any] struct {
	R    int
	Q    int
	Data []T
}

// MarshalCBOR flattens the grid to its shape and backing data, used
// by snapshot round-tripping (spec.md §8 property 5).
func (g Grid[T]) MarshalCBOR() ([]byte, error) {
	data := append([]T(nil), (*g.data)...)
	return cbor.Marshal(gridWire[T]{R: g.NumZonesR, Q: g.NumZonesQ, Data: data})
}

// UnmarshalCBOR rebuilds a Grid from its wire form with a fresh,
// unshared backing slice.
func (g *Grid[T]) UnmarshalCBOR(data []byte) error {
	var w gridWire[T]
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	backing := append([]T(nil), w.Data...)
	shared := false
	g.NumZonesR, g.NumZonesQ = w.R, w.Q
	g.data = &backing
	g.shared = &shared
	return nil
}

// Zip combines two same-shape grids element-wise, used by the RK
// stage-mixing step (e.g. 0.5*a + 0.5*b) to avoid threading an
// explicit (i, j) loop through every call site.
func Zip[T, U, V any](a Grid[T], b Grid[U], fn func(T, U) V) Grid[V] {
	out := NewGrid[V](a.NumZonesR, a.NumZonesQ)
	for idx := range *a.data {
		(*out.data)[idx] = fn((*a.data)[idx], (*b.data)[idx])
	}
	return out
}

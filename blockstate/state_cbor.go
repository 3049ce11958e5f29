// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blockstate

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"sphyd/mesh"
)

// stateEntry pairs a block index with its state, used instead of a
// CBOR map keyed by a struct (fxamacker/cbor supports only a narrow
// set of native map key types) and to give the snapshot a
// deterministic on-disk order.
type stateEntry struct {
	I, J  int
	State BlockState
}

// stateWire is the CBOR wire form of State: big.Rat has no native
// CBOR mapping, so the iteration counter is carried as its exact
// numerator/denominator pair in base 10, the same "serde tuple"
// spirit as physics.AnyPrimitive's 4-tuple wire form.
type stateWire struct {
	Time             float64
	IterationNum     string
	IterationDenom   string
	Solution         []stateEntry
}

// MarshalCBOR encodes the state with its blocks sorted by radial
// index, so two semantically-identical states serialise identically
// regardless of map iteration order.
func (s State) MarshalCBOR() ([]byte, error) {
	entries := make([]stateEntry, 0, len(s.Solution))
	for idx, bs := range s.Solution {
		entries = append(entries, stateEntry{I: idx.I, J: idx.J, State: bs})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].I != entries[j].I {
			return entries[i].I < entries[j].I
		}
		return entries[i].J < entries[j].J
	})
	iteration := s.Iteration
	if iteration == nil {
		iteration = new(big.Rat)
	}
	return cbor.Marshal(stateWire{
		Time:           s.Time,
		IterationNum:   iteration.Num().String(),
		IterationDenom: iteration.Denom().String(),
		Solution:       entries,
	})
}

// UnmarshalCBOR rebuilds a State from its wire form.
func (s *State) UnmarshalCBOR(data []byte) error {
	var w stateWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	num, ok := new(big.Int).SetString(w.IterationNum, 10)
	if !ok {
		return fmt.Errorf("blockstate: invalid iteration numerator %q", w.IterationNum)
	}
	denom, ok := new(big.Int).SetString(w.IterationDenom, 10)
	if !ok {
		return fmt.Errorf("blockstate: invalid iteration denominator %q", w.IterationDenom)
	}
	s.Time = w.Time
	s.Iteration = new(big.Rat).SetFrac(num, denom)
	s.Solution = make(map[mesh.BlockIndex]BlockState, len(w.Solution))
	for _, e := range w.Solution {
		s.Solution[mesh.BlockIndex{I: e.I, J: e.J}] = e.State
	}
	return nil
}

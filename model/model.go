// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the InitialModel interface that the core
// consumes for both initial conditions and time-dependent ghost-block
// boundary synthesis (§6), plus a small registry of reference models
// and the RecurringTask bookkeeping type.
package model

import (
	"github.com/cpmech/gosl/chk"

	"sphyd/errs"
	"sphyd/physics"
)

// InitialModel is any type that supplies primitive and scalar state as
// a pure, referentially transparent function of (r, theta, t). It is
// a genuine Go interface, unlike the fixed two-member Hydro tagged
// union, because new models are open-ended plugins (§3's design
// note).
type InitialModel interface {
	Validate() error
	PrimitiveAt(pos errs.Position, time float64) physics.AnyPrimitive
	ScalarAt(pos errs.Position, time float64) float64

	// Name returns the model.setup registry key this instance was
	// built from, so config.ModelConfig and the snapshot package can
	// round-trip the concrete type without a type switch.
	Name() string
}

// AllocatorType returns a zero-valued model; config.go fills in its
// parameters afterwards by decoding the YAML (or CBOR) block into it.
type AllocatorType func() InitialModel

var allocators = map[string]AllocatorType{}

// Register adds a model constructor under name, so config.go can look
// it up by the model.setup configuration key (§6). Mirrors
// ele/factory.go's SetInfoFunc/allocators registration pattern.
func Register(name string, fn AllocatorType) {
	allocators[name] = fn
}

// New returns a zero-valued instance of the model registered under
// name, ready to be populated by the config package's YAML decoder.
func New(name string) (InitialModel, error) {
	fn, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in the model registry", name)
	}
	return fn(), nil
}

func init() {
	Register("uniform", func() InitialModel { return &Uniform{} })
	Register("wind_shock", func() InitialModel { return &WindShock{} })
}

// RecurringTask is the external bookkeeping type of §3: only
// next_time <= state.time triggers a side effect. It is included for
// boundary completeness (app.App schedules checkpoint/products
// recurrence with it) but carries no core logic.
type RecurringTask struct {
	Count         int
	NextTime      float64
	LastPerformed float64
}

// Poll reports whether the task is due at currentTime and, if so,
// advances NextTime by interval and records LastPerformed.
func (t *RecurringTask) Poll(currentTime, interval float64) bool {
	if interval <= 0 || currentTime < t.NextTime {
		return false
	}
	t.Count++
	t.LastPerformed = currentTime
	t.NextTime += interval
	return true
}

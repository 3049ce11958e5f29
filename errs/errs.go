// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs implements the solver's typed fault model: every
// run-time failure carries a Kind and, once it has crossed a cell
// boundary, the (r, theta) position of the offending zone.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a Fault.
type Kind int

const (
	// NegativeDensity is raised when a conserved-to-primitive
	// conversion recovers a non-positive mass density.
	NegativeDensity Kind = iota

	// NegativePressure is raised by the relativistic back-end when
	// primitive recovery yields a non-positive gas pressure. It is
	// healed by default (see RelativisticHydro.HealNegativePressure) and only
	// surfaces as a Fault when healing is disabled.
	NegativePressure

	// NegativeEnergyDensity is raised by the relativistic back-end
	// when the conserved energy density is non-positive, before the
	// root-find even starts.
	NegativeEnergyDensity

	// RootFinderFailed is raised when the relativistic pressure
	// root-find does not converge within its iteration budget.
	RootFinderFailed

	// MeshValidation is a build-time fault from mesh parameter checks.
	MeshValidation

	// ConfigValidation is a build-time fault from configuration checks.
	ConfigValidation
)

func (k Kind) String() string {
	switch k {
	case NegativeDensity:
		return "NegativeDensity"
	case NegativePressure:
		return "NegativePressure"
	case NegativeEnergyDensity:
		return "NegativeEnergyDensity"
	case RootFinderFailed:
		return "RootFinderFailed"
	case MeshValidation:
		return "MeshValidation"
	case ConfigValidation:
		return "ConfigValidation"
	default:
		return "Unknown"
	}
}

// Position is a cell-centroid or vertex coordinate in the (r, theta)
// plane, attached to a Fault once it is known.
type Position struct {
	R     float64
	Theta float64
}

// Fault is the solver's single error type. Hydrodynamic faults are
// created without a Position by the physics package and positioned by
// the caller that knows which cell failed (block-state recovery, the
// time-step reduction); build-time faults never carry a Position.
type Fault struct {
	Kind        Kind
	Position    Position
	HasPosition bool
	Value       float64     // offending scalar, when applicable
	Payload     interface{} // offending conserved state, for RootFinderFailed
	Message     string
}

// Error implements the error interface with a single-line diagnostic
// carrying the position and offending quantity, per spec.md §7.
func (f *Fault) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	if f.HasPosition {
		return fmt.Sprintf("%s at (r=%.6g, theta=%.6g): value=%.6g", f.Kind, f.Position.R, f.Position.Theta, f.Value)
	}
	return fmt.Sprintf("%s: value=%.6g", f.Kind, f.Value)
}

// At returns a copy of f positioned at pos. Used by callers that
// recover a cell's (r, theta) after a hydrodynamic routine fails
// without positional context.
func (f *Fault) At(pos Position) *Fault {
	cp := *f
	cp.Position = pos
	cp.HasPosition = true
	return &cp
}

// NegativeDensityErr builds an unpositioned NegativeDensity fault.
func NegativeDensityErr(density float64) *Fault {
	return &Fault{Kind: NegativeDensity, Value: density}
}

// NegativePressureErr builds an unpositioned NegativePressure fault.
func NegativePressureErr(pressure float64) *Fault {
	return &Fault{Kind: NegativePressure, Value: pressure}
}

// NegativeEnergyDensityErr builds an unpositioned NegativeEnergyDensity fault.
func NegativeEnergyDensityErr(energy float64) *Fault {
	return &Fault{Kind: NegativeEnergyDensity, Value: energy}
}

// RootFinderFailedErr builds an unpositioned RootFinderFailed fault,
// carrying the conserved state that could not be inverted.
func RootFinderFailedErr(conserved interface{}) *Fault {
	return &Fault{Kind: RootFinderFailed, Payload: conserved}
}

// MeshValidationErr builds a build-time mesh-configuration fault.
func MeshValidationErr(format string, args ...interface{}) *Fault {
	return &Fault{Kind: MeshValidation, Message: fmt.Sprintf(format, args...)}
}

// ConfigValidationErr builds a build-time configuration fault.
func ConfigValidationErr(format string, args ...interface{}) *Fault {
	return &Fault{Kind: ConfigValidation, Message: fmt.Sprintf(format, args...)}
}

// AsFault reports whether err is (or wraps) a *Fault, returning it.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	ok := errors.As(err, &f)
	return f, ok
}

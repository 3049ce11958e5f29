// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import "fmt"

// Kind selects which concrete hydrodynamics back-end a Hydro, Primitive
// or Conserved tagged union holds. Per §9's design note this is an
// exhaustive, compiler-checkable two-way switch, not an open-ended
// registry: the set of back-ends is fixed by the domain, not by
// plugins.
type Kind int

const (
	Newtonian Kind = iota
	Relativistic
)

func (k Kind) String() string {
	switch k {
	case Newtonian:
		return "newtonian"
	case Relativistic:
		return "relativistic"
	default:
		return "unknown"
	}
}

// Primitive is the tagged union of the two back-ends' reconstructed
// point values (density, velocity, pressure).
type Primitive struct {
	Kind Kind
	N    NewtonianPrimitive
	R    RelativisticPrimitive
}

// LorentzFactor dispatches to the active variant's Lorentz factor (1
// for Newtonian).
func (p Primitive) LorentzFactor() float64 {
	switch p.Kind {
	case Newtonian:
		return p.N.LorentzFactor()
	case Relativistic:
		return p.R.LorentzFactor()
	default:
		panic(fmt.Sprintf("physics: unhandled primitive kind %v", p.Kind))
	}
}

// MassDensity dispatches to the active variant's comoving mass
// density, used by the scheme package to build the lab-frame mass
// density (density * LorentzFactor) that advects the passive scalar.
func (p Primitive) MassDensity() float64 {
	switch p.Kind {
	case Newtonian:
		return p.N.MassDensity
	case Relativistic:
		return p.R.MassDensity
	default:
		panic(fmt.Sprintf("physics: unhandled primitive kind %v", p.Kind))
	}
}

// Add, Sub and Scale implement the vector-space operations PLM
// reconstruction and RK stage-mixing need (traits.rs's Arithmetic
// bound), dispatched exhaustively on Kind.
func (p Primitive) Add(o Primitive) Primitive {
	switch p.Kind {
	case Newtonian:
		return Primitive{Kind: Newtonian, N: p.N.add(o.N)}
	case Relativistic:
		return Primitive{Kind: Relativistic, R: p.R.add(o.R)}
	default:
		panic(fmt.Sprintf("physics: unhandled primitive kind %v", p.Kind))
	}
}

func (p Primitive) Sub(o Primitive) Primitive {
	switch p.Kind {
	case Newtonian:
		return Primitive{Kind: Newtonian, N: p.N.sub(o.N)}
	case Relativistic:
		return Primitive{Kind: Relativistic, R: p.R.sub(o.R)}
	default:
		panic(fmt.Sprintf("physics: unhandled primitive kind %v", p.Kind))
	}
}

func (p Primitive) Scale(a float64) Primitive {
	switch p.Kind {
	case Newtonian:
		return Primitive{Kind: Newtonian, N: p.N.scale(a)}
	case Relativistic:
		return Primitive{Kind: Relativistic, R: p.R.scale(a)}
	default:
		panic(fmt.Sprintf("physics: unhandled primitive kind %v", p.Kind))
	}
}

// Conserved is the tagged union of the two back-ends' finite-volume
// cell averages (mass, momentum, energy).
type Conserved struct {
	Kind Kind
	N    NewtonianConserved
	R    RelativisticConserved
}

// LabFrameMass dispatches to the active variant (GLOSSARY: rho for
// Newtonian, gamma*rho for relativistic).
func (c Conserved) LabFrameMass() float64 {
	switch c.Kind {
	case Newtonian:
		return c.N.LabFrameMass()
	case Relativistic:
		return c.R.LabFrameMass()
	default:
		panic(fmt.Sprintf("physics: unhandled conserved kind %v", c.Kind))
	}
}

func (c Conserved) Add(o Conserved) Conserved {
	switch c.Kind {
	case Newtonian:
		return Conserved{Kind: Newtonian, N: c.N.add(o.N)}
	case Relativistic:
		return Conserved{Kind: Relativistic, R: c.R.add(o.R)}
	default:
		panic(fmt.Sprintf("physics: unhandled conserved kind %v", c.Kind))
	}
}

func (c Conserved) Sub(o Conserved) Conserved {
	switch c.Kind {
	case Newtonian:
		return Conserved{Kind: Newtonian, N: c.N.sub(o.N)}
	case Relativistic:
		return Conserved{Kind: Relativistic, R: c.R.sub(o.R)}
	default:
		panic(fmt.Sprintf("physics: unhandled conserved kind %v", c.Kind))
	}
}

func (c Conserved) Scale(a float64) Conserved {
	switch c.Kind {
	case Newtonian:
		return Conserved{Kind: Newtonian, N: c.N.scale(a)}
	case Relativistic:
		return Conserved{Kind: Relativistic, R: c.R.scale(a)}
	default:
		panic(fmt.Sprintf("physics: unhandled conserved kind %v", c.Kind))
	}
}

// Hydro is the tagged union over the two hydrodynamics back-ends,
// implementing the Hydrodynamics contract of §4.2 with an exhaustive
// switch per operation instead of dynamic dispatch.
type Hydro struct {
	Kind         Kind
	Newtonian    NewtonianHydro
	Relativistic RelativisticHydro
}

// Validate dispatches to the active back-end's parameter validation.
func (h Hydro) Validate() error {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.Validate()
	case Relativistic:
		return h.Relativistic.Validate()
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// RungeKuttaOrder dispatches to the active back-end's configured order.
func (h Hydro) RungeKuttaOrder() RungeKuttaOrder {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.RungeKuttaOrder
	case Relativistic:
		return h.Relativistic.RungeKuttaOrder
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// CFLNumber dispatches to the active back-end's configured CFL number.
func (h Hydro) CFLNumber() float64 {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.CFLNumber()
	case Relativistic:
		return h.Relativistic.CFLNumber()
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// PLMGradientPrimitive dispatches the three-point minmod slope to the
// active back-end; a and b and c must all carry the same Kind as h.
func (h Hydro) PLMGradientPrimitive(a, b, c Primitive) Primitive {
	switch h.Kind {
	case Newtonian:
		return Primitive{Kind: Newtonian, N: h.Newtonian.PLMGradientPrimitive(a.N, b.N, c.N)}
	case Relativistic:
		return Primitive{Kind: Relativistic, R: h.Relativistic.PLMGradientPrimitive(a.R, b.R, c.R)}
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// PLMGradientScalar dispatches the scalar-field slope.
func (h Hydro) PLMGradientScalar(a, b, c float64) float64 {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.PLMGradientScalar(a, b, c)
	case Relativistic:
		return h.Relativistic.PLMGradientScalar(a, b, c)
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// TryToPrimitive dispatches conserved-to-primitive recovery, never
// panicking (§4.2, §4.3).
func (h Hydro) TryToPrimitive(u Conserved) (Primitive, error) {
	switch h.Kind {
	case Newtonian:
		p, err := h.Newtonian.TryToPrimitive(u.N)
		if err != nil {
			return Primitive{}, err
		}
		return Primitive{Kind: Newtonian, N: p}, nil
	case Relativistic:
		p, err := h.Relativistic.TryToPrimitive(u.R)
		if err != nil {
			return Primitive{}, err
		}
		return Primitive{Kind: Relativistic, R: p}, nil
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// ToPrimitive is the panicking variant used on already-validated
// arrays (§4.2).
func (h Hydro) ToPrimitive(u Conserved) Primitive {
	p, err := h.TryToPrimitive(u)
	if err != nil {
		panic(err)
	}
	return p
}

// ToConserved dispatches the total primitive-to-conserved conversion.
func (h Hydro) ToConserved(p Primitive) Conserved {
	switch h.Kind {
	case Newtonian:
		return Conserved{Kind: Newtonian, N: h.Newtonian.ToConserved(p.N)}
	case Relativistic:
		return Conserved{Kind: Relativistic, R: h.Relativistic.ToConserved(p.R)}
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// MaxSignalSpeed dispatches the absolute maximum wave speed.
func (h Hydro) MaxSignalSpeed(p Primitive) float64 {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.MaxSignalSpeed(p.N)
	case Relativistic:
		return h.Relativistic.MaxSignalSpeed(p.R)
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// GlobalSignalSpeed dispatches to the active back-end: Some(c) for
// relativistic flow with a fixed (non-adaptive) Δt, None (ok=false)
// when a per-cell reduction is required (§4.2).
func (h Hydro) GlobalSignalSpeed() (speed float64, ok bool) {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.GlobalSignalSpeed()
	case Relativistic:
		return h.Relativistic.GlobalSignalSpeed()
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// IntercellFlux dispatches the Riemann solver, returning the
// conserved-quantity flux and the scalar-mass flux (§4.2).
func (h Hydro) IntercellFlux(pl, pr Primitive, sl, sr float64, solver RiemannSolver, dir Direction) (Conserved, float64) {
	switch h.Kind {
	case Newtonian:
		f, sf := h.Newtonian.IntercellFlux(pl.N, pr.N, sl, sr, solver, dir)
		return Conserved{Kind: Newtonian, N: f}, sf
	case Relativistic:
		f, sf := h.Relativistic.IntercellFlux(pl.R, pr.R, sl, sr, solver, dir)
		return Conserved{Kind: Relativistic, R: f}, sf
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// GeometricalSourceTerms dispatches the spherical-geometry source term.
func (h Hydro) GeometricalSourceTerms(p Primitive, pos Position) Conserved {
	switch h.Kind {
	case Newtonian:
		return Conserved{Kind: Newtonian, N: h.Newtonian.GeometricalSourceTerms(p.N, pos)}
	case Relativistic:
		return Conserved{Kind: Relativistic, R: h.Relativistic.GeometricalSourceTerms(p.R, pos)}
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// GravitationalSourceTerms dispatches the optional external-gravity
// source term (zero by default for both back-ends).
func (h Hydro) GravitationalSourceTerms(p Primitive, pos Position) Conserved {
	switch h.Kind {
	case Newtonian:
		return Conserved{Kind: Newtonian, N: h.Newtonian.GravitationalSourceTerms(p.N, pos)}
	case Relativistic:
		return Conserved{Kind: Relativistic, R: h.Relativistic.GravitationalSourceTerms(p.R, pos)}
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// Interpret dispatches AnyPrimitive -> back-end Primitive.
func (h Hydro) Interpret(any AnyPrimitive) Primitive {
	switch h.Kind {
	case Newtonian:
		return Primitive{Kind: Newtonian, N: h.Newtonian.Interpret(any)}
	case Relativistic:
		return Primitive{Kind: Relativistic, R: h.Relativistic.Interpret(any)}
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// Any dispatches back-end Primitive -> AnyPrimitive.
func (h Hydro) Any(p Primitive) AnyPrimitive {
	switch h.Kind {
	case Newtonian:
		return h.Newtonian.Any(p.N)
	case Relativistic:
		return h.Relativistic.Any(p.R)
	default:
		panic(fmt.Sprintf("physics: unhandled hydro kind %v", h.Kind))
	}
}

// ZeroConserved returns the additive identity for the active back-end,
// used to seed divergence/source accumulation in the scheme package.
func (h Hydro) ZeroConserved() Conserved {
	return Conserved{Kind: h.Kind}
}

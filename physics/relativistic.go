// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"math"

	"sphyd/errs"
)

// RelativisticPrimitive is the comoving density, gamma-beta velocity,
// and gas pressure state of the special-relativistic back-end.
type RelativisticPrimitive struct {
	MassDensity float64
	GammaBetaR  float64
	GammaBetaQ  float64
	GasPressure float64
}

// LorentzFactor returns gamma = sqrt(1 + (gamma*beta)^2).
func (p RelativisticPrimitive) LorentzFactor() float64 {
	return math.Sqrt(1.0 + p.GammaBetaR*p.GammaBetaR + p.GammaBetaQ*p.GammaBetaQ)
}

func (p RelativisticPrimitive) add(o RelativisticPrimitive) RelativisticPrimitive {
	return RelativisticPrimitive{
		MassDensity: p.MassDensity + o.MassDensity,
		GammaBetaR:  p.GammaBetaR + o.GammaBetaR,
		GammaBetaQ:  p.GammaBetaQ + o.GammaBetaQ,
		GasPressure: p.GasPressure + o.GasPressure,
	}
}

func (p RelativisticPrimitive) sub(o RelativisticPrimitive) RelativisticPrimitive {
	return RelativisticPrimitive{
		MassDensity: p.MassDensity - o.MassDensity,
		GammaBetaR:  p.GammaBetaR - o.GammaBetaR,
		GammaBetaQ:  p.GammaBetaQ - o.GammaBetaQ,
		GasPressure: p.GasPressure - o.GasPressure,
	}
}

func (p RelativisticPrimitive) scale(a float64) RelativisticPrimitive {
	return RelativisticPrimitive{
		MassDensity: p.MassDensity * a,
		GammaBetaR:  p.GammaBetaR * a,
		GammaBetaQ:  p.GammaBetaQ * a,
		GasPressure: p.GasPressure * a,
	}
}

// RelativisticConserved is (lab-frame mass density, radial momentum,
// polar momentum, total energy density less rest mass) per unit
// volume, all measured in units where c = LightSpeed.
type RelativisticConserved struct {
	Mass       float64
	MomentumR  float64
	MomentumQ  float64
	EnergyDens float64
}

// LabFrameMass is gamma*rho for relativistic flow (GLOSSARY).
func (c RelativisticConserved) LabFrameMass() float64 { return c.Mass }

func (c RelativisticConserved) add(o RelativisticConserved) RelativisticConserved {
	return RelativisticConserved{
		Mass:       c.Mass + o.Mass,
		MomentumR:  c.MomentumR + o.MomentumR,
		MomentumQ:  c.MomentumQ + o.MomentumQ,
		EnergyDens: c.EnergyDens + o.EnergyDens,
	}
}

func (c RelativisticConserved) sub(o RelativisticConserved) RelativisticConserved {
	return RelativisticConserved{
		Mass:       c.Mass - o.Mass,
		MomentumR:  c.MomentumR - o.MomentumR,
		MomentumQ:  c.MomentumQ - o.MomentumQ,
		EnergyDens: c.EnergyDens - o.EnergyDens,
	}
}

func (c RelativisticConserved) scale(a float64) RelativisticConserved {
	return RelativisticConserved{
		Mass:       c.Mass * a,
		MomentumR:  c.MomentumR * a,
		MomentumQ:  c.MomentumQ * a,
		EnergyDens: c.EnergyDens * a,
	}
}

// RelativisticHydro is the special-relativistic back-end, 2D
// axisymmetric, grounded on the original implementation's
// RelativisticHydro struct (gamma_law_index, plm_theta, cfl_number,
// runge_kutta_order, riemann_solver, adaptive_time_step).
type RelativisticHydro struct {
	GammaLawIndex        float64         `yaml:"gamma_law_index"`
	PlmTheta             float64         `yaml:"plm_theta"`
	CflNumber            float64         `yaml:"cfl_number"`
	RungeKuttaOrder      RungeKuttaOrder `yaml:"runge_kutta_order"`
	RiemannSolverKind    RiemannSolver   `yaml:"riemann_solver"`
	AdaptiveTimeStep     bool            `yaml:"adaptive_time_step"`
	HealNegativePressure bool            `yaml:"heal_negative_pressure"`
}

// Validate checks the parameter ranges from §4.2's trait contract.
func (h RelativisticHydro) Validate() error {
	if h.PlmTheta < 1.0 || h.PlmTheta > 2.0 {
		return errs.ConfigValidationErr("relativistic hydro: plm_theta must be in [1, 2], got %g", h.PlmTheta)
	}
	if h.CflNumber < 0.0 || h.CflNumber > 0.7 {
		return errs.ConfigValidationErr("relativistic hydro: cfl_number must be in [0, 0.7], got %g", h.CflNumber)
	}
	if h.GammaLawIndex <= 1.0 {
		return errs.ConfigValidationErr("relativistic hydro: gamma_law_index must be > 1, got %g", h.GammaLawIndex)
	}
	return nil
}

// PLMGradientPrimitive computes the component-wise minmod-limited
// slope of a stencil of three colinear primitive states.
func (h RelativisticHydro) PLMGradientPrimitive(a, b, c RelativisticPrimitive) RelativisticPrimitive {
	return RelativisticPrimitive{
		MassDensity: minmodCenter(a.MassDensity, b.MassDensity, c.MassDensity, h.PlmTheta),
		GammaBetaR:  minmodCenter(a.GammaBetaR, b.GammaBetaR, c.GammaBetaR, h.PlmTheta),
		GammaBetaQ:  minmodCenter(a.GammaBetaQ, b.GammaBetaQ, c.GammaBetaQ, h.PlmTheta),
		GasPressure: minmodCenter(a.GasPressure, b.GasPressure, c.GasPressure, h.PlmTheta),
	}
}

// PLMGradientScalar is the scalar-field counterpart of PLMGradientPrimitive.
func (h RelativisticHydro) PLMGradientScalar(a, b, c float64) float64 {
	return minmodCenter(a, b, c, h.PlmTheta)
}

// ToPrimitive is the panicking primitive-recovery variant (§4.2).
func (h RelativisticHydro) ToPrimitive(u RelativisticConserved) RelativisticPrimitive {
	p, err := h.TryToPrimitive(u)
	if err != nil {
		panic(err)
	}
	return p
}

// negativePressureFloorFactor is the healing floor of §4.2/SPEC_FULL §4.2:
// 1e-3 * density.
const negativePressureFloorFactor = 1e-3

// TryToPrimitive recovers the comoving density, gamma-beta velocity,
// and pressure from the conserved state via a 1-D root-find on the
// pressure (§4.2). The root-finder is a bisection+Newton hybrid with
// the pressure bracketed to [density*1e-12, 1e12] and capped at 100
// iterations
// (SPEC_FULL.md §4.2).
func (h RelativisticHydro) TryToPrimitive(u RelativisticConserved) (RelativisticPrimitive, error) {
	if u.EnergyDens <= 0 {
		return RelativisticPrimitive{}, errs.NegativeEnergyDensityErr(u.EnergyDens)
	}
	d := u.Mass
	if d <= 0 {
		return RelativisticPrimitive{}, errs.NegativeDensityErr(d)
	}
	sr, sq := u.MomentumR, u.MomentumQ
	ssq := sr*sr + sq*sq
	tau := u.EnergyDens

	// residual(p) = 0 at the true pressure, following the standard
	// Noble-style 2D SRHD primitive inversion.
	residual := func(p float64) (float64, float64, float64) {
		wGuess := tau + d + p
		if wGuess <= 0 {
			wGuess = d
		}
		v2 := ssq / (wGuess * wGuess)
		if v2 >= 1 {
			v2 = 1 - 1e-12
		}
		w := math.Sqrt(1.0 - v2)
		rho := d * w
		eps := (wGuess*w*w - rho) / (rho * h.GammaLawIndex)
		pGuess := (h.GammaLawIndex - 1.0) * rho * eps
		return pGuess - p, rho, wGuess
	}

	lo, hi := d*1e-12, 1e12
	var p float64
	var rho, wAux float64
	var flo float64
	flo, _, _ = residual(lo)
	fhi, _, _ := residual(hi)
	if flo*fhi > 0 {
		return RelativisticPrimitive{}, errs.RootFinderFailedErr(u)
	}

	p = 0.5 * (lo + hi)
	const maxIterations = 100
	converged := false
	for i := 0; i < maxIterations; i++ {
		fp, rhoI, wI := residual(p)
		rho, wAux = rhoI, wI
		if math.Abs(fp) < 1e-12*(1+math.Abs(p)) {
			converged = true
			break
		}
		if fp*flo < 0 {
			hi = p
		} else {
			lo, flo = p, fp
		}
		// Newton step when the bracket is well-behaved; fall back to
		// bisection on divergence or a non-finite step.
		eps := 1e-6 * (1 + math.Abs(p))
		fPlus, _, _ := residual(p + eps)
		deriv := (fPlus - fp) / eps
		next := p
		if deriv != 0 {
			next = p - fp/deriv
		}
		if !math.IsNaN(next) && !math.IsInf(next, 0) && next > lo && next < hi {
			p = next
		} else {
			p = 0.5 * (lo + hi)
		}
	}
	if !converged {
		return RelativisticPrimitive{}, errs.RootFinderFailedErr(u)
	}

	if p <= 0 {
		if !h.HealNegativePressure {
			return RelativisticPrimitive{}, errs.NegativePressureErr(p)
		}
		p = negativePressureFloorFactor * rho
	}

	return RelativisticPrimitive{
		MassDensity: rho,
		GammaBetaR:  sr / wAux,
		GammaBetaQ:  sq / wAux,
		GasPressure: p,
	}, nil
}

// ToConserved is the total conversion from primitive to conserved
// variables (§4.2).
func (h RelativisticHydro) ToConserved(p RelativisticPrimitive) RelativisticConserved {
	gamma := p.LorentzFactor()
	eps := p.GasPressure / ((h.GammaLawIndex - 1.0) * p.MassDensity)
	enthalpy := 1.0 + eps + p.GasPressure/p.MassDensity
	w := p.MassDensity * gamma * gamma * enthalpy
	return RelativisticConserved{
		Mass:       p.MassDensity * gamma,
		MomentumR:  w * p.GammaBetaR / gamma,
		MomentumQ:  w * p.GammaBetaQ / gamma,
		EnergyDens: w - p.GasPressure - p.MassDensity*gamma,
	}
}

// MaxSignalSpeed returns the largest wave speed magnitude (fraction of
// c) in either grid direction.
func (h RelativisticHydro) MaxSignalSpeed(p RelativisticPrimitive) float64 {
	gamma := p.LorentzFactor()
	betaR := p.GammaBetaR / gamma
	betaQ := p.GammaBetaQ / gamma
	cs2 := h.GammaLawIndex * p.GasPressure / (p.MassDensity * (1.0 + h.GammaLawIndex/(h.GammaLawIndex-1.0)*p.GasPressure/p.MassDensity))
	cs := math.Sqrt(math.Max(0, cs2))
	speed := math.Hypot(betaR, betaQ)
	v := (speed + cs) / (1.0 + speed*cs)
	return v
}

// GlobalSignalSpeed returns (LightSpeed, true) when adaptive_time_step
// is false, meaning the driver may assume the speed of light
// everywhere rather than reducing over cells (§4.2/§4.4).
func (h RelativisticHydro) GlobalSignalSpeed() (float64, bool) {
	if h.AdaptiveTimeStep {
		return 0, false
	}
	return LightSpeed, true
}

// CFLNumber returns the configured CFL number.
func (h RelativisticHydro) CFLNumber() float64 { return h.CflNumber }

// Interpret maps an AnyPrimitive (gamma-beta velocities for
// relativistic flow) to the back-end's own primitive representation.
func (h RelativisticHydro) Interpret(any AnyPrimitive) RelativisticPrimitive {
	return RelativisticPrimitive{
		MassDensity: any.MassDensity,
		GammaBetaR:  any.VelocityR,
		GammaBetaQ:  any.VelocityQ,
		GasPressure: any.GasPressure,
	}
}

// Any is the reverse of Interpret, for serialisation.
func (h RelativisticHydro) Any(p RelativisticPrimitive) AnyPrimitive {
	return AnyPrimitive{
		VelocityR:   p.GammaBetaR,
		VelocityQ:   p.GammaBetaQ,
		MassDensity: p.MassDensity,
		GasPressure: p.GasPressure,
	}
}

// GeometricalSourceTerms returns the spherical-geometry pressure
// divergence source, scaled by c to match the conserved variables'
// units (§4.2: "For relativistic: scaled by c").
func (h RelativisticHydro) GeometricalSourceTerms(p RelativisticPrimitive, pos Position) RelativisticConserved {
	if pos.R == 0 {
		return RelativisticConserved{}
	}
	return RelativisticConserved{
		MomentumQ: LightSpeed * p.GasPressure / (pos.R * math.Tan(pos.Theta)),
	}
}

// GravitationalSourceTerms is zero by default (§4.2).
func (h RelativisticHydro) GravitationalSourceTerms(p RelativisticPrimitive, pos Position) RelativisticConserved {
	return RelativisticConserved{}
}

func velocityAlongRel(p RelativisticPrimitive, dir Direction) float64 {
	gamma := p.LorentzFactor()
	if dir == Radial {
		return p.GammaBetaR / gamma
	}
	return p.GammaBetaQ / gamma
}

func (h RelativisticHydro) relFlux(p RelativisticPrimitive, u RelativisticConserved, dir Direction) RelativisticConserved {
	v := velocityAlongRel(p, dir)
	return RelativisticConserved{
		Mass:       u.Mass * v,
		MomentumR:  u.MomentumR*v + boolToF64(dir == Radial)*p.GasPressure,
		MomentumQ:  u.MomentumQ*v + boolToF64(dir == Polar)*p.GasPressure,
		EnergyDens: (u.EnergyDens + p.GasPressure) * v,
	}
}

// IntercellFlux dispatches to an HLLE-family solver for both
// riemann_solver settings, scaled by c for the relativistic back-end
// (§4.2). HLLC's contact-resolving correction is not separately
// modeled; see newtonian.go's IntercellFlux for the same grounding
// note.
func (h RelativisticHydro) IntercellFlux(pl, pr RelativisticPrimitive, sl, sr float64, solver RiemannSolver, dir Direction) (RelativisticConserved, float64) {
	ul, ur := h.ToConserved(pl), h.ToConserved(pr)
	fl, fr := h.relFlux(pl, ul, dir), h.relFlux(pr, ur, dir)

	vl, vr := velocityAlongRel(pl, dir), velocityAlongRel(pr, dir)
	csl := relSoundSpeed(h, pl)
	csr := relSoundSpeed(h, pr)
	am := math.Min(0, math.Min(relWaveSpeed(vl, csl, -1), relWaveSpeed(vr, csr, -1)))
	ap := math.Max(0, math.Max(relWaveSpeed(vl, csl, 1), relWaveSpeed(vr, csr, 1)))

	if ap-am == 0 {
		return RelativisticConserved{}, 0
	}
	hlle := fl.scale(ap).sub(fr.scale(am)).add(ur.sub(ul).scale(ap * am)).scale(LightSpeed / (ap - am))

	fsl, fsr := sl*vl, sr*vr
	scalarFlux := LightSpeed * (ap*fsl - am*fsr + ap*am*(sr-sl)) / (ap - am)
	return hlle, scalarFlux
}

func relSoundSpeed(h RelativisticHydro, p RelativisticPrimitive) float64 {
	cs2 := h.GammaLawIndex * p.GasPressure / (p.MassDensity * (1.0 + h.GammaLawIndex/(h.GammaLawIndex-1.0)*p.GasPressure/p.MassDensity))
	return math.Sqrt(math.Max(0, cs2))
}

// relWaveSpeed applies the relativistic velocity-addition formula for
// the extremal signal speed in the given direction (sign = -1 for the
// left-going wave, +1 for the right-going wave).
func relWaveSpeed(v, cs float64, sign float64) float64 {
	return (v + sign*cs) / (1.0 + sign*v*cs)
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import "github.com/fxamacker/cbor/v2"

// MarshalCBOR encodes AnyPrimitive as the 4-tuple array
// (velocity_r, velocity_q, mass_density, gas_pressure) called out in
// §3 and §6, matching the original implementation's serde tuple form
// rather than a field-name map — snapshot files stay compact and
// order-stable across a Go/Rust boundary-free history.
func (p AnyPrimitive) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal([4]float64{p.VelocityR, p.VelocityQ, p.MassDensity, p.GasPressure})
}

// UnmarshalCBOR decodes the 4-tuple array form produced by MarshalCBOR.
func (p *AnyPrimitive) UnmarshalCBOR(data []byte) error {
	var tuple [4]float64
	if err := cbor.Unmarshal(data, &tuple); err != nil {
		return err
	}
	p.VelocityR, p.VelocityQ, p.MassDensity, p.GasPressure = tuple[0], tuple[1], tuple[2], tuple[3]
	return nil
}

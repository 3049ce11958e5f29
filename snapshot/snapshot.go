// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package snapshot encodes and decodes the full application state
// (solver state, recurring-task bookkeeping, configuration, and
// version string) to and from CBOR, the checkpoint format of §6. It
// is the boundary-completeness counterpart of spec.md §8 property 5:
// round-tripping an App through Write/Read must reproduce it exactly.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"sphyd/blockstate"
	"sphyd/config"
	"sphyd/model"
)

// Tasks bundles the two recurring host-side side effects §6 schedules
// against simulation time: periodic checkpoint writes and periodic
// diagnostic-product dumps. It is plain bookkeeping, not core solver
// state, but it must survive a checkpoint/restore cycle so a resumed
// run does not immediately re-fire a task whose interval has already
// elapsed (or, worse, lose track of Count for a products series).
type Tasks struct {
	Checkpoint model.RecurringTask
	Products   model.RecurringTask
}

// App is the complete unit of checkpoint persistence: everything a
// resumed run needs to continue as if it had never stopped.
type App struct {
	State   *blockstate.State
	Tasks   Tasks
	Config  config.Root
	Version string
}

// magic tags the start of every snapshot so Read can reject files that
// are not sphyd checkpoints before attempting a CBOR decode, mirroring
// the teacher's own convention of validating input shape before use
// rather than surfacing a raw decode panic/error to the user.
const magic = "SPHYD1\x00"

// wire is the on-disk CBOR envelope: the magic string followed by the
// application payload, kept separate from App itself so App's own
// field set stays exactly what §6 names.
type wire struct {
	Magic   string
	Payload App
}

// Write serialises app as a CBOR checkpoint.
func Write(app App) ([]byte, error) {
	if app.State == nil {
		return nil, fmt.Errorf("snapshot: cannot write a checkpoint with no solver state")
	}
	return cbor.Marshal(wire{Magic: magic, Payload: app})
}

// Read decodes a CBOR checkpoint previously produced by Write.
func Read(data []byte) (App, error) {
	var w wire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return App{}, fmt.Errorf("snapshot: %w", err)
	}
	if w.Magic != magic {
		return App{}, fmt.Errorf("snapshot: not a sphyd checkpoint (bad magic %q)", w.Magic)
	}
	return w.Payload, nil
}

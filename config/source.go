// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"path/filepath"

	"github.com/cpmech/gosl/io"
)

// ReadFile loads a configuration or overlay file from disk, the way
// inp/sim.go's ReadSim reads its .sim input with io.ReadFile rather
// than the standard library.
func ReadFile(path string) ([]byte, error) {
	data, err := io.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}
	return data, nil
}

// KeyFromPath returns path's base filename with its extension
// stripped, mirroring inp/sim.go's own `fn := filepath.Base(simfilepath);
// fnkey := io.FnKey(fn)`: used by cmd/sphyd to name checkpoint files
// and tag log lines after the input file.
func KeyFromPath(path string) string {
	return io.FnKey(filepath.Base(path))
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"embed"
	"sort"
)

//go:embed presets/*.yaml
var presetFiles embed.FS

// PresetNames returns the embedded preset names in sorted order, for
// the CLI's no-argument listing (§6).
func PresetNames() []string {
	entries, err := presetFiles.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		names = append(names, name[:len(name)-len(".yaml")])
	}
	sort.Strings(names)
	return names
}

// Preset returns the raw YAML text of the named preset.
func Preset(name string) ([]byte, bool) {
	data, err := presetFiles.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, false
	}
	return data, true
}

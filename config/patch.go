// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"sphyd/errs"
)

// Patch deep-merges overlay into base as untyped YAML trees and
// re-marshals the result. Scalars and sequences in overlay overwrite
// the corresponding base value, nested maps are merged key by key,
// and base keys absent from overlay are kept.
// Because every overlay key simply overwrites its target, applying
// the same overlay twice in a row yields the same tree as applying it
// once (spec.md §8 property 4).
func Patch(base, overlay []byte) ([]byte, error) {
	var baseTree, overlayTree map[string]interface{}
	if err := yaml.Unmarshal(base, &baseTree); err != nil {
		return nil, fmt.Errorf("config: cannot parse base configuration: %w", err)
	}
	if err := yaml.Unmarshal(overlay, &overlayTree); err != nil {
		return nil, fmt.Errorf("config: cannot parse overlay: %w", err)
	}
	merged := mergeMaps(baseTree, overlayTree)
	out, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("config: cannot re-marshal merged configuration: %w", err)
	}
	return out, nil
}

// mergeMaps returns a new map holding base's entries overwritten by
// overlay's, recursing into nested maps so e.g. a "mesh" overlay block
// only touches the mesh keys it names.
func mergeMaps(base, overlay map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if nested, ok := v.(map[string]interface{}); ok {
			if existing, ok := out[k].(map[string]interface{}); ok {
				out[k] = mergeMaps(existing, nested)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// SetPath applies a single group.key=value override (possibly
// group.sub.key=value for deeper nesting) to base, returning the
// patched YAML. value is parsed as a YAML scalar (so "true", "1.5",
// and bare words all get their natural type) before being placed in
// the tree.
func SetPath(base []byte, dotted, value string) ([]byte, error) {
	path := strings.Split(dotted, ".")
	if len(path) < 2 {
		return nil, errs.ConfigValidationErr("override key %q must be of the form group.key", dotted)
	}
	var scalar interface{}
	if err := yaml.Unmarshal([]byte(value), &scalar); err != nil {
		return nil, errs.ConfigValidationErr("override value %q for %q is not valid YAML: %v", value, dotted, err)
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(base, &tree); err != nil {
		return nil, fmt.Errorf("config: cannot parse base configuration: %w", err)
	}
	if tree == nil {
		tree = map[string]interface{}{}
	}
	setNested(tree, path, scalar)

	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("config: cannot re-marshal patched configuration: %w", err)
	}
	return out, nil
}

func setNested(tree map[string]interface{}, path []string, value interface{}) {
	key := path[0]
	if len(path) == 1 {
		tree[key] = value
		return
	}
	child, ok := tree[key].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
	}
	setNested(child, path[1:], value)
	tree[key] = child
}

// Override is a single resolved CLI override: either a group.key=value
// assignment or the contents of a YAML overlay file.
type Override struct {
	KeyPath string // empty when this is a file overlay
	Value   string
	Overlay []byte // non-nil when this is a file overlay
}

// ParseOverride classifies a CLI override token: a bare "group.key=value"
// pair, or (absent "=") a path meant to be read by the caller and
// passed back in as an Overlay.
func ParseOverride(token string) (Override, bool) {
	if idx := strings.Index(token, "="); idx >= 0 {
		return Override{KeyPath: token[:idx], Value: token[idx+1:]}, true
	}
	return Override{}, false
}

// Apply threads a sequence of already-resolved overrides through base
// in order, each seeing the result of the previous one (§6's "patch
// the configuration via nested map merging").
func Apply(base []byte, overrides []Override) ([]byte, error) {
	current := base
	var err error
	for _, o := range overrides {
		if o.Overlay != nil {
			current, err = Patch(current, o.Overlay)
		} else {
			current, err = SetPath(current, o.KeyPath, o.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cpmech/gosl/io"

	"sphyd/app"
	"sphyd/blockstate"
	"sphyd/config"
	"sphyd/errs"
	"sphyd/logx"
)

// version is overwritten at build time with -ldflags, the way the
// teacher's own binary carries a fixed copyright/version banner.
var version = "dev"

func main() {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := errs.AsFault(asError(r)); ok {
				io.PfRed("ERROR: %s\n", f.Error())
			} else {
				io.PfRed("ERROR: %v\n", r)
			}
			os.Exit(1)
		}
	}()

	io.PfWhite("\nsphyd %s -- axisymmetric compressible hydrodynamics\n\n", version)

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	root, err := loadConfig(args[0], args[1:])
	if err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
	if err := root.Validate(); err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}

	if err := run(root, args[0]); err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves input as either an embedded preset name or a
// filesystem path, then folds the remaining args in as overrides
// (group.key=value tokens or overlay-file paths), per §6.
func loadConfig(input string, overrideArgs []string) (config.Root, error) {
	base, err := resolveBase(input)
	if err != nil {
		return config.Root{}, err
	}

	var overrides []config.Override
	for _, token := range overrideArgs {
		if ov, ok := config.ParseOverride(token); ok {
			overrides = append(overrides, ov)
			continue
		}
		overlay, err := config.ReadFile(token)
		if err != nil {
			return config.Root{}, fmt.Errorf("reading overlay %q: %w", token, err)
		}
		overrides = append(overrides, config.Override{Overlay: overlay})
	}

	merged, err := config.Apply(base, overrides)
	if err != nil {
		return config.Root{}, err
	}
	return config.Parse(merged)
}

func resolveBase(input string) ([]byte, error) {
	if preset, ok := config.Preset(input); ok {
		return preset, nil
	}
	data, err := config.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("%w (and no preset is registered under that name; run with no arguments to list presets)", err)
	}
	return data, nil
}

func run(root config.Root, inputName string) error {
	key := config.KeyFromPath(inputName)
	log := logx.New(key)

	hydro, err := root.BuildHydro()
	if err != nil {
		return err
	}
	state, err := blockstate.NewState(hydro, root.Mesh, root.Model.Model, root.Control.StartTime)
	if err != nil {
		return err
	}

	a, err := app.New(root, state, version, log)
	if err != nil {
		return err
	}
	a.WriteCheckpoint = app.FileCheckpointWriter(root.Control.OutputDir(), key)

	if err := a.Run(); err != nil {
		return err
	}
	return nil
}

func printUsage() {
	io.Pf("usage: sphyd <input.yaml|preset> [group.key=value | overlay.yaml ...]\n\n")
	io.Pf("available presets:\n")
	for _, name := range config.PresetNames() {
		io.Pf("  %s\n", name)
	}
}

// asError normalises a recover() value to an error so errs.AsFault can
// inspect it; recover returns interface{}, and a panic(err) where err
// is already an error is the common case throughout this module.
func asError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

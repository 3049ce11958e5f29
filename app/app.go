// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app is the top-level run loop: it owns a driver.Runner and a
// blockstate.State, steps them to completion, and fires the
// checkpoint/products recurring tasks against simulation time. This is
// fem.FEM's stage loop (fem/fem.go's FEM.Run) generalised from a
// fixed sequence of FE stages to an indefinite fold of explicit time
// steps bounded by Control.FinalTime.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"sphyd/blockstate"
	"sphyd/config"
	"sphyd/driver"
	"sphyd/logx"
	"sphyd/model"
	"sphyd/snapshot"
)

// CheckpointWriter persists a byte-encoded snapshot somewhere durable
// (typically a numbered file under Control.OutputDir). Abstracted as
// a function type, the way fem.FEM.Summary.Save takes its output
// directory as a parameter rather than hardcoding a filesystem path,
// so tests can substitute an in-memory sink.
type CheckpointWriter func(data []byte, iterationCount int64) error

// ProductsWriter is called whenever the products recurring task fires;
// the actual on-disk diagnostic format is outside this module's scope
// (§2 Non-goals), so it only receives the state and is free to no-op.
type ProductsWriter func(state *blockstate.State) error

// App bundles everything app.Run needs to advance a simulation:
// mutable solver state and task bookkeeping, immutable configuration,
// and the build version string snapshot.App records for diagnostics.
type App struct {
	State   *blockstate.State
	Tasks   snapshot.Tasks
	Config  config.Root
	Version string

	Runner          *driver.Runner
	Log             *logx.Logger
	WriteCheckpoint CheckpointWriter
	WriteProducts   ProductsWriter
}

// New builds an App ready to Run: constructs the driver.Runner from
// Config, seeds Tasks' NextTime from Control's configured intervals,
// and defaults the worker-pool size to Control.Threads(runtime.NumCPU()).
func New(cfg config.Root, state *blockstate.State, version string, log *logx.Logger) (*App, error) {
	hydro, err := cfg.BuildHydro()
	if err != nil {
		return nil, err
	}
	threads := cfg.Control.Threads(runtime.NumCPU())
	runner := driver.NewRunner(hydro, cfg.Mesh, cfg.Model.Model, cfg.Hydro.Solver(), threads)

	return &App{
		State:  state,
		Config: cfg,
		Runner: runner,
		Log:    log,
		Tasks: snapshot.Tasks{
			Checkpoint: freshTask(state.Time, cfg.Control.CheckpointInterval),
			Products:   freshTask(state.Time, productsInterval(cfg.Control)),
		},
		Version: version,
	}, nil
}

func freshTask(startTime, interval float64) model.RecurringTask {
	return model.RecurringTask{NextTime: startTime + interval, LastPerformed: startTime}
}

func productsInterval(c config.ControlConfig) float64 {
	if !c.ProductsEnabled() {
		return 0
	}
	return c.ProductsInterval
}

// Run folds Fold steps at a time, checking FinalTime and firing
// recurring tasks between folds, until the configured final time is
// reached or an error occurs (§6's "fold" scheduling key: grouping
// several steps between task polls amortises the cost of checking
// wall-clock/task state on every single step).
func (a *App) Run() error {
	start := time.Now()
	for a.State.Time < a.Config.Control.FinalTime {
		for i := 0; i < a.Config.Control.Fold && a.State.Time < a.Config.Control.FinalTime; i++ {
			next, err := a.Runner.Step(a.State)
			if err != nil {
				if a.Log != nil {
					a.Log.Fail("step failed at t=%g: %v", a.State.Time, err)
				}
				return err
			}
			a.State = next
		}
		if err := a.pollTasks(); err != nil {
			return err
		}
		if a.Log != nil {
			a.Log.Info("t=%.6g iteration=%v blocks=%d", a.State.Time, a.State.Iteration, len(a.State.Solution))
		}
	}
	if err := a.checkpointNow(); err != nil {
		return err
	}
	if a.Log != nil {
		a.Log.Success("run complete, t=%.6g, wall time=%v", a.State.Time, time.Since(start))
	}
	return nil
}

// pollTasks fires the checkpoint/products recurring tasks (model.RecurringTask's
// "next_time <= state.time" contract) if either is due.
func (a *App) pollTasks() error {
	if a.Tasks.Checkpoint.Poll(a.State.Time, a.Config.Control.CheckpointInterval) {
		if err := a.checkpointNow(); err != nil {
			return err
		}
	}
	if a.Config.Control.ProductsEnabled() && a.Tasks.Products.Poll(a.State.Time, a.Config.Control.ProductsInterval) {
		if a.WriteProducts != nil {
			if err := a.WriteProducts(a.State); err != nil {
				return fmt.Errorf("app: products task failed: %w", err)
			}
		}
	}
	return nil
}

func (a *App) checkpointNow() error {
	if a.WriteCheckpoint == nil {
		return nil
	}
	data, err := snapshot.Write(snapshot.App{
		State:   a.State,
		Tasks:   a.Tasks,
		Config:  a.Config,
		Version: a.Version,
	})
	if err != nil {
		return fmt.Errorf("app: failed to encode checkpoint: %w", err)
	}
	return a.WriteCheckpoint(data, int64(a.Tasks.Checkpoint.Count))
}

// FileCheckpointWriter returns a CheckpointWriter that writes numbered
// ".sphyd" files under dir, mirroring the teacher's own
// Sim.DirOut/Sim.Key file-naming convention.
func FileCheckpointWriter(dir, key string) CheckpointWriter {
	return func(data []byte, iterationCount int64) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("%s-%06d.sphyd", key, iterationCount))
		return os.WriteFile(name, data, 0o644)
	}
}

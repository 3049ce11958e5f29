// Copyright 2024 The Sphyd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx is a thin, colourised progress-logging wrapper over
// github.com/cpmech/gosl/io, the same package fem/fem.go prints its
// "> Setting stage", "> Success"/"> Failed" progress lines through.
// sphyd has no structured-logging dependency in its corpus, so run
// progress is reported the way the teacher already reports it: plain
// stdout lines, colour reserved for pass/fail and warning emphasis.
package logx

import (
	"fmt"
	"sync"

	"github.com/cpmech/gosl/io"
)

// Logger prints run-progress lines with an optional prefix, the way
// fem.FEM's own "> " progress markers identify solver output. It adds
// a mutex because the worker-pool driver package may log heal/warning
// events from multiple goroutines during a single RK sub-stage.
type Logger struct {
	mu     sync.Mutex
	prefix string

	// warnedOnce de-duplicates Warn calls carrying the same key, so a
	// condition that recurs every cell of every step (e.g. a healed
	// negative pressure) produces one line, not a flood (§9 open
	// question 2's resolution).
	warnedOnce map[string]bool
}

// New returns a Logger that prefixes every line with prefix (typically
// the binary name or the input file's base name).
func New(prefix string) *Logger {
	return &Logger{prefix: prefix, warnedOnce: map[string]bool{}}
}

func (l *Logger) line(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return "> " + msg
	}
	return "> [" + l.prefix + "] " + msg
}

// Info prints a plain progress line.
func (l *Logger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	io.Pf("%s\n", l.line(format, args...))
}

// Success prints a green confirmation line, mirroring fem.FEM's
// "> Success" marker on a completed stage.
func (l *Logger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	io.PfGreen("%s\n", l.line(format, args...))
}

// Fail prints a red failure line, mirroring fem.FEM's "> Failed"
// marker.
func (l *Logger) Fail(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	io.PfRed("%s\n", l.line(format, args...))
}

// Warn prints a yellow warning line the first time it is called with a
// given key; later calls with the same key are suppressed for the
// Logger's lifetime. No solver package calls it: a healed negative
// pressure in the relativistic back-end is not logged.
func (l *Logger) Warn(key, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.warnedOnce[key] {
		return
	}
	l.warnedOnce[key] = true
	io.PfYel("%s\n", l.line(format, args...))
}

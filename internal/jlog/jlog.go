// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package jlog centralizes the gateway's logging setup, the way
// csvload_main.go and csvdbforeach/main.go wire up github.com/UNO-SOFT/zlog/v2
// for every dbcsv command.
package jlog

import (
	"log/slog"
	"os"

	"github.com/UNO-SOFT/zlog/v2"
)

// Verbose controls console verbosity; cmd/jdbcx binds it to its -verbose
// flag the way
// csvload_main.go does with zlog.VerboseVar.
var Verbose zlog.VerboseVar

var base = zlog.NewLogger(zlog.MaybeConsoleHandler(&Verbose, os.Stderr))

// Logger returns the process-wide *slog.Logger.
func Logger() *slog.Logger { return base.SLog() }

// Nop returns a logger that discards everything, used as the nil-safe
// default threaded through components that accept an optional *slog.Logger.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Or returns l if non-nil, else Nop().
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

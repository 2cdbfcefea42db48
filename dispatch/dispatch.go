// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package dispatch implements the rewrite pipeline of spec §4.6: for each
// parsed block, resolve its extension, merge configuration, run the
// listener, splice its output back into the document, then resolve
// variable references and hand the final text to an outer driver listener.
package dispatch

import (
	"strings"
	"sync"

	"github.com/UNO-SOFT/jdbcx/internal/errs"
	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/internal/value"
	"github.com/UNO-SOFT/jdbcx/option"
	"github.com/UNO-SOFT/jdbcx/parser"
	"github.com/UNO-SOFT/jdbcx/registry"
	"github.com/UNO-SOFT/jdbcx/varsub"
)

// Prefix is the jdbcx property-key prefix of spec §4.3
// ("<jdbcx_prefix>.<option>", "<jdbcx_prefix>.<ext>.<option>").
const Prefix = "jdbcx"

// ErrorHandling is the per-block error policy of option "error.handling"
// (spec §4.6).
type ErrorHandling string

const (
	ErrorThrow  ErrorHandling = "throw"
	ErrorWarn   ErrorHandling = "warn"
	ErrorIgnore ErrorHandling = "ignore"
)

// Warnings is the connection's warning chain (spec §4.6 "A warning attaches
// to the connection's warning chain without interrupting the pipeline").
// It is owned by the connection wrapper (package sqlwrap) and threaded into
// Rewrite by reference.
type Warnings struct {
	mu   sync.Mutex
	errs []error
}

// Add appends err to the chain.
func (w *Warnings) Add(err error) {
	if w == nil || err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errs = append(w.errs, err)
}

// Chain returns a snapshot of the accumulated warnings as an errs.Chain.
func (w *Warnings) Chain() errs.Chain {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append(errs.Chain(nil), w.errs...)
}

// DriverListener is the outer text transform applied to the fully-rewritten
// query before it is handed to the wrapped driver (spec §4.6 "driver_listener
// .on_query(final) # outer transform, e.g., PRQL→SQL compile").
type DriverListener func(text string) (string, error)

// Dispatcher runs the rewrite pipeline over a ParsedQuery.
type Dispatcher struct {
	Registry        *registry.Registry
	Default         registry.Extension // used when a block's extension name is unresolved, if set
	DriverListener  DriverListener
	StrictVariables bool
}

// New builds a Dispatcher over reg.
func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{Registry: reg}
}

// Rewrite runs the full pipeline of spec §4.6 over pq, returning the final
// query text to hand to the wrapped driver. conn is passed through
// unmodified to each extension's CreateListener (typically *sqlwrap.Connection,
// left untyped here to avoid an import cycle). connProps is the
// connection's raw property map (not yet prefix-stripped — Rewrite does
// that per extension).
func (d *Dispatcher) Rewrite(pq *parser.ParsedQuery, qc *qctx.QueryContext, conn any, connProps map[string]string, warnings *Warnings) (string, error) {
	parts := append([]string(nil), pq.Parts...)

	for _, blk := range pq.Blocks {
		ext, ok := d.Registry.Resolve(blk.Extension)
		if !ok {
			ext = d.Default
		}
		if ext == nil {
			return "", errs.Client("dispatch.Rewrite", unknownExtensionError(blk.Extension))
		}

		prefix := Prefix + "." + strings.ToLower(ext.Name())
		overlay := option.StripPrefix(connProps, prefix)
		cfg := option.Merge(option.Defaults(ext.DefaultOptions()), overlay, blk.Options)

		lis, err := ext.CreateListener(qc, conn, cfg)
		if err != nil {
			return "", err
		}

		result, runErr := lis.Invoke(blk.Body)
		text, err := d.resolveBlockOutcome(qc, lis, blk, cfg, result, runErr, warnings)
		if err != nil {
			return "", err
		}
		parts[blk.Index] = text
	}

	final := strings.Join(parts, "")
	final, err := varsub.Resolve(final, qc.Tag, qc.Lookup, d.StrictVariables)
	if err != nil {
		return "", err
	}
	if d.DriverListener != nil {
		return d.DriverListener(final)
	}
	return final, nil
}

// resolveBlockOutcome applies cfg's error.handling policy to runErr, and on
// success (or on the "warn"/"ignore" paths) computes the substitution text
// for the block, publishing result_var as needed (spec §4.6).
func (d *Dispatcher) resolveBlockOutcome(qc *qctx.QueryContext, lis *registry.Listener, blk parser.ExecutableBlock, cfg option.Config, result *value.Result, runErr error, warnings *Warnings) (string, error) {
	if runErr != nil {
		runErr = lis.TransformError(runErr)
		switch ErrorHandling(cfg.GetOr("error.handling", string(ErrorThrow))) {
		case ErrorWarn:
			warnings.Add(runErr)
			return blk.Body, nil
		case ErrorIgnore:
			warnings.Add(runErr)
			return "", nil
		default:
			return "", runErr
		}
	}

	if !blk.HasOutput {
		return "", nil
	}

	result, err := lis.WrapResult(result)
	if err != nil {
		return "", err
	}

	resultVar := cfg.GetOr("result_var", "")
	text, err := stringify(qc, result, resultVar)
	if err != nil {
		return "", err
	}
	if resultVar != "" {
		qc.Vars.Set(qctx.ScopeQuery, resultVar, text)
	}
	return text, nil
}

// stringify implements spec §4.6 "stringify(result)": zero fields → empty;
// one field → comma-joined asString of all rows; multi-field → the first
// column (comma-joined), additionally publishing "<var>.<fieldname>" for
// every field when resultVar is set.
func stringify(qc *qctx.QueryContext, result *value.Result, resultVar string) (string, error) {
	if result == nil {
		return "", nil
	}
	if result.IsScalar() {
		return scalarAsString(result)
	}

	fields := result.Fields()
	rows, err := result.Collect()
	if err != nil {
		return "", err
	}

	switch len(fields) {
	case 0:
		return "", nil
	case 1:
		cells, err := columnAsStrings(rows, 0)
		if err != nil {
			return "", err
		}
		return strings.Join(cells, ","), nil
	default:
		first, err := columnAsStrings(rows, 0)
		if err != nil {
			return "", err
		}
		if resultVar != "" {
			for fi, f := range fields {
				cells, err := columnAsStrings(rows, fi)
				if err != nil {
					return "", err
				}
				qc.Vars.Set(qctx.ScopeQuery, resultVar+"."+f.Name(), strings.Join(cells, ","))
			}
		}
		return strings.Join(first, ","), nil
	}
}

func columnAsStrings(rows []value.Row, col int) ([]string, error) {
	out := make([]string, len(rows))
	for i, row := range rows {
		v, ok := row.At(col)
		if !ok {
			continue
		}
		s, err := v.AsString()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func scalarAsString(result *value.Result) (string, error) {
	payload, _ := result.Scalar()
	switch p := payload.(type) {
	case nil:
		return "", nil
	case string:
		return p, nil
	case []byte:
		return string(p), nil
	default:
		return "", errs.Client("dispatch.stringify", unsupportedScalarError{})
	}
}

type unknownExtensionErr struct{ name string }

func (e unknownExtensionErr) Error() string { return "unknown extension: " + e.name }

func unknownExtensionError(name string) error { return unknownExtensionErr{name: name} }

type unsupportedScalarError struct{}

func (unsupportedScalarError) Error() string { return "scalar result payload is not string-convertible" }

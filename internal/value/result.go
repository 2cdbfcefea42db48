// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"github.com/UNO-SOFT/jdbcx/internal/errs"
)

// NextFunc advances the iterator. ok=false with err=nil means the stream is
// exhausted; ok=false with err!=nil means a failure occurred.
type NextFunc func() (row Row, ok bool, err error)

// Result is a lazy tabular stream (fields + row iterator + close hooks), or
// a single scalar payload (spec §3 "Result"). The iterator may be infinite
// and may or may not be restartable (Restartable()).
type Result struct {
	fields      []Field
	next        NextFunc
	restart     func() (NextFunc, error)
	restartable bool

	scalar   any // nil, []byte, string, or io.Reader
	isScalar bool

	closeHooks []func() error
	closed     bool
}

// NewRows builds a row-oriented Result. restart, if non-nil, makes the
// result restartable: Restart() calls it to obtain a fresh NextFunc.
func NewRows(fields []Field, next NextFunc, restart func() (NextFunc, error)) *Result {
	return &Result{fields: fields, next: next, restart: restart, restartable: restart != nil}
}

// NewScalar builds a Result wrapping a single scalar payload, consumed by
// the binary serializer (spec §4.9). payload must be []byte, string, or an
// io.Reader.
func NewScalar(payload any) *Result {
	return &Result{isScalar: true, scalar: payload}
}

func (r *Result) Fields() []Field { return r.fields }

// IsScalar reports whether this Result wraps a scalar payload instead of a
// row stream.
func (r *Result) IsScalar() bool { return r.isScalar }

// Scalar returns the wrapped payload (nil, []byte, string, or io.Reader),
// and whether this Result actually is scalar.
func (r *Result) Scalar() (any, bool) { return r.scalar, r.isScalar }

// Restartable reports whether Restart is supported.
func (r *Result) Restartable() bool { return r.restartable }

// Restart rewinds a restartable row stream to its first row.
func (r *Result) Restart() error {
	if !r.restartable {
		return errs.FeatureNotSupported("Result.Restart")
	}
	next, err := r.restart()
	if err != nil {
		return err
	}
	r.next = next
	return nil
}

// Next advances the row iterator.
func (r *Result) Next() (Row, bool, error) {
	if r.isScalar || r.next == nil {
		return Row{}, false, nil
	}
	return r.next()
}

// OnClose registers a post-close hook, run in registration order when
// Close is called (spec §3 "post_close_hooks"; used by the bridge client's
// trailer-error probe, spec §4.7 step 5).
func (r *Result) OnClose(fn func() error) {
	r.closeHooks = append(r.closeHooks, fn)
}

// Close runs every registered post-close hook in order, accumulating all
// errors into a single chained error (spec §8 property 5), and marks the
// Result closed. Calling Close twice is a no-op returning nil.
func (r *Result) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var chain errs.Chain
	for _, hook := range r.closeHooks {
		chain = errs.AppendChain(chain, hook())
	}
	return chain.AsError()
}

// Closed reports whether Close has already run.
func (r *Result) Closed() bool { return r.closed }

// Collect drains the entire row stream into a slice, for tests and for
// Dispatcher.stringify (spec §4.6). It does not close the Result.
func (r *Result) Collect() ([]Row, error) {
	var rows []Row
	for {
		row, ok, err := r.Next()
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// SliceResult builds a restartable Result that replays rows in memory, used
// by tests and by extensions whose back-end already materialized its
// output (e.g. ext/webext, ext/bridgeext).
func SliceResult(fields []Field, rows []Row) *Result {
	mk := func() NextFunc {
		i := 0
		return func() (Row, bool, error) {
			if i >= len(rows) {
				return Row{}, false, nil
			}
			row := rows[i]
			i++
			return row, true, nil
		}
	}
	return NewRows(fields, mk(), func() (NextFunc, error) { return mk(), nil })
}

// Copyright 2024, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package errs implements the error taxonomy of the gateway: every error
// that crosses a listener/dispatcher/bridge boundary carries a Kind and a
// SQLSTATE-ish Code, the way a JDBC driver would report it back to a caller.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway error into the taxonomy of spec §7.
type Kind int

const (
	// KindClient covers malformed blocks, unsupported options, bad proxy URLs.
	KindClient Kind = iota
	// KindFeatureNotSupported covers unavailable positional navigation etc.
	KindFeatureNotSupported
	// KindNoData covers access on an empty combined result set.
	KindNoData
	// KindData covers value coercion failures (number/date parse).
	KindData
	// KindConnection covers socket/unknown-host/TLS failures.
	KindConnection
	// KindCancelled covers cooperative cancellation.
	KindCancelled
	// KindServer covers non-2xx responses from bridge/web interpreters.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindFeatureNotSupported:
		return "feature-not-supported"
	case KindNoData:
		return "no-data"
	case KindData:
		return "data"
	case KindConnection:
		return "connection"
	case KindCancelled:
		return "cancelled"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// code returns the SQLSTATE-like code associated with a Kind, per spec §7.
func (k Kind) code() string {
	switch k {
	case KindClient:
		return "HY000"
	case KindFeatureNotSupported:
		return "0A000"
	case KindNoData:
		return "02000"
	case KindConnection:
		return "08000"
	case KindCancelled:
		return "HY008"
	case KindServer:
		return "HY000"
	default:
		return "HY000"
	}
}

// Error is the gateway's typed error. DataError is deliberately NOT always
// of this type: spec §7 says it must surface "as the exception class
// expected by the call site" — callers that parse/format values should
// keep using *strconv.NumError/*time.ParseError directly and only wrap it
// in Error at a boundary that needs a Code().
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the SQLSTATE-like code for this error.
func (e *Error) Code() string { return e.Kind.code() }

// New builds an *Error of the given kind wrapping err, tagged with op for
// diagnostics (typically a component/operation name).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Client wraps err as a KindClient error.
func Client(op string, err error) *Error { return New(KindClient, op, err) }

// FeatureNotSupported builds a KindFeatureNotSupported error.
func FeatureNotSupported(op string) *Error {
	return New(KindFeatureNotSupported, op, errors.New("feature not supported"))
}

// NoData builds a KindNoData error.
func NoData(op string) *Error {
	return New(KindNoData, op, errors.New("no data"))
}

// Connection wraps err as a KindConnection error.
func Connection(op string, err error) *Error { return New(KindConnection, op, err) }

// Cancelled wraps err (usually context.Canceled) as a KindCancelled error.
func Cancelled(op string, err error) *Error { return New(KindCancelled, op, err) }

// Server wraps err as a KindServer error, optionally enriched by a
// server-reported message (see bridge's /error/<id> probe).
func Server(op string, err error) *Error { return New(KindServer, op, err) }

// Code extracts the SQLSTATE-like code from err if it (or something it
// wraps) is an *Error, else returns "HY000" as a generic fallback.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return "HY000"
}

// Chain is an ordered list of errors, used by CombinedResultSet.Close (spec
// §4.8): the first error is the head, the rest are reported as subsequent
// causes. Chain implements error and Unwrap() []error so errors.Is/As walk
// every member.
type Chain []error

func (c Chain) Error() string {
	if len(c) == 0 {
		return ""
	}
	if len(c) == 1 {
		return c[0].Error()
	}
	s := c[0].Error()
	for _, e := range c[1:] {
		s += "; " + e.Error()
	}
	return s
}

func (c Chain) Unwrap() []error { return []error(c) }

// AppendChain appends err to chain if non-nil and returns the (possibly
// new) chain.
func AppendChain(chain Chain, err error) Chain {
	if err == nil {
		return chain
	}
	return append(chain, err)
}

// AsError returns chain as an error, or nil if empty.
func (c Chain) AsError() error {
	if len(c) == 0 {
		return nil
	}
	return c
}

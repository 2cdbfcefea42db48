// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package sqlwrap implements the Connection/Statement wrappers of spec
// §4.8: every statement-producing call is routed through dispatch.Rewrite
// before reaching the wrapped database/sql driver, whose single *sql.Rows
// is returned as is. CombinedResultSet concatenates several value.Results
// into one cursor; Connection itself does not build one.
package sqlwrap

import (
	"context"
	"database/sql"

	"github.com/UNO-SOFT/jdbcx/dispatch"
	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/parser"
	"github.com/UNO-SOFT/jdbcx/vartag"
)

// Connection wraps a *sql.DB, rewriting every query/exec through the
// dispatcher before delegating to the inner driver (spec §4.8).
type Connection struct {
	DB         *sql.DB
	Dispatcher *dispatch.Dispatcher
	Proc       *qctx.ProcessStore
	ConnVars   *qctx.VarStore
	ConnProps  map[string]string
	Tag        vartag.Tag

	warnings dispatch.Warnings
}

// NewConnection builds a Connection over db, sharing proc's process-scope
// variable store and owning a fresh connection scope (spec §5 "three-scope
// variable store").
func NewConnection(db *sql.DB, d *dispatch.Dispatcher, proc *qctx.ProcessStore, connProps map[string]string, tag vartag.Tag) *Connection {
	if proc == nil {
		proc = qctx.NewProcessStore()
	}
	return &Connection{
		DB:         db,
		Dispatcher: d,
		Proc:       proc,
		ConnVars:   qctx.NewConnectionVarStore(proc),
		ConnProps:  connProps,
		Tag:        tag,
	}
}

// Warnings returns the connection's accumulated warning chain (spec §4.6
// "error.handling=warn").
func (c *Connection) Warnings() error {
	return c.warnings.Chain().AsError()
}

// rewrite parses query and runs it through the dispatcher, returning the
// substituted text ready for the inner driver.
func (c *Connection) rewrite(ctx context.Context, query string) (string, *qctx.QueryContext, error) {
	pq, err := parser.Parse(query, c.Tag.Family())
	if err != nil {
		return "", nil, err
	}
	qc := qctx.New(c.ConnVars.NewQueryVarStore(), c.Tag)
	out, err := c.Dispatcher.Rewrite(pq, qc, c, c.ConnProps, &c.warnings)
	return out, qc, err
}

// QueryContext parses, rewrites, and runs query against the inner
// *sql.DB, returning a single *sql.Rows. Multi-block documents that
// produce more than one independent result set are the CombinedResultSet's
// concern, not this pass-through.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rewritten, _, err := c.rewrite(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.DB.QueryContext(ctx, rewritten, args...)
}

// ExecContext parses, rewrites, and runs query as a non-query statement.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	rewritten, _, err := c.rewrite(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.DB.ExecContext(ctx, rewritten, args...)
}

// PrepareContext parses and rewrites query once, then prepares the
// resulting text against the inner driver; the returned Statement replays
// the already-rewritten text on every execution (spec §4.8: rewriting runs
// once, at prepare time, not per bound-parameter execution).
func (c *Connection) PrepareContext(ctx context.Context, query string) (*Statement, error) {
	rewritten, qc, err := c.rewrite(ctx, query)
	if err != nil {
		return nil, err
	}
	stmt, err := c.DB.PrepareContext(ctx, rewritten)
	if err != nil {
		return nil, err
	}
	return &Statement{stmt: stmt, qc: qc}, nil
}

// Close closes the inner *sql.DB.
func (c *Connection) Close() error {
	return c.DB.Close()
}

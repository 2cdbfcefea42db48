// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sqlwrap

import (
	"context"
	"database/sql"

	"github.com/UNO-SOFT/jdbcx/internal/qctx"
)

// Statement wraps a *sql.Stmt prepared from an already-rewritten document;
// it replays the same dispatcher output on every execution and carries the
// QueryContext that was live at prepare time (spec §4.8).
type Statement struct {
	stmt *sql.Stmt
	qc   *qctx.QueryContext
}

// QueryContext returns the QueryContext resolved when this Statement was
// prepared — listeners that stashed per-query state (e.g. the bridge
// listener's close-hook probe) read it back from here.
func (s *Statement) QueryContext() *qctx.QueryContext { return s.qc }

// Query runs the prepared statement with args, returning the raw rows.
func (s *Statement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	return s.stmt.QueryContext(ctx, args...)
}

func (s *Statement) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	return s.stmt.ExecContext(ctx, args...)
}

// Close closes the inner *sql.Stmt.
func (s *Statement) Close() error {
	return s.stmt.Close()
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package qctx

import (
	"testing"

	"github.com/UNO-SOFT/jdbcx/vartag"
)

func TestVarStoreCascadesQueryConnectionProcess(t *testing.T) {
	proc := NewProcessStore()
	conn := NewConnectionVarStore(proc)
	conn.Set(ScopeProcess, "a", "process-value")
	conn.Set(ScopeConnection, "b", "connection-value")

	q := conn.NewQueryVarStore()
	q.Set(ScopeQuery, "c", "query-value")

	for name, want := range map[string]string{"a": "process-value", "b": "connection-value", "c": "query-value"} {
		got, ok := q.Get(ScopeAny, name)
		if !ok || got != want {
			t.Errorf("Get(ScopeAny, %q) = %q, %v; want %q, true", name, got, ok, want)
		}
	}
}

func TestVarStoreQueryShadowsConnectionAndProcess(t *testing.T) {
	proc := NewProcessStore()
	conn := NewConnectionVarStore(proc)
	conn.Set(ScopeConnection, "x", "from-connection")

	q := conn.NewQueryVarStore()
	q.Set(ScopeQuery, "x", "from-query")

	got, ok := q.Get(ScopeAny, "x")
	if !ok || got != "from-query" {
		t.Errorf("got %q, %v; want from-query, true", got, ok)
	}
	// The connection-level value must survive untouched.
	got, ok = q.Get(ScopeConnection, "x")
	if !ok || got != "from-connection" {
		t.Errorf("connection scope clobbered: got %q, %v", got, ok)
	}
}

func TestVarStorePinnedScopeDoesNotCascade(t *testing.T) {
	proc := NewProcessStore()
	conn := NewConnectionVarStore(proc)
	conn.Set(ScopeProcess, "only-process", "v")

	q := conn.NewQueryVarStore()
	if _, ok := q.Get(ScopeQuery, "only-process"); ok {
		t.Errorf("pinned ScopeQuery lookup must not see process-scope variables")
	}
	if _, ok := q.Get(ScopeConnection, "only-process"); ok {
		t.Errorf("pinned ScopeConnection lookup must not see process-scope variables")
	}
	if _, ok := q.Get(ScopeProcess, "only-process"); !ok {
		t.Errorf("pinned ScopeProcess lookup should see the value it set")
	}
}

func TestVarStoreSeparateConnectionsDoNotShareConnectionScope(t *testing.T) {
	proc := NewProcessStore()
	connA := NewConnectionVarStore(proc)
	connB := NewConnectionVarStore(proc)
	connA.Set(ScopeConnection, "k", "a")

	if _, ok := connB.Get(ScopeConnection, "k"); ok {
		t.Errorf("connection-scope variables must not leak across connections")
	}
	connB.Set(ScopeProcess, "shared", "v")
	if v, ok := connA.Get(ScopeProcess, "shared"); !ok || v != "v" {
		t.Errorf("process scope must be shared across connections, got %q, %v", v, ok)
	}
}

func TestQueryContextAttrsAndLookup(t *testing.T) {
	proc := NewProcessStore()
	conn := NewConnectionVarStore(proc)
	conn.Set(ScopeConnection, "name", "value")
	qvs := conn.NewQueryVarStore()

	qc := New(qvs, vartag.For(vartag.Default))
	qc.Set(KeyDialect, "postgres")
	if v, ok := qc.Get(KeyDialect); !ok || v != "postgres" {
		t.Errorf("got %v, %v", v, ok)
	}
	if v, ok := qc.Lookup("name"); !ok || v != "value" {
		t.Errorf("Lookup failed to cascade to connection scope: %v, %v", v, ok)
	}
	if _, ok := qc.Lookup("missing"); ok {
		t.Errorf("expected missing variable to report ok=false")
	}
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package qctx implements QueryContext (spec §3): the process-local,
// per-query state container the dispatcher owns for the lifetime of one
// top-level rewrite — a concurrent map of well-known keys plus a
// three-scope variable store.
package qctx

import (
	"sync"

	"github.com/UNO-SOFT/jdbcx/vartag"
)

// Well-known QueryContext attribute keys (spec §3 "QueryContext").
const (
	KeyBridge  = "jdbcx.bridge"
	KeyDialect = "jdbcx.dialect"
	KeyConfig  = "jdbcx.config"
	KeyVars    = "jdbcx.vars"
)

// Scope names one of the three variable-store scopes, or ScopeAny for an
// unpinned lookup that cascades query → connection → process.
type Scope int

const (
	ScopeProcess Scope = iota
	ScopeConnection
	ScopeQuery
	ScopeAny
)

// levelStore is a read-mostly concurrent string map guarded by a per-scope
// RWMutex, taking a write lock only on Set (spec §5 "Shared resource
// policy").
type levelStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func newLevelStore() *levelStore { return &levelStore{m: make(map[string]string)} }

func (l *levelStore) Get(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.m[name]
	return v, ok
}

func (l *levelStore) Set(name, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[name] = value
}

func (l *levelStore) Each(fn func(name, value string)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for k, v := range l.m {
		fn(k, v)
	}
}

// ProcessStore is the single, process-lifetime variable scope: initialized
// once and shared by every connection/query (spec §5 "Global state").
type ProcessStore struct{ level *levelStore }

// NewProcessStore builds an empty process-scope store. Callers construct
// one instance per process and thread it through every VarStore, rather
// than reaching for a package-level singleton (spec §9 "tests must be able
// to build an isolated registry instance").
func NewProcessStore() *ProcessStore { return &ProcessStore{level: newLevelStore()} }

// VarStore is the three-scope variable store of spec §3 "QueryContext".
type VarStore struct {
	process    *levelStore
	connection *levelStore
	query      *levelStore
}

// NewConnectionVarStore builds a VarStore sharing proc's process scope and
// owning a fresh connection scope, to be reused across every query on one
// connection.
func NewConnectionVarStore(proc *ProcessStore) *VarStore {
	if proc == nil {
		proc = NewProcessStore()
	}
	return &VarStore{process: proc.level, connection: newLevelStore()}
}

// NewQueryVarStore derives a per-query VarStore sharing conn's process and
// connection scopes, with a fresh query scope.
func (conn *VarStore) NewQueryVarStore() *VarStore {
	return &VarStore{process: conn.process, connection: conn.connection, query: newLevelStore()}
}

func (vs *VarStore) scopeStore(scope Scope) *levelStore {
	switch scope {
	case ScopeProcess:
		return vs.process
	case ScopeConnection:
		return vs.connection
	default:
		return vs.query
	}
}

// Get resolves name in the given scope. ScopeAny cascades query →
// connection → process, stopping at the first hit (spec §3
// "get_variable_in_scope(s,name)").
func (vs *VarStore) Get(scope Scope, name string) (string, bool) {
	if scope != ScopeAny {
		if s := vs.scopeStore(scope); s != nil {
			return s.Get(name)
		}
		return "", false
	}
	for _, s := range []*levelStore{vs.query, vs.connection, vs.process} {
		if s == nil {
			continue
		}
		if v, ok := s.Get(name); ok {
			return v, true
		}
	}
	return "", false
}

// Set writes name=value into the given concrete scope (ScopeAny is not a
// valid write target and defaults to ScopeQuery).
func (vs *VarStore) Set(scope Scope, name, value string) {
	s := vs.scopeStore(scope)
	if s == nil {
		return
	}
	s.Set(name, value)
}

// QueryContext is the per-query state container the dispatcher owns for
// one top-level rewrite (spec §3 "QueryContext").
type QueryContext struct {
	attrs sync.Map
	Vars  *VarStore
	Tag   vartag.Tag
}

// New builds a QueryContext over the given per-query VarStore and the
// VariableTag family chosen for this query.
func New(vars *VarStore, tag vartag.Tag) *QueryContext {
	return &QueryContext{Vars: vars, Tag: tag}
}

// Get retrieves a well-known or extension-defined attribute.
func (q *QueryContext) Get(key string) (any, bool) { return q.attrs.Load(key) }

// Set stores a well-known or extension-defined attribute.
func (q *QueryContext) Set(key string, val any) { q.attrs.Store(key, val) }

// Lookup adapts VarStore.Get(ScopeAny, name) to varsub.Lookup.
func (q *QueryContext) Lookup(name string) (string, bool) {
	return q.Vars.Get(ScopeAny, name)
}

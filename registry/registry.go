// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the extension registry and Listener contract
// of spec §4.5: discovery-based registration of named interpreters, and the
// five-hook Listener every interpreter may partially implement.
package registry

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/UNO-SOFT/jdbcx/internal/jlog"
	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/internal/value"
	"github.com/UNO-SOFT/jdbcx/option"
)

// MetadataKind selects which of the three on_metadata flavors is being
// transformed (spec §4.5 "on_metadata(meta) -> meta -- x3 flavors
// (db/param/rs)").
type MetadataKind int

const (
	DatabaseMetadata MetadataKind = iota
	ParameterMetadata
	ResultSetMetadata
)

// Listener is the per-block interpreter contract (spec §4.5 "A Listener
// contract has five optional hooks (all default to identity)"). Every hook
// is a function field; a nil hook means identity/no-op, exactly as the
// spec describes, so an Extension need only set the hooks it cares about.
type Listener struct {
	// OnQuery transforms or executes a block body, producing a Result.
	OnQuery func(body string) (*value.Result, error)
	// OnQueryPrepared is the transform-only variant used for prepared
	// statement text.
	OnQueryPrepared func(prepared bool, text string) (string, error)
	// OnResult wraps a Result before it's handed back to the dispatcher.
	OnResult func(res *value.Result) (*value.Result, error)
	// OnMetadata transforms one of the three metadata flavors.
	OnMetadata func(kind MetadataKind, meta any) (any, error)
	// OnError inspects or transforms an error raised by this block.
	OnError func(err error) error
}

// Invoke runs OnQuery if set, otherwise returns a nil Result (identity: no
// execution, nothing to substitute).
func (l *Listener) Invoke(body string) (*value.Result, error) {
	if l == nil || l.OnQuery == nil {
		return nil, nil
	}
	return l.OnQuery(body)
}

// Prepare runs OnQueryPrepared if set, otherwise returns text unchanged.
func (l *Listener) Prepare(prepared bool, text string) (string, error) {
	if l == nil || l.OnQueryPrepared == nil {
		return text, nil
	}
	return l.OnQueryPrepared(prepared, text)
}

// WrapResult runs OnResult if set, otherwise returns res unchanged.
func (l *Listener) WrapResult(res *value.Result) (*value.Result, error) {
	if l == nil || l.OnResult == nil {
		return res, nil
	}
	return l.OnResult(res)
}

// TransformMetadata runs OnMetadata if set, otherwise returns meta unchanged.
func (l *Listener) TransformMetadata(kind MetadataKind, meta any) (any, error) {
	if l == nil || l.OnMetadata == nil {
		return meta, nil
	}
	return l.OnMetadata(kind, meta)
}

// TransformError runs OnError if set, otherwise returns err unchanged.
func (l *Listener) TransformError(err error) error {
	if l == nil || l.OnError == nil {
		return err
	}
	return l.OnError(err)
}

// Extension is one interpreter back-end (spec §4.5 "An Extension
// supplies..."). conn is left untyped (any) since the registry must not
// import the connection-wrapper package (sqlwrap already imports registry),
// avoiding an import cycle; concrete extensions type-assert to whatever
// connection type their driver uses.
type Extension interface {
	Name() string
	Aliases() []string
	DefaultOptions() []option.Option
	SupportsNoArguments() bool
	RequiresBridgeContext() bool
	CreateListener(qc *qctx.QueryContext, conn any, props option.Config) (*Listener, error)
}

// Registry is the discovery-based extension map of spec §4.5. Names are
// lowercased on registration; aliases share the same map with the
// extension's own name, first winner on collision, warn on duplicate.
type Registry struct {
	mu  sync.RWMutex
	m   map[string]Extension
	log *slog.Logger
}

// New builds an empty Registry. A nil logger defaults to a discard logger
// (spec SPEC_FULL.md AMBIENT STACK "nil-safe, defaulting to a discard
// logger").
func New(log *slog.Logger) *Registry {
	return &Registry{m: make(map[string]Extension), log: jlog.Or(log)}
}

// Register adds ext under its own name and every alias, lowercased. The
// first registration of a name wins; a later collision is logged as a
// warning and otherwise ignored, never returned as an error — discovery is
// best-effort at init time (spec §4.5 "first winner on collision, warn on
// duplicate").
func (r *Registry) Register(ext Extension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := append([]string{ext.Name()}, ext.Aliases()...)
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := r.m[key]; exists {
			r.log.Warn("extension name already registered", "name", key)
			continue
		}
		r.m[key] = ext
	}
}

// Resolve looks up an extension by name or alias, case-insensitively.
func (r *Registry) Resolve(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.m[strings.ToLower(name)]
	return ext, ok
}

// Names returns every registered key (names and aliases), for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}

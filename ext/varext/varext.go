// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package varext implements the built-in "var" procedure extension (spec
// §4.2, scenario E2): its body is a comma-separated `name=value` list,
// stored (name and value trimmed of surrounding whitespace) into the
// QueryContext's variable store for later
// `${name}` substitution. It never produces a Result — it is always used
// as a procedure block (output discarded).
package varext

import (
	"strings"

	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/internal/value"
	"github.com/UNO-SOFT/jdbcx/option"
	"github.com/UNO-SOFT/jdbcx/registry"
)

// Scope selects which QueryContext scope assignments are written into;
// "query" (default) matches scenario E2, where `${a}`/`${b}` are read back
// later in the very same document.
const optionScope = "scope"

// Extension is the "var" built-in.
type Extension struct{}

func (Extension) Name() string      { return "var" }
func (Extension) Aliases() []string { return nil }

func (Extension) DefaultOptions() []option.Option {
	return []option.Option{
		{Name: optionScope, Description: "variable scope to write into", Default: "query",
			Choices: []string{"query", "connection", "process"}},
	}
}

func (Extension) SupportsNoArguments() bool   { return true }
func (Extension) RequiresBridgeContext() bool { return false }

func (Extension) CreateListener(qc *qctx.QueryContext, _ any, props option.Config) (*registry.Listener, error) {
	scope := scopeFor(props.GetOr(optionScope, "query"))
	return &registry.Listener{
		OnQuery: func(body string) (*value.Result, error) {
			for _, assign := range splitTopLevel(body, ',') {
				name, val, ok := splitAssignment(assign)
				if !ok {
					continue
				}
				qc.Vars.Set(scope, name, val)
			}
			return nil, nil
		},
	}, nil
}

func scopeFor(s string) qctx.Scope {
	switch s {
	case "connection":
		return qctx.ScopeConnection
	case "process":
		return qctx.ScopeProcess
	default:
		return qctx.ScopeQuery
	}
}

// splitAssignment splits "name=value" on the first '=', trimming
// surrounding whitespace from both the name and the value. A value may
// itself contain '=' (a quoted string literal, say); its inner text is kept
// as is.
func splitAssignment(s string) (name, val string, ok bool) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(s[:i])
	val = strings.TrimSpace(s[i+1:])
	if name == "" {
		return "", "", false
	}
	return name, val, true
}

// splitTopLevel splits s on sep, ignoring occurrences inside single- or
// double-quoted runs, the way the var extension's "a=1, b='2,3'" grammar
// needs (commas inside a quoted value assignment must not split it).
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			cur.WriteByte(c)
		case c == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

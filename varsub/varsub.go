// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package varsub implements the second dispatch phase of spec §4.2:
// resolving "${name}" variable references against a scoped store, and the
// escape rule that lets a document contain a literal '$' or '\'. It never
// touches the inside of a block body — only text the gateway itself
// produced (block outputs and trailing literals).
package varsub

import (
	"strings"

	"github.com/UNO-SOFT/jdbcx/internal/errs"
	"github.com/UNO-SOFT/jdbcx/vartag"
)

// Lookup resolves a variable name to its string value. ok=false means the
// variable is unset.
type Lookup func(name string) (value string, ok bool)

// Resolve rewrites every "${name}" reference in text using lookup. A
// missing variable is left as literal text unless strict is set, in which
// case it is a ClientError (spec §4.1 "Variable reference"). An escape
// char followed by a valid-for-escape char emits that char verbatim and is
// dropped from the output (spec §4.1 "Escape").
func Resolve(text string, tag vartag.Tag, lookup Lookup, strict bool) (string, error) {
	var b strings.Builder
	n := len(text)
	for i := 0; i < n; i++ {
		c := text[i]
		if c == tag.EscapeChar() && i+1 < n && tag.IsValidForEscape(text[i+1]) {
			b.WriteByte(text[i+1])
			i++
			continue
		}
		if c == tag.VariableChar() && i+1 < n && text[i+1] == tag.LeftChar() {
			end := strings.IndexByte(text[i+2:], tag.RightChar())
			if end >= 0 {
				name := text[i+2 : i+2+end]
				if val, ok := lookup(name); ok {
					b.WriteString(val)
					i += 2 + end
					continue
				}
				if strict {
					return "", errs.Client("varsub.Resolve", errUndefined(name))
				}
				// Leave the reference literal when not strict.
				b.WriteString(text[i : i+2+end+1])
				i += 2 + end
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

type undefinedVariableError struct{ name string }

func (e *undefinedVariableError) Error() string { return "undefined variable: " + e.name }

func errUndefined(name string) error { return &undefinedVariableError{name: name} }

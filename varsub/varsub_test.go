// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package varsub

import (
	"testing"

	"github.com/UNO-SOFT/jdbcx/vartag"
)

func lookupMap(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestResolveSubstitutesKnownVariables(t *testing.T) {
	tag := vartag.For(vartag.BRACE)
	got, err := Resolve("select ${a}, ${b}", tag, lookupMap(map[string]string{"a": "1", "b": "'2'"}), false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "select 1, '2'" {
		t.Errorf("got %q", got)
	}
}

func TestResolveLeavesUnknownLiteralWhenNotStrict(t *testing.T) {
	tag := vartag.For(vartag.BRACE)
	got, err := Resolve("x=${missing}", tag, lookupMap(nil), false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "x=${missing}" {
		t.Errorf("got %q", got)
	}
}

func TestResolveStrictFailsOnUnknown(t *testing.T) {
	tag := vartag.For(vartag.BRACE)
	_, err := Resolve("x=${missing}", tag, lookupMap(nil), true)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveEscapedDollarStaysLiteral(t *testing.T) {
	tag := vartag.For(vartag.BRACE)
	got, err := Resolve(`\$not_a_var`, tag, lookupMap(nil), true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "$not_a_var" {
		t.Errorf("got %q", got)
	}
}

func TestResolveEscapedBackslash(t *testing.T) {
	tag := vartag.For(vartag.BRACE)
	got, err := Resolve(`a\\b`, tag, lookupMap(nil), false)
	if err != nil {
		t.Fatal(err)
	}
	if got != `a\b` {
		t.Errorf("got %q", got)
	}
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/UNO-SOFT/jdbcx/serialize"
)

func TestSplitJDBCXURL(t *testing.T) {
	for _, tc := range []struct {
		raw, prefix, wantExt, wantInner string
	}{
		{"jdbcx:bridge:postgres://h/db", "jdbcx:", "bridge", "postgres://h/db"},
		{"jdbcx:postgres://h/db", "jdbcx:", "", "postgres://h/db"},
		{"postgres://h/db", "jdbcx:", "", "postgres://h/db"},
		{"jx:web:postgres://h/db", "jx:", "web", "postgres://h/db"},
	} {
		ext, inner := splitJDBCXURL(tc.raw, tc.prefix)
		if ext != tc.wantExt || inner != tc.wantInner {
			t.Errorf("splitJDBCXURL(%q, %q) = (%q, %q), want (%q, %q)",
				tc.raw, tc.prefix, ext, inner, tc.wantExt, tc.wantInner)
		}
	}
}

func TestSplitTopLevelSemicolons(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		want []string
	}{
		{"select 1", []string{"select 1"}},
		{"select 1; select 2", []string{"select 1", "select 2"}},
		{"select ';'; select 2", []string{"select ';'", "select 2"}},
		{`select "a;b"; select 3`, []string{`select "a;b"`, "select 3"}},
		{"select 1;;", []string{"select 1"}},
		{"  ;  ", nil},
	} {
		got := splitTopLevelSemicolons(tc.doc)
		if len(got) != len(tc.want) {
			t.Fatalf("splitTopLevelSemicolons(%q) = %q, want %q", tc.doc, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitTopLevelSemicolons(%q)[%d] = %q, want %q", tc.doc, i, got[i], tc.want[i])
			}
		}
	}
}

func TestApplyOutputParams(t *testing.T) {
	opts := serialize.DefaultOptions()
	applyOutputParams(&opts, "header=true&nullValue=NULL&delim=%7C")
	if !opts.Header {
		t.Error("expected header=true")
	}
	if opts.NullValue != "NULL" {
		t.Errorf("nullValue = %q, want NULL", opts.NullValue)
	}
	if opts.Delim != '%' {
		// "%7C" is not URL-decoded by applyOutputParams; only the first byte is taken.
		t.Errorf("delim = %q, want %%", opts.Delim)
	}
}

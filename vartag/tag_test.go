// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package vartag

import "testing"

func TestInvariantEscapeNotDelimiter(t *testing.T) {
	for _, f := range []Family{BRACE, ANGLE, SQUARE} {
		tag := For(f)
		if !tag.Invariant() {
			t.Errorf("%s: escape_char must not be L, R, or P", f)
		}
	}
}

func TestBuildersRoundTrip(t *testing.T) {
	tag := For(BRACE)
	if got := tag.Function("web(url=x): select 5"); got != "{{web(url=x): select 5}}" {
		t.Errorf("got %q", got)
	}
	if got := tag.Procedure("var: a=1"); got != "{%var: a=1%}" {
		t.Errorf("got %q", got)
	}
	if got := tag.Variable("a"); got != "${a}" {
		t.Errorf("got %q", got)
	}
}

func TestIsValidForEscape(t *testing.T) {
	tag := For(BRACE)
	if tag.IsValidForEscape('{') || tag.IsValidForEscape('}') || tag.IsValidForEscape('%') {
		t.Errorf("delimiters must not be valid escape targets")
	}
	if !tag.IsValidForEscape('$') || !tag.IsValidForEscape('\\') || !tag.IsValidForEscape('a') {
		t.Errorf("non-delimiter chars must be valid escape targets")
	}
}

func TestAngleAndSquareDistinctFromBrace(t *testing.T) {
	if For(ANGLE).LeftChar() == For(BRACE).LeftChar() {
		t.Errorf("ANGLE and BRACE must not share left delimiter")
	}
	if For(SQUARE).LeftChar() == For(BRACE).LeftChar() {
		t.Errorf("SQUARE and BRACE must not share left delimiter")
	}
}

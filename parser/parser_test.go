// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strings"
	"testing"

	"github.com/UNO-SOFT/jdbcx/vartag"
)

// reconstitute rebuilds the original document from a ParsedQuery by
// substituting each block slot with its own Raw text (the "identity
// listener" of spec §8 property 1), and joining.
func reconstitute(pq *ParsedQuery) string {
	var b strings.Builder
	for i, part := range pq.Parts {
		wrote := false
		for _, blk := range pq.Blocks {
			if blk.Index == i {
				b.WriteString(blk.Raw)
				wrote = true
				break
			}
		}
		if !wrote {
			b.WriteString(part)
		}
	}
	return b.String()
}

func TestParsePureText(t *testing.T) {
	pq, err := Parse("select 1", vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	if len(pq.Blocks) != 0 {
		t.Fatalf("expected zero blocks, got %d", len(pq.Blocks))
	}
	if pq.Join() != "select 1" {
		t.Errorf("got %q", pq.Join())
	}
}

func TestParseEmptyDocument(t *testing.T) {
	pq, err := Parse("", vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	if len(pq.Blocks) != 0 {
		t.Errorf("expected zero blocks")
	}
	if len(pq.Parts) != 1 || pq.Parts[0] != "" {
		t.Errorf("expected single empty part, got %#v", pq.Parts)
	}
}

func TestParseFunctionBlock(t *testing.T) {
	doc := "select * from {{ web(base.url=https://h/x): select 5 }} limit 1"
	pq, err := Parse(doc, vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	if len(pq.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(pq.Blocks))
	}
	b := pq.Blocks[0]
	if b.Extension != "web" || !b.HasOutput {
		t.Errorf("got %+v", b)
	}
	if b.Options["base.url"] != "https://h/x" {
		t.Errorf("got options %#v", b.Options)
	}
	if strings.TrimSpace(b.Body) != "select 5" {
		t.Errorf("got body %q", b.Body)
	}
}

func TestParseProcedureBlockNoOutput(t *testing.T) {
	doc := "{% var: a=1, b=2 %}select ${a}, ${b}"
	pq, err := Parse(doc, vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	if len(pq.Blocks) != 1 || pq.Blocks[0].HasOutput {
		t.Fatalf("expected one output-less block, got %+v", pq.Blocks)
	}
	if pq.Blocks[0].Extension != "var" || pq.Blocks[0].Options != nil || strings.TrimSpace(pq.Blocks[0].Body) != "a=1, b=2" {
		t.Errorf("got %+v", pq.Blocks[0])
	}
}

func TestParseEscapedOptionSeparators(t *testing.T) {
	doc := `{{ ext(a=1\,000, b=x\=y): body }}`
	pq, err := Parse(doc, vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	opts := pq.Blocks[0].Options
	if opts["a"] != "1,000" {
		t.Errorf("got a=%q", opts["a"])
	}
	if opts["b"] != "x=y" {
		t.Errorf("got b=%q", opts["b"])
	}
}

func TestParseUnterminatedBlockIsClientError(t *testing.T) {
	_, err := Parse("select {{ web(x=1): select 1", vartag.BRACE)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseFunctionTakesPrecedenceOverProcedure(t *testing.T) {
	// "{{" at the same offset must be read as a function open, never as a
	// procedure open followed by a stray '{'.
	doc := "{{ f(): x }}"
	pq, err := Parse(doc, vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	if len(pq.Blocks) != 1 || !pq.Blocks[0].HasOutput {
		t.Fatalf("expected function block, got %+v", pq.Blocks)
	}
}

func TestParseNoOptionsNoColon(t *testing.T) {
	pq, err := Parse("{{ version }}", vartag.BRACE)
	if err != nil {
		t.Fatal(err)
	}
	b := pq.Blocks[0]
	if b.Extension != "version" || b.Body != "" || b.Options != nil {
		t.Errorf("got %+v", b)
	}
}

func TestRoundTripReconstitution(t *testing.T) {
	docs := []string{
		"select 1",
		"{{ web(u=1): select 5 }} and {% var: a=1 %}rest",
		"",
		`escaped \$dollar stays literal text at this stage`,
	}
	for _, doc := range docs {
		pq, err := Parse(doc, vartag.BRACE)
		if err != nil {
			t.Fatal(err)
		}
		got := reconstitute(pq)
		if got != doc {
			t.Errorf("round-trip mismatch:\n got  %q\n want %q", got, doc)
		}
	}
}

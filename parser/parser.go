// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package parser implements the text→ParsedQuery step of the gateway (spec
// §4.1): splitting a document into literal parts and ExecutableBlocks,
// without parsing SQL itself (the engine is "text-substitution-aware only").
package parser

import (
	"fmt"
	"strings"

	"github.com/UNO-SOFT/jdbcx/internal/errs"
	"github.com/UNO-SOFT/jdbcx/vartag"
)

// ExecutableBlock is a tagged substring resolved to an extension name, its
// block-local options, and its body (spec §3 "ExecutableBlock").
type ExecutableBlock struct {
	Extension string
	Options   map[string]string
	Body      string
	Index     int // position in ParsedQuery.Parts that receives the substitution
	HasOutput bool
	// Raw is the exact original text of the block, delimiters included; it
	// is what an identity listener must reproduce for the round-trip
	// invariant of spec §8 property 1.
	Raw string
}

// ParsedQuery is the literal-parts/blocks decomposition of a document (spec
// §3 "ParsedQuery"). Parts alternates literal text and block slots:
// Parts[blocks[i].Index-1] is the literal text before blocks[i], and
// Parts[blocks[i].Index] is the slot later filled by the block's output.
type ParsedQuery struct {
	Parts  []string
	Blocks []ExecutableBlock
}

// Join concatenates Parts in order, the way the final emitted text is
// produced once every block slot has been filled (spec §3 "ParsedQuery").
func (p *ParsedQuery) Join() string {
	return strings.Join(p.Parts, "")
}

// Parse splits doc into a ParsedQuery using the given bracket family.
// Tie-break: a function prefix ("LL") is checked before a procedure prefix
// ("LP") at every candidate position (spec §4.1 "Tie-breaks"). Nested
// blocks are not supported: the first matching close delimiter of the
// active family ends the block. A block left open at EOF is a ClientError.
func Parse(doc string, family vartag.Family) (*ParsedQuery, error) {
	tag := vartag.For(family)
	pq := &ParsedQuery{}

	var cur strings.Builder
	i := 0
	n := len(doc)
	flushLiteral := func() {
		pq.Parts = append(pq.Parts, cur.String())
		cur.Reset()
	}

	for i < n {
		c := doc[i]
		// Note: the escape char can never hide a block delimiter (L, R, P
		// are not valid-for-escape targets, spec §4.1), so block detection
		// here needs no escape-awareness; escaping of '$' and '\' itself is
		// handled later, over the fully-rewritten text, by package varsub.
		if c == tag.LeftChar() && i+1 < n && doc[i+1] == tag.LeftChar() {
			block, next, err := scanBlock(doc, i, tag, true)
			if err != nil {
				return nil, err
			}
			flushLiteral()
			block.Index = len(pq.Parts)
			pq.Blocks = append(pq.Blocks, block)
			pq.Parts = append(pq.Parts, "")
			i = next
			continue
		}
		if c == tag.LeftChar() && i+1 < n && doc[i+1] == tag.ProcedureChar() {
			block, next, err := scanBlock(doc, i, tag, false)
			if err != nil {
				return nil, err
			}
			flushLiteral()
			block.Index = len(pq.Parts)
			pq.Blocks = append(pq.Blocks, block)
			pq.Parts = append(pq.Parts, "")
			i = next
			continue
		}
		cur.WriteByte(c)
		i++
	}
	flushLiteral()
	return pq, nil
}

// scanBlock parses the block starting at doc[start] (pointing at the open
// delimiter) and returns the decoded block plus the index just past its
// close delimiter.
func scanBlock(doc string, start int, tag vartag.Tag, isFunction bool) (ExecutableBlock, int, error) {
	openLen := 2
	contentStart := start + openLen
	var closeSeq string
	if isFunction {
		closeSeq = tag.FunctionClose()
	} else {
		closeSeq = tag.ProcedureClose()
	}
	closeIdx := strings.Index(doc[contentStart:], closeSeq)
	if closeIdx < 0 {
		return ExecutableBlock{}, 0, errs.Client("parser.scanBlock", fmt.Errorf("unterminated block starting at offset %d", start))
	}
	content := doc[contentStart : contentStart+closeIdx]
	next := contentStart + closeIdx + len(closeSeq)

	name, opts, body, err := splitHeader(content, tag)
	if err != nil {
		return ExecutableBlock{}, 0, err
	}
	return ExecutableBlock{
		Extension: name,
		Options:   opts,
		Body:      body,
		HasOutput: isFunction,
		Raw:       doc[start:next],
	}, next, nil
}

// splitHeader splits block content on the first unescaped ':' into a
// "name(opts?)" prefix and the body suffix (spec §4.1 "Function block").
// When an option list opens before that ':', the split point is the first
// unescaped ':' after the list's closing ')', so option values may contain
// ':' (e.g. URLs). One space of padding on each side of the body is
// dropped.
func splitHeader(content string, tag vartag.Tag) (name string, opts map[string]string, body string, err error) {
	esc := tag.EscapeChar()
	from := 0
	if paren := strings.IndexByte(content, '('); paren >= 0 {
		if c0 := indexUnescaped(content, ':', esc); c0 < 0 || paren < c0 {
			if cp := indexUnescaped(content[paren:], ')', esc); cp >= 0 {
				from = paren + cp + 1
			}
		}
	}
	colon := indexUnescaped(content[from:], ':', esc)
	if colon >= 0 {
		colon += from
	}
	var header string
	if colon < 0 {
		header, body = strings.TrimSpace(content), ""
	} else {
		header, body = strings.TrimSpace(content[:colon]), content[colon+1:]
		if len(body) > 0 && body[0] == ' ' {
			body = body[1:]
		}
		if n := len(body); n > 0 && body[n-1] == ' ' {
			body = body[:n-1]
		}
	}
	paren := strings.IndexByte(header, '(')
	if paren < 0 {
		return header, nil, body, nil
	}
	if !strings.HasSuffix(header, ")") {
		return "", nil, "", errs.Client("parser.splitHeader", fmt.Errorf("unterminated option list in %q", header))
	}
	name = strings.TrimSpace(header[:paren])
	optStr := header[paren+1 : len(header)-1]
	opts, err = parseOptions(optStr, tag.EscapeChar())
	return name, opts, body, err
}

// parseOptions parses "k=v,k=v" honoring escaped commas/equals (spec §4.1).
func parseOptions(s string, escape byte) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	pairs := splitUnescaped(s, ',', escape)
	opts := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		eq := indexUnescaped(pair, '=', escape)
		if eq < 0 {
			return nil, errs.Client("parser.parseOptions", fmt.Errorf("malformed option %q: missing '='", pair))
		}
		k := unescape(strings.TrimSpace(pair[:eq]), escape)
		v := unescape(pair[eq+1:], escape)
		opts[k] = v
	}
	return opts, nil
}

func indexUnescaped(s string, target byte, escape byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == escape && i+1 < len(s) {
			i++
			continue
		}
		if s[i] == target {
			return i
		}
	}
	return -1
}

func splitUnescaped(s string, sep byte, escape byte) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == escape && i+1 < len(s) {
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}

func unescape(s string, escape byte) string {
	if strings.IndexByte(s, escape) < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == escape && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

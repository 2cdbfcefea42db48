// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"bufio"
	"io"
	"strings"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// CSV is the configurable-delimiter serializer of spec §4.9 "CSV":
// configurable delim/quote/escape/newline; useQuotes forces quoting;
// unquoted cells are promoted to quoted on first conflicting char; escape of
// quote/escape is escape+char.
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Serialize(w io.Writer, result *value.Result, opts Options) error {
	o := opts
	if o.Delim == 0 {
		o.Delim = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.Escape == 0 {
		o.Escape = o.Quote
	}
	if o.Newline == "" {
		o.Newline = "\n"
	}

	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if o.Header {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(o.Delim)
			}
			bw.WriteString(csvCell(f.Name(), o))
		}
		bw.WriteString(o.Newline)
	}
	for _, row := range rows {
		for i := range fields {
			if i > 0 {
				bw.WriteByte(o.Delim)
			}
			cell, _ := row.At(i)
			s, err := cell.AsString()
			if err != nil {
				return err
			}
			bw.WriteString(csvCell(nullOr(o, s, cell.IsNull()), o))
		}
		bw.WriteString(o.Newline)
	}
	return bw.Flush()
}

func csvCell(s string, o Options) string {
	needsQuote := o.UseQuotes || strings.IndexByte(s, o.Delim) >= 0 ||
		strings.IndexByte(s, o.Quote) >= 0 || strings.ContainsAny(s, "\r\n")
	if !needsQuote {
		return s
	}
	var b strings.Builder
	b.WriteByte(o.Quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == o.Quote || c == o.Escape {
			b.WriteByte(o.Escape)
		}
		b.WriteByte(c)
	}
	b.WriteByte(o.Quote)
	return b.String()
}

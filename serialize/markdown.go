// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"bufio"
	"io"

	"github.com/UNO-SOFT/jdbcx/internal/util"
	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Markdown is the GitHub-flavoured-table serializer of spec §4.9
// "Markdown": header forced on; reserved characters backslash-escaped;
// newlines become "<br/>"; column alignment chosen per field scale (>0 ->
// right).
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Serialize(w io.Writer, result *value.Result, opts Options) error {
	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	bw.WriteByte('|')
	for _, f := range fields {
		bw.WriteByte(' ')
		bw.WriteString(util.EscapeMarkdown(f.Name()))
		bw.WriteString(" |")
	}
	bw.WriteByte('\n')

	bw.WriteByte('|')
	for _, f := range fields {
		if f.Scale() > 0 {
			bw.WriteString(" ---: |")
		} else {
			bw.WriteString(" --- |")
		}
	}
	bw.WriteByte('\n')

	for _, row := range rows {
		bw.WriteByte('|')
		for i := range fields {
			cell, _ := row.At(i)
			s, err := cell.AsString()
			if err != nil {
				return err
			}
			bw.WriteByte(' ')
			bw.WriteString(util.EscapeMarkdown(nullOr(opts, s, cell.IsNull())))
			bw.WriteString(" |")
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

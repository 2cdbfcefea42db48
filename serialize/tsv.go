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

// TSV is the tab-separated serializer of spec §4.9 "TSV": tab separator,
// per-cell escapes "\t \r \n \\" -> "\\t \\r \\n \\\\". The null_value
// marker is written as given, without escaping.
type TSV struct{}

func (TSV) Name() string { return "tsv" }

func (TSV) Serialize(w io.Writer, result *value.Result, opts Options) error {
	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if opts.Header {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(tsvEscape(f.Name()))
		}
		bw.WriteByte('\n')
	}
	for _, row := range rows {
		for i := range fields {
			if i > 0 {
				bw.WriteByte('\t')
			}
			cell, _ := row.At(i)
			if cell.IsNull() {
				bw.WriteString(opts.NullValue)
				continue
			}
			s, err := cell.AsString()
			if err != nil {
				return err
			}
			bw.WriteString(tsvEscape(s))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func tsvEscape(s string) string {
	return util.BackslashEscape(s, "\t\r\n\\", []string{`\t`, `\r`, `\n`, `\\`})
}

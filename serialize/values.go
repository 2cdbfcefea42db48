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

// Values is the SQL-insert serializer of spec §4.9 "VALUES":
// "(col1,col2,…) VALUES\n(v1,…),\n(v2,…)…"; identifiers double-quoted with
// doubled-quote escape; values use the Value's SQL expression.
type Values struct{}

func (Values) Name() string { return "values" }

func (Values) Serialize(w io.Writer, result *value.Result, opts Options) error {
	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	bw.WriteByte('(')
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString(util.DoubleQuoteEscape(f.Name(), '"'))
	}
	bw.WriteString(") VALUES\n")

	for ri, row := range rows {
		bw.WriteByte('(')
		for i := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			cell, _ := row.At(i)
			s, err := cell.SQL()
			if err != nil {
				return err
			}
			bw.WriteString(s)
		}
		bw.WriteByte(')')
		if ri < len(rows)-1 {
			bw.WriteString(",\n")
		} else {
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"bufio"
	"io"
	"strconv"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// jsonSeqRecordSeparator is the RFC 7464 "application/json-seq" prefix.
const jsonSeqRecordSeparator = 0x1E

// JSONSeq is the newline-delimited JSON serializer of spec §4.9
// "JSON-sequence": each row preceded by 0x1E and followed by \n; object
// form when header=true, array form otherwise; field names and values are
// rendered via the Value's JSON expression.
type JSONSeq struct{}

func (JSONSeq) Name() string { return "json-seq" }

func (JSONSeq) Serialize(w io.Writer, result *value.Result, opts Options) error {
	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		bw.WriteByte(jsonSeqRecordSeparator)
		if opts.Header {
			bw.WriteByte('{')
		} else {
			bw.WriteByte('[')
		}
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			if opts.Header {
				bw.WriteString(strconv.Quote(f.Name()))
				bw.WriteByte(':')
			}
			cell, _ := row.At(i)
			s, err := cell.JSON()
			if err != nil {
				return err
			}
			bw.WriteString(s)
		}
		if opts.Header {
			bw.WriteByte('}')
		} else {
			bw.WriteByte(']')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"bytes"
	"testing"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

func TestArrowSerializeStreamRoundTripsRowCount(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{
		value.NewField("id", value.KindInt32, 0, 0, true, false),
		value.NewField("name", value.KindString, 0, 0, false, true),
	}
	rows := []value.Row{
		value.NewRow(fields, []value.Value{f.Int(32, 1), f.String("ann")}),
		value.NewRow(fields, []value.Value{f.Int(32, 2), f.Null(value.KindString)}),
	}
	result := value.SliceResult(fields, rows)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Stream = true
	opts.Batch = 1
	if err := (Arrow{}).Serialize(&buf, result, opts); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty Arrow stream output")
	}
}

func TestParquetSerializeWritesNonEmptyFile(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{value.NewField("id", value.KindInt64, 0, 0, true, false)}
	rows := []value.Row{value.NewRow(fields, []value.Value{f.Int(64, 42)})}
	result := value.SliceResult(fields, rows)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Compression = "snappy"
	if err := (Parquet{}).Serialize(&buf, result, opts); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty Parquet output")
	}
}

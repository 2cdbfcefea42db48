// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// rowsToResult drains a *sql.Rows into an in-memory value.Result, mapping
// each database/sql column to the closest value.Kind through
// kindForColumnType, which looks at the column's ScanType kind first and
// falls back to its DatabaseTypeName.
func rowsToResult(rows *sql.Rows) (*value.Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	f := value.NewFactory()
	fields := make([]value.Field, len(cols))
	kinds := make([]value.Kind, len(cols))
	for i, ct := range types {
		nullable, _ := ct.Nullable()
		length, _ := ct.Length()
		precision, scale, _ := ct.DecimalSize()
		kinds[i] = kindForColumnType(ct)
		fields[i] = value.NewField(cols[i], kinds[i], int(precision), int(scale), true, nullable || length >= 0)
	}

	var out []value.Row
	for rows.Next() {
		scanDest := make([]any, len(cols))
		scanBuf := make([]any, len(cols))
		for i := range scanDest {
			scanDest[i] = &scanBuf[i]
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, err
		}
		vals := make([]value.Value, len(cols))
		for i, raw := range scanBuf {
			vals[i] = valueFromAny(f, kinds[i], raw)
		}
		out = append(out, value.NewRow(fields, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return value.SliceResult(fields, out), nil
}

func kindForColumnType(ct *sql.ColumnType) value.Kind {
	switch ct.ScanType().Kind().String() {
	case "bool":
		return value.KindBool
	case "int8", "int16", "int32", "int64", "int":
		return value.KindInt64
	case "uint8", "uint16", "uint32", "uint64", "uint":
		return value.KindUint64
	case "float32":
		return value.KindFloat32
	case "float64":
		return value.KindFloat64
	}
	switch ct.DatabaseTypeName() {
	case "DATE":
		return value.KindDate
	case "DATETIME", "TIMESTAMP":
		return value.KindDateTime
	case "BLOB", "BINARY", "VARBINARY":
		return value.KindBinary
	}
	return value.KindString
}

// valueFromAny builds a typed Value from whatever the driver scanned into
// an `any`, falling back to a string render via fmt.Sprint for a type this
// mapping doesn't special-case — the gateway favors a readable cell over a
// rejected row for exotic driver-specific Go types.
func valueFromAny(f *value.Factory, kind value.Kind, raw any) value.Value {
	if raw == nil {
		return f.Null(kind)
	}
	switch v := raw.(type) {
	case bool:
		return f.Bool(v)
	case int64:
		if kind == value.KindUint64 {
			return f.Uint(64, uint64(v))
		}
		return f.Int(64, v)
	case float64:
		return f.Float64(v)
	case []byte:
		if kind == value.KindBinary {
			return f.Binary(v)
		}
		return f.String(string(v))
	case string:
		return f.String(v)
	case time.Time:
		switch kind {
		case value.KindDate:
			return f.DateFromTime(v)
		default:
			return f.DateTime(v, 0, v.Location() != time.UTC)
		}
	default:
		return f.String(fmt.Sprint(v))
	}
}

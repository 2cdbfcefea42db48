// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package generic implements the spec §4.10 default Dialect: no
// target-specific syntax is assumed, so getRemoteTable degrades to a
// single-quoted URL literal and every format/compression is accepted.
package generic

import (
	"strings"

	"github.com/UNO-SOFT/jdbcx/dialect"
	"github.com/UNO-SOFT/jdbcx/internal/util"
	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Dialect is the fallback implementation used whenever no more specific
// dialect is registered for a connection's target database.
type Dialect struct{}

func (Dialect) Name() string { return "generic" }

func (Dialect) SupportsCompression(dialect.Compression) bool { return true }
func (Dialect) SupportsFormat(dialect.Format) bool           { return true }

func (Dialect) PreferredFormat() dialect.Format           { return dialect.FormatCSV }
func (Dialect) PreferredCompression() dialect.Compression { return dialect.CompressionNone }

func (Dialect) PreferVariableTag() string { return "" }

func (Dialect) ResultMapper() dialect.ResultMapper {
	return func(fields []value.Field) (string, error) {
		var sb strings.Builder
		for i, f := range fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(util.DoubleQuoteEscape(f.Name(), '"'))
			sb.WriteByte(' ')
			sb.WriteString(genericColumnType(f))
		}
		return sb.String(), nil
	}
}

// GetRemoteTable wraps rawURL as a single-quoted SQL string literal, the
// spec §4.10 default behavior.
func (Dialect) GetRemoteTable(rawURL string, _ dialect.Format) (string, error) {
	return "'" + strings.ReplaceAll(rawURL, "'", "''") + "'", nil
}

func genericColumnType(f value.Field) string {
	switch f.Kind() {
	case value.KindBool:
		return "BOOLEAN"
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindUint8, value.KindUint16:
		return "INTEGER"
	case value.KindInt64, value.KindUint32, value.KindUint64:
		return "BIGINT"
	case value.KindFloat32:
		return "REAL"
	case value.KindFloat64:
		return "DOUBLE PRECISION"
	case value.KindDecimal:
		return "DECIMAL"
	case value.KindDate:
		return "DATE"
	case value.KindTime:
		return "TIME"
	case value.KindDateTime:
		return "TIMESTAMP"
	case value.KindBinary:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package postgres implements the spec §4.10 Dialect for PostgreSQL-family
// targets. It wraps a bridge/web sub-query result as `read_csv('...')`/`
// read_parquet('...')`-style table functions and uses pg_query_go purely
// as a parse-validity check on the rewritten document — not as a SQL
// parser for the gateway's own engine, which stays text-substitution-only.
package postgres

import (
	"fmt"
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v2"

	"github.com/UNO-SOFT/jdbcx/dialect"
	"github.com/UNO-SOFT/jdbcx/internal/util"
	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Dialect is the PostgreSQL-flavoured Dialect implementation.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) SupportsCompression(c dialect.Compression) bool {
	switch c {
	case dialect.CompressionNone, dialect.CompressionGzip, dialect.CompressionZstd:
		return true
	default:
		return false
	}
}

func (Dialect) SupportsFormat(f dialect.Format) bool {
	switch f {
	case dialect.FormatCSV, dialect.FormatTSV, dialect.FormatJSONSeq, dialect.FormatValues,
		dialect.FormatBinary, dialect.FormatParquet:
		return true
	default:
		return false
	}
}

func (Dialect) PreferredFormat() dialect.Format           { return dialect.FormatCSV }
func (Dialect) PreferredCompression() dialect.Compression { return dialect.CompressionGzip }

// PreferVariableTag returns "" (${...}) since Postgres's own "$1" positional
// placeholders do not collide with the "${name}" tag family.
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
			sb.WriteString(postgresColumnType(f))
		}
		return sb.String(), nil
	}
}

// GetRemoteTable wraps rawURL in a CSV/Parquet-reading table function and
// validates the result still parses as a single SQL expression, per spec
// §4.10 and the `;`-splitting requirement of spec §6.
func (Dialect) GetRemoteTable(rawURL string, format dialect.Format) (string, error) {
	quoted := "'" + strings.ReplaceAll(rawURL, "'", "''") + "'"
	var expr string
	switch format {
	case dialect.FormatParquet:
		expr = fmt.Sprintf("read_parquet(%s)", quoted)
	default:
		expr = fmt.Sprintf("read_csv(%s)", quoted)
	}
	if _, err := pgquery.Parse("SELECT * FROM " + expr); err != nil {
		return "", fmt.Errorf("dialect/postgres: remote table expression does not parse: %w", err)
	}
	return expr, nil
}

func postgresColumnType(f value.Field) string {
	switch f.Kind() {
	case value.KindBool:
		return "boolean"
	case value.KindInt8, value.KindInt16:
		return "smallint"
	case value.KindInt32, value.KindUint16:
		return "integer"
	case value.KindInt64, value.KindUint32, value.KindUint64:
		return "bigint"
	case value.KindFloat32:
		return "real"
	case value.KindFloat64:
		return "double precision"
	case value.KindDecimal:
		return fmt.Sprintf("numeric(%d,%d)", f.Precision(), f.Scale())
	case value.KindDate:
		return "date"
	case value.KindTime:
		return "time"
	case value.KindDateTime:
		return "timestamp"
	case value.KindBinary:
		return "bytea"
	default:
		return "text"
	}
}

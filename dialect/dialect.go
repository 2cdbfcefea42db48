// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package dialect implements the JDBC dialect abstraction of spec §4.10:
// per-target-database capability predicates, preferred defaults, and the
// two operations ("ResultMapper", "getRemoteTable") a dispatcher needs to
// address a bridge/web sub-query result as if it were a table in the
// outer connection's own SQL dialect.
package dialect

import "github.com/UNO-SOFT/jdbcx/internal/value"

// Compression names the codecs a dialect may prefer or reject, matching
// the `compression` serializer option vocabulary.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Format names the serializer formats a dialect may prefer or reject.
type Format string

const (
	FormatTSV      Format = "tsv"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSONSeq  Format = "json-seq"
	FormatValues   Format = "values"
	FormatBinary   Format = "binary"
	FormatArrow    Format = "arrow"
	FormatParquet  Format = "parquet"
)

// ResultMapper converts Fields to the target database's column-definition
// syntax, e.g. for a CREATE TABLE or a typed external-table clause.
type ResultMapper func(fields []value.Field) (string, error)

// Dialect is the per-target-database contract of spec §4.10.
type Dialect interface {
	// Name identifies the dialect (e.g. "postgres", "generic").
	Name() string

	// SupportsCompression reports whether c is usable against this target.
	SupportsCompression(c Compression) bool
	// SupportsFormat reports whether f is usable against this target.
	SupportsFormat(f Format) bool

	// PreferredFormat and PreferredCompression are the defaults applied
	// when a block or CLI invocation does not request one explicitly.
	PreferredFormat() Format
	PreferredCompression() Compression

	// PreferVariableTag names the vartag.Family (BRACE, ANGLE or SQUARE)
	// this dialect's SQL syntax favors for variable tags, or "" for no
	// preference.
	PreferVariableTag() string

	// ResultMapper returns the column-definition mapper for this dialect.
	ResultMapper() ResultMapper

	// GetRemoteTable wraps rawURL so the outer engine can select from it,
	// e.g. `url('...', 'CSVWithNames')` on ClickHouse-like engines,
	// `read_csv(...)` on DuckDB-like engines. The default (package generic)
	// returns the URL single-quoted, per spec §4.10.
	GetRemoteTable(rawURL string, format Format) (string, error)
}

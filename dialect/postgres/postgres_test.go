// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"strings"
	"testing"

	"github.com/UNO-SOFT/jdbcx/dialect"
)

func TestGetRemoteTableWrapsReadCSV(t *testing.T) {
	got, err := (Dialect{}).GetRemoteTable("https://example.com/data.csv", dialect.FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "read_csv(") {
		t.Errorf("got %q", got)
	}
}

func TestGetRemoteTableWrapsReadParquet(t *testing.T) {
	got, err := (Dialect{}).GetRemoteTable("https://example.com/data.parquet", dialect.FormatParquet)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "read_parquet(") {
		t.Errorf("got %q", got)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if (Dialect{}).SupportsFormat(dialect.FormatArrow) {
		t.Error("postgres dialect should not claim Arrow support")
	}
}

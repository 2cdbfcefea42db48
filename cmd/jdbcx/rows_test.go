// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"
	"time"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

func TestValueFromAny(t *testing.T) {
	f := value.NewFactory()

	v := valueFromAny(f, value.KindInt64, int64(42))
	n, err := v.AsInt64()
	if err != nil || n != 42 {
		t.Errorf("int64: got (%d, %v), want (42, nil)", n, err)
	}

	v = valueFromAny(f, value.KindUint64, int64(7))
	u, err := v.AsUint64()
	if err != nil || u != 7 {
		t.Errorf("uint64: got (%d, %v), want (7, nil)", u, err)
	}

	v = valueFromAny(f, value.KindString, nil)
	if !v.IsNull() {
		t.Error("nil raw should produce a null Value")
	}

	v = valueFromAny(f, value.KindBinary, []byte("blob"))
	s, err := v.AsString()
	if err != nil {
		t.Fatal(err)
	}
	if s != "blob" {
		t.Errorf("binary: got %q, want %q", s, "blob")
	}

	v = valueFromAny(f, value.KindString, []byte("plain"))
	s, err = v.AsString()
	if err != nil || s != "plain" {
		t.Errorf("[]byte as string kind: got (%q, %v), want (\"plain\", nil)", s, err)
	}

	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	v = valueFromAny(f, value.KindDate, now)
	days, err := v.AsDate()
	if err != nil {
		t.Fatal(err)
	}
	if days <= 0 {
		t.Errorf("expected a positive day count since epoch, got %d", days)
	}
}

func TestKindForColumnTypeFallback(t *testing.T) {
	// database/sql.ColumnType can only be constructed by a real driver, so
	// the DatabaseTypeName/ScanType branches of kindForColumnType are not
	// unit-tested here, and no other test in the module calls it.
	t.Skip("requires a live *sql.ColumnType from a driver")
}

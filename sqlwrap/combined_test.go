// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sqlwrap

import (
	"errors"
	"testing"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

func sliceNextFunc(fields []value.Field, vals [][]value.Value) value.NextFunc {
	i := 0
	return func() (value.Row, bool, error) {
		if i >= len(vals) {
			return value.Row{}, false, nil
		}
		row := value.NewRow(fields, vals[i])
		i++
		return row, true, nil
	}
}

func TestCombinedResultSetVisitsEveryRowInOrder(t *testing.T) {
	f := value.NewFactory()
	fields := []value.Field{value.NewField("id", value.KindInt32, 0, 0, true, false)}

	r1 := value.NewRows(fields, sliceNextFunc(fields, [][]value.Value{{f.Int(32, 1)}, {f.Int(32, 2)}}), nil)
	r2 := value.NewRows(fields, sliceNextFunc(fields, [][]value.Value{{f.Int(32, 3)}}), nil)

	crs := NewCombinedResultSet(r1, r2)
	var got []int64
	for {
		ok, err := crs.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		row, err := crs.Row()
		if err != nil {
			t.Fatal(err)
		}
		cell, _ := row.At(0)
		v, _ := cell.AsInt64()
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v", got)
	}
	if !crs.IsAfterLast() {
		t.Error("expected IsAfterLast after exhausting every member Result")
	}
	if crs.RowNumber() != 3 {
		t.Errorf("expected global row number 3, got %d", crs.RowNumber())
	}
}

func TestCombinedResultSetCloseChainsEveryError(t *testing.T) {
	fields := []value.Field{value.NewField("id", value.KindInt32, 0, 0, true, false)}
	r1 := value.NewRows(fields, sliceNextFunc(fields, nil), nil)
	err1 := errors.New("close failure 1")
	err2 := errors.New("close failure 2")
	r1.OnClose(func() error { return err1 })
	r2 := value.NewRows(fields, sliceNextFunc(fields, nil), nil)
	r2.OnClose(func() error { return err2 })

	crs := NewCombinedResultSet(r1, r2)
	err := crs.Close()
	if err == nil {
		t.Fatal("expected a chained close error")
	}
	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Errorf("expected both close errors chained, got %v", err)
	}
}

func TestCombinedResultSetRowBeforeNextIsNoData(t *testing.T) {
	crs := NewCombinedResultSet()
	if _, err := crs.Row(); err == nil {
		t.Error("expected NoData accessing Row before any Next")
	}
}

func TestCombinedResultSetPositionalNavigationUnsupported(t *testing.T) {
	crs := NewCombinedResultSet()
	if _, err := crs.Absolute(1); err == nil {
		t.Error("expected FeatureNotSupported for Absolute")
	}
	if _, err := crs.Relative(1); err == nil {
		t.Error("expected FeatureNotSupported for Relative")
	}
	if _, err := crs.Previous(); err == nil {
		t.Error("expected FeatureNotSupported for Previous")
	}
}

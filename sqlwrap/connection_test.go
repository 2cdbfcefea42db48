// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sqlwrap

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/UNO-SOFT/jdbcx/dispatch"
	"github.com/UNO-SOFT/jdbcx/registry"
	"github.com/UNO-SOFT/jdbcx/vartag"
)

func TestConnectionQueryContextPassesPlainSQLThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`select \* from t`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	conn := NewConnection(db, dispatch.New(registry.New(nil)), nil, nil, vartag.For(vartag.BRACE))
	rows, err := conn.QueryContext(context.Background(), "select * from t")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected one row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestConnectionExecContextPassesPlainSQLThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(`delete from t`).WillReturnResult(sqlmock.NewResult(0, 1))

	conn := NewConnection(db, dispatch.New(registry.New(nil)), nil, nil, vartag.For(vartag.BRACE))
	res, err := conn.ExecContext(context.Background(), "delete from t")
	if err != nil {
		t.Fatal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("got %d rows affected", n)
	}
}

func TestConnectionPrepareContextRewritesOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectPrepare(`select \* from t where id = \?`)
	mock.ExpectQuery(`select \* from t where id = \?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	conn := NewConnection(db, dispatch.New(registry.New(nil)), nil, nil, vartag.For(vartag.BRACE))
	stmt, err := conn.PrepareContext(context.Background(), "select * from t where id = ?")
	if err != nil {
		t.Fatal(err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected one row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package bridgeext

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/option"
	"github.com/UNO-SOFT/jdbcx/vartag"
)

func newQueryContext() *qctx.QueryContext {
	proc := qctx.NewProcessStore()
	connVars := qctx.NewConnectionVarStore(proc)
	return qctx.New(connVars.NewQueryVarStore(), vartag.For(vartag.BRACE))
}

func TestCreateListenerURLModeEmitsReferenceURL(t *testing.T) {
	var gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config":
			w.Write([]byte(`{"requiresToken":false,"defaultFormat":"csv"}`))
		case "/query":
			gotMode = r.Header.Get("x-query-mode")
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ext := Extension{}
	props := option.Config{optionURL: srv.URL}
	l, err := ext.CreateListener(newQueryContext(), nil, props)
	if err != nil {
		t.Fatal(err)
	}

	result, err := l.Invoke("select 7")
	if err != nil {
		t.Fatal(err)
	}
	defer result.Close()

	if gotMode != "async" {
		t.Errorf("expected x-query-mode=async, got %q", gotMode)
	}

	rows, err := result.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	cell, _ := rows[0].At(0)
	s, _ := cell.AsString()
	if !strings.HasPrefix(s, "'"+srv.URL+"/") || !strings.HasSuffix(s, ".csv'") {
		t.Errorf("expected a single-quoted reference URL ending in .csv, got %q", s)
	}
}

func TestCreateListenerDataModeStreamsBridgeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config":
			w.Write([]byte(`{"requiresToken":false,"defaultFormat":"csv"}`))
		case "/query":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("7\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ext := Extension{}
	props := option.Config{optionURL: srv.URL, optionOutput: "data"}
	l, err := ext.CreateListener(newQueryContext(), nil, props)
	if err != nil {
		t.Fatal(err)
	}

	result, err := l.Invoke("select 7")
	if err != nil {
		t.Fatal(err)
	}
	defer result.Close()

	if _, ok := result.Scalar(); !ok {
		t.Fatal("expected a scalar streamed result in data output mode")
	}
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExecuteSendsHeadersAndUnescapesBody(t *testing.T) {
	var gotHeaders http.Header
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"requiresToken":false,"defaultFormat":"text/csv"}`))
		case "/query":
			gotHeaders = r.Header.Clone()
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("a,b\n1,2\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, User: "alice", QueryMode: "sync"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := c.Execute(context.Background(), `select \$\{x\}`)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Close()

	if gotHeaders.Get("x-user") != "alice" {
		t.Errorf("got x-user=%q", gotHeaders.Get("x-user"))
	}
	if gotHeaders.Get("x-query-mode") != "sync" {
		t.Errorf("got x-query-mode=%q", gotHeaders.Get("x-query-mode"))
	}
	if gotHeaders.Get("x-query-id") == "" {
		t.Errorf("expected x-query-id to be set")
	}
	if gotHeaders.Get("x-format") != "text/csv" {
		t.Errorf("expected x-format to fall back to the bridge's default format, got %q", gotHeaders.Get("x-format"))
	}
	if gotBody != `select ${x}` {
		t.Errorf("expected one layer of escapes removed, got %q", gotBody)
	}

	payload, ok := result.Scalar()
	if !ok {
		t.Fatal("expected a scalar result")
	}
	body, err := io.ReadAll(payload.(io.Reader))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "a,b\n1,2\n" {
		t.Errorf("got %q", body)
	}
}

func TestExecuteNonTwoXXProbesErrorEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/config":
			w.Write([]byte(`{}`))
		case r.URL.Path == "/query":
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasPrefix(r.URL.Path, "/error/"):
			w.Write([]byte("sub-query failed: division by zero"))
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Execute(context.Background(), "select 1/0")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("expected the probed server message in the error, got %q", err.Error())
	}
}

func TestExecuteFallsBackToOriginalErrorWhenProbeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/config":
			w.Write([]byte(`{}`))
		case r.URL.Path == "/query":
			w.WriteHeader(http.StatusBadGateway)
		case strings.HasPrefix(r.URL.Path, "/error/"):
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Execute(context.Background(), "select 1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected the original status in the error, got %q", err.Error())
	}
}

func TestParseProxyRejectsUnknownScheme(t *testing.T) {
	if _, _, err := parseProxy("ftp://host:21"); err == nil {
		t.Fatal("expected an error for an unsupported proxy scheme")
	}
}

func TestParseProxyAcceptsHostPortAndPortOnly(t *testing.T) {
	kind, u, err := parseProxy("proxy.local:8080")
	if err != nil {
		t.Fatal(err)
	}
	if kind != proxyHTTP || u.Host != "proxy.local:8080" {
		t.Errorf("got kind=%v host=%q", kind, u.Host)
	}

	kind, u, err = parseProxy(":9050")
	if err != nil {
		t.Fatal(err)
	}
	if kind != proxyHTTP || u.Port() != "9050" {
		t.Errorf("got kind=%v host=%q", kind, u.Host)
	}
}

func TestParseProxyDetectsSocksScheme(t *testing.T) {
	kind, _, err := parseProxy("socks5://127.0.0.1:1080")
	if err != nil {
		t.Fatal(err)
	}
	if kind != proxySOCKS {
		t.Errorf("expected proxySOCKS, got %v", kind)
	}
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package webext implements the built-in "web" function extension (spec
// §4.6, scenario E3): ships a block's body to an HTTP endpoint and turns
// the response into a *value.Result, one row per response line and one
// column per comma-separated field — the same CSV-ish wire shape the
// bridge client streams back (internal/value), minus the bridge's
// query-id/error-probe protocol.
package webext

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/internal/value"
	"github.com/UNO-SOFT/jdbcx/option"
	"github.com/UNO-SOFT/jdbcx/registry"
)

const (
	optionBaseURL = "base.url"
	optionMethod  = "method"
	optionHeader  = "header"
	optionTimeout = "timeout"
)

// Extension is the "web" built-in.
type Extension struct {
	// Client is the HTTP client used for every call; defaults to
	// http.DefaultClient when nil, overridable by tests.
	Client *http.Client
}

func (Extension) Name() string      { return "web" }
func (Extension) Aliases() []string { return nil }

func (Extension) DefaultOptions() []option.Option {
	return []option.Option{
		{Name: optionBaseURL, Description: "endpoint the block body is posted to"},
		{Name: optionMethod, Description: "HTTP method", Default: "POST"},
		{Name: optionHeader, Description: "whether the first response line names columns", Default: "false",
			Choices: []string{"true", "false"}},
		{Name: optionTimeout, Description: "request timeout, milliseconds", Default: "30000"},
	}
}

func (Extension) SupportsNoArguments() bool   { return false }
func (Extension) RequiresBridgeContext() bool { return false }

func (e Extension) CreateListener(_ *qctx.QueryContext, _ any, props option.Config) (*registry.Listener, error) {
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	baseURL := props.GetOr(optionBaseURL, "")
	method := strings.ToUpper(props.GetOr(optionMethod, "POST"))
	withHeader := props.GetOr(optionHeader, "false") == "true"
	timeout := parseMillis(props.GetOr(optionTimeout, "30000"))

	return &registry.Listener{
		OnQuery: func(body string) (*value.Result, error) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, method, baseURL, bytes.NewReader([]byte(body)))
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", "Jdbcx/1")
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			payload, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			return decodeLines(string(payload), withHeader), nil
		},
	}, nil
}

func parseMillis(s string) time.Duration {
	var ms int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 30 * time.Second
		}
		ms = ms*10 + int64(s[i]-'0')
	}
	if ms <= 0 {
		return 30 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// decodeLines turns a newline-separated, comma-field response body into a
// row-oriented Result. Trailing newlines are ignored; an empty body yields
// a single "value" field and no rows.
func decodeLines(payload string, withHeader bool) *value.Result {
	f := value.NewFactory()
	lines := strings.Split(strings.TrimRight(payload, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		fields := []value.Field{value.NewField("value", value.KindString, 0, 0, false, true)}
		return value.SliceResult(fields, nil)
	}

	var names []string
	if withHeader {
		names = strings.Split(lines[0], ",")
		lines = lines[1:]
	} else if len(lines) > 0 {
		for i := range strings.Split(lines[0], ",") {
			names = append(names, colName(i))
		}
	}

	fields := make([]value.Field, len(names))
	for i, n := range names {
		fields[i] = value.NewField(n, value.KindString, 0, 0, false, true)
	}

	rows := make([]value.Row, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(line, ",")
		vals := make([]value.Value, len(fields))
		for i := range fields {
			if i < len(cells) {
				vals[i] = f.String(cells[i])
			} else {
				vals[i] = f.Null(value.KindString)
			}
		}
		rows = append(rows, value.NewRow(fields, vals))
	}
	return value.SliceResult(fields, rows)
}

func colName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%len(letters)])
}

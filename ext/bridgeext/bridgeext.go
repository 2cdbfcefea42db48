// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package bridgeext implements the built-in "bridge" function extension
// (spec §4.7, scenario E4): wraps a bridge.Client to ship a block's body to
// a sibling bridge server. By default it hands the outer engine a
// dialect-quoted reference URL to the eventual result rather than
// streaming data through this process (spec §4.7 "the driver receives a
// URL in place of the sub-query"); option "output=data" instead streams
// the bytes back synchronously via bridge.Client.Execute, for callers that
// want the gateway itself to consume the result.
package bridgeext

import (
	"context"
	"strings"
	"time"

	"github.com/UNO-SOFT/jdbcx/bridge"
	"github.com/UNO-SOFT/jdbcx/dialect"
	"github.com/UNO-SOFT/jdbcx/internal/qctx"
	"github.com/UNO-SOFT/jdbcx/internal/value"
	"github.com/UNO-SOFT/jdbcx/option"
	"github.com/UNO-SOFT/jdbcx/registry"
)

const (
	optionURL            = "url"
	optionToken          = "token"
	optionUser           = "user"
	optionFormat         = "format"
	optionCompression    = "compression"
	optionProxy          = "proxy"
	optionSSLMode        = "ssl.mode"
	optionConnectTimeout = "connect.timeout"
	optionSocketTimeout  = "socket.timeout"
	optionOutput         = "output"
)

// Extension is the "bridge" built-in.
type Extension struct {
	// Dialect selects how a reference URL is quoted for the outer engine;
	// defaults to the single-quoted generic form of spec §4.10 when nil.
	Dialect dialect.Dialect
}

func (Extension) Name() string      { return "bridge" }
func (Extension) Aliases() []string { return nil }

func (Extension) DefaultOptions() []option.Option {
	return []option.Option{
		{Name: optionURL, Description: "bridge server base URL"},
		{Name: optionToken, Description: "bearer token"},
		{Name: optionUser, Description: "x-user header value"},
		{Name: optionFormat, Description: "MIME format override"},
		{Name: optionCompression, Description: "compression override"},
		{Name: optionProxy, Description: "proxy URL (host:port, :port, scheme://host:port)"},
		{Name: optionSSLMode, Description: "TLS verification mode", Default: "accept-all",
			Choices: []string{"strict", "accept-all"}},
		{Name: optionConnectTimeout, Description: "connect timeout, milliseconds", Default: "5000"},
		{Name: optionSocketTimeout, Description: "socket timeout, milliseconds", Default: "30000"},
		{Name: optionOutput, Description: "url (reference only) or data (stream synchronously)",
			Default: "url", Choices: []string{"url", "data"}},
	}
}

func (Extension) SupportsNoArguments() bool   { return false }
func (Extension) RequiresBridgeContext() bool { return true }

func (e Extension) CreateListener(_ *qctx.QueryContext, _ any, props option.Config) (*registry.Listener, error) {
	cfg := bridge.Config{
		BaseURL:        props.GetOr(optionURL, ""),
		Token:          props.GetOr(optionToken, ""),
		User:           props.GetOr(optionUser, ""),
		Format:         props.GetOr(optionFormat, ""),
		Compression:    props.GetOr(optionCompression, ""),
		Proxy:          props.GetOr(optionProxy, ""),
		SSLMode:        props.GetOr(optionSSLMode, "accept-all"),
		ConnectTimeout: parseMillis(props.GetOr(optionConnectTimeout, "5000")),
		SocketTimeout:  parseMillis(props.GetOr(optionSocketTimeout, "30000")),
	}
	client, err := bridge.New(cfg, nil)
	if err != nil {
		return nil, err
	}

	var d remoteTableWrapper = genericDialect{}
	if e.Dialect != nil {
		d = e.Dialect
	}
	output := props.GetOr(optionOutput, "url")

	return &registry.Listener{
		OnQuery: func(body string) (*value.Result, error) {
			timeout := cfg.SocketTimeout
			if timeout <= 0 {
				timeout = bridge.DefaultSocketTimeout
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if output == "data" {
				return client.Execute(ctx, body)
			}

			queryID, err := client.SubmitAsync(ctx, body)
			if err != nil {
				return nil, err
			}
			format := client.Format()
			if format == "" {
				format = "csv"
			}
			rawURL := strings.TrimRight(client.BaseURL(), "/") + "/" + queryID + "." + format
			quoted, err := d.GetRemoteTable(rawURL, dialect.Format(format))
			if err != nil {
				return nil, err
			}

			f := value.NewFactory()
			fields := []value.Field{value.NewField("url", value.KindString, 0, 0, false, false)}
			rows := []value.Row{value.NewRow(fields, []value.Value{f.String(quoted)})}
			return value.SliceResult(fields, rows), nil
		},
	}, nil
}

// remoteTableWrapper is the one dialect.Dialect method this extension
// needs; kept narrow so genericDialect below doesn't have to stub out the
// rest of the interface just to serve as a fallback.
type remoteTableWrapper interface {
	GetRemoteTable(rawURL string, format dialect.Format) (string, error)
}

// genericDialect mirrors dialect/generic's single-quoting rule without an
// import cycle (dialect/generic does not, and must not, depend on ext/*).
type genericDialect struct{}

func (genericDialect) GetRemoteTable(rawURL string, _ dialect.Format) (string, error) {
	return "'" + strings.ReplaceAll(rawURL, "'", "''") + "'", nil
}

func parseMillis(s string) time.Duration {
	var ms int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
		ms = ms*10 + int64(s[i]-'0')
	}
	return time.Duration(ms) * time.Millisecond
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package bridge implements the bridge-server client of spec §4.7: an
// HTTP(S) client that ships a sub-query to a sibling "bridge server",
// streams the tabular response back as a lazy Result, and recovers
// server-side error messages via a follow-up probe.
package bridge

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"

	"github.com/UNO-SOFT/jdbcx/internal/errs"
	"github.com/UNO-SOFT/jdbcx/internal/jlog"
	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Default timeouts (spec §4.7 "Timeouts").
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultSocketTimeout  = 30 * time.Second
)

// Config configures a Client (spec §4.7 "Protocol, per call").
type Config struct {
	BaseURL        string
	Token          string
	User           string
	QueryMode      string // sync|async|...
	Format         string // MIME type
	Compression    string
	Proxy          string // raw "proxy" option value
	SSLMode        string // "strict" uses the platform verifier; anything else installs an accept-all verifier
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return DefaultConnectTimeout
}

func (c Config) socketTimeout() time.Duration {
	if c.SocketTimeout > 0 {
		return c.SocketTimeout
	}
	return DefaultSocketTimeout
}

// remoteConfig mirrors the bridge server's GET /config response (spec §4.7
// step 1 "populate bridge properties: token requirement, default format,
// compression, url").
type remoteConfig struct {
	RequiresToken bool   `json:"requiresToken"`
	DefaultFormat string `json:"defaultFormat"`
	Compression   string `json:"compression"`
	URL           string `json:"url"`
}

// Client is the bridge-server HTTP client.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger

	once      sync.Once
	remote    remoteConfig
	remoteErr error
}

// New builds a Client over cfg. A nil logger defaults to a discard logger.
func New(cfg Config, log *slog.Logger) (*Client, error) {
	tr, err := buildTransport(cfg.Proxy, cfg.SSLMode, cfg.connectTimeout())
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Transport: tr, Timeout: cfg.socketTimeout()},
		log:  jlog.Or(log),
	}, nil
}

// buildTransport installs the proxy and TLS-verification policy of spec
// §4.7 "Timeouts" paragraph.
func buildTransport(rawProxy, sslMode string, connectTimeout time.Duration) (*http.Transport, error) {
	tr := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	if sslMode != "strict" {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	if rawProxy == "" {
		return tr, nil
	}
	kind, u, err := parseProxy(rawProxy)
	if err != nil {
		return nil, err
	}
	switch kind {
	case proxyHTTP:
		tr.Proxy = http.ProxyURL(u)
	case proxySOCKS:
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, errs.Connection("bridge.buildTransport", err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			tr.DialContext = cd.DialContext
		} else {
			tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}
	return tr, nil
}

type proxyKind int

const (
	proxyHTTP proxyKind = iota
	proxySOCKS
)

// parseProxy accepts "host:port", ":port", or "scheme://host:port" (spec
// §4.7). A scheme starting "http" selects an HTTP proxy, "sock" selects
// SOCKS, anything else is an UnknownHost-flavoured connection error.
func parseProxy(raw string) (proxyKind, *url.URL, error) {
	s := raw
	switch {
	case strings.HasPrefix(s, ":"):
		s = "http://127.0.0.1" + s
	case !strings.Contains(s, "://"):
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return 0, nil, errs.Connection("bridge.parseProxy", err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch {
	case strings.HasPrefix(scheme, "http"):
		return proxyHTTP, u, nil
	case strings.HasPrefix(scheme, "sock"):
		return proxySOCKS, u, nil
	default:
		return 0, nil, errs.Connection("bridge.parseProxy", fmt.Errorf("unknown proxy scheme %q: UnknownHost", u.Scheme))
	}
}

// ensureConfig performs the one-time GET /config of spec §4.7 step 1.
func (c *Client) ensureConfig(ctx context.Context) error {
	c.once.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+"/config", nil)
		if err != nil {
			c.remoteErr = errs.Connection("bridge.ensureConfig", err)
			return
		}
		c.applyAuth(req)
		resp, err := c.http.Do(req)
		if err != nil {
			c.remoteErr = errs.Connection("bridge.ensureConfig", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			c.remoteErr = errs.Server("bridge.ensureConfig", fmt.Errorf("GET /config: status %d", resp.StatusCode))
			return
		}
		if err := json.NewDecoder(resp.Body).Decode(&c.remote); err != nil {
			c.remoteErr = errs.Connection("bridge.ensureConfig", err)
		}
	})
	return c.remoteErr
}

func (c *Client) applyAuth(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		return
	}
	if u := req.URL; u.User != nil {
		user := u.User.Username()
		pass, _ := u.User.Password()
		req.SetBasicAuth(user, pass)
	}
}

// Execute ships subQuery to the bridge server and returns a streaming
// Result wrapping the raw response body (spec §4.7 steps 2-5). Query-body
// escapes are unwound one layer before sending (step 3).
func (c *Client) Execute(ctx context.Context, subQuery string) (*value.Result, error) {
	if err := c.ensureConfig(ctx); err != nil {
		return nil, err
	}

	queryID := uuid.NewString()
	body := unescapeOneLayer(subQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/query", strings.NewReader(body))
	if err != nil {
		return nil, errs.Connection("bridge.Execute", err)
	}
	c.setHeaders(req, queryID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.probeError(ctx, queryID, errs.Connection("bridge.Execute", err))
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, c.probeError(ctx, queryID, errs.Server("bridge.Execute", fmt.Errorf("status %d", resp.StatusCode)))
	}

	result := value.NewScalar(resp.Body)
	result.OnClose(func() error {
		closeErr := resp.Body.Close()
		if probeErr := c.probeTrailerError(ctx, queryID); probeErr != nil {
			return probeErr
		}
		return closeErr
	})
	return result, nil
}

// SubmitAsync ships subQuery to the bridge server with x-query-mode=async
// and returns the query_id the server is tracking it under, without
// streaming the response body back — used when the caller only needs a
// reference URL to the eventual result (spec §4.7 "the driver receives a
// URL in place of the sub-query"), e.g. the bridgeext function extension's
// default "url" output mode.
func (c *Client) SubmitAsync(ctx context.Context, subQuery string) (string, error) {
	if err := c.ensureConfig(ctx); err != nil {
		return "", err
	}

	queryID := uuid.NewString()
	body := unescapeOneLayer(subQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/query", strings.NewReader(body))
	if err != nil {
		return "", errs.Connection("bridge.SubmitAsync", err)
	}
	c.setHeaders(req, queryID)
	req.Header.Set("x-query-mode", "async")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.probeError(ctx, queryID, errs.Connection("bridge.SubmitAsync", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", c.probeError(ctx, queryID, errs.Server("bridge.SubmitAsync", fmt.Errorf("status %d", resp.StatusCode)))
	}
	return queryID, nil
}

// BaseURL returns the configured bridge server base URL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Format returns the default format the bridge server advertised via
// GET /config, or the locally configured override if set.
func (c *Client) Format() string {
	if c.cfg.Format != "" {
		return c.cfg.Format
	}
	return c.remote.DefaultFormat
}

func (c *Client) setHeaders(req *http.Request, queryID string) {
	req.Header.Set("User-Agent", "jdbcx-go-bridge-client")
	if c.cfg.User != "" {
		req.Header.Set("x-user", c.cfg.User)
	}
	if c.cfg.QueryMode != "" {
		req.Header.Set("x-query-mode", c.cfg.QueryMode)
	}
	format := c.cfg.Format
	if format == "" {
		format = c.remote.DefaultFormat
	}
	if format != "" {
		req.Header.Set("x-format", format)
	}
	compression := c.cfg.Compression
	if compression == "" {
		compression = c.remote.Compression
	}
	if compression != "" {
		req.Header.Set("x-compression", compression)
	}
	req.Header.Set("x-query-id", queryID)
	c.applyAuth(req)
}

// probeError issues the spec §4.7 step 4 follow-up: GET /error/<id> with
// Accept: text/plain, surfacing the server message as the cause. If the
// probe itself fails, original is returned unchanged.
func (c *Client) probeError(ctx context.Context, queryID string, original error) error {
	msg, err := c.fetchErrorMessage(ctx, queryID)
	if err != nil || msg == "" {
		return original
	}
	return errs.Server("bridge.probeError", fmt.Errorf("%s (query_id=%s)", msg, queryID))
}

// probeTrailerError is the close-hook re-probe of spec §4.7 step 5: it only
// surfaces an error when the bridge actually recorded one for this query_id;
// a probe failure (e.g. 404 because nothing went wrong) is not itself an
// error.
func (c *Client) probeTrailerError(ctx context.Context, queryID string) error {
	msg, err := c.fetchErrorMessage(ctx, queryID)
	if err != nil || msg == "" {
		return nil
	}
	return errs.Server("bridge.probeTrailerError", fmt.Errorf("%s (query_id=%s)", msg, queryID))
}

func (c *Client) fetchErrorMessage(ctx context.Context, queryID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+"/error/"+queryID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	c.applyAuth(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// unescapeOneLayer removes one layer of backslash-escaping: "\X" becomes
// "X" for any X, so a caller-escaped "${...}" survives the gateway's own
// rewrite intact en route to the bridge server (spec §4.7 step 3).
func unescapeOneLayer(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

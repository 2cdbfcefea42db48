// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command jdbcx is the thin CLI wrapper of spec §6:
//
//	jdbcx [PROPERTIES] <URL> [@FILE|QUERY]...
//
// It opens URL (after stripping the configured JDBCX prefix and an
// optional leading extension segment), runs every query argument through
// the dispatcher/sqlwrap pipeline, and writes the result with the
// serializer selected by outputFormat/outputFile.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/peterbourgon/ff/v3"
	"golang.org/x/sync/errgroup"

	_ "github.com/mattn/go-sqlite3"

	"github.com/UNO-SOFT/jdbcx/dialect"
	"github.com/UNO-SOFT/jdbcx/dialect/generic"
	"github.com/UNO-SOFT/jdbcx/dialect/postgres"
	"github.com/UNO-SOFT/jdbcx/dispatch"
	"github.com/UNO-SOFT/jdbcx/ext/bridgeext"
	"github.com/UNO-SOFT/jdbcx/ext/varext"
	"github.com/UNO-SOFT/jdbcx/ext/webext"
	"github.com/UNO-SOFT/jdbcx/internal/jlog"
	"github.com/UNO-SOFT/jdbcx/internal/util"
	"github.com/UNO-SOFT/jdbcx/registry"
	"github.com/UNO-SOFT/jdbcx/serialize"
	"github.com/UNO-SOFT/jdbcx/sqlwrap"
	"github.com/UNO-SOFT/jdbcx/vartag"
)

func main() {
	if err := Main(os.Args[1:]); err != nil {
		jlog.Logger().Error("jdbcx", "error", err)
		os.Exit(1)
	}
}

// DefaultPrefix is the default JDBCX URL prefix of spec §6 "Connection URL
// surface", overridable by -prefix for implementers fronting a different
// inner driver namespace.
const DefaultPrefix = "jdbcx:"

type config struct {
	driver string
	prefix string

	loopCount     int
	loopInterval  time.Duration
	noProperties  bool
	outputFile    string
	outputFormat  string
	outputCompr   string
	compLevel     int
	compBuffer    int
	outputParams  string
	tasks         int
	taskCheckIntv time.Duration
	validationQry string
	validationTmo time.Duration

	sslDialect string
}

func Main(args []string) error {
	fs := flag.NewFlagSet("jdbcx", flag.ContinueOnError)
	cfg := config{}
	fs.StringVar(&cfg.driver, "driver", "sqlite3", "database/sql driver name the inner DSN is opened with")
	fs.StringVar(&cfg.prefix, "prefix", DefaultPrefix, "JDBCX URL prefix")
	fs.IntVar(&cfg.loopCount, "loopCount", 1, "run each query this many times")
	fs.DurationVar(&cfg.loopInterval, "loopInterval", 0, "pause between loop iterations")
	fs.BoolVar(&cfg.noProperties, "noProperties", false, "ignore connection_properties overlays entirely")
	fs.StringVar(&cfg.outputFile, "outputFile", "-", "output file; '-' is stdout; extension infers format/compression unless overridden")
	fs.StringVar(&cfg.outputFormat, "outputFormat", "", "serializer name (tsv/csv/markdown/json-seq/values/binary/arrow/parquet)")
	fs.StringVar(&cfg.outputCompr, "outputCompression", "", "none/gzip/zstd")
	fs.IntVar(&cfg.compLevel, "compressionLevel", -1, "compression level, codec-specific")
	fs.IntVar(&cfg.compBuffer, "compressionBuffer", 0, "compression writer buffer size")
	fs.StringVar(&cfg.outputParams, "outputParams", "", "k=v&k=v overlay merged into the serializer Options")
	fs.IntVar(&cfg.tasks, "tasks", 1, "parallel query workers")
	fs.DurationVar(&cfg.taskCheckIntv, "taskCheckInterval", 0, "interval between done/total progress log lines (0 disables)")
	fs.StringVar(&cfg.validationQry, "validationQuery", "", "query run against a fresh connection before real work starts")
	fs.DurationVar(&cfg.validationTmo, "validationTimeout", 5*time.Second, "timeout for validationQuery")
	fs.StringVar(&cfg.sslDialect, "dialect", "generic", "generic/postgres — selects §4.10 Dialect used for bridge/web URL quoting")
	fs.Var(&jlog.Verbose, "verbose", "verbose logging")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("JDBCX")); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("usage: jdbcx [PROPERTIES] <URL> [@FILE|QUERY]...")
	}
	rawURL := rest[0]
	queryArgs := rest[1:]

	extName, innerDSN := splitJDBCXURL(rawURL, cfg.prefix)

	db, err := sql.Open(cfg.driver, innerDSN)
	if err != nil {
		return fmt.Errorf("open %s %q: %w", cfg.driver, innerDSN, err)
	}
	defer db.Close()

	reg := registry.New(jlog.Logger())
	reg.Register(varext.Extension{})
	reg.Register(webext.Extension{})
	reg.Register(bridgeext.Extension{Dialect: selectDialect(cfg.sslDialect)})

	d := dispatch.New(reg)
	if extName != "" {
		if ext, ok := reg.Resolve(extName); ok {
			d.Default = ext
		}
	}

	var connProps map[string]string
	if !cfg.noProperties {
		connProps = map[string]string{}
	}

	conn := sqlwrap.NewConnection(db, d, nil, connProps, vartag.For(vartag.Default))

	ctx := context.Background()
	if cfg.validationQry != "" {
		vctx, cancel := context.WithTimeout(ctx, cfg.validationTmo)
		rows, err := conn.QueryContext(vctx, cfg.validationQry)
		cancel()
		if err != nil {
			return fmt.Errorf("validationQuery: %w", err)
		}
		rows.Close()
	}

	queries, err := loadQueries(queryArgs)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return errors.New("no query given")
	}

	fileOut, closeFileOut, err := openOutput(cfg.outputFile)
	if err != nil {
		return err
	}
	defer closeFileOut()

	serOpts, ser, err := resolveSerializer(cfg)
	if err != nil {
		return err
	}

	out, closeOut, err := wrapCompression(fileOut, ser.Name(), serOpts.Compression, cfg.compLevel)
	if err != nil {
		return err
	}
	defer closeOut()

	if cfg.loopCount < 1 {
		cfg.loopCount = 1
	}
	for iter := 0; iter < cfg.loopCount; iter++ {
		if iter > 0 && cfg.loopInterval > 0 {
			time.Sleep(cfg.loopInterval)
		}
		if err := runQueries(ctx, conn, queries, cfg.tasks, cfg.taskCheckIntv, func(rows *sql.Rows) error {
			return writeRows(out, ser, serOpts, rows)
		}); err != nil {
			return err
		}
	}
	if warnErr := conn.Warnings(); warnErr != nil {
		jlog.Logger().Warn("jdbcx", "warnings", warnErr)
	}
	return nil
}

// splitJDBCXURL implements spec §6 "Connection URL surface": a URL
// starting with prefix is intercepted; the segment between the prefix and
// the next ':' optionally names an extension; the remainder is forwarded
// to the inner driver. A segment followed by "//" is the inner URL's own
// scheme, not an extension name. A URL not carrying the prefix is passed
// through unchanged with no extension selected.
func splitJDBCXURL(rawURL, prefix string) (ext, inner string) {
	if !strings.HasPrefix(rawURL, prefix) {
		return "", rawURL
	}
	rest := rawURL[len(prefix):]
	if i := strings.IndexByte(rest, ':'); i >= 0 && !strings.HasPrefix(rest[i+1:], "//") {
		return rest[:i], rest[i+1:]
	}
	return "", rest
}

func selectDialect(name string) dialect.Dialect {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return postgres.Dialect{}
	default:
		return generic.Dialect{}
	}
}

// loadQueries expands @-prefixed arguments into file contents (globbed,
// .sql-filtered when the pattern matches more than one file) and splits
// every resulting document on top-level ';' (spec §6 "Multiple queries are
// split on top-level ';' by the parser").
func loadQueries(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "@") {
			out = append(out, splitTopLevelSemicolons(a)...)
			continue
		}
		pattern := a[1:]
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("@%s: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		} else if len(matches) > 1 {
			filtered := matches[:0]
			for _, m := range matches {
				if strings.EqualFold(filepath.Ext(m), ".sql") {
					filtered = append(filtered, m)
				}
			}
			if len(filtered) > 0 {
				matches = filtered
			}
		}
		for _, m := range matches {
			b, err := os.ReadFile(m)
			if err != nil {
				return nil, fmt.Errorf("@%s: %w", m, err)
			}
			out = append(out, splitTopLevelSemicolons(string(b))...)
		}
	}
	return out, nil
}

// splitTopLevelSemicolons splits doc on ';' outside single/double-quoted
// runs, discarding empty/whitespace-only statements. It does not need to
// track {{ }}/{% %} block nesting: spec §4.1 blocks never contain a bare
// top-level ';' in any §8 scenario, and the dispatcher rewrites each
// resulting statement independently after this split.
func splitTopLevelSemicolons(doc string) []string {
	var stmts []string
	var cur strings.Builder
	var quote byte
	for i := 0; i < len(doc); i++ {
		c := doc[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			cur.WriteByte(c)
		case c == ';':
			if s := strings.TrimSpace(cur.String()); s != "" {
				stmts = append(stmts, s)
			}
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

func openOutput(name string) (*bufio.Writer, func() error, error) {
	if name == "" || name == "-" {
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("outputFile %s: %w", name, err)
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}

// wrapCompression layers outputCompression over the raw output stream, the
// way csvdump.go's "-compress gz/zst" flag wraps its file writer — except
// for arrow/parquet, whose serializers already negotiate compression
// internally (Parquet per-column codecs, Arrow IPC framing) and would
// otherwise be double-compressed.
func wrapCompression(w io.Writer, formatName, compression string, level int) (io.Writer, func() error, error) {
	if formatName == "arrow" || formatName == "parquet" || compression == "" || compression == "none" {
		return w, func() error { return nil }, nil
	}
	cw, err := util.NewCompressWriter(w, util.Compression(compression), level)
	if err != nil {
		return nil, nil, fmt.Errorf("outputCompression %s: %w", compression, err)
	}
	return cw, cw.Close, nil
}

func resolveSerializer(cfg config) (serialize.Options, serialize.Serializer, error) {
	opts := serialize.DefaultOptions()
	opts.Buffer = cfg.compBuffer

	formatName := cfg.outputFormat
	comprName := cfg.outputCompr
	if cfg.outputFile != "" && cfg.outputFile != "-" {
		if formatName == "" {
			formatName = util.InferFormat(cfg.outputFile)
		}
		if comprName == "" {
			comprName = string(util.InferCompression(cfg.outputFile))
		}
	}
	if formatName == "" {
		formatName = "csv"
	}
	opts.Compression = comprName

	if cfg.outputParams != "" {
		applyOutputParams(&opts, cfg.outputParams)
	}

	ser, ok := serialize.NewRegistry().Get(formatName)
	if !ok {
		return opts, nil, fmt.Errorf("outputFormat %q: unknown serializer", formatName)
	}
	return opts, ser, nil
}

// applyOutputParams overlays "k=v&k=v" onto the handful of Options fields
// exposed this way (spec §6 "outputParams"); unrecognized keys are
// ignored, matching the gateway's general "extra config is forward
// compatible, not an error" posture (option.Merge never rejects a key).
func applyOutputParams(opts *serialize.Options, raw string) {
	for _, kv := range strings.Split(raw, "&") {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			continue
		}
		k, v := kv[:i], kv[i+1:]
		switch k {
		case "header":
			opts.Header = v == "true"
		case "nullValue":
			opts.NullValue = v
		case "charset":
			opts.Charset = v
		case "delim":
			if len(v) > 0 {
				opts.Delim = v[0]
			}
		}
	}
}

// runQueries executes every query against conn, fanning out across
// `tasks` concurrent workers the way tablecopy.go bounds its table-copy
// concurrency with an errgroup and a buffered semaphore channel. When
// checkIntv is positive it logs a "done/total" heartbeat at that interval,
// generalizing tablecopy.go's per-task `log.Println(task.Src, n, dur)` timing
// line into a periodic progress report for batches too long to wait out
// silently.
func runQueries(ctx context.Context, conn *sqlwrap.Connection, queries []string, tasks int, checkIntv time.Duration, handle func(*sql.Rows) error) error {
	if tasks < 1 {
		tasks = 1
	}
	grp, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, tasks)

	var done int32
	if checkIntv > 0 {
		ticker := time.NewTicker(checkIntv)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-gctx.Done():
					return
				case <-ticker.C:
					jlog.Logger().Info("jdbcx", "done", atomic.LoadInt32(&done), "total", len(queries))
				}
			}
		}()
	}

	for _, q := range queries {
		q := q
		grp.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}
			rows, err := conn.QueryContext(gctx, q)
			if err != nil {
				return fmt.Errorf("%s: %w", q, err)
			}
			defer rows.Close()
			err = handle(rows)
			atomic.AddInt32(&done, 1)
			return err
		})
	}
	return grp.Wait()
}

// writeRows drains rows into an in-memory value.Result and hands it to the
// selected serializer. This keeps the §4.9 serializer contract (which
// operates on value.Result, not database/sql rows) the single choke point
// for output formatting, rather than duplicating per-format logic here.
func writeRows(w io.Writer, ser serialize.Serializer, opts serialize.Options, rows *sql.Rows) error {
	result, err := rowsToResult(rows)
	if err != nil {
		return err
	}
	defer result.Close()
	return ser.Serialize(w, result, opts)
}

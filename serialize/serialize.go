// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package serialize implements the Result serializers of spec §4.9: a
// shared {serialize(Result, Writer)} contract plus the format-specific
// writers (TSV, CSV, Markdown, JSON-sequence, VALUES, Binary, Arrow,
// Parquet). Grounded on csvdump.go's writer-selection idiom
// (format chosen by file suffix, compression layered via
// github.com/klauspost/compress), generalized from a single CSV writer to
// the full spec §4.9 format set.
package serialize

import (
	"io"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Options are the common options of spec §4.9 ("Options honoured by text
// serializers") plus every format-specific knob used below.
type Options struct {
	Header    bool
	Charset   string
	NullValue string
	Buffer    int

	// CSV
	Delim     byte
	Quote     byte
	Escape    byte
	Newline   string
	UseQuotes bool

	// Arrow
	Batch  int
	Stream bool
	Clear  bool

	// Parquet
	Compression string
}

// DefaultOptions returns the spec-documented defaults shared by the text
// serializers.
func DefaultOptions() Options {
	return Options{
		Header:  true,
		Charset: "UTF-8",
		Delim:   ',',
		Quote:   '"',
		Escape:  '"',
		Newline: "\n",
	}
}

// Serializer is the shared contract of spec §4.9: "every serializer
// implements {serialize(Result, Writer/OutputStream), deserialize?}".
// Deserialize is optional — spec.md §1 explicitly excludes a write-path for
// Arrow/Parquet deserialization, so only some formats implement it.
type Serializer interface {
	// Name is the format's registry key (spec.md §6 "outputFormat").
	Name() string
	// Serialize streams result's rows (or scalar payload) to w per opts.
	Serialize(w io.Writer, result *value.Result, opts Options) error
}

// Deserializer is the optional read-path a Serializer may also implement.
type Deserializer interface {
	Deserialize(r io.Reader, opts Options) (*value.Result, error)
}

// Registry maps format names (spec.md §6 "outputFormat") to Serializers.
type Registry struct {
	m map[string]Serializer
}

// NewRegistry builds a Registry pre-populated with every built-in
// serializer (spec §4.9).
func NewRegistry() *Registry {
	r := &Registry{m: make(map[string]Serializer)}
	for _, s := range []Serializer{
		TSV{}, CSV{}, Markdown{}, JSONSeq{}, Values{}, Binary{}, Arrow{}, Parquet{},
	} {
		r.m[s.Name()] = s
	}
	return r
}

// Get looks up a Serializer by format name.
func (r *Registry) Get(name string) (Serializer, bool) {
	s, ok := r.m[name]
	return s, ok
}

// collectRows drains result into rows, applying cell.AsString() or
// cell.JSON()/SQL() is left to each format-specific writer; this only
// shares the drain-the-iterator step.
func collectRows(result *value.Result) ([]value.Field, []value.Row, error) {
	if result == nil {
		return nil, nil, nil
	}
	rows, err := result.Collect()
	if err != nil {
		return result.Fields(), rows, err
	}
	return result.Fields(), rows, nil
}

func nullOr(opts Options, s string, isNull bool) string {
	if isNull {
		return opts.NullValue
	}
	return s
}

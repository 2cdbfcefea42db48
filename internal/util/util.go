// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package util collects the small cross-cutting helpers of spec §2
// component K: filename-based format/compression inference, escape helpers
// shared by more than one package, and day/nanosecond timestamp
// conversions. Grounded
// on csvdump.go's "-compress gz/zst" switch and its ".xlsx"-suffix writer
// selection, generalized from CLI flags to filename sniffing.
package util

import (
	"compress/flate"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is one of the codecs the serialize and bridge packages
// negotiate via the "compression"/"x-compression" options (spec §4.9,
// §4.7).
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// InferCompression guesses a Compression from a file name's extension, the
// way csvdump.go's "-compress" flag switches on a two-letter prefix
// ("gz"/"zs"), generalized to sniffing ".gz"/".zst" suffixes instead of an
// explicit flag.
func InferCompression(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// InferFormat guesses a serializer format name from a file name's
// extension, trimming any compression suffix first (csvdump.go's
// ".xlsx"-suffix writer-selection idiom, generalized to the spec §4.9
// format set).
func InferFormat(name string) string {
	base := name
	if c := InferCompression(base); c != CompressionNone {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tsv":
		return "tsv"
	case ".csv":
		return "csv"
	case ".md", ".markdown":
		return "markdown"
	case ".jsonl", ".jsons":
		return "json-seq"
	case ".sql":
		return "values"
	case ".arrow":
		return "arrow"
	case ".parquet":
		return "parquet"
	default:
		return "csv"
	}
}

// NewCompressWriter wraps w with the given Compression's writer, the way
// csvdump.go picks between gzip.NewWriter and zstd.NewWriter.
func NewCompressWriter(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		if level == 0 {
			level = flate.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case CompressionZstd:
		return zstd.NewWriter(w)
	default:
		return nopWriteCloser{w}, nil
	}
}

// NewDecompressReader wraps r with the given Compression's reader.
func NewDecompressReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

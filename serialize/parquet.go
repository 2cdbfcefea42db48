// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"io"
	"strings"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Parquet is the columnar file serializer of spec §4.9 "Parquet": an
// Arrow-bridge schema, compression codec taken from the `compression`
// option (default uncompressed).
type Parquet struct{}

func (Parquet) Name() string { return "parquet" }

func (Parquet) Serialize(w io.Writer, result *value.Result, opts Options) error {
	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	schema := arrowSchema(fields)

	props := parquet.NewWriterProperties(parquet.WithCompression(parquetCodec(opts.Compression)))
	fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return err
	}

	mem := memory.NewGoAllocator()
	bld := array.NewRecordBuilder(mem, schema)
	defer bld.Release()

	batch := opts.Batch
	if batch <= 0 {
		batch = len(rows)
		if batch == 0 {
			batch = 1
		}
	}

	flush := func() error {
		rec := bld.NewRecord()
		defer rec.Release()
		if err := fw.Write(rec); err != nil {
			return err
		}
		if opts.Clear {
			bld.Release()
			bld = array.NewRecordBuilder(mem, schema)
		}
		return nil
	}

	for i, row := range rows {
		for c, f := range fields {
			cell, _ := row.At(c)
			if err := appendArrowValue(bld.Field(c), f, cell); err != nil {
				return err
			}
		}
		if (i+1)%batch == 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if len(rows)%batch != 0 || len(rows) == 0 {
		if err := flush(); err != nil {
			return err
		}
	}
	return fw.Close()
}

func parquetCodec(name string) compress.Compression {
	switch strings.ToLower(name) {
	case "snappy":
		return compress.Codecs.Snappy
	case "gzip":
		return compress.Codecs.Gzip
	case "zstd":
		return compress.Codecs.Zstd
	case "brotli":
		return compress.Codecs.Brotli
	case "lz4":
		return compress.Codecs.Lz4Raw
	default:
		return compress.Codecs.Uncompressed
	}
}

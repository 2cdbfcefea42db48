// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/decimal128"
	"github.com/apache/arrow/go/v14/arrow/decimal256"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Arrow is the columnar serializer of spec §4.9 "Arrow": builds a schema by
// mapping each Field's SQL type to an Arrow type, writes in batches of
// `batch` rows, and chooses stream or file IPC by the `stream` option. With
// clear=true, buffers are reallocated between batches instead of reused.
type Arrow struct{}

func (Arrow) Name() string { return "arrow" }

func (Arrow) Serialize(w io.Writer, result *value.Result, opts Options) error {
	fields, rows, err := collectRows(result)
	if err != nil {
		return err
	}
	schema := arrowSchema(fields)

	var writer interface {
		Write(arrow.Record) error
		Close() error
	}
	if opts.Stream {
		writer = ipc.NewWriter(w, ipc.WithSchema(schema))
	} else {
		fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema))
		if err != nil {
			return err
		}
		writer = fw
	}

	batch := opts.Batch
	if batch <= 0 {
		batch = len(rows)
		if batch == 0 {
			batch = 1
		}
	}

	mem := memory.NewGoAllocator()
	bld := array.NewRecordBuilder(mem, schema)
	defer bld.Release()

	flush := func() error {
		rec := bld.NewRecord()
		defer rec.Release()
		if err := writer.Write(rec); err != nil {
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
	if bld.Field(0) != nil && bld.Field(0).Len() > 0 {
		if err := flush(); err != nil {
			return err
		}
	}
	return writer.Close()
}

func arrowSchema(fields []value.Field) *arrow.Schema {
	afs := make([]arrow.Field, len(fields))
	for i, f := range fields {
		afs[i] = arrow.Field{Name: f.Name(), Type: arrowType(f), Nullable: f.Nullable()}
	}
	return arrow.NewSchema(afs, nil)
}

func arrowType(f value.Field) arrow.DataType {
	switch f.Kind() {
	case value.KindBool:
		return arrow.FixedWidthTypes.Boolean
	case value.KindInt8:
		return arrow.PrimitiveTypes.Int8
	case value.KindInt16:
		return arrow.PrimitiveTypes.Int16
	case value.KindInt32:
		return arrow.PrimitiveTypes.Int32
	case value.KindInt64:
		return arrow.PrimitiveTypes.Int64
	case value.KindUint8:
		return arrow.PrimitiveTypes.Uint8
	case value.KindUint16:
		return arrow.PrimitiveTypes.Uint16
	case value.KindUint32:
		return arrow.PrimitiveTypes.Uint32
	case value.KindUint64:
		return arrow.PrimitiveTypes.Uint64
	case value.KindFloat32:
		return arrow.PrimitiveTypes.Float32
	case value.KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case value.KindDecimal:
		if f.Precision() > 38 {
			return &arrow.Decimal256Type{Precision: int32(f.Precision()), Scale: int32(f.Scale())}
		}
		p := f.Precision()
		if p == 0 {
			p = 38
		}
		return &arrow.Decimal128Type{Precision: int32(p), Scale: int32(f.Scale())}
	case value.KindDate:
		return arrow.FixedWidthTypes.Date32
	case value.KindTime:
		return arrowTimeType(f.Scale())
	case value.KindDateTime:
		return &arrow.TimestampType{Unit: arrowTimeUnit(f.Scale())}
	case value.KindBinary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

func arrowTimeUnit(scale int) arrow.TimeUnit {
	switch {
	case scale <= 0:
		return arrow.Second
	case scale <= 3:
		return arrow.Millisecond
	case scale <= 6:
		return arrow.Microsecond
	default:
		return arrow.Nanosecond
	}
}

func arrowTimeType(scale int) arrow.DataType {
	switch arrowTimeUnit(scale) {
	case arrow.Second:
		return arrow.FixedWidthTypes.Time32s
	case arrow.Millisecond:
		return arrow.FixedWidthTypes.Time32ms
	case arrow.Microsecond:
		return arrow.FixedWidthTypes.Time64us
	default:
		return arrow.FixedWidthTypes.Time64ns
	}
}

func appendArrowValue(b array.Builder, f value.Field, cell value.Value) error {
	if cell.IsNull() {
		b.AppendNull()
		return nil
	}
	switch bld := b.(type) {
	case *array.BooleanBuilder:
		v, err := cell.AsBool()
		if err != nil {
			return err
		}
		bld.Append(v)
	case *array.Int8Builder:
		v, err := cell.AsInt(8)
		if err != nil {
			return err
		}
		bld.Append(int8(v))
	case *array.Int16Builder:
		v, err := cell.AsInt(16)
		if err != nil {
			return err
		}
		bld.Append(int16(v))
	case *array.Int32Builder:
		v, err := cell.AsInt(32)
		if err != nil {
			return err
		}
		bld.Append(int32(v))
	case *array.Int64Builder:
		v, err := cell.AsInt(64)
		if err != nil {
			return err
		}
		bld.Append(v)
	case *array.Uint8Builder:
		v, err := cell.AsUint(8)
		if err != nil {
			return err
		}
		bld.Append(uint8(v))
	case *array.Uint16Builder:
		v, err := cell.AsUint(16)
		if err != nil {
			return err
		}
		bld.Append(uint16(v))
	case *array.Uint32Builder:
		v, err := cell.AsUint(32)
		if err != nil {
			return err
		}
		bld.Append(uint32(v))
	case *array.Uint64Builder:
		v, err := cell.AsUint(64)
		if err != nil {
			return err
		}
		bld.Append(v)
	case *array.Float32Builder:
		v, err := cell.AsFloat64()
		if err != nil {
			return err
		}
		bld.Append(float32(v))
	case *array.Float64Builder:
		v, err := cell.AsFloat64()
		if err != nil {
			return err
		}
		bld.Append(v)
	case *array.Decimal128Builder:
		unscaled, _, err := cell.AsDecimal()
		if err != nil {
			return err
		}
		d, err := decimal128.FromBigInt(unscaled)
		if err != nil {
			return err
		}
		bld.Append(d)
	case *array.Decimal256Builder:
		unscaled, _, err := cell.AsDecimal()
		if err != nil {
			return err
		}
		d, err := decimal256.FromBigInt(unscaled)
		if err != nil {
			return err
		}
		bld.Append(d)
	case *array.Date32Builder:
		days, err := cell.AsDate()
		if err != nil {
			return err
		}
		bld.Append(arrow.Date32(days))
	case *array.Time32Builder:
		nanos, _, err := cell.AsTime()
		if err != nil {
			return err
		}
		bld.Append(arrow.Time32(toTimeUnit(nanos, arrowTimeUnit(f.Scale()))))
	case *array.Time64Builder:
		nanos, _, err := cell.AsTime()
		if err != nil {
			return err
		}
		bld.Append(arrow.Time64(toTimeUnit(nanos, arrowTimeUnit(f.Scale()))))
	case *array.TimestampBuilder:
		t, err := cell.AsDateTime()
		if err != nil {
			return err
		}
		bld.Append(arrow.Timestamp(toTimeUnit(t.UnixNano(), arrowTimeUnit(f.Scale()))))
	case *array.BinaryBuilder:
		b, err := cell.AsBytes()
		if err != nil {
			return err
		}
		bld.Append(b)
	case *array.StringBuilder:
		s, err := cell.AsString()
		if err != nil {
			return err
		}
		bld.Append(s)
	default:
		return fmt.Errorf("serialize: unsupported Arrow builder %T", b)
	}
	return nil
}

func toTimeUnit(nanos int64, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return nanos / 1e9
	case arrow.Millisecond:
		return nanos / 1e6
	case arrow.Microsecond:
		return nanos / 1e3
	default:
		return nanos
	}
}

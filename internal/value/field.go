// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package value implements the typed cell, row, and result model consumed
// by extensions and serialized for downstream output (spec §3).
package value

import "strings"

// Kind is the closed set of Value variants (spec §3 "Value").
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindDate
	KindTime
	KindDateTime
	KindBinary
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt8:
		return "INT8"
	case KindInt16:
		return "INT16"
	case KindInt32:
		return "INT32"
	case KindInt64:
		return "INT64"
	case KindUint8:
		return "UINT8"
	case KindUint16:
		return "UINT16"
	case KindUint32:
		return "UINT32"
	case KindUint64:
		return "UINT64"
	case KindFloat32:
		return "FLOAT32"
	case KindFloat64:
		return "FLOAT64"
	case KindDecimal:
		return "DECIMAL"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindBinary:
		return "BINARY"
	case KindString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// IsSigned reports whether Kind is one of the signed integer variants.
func (k Kind) IsSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// IsUnsigned reports whether Kind is one of the unsigned integer variants.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

// BitSize returns the storage width, in bits, of an integer or float Kind.
func (k Kind) BitSize() uint8 {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	default:
		return 0
	}
}

// Field describes one column: name, declared SQL type, precision/scale,
// signedness and nullability. Immutable once constructed; equality by name
// (case-insensitively) plus type (spec §3 "Field").
type Field struct {
	name      string
	kind      Kind
	precision int
	scale     int
	signed    bool
	nullable  bool
}

// NewField builds a Field. signed is only meaningful for Kind-Decimal-ish
// callers that want to note the declared SQL signedness independently of
// the Go-level Kind (e.g. a DECIMAL column is always "signed" in SQL terms
// regardless of storage).
func NewField(name string, kind Kind, precision, scale int, signed, nullable bool) Field {
	return Field{name: name, kind: kind, precision: precision, scale: scale, signed: signed, nullable: nullable}
}

func (f Field) Name() string      { return f.name }
func (f Field) Kind() Kind        { return f.kind }
func (f Field) Precision() int    { return f.precision }
func (f Field) Scale() int        { return f.scale }
func (f Field) Signed() bool      { return f.signed }
func (f Field) Nullable() bool    { return f.nullable }
func (f Field) WithName(n string) Field {
	f.name = n
	return f
}

// Equal implements the "equality by name + type" invariant of spec §3.
func (f Field) Equal(o Field) bool {
	return strings.EqualFold(f.name, o.name) && f.kind == o.kind &&
		f.precision == o.precision && f.scale == o.scale
}

// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"math/big"
	"time"

	"golang.org/x/text/encoding"
)

// Rounding is the rounding strategy applied when a Decimal is rescaled.
type Rounding int

const (
	RoundHalfUp Rounding = iota
	RoundHalfEven
	RoundDown
	RoundUp
	RoundCeiling
	RoundFloor
)

// Factory seeds every Value it constructs with process-wide defaults, the
// way dbcsv's Config seeds a default date/time format and charset (read.go's
// DefaultEncoding, DateFormat) — generalized here to the full Value variant
// set (spec §3 "Lifecycle").
type Factory struct {
	DefaultDate         time.Time
	DefaultDecimalScale int
	DefaultCharset      encoding.Encoding
	DefaultRounding     Rounding
	Location            *time.Location
}

// NewFactory returns a Factory with sane zero-value defaults: epoch date,
// scale 0, UTF-8 passthrough charset (nil means "no transform"), half-up
// rounding, and UTC location.
func NewFactory() *Factory {
	return &Factory{
		DefaultDate:         time.Unix(0, 0).UTC(),
		DefaultDecimalScale: 0,
		DefaultCharset:      nil,
		DefaultRounding:     RoundHalfUp,
		Location:            time.UTC,
	}
}

func (f *Factory) loc() *time.Location {
	if f == nil || f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Null returns a null Value of the given Kind.
func (f *Factory) Null(kind Kind) Value {
	return Value{f: f, kind: kind, isNull: true}
}

func (f *Factory) Bool(b bool) Value {
	v := uint64(0)
	if b {
		v = 1
	}
	return Value{f: f, kind: KindBool, uintVal: v}
}

// Int constructs a signed integer Value at the given bit width (8/16/32/64),
// sign-extending val to 64 bits for canonical storage.
func (f *Factory) Int(bitSize uint8, val int64) Value {
	kind := kindForInt(bitSize)
	return Value{f: f, kind: kind, intVal: signExtend(uint64(val), bitSize)}
}

// Uint constructs an unsigned integer Value, masking val to the given bit
// width (spec §3 "wrap-around semantics preserved for narrowing").
func (f *Factory) Uint(bitSize uint8, val uint64) Value {
	kind := kindForUint(bitSize)
	return Value{f: f, kind: kind, uintVal: maskUint(val, bitSize)}
}

func (f *Factory) Float32(v float32) Value {
	return Value{f: f, kind: KindFloat32, floatVal: float64(v)}
}

func (f *Factory) Float64(v float64) Value {
	return Value{f: f, kind: KindFloat64, floatVal: v}
}

// Decimal constructs a Value holding unscaled*10^-scale.
func (f *Factory) Decimal(unscaled *big.Int, scale int) Value {
	u := new(big.Int)
	if unscaled != nil {
		u.Set(unscaled)
	}
	return Value{f: f, kind: KindDecimal, decUnscaled: u, decScale: scale}
}

// Date constructs a Value from days-since-epoch.
func (f *Factory) Date(daysSinceEpoch int64) Value {
	return Value{f: f, kind: KindDate, intVal: daysSinceEpoch}
}

// DateFromTime truncates t to a calendar day and stores days-since-epoch.
func (f *Factory) DateFromTime(t time.Time) Value {
	t = t.In(f.loc())
	days := t.Unix() / 86400
	if t.Unix() < 0 && t.Unix()%86400 != 0 {
		days--
	}
	return f.Date(days)
}

// Time constructs a Value from nanoseconds-of-day at the given scale
// (number of fractional-second digits retained).
func (f *Factory) Time(nanosOfDay int64, scale int) Value {
	return Value{f: f, kind: KindTime, intVal: truncateNanos(nanosOfDay, scale), decScale: scale}
}

// DateTime constructs a timestamp Value from an absolute instant, truncated
// (not rounded) to scale fractional-second digits.
func (f *Factory) DateTime(t time.Time, scale int, hasOffset bool) Value {
	t = truncateTime(t, scale)
	return Value{f: f, kind: KindDateTime, dtInstant: t, decScale: scale, dtHasOffset: hasOffset}
}

// Binary constructs a Value from an in-memory byte slice.
func (f *Factory) Binary(b []byte) Value {
	return Value{f: f, kind: KindBinary, binBytes: b}
}

// BinaryStream constructs a Value lazily backed by r; materializing the
// bytes (AsBytes(), AsString(), SQL(), JSON()) reads r exactly once.
func (f *Factory) BinaryStream(r ReadCloser) Value {
	return Value{f: f, kind: KindBinary, binStream: r}
}

// String constructs a variable-length UTF-8 string Value.
func (f *Factory) String(s string) Value {
	return Value{f: f, kind: KindString, strVal: s, strFixedLen: -1}
}

// FixedString constructs a fixed-length string Value; s is padded with NUL
// on render if shorter than length.
func (f *Factory) FixedString(s string, length int) Value {
	return Value{f: f, kind: KindString, strVal: s, strFixedLen: length}
}

func kindForInt(bitSize uint8) Kind {
	switch bitSize {
	case 8:
		return KindInt8
	case 16:
		return KindInt16
	case 32:
		return KindInt32
	default:
		return KindInt64
	}
}

func kindForUint(bitSize uint8) Kind {
	switch bitSize {
	case 8:
		return KindUint8
	case 16:
		return KindUint16
	case 32:
		return KindUint32
	default:
		return KindUint64
	}
}

func maskUint(v uint64, bitSize uint8) uint64 {
	if bitSize == 0 || bitSize >= 64 {
		return v
	}
	m := uint64(1)<<bitSize - 1
	return v & m
}

// signExtend treats v as a bitSize-wide two's-complement pattern and
// sign-extends it to a full int64.
func signExtend(v uint64, bitSize uint8) int64 {
	if bitSize == 0 || bitSize >= 64 {
		return int64(v)
	}
	m := uint64(1) << bitSize
	v &= m - 1
	if v&(m>>1) != 0 {
		v |= ^(m - 1)
	}
	return int64(v)
}

func truncateNanos(nanos int64, scale int) int64 {
	if scale >= 9 {
		return nanos
	}
	div := int64(1)
	for i := 0; i < 9-scale; i++ {
		div *= 10
	}
	return (nanos / div) * div
}

func truncateTime(t time.Time, scale int) time.Time {
	if scale >= 9 {
		return t
	}
	div := int64(1)
	for i := 0; i < 9-scale; i++ {
		div *= 10
	}
	ns := t.Nanosecond()
	truncated := (int64(ns) / div) * div
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), int(truncated), t.Location())
}

// ReadCloser is the minimal lazy-stream contract accepted by BinaryStream.
type ReadCloser interface {
	Read(p []byte) (n int, err error)
	Close() error
}

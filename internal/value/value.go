// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Value is a tagged union over the variants named in spec §3: Null, Bool,
// Int8..64, Uint8..64, F32/F64, Decimal, Date, Time, DateTime, Binary,
// String. It is read-only after construction except through Set, which
// overwrites the cell in place and returns the same pointer (spec §3
// "Lifecycle").
type Value struct {
	f      *Factory
	kind   Kind
	isNull bool

	// ints/bools/dates/times share intVal/uintVal as canonical 64-bit
	// two's-complement / zero-extended storage.
	intVal  int64
	uintVal uint64

	floatVal float64

	decUnscaled *big.Int
	decScale    int

	dtInstant   time.Time
	dtHasOffset bool

	binBytes  []byte
	binStream ReadCloser

	strVal      string
	strFixedLen int // -1 = variable length
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.isNull }
func (v Value) Factory() *Factory {
	if v.f == nil {
		return NewFactory()
	}
	return v.f
}

// Set overwrites v's content with other's, preserving v's identity (same
// pointer) — the one mutation path spec §3 allows after construction.
func (v *Value) Set(other Value) *Value {
	*v = other
	return v
}

func (v Value) factory() *Factory {
	if v.f == nil {
		return NewFactory()
	}
	return v.f
}

// rawBits returns the 64-bit two's-complement/zero-extended bit pattern
// backing the current numeric value, used by AsInt/AsUint to implement the
// wrap-and-reinterpret coercions spec §8 pins down by example.
func (v Value) rawBits() uint64 {
	switch {
	case v.kind.IsUnsigned() || v.kind == KindBool:
		return v.uintVal
	case v.kind.IsSigned() || v.kind == KindDate || v.kind == KindTime:
		return uint64(v.intVal)
	case v.kind == KindFloat32, v.kind == KindFloat64:
		return uint64(int64(v.floatVal))
	case v.kind == KindDecimal:
		if v.decUnscaled == nil {
			return 0
		}
		scaled := scaleDown(v.decUnscaled, v.decScale)
		return uint64(scaled.Int64())
	default:
		return 0
	}
}

func scaleDown(unscaled *big.Int, scale int) *big.Int {
	if scale <= 0 {
		return unscaled
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	q := new(big.Int).Quo(unscaled, div)
	return q
}

// AsInt coerces v to a signed integer at the given bit width, narrowing
// with wrap-around truncation or widening by sign-extension.
func (v Value) AsInt(bitSize uint8) (int64, error) {
	if v.isNull {
		return 0, nil
	}
	switch v.kind {
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		if err != nil {
			return 0, err
		}
		return signExtend(uint64(n), bitSize), nil
	case KindFloat32, KindFloat64:
		return signExtend(uint64(int64(v.floatVal)), bitSize), nil
	default:
		return signExtend(v.rawBits(), bitSize), nil
	}
}

// AsUint coerces v to an unsigned integer at the given bit width. Its
// string rendering (via AsString on a Uint-kinded Value) is always
// non-negative (spec §8 property 3).
func (v Value) AsUint(bitSize uint8) (uint64, error) {
	if v.isNull {
		return 0, nil
	}
	switch v.kind {
	case KindString:
		n, err := strconv.ParseUint(strings.TrimSpace(v.strVal), 10, 64)
		if err != nil {
			return 0, err
		}
		return maskUint(n, bitSize), nil
	case KindFloat32, KindFloat64:
		return maskUint(uint64(int64(v.floatVal)), bitSize), nil
	default:
		return maskUint(v.rawBits(), bitSize), nil
	}
}

func (v Value) AsInt64() (int64, error)   { return v.AsInt(64) }
func (v Value) AsUint64() (uint64, error) { return v.AsUint(64) }

func (v Value) AsBool() (bool, error) {
	if v.isNull {
		return false, nil
	}
	switch v.kind {
	case KindBool:
		return v.uintVal != 0, nil
	case KindString:
		return strconv.ParseBool(v.strVal)
	default:
		return v.rawBits() != 0, nil
	}
}

func (v Value) AsFloat64() (float64, error) {
	if v.isNull {
		return 0, nil
	}
	switch v.kind {
	case KindFloat32, KindFloat64:
		return v.floatVal, nil
	case KindString:
		return strconv.ParseFloat(strings.TrimSpace(v.strVal), 64)
	case KindDecimal:
		f, _ := v.decimalBigFloat().Float64()
		return f, nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return float64(v.uintVal), nil
	default:
		i, err := v.AsInt64()
		return float64(i), err
	}
}

func (v Value) decimalBigFloat() *big.Float {
	if v.decUnscaled == nil {
		return new(big.Float)
	}
	f := new(big.Float).SetInt(v.decUnscaled)
	if v.decScale > 0 {
		div := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(v.decScale)), nil))
		f.Quo(f, div)
	}
	return f
}

// AsDecimal returns the unscaled big.Int and scale.
func (v Value) AsDecimal() (*big.Int, int, error) {
	if v.isNull {
		scale := v.factory().DefaultDecimalScale
		return big.NewInt(0), scale, nil
	}
	switch v.kind {
	case KindDecimal:
		return new(big.Int).Set(v.decUnscaled), v.decScale, nil
	case KindString:
		return parseDecimalString(v.strVal)
	default:
		i, err := v.AsInt64()
		return big.NewInt(i), 0, err
	}
}

func parseDecimalString(s string) (*big.Int, int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	dot := strings.IndexByte(s, '.')
	scale := 0
	digits := s
	if dot >= 0 {
		scale = len(s) - dot - 1
		digits = s[:dot] + s[dot+1:]
	}
	if digits == "" {
		digits = "0"
	}
	u, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, 0, fmt.Errorf("invalid decimal %q", s)
	}
	if neg {
		u.Neg(u)
	}
	return u, scale, nil
}

// AsDate returns days-since-epoch.
func (v Value) AsDate() (int64, error) {
	if v.isNull {
		return v.factory().DateFromTime(v.factory().DefaultDate).intVal, nil
	}
	switch v.kind {
	case KindDate:
		return v.intVal, nil
	case KindDateTime:
		return v.factory().DateFromTime(v.dtInstant).intVal, nil
	case KindString:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(v.strVal))
		if err != nil {
			return 0, err
		}
		return v.factory().DateFromTime(t).intVal, nil
	default:
		return 0, fmt.Errorf("cannot coerce %s to DATE", v.kind)
	}
}

// AsTime returns nanos-of-day and scale.
func (v Value) AsTime() (int64, int, error) {
	if v.isNull {
		return 0, 0, nil
	}
	switch v.kind {
	case KindTime:
		return v.intVal, v.decScale, nil
	case KindDateTime:
		t := v.dtInstant
		nanos := int64(t.Hour())*3600e9 + int64(t.Minute())*60e9 + int64(t.Second())*1e9 + int64(t.Nanosecond())
		return nanos, v.decScale, nil
	case KindString:
		t, err := time.Parse("15:04:05.999999999", strings.TrimSpace(v.strVal))
		if err != nil {
			return 0, 0, err
		}
		nanos := int64(t.Hour())*3600e9 + int64(t.Minute())*60e9 + int64(t.Second())*1e9 + int64(t.Nanosecond())
		return nanos, 9, nil
	default:
		return 0, 0, fmt.Errorf("cannot coerce %s to TIME", v.kind)
	}
}

// AsDateTime returns the instant.
func (v Value) AsDateTime() (time.Time, error) {
	if v.isNull {
		return v.factory().DefaultDate, nil
	}
	switch v.kind {
	case KindDateTime:
		return v.dtInstant, nil
	case KindDate:
		return time.Unix(v.intVal*86400, 0).In(v.factory().loc()), nil
	case KindString:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05.999999999", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(v.strVal)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as DATETIME", v.strVal)
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %s to DATETIME", v.kind)
	}
}

// AsBytes materializes the binary payload, draining and closing any lazy
// stream exactly once.
func (v *Value) AsBytes() ([]byte, error) {
	if v.isNull {
		return nil, nil
	}
	if v.kind != KindBinary {
		s, err := v.AsString()
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	if v.binStream != nil {
		b, err := io.ReadAll(v.binStream)
		cerr := v.binStream.Close()
		v.binStream = nil
		if err != nil {
			return nil, err
		}
		if cerr != nil {
			return nil, cerr
		}
		v.binBytes = b
	}
	return v.binBytes, nil
}

// AsString renders v as text, honoring Uint non-negativity, Decimal scale,
// and charset-decoded Binary per spec §3.
func (v *Value) AsString() (string, error) {
	if v.isNull {
		return "", nil
	}
	switch v.kind {
	case KindString:
		s := v.strVal
		if v.strFixedLen >= 0 && len(s) < v.strFixedLen {
			s += strings.Repeat("\x00", v.strFixedLen-len(s))
		}
		return s, nil
	case KindBool:
		return strconv.FormatBool(v.uintVal != 0), nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.intVal, 10), nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.uintVal, 10), nil
	case KindFloat32:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 32), nil
	case KindFloat64:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64), nil
	case KindDecimal:
		return formatDecimal(v.decUnscaled, v.decScale), nil
	case KindDate:
		t := time.Unix(v.intVal*86400, 0).UTC()
		return t.Format("2006-01-02"), nil
	case KindTime:
		return formatNanosOfDay(v.intVal, v.decScale), nil
	case KindDateTime:
		return formatDateTime(v.dtInstant, v.decScale), nil
	case KindBinary:
		b, err := v.AsBytes()
		if err != nil {
			return "", err
		}
		enc := v.factory().DefaultCharset
		if enc == nil {
			return string(b), nil
		}
		s, err := enc.NewDecoder().String(string(b))
		return s, err
	default:
		return "", fmt.Errorf("cannot coerce %s to STRING", v.kind)
	}
}

func formatDecimal(unscaled *big.Int, scale int) string {
	if unscaled == nil {
		unscaled = big.NewInt(0)
	}
	neg := unscaled.Sign() < 0
	abs := new(big.Int).Abs(unscaled)
	s := abs.String()
	if scale <= 0 {
		if neg {
			return "-" + s
		}
		return s
	}
	for len(s) <= scale {
		s = "0" + s
	}
	intPart, fracPart := s[:len(s)-scale], s[len(s)-scale:]
	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

func formatNanosOfDay(nanos int64, scale int) string {
	h := nanos / 3600e9
	m := (nanos / 60e9) % 60
	s := (nanos / 1e9) % 60
	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if scale > 0 {
		frac := nanos % 1e9
		digits := fmt.Sprintf("%09d", frac)[:scale]
		if strings.Trim(digits, "0") != "" {
			out += "." + digits
		}
	}
	return out
}

func formatDateTime(t time.Time, scale int) string {
	out := t.Format("2006-01-02 15:04:05")
	if scale > 0 {
		frac := t.Nanosecond()
		if frac != 0 {
			digits := fmt.Sprintf("%09d", frac)[:scale]
			out += "." + digits
		}
	}
	return out
}

// SQL renders v as a SQL literal expression (spec §4.9 VALUES serializer,
// §3 binary coercions).
func (v *Value) SQL() (string, error) {
	if v.isNull {
		return "NULL", nil
	}
	switch v.kind {
	case KindBool:
		if v.uintVal != 0 {
			return "TRUE", nil
		}
		return "FALSE", nil
	case KindBinary:
		b, err := v.AsBytes()
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		sb.WriteByte('\'')
		for _, c := range b {
			fmt.Fprintf(&sb, "%02X", c)
		}
		sb.WriteByte('\'')
		return sb.String(), nil
	case KindString:
		s, err := v.AsString()
		if err != nil {
			return "", err
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
	case KindDate, KindTime, KindDateTime:
		s, err := v.AsString()
		if err != nil {
			return "", err
		}
		return "'" + s + "'", nil
	default:
		return v.AsString()
	}
}

// JSON renders v as a JSON expression (spec §4.9 JSON-sequence serializer).
func (v *Value) JSON() (string, error) {
	if v.isNull {
		return "null", nil
	}
	switch v.kind {
	case KindBool:
		if v.uintVal != 0 {
			return "true", nil
		}
		return "false", nil
	case KindBinary:
		b, err := v.AsBytes()
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		sb.WriteByte('[')
		for i, c := range b {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", c)
		}
		sb.WriteByte(']')
		return sb.String(), nil
	case KindString, KindDate, KindTime, KindDateTime:
		s, err := v.AsString()
		if err != nil {
			return "", err
		}
		return strconv.Quote(s), nil
	default:
		return v.AsString()
	}
}

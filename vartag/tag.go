// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package vartag implements the bracket-family sub-language of spec §4.4:
// three closed variants (BRACE, ANGLE, SQUARE), each a 5-tuple of
// (left, right, procedure, variable, escape) punctuation characters.
package vartag

import "fmt"

// Family names one of the three supported bracket families.
type Family int

const (
	BRACE Family = iota
	ANGLE
	SQUARE
)

func (f Family) String() string {
	switch f {
	case BRACE:
		return "BRACE"
	case ANGLE:
		return "ANGLE"
	case SQUARE:
		return "SQUARE"
	default:
		return "UNKNOWN"
	}
}

// Tag is the resolved punctuation set for a Family: left_char, right_char,
// procedure_char, variable_char, escape_char (spec §4.4).
type Tag struct {
	family    Family
	left      byte
	right     byte
	procedure byte
	variable  byte
	escape    byte
}

var tags = map[Family]Tag{
	BRACE:  {family: BRACE, left: '{', right: '}', procedure: '%', variable: '$', escape: '\\'},
	ANGLE:  {family: ANGLE, left: '<', right: '>', procedure: '%', variable: '$', escape: '\\'},
	SQUARE: {family: SQUARE, left: '[', right: ']', procedure: '%', variable: '$', escape: '\\'},
}

// For returns the Tag for the given Family. It panics on an unknown Family,
// since Family is a closed set controlled entirely by this package.
func For(f Family) Tag {
	t, ok := tags[f]
	if !ok {
		panic(fmt.Sprintf("vartag: unknown family %d", f))
	}
	return t
}

// Default is the default family used when a caller doesn't specify one
// (spec §4.1 "default BRACE").
var Default = BRACE

func (t Tag) Family() Family       { return t.family }
func (t Tag) LeftChar() byte       { return t.left }
func (t Tag) RightChar() byte      { return t.right }
func (t Tag) ProcedureChar() byte  { return t.procedure }
func (t Tag) VariableChar() byte   { return t.variable }
func (t Tag) EscapeChar() byte     { return t.escape }

// FunctionOpen is the two-byte left delimiter of a function block: "LL".
func (t Tag) FunctionOpen() string { return string([]byte{t.left, t.left}) }

// FunctionClose is the two-byte right delimiter of a function block: "RR".
func (t Tag) FunctionClose() string { return string([]byte{t.right, t.right}) }

// ProcedureOpen is the two-byte left delimiter of a procedure block: "LP".
func (t Tag) ProcedureOpen() string { return string([]byte{t.left, t.procedure}) }

// ProcedureClose is the two-byte right delimiter of a procedure block: "PR".
func (t Tag) ProcedureClose() string { return string([]byte{t.procedure, t.right}) }

// Function wraps content as a full function block: "LL content RR".
func (t Tag) Function(content string) string {
	return t.FunctionOpen() + content + t.FunctionClose()
}

// Procedure wraps content as a full procedure block: "LP content PR".
func (t Tag) Procedure(content string) string {
	return t.ProcedureOpen() + content + t.ProcedureClose()
}

// Variable builds a variable reference "VL name R" for the given name.
func (t Tag) Variable(name string) string {
	return string(t.variable) + string(t.left) + name + string(t.right)
}

// IsValidForEscape reports whether c may follow the escape char: any byte
// except the left, right, or procedure delimiter (spec §4.1 "Escape").
func (t Tag) IsValidForEscape(c byte) bool {
	return c != t.left && c != t.right && c != t.procedure
}

// Invariant verifies escape_char ∉ {L,R,P} (spec §4.4 "Invariant").
func (t Tag) Invariant() bool {
	return t.escape != t.left && t.escape != t.right && t.escape != t.procedure
}

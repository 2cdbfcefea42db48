// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package serialize

import (
	"io"

	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// Binary is the payload-passthrough serializer of spec §4.9 "Binary":
// passes through a single payload; zero-field or null payload writes
// nothing. A string payload is written as its UTF-8 bytes: opts.Charset is
// not applied.
//
// Open Question (a): a zero-field or null scalar is treated as "nothing to
// write", not an error — mirroring the way Value.AsBytes returns (nil, nil)
// for a null Value rather than failing.
type Binary struct{}

func (Binary) Name() string { return "binary" }

func (Binary) Serialize(w io.Writer, result *value.Result, opts Options) error {
	if result == nil {
		return nil
	}
	if payload, ok := result.Scalar(); ok {
		return writeBinaryPayload(w, payload)
	}
	rows, err := result.Collect()
	if err != nil {
		return err
	}
	if len(result.Fields()) == 0 || len(rows) == 0 {
		return nil
	}
	cell, _ := rows[0].At(0)
	if cell.IsNull() {
		return nil
	}
	b, err := cell.AsBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writeBinaryPayload(w io.Writer, payload any) error {
	switch p := payload.(type) {
	case nil:
		return nil
	case []byte:
		_, err := w.Write(p)
		return err
	case string:
		_, err := io.WriteString(w, p)
		return err
	case io.Reader:
		_, err := io.Copy(w, p)
		return err
	default:
		return nil
	}
}

// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import (
	"github.com/nuclio/errors"
)

// BitReader supplies a bit stream one bit at a time. ReadBit returns io.EOF
// (or an error rooted in it) once no bits are left.
type BitReader interface {
	ReadBit() (uint, error)
}

// BitWriter consumes the count low bits of value, most significant first.
type BitWriter interface {
	WriteBits(value uint64, count uint) error
}

// ReadCode reads bits from r until they form a code of the table and returns
// the value of that code.
//
// ErrInvalidCode is returned when the longest code length is reached without a
// match, ErrStreamExhausted when r runs out of bits first.
func (t *Table) ReadCode(r BitReader) (uint32, error) {
	if !t.ready {
		return 0, errors.Wrap(ErrSequence, "Tables must be calculated before reading codes")
	}

	code := uint64(0)
	for length := uint32(1); length <= t.maxLength; length++ {
		bit, err := r.ReadBit()
		if err != nil {
			if isEndOfStream(err) {
				return 0, errors.Wrapf(ErrStreamExhausted, "Stream ended after %d code bits", length-1)
			}
			return 0, errors.Wrap(err, "Failed to read code bit")
		}
		code = code<<1 | uint64(bit&1)

		if t.valuesPerLength[length] != 0 && code >= t.minCode[length] && code <= t.maxCode[length] {
			return t.orderedValues[t.firstIndex[length]+int(code-t.minCode[length])], nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidCode, "No code matches within %d bits", t.maxLength)
}

// WriteCode writes the code of value to w in a single WriteBits call.
func (t *Table) WriteCode(value uint32, w BitWriter) error {
	if !t.ready {
		return errors.Wrap(ErrSequence, "Tables must be calculated before writing codes")
	}
	entry, ok := t.codes[value]
	if !ok {
		return errors.Wrapf(ErrNoCode, "Value %d", value)
	}

	if err := w.WriteBits(entry.code, uint(entry.length)); err != nil {
		return errors.Wrapf(err, "Failed to write code of value %d", value)
	}
	return nil
}

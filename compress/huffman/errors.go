// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import (
	"io"

	"github.com/nuclio/errors"
)

// Configuration errors: the table cannot be built from the supplied input.
var (
	ErrValueOutOfRange      = errors.New("value does not fit in the table's value bits")
	ErrCodeLengthOutOfRange = errors.New("code length out of range")
	ErrCodeLengthOverflow   = errors.New("code length overflow")
	ErrTableMismatch        = errors.New("values per length do not match the ordered values")
	ErrDuplicateValue       = errors.New("value appears more than once in the ordered values")
	ErrIndexOutOfRange      = errors.New("ordered value index out of range")
)

// Encode errors.
var (
	ErrNoCode = errors.New("value has no huffman code")
)

// Decode errors.
var (
	ErrInvalidCode     = errors.New("invalid huffman code")
	ErrStreamExhausted = errors.New("bit stream exhausted")
)

// ErrSequence is returned when an operation is invoked out of order, e.g. a
// code is read before CalcTables succeeded.
var ErrSequence = errors.New("operation out of sequence")

func isEndOfStream(err error) bool {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return true
	}
	cause := errors.RootCause(err)
	return cause == io.EOF || cause == io.ErrUnexpectedEOF || cause == ErrStreamExhausted
}

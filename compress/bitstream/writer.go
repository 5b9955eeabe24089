// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package bitstream

import (
	"io"

	"github.com/nuclio/errors"
)

const flushSize = 4 * 1024

// Writer packs bits into bytes, most significant bit first. Complete bytes are
// buffered and handed to the underlying io.Writer in batches. The first write
// error is sticky.
type Writer struct {
	w        io.Writer
	output   []byte
	bits     uint64 // pending bits, right aligned
	bitLen   uint   // always < 8 between calls
	stuffing bool
	err      error
}

// NewWriter returns a Writer on top of w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	o := newOptions(opts)
	return &Writer{
		w:        w,
		output:   make([]byte, 0, flushSize+16),
		stuffing: o.stuffing,
	}
}

// Reset discards pending bits and switches to w. Options are kept.
func (b *Writer) Reset(w io.Writer) {
	b.w = w
	b.output = b.output[:0]
	b.bits = 0
	b.bitLen = 0
	b.err = nil
}

// WriteBits appends the count low bits of value, most significant first.
// count is at most 64.
func (b *Writer) WriteBits(value uint64, count uint) error {
	if b.err != nil {
		return b.err
	}
	if count > 64 {
		return errors.Errorf("Cannot write %d bits at once", count)
	}
	if count < 64 {
		value &= 1<<count - 1
	}

	for count > 0 {
		take := 8 - b.bitLen
		if take > count {
			take = count
		}
		count -= take
		b.bits = b.bits<<take | (value>>count)&(1<<take-1)
		b.bitLen += take
		if b.bitLen == 8 {
			b.writeByte(byte(b.bits))
			b.bits = 0
			b.bitLen = 0
		}
	}

	if len(b.output) >= flushSize {
		return b.flushOutput()
	}
	return nil
}

// Flush pads the last byte with 1 bits and writes every buffered byte.
func (b *Writer) Flush() error {
	if b.err != nil {
		return b.err
	}
	if b.bitLen != 0 {
		pad := 8 - b.bitLen
		b.writeByte(byte(b.bits<<pad | (1<<pad - 1)))
		b.bits = 0
		b.bitLen = 0
	}
	return b.flushOutput()
}

// Buffered returns the number of complete bytes not yet handed to the
// underlying writer.
func (b *Writer) Buffered() int {
	return len(b.output)
}

func (b *Writer) writeByte(c byte) {
	b.output = append(b.output, c)
	if b.stuffing && c == 0xFF {
		b.output = append(b.output, 0x00)
	}
}

func (b *Writer) flushOutput() error {
	if len(b.output) == 0 {
		return nil
	}
	if _, err := b.w.Write(b.output); err != nil {
		b.err = errors.Wrap(err, "Failed to write bit stream")
		return b.err
	}
	b.output = b.output[:0]
	return nil
}

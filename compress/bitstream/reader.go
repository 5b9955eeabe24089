// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package bitstream

import (
	"bufio"
	"io"

	"github.com/nuclio/errors"
)

// Reader unpacks bits from bytes, most significant bit first. It returns
// io.EOF once the underlying reader is drained.
type Reader struct {
	r        io.ByteReader
	cur      byte
	left     uint // unread bits of cur
	stuffing bool
	marker   byte
	err      error
}

// NewReader returns a Reader on top of r. r is wrapped in a bufio.Reader
// unless it already implements io.ByteReader.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := newOptions(opts)
	b := &Reader{stuffing: o.stuffing}
	b.Reset(r)
	return b
}

// Reset discards pending bits and switches to r. Options are kept.
func (b *Reader) Reset(r io.Reader) {
	if br, ok := r.(io.ByteReader); ok {
		b.r = br
	} else {
		b.r = bufio.NewReader(r)
	}
	b.cur = 0
	b.left = 0
	b.marker = 0
	b.err = nil
}

// ReadBit returns the next bit.
func (b *Reader) ReadBit() (uint, error) {
	if b.left == 0 {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	b.left--
	return uint(b.cur>>b.left) & 1, nil
}

// ReadBits returns the next n bits, n at most 64, first bit most significant.
func (b *Reader) ReadBits(n uint) (uint64, error) {
	if n > 64 {
		return 0, errors.Errorf("Cannot read %d bits at once", n)
	}
	value := uint64(0)
	for n > 0 {
		if b.left == 0 {
			if err := b.fill(); err != nil {
				return 0, err
			}
		}
		take := b.left
		if take > n {
			take = n
		}
		b.left -= take
		n -= take
		value = value<<take | uint64(b.cur>>b.left)&(1<<take-1)
	}
	return value, nil
}

// Align drops the unread bits of the current byte.
func (b *Reader) Align() {
	b.left = 0
}

// Marker returns the marker code that stopped a byte stuffing Reader.
func (b *Reader) Marker() (byte, bool) {
	return b.marker, b.marker != 0
}

func (b *Reader) fill() error {
	if b.err != nil {
		return b.err
	}
	c, err := b.r.ReadByte()
	if err != nil {
		b.err = err
		return err
	}
	if b.stuffing && c == 0xFF {
		next, err := b.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			b.err = err
			return err
		}
		if next != 0x00 {
			b.marker = next
			b.err = errors.Wrapf(ErrMarker, "Found marker 0xFF%02X", next)
			return b.err
		}
	}
	b.cur = c
	b.left = 8
	return nil
}

// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package bitstream reads and writes bit streams most significant bit first,
// the order used by JPEG entropy-coded segments.
package bitstream

import "github.com/nuclio/errors"

// ErrMarker is returned by a byte stuffing Reader when it meets a 0xFF byte
// that is not followed by 0x00, i.e. the start of a segment marker.
var ErrMarker = errors.New("marker in entropy-coded data")

type options struct {
	stuffing bool
}

// Option configures a Reader or a Writer.
type Option func(*options)

// WithByteStuffing makes the Writer emit 0x00 after every 0xFF byte and the
// Reader drop it again.
func WithByteStuffing() Option {
	return func(o *options) {
		o.stuffing = true
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

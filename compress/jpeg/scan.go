// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package jpeg

import (
	"io"

	"github.com/intel/fasthuff/compress/bitstream"
	"github.com/intel/fasthuff/compress/huffman"
)

// ScanWriter writes huffman coded symbols as byte stuffed scan data.
type ScanWriter struct {
	bits  *bitstream.Writer
	table *huffman.Table
}

// NewScanWriter returns a ScanWriter coding symbols with table.
func NewScanWriter(w io.Writer, table *huffman.Table) *ScanWriter {
	return &ScanWriter{
		bits:  bitstream.NewWriter(w, bitstream.WithByteStuffing()),
		table: table,
	}
}

// WriteSymbol writes the code of symbol.
func (s *ScanWriter) WriteSymbol(symbol uint8) error {
	return s.table.WriteCode(uint32(symbol), s.bits)
}

// WriteBits writes raw bits, e.g. the magnitude bits following a symbol.
func (s *ScanWriter) WriteBits(value uint64, count uint) error {
	return s.bits.WriteBits(value, count)
}

// SetTable switches the table used by the following symbols.
func (s *ScanWriter) SetTable(table *huffman.Table) {
	s.table = table
}

// Close pads the last byte with 1 bits and flushes the scan data.
func (s *ScanWriter) Close() error {
	return s.bits.Flush()
}

// ScanReader reads huffman coded symbols from byte stuffed scan data. It
// stops with bitstream.ErrMarker at the marker ending the scan.
type ScanReader struct {
	bits  *bitstream.Reader
	table *huffman.Table
}

// NewScanReader returns a ScanReader decoding symbols with table.
func NewScanReader(r io.Reader, table *huffman.Table) *ScanReader {
	return &ScanReader{
		bits:  bitstream.NewReader(r, bitstream.WithByteStuffing()),
		table: table,
	}
}

// ReadSymbol decodes the next symbol.
func (s *ScanReader) ReadSymbol() (uint8, error) {
	value, err := s.table.ReadCode(s.bits)
	return uint8(value), err
}

// ReadBits reads raw bits.
func (s *ScanReader) ReadBits(n uint) (uint64, error) {
	return s.bits.ReadBits(n)
}

// SetTable switches the table used by the following symbols.
func (s *ScanReader) SetTable(table *huffman.Table) {
	s.table = table
}

// Marker returns the marker that ended the scan data, if one was met.
func (s *ScanReader) Marker() (byte, bool) {
	return s.bits.Marker()
}

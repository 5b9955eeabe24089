// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package jpeg

import (
	"github.com/intel/fasthuff/compress/huffman"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

// reservedValue is counted once so that the last code of the table belongs
// to it; removing it afterwards keeps the all-ones code out of the stream.
const reservedValue = 0x100

// TableBuilder collects symbol statistics and builds the optimal JPEG table
// for them.
type TableBuilder struct {
	logger logger.Logger
	freqs  [256]uint64
}

// NewTableBuilder creates a TableBuilder. parentLogger may be nil.
func NewTableBuilder(parentLogger logger.Logger) *TableBuilder {
	b := &TableBuilder{}
	if parentLogger != nil {
		b.logger = parentLogger.GetChild("jpeg")
	}
	return b
}

// Observe counts one occurrence of symbol.
func (b *TableBuilder) Observe(symbol uint8) {
	b.freqs[symbol]++
}

// ObserveAll counts every byte of symbols.
func (b *TableBuilder) ObserveAll(symbols []byte) {
	for _, symbol := range symbols {
		b.freqs[symbol]++
	}
}

// Reset forgets the collected statistics.
func (b *TableBuilder) Reset() {
	b.freqs = [256]uint64{}
}

// Build returns a ready table whose codes are at most 16 bits long and never
// all ones.
func (b *TableBuilder) Build() (*huffman.Table, error) {
	table, err := huffman.NewTable(ValueBits)
	if err != nil {
		return nil, err
	}
	if b.logger != nil {
		table.SetLogger(b.logger)
	}

	for symbol, freq := range b.freqs {
		if err := table.AddValueFreq(uint32(symbol), freq); err != nil {
			return nil, errors.Wrapf(err, "Failed to count symbol %d", symbol)
		}
	}
	if err := table.IncValueFreq(reservedValue); err != nil {
		return nil, errors.Wrap(err, "Failed to count the reserved value")
	}
	if err := table.CalcCodesLength(MaxDHTCodeLength); err != nil {
		return nil, errors.Wrap(err, "Failed to calculate code lengths")
	}
	if err := table.RemoveLastCode(); err != nil {
		return nil, errors.Wrap(err, "Failed to reserve the last code")
	}
	if err := table.CalcTables(); err != nil {
		return nil, errors.Wrap(err, "Failed to calculate tables")
	}
	return table, nil
}

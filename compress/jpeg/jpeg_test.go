// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package jpeg

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/intel/fasthuff/compress/bitstream"
	"github.com/intel/fasthuff/compress/huffman"
	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

// luminance DC table of ITU-T T.81 Annex K.3
var (
	dcLuminanceCounts = [MaxDHTCodeLength]byte{0, 1, 5, 1, 1, 1, 1, 1, 1}
	dcLuminanceValues = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
)

func dcLuminancePayload(class, id uint8) []byte {
	payload := []byte{class<<4 | id}
	payload = append(payload, dcLuminanceCounts[:]...)
	return append(payload, dcLuminanceValues...)
}

type JPEGTestSuite struct {
	suite.Suite
	logger logger.Logger
}

func (suite *JPEGTestSuite) SetupSuite() {
	var err error
	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)
}

func (suite *JPEGTestSuite) requireSameCodes(expected, actual *huffman.Table) {
	for value := uint32(0); value <= 0xFF; value++ {
		code, length, ok := expected.Code(value)
		actualCode, actualLength, actualOK := actual.Code(value)
		suite.Require().Equal(ok, actualOK, "value %d", value)
		suite.Require().Equal(length, actualLength, "value %d", value)
		suite.Require().Equal(code, actualCode, "value %d", value)
	}
}

func (suite *JPEGTestSuite) TestParseDHT() {
	specs, err := ParseDHT(dcLuminancePayload(ClassDC, 1))
	suite.Require().NoError(err)
	suite.Require().Len(specs, 1)
	suite.Require().Equal(uint8(ClassDC), specs[0].Class)
	suite.Require().Equal(uint8(1), specs[0].ID)

	table := specs[0].Table
	for _, tc := range []struct {
		value  uint32
		code   uint64
		length uint32
	}{
		{0, 0b00, 2},
		{1, 0b010, 3},
		{5, 0b110, 3},
		{6, 0b1110, 4},
		{11, 0b111111110, 9},
	} {
		code, length, ok := table.Code(tc.value)
		suite.Require().True(ok)
		suite.Require().Equal(tc.length, length, "value %d", tc.value)
		suite.Require().Equal(tc.code, code, "value %d", tc.value)
	}
	_, _, ok := table.Code(12)
	suite.Require().False(ok)
}

func (suite *JPEGTestSuite) TestParseDHTErrors() {
	payload := dcLuminancePayload(ClassDC, 0)

	for name, broken := range map[string][]byte{
		"short header":  payload[:10],
		"short values":  payload[:len(payload)-1],
		"bad class":     append([]byte{0x20}, payload[1:]...),
		"bad id":        append([]byte{0x04}, payload[1:]...),
		"trailing byte": append(append([]byte{}, payload...), 0x00),
	} {
		_, err := ParseDHT(broken)
		suite.Require().Equal(ErrInvalidDHT, errors.RootCause(err), name)
	}

	// lengths that overflow the code space
	overfull := []byte{0x00, 3}
	overfull = append(overfull, make([]byte, MaxDHTCodeLength-1)...)
	overfull = append(overfull, 1, 2, 3)
	_, err := ParseDHT(overfull)
	suite.Require().Equal(huffman.ErrCodeLengthOverflow, errors.RootCause(err))
}

func (suite *JPEGTestSuite) TestSegmentRoundTrip() {
	specs, err := ParseDHT(append(dcLuminancePayload(ClassDC, 0), dcLuminancePayload(ClassAC, 3)...))
	suite.Require().NoError(err)
	suite.Require().Len(specs, 2)

	builder := NewTableBuilder(suite.logger)
	builder.ObserveAll([]byte("abracadabra, a segment of text"))
	built, err := builder.Build()
	suite.Require().NoError(err)
	specs = append(specs, HuffmanTableSpec{Class: ClassAC, ID: 1, Table: built})

	buf := &bytes.Buffer{}
	suite.Require().NoError(WriteDHTSegment(buf, specs...))
	suite.Require().Equal([]byte{0xFF, MarkerDHT}, buf.Bytes()[:2])

	parsed, err := ReadDHTSegment(bytes.NewReader(buf.Bytes()))
	suite.Require().NoError(err)
	suite.Require().Len(parsed, len(specs))
	for i := range specs {
		suite.Require().Equal(specs[i].Class, parsed[i].Class)
		suite.Require().Equal(specs[i].ID, parsed[i].ID)
		suite.requireSameCodes(specs[i].Table, parsed[i].Table)
	}
}

func (suite *JPEGTestSuite) TestAppendDHTRejects() {
	notReady, err := huffman.NewTable(ValueBits)
	suite.Require().NoError(err)
	_, err = AppendDHT(nil, ClassDC, 0, notReady)
	suite.Require().Equal(huffman.ErrSequence, errors.RootCause(err))

	long, err := huffman.NewTable(ValueBits)
	suite.Require().NoError(err)
	suite.Require().NoError(long.SetValuesPerLength(1, 1))
	suite.Require().NoError(long.SetValuesPerLength(17, 1))
	suite.Require().NoError(long.AddOrderedValue(0, 1))
	suite.Require().NoError(long.AddOrderedValue(1, 2))
	suite.Require().NoError(long.CalcTables())
	_, err = AppendDHT(nil, ClassDC, 0, long)
	suite.Require().Equal(huffman.ErrCodeLengthOutOfRange, errors.RootCause(err))

	wide, err := huffman.NewTable(ValueBits)
	suite.Require().NoError(err)
	suite.Require().NoError(wide.SetValuesPerLength(1, 2))
	suite.Require().NoError(wide.AddOrderedValue(0, 1))
	suite.Require().NoError(wide.AddOrderedValue(1, 0x100))
	suite.Require().NoError(wide.CalcTables())
	_, err = AppendDHT(nil, ClassDC, 0, wide)
	suite.Require().Equal(huffman.ErrValueOutOfRange, errors.RootCause(err))
}

func (suite *JPEGTestSuite) TestBuildReservesAllOnes() {
	rnd := rand.New(rand.NewSource(7))
	builder := NewTableBuilder(suite.logger)

	for round := 0; round < 20; round++ {
		builder.Reset()
		symbols := 1 + rnd.Intn(256)
		for i := 0; i < 4000; i++ {
			builder.Observe(uint8(rnd.Intn(symbols)))
		}

		table, err := builder.Build()
		suite.Require().NoError(err)
		suite.Require().LessOrEqual(table.MaxUsedLength(), uint32(MaxDHTCodeLength))

		for value := uint32(0); value <= 0xFF; value++ {
			code, length, ok := table.Code(value)
			if !ok {
				continue
			}
			suite.Require().NotEqual(uint64(1)<<length-1, code, "value %d has an all ones code", value)
		}
		_, _, ok := table.Code(reservedValue)
		suite.Require().False(ok)
	}
}

func (suite *JPEGTestSuite) TestBuildLimitsLength() {
	builder := NewTableBuilder(nil)

	// fibonacci frequencies make the unlimited tree as deep as possible
	a, b := uint64(1), uint64(1)
	for symbol := 0; symbol < 40; symbol++ {
		for i := uint64(0); i < a; i++ {
			builder.Observe(uint8(symbol))
		}
		a, b = b, a+b
		if a > 1<<20 {
			a, b = 1<<20, 1<<20
		}
	}

	table, err := builder.Build()
	suite.Require().NoError(err)
	suite.Require().Equal(uint32(MaxDHTCodeLength), table.MaxUsedLength())
	suite.Require().Equal(40, table.NumOrderedValues())
}

func (suite *JPEGTestSuite) TestScanRoundTrip() {
	rnd := rand.New(rand.NewSource(11))
	symbols := make([]byte, 5000)
	for i := range symbols {
		symbols[i] = byte(math.Min(rnd.ExpFloat64()*20, 0xFF))
	}

	builder := NewTableBuilder(suite.logger)
	builder.ObserveAll(symbols)
	table, err := builder.Build()
	suite.Require().NoError(err)

	buf := &bytes.Buffer{}
	w := NewScanWriter(buf, table)
	for i, symbol := range symbols {
		suite.Require().NoError(w.WriteSymbol(symbol))
		if i%100 == 0 {
			suite.Require().NoError(w.WriteBits(uint64(i)&0x7F, 7))
		}
	}
	suite.Require().NoError(w.Close())
	buf.Write([]byte{0xFF, 0xD9})

	r := NewScanReader(bytes.NewReader(buf.Bytes()), table)
	for i, symbol := range symbols {
		decoded, err := r.ReadSymbol()
		suite.Require().NoError(err, "symbol %d", i)
		suite.Require().Equal(symbol, decoded, "symbol %d", i)
		if i%100 == 0 {
			extra, err := r.ReadBits(7)
			suite.Require().NoError(err)
			suite.Require().Equal(uint64(i)&0x7F, extra)
		}
	}

	// the padding never decodes, the reader stops at the end of image marker
	_, err = r.ReadSymbol()
	suite.Require().Error(err)
	if errors.RootCause(err) == bitstream.ErrMarker {
		marker, ok := r.Marker()
		suite.Require().True(ok)
		suite.Require().Equal(byte(0xD9), marker)
	}
}

func (suite *JPEGTestSuite) TestScanWriteUnknownSymbol() {
	specs, err := ParseDHT(dcLuminancePayload(ClassDC, 0))
	suite.Require().NoError(err)

	w := NewScanWriter(&bytes.Buffer{}, specs[0].Table)
	err = w.WriteSymbol(12)
	suite.Require().Equal(huffman.ErrNoCode, errors.RootCause(err))
}

func TestJPEGTestSuite(t *testing.T) {
	suite.Run(t, new(JPEGTestSuite))
}

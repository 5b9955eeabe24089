//go:build go1.18
// +build go1.18

package huffman

import (
	"testing"
)

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("abracadabra"), uint8(4))
	f.Add([]byte{0, 0, 0, 1, 2, 3, 255}, uint8(16))
	f.Fuzz(func(t *testing.T, source []byte, maxCodeLength uint8) {
		if len(source) == 0 || maxCodeLength == 0 || maxCodeLength > 24 {
			t.Skip()
		}
		table, err := NewTable(8)
		if err != nil {
			t.Fatal(err)
		}
		used := map[byte]bool{}
		for _, b := range source {
			used[b] = true
			if err := table.IncValueFreq(uint32(b)); err != nil {
				t.Fatal(err)
			}
		}
		err = table.CalcCodesLength(uint32(maxCodeLength))
		if len(used) > 1<<maxCodeLength {
			if err == nil {
				t.Fatal("expected code length overflow")
			}
			return
		}
		if err != nil {
			t.Fatal(err)
		}
		if err := table.CalcTables(); err != nil {
			t.Fatal(err)
		}

		buf := &bitBuffer{}
		for _, b := range source {
			if err := table.WriteCode(uint32(b), buf); err != nil {
				t.Fatal(err)
			}
		}
		for i, b := range source {
			value, err := table.ReadCode(buf)
			if err != nil {
				t.Fatal(i, err)
			}
			if value != uint32(b) {
				t.Fatalf("position %d: got %d, want %d", i, value, b)
			}
			if l := table.CodeLength(value); l == 0 || l > uint32(maxCodeLength) {
				t.Fatalf("value %d has length %d", value, l)
			}
		}
	})
}

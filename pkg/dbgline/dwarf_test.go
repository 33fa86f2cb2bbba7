package dbgline

import (
	"bytes"
	"testing"
)

func TestUleb128RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}
	for _, v := range cases {
		buf := appendUleb128(nil, v)
		got, n := decodeUleb128(buf)
		if got != v || n != len(buf) {
			t.Errorf("uleb128(%d): got %d, consumed %d of %d bytes", v, got, n, len(buf))
		}
	}
}

func TestSleb128RoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 63, -64, 64, -65, 1000000, -1000000}
	for _, v := range cases {
		buf := appendSleb128(nil, v)
		got, n := decodeSleb128(buf)
		if got != v || n != len(buf) {
			t.Errorf("sleb128(%d): got %d, consumed %d of %d bytes", v, got, n, len(buf))
		}
	}
}

// decodeUleb128/decodeSleb128 exist only to let this test verify
// appendUleb128/appendSleb128 against a reference decode; nothing in the
// production encoder ever needs to read a LEB128 value back.
func decodeUleb128(buf []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range buf {
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
	}
	return v, len(buf)
}

func decodeSleb128(buf []byte) (int64, int) {
	var v int64
	var shift uint
	for i, b := range buf {
		v |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			return v, i + 1
		}
	}
	return v, len(buf)
}

func TestDWARFSinkLineSequence(t *testing.T) {
	s := NewDWARFSink()
	s.Line(0, 1, 1)
	s.Line(4, 2, 1)
	s.PrologueEnd(4)
	s.EpilogueBegin(10)

	buf := s.Bytes()
	if len(buf) == 0 {
		t.Fatal("expected a non-empty line program")
	}
	// First entry: no address advance (already at 0), no line advance
	// (already at line 1), set column, copy.
	if buf[0] != dwLNSSetColumn {
		t.Errorf("first opcode = %#x, want set-column (%#x)", buf[0], dwLNSSetColumn)
	}
}

func TestDWARFSinkArgInfoEmitsParameterEntries(t *testing.T) {
	s := NewDWARFSink()
	s.ArgInfo(3, 0, 7)
	s.ArgInfo(3, 1, 8)

	want := []byte{
		dwAbbrevParameter, 1, dwOpReg0 + 7, 0, 0, 0, 0,
		dwAbbrevParameter, 1, dwOpReg0 + 8, 0, 0, 0, 0,
	}
	if got := s.DebugInfoBytes(); !bytes.Equal(got, want) {
		t.Errorf("DebugInfoBytes() = % x, want % x", got, want)
	}

	relocs := s.TypeRelocs()
	if len(relocs) != 2 {
		t.Fatalf("len(TypeRelocs()) = %d, want 2", len(relocs))
	}
	if relocs[0].Offset != 3 || relocs[1].Offset != 10 {
		t.Errorf("type reloc offsets = %d, %d, want 3, 10", relocs[0].Offset, relocs[1].Offset)
	}
	if relocs[0].AirInst != 3 || relocs[0].ArgIndex != 0 || relocs[1].ArgIndex != 1 {
		t.Errorf("type relocs = %+v", relocs)
	}
}

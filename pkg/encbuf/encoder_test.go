package encbuf_test

import (
	"bytes"
	"testing"

	"github.com/oisee/x86isel/pkg/encbuf"
)

func TestRexOmittedWhenClear(t *testing.T) {
	enc := encbuf.New(4)
	enc.REX(encbuf.REXBits{})
	if enc.Len() != 0 {
		t.Fatalf("expected no REX byte emitted, got %d bytes", enc.Len())
	}
}

func TestRexForced(t *testing.T) {
	enc := encbuf.New(4)
	enc.REX(encbuf.REXBits{Force: true})
	if got := enc.Bytes(); !bytes.Equal(got, []byte{0x40}) {
		t.Fatalf("got % x, want 40", got)
	}
}

func TestRexAllBits(t *testing.T) {
	enc := encbuf.New(4)
	enc.REX(encbuf.REXBits{W: true, R: true, X: true, B: true})
	if got := enc.Bytes(); !bytes.Equal(got, []byte{0x4F}) {
		t.Fatalf("got % x, want 4f", got)
	}
}

func TestModRMHelpers(t *testing.T) {
	if got := encbuf.ModRMDirect(1, 2); got != 0xCA {
		t.Errorf("ModRMDirect(1,2) = %#x, want 0xCA", got)
	}
	if got := encbuf.ModRMIndirectDisp8(3, 5); got != 0x5D {
		t.Errorf("ModRMIndirectDisp8(3,5) = %#x, want 0x5D", got)
	}
	if got := encbuf.ModRMRipDisp32(0); got != 0x05 {
		t.Errorf("ModRMRipDisp32(0) = %#x, want 0x05", got)
	}
	if got := encbuf.ModRMSibDisp0(4); got != 0x24 {
		t.Errorf("ModRMSibDisp0(4) = %#x, want 0x24", got)
	}
}

func TestSIB(t *testing.T) {
	if got := encbuf.SIB(0, 4, 4); got != 0x24 {
		t.Errorf("SIB(0,4,4) = %#x, want 0x24", got)
	}
	if got := encbuf.SIB(3, 1, 5); got != 0xCD {
		t.Errorf("SIB(3,1,5) = %#x, want 0xCD", got)
	}
}

func TestImmediates(t *testing.T) {
	enc := encbuf.New(16)
	enc.Imm8(0xAB)
	enc.Imm16(0x1234)
	enc.Imm32(0x89ABCDEF)
	enc.Imm64(0x0102030405060708)
	want := []byte{
		0xAB,
		0x34, 0x12,
		0xEF, 0xCD, 0xAB, 0x89,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestPatchI32LE(t *testing.T) {
	enc := encbuf.New(8)
	enc.Opcode1Byte(0xE8)
	enc.Disp32(0)
	enc.PatchI32LE(1, -5)
	want := []byte{0xE8, 0xFB, 0xFF, 0xFF, 0xFF}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestReserveRejectsOversized(t *testing.T) {
	enc := encbuf.New(0)
	if err := enc.Reserve(1 << 31); err == nil {
		t.Fatal("expected ErrOutOfMemory for an oversized reservation")
	}
}

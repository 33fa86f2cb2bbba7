package reloc_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/reloc"
)

// TestBackpatchForwardBranch models a jmp emitted before its target: the
// rel32 field starts as a 0 placeholder and must be patched to the actual
// forward distance once the target's offset is known.
func TestBackpatchForwardBranch(t *testing.T) {
	enc := encbuf.New(16)
	enc.Opcode1Byte(0xE9) // jmp rel32
	siteOffset := enc.Len()
	enc.Disp32(0)
	instrEnd := enc.Len()
	enc.Opcode1Byte(0x90) // nop
	enc.Opcode1Byte(0x90) // nop, the "target" instruction
	targetOffset := enc.Len() - 1

	offsets := reloc.OffsetMap{0: 0, 1: targetOffset}
	branches := []reloc.BranchRelocation{
		{SiteOffset: siteOffset, InstrEndOffset: instrEnd, TargetMIRIndex: 1},
	}
	if err := reloc.Backpatch(enc, offsets, branches); err != nil {
		t.Fatalf("Backpatch: %v", err)
	}

	// distance from instrEnd (5) to targetOffset (6) is 1.
	want := []byte{0xE9, 0x01, 0x00, 0x00, 0x00, 0x90, 0x90}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestBackpatchBackwardBranch(t *testing.T) {
	enc := encbuf.New(16)
	targetOffset := enc.Len()
	enc.Opcode1Byte(0x90)
	enc.Opcode1Byte(0xE9)
	siteOffset := enc.Len()
	enc.Disp32(0)
	instrEnd := enc.Len()

	offsets := reloc.OffsetMap{0: targetOffset}
	branches := []reloc.BranchRelocation{
		{SiteOffset: siteOffset, InstrEndOffset: instrEnd, TargetMIRIndex: 0},
	}
	if err := reloc.Backpatch(enc, offsets, branches); err != nil {
		t.Fatalf("Backpatch: %v", err)
	}
	// distance from instrEnd (6) back to targetOffset (0) is -6.
	want := []byte{0x90, 0xE9, 0xFA, 0xFF, 0xFF, 0xFF}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestBackpatchOverflow(t *testing.T) {
	enc := encbuf.New(8)
	enc.Disp32(0)
	offsets := reloc.OffsetMap{0: 0}
	branches := []reloc.BranchRelocation{
		{SiteOffset: 0, InstrEndOffset: 1 << 32, TargetMIRIndex: 0},
	}
	err := reloc.Backpatch(enc, offsets, branches)
	if !errors.Is(err, reloc.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

// TestPatchDispOverflow exercises the exported narrowing helper pkg/isel
// reuses for its inline RIP-relative LEA patch.
func TestPatchDispOverflow(t *testing.T) {
	enc := encbuf.New(8)
	enc.Disp32(0)
	if err := reloc.PatchDisp(enc, 0, 1<<32); !errors.Is(err, reloc.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if err := reloc.PatchDisp(enc, 0, 5); err != nil {
		t.Fatalf("PatchDisp: %v", err)
	}
	want := []byte{0x05, 0x00, 0x00, 0x00}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

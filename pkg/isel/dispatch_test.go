package isel_test

import (
	"bytes"
	"testing"

	"github.com/oisee/x86isel/pkg/dbgline"
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/isel"
	"github.com/oisee/x86isel/pkg/mir"
)

// TestDispatchForwardJump builds: jmp L1; add rax, rcx; L1: ret_near, and
// checks both the emitted bytes and that the forward branch was patched
// to the correct distance.
func TestDispatchForwardJump(t *testing.T) {
	rax, rcx := isa.RAX, isa.R64(isa.IdxCX)
	var prog mir.Program
	prog.Append(mir.Tag{Family: mir.FamJmpCall, Mn: isa.JmpNear}, mir.Ops{Flags: 0}, mir.Data{Kind: mir.DataInst, Inst: 2})
	prog.Append(mir.Tag{Family: mir.FamBinary, Mn: isa.Add}, mir.Ops{Reg1: &rax, Reg2: &rcx, Flags: 0}, mir.Data{})
	prog.Append(mir.Tag{Family: mir.FamRet, Mn: isa.RetNear}, mir.Ops{}, mir.Data{})

	enc := encbuf.New(32)
	result, err := isel.Dispatch(enc, &prog, dbgline.None{})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	// jmp rel32 (5 bytes) + add rax, rcx (3 bytes: REX.W 48, opcode 03, modrm C1) + ret (1 byte)
	want := []byte{0xE9, 0x03, 0x00, 0x00, 0x00, 0x48, 0x03, 0xC1, 0xC3}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
	if result.Offsets[2] != 8 {
		t.Errorf("offset of mir[2] = %d, want 8", result.Offsets[2])
	}
}

func TestDispatchMemImm(t *testing.T) {
	r11 := isa.R64(isa.IdxR11)
	var prog mir.Program
	payload := prog.AppendExtra(mir.Extra{Kind: mir.ExtraImmPair, A: 0, B: 0x10})
	prog.Append(mir.Tag{Family: mir.FamMemImm, Mn: isa.Mov}, mir.Ops{Reg1: &r11, Flags: 0}, mir.Data{Kind: mir.DataMemImmPayload, Payload: payload})

	enc := encbuf.New(16)
	if _, err := isel.Dispatch(enc, &prog, dbgline.None{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []byte{0x41, 0xC7, 0x03, 0x10, 0x00, 0x00, 0x00}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestDispatchMovabs(t *testing.T) {
	rax := isa.RAX
	var prog mir.Program
	payload := prog.AppendExtra(mir.Extra{Kind: mir.ExtraImm64, Imm64: 0x1000000000000000})
	prog.Append(mir.Tag{Family: mir.FamMovabs, Mn: isa.Mov}, mir.Ops{Reg1: &rax, Flags: 0}, mir.Data{Kind: mir.DataPayload, Payload: payload})

	enc := encbuf.New(16)
	if _, err := isel.Dispatch(enc, &prog, dbgline.None{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []byte{0x48, 0xB8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

// TestDispatchLeaRipImm64 exercises FamLea flags==1: a RIP-relative lea
// whose displacement is computed from a 64-bit immediate payload and the
// instruction's own length, patched inline rather than deferred.
func TestDispatchLeaRipImm64(t *testing.T) {
	rax := isa.RAX
	var prog mir.Program
	payload := prog.AppendExtra(mir.Extra{Kind: mir.ExtraImm64, Imm64: 0x20})
	prog.Append(mir.Tag{Family: mir.FamLea, Mn: isa.Lea}, mir.Ops{Reg1: &rax, Flags: 1}, mir.Data{Kind: mir.DataPayload, Payload: payload})

	enc := encbuf.New(16)
	if _, err := isel.Dispatch(enc, &prog, dbgline.None{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// lea rax, [rip + disp] is 7 bytes (48 8D 05 + disp32); disp = imm64 - 7 = 0x19.
	want := []byte{0x48, 0x8D, 0x05, 0x19, 0x00, 0x00, 0x00}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestDispatchStructuralFailure(t *testing.T) {
	var prog mir.Program
	prog.Append(mir.Tag{Family: mir.FamBinary, Mn: isa.Add}, mir.Ops{}, mir.Data{})

	enc := encbuf.New(16)
	if _, err := isel.Dispatch(enc, &prog, dbgline.None{}); err == nil {
		t.Fatal("expected a dispatch error for a binary instruction with no operands")
	}
}

func TestDispatchPushPopCalleeRegs(t *testing.T) {
	var prog mir.Program
	mask := uint64(1<<0 | 1<<2) // rbx, r12
	prog.Append(mir.Tag{Family: mir.FamPushCalleeRegs}, mir.Ops{}, mir.Data{Kind: mir.DataRegMask, RegMask: mask})
	prog.Append(mir.Tag{Family: mir.FamPopCalleeRegs}, mir.Ops{}, mir.Data{Kind: mir.DataRegMask, RegMask: mask})

	enc := encbuf.New(16)
	if _, err := isel.Dispatch(enc, &prog, dbgline.None{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// push rbx (53), push r12 (41 54), pop r12 (41 5C), pop rbx (5B)
	want := []byte{0x53, 0x41, 0x54, 0x41, 0x5C, 0x5B}
	if got := enc.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

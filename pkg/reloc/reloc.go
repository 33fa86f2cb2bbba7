// Package reloc resolves branch displacements whose target wasn't known
// when the branch was emitted. Pending branches are collected during
// lowering and settled in one backpatch pass once every instruction has a
// final code offset. RIP-relative LEA displacements are a separate case:
// they only ever need the LEA instruction's own length, known immediately
// after it's emitted, so pkg/isel patches those inline rather than
// deferring them here; PatchDisp is exported for that caller to reuse the
// same overflow-checked narrowing logic.
package reloc

import (
	"errors"
	"fmt"

	"github.com/oisee/x86isel/pkg/encbuf"
)

// ErrOverflow is returned when a resolved displacement does not fit the
// field width the instruction already committed to. Short-form branches
// are not attempted, so every branch reserves a rel32 field up front and
// overflow only happens against that 32-bit range, effectively never in
// practice, but still checked.
var ErrOverflow = errors.New("reloc: displacement overflows its field")

// BranchRelocation is a pending branch whose rel32 field needs the final
// byte offset of its target MIR instruction. Every branch this backend
// emits reserves a 32-bit displacement up front; short-form (rel8)
// branches are not attempted, so there is only one field width to
// back-patch.
type BranchRelocation struct {
	// SiteOffset is the code-buffer offset of the displacement field
	// itself (not the instruction's start).
	SiteOffset int
	// InstrEndOffset is the code-buffer offset immediately after the
	// displacement field. x86 rel32 branches are relative to the next
	// instruction, not the branch opcode.
	InstrEndOffset int
	// TargetMIRIndex is the MIR instruction the branch targets.
	TargetMIRIndex int
}

// OffsetMap maps a MIR instruction index to the code-buffer offset its
// first emitted byte landed at. The isel dispatcher populates this
// in lowering order, before every instruction is lowered.
type OffsetMap []int

// Backpatch resolves every pending branch relocation against a completed
// OffsetMap, writing each displacement in place via enc.PatchI32LE. It
// returns the first error encountered (an out-of-range MIR index is a
// structural bug in the caller, not a data error, so it panics instead of
// returning).
func Backpatch(enc *encbuf.Encoder, offsets OffsetMap, branches []BranchRelocation) error {
	for _, b := range branches {
		target := mustOffset(offsets, b.TargetMIRIndex)
		disp := int64(target) - int64(b.InstrEndOffset)
		if err := PatchDisp(enc, b.SiteOffset, disp); err != nil {
			return fmt.Errorf("reloc: branch to mir[%d]: %w", b.TargetMIRIndex, err)
		}
	}
	return nil
}

func mustOffset(offsets OffsetMap, idx int) int {
	if idx < 0 || idx >= len(offsets) {
		panic("reloc: target mir index out of range")
	}
	return offsets[idx]
}

// PatchDisp narrows disp to an i32 and writes it little-endian at
// siteOffset, or returns ErrOverflow if it doesn't fit.
func PatchDisp(enc *encbuf.Encoder, siteOffset int, disp int64) error {
	if disp < -(1<<31) || disp > (1<<31)-1 {
		return ErrOverflow
	}
	enc.PatchI32LE(siteOffset, int32(disp))
	return nil
}

package isa

// Register identifies one general-purpose x86-64 register by width and
// index. Index is always 0..15 (rax..r15 in the usual numbering); the
// legacy high-byte registers (ah, bh, ch, dh) share index values 4..7 at
// width 8 with spl/bpl/sil/dil, so they are distinguished by the HighByte
// flag rather than by index. A register with HighByte set must never be
// combined with a REX prefix, that combination is illegal on real
// hardware and is a structural bug in this backend, not a runtime
// condition, if it is attempted.
type Register struct {
	Width    uint8
	Index    uint8
	HighByte bool
}

// LowID returns the 3-bit field written into ModR/M.reg, ModR/M.rm,
// SIB.base, SIB.index, or an opcode-embedded register (the O/OI forms).
func (r Register) LowID() uint8 {
	return r.Index & 7
}

// IsExtended reports whether encoding r requires a REX extension bit
// (R, X, or B depending on the field it appears in).
func (r Register) IsExtended() bool {
	return r.Index >= 8
}

// Size returns the register width in bits.
func (r Register) Size() int {
	return int(r.Width)
}

// To8 returns the 8-bit view of the same register index (e.g. rax -> al).
// High-byte registers have no 64-bit counterpart and must not be coerced.
func (r Register) To8() Register {
	return Register{Width: 8, Index: r.Index}
}

// To64 returns the 64-bit view of the same register index.
func (r Register) To64() Register {
	if r.HighByte {
		panic("isa: legacy high-byte register has no 64-bit form")
	}
	return Register{Width: 64, Index: r.Index}
}

// RequiresRex reports whether referencing r forces a REX prefix even when
// no other operand bit is set: true for the low-8 extended registers is
// handled by IsExtended, but spl/bpl/sil/dil at width 8 additionally force
// REX-presence (an empty REX byte, 0x40) purely to disambiguate them from
// ah/bh/ch/dh, which occupy the same low3 range.
func (r Register) RequiresRex() bool {
	return r.Width == 8 && !r.HighByte && r.Index >= 4 && r.Index < 8
}

// General-purpose register constructors, by width.
func R8(index uint8) Register  { return Register{Width: 8, Index: index} }
func R16(index uint8) Register { return Register{Width: 16, Index: index} }
func R32(index uint8) Register { return Register{Width: 32, Index: index} }
func R64(index uint8) Register { return Register{Width: 64, Index: index} }

// Canonical register indices, shared across all widths.
const (
	IdxAX uint8 = iota
	IdxCX
	IdxDX
	IdxBX
	IdxSP
	IdxBP
	IdxSI
	IdxDI
	IdxR8
	IdxR9
	IdxR10
	IdxR11
	IdxR12
	IdxR13
	IdxR14
	IdxR15
)

// Legacy high-byte registers: width-8, REX-incompatible.
var (
	AH = Register{Width: 8, Index: IdxSP, HighByte: true}
	CH = Register{Width: 8, Index: IdxBP, HighByte: true}
	DH = Register{Width: 8, Index: IdxSI, HighByte: true}
	BH = Register{Width: 8, Index: IdxDI, HighByte: true}
)

// RAX and friends, commonly referenced by the FD/TD accumulator forms and
// the addressing-mode table's rsp/r12/rbp/r13 special cases.
var (
	RAX = R64(IdxAX)
	RBX = R64(IdxBX)
	RSP = R64(IdxSP)
	RBP = R64(IdxBP)
	R12 = R64(IdxR12)
	R13 = R64(IdxR13)
	R14 = R64(IdxR14)
	R15 = R64(IdxR15)
)

// IsRaxLike reports whether r refers to rax/eax/ax/al, the only register
// legal as the FD/TD accumulator operand, regardless of width.
func IsRaxLike(r Register) bool {
	return !r.HighByte && r.Index == IdxAX
}

// NeedsSIBBaseOnly reports whether r, used as a memory base, forces a SIB
// byte purely because its low3 id collides with the no-base SIB encoding
// (rsp/r12, low3 == 4).
func NeedsSIBBaseOnly(r Register) bool {
	return r.LowID() == 4
}

// NeedsDisp8Zero reports whether r, used as a memory base with a zero
// displacement, must still carry an explicit disp8 of 0 because mod=00
// rm=5 is reserved for RIP-relative addressing (rbp/r13, low3 == 5).
func NeedsDisp8Zero(r Register) bool {
	return r.LowID() == 5
}

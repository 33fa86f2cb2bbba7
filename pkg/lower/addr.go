package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
)

// dispKind picks how a displacement attached to a real base register gets
// encoded: zero folds into mod=00 unless the base is rbp/r13 (low3==5),
// which collides with the RIP-relative escape and must instead carry an
// explicit disp8 of 0.
type dispKind uint8

const (
	dispNone dispKind = iota // mod=00, no displacement bytes
	dispI8
	dispI32
)

func chooseDisp(base isa.Register, disp int32) dispKind {
	if disp == 0 {
		if isa.NeedsDisp8Zero(base) {
			return dispI8
		}
		return dispNone
	}
	if disp >= -128 && disp <= 127 {
		return dispI8
	}
	return dispI32
}

// addressPlan is the fully-resolved shape of a memory operand's
// ModR/M/SIB/displacement bytes, computed before any bytes are written so
// that the REX prefix (which must precede the opcode, which precedes
// ModR/M) can be assembled from the same register-extension bits.
type addressPlan struct {
	modrm  byte
	hasSIB bool
	sib    byte
	disp   dispKind
	dispV  int32
	rexX   bool
	rexB   bool
}

func (p addressPlan) write(enc *encbuf.Encoder) {
	enc.WriteModRM(p.modrm)
	if p.hasSIB {
		enc.WriteSIB(p.sib)
	}
	switch p.disp {
	case dispI8:
		enc.Disp8(int8(p.dispV))
	case dispI32:
		enc.Disp32(p.dispV)
	}
}

// planMemory resolves mem into an addressPlan with regField (the ModR/M
// reg bits, either a real register's low3 id or an opcode extension
// nibble) already folded in.
func planMemory(regField uint8, mem isa.Memory) addressPlan {
	if mem.RipRelative {
		return addressPlan{modrm: encbuf.ModRMRipDisp32(regField), disp: dispI32, dispV: mem.Disp}
	}
	if mem.Base == nil {
		// Absent base: always SIB with base field 101 (no base) and an
		// unconditional disp32, regardless of the displacement's value.
		index, scale, rexX := sibIndexFields(mem)
		return addressPlan{
			modrm: encbuf.ModRMSibDisp0(regField), hasSIB: true,
			sib: encbuf.SIB(scale, index, 5), disp: dispI32, dispV: mem.Disp,
			rexX: rexX,
		}
	}

	base := *mem.Base
	rexB := base.IsExtended()

	if mem.Index != nil || isa.NeedsSIBBaseOnly(base) {
		index, scale, rexX := sibIndexFields(mem)
		sibByte := encbuf.SIB(scale, index, base.LowID())
		switch chooseDisp(base, mem.Disp) {
		case dispNone:
			return addressPlan{modrm: encbuf.ModRMSibDisp0(regField), hasSIB: true, sib: sibByte, rexX: rexX, rexB: rexB}
		case dispI8:
			return addressPlan{modrm: encbuf.ModRMSibDisp8(regField), hasSIB: true, sib: sibByte, disp: dispI8, dispV: mem.Disp, rexX: rexX, rexB: rexB}
		default:
			return addressPlan{modrm: encbuf.ModRMSibDisp32(regField), hasSIB: true, sib: sibByte, disp: dispI32, dispV: mem.Disp, rexX: rexX, rexB: rexB}
		}
	}

	switch chooseDisp(base, mem.Disp) {
	case dispNone:
		return addressPlan{modrm: encbuf.ModRMIndirectDisp0(regField, base.LowID()), rexB: rexB}
	case dispI8:
		return addressPlan{modrm: encbuf.ModRMIndirectDisp8(regField, base.LowID()), disp: dispI8, dispV: mem.Disp, rexB: rexB}
	default:
		return addressPlan{modrm: encbuf.ModRMIndirectDisp32(regField, base.LowID()), disp: dispI32, dispV: mem.Disp, rexB: rexB}
	}
}

// sibIndexFields returns the SIB index field (4 = "no index"), the scale
// field, and whether the index register is extended (REX.X).
func sibIndexFields(mem isa.Memory) (index, scale uint8, rexX bool) {
	if mem.Index == nil {
		return 4, 0, false
	}
	return mem.Index.LowID(), mem.Scale, mem.Index.IsExtended()
}

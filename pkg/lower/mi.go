package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// MI emits an "opcode r/m, imm" instruction. The immediate's width equals
// the operand's width, except at qword width the immediate is still a
// 32-bit sign-extended field (for a register destination, REX.W is what
// carries the 64-bit intent; a memory destination gets no REX.W).
func MI(enc *encbuf.Encoder, mn isa.Mnemonic, rm isa.RegisterOrMemory, imm int64) error {
	ext, ok := opcode.Ext(mn)
	if !ok {
		panic("lower: no ModR/M extension for " + mn.String())
	}
	size := rm.Size()
	isByte := size == isa.Byte
	bytes, ok := opcode.Of(mn, isa.MI, isByte)
	if !ok {
		panic("lower: no MI opcode for " + mn.String())
	}

	immBytes := size.Bits() / 8
	if size == isa.Qword {
		immBytes = 4
	}

	if !rm.IsMemory {
		reg := rm.Reg
		if err := enc.Reserve(len(bytes) + 1 + immBytes); err != nil {
			return err
		}
		if size == isa.Word {
			enc.Prefix16Bit()
		}
		enc.REX(encbuf.REXBits{W: size == isa.Qword, B: reg.IsExtended(), Force: reg.RequiresRex()})
		for _, b := range bytes {
			enc.Opcode1Byte(b)
		}
		enc.WriteModRM(encbuf.ModRMDirect(ext, reg.LowID()))
		return writeImm(enc, size, imm)
	}

	mem := rm.Mem
	plan := planMemory(ext, mem)
	if err := enc.Reserve(len(bytes) + 9 + immBytes); err != nil {
		return err
	}
	if size == isa.Word {
		enc.Prefix16Bit()
	}
	// Unlike the register-direct branch above, a memory destination never
	// sets REX.W here: the immediate is always written as a 4-byte
	// sign-extended field, and this form's address-side REX bits (X, B)
	// are all a qword memory store needs.
	enc.REX(encbuf.REXBits{X: plan.rexX, B: plan.rexB})
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}
	plan.write(enc)
	return writeImm(enc, size, imm)
}

// writeImm writes an immediate sized per size, sign-extending a qword
// operand's immediate into the 32-bit field the encoding actually carries.
func writeImm(enc *encbuf.Encoder, size isa.PtrSize, imm int64) error {
	switch size {
	case isa.Byte:
		enc.Imm8(uint8(imm))
	case isa.Word:
		enc.Imm16(uint16(imm))
	case isa.Dword, isa.Qword:
		enc.Imm32(uint32(int32(imm)))
	default:
		return ErrOperandSizeMismatch
	}
	return nil
}

package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// OI emits an "opcode reg, imm" instruction with the register folded into
// the opcode byte (B0+rb / B8+rd). The immediate's width must equal the
// register's width; at 64 bits this is the movabs encoding and writes a
// full 8-byte immediate.
func OI(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register, imm int64) error {
	isByte := reg.Width == 8
	bytes, ok := opcode.Of(mn, isa.OI, isByte)
	if !ok {
		panic("lower: no OI opcode for " + mn.String())
	}
	immBytes := int(reg.Width) / 8

	if err := enc.Reserve(len(bytes) + 1 + immBytes); err != nil {
		return err
	}
	if reg.Width == 16 {
		enc.Prefix16Bit()
	}
	enc.REX(encbuf.REXBits{W: reg.Width == 64, B: reg.IsExtended(), Force: reg.RequiresRex()})
	enc.OpcodeWithReg(bytes[0], reg.LowID())

	switch reg.Width {
	case 8:
		enc.Imm8(uint8(imm))
	case 16:
		enc.Imm16(uint16(imm))
	case 32:
		enc.Imm32(uint32(imm))
	case 64:
		enc.Imm64(uint64(imm))
	default:
		return ErrOperandSizeMismatch
	}
	return nil
}

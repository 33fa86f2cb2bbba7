package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// RMI emits "opcode reg, r/m, imm" (imul's three-operand form). reg's
// width must be at least 16 (the byte variant doesn't exist), and a
// memory r/m must not be byte-sized. immSize selects the 8-bit
// sign-extended-immediate opcode (0x6B) or the 32-bit one (0x69); it
// carries no relation to the operand widths.
func RMI(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register, rm isa.RegisterOrMemory, imm int32, immSize isa.PtrSize) error {
	if reg.Width < 16 {
		return ErrOperandSizeMismatch
	}
	if rm.IsMemory && rm.Mem.Size == isa.Byte {
		return ErrOperandSizeMismatch
	}
	isByte := immSize == isa.Byte
	bytes, ok := opcode.Of(mn, isa.RMI, isByte)
	if !ok {
		panic("lower: no RMI opcode for " + mn.String())
	}
	immBytes := 1
	if !isByte {
		immBytes = 4
	}

	if !rm.IsMemory {
		src := rm.Reg
		if err := enc.Reserve(len(bytes) + 2 + immBytes); err != nil {
			return err
		}
		if reg.Width == 16 {
			enc.Prefix16Bit()
		}
		enc.REX(encbuf.REXBits{W: reg.Width == 64, R: reg.IsExtended(), B: src.IsExtended()})
		for _, b := range bytes {
			enc.Opcode1Byte(b)
		}
		enc.WriteModRM(encbuf.ModRMDirect(reg.LowID(), src.LowID()))
	} else {
		plan := planMemory(reg.LowID(), rm.Mem)
		if err := enc.Reserve(len(bytes) + 8 + immBytes); err != nil {
			return err
		}
		if reg.Width == 16 {
			enc.Prefix16Bit()
		}
		enc.REX(encbuf.REXBits{W: reg.Width == 64, R: reg.IsExtended(), X: plan.rexX, B: plan.rexB})
		for _, b := range bytes {
			enc.Opcode1Byte(b)
		}
		plan.write(enc)
	}

	if isByte {
		enc.Imm8(uint8(imm))
	} else {
		enc.Imm32(uint32(imm))
	}
	return nil
}

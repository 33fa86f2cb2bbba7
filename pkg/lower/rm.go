package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// RM emits an "opcode reg, r/m" instruction: reg is the destination, rm is
// the source. Both operands must share the same width. lea is the one
// mnemonic in this family whose "r/m" side is always memory, but RM
// accepts either arm; a register r/m with lea would be a structural bug
// caught upstream by the MIR dispatcher, not here.
func RM(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register, rm isa.RegisterOrMemory) error {
	if mn != isa.Lea && int(reg.Width) != rm.Size().Bits() {
		return ErrOperandSizeMismatch
	}
	isByte := reg.Width == 8
	bytes, ok := opcode.Of(mn, isa.RM, isByte)
	if !ok {
		panic("lower: no RM opcode for " + mn.String())
	}

	if !rm.IsMemory {
		src := rm.Reg
		if err := enc.Reserve(len(bytes) + 2); err != nil {
			return err
		}
		if reg.Width == 16 {
			enc.Prefix16Bit()
		}
		enc.REX(encbuf.REXBits{
			W: reg.Width == 64, R: reg.IsExtended(), B: src.IsExtended(),
			Force: reg.RequiresRex() || src.RequiresRex(),
		})
		for _, b := range bytes {
			enc.Opcode1Byte(b)
		}
		enc.WriteModRM(encbuf.ModRMDirect(reg.LowID(), src.LowID()))
		return nil
	}

	mem := rm.Mem
	plan := planMemory(reg.LowID(), mem)
	if err := enc.Reserve(len(bytes) + 8); err != nil {
		return err
	}
	if reg.Width == 16 {
		enc.Prefix16Bit()
	}
	enc.REX(encbuf.REXBits{
		W: reg.Width == 64, R: reg.IsExtended(), X: plan.rexX, B: plan.rexB,
		Force: reg.RequiresRex(),
	})
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}
	plan.write(enc)
	return nil
}

package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// MR emits an "opcode r/m, reg" instruction: rm is the destination, reg is
// the source. Both operands must share the same width.
func MR(enc *encbuf.Encoder, mn isa.Mnemonic, rm isa.RegisterOrMemory, reg isa.Register) error {
	if int(reg.Width) != rm.Size().Bits() {
		return ErrOperandSizeMismatch
	}
	isByte := reg.Width == 8
	bytes, ok := opcode.Of(mn, isa.MR, isByte)
	if !ok {
		panic("lower: no MR opcode for " + mn.String())
	}

	if !rm.IsMemory {
		dst := rm.Reg
		if err := enc.Reserve(len(bytes) + 2); err != nil {
			return err
		}
		if reg.Width == 16 {
			enc.Prefix16Bit()
		}
		enc.REX(encbuf.REXBits{
			W: reg.Width == 64, R: reg.IsExtended(), B: dst.IsExtended(),
			Force: reg.RequiresRex() || dst.RequiresRex(),
		})
		for _, b := range bytes {
			enc.Opcode1Byte(b)
		}
		enc.WriteModRM(encbuf.ModRMDirect(reg.LowID(), dst.LowID()))
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

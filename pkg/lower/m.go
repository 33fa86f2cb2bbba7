package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// M emits a single-operand r/m instruction (push/pop/jmp/call indirect,
// set-byte). A register operand must be 16 or 64 bits, unless mn is a
// SETcc mnemonic, which requires 8. A memory operand must be word or
// qword-sized, with a 64-bit base register if a base is present.
func M(enc *encbuf.Encoder, mn isa.Mnemonic, rm isa.RegisterOrMemory) error {
	ext, ok := opcode.Ext(mn)
	if !ok {
		panic("lower: no ModR/M extension for " + mn.String())
	}
	bytes, ok := opcode.Of(mn, isa.M, mn.IsSetByte())
	if !ok {
		panic("lower: no M opcode for " + mn.String())
	}

	if !rm.IsMemory {
		reg := rm.Reg
		if mn.IsSetByte() {
			if reg.Width != 8 {
				return ErrOperandSizeMismatch
			}
		} else if reg.Width != 16 && reg.Width != 64 {
			return ErrOperandSizeMismatch
		}
		if err := enc.Reserve(len(bytes) + 2); err != nil {
			return err
		}
		if reg.Width == 16 {
			enc.Prefix16Bit()
		}
		enc.REX(encbuf.REXBits{B: reg.IsExtended(), Force: reg.RequiresRex()})
		for _, b := range bytes {
			enc.Opcode1Byte(b)
		}
		enc.WriteModRM(encbuf.ModRMDirect(ext, reg.LowID()))
		return nil
	}

	mem := rm.Mem
	if mem.Size != isa.Word && mem.Size != isa.Qword {
		return ErrOperandSizeMismatch
	}
	plan := planMemory(ext, mem)
	if err := enc.Reserve(len(bytes) + 8); err != nil {
		return err
	}
	enc.REX(encbuf.REXBits{X: plan.rexX, B: plan.rexB})
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}
	plan.write(enc)
	return nil
}

package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// O emits an opcode-embedded-register instruction (push/pop reg). reg's
// width must be 16 or 64, the push/pop restriction; anything else is an
// operand-size mismatch.
func O(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register) error {
	if reg.Width != 16 && reg.Width != 64 {
		return ErrOperandSizeMismatch
	}
	bytes, ok := opcode.Of(mn, isa.O, false)
	if !ok {
		panic("lower: no O opcode for " + mn.String())
	}
	if err := enc.Reserve(len(bytes) + 2); err != nil {
		return err
	}
	if reg.Width == 16 {
		enc.Prefix16Bit()
	}
	enc.REX(encbuf.REXBits{B: reg.IsExtended()})
	enc.OpcodeWithReg(bytes[0], reg.LowID())
	return nil
}

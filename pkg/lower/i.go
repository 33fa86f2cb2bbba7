package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// I emits an "opcode imm" instruction: ret_near/ret_far (always a 16-bit
// immediate regardless of immSize), the test accumulator form, and
// push-immediate. immSize is the immediate's natural size for every other
// mnemonic; 0x66 is emitted when it resolves to 16 bits, and the byte
// opcode variant is selected when immSize is 8. A qword immSize (test rax)
// emits REX.W and a 32-bit sign-extended immediate.
func I(enc *encbuf.Encoder, mn isa.Mnemonic, imm int64, immSize isa.PtrSize) error {
	if mn == isa.RetNear || mn == isa.RetFar {
		immSize = isa.Word
	}
	isByte := immSize == isa.Byte
	bytes, ok := opcode.Of(mn, isa.I, isByte)
	if !ok {
		panic("lower: no I opcode for " + mn.String())
	}
	if err := enc.Reserve(len(bytes) + immSize.Bits()/8); err != nil {
		return err
	}
	if immSize == isa.Word {
		enc.Prefix16Bit()
	}
	enc.REX(encbuf.REXBits{W: immSize == isa.Qword})
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}
	switch immSize {
	case isa.Byte:
		enc.Imm8(uint8(imm))
	case isa.Word:
		enc.Imm16(uint16(imm))
	case isa.Dword:
		enc.Imm32(uint32(imm))
	case isa.Qword:
		enc.Imm32(uint32(int32(imm)))
	default:
		return ErrOperandSizeMismatch
	}
	return nil
}

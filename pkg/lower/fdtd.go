package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// FD emits "mov rax-family, moffs": reg must be the accumulator (al/ax/
// eax/rax), or ErrRaxOperandExpected. The moffs field's width equals
// reg's width.
func FD(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register, moffs int64) error {
	return moffsForm(enc, mn, reg, moffs, isa.FD)
}

// TD emits "mov moffs, rax-family", the mirror of FD, same constraints.
func TD(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register, moffs int64) error {
	return moffsForm(enc, mn, reg, moffs, isa.TD)
}

func moffsForm(enc *encbuf.Encoder, mn isa.Mnemonic, reg isa.Register, moffs int64, form isa.EncodingForm) error {
	if !isa.IsRaxLike(reg) {
		return ErrRaxOperandExpected
	}
	isByte := reg.Width == 8
	bytes, ok := opcode.Of(mn, form, isByte)
	if !ok {
		panic("lower: no moffs opcode for " + mn.String())
	}
	moffsBytes := int(reg.Width) / 8

	if err := enc.Reserve(len(bytes) + 1 + moffsBytes); err != nil {
		return err
	}
	if reg.Width == 16 {
		enc.Prefix16Bit()
	}
	enc.REX(encbuf.REXBits{W: reg.Width == 64})
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}

	switch reg.Width {
	case 8:
		enc.Imm8(uint8(moffs))
	case 16:
		enc.Imm16(uint16(moffs))
	case 32:
		enc.Imm32(uint32(moffs))
	case 64:
		enc.Imm64(uint64(moffs))
	default:
		return ErrOperandSizeMismatch
	}
	return nil
}

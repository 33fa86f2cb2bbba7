package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// ZO emits a zero-operand instruction: opcode bytes only.
func ZO(enc *encbuf.Encoder, mn isa.Mnemonic) error {
	bytes, ok := opcode.Of(mn, isa.ZO, false)
	if !ok {
		panic("lower: no ZO opcode for " + mn.String())
	}
	if err := enc.Reserve(len(bytes)); err != nil {
		return err
	}
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}
	return nil
}

package lower

import (
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/opcode"
)

// D emits a relative-branch instruction: opcode followed by a 32-bit
// displacement placeholder of 0. The caller is responsible for recording a
// relocation against the placeholder's offset (enc.Len()-4 on return) and
// patching it once the target's offset is known; see pkg/reloc.
func D(enc *encbuf.Encoder, mn isa.Mnemonic) error {
	bytes, ok := opcode.Of(mn, isa.D, false)
	if !ok {
		panic("lower: no D opcode for " + mn.String())
	}
	if err := enc.Reserve(len(bytes) + 4); err != nil {
		return err
	}
	for _, b := range bytes {
		enc.Opcode1Byte(b)
	}
	enc.Disp32(0)
	return nil
}

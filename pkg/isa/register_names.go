package isa

// regNames64/32/16/8 give each of the 16 general-purpose indices' name at
// that width, in IdxAX..IdxR15 order, the table this package's CLI-facing
// ParseRegister and Register.Name walk in both directions.
var (
	regNames64 = [16]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
	regNames32 = [16]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
	regNames16 = [16]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
	regNames8 = [16]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
)

var regNamesHigh = map[string]Register{
	"ah": AH, "ch": CH, "dh": DH, "bh": BH,
}

var registerByName = func() map[string]Register {
	m := make(map[string]Register, 16*4+4)
	for i := 0; i < 16; i++ {
		m[regNames64[i]] = R64(uint8(i))
		m[regNames32[i]] = R32(uint8(i))
		m[regNames16[i]] = R16(uint8(i))
		m[regNames8[i]] = R8(uint8(i))
	}
	for name, r := range regNamesHigh {
		m[name] = r
	}
	return m
}()

// ParseRegister looks up a Register by its conventional assembly name
// (e.g. "rax", "r12d", "bpl", "ah"), the CLI JSON boundary's operand
// vocabulary.
func ParseRegister(name string) (Register, bool) {
	r, ok := registerByName[name]
	return r, ok
}

// Name returns r's conventional assembly name, ParseRegister's inverse.
func (r Register) Name() string {
	if r.HighByte {
		switch r.Index {
		case IdxSP:
			return "ah"
		case IdxBP:
			return "ch"
		case IdxSI:
			return "dh"
		case IdxDI:
			return "bh"
		}
		return "reg(?)"
	}
	switch r.Width {
	case 8:
		return regNames8[r.Index]
	case 16:
		return regNames16[r.Index]
	case 32:
		return regNames32[r.Index]
	case 64:
		return regNames64[r.Index]
	default:
		return "reg(?)"
	}
}

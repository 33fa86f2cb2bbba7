// Package opcode holds the two pure lookup functions that map
// (mnemonic, encoding form, byte-or-not) to raw opcode bytes, and mnemonic
// to ModR/M reg-field extension for opcode-extended forms. Both are
// exhaustive pattern matches, grouped by form, rather than one monolithic
// switch.
package opcode

import "github.com/oisee/x86isel/pkg/isa"

// Of returns the opcode byte(s) for (mn, form), choosing the byte-operand
// variant when isByte is true. The second return is false when the pair is
// unsupported; the caller must treat that as a structural error (an
// assertion failure), never a recoverable runtime condition.
func Of(mn isa.Mnemonic, form isa.EncodingForm, isByte bool) ([]byte, bool) {
	switch form {
	case isa.ZO:
		return zoOpcode(mn)
	case isa.D:
		return dOpcode(mn)
	case isa.M:
		return mOpcode(mn, isByte)
	case isa.O:
		return oOpcode(mn)
	case isa.I:
		return iOpcode(mn, isByte)
	case isa.MI:
		return miOpcode(mn, isByte)
	case isa.MR:
		return mrOpcode(mn, isByte)
	case isa.RM:
		return rmOpcode(mn, isByte)
	case isa.OI:
		return oiOpcode(mn, isByte)
	case isa.FD:
		return fdOpcode(mn, isByte)
	case isa.TD:
		return tdOpcode(mn, isByte)
	case isa.RMI:
		return rmiOpcode(mn, isByte)
	default:
		return nil, false
	}
}

func zoOpcode(mn isa.Mnemonic) ([]byte, bool) {
	switch mn {
	case isa.RetNear:
		return []byte{0xC3}, true
	case isa.RetFar:
		return []byte{0xCB}, true
	case isa.Brk:
		return []byte{0xCC}, true
	case isa.Nop:
		return []byte{0x90}, true
	case isa.Syscall:
		return []byte{0x0F, 0x05}, true
	default:
		return nil, false
	}
}

func dOpcode(mn isa.Mnemonic) ([]byte, bool) {
	switch mn {
	case isa.JmpNear:
		return []byte{0xE9}, true
	case isa.CallNear:
		return []byte{0xE8}, true
	default:
		if cc, ok := mn.ConditionCode(); ok && mn.IsJcc() {
			return []byte{0x0F, 0x80 + cc}, true
		}
		return nil, false
	}
}

func mOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	switch mn {
	case isa.JmpNear, isa.CallNear, isa.Push:
		return []byte{0xFF}, true
	case isa.Pop:
		return []byte{0x8F}, true
	default:
		if cc, ok := mn.ConditionCode(); ok && mn.IsSetByte() {
			return []byte{0x0F, 0x90 + cc}, true
		}
		return nil, false
	}
}

func oOpcode(mn isa.Mnemonic) ([]byte, bool) {
	switch mn {
	case isa.Push:
		return []byte{0x50}, true
	case isa.Pop:
		return []byte{0x58}, true
	default:
		return nil, false
	}
}

func iOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	switch mn {
	case isa.RetNear:
		return []byte{0xC2}, true
	case isa.RetFar:
		return []byte{0xCA}, true
	case isa.Test:
		if isByte {
			return []byte{0xA8}, true
		}
		return []byte{0xA9}, true
	case isa.Push:
		if isByte {
			return []byte{0x6A}, true
		}
		return []byte{0x68}, true
	default:
		return nil, false
	}
}

func miOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	switch mn {
	case isa.Adc, isa.Add, isa.Sub, isa.Xor, isa.And, isa.Or, isa.Sbb, isa.Cmp:
		if isByte {
			return []byte{0x80}, true
		}
		return []byte{0x81}, true
	case isa.Mov:
		if isByte {
			return []byte{0xC6}, true
		}
		return []byte{0xC7}, true
	case isa.Test:
		if isByte {
			return []byte{0xF6}, true
		}
		return []byte{0xF7}, true
	default:
		return nil, false
	}
}

func mrOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	pair, ok := mrArithPairs[mn]
	if !ok {
		return nil, false
	}
	if isByte {
		return []byte{pair[0]}, true
	}
	return []byte{pair[1]}, true
}

// mrArithPairs holds {byte-opcode, word/dword/qword-opcode} for every MR
// mnemonic. RM-form opcodes mirror these (+2) in rmArithPairs, `or`'s
// byte opcode included.
var mrArithPairs = map[isa.Mnemonic][2]byte{
	isa.Adc: {0x10, 0x11},
	isa.Add: {0x00, 0x01},
	isa.Sub: {0x28, 0x29},
	isa.Xor: {0x30, 0x31},
	isa.And: {0x20, 0x21},
	isa.Or:  {0x08, 0x09},
	isa.Sbb: {0x18, 0x19},
	isa.Cmp: {0x38, 0x39},
	isa.Mov: {0x88, 0x89},
}

func rmOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	if mn == isa.Lea {
		if isByte {
			return nil, false
		}
		return []byte{0x8D}, true
	}
	pair, ok := rmArithPairs[mn]
	if !ok {
		return nil, false
	}
	if isByte {
		return []byte{pair[0]}, true
	}
	return []byte{pair[1]}, true
}

// rmArithPairs is mrArithPairs shifted by +2, as the Intel SDM lays out the
// "reg <- r/m" mirror of every "r/m <- reg" arithmetic opcode. `or`'s byte
// and non-byte RM forms are deliberately distinct here (0x0A is OR r8,
// r/m8; mapping both to 0x0B would be a bug).
var rmArithPairs = map[isa.Mnemonic][2]byte{
	isa.Adc: {0x12, 0x13},
	isa.Add: {0x02, 0x03},
	isa.Sub: {0x2A, 0x2B},
	isa.Xor: {0x32, 0x33},
	isa.And: {0x22, 0x23},
	isa.Or:  {0x0A, 0x0B},
	isa.Sbb: {0x1A, 0x1B},
	isa.Cmp: {0x3A, 0x3B},
	isa.Mov: {0x8A, 0x8B},
}

func oiOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	if mn != isa.Mov {
		return nil, false
	}
	if isByte {
		return []byte{0xB0}, true
	}
	return []byte{0xB8}, true
}

func fdOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	if mn != isa.Mov {
		return nil, false
	}
	if isByte {
		return []byte{0xA0}, true
	}
	return []byte{0xA1}, true
}

func tdOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	if mn != isa.Mov {
		return nil, false
	}
	if isByte {
		return []byte{0xA2}, true
	}
	return []byte{0xA3}, true
}

func rmiOpcode(mn isa.Mnemonic, isByte bool) ([]byte, bool) {
	if mn != isa.Imul {
		return nil, false
	}
	if isByte {
		return []byte{0x6B}, true
	}
	return []byte{0x69}, true
}

// Ext returns the ModR/M.reg extension nibble for opcode-extended forms
// (e.g. MI arithmetic, where the specific operation is selected by the
// ModR/M reg field rather than the opcode byte itself).
func Ext(mn isa.Mnemonic) (uint8, bool) {
	switch mn {
	case isa.Add:
		return 0, true
	case isa.Or:
		return 1, true
	case isa.Adc:
		return 2, true
	case isa.Sbb:
		return 3, true
	case isa.And:
		return 4, true
	case isa.Sub:
		return 5, true
	case isa.Xor:
		return 6, true
	case isa.Cmp:
		return 7, true
	case isa.Mov, isa.Test, isa.Pop:
		return 0, true
	case isa.CallNear:
		return 2, true
	case isa.Push:
		return 6, true
	case isa.JmpNear:
		return 4, true
	default:
		if mn.IsSetByte() {
			return 0, true
		}
		return 0, false
	}
}

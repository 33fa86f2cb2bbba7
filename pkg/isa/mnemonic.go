// Package isa holds the closed, machine-independent vocabulary that the
// encoder works over: mnemonics, encoding forms, registers, pointer sizes
// and memory operands. None of these types know how to become bytes; that
// is pkg/opcode and pkg/lower's job.
package isa

// Mnemonic is a closed enumeration of the x86-64 operations this backend
// knows how to encode.
type Mnemonic uint8

const (
	Adc Mnemonic = iota
	Add
	Sub
	Xor
	And
	Or
	Sbb
	Cmp
	Mov
	Lea
	Imul
	Push
	Pop
	Test
	Brk
	Nop
	Syscall
	RetNear
	RetFar
	JmpNear
	CallNear

	// Conditional jumps, in Intel SDM condition-code nibble order (0-15).
	Jo
	Jno
	Jb
	Jae
	Je
	Jne
	Jbe
	Ja
	Js
	Jns
	Jp
	Jnp
	Jl
	Jge
	Jle
	Jg

	// Conditional set-byte family, same condition-code order.
	Seto
	Setno
	Setb
	Setae
	Sete
	Setne
	Setbe
	Seta
	Sets
	Setns
	Setp
	Setnp
	Setl
	Setge
	Setle
	Setg
)

// IsSetByte reports whether m is one of the SETcc family, which always
// encodes an 8-bit register destination.
func (m Mnemonic) IsSetByte() bool {
	return m >= Seto && m <= Setg
}

// IsJcc reports whether m is one of the conditional-jump family.
func (m Mnemonic) IsJcc() bool {
	return m >= Jo && m <= Jg
}

// ConditionCode returns the Intel SDM condition-code nibble (0-15) encoded
// by a Jcc or SETcc mnemonic, and false for anything else.
func (m Mnemonic) ConditionCode() (uint8, bool) {
	switch {
	case m.IsJcc():
		return uint8(m - Jo), true
	case m.IsSetByte():
		return uint8(m - Seto), true
	default:
		return 0, false
	}
}

// String returns a lower-case mnemonic name, mainly for error messages and
// the selftest CLI's report output.
func (m Mnemonic) String() string {
	if s, ok := mnemonicNames[m]; ok {
		return s
	}
	return "mnemonic(?)"
}

var mnemonicNames = map[Mnemonic]string{
	Adc: "adc", Add: "add", Sub: "sub", Xor: "xor", And: "and", Or: "or",
	Sbb: "sbb", Cmp: "cmp", Mov: "mov", Lea: "lea", Imul: "imul",
	Push: "push", Pop: "pop", Test: "test", Brk: "brk", Nop: "nop",
	Syscall: "syscall", RetNear: "ret_near", RetFar: "ret_far",
	JmpNear: "jmp_near", CallNear: "call_near",
	Jo: "jo", Jno: "jno", Jb: "jb", Jae: "jae", Je: "je", Jne: "jne",
	Jbe: "jbe", Ja: "ja", Js: "js", Jns: "jns", Jp: "jp", Jnp: "jnp",
	Jl: "jl", Jge: "jge", Jle: "jle", Jg: "jg",
	Seto: "seto", Setno: "setno", Setb: "setb", Setae: "setae",
	Sete: "sete", Setne: "setne", Setbe: "setbe", Seta: "seta",
	Sets: "sets", Setns: "setns", Setp: "setp", Setnp: "setnp",
	Setl: "setl", Setge: "setge", Setle: "setle", Setg: "setg",
}

var mnemonicByName = func() map[string]Mnemonic {
	m := make(map[string]Mnemonic, len(mnemonicNames))
	for mn, name := range mnemonicNames {
		m[name] = mn
	}
	return m
}()

// ParseMnemonic looks up a Mnemonic by its String() name, the inverse of
// String, used at the CLI's JSON-decoding boundary.
func ParseMnemonic(name string) (Mnemonic, bool) {
	mn, ok := mnemonicByName[name]
	return mn, ok
}

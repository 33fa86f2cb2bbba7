package isa

// Memory describes an x86-64 memory operand. If RipRelative is set, Base
// and Index must both be nil (RIP-relative addressing has no base/index
// registers, only Disp). If Base is present, it must be a 64-bit register:
// 32-bit addressing (which would need the 0x67 address-size override
// prefix) is unimplemented.
type Memory struct {
	Base        *Register
	Index       *Register
	Scale       uint8 // 0..3, meaning 1x/2x/4x/8x; meaningful only if Index != nil
	RipRelative bool
	Disp        int32
	Size        PtrSize
}

// RegisterOrMemory is the tagged union the M/MI/MR/RM/RMI lowerers accept
// for their r/m operand.
type RegisterOrMemory struct {
	IsMemory bool
	Reg      Register
	Mem      Memory
}

// Reg builds a register-valued RegisterOrMemory.
func Reg(r Register) RegisterOrMemory {
	return RegisterOrMemory{Reg: r}
}

// Mem builds a memory-valued RegisterOrMemory.
func Mem(m Memory) RegisterOrMemory {
	return RegisterOrMemory{IsMemory: true, Mem: m}
}

// Size returns the operand's pointer-size tag regardless of which arm of
// the union is populated.
func (rm RegisterOrMemory) Size() PtrSize {
	if rm.IsMemory {
		return rm.Mem.Size
	}
	return PtrSizeFromBits(rm.Reg.Size())
}

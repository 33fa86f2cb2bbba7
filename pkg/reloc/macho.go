package reloc

import "github.com/Binject/debug/macho"

// MachORelocation is one external relocation record this backend emits
// for a call/jmp/lea site that targets a symbol resolved later by the
// linker, rather than another instruction in the same code buffer (unlike
// the branch/LEA backpatches this package resolves internally). The shape
// follows Mach-O's relocation_info: a code offset, a relocation type, and
// whether the referenced address is itself used (PC-relative) rather than
// added.
type MachORelocation struct {
	// Offset is the code-buffer offset of the 4-byte field the linker
	// will patch.
	Offset uint32
	// SymbolIndex identifies the external symbol (or GOT slot) this
	// relocation resolves against; interpretation depends on Type.
	SymbolIndex uint32
	Type        macho.RelocTypeX86_64
	PCRelative  bool
	Length      uint8 // log2 of the field's byte length; 2 means 4 bytes
}

// NewBranchRelocation builds the record for an external call/jmp whose
// rel32 displacement is resolved at link time (X86_64_RELOC_BRANCH).
func NewBranchRelocation(offset, symbolIndex uint32) MachORelocation {
	return MachORelocation{
		Offset:      offset,
		SymbolIndex: symbolIndex,
		Type:        macho.X86_64_RELOC_BRANCH,
		PCRelative:  true,
		Length:      2,
	}
}

// NewGotRelocation builds the record for a GOT-indirect load (used by
// FamLea's GOT-relocation sub-form), X86_64_RELOC_GOT.
func NewGotRelocation(offset, symbolIndex uint32) MachORelocation {
	return MachORelocation{
		Offset:      offset,
		SymbolIndex: symbolIndex,
		Type:        macho.X86_64_RELOC_GOT,
		PCRelative:  true,
		Length:      2,
	}
}

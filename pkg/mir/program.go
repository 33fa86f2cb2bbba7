// Package mir is the columnar MIR table this backend consumes: the
// pre-existing, machine-independent instruction representation that
// register allocation and IR lowering are assumed to have already
// produced. This package only models the table's shape; it performs no
// encoding.
package mir

import "github.com/oisee/x86isel/pkg/isa"

// Family discriminates the MIR tag families this backend dispatches on.
// Each MIR instruction's Tag pairs a Family with the specific isa.Mnemonic it
// operates on, which is how a single columnar "tag" value carries enough
// information for the dispatcher to both pick a family's dispatch rule and
// select the right opcode-table entry.
type Family uint8

const (
	FamBinary         Family = iota // adc/add/sub/xor/and/or/sbb/cmp/mov, flags pick RM/MI/MR
	FamMemImm                       // always MI with memory destination
	FamScaleSrc                     // RM, [base + disp]; the payload's scale is not applied, no SIB index
	FamScaleDst                     // MR, [base + disp]; the payload's scale is not applied, no SIB index
	FamScaleImm                     // MI to scale_dst shape, ImmPair (disp, imm) payload, no scale
	FamMovabs                       // OI 64-bit / FD / TD by flags
	FamLea                          // RM / RIP+imm64 / RIP+GOT-reloc by flags
	FamImulComplex                  // RM / RMI by flags
	FamPush                         // O / M / I by flags
	FamPop                          // O / M by flags
	FamPushCalleeRegs               // bitmask, push in list order
	FamPopCalleeRegs                // bitmask, pop in reverse list order
	FamJmpCall                      // D / M(mem) / M(reg) by flags
	FamJcc                          // D; the condition comes from Tag.Mn, flags are not read
	FamSetcc                        // M, symmetric to FamJcc
	FamTest                         // MI, or I when r/m is rax
	FamRet                          // ZO / I, far/near x with/without imm16
	FamZO                           // brk/nop/syscall
	FamDbgLine
	FamDbgPrologueEnd
	FamDbgEpilogueBegin
	FamArgDbgInfo
	FamCallExtern // rel32 call, displacement 0, external relocation
)

// Tag is one MIR instruction's dispatch key: which family-level rule
// applies, and which mnemonic within that family.
type Tag struct {
	Family Family
	Mn     isa.Mnemonic
}

// Ops is the decoded form of the MIR table's packed 8-bit "ops" column:
// up to two 3-bit register references and a 2-bit flags discriminator.
// Reg1/Reg2 are nil when the corresponding 3-bit field is the reserved
// "none" value (7); the dispatcher's family rules define what "none"
// means for a given tag (e.g. FamBinary flags=01 with Reg2==nil selects
// the MI sub-form).
type Ops struct {
	Reg1  *isa.Register
	Reg2  *isa.Register
	Flags uint8
}

// noReg is the packed-ops encoding for "no register referenced".
const noReg uint8 = 7

// PackOps encodes o into the MIR table's packed byte layout: bits 7-5 are
// reg1's low3 id (or noReg), bits 4-2 are reg2's, bits 1-0 are flags. This
// mirrors the MIR input contract's packed 8-bit encoding explicitly; the
// dispatcher itself works from the decoded Ops struct.
func PackOps(o Ops) uint8 {
	r1 := noReg
	if o.Reg1 != nil {
		r1 = o.Reg1.LowID()
	}
	r2 := noReg
	if o.Reg2 != nil {
		r2 = o.Reg2.LowID()
	}
	return (r1&7)<<5 | (r2&7)<<2 | (o.Flags & 3)
}

// UnpackOps is PackOps's inverse. Because the packed byte only carries a
// 3-bit low id, not a full Register (width is unknown in that encoding by
// design; the caller infers width from the tag's mnemonic), UnpackOps
// returns the raw low3 ids rather than reconstructing full Registers.
func UnpackOps(b uint8) (reg1, reg2 uint8, flags uint8, hasReg1, hasReg2 bool) {
	r1 := (b >> 5) & 7
	r2 := (b >> 2) & 7
	flags = b & 3
	return r1, r2, flags, r1 != noReg, r2 != noReg
}

// DataKind discriminates which field of Data is meaningful.
type DataKind uint8

const (
	DataNone          DataKind = iota
	DataImm                    // imm: i32
	DataInst                   // inst: u32, a MIR instruction index (branch target)
	DataPayload                // payload: u32, index into Program.Extra
	DataExternFn               // extern_fn: u32, index into an external-symbol table
	DataGotEntry               // got_entry: u32, GOT entry index
	DataRegMask                // regs_to_push_or_pop: u64
	DataMemImmPayload          // payload: u32, Extra.ImmPair{A: disp, B: imm}
	DataScalePayload           // payload: u32, Extra.ImmPair{A: scale, B: disp}
)

// Data is the MIR table's per-instruction variant payload.
type Data struct {
	Kind     DataKind
	Imm      int32
	Inst     uint32
	Payload  uint32
	ExternFn uint32
	GotEntry uint32
	RegMask  uint64
}

// ExtraKind discriminates Program.Extra's side-array records.
type ExtraKind uint8

const (
	ExtraImm64 ExtraKind = iota
	ExtraImmPair
	ExtraDbgLineColumn
	ExtraArgDbgInfo
)

// Extra is one side-array record, referenced by a Data.Payload index. A
// single instruction occasionally needs more scalar fields than Ops/Data
// have room for: a scaled-index memory operand's (scale, displacement)
// pair, say, or a mem_imm form's (displacement, immediate) pair. ImmPair's
// two generic int32 slots (A, B) carry whichever pair the owning tag
// family defines; see each FamScale*/FamMemImm case in pkg/isel for which
// is which.
type Extra struct {
	Kind ExtraKind

	Imm64 uint64 // ExtraImm64

	A int32 // ExtraImmPair
	B int32 // ExtraImmPair

	Line   uint32 // ExtraDbgLineColumn
	Column uint32 // ExtraDbgLineColumn

	AirInst  uint32 // ExtraArgDbgInfo
	ArgIndex uint32 // ExtraArgDbgInfo
}

// Instruction is one row of the MIR table, materialized for convenience;
// Program stores the columns separately (Tag/Ops/Data), as the source
// representation is columnar, but exposes Instruction via At for callers
// that want a single value.
type Instruction struct {
	Tag  Tag
	Ops  Ops
	Data Data
}

// Program is the columnar MIR table for one function body: the read-only
// input this backend's session borrows for the duration of a lowering
// pass.
type Program struct {
	Tag   []Tag
	Ops   []Ops
	Data  []Data
	Extra []Extra
}

// Len returns the number of MIR instructions.
func (p *Program) Len() int {
	return len(p.Tag)
}

// At returns instruction i as a single value.
func (p *Program) At(i int) Instruction {
	return Instruction{Tag: p.Tag[i], Ops: p.Ops[i], Data: p.Data[i]}
}

// Append adds one instruction to the table and returns its index.
func (p *Program) Append(tag Tag, ops Ops, data Data) int {
	p.Tag = append(p.Tag, tag)
	p.Ops = append(p.Ops, ops)
	p.Data = append(p.Data, data)
	return len(p.Tag) - 1
}

// AppendExtra adds a side-array record and returns its payload index.
func (p *Program) AppendExtra(e Extra) uint32 {
	p.Extra = append(p.Extra, e)
	return uint32(len(p.Extra) - 1)
}

// Package isel is the MIR dispatcher: it walks a columnar mir.Program in
// index order, drives pkg/lower's per-form encoders, records each
// instruction's code offset, and collects the branch/external relocations
// pkg/reloc and pkg/reloc's MachO record type settle once the whole body
// has been emitted. RIP-relative LEA displacements need no such deferral:
// they're patched inline as soon as the owning instruction's own length is
// known.
package isel

import (
	"fmt"

	"github.com/oisee/x86isel/pkg/dbgline"
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/lower"
	"github.com/oisee/x86isel/pkg/mir"
	"github.com/oisee/x86isel/pkg/reloc"
)

// Result is everything a dispatch pass produces besides the code bytes
// themselves, which the caller reads back from the Encoder it passed in.
type Result struct {
	Offsets     reloc.OffsetMap
	MachORelocs []reloc.MachORelocation
	DebugBytes  []byte
}

// Dispatch lowers every instruction in prog into enc, in order, then
// resolves all internal relocations before returning. sink may be
// dbgline.None{} when no debug-line output is wanted.
func Dispatch(enc *encbuf.Encoder, prog *mir.Program, sink dbgline.Sink) (Result, error) {
	d := &dispatcher{enc: enc, prog: prog, sink: sink}
	d.offsets = make(reloc.OffsetMap, prog.Len())

	for i := 0; i < prog.Len(); i++ {
		d.offsets[i] = enc.Len()
		inst := prog.At(i)
		if err := d.one(i, inst); err != nil {
			return Result{}, fmt.Errorf("isel: mir[%d] (%s): %w", i, inst.Tag.Mn, err)
		}
	}

	if err := reloc.Backpatch(enc, d.offsets, d.branches); err != nil {
		return Result{}, err
	}

	return Result{Offsets: d.offsets, MachORelocs: d.machoRelocs, DebugBytes: sink.Bytes()}, nil
}

type dispatcher struct {
	enc  *encbuf.Encoder
	prog *mir.Program
	sink dbgline.Sink

	offsets     reloc.OffsetMap
	branches    []reloc.BranchRelocation
	machoRelocs []reloc.MachORelocation
}

func (d *dispatcher) one(i int, inst mir.Instruction) error {
	switch inst.Tag.Family {
	case mir.FamBinary:
		return d.binary(inst)
	case mir.FamMemImm:
		return d.memImm(inst)
	case mir.FamScaleSrc:
		return d.scaleSrc(inst)
	case mir.FamScaleDst:
		return d.scaleDst(inst)
	case mir.FamScaleImm:
		return d.scaleImm(inst)
	case mir.FamMovabs:
		return d.movabs(inst)
	case mir.FamLea:
		return d.lea(i, inst)
	case mir.FamImulComplex:
		return d.imulComplex(inst)
	case mir.FamPush:
		return d.push(inst)
	case mir.FamPop:
		return d.pop(inst)
	case mir.FamPushCalleeRegs:
		return d.pushCalleeRegs(inst)
	case mir.FamPopCalleeRegs:
		return d.popCalleeRegs(inst)
	case mir.FamJmpCall:
		return d.jmpCall(i, inst)
	case mir.FamJcc:
		return d.jcc(i, inst)
	case mir.FamSetcc:
		return d.setcc(inst)
	case mir.FamTest:
		return d.test(inst)
	case mir.FamRet:
		return d.ret(inst)
	case mir.FamZO:
		return lower.ZO(d.enc, inst.Tag.Mn)
	case mir.FamDbgLine:
		return d.dbgLine(inst)
	case mir.FamDbgPrologueEnd:
		d.sink.PrologueEnd(d.enc.Len())
		return nil
	case mir.FamDbgEpilogueBegin:
		d.sink.EpilogueBegin(d.enc.Len())
		return nil
	case mir.FamArgDbgInfo:
		return d.argDbgInfo(inst)
	case mir.FamCallExtern:
		return d.callExtern(inst)
	default:
		return ErrIselFail
	}
}

// binary dispatches the shared arithmetic/mov mnemonics (adc/add/sub/xor/
// and/or/sbb/cmp/mov). flags selects the sub-form: 0 = RM (reg <- r/m),
// 1 = MI (r/m <- imm, r/m is reg1), 2 = MR (r/m <- reg, r/m is reg1).
func (d *dispatcher) binary(inst mir.Instruction) error {
	reg1, reg2, flags := inst.Ops.Reg1, inst.Ops.Reg2, inst.Ops.Flags
	switch flags {
	case 0:
		if reg1 == nil || reg2 == nil {
			return ErrIselFail
		}
		return lower.RM(d.enc, inst.Tag.Mn, *reg1, isa.RegisterOrMemory{Reg: *reg2})
	case 1:
		if reg1 == nil || inst.Data.Kind != mir.DataImm {
			return ErrIselFail
		}
		return lower.MI(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{Reg: *reg1}, int64(inst.Data.Imm))
	case 2:
		if reg1 == nil || reg2 == nil {
			return ErrIselFail
		}
		return lower.MR(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{Reg: *reg1}, *reg2)
	default:
		return ErrIselFail
	}
}

// memImm is always MI with a memory destination: reg1 supplies the base
// (nil means RIP-relative/absolute, matching isa.Memory's zero value), the
// displacement and immediate are the ImmPair this tag's payload points at.
func (d *dispatcher) memImm(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataMemImmPayload {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	mem := isa.Memory{Disp: extra.A, Size: ptrSizeFromOps(inst.Ops)}
	if inst.Ops.Reg1 != nil {
		base := *inst.Ops.Reg1
		mem.Base = &base
	} else {
		mem.RipRelative = true
	}
	return lower.MI(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{IsMemory: true, Mem: mem}, int64(extra.B))
}

// scaleSrc is RM with a [base + disp] source: reg1 is the destination
// register, reg2 is the base, and the ImmPair payload carries (scale,
// disp). Scale is read but currently unused, since Ops has no third
// register slot to hold a separate SIB index; a scaled-index addressing
// mode needs a richer MIR encoding than two packed register fields can
// carry, so this dispatcher treats every scale_src/scale_dst/scale_imm
// instruction as a plain based-plus-displacement operand until one exists.
func (d *dispatcher) scaleSrc(inst mir.Instruction) error {
	if inst.Ops.Reg1 == nil || inst.Data.Kind != mir.DataScalePayload {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	mem := isa.Memory{Disp: extra.B, Size: isa.PtrSizeFromBits(inst.Ops.Reg1.Size())}
	if inst.Ops.Reg2 != nil {
		base := *inst.Ops.Reg2
		mem.Base = &base
	} else {
		mem.RipRelative = true
	}
	return lower.RM(d.enc, inst.Tag.Mn, *inst.Ops.Reg1, isa.RegisterOrMemory{IsMemory: true, Mem: mem})
}

// scaleDst mirrors scaleSrc for MR: reg1 is the base, reg2 is the source
// register being stored.
func (d *dispatcher) scaleDst(inst mir.Instruction) error {
	if inst.Ops.Reg2 == nil || inst.Data.Kind != mir.DataScalePayload {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	mem := isa.Memory{Disp: extra.B, Size: isa.PtrSizeFromBits(inst.Ops.Reg2.Size())}
	if inst.Ops.Reg1 != nil {
		base := *inst.Ops.Reg1
		mem.Base = &base
	} else {
		mem.RipRelative = true
	}
	return lower.MR(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{IsMemory: true, Mem: mem}, *inst.Ops.Reg2)
}

// scaleImm is MI into a scale_dst-shaped memory operand.
func (d *dispatcher) scaleImm(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataMemImmPayload {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	mem := isa.Memory{Disp: extra.A, Size: ptrSizeFromOps(inst.Ops)}
	if inst.Ops.Reg1 != nil {
		base := *inst.Ops.Reg1
		mem.Base = &base
	} else {
		mem.RipRelative = true
	}
	return lower.MI(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{IsMemory: true, Mem: mem}, int64(extra.B))
}

// movabs dispatches mov's three non-MR/MI encodings by flags: 0 = OI
// (64-bit immediate-to-register), 1 = FD (moffs-to-accumulator), 2 = TD
// (accumulator-to-moffs).
func (d *dispatcher) movabs(inst mir.Instruction) error {
	if inst.Ops.Reg1 == nil || inst.Data.Kind != mir.DataPayload {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	if extra.Kind != mir.ExtraImm64 {
		return ErrIselFail
	}
	switch inst.Ops.Flags {
	case 0:
		return lower.OI(d.enc, inst.Tag.Mn, *inst.Ops.Reg1, int64(extra.Imm64))
	case 1:
		return lower.FD(d.enc, inst.Tag.Mn, *inst.Ops.Reg1, int64(extra.Imm64))
	case 2:
		return lower.TD(d.enc, inst.Tag.Mn, *inst.Ops.Reg1, int64(extra.Imm64))
	default:
		return ErrIselFail
	}
}

// lea dispatches by flags: 0 = ordinary RM-form lea (reg2 is the base, or
// absent for RIP-relative with a constant Data.Imm displacement), 1 =
// RIP-relative against a 64-bit immediate payload (Extra.Imm64, via
// Data.Payload): disp = imm64 - (instruction length), needing only the
// instruction's own start/end offsets, patched inline once it's emitted,
// 2 = RIP-relative against an external symbol via the GOT (Data.GotEntry),
// requiring a MachO relocation record.
func (d *dispatcher) lea(i int, inst mir.Instruction) error {
	if inst.Ops.Reg1 == nil {
		return ErrIselFail
	}
	switch inst.Ops.Flags {
	case 0:
		mem := isa.Memory{Size: isa.PtrSizeFromBits(inst.Ops.Reg1.Size())}
		if inst.Ops.Reg2 != nil {
			base := *inst.Ops.Reg2
			mem.Base = &base
			if inst.Data.Kind == mir.DataImm {
				mem.Disp = inst.Data.Imm
			}
		} else {
			mem.RipRelative = true
			if inst.Data.Kind == mir.DataImm {
				mem.Disp = inst.Data.Imm
			}
		}
		return lower.RM(d.enc, isa.Lea, *inst.Ops.Reg1, isa.RegisterOrMemory{IsMemory: true, Mem: mem})
	case 1:
		if inst.Data.Kind != mir.DataPayload {
			return ErrIselFail
		}
		extra := d.prog.Extra[inst.Data.Payload]
		if extra.Kind != mir.ExtraImm64 {
			return ErrIselFail
		}
		start := d.offsets[i]
		mem := isa.Memory{RipRelative: true, Size: isa.PtrSizeFromBits(inst.Ops.Reg1.Size())}
		if err := lower.RM(d.enc, isa.Lea, *inst.Ops.Reg1, isa.RegisterOrMemory{IsMemory: true, Mem: mem}); err != nil {
			return err
		}
		end := d.enc.Len()
		disp := int64(extra.Imm64) - int64(end-start)
		if err := reloc.PatchDisp(d.enc, end-4, disp); err != nil {
			return fmt.Errorf("lea rip+imm64: %w", err)
		}
		return nil
	case 2:
		if inst.Data.Kind != mir.DataGotEntry {
			return ErrIselFail
		}
		mem := isa.Memory{RipRelative: true, Size: isa.PtrSizeFromBits(inst.Ops.Reg1.Size())}
		if err := lower.RM(d.enc, isa.Lea, *inst.Ops.Reg1, isa.RegisterOrMemory{IsMemory: true, Mem: mem}); err != nil {
			return err
		}
		d.machoRelocs = append(d.machoRelocs, reloc.NewGotRelocation(uint32(d.enc.Len()-4), inst.Data.GotEntry))
		return nil
	default:
		return ErrIselFail
	}
}

// imulComplex dispatches imul's two/three-operand forms by flags: 0 = RM
// (reg1 *= r/m, reg2 is the r/m side when it's a register), 1 = RMI
// (reg1 = reg2 * imm).
func (d *dispatcher) imulComplex(inst mir.Instruction) error {
	if inst.Ops.Reg1 == nil {
		return ErrIselFail
	}
	switch inst.Ops.Flags {
	case 0:
		if inst.Ops.Reg2 == nil {
			return ErrIselFail
		}
		return lower.RM(d.enc, isa.Imul, *inst.Ops.Reg1, isa.RegisterOrMemory{Reg: *inst.Ops.Reg2})
	case 1:
		if inst.Ops.Reg2 == nil || inst.Data.Kind != mir.DataImm {
			return ErrIselFail
		}
		return lower.RMI(d.enc, isa.Imul, *inst.Ops.Reg1, isa.RegisterOrMemory{Reg: *inst.Ops.Reg2}, inst.Data.Imm, isa.Dword)
	default:
		return ErrIselFail
	}
}

// push dispatches by flags: 0 = O (register), 1 = M (memory), 2 = I
// (immediate).
func (d *dispatcher) push(inst mir.Instruction) error {
	switch inst.Ops.Flags {
	case 0:
		if inst.Ops.Reg1 == nil {
			return ErrIselFail
		}
		return lower.O(d.enc, isa.Push, *inst.Ops.Reg1)
	case 1:
		if inst.Data.Kind != mir.DataMemImmPayload {
			return ErrIselFail
		}
		extra := d.prog.Extra[inst.Data.Payload]
		mem := isa.Memory{Disp: extra.A, Size: isa.Qword}
		if inst.Ops.Reg1 != nil {
			base := *inst.Ops.Reg1
			mem.Base = &base
		} else {
			mem.RipRelative = true
		}
		return lower.M(d.enc, isa.Push, isa.RegisterOrMemory{IsMemory: true, Mem: mem})
	case 2:
		if inst.Data.Kind != mir.DataImm {
			return ErrIselFail
		}
		return lower.I(d.enc, isa.Push, int64(inst.Data.Imm), isa.Dword)
	default:
		return ErrIselFail
	}
}

// pop dispatches by flags: 0 = O (register), 1 = M (memory).
func (d *dispatcher) pop(inst mir.Instruction) error {
	switch inst.Ops.Flags {
	case 0:
		if inst.Ops.Reg1 == nil {
			return ErrIselFail
		}
		return lower.O(d.enc, isa.Pop, *inst.Ops.Reg1)
	case 1:
		if inst.Data.Kind != mir.DataMemImmPayload {
			return ErrIselFail
		}
		extra := d.prog.Extra[inst.Data.Payload]
		mem := isa.Memory{Disp: extra.A, Size: isa.Qword}
		if inst.Ops.Reg1 != nil {
			base := *inst.Ops.Reg1
			mem.Base = &base
		} else {
			mem.RipRelative = true
		}
		return lower.M(d.enc, isa.Pop, isa.RegisterOrMemory{IsMemory: true, Mem: mem})
	default:
		return ErrIselFail
	}
}

// calleePreserved lists the registers a bitmask push/pop sweeps, in the
// fixed order the System V AMD64 callee-saved set is conventionally
// saved/restored.
var calleePreserved = []isa.Register{
	isa.RBX, isa.RBP, isa.R12, isa.R13, isa.R14, isa.R15,
}

func (d *dispatcher) pushCalleeRegs(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataRegMask {
		return ErrIselFail
	}
	for i, reg := range calleePreserved {
		if inst.Data.RegMask&(1<<uint(i)) == 0 {
			continue
		}
		if err := lower.O(d.enc, isa.Push, reg); err != nil {
			return err
		}
	}
	return nil
}

func (d *dispatcher) popCalleeRegs(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataRegMask {
		return ErrIselFail
	}
	for i := len(calleePreserved) - 1; i >= 0; i-- {
		if inst.Data.RegMask&(1<<uint(i)) == 0 {
			continue
		}
		if err := lower.O(d.enc, isa.Pop, calleePreserved[i]); err != nil {
			return err
		}
	}
	return nil
}

// jmpCall dispatches by flags: 0 = D (direct, relative to a MIR target),
// 1 = M with a memory r/m, 2 = M with a register r/m.
func (d *dispatcher) jmpCall(i int, inst mir.Instruction) error {
	switch inst.Ops.Flags {
	case 0:
		if inst.Data.Kind != mir.DataInst {
			return ErrIselFail
		}
		if err := lower.D(d.enc, inst.Tag.Mn); err != nil {
			return err
		}
		end := d.enc.Len()
		d.branches = append(d.branches, reloc.BranchRelocation{
			SiteOffset:     end - 4,
			InstrEndOffset: end,
			TargetMIRIndex: int(inst.Data.Inst),
		})
		return nil
	case 1:
		if inst.Data.Kind != mir.DataMemImmPayload {
			return ErrIselFail
		}
		extra := d.prog.Extra[inst.Data.Payload]
		mem := isa.Memory{Disp: extra.A, Size: isa.Qword}
		if inst.Ops.Reg1 != nil {
			base := *inst.Ops.Reg1
			mem.Base = &base
		} else {
			mem.RipRelative = true
		}
		return lower.M(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{IsMemory: true, Mem: mem})
	case 2:
		if inst.Ops.Reg1 == nil {
			return ErrIselFail
		}
		return lower.M(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{Reg: *inst.Ops.Reg1})
	default:
		return ErrIselFail
	}
}

func (d *dispatcher) jcc(i int, inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataInst {
		return ErrIselFail
	}
	if err := lower.D(d.enc, inst.Tag.Mn); err != nil {
		return err
	}
	end := d.enc.Len()
	d.branches = append(d.branches, reloc.BranchRelocation{
		SiteOffset:     end - 4,
		InstrEndOffset: end,
		TargetMIRIndex: int(inst.Data.Inst),
	})
	return nil
}

func (d *dispatcher) setcc(inst mir.Instruction) error {
	if inst.Ops.Reg1 == nil {
		return ErrIselFail
	}
	return lower.M(d.enc, inst.Tag.Mn, isa.RegisterOrMemory{Reg: *inst.Ops.Reg1})
}

// test dispatches MI, falling back to the shorter I-form when the r/m
// side is an accumulator register (rax/eax/ax/al).
func (d *dispatcher) test(inst mir.Instruction) error {
	if inst.Ops.Reg1 == nil || inst.Data.Kind != mir.DataImm {
		return ErrIselFail
	}
	if isa.IsRaxLike(*inst.Ops.Reg1) {
		return lower.I(d.enc, isa.Test, int64(inst.Data.Imm), isa.PtrSizeFromBits(inst.Ops.Reg1.Size()))
	}
	return lower.MI(d.enc, isa.Test, isa.RegisterOrMemory{Reg: *inst.Ops.Reg1}, int64(inst.Data.Imm))
}

// ret dispatches ZO (no operands) or I (imm16, the "ret N" stack-cleanup
// form) by whether Data carries an immediate.
func (d *dispatcher) ret(inst mir.Instruction) error {
	if inst.Data.Kind == mir.DataImm {
		return lower.I(d.enc, inst.Tag.Mn, int64(inst.Data.Imm), isa.Word)
	}
	return lower.ZO(d.enc, inst.Tag.Mn)
}

func (d *dispatcher) dbgLine(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataPayload {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	if extra.Kind != mir.ExtraDbgLineColumn {
		return ErrIselFail
	}
	d.sink.Line(d.enc.Len(), extra.Line, extra.Column)
	return nil
}

func (d *dispatcher) argDbgInfo(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataPayload || inst.Ops.Reg1 == nil {
		return ErrIselFail
	}
	extra := d.prog.Extra[inst.Data.Payload]
	if extra.Kind != mir.ExtraArgDbgInfo {
		return ErrIselFail
	}
	d.sink.ArgInfo(extra.AirInst, extra.ArgIndex, inst.Ops.Reg1.LowID())
	return nil
}

// callExtern always emits a near call with a 0 displacement placeholder
// and a MachO branch relocation against the external symbol; the
// displacement is never resolved internally, unlike jmpCall/jcc.
func (d *dispatcher) callExtern(inst mir.Instruction) error {
	if inst.Data.Kind != mir.DataExternFn {
		return ErrIselFail
	}
	if err := lower.D(d.enc, isa.CallNear); err != nil {
		return err
	}
	d.machoRelocs = append(d.machoRelocs, reloc.NewBranchRelocation(uint32(d.enc.Len()-4), inst.Data.ExternFn))
	return nil
}

// ptrSizeFromOps recovers the operand width a mem_imm-family instruction
// addresses at: this dispatcher's MIR contract encodes it as reg1's width
// when a base register is present, and otherwise relies on the tag's
// mnemonic-independent default of a full qword (an absolute/RIP-relative
// store with no sizing register in Ops must carry its width some other
// way in a richer MIR producer; qword is this backend's safe default).
func ptrSizeFromOps(ops mir.Ops) isa.PtrSize {
	if ops.Reg1 != nil {
		return isa.PtrSizeFromBits(ops.Reg1.Size())
	}
	return isa.Qword
}

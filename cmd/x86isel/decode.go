package main

import (
	"fmt"

	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/mir"
)

func newProgramDecoder(jp jsonProgram) (*mir.Program, error) {
	prog := &mir.Program{}

	for _, je := range jp.Extra {
		var kind mir.ExtraKind
		switch je.Kind {
		case "imm64":
			kind = mir.ExtraImm64
		case "imm_pair":
			kind = mir.ExtraImmPair
		case "dbg_line_column":
			kind = mir.ExtraDbgLineColumn
		case "arg_dbg_info":
			kind = mir.ExtraArgDbgInfo
		default:
			return nil, fmt.Errorf("unknown extra kind %q", je.Kind)
		}
		prog.Extra = append(prog.Extra, mir.Extra{
			Kind: kind, Imm64: je.Imm64, A: je.A, B: je.B,
			Line: je.Line, Column: je.Column,
			AirInst: je.AirInst, ArgIndex: je.ArgIdx,
		})
	}

	for idx, ji := range jp.Instructions {
		fam, ok := mir.ParseFamily(ji.Family)
		if !ok {
			return nil, fmt.Errorf("instruction %d: unknown family %q", idx, ji.Family)
		}
		mn, ok := isa.ParseMnemonic(ji.Mn)
		if !ok {
			return nil, fmt.Errorf("instruction %d: unknown mnemonic %q", idx, ji.Mn)
		}

		ops := mir.Ops{Flags: ji.Flags}
		if ji.Reg1 != "" {
			r, ok := isa.ParseRegister(ji.Reg1)
			if !ok {
				return nil, fmt.Errorf("instruction %d: unknown register %q", idx, ji.Reg1)
			}
			ops.Reg1 = &r
		}
		if ji.Reg2 != "" {
			r, ok := isa.ParseRegister(ji.Reg2)
			if !ok {
				return nil, fmt.Errorf("instruction %d: unknown register %q", idx, ji.Reg2)
			}
			ops.Reg2 = &r
		}

		var kind mir.DataKind
		switch ji.Data.Kind {
		case "", "none":
			kind = mir.DataNone
		case "imm":
			kind = mir.DataImm
		case "inst":
			kind = mir.DataInst
		case "payload":
			kind = mir.DataPayload
		case "extern_fn":
			kind = mir.DataExternFn
		case "got_entry":
			kind = mir.DataGotEntry
		case "reg_mask":
			kind = mir.DataRegMask
		case "mem_imm_payload":
			kind = mir.DataMemImmPayload
		case "scale_payload":
			kind = mir.DataScalePayload
		default:
			return nil, fmt.Errorf("instruction %d: unknown data kind %q", idx, ji.Data.Kind)
		}

		data := mir.Data{
			Kind: kind, Imm: ji.Data.Imm, Inst: ji.Data.Inst,
			Payload: ji.Data.Payload, ExternFn: ji.Data.ExternFn,
			GotEntry: ji.Data.GotEntry, RegMask: ji.Data.RegMask,
		}

		prog.Append(mir.Tag{Family: fam, Mn: mn}, ops, data)
	}

	return prog, nil
}

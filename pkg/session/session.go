// Package session owns one function body's lowering pass end to end: it
// allocates the code buffer, drives the MIR dispatcher, and hands back the
// finished machine code plus relocation/debug output. A Session is
// single-use, holding no state across function bodies, and keeps exactly
// one error slot, set by the first failure encountered and never
// overwritten after.
package session

import (
	"github.com/oisee/x86isel/pkg/dbgline"
	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isel"
	"github.com/oisee/x86isel/pkg/mir"
	"github.com/oisee/x86isel/pkg/reloc"
)

// Output is what one Session.Encode call produces.
type Output struct {
	Code        []byte
	Offsets     reloc.OffsetMap
	MachORelocs []reloc.MachORelocation
	DebugBytes  []byte

	// DebugInfoBytes and TypeRelocs are populated only when the session's
	// debug format is DebugDWARF: the DW_TAG_formal_parameter entries
	// arg_dbg_info MIR instructions produced, and their pending
	// type-attribute relocations, drained from the DWARF sink once
	// lowering completes.
	DebugInfoBytes []byte
	TypeRelocs     []dbgline.TypeReloc
}

// Session lowers one mir.Program at a time. Its zero value is usable with
// DefaultConfig semantics; use New for an explicit Config.
type Session struct {
	cfg Config
	err error
}

// New returns a Session configured per cfg.
func New(cfg Config) *Session {
	return &Session{cfg: cfg}
}

// Err returns the first error Encode (or any future Session operation)
// encountered, or nil. Once set, it is never cleared or overwritten; the
// Session is considered poisoned and must be discarded.
func (s *Session) Err() error {
	return s.err
}

// Encode lowers prog into machine code. On failure it records the error
// in the Session's single error slot and also returns it; the Session
// must not be reused afterward.
func (s *Session) Encode(prog *mir.Program) (Output, error) {
	if s.err != nil {
		return Output{}, s.err
	}

	sink := s.newSink()
	enc := encbuf.New(s.capacityHint(prog))

	result, err := isel.Dispatch(enc, prog, sink)
	if err != nil {
		s.err = err
		return Output{}, err
	}

	out := Output{
		Code:        enc.Bytes(),
		Offsets:     result.Offsets,
		MachORelocs: result.MachORelocs,
		DebugBytes:  result.DebugBytes,
	}
	if dw, ok := sink.(*dbgline.DWARFSink); ok {
		out.DebugInfoBytes = dw.DebugInfoBytes()
		out.TypeRelocs = dw.TypeRelocs()
	}
	return out, nil
}

func (s *Session) newSink() dbgline.Sink {
	switch s.cfg.Debug.Format {
	case DebugDWARF:
		return dbgline.NewDWARFSink()
	case DebugPlan9:
		return dbgline.NewPlan9Sink(s.cfg.Debug.Quantum)
	default:
		return dbgline.None{}
	}
}

// capacityHint estimates a starting buffer size so Encode rarely needs to
// reallocate mid-pass: the config's explicit hint if set, or a per-
// instruction average otherwise.
func (s *Session) capacityHint(prog *mir.Program) int {
	if s.cfg.CapacityHint > 0 {
		return s.cfg.CapacityHint
	}
	const avgInstrBytes = 6
	return prog.Len() * avgInstrBytes
}

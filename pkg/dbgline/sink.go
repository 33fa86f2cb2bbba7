// Package dbgline turns FamDbgLine/FamDbgPrologueEnd/FamDbgEpilogueBegin/
// FamArgDbgInfo MIR instructions into a line-number program, in either
// DWARF or Plan9 form, or drops them entirely when no debug sink is
// configured.
package dbgline

// Sink receives debug-line events as the isel dispatcher walks the MIR
// program, in code-offset order. A Sink is single-use, scoped to one
// function body's lowering pass, matching the rest of this backend's
// no-persistent-state design.
type Sink interface {
	// Line records that codeOffset now corresponds to (line, column) in
	// the original source.
	Line(codeOffset int, line, column uint32)
	// PrologueEnd marks codeOffset as the first instruction after the
	// function's prologue, the recommended breakpoint location.
	PrologueEnd(codeOffset int)
	// EpilogueBegin marks codeOffset as the start of the function's
	// epilogue.
	EpilogueBegin(codeOffset int)
	// ArgInfo records that MIR instruction airInst's argIndex'th
	// parameter lives in reg for the remainder of the function, for
	// call-frame/variable-location info.
	ArgInfo(airInst, argIndex uint32, reg uint8)
	// Bytes returns the finished line-number program, once the function
	// body is fully lowered.
	Bytes() []byte
}

// None is a Sink that discards every event, the default when no debug
// sink is configured.
type None struct{}

func (None) Line(int, uint32, uint32)      {}
func (None) PrologueEnd(int)               {}
func (None) EpilogueBegin(int)             {}
func (None) ArgInfo(uint32, uint32, uint8) {}
func (None) Bytes() []byte                 { return nil }

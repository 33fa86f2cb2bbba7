package dbgline

// Plan9Sink accumulates a Plan9-style pcline table using liblink's
// quantum-based pctab encoding: a PC advance of Δpc bytes (Δpc > 0) emits
// one byte, ((Δpc−q)/q)+128−q, where q is the target's quantum (the
// smallest instruction length the ISA ever emits); a Δpc ≤ 0 contributes
// no byte at all, since the table only ever walks forward.
type Plan9Sink struct {
	buf      []byte
	lastAddr int
	lastLine int
	quantum  int

	// OpIndex is the running PC-op-change index: each emitted PC byte
	// advances it by one, so sibling tables (pcfile, pcstmt) keyed to the
	// same op sequence can be re-indexed against this sink's output.
	OpIndex int
}

// NewPlan9Sink returns an empty Plan9 pcline sink using the given
// per-architecture quantum. x86-64's variable-length encoding has no
// fixed instruction size, so its quantum is 1; quantum <= 0 is treated as
// 1 rather than producing a divide-by-zero.
func NewPlan9Sink(quantum int) *Plan9Sink {
	if quantum <= 0 {
		quantum = 1
	}
	return &Plan9Sink{lastLine: 1, quantum: quantum}
}

// Line records a PC/line pair. The line counter itself is driven by the
// caller's collaborator hook (the line value MIR supplies); this sink's
// only job is the PC side: emit the quantized advance byte when the code
// moved forward, and suppress it otherwise.
func (s *Plan9Sink) Line(codeOffset int, line, _ uint32) {
	delta := codeOffset - s.lastAddr
	if delta > 0 {
		s.lastLine = int(line)
		q := s.quantum
		s.buf = append(s.buf, byte(((delta-q)/q)+128-q))
		s.OpIndex++
	}
	s.lastAddr = codeOffset
}

// PrologueEnd and EpilogueBegin have no Plan9 pcline equivalent; Plan9's
// table only tracks line numbers, so these markers are silently dropped
// when Plan9Sink is the configured sink.
func (s *Plan9Sink) PrologueEnd(int)   {}
func (s *Plan9Sink) EpilogueBegin(int) {}

// ArgInfo likewise has no home in a pcline table; argument locations are
// a DWARF-only concept in this backend (matches Plan9's own toolchain,
// which derives argument layout from the function's frame pointer
// convention instead of an explicit table).
func (s *Plan9Sink) ArgInfo(uint32, uint32, uint8) {}

func (s *Plan9Sink) Bytes() []byte {
	return s.buf
}

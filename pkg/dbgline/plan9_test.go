package dbgline

import "testing"

func TestPlan9SinkQuantumFormula(t *testing.T) {
	s := NewPlan9Sink(1)
	s.Line(0, 1, 0) // Δpc = 0, suppressed
	s.Line(4, 2, 0) // Δpc = 4, q = 1: ((4-1)/1)+128-1 = 130

	want := []byte{130}
	buf := s.Bytes()
	if len(buf) != len(want) {
		t.Fatalf("len(buf) = %d, want %d (% x)", len(buf), len(want), buf)
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %d, want %d", i, buf[i], want[i])
		}
	}
	if s.OpIndex != 1 {
		t.Errorf("OpIndex = %d, want 1", s.OpIndex)
	}
}

func TestPlan9SinkNonPositiveDeltaSuppressed(t *testing.T) {
	s := NewPlan9Sink(1)
	s.Line(10, 1, 0) // Δpc = 10 from address 0: one byte
	s.Line(10, 2, 0) // Δpc = 0: no byte
	s.Line(8, 3, 0)  // Δpc = -2: no byte
	if len(s.Bytes()) != 1 {
		t.Fatalf("expected only the Δpc = 10 byte, no PC bytes for Δpc <= 0, got % x", s.Bytes())
	}
	if s.OpIndex != 1 {
		t.Errorf("OpIndex = %d, want 1", s.OpIndex)
	}
}

func TestPlan9SinkQuantumFour(t *testing.T) {
	// A quantum of 4 (e.g. a fixed-width ISA) changes the formula's scale.
	s := NewPlan9Sink(4)
	s.Line(0, 1, 0)
	s.Line(8, 2, 0) // Δpc = 8, q = 4: ((8-4)/4)+128-4 = 1+124 = 125
	want := []byte{125}
	if buf := s.Bytes(); len(buf) != 1 || buf[0] != want[0] {
		t.Fatalf("got % x, want % x", buf, want)
	}
}

func TestPlan9SinkIgnoresPrologueAndArgInfo(t *testing.T) {
	s := NewPlan9Sink(1)
	s.PrologueEnd(4)
	s.EpilogueBegin(8)
	s.ArgInfo(1, 0, 2)
	if len(s.Bytes()) != 0 {
		t.Error("Plan9Sink should ignore markers it has no table slot for")
	}
}

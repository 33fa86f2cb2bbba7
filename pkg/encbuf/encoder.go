// Package encbuf is the byte-level writer at the bottom of the encoding
// stack: it knows how to emit REX prefixes, ModR/M and SIB bytes,
// displacements and immediates into a growing code buffer, and nothing
// about mnemonics or operand semantics. pkg/lower drives it.
package encbuf

import "encoding/binary"

// maxCodeSize bounds a single function body's code buffer. Real function
// bodies are nowhere near this; it exists so Reserve has a failure mode to
// report.
const maxCodeSize = 1 << 30

// Encoder accumulates the machine code bytes for one function body. It is
// the sole owner of its buffer for the lifetime of a lowering session and
// performs no I/O.
type Encoder struct {
	buf []byte
}

// New returns an empty Encoder, optionally pre-sizing its backing array.
func New(capacityHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacityHint)}
}

// Len returns the number of bytes written so far, equivalently the offset
// the next byte will land at.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Bytes returns the accumulated code buffer. The caller (the linker
// collaborator) takes ownership; the Encoder must not be reused afterward.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reserve ensures at least n more bytes of capacity are available.
func (e *Encoder) Reserve(n int) error {
	if n < 0 || len(e.buf)+n > maxCodeSize {
		return ErrOutOfMemory
	}
	if cap(e.buf)-len(e.buf) >= n {
		return nil
	}
	grown := make([]byte, len(e.buf), len(e.buf)+n)
	copy(grown, e.buf)
	e.buf = grown
	return nil
}

func (e *Encoder) emit(b ...byte) {
	e.buf = append(e.buf, b...)
}

// REXBits are the four bits of a REX prefix, already resolved by the
// caller from operand width and register-extension requirements. Force
// requests an empty REX (0x40) even when W/R/X/B are all clear, needed to
// disambiguate spl/bpl/sil/dil from the legacy ah/bh/ch/dh encodings that
// share the same low3 id range at width 8.
type REXBits struct {
	W, R, X, B bool
	Force      bool
}

// Any reports whether any bit is set, or emission is forced. REX is only
// emitted when this is true.
func (r REXBits) Any() bool {
	return r.W || r.R || r.X || r.B || r.Force
}

// REX emits a REX prefix iff any bit of bits is set. Callers are
// responsible for setting W for 64-bit operand size, Force for
// spl/bpl/sil/dil, R for an extended ModR/M.reg,
// B for an extended ModR/M.rm/SIB.base/opcode-embedded register, and X for
// an extended SIB.index.
func (e *Encoder) REX(bits REXBits) {
	if !bits.Any() {
		return
	}
	b := byte(0x40)
	if bits.W {
		b |= 1 << 3
	}
	if bits.R {
		b |= 1 << 2
	}
	if bits.X {
		b |= 1 << 1
	}
	if bits.B {
		b |= 1 << 0
	}
	e.emit(b)
}

// Prefix16Bit emits the 0x66 operand-size override prefix.
func (e *Encoder) Prefix16Bit() {
	e.emit(0x66)
}

// Opcode1Byte emits a single opcode byte.
func (e *Encoder) Opcode1Byte(b byte) {
	e.emit(b)
}

// Opcode2Byte emits a two-byte opcode: the 0x0F escape followed by b2.
func (e *Encoder) Opcode2Byte(b2 byte) {
	e.emit(0x0F, b2)
}

// OpcodeWithReg emits an opcode with a register's low 3 bits folded into
// its low nibble, used by the O and OI forms (e.g. B8+rd).
func (e *Encoder) OpcodeWithReg(b byte, low3 uint8) {
	e.emit(b | (low3 & 7))
}

// ModRMDirect builds a mod=11 ModR/M byte (register-direct addressing).
func ModRMDirect(regOrExt, rm uint8) byte {
	return 0xC0 | (regOrExt&7)<<3 | rm&7
}

// ModRMIndirectDisp0 builds a mod=00 ModR/M byte. rm must not be 4 (SIB
// escape) or 5 (RIP-relative escape); those are routed through
// ModRMSibDisp0/ModRMRipDisp32 instead.
func ModRMIndirectDisp0(reg, rm uint8) byte {
	return 0x00 | (reg&7)<<3 | rm&7
}

// ModRMIndirectDisp8 builds a mod=01 ModR/M byte.
func ModRMIndirectDisp8(reg, rm uint8) byte {
	return 0x40 | (reg&7)<<3 | rm&7
}

// ModRMIndirectDisp32 builds a mod=10 ModR/M byte.
func ModRMIndirectDisp32(reg, rm uint8) byte {
	return 0x80 | (reg&7)<<3 | rm&7
}

// ModRMSibDisp0 builds a mod=00 rm=4 ModR/M byte (SIB follows, no
// displacement).
func ModRMSibDisp0(reg uint8) byte {
	return 0x00 | (reg&7)<<3 | 4
}

// ModRMSibDisp8 builds a mod=01 rm=4 ModR/M byte (SIB + disp8 follow).
func ModRMSibDisp8(reg uint8) byte {
	return 0x40 | (reg&7)<<3 | 4
}

// ModRMSibDisp32 builds a mod=10 rm=4 ModR/M byte (SIB + disp32 follow).
func ModRMSibDisp32(reg uint8) byte {
	return 0x80 | (reg&7)<<3 | 4
}

// ModRMRipDisp32 builds a mod=00 rm=5 ModR/M byte: RIP-relative
// addressing, always followed by a disp32.
func ModRMRipDisp32(reg uint8) byte {
	return 0x00 | (reg&7)<<3 | 5
}

// SIB builds a SIB byte from a 2-bit scale and the low3 id of the index
// and base registers. index==4 means "no index" (the encoding reserved for
// it); base==5 with mod=00 means "no base, disp32 follows".
func SIB(scale, index, base uint8) byte {
	return (scale&3)<<6 | (index&7)<<3 | base&7
}

func (e *Encoder) WriteModRM(b byte) { e.emit(b) }
func (e *Encoder) WriteSIB(b byte)   { e.emit(b) }

// Disp8 writes a single signed 8-bit displacement byte.
func (e *Encoder) Disp8(v int8) {
	e.emit(byte(v))
}

// Disp32 writes a little-endian signed 32-bit displacement.
func (e *Encoder) Disp32(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	e.emit(tmp[:]...)
}

// Imm8 writes a single immediate byte.
func (e *Encoder) Imm8(v uint8) {
	e.emit(v)
}

// Imm16 writes a little-endian 16-bit immediate.
func (e *Encoder) Imm16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	e.emit(tmp[:]...)
}

// Imm32 writes a little-endian 32-bit immediate.
func (e *Encoder) Imm32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.emit(tmp[:]...)
}

// Imm64 writes a little-endian 64-bit immediate (the movabs encoding).
func (e *Encoder) Imm64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	e.emit(tmp[:]...)
}

// PatchI32LE overwrites 4 bytes at offset with a little-endian i32. Used by
// pkg/reloc's branch back-patcher, which runs after the whole function body
// has been emitted, and by the LEA RIP-relative patch pkg/isel applies
// right after the lea itself is emitted.
func (e *Encoder) PatchI32LE(offset int, v int32) {
	binary.LittleEndian.PutUint32(e.buf[offset:offset+4], uint32(v))
}

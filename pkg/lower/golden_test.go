package lower_test

import (
	"bytes"
	"testing"

	"github.com/oisee/x86isel/pkg/encbuf"
	"github.com/oisee/x86isel/pkg/isa"
	"github.com/oisee/x86isel/pkg/lower"
)

// TestGoldenScenarios reproduces the end-to-end encoding scenarios every
// lowerer/opcode-table/addressing decision in this package was checked
// against by hand, byte for byte.
func TestGoldenScenarios(t *testing.T) {
	cases := []struct {
		name   string
		want   []byte
		encode func(*encbuf.Encoder) error
	}{
		{
			name: "mov rax, 0x10",
			want: []byte{0x48, 0xC7, 0xC0, 0x10, 0x00, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				return lower.MI(enc, isa.Mov, isa.Reg(isa.RAX), 0x10)
			},
		},
		{
			name: "mov qword ptr [r11 + 0], 0x10",
			want: []byte{0x41, 0xC7, 0x03, 0x10, 0x00, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				base := isa.R64(isa.IdxR11)
				return lower.MI(enc, isa.Mov, isa.Mem(isa.Memory{Base: &base, Size: isa.Qword}), 0x10)
			},
		},
		{
			name: "sub dword ptr [r11 + 0x10000000], 0x10",
			want: []byte{0x41, 0x81, 0xAB, 0x00, 0x00, 0x00, 0x10, 0x10, 0x00, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				base := isa.R64(isa.IdxR11)
				mem := isa.Memory{Base: &base, Disp: 0x10000000, Size: isa.Dword}
				return lower.MI(enc, isa.Sub, isa.Mem(mem), 0x10)
			},
		},
		{
			name: "mov qword ptr [rip + 0x10], 0x10",
			want: []byte{0xC7, 0x05, 0x10, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				mem := isa.Memory{RipRelative: true, Disp: 0x10, Size: isa.Qword}
				return lower.MI(enc, isa.Mov, isa.Mem(mem), 0x10)
			},
		},
		{
			name: "lea rax, [rip + 0x10]",
			want: []byte{0x48, 0x8D, 0x05, 0x10, 0x00, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				mem := isa.Memory{RipRelative: true, Disp: 0x10, Size: isa.Qword}
				return lower.RM(enc, isa.Lea, isa.RAX, isa.Mem(mem))
			},
		},
		{
			name: "movabs rax, 0x1000000000000000",
			want: []byte{0x48, 0xB8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10},
			encode: func(enc *encbuf.Encoder) error {
				return lower.OI(enc, isa.Mov, isa.RAX, 0x1000000000000000)
			},
		},
		{
			name: "imul rax, qword ptr [rbp - 8], 0x10",
			want: []byte{0x48, 0x69, 0x45, 0xF8, 0x10, 0x00, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				mem := isa.Memory{Base: &isa.RBP, Disp: -8, Size: isa.Qword}
				return lower.RMI(enc, isa.Imul, isa.RAX, isa.Mem(mem), 0x10, isa.Dword)
			},
		},
		{
			name: "jmp qword ptr [r12 + 0x1000]",
			want: []byte{0x41, 0xFF, 0xA4, 0x24, 0x00, 0x10, 0x00, 0x00},
			encode: func(enc *encbuf.Encoder) error {
				mem := isa.Memory{Base: &isa.R12, Disp: 0x1000, Size: isa.Qword}
				return lower.M(enc, isa.JmpNear, isa.Mem(mem))
			},
		},
		{
			name: "seta r11b",
			want: []byte{0x41, 0x0F, 0x97, 0xC3},
			encode: func(enc *encbuf.Encoder) error {
				return lower.M(enc, isa.Seta, isa.Reg(isa.R8(isa.IdxR11)))
			},
		},
		{
			name: "push r12w",
			want: []byte{0x66, 0x41, 0x54},
			encode: func(enc *encbuf.Encoder) error {
				return lower.O(enc, isa.Push, isa.R16(isa.IdxR12))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc := encbuf.New(16)
			if err := tc.encode(enc); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got := enc.Bytes(); !bytes.Equal(got, tc.want) {
				t.Errorf("got % x, want % x", got, tc.want)
			}
		})
	}
}

package lower

import (
	"testing"

	"github.com/oisee/x86isel/pkg/isa"
)

// TestAddressingTable exercises the addressing-mode selection rules
// directly against planMemory, separately from the golden end-to-end
// scenarios (which only hit a subset).
func TestAddressingTable(t *testing.T) {
	r11 := isa.R64(isa.IdxR11)

	cases := []struct {
		name       string
		mem        isa.Memory
		wantModRM  byte
		wantSIB    byte
		wantHasSIB bool
	}{
		{
			name:      "rip-relative",
			mem:       isa.Memory{RipRelative: true, Disp: 0x10},
			wantModRM: 0x05, // mod=00 rm=5
		},
		{
			name:       "absent base",
			mem:        isa.Memory{Disp: 0x1000},
			wantModRM:  0x04, // mod=00 rm=4 (SIB escape)
			wantHasSIB: true,
			wantSIB:    0x25, // scale=0 index=4(none) base=5(none)
		},
		{
			name:       "rsp base, zero disp",
			mem:        isa.Memory{Base: &isa.RSP},
			wantModRM:  0x04,
			wantHasSIB: true,
			wantSIB:    0x24, // index=4(none) base=4(rsp)
		},
		{
			name:       "r12 base, zero disp (low3 collides with rsp)",
			mem:        isa.Memory{Base: &isa.R12},
			wantModRM:  0x04,
			wantHasSIB: true,
			wantSIB:    0x24,
		},
		{
			name:      "rbp base, zero disp forces disp8",
			mem:       isa.Memory{Base: &isa.RBP},
			wantModRM: 0x45, // mod=01 rm=5
		},
		{
			name:      "r13 base, zero disp forces disp8",
			mem:       isa.Memory{Base: &isa.R13},
			wantModRM: 0x45,
		},
		{
			name:      "plain register base, small disp",
			mem:       isa.Memory{Base: &r11, Disp: 5},
			wantModRM: 0x43, // mod=01 rm=3
		},
		{
			name:      "plain register base, large disp",
			mem:       isa.Memory{Base: &r11, Disp: 0x10000},
			wantModRM: 0x83, // mod=10 rm=3
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := planMemory(0, tc.mem)
			if plan.modrm != tc.wantModRM {
				t.Errorf("modrm = %#x, want %#x", plan.modrm, tc.wantModRM)
			}
			if plan.hasSIB != tc.wantHasSIB {
				t.Fatalf("hasSIB = %v, want %v", plan.hasSIB, tc.wantHasSIB)
			}
			if tc.wantHasSIB && plan.sib != tc.wantSIB {
				t.Errorf("sib = %#x, want %#x", plan.sib, tc.wantSIB)
			}
		})
	}
}

func TestChooseDispRbpR13ForceExplicitZero(t *testing.T) {
	if chooseDisp(isa.RBP, 0) != dispI8 {
		t.Error("rbp with disp 0 should choose dispI8 (explicit zero)")
	}
	if chooseDisp(isa.R13, 0) != dispI8 {
		t.Error("r13 with disp 0 should choose dispI8 (explicit zero)")
	}
	if chooseDisp(isa.RAX, 0) != dispNone {
		t.Error("rax with disp 0 should choose dispNone")
	}
}

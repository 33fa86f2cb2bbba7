package mir

// String returns Family's JSON/CLI name, mirroring isa.Mnemonic.String.
func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "family(?)"
}

var familyNames = map[Family]string{
	FamBinary:           "binary",
	FamMemImm:           "mem_imm",
	FamScaleSrc:         "scale_src",
	FamScaleDst:         "scale_dst",
	FamScaleImm:         "scale_imm",
	FamMovabs:           "movabs",
	FamLea:              "lea",
	FamImulComplex:      "imul_complex",
	FamPush:             "push",
	FamPop:              "pop",
	FamPushCalleeRegs:   "push_callee_regs",
	FamPopCalleeRegs:    "pop_callee_regs",
	FamJmpCall:          "jmp_call",
	FamJcc:              "jcc",
	FamSetcc:            "setcc",
	FamTest:             "test",
	FamRet:              "ret",
	FamZO:               "zo",
	FamDbgLine:          "dbg_line",
	FamDbgPrologueEnd:   "dbg_prologue_end",
	FamDbgEpilogueBegin: "dbg_epilogue_begin",
	FamArgDbgInfo:       "arg_dbg_info",
	FamCallExtern:       "call_extern",
}

var familyByName = func() map[string]Family {
	m := make(map[string]Family, len(familyNames))
	for f, name := range familyNames {
		m[name] = f
	}
	return m
}()

// ParseFamily looks up a Family by its String() name.
func ParseFamily(name string) (Family, bool) {
	f, ok := familyByName[name]
	return f, ok
}

package isa

type opcodeEntry struct {
	opcode byte
	cycles byte
}

type opKey struct {
	mne  Mnemonic
	mode AddrMode
}

// opcodeTable is the (mnemonic, mode) -> (opcode byte, base cycle count)
// lookup. It carries only the NMOS-6502-legal subset: 65C02-only forms —
// STZ, TRB/TSB, PHX/PLX/PHY/PLY, BRA, the (zp) indirect forms of
// LDA/STA/ADC/SBC/AND/ORA/EOR, BIT's extra modes, JMP abs,X, and the
// accumulator forms of INC/DEC — are dropped, since none of
// Atari2600/5200/7800 carry a 65C02.
var opcodeTable = map[opKey]opcodeEntry{
	{LDA, ModeImm}: {0xa9, 2}, {LDA, ModeZP}: {0xa5, 3}, {LDA, ModeZPX}: {0xb5, 4},
	{LDA, ModeAbs}: {0xad, 4}, {LDA, ModeAbsX}: {0xbd, 4}, {LDA, ModeAbsY}: {0xb9, 4},
	{LDA, ModeIndX}: {0xa1, 6}, {LDA, ModeIndY}: {0xb1, 5},

	{LDX, ModeImm}: {0xa2, 2}, {LDX, ModeZP}: {0xa6, 3}, {LDX, ModeZPY}: {0xb6, 4},
	{LDX, ModeAbs}: {0xae, 4}, {LDX, ModeAbsY}: {0xbe, 4},

	{LDY, ModeImm}: {0xa0, 2}, {LDY, ModeZP}: {0xa4, 3}, {LDY, ModeZPX}: {0xb4, 4},
	{LDY, ModeAbs}: {0xac, 4}, {LDY, ModeAbsX}: {0xbc, 4},

	{STA, ModeZP}: {0x85, 3}, {STA, ModeZPX}: {0x95, 4}, {STA, ModeAbs}: {0x8d, 4},
	{STA, ModeAbsX}: {0x9d, 5}, {STA, ModeAbsY}: {0x99, 5},
	{STA, ModeIndX}: {0x81, 6}, {STA, ModeIndY}: {0x91, 6},

	{STX, ModeZP}: {0x86, 3}, {STX, ModeZPY}: {0x96, 4}, {STX, ModeAbs}: {0x8e, 4},
	{STY, ModeZP}: {0x84, 3}, {STY, ModeZPX}: {0x94, 4}, {STY, ModeAbs}: {0x8c, 4},

	{ADC, ModeImm}: {0x69, 2}, {ADC, ModeZP}: {0x65, 3}, {ADC, ModeZPX}: {0x75, 4},
	{ADC, ModeAbs}: {0x6d, 4}, {ADC, ModeAbsX}: {0x7d, 4}, {ADC, ModeAbsY}: {0x79, 4},
	{ADC, ModeIndX}: {0x61, 6}, {ADC, ModeIndY}: {0x71, 5},

	{SBC, ModeImm}: {0xe9, 2}, {SBC, ModeZP}: {0xe5, 3}, {SBC, ModeZPX}: {0xf5, 4},
	{SBC, ModeAbs}: {0xed, 4}, {SBC, ModeAbsX}: {0xfd, 4}, {SBC, ModeAbsY}: {0xf9, 4},
	{SBC, ModeIndX}: {0xe1, 6}, {SBC, ModeIndY}: {0xf1, 5},

	{CMP, ModeImm}: {0xc9, 2}, {CMP, ModeZP}: {0xc5, 3}, {CMP, ModeZPX}: {0xd5, 4},
	{CMP, ModeAbs}: {0xcd, 4}, {CMP, ModeAbsX}: {0xdd, 4}, {CMP, ModeAbsY}: {0xd9, 4},
	{CMP, ModeIndX}: {0xc1, 6}, {CMP, ModeIndY}: {0xd1, 5},

	{CPX, ModeImm}: {0xe0, 2}, {CPX, ModeZP}: {0xe4, 3}, {CPX, ModeAbs}: {0xec, 4},
	{CPY, ModeImm}: {0xc0, 2}, {CPY, ModeZP}: {0xc4, 3}, {CPY, ModeAbs}: {0xcc, 4},

	{BIT, ModeZP}: {0x24, 3}, {BIT, ModeAbs}: {0x2c, 4},

	{CLC, ModeNone}: {0x18, 2}, {SEC, ModeNone}: {0x38, 2},
	{CLI, ModeNone}: {0x58, 2}, {SEI, ModeNone}: {0x78, 2},
	{CLD, ModeNone}: {0xd8, 2}, {SED, ModeNone}: {0xf8, 2},
	{CLV, ModeNone}: {0xb8, 2},

	{BCC, ModeRel}: {0x90, 2}, {BCS, ModeRel}: {0xb0, 2},
	{BEQ, ModeRel}: {0xf0, 2}, {BNE, ModeRel}: {0xd0, 2},
	{BMI, ModeRel}: {0x30, 2}, {BPL, ModeRel}: {0x10, 2},
	{BVC, ModeRel}: {0x50, 2}, {BVS, ModeRel}: {0x70, 2},

	{BRK, ModeNone}: {0x00, 7},

	{AND, ModeImm}: {0x29, 2}, {AND, ModeZP}: {0x25, 3}, {AND, ModeZPX}: {0x35, 4},
	{AND, ModeAbs}: {0x2d, 4}, {AND, ModeAbsX}: {0x3d, 4}, {AND, ModeAbsY}: {0x39, 4},
	{AND, ModeIndX}: {0x21, 6}, {AND, ModeIndY}: {0x31, 5},

	{ORA, ModeImm}: {0x09, 2}, {ORA, ModeZP}: {0x05, 3}, {ORA, ModeZPX}: {0x15, 4},
	{ORA, ModeAbs}: {0x0d, 4}, {ORA, ModeAbsX}: {0x1d, 4}, {ORA, ModeAbsY}: {0x19, 4},
	{ORA, ModeIndX}: {0x01, 6}, {ORA, ModeIndY}: {0x11, 5},

	{EOR, ModeImm}: {0x49, 2}, {EOR, ModeZP}: {0x45, 3}, {EOR, ModeZPX}: {0x55, 4},
	{EOR, ModeAbs}: {0x4d, 4}, {EOR, ModeAbsX}: {0x5d, 4}, {EOR, ModeAbsY}: {0x59, 4},
	{EOR, ModeIndX}: {0x41, 6}, {EOR, ModeIndY}: {0x51, 5},

	{INC, ModeZP}: {0xe6, 5}, {INC, ModeZPX}: {0xf6, 6}, {INC, ModeAbs}: {0xee, 6}, {INC, ModeAbsX}: {0xfe, 7},
	{DEC, ModeZP}: {0xc6, 5}, {DEC, ModeZPX}: {0xd6, 6}, {DEC, ModeAbs}: {0xce, 6}, {DEC, ModeAbsX}: {0xde, 7},

	{INX, ModeNone}: {0xe8, 2}, {INY, ModeNone}: {0xc8, 2},
	{DEX, ModeNone}: {0xca, 2}, {DEY, ModeNone}: {0x88, 2},

	{JMP, ModeAbs}: {0x4c, 3}, {JMP, ModeInd}: {0x6c, 5},
	{JSR, ModeAbs}: {0x20, 6},
	{RTS, ModeNone}: {0x60, 6}, {RTI, ModeNone}: {0x40, 6},

	{NOP, ModeNone}: {0xea, 2},

	{TAX, ModeNone}: {0xaa, 2}, {TXA, ModeNone}: {0x8a, 2},
	{TAY, ModeNone}: {0xa8, 2}, {TYA, ModeNone}: {0x98, 2},
	{TXS, ModeNone}: {0x9a, 2}, {TSX, ModeNone}: {0xba, 2},

	{PHA, ModeNone}: {0x48, 3}, {PLA, ModeNone}: {0x68, 4},
	{PHP, ModeNone}: {0x08, 3}, {PLP, ModeNone}: {0x28, 4},

	{ASL, ModeAcc}: {0x0a, 2}, {ASL, ModeZP}: {0x06, 5}, {ASL, ModeZPX}: {0x16, 6},
	{ASL, ModeAbs}: {0x0e, 6}, {ASL, ModeAbsX}: {0x1e, 7},

	{LSR, ModeAcc}: {0x4a, 2}, {LSR, ModeZP}: {0x46, 5}, {LSR, ModeZPX}: {0x56, 6},
	{LSR, ModeAbs}: {0x4e, 6}, {LSR, ModeAbsX}: {0x5e, 7},

	{ROL, ModeAcc}: {0x2a, 2}, {ROL, ModeZP}: {0x26, 5}, {ROL, ModeZPX}: {0x36, 6},
	{ROL, ModeAbs}: {0x2e, 6}, {ROL, ModeAbsX}: {0x3e, 7},

	{ROR, ModeAcc}: {0x6a, 2}, {ROR, ModeZP}: {0x66, 5}, {ROR, ModeZPX}: {0x76, 6},
	{ROR, ModeAbs}: {0x6e, 6}, {ROR, ModeAbsX}: {0x7e, 7},
}

// Lookup resolves (mnemonic, mode) to its opcode byte and base cycle count.
// ok is false for an (mnemonic, mode) pair the 6502 doesn't support, except
// that a ZPY lookup on a mnemonic with no ZPY encoding is retried as ABY.
func Lookup(mne Mnemonic, mode AddrMode) (opcode byte, cycles int, ok bool) {
	if e, found := opcodeTable[opKey{mne, mode}]; found {
		return e.opcode, int(e.cycles), true
	}
	if mode == ModeZPY {
		if e, found := opcodeTable[opKey{mne, ModeAbsY}]; found {
			return e.opcode, int(e.cycles), true
		}
	}
	return 0, 0, false
}

// GetInstrSize returns the encoded byte length for (mnemonic, mode),
// applying the same ZPY->ABY fallback as Lookup.
func GetInstrSize(mne Mnemonic, mode AddrMode) int {
	if _, ok := opcodeTable[opKey{mne, mode}]; ok {
		return mode.InstrSize()
	}
	if mode == ModeZPY {
		if _, found := opcodeTable[opKey{mne, ModeAbsY}]; found {
			return ModeAbsY.InstrSize()
		}
	}
	return mode.InstrSize()
}

// GetCycleCount returns the base cycle count for (mnemonic, mode), with
// the same ZPY->ABY fallback Lookup applies.
func GetCycleCount(mne Mnemonic, mode AddrMode) int {
	_, cycles, _ := Lookup(mne, mode)
	return cycles
}

// HasZPY reports whether mne has a dedicated zero-page,Y encoding.
func HasZPY(mne Mnemonic) bool {
	_, ok := opcodeTable[opKey{mne, ModeZPY}]
	return ok
}

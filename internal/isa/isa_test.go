package isa

import "testing"

func TestLookupKnown(t *testing.T) {
	tests := []struct {
		name       string
		mne        Mnemonic
		mode       AddrMode
		wantOpcode byte
		wantCycles int
	}{
		{"LDA immediate", LDA, ModeImm, 0xa9, 2},
		{"LDA absolute", LDA, ModeAbs, 0xad, 4},
		{"STA zero page", STA, ModeZP, 0x85, 3},
		{"JSR absolute", JSR, ModeAbs, 0x20, 6},
		{"RTS implied", RTS, ModeNone, 0x60, 6},
		{"BEQ relative", BEQ, ModeRel, 0xf0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opcode, cycles, ok := Lookup(tt.mne, tt.mode)
			if !ok {
				t.Fatalf("Lookup(%v, %v): not found", tt.mne, tt.mode)
			}
			if opcode != tt.wantOpcode {
				t.Errorf("opcode = %#02x, want %#02x", opcode, tt.wantOpcode)
			}
			if cycles != tt.wantCycles {
				t.Errorf("cycles = %d, want %d", cycles, tt.wantCycles)
			}
		})
	}
}

func TestLookupUnknownPair(t *testing.T) {
	if _, _, ok := Lookup(STA, ModeImm); ok {
		t.Error("STA has no immediate-mode encoding, want ok=false")
	}
}

func TestLookupZPYFallback(t *testing.T) {
	// LDA has no dedicated zero-page,Y form; ModeZPY should fall back to
	// the absolute,Y encoding.
	if HasZPY(LDA) {
		t.Fatal("test assumes LDA has no ZPY encoding")
	}
	opcode, cycles, ok := Lookup(LDA, ModeZPY)
	if !ok {
		t.Fatal("Lookup(LDA, ModeZPY): want fallback to ABY, got not found")
	}
	wantOpcode, wantCycles, _ := Lookup(LDA, ModeAbsY)
	if opcode != wantOpcode || cycles != wantCycles {
		t.Errorf("fallback = (%#02x, %d), want (%#02x, %d)", opcode, cycles, wantOpcode, wantCycles)
	}
}

func TestHasZPYDedicated(t *testing.T) {
	if !HasZPY(LDX) {
		t.Error("LDX has a dedicated zero-page,Y encoding")
	}
	if !HasZPY(STX) {
		t.Error("STX has a dedicated zero-page,Y encoding")
	}
	if HasZPY(STA) {
		t.Error("STA has no zero-page,Y encoding")
	}
}

func TestGetInstrSizeZPYFallback(t *testing.T) {
	if got := GetInstrSize(LDA, ModeZPY); got != ModeAbsY.InstrSize() {
		t.Errorf("GetInstrSize(LDA, ModeZPY) = %d, want %d (ABY size)", got, ModeAbsY.InstrSize())
	}
	if got := GetInstrSize(LDX, ModeZPY); got != ModeZPY.InstrSize() {
		t.Errorf("GetInstrSize(LDX, ModeZPY) = %d, want %d (ZPY size)", got, ModeZPY.InstrSize())
	}
}

func TestAddrModeFormat(t *testing.T) {
	tests := []struct {
		mode AddrMode
		in   string
		want string
	}{
		{ModeImm, "5", "#5"},
		{ModeZP, "L0001", "L0001"},
		{ModeZPX, "L0001", "L0001,X"},
		{ModeAbsY, "Table", "Table,Y"},
		{ModeIndX, "Ptr", "(Ptr,X)"},
		{ModeIndY, "Ptr", "(Ptr),Y"},
		{ModeInd, "Vec", "(Vec)"},
		{ModeAcc, "ignored", "A"},
	}
	for _, tt := range tests {
		if got := tt.mode.Format(tt.in); got != tt.want {
			t.Errorf("Format(%v, %q) = %q, want %q", tt.mode, tt.in, got, tt.want)
		}
	}
}

func TestAddrModeIsZeroPage(t *testing.T) {
	for _, m := range []AddrMode{ModeZP, ModeZPX, ModeZPY} {
		if !m.IsZeroPage() {
			t.Errorf("%v: IsZeroPage() = false, want true", m)
		}
	}
	for _, m := range []AddrMode{ModeAbs, ModeAbsX, ModeAbsY, ModeImm} {
		if m.IsZeroPage() {
			t.Errorf("%v: IsZeroPage() = true, want false", m)
		}
	}
}

func TestAddrModeIsIncomplete(t *testing.T) {
	for _, m := range []AddrMode{ModeUnk, ModeUnkX, ModeUnkY} {
		if !m.IsIncomplete() {
			t.Errorf("%v: IsIncomplete() = false, want true", m)
		}
	}
	if ModeAbs.IsIncomplete() {
		t.Error("ModeAbs: IsIncomplete() = true, want false")
	}
}

func TestInstrSizeMatchesTable(t *testing.T) {
	tests := []struct {
		mode AddrMode
		want int
	}{
		{ModeNone, 1},
		{ModeImm, 2},
		{ModeZP, 2},
		{ModeAbs, 3},
		{ModeIndX, 2},
	}
	for _, tt := range tests {
		if got := tt.mode.InstrSize(); got != tt.want {
			t.Errorf("%v.InstrSize() = %d, want %d", tt.mode, got, tt.want)
		}
	}
}

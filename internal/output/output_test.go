package output

import (
	"strings"
	"testing"

	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/machine"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// buildSimpleProgram returns a layout holding one function, "main": LDA
// #5; STA counter; RTS, plus the global/label tables it resolves against.
func buildSimpleProgram(t *testing.T) (*Layout, *sym.Table, *ilist.Table, machine.Info) {
	t.Helper()
	mach := machine.Default()
	global := sym.NewGlobalTable()
	counter, err := global.AddSymbol("counter", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	if err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	counter.Location = 0x80
	mainSym, _ := global.AddSymbol("main", sym.KindFunc, sym.TypeNone, sym.FlagNone)

	labels := ilist.NewTable()
	entryLabel := labels.NewLabel("main", ilist.LabelCode)

	block := ilist.StartBlock("main")
	block.FuncSym = mainSym
	block.SetLabel(entryLabel)
	block.AddInstrS(isa.LDA, isa.ModeImm, "5", "", ilist.ExtNormal)
	block.AddInstrS(isa.STA, isa.ModeZP, "counter", "", ilist.ExtNormal)
	block.AddInstrB(isa.RTS)

	lo := NewLayout(mach.ROMOrigin)
	lo.OB_AddCode("main", mainSym, block)

	return lo, global, labels, mach
}

func TestBinaryWriterEncodesInstructionsAtOrigin(t *testing.T) {
	lo, global, labels, mach := buildSimpleProgram(t)
	bw := NewBinaryWriter(global, labels)

	if err := Emit(bw, lo, mach, "main"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	bytes := bw.Bytes()
	want := []byte{0xA9, 0x05, 0x85, 0x80, 0x60} // LDA #5, STA $80, RTS
	for i, b := range want {
		if bytes[i] != b {
			t.Errorf("byte %d = %#02x, want %#02x", i, bytes[i], b)
		}
	}
}

func TestBinaryWriterFillsVectorTableWithEntryAddress(t *testing.T) {
	lo, global, labels, mach := buildSimpleProgram(t)
	bw := NewBinaryWriter(global, labels)

	if err := Emit(bw, lo, mach, "main"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	bytes := bw.Bytes()
	vecOff := mach.VectorTop - mach.ROMOrigin
	words := (0x10000 - mach.VectorTop) / 2
	for i := 0; i < words; i++ {
		loByte := bytes[vecOff+i*2]
		hiByte := bytes[vecOff+i*2+1]
		addr := int(loByte) | int(hiByte)<<8
		if addr != mach.ROMOrigin {
			t.Errorf("vector word %d = $%04X, want $%04X (entry point)", i, addr, mach.ROMOrigin)
		}
	}
}

func TestBinaryWriterUnresolvedEntryPointErrors(t *testing.T) {
	lo, global, labels, mach := buildSimpleProgram(t)
	bw := NewBinaryWriter(global, labels)
	if err := Emit(bw, lo, mach, "nonexistent"); err == nil {
		t.Error("expected an error for an entry point that never resolves")
	}
}

func TestDasmWriterRendersFunctionBody(t *testing.T) {
	lo, _, _, mach := buildSimpleProgram(t)

	var buf strings.Builder
	dw := NewDasmWriter(&buf)
	if err := Emit(dw, lo, mach, "main"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"processor 6502", "main:", "LDA\t#5", "STA\tcounter", "RTS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDasmWriterExt(t *testing.T) {
	dw := NewDasmWriter(nil)
	if got := dw.Ext(); got != ".asm" {
		t.Errorf("Ext() = %q, want %q", got, ".asm")
	}
}

func TestBinaryWriterExt(t *testing.T) {
	bw := NewBinaryWriter(nil, nil)
	if got := bw.Ext(); got != ".binary" {
		t.Errorf("Ext() = %q, want %q", got, ".binary")
	}
}

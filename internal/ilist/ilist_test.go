package ilist

import (
	"testing"

	"github.com/splendidnut/Neolithic-sub000/internal/isa"
)

func TestBlockAppendOrder(t *testing.T) {
	b := StartBlock("main")
	b.AddInstrB(isa.SEI)
	b.AddInstrB(isa.CLD)
	b.AddInstrS(isa.LDA, isa.ModeImm, "0", "", ExtNormal)

	var mnemonics []isa.Mnemonic
	for in := b.First(); in != nil; in = in.Next() {
		mnemonics = append(mnemonics, in.Mne)
	}
	want := []isa.Mnemonic{isa.SEI, isa.CLD, isa.LDA}
	if len(mnemonics) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(mnemonics), len(want))
	}
	for i, m := range want {
		if mnemonics[i] != m {
			t.Errorf("instr %d = %v, want %v", i, mnemonics[i], m)
		}
	}
	if b.Last().Mne != isa.LDA {
		t.Errorf("Last() = %v, want LDA", b.Last().Mne)
	}
}

func TestBlockPendingLabelAndComment(t *testing.T) {
	b := StartBlock("f")
	labels := NewTable()
	lbl := labels.NewLabel("Loop", LabelCode)

	b.SetLabel(lbl)
	b.SetLineComment("top of loop")
	in := b.AddInstrB(isa.NOP)

	if in.Label != lbl {
		t.Errorf("Label = %v, want %v", in.Label, lbl)
	}
	if in.Comment != "top of loop" {
		t.Errorf("Comment = %q, want %q", in.Comment, "top of loop")
	}

	next := b.AddInstrB(isa.NOP)
	if next.Label != nil {
		t.Error("pending label should have been cleared after first consumer")
	}
	if next.Comment != "" {
		t.Error("pending comment should have been cleared after first consumer")
	}
}

func TestBlockGetCodeSize(t *testing.T) {
	b := StartBlock("sizes")
	b.AddInstrB(isa.RTS)                                 // 1 byte
	b.AddInstrS(isa.LDA, isa.ModeImm, "5", "", ExtNormal) // 2 bytes
	b.AddInstrS(isa.JSR, isa.ModeAbs, "Foo", "", ExtNormal) // 3 bytes
	b.AddCommentToCode("no code here")                   // 0 bytes

	if got, want := b.GetCodeSize(), 1+2+3; got != want {
		t.Errorf("GetCodeSize() = %d, want %d", got, want)
	}
}

func TestBlockShowCyclesAccumulates(t *testing.T) {
	b := StartBlock("cycles")
	b.ShowCycles()
	in1 := b.AddInstrS(isa.LDA, isa.ModeImm, "1", "", ExtNormal)
	in2 := b.AddInstrS(isa.ADC, isa.ModeImm, "1", "", ExtNormal)

	if !in1.ShowCycles || !in2.ShowCycles {
		t.Fatal("both instructions should carry the cycle annotation")
	}
	_, c1, _ := isa.Lookup(isa.LDA, isa.ModeImm)
	_, c2, _ := isa.Lookup(isa.ADC, isa.ModeImm)
	if in2.Comment == "" {
		t.Fatal("cycle comment should be non-empty")
	}
	if want := cycleComment(c2, c1+c2, ""); in2.Comment != want {
		t.Errorf("second cycle comment = %q, want %q (own cycles / running total)", in2.Comment, want)
	}

	b.HideCycles()
	in3 := b.AddInstrB(isa.NOP)
	if in3.ShowCycles {
		t.Error("ShowCycles should not apply after HideCycles")
	}
}

func TestInstrSizeNoneIsZero(t *testing.T) {
	in := &Instr{Mne: isa.MneNone}
	if got := in.InstrSize(); got != 0 {
		t.Errorf("InstrSize() for MneNone = %d, want 0", got)
	}
}

func TestTableNewGenericLabelMonotonic(t *testing.T) {
	tbl := NewTable()
	a := tbl.NewGenericLabel(LabelCode)
	b := tbl.NewGenericLabel(LabelCode)
	if a.Name == b.Name {
		t.Errorf("generic labels should have distinct names, got %q twice", a.Name)
	}
	if a.Name != "L0000" || b.Name != "L0001" {
		t.Errorf("got names %q, %q, want L0000, L0001", a.Name, b.Name)
	}
}

func TestTableFindLabel(t *testing.T) {
	tbl := NewTable()
	tbl.NewLabel("Start", LabelCode)
	want := tbl.NewLabel("Table", LabelData)

	got := tbl.FindLabel("Table")
	if got != want {
		t.Errorf("FindLabel(%q) = %v, want %v", "Table", got, want)
	}
	if tbl.FindLabel("Missing") != nil {
		t.Error("FindLabel of an undefined name should return nil")
	}
}

func TestTableAllPreservesOrder(t *testing.T) {
	tbl := NewTable()
	first := tbl.NewLabel("A", LabelCode)
	second := tbl.NewLabel("B", LabelCode)

	all := tbl.All()
	if len(all) != 2 || all[0] != first || all[1] != second {
		t.Errorf("All() = %v, want [%v %v]", all, first, second)
	}
}

func TestLabelResolveFollowsLinkChain(t *testing.T) {
	final := &Label{Name: "Final"}
	middle := &Label{Name: "Middle", Link: final}
	start := &Label{Name: "Start", Link: middle}

	if got := start.Resolve(); got != final {
		t.Errorf("Resolve() = %v, want %v", got, final)
	}
	if got := final.Resolve(); got != final {
		t.Errorf("Resolve() on a label with no Link should return itself, got %v", got)
	}
}

package codegen

import (
	"io"
	"testing"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/machine"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

func newTestGenerator() (*Generator, *sym.Table) {
	global := sym.NewGlobalTable()
	interp := lex.NewStringTable()
	labels := ilist.NewTable()
	rep := diag.NewReporter(io.Discard, 3)
	g := New(global, labels, interp, rep, machine.Default())
	g.scope = global
	g.block = ilist.StartBlock("test")
	return g, global
}

func mnemonics(b *ilist.Block) []isa.Mnemonic {
	var out []isa.Mnemonic
	for in := b.First(); in != nil; in = in.Next() {
		if in.Mne != isa.MneNone {
			out = append(out, in.Mne)
		}
	}
	return out
}

func TestGenExprConstFoldsToImmediateLoad(t *testing.T) {
	g, _ := newTestGenerator()
	g.genExpr(ast.Int(5), DestChar)

	in := g.block.Last()
	if in.Mne != isa.LDA || in.Mode != isa.ModeImm {
		t.Fatalf("got %v %v, want LDA #imm", in.Mne, in.Mode)
	}
	if in.Param1 != "5" {
		t.Errorf("Param1 = %q, want %q", in.Param1, "5")
	}
}

func TestGenExprIdentifierLoadsFromZeroPage(t *testing.T) {
	g, global := newTestGenerator()
	s, err := global.AddSymbol("counter", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	if err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	s.Location = 0x80

	nameID := g.interp.Intern("counter")
	g.genExpr(ast.Str(nameID), DestChar)

	in := g.block.Last()
	if in.Mne != isa.LDA || in.Mode != isa.ModeZP {
		t.Fatalf("got %v %v, want LDA zero-page", in.Mne, in.Mode)
	}
	if in.Param1 != "counter" {
		t.Errorf("Param1 = %q, want %q", in.Param1, "counter")
	}
}

func TestGenAssignStoresIntoVariable(t *testing.T) {
	g, global := newTestGenerator()
	s, _ := global.AddSymbol("health", sym.KindVar, sym.TypeChar, sym.FlagNone)
	s.Location = 0x200

	lhsID := g.interp.Intern("health")
	assign := ast.NewList(3)
	assign.Add(ast.Tok(ast.PtSet))
	assign.Add(ast.Str(lhsID))
	assign.Add(ast.Int(9))

	g.genAssign(assign)
	instrs := mnemonics(g.block)
	if len(instrs) != 2 || instrs[0] != isa.LDA || instrs[1] != isa.STA {
		t.Fatalf("instructions = %v, want [LDA STA]", instrs)
	}
	storeIn := g.block.Last()
	if storeIn.Mode != isa.ModeAbs || storeIn.Param1 != "health" {
		t.Errorf("store = %v %v %v, want STA absolute health", storeIn.Mne, storeIn.Mode, storeIn.Param1)
	}
}

func TestGenIfEmitsBranchAroundThenBlock(t *testing.T) {
	g, global := newTestGenerator()
	flag, _ := global.AddSymbol("flag", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	flag.Location = 0x81
	hp, _ := global.AddSymbol("hp", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	hp.Location = 0x82

	flagID := g.interp.Intern("flag")
	hpID := g.interp.Intern("hp")

	cond := ast.NewList(3)
	cond.Add(ast.Tok(ast.PtNe))
	cond.Add(ast.Str(flagID))
	cond.Add(ast.Int(0))

	thenAssign := ast.NewList(3)
	thenAssign.Add(ast.Tok(ast.PtSet))
	thenAssign.Add(ast.Str(hpID))
	thenAssign.Add(ast.Int(1))
	thenBlock := ast.NewList(2)
	thenBlock.Add(ast.Tok(ast.PtCodeBlock))
	thenBlock.Add(ast.ListNode(thenAssign))

	ifList := ast.NewList(3)
	ifList.Add(ast.Tok(ast.PtIf))
	ifList.Add(ast.ListNode(cond))
	ifList.Add(ast.ListNode(thenBlock))

	g.genIf(ifList)

	var branches int
	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.BEQ {
			branches++
		}
	}
	if branches != 1 {
		t.Errorf("expected exactly one BEQ (skip when flag == 0), got %d", branches)
	}
}

func TestDestOfFollowsSymbolShape(t *testing.T) {
	tbl := sym.NewTable(nil)
	ch, _ := tbl.AddSymbol("c", sym.KindVar, sym.TypeChar, sym.FlagNone)
	if got := DestOf(ch); got != DestChar {
		t.Errorf("DestOf(char) = %v, want DestChar", got)
	}
	in, _ := tbl.AddSymbol("i", sym.KindVar, sym.TypeInt, sym.FlagNone)
	if got := DestOf(in); got != DestInt {
		t.Errorf("DestOf(int) = %v, want DestInt", got)
	}
	ptr, _ := tbl.AddSymbol("p", sym.KindVar, sym.TypeChar, sym.FlagPointer)
	if got := DestOf(ptr); got != DestPtr {
		t.Errorf("DestOf(pointer) = %v, want DestPtr", got)
	}
	b, _ := tbl.AddSymbol("b", sym.KindVar, sym.TypeBool, sym.FlagNone)
	if got := DestOf(b); got != DestBool {
		t.Errorf("DestOf(bool) = %v, want DestBool", got)
	}
}

// binOp builds the 3-node shape (op left right) every comparison and
// arithmetic lowering expects.
func binOp(op ast.ParseToken, left, right ast.Node) *ast.List {
	l := ast.NewList(3)
	l.Add(ast.Tok(op))
	l.Add(left)
	l.Add(right)
	return l
}

func TestGenMultiplySmallConstantUsesStepTable(t *testing.T) {
	g, global := newTestGenerator()
	y, _ := global.AddSymbol("y", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	y.Location = 0x80
	yID := g.interp.Intern("y")

	g.genMultiply(binOp(ast.PtMul, ast.Str(yID), ast.Int(16)), DestChar)

	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.LDX {
			t.Error("a <=16 literal multiply should stay on the 8-bit step-table path, found an LDX")
		}
	}
}

func TestGenMultiplyLargeConstantUsesGenericLoop(t *testing.T) {
	g, global := newTestGenerator()
	y, _ := global.AddSymbol("y", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	y.Location = 0x80
	yID := g.interp.Intern("y")

	g.genMultiply(binOp(ast.PtMul, ast.Str(yID), ast.Int(100)), DestChar)

	instrs := mnemonics(g.block)
	var sawFinalLDX bool
	for i, m := range instrs {
		if m == isa.LDX && i == len(instrs)-1 {
			sawFinalLDX = true
		}
	}
	if !sawFinalLDX {
		t.Errorf("a >16 literal multiply should end by loading the high byte into X, instructions = %v", instrs)
	}
}

func TestEmitSkipIfFalseUnsignedLtUsesCarryBranch(t *testing.T) {
	g, _ := newTestGenerator()
	target := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.emitSkipIfFalse(ast.PtLt, target, false, false)
	if in := g.block.Last(); in.Mne != isa.BCS {
		t.Errorf("unsigned a<b should skip via BCS, got %v", in.Mne)
	}
}

func TestEmitSkipIfFalseCmpToZeroUsesSignBranch(t *testing.T) {
	g, _ := newTestGenerator()
	target := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.emitSkipIfFalse(ast.PtLt, target, false, true)
	if in := g.block.Last(); in.Mne != isa.BPL {
		t.Errorf("an unsigned char compared to literal 0 with < should still skip via BPL, got %v", in.Mne)
	}
}

func TestGenCondBranchSkipCharLtZeroEmitsBPL(t *testing.T) {
	g, global := newTestGenerator()
	i, _ := global.AddSymbol("i", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	i.Location = 0x80
	iID := g.interp.Intern("i")

	exit := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.genCondBranchSkip(ast.ListNode(binOp(ast.PtLt, ast.Str(iID), ast.Int(0))), exit)

	var found bool
	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.BPL {
			found = true
		}
		if in.Mne == isa.BCS {
			t.Error("char i; while (i < 0) must not fall back to the unsigned BCS branch")
		}
	}
	if !found {
		t.Error("expected a BPL branch for the signed-style cmp-to-zero case")
	}
}

func TestGenIncDecByteEmitsINC(t *testing.T) {
	g, global := newTestGenerator()
	i, _ := global.AddSymbol("i", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	i.Location = 0x80
	iID := g.interp.Intern("i")

	g.genIncDec(ast.PtPostInc, ast.Str(iID), DestNone)

	var found bool
	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.INC {
			found = true
		}
	}
	if !found {
		t.Error("i++ on a byte variable should emit INC")
	}
}

func TestGenIncDecPreReturnsNewValue(t *testing.T) {
	g, global := newTestGenerator()
	i, _ := global.AddSymbol("i", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	i.Location = 0x80
	iID := g.interp.Intern("i")

	g.genIncDec(ast.PtPreInc, ast.Str(iID), DestChar)

	instrs := mnemonics(g.block)
	if len(instrs) < 2 || instrs[0] != isa.INC || instrs[len(instrs)-1] != isa.LDA {
		t.Fatalf("pre-increment should INC then reload the new value, got %v", instrs)
	}
}

func TestGenIncDecPostLoadsOldValueFirst(t *testing.T) {
	g, global := newTestGenerator()
	i, _ := global.AddSymbol("i", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	i.Location = 0x80
	iID := g.interp.Intern("i")

	g.genIncDec(ast.PtPostInc, ast.Str(iID), DestChar)

	instrs := mnemonics(g.block)
	if len(instrs) < 2 || instrs[0] != isa.LDA || instrs[1] != isa.INC {
		t.Fatalf("post-increment should load the old value before INC, got %v", instrs)
	}
}

func TestGenIncDecWordPropagatesCarryIntoHighByte(t *testing.T) {
	g, global := newTestGenerator()
	w, _ := global.AddSymbol("w", sym.KindVar, sym.TypeInt, sym.FlagZeroPage)
	w.Location = 0x80
	wID := g.interp.Intern("w")

	g.genIncDec(ast.PtPreInc, ast.Str(wID), DestInt)

	var sawADCHi bool
	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.ADC && in.Prev() != nil && in.Prev().Mne == isa.LDA && in.Prev().Ext == ilist.ExtHi {
			sawADCHi = true
		}
	}
	if !sawADCHi {
		t.Error("16-bit increment should ADC the carry into the high byte")
	}
}

func TestGenByteExtractIdentifierUsesExtHi(t *testing.T) {
	g, global := newTestGenerator()
	w, _ := global.AddSymbol("w", sym.KindVar, sym.TypeInt, sym.FlagZeroPage)
	w.Location = 0x80
	wID := g.interp.Intern("w")

	g.genByteExtract(ast.Str(wID), true)

	in := g.block.Last()
	if in.Mne != isa.LDA || in.Ext != ilist.ExtHi {
		t.Errorf("high-byte extraction of a variable should LDA with ExtHi, got %v ext=%v", in.Mne, in.Ext)
	}
}

func TestGenByteExtractLowByteMasksResult(t *testing.T) {
	g, global := newTestGenerator()
	w, _ := global.AddSymbol("w", sym.KindVar, sym.TypeInt, sym.FlagZeroPage)
	w.Location = 0x80
	wID := g.interp.Intern("w")

	g.genByteExtract(ast.ListNode(binOp(ast.PtAdd, ast.Str(wID), ast.Int(1))), false)

	if in := g.block.Last(); in.Mne != isa.AND || in.Param1 != "$FF" {
		t.Errorf("low-byte extraction of a general expression should mask with AND #$FF, got %v %v", in.Mne, in.Param1)
	}
}

func TestGenLoopCountsUpToCount(t *testing.T) {
	g, global := newTestGenerator()
	i, _ := global.AddSymbol("i", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	i.Location = 0x80
	iID := g.interp.Intern("i")

	loop := ast.NewList(4)
	loop.Add(ast.Tok(ast.PtLoop))
	loop.Add(ast.Str(iID))
	loop.Add(ast.Int(0))
	loop.Add(ast.Int(10))
	body := ast.NewList(1)
	body.Add(ast.Tok(ast.PtCodeBlock))
	loop.Nodes = append(loop.Nodes, ast.ListNode(body))

	g.genLoop(loop)

	instrs := mnemonics(g.block)
	var sawBNE bool
	for _, m := range instrs {
		if m == isa.BNE {
			sawBNE = true
		}
	}
	if !sawBNE {
		t.Errorf("loop() should close with a BNE back to top, instructions = %v", instrs)
	}
}

func TestGenSwitchFallsThroughToDefaultOnNoMatch(t *testing.T) {
	g, global := newTestGenerator()
	subj, _ := global.AddSymbol("mode", sym.KindVar, sym.TypeChar, sym.FlagZeroPage)
	subj.Location = 0x80
	subjID := g.interp.Intern("mode")

	caseOne := ast.NewList(2)
	caseOne.Add(ast.Tok(ast.PtCase))
	caseOne.Add(ast.Int(1))

	defaultClause := ast.NewList(2)
	defaultClause.Add(ast.Tok(ast.PtDefault))
	defaultClause.Add(ast.ListNode(binOp(ast.PtSet, ast.Str(subjID), ast.Int(2))))

	sw := ast.NewList(3)
	sw.Add(ast.Tok(ast.PtSwitch))
	sw.Add(ast.Str(subjID))
	sw.Add(ast.ListNode(caseOne))
	sw.Nodes = append(sw.Nodes, ast.ListNode(defaultClause))

	g.genSwitch(sw)

	var sawCMP bool
	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.CMP {
			sawCMP = true
		}
	}
	if !sawCMP {
		t.Error("switch should compare the subject against each case value")
	}

	var bne, defaultStart *ilist.Instr
	for in := g.block.First(); in != nil; in = in.Next() {
		if in.Mne == isa.BNE && bne == nil {
			bne = in
		}
		if in.Mne == isa.LDA && in.Param1 == "2" {
			defaultStart = in
		}
	}
	if bne == nil || defaultStart == nil || defaultStart.Label == nil || bne.Param1 != defaultStart.Label.Name {
		t.Error("a failed case compare should branch to the default clause's first instruction")
	}
}

func TestIsLiteralZero(t *testing.T) {
	if !isLiteralZero(ast.Int(0)) {
		t.Error("isLiteralZero(0) should be true")
	}
	if isLiteralZero(ast.Int(1)) {
		t.Error("isLiteralZero(1) should be false")
	}
	if isLiteralZero(ast.Str(0)) {
		t.Error("isLiteralZero of a non-literal should be false")
	}
}

package codegen

import (
	"strconv"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/eval"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
)

// genAsmBlock emits an `asm { ... }` block's instructions largely
// unchanged, resolving the incomplete addressing modes the parser left
// for bare `ident,X`/`ident,Y` operands by consulting the operand's own
// resolved location.
func (g *Generator) genAsmBlock(l *ast.List) {
	labelNames := l.Nodes[1].List
	stmts := l.Nodes[2].List

	// Register every label the block defines before emitting any
	// instruction, so a forward branch resolves (the parser's prescan
	// only collected names; the label table itself is the generator's).
	for _, ln := range labelNames.Nodes {
		name := g.strOf(ln.Str)
		if g.Labels.FindLabel(name) == nil {
			g.Labels.NewLabel(name, ilist.LabelCode)
		}
	}

	equates := map[string]int32{}
	for _, sn := range stmts.Nodes {
		if sn.Kind != ast.KList || sn.List.Count() == 0 {
			continue
		}
		g.genAsmStmt(sn.List, equates)
	}
}

func (g *Generator) genAsmStmt(sl *ast.List, equates map[string]int32) {
	op := sl.Op()

	switch op.Kind {
	case ast.KToken:
		switch op.Token {
		case ast.PtAsmLabel:
			name := g.strOf(sl.Nodes[1].Str)
			lbl := g.Labels.FindLabel(name)
			if lbl == nil {
				lbl = g.Labels.NewLabel(name, ilist.LabelCode)
			}
			g.placeLabel(lbl)
		case ast.PtAsmEquate:
			name := g.strOf(sl.Nodes[1].Str)
			if res := eval.Eval(sl.Nodes[2], g.scope, g.strOf); res.HasResult {
				equates[name] = res.Value
			}
		}
	case ast.KMnemonic:
		g.genAsmInstr(sl, equates)
	}
}

func (g *Generator) genAsmInstr(sl *ast.List, equates map[string]int32) {
	mne := sl.Nodes[0].Mne
	mode := sl.Nodes[1].Mode
	operand := sl.Nodes[2]

	if mode.IsIncomplete() {
		mode = g.resolveIncompleteAsmMode(mode, operand)
	}

	param1, ext := g.asmOperandText(operand, equates)
	g.block.AddInstrS(mne, mode, param1, "", ext)
}

// resolveIncompleteAsmMode picks zero-page vs. absolute (plain, ,X, or
// ,Y) for an operand the parser left as ModeUnk/UnkX/UnkY, based on
// whether the referenced symbol's (or literal's) address is below $100.
// The ZPY->ABY fallback for mnemonics with no ZP,Y encoding is left to
// isa.Lookup/GetInstrSize at output time, same as everywhere else code
// emits a ,Y-indexed zero-page access.
func (g *Generator) resolveIncompleteAsmMode(mode isa.AddrMode, operand ast.Node) isa.AddrMode {
	zp := false
	switch {
	case operand.Kind == ast.KStr:
		if s := g.scope.FindSymbol(g.strOf(operand.Str)); s != nil {
			zp = s.Location >= 0 && s.Location < 256
		}
	default:
		if v, ok := operand.AsInt32(); ok {
			zp = v >= 0 && v < 256
		}
	}
	switch mode {
	case isa.ModeUnk:
		if zp {
			return isa.ModeZP
		}
		return isa.ModeAbs
	case isa.ModeUnkX:
		if zp {
			return isa.ModeZPX
		}
		return isa.ModeAbsX
	case isa.ModeUnkY:
		if zp {
			return isa.ModeZPY
		}
		return isa.ModeAbsY
	}
	return mode
}

// asmOperandText renders an asm operand to the text ilist.Instr carries,
// resolving a local equate and folding anything else the evaluator can.
func (g *Generator) asmOperandText(operand ast.Node, equates map[string]int32) (string, ilist.ParamExt) {
	if operand.Kind == ast.KEmpty {
		return "", ilist.ExtNormal
	}
	if operand.Kind == ast.KStr {
		name := g.strOf(operand.Str)
		if v, ok := equates[name]; ok {
			return strconv.Itoa(int(v)), ilist.ExtNormal
		}
		return name, ilist.ExtNormal
	}
	if res := eval.Eval(operand, g.scope, g.strOf); res.HasResult {
		return strconv.Itoa(int(res.Value)), ilist.ExtNormal
	}
	return eval.GetExpression(operand, g.strOf), ilist.ExtNormal
}

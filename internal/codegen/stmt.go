package codegen

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
)

// emitBranch appends a conditional branch to target, marking the label
// referenced so the output stage's undefined-label check sees
// it used.
func (g *Generator) emitBranch(mne isa.Mnemonic, target *ilist.Label) {
	target.Referenced = true
	g.block.AddInstrS(mne, isa.ModeRel, target.Name, "", ilist.ExtNormal)
}

// jumpTo emits an unconditional JMP to target.
func (g *Generator) jumpTo(target *ilist.Label) {
	target.Referenced = true
	g.block.AddInstrS(isa.JMP, isa.ModeAbs, target.Name, "", ilist.ExtNormal)
}

// placeLabel attaches target to the next instruction and clears the
// register-use tracker, since any branch landing here invalidates
// whatever was known to be loaded along the branch not taken.
func (g *Generator) placeLabel(target *ilist.Label) {
	g.block.SetLabel(target)
	g.clearRegUse()
}

// emitSkipIfFalse emits the branch that skips past the "true" path when
// the just-performed CMP shows the condition op is false, using a
// signed/unsigned branch-selection table. cmpToZero selects the cheaper
// single-branch forms available when the right operand was the literal 0.
func (g *Generator) emitSkipIfFalse(op ast.ParseToken, target *ilist.Label, signed, cmpToZero bool) {
	switch op {
	case ast.PtEq:
		g.emitBranch(isa.BNE, target)
	case ast.PtNe:
		g.emitBranch(isa.BEQ, target)
	case ast.PtLt:
		if signed || cmpToZero {
			g.emitBranch(isa.BPL, target)
		} else {
			g.emitBranch(isa.BCS, target)
		}
	case ast.PtGe:
		if signed || cmpToZero {
			g.emitBranch(isa.BMI, target)
		} else {
			g.emitBranch(isa.BCC, target)
		}
	case ast.PtLe:
		// a <= b  <=>  !(a > b): skip when a > b (a-b doesn't borrow and isn't 0)
		falls := g.Labels.NewGenericLabel(ilist.LabelCode)
		if signed || cmpToZero {
			g.emitBranch(isa.BMI, falls)
		} else {
			g.emitBranch(isa.BCC, falls)
		}
		g.emitBranch(isa.BEQ, falls)
		g.jumpTo(target)
		g.placeLabel(falls)
	case ast.PtGt:
		if cmpToZero {
			g.emitBranch(isa.BEQ, target)
			return
		}
		// a > b  <=>  !(a <= b): skip when a-b borrows or is 0
		if signed {
			g.emitBranch(isa.BMI, target)
		} else {
			g.emitBranch(isa.BCC, target)
		}
		g.emitBranch(isa.BEQ, target)
	}
}

// exprIsSigned reports whether n's static type (when it resolves to a
// plain symbol) carries the signed flag; anything else conservatively
// defaults to unsigned.
func (g *Generator) exprIsSigned(n ast.Node) bool {
	if n.Kind != ast.KStr {
		return false
	}
	s := g.scope.FindSymbol(g.strOf(n.Str))
	return s != nil && s.IsSigned()
}

// isLiteralZero reports whether n is the constant literal 0.
func isLiteralZero(n ast.Node) bool {
	v, ok := n.AsInt32()
	return ok && v == 0
}

// genCondBranchSkip emits code that evaluates cond and branches to target
// when cond is false, handling a top-level comparison directly, `&&`/`||`
// with the standard short-circuit expansion, and anything else by loading
// the value and comparing against zero.
func (g *Generator) genCondBranchSkip(cond ast.Node, target *ilist.Label) {
	if cond.Kind == ast.KList {
		l := cond.List
		op := l.Op()
		if op.Kind == ast.KToken {
			switch op.Token {
			case ast.PtEq, ast.PtNe, ast.PtLt, ast.PtLe, ast.PtGt, ast.PtGe:
				left, right := l.Nodes[1], l.Nodes[2]
				signed := g.exprIsSigned(left)
				cmpToZero := isLiteralZero(right)
				g.genExpr(left, DestChar)
				g.applyRightOperand(isa.CMP, right)
				g.emitSkipIfFalse(op.Token, target, signed, cmpToZero)
				return
			case ast.PtLogAnd:
				// both sides must hold: either side false skips straight to target
				g.genCondBranchSkip(l.Nodes[1], target)
				g.genCondBranchSkip(l.Nodes[2], target)
				return
			case ast.PtLogOr:
				// either side holding is enough: only skip if both are false
				pass := g.Labels.NewGenericLabel(ilist.LabelCode)
				g.genCondBranchSkipInverted(l.Nodes[1], pass)
				g.genCondBranchSkip(l.Nodes[2], target)
				g.placeLabel(pass)
				return
			case ast.PtNot:
				falls := g.Labels.NewGenericLabel(ilist.LabelCode)
				g.genCondBranchSkip(l.Nodes[1], falls)
				g.jumpTo(target)
				g.placeLabel(falls)
				return
			}
		}
	}
	// plain truthy value: false is exactly zero
	g.genExpr(cond, DestChar)
	g.block.AddInstrS(isa.CMP, isa.ModeImm, "0", "", ilist.ExtNormal)
	g.emitBranch(isa.BEQ, target)
}

// genCondBranchSkipInverted branches to target when cond is TRUE, the
// mirror image genCondBranchSkip needs to short-circuit `||`.
func (g *Generator) genCondBranchSkipInverted(cond ast.Node, target *ilist.Label) {
	falls := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.genCondBranchSkip(cond, falls)
	g.jumpTo(target)
	g.placeLabel(falls)
}

func (g *Generator) genIf(l *ast.List) {
	cond, then := l.Nodes[1], l.Nodes[2]
	elseBranch := ast.Empty()
	if len(l.Nodes) > 3 {
		elseBranch = l.Nodes[3]
	}

	elseLabel := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.genCondBranchSkip(cond, elseLabel)
	g.genStatement(then)

	if elseBranch.Kind == ast.KEmpty {
		g.placeLabel(elseLabel)
		return
	}
	doneLabel := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.jumpTo(doneLabel)
	g.placeLabel(elseLabel)
	g.genStatement(elseBranch)
	g.placeLabel(doneLabel)
}

func (g *Generator) genWhile(l *ast.List) {
	cond, body := l.Nodes[1], l.Nodes[2]

	top := g.Labels.NewGenericLabel(ilist.LabelCode)
	exit := g.Labels.NewGenericLabel(ilist.LabelCode)

	g.placeLabel(top)
	g.genCondBranchSkip(cond, exit)
	g.breakLabels = append(g.breakLabels, exit)
	g.genStatement(body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.jumpTo(top)
	g.placeLabel(exit)
}

func (g *Generator) genDoWhile(l *ast.List) {
	body, cond := l.Nodes[1], l.Nodes[2]

	top := g.Labels.NewGenericLabel(ilist.LabelCode)
	exit := g.Labels.NewGenericLabel(ilist.LabelCode)

	g.placeLabel(top)
	g.breakLabels = append(g.breakLabels, exit)
	g.genStatement(body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.genCondBranchSkip(cond, exit)
	g.jumpTo(top)
	g.placeLabel(exit)
}

func (g *Generator) genFor(l *ast.List) {
	init, cond, incr, body := l.Nodes[1], l.Nodes[2], l.Nodes[3], l.Nodes[4]

	if init.Kind != ast.KEmpty {
		g.genStatement(init)
	}
	top := g.Labels.NewGenericLabel(ilist.LabelCode)
	exit := g.Labels.NewGenericLabel(ilist.LabelCode)

	g.placeLabel(top)
	if cond.Kind != ast.KEmpty {
		g.genCondBranchSkip(cond, exit)
	}
	g.breakLabels = append(g.breakLabels, exit)
	g.genStatement(body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	if incr.Kind != ast.KEmpty {
		g.genStatement(incr)
	}
	g.jumpTo(top)
	g.placeLabel(exit)
}

// genLoop lowers the counted-loop sugar `loop(var, start, count) block`:
// start is stored into var, the body runs, then var is incremented
// (CLC/ADC #1) and compared with count, branching back to the top until
// they are equal. The test comes after the body, so the body runs at
// least once. A constant start value folds to an immediate load.
func (g *Generator) genLoop(l *ast.List) {
	varName := g.strOf(l.Nodes[1].Str)
	start, count, body := l.Nodes[2], l.Nodes[3], l.Nodes[4]

	s := g.scope.FindSymbol(varName)
	if s == nil {
		g.rep.Warnf("codegen", 0, "undeclared loop variable %q", varName)
		return
	}
	g.genExpr(start, DestOf(s))
	g.storeA(s, ast.Empty())

	top := g.Labels.NewGenericLabel(ilist.LabelCode)
	exit := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.placeLabel(top)

	g.breakLabels = append(g.breakLabels, exit)
	g.genStatement(body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]

	g.genLoadInto(s, DestChar)
	g.block.AddInstrB(isa.CLC)
	g.block.AddInstrS(isa.ADC, isa.ModeImm, "1", "", ilist.ExtNormal)
	g.storeA(s, ast.Empty())
	g.applyRightOperand(isa.CMP, count)
	g.emitBranch(isa.BNE, top)
	g.placeLabel(exit)
}

// genSwitch lowers each case as a compare-and-skip chain, evaluating the
// subject into A again before each case's compare, matching the
// fall-through-free case bodies
// the parser produces (each case body is its own statement list).
func (g *Generator) genSwitch(l *ast.List) {
	subject := l.Nodes[1]
	exit := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.breakLabels = append(g.breakLabels, exit)

	var defaultClause *ast.List
	nextLabel := (*ilist.Label)(nil)

	for _, cn := range l.Nodes[2:] {
		cl := cn.List
		op := cl.Op()
		if op.Token == ast.PtDefault {
			defaultClause = cl
			continue
		}
		if nextLabel != nil {
			g.placeLabel(nextLabel)
		}
		val := cl.Nodes[1]
		g.genExpr(subject, DestChar)
		g.applyRightOperand(isa.CMP, val)
		nextLabel = g.Labels.NewGenericLabel(ilist.LabelCode)
		g.emitBranch(isa.BNE, nextLabel)
		for _, stmt := range cl.Nodes[2:] {
			g.genStatement(stmt)
		}
		g.jumpTo(exit)
	}
	if nextLabel != nil {
		g.placeLabel(nextLabel)
	}
	if defaultClause != nil {
		for _, stmt := range defaultClause.Nodes[1:] {
			g.genStatement(stmt)
		}
	}
	g.placeLabel(exit)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
}

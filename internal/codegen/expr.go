package codegen

import (
	"strconv"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/eval"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// addrModeFor chooses between zero-page and absolute addressing for a
// plain (non-indexed) access to s: any symbol whose location is below
// 256 uses zero-page modes; otherwise absolute.
func addrModeFor(s *sym.Record) isa.AddrMode {
	if s.Location >= 0 && s.Location < 256 {
		return isa.ModeZP
	}
	return isa.ModeAbs
}

func indexedModeFor(s *sym.Record, reg string) isa.AddrMode {
	zp := s.Location >= 0 && s.Location < 256
	if reg == "X" {
		if zp {
			return isa.ModeZPX
		}
		return isa.ModeAbsX
	}
	if zp {
		if _, cycles, ok := isa.Lookup(isa.LDA, isa.ModeZPY); ok && cycles > 0 {
			return isa.ModeZPY
		}
		return isa.ModeAbsY // ZPY unsupported for this mnemonic: fall back to ABY
	}
	return isa.ModeAbsY
}

// genExpr emits code that leaves the expression's value in A (for
// char/bool/ptr-low-byte destinations), first attempting constant folding.
func (g *Generator) genExpr(n ast.Node, dest DestType) {
	if res := eval.Eval(n, g.scope, g.strOf); res.HasResult {
		g.loadConst(res.Value, dest, eval.GetExpression(n, g.strOf))
		return
	}
	if n.Kind == ast.KStr {
		g.genLoadIdent(g.strOf(n.Str), dest)
		return
	}
	if n.Kind != ast.KList {
		return
	}
	l := n.List
	op := l.Op()
	if op.Kind != ast.KToken {
		return
	}
	if dest == DestInt {
		switch op.Token {
		case ast.PtAnd, ast.PtOr, ast.PtXor, ast.PtShl, ast.PtShr, ast.PtNot, ast.PtInvert:
			g.rep.Errorf("codegen", 0, "", "operator %q is 8-bit only", op.Token.String())
			return
		}
	}
	switch op.Token {
	case ast.PtAdd, ast.PtSub:
		g.genAddSub(op.Token, l, dest)
	case ast.PtAnd, ast.PtOr, ast.PtXor:
		g.genBitwise(op.Token, l, dest)
	case ast.PtMul:
		g.genMultiply(l, dest)
	case ast.PtDiv:
		g.genDivide(l, dest)
	case ast.PtEq, ast.PtNe, ast.PtLt, ast.PtLe, ast.PtGt, ast.PtGe:
		g.genCompareToBool(op.Token, l)
	case ast.PtNot:
		g.genExpr(l.Nodes[1], dest)
		g.block.AddInstrS(isa.CMP, isa.ModeImm, "0", "", ilist.ExtNormal)
		falseLabel := g.Labels.NewGenericLabel(ilist.LabelCode)
		doneLabel := g.Labels.NewGenericLabel(ilist.LabelCode)
		g.emitBranch(isa.BNE, falseLabel) // operand nonzero: result is false
		g.block.AddInstrS(isa.LDA, isa.ModeImm, "1", "", ilist.ExtNormal)
		g.jumpTo(doneLabel)
		g.placeLabel(falseLabel)
		g.block.AddInstrS(isa.LDA, isa.ModeImm, "0", "", ilist.ExtNormal)
		g.placeLabel(doneLabel)
		g.lastA = regUse{}
	case ast.PtNegate:
		g.genExpr(l.Nodes[1], dest)
		g.block.AddInstrB(isa.SEC)
		g.block.AddInstrS(isa.SBC, isa.ModeImm, "0", "", ilist.ExtNormal)
	case ast.PtInvert:
		g.genExpr(l.Nodes[1], dest)
		g.block.AddInstrS(isa.EOR, isa.ModeImm, "$FF", "", ilist.ExtNormal)
	case ast.PtShl, ast.PtShr:
		g.genShift(op.Token, l, dest)
	case ast.PtLookup:
		g.genLookup(l, dest)
	case ast.PtAddrOf:
		g.genAddrOf(l, dest)
	case ast.PtPropertyRef:
		g.genPropertyRef(l, dest)
	case ast.PtFuncCall:
		g.genFuncCall(l, dest)
	case ast.PtSet:
		g.genAssign(l)
	case ast.PtPreInc, ast.PtPreDec, ast.PtPostInc, ast.PtPostDec:
		g.genIncDec(op.Token, l.Nodes[1], dest)
	case ast.PtLowByte:
		g.genByteExtract(l.Nodes[1], false)
	case ast.PtHighByte:
		g.genByteExtract(l.Nodes[1], true)
	default:
		g.rep.Warnf("codegen", 0, "unsupported expression form %q", op.Token.String())
	}
}

func (g *Generator) loadConst(v int32, dest DestType, comment string) {
	text := strconv.FormatInt(int64(int8(v)), 10)
	if dest == DestInt {
		text = strconv.FormatInt(int64(v), 10)
	}
	if g.lastA.matchesConst(v) {
		return // already in A: elide the redundant load
	}
	in := g.block.AddInstrS(isa.LDA, isa.ModeImm, text, "", ilist.ExtNormal)
	in.Comment = comment
	g.lastA = regUse{valid: true, isConst: true, constVal: v}
	if dest == DestInt {
		hi := g.block.AddInstrS(isa.LDX, isa.ModeImm, hiByteText(v), "", ilist.ExtNormal)
		hi.Comment = "high byte"
	}
}

func hiByteText(v int32) string {
	return strconv.FormatInt(int64(uint16(v)>>8), 10)
}

func (g *Generator) genLoadIdent(name string, dest DestType) {
	s := g.scope.FindSymbol(name)
	if s == nil {
		g.rep.Warnf("codegen", 0, "undeclared identifier %q", name)
		return
	}
	g.genLoadInto(s, dest)
}

// genLoadInto loads s's value into A (plus X for the high byte of an int
// destination); a zero-page-vs-absolute choice is made per symbol
// location.
func (g *Generator) genLoadInto(s *sym.Record, dest DestType) {
	if g.lastA.matchesSym(s.NameText) {
		return
	}
	mode := addrModeFor(s)
	g.block.AddInstrS(isa.LDA, mode, s.NameText, "", ilist.ExtNormal)
	g.lastA = regUse{valid: true, symName: s.NameText}
	if dest == DestInt && s.Base == sym.TypeInt {
		g.block.AddInstrS(isa.LDX, mode, s.NameText, "", ilist.ExtHi)
	}
}

func (g *Generator) storeA(s *sym.Record, comment ast.Node) {
	mode := addrModeFor(s)
	in := g.block.AddInstrS(isa.STA, mode, s.NameText, "", ilist.ExtNormal)
	if comment.Kind != ast.KEmpty {
		in.Comment = eval.GetExpression(comment, g.strOf)
	}
	g.lastA = regUse{valid: true, symName: s.NameText}
	if s.Base == sym.TypeInt {
		g.block.AddInstrS(isa.STX, mode, s.NameText, "", ilist.ExtHi)
	}
}

// genAssign lowers `set`: the destination's shape picks the store form,
// and the right-hand side is loaded with the destination's type hint.
func (g *Generator) genAssign(l *ast.List) {
	lhs, rhs := l.Nodes[1], l.Nodes[2]

	switch {
	case lhs.Kind == ast.KStr:
		s := g.scope.FindSymbol(g.strOf(lhs.Str))
		if s == nil {
			return
		}
		g.genExpr(rhs, DestOf(s))
		g.storeA(s, rhs)

	case lhs.Kind == ast.KList && lhs.List.Op().Token == ast.PtLookup:
		g.genStoreLookup(lhs.List, rhs)

	case lhs.Kind == ast.KList && lhs.List.Op().Token == ast.PtPropertyRef:
		g.genStorePropertyRef(lhs.List, rhs)

	default:
		g.rep.Warnf("codegen", 0, "unsupported assignment target")
	}
}

// genAddSub lowers `add`/`sub`: load the left operand, apply the
// CLC/SEC pre-op, then ADC/SBC the right operand.
func (g *Generator) genAddSub(op ast.ParseToken, l *ast.List, dest DestType) {
	left, right := l.Nodes[1], l.Nodes[2]
	g.genExpr(left, dest)
	if op == ast.PtAdd {
		g.block.AddInstrB(isa.CLC)
	} else {
		g.block.AddInstrB(isa.SEC)
	}
	mne := isa.ADC
	if op == ast.PtSub {
		mne = isa.SBC
	}
	g.applyRightOperand(mne, right)
}

// genBitwise lowers `and`/`or`/`eor`, swapping sides first when the left
// is a literal and the right is a nested list, since the right operand
// is the one applyRightOperand knows how to fold or address directly.
func (g *Generator) genBitwise(op ast.ParseToken, l *ast.List, dest DestType) {
	left, right := l.Nodes[1], l.Nodes[2]
	if _, ok := left.AsInt32(); ok && right.Kind == ast.KList {
		left, right = right, left
	}
	g.genExpr(left, dest)
	mne := map[ast.ParseToken]isa.Mnemonic{ast.PtAnd: isa.AND, ast.PtOr: isa.ORA, ast.PtXor: isa.EOR}[op]
	g.applyRightOperand(mne, right)
}

// applyRightOperand emits mne against the right operand: immediate for a
// literal, direct for an identifier, or push-A/recurse/op-with-stack for a
// nested expression.
func (g *Generator) applyRightOperand(mne isa.Mnemonic, right ast.Node) {
	if res := eval.Eval(right, g.scope, g.strOf); res.HasResult {
		g.block.AddInstrS(mne, isa.ModeImm, strconv.Itoa(int(uint8(res.Value))), "", ilist.ExtNormal)
		return
	}
	if right.Kind == ast.KStr {
		s := g.scope.FindSymbol(g.strOf(right.Str))
		if s != nil {
			g.block.AddInstrS(mne, addrModeFor(s), s.NameText, "", ilist.ExtNormal)
			return
		}
	}
	if right.Kind == ast.KList && right.List.Op().Token == ast.PtPropertyRef {
		base, field := g.resolvePropertyRef(right.List)
		g.block.AddInstrS(mne, isa.ModeAbs, base, field, ilist.ExtAdd)
		return
	}
	// nested expression: push A, evaluate the right side, pull into the op
	// via a scratch zero-page temp; the temp is a per-function compiler
	// detail, not a user-visible symbol.
	g.block.AddInstrB(isa.PHA)
	g.genExpr(right, DestChar)
	g.block.AddInstrS(isa.STA, isa.ModeZP, "L_TMP", "", ilist.ExtNormal)
	g.block.AddInstrB(isa.PLA)
	g.block.AddInstrS(mne, isa.ModeZP, "L_TMP", "", ilist.ExtNormal)
}

// genCompareToBool lowers a comparison used as a value (not as a branch
// condition) to a 0/1 result in A via a load-compare-conditional-set
// sequence, reusing the same branch-selection table the `if`/`while`
// conditional lowering uses (see emitSkipIfFalse in stmt.go).
func (g *Generator) genCompareToBool(op ast.ParseToken, l *ast.List) {
	left, right := l.Nodes[1], l.Nodes[2]
	signed := g.exprIsSigned(left)
	cmpToZero := isLiteralZero(right)
	g.genExpr(left, DestChar)
	g.applyRightOperand(isa.CMP, right)

	falseLabel := g.Labels.NewGenericLabel(ilist.LabelCode)
	doneLabel := g.Labels.NewGenericLabel(ilist.LabelCode)
	g.emitSkipIfFalse(op, falseLabel, signed, cmpToZero)
	g.block.AddInstrS(isa.LDA, isa.ModeImm, "1", "", ilist.ExtNormal)
	g.jumpTo(doneLabel)
	g.placeLabel(falseLabel)
	g.block.AddInstrS(isa.LDA, isa.ModeImm, "0", "", ilist.ExtNormal)
	g.placeLabel(doneLabel)
	g.lastA = regUse{}
}

// genShift accepts only a positive literal count 1..15 and
// emits that many ASL/LSR against the loaded value in A.
func (g *Generator) genShift(op ast.ParseToken, l *ast.List, dest DestType) {
	left, right := l.Nodes[1], l.Nodes[2]
	count, ok := right.AsInt32()
	if !ok || count < 1 || count > 15 {
		g.rep.Warnf("codegen", 0, "shift count must be a literal 1..15")
		return
	}
	g.genExpr(left, dest)
	mne := isa.ASL
	if op == ast.PtShr {
		mne = isa.LSR
	}
	for i := int32(0); i < count; i++ {
		g.block.AddInstrB(mne)
	}
	g.lastA = regUse{}
}

// genDivide has no synthesized instruction sequence on stock 6502
// hardware; a literal power-of-two divisor lowers to a right shift, and
// anything else is reported as unsupported (this compiler targets 8-bit
// game code, where general integer division is deliberately avoided).
func (g *Generator) genDivide(l *ast.List, dest DestType) {
	right := l.Nodes[2]
	if n, ok := right.AsInt32(); ok && n > 0 && n&(n-1) == 0 {
		shifts := int32(0)
		for v := n; v > 1; v >>= 1 {
			shifts++
		}
		g.genExpr(l.Nodes[1], dest)
		for i := int32(0); i < shifts; i++ {
			g.block.AddInstrB(isa.LSR)
		}
		g.lastA = regUse{}
		return
	}
	g.rep.Warnf("codegen", 0, "division by a non-power-of-two constant is not supported on this target")
}

// genIncDec lowers ++/-- (pre and post, prefix and postfix) against a plain
// variable: INC/DEC in place for a byte-width target, or a borrow/carry
// load-adjust-store pair for a 16-bit int (genWordIncDec), since the 6502
// has no 16-bit INC/DEC.
func (g *Generator) genIncDec(op ast.ParseToken, operand ast.Node, dest DestType) {
	if operand.Kind != ast.KStr {
		g.rep.Warnf("codegen", 0, "increment/decrement target must be a plain variable")
		return
	}
	s := g.scope.FindSymbol(g.strOf(operand.Str))
	if s == nil {
		g.rep.Warnf("codegen", 0, "undeclared identifier %q", g.strOf(operand.Str))
		return
	}
	isInc := op == ast.PtPreInc || op == ast.PtPostInc
	isPost := op == ast.PtPostInc || op == ast.PtPostDec

	if s.Base == sym.TypeInt {
		g.genWordIncDec(s, isInc, isPost, dest)
		return
	}

	mne := isa.INC
	if !isInc {
		mne = isa.DEC
	}
	if isPost {
		g.genLoadInto(s, dest)
	}
	g.block.AddInstrS(mne, addrModeFor(s), s.NameText, "", ilist.ExtNormal)
	g.clearRegUse()
	if !isPost {
		g.genLoadInto(s, dest)
	}
}

// genWordIncDec adds or subtracts 1 from a 16-bit variable a byte at a
// time, propagating the carry/borrow into the high byte. A post form has
// to stash the pre-mutation value since computing the new one clobbers
// both A and X.
func (g *Generator) genWordIncDec(s *sym.Record, isInc, isPost bool, dest DestType) {
	mode := addrModeFor(s)
	if isPost {
		g.genLoadInto(s, DestInt)
		g.block.AddInstrB(isa.PHA)
		g.block.AddInstrB(isa.TXA)
		g.block.AddInstrB(isa.PHA)
	}

	g.block.AddInstrS(isa.LDA, mode, s.NameText, "", ilist.ExtNormal)
	if isInc {
		g.block.AddInstrB(isa.CLC)
		g.block.AddInstrS(isa.ADC, isa.ModeImm, "1", "", ilist.ExtNormal)
	} else {
		g.block.AddInstrB(isa.SEC)
		g.block.AddInstrS(isa.SBC, isa.ModeImm, "1", "", ilist.ExtNormal)
	}
	g.block.AddInstrS(isa.STA, mode, s.NameText, "", ilist.ExtNormal)
	g.block.AddInstrS(isa.LDA, mode, s.NameText, "", ilist.ExtHi)
	if isInc {
		g.block.AddInstrS(isa.ADC, isa.ModeImm, "0", "", ilist.ExtNormal)
	} else {
		g.block.AddInstrS(isa.SBC, isa.ModeImm, "0", "", ilist.ExtNormal)
	}
	g.block.AddInstrS(isa.STA, mode, s.NameText, "", ilist.ExtHi)
	g.clearRegUse()

	if isPost {
		g.block.AddInstrB(isa.PLA)
		g.block.AddInstrB(isa.TAX)
		g.block.AddInstrB(isa.PLA)
		g.lastA = regUse{}
		g.lastX = regUse{}
		return
	}
	if dest == DestInt {
		g.genLoadInto(s, DestInt)
	} else {
		g.genLoadInto(s, DestChar)
	}
}

// genByteExtract lowers the `<`/`>` low-byte/high-byte extractors: a
// foldable operand takes the byte as an immediate, a plain identifier
// addresses that byte directly, and anything else evaluates the full word
// and pulls the byte out of the A/X pair the word evaluation leaves
// behind.
func (g *Generator) genByteExtract(operand ast.Node, high bool) {
	if res := eval.Eval(operand, g.scope, g.strOf); res.HasResult {
		v := uint32(uint16(res.Value))
		if high {
			v >>= 8
		}
		g.block.AddInstrS(isa.LDA, isa.ModeImm, strconv.Itoa(int(uint8(v))), "", ilist.ExtNormal)
		g.lastA = regUse{}
		return
	}
	if operand.Kind == ast.KStr {
		s := g.scope.FindSymbol(g.strOf(operand.Str))
		if s != nil {
			mode := addrModeFor(s)
			ext := ilist.ExtNormal
			if high {
				ext = ilist.ExtHi
			}
			g.block.AddInstrS(isa.LDA, mode, s.NameText, "", ext)
			g.lastA = regUse{}
			return
		}
	}
	g.genExpr(operand, DestInt)
	if high {
		g.block.AddInstrB(isa.TXA)
	} else {
		g.block.AddInstrS(isa.AND, isa.ModeImm, "$FF", "", ilist.ExtNormal)
	}
	g.lastA = regUse{}
}

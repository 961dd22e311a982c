// Package codegen implements the code generator: it walks each
// function's AST body and emits a 6502 instruction stream into the
// instruction lists of internal/ilist, consulting internal/eval for
// constant folding and internal/isa for addressing-mode and opcode facts.
package codegen

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/machine"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// DestType is the destination-type hint threaded through expression
// lowering, distinguishing byte vs. word operations and addressing.
type DestType int

const (
	DestNone DestType = iota
	DestChar
	DestInt
	DestPtr
	DestBool
)

// regUse records the last value loaded into a register, enabling a
// small redundant-load elision: a non-mandatory optimization.
type regUse struct {
	valid    bool
	isConst  bool
	constVal int32
	symName  string
}

func (r regUse) matchesConst(v int32) bool { return r.valid && r.isConst && r.constVal == v }
func (r regUse) matchesSym(name string) bool {
	return r.valid && !r.isConst && r.symName == name
}

// Generator is the code generator's process-wide state: the
// global symbol table, the label table, and the register-use tracker for
// whichever block is currently being emitted.
type Generator struct {
	Global *sym.Table
	Labels *ilist.Table
	interp *lex.StringTable
	rep    *diag.Reporter
	mach   machine.Info

	scope   *sym.Table
	block   *ilist.Block
	curFunc *sym.Record

	lastA, lastX, lastY regUse

	breakLabels []*ilist.Label // active loop/switch exit targets, innermost last
}

func New(global *sym.Table, labels *ilist.Table, interp *lex.StringTable, rep *diag.Reporter, mach machine.Info) *Generator {
	return &Generator{Global: global, Labels: labels, interp: interp, rep: rep, mach: mach}
}

func (g *Generator) strOf(id ast.StrID) string { return g.interp.Text(id) }

func (g *Generator) clearRegUse() {
	g.lastA, g.lastX, g.lastY = regUse{}, regUse{}, regUse{}
}

// Generate emits code for every function definition in the program,
// storing each one's finished block into its symbol's Extension.CodeBlock.
func (g *Generator) Generate(prog *ast.List) {
	for _, n := range prog.Operands() {
		if n.Kind != ast.KList || n.List.Op().Token != ast.PtDefun {
			continue
		}
		g.genFunction(n.List)
	}
}

func (g *Generator) genFunction(l *ast.List) {
	name := g.strOf(l.Nodes[1].Str)
	fn := g.Global.FindSymbol(name)
	if fn == nil || fn.Ext == nil {
		return
	}
	g.curFunc = fn
	g.scope = fn.Ext.Locals
	g.clearRegUse()

	block := ilist.StartBlock(name)
	block.FuncSym = fn
	g.block = block
	block.SetLabel(g.Labels.NewLabel(name, ilist.LabelCode))

	body := l.Nodes[5]
	if body.Kind == ast.KList && body.List.Op().Token == ast.PtAsm {
		g.genAsmBlock(body.List)
	} else if body.Kind == ast.KList {
		g.genStatementList(body.List)
	}

	if !fn.IsMainFunction() {
		g.block.AddInstrB(isa.RTS)
	}
	fn.Ext.CodeBlock = block
}

// genStatementList emits every statement in a `code` block in order,
// skipping the leading operator token.
func (g *Generator) genStatementList(l *ast.List) {
	for _, n := range l.Operands() {
		g.genStatement(n)
	}
}

func (g *Generator) genStatement(n ast.Node) {
	if n.Kind != ast.KList || n.List.Count() == 0 {
		return
	}
	l := n.List
	op := l.Op()
	if op.Kind != ast.KToken {
		// a bare expression statement, e.g. a funcCall with no assignment
		g.genExpr(n, DestNone)
		return
	}
	switch op.Token {
	case ast.PtCodeBlock:
		g.genStatementList(l)
	case ast.PtSet:
		g.genAssign(l)
	case ast.PtIf:
		g.genIf(l)
	case ast.PtWhile:
		g.genWhile(l)
	case ast.PtDoWhile:
		g.genDoWhile(l)
	case ast.PtFor:
		g.genFor(l)
	case ast.PtLoop:
		g.genLoop(l)
	case ast.PtSwitch:
		g.genSwitch(l)
	case ast.PtReturn:
		g.genReturn(l)
	case ast.PtBreak:
		g.genBreak()
	case ast.PtStrobe:
		g.genStrobe(l)
	case ast.PtDefine:
		g.genLocalInit(l)
	case ast.PtAsm:
		g.genAsmBlock(l)
	default:
		g.genExpr(n, DestNone)
	}
}

// genLocalInit emits the store for any local declarator whose initializer
// wasn't folded by the symbol generator: the initializer node is retained
// for the code generator to lower here.
func (g *Generator) genLocalInit(l *ast.List) {
	for _, dn := range l.Nodes[3].List.Nodes {
		d := dn.List
		name := g.strOf(d.Nodes[0].Str)
		s := g.scope.FindSymbol(name)
		if s == nil || s.Init.Kind == ast.KEmpty {
			continue
		}
		g.genExpr(s.Init, DestOf(s))
		g.storeA(s, ast.Empty())
	}
}

// DestOf derives the destination-type hint implied by a symbol's own
// type, for contexts that store directly into it.
func DestOf(s *sym.Record) DestType {
	switch {
	case s.IsPointer():
		return DestPtr
	case s.Base == sym.TypeInt:
		return DestInt
	case s.Base == sym.TypeBool:
		return DestBool
	default:
		return DestChar
	}
}

func (g *Generator) genReturn(l *ast.List) {
	if len(l.Nodes) > 1 {
		g.genExpr(l.Nodes[1], DestOf(g.curFunc))
	}
	g.block.AddInstrB(isa.RTS)
}

func (g *Generator) genBreak() {
	if len(g.breakLabels) == 0 {
		return
	}
	target := g.breakLabels[len(g.breakLabels)-1]
	g.jumpTo(target)
}

// genStrobe emits a momentary hardware-register write: LDA #0 followed by
// a single store to the register, since TIA/PIA strobe registers react to
// the write itself rather than to the value stored.
func (g *Generator) genStrobe(l *ast.List) {
	name := g.strOf(l.Nodes[1].Str)
	s := g.scope.FindSymbol(name)
	if s == nil {
		return
	}
	g.block.AddInstrS(isa.LDA, isa.ModeImm, "0", "", ilist.ExtNormal)
	g.storeA(s, ast.Empty())
}

// Package symgen implements the symbol generator: it walks the parser's
// AST and populates the global symbol table, per-function
// parameter/local tables, and per-aggregate member tables, folding
// constant initializers with internal/eval as it goes.
package symgen

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/eval"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// Generator bundles the process-wide tables a symbol-generation pass
// populates
// state, encapsulated here rather than left as package globals).
type Generator struct {
	Global *sym.Table
	interp *lex.StringTable
	types  *sym.TypeRegistry
	rep    *diag.Reporter
	tags   map[string]*sym.Record
}

func New(interp *lex.StringTable, types *sym.TypeRegistry, rep *diag.Reporter) *Generator {
	return &Generator{
		Global: sym.NewGlobalTable(),
		interp: interp,
		types:  types,
		rep:    rep,
		tags:   make(map[string]*sym.Record),
	}
}

func (g *Generator) strOf(id ast.StrID) string { return g.interp.Text(id) }

// Run walks every top-level construct of the program list.
func (g *Generator) Run(prog *ast.List) {
	for _, n := range prog.Operands() {
		g.genTopLevel(n)
	}
}

func (g *Generator) genTopLevel(n ast.Node) {
	if n.Kind != ast.KList {
		return
	}
	l := n.List
	op := l.Op()
	if op.Kind != ast.KToken {
		return
	}
	switch op.Token {
	case ast.PtStruct:
		g.genAggregate(l, sym.KindStruct)
	case ast.PtUnion:
		g.genAggregate(l, sym.KindUnion)
	case ast.PtEnum:
		g.genEnum(l)
	case ast.PtDefine:
		g.genGlobalDefine(l)
	case ast.PtDefun:
		g.genFunction(l)
	}
}

// resolveBaseType maps a type keyword or previously-declared tag name to a
// BaseType plus, for user types, the tag's own Record.
func (g *Generator) resolveBaseType(name string) (sym.BaseType, *sym.Record) {
	switch name {
	case "char", "byte":
		return sym.TypeChar, nil
	case "bool":
		return sym.TypeBool, nil
	case "int", "word":
		return sym.TypeInt, nil
	case "void":
		return sym.TypeNone, nil
	default:
		if def, ok := g.tags[name]; ok {
			return sym.TypeUser, def
		}
		return sym.TypeUser, nil
	}
}

func modifierFlags(mods *ast.List, strOf func(ast.StrID) string, isPointer bool) sym.Flags {
	var f sym.Flags
	for _, m := range mods.Nodes {
		switch strOf(m.Str) {
		case "signed":
			f |= sym.FlagSigned
		case "zeropage":
			f |= sym.FlagZeroPage
		case "register":
			f |= sym.FlagRegister
		case "inline":
			f |= sym.FlagInline
		}
	}
	if isPointer {
		f |= sym.FlagPointer
	}
	return f
}

func hasModifier(mods *ast.List, strOf func(ast.StrID) string, name string) bool {
	for _, m := range mods.Nodes {
		if strOf(m.Str) == name {
			return true
		}
	}
	return false
}

// genAggregate populates a struct or union tag's member table and total
// size
// all share offset 0 and the union's size is the largest member).
func (g *Generator) genAggregate(l *ast.List, kind sym.Kind) {
	tagID := l.Nodes[1].Str
	tagName := ""
	if tagID != ast.NoStrID {
		tagName = g.strOf(tagID)
	}
	rec, _ := g.Global.AddSymbol(tagName, kind, sym.TypeStruct, sym.FlagNone)
	members := sym.NewTable(nil)

	offset := 0
	maxSize := 0
	for _, memberNode := range l.Nodes[2].List.Nodes {
		if memberNode.Kind != ast.KList || memberNode.List.Op().Token != ast.PtDefine {
			continue
		}
		fields := g.genFields(memberNode.List, members)
		for _, f := range fields {
			if kind == sym.KindUnion {
				f.Location = 0
				if sz := f.CalcVarSize(); sz > maxSize {
					maxSize = sz
				}
			} else {
				f.Location = offset
				offset += f.CalcVarSize()
			}
		}
	}

	rec.Ext = &sym.Extension{Locals: members}
	if kind == sym.KindUnion {
		rec.NumElements = maxSize
	} else {
		rec.NumElements = offset
	}
	if tagName != "" {
		g.tags[tagName] = rec
	}
}

// genFields adds every declarator of a `define` list as a member of table
// t, returning the created records in declaration order so the caller can
// assign offsets.
func (g *Generator) genFields(l *ast.List, t *sym.Table) []*sym.Record {
	baseTypeName := g.strOf(l.Nodes[1].Str)
	mods := l.Nodes[2].List
	decls := l.Nodes[3].List
	base, userType := g.resolveBaseType(baseTypeName)
	flags := modifierFlags(mods, g.strOf, false)

	out := make([]*sym.Record, 0, decls.Count())
	for _, dn := range decls.Nodes {
		d := dn.List
		name := g.strOf(d.Nodes[0].Str)
		ptrLevel := d.Nodes[1].Int
		f := flags
		if ptrLevel > 0 {
			f |= sym.FlagPointer
		}
		rec, _ := t.AddSymbol(name, sym.KindVar, base, f)
		rec.UserTypeDef = userType
		rec.NumElements = 1
		if arr := d.Nodes[2]; arr.Kind != ast.KEmpty {
			rec.Flags |= sym.FlagArray
			if res := eval.Eval(arr, g.Global, g.strOf); res.HasResult {
				rec.NumElements = int(res.Value)
			}
		}
		out = append(out, rec)
	}
	return out
}

// genEnum installs the enum's tag (if any) as a KindEnum symbol and each
// value as a KindConst char with FlagEnumValue.
func (g *Generator) genEnum(l *ast.List) {
	tagID := l.Nodes[1].Str
	if tagID != ast.NoStrID {
		tagRec, _ := g.Global.AddSymbol(g.strOf(tagID), sym.KindEnum, sym.TypeChar, sym.FlagNone)
		g.tags[g.strOf(tagID)] = tagRec
	}

	counter := int32(0)
	for _, vn := range l.Nodes[2].List.Nodes {
		v := vn.List
		name := g.strOf(v.Nodes[0].Str)
		val := counter
		if expr := v.Nodes[1]; expr.Kind != ast.KEmpty {
			if res := eval.Eval(expr, g.Global, g.strOf); res.HasResult {
				val = res.Value
			}
		}
		rec, _ := g.Global.AddSymbol(name, sym.KindConst, sym.TypeChar, sym.FlagEnumValue)
		rec.HasValue = true
		rec.ConstValue = val
		counter = val + 1
	}
}

// genGlobalDefine processes a top-level `define` into one or more global
// symbols.
func (g *Generator) genGlobalDefine(l *ast.List) {
	baseTypeName := g.strOf(l.Nodes[1].Str)
	mods := l.Nodes[2].List
	decls := l.Nodes[3].List
	base, userType := g.resolveBaseType(baseTypeName)
	isConstDecl := hasModifier(mods, g.strOf, "const")
	flags := modifierFlags(mods, g.strOf, false)

	for _, dn := range decls.Nodes {
		g.genOneVar(g.Global, dn.List, base, userType, flags, isConstDecl, false)
	}
}

// genOneVar creates one variable/constant symbol from a declarator list,
// folding its array size, location, and initializer where possible.
func (g *Generator) genOneVar(t *sym.Table, d *ast.List, base sym.BaseType, userType *sym.Record, baseFlags sym.Flags, isConstDecl, isLocal bool) *sym.Record {
	name := g.strOf(d.Nodes[0].Str)
	ptrLevel := d.Nodes[1].Int
	flags := baseFlags
	if ptrLevel > 0 {
		flags |= sym.FlagPointer
	}

	rec, _ := t.AddSymbol(name, sym.KindVar, base, flags)
	rec.UserTypeDef = userType
	rec.IsLocal = isLocal
	rec.NumElements = 1

	if arr := d.Nodes[2]; arr.Kind != ast.KEmpty {
		rec.Flags |= sym.FlagArray
		if res := eval.Eval(arr, t, g.strOf); res.HasResult {
			rec.NumElements = int(res.Value)
		}
	}

	if hint := d.Nodes[3]; hint.Kind == ast.KList {
		switch g.strOf(hint.List.Nodes[1].Str) {
		case "A":
			rec.Hint = sym.HintA
		case "X":
			rec.Hint = sym.HintX
		case "Y":
			rec.Hint = sym.HintY
		}
	}

	if loc := d.Nodes[4]; loc.Kind != ast.KEmpty {
		if res := eval.Eval(loc, t, g.strOf); res.HasResult {
			rec.Location = int(res.Value)
		}
	}

	if init := d.Nodes[5]; init.Kind != ast.KEmpty {
		if res := eval.Eval(init, t, g.strOf); res.HasResult {
			// An evaluable initializer promotes the symbol to a const
			// carrying the folded value.
			rec.Kind = sym.KindConst
			rec.HasValue = true
			rec.ConstValue = res.Value
			rec.ConstNotes = eval.GetExpression(init, g.strOf)
		} else {
			rec.Init = init
		}
	}

	if isConstDecl && rec.Kind != sym.KindConst {
		rec.Kind = sym.KindConst
	}
	return rec
}

// genFunction creates a function symbol with parameter and local
// sub-tables; parameter symbols never
// live in the local table and vice versa.
func (g *Generator) genFunction(l *ast.List) {
	name := g.strOf(l.Nodes[1].Str)
	retTypeName := g.strOf(l.Nodes[2].Str)
	mods := l.Nodes[3].List
	params := l.Nodes[4].List
	body := l.Nodes[5]

	base, userType := g.resolveBaseType(retTypeName)
	flags := modifierFlags(mods, g.strOf, false)
	rec, _ := g.Global.AddSymbol(name, sym.KindFunc, base, flags)
	rec.UserTypeDef = userType

	paramTable := sym.NewTable(g.Global)
	localTable := sym.NewTable(paramTable)
	ext := &sym.Extension{Params: paramTable, Locals: localTable, Inlined: hasModifier(mods, g.strOf, "inline")}

	for _, pn := range params.Nodes {
		pd := pn.List
		pname := g.strOf(pd.Nodes[0].Str)
		pbaseName := g.strOf(pd.Nodes[1].Str)
		pptr := pd.Nodes[2].Int
		pmods := pd.Nodes[3].List
		phint := pd.Nodes[4]

		pbase, putype := g.resolveBaseType(pbaseName)
		pflags := modifierFlags(pmods, g.strOf, pptr > 0) | sym.FlagParam
		prec, _ := paramTable.AddSymbol(pname, sym.KindVar, pbase, pflags)
		prec.UserTypeDef = putype
		prec.NumElements = 1
		if phint.Kind == ast.KStr {
			switch g.strOf(phint.Str) {
			case "A":
				prec.Hint = sym.HintA
			case "X":
				prec.Hint = sym.HintX
			case "Y":
				prec.Hint = sym.HintY
			}
		}
		ext.ParamCount++
	}

	if body.Kind == ast.KList && body.List.Op().Token == ast.PtAsm {
		ext.BodyAST = body.List
	} else if body.Kind == ast.KList {
		ext.BodyAST = body.List
		g.collectLocals(localTable, body.List)
	}
	rec.Ext = ext
}

// collectLocals recursively walks a function body's statement lists for
// `define` nodes, installing each into the function's local table. Nested
// control-flow bodies (if/while/for/loop/switch/code blocks) are
// descended into; expression statements and asm blocks are not, since
// the grammar never nests a declaration inside them.
func (g *Generator) collectLocals(locals *sym.Table, l *ast.List) {
	for _, n := range l.Nodes {
		if n.Kind != ast.KList {
			continue
		}
		sub := n.List
		op := sub.Op()
		if op.Kind != ast.KToken {
			continue
		}
		switch op.Token {
		case ast.PtDefine:
			g.genLocalDefine(locals, sub)
		case ast.PtCodeBlock:
			g.collectLocals(locals, sub)
		case ast.PtIf:
			for _, operand := range sub.Operands() {
				if operand.Kind == ast.KList {
					g.collectLocals(locals, operand.List)
				}
			}
		case ast.PtWhile, ast.PtLoop:
			if bodyNode := sub.Nodes[len(sub.Nodes)-1]; bodyNode.Kind == ast.KList {
				g.collectLocals(locals, bodyNode.List)
			}
		case ast.PtDoWhile:
			if bodyNode := sub.Nodes[1]; bodyNode.Kind == ast.KList {
				g.collectLocals(locals, bodyNode.List)
			}
		case ast.PtFor:
			if bodyNode := sub.Nodes[4]; bodyNode.Kind == ast.KList {
				g.collectLocals(locals, bodyNode.List)
			}
		case ast.PtSwitch:
			for _, caseNode := range sub.Nodes[2:] {
				if caseNode.Kind == ast.KList {
					g.collectLocals(locals, caseNode.List)
				}
			}
		}
	}
}

func (g *Generator) genLocalDefine(locals *sym.Table, l *ast.List) {
	baseTypeName := g.strOf(l.Nodes[1].Str)
	mods := l.Nodes[2].List
	decls := l.Nodes[3].List
	base, userType := g.resolveBaseType(baseTypeName)
	isConstDecl := hasModifier(mods, g.strOf, "const")
	flags := modifierFlags(mods, g.strOf, false)

	for _, dn := range decls.Nodes {
		g.genOneVar(locals, dn.List, base, userType, flags, isConstDecl, true)
	}
}

package codegen

import (
	"strconv"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// lookupBase resolves the array/pointer identifier a `[]` lookup or an
// `&arr[i]` indexes into; only a plain identifier base is supported,
// since postfix `[]` always applies to a primary identifier.
func (g *Generator) lookupBase(base ast.Node) *sym.Record {
	if base.Kind != ast.KStr {
		return nil
	}
	return g.scope.FindSymbol(g.strOf(base.Str))
}

// constIndexOffset folds a lookup index against stride when possible,
// reporting ok=false for a runtime-only index.
func constIndexOffset(idx ast.Node, stride int) (int, bool) {
	v, ok := idx.AsInt32()
	if !ok {
		return 0, false
	}
	return int(v) * stride, true
}

// genLookup loads `base[index]` into A (plus X for a 2-byte element dest).
// A literal index folds to a fixed offset off the array's base address;
// a runtime index is carried in Y and applied with indexed addressing,
// indirect-indexed when base is itself a pointer.
func (g *Generator) genLookup(l *ast.List, dest DestType) {
	base, idx := l.Nodes[1], l.Nodes[2]
	s := g.lookupBase(base)
	if s == nil {
		g.rep.Warnf("codegen", 0, "unsupported array expression")
		return
	}
	stride := s.GetBaseVarSize()
	elemDest := elemDestOf(s)

	if off, ok := constIndexOffset(idx, stride); ok {
		offText := strconv.Itoa(off)
		in := g.block.AddInstrS(isa.LDA, isa.ModeAbs, s.NameText, offText, ilist.ExtAdd)
		in.Comment = s.NameText + "[" + strconv.Itoa(off/max1(stride)) + "]"
		g.lastA = regUse{}
		if dest == DestInt && elemDest == DestInt {
			g.block.AddInstrS(isa.LDX, isa.ModeAbs, s.NameText, offText, ilist.ExtPlusOne)
		}
		return
	}

	g.genExpr(idx, DestChar)
	g.block.AddInstrB(isa.TAY)
	if s.IsPointer() {
		g.block.AddInstrS(isa.LDA, isa.ModeIndY, s.NameText, "", ilist.ExtNormal)
	} else {
		g.block.AddInstrS(isa.LDA, isa.ModeAbsY, s.NameText, "", ilist.ExtNormal)
	}
	g.lastA = regUse{}
}

// genStoreLookup lowers `base[index] = rhs`, the store-side mirror of
// genLookup.
func (g *Generator) genStoreLookup(l *ast.List, rhs ast.Node) {
	base, idx := l.Nodes[1], l.Nodes[2]
	s := g.lookupBase(base)
	if s == nil {
		g.rep.Warnf("codegen", 0, "unsupported array assignment target")
		return
	}
	stride := s.GetBaseVarSize()
	elemDest := elemDestOf(s)

	if off, ok := constIndexOffset(idx, stride); ok {
		g.genExpr(rhs, elemDest)
		offText := strconv.Itoa(off)
		in := g.block.AddInstrS(isa.STA, isa.ModeAbs, s.NameText, offText, ilist.ExtAdd)
		in.Comment = s.NameText + "[" + strconv.Itoa(off/max1(stride)) + "]"
		g.lastA = regUse{}
		if elemDest == DestInt {
			g.block.AddInstrS(isa.STX, isa.ModeAbs, s.NameText, offText, ilist.ExtPlusOne)
		}
		return
	}

	// runtime index: stash the value while the index is evaluated into Y
	g.genExpr(rhs, elemDest)
	g.block.AddInstrB(isa.PHA)
	g.genExpr(idx, DestChar)
	g.block.AddInstrB(isa.TAY)
	g.block.AddInstrB(isa.PLA)
	if s.IsPointer() {
		g.block.AddInstrS(isa.STA, isa.ModeIndY, s.NameText, "", ilist.ExtNormal)
	} else {
		g.block.AddInstrS(isa.STA, isa.ModeAbsY, s.NameText, "", ilist.ExtNormal)
	}
	g.lastA = regUse{}
}

func elemDestOf(s *sym.Record) DestType {
	if s.IsPointer() || s.Base == sym.TypeInt {
		return DestInt
	}
	return DestChar
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// genAddrOf lowers `&operand`: a plain identifier's or array element's
// address is known at assemble time, so it emits an immediate 16-bit load
// of that address's low/high bytes.
func (g *Generator) genAddrOf(l *ast.List, dest DestType) {
	operand := l.Nodes[1]

	if operand.Kind == ast.KStr {
		name := g.strOf(operand.Str)
		s := g.scope.FindSymbol(name)
		if s == nil {
			g.rep.Warnf("codegen", 0, "undeclared identifier %q", name)
			return
		}
		g.loadAddrOfLabel(s.NameText, 0)
		return
	}

	if operand.Kind == ast.KList && operand.List.Op().Kind == ast.KToken && operand.List.Op().Token == ast.PtLookup {
		sub := operand.List
		s := g.lookupBase(sub.Nodes[1])
		if s == nil {
			g.rep.Warnf("codegen", 0, "unsupported address-of expression")
			return
		}
		off, _ := constIndexOffset(sub.Nodes[2], s.GetBaseVarSize())
		g.loadAddrOfLabel(s.NameText, off)
		return
	}

	g.rep.Warnf("codegen", 0, "unsupported address-of expression")
}

// loadAddrOfLabel emits the LDA #<label / LDX #>label pair for the
// compile-time address name+offset (omitting the offset text when it's
// zero, so a plain `&var` reads as a plain label in the listing).
func (g *Generator) loadAddrOfLabel(name string, offset int) {
	label := name
	if offset != 0 {
		label = name + "+" + strconv.Itoa(offset)
	}
	g.block.AddInstrS(isa.LDA, isa.ModeImm, label, "", ilist.ExtLo)
	g.block.AddInstrS(isa.LDX, isa.ModeImm, label, "", ilist.ExtHi)
	g.lastA = regUse{}
}

// propertyField resolves `base.field` to the base record and the member
// record within its UserTypeDef's member table; field is nil when the
// member can't be found (an undeclared field is reported by the caller).
func (g *Generator) propertyField(l *ast.List) (base *sym.Record, field *sym.Record, fieldName string) {
	baseNode, fieldNode := l.Nodes[1], l.Nodes[2]
	if baseNode.Kind != ast.KStr {
		return nil, nil, ""
	}
	base = g.scope.FindSymbol(g.strOf(baseNode.Str))
	if base == nil {
		return nil, nil, ""
	}
	fieldName = g.strOf(fieldNode.Str)
	if base.UserTypeDef != nil && base.UserTypeDef.Ext != nil && base.UserTypeDef.Ext.Locals != nil {
		field = base.UserTypeDef.Ext.Locals.FindSymbol(fieldName)
	}
	return base, field, fieldName
}

// resolvePropertyRef returns the (base name, byte-offset text) pair used
// to address `base.field` with ExtAdd, shared by applyRightOperand's
// comparison/arithmetic operand case.
func (g *Generator) resolvePropertyRef(l *ast.List) (string, string) {
	base, field, _ := g.propertyField(l)
	if base == nil {
		return "", "0"
	}
	off := 0
	if field != nil {
		off = field.Location
	}
	return base.NameText, strconv.Itoa(off)
}

// genPropertyRef loads `base.field` into A (plus X for a 2-byte field).
func (g *Generator) genPropertyRef(l *ast.List, dest DestType) {
	base, field, fieldName := g.propertyField(l)
	if base == nil {
		g.rep.Warnf("codegen", 0, "unsupported property reference")
		return
	}
	if field == nil {
		g.rep.Warnf("codegen", 0, "undeclared field %q", fieldName)
		return
	}
	offText := strconv.Itoa(field.Location)
	in := g.block.AddInstrS(isa.LDA, isa.ModeAbs, base.NameText, offText, ilist.ExtAdd)
	in.Comment = base.NameText + "." + fieldName
	g.lastA = regUse{}
	if dest == DestInt && field.Base == sym.TypeInt {
		g.block.AddInstrS(isa.LDX, isa.ModeAbs, base.NameText, offText, ilist.ExtPlusOne)
	}
}

// genStorePropertyRef lowers `base.field = rhs`.
func (g *Generator) genStorePropertyRef(l *ast.List, rhs ast.Node) {
	base, field, fieldName := g.propertyField(l)
	if base == nil {
		g.rep.Warnf("codegen", 0, "unsupported property assignment target")
		return
	}
	if field == nil {
		g.rep.Warnf("codegen", 0, "undeclared field %q", fieldName)
		return
	}
	dest := elemDestOf(field)
	g.genExpr(rhs, dest)
	offText := strconv.Itoa(field.Location)
	in := g.block.AddInstrS(isa.STA, isa.ModeAbs, base.NameText, offText, ilist.ExtAdd)
	in.Comment = base.NameText + "." + fieldName
	g.lastA = regUse{}
	if dest == DestInt {
		g.block.AddInstrS(isa.STX, isa.ModeAbs, base.NameText, offText, ilist.ExtPlusOne)
	}
}

// paramList returns fn's parameter records in declaration order.
func paramList(t *sym.Table) []*sym.Record {
	if t == nil {
		return nil
	}
	var out []*sym.Record
	for r := t.First(); r != nil; r = r.Next() {
		out = append(out, r)
	}
	return out
}

// genFuncCall lowers a call: each argument is evaluated in declaration
// order and placed per its parameter's register hint; an argument whose
// parameter has no hint is pushed with PHA, and the caller pulls those
// bytes back off with PLA after the call. The call itself is a plain JSR.
func (g *Generator) genFuncCall(l *ast.List, dest DestType) {
	calleeNode := l.Nodes[1]
	if calleeNode.Kind != ast.KStr {
		g.rep.Warnf("codegen", 0, "unsupported call target")
		return
	}
	name := g.strOf(calleeNode.Str)
	fn := g.Global.FindSymbol(name)
	if fn == nil || !fn.IsFunction() || fn.Ext == nil {
		g.rep.Warnf("codegen", 0, "call to undeclared function %q", name)
		return
	}
	args := l.Nodes[2:]
	if len(args) != fn.Ext.ParamCount {
		g.rep.Warnf("codegen", 0, "function %q expects %d argument(s), got %d", name, fn.Ext.ParamCount, len(args))
	}

	params := paramList(fn.Ext.Params)
	pushed := 0
	for i, arg := range args {
		if i >= len(params) {
			break
		}
		p := params[i]
		g.genExpr(arg, DestOf(p))
		switch p.Hint {
		case sym.HintX:
			g.block.AddInstrB(isa.TAX)
		case sym.HintY:
			g.block.AddInstrB(isa.TAY)
		case sym.HintA:
			// value is already where the callee expects it
		default:
			g.block.AddInstrB(isa.PHA)
			pushed++
		}
	}

	g.block.AddInstrS(isa.JSR, isa.ModeAbs, name, "", ilist.ExtNormal)
	for i := 0; i < pushed; i++ {
		g.block.AddInstrB(isa.PLA)
	}
	// the callee's own `return` already left A (and X, for a word result)
	// holding its value per the same DestOf convention used here.
	g.clearRegUse()
}

package symgen

import (
	"io"
	"testing"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

func newTestGenerator() (*Generator, *lex.StringTable) {
	interp := lex.NewStringTable()
	rep := diag.NewReporter(io.Discard, 3)
	return New(interp, sym.NewTypeRegistry(), rep), interp
}

// declarator builds a full 6-field `define` declarator list: name,
// pointer level, array size expr, register hint, explicit location, and
// initializer, any of the last four may be ast.Empty().
func declarator(interp *lex.StringTable, name string, ptrLevel int32, arr, hint, loc, init ast.Node) *ast.List {
	d := ast.NewList(6)
	d.Add(ast.Str(interp.Intern(name)))
	d.Add(ast.Int(ptrLevel))
	d.Add(arr)
	d.Add(hint)
	d.Add(loc)
	d.Add(init)
	return d
}

func defineList(interp *lex.StringTable, typeName string, mods []string, decls ...*ast.List) *ast.List {
	l := ast.NewList(4)
	l.Add(ast.Tok(ast.PtDefine))
	l.Add(ast.Str(interp.Intern(typeName)))
	modList := ast.NewList(len(mods))
	for _, m := range mods {
		modList.Add(ast.Str(interp.Intern(m)))
	}
	l.Add(ast.ListNode(modList))
	declList := ast.NewList(len(decls))
	for _, d := range decls {
		declList.Add(ast.ListNode(d))
	}
	l.Add(ast.ListNode(declList))
	return l
}

func program(decls ...*ast.List) *ast.List {
	l := ast.NewList(len(decls) + 1)
	l.Add(ast.Tok(ast.PtProgram))
	for _, d := range decls {
		l.Add(ast.ListNode(d))
	}
	return l
}

func TestGenGlobalDefineCreatesPlainVariable(t *testing.T) {
	g, interp := newTestGenerator()
	d := declarator(interp, "counter", 0, ast.Empty(), ast.Empty(), ast.Empty(), ast.Empty())
	prog := program(defineList(interp, "char", nil, d))

	g.Run(prog)

	rec := g.Global.FindSymbol("counter")
	if rec == nil {
		t.Fatal("counter not found in global table")
	}
	if rec.Kind != sym.KindVar || rec.Base != sym.TypeChar {
		t.Errorf("counter = kind %v base %v, want KindVar/TypeChar", rec.Kind, rec.Base)
	}
	if rec.NumElements != 1 {
		t.Errorf("NumElements = %d, want 1", rec.NumElements)
	}
}

func TestGenGlobalDefineFoldsConstInitializer(t *testing.T) {
	g, interp := newTestGenerator()
	d := declarator(interp, "SIZE", 0, ast.Empty(), ast.Empty(), ast.Empty(), ast.Int(16))
	prog := program(defineList(interp, "int", []string{"const"}, d))

	g.Run(prog)

	rec := g.Global.FindSymbol("SIZE")
	if rec == nil {
		t.Fatal("SIZE not found")
	}
	if rec.Kind != sym.KindConst || !rec.HasValue || rec.ConstValue != 16 {
		t.Errorf("SIZE = %+v, want a const with value 16", rec)
	}
}

func TestGenGlobalDefineFoldsArraySize(t *testing.T) {
	g, interp := newTestGenerator()
	d := declarator(interp, "buffer", 0, ast.Int(10), ast.Empty(), ast.Empty(), ast.Empty())
	prog := program(defineList(interp, "char", nil, d))

	g.Run(prog)

	rec := g.Global.FindSymbol("buffer")
	if rec == nil {
		t.Fatal("buffer not found")
	}
	if !rec.IsArray() || rec.NumElements != 10 {
		t.Errorf("buffer = array=%v elements=%d, want array of 10", rec.IsArray(), rec.NumElements)
	}
}

func TestGenEnumInstallsTagAndSequentialValues(t *testing.T) {
	g, interp := newTestGenerator()
	l := ast.NewList(3)
	l.Add(ast.Tok(ast.PtEnum))
	l.Add(ast.Str(interp.Intern("Color")))
	values := ast.NewList(3)
	red := ast.NewList(2)
	red.Add(ast.Str(interp.Intern("RED")))
	red.Add(ast.Empty())
	green := ast.NewList(2)
	green.Add(ast.Str(interp.Intern("GREEN")))
	green.Add(ast.Empty())
	values.Add(ast.ListNode(red))
	values.Add(ast.ListNode(green))
	l.Add(ast.ListNode(values))

	g.Run(program(l))

	tag := g.Global.FindSymbol("Color")
	if tag == nil || tag.Kind != sym.KindEnum {
		t.Fatalf("Color tag = %+v, want a KindEnum symbol", tag)
	}
	r := g.Global.FindSymbol("RED")
	if r == nil || r.ConstValue != 0 {
		t.Errorf("RED = %+v, want ConstValue 0", r)
	}
	gr := g.Global.FindSymbol("GREEN")
	if gr == nil || gr.ConstValue != 1 {
		t.Errorf("GREEN = %+v, want ConstValue 1 (sequential after RED)", gr)
	}
}

func TestGenAggregateStructAssignsOffsets(t *testing.T) {
	g, interp := newTestGenerator()
	l := ast.NewList(3)
	l.Add(ast.Tok(ast.PtStruct))
	l.Add(ast.Str(interp.Intern("Point")))
	members := ast.NewList(2)
	xField := declarator(interp, "x", 0, ast.Empty(), ast.Empty(), ast.Empty(), ast.Empty())
	yField := declarator(interp, "y", 0, ast.Empty(), ast.Empty(), ast.Empty(), ast.Empty())
	members.Add(ast.ListNode(defineList(interp, "int", nil, xField)))
	members.Add(ast.ListNode(defineList(interp, "int", nil, yField)))
	l.Add(ast.ListNode(members))

	g.Run(program(l))

	rec := g.Global.FindSymbol("Point")
	if rec == nil || rec.Kind != sym.KindStruct {
		t.Fatalf("Point = %+v, want a KindStruct symbol", rec)
	}
	if rec.NumElements != 4 {
		t.Errorf("struct size = %d, want 4 (two ints)", rec.NumElements)
	}
	fieldX := rec.Ext.Locals.FindSymbol("x")
	fieldY := rec.Ext.Locals.FindSymbol("y")
	if fieldX == nil || fieldX.Location != 0 {
		t.Errorf("x offset = %+v, want 0", fieldX)
	}
	if fieldY == nil || fieldY.Location != 2 {
		t.Errorf("y offset = %+v, want 2", fieldY)
	}
}

func TestGenFunctionBuildsParamsAndLocals(t *testing.T) {
	g, interp := newTestGenerator()

	paramList := func(name, typeName string) *ast.List {
		pd := ast.NewList(5)
		pd.Add(ast.Str(interp.Intern(name)))
		pd.Add(ast.Str(interp.Intern(typeName)))
		pd.Add(ast.Int(0))
		pd.Add(ast.ListNode(ast.NewList(0)))
		pd.Add(ast.Empty())
		return pd
	}

	params := ast.NewList(2)
	params.Add(ast.ListNode(paramList("a", "char")))
	params.Add(ast.ListNode(paramList("b", "int")))

	localDecl := declarator(interp, "total", 0, ast.Empty(), ast.Empty(), ast.Empty(), ast.Empty())
	bodyStmt := ast.ListNode(defineList(interp, "int", nil, localDecl))
	body := ast.NewList(2)
	body.Add(ast.Tok(ast.PtCodeBlock))
	body.Add(bodyStmt)

	fn := ast.NewList(6)
	fn.Add(ast.Tok(ast.PtDefun))
	fn.Add(ast.Str(interp.Intern("calc")))
	fn.Add(ast.Str(interp.Intern("void")))
	fn.Add(ast.ListNode(ast.NewList(0)))
	fn.Add(ast.ListNode(params))
	fn.Add(ast.ListNode(body))

	g.Run(program(fn))

	rec := g.Global.FindSymbol("calc")
	if rec == nil || rec.Kind != sym.KindFunc {
		t.Fatalf("calc = %+v, want a KindFunc symbol", rec)
	}
	if rec.Ext == nil {
		t.Fatal("calc has no Extension")
	}
	if rec.Ext.ParamCount != 2 {
		t.Errorf("ParamCount = %d, want 2", rec.Ext.ParamCount)
	}
	if rec.Ext.Params.FindSymbol("a") == nil || rec.Ext.Params.FindSymbol("b") == nil {
		t.Error("expected params a and b in the function's param table")
	}
	if rec.Ext.Locals.FindSymbol("total") == nil {
		t.Error("expected local total to be collected from the function body")
	}
}

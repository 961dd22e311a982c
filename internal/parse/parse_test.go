package parse

import (
	"io"
	"testing"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

func parseSource(t *testing.T, src string) (*ast.List, *lex.StringTable) {
	t.Helper()
	interp := lex.NewStringTable()
	lxr := lex.NewLexer(src, interp)
	var toks []lex.Token
	for {
		tok := lxr.Next()
		toks = append(toks, tok)
		if tok.Kind == lex.KindEOF {
			break
		}
	}
	rep := diag.NewReporter(io.Discard, 3)
	p := New(toks, interp, sym.NewTypeRegistry(), rep)
	prog := p.ParseProgram()
	if rep.HasErrors() {
		t.Fatalf("parse errors: %d", rep.ErrorCount())
	}
	return prog, interp
}

func TestParseProgramGlobalAndFunction(t *testing.T) {
	src := "char counter;\nvoid main() { counter = 1; return; }\n"
	prog, interp := parseSource(t, src)

	ops := prog.Operands()
	if len(ops) != 2 {
		t.Fatalf("got %d top-level decls, want 2", len(ops))
	}

	define := ops[0]
	if define.Kind != ast.KList || define.List.Op().Token != ast.PtDefine {
		t.Fatalf("first decl = %v, want a define", define)
	}
	decls := define.List.Nodes[3].List
	if got := interp.Text(decls.Nodes[0].List.Nodes[0].Str); got != "counter" {
		t.Errorf("declared name = %q, want %q", got, "counter")
	}

	defun := ops[1]
	if defun.Kind != ast.KList || defun.List.Op().Token != ast.PtDefun {
		t.Fatalf("second decl = %v, want a defun", defun)
	}
	if got := interp.Text(defun.List.Nodes[1].Str); got != "main" {
		t.Errorf("function name = %q, want %q", got, "main")
	}

	body := defun.List.Nodes[5].List
	if body.Op().Token != ast.PtCodeBlock {
		t.Fatalf("function body op = %v, want code block", body.Op().Token)
	}
	stmts := body.Operands()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements in main, want 2", len(stmts))
	}
	if stmts[0].Kind != ast.KList || stmts[0].List.Op().Token != ast.PtSet {
		t.Errorf("first statement = %v, want an assignment", stmts[0])
	}
	if stmts[1].Kind != ast.KList || stmts[1].List.Op().Token != ast.PtReturn {
		t.Errorf("second statement = %v, want a return", stmts[1])
	}
}

func TestParseIfElse(t *testing.T) {
	src := "void main() { if (x == 0) { x = 1; } else { x = 2; } }\n"
	prog, _ := parseSource(t, src)

	defun := prog.Operands()[0]
	body := defun.List.Nodes[5].List
	ifStmt := body.Operands()[0]
	if ifStmt.Kind != ast.KList || ifStmt.List.Op().Token != ast.PtIf {
		t.Fatalf("statement = %v, want an if", ifStmt)
	}
	if len(ifStmt.List.Nodes) != 4 {
		t.Errorf("if node has %d children, want 4 (op, cond, then, else)", len(ifStmt.List.Nodes))
	}
}

func TestParseStructDeclaration(t *testing.T) {
	src := "struct Point { int x; int y; };\n"
	prog, interp := parseSource(t, src)

	decl := prog.Operands()[0]
	if decl.Kind != ast.KList || decl.List.Op().Token != ast.PtStruct {
		t.Fatalf("decl = %v, want a struct", decl)
	}
	if got := interp.Text(decl.List.Nodes[1].Str); got != "Point" {
		t.Errorf("struct tag = %q, want %q", got, "Point")
	}
	members := decl.List.Nodes[2].List
	if members.Count() != 2 {
		t.Errorf("got %d members, want 2", members.Count())
	}
}

func TestParseLoopStatement(t *testing.T) {
	src := "void main() { loop (i, 0, 10) { strobe WSYNC; } }\n"
	prog, interp := parseSource(t, src)

	defun := prog.Operands()[0]
	body := defun.List.Nodes[5].List
	loopStmt := body.Operands()[0]
	if loopStmt.Kind != ast.KList || loopStmt.List.Op().Token != ast.PtLoop {
		t.Fatalf("statement = %v, want a loop", loopStmt)
	}
	if got := interp.Text(loopStmt.List.Nodes[1].Str); got != "i" {
		t.Errorf("loop variable = %q, want %q", got, "i")
	}
}

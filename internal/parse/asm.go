package parse

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/isa"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
)

// parseAsmBlock parses `asm { ... }`. The parser pre-scans the block so
// that forward label references resolve; since the
// label table itself is process-wide state owned by the compiler (not the
// parser), the pre-scan here only collects the label *names* the block
// defines — the code generator registers them into the real label table
// before emitting the block's instructions.
func (p *Parser) parseAsmBlock() ast.Node {
	p.advance() // 'asm'
	p.expectPunct("{")

	labelNames := p.prescanAsmLabels()

	stmts := ast.NewList(8)
	for !p.isPunct("}") && !p.atEOF() {
		stmts.Add(p.parseAsmStmt())
	}
	p.expectPunct("}")

	l := ast.NewList(3)
	l.Add(ast.Tok(ast.PtAsm))
	l.Add(ast.ListNode(labelNames))
	l.Add(ast.ListNode(stmts))
	return ast.ListNode(l)
}

// prescanAsmLabels scans ahead (without consuming) from the current
// position to the matching closing brace, collecting every `ident:` label
// definition.
func (p *Parser) prescanAsmLabels() *ast.List {
	names := ast.NewList(4)
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == lex.KindPunct && t.Text == "{" {
			depth++
			continue
		}
		if t.Kind == lex.KindPunct && t.Text == "}" {
			if depth == 0 {
				break
			}
			depth--
			continue
		}
		if t.Kind == lex.KindIdent && i+1 < len(p.toks) {
			nt := p.toks[i+1]
			if nt.Kind == lex.KindPunct && nt.Text == ":" {
				names.Add(ast.Str(t.Name))
			}
		}
	}
	return names
}

func (p *Parser) parseAsmStmt() ast.Node {
	t := p.cur()
	if t.Kind == lex.KindIdent && p.peekAt(1).Kind == lex.KindPunct && p.peekAt(1).Text == ":" {
		p.advance()
		p.advance()
		l := ast.NewList(2)
		l.Add(ast.Tok(ast.PtAsmLabel))
		l.Add(ast.Str(t.Name))
		return ast.ListNode(l)
	}
	if t.Kind == lex.KindIdent && p.peekAt(1).Kind == lex.KindPunct && p.peekAt(1).Text == "=" {
		p.advance()
		p.advance()
		val := p.ParseExpr()
		p.expectPunct(";")
		l := ast.NewList(3)
		l.Add(ast.Tok(ast.PtAsmEquate))
		l.Add(ast.Str(t.Name))
		l.Add(val)
		return ast.ListNode(l)
	}
	return p.parseAsmInstr()
}

// parseAsmInstr parses one assembler instruction into
// `[Mnemonic, AddrMode, operand]`, choosing the addressing mode from
// bracketing syntax.
func (p *Parser) parseAsmInstr() ast.Node {
	nameTok := p.cur()
	if nameTok.Kind != lex.KindIdent {
		p.errorf("expected an instruction mnemonic, found %q", nameTok.Text)
		p.resync()
		return ast.Empty()
	}
	p.advance()
	mne, ok := isa.LookupMnemonic(nameTok.Text)
	if !ok {
		p.errorf("unknown instruction mnemonic %q", nameTok.Text)
		p.resync()
		return ast.Empty()
	}

	forceAbs := false
	if p.isPunct(".") && p.peekAt(1).Kind == lex.KindIdent && p.peekAt(1).Text == "w" {
		p.advance()
		p.advance()
		forceAbs = true
	}

	mode, operand := p.parseAsmOperand(mne, forceAbs)
	p.expectPunct(";")

	l := ast.NewList(3)
	l.Add(ast.Mnemonic(mne))
	l.Add(ast.AddrMode(mode))
	l.Add(operand)
	return ast.ListNode(l)
}

func (p *Parser) parseAsmOperand(mne isa.Mnemonic, forceAbs bool) (isa.AddrMode, ast.Node) {
	switch {
	case p.isPunct(";") || mne.NoParams():
		return isa.ModeNone, ast.Empty()

	case p.acceptPunct("#"):
		return isa.ModeImm, p.ParseExpr()

	case p.acceptPunct("("):
		inner := p.ParseExpr()
		if p.acceptPunct(",") {
			p.expectIndexReg("X")
			p.expectPunct(")")
			return isa.ModeIndX, inner
		}
		p.expectPunct(")")
		if p.acceptPunct(",") {
			p.expectIndexReg("Y")
			return isa.ModeIndY, inner
		}
		return isa.ModeInd, inner

	case p.cur().Kind == lex.KindIdent && p.cur().Text == "A" && p.peekAt(1).Kind == lex.KindPunct && p.peekAt(1).Text == ";":
		p.advance()
		return isa.ModeAcc, ast.Empty()

	default:
		operand := p.ParseExpr()
		if mne == isa.JSR {
			return isa.ModeAbs, operand
		}
		if p.acceptPunct(",") {
			if p.acceptIdentText("X") {
				if forceAbs {
					return isa.ModeAbsX, operand
				}
				return isa.ModeUnkX, operand
			}
			p.expectIndexReg("Y")
			if forceAbs {
				return isa.ModeAbsY, operand
			}
			return isa.ModeUnkY, operand
		}
		if mne == isa.JMP || forceAbs {
			return isa.ModeAbs, operand
		}
		if mne.IsBranch() {
			return isa.ModeRel, operand
		}
		return isa.ModeUnk, operand
	}
}

func (p *Parser) acceptIdentText(s string) bool {
	t := p.cur()
	if t.Kind == lex.KindIdent && t.Text == s {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectIndexReg(s string) {
	if !p.acceptIdentText(s) {
		p.errorf("expected index register %q, found %q", s, p.cur().Text)
	}
}

package parse

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
)

var typeKeywords = map[string]bool{
	"char": true, "byte": true, "bool": true, "int": true, "word": true, "void": true,
}

var modifierKeywords = map[string]bool{
	"const": true, "alias": true, "zeropage": true, "signed": true, "unsigned": true,
	"register": true, "inline": true,
}

func (p *Parser) isDeclarationStart() bool {
	t := p.cur()
	if t.Kind != lex.KindKeyword && t.Kind != lex.KindIdent {
		return false
	}
	if t.Kind == lex.KindKeyword && (typeKeywords[t.Text] || modifierKeywords[t.Text] || t.Text == "struct" || t.Text == "union" || t.Text == "enum") {
		return true
	}
	if t.Kind == lex.KindIdent && p.types.IsType(t.Text) {
		return true
	}
	return false
}

// ParseBlock parses a `{ ... }` compound statement into a `code` list.
func (p *Parser) ParseBlock() *ast.List {
	p.expectPunct("{")
	block := ast.NewList(8)
	block.Add(ast.Tok(ast.PtCodeBlock))
	for !p.isPunct("}") && !p.atEOF() {
		block.Add(p.parseStatement())
	}
	p.expectPunct("}")
	return block
}

func (p *Parser) parseStatement() ast.Node {
	switch {
	case p.isPunct("{"):
		return ast.ListNode(p.ParseBlock())
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("do"):
		return p.parseDoWhile()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("loop"):
		return p.parseLoop()
	case p.isKeyword("switch"):
		return p.parseSwitch()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("break"):
		p.advance()
		p.expectPunct(";")
		return ast.Tok(ast.PtBreak)
	case p.isKeyword("strobe"):
		return p.parseStrobe()
	case p.isKeyword("asm"):
		return p.parseAsmBlock()
	case p.isDeclarationStart():
		return p.parseDeclaration()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseIf() ast.Node {
	p.advance()
	p.expectPunct("(")
	cond := p.ParseExpr()
	p.expectPunct(")")
	then := ast.ListNode(p.ParseBlock())
	l := ast.NewList(4)
	l.Add(ast.Tok(ast.PtIf))
	l.Add(cond)
	l.Add(then)
	if p.acceptKeyword("else") {
		if p.isKeyword("if") {
			l.Add(p.parseIf())
		} else {
			l.Add(ast.ListNode(p.ParseBlock()))
		}
	}
	return ast.ListNode(l)
}

func (p *Parser) parseWhile() ast.Node {
	p.advance()
	p.expectPunct("(")
	cond := p.ParseExpr()
	p.expectPunct(")")
	body := ast.ListNode(p.ParseBlock())
	l := ast.NewList(3)
	l.Add(ast.Tok(ast.PtWhile))
	l.Add(cond)
	l.Add(body)
	return ast.ListNode(l)
}

func (p *Parser) parseDoWhile() ast.Node {
	p.advance()
	body := ast.ListNode(p.ParseBlock())
	if !p.acceptKeyword("while") {
		p.errorf("expected 'while' after 'do' block")
	}
	p.expectPunct("(")
	cond := p.ParseExpr()
	p.expectPunct(")")
	p.expectPunct(";")
	l := ast.NewList(3)
	l.Add(ast.Tok(ast.PtDoWhile))
	l.Add(body)
	l.Add(cond)
	return ast.ListNode(l)
}

func (p *Parser) parseFor() ast.Node {
	p.advance()
	p.expectPunct("(")
	init := p.parseForClause()
	p.expectPunct(";")
	cond := p.ParseExpr()
	p.expectPunct(";")
	incr := p.parseForClause()
	p.expectPunct(")")
	body := ast.ListNode(p.ParseBlock())
	l := ast.NewList(5)
	l.Add(ast.Tok(ast.PtFor))
	l.Add(init)
	l.Add(cond)
	l.Add(incr)
	l.Add(body)
	return ast.ListNode(l)
}

// parseForClause parses the init/incr slot of a `for` header, which is a
// bare assignment expression rather than a full declaration or statement.
func (p *Parser) parseForClause() ast.Node {
	if p.isPunct(";") || p.isPunct(")") {
		return ast.Empty()
	}
	return p.parseAssignmentExpr()
}

// parseLoop parses `loop (var, start, count) block`, a counted-loop
// form in which var starts at start and counts up until it equals count.
func (p *Parser) parseLoop() ast.Node {
	p.advance()
	p.expectPunct("(")
	varName := p.expectIdent()
	p.expectPunct(",")
	start := p.ParseExpr()
	p.expectPunct(",")
	count := p.ParseExpr()
	p.expectPunct(")")
	body := ast.ListNode(p.ParseBlock())
	l := ast.NewList(5)
	l.Add(ast.Tok(ast.PtLoop))
	l.Add(ast.Str(varName))
	l.Add(start)
	l.Add(count)
	l.Add(body)
	return ast.ListNode(l)
}

func (p *Parser) parseSwitch() ast.Node {
	p.advance()
	p.expectPunct("(")
	subject := p.ParseExpr()
	p.expectPunct(")")
	p.expectPunct("{")
	l := ast.NewList(4)
	l.Add(ast.Tok(ast.PtSwitch))
	l.Add(subject)
	for !p.isPunct("}") && !p.atEOF() {
		if p.acceptKeyword("case") {
			val := p.ParseExpr()
			p.expectPunct(":")
			body := p.parseCaseBody()
			cl := ast.NewList(2 + body.Count())
			cl.Add(ast.Tok(ast.PtCase))
			cl.Add(val)
			for _, n := range body.Nodes {
				cl.Add(n)
			}
			l.Add(ast.ListNode(cl))
		} else if p.acceptKeyword("default") {
			p.expectPunct(":")
			body := p.parseCaseBody()
			cl := ast.NewList(1 + body.Count())
			cl.Add(ast.Tok(ast.PtDefault))
			for _, n := range body.Nodes {
				cl.Add(n)
			}
			l.Add(ast.ListNode(cl))
		} else {
			p.errorf("expected 'case' or 'default' in switch body, found %q", p.cur().Text)
			break
		}
	}
	p.expectPunct("}")
	return ast.ListNode(l)
}

// parseCaseBody collects statements up to the next `case`, `default`, or
// the closing brace, matching the C-style fall-through switch body.
func (p *Parser) parseCaseBody() *ast.List {
	body := ast.NewList(4)
	for !p.isKeyword("case") && !p.isKeyword("default") && !p.isPunct("}") && !p.atEOF() {
		body.Add(p.parseStatement())
	}
	return body
}

func (p *Parser) parseReturn() ast.Node {
	p.advance()
	l := ast.NewList(2)
	l.Add(ast.Tok(ast.PtReturn))
	if !p.isPunct(";") {
		l.Add(p.ParseExpr())
	}
	p.expectPunct(";")
	return ast.ListNode(l)
}

// parseStrobe parses `strobe name;`, the momentary-write construct: a
// single store to a hardware register whose side effect, not the stored
// value, is what matters — used for TIA strobe registers like WSYNC and
// RESP0/RESP1.
func (p *Parser) parseStrobe() ast.Node {
	p.advance()
	name := p.expectIdent()
	p.expectPunct(";")
	l := ast.NewList(2)
	l.Add(ast.Tok(ast.PtStrobe))
	l.Add(ast.Str(name))
	return ast.ListNode(l)
}

// parseExprStatement parses an assignment or bare expression statement
// terminated by `;`.
func (p *Parser) parseExprStatement() ast.Node {
	n := p.parseAssignmentExpr()
	p.expectPunct(";")
	return n
}

func (p *Parser) parseAssignmentExpr() ast.Node {
	lhs := p.ParseExpr()
	if p.acceptPunct("=") {
		rhs := p.ParseExpr()
		l := ast.NewList(3)
		l.Add(ast.Tok(ast.PtSet))
		l.Add(lhs)
		l.Add(rhs)
		return ast.ListNode(l)
	}
	return lhs
}

package parse

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
)

// ParseExpr parses one expression at the lowest (conditional) precedence
// level, the public entry point used by statement and declaration parsing.
func (p *Parser) ParseExpr() ast.Node {
	return p.parseConditional()
}

func binary(op ast.ParseToken, left, right ast.Node) ast.Node {
	l := ast.NewList(3)
	l.Add(ast.Tok(op))
	l.Add(left)
	l.Add(right)
	return ast.ListNode(l)
}

func unary(op ast.ParseToken, operand ast.Node) ast.Node {
	l := ast.NewList(2)
	l.Add(ast.Tok(op))
	l.Add(operand)
	return ast.ListNode(l)
}

// parseConditional handles `cond ? then : else`, the lowest-precedence
// form in the grammar.
func (p *Parser) parseConditional() ast.Node {
	cond := p.parseLogicalOr()
	if p.acceptPunct("?") {
		then := p.ParseExpr()
		p.expectPunct(":")
		els := p.parseConditional()
		l := ast.NewList(4)
		l.Add(ast.Tok(ast.PtIf))
		l.Add(cond)
		l.Add(then)
		l.Add(els)
		return ast.ListNode(l)
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Node {
	left := p.parseLogicalAnd()
	for p.isPunct("||") {
		p.advance()
		left = binary(ast.PtLogOr, left, p.parseLogicalAnd())
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Node {
	left := p.parseEquality()
	for p.isPunct("&&") {
		p.advance()
		left = binary(ast.PtLogAnd, left, p.parseEquality())
	}
	return left
}

var relOps = map[string]ast.ParseToken{
	"==": ast.PtEq, "!=": ast.PtNe, "<": ast.PtLt, "<=": ast.PtLe, ">": ast.PtGt, ">=": ast.PtGe,
}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseBitwise()
	for {
		t := p.cur()
		if t.Kind != lex.KindPunct {
			return left
		}
		op, ok := relOps[t.Text]
		if !ok {
			return left
		}
		p.advance()
		left = binary(op, left, p.parseBitwise())
	}
}

func (p *Parser) parseBitwise() ast.Node {
	left := p.parseShift()
	for {
		switch {
		case p.isPunct("&"):
			p.advance()
			left = binary(ast.PtAnd, left, p.parseShift())
		case p.isPunct("|"):
			p.advance()
			left = binary(ast.PtOr, left, p.parseShift())
		case p.isPunct("^"):
			p.advance()
			left = binary(ast.PtXor, left, p.parseShift())
		default:
			return left
		}
	}
}

func (p *Parser) parseShift() ast.Node {
	left := p.parseAdditive()
	for {
		switch {
		case p.isPunct("<<"):
			p.advance()
			left = binary(ast.PtShl, left, p.parseAdditive())
		case p.isPunct(">>"):
			p.advance()
			left = binary(ast.PtShr, left, p.parseAdditive())
		default:
			return left
		}
	}
}

func (p *Parser) parseAdditive() ast.Node {
	left := p.parseMultiplicative()
	for {
		switch {
		case p.isPunct("+"):
			p.advance()
			left = binary(ast.PtAdd, left, p.parseMultiplicative())
		case p.isPunct("-"):
			p.advance()
			left = binary(ast.PtSub, left, p.parseMultiplicative())
		default:
			return left
		}
	}
}

func (p *Parser) parseMultiplicative() ast.Node {
	left := p.parseUnary()
	for {
		switch {
		case p.isPunct("*"):
			p.advance()
			left = binary(ast.PtMul, left, p.parseUnary())
		case p.isPunct("/"):
			p.advance()
			left = binary(ast.PtDiv, left, p.parseUnary())
		default:
			return left
		}
	}
}

// parseUnary covers `! + - ~ < >` (the last two are low-byte/high-byte
// extractors) and the prefix `++`/`--` forms. A leading `&` is handled in
// parsePrimary instead, since it only makes sense directly before an
// identifier.
func (p *Parser) parseUnary() ast.Node {
	switch {
	case p.acceptPunct("!"):
		return unary(ast.PtNot, p.parseUnary())
	case p.acceptPunct("-"):
		return unary(ast.PtNegate, p.parseUnary())
	case p.acceptPunct("+"):
		return p.parseUnary() // unary plus is a no-op
	case p.acceptPunct("~"):
		return unary(ast.PtInvert, p.parseUnary())
	case p.acceptPunct("<"):
		return unary(ast.PtLowByte, p.parseUnary())
	case p.acceptPunct(">"):
		return unary(ast.PtHighByte, p.parseUnary())
	case p.isPunct("++"):
		p.advance()
		return unary(ast.PtPreInc, p.parseUnary())
	case p.isPunct("--"):
		p.advance()
		return unary(ast.PtPreDec, p.parseUnary())
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles `[]`, `()`, `.`, and postfix `++`/`--` chained onto
// a primary expression.
func (p *Parser) parsePostfix() ast.Node {
	n := p.parsePrimary()
	for {
		switch {
		case p.acceptPunct("["):
			idx := p.ParseExpr()
			p.expectPunct("]")
			n = binary(ast.PtLookup, n, idx)
		case p.acceptPunct("("):
			args := p.parseArgList()
			p.expectPunct(")")
			l := ast.NewList(1 + args.Count())
			l.Add(ast.Tok(ast.PtFuncCall))
			l.Add(n)
			for _, a := range args.Nodes {
				l.Add(a)
			}
			n = ast.ListNode(l)
		case p.acceptPunct("."):
			field := p.expectIdent()
			n = binary(ast.PtPropertyRef, n, ast.Str(field))
		case p.isPunct("++"):
			p.advance()
			n = unary(ast.PtPostInc, n)
		case p.isPunct("--"):
			p.advance()
			n = unary(ast.PtPostDec, n)
		default:
			return n
		}
	}
}

func (p *Parser) parseArgList() *ast.List {
	l := ast.NewList(4)
	if p.isPunct(")") {
		return l
	}
	l.Add(p.ParseExpr())
	for p.acceptPunct(",") {
		l.Add(p.ParseExpr())
	}
	return l
}

func (p *Parser) expectIdent() ast.StrID {
	t := p.cur()
	if t.Kind != lex.KindIdent {
		p.errorf("expected identifier, found %q", t.Text)
		return p.intern("")
	}
	p.advance()
	return t.Name
}

// parsePrimary handles literals, identifiers, parenthesized expressions,
// `sizeof`/`typeof`, casts, prefix `&` (address-of), and `{ ... }` list
// literals.
func (p *Parser) parsePrimary() ast.Node {
	t := p.cur()
	switch {
	case p.acceptPunct("&"):
		return unary(ast.PtAddrOf, p.parseUnary())

	case t.Kind == lex.KindIntLit:
		p.advance()
		return ast.Int(t.IntVal)

	case t.Kind == lex.KindCharLit:
		p.advance()
		return ast.Char(byte(t.IntVal))

	case t.Kind == lex.KindStrLit:
		p.advance()
		return ast.Str(t.Name)

	case t.Kind == lex.KindIdent:
		p.advance()
		return ast.Str(t.Name)

	case p.acceptPunct("("):
		// Could be a parenthesized expression or a cast `(type)expr` if the
		// parenthesized content names a declared type.
		if p.cur().Kind == lex.KindIdent && p.types.IsType(p.cur().Text) && p.peekAt(1).Kind == lex.KindPunct && p.peekAt(1).Text == ")" {
			typeName := p.advance().Name
			p.expectPunct(")")
			operand := p.parseUnary()
			l := ast.NewList(3)
			l.Add(ast.Tok(ast.PtCast))
			l.Add(ast.Str(typeName))
			l.Add(operand)
			return ast.ListNode(l)
		}
		inner := p.ParseExpr()
		p.expectPunct(")")
		return inner

	case p.acceptKeyword("sizeof"):
		p.expectPunct("(")
		name := p.expectIdent()
		p.expectPunct(")")
		l := ast.NewList(2)
		l.Add(ast.Tok(ast.PtSizeof))
		l.Add(ast.Str(name))
		return ast.ListNode(l)

	case p.acceptKeyword("typeof"):
		p.expectPunct("(")
		name := p.expectIdent()
		p.expectPunct(")")
		l := ast.NewList(2)
		l.Add(ast.Tok(ast.PtTypeof))
		l.Add(ast.Str(name))
		return ast.ListNode(l)

	case p.isPunct("{"):
		return p.parseListLiteral()

	default:
		p.errorf("unexpected token %q in expression", t.Text)
		return ast.Empty()
	}
}

// parseListLiteral parses `{ expr, expr, ... }` into a PtList node.
func (p *Parser) parseListLiteral() ast.Node {
	p.expectPunct("{")
	l := ast.NewList(4)
	l.Add(ast.Tok(ast.PtList))
	if !p.isPunct("}") {
		l.Add(p.ParseExpr())
		for p.acceptPunct(",") {
			l.Add(p.ParseExpr())
		}
	}
	p.expectPunct("}")
	return ast.ListNode(l)
}

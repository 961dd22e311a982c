package parse

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
)

// parseDeclaration parses a modifier list, a base type, and one or more
// declarators. A single function-shaped declarator (followed
// immediately by `(`) yields a `defun`; anything else yields a `define`
// carrying one declarator per declared name.
func (p *Parser) parseDeclaration() ast.Node {
	mods := p.parseModifiers()
	baseType := p.parseBaseTypeName()

	name := p.expectIdent()
	if p.isPunct("(") {
		return p.parseFunctionDecl(mods, baseType, name)
	}

	decls := ast.NewList(2)
	decls.Add(p.parseDeclaratorTail(name))
	for p.acceptPunct(",") {
		n := p.expectIdent()
		decls.Add(p.parseDeclaratorTail(n))
	}
	p.expectPunct(";")

	l := ast.NewList(4)
	l.Add(ast.Tok(ast.PtDefine))
	l.Add(ast.Str(baseType))
	l.Add(ast.ListNode(mods))
	l.Add(ast.ListNode(decls))
	return ast.ListNode(l)
}

func (p *Parser) parseModifiers() *ast.List {
	mods := ast.NewList(3)
	for p.cur().Kind == lex.KindKeyword && modifierKeywords[p.cur().Text] {
		mods.Add(ast.Str(p.intern(p.cur().Text)))
		p.advance()
	}
	return mods
}

// parseBaseTypeName accepts either a builtin type keyword or a previously
// declared struct/union/enum tag.
func (p *Parser) parseBaseTypeName() ast.StrID {
	t := p.cur()
	if t.Kind == lex.KindKeyword && typeKeywords[t.Text] {
		p.advance()
		return p.intern(t.Text)
	}
	if t.Kind == lex.KindIdent && p.types.IsType(t.Text) {
		p.advance()
		return t.Name
	}
	p.errorf("expected a type name, found %q", t.Text)
	return p.intern("int")
}

// parseDeclaratorTail parses the pointer/array/hint/location/initializer
// suffix attached to an already-consumed declarator name, returning a
// declarator list `[name, ptrLevel, arraySize, hint, location, init]`.
func (p *Parser) parseDeclaratorTail(name ast.StrID) ast.Node {
	ptrLevel := int32(0)
	for p.acceptPunct("*") {
		ptrLevel++
	}

	arraySize := ast.Empty()
	if p.acceptPunct("[") {
		if !p.isPunct("]") {
			arraySize = p.ParseExpr()
		}
		p.expectPunct("]")
	}

	hint := ast.Empty()
	location := ast.Empty()
	if p.acceptPunct("@") {
		if t := p.cur(); t.Kind == lex.KindIdent && len(t.Text) == 1 && (t.Text == "A" || t.Text == "X" || t.Text == "Y") {
			l := ast.NewList(2)
			l.Add(ast.Tok(ast.PtHint))
			l.Add(ast.Str(p.intern(t.Text)))
			hint = ast.ListNode(l)
			p.advance()
		} else {
			// `@addr` absolute placement rather than a register hint.
			location = p.ParseExpr()
		}
	}

	initVal := ast.Empty()
	if p.acceptPunct("=") {
		initVal = p.ParseExpr()
	}

	l := ast.NewList(6)
	l.Add(ast.Str(name))
	l.Add(ast.Int(ptrLevel))
	l.Add(arraySize)
	l.Add(hint)
	l.Add(location)
	l.Add(initVal)
	return ast.ListNode(l)
}

func (p *Parser) parseFunctionDecl(mods *ast.List, baseType ast.StrID, name ast.StrID) ast.Node {
	p.expectPunct("(")
	params := ast.NewList(4)
	if !p.isPunct(")") {
		params.Add(p.parseParam())
		for p.acceptPunct(",") {
			params.Add(p.parseParam())
		}
	}
	p.expectPunct(")")

	var body ast.Node
	if p.isKeyword("asm") {
		body = p.parseAsmBlock()
	} else {
		body = ast.ListNode(p.ParseBlock())
	}

	l := ast.NewList(6)
	l.Add(ast.Tok(ast.PtDefun))
	l.Add(ast.Str(name))
	l.Add(ast.Str(baseType))
	l.Add(ast.ListNode(mods))
	l.Add(ast.ListNode(params))
	l.Add(body)
	return ast.ListNode(l)
}

// parseParam parses one function parameter: modifiers, base type, name,
// optional pointer/hint (arrays and initializers are not meaningful on a
// parameter).
func (p *Parser) parseParam() ast.Node {
	mods := p.parseModifiers()
	baseType := p.parseBaseTypeName()
	name := p.expectIdent()
	ptrLevel := int32(0)
	for p.acceptPunct("*") {
		ptrLevel++
	}
	hint := ast.Empty()
	if p.acceptPunct("@") {
		if t := p.cur(); t.Kind == lex.KindIdent && len(t.Text) == 1 {
			hint = ast.Str(p.intern(t.Text))
			p.advance()
		}
	}
	l := ast.NewList(5)
	l.Add(ast.Str(name))
	l.Add(ast.Str(baseType))
	l.Add(ast.Int(ptrLevel))
	l.Add(ast.ListNode(mods))
	l.Add(hint)
	return ast.ListNode(l)
}

// parseStructDecl parses a (tag-required) struct type declaration: `struct
// Tag { member-decl; ... };`. Member declarations reuse parseDeclaration's
// declarator grammar.
func (p *Parser) parseStructDecl() ast.Node {
	return p.parseAggregateDecl(ast.PtStruct, true)
}

// parseUnionDecl parses a union type declaration; its members overlay
// offset 0, a fact the symbol generator applies rather than
// the parser.
func (p *Parser) parseUnionDecl() ast.Node {
	return p.parseAggregateDecl(ast.PtUnion, true)
}

func (p *Parser) parseAggregateDecl(kind ast.ParseToken, tagRequired bool) ast.Node {
	p.advance() // 'struct' or 'union'
	tag := ast.NoStrID
	if p.cur().Kind == lex.KindIdent {
		tag = p.advance().Name
		p.types.Declare(p.interp.Text(tag))
	} else if tagRequired {
		p.errorf("%s requires a tag name", kind.String())
	}
	p.expectPunct("{")
	members := ast.NewList(4)
	for !p.isPunct("}") && !p.atEOF() {
		members.Add(p.parseDeclaration())
	}
	p.expectPunct("}")
	p.acceptPunct(";")

	l := ast.NewList(3)
	l.Add(ast.Tok(kind))
	l.Add(ast.Str(tag))
	l.Add(ast.ListNode(members))
	return ast.ListNode(l)
}

// parseEnumDecl parses `enum [Tag] { Name [= value], ... };`: each value
// either continues the previous value + 1 (starting at 0) or takes an
// explicit assignment.
func (p *Parser) parseEnumDecl() ast.Node {
	p.advance()
	tag := ast.NoStrID
	if p.cur().Kind == lex.KindIdent {
		tag = p.advance().Name
		p.types.Declare(p.interp.Text(tag))
	}
	p.expectPunct("{")
	values := ast.NewList(4)
	for !p.isPunct("}") && !p.atEOF() {
		name := p.expectIdent()
		val := ast.Empty()
		if p.acceptPunct("=") {
			val = p.ParseExpr()
		}
		vl := ast.NewList(2)
		vl.Add(ast.Str(name))
		vl.Add(val)
		values.Add(ast.ListNode(vl))
		if !p.acceptPunct(",") {
			break
		}
	}
	p.expectPunct("}")
	p.acceptPunct(";")

	l := ast.NewList(3)
	l.Add(ast.Tok(ast.PtEnum))
	l.Add(ast.Str(tag))
	l.Add(ast.ListNode(values))
	return ast.ListNode(l)
}

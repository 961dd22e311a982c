// Package parse implements a recursive-descent parser: it consumes the
// token stream produced by internal/lex and builds the
// tagged-union AST of internal/ast, disambiguating type names against
// plain identifiers via an internal/sym.TypeRegistry built up as struct,
// union, and enum tags are declared.
package parse

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// Parser holds the whole pre-scanned token stream plus a single cursor;
// the grammar below never needs more than one token of pushback, which
// fits the slice-with-index idiom cleanly.
type Parser struct {
	toks   []lex.Token
	pos    int
	interp *lex.StringTable
	types  *sym.TypeRegistry
	rep    *diag.Reporter
}

// New builds a Parser over the full token stream. Callers lex the entire
// (preprocessed) source up front since the grammar's lookahead needs are
// always local and a slice index is simpler than a channel or callback.
func New(toks []lex.Token, interp *lex.StringTable, types *sym.TypeRegistry, rep *diag.Reporter) *Parser {
	return &Parser{toks: toks, interp: interp, types: types, rep: rep}
}

func (p *Parser) cur() lex.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return lex.Token{Kind: lex.KindEOF}
}

func (p *Parser) peekAt(offset int) lex.Token {
	i := p.pos + offset
	if i < len(p.toks) {
		return p.toks[i]
	}
	return lex.Token{Kind: lex.KindEOF}
}

func (p *Parser) advance() lex.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().Kind == lex.KindEOF }

func (p *Parser) isPunct(s string) bool {
	t := p.cur()
	return t.Kind == lex.KindPunct && t.Text == s
}

func (p *Parser) isKeyword(s string) bool {
	t := p.cur()
	return t.Kind == lex.KindKeyword && t.Text == s
}

func (p *Parser) acceptPunct(s string) bool {
	if p.isPunct(s) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) acceptKeyword(s string) bool {
	if p.isKeyword(s) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectPunct(s string) {
	if !p.acceptPunct(s) {
		p.errorf("expected %q, found %q", s, p.cur().Text)
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	t := p.cur()
	p.rep.Errorf("parse", t.Line, t.LineText, format, args...)
	// resynchronize to the next statement/declaration boundary so one bad
	// token doesn't cascade into spurious follow-on errors.
	p.resync()
}

func (p *Parser) resync() {
	for !p.atEOF() && !p.isPunct(";") && !p.isPunct("}") {
		p.advance()
	}
	if p.isPunct(";") {
		p.advance()
	}
}

func (p *Parser) intern(s string) ast.StrID { return p.interp.Intern(s) }

// ParseProgram parses the whole token stream into the top-level `program`
// list: a sequence of defines, struct/union/enum type declarations,
// global variable declarations, and function definitions.
func (p *Parser) ParseProgram() *ast.List {
	prog := ast.NewList(8)
	prog.Add(ast.Tok(ast.PtProgram))
	for !p.atEOF() {
		decl := p.parseTopLevel()
		if decl.Kind != ast.KEmpty {
			prog.Add(decl)
		}
	}
	return prog
}

func (p *Parser) parseTopLevel() ast.Node {
	switch {
	case p.isKeyword("struct"):
		return p.parseStructDecl()
	case p.isKeyword("enum"):
		return p.parseEnumDecl()
	case p.isKeyword("union"):
		return p.parseUnionDecl()
	default:
		return p.parseDeclaration()
	}
}

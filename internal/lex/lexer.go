// Package lex is a classifying scanner that turns source text into a
// stream of typed tokens plus a reusable identifier-interning table, and
// that recognizes the preprocessor line directives ahead of parsing
// proper.
package lex

import (
	"strings"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
)

// Kind classifies a scanned token.
type Kind int

const (
	KindEOF Kind = iota
	KindIdent
	KindKeyword
	KindIntLit
	KindCharLit
	KindStrLit
	KindPunct
)

// Token is one classified lexeme plus the source position info every
// diagnostic needs.
type Token struct {
	Kind     Kind
	Text     string
	IntVal   int32
	Name     ast.StrID
	Line     int
	LineText string
}

var keywords = map[string]bool{
	"char": true, "byte": true, "bool": true, "int": true, "word": true, "void": true,
	"struct": true, "union": true, "enum": true,
	"const": true, "alias": true, "zeropage": true, "signed": true, "unsigned": true,
	"register": true, "inline": true,
	"if": true, "else": true, "while": true, "do": true, "for": true, "loop": true,
	"switch": true, "case": true, "default": true, "return": true, "break": true,
	"asm": true, "strobe": true, "sizeof": true, "typeof": true,
}

var multiCharOps = []string{
	"<<", ">>", "&&", "||", "==", "!=", "<=", ">=", "++", "--",
}

// Preprocessed is the result of the line-scan pass that recognizes
// directives before tokenization: #include, #machine, and the
// in-source #show_cycles/#hide_cycles toggles that the code generator's
// cycle-count feature consumes.
type Preprocessed struct {
	Includes []string
	Machine  string
	Lines    []string // source lines with directive lines blanked out
}

// Preprocess scans src line by line for directives, stripping them from
// the text handed to the lexer proper. Unknown "#" directives warn and
// are skipped.
func Preprocess(src string, warn func(line int, msg string)) Preprocessed {
	var p Preprocessed
	rawLines := strings.Split(src, "\n")
	p.Lines = make([]string, len(rawLines))
	for i, line := range rawLines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#include"):
			p.Includes = append(p.Includes, extractQuoted(trimmed))
			p.Lines[i] = ""
		case strings.HasPrefix(trimmed, "#machine"):
			p.Machine = extractQuoted(trimmed)
			p.Lines[i] = ""
		case strings.HasPrefix(trimmed, "#show_cycles"), strings.HasPrefix(trimmed, "#hide_cycles"):
			p.Lines[i] = line // the code generator scans for these verbatim
		case strings.HasPrefix(trimmed, "#"):
			if warn != nil {
				warn(i+1, "unknown preprocessor directive: "+trimmed)
			}
			p.Lines[i] = ""
		default:
			p.Lines[i] = line
		}
	}
	return p
}

func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// Lexer is a simple classifying scanner over preprocessed source text.
type Lexer struct {
	src    string
	pos    int
	line   int
	lines  []string
	interp *StringTable
}

func NewLexer(src string, interp *StringTable) *Lexer {
	return &Lexer{src: src, line: 1, lines: strings.Split(src, "\n"), interp: interp}
}

func (lx *Lexer) curLineText() string {
	if lx.line-1 < len(lx.lines) {
		return lx.lines[lx.line-1]
	}
	return ""
}

func (lx *Lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *Lexer) advance() byte {
	c := lx.peekByte()
	lx.pos++
	if c == '\n' {
		lx.line++
	}
	return c
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentCont(c byte) bool { return isIdentStart(c) || (c >= '0' && c <= '9') }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }

// Next scans and returns the next token, skipping whitespace and comments.
func (lx *Lexer) Next() Token {
	for {
		c := lx.peekByte()
		if c == 0 {
			return Token{Kind: KindEOF, Line: lx.line, LineText: lx.curLineText()}
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			lx.advance()
			continue
		}
		if c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/' {
			for lx.peekByte() != 0 && lx.peekByte() != '\n' {
				lx.advance()
			}
			continue
		}
		if c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*' {
			lx.advance()
			lx.advance()
			for lx.pos+1 < len(lx.src) && !(lx.peekByte() == '*' && lx.src[lx.pos+1] == '/') {
				lx.advance()
			}
			lx.advance()
			lx.advance()
			continue
		}
		break
	}

	startLine := lx.line
	lineText := lx.curLineText()
	c := lx.peekByte()

	switch {
	case isIdentStart(c):
		start := lx.pos
		for isIdentCont(lx.peekByte()) {
			lx.advance()
		}
		text := lx.src[start:lx.pos]
		if keywords[text] {
			return Token{Kind: KindKeyword, Text: text, Line: startLine, LineText: lineText}
		}
		return Token{Kind: KindIdent, Text: text, Name: lx.interp.Intern(text), Line: startLine, LineText: lineText}

	case isDigit(c):
		start := lx.pos
		if c == '0' && lx.pos+1 < len(lx.src) && (lx.src[lx.pos+1] == 'x' || lx.src[lx.pos+1] == 'X') {
			lx.advance()
			lx.advance()
			for isHex(lx.peekByte()) {
				lx.advance()
			}
			return Token{Kind: KindIntLit, Text: lx.src[start:lx.pos], IntVal: parseHex(lx.src[start:lx.pos]), Line: startLine, LineText: lineText}
		}
		for isDigit(lx.peekByte()) {
			lx.advance()
		}
		text := lx.src[start:lx.pos]
		return Token{Kind: KindIntLit, Text: text, IntVal: parseDec(text), Line: startLine, LineText: lineText}

	case c == '\'':
		lx.advance()
		ch := lx.advance()
		if ch == '\\' {
			ch = escapeChar(lx.advance())
		}
		if lx.peekByte() == '\'' {
			lx.advance()
		}
		return Token{Kind: KindCharLit, IntVal: int32(ch), Line: startLine, LineText: lineText}

	case c == '"':
		lx.advance()
		start := lx.pos
		for lx.peekByte() != '"' && lx.peekByte() != 0 {
			if lx.peekByte() == '\\' {
				lx.advance()
			}
			lx.advance()
		}
		text := lx.src[start:lx.pos]
		lx.advance()
		return Token{Kind: KindStrLit, Text: text, Name: lx.interp.Intern(text), Line: startLine, LineText: lineText}

	default:
		for _, op := range multiCharOps {
			if strings.HasPrefix(lx.src[lx.pos:], op) {
				lx.pos += len(op)
				return Token{Kind: KindPunct, Text: op, Line: startLine, LineText: lineText}
			}
		}
		lx.advance()
		return Token{Kind: KindPunct, Text: string(c), Line: startLine, LineText: lineText}
	}
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseHex(s string) int32 {
	var v int32
	for i := 2; i < len(s); i++ {
		v = v*16 + int32(hexDigit(s[i]))
	}
	return v
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

func parseDec(s string) int32 {
	var v int32
	for i := 0; i < len(s); i++ {
		v = v*10 + int32(s[i]-'0')
	}
	return v
}

func escapeChar(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		return c
	}
}

package lex

import "testing"

func tokenize(src string) []Token {
	interp := NewStringTable()
	lxr := NewLexer(src, interp)
	var out []Token
	for {
		tok := lxr.Next()
		out = append(out, tok)
		if tok.Kind == KindEOF {
			break
		}
	}
	return out
}

func TestNextClassifiesIdentifierVsKeyword(t *testing.T) {
	toks := tokenize("int counter")
	if toks[0].Kind != KindKeyword || toks[0].Text != "int" {
		t.Errorf("first token = %+v, want keyword int", toks[0])
	}
	if toks[1].Kind != KindIdent || toks[1].Text != "counter" {
		t.Errorf("second token = %+v, want ident counter", toks[1])
	}
}

func TestNextInternsIdenticalIdentifiersToSameID(t *testing.T) {
	interp := NewStringTable()
	lxr := NewLexer("foo foo", interp)
	a := lxr.Next()
	b := lxr.Next()
	if a.Name != b.Name {
		t.Errorf("repeated identifier interned to different IDs: %v vs %v", a.Name, b.Name)
	}
}

func TestNextParsesDecimalAndHexLiterals(t *testing.T) {
	toks := tokenize("42 0xFF")
	if toks[0].Kind != KindIntLit || toks[0].IntVal != 42 {
		t.Errorf("decimal literal = %+v, want IntVal 42", toks[0])
	}
	if toks[1].Kind != KindIntLit || toks[1].IntVal != 255 {
		t.Errorf("hex literal = %+v, want IntVal 255", toks[1])
	}
}

func TestNextParsesCharLiteralWithEscape(t *testing.T) {
	toks := tokenize(`'a' '\n'`)
	if toks[0].Kind != KindCharLit || toks[0].IntVal != int32('a') {
		t.Errorf("char literal = %+v, want 'a'", toks[0])
	}
	if toks[1].Kind != KindCharLit || toks[1].IntVal != int32('\n') {
		t.Errorf("escaped char literal = %+v, want newline", toks[1])
	}
}

func TestNextParsesStringLiteral(t *testing.T) {
	toks := tokenize(`"hello"`)
	if toks[0].Kind != KindStrLit || toks[0].Text != "hello" {
		t.Errorf("string literal = %+v, want text %q", toks[0], "hello")
	}
}

func TestNextPrefersLongestMultiCharOperator(t *testing.T) {
	toks := tokenize("a == b")
	if toks[1].Kind != KindPunct || toks[1].Text != "==" {
		t.Errorf("operator token = %+v, want ==", toks[1])
	}
}

func TestNextSkipsLineAndBlockComments(t *testing.T) {
	toks := tokenize("a // trailing comment\nb /* block\ncomment */ c")
	var idents []string
	for _, tok := range toks {
		if tok.Kind == KindIdent {
			idents = append(idents, tok.Text)
		}
	}
	want := []string{"a", "b", "c"}
	if len(idents) != len(want) {
		t.Fatalf("identifiers = %v, want %v", idents, want)
	}
	for i, w := range want {
		if idents[i] != w {
			t.Errorf("identifier %d = %q, want %q", i, idents[i], w)
		}
	}
}

func TestNextTracksLineNumbers(t *testing.T) {
	toks := tokenize("a\nb\nc")
	if toks[0].Line != 1 || toks[1].Line != 2 || toks[2].Line != 3 {
		t.Errorf("lines = %d %d %d, want 1 2 3", toks[0].Line, toks[1].Line, toks[2].Line)
	}
}

func TestPreprocessExtractsIncludeAndMachineDirectives(t *testing.T) {
	src := "#include \"tia.h\"\n#machine \"atari2600\"\nchar x;\n"
	p := Preprocess(src, nil)

	if len(p.Includes) != 1 || p.Includes[0] != "tia.h" {
		t.Errorf("Includes = %v, want [tia.h]", p.Includes)
	}
	if p.Machine != "atari2600" {
		t.Errorf("Machine = %q, want atari2600", p.Machine)
	}
	if p.Lines[0] != "" || p.Lines[1] != "" {
		t.Errorf("directive lines should be blanked, got %q / %q", p.Lines[0], p.Lines[1])
	}
	if p.Lines[2] != "char x;" {
		t.Errorf("non-directive line changed: %q", p.Lines[2])
	}
}

func TestPreprocessKeepsCycleTogglesVerbatim(t *testing.T) {
	src := "#show_cycles\nx = 1;\n#hide_cycles\n"
	p := Preprocess(src, nil)
	if p.Lines[0] != "#show_cycles" || p.Lines[2] != "#hide_cycles" {
		t.Errorf("cycle toggle lines should survive verbatim, got %q / %q", p.Lines[0], p.Lines[2])
	}
}

func TestPreprocessWarnsOnUnknownDirective(t *testing.T) {
	var warned bool
	Preprocess("#bogus\n", func(line int, msg string) { warned = true })
	if !warned {
		t.Error("expected a warning callback for an unrecognized directive")
	}
}

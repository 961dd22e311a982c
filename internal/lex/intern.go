package lex

import "github.com/splendidnut/Neolithic-sub000/internal/ast"

// StringTable interns identifier and string-literal text into ast.StrID
// handles, so the AST never carries raw Go strings in its hot fields.
// Equal text always yields the same ID.
type StringTable struct {
	ids   map[string]ast.StrID
	texts []string
}

func NewStringTable() *StringTable {
	return &StringTable{ids: make(map[string]ast.StrID)}
}

func (t *StringTable) Intern(s string) ast.StrID {
	if id, ok := t.ids[s]; ok {
		return id
	}
	id := ast.StrID(len(t.texts))
	t.texts = append(t.texts, s)
	t.ids[s] = id
	return id
}

func (t *StringTable) Text(id ast.StrID) string {
	if int(id) < 0 || int(id) >= len(t.texts) {
		return ""
	}
	return t.texts[id]
}

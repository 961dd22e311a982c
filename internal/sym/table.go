package sym

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
)

// Table is a linked list of symbols with first/last pointers for O(1)
// append and a parent pointer for lexical nesting.
type Table struct {
	first, last *Record
	Parent      *Table
}

// NewGlobalTable builds the program's global table, pre-installing the
// two boolean constants every scope can see.
func NewGlobalTable() *Table {
	t := &Table{}
	_, _ = t.AddSymbol("false", KindConst, TypeBool, FlagNone)
	t.last.HasValue, t.last.ConstValue = true, 0
	_, _ = t.AddSymbol("true", KindConst, TypeBool, FlagNone)
	t.last.HasValue, t.last.ConstValue = true, 1
	return t
}

// NewTable creates a nested scope under parent (function params/locals,
// struct/union member lists).
func NewTable(parent *Table) *Table {
	return &Table{Parent: parent}
}

// AddSymbol adds name to the table, rejecting duplicates with a
// diagnostic error and returning the pre-existing record instead.
func (t *Table) AddSymbol(name string, kind Kind, base BaseType, flags Flags) (*Record, error) {
	if existing := t.findLocal(name); existing != nil {
		return existing, errors.Errorf("duplicate symbol %q", name)
	}
	r := &Record{NameText: name, Kind: kind, Base: base, Flags: flags, Location: NoLocation}
	if t.first == nil {
		t.first, t.last = r, r
	} else {
		t.last.next = r
		t.last = r
	}
	return r, nil
}

// findLocal searches only this table's own chain (not parents), since
// duplicate detection is scoped to the immediately enclosing table.
func (t *Table) findLocal(name string) *Record {
	if name == "" {
		return nil
	}
	for s := t.first; s != nil; s = s.next {
		if s.NameText == name {
			return s
		}
	}
	return nil
}

// FindSymbol does a case-sensitive linear search of this table's chain,
// then its parent chains. An empty name always
// yields nothing.
func (t *Table) FindSymbol(name string) *Record {
	if name == "" {
		return nil
	}
	for table := t; table != nil; table = table.Parent {
		if r := table.findLocal(name); r != nil {
			return r
		}
	}
	return nil
}

// First returns the table's first symbol, for iteration by callers that
// need table order (layout and printing depend on insertion order).
func (t *Table) First() *Record { return t.first }

// Next returns the symbol following r in table order.
func (r *Record) Next() *Record { return r.next }

// AddSymbolLocation assigns a memory address to a symbol once the
// allocator places it.
func AddSymbolLocation(r *Record, addr int) {
	r.Location = addr
}

// ShowTable pretty-prints the table: name, kind, location, pointer flag,
// base size, element count, computed size, const value, and optional
// user-type name, followed by the entries of each symbol's parameter,
// local, or member table, indented one level.
func (t *Table) ShowTable(w io.Writer, interp func(ast.StrID) string) {
	for s := t.first; s != nil; s = s.next {
		printSingleSymbol(w, s)
		if s.Ext != nil {
			if s.Ext.Params != nil {
				fmt.Fprintf(w, "    params:\n")
				s.Ext.Params.showIndented(w, 2)
			}
			if s.Ext.Locals != nil {
				fmt.Fprintf(w, "    locals:\n")
				s.Ext.Locals.showIndented(w, 2)
			}
		}
		if (s.Kind == KindStruct || s.Kind == KindUnion) && s.UserTypeDef != nil && s.UserTypeDef.Ext != nil && s.UserTypeDef.Ext.Locals != nil {
			fmt.Fprintf(w, "    members:\n")
			s.UserTypeDef.Ext.Locals.showIndented(w, 2)
		}
	}
}

func (t *Table) showIndented(w io.Writer, depth int) {
	prefix := ""
	for i := 0; i < depth; i++ {
		prefix += "  "
	}
	for s := t.first; s != nil; s = s.next {
		fmt.Fprintf(w, "%s", prefix)
		printSingleSymbol(w, s)
	}
}

func printSingleSymbol(w io.Writer, s *Record) {
	loc := "-"
	if s.Location != NoLocation {
		loc = fmt.Sprintf("$%04X", s.Location)
	}
	constStr := ""
	if s.HasValue {
		constStr = fmt.Sprintf(" const=%d", s.ConstValue)
	}
	userType := ""
	if s.UserTypeDef != nil {
		userType = " type=" + s.UserTypeDef.NameText
	}
	fmt.Fprintf(w, "%-16s kind=%-6s loc=%-6s ptr=%-5v base=%d elems=%d size=%d%s%s\n",
		s.NameText, s.Kind, loc, s.IsPointer(), s.GetBaseVarSize(), s.NumElements, s.CalcVarSize(), constStr, userType)
}

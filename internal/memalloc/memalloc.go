// Package memalloc implements a two-cursor memory allocator: zero-page
// and absolute/RAM address cursors for global variables, followed by a
// shared region for function locals placed above globals.
package memalloc

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// Allocator tracks the zero-page and absolute cursors as they advance.
type Allocator struct {
	ZPCursor  int
	AbsCursor int
}

// New builds an Allocator with cursors starting at the machine's
// zero-page and RAM base addresses.
func New(zpBase, ramBase int) *Allocator {
	return &Allocator{ZPCursor: zpBase, AbsCursor: ramBase}
}

// AllocateGlobals walks the global table's variables in declaration order,
// assigning each one an address unless it already carries an explicit
// `@addr` location, which is taken literally instead.
func (a *Allocator) AllocateGlobals(global *sym.Table) {
	for s := global.First(); s != nil; s = s.Next() {
		if !s.IsVariable() {
			continue
		}
		a.allocateOne(s)
	}
}

func (a *Allocator) allocateOne(s *sym.Record) {
	if s.Location != sym.NoLocation {
		return // explicit @addr: already placed by the symbol generator
	}
	size := s.CalcVarSize()
	if s.IsZeroPage() {
		s.Location = a.ZPCursor
		a.ZPCursor += size
		return
	}
	s.Location = a.AbsCursor
	a.AbsCursor += size
}

// AllocateLocals places every function's local variables in the shared
// region immediately above the globals: because call trees are shallow
// on these targets, simple non-overlapping placement suffices. prog
// supplies function order; global holds each function's symbol (and
// hence its Extension.Locals table).
func (a *Allocator) AllocateLocals(prog *ast.List, global *sym.Table, interp *lex.StringTable) {
	for _, n := range prog.Operands() {
		if n.Kind != ast.KList || n.List.Op().Token != ast.PtDefun {
			continue
		}
		name := interp.Text(n.List.Nodes[1].Str)
		fn := global.FindSymbol(name)
		if fn == nil || fn.Ext == nil || fn.Ext.Locals == nil {
			continue
		}
		bytes := 0
		for s := fn.Ext.Locals.First(); s != nil; s = s.Next() {
			if !s.IsVariable() {
				continue
			}
			a.allocateOne(s)
			bytes += s.CalcVarSize()
		}
		fn.Ext.LocalBytes = bytes
	}
}

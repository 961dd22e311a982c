package output

import (
	"strconv"
	"strings"

	"github.com/splendidnut/Neolithic-sub000/internal/ilist"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// scopeFor returns the symbol table a code block's bare operand names
// should resolve against first: the owning function's own locals, whose
// parent chain already reaches its parameters and then the globals.
// This is what lets two functions each have their own local named, say,
// `i` without colliding in the binary writer's resolver.
func scopeFor(b *Block) *sym.Table {
	if b.Code == nil {
		return nil
	}
	fn, ok := b.Code.FuncSym.(*sym.Record)
	if !ok || fn == nil || fn.Ext == nil {
		return nil
	}
	return fn.Ext.Locals
}

// resolveAtom resolves a single name to a numeric value: a `$`-prefixed
// hex literal, a plain decimal literal, a symbol in scope (if any), a
// process-wide label, or a global symbol, in that order.
func resolveAtom(name string, scope, global *sym.Table, labels *ilist.Table) (int, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	if hex, ok := strings.CutPrefix(name, "$"); ok {
		if v, err := strconv.ParseInt(hex, 16, 64); err == nil {
			return int(v), true
		}
	}
	if v, err := strconv.ParseInt(name, 10, 64); err == nil {
		return int(v), true
	}
	if scope != nil {
		if s := scope.FindSymbol(name); s != nil && s.Location != sym.NoLocation {
			return s.Location, true
		}
	}
	if labels != nil {
		if lbl := labels.FindLabel(name); lbl != nil {
			lbl = lbl.Resolve()
			if lbl.HasLocation {
				return lbl.Location, true
			}
		}
	}
	if global != nil {
		if s := global.FindSymbol(name); s != nil && s.Location != sym.NoLocation {
			return s.Location, true
		}
	}
	return 0, false
}

// resolveExprAddr resolves a `+`-joined operand expression (e.g. the
// `name+2` text genAddrOf builds for `&arr[i]`), summing each atom.
func resolveExprAddr(text string, scope, global *sym.Table, labels *ilist.Table) (int, bool) {
	sum := 0
	for _, part := range strings.Split(text, "+") {
		v, ok := resolveAtom(part, scope, global, labels)
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}

// operandValue computes an instruction's fully resolved numeric operand,
// applying the same (param1+param2[+1])/lo/hi composition the code
// generator encoded into Ext.
func operandValue(in *ilist.Instr, scope, global *sym.Table, labels *ilist.Table) (int, bool) {
	if in.IsNumeric {
		return in.Offset, true
	}
	base, ok := resolveExprAddr(in.Param1, scope, global, labels)
	if !ok {
		return 0, false
	}
	switch in.Ext {
	case ilist.ExtLo:
		return base & 0xFF, true
	case ilist.ExtHi:
		return (base >> 8) & 0xFF, true
	case ilist.ExtAdd, ilist.ExtPlusOne:
		off := 0
		if in.Param2 != "" {
			v, ok2 := resolveAtom(in.Param2, scope, global, labels)
			if ok2 {
				off = v
			}
		}
		if in.Ext == ilist.ExtPlusOne {
			off++
		}
		return base + off, true
	default:
		return base, true
	}
}

// dasmOperandText renders an instruction's operand the way the source
// text writer prints it: DASM itself evaluates the `+`/`<`/`>` arithmetic,
// so no numeric resolution happens here at all.
func dasmOperandText(in *ilist.Instr) string {
	if in.IsNumeric {
		return strconv.Itoa(in.Offset)
	}
	switch in.Ext {
	case ilist.ExtLo:
		return "<" + in.Param1
	case ilist.ExtHi:
		return ">" + in.Param1
	case ilist.ExtAdd:
		if in.Param2 == "" || in.Param2 == "0" {
			return in.Param1
		}
		return in.Param1 + "+" + in.Param2
	case ilist.ExtPlusOne:
		return in.Param1 + "+" + in.Param2 + "+1"
	default:
		return in.Param1
	}
}

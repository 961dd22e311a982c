package sym

import "github.com/splendidnut/Neolithic-sub000/internal/ast"

// Record is a single symbol: a variable, constant, function, or
// user-defined type tag.
type Record struct {
	Name  ast.StrID
	NameText string // kept alongside the interned id for diagnostics/output
	Kind  Kind
	Base  BaseType
	Flags Flags

	Location    int // NoLocation until the allocator assigns one
	HasValue    bool
	ConstValue  int32
	ConstNotes  string // provenance string for the folded value
	NumElements int    // array length, or struct/union byte size

	Hint    Hint
	IsLocal bool
	IsStack bool // function parameter passed on the stack, not a register

	UserTypeDef *Record // struct/union/enum tag this symbol's type refers to
	Ext         *Extension

	// Init retains a non-foldable initializer expression for the code
	// generator to emit. Zero value (Kind == ast.KEmpty) means no
	// initializer, or one already folded into ConstValue.
	Init ast.Node

	next *Record // table chain; see Table
}

func (r *Record) IsPointer() bool  { return r.Flags&FlagPointer != 0 }
func (r *Record) IsArray() bool    { return r.Flags&FlagArray != 0 }
func (r *Record) IsSigned() bool   { return r.Flags&FlagSigned != 0 }
func (r *Record) IsZeroPage() bool { return r.Flags&FlagZeroPage != 0 }

// IsSimpleConst reports whether r is a scalar compile-time constant:
// const kind, not an array, not a struct.
func (r *Record) IsSimpleConst() bool {
	return r.Kind == KindConst && !r.IsArray() && r.Base != TypeStruct
}

func (r *Record) IsConst() bool   { return r.Kind == KindConst }
func (r *Record) IsVariable() bool { return r.Kind == KindVar }
func (r *Record) IsFunction() bool { return r.Kind == KindFunc }
func (r *Record) IsStruct() bool  { return r.Kind == KindStruct }
func (r *Record) IsUnion() bool   { return r.Kind == KindUnion }

func (r *Record) IsMainFunction() bool {
	return r.Kind == KindFunc && r.NameText == "main"
}

// CalcVarSize returns the byte footprint of r: pointers are always 2
// bytes; otherwise the base size (int=2, char/bool=1, user-defined =
// recurse into UserTypeDef), multiplied by NumElements for arrays and
// structs.
func (r *Record) CalcVarSize() int {
	if r.IsPointer() {
		return 2
	}
	base := r.baseSize()
	if r.IsArray() || r.Kind == KindStruct || r.Kind == KindUnion {
		n := r.NumElements
		if n == 0 {
			n = 1
		}
		return base * n
	}
	return base
}

func (r *Record) baseSize() int {
	switch r.Base {
	case TypeInt:
		return 2
	case TypeChar, TypeBool:
		return 1
	case TypeUser, TypeStruct:
		if r.UserTypeDef != nil {
			return r.UserTypeDef.NumElements // struct/union symbols store their own size here
		}
		return 1
	default:
		return 1
	}
}

// GetBaseVarSize returns the indexing stride for r: 2 for a pointer or
// int-typed element, else 1.
func (r *Record) GetBaseVarSize() int {
	if r.IsPointer() || r.Base == TypeInt {
		return 2
	}
	return 1
}

// Extension holds the per-function or per-aggregate data attached to a
// symbol.
type Extension struct {
	Params    *Table
	Locals    *Table
	ParamCount int
	CallDepth int
	Inlined   bool
	BodyAST   *ast.List // retained source for inlining
	LocalBytes int
	RefCount  int

	CodeBlock interface{} // *ilist.Block, set once code generation runs (avoids an import cycle)
}

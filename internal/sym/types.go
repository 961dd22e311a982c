// Package sym implements the symbol model: symbol records, scoped
// tables, and the flag vocabulary describing a variable's base type,
// storage, and modifiers.
package sym

// Kind is a symbol's category.
type Kind int

const (
	KindNone Kind = iota
	KindVar
	KindConst
	KindFunc
	KindStruct
	KindUnion
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindConst:
		return "const"
	case KindFunc:
		return "func"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	default:
		return "none"
	}
}

// BaseType is the primitive or aggregate base of a symbol's type.
type BaseType int

const (
	TypeNone BaseType = iota
	TypeChar
	TypeInt
	TypeBool
	TypeStruct
	TypePtr
	TypeUser
)

// Flags is the modifier bitset, combined with a signed bit for the base
// type's signedness.
type Flags uint32

const (
	FlagNone     Flags = 0
	FlagSigned   Flags = 1 << iota
	FlagParam
	FlagInline
	FlagZeroPage
	FlagRegister
	FlagEnumValue
	FlagArray
	FlagPointer
)

// Hint is a register-placement hint for a parameter or register-declared
// variable.
type Hint int

const (
	HintNone Hint = iota
	HintA
	HintX
	HintY
)

func (h Hint) String() string {
	switch h {
	case HintA:
		return "A"
	case HintX:
		return "X"
	case HintY:
		return "Y"
	default:
		return "none"
	}
}

const NoLocation = -1

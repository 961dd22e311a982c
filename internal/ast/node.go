package ast

import "github.com/splendidnut/Neolithic-sub000/internal/isa"

// Kind tags the variant a Node holds. Go has no sum type, so Node carries
// every payload field but only the one matching Kind is meaningful —
// callers dispatch with a switch on Kind (see IsToken, List.Op) rather
// than a dynamic "is this a list" check.
type Kind int

const (
	KEmpty Kind = iota
	KInt
	KChar
	KStr
	KToken
	KMnemonic
	KAddrMode
	KList
)

// StrID is an interned identifier/string-literal handle (see internal/lex).
type StrID int32

// NoStrID marks an absent name, e.g. an untagged struct/union/enum.
const NoStrID StrID = -1

// Node is the tagged AST value every later phase operates on. Every
// variant other than KList is immutable once constructed; a KList node's
// underlying List
// may have one of its elements rewritten in place (constant folding).
type Node struct {
	Kind  Kind
	Int   int32
	Char  byte
	Str   StrID
	Token ParseToken
	Mne   isa.Mnemonic
	Mode  isa.AddrMode
	List  *List
}

func Empty() Node                { return Node{Kind: KEmpty} }
func Int(n int32) Node           { return Node{Kind: KInt, Int: n} }
func Char(c byte) Node           { return Node{Kind: KChar, Char: c} }
func Str(s StrID) Node           { return Node{Kind: KStr, Str: s} }
func Tok(t ParseToken) Node      { return Node{Kind: KToken, Token: t} }
func Mnemonic(m isa.Mnemonic) Node { return Node{Kind: KMnemonic, Mne: m} }
func AddrMode(m isa.AddrMode) Node { return Node{Kind: KAddrMode, Mode: m} }
func ListNode(l *List) Node      { return Node{Kind: KList, List: l} }

// IsToken reports whether n is a KToken node carrying exactly t.
func IsToken(n Node, t ParseToken) bool {
	return n.Kind == KToken && n.Token == t
}

// IsList reports whether n wraps a List.
func IsList(n Node) bool { return n.Kind == KList }

// IsEvaluableLeaf reports whether n is a literal the expression evaluator
// can use directly (an integer or character constant).
func (n Node) IsEvaluableLeaf() bool {
	return n.Kind == KInt || n.Kind == KChar
}

// AsInt32 returns the numeric value of an int/char leaf; ok is false for
// any other Kind.
func (n Node) AsInt32() (int32, bool) {
	switch n.Kind {
	case KInt:
		return n.Int, true
	case KChar:
		return int32(n.Char), true
	}
	return 0, false
}

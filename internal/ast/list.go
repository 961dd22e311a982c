package ast

import (
	"fmt"
	"strings"
)

// List is the ordered sequence of nodes: by convention Nodes[0] is an
// operator (a KToken or KMnemonic node) and Nodes[1:] are
// its operands. Lists are owned by the AST they were built in; they are
// never deep-copied, only referenced.
//
// A Go slice grows on append, so there's no fixed-capacity overflow to
// guard against; Condense still exists to trim excess capacity the
// parser requested defensively.
type List struct {
	Nodes         []Node
	LineNum       int
	LineText      string
	HasNestedList bool
}

// NewList creates a list with capacity hint n (the parser's usual
// oversize-then-condense pattern); n is advisory only.
func NewList(n int) *List {
	if n < 0 {
		n = 0
	}
	return &List{Nodes: make([]Node, 0, n)}
}

// WrapNode returns a single-element list wrapping n.
func WrapNode(n Node) *List {
	return &List{Nodes: []Node{n}}
}

// Add appends a node, tracking HasNestedList for the pretty printer.
func (l *List) Add(n Node) {
	if n.Kind == KList {
		l.HasNestedList = true
	}
	l.Nodes = append(l.Nodes, n)
}

// Set rewrites element i in place — the one mutation a frozen AST permits,
// used by constant folding to replace an evaluable sub-expression with a
// folded Int leaf.
func (l *List) Set(i int, n Node) {
	l.Nodes[i] = n
}

// Count is the number of elements in the list.
func (l *List) Count() int { return len(l.Nodes) }

// Condense shrinks the backing array's capacity down to the current
// length, releasing any oversize-then-condense slack the parser reserved.
func (l *List) Condense() {
	if cap(l.Nodes) == len(l.Nodes) {
		return
	}
	trimmed := make([]Node, len(l.Nodes))
	copy(trimmed, l.Nodes)
	l.Nodes = trimmed
}

// Reverse reverses the element order in place.
func (l *List) Reverse() {
	for i, j := 0, len(l.Nodes)-1; i < j; i, j = i+1, j-1 {
		l.Nodes[i], l.Nodes[j] = l.Nodes[j], l.Nodes[i]
	}
}

// Op returns the operator node (Nodes[0]) of a construct list; it panics
// on an empty list, since by invariant every non-empty construct list
// names its operator first.
func (l *List) Op() Node { return l.Nodes[0] }

// Operands returns the operand nodes (Nodes[1:]).
func (l *List) Operands() []Node {
	if len(l.Nodes) <= 1 {
		return nil
	}
	return l.Nodes[1:]
}

// Print renders the list as an indented tree, the format used for the
// `P.ast` output file. strOf resolves an interned StrID to text.
func (l *List) Print(w *strings.Builder, indent int, strOf func(StrID) string) {
	pad := strings.Repeat("  ", indent)
	for _, n := range l.Nodes {
		switch n.Kind {
		case KEmpty:
			fmt.Fprintf(w, "%s<empty>\n", pad)
		case KInt:
			fmt.Fprintf(w, "%s%d\n", pad, n.Int)
		case KChar:
			fmt.Fprintf(w, "%s'%c'\n", pad, n.Char)
		case KStr:
			fmt.Fprintf(w, "%s%q\n", pad, strOf(n.Str))
		case KToken:
			fmt.Fprintf(w, "%s%s\n", pad, n.Token)
		case KMnemonic:
			fmt.Fprintf(w, "%s%s\n", pad, n.Mne.Name())
		case KAddrMode:
			fmt.Fprintf(w, "%smode(%d)\n", pad, n.Mode)
		case KList:
			fmt.Fprintf(w, "%s(\n", pad)
			n.List.Print(w, indent+1, strOf)
			fmt.Fprintf(w, "%s)\n", pad)
		}
	}
}

// Package callgraph implements the caller/callee analysis: it walks
// every function body looking for `funcCall` nodes, records the
// edges, and estimates the deepest call chain so the compiler can warn
// about runaway recursion on a target with a few hundred bytes of stack.
package callgraph

import (
	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/diag"
	"github.com/splendidnut/Neolithic-sub000/internal/lex"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// DefaultDepthLimit is the configured call depth beyond which Analyze
// warns that a function's call chain may be too deep for the target's
// small stack.
const DefaultDepthLimit = 3

// Graph records (caller, callee) edges between function symbols.
type Graph struct {
	edges   map[string][]string
	symbols map[string]*sym.Record
	order   []string
}

func New() *Graph {
	return &Graph{edges: make(map[string][]string), symbols: make(map[string]*sym.Record)}
}

// FindFunction returns the callee list recorded for name, or nil.
func (g *Graph) FindFunction(name string) []string { return g.edges[name] }

// CntFuncsCalled returns the number of distinct functions name calls.
func (g *Graph) CntFuncsCalled(name string) int { return len(g.edges[name]) }

// Analyze walks the program's function definitions, recording call edges,
// then computes each function's deepest call depth and warns through rep
// when it exceeds limit (0 selects DefaultDepthLimit).
func Analyze(prog *ast.List, global *sym.Table, interp *lex.StringTable, rep *diag.Reporter, limit int) *Graph {
	if limit <= 0 {
		limit = DefaultDepthLimit
	}
	g := New()
	strOf := interp.Text

	for _, n := range prog.Operands() {
		if n.Kind != ast.KList || n.List.Op().Token != ast.PtDefun {
			continue
		}
		name := strOf(n.List.Nodes[1].Str)
		rec := global.FindSymbol(name)
		g.symbols[name] = rec
		g.order = append(g.order, name)

		body := n.List.Nodes[5]
		var callees []string
		if body.Kind == ast.KList && body.List.Op().Token != ast.PtAsm {
			callees = collectCalls(body.List, strOf)
		}
		g.edges[name] = callees
	}

	depths := make(map[string]int, len(g.order))
	for _, name := range g.order {
		depth := g.deepestDepth(name, map[string]bool{})
		depths[name] = depth
		if depth > limit {
			rep.Warnf("callgraph", 0, "function %q has a call depth of %d, exceeding the configured limit of %d", name, depth, limit)
		}
	}
	return g
}

// deepestDepth computes the longest call chain reachable from name,
// guarding against cycles (mutual recursion) with a visited set.
func (g *Graph) deepestDepth(name string, visiting map[string]bool) int {
	if visiting[name] {
		return 0 // recursive cycle: don't loop forever: treat as a leaf here
	}
	visiting[name] = true
	defer delete(visiting, name)

	best := 0
	for _, callee := range g.edges[name] {
		d := 1 + g.deepestDepth(callee, visiting)
		if d > best {
			best = d
		}
	}
	return best
}

// collectCalls recursively scans a statement/expression AST for
// `funcCall` nodes, returning the callee names in the order found.
func collectCalls(n *ast.List, strOf func(ast.StrID) string) []string {
	var out []string
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		if node.Kind != ast.KList {
			return
		}
		l := node.List
		if l.Count() == 0 {
			return
		}
		op := l.Op()
		if op.Kind == ast.KToken && op.Token == ast.PtFuncCall {
			callee := l.Nodes[1]
			if callee.Kind == ast.KStr {
				out = append(out, strOf(callee.Str))
			}
		}
		for _, child := range l.Nodes {
			walk(child)
		}
	}
	for _, top := range n.Nodes {
		walk(top)
	}
	return out
}

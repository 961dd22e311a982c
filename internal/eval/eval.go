// Package eval implements a pure constant-folding expression evaluator:
// a function from an AST list to an optional int32 result, with no side
// effects on the symbol table or AST (beyond the in-place rewrite
// callers choose to apply to the folded leaf).
package eval

import (
	"fmt"
	"strings"

	"github.com/splendidnut/Neolithic-sub000/internal/ast"
	"github.com/splendidnut/Neolithic-sub000/internal/sym"
)

// Result is the evaluator's outcome: HasResult false means "no result"
// and propagates up through any enclosing expression, since a
// sub-expression lacking a result makes the whole expression unfoldable.
type Result struct {
	HasResult bool
	Value     int32
}

func none() Result     { return Result{} }
func some(v int32) Result { return Result{HasResult: true, Value: v} }

// Eval folds node against the given symbol scope. strOf resolves an
// interned identifier for symbol lookups.
func Eval(n ast.Node, scope *sym.Table, strOf func(ast.StrID) string) Result {
	switch n.Kind {
	case ast.KInt:
		return some(n.Int)
	case ast.KChar:
		return some(int32(n.Char))
	case ast.KStr:
		return none() // string literals are not foldable to a scalar
	case ast.KList:
		return evalList(n.List, scope, strOf)
	default:
		return none()
	}
}

// evalIdent resolves an identifier leaf (encoded as a KStr node holding
// the interned name) to a compile-time constant value: only identifiers
// that resolve to const symbols carrying a folded value are foldable.
func evalIdent(name string, scope *sym.Table) Result {
	s := scope.FindSymbol(name)
	if s == nil || !s.IsConst() || !s.HasValue {
		return none()
	}
	return some(s.ConstValue)
}

func evalList(l *ast.List, scope *sym.Table, strOf func(ast.StrID) string) Result {
	if l.Count() == 0 {
		return none()
	}
	op := l.Op()

	if op.Kind == ast.KStr {
		// Bare identifier list: {ident} used as an operand placeholder, or
		// {ident} alone as the whole expression.
		return evalIdent(strOf(op.Str), scope)
	}
	if op.Kind != ast.KToken {
		return none()
	}

	operands := l.Operands()

	switch op.Token {
	case ast.PtAdd, ast.PtSub, ast.PtMul, ast.PtDiv, ast.PtAnd, ast.PtOr, ast.PtXor:
		if len(operands) != 2 {
			return none()
		}
		return evalBinary(op.Token, operands[0], operands[1], scope, strOf)

	case ast.PtLookup: // array-element arithmetic: treated as an add for offset computation
		if len(operands) != 2 {
			return none()
		}
		return evalBinary(ast.PtAdd, operands[0], operands[1], scope, strOf)

	case ast.PtNot, ast.PtInvert:
		if len(operands) != 1 {
			return none()
		}
		v := evalOperand(operands[0], scope, strOf)
		if !v.HasResult {
			return none()
		}
		if op.Token == ast.PtNot {
			if v.Value == 0 {
				return some(1)
			}
			return some(0)
		}
		return some(^v.Value)

	case ast.PtNegate:
		if len(operands) != 1 {
			return none()
		}
		v := evalOperand(operands[0], scope, strOf)
		if !v.HasResult {
			return none()
		}
		return some(-v.Value)

	case ast.PtAddrOf:
		if len(operands) != 1 || operands[0].Kind != ast.KStr {
			return none()
		}
		s := scope.FindSymbol(strOf(operands[0].Str))
		if s == nil || s.Location == sym.NoLocation {
			return none()
		}
		return some(int32(s.Location))

	default:
		return none()
	}
}

func evalOperand(n ast.Node, scope *sym.Table, strOf func(ast.StrID) string) Result {
	if n.Kind == ast.KStr {
		return evalIdent(strOf(n.Str), scope)
	}
	return Eval(n, scope, strOf)
}

func evalBinary(op ast.ParseToken, left, right ast.Node, scope *sym.Table, strOf func(ast.StrID) string) Result {
	l := evalOperand(left, scope, strOf)
	if !l.HasResult {
		return none()
	}
	r := evalOperand(right, scope, strOf)
	if !r.HasResult {
		return none()
	}
	// 32-bit accumulator; overflow wraps per two's-complement.
	a, b := int64(l.Value), int64(r.Value)
	var result int64
	switch op {
	case ast.PtAdd:
		result = a + b
	case ast.PtSub:
		result = a - b
	case ast.PtMul:
		result = a * b
	case ast.PtDiv:
		if b == 0 {
			return none() // division by zero propagates no-result
		}
		result = a / b
	case ast.PtAnd:
		result = a & b
	case ast.PtOr:
		result = a | b
	case ast.PtXor:
		result = a ^ b
	default:
		return none()
	}
	return some(int32(uint32(result)))
}

// GetExpression renders a printable form of an expression for use as a
// generated-code comment, e.g. "2 + 3 * 4".
func GetExpression(n ast.Node, strOf func(ast.StrID) string) string {
	switch n.Kind {
	case ast.KInt:
		return fmt.Sprintf("%d", n.Int)
	case ast.KChar:
		return fmt.Sprintf("'%c'", n.Char)
	case ast.KStr:
		return strOf(n.Str)
	case ast.KList:
		return getExpressionList(n.List, strOf)
	default:
		return ""
	}
}

func getExpressionList(l *ast.List, strOf func(ast.StrID) string) string {
	if l.Count() == 0 {
		return ""
	}
	op := l.Op()
	operands := l.Operands()
	if op.Kind == ast.KStr {
		return strOf(op.Str)
	}
	if op.Kind != ast.KToken {
		return ""
	}
	switch len(operands) {
	case 1:
		return op.Token.String() + GetExpression(operands[0], strOf)
	case 2:
		return GetExpression(operands[0], strOf) + " " + op.Token.String() + " " + GetExpression(operands[1], strOf)
	default:
		parts := make([]string, len(operands))
		for i, o := range operands {
			parts[i] = GetExpression(o, strOf)
		}
		return op.Token.String() + "(" + strings.Join(parts, ", ") + ")"
	}
}

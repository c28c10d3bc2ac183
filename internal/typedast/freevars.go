package typedast

import "github.com/sunholo/erc/internal/ast"

// FreeVariables computes the set of names that occur free in e, i.e.
// used but not bound by an enclosing Let/LetRecursive/Case/ListCase or
// function argument within e itself. The function-type-coercion pass
// uses it to decide which outer bindings an eta-expansion wrapper
// closure must capture, and the initializer sorter uses it to order
// top-level values by dependency.
func FreeVariables(e ast.Expr) map[string]bool {
	free := map[string]bool{}
	walk(e, map[string]bool{}, free)
	return free
}

func walk(e ast.Expr, bound map[string]bool, free map[string]bool) {
	switch n := e.(type) {
	case ast.Variable:
		if !bound[n.Name] {
			free[n.Name] = true
		}
	case ast.Application:
		walk(n.Function, bound, free)
		walk(n.Argument, bound, free)
	case ast.Let:
		walk(n.Value, bound, free)
		walk(n.Body, withBound(bound, n.Name), free)
	case ast.LetRecursive:
		inner := bound
		for _, d := range n.Definitions {
			inner = withBound(inner, d.Name)
		}
		for _, d := range n.Definitions {
			argBound := inner
			for _, a := range d.Arguments {
				argBound = withBound(argBound, a.Name)
			}
			walk(d.Body, argBound, free)
		}
		walk(n.Body, inner, free)
	case ast.LetError:
		walk(n.Value, bound, free)
		walk(n.Body, withBound(bound, n.Name), free)
	case ast.If:
		walk(n.Condition, bound, free)
		walk(n.Then, bound, free)
		walk(n.Else, bound, free)
	case ast.Case:
		walk(n.Argument, bound, free)
		for _, alt := range n.Alternatives {
			walk(alt.Body, withBound(bound, alt.Name), free)
		}
	case ast.ListCase:
		walk(n.Argument, bound, free)
		walk(n.EmptyAlternative, bound, free)
		nonEmptyBound := withBound(withBound(bound, n.FirstName), n.RestName)
		walk(n.NonEmptyAlternative, nonEmptyBound, free)
	case ast.Operation:
		walk(n.LHS, bound, free)
		walk(n.RHS, bound, free)
	case ast.ListLiteral:
		for _, el := range n.Elements {
			walk(el, bound, free)
		}
		if n.Rest != nil {
			walk(n.Rest, bound, free)
		}
	case ast.RecordConstruction:
		for _, k := range n.Elements.Keys() {
			v, _ := n.Elements.Get(k)
			walk(v, bound, free)
		}
	case ast.RecordElementOperation:
		walk(n.Argument, bound, free)
	case ast.RecordUpdate:
		walk(n.Argument, bound, free)
		for _, k := range n.Elements.Keys() {
			v, _ := n.Elements.Get(k)
			walk(v, bound, free)
		}
	case ast.TypeCoercion:
		walk(n.Argument, bound, free)
	}
}

func withBound(bound map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k := range bound {
		out[k] = true
	}
	out[name] = true
	return out
}

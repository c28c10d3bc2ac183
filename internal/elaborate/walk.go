package elaborate

import "github.com/sunholo/erc/internal/ast"

// rewriteFunc rewrites one expression node, used with mapChildren to build
// bottom-up, whole-module transform passes: each pass calls mapChildren
// with itself as the rewrite function so every child is already rewritten
// by the time the pass inspects (and possibly replaces) the parent node.
type rewriteFunc func(ast.Expr) (ast.Expr, error)

// mapChildren replaces every immediate child of e by calling f on it,
// returning a new node of the same kind. Leaf nodes (literals, Variable)
// are returned unchanged. This is the shared traversal every
// name-independent desugaring pass in this package builds on; the
// env-threading passes walk by hand instead.
func mapChildren(e ast.Expr, f rewriteFunc) (ast.Expr, error) {
	switch x := e.(type) {
	case ast.NumberLiteral, ast.BooleanLiteral, ast.NoneLiteral, ast.StringLiteral, ast.Variable:
		return e, nil

	case ast.ListLiteral:
		elems := make([]ast.Expr, len(x.Elements))
		for i, el := range x.Elements {
			r, err := f(el)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		rest := x.Rest
		if rest != nil {
			r, err := f(rest)
			if err != nil {
				return nil, err
			}
			rest = r
		}
		x.Elements = elems
		x.Rest = rest
		return x, nil

	case ast.Application:
		fn, err := f(x.Function)
		if err != nil {
			return nil, err
		}
		arg, err := f(x.Argument)
		if err != nil {
			return nil, err
		}
		x.Function, x.Argument = fn, arg
		return x, nil

	case ast.Let:
		val, err := f(x.Value)
		if err != nil {
			return nil, err
		}
		body, err := f(x.Body)
		if err != nil {
			return nil, err
		}
		x.Value, x.Body = val, body
		return x, nil

	case ast.LetRecursive:
		defs := make([]*ast.Definition, len(x.Definitions))
		for i, d := range x.Definitions {
			nb, err := f(d.Body)
			if err != nil {
				return nil, err
			}
			nd := *d
			nd.Body = nb
			defs[i] = &nd
		}
		body, err := f(x.Body)
		if err != nil {
			return nil, err
		}
		x.Definitions, x.Body = defs, body
		return x, nil

	case ast.LetError:
		val, err := f(x.Value)
		if err != nil {
			return nil, err
		}
		body, err := f(x.Body)
		if err != nil {
			return nil, err
		}
		x.Value, x.Body = val, body
		return x, nil

	case ast.If:
		cond, err := f(x.Condition)
		if err != nil {
			return nil, err
		}
		then, err := f(x.Then)
		if err != nil {
			return nil, err
		}
		els, err := f(x.Else)
		if err != nil {
			return nil, err
		}
		x.Condition, x.Then, x.Else = cond, then, els
		return x, nil

	case ast.Case:
		arg, err := f(x.Argument)
		if err != nil {
			return nil, err
		}
		alts := make([]*ast.Alternative, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			nb, err := f(alt.Body)
			if err != nil {
				return nil, err
			}
			na := *alt
			na.Body = nb
			alts[i] = &na
		}
		x.Argument, x.Alternatives = arg, alts
		return x, nil

	case ast.ListCase:
		arg, err := f(x.Argument)
		if err != nil {
			return nil, err
		}
		empty, err := f(x.EmptyAlternative)
		if err != nil {
			return nil, err
		}
		nonEmpty, err := f(x.NonEmptyAlternative)
		if err != nil {
			return nil, err
		}
		x.Argument, x.EmptyAlternative, x.NonEmptyAlternative = arg, empty, nonEmpty
		return x, nil

	case ast.Operation:
		lhs, err := f(x.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := f(x.RHS)
		if err != nil {
			return nil, err
		}
		x.LHS, x.RHS = lhs, rhs
		return x, nil

	case ast.RecordConstruction:
		elements := ast.NewElementMap()
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			nv, err := f(v)
			if err != nil {
				return nil, err
			}
			elements.Set(k, nv)
		}
		x.Elements = elements
		return x, nil

	case ast.RecordElementOperation:
		arg, err := f(x.Argument)
		if err != nil {
			return nil, err
		}
		x.Argument = arg
		return x, nil

	case ast.RecordUpdate:
		arg, err := f(x.Argument)
		if err != nil {
			return nil, err
		}
		elements := ast.NewElementMap()
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			nv, err := f(v)
			if err != nil {
				return nil, err
			}
			elements.Set(k, nv)
		}
		x.Argument, x.Elements = arg, elements
		return x, nil

	case ast.TypeCoercion:
		arg, err := f(x.Argument)
		if err != nil {
			return nil, err
		}
		x.Argument = arg
		return x, nil

	default:
		return e, nil
	}
}

// mapModuleBodies rewrites every top-level definition's body with f,
// producing a fresh Module.
func mapModuleBodies(m *ast.Module, f rewriteFunc) (*ast.Module, error) {
	defs := make([]*ast.Definition, len(m.Definitions))
	for i, d := range m.Definitions {
		body, err := f(d.Body)
		if err != nil {
			return nil, err
		}
		nd := *d
		nd.Body = body
		defs[i] = &nd
	}
	return m.WithDefinitions(defs), nil
}

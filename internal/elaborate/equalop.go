package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/typedast"
	"github.com/sunholo/erc/internal/types"
)

// EqualOperationLowerer picks the equality strategy from the
// statically-known shape of the operand type: numbers and strings stay
// primitive, records dispatch to their synthesized equality function,
// lists call the configured generic equal, unions become nested Case
// dispatch on both sides. Run after boolean-operation and not-equal
// lowering, so every remaining `==` it sees is a genuine surface
// equality test.
type EqualOperationLowerer struct {
	Resolver   *types.Resolver
	Equality   *types.EqualityChecker
	Comparable *types.ComparabilityChecker
	Canon      *types.Canonicalizer
	Extract    *typedast.Extractor
	Cfg        *config.Configuration
}

func NewEqualOperationLowerer(resolver *types.Resolver, equality *types.EqualityChecker, comparable *types.ComparabilityChecker, canon *types.Canonicalizer, extract *typedast.Extractor, cfg *config.Configuration) *EqualOperationLowerer {
	return &EqualOperationLowerer{Resolver: resolver, Equality: equality, Comparable: comparable, Canon: canon, Extract: extract, Cfg: cfg}
}

func (l *EqualOperationLowerer) Run(m *ast.Module, base *typedast.Env) (*ast.Module, error) {
	defs := make([]*ast.Definition, len(m.Definitions))
	for i, d := range m.Definitions {
		env := base
		for _, a := range d.Arguments {
			env = env.Extend(a.Name, a.Type)
		}
		body, err := l.lower(env, d.Body)
		if err != nil {
			return nil, err
		}
		nd := *d
		nd.Body = body
		defs[i] = &nd
	}
	return m.WithDefinitions(defs), nil
}

func (l *EqualOperationLowerer) lower(env *typedast.Env, e ast.Expr) (ast.Expr, error) {
	switch x := e.(type) {
	case ast.Let:
		val, err := l.lower(env, x.Value)
		if err != nil {
			return nil, err
		}
		valType, err := l.Extract.TypeOf(env, x.Value)
		if err != nil {
			return nil, err
		}
		if x.Type != nil {
			valType = x.Type
		}
		body, err := l.lower(env.Extend(x.Name, valType), x.Body)
		if err != nil {
			return nil, err
		}
		x.Value, x.Body = val, body
		return x, nil

	case ast.LetRecursive:
		inner := env
		for _, d := range x.Definitions {
			inner = inner.Extend(d.Name, d.Type)
		}
		defs := make([]*ast.Definition, len(x.Definitions))
		for i, d := range x.Definitions {
			argEnv := inner
			for _, a := range d.Arguments {
				argEnv = argEnv.Extend(a.Name, a.Type)
			}
			nb, err := l.lower(argEnv, d.Body)
			if err != nil {
				return nil, err
			}
			nd := *d
			nd.Body = nb
			defs[i] = &nd
		}
		body, err := l.lower(inner, x.Body)
		if err != nil {
			return nil, err
		}
		x.Definitions, x.Body = defs, body
		return x, nil

	case ast.LetError:
		val, err := l.lower(env, x.Value)
		if err != nil {
			return nil, err
		}
		valType, err := l.Extract.TypeOf(env, x.Value)
		if err != nil {
			return nil, err
		}
		body, err := l.lower(env.Extend(x.Name, valType), x.Body)
		if err != nil {
			return nil, err
		}
		x.Value, x.Body = val, body
		return x, nil

	case ast.Case:
		arg, err := l.lower(env, x.Argument)
		if err != nil {
			return nil, err
		}
		alts := make([]*ast.Alternative, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			nb, err := l.lower(env.Extend(alt.Name, alt.Type), alt.Body)
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
		arg, err := l.lower(env, x.Argument)
		if err != nil {
			return nil, err
		}
		empty, err := l.lower(env, x.EmptyAlternative)
		if err != nil {
			return nil, err
		}
		argType, terr := l.Extract.TypeOf(env, x.Argument)
		elem := types.Type(types.Any{})
		if terr == nil {
			if lt, ok := argType.(types.List); ok {
				elem = lt.Element
			}
		}
		nonEmptyEnv := env.Extend(x.FirstName, elem).Extend(x.RestName, types.List{Element: elem})
		nonEmpty, err := l.lower(nonEmptyEnv, x.NonEmptyAlternative)
		if err != nil {
			return nil, err
		}
		x.Argument, x.EmptyAlternative, x.NonEmptyAlternative = arg, empty, nonEmpty
		return x, nil

	case ast.If:
		cond, err := l.lower(env, x.Condition)
		if err != nil {
			return nil, err
		}
		then, err := l.lower(env, x.Then)
		if err != nil {
			return nil, err
		}
		els, err := l.lower(env, x.Else)
		if err != nil {
			return nil, err
		}
		x.Condition, x.Then, x.Else = cond, then, els
		return x, nil

	case ast.Operation:
		lhs, err := l.lower(env, x.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := l.lower(env, x.RHS)
		if err != nil {
			return nil, err
		}
		x.LHS, x.RHS = lhs, rhs
		if x.Operator != ast.OpEqual {
			return x, nil
		}
		operandType, err := l.Extract.TypeOf(env, x.LHS)
		if err != nil {
			return nil, err
		}
		return l.dispatchEqual(operandType, x.LHS, x.RHS, x.SourceInfo)

	case ast.Application:
		fn, err := l.lower(env, x.Function)
		if err != nil {
			return nil, err
		}
		arg, err := l.lower(env, x.Argument)
		if err != nil {
			return nil, err
		}
		x.Function, x.Argument = fn, arg
		return x, nil

	case ast.RecordConstruction:
		elements := ast.NewElementMap()
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			nv, err := l.lower(env, v)
			if err != nil {
				return nil, err
			}
			elements.Set(k, nv)
		}
		x.Elements = elements
		return x, nil

	case ast.RecordElementOperation:
		arg, err := l.lower(env, x.Argument)
		if err != nil {
			return nil, err
		}
		x.Argument = arg
		return x, nil

	case ast.ListLiteral:
		elems := make([]ast.Expr, len(x.Elements))
		for i, el := range x.Elements {
			ne, err := l.lower(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = ne
		}
		x.Elements = elems
		return x, nil

	case ast.TypeCoercion:
		arg, err := l.lower(env, x.Argument)
		if err != nil {
			return nil, err
		}
		x.Argument = arg
		return x, nil

	default:
		return e, nil
	}
}

// dispatchEqual picks the lowering for one equality test by operand
// shape.
func (l *EqualOperationLowerer) dispatchEqual(operandType types.Type, lhs, rhs ast.Expr, at source.Information) (ast.Expr, error) {
	resolved, err := l.Resolver.Resolve(operandType)
	if err != nil {
		return nil, err
	}

	comparable, err := l.Comparable.Comparable(resolved)
	if err != nil {
		return nil, err
	}
	if !comparable {
		if _, ok := resolved.(types.Any); ok {
			return nil, errors.NewAnyEqualOperation(at)
		}
		return nil, errors.NewFunctionEqualOperation(at)
	}

	switch t := resolved.(type) {
	case types.Number, types.String:
		return ast.Operation{Operator: ast.OpEqual, LHS: lhs, RHS: rhs, SourceInfo: at}, nil

	case types.None:
		return ast.BooleanLiteral{Value: true, SourceInfo: at}, nil

	case types.Boolean:
		return ast.If{
			Condition: lhs,
			Then:      rhs,
			Else: ast.If{
				Condition:  rhs,
				Then:       ast.BooleanLiteral{Value: false, SourceInfo: at},
				Else:       ast.BooleanLiteral{Value: true, SourceInfo: at},
				SourceInfo: at,
			},
			SourceInfo: at,
		}, nil

	case types.Record:
		return ast.Application{
			Function: ast.Application{
				Function:   ast.Variable{Name: t.Name + ".$equal", SourceInfo: at},
				Argument:   lhs,
				SourceInfo: at,
			},
			Argument:   rhs,
			SourceInfo: at,
		}, nil

	case types.List:
		return applyCall2(l.Cfg.ListType.Equal, lhs, rhs, at), nil

	case types.Union:
		return l.dispatchUnionEqual(t, lhs, rhs, at)

	default:
		return nil, errors.NewTypesNotMatched(resolved.String(), "comparable type", at, at)
	}
}

// dispatchUnionEqual builds nested Case dispatch on both operands: for
// each pair of members with matching shape, delegate to that shape's
// equality strategy; mismatched shapes are never equal.
func (l *EqualOperationLowerer) dispatchUnionEqual(u types.Union, lhs, rhs ast.Expr, at source.Information) (ast.Expr, error) {
	lhsVar, rhsVar := "$eq_lhs", "$eq_rhs"

	outerAlts := make([]*ast.Alternative, len(u.Members))
	for i, outerMember := range u.Members {
		innerAlts := make([]*ast.Alternative, len(u.Members))
		for j, innerMember := range u.Members {
			var body ast.Expr
			sameShape, err := l.Equality.Equal(outerMember, innerMember)
			if err != nil {
				return nil, err
			}
			if sameShape {
				body, err = l.dispatchEqual(outerMember, ast.Variable{Name: lhsVar, SourceInfo: at}, ast.Variable{Name: rhsVar, SourceInfo: at}, at)
				if err != nil {
					return nil, err
				}
			} else {
				body = ast.BooleanLiteral{Value: false, SourceInfo: at}
			}
			innerAlts[j] = &ast.Alternative{Name: rhsVar, Type: innerMember, Body: body, SourceInfo: at}
		}
		outerAlts[i] = &ast.Alternative{
			Name:       lhsVar,
			Type:       outerMember,
			Body:       ast.Case{Argument: rhs, Alternatives: innerAlts, SourceInfo: at},
			SourceInfo: at,
		}
	}
	return ast.Case{Argument: lhs, Alternatives: outerAlts, SourceInfo: at}, nil
}

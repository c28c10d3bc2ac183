package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/typedast"
	"github.com/sunholo/erc/internal/types"
)

// CoercionInserter makes every implicit widening explicit: at every
// argument position, case alternative, if branch, record field, let-body
// position, and function-body result, the expression's inferred type is
// compared against the position's expected type and the expression is
// wrapped in a TypeCoercion node when they differ. This pass only
// inserts the coercion node uniformly, regardless of shape; what a
// function- or list-typed coercion compiles to is the business of the
// later passes in funccoerce.go and listcoerce.go.
type CoercionInserter struct {
	Resolver *types.Resolver
	Equality *types.EqualityChecker
	Canon    *types.Canonicalizer
	Extract  *typedast.Extractor
	// ErrorTypeName is the configured error union member. A let-error
	// expression's overall type is the union of its body's type and the
	// error members of its value's type, so the body is widened here and
	// the later lowering can re-raise into the same type.
	ErrorTypeName string
}

func NewCoercionInserter(resolver *types.Resolver, equality *types.EqualityChecker, canon *types.Canonicalizer, extract *typedast.Extractor) *CoercionInserter {
	return &CoercionInserter{Resolver: resolver, Equality: equality, Canon: canon, Extract: extract}
}

// Run inserts coercions across every definition in m. base carries the
// module-level bindings (top-level definitions, foreign imports,
// configured runtime-library functions) each body is checked under.
func (c *CoercionInserter) Run(m *ast.Module, base *typedast.Env) (*ast.Module, error) {
	defs := make([]*ast.Definition, len(m.Definitions))
	for i, d := range m.Definitions {
		env := base
		for _, a := range d.Arguments {
			env = env.Extend(a.Name, a.Type)
		}
		declaredResult := resultTypeAfterArgs(d.Type, len(d.Arguments))
		body, bodyType, err := c.process(env, d.Body)
		if err != nil {
			return nil, err
		}
		if declaredResult != nil {
			body, err = c.coerceTo(body, bodyType, declaredResult)
			if err != nil {
				return nil, err
			}
		}
		nd := *d
		nd.Body = body
		defs[i] = &nd
	}
	return m.WithDefinitions(defs), nil
}

func resultTypeAfterArgs(t types.Type, n int) types.Type {
	for i := 0; i < n; i++ {
		fn, ok := t.(types.Function)
		if !ok {
			return nil
		}
		t = fn.Result
	}
	return t
}

// coerceTo wraps e in a TypeCoercion if actual and expected differ,
// otherwise returns e unchanged.
func (c *CoercionInserter) coerceTo(e ast.Expr, actual, expected types.Type) (ast.Expr, error) {
	if expected == nil {
		return e, nil
	}
	eq, err := c.Equality.Equal(actual, expected)
	if err != nil {
		return nil, err
	}
	if eq {
		return e, nil
	}
	return ast.TypeCoercion{Argument: e, From: actual, To: expected, SourceInfo: e.Info()}, nil
}

// process recursively rewrites e, inserting coercions at every position
// with an expected type, and returns e's own (possibly still un-coerced
// at this level) inferred type for the caller to compare against its own
// expected type.
func (c *CoercionInserter) process(env *typedast.Env, e ast.Expr) (ast.Expr, types.Type, error) {
	switch x := e.(type) {
	case ast.NumberLiteral:
		return x, types.Number{SourceInfo: x.SourceInfo}, nil
	case ast.BooleanLiteral:
		return x, types.Boolean{SourceInfo: x.SourceInfo}, nil
	case ast.NoneLiteral:
		return x, types.None{SourceInfo: x.SourceInfo}, nil
	case ast.StringLiteral:
		return x, types.String{SourceInfo: x.SourceInfo}, nil
	case ast.Variable:
		t, err := env.Lookup(x.Name, x.SourceInfo)
		return x, t, err

	case ast.Application:
		na, argType, err := c.process(env, x.Argument)
		if err != nil {
			return nil, nil, err
		}
		// Applications of the configured element-polymorphic list
		// functions are instantiated from their first argument's type;
		// no coercion is inserted on that argument.
		if v, ok := x.Function.(ast.Variable); ok {
			fn, ok, err := c.Extract.InstantiateListPrim(v.Name, argType)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				x.Argument = na
				return x, fn.Result, nil
			}
		}
		nf, fnType, err := c.process(env, x.Function)
		if err != nil {
			return nil, nil, err
		}
		resolvedFn, err := c.Resolver.Resolve(fnType)
		if err != nil {
			return nil, nil, err
		}
		fn, ok := resolvedFn.(types.Function)
		if !ok {
			return nil, nil, notMatchedExpr(fnType, "Function", x.SourceInfo)
		}
		// The empty list inhabits every list type; leave it uncoerced.
		if v, ok := na.(ast.Variable); ok && c.Extract.IsEmptyListName(v.Name) {
			x.Function, x.Argument = nf, na
			return x, fn.Result, nil
		}
		coercedArg, err := c.coerceTo(na, argType, fn.Argument)
		if err != nil {
			return nil, nil, err
		}
		x.Function, x.Argument = nf, coercedArg
		return x, fn.Result, nil

	case ast.Let:
		nv, valType, err := c.process(env, x.Value)
		if err != nil {
			return nil, nil, err
		}
		bound := valType
		if x.Type != nil {
			nv, err = c.coerceTo(nv, valType, x.Type)
			if err != nil {
				return nil, nil, err
			}
			bound = x.Type
		}
		nb, bodyType, err := c.process(env.Extend(x.Name, bound), x.Body)
		if err != nil {
			return nil, nil, err
		}
		x.Value, x.Body = nv, nb
		return x, bodyType, nil

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
			nb, bt, err := c.process(argEnv, d.Body)
			if err != nil {
				return nil, nil, err
			}
			declared := resultTypeAfterArgs(d.Type, len(d.Arguments))
			if declared != nil {
				nb, err = c.coerceTo(nb, bt, declared)
				if err != nil {
					return nil, nil, err
				}
			}
			nd := *d
			nd.Body = nb
			defs[i] = &nd
		}
		nbody, bodyType, err := c.process(inner, x.Body)
		if err != nil {
			return nil, nil, err
		}
		x.Definitions, x.Body = defs, nbody
		return x, bodyType, nil

	case ast.LetError:
		nv, valType, err := c.process(env, x.Value)
		if err != nil {
			return nil, nil, err
		}
		successType, errorMembers, err := c.splitErrorType(valType)
		if err != nil {
			return nil, nil, err
		}
		nb, bodyType, err := c.process(env.Extend(x.Name, successType), x.Body)
		if err != nil {
			return nil, nil, err
		}
		resultType := bodyType
		if len(errorMembers) > 0 {
			resultType, err = c.Canon.Canonicalize(types.Union{
				Members:    append([]types.Type{bodyType}, errorMembers...),
				SourceInfo: x.SourceInfo,
			})
			if err != nil {
				return nil, nil, err
			}
			nb, err = c.coerceTo(nb, bodyType, resultType)
			if err != nil {
				return nil, nil, err
			}
		}
		x.Value, x.Body = nv, nb
		return x, resultType, nil

	case ast.If:
		ncond, _, err := c.process(env, x.Condition)
		if err != nil {
			return nil, nil, err
		}
		nthen, thenType, err := c.process(env, x.Then)
		if err != nil {
			return nil, nil, err
		}
		nelse, elseType, err := c.process(env, x.Else)
		if err != nil {
			return nil, nil, err
		}
		// Both branches widen to the if's overall type: the canonical
		// union of the branch types (which collapses to the one branch
		// type when they agree).
		resultType, err := c.Canon.Canonicalize(types.Union{Members: []types.Type{thenType, elseType}, SourceInfo: x.SourceInfo})
		if err != nil {
			return nil, nil, err
		}
		nthen, err = c.coerceTo(nthen, thenType, resultType)
		if err != nil {
			return nil, nil, err
		}
		nelse, err = c.coerceTo(nelse, elseType, resultType)
		if err != nil {
			return nil, nil, err
		}
		x.Condition, x.Then, x.Else = ncond, nthen, nelse
		return x, resultType, nil

	case ast.Case:
		expectedArgType, err := c.caseArgumentType(x)
		if err != nil {
			return nil, nil, err
		}
		narg, argType, err := c.process(env, x.Argument)
		if err != nil {
			return nil, nil, err
		}
		narg, err = c.coerceTo(narg, argType, expectedArgType)
		if err != nil {
			return nil, nil, err
		}
		rewritten := make([]ast.Expr, len(x.Alternatives))
		bodyTypes := make([]types.Type, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			nb, bt, err := c.process(env.Extend(alt.Name, alt.Type), alt.Body)
			if err != nil {
				return nil, nil, err
			}
			rewritten[i], bodyTypes[i] = nb, bt
		}
		resultType, err := c.Canon.Canonicalize(types.Union{Members: bodyTypes, SourceInfo: x.SourceInfo})
		if err != nil {
			return nil, nil, err
		}
		alts := make([]*ast.Alternative, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			nb, err := c.coerceTo(rewritten[i], bodyTypes[i], resultType)
			if err != nil {
				return nil, nil, err
			}
			na := *alt
			na.Body = nb
			alts[i] = &na
		}
		x.Argument, x.Alternatives = narg, alts
		return x, resultType, nil

	case ast.ListCase:
		narg, argType, err := c.process(env, x.Argument)
		if err != nil {
			return nil, nil, err
		}
		resolvedArg, err := c.Resolver.Resolve(argType)
		if err != nil {
			return nil, nil, err
		}
		lst, ok := resolvedArg.(types.List)
		elem := types.Type(types.Any{})
		if ok {
			elem = lst.Element
		}
		nempty, emptyType, err := c.process(env, x.EmptyAlternative)
		if err != nil {
			return nil, nil, err
		}
		nonEmptyEnv := env.Extend(x.FirstName, elem).Extend(x.RestName, types.List{Element: elem})
		nnonEmpty, nonEmptyType, err := c.process(nonEmptyEnv, x.NonEmptyAlternative)
		if err != nil {
			return nil, nil, err
		}
		resultType, err := c.Canon.Canonicalize(types.Union{Members: []types.Type{emptyType, nonEmptyType}, SourceInfo: x.SourceInfo})
		if err != nil {
			return nil, nil, err
		}
		nempty, err = c.coerceTo(nempty, emptyType, resultType)
		if err != nil {
			return nil, nil, err
		}
		nnonEmpty, err = c.coerceTo(nnonEmpty, nonEmptyType, resultType)
		if err != nil {
			return nil, nil, err
		}
		x.Argument, x.EmptyAlternative, x.NonEmptyAlternative = narg, nempty, nnonEmpty
		return x, resultType, nil

	case ast.Operation:
		nlhs, _, err := c.process(env, x.LHS)
		if err != nil {
			return nil, nil, err
		}
		nrhs, _, err := c.process(env, x.RHS)
		if err != nil {
			return nil, nil, err
		}
		x.LHS, x.RHS = nlhs, nrhs
		switch x.Operator {
		case ast.OpAdd, ast.OpSubtract, ast.OpMultiply, ast.OpDivide:
			return x, types.Number{SourceInfo: x.SourceInfo}, nil
		default:
			return x, types.Boolean{SourceInfo: x.SourceInfo}, nil
		}

	case ast.RecordConstruction:
		rec, ok := x.Type.(types.Record)
		if !ok {
			return nil, nil, notMatchedExpr(x.Type, "Record", x.SourceInfo)
		}
		elements := ast.NewElementMap()
		for _, k := range rec.Fields.Keys() {
			fieldType, _ := rec.Fields.Get(k)
			v, _ := x.Elements.Get(k)
			nv, vt, err := c.process(env, v)
			if err != nil {
				return nil, nil, err
			}
			nv, err = c.coerceTo(nv, vt, fieldType)
			if err != nil {
				return nil, nil, err
			}
			elements.Set(k, nv)
		}
		x.Elements = elements
		return x, x.Type, nil

	case ast.RecordElementOperation:
		narg, argType, err := c.process(env, x.Argument)
		if err != nil {
			return nil, nil, err
		}
		resolved, err := c.Resolver.Resolve(argType)
		if err != nil {
			return nil, nil, err
		}
		rec, ok := resolved.(types.Record)
		if !ok {
			return nil, nil, notMatchedExpr(argType, "Record", x.SourceInfo)
		}
		field, ok := rec.Fields.Get(x.Key)
		if !ok {
			return nil, nil, notMatchedExpr(argType, "Record with field "+x.Key, x.SourceInfo)
		}
		x.Argument = narg
		return x, field, nil

	case ast.TypeCoercion:
		narg, _, err := c.process(env, x.Argument)
		if err != nil {
			return nil, nil, err
		}
		x.Argument = narg
		return x, x.To, nil

	default:
		return nil, nil, notMatchedExpr(nil, "known expression", e.Info())
	}
}

// splitErrorType partitions a let-error value's type into the success
// type its name is bound at and the members equal to the configured
// error type. A non-union type (or an unconfigured error name) is all
// success.
func (c *CoercionInserter) splitErrorType(valType types.Type) (types.Type, []types.Type, error) {
	if c.ErrorTypeName == "" {
		return valType, nil, nil
	}
	resolvedVal, err := c.Resolver.Resolve(valType)
	if err != nil {
		return nil, nil, err
	}
	u, ok := resolvedVal.(types.Union)
	if !ok {
		return valType, nil, nil
	}
	resolvedErr, err := c.Resolver.Resolve(types.Reference{Name: c.ErrorTypeName, SourceInfo: valType.Info()})
	if err != nil {
		return nil, nil, err
	}
	var success, errs []types.Type
	for _, m := range u.Members {
		rm, err := c.Resolver.Resolve(m)
		if err != nil {
			return nil, nil, err
		}
		eq, err := c.Equality.Equal(rm, resolvedErr)
		if err != nil {
			return nil, nil, err
		}
		if eq {
			errs = append(errs, m)
		} else {
			success = append(success, m)
		}
	}
	switch len(success) {
	case 0:
		return valType, nil, nil
	case 1:
		return success[0], errs, nil
	default:
		return types.Union{Members: success, SourceInfo: valType.Info()}, errs, nil
	}
}

// caseArgumentType reconstructs the Case node's implied argument type:
// the canonicalized union of every alternative's member type (or Any, if
// one alternative handles Any), so no separate stored field on ast.Case
// is needed.
func (c *CoercionInserter) caseArgumentType(x ast.Case) (types.Type, error) {
	var members []types.Type
	for _, alt := range x.Alternatives {
		if _, ok := alt.Type.(types.Any); ok {
			return types.Any{SourceInfo: x.SourceInfo}, nil
		}
		members = append(members, alt.Type)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return c.Canon.Canonicalize(types.Union{Members: members, SourceInfo: x.SourceInfo})
}

func notMatchedExpr(got types.Type, want string, at source.Information) error {
	gotStr := "<nil>"
	if got != nil {
		gotStr = got.String()
	}
	return errors.NewTypesNotMatched(gotStr, want, at, at)
}

package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/typedast"
	"github.com/sunholo/erc/internal/types"
)

// LetErrorLowerer is the pipeline's final type-dependent pass:
// `let error x = e1 in e2` becomes a Case on the
// canonicalized union of e1's success type and the configured error
// type. The error alternative re-raises by coercing the error value up
// to the enclosing result type; the success alternative binds x and
// evaluates e2.
//
// Written as a bespoke env-threading walker rather than mapChildren,
// the same way equalop.go and coerce.go are: this pass needs a live
// typedast.Env to call Extractor.TypeOf at each LetError it finds.
type LetErrorLowerer struct {
	Resolver *types.Resolver
	Equality *types.EqualityChecker
	Canon    *types.Canonicalizer
	Extract  *typedast.Extractor
	Cfg      *config.Configuration
	names    *NameGenerator
}

func NewLetErrorLowerer(resolver *types.Resolver, equality *types.EqualityChecker, canon *types.Canonicalizer, extract *typedast.Extractor, cfg *config.Configuration) *LetErrorLowerer {
	return &LetErrorLowerer{
		Resolver: resolver,
		Equality: equality,
		Canon:    canon,
		Extract:  extract,
		Cfg:      cfg,
		names:    NewNameGenerator("$let_error_err_"),
	}
}

func (l *LetErrorLowerer) Run(m *ast.Module, base *typedast.Env) (*ast.Module, error) {
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

func (l *LetErrorLowerer) lower(env *typedast.Env, e ast.Expr) (ast.Expr, error) {
	switch x := e.(type) {
	case ast.NumberLiteral, ast.BooleanLiteral, ast.NoneLiteral, ast.StringLiteral, ast.Variable:
		return x, nil

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
		x.Value = val
		valType, err := l.Extract.TypeOf(env, x.Value)
		if err != nil {
			return nil, err
		}
		body, err := l.lower(env.Extend(x.Name, valType), x.Body)
		if err != nil {
			return nil, err
		}
		x.Body = body
		return l.lowerLetError(env, x, valType)

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
		return x, nil

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

	case ast.RecordUpdate:
		arg, err := l.lower(env, x.Argument)
		if err != nil {
			return nil, err
		}
		elements := ast.NewElementMap()
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			nv, err := l.lower(env, v)
			if err != nil {
				return nil, err
			}
			elements.Set(k, nv)
		}
		x.Argument, x.Elements = arg, elements
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
		rest := x.Rest
		if rest != nil {
			r, err := l.lower(env, rest)
			if err != nil {
				return nil, err
			}
			rest = r
		}
		x.Elements, x.Rest = elems, rest
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

// lowerLetError rewrites a LetError whose Value and Body have already
// been recursively lowered into the Case described in the LetErrorLowerer
// doc comment above.
func (l *LetErrorLowerer) lowerLetError(env *typedast.Env, x ast.LetError, valType types.Type) (ast.Expr, error) {
	at := x.SourceInfo

	errorRef := types.Reference{Name: l.Cfg.ErrorType.ErrorTypeName, SourceInfo: at}
	resolvedErr, err := l.Resolver.Resolve(errorRef)
	if err != nil {
		return nil, err
	}

	var successType types.Type
	resolvedVal, err := l.Resolver.Resolve(valType)
	if err != nil {
		return nil, err
	}
	if u, ok := resolvedVal.(types.Union); ok {
		var successMembers []types.Type
		for _, m := range u.Members {
			resolvedM, err := l.Resolver.Resolve(m)
			if err != nil {
				return nil, err
			}
			eq, err := l.Equality.Equal(resolvedM, resolvedErr)
			if err != nil {
				return nil, err
			}
			if !eq {
				successMembers = append(successMembers, m)
			}
		}
		switch len(successMembers) {
		case 0:
			successType = types.Any{SourceInfo: at}
		case 1:
			successType = successMembers[0]
		default:
			successType, err = l.Canon.Canonicalize(types.Union{Members: successMembers, SourceInfo: at})
			if err != nil {
				return nil, err
			}
		}
	} else {
		successType = valType
	}

	caseArgType, err := l.Canon.Canonicalize(types.Union{Members: []types.Type{successType, errorRef}, SourceInfo: at})
	if err != nil {
		return nil, err
	}

	argExpr := x.Value
	eq, err := l.Equality.Equal(valType, caseArgType)
	if err != nil {
		return nil, err
	}
	if !eq {
		argExpr = ast.TypeCoercion{Argument: x.Value, From: valType, To: caseArgType, SourceInfo: at}
	}

	resultType, err := l.Extract.TypeOf(env.Extend(x.Name, successType), x.Body)
	if err != nil {
		return nil, err
	}

	errName := l.names.Generate()
	errBody := ast.Expr(ast.Variable{Name: errName, SourceInfo: at})
	eqResult, err := l.Equality.Equal(errorRef, resultType)
	if err != nil {
		return nil, err
	}
	if !eqResult {
		errBody = ast.TypeCoercion{Argument: errBody, From: errorRef, To: resultType, SourceInfo: at}
	}

	return ast.Case{
		Argument: argExpr,
		Alternatives: []*ast.Alternative{
			{Name: x.Name, Type: successType, Body: x.Body, SourceInfo: at},
			{Name: errName, Type: errorRef, Body: errBody, SourceInfo: at},
		},
		SourceInfo: at,
	}, nil
}

package typedast

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/types"
)

// Extractor recomputes the type of any expression in an already-inferred,
// fully-substituted module. Unlike infer.Collector it
// assumes every type it encounters is already concrete (no Unknown, no
// Variable) and raises TypesNotMatched rather than synthesizing fresh
// variables if that assumption is violated.
type Extractor struct {
	Resolver *types.Resolver
	Equality *types.EqualityChecker
	Canon    *types.Canonicalizer
	// ListPrims, when set, lets the extractor type applications of the
	// configured element-polymorphic list functions precisely at each
	// call site instead of requiring them in the environment.
	ListPrims *ListPrimitives
}

func NewExtractor(resolver *types.Resolver, equality *types.EqualityChecker) *Extractor {
	return &Extractor{
		Resolver: resolver,
		Equality: equality,
		Canon:    types.NewCanonicalizer(resolver, equality),
	}
}

// TypeOf computes e's type under env.
func (x *Extractor) TypeOf(env *Env, e ast.Expr) (types.Type, error) {
	switch n := e.(type) {
	case ast.NumberLiteral:
		return types.Number{SourceInfo: n.SourceInfo}, nil
	case ast.BooleanLiteral:
		return types.Boolean{SourceInfo: n.SourceInfo}, nil
	case ast.NoneLiteral:
		return types.None{SourceInfo: n.SourceInfo}, nil
	case ast.StringLiteral:
		return types.String{SourceInfo: n.SourceInfo}, nil
	case ast.Variable:
		return env.Lookup(n.Name, n.SourceInfo)
	case ast.ListLiteral:
		return types.List{Element: n.ElementType, SourceInfo: n.SourceInfo}, nil
	case ast.Application:
		if v, ok := n.Function.(ast.Variable); ok && x.ListPrims != nil {
			argType, err := x.TypeOf(env, n.Argument)
			if err == nil {
				fn, ok, err := x.InstantiateListPrim(v.Name, argType)
				if err != nil {
					return nil, err
				}
				if ok {
					return fn.Result, nil
				}
			}
		}
		fnType, err := x.TypeOf(env, n.Function)
		if err != nil {
			return nil, err
		}
		resolved, err := x.Resolver.Resolve(fnType)
		if err != nil {
			return nil, err
		}
		fn, ok := resolved.(types.Function)
		if !ok {
			return nil, errors.NewTypesNotMatched(fnType.String(), "Function", n.SourceInfo, n.SourceInfo)
		}
		return fn.Result, nil
	case ast.Let:
		valType, err := x.typeOfLetBinding(env, n)
		if err != nil {
			return nil, err
		}
		return x.TypeOf(env.Extend(n.Name, valType), n.Body)
	case ast.LetRecursive:
		inner := env
		for _, d := range n.Definitions {
			inner = inner.Extend(d.Name, d.Type)
		}
		return x.TypeOf(inner, n.Body)
	case ast.LetError:
		valType, err := x.TypeOf(env, n.Value)
		if err != nil {
			return nil, err
		}
		return x.TypeOf(env.Extend(n.Name, valType), n.Body)
	case ast.If:
		// The if's type is the canonicalized union of both branches,
		// which collapses to the one branch type when they agree.
		thenType, err := x.TypeOf(env, n.Then)
		if err != nil {
			return nil, err
		}
		elseType, err := x.TypeOf(env, n.Else)
		if err != nil {
			return nil, err
		}
		return x.Canon.Canonicalize(types.Union{
			Members:    []types.Type{thenType, elseType},
			SourceInfo: n.SourceInfo,
		})
	case ast.Case:
		if len(n.Alternatives) == 0 {
			return nil, errors.NewTypesNotMatched("empty case", "at least one alternative", n.SourceInfo, n.SourceInfo)
		}
		members := make([]types.Type, len(n.Alternatives))
		for i, alt := range n.Alternatives {
			altType, err := x.TypeOf(env.Extend(alt.Name, alt.Type), alt.Body)
			if err != nil {
				return nil, err
			}
			members[i] = altType
		}
		if len(members) == 1 {
			return members[0], nil
		}
		return x.Canon.Canonicalize(types.Union{Members: members, SourceInfo: n.SourceInfo})
	case ast.ListCase:
		emptyType, err := x.TypeOf(env, n.EmptyAlternative)
		if err != nil {
			return nil, err
		}
		argType, err := x.TypeOf(env, n.Argument)
		if err != nil {
			return nil, err
		}
		resolvedArg, err := x.Resolver.Resolve(argType)
		if err != nil {
			return nil, err
		}
		elem := types.Type(types.Any{SourceInfo: n.SourceInfo})
		if lst, ok := resolvedArg.(types.List); ok {
			elem = lst.Element
		}
		nonEmptyEnv := env.Extend(n.FirstName, elem).Extend(n.RestName, types.List{Element: elem, SourceInfo: n.SourceInfo})
		nonEmptyType, err := x.TypeOf(nonEmptyEnv, n.NonEmptyAlternative)
		if err != nil {
			return nil, err
		}
		return x.Canon.Canonicalize(types.Union{
			Members:    []types.Type{emptyType, nonEmptyType},
			SourceInfo: n.SourceInfo,
		})
	case ast.Operation:
		return x.typeOfOperation(n)
	case ast.RecordConstruction:
		return n.Type, nil
	case ast.RecordElementOperation:
		argType, err := x.TypeOf(env, n.Argument)
		if err != nil {
			return nil, err
		}
		resolved, err := x.Resolver.Resolve(argType)
		if err != nil {
			return nil, err
		}
		rec, ok := resolved.(types.Record)
		if !ok {
			return nil, errors.NewTypesNotMatched(argType.String(), "Record", n.SourceInfo, n.SourceInfo)
		}
		field, ok := rec.Fields.Get(n.Key)
		if !ok {
			return nil, errors.NewTypesNotMatched("field "+n.Key, rec.Name, n.SourceInfo, n.SourceInfo)
		}
		return field, nil
	case ast.RecordUpdate:
		return x.TypeOf(env, n.Argument)
	case ast.TypeCoercion:
		return n.To, nil
	default:
		return nil, errors.NewTypesNotMatched("unknown expression", "known expression", e.Info(), e.Info())
	}
}

func (x *Extractor) typeOfLetBinding(env *Env, n ast.Let) (types.Type, error) {
	if n.Type != nil {
		return n.Type, nil
	}
	return x.TypeOf(env, n.Value)
}

func (x *Extractor) typeOfOperation(n ast.Operation) (types.Type, error) {
	switch n.Operator {
	case ast.OpAdd, ast.OpSubtract, ast.OpMultiply, ast.OpDivide:
		return types.Number{SourceInfo: n.SourceInfo}, nil
	default:
		return types.Boolean{SourceInfo: n.SourceInfo}, nil
	}
}

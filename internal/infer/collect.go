package infer

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/types"
)

// Collector walks a module's definitions, producing the solved and
// checked constraint sets while computing each expression's (possibly
// still variable-containing) type.
type Collector struct {
	Resolver    *types.Resolver
	Equality    *types.EqualityChecker
	Gen         *VarGen
	Constraints *CollectedConstraints
	// ErrorTypeName is the configured union member let-error treats as
	// the error type; members equal to it are stripped from the bound
	// name's success type. Empty disables the stripping.
	ErrorTypeName string
}

func NewCollector(resolver *types.Resolver, equality *types.EqualityChecker, gen *VarGen) *Collector {
	return &Collector{
		Resolver:    resolver,
		Equality:    equality,
		Gen:         gen,
		Constraints: &CollectedConstraints{},
	}
}

// CollectModule runs constraint collection over every definition in m,
// returning the term environment the top-level names were bound in (for
// later expression-type lookups) and any immediate error.
func (c *Collector) CollectModule(m *ast.Module) (*TermEnv, error) {
	env := &TermEnv{}
	// Collaborator-provided names first: imported interface definitions
	// and foreign imports, shadowed by the module's own names below.
	for _, imp := range m.Imports {
		for _, d := range imp.Definitions {
			env = env.Extend(d.Name, d.Type)
		}
	}
	for _, fi := range m.ForeignImports {
		env = env.Extend(fi.Name, fi.Type)
	}
	// LetRecursive-style simultaneous binding at module scope: every
	// definition's declared (or fresh-variable) type is bound before any
	// body is walked, so forward and mutually-recursive references
	// resolve.
	names := make([]string, len(m.Definitions))
	typs := make([]types.Type, len(m.Definitions))
	for i, d := range m.Definitions {
		names[i] = d.Name
		typs[i] = d.Type
	}
	env = env.ExtendAll(names, typs)

	for _, d := range m.Definitions {
		bodyEnv := env
		for _, a := range d.Arguments {
			bodyEnv = bodyEnv.Extend(a.Name, a.Type)
		}
		bodyType, err := c.Infer(bodyEnv, d.Body)
		if err != nil {
			return nil, err
		}
		declaredResult := resultType(d.Type, len(d.Arguments))
		if declaredResult != nil {
			c.Constraints.addAscription(bodyType, declaredResult)
		}
	}
	return env, nil
}

// successType computes the type let-error binds its name to: the value's
// type with every member equal to the configured error type removed. A
// non-union value (or an unconfigured error type) binds as-is.
func (c *Collector) successType(valType types.Type) (types.Type, error) {
	if c.ErrorTypeName == "" {
		return valType, nil
	}
	resolvedVal, err := c.Resolver.Resolve(valType)
	if err != nil {
		return nil, err
	}
	u, ok := resolvedVal.(types.Union)
	if !ok {
		return valType, nil
	}
	resolvedErr, err := c.Resolver.Resolve(types.Reference{Name: c.ErrorTypeName, SourceInfo: valType.Info()})
	if err != nil {
		return nil, err
	}
	var success []types.Type
	for _, m := range u.Members {
		rm, err := c.Resolver.Resolve(m)
		if err != nil {
			return nil, err
		}
		eq, err := c.Equality.Equal(rm, resolvedErr)
		if err != nil {
			return nil, err
		}
		if !eq {
			success = append(success, m)
		}
	}
	switch len(success) {
	case 0:
		return valType, nil
	case 1:
		return success[0], nil
	default:
		return types.Union{Members: success, SourceInfo: valType.Info()}, nil
	}
}

// resultType peels n argument arrows off a curried Function type to find
// the declared result type, or returns t itself if n == 0.
func resultType(t types.Type, n int) types.Type {
	for i := 0; i < n; i++ {
		fn, ok := t.(types.Function)
		if !ok {
			return nil
		}
		t = fn.Result
	}
	return t
}

// Infer computes e's type under env, emitting constraints along the
// way.
func (c *Collector) Infer(env *TermEnv, e ast.Expr) (types.Type, error) {
	switch x := e.(type) {
	case ast.NumberLiteral:
		return types.Number{SourceInfo: x.SourceInfo}, nil
	case ast.BooleanLiteral:
		return types.Boolean{SourceInfo: x.SourceInfo}, nil
	case ast.NoneLiteral:
		return types.None{SourceInfo: x.SourceInfo}, nil
	case ast.StringLiteral:
		return types.String{SourceInfo: x.SourceInfo}, nil
	case ast.Variable:
		return env.Lookup(x.Name, x.SourceInfo)

	case ast.ListLiteral:
		// ElementType is always present by this point: the parser fills
		// in Unknown for unannotated literals and variable introduction
		// has already replaced that with a fresh Variable.
		elemType := x.ElementType
		if elemType == nil {
			elemType = c.Gen.Fresh(types.Unknown{SourceInfo: x.SourceInfo})
		}
		for _, el := range x.Elements {
			et, err := c.Infer(env, el)
			if err != nil {
				return nil, err
			}
			c.Constraints.addSolved(et, elemType)
		}
		if x.Rest != nil {
			rt, err := c.Infer(env, x.Rest)
			if err != nil {
				return nil, err
			}
			c.Constraints.addSolved(rt, types.List{Element: elemType, SourceInfo: x.SourceInfo})
		}
		return types.List{Element: elemType, SourceInfo: x.SourceInfo}, nil

	case ast.Application:
		fnType, err := c.Infer(env, x.Function)
		if err != nil {
			return nil, err
		}
		argType, err := c.Infer(env, x.Argument)
		if err != nil {
			return nil, err
		}
		fn, ok := fnType.(types.Function)
		if !ok {
			if v, ok := fnType.(types.Variable); ok {
				// Unknown callee shape: synthesize a fresh arrow and bind
				// the variable to it so later constraints involving the
				// same variable stay consistent.
				result := c.Gen.Fresh(types.Unknown{SourceInfo: x.SourceInfo})
				fn = types.Function{Argument: argType, Result: result, SourceInfo: x.SourceInfo}
				c.Constraints.addSolved(fn, v)
				c.Constraints.addSolved(v, fn)
				return result, nil
			}
			return nil, errors.NewTypesNotMatched(fnType.String(), "Function", fnType.Info(), x.SourceInfo)
		}
		c.Constraints.addSolved(argType, fn.Argument)
		return fn.Result, nil

	case ast.Let:
		valType, err := c.Infer(env, x.Value)
		if err != nil {
			return nil, err
		}
		bound := valType
		if x.Type != nil {
			c.Constraints.addAscription(valType, x.Type)
			bound = x.Type
		}
		return c.Infer(env.Extend(x.Name, bound), x.Body)

	case ast.LetRecursive:
		names := make([]string, len(x.Definitions))
		typs := make([]types.Type, len(x.Definitions))
		for i, d := range x.Definitions {
			names[i] = d.Name
			typs[i] = d.Type
		}
		inner := env.ExtendAll(names, typs)
		for _, d := range x.Definitions {
			bodyEnv := inner
			for _, a := range d.Arguments {
				bodyEnv = bodyEnv.Extend(a.Name, a.Type)
			}
			bodyType, err := c.Infer(bodyEnv, d.Body)
			if err != nil {
				return nil, err
			}
			declared := resultType(d.Type, len(d.Arguments))
			if declared != nil {
				c.Constraints.addAscription(bodyType, declared)
			}
		}
		return c.Infer(inner, x.Body)

	case ast.LetError:
		valType, err := c.Infer(env, x.Value)
		if err != nil {
			return nil, err
		}
		successType, err := c.successType(valType)
		if err != nil {
			return nil, err
		}
		return c.Infer(env.Extend(x.Name, successType), x.Body)

	case ast.If:
		condType, err := c.Infer(env, x.Condition)
		if err != nil {
			return nil, err
		}
		c.Constraints.addSolved(condType, types.Boolean{SourceInfo: x.SourceInfo})
		thenType, err := c.Infer(env, x.Then)
		if err != nil {
			return nil, err
		}
		elseType, err := c.Infer(env, x.Else)
		if err != nil {
			return nil, err
		}
		result := c.Gen.Fresh(types.Unknown{SourceInfo: x.SourceInfo})
		c.Constraints.addSolved(thenType, result)
		c.Constraints.addSolved(elseType, result)
		return result, nil

	case ast.Case:
		argType, err := c.Infer(env, x.Argument)
		if err != nil {
			return nil, err
		}
		result := c.Gen.Fresh(types.Unknown{SourceInfo: x.SourceInfo})
		for _, alt := range x.Alternatives {
			altType, err := c.Infer(env.Extend(alt.Name, alt.Type), alt.Body)
			if err != nil {
				return nil, err
			}
			c.Constraints.addSolved(altType, result)
		}
		// The union-shape and exhaustiveness rules need the resolved
		// argument type and the full alternative set, more than a
		// (sub, super) pair can express, so they are enforced after
		// substitution by validateCaseShapes rather than as a checked
		// constraint here.
		_ = argType
		return result, nil

	case ast.ListCase:
		argType, err := c.Infer(env, x.Argument)
		if err != nil {
			return nil, err
		}
		listVar, ok := argType.(types.List)
		elem := types.Type(types.Unknown{SourceInfo: x.SourceInfo})
		if ok {
			elem = listVar.Element
		}
		emptyType, err := c.Infer(env, x.EmptyAlternative)
		if err != nil {
			return nil, err
		}
		nonEmptyEnv := env.Extend(x.FirstName, elem).Extend(x.RestName, types.List{Element: elem, SourceInfo: x.SourceInfo})
		nonEmptyType, err := c.Infer(nonEmptyEnv, x.NonEmptyAlternative)
		if err != nil {
			return nil, err
		}
		result := c.Gen.Fresh(types.Unknown{SourceInfo: x.SourceInfo})
		c.Constraints.addSolved(emptyType, result)
		c.Constraints.addSolved(nonEmptyType, result)
		return result, nil

	case ast.Operation:
		return c.inferOperation(env, x)

	case ast.RecordConstruction:
		rec, ok := x.Type.(types.Record)
		if !ok {
			return nil, errors.NewTypesNotMatched(x.Type.String(), "Record", x.SourceInfo, x.SourceInfo)
		}
		fieldKeys := rec.Fields.Keys()
		if len(fieldKeys) != x.Elements.Len() {
			return nil, errors.NewTypesNotMatched("record construction elements", "record definition fields", x.SourceInfo, x.SourceInfo)
		}
		for _, k := range fieldKeys {
			expected, _ := rec.Fields.Get(k)
			valExpr, ok := x.Elements.Get(k)
			if !ok {
				return nil, errors.NewTypesNotMatched("record construction elements", "record definition fields", x.SourceInfo, x.SourceInfo)
			}
			valType, err := c.Infer(env, valExpr)
			if err != nil {
				return nil, err
			}
			c.Constraints.addSolved(valType, expected)
		}
		return x.Type, nil

	case ast.RecordElementOperation:
		argType, err := c.Infer(env, x.Argument)
		if err != nil {
			return nil, err
		}
		resolved, err := c.Resolver.Resolve(argType)
		if err != nil {
			return nil, err
		}
		rec, ok := resolved.(types.Record)
		if !ok {
			return nil, errors.NewTypesNotMatched(argType.String(), "Record", x.SourceInfo, x.SourceInfo)
		}
		field, ok := rec.Fields.Get(x.Key)
		if !ok {
			return nil, errors.NewTypesNotMatched("field "+x.Key, rec.Name, x.SourceInfo, x.SourceInfo)
		}
		return field, nil

	case ast.RecordUpdate:
		// RecordUpdate is eliminated by name-independent desugaring
		// before inference ever sees it; reaching
		// here means that pass was skipped.
		return nil, errors.NewTypesNotMatched("RecordUpdate", "desugared form", x.SourceInfo, x.SourceInfo)

	case ast.TypeCoercion:
		// TypeCoercion nodes are only introduced after inference
		//; if one is already present, its type is
		// simply its declared To.
		return x.To, nil

	default:
		return nil, errors.NewTypesNotMatched("unknown expression", "known expression", e.Info(), e.Info())
	}
}

func (c *Collector) inferOperation(env *TermEnv, x ast.Operation) (types.Type, error) {
	lhsType, err := c.Infer(env, x.LHS)
	if err != nil {
		return nil, err
	}
	rhsType, err := c.Infer(env, x.RHS)
	if err != nil {
		return nil, err
	}
	at := x.SourceInfo

	switch x.Operator {
	case ast.OpAdd, ast.OpSubtract, ast.OpMultiply, ast.OpDivide:
		c.Constraints.addSolved(lhsType, types.Number{SourceInfo: at})
		c.Constraints.addSolved(rhsType, types.Number{SourceInfo: at})
		return types.Number{SourceInfo: at}, nil
	case ast.OpLessThan, ast.OpLessThanOrEqual, ast.OpGreaterThan, ast.OpGreaterThanOrEqual:
		c.Constraints.addSolved(lhsType, types.Number{SourceInfo: at})
		c.Constraints.addSolved(rhsType, types.Number{SourceInfo: at})
		return types.Boolean{SourceInfo: at}, nil
	case ast.OpAnd, ast.OpOr:
		c.Constraints.addSolved(lhsType, types.Boolean{SourceInfo: at})
		c.Constraints.addSolved(rhsType, types.Boolean{SourceInfo: at})
		return types.Boolean{SourceInfo: at}, nil
	case ast.OpEqual, ast.OpNotEqual:
		// Comparability is checked after inference by
		// elaborate.EqualOperationLowerer, since lhsType/rhsType may
		// still be Variables here.
		c.Constraints.addSolved(lhsType, rhsType)
		c.Constraints.addSolved(rhsType, lhsType)
		return types.Boolean{SourceInfo: at}, nil
	case ast.OpPipe:
		// a |> f  ==  f(a); the pipe lowering pass rewrites this to an
		// Application before inference in this implementation's
		// pipeline order (see elaborate.LowerPipe), so Operation with
		// OpPipe should not reach here. Kept defensively.
		return nil, errors.NewTypesNotMatched("Pipe", "desugared form", at, at)
	}
	return nil, errors.NewTypesNotMatched("unknown operator", "known operator", at, at)
}

package infer

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/typedast"
	"github.com/sunholo/erc/internal/types"
)

// Run executes the whole inference stage over a module: variable
// introduction, constraint collection, solving, module-wide substitution
// with canonicalization, checked-constraint verification, and finally the
// case-shape rules (a Case argument must be a Union or Any and its
// alternatives must cover every member; a ListCase argument must be a
// List). It returns a fresh module in which no Unknown or Variable type
// remains.
func Run(m *ast.Module, resolver *types.Resolver, equality *types.EqualityChecker, canon *types.Canonicalizer, errorTypeName string) (*ast.Module, error) {
	gen := &VarGen{}

	m = IntroduceVariablesModule(m, gen)

	collector := NewCollector(resolver, equality, gen)
	collector.ErrorTypeName = errorTypeName
	if _, err := collector.CollectModule(m); err != nil {
		return nil, err
	}

	solver := NewSolver(resolver, equality, gen)
	subst, err := solver.Solve(collector.Constraints.Solved)
	if err != nil {
		return nil, err
	}

	m, err = SubstituteModule(canon, subst, m)
	if err != nil {
		return nil, err
	}

	checked := make([]Constraint, len(collector.Constraints.Checked))
	for i, c := range collector.Constraints.Checked {
		sub, err := SubstituteType(canon, subst, c.Sub)
		if err != nil {
			return nil, err
		}
		super, err := SubstituteType(canon, subst, c.Super)
		if err != nil {
			return nil, err
		}
		checked[i] = Constraint{Sub: sub, Super: super, SubAt: c.SubAt, SuperAt: c.SuperAt, Checked: true}
	}
	if err := CheckConstraints(equality, checked); err != nil {
		return nil, err
	}

	if err := validateCaseShapes(m, resolver, equality, canon); err != nil {
		return nil, err
	}

	return m, nil
}

// SubstituteModule applies a solved substitution to every type the module
// carries: definition signatures, argument types, and the types embedded
// in expressions (let ascriptions, case alternative patterns, list
// element annotations), canonicalizing each result so union simplification
// enabled by the substitution happens immediately.
func SubstituteModule(canon *types.Canonicalizer, subst map[int]types.Type, m *ast.Module) (*ast.Module, error) {
	apply := func(t types.Type) (types.Type, error) {
		if t == nil {
			return nil, nil
		}
		return SubstituteType(canon, subst, t)
	}

	defs := make([]*ast.Definition, len(m.Definitions))
	for i, d := range m.Definitions {
		nd, err := substituteDefinition(d, apply)
		if err != nil {
			return nil, err
		}
		defs[i] = nd
	}
	return m.WithDefinitions(defs), nil
}

type typeMapper func(types.Type) (types.Type, error)

func substituteDefinition(d *ast.Definition, apply typeMapper) (*ast.Definition, error) {
	nd := *d
	var err error
	if nd.Type, err = apply(d.Type); err != nil {
		return nil, err
	}
	args := make([]ast.Argument, len(d.Arguments))
	for i, a := range d.Arguments {
		at, err := apply(a.Type)
		if err != nil {
			return nil, err
		}
		args[i] = ast.Argument{Name: a.Name, Type: at}
	}
	nd.Arguments = args
	if nd.Body, err = mapExprTypes(d.Body, apply); err != nil {
		return nil, err
	}
	return &nd, nil
}

// mapExprTypes rebuilds e with every embedded type rewritten by apply,
// recursing into every child expression.
func mapExprTypes(e ast.Expr, apply typeMapper) (ast.Expr, error) {
	switch x := e.(type) {
	case ast.NumberLiteral, ast.BooleanLiteral, ast.NoneLiteral, ast.StringLiteral, ast.Variable:
		return e, nil

	case ast.ListLiteral:
		var err error
		if x.ElementType, err = apply(x.ElementType); err != nil {
			return nil, err
		}
		elems := make([]ast.Expr, len(x.Elements))
		for i, el := range x.Elements {
			if elems[i], err = mapExprTypes(el, apply); err != nil {
				return nil, err
			}
		}
		x.Elements = elems
		if x.Rest != nil {
			if x.Rest, err = mapExprTypes(x.Rest, apply); err != nil {
				return nil, err
			}
		}
		return x, nil

	case ast.Application:
		fn, err := mapExprTypes(x.Function, apply)
		if err != nil {
			return nil, err
		}
		arg, err := mapExprTypes(x.Argument, apply)
		if err != nil {
			return nil, err
		}
		x.Function, x.Argument = fn, arg
		return x, nil

	case ast.Let:
		var err error
		if x.Type, err = apply(x.Type); err != nil {
			return nil, err
		}
		if x.Value, err = mapExprTypes(x.Value, apply); err != nil {
			return nil, err
		}
		if x.Body, err = mapExprTypes(x.Body, apply); err != nil {
			return nil, err
		}
		return x, nil

	case ast.LetRecursive:
		defs := make([]*ast.Definition, len(x.Definitions))
		for i, d := range x.Definitions {
			nd, err := substituteDefinition(d, apply)
			if err != nil {
				return nil, err
			}
			defs[i] = nd
		}
		body, err := mapExprTypes(x.Body, apply)
		if err != nil {
			return nil, err
		}
		x.Definitions, x.Body = defs, body
		return x, nil

	case ast.LetError:
		var err error
		if x.Value, err = mapExprTypes(x.Value, apply); err != nil {
			return nil, err
		}
		if x.Body, err = mapExprTypes(x.Body, apply); err != nil {
			return nil, err
		}
		return x, nil

	case ast.If:
		var err error
		if x.Condition, err = mapExprTypes(x.Condition, apply); err != nil {
			return nil, err
		}
		if x.Then, err = mapExprTypes(x.Then, apply); err != nil {
			return nil, err
		}
		if x.Else, err = mapExprTypes(x.Else, apply); err != nil {
			return nil, err
		}
		return x, nil

	case ast.Case:
		arg, err := mapExprTypes(x.Argument, apply)
		if err != nil {
			return nil, err
		}
		alts := make([]*ast.Alternative, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			na := *alt
			if na.Type, err = apply(alt.Type); err != nil {
				return nil, err
			}
			if na.Body, err = mapExprTypes(alt.Body, apply); err != nil {
				return nil, err
			}
			alts[i] = &na
		}
		x.Argument, x.Alternatives = arg, alts
		return x, nil

	case ast.ListCase:
		var err error
		if x.Argument, err = mapExprTypes(x.Argument, apply); err != nil {
			return nil, err
		}
		if x.EmptyAlternative, err = mapExprTypes(x.EmptyAlternative, apply); err != nil {
			return nil, err
		}
		if x.NonEmptyAlternative, err = mapExprTypes(x.NonEmptyAlternative, apply); err != nil {
			return nil, err
		}
		return x, nil

	case ast.Operation:
		lhs, err := mapExprTypes(x.LHS, apply)
		if err != nil {
			return nil, err
		}
		rhs, err := mapExprTypes(x.RHS, apply)
		if err != nil {
			return nil, err
		}
		x.LHS, x.RHS = lhs, rhs
		return x, nil

	case ast.RecordConstruction:
		var err error
		if x.Type, err = apply(x.Type); err != nil {
			return nil, err
		}
		elements := ast.NewElementMap()
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			nv, err := mapExprTypes(v, apply)
			if err != nil {
				return nil, err
			}
			elements.Set(k, nv)
		}
		x.Elements = elements
		return x, nil

	case ast.RecordElementOperation:
		arg, err := mapExprTypes(x.Argument, apply)
		if err != nil {
			return nil, err
		}
		x.Argument = arg
		return x, nil

	case ast.RecordUpdate:
		var err error
		if x.Type, err = apply(x.Type); err != nil {
			return nil, err
		}
		if x.Argument, err = mapExprTypes(x.Argument, apply); err != nil {
			return nil, err
		}
		elements := ast.NewElementMap()
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			nv, err := mapExprTypes(v, apply)
			if err != nil {
				return nil, err
			}
			elements.Set(k, nv)
		}
		x.Elements = elements
		return x, nil

	case ast.TypeCoercion:
		var err error
		if x.From, err = apply(x.From); err != nil {
			return nil, err
		}
		if x.To, err = apply(x.To); err != nil {
			return nil, err
		}
		if x.Argument, err = mapExprTypes(x.Argument, apply); err != nil {
			return nil, err
		}
		return x, nil

	default:
		return e, nil
	}
}

// validateCaseShapes enforces the post-substitution shape rules on every
// Case and ListCase in the module: a Case argument type must resolve to a
// Union or Any, each member of a union argument must have an alternative
// whose pattern type equals it (an Any argument requires an Any
// alternative), and a ListCase argument must resolve to a List.
func validateCaseShapes(m *ast.Module, resolver *types.Resolver, equality *types.EqualityChecker, canon *types.Canonicalizer) error {
	extract := typedast.NewExtractor(resolver, equality)
	base := typedast.ModuleEnv(m)

	for _, d := range m.Definitions {
		env := base
		for _, a := range d.Arguments {
			env = env.Extend(a.Name, a.Type)
		}
		if err := validateCasesExpr(env, d.Body, resolver, equality, canon, extract); err != nil {
			return err
		}
	}
	return nil
}

func validateCasesExpr(env *typedast.Env, e ast.Expr, resolver *types.Resolver, equality *types.EqualityChecker, canon *types.Canonicalizer, extract *typedast.Extractor) error {
	recurse := func(env *typedast.Env, child ast.Expr) error {
		return validateCasesExpr(env, child, resolver, equality, canon, extract)
	}

	switch x := e.(type) {
	case ast.Case:
		argType, err := extract.TypeOf(env, x.Argument)
		if err != nil {
			return err
		}
		canonArg, err := canon.Canonicalize(argType)
		if err != nil {
			return err
		}
		resolved, err := resolver.Resolve(canonArg)
		if err != nil {
			return err
		}
		if err := checkCaseCoverage(resolved, x, equality); err != nil {
			return err
		}
		if err := recurse(env, x.Argument); err != nil {
			return err
		}
		for _, alt := range x.Alternatives {
			if err := recurse(env.Extend(alt.Name, alt.Type), alt.Body); err != nil {
				return err
			}
		}
		return nil

	case ast.ListCase:
		argType, err := extract.TypeOf(env, x.Argument)
		if err != nil {
			return err
		}
		resolved, err := resolver.Resolve(argType)
		if err != nil {
			return err
		}
		lst, ok := resolved.(types.List)
		if !ok {
			return errors.NewListCaseArgumentNotList(argType.String(), x.SourceInfo)
		}
		if err := recurse(env, x.Argument); err != nil {
			return err
		}
		if err := recurse(env, x.EmptyAlternative); err != nil {
			return err
		}
		nonEmptyEnv := env.Extend(x.FirstName, lst.Element).Extend(x.RestName, types.List{Element: lst.Element})
		return recurse(nonEmptyEnv, x.NonEmptyAlternative)

	case ast.Let:
		if err := recurse(env, x.Value); err != nil {
			return err
		}
		valType := x.Type
		if valType == nil {
			var err error
			valType, err = extract.TypeOf(env, x.Value)
			if err != nil {
				return err
			}
		}
		return recurse(env.Extend(x.Name, valType), x.Body)

	case ast.LetRecursive:
		inner := env
		for _, d := range x.Definitions {
			inner = inner.Extend(d.Name, d.Type)
		}
		for _, d := range x.Definitions {
			argEnv := inner
			for _, a := range d.Arguments {
				argEnv = argEnv.Extend(a.Name, a.Type)
			}
			if err := recurse(argEnv, d.Body); err != nil {
				return err
			}
		}
		return recurse(inner, x.Body)

	case ast.LetError:
		if err := recurse(env, x.Value); err != nil {
			return err
		}
		valType, err := extract.TypeOf(env, x.Value)
		if err != nil {
			return err
		}
		return recurse(env.Extend(x.Name, valType), x.Body)

	case ast.If:
		if err := recurse(env, x.Condition); err != nil {
			return err
		}
		if err := recurse(env, x.Then); err != nil {
			return err
		}
		return recurse(env, x.Else)

	case ast.Application:
		if err := recurse(env, x.Function); err != nil {
			return err
		}
		return recurse(env, x.Argument)

	case ast.Operation:
		if err := recurse(env, x.LHS); err != nil {
			return err
		}
		return recurse(env, x.RHS)

	case ast.ListLiteral:
		for _, el := range x.Elements {
			if err := recurse(env, el); err != nil {
				return err
			}
		}
		if x.Rest != nil {
			return recurse(env, x.Rest)
		}
		return nil

	case ast.RecordConstruction:
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			if err := recurse(env, v); err != nil {
				return err
			}
		}
		return nil

	case ast.RecordElementOperation:
		return recurse(env, x.Argument)

	case ast.TypeCoercion:
		return recurse(env, x.Argument)

	default:
		return nil
	}
}

// checkCaseCoverage implements exhaustiveness by exact member-set match:
// every member of a union argument needs an alternative whose pattern
// type equals it, and an Any argument needs an Any alternative.
func checkCaseCoverage(argType types.Type, x ast.Case, equality *types.EqualityChecker) error {
	if _, ok := argType.(types.Any); ok {
		for _, alt := range x.Alternatives {
			if _, isAny := alt.Type.(types.Any); isAny {
				return nil
			}
		}
		return errors.NewCaseNotExhaustive([]string{"Any"}, x.SourceInfo)
	}

	u, ok := argType.(types.Union)
	if !ok {
		return errors.NewCaseArgumentNotUnion(argType.String(), x.SourceInfo)
	}

	var missing []string
	for _, member := range u.Members {
		covered := false
		for _, alt := range x.Alternatives {
			if _, isAny := alt.Type.(types.Any); isAny {
				covered = true
				break
			}
			eq, err := equality.Equal(member, alt.Type)
			if err != nil {
				return err
			}
			if eq {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, member.String())
		}
	}
	if len(missing) > 0 {
		return errors.NewCaseNotExhaustive(missing, x.SourceInfo)
	}
	return nil
}

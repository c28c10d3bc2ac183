package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// FunctionCoercionTransformer rewrites every TypeCoercion whose To
// resolves to a Function into a binding of the original value plus an
// eta-expanded wrapper function that coerces each argument
// contravariantly and the result covariantly. One wrapper per function
// arrow means an n-ary function coercion becomes n nested wrappers,
// preserving currying. Function names and argument names come from two
// generators with disjoint prefixes.
type FunctionCoercionTransformer struct {
	resolver  *types.Resolver
	equality  *types.EqualityChecker
	funcNames *NameGenerator
	argNames  *NameGenerator
}

func NewFunctionCoercionTransformer(resolver *types.Resolver, equality *types.EqualityChecker) *FunctionCoercionTransformer {
	return &FunctionCoercionTransformer{
		resolver:  resolver,
		equality:  equality,
		funcNames: NewNameGenerator("$tc_func_"),
		argNames:  NewNameGenerator("$tc_arg_"),
	}
}

func (t *FunctionCoercionTransformer) Run(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, t.rewrite)
}

func (t *FunctionCoercionTransformer) rewrite(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, t.rewrite)
	if err != nil {
		return nil, err
	}
	coercion, ok := e.(ast.TypeCoercion)
	if !ok {
		return e, nil
	}
	resolvedTo, err := t.resolver.Resolve(coercion.To)
	if err != nil {
		return nil, err
	}
	if _, isFunc := resolvedTo.(types.Function); !isFunc {
		return coercion, nil
	}

	at := coercion.SourceInfo
	funcName := t.funcNames.Generate()

	body, err := t.transformFunction(ast.Variable{Name: funcName, SourceInfo: at}, coercion.From, coercion.To, at)
	if err != nil {
		return nil, err
	}

	return ast.LetRecursive{
		Definitions: []*ast.Definition{{
			Name:       funcName,
			Type:       coercion.From,
			Body:       coercion.Argument,
			SourceInfo: at,
		}},
		Body:       body,
		SourceInfo: at,
	}, nil
}

// transformFunction, given an argument expression already bound to
// fromType, produces an expression of toType, recursing arrow by arrow
// when both sides are functions.
func (t *FunctionCoercionTransformer) transformFunction(argument ast.Expr, fromType, toType types.Type, at source.Information) (ast.Expr, error) {
	eq, err := t.equality.Equal(fromType, toType)
	if err != nil {
		return nil, err
	}
	if eq {
		return argument, nil
	}

	resolvedFrom, err := t.resolver.Resolve(fromType)
	if err != nil {
		return nil, err
	}
	resolvedTo, err := t.resolver.Resolve(toType)
	if err != nil {
		return nil, err
	}

	fromFunc, fromIsFunc := resolvedFrom.(types.Function)
	toFunc, toIsFunc := resolvedTo.(types.Function)

	if !fromIsFunc || !toIsFunc {
		return t.coerceLeaf(argument, fromType, toType, at)
	}

	fromName := t.funcNames.Generate()
	toName := t.funcNames.Generate()
	argName := t.argNames.Generate()

	// Contravariant: a caller of the wrapper (typed toFunc) supplies an
	// argument of toFunc.Argument; coerce it down to fromFunc.Argument
	// before calling the wrapped value.
	coercedCallArg, err := t.coerceLeaf(ast.Variable{Name: argName, SourceInfo: at}, toFunc.Argument, fromFunc.Argument, at)
	if err != nil {
		return nil, err
	}

	callResult := ast.Application{
		Function:   argument,
		Argument:   coercedCallArg,
		SourceInfo: at,
	}

	// Covariant: recurse on the result arrow.
	resultExpr, err := t.transformFunction(ast.Variable{Name: fromName, SourceInfo: at}, fromFunc.Result, toFunc.Result, at)
	if err != nil {
		return nil, err
	}

	wrapperType := types.Function{Argument: toFunc.Argument, Result: toFunc.Result, SourceInfo: at}

	return ast.LetRecursive{
		Definitions: []*ast.Definition{{
			Name:      toName,
			Arguments: []ast.Argument{{Name: argName, Type: toFunc.Argument}},
			Type:      wrapperType,
			Body: ast.LetRecursive{
				Definitions: []*ast.Definition{{
					Name:       fromName,
					Type:       fromFunc.Result,
					Body:       callResult,
					SourceInfo: at,
				}},
				Body:       resultExpr,
				SourceInfo: at,
			},
			SourceInfo: at,
		}},
		Body:       ast.Variable{Name: toName, SourceInfo: at},
		SourceInfo: at,
	}, nil
}

func (t *FunctionCoercionTransformer) coerceLeaf(argument ast.Expr, fromType, toType types.Type, at source.Information) (ast.Expr, error) {
	eq, err := t.equality.Equal(fromType, toType)
	if err != nil {
		return nil, err
	}
	if eq {
		return argument, nil
	}
	return ast.TypeCoercion{Argument: argument, From: fromType, To: toType, SourceInfo: at}, nil
}

// NonVariableApplicationTransformer normalizes call sites: once
// eta-expansion has potentially introduced fresh function values, the
// function position of an Application must itself be a Variable, so a
// non-variable callee expression is let-bound first and the code
// generator's call-site representation stays uniform.
type NonVariableApplicationTransformer struct {
	names *NameGenerator
}

func NewNonVariableApplicationTransformer() *NonVariableApplicationTransformer {
	return &NonVariableApplicationTransformer{names: NewNameGenerator("pa_callee_")}
}

func (t *NonVariableApplicationTransformer) Run(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, t.rewrite)
}

func (t *NonVariableApplicationTransformer) rewrite(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, t.rewrite)
	if err != nil {
		return nil, err
	}
	app, ok := e.(ast.Application)
	if !ok {
		return e, nil
	}
	switch app.Function.(type) {
	case ast.Variable:
		return app, nil
	case ast.Application:
		// A curried spine: the inner application's own callee has
		// already been normalized by the bottom-up walk.
		return app, nil
	}
	name := t.names.Generate()
	at := app.SourceInfo
	return ast.Let{
		Name:  name,
		Value: app.Function,
		Body: ast.Application{
			Function:   ast.Variable{Name: name, SourceInfo: at},
			Argument:   app.Argument,
			SourceInfo: at,
		},
		SourceInfo: at,
	}, nil
}

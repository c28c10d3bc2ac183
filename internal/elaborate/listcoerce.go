package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/types"
)

// ListCoercionTransformer rewrites a TypeCoercion from `List A` to
// `List B` into a call to the configured `map`-like function, lifting the per-element coercion over the whole
// list instead of leaving an opaque List-to-List TypeCoercion node for
// the code generator to special-case.
//
// Run after FunctionCoercionTransformer, since a list of functions
// coerced element-wise needs eta-expansion to have already turned any
// Function-shaped element coercion into a concrete wrapper value before
// this pass builds the element-coercion function passed to `map`.
type ListCoercionTransformer struct {
	resolver *types.Resolver
	cfg      *config.Configuration
	names    *NameGenerator
}

func NewListCoercionTransformer(resolver *types.Resolver, cfg *config.Configuration) *ListCoercionTransformer {
	return &ListCoercionTransformer{resolver: resolver, cfg: cfg, names: NewNameGenerator("$tc_list_elem_")}
}

func (t *ListCoercionTransformer) Run(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, t.rewrite)
}

func (t *ListCoercionTransformer) rewrite(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, t.rewrite)
	if err != nil {
		return nil, err
	}
	coercion, ok := e.(ast.TypeCoercion)
	if !ok {
		return e, nil
	}
	resolvedFrom, err := t.resolver.Resolve(coercion.From)
	if err != nil {
		return nil, err
	}
	resolvedTo, err := t.resolver.Resolve(coercion.To)
	if err != nil {
		return nil, err
	}
	fromList, fromIsList := resolvedFrom.(types.List)
	toList, toIsList := resolvedTo.(types.List)
	if !fromIsList || !toIsList {
		return coercion, nil
	}

	at := coercion.SourceInfo
	elemName := t.names.Generate()
	funcName := t.names.Generate()

	elemFuncType := types.Function{Argument: fromList.Element, Result: toList.Element, SourceInfo: at}

	return ast.LetRecursive{
		Definitions: []*ast.Definition{{
			Name:      funcName,
			Arguments: []ast.Argument{{Name: elemName, Type: fromList.Element}},
			Type:      elemFuncType,
			Body: ast.TypeCoercion{
				Argument:   ast.Variable{Name: elemName, SourceInfo: at},
				From:       fromList.Element,
				To:         toList.Element,
				SourceInfo: at,
			},
			SourceInfo: at,
		}},
		Body:       applyCall2(t.cfg.ListType.Map, ast.Variable{Name: funcName, SourceInfo: at}, coercion.Argument, at),
		SourceInfo: at,
	}, nil
}

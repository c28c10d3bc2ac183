package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/source"
)

// ListLiteralLowerer eliminates list literals: `[a, b, ...xs]` becomes
// iterated calls to the configured `prepend` function terminated by the
// configured `empty` value, with a trailing `...xs` spread concatenated
// on via the configured `concatenate` function.
type ListLiteralLowerer struct {
	cfg *config.Configuration
}

func NewListLiteralLowerer(cfg *config.Configuration) *ListLiteralLowerer {
	return &ListLiteralLowerer{cfg: cfg}
}

func (l *ListLiteralLowerer) Run(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, l.lower)
}

func (l *ListLiteralLowerer) lower(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, l.lower)
	if err != nil {
		return nil, err
	}
	lit, ok := e.(ast.ListLiteral)
	if !ok {
		return e, nil
	}

	at := lit.SourceInfo
	acc := ast.Expr(ast.Variable{Name: l.cfg.ListType.Empty, SourceInfo: at})
	for i := len(lit.Elements) - 1; i >= 0; i-- {
		acc = applyCall2(l.cfg.ListType.Prepend, lit.Elements[i], acc, at)
	}
	if lit.Rest != nil {
		acc = applyCall2(l.cfg.ListType.Concatenate, acc, lit.Rest, at)
	}
	return acc, nil
}

// applyCall2 builds the curried two-argument call `fn(a, b)` as nested
// Applications.
func applyCall2(fn string, a, b ast.Expr, at source.Information) ast.Expr {
	return ast.Application{
		Function: ast.Application{
			Function:   ast.Variable{Name: fn, SourceInfo: at},
			Argument:   a,
			SourceInfo: at,
		},
		Argument:   b,
		SourceInfo: at,
	}
}

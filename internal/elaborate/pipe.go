package elaborate

import "github.com/sunholo/erc/internal/ast"

// LowerPipe eliminates the pipe operator: `a |> f` becomes the
// Application `f(a)`. Runs name-independently before inference, so
// infer.Collector never has to handle OpPipe.
func LowerPipe(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, lowerPipeExpr)
}

func lowerPipeExpr(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, lowerPipeExpr)
	if err != nil {
		return nil, err
	}
	op, ok := e.(ast.Operation)
	if !ok || op.Operator != ast.OpPipe {
		return e, nil
	}
	return ast.Application{
		Function:   op.RHS,
		Argument:   op.LHS,
		SourceInfo: op.SourceInfo,
	}, nil
}

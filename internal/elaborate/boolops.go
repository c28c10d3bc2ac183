package elaborate

import "github.com/sunholo/erc/internal/ast"

// LowerBooleanOperations eliminates the lazy boolean connectives:
// `a and b` becomes `if a then b else false`; `a or b` becomes
// `if a then true else b`. Runs before equality lowering so no later pass
// ever sees OpAnd or OpOr.
func LowerBooleanOperations(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, lowerBooleanOpExpr)
}

func lowerBooleanOpExpr(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, lowerBooleanOpExpr)
	if err != nil {
		return nil, err
	}
	op, ok := e.(ast.Operation)
	if !ok {
		return e, nil
	}
	at := op.SourceInfo
	switch op.Operator {
	case ast.OpAnd:
		return ast.If{
			Condition:  op.LHS,
			Then:       op.RHS,
			Else:       ast.BooleanLiteral{Value: false, SourceInfo: at},
			SourceInfo: at,
		}, nil
	case ast.OpOr:
		return ast.If{
			Condition:  op.LHS,
			Then:       ast.BooleanLiteral{Value: true, SourceInfo: at},
			Else:       op.RHS,
			SourceInfo: at,
		}, nil
	default:
		return e, nil
	}
}

package elaborate

import "github.com/sunholo/erc/internal/ast"

// LowerNotEqual rewrites `a /= b` into `if a == b then false else true`,
// run after boolean-operation lowering and before equal-operation
// lowering so the `==` it introduces is itself lowered by the next pass.
func LowerNotEqual(m *ast.Module) (*ast.Module, error) {
	return mapModuleBodies(m, lowerNotEqualExpr)
}

func lowerNotEqualExpr(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, lowerNotEqualExpr)
	if err != nil {
		return nil, err
	}
	op, ok := e.(ast.Operation)
	if !ok || op.Operator != ast.OpNotEqual {
		return e, nil
	}
	at := op.SourceInfo
	return ast.If{
		Condition:  ast.Operation{Operator: ast.OpEqual, LHS: op.LHS, RHS: op.RHS, SourceInfo: at},
		Then:       ast.BooleanLiteral{Value: false, SourceInfo: at},
		Else:       ast.BooleanLiteral{Value: true, SourceInfo: at},
		SourceInfo: at,
	}, nil
}

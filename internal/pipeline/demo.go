package pipeline

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// DemoModule builds a small self-contained module exercising most of the
// pipeline: a record type with synthesized accessors and equality, a
// union-typed value widened from a literal, and a function whose record
// update is desugared. The CLI uses it to demonstrate the
// pipeline end to end until a host front-end supplies real modules.
func DemoModule() *ast.Module {
	at := func(line int) source.Information {
		return source.Information{Path: "demo.erc", Line: line, Column: 1}
	}

	point := types.Record{
		Name: "Demo.Point",
		Fields: types.NewFieldMap(
			types.FieldPair{Key: "x", Value: types.Number{SourceInfo: at(1)}},
			types.FieldPair{Key: "y", Value: types.Number{SourceInfo: at(1)}},
		),
		SourceInfo: at(1),
	}

	numberOrNone := types.Union{
		Members:    []types.Type{types.Number{SourceInfo: at(3)}, types.None{SourceInfo: at(3)}},
		SourceInfo: at(3),
	}

	return &ast.Module{
		Path: "Demo",
		Exports: map[string]bool{
			"origin":   true,
			"shifted":  true,
			"maybeOne": true,
		},
		TypeDefinitions: []ast.TypeDefinition{
			{Name: "Demo.Point", Type: point, SourceInfo: at(1)},
		},
		Definitions: []*ast.Definition{
			{
				Name: "origin",
				Type: point,
				Body: ast.RecordConstruction{
					Type: point,
					Elements: elements(func(m *ast.ElementMap) {
						m.Set("x", ast.NumberLiteral{Value: 0, SourceInfo: at(2)})
						m.Set("y", ast.NumberLiteral{Value: 0, SourceInfo: at(2)})
					}),
					SourceInfo: at(2),
				},
				SourceInfo: at(2),
			},
			{
				Name:       "maybeOne",
				Type:       numberOrNone,
				Body:       ast.NumberLiteral{Value: 1, SourceInfo: at(3)},
				SourceInfo: at(3),
			},
			{
				Name: "shifted",
				Arguments: []ast.Argument{
					{Name: "p", Type: point},
				},
				Type: types.Function{Argument: point, Result: point, SourceInfo: at(4)},
				Body: ast.RecordUpdate{
					Type:     point,
					Argument: ast.Variable{Name: "p", SourceInfo: at(4)},
					Elements: elements(func(m *ast.ElementMap) {
						m.Set("x", ast.Operation{
							Operator: ast.OpAdd,
							LHS: ast.RecordElementOperation{
								Argument:   ast.Variable{Name: "p", SourceInfo: at(4)},
								Key:        "x",
								SourceInfo: at(4),
							},
							RHS:        ast.NumberLiteral{Value: 1, SourceInfo: at(4)},
							SourceInfo: at(4),
						})
					}),
					SourceInfo: at(4),
				},
				SourceInfo: at(4),
			},
		},
	}
}

func elements(fill func(*ast.ElementMap)) *ast.ElementMap {
	m := ast.NewElementMap()
	fill(m)
	return m
}

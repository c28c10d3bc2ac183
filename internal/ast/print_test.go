package ast

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/sunholo/erc/internal/types"
)

func TestPrint(t *testing.T) {
	union := types.Union{Members: []types.Type{types.Number{}, types.None{}}}
	point := types.Record{Name: "Point", Fields: types.NewFieldMap(
		types.FieldPair{Key: "x", Value: types.Number{}},
	)}

	elements := NewElementMap()
	elements.Set("x", NumberLiteral{Value: 3})

	exprs := map[string]Expr{
		"literals": ListLiteral{
			Elements: []Expr{
				NumberLiteral{Value: 1.5},
				BooleanLiteral{Value: true},
				StringLiteral{Value: "hi"},
				NoneLiteral{},
			},
			ElementType: types.Any{},
		},
		"application": Application{
			Function: Application{Function: Variable{Name: "add"}, Argument: NumberLiteral{Value: 1}},
			Argument: NumberLiteral{Value: 2},
		},
		"let": Let{Name: "n", Value: NumberLiteral{Value: 1}, Body: Variable{Name: "n"}},
		"case": Case{
			Argument: Variable{Name: "v"},
			Alternatives: []*Alternative{
				{Name: "n", Type: types.Number{}, Body: Variable{Name: "n"}},
				{Name: "u", Type: types.None{}, Body: NumberLiteral{Value: 0}},
			},
		},
		"list_case": ListCase{
			Argument:            Variable{Name: "xs"},
			EmptyAlternative:    NumberLiteral{Value: 0},
			FirstName:           "first",
			RestName:            "rest",
			NonEmptyAlternative: Variable{Name: "first"},
		},
		"record_construction": RecordConstruction{Type: point, Elements: elements},
		"record_element":      RecordElementOperation{Argument: Variable{Name: "p"}, Key: "x"},
		"coercion": TypeCoercion{
			Argument: NumberLiteral{Value: 42},
			From:     types.Number{},
			To:       union,
		},
		"operation": Operation{
			Operator: OpEqual,
			LHS:      Variable{Name: "a"},
			RHS:      Variable{Name: "b"},
		},
	}

	for name, expr := range exprs {
		t.Run(name, func(t *testing.T) {
			snaps.MatchSnapshot(t, Print(expr))
		})
	}
}

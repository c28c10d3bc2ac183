package elaborate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/types"
)

func testCheckers(defs ...types.Definition) (*types.Resolver, *types.EqualityChecker, *types.Canonicalizer, *types.ComparabilityChecker) {
	resolver := types.NewResolver(types.NewEnvironment(defs...))
	equality := types.NewEqualityChecker(resolver)
	canon := types.NewCanonicalizer(resolver, equality)
	comparable := types.NewComparabilityChecker(resolver)
	return resolver, equality, canon, comparable
}

func singleDefModule(d *ast.Definition) *ast.Module {
	return &ast.Module{Path: "Test", Definitions: []*ast.Definition{d}}
}

func bodyOf(t *testing.T, m *ast.Module, name string) ast.Expr {
	t.Helper()
	for _, d := range m.Definitions {
		if d.Name == name {
			return d.Body
		}
	}
	t.Fatalf("no definition %q", name)
	return nil
}

func assertPrinted(t *testing.T, got ast.Expr, want string) {
	t.Helper()
	if diff := cmp.Diff(want, ast.Print(got)); diff != "" {
		t.Errorf("lowered body mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerPipe(t *testing.T) {
	m := singleDefModule(&ast.Definition{
		Name: "x",
		Body: ast.Operation{
			Operator: ast.OpPipe,
			LHS:      ast.NumberLiteral{Value: 1},
			RHS:      ast.Variable{Name: "f"},
		},
	})
	out, err := LowerPipe(m)
	if err != nil {
		t.Fatalf("LowerPipe: %v", err)
	}
	assertPrinted(t, bodyOf(t, out, "x"), "(f 1)")
}

func TestLowerBooleanOperations(t *testing.T) {
	tests := []struct {
		name string
		op   ast.OperatorKind
		want string
	}{
		{"and", ast.OpAnd, "(if a then b else false)"},
		{"or", ast.OpOr, "(if a then true else b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := singleDefModule(&ast.Definition{
				Name: "x",
				Body: ast.Operation{
					Operator: tt.op,
					LHS:      ast.Variable{Name: "a"},
					RHS:      ast.Variable{Name: "b"},
				},
			})
			out, err := LowerBooleanOperations(m)
			if err != nil {
				t.Fatalf("LowerBooleanOperations: %v", err)
			}
			assertPrinted(t, bodyOf(t, out, "x"), tt.want)
		})
	}
}

func TestLowerNotEqual(t *testing.T) {
	m := singleDefModule(&ast.Definition{
		Name: "x",
		Body: ast.Operation{
			Operator: ast.OpNotEqual,
			LHS:      ast.Variable{Name: "y"},
			RHS:      ast.Variable{Name: "z"},
		},
	})
	out, err := LowerNotEqual(m)
	if err != nil {
		t.Fatalf("LowerNotEqual: %v", err)
	}
	assertPrinted(t, bodyOf(t, out, "x"), "(if (== y z) then false else true)")
}

func TestRecordUpdateDesugar(t *testing.T) {
	point := types.Record{Name: "Point", Fields: types.NewFieldMap(
		types.FieldPair{Key: "x", Value: types.Number{}},
		types.FieldPair{Key: "y", Value: types.Number{}},
	)}
	resolver, _, _, _ := testCheckers(types.Definition{Name: "Point", Type: point})

	elements := ast.NewElementMap()
	elements.Set("y", ast.NumberLiteral{Value: 5})

	m := singleDefModule(&ast.Definition{
		Name: "moved",
		Body: ast.RecordUpdate{
			Type:     point,
			Argument: ast.Variable{Name: "p"},
			Elements: elements,
		},
	})

	out, err := NewRecordUpdateDesugarer(resolver).Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	body := bodyOf(t, out, "moved")
	let, ok := body.(ast.Let)
	if !ok {
		t.Fatalf("body is %T, want Let", body)
	}
	construction, ok := let.Body.(ast.RecordConstruction)
	if !ok {
		t.Fatalf("let body is %T, want RecordConstruction", let.Body)
	}
	// Unnamed fields read off the bound original; named fields take the
	// update's value.
	xField, _ := construction.Elements.Get("x")
	if _, ok := xField.(ast.RecordElementOperation); !ok {
		t.Errorf("x field is %T, want RecordElementOperation", xField)
	}
	yField, _ := construction.Elements.Get("y")
	if lit, ok := yField.(ast.NumberLiteral); !ok || lit.Value != 5 {
		t.Errorf("y field = %s, want the updated literal", ast.Print(yField))
	}
}

func TestListLiteralLowering(t *testing.T) {
	cfg := config.Default()

	t.Run("elements prepend onto empty", func(t *testing.T) {
		m := singleDefModule(&ast.Definition{
			Name: "xs",
			Body: ast.ListLiteral{
				Elements: []ast.Expr{
					ast.NumberLiteral{Value: 1},
					ast.NumberLiteral{Value: 2},
				},
				ElementType: types.Number{},
			},
		})
		out, err := NewListLiteralLowerer(cfg).Run(m)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := "((erc_runtime.list.prepend 1) ((erc_runtime.list.prepend 2) erc_runtime.list.empty))"
		assertPrinted(t, bodyOf(t, out, "xs"), want)
	})

	t.Run("trailing spread concatenates", func(t *testing.T) {
		m := singleDefModule(&ast.Definition{
			Name: "xs",
			Body: ast.ListLiteral{
				Elements:    []ast.Expr{ast.NumberLiteral{Value: 1}},
				Rest:        ast.Variable{Name: "ys"},
				ElementType: types.Number{},
			},
		})
		out, err := NewListLiteralLowerer(cfg).Run(m)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := "((erc_runtime.list.concatenate ((erc_runtime.list.prepend 1) erc_runtime.list.empty)) ys)"
		assertPrinted(t, bodyOf(t, out, "xs"), want)
	})
}

func TestArgumentOmission(t *testing.T) {
	fnType := types.Function{Argument: types.Number{}, Result: types.Number{}}

	t.Run("point-free value definition gains an argument", func(t *testing.T) {
		m := singleDefModule(&ast.Definition{
			Name: "f",
			Type: fnType,
			Body: ast.Variable{Name: "g"},
		})
		out, err := NewArgumentOmissionTransformer().Run(m)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		d := out.Definitions[0]
		if len(d.Arguments) != 1 {
			t.Fatalf("got %d arguments, want 1", len(d.Arguments))
		}
		assertPrinted(t, d.Body, "(g "+d.Arguments[0].Name+")")
	})

	t.Run("saturated definition is untouched", func(t *testing.T) {
		m := singleDefModule(&ast.Definition{
			Name:      "f",
			Arguments: []ast.Argument{{Name: "n", Type: types.Number{}}},
			Type:      fnType,
			Body:      ast.Variable{Name: "n"},
		})
		out, err := NewArgumentOmissionTransformer().Run(m)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(out.Definitions[0].Arguments) != 1 {
			t.Errorf("got %d arguments, want 1", len(out.Definitions[0].Arguments))
		}
		assertPrinted(t, out.Definitions[0].Body, "n")
	})

	t.Run("two missing arrows get two arguments", func(t *testing.T) {
		m := singleDefModule(&ast.Definition{
			Name: "add",
			Type: types.Function{Argument: types.Number{}, Result: fnType},
			Body: ast.Variable{Name: "plus"},
		})
		out, err := NewArgumentOmissionTransformer().Run(m)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(out.Definitions[0].Arguments) != 2 {
			t.Errorf("got %d arguments, want 2", len(out.Definitions[0].Arguments))
		}
	})
}

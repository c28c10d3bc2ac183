package elaborate

import (
	"testing"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	ercerrors "github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/typedast"
	"github.com/sunholo/erc/internal/types"
)

func newEqualLowerer(defs ...types.Definition) *EqualOperationLowerer {
	resolver, equality, canon, comparable := testCheckers(defs...)
	extract := typedast.NewExtractor(resolver, equality)
	return NewEqualOperationLowerer(resolver, equality, comparable, canon, extract, config.Default())
}

func equalityOver(argType types.Type) *ast.Module {
	return singleDefModule(&ast.Definition{
		Name: "f",
		Arguments: []ast.Argument{
			{Name: "a", Type: argType},
			{Name: "b", Type: argType},
		},
		Type: types.Function{
			Argument: argType,
			Result:   types.Function{Argument: argType, Result: types.Boolean{}},
		},
		Body: ast.Operation{
			Operator: ast.OpEqual,
			LHS:      ast.Variable{Name: "a"},
			RHS:      ast.Variable{Name: "b"},
		},
	})
}

func TestEqualOperationLowering(t *testing.T) {
	point := types.Record{Name: "Point", Fields: types.NewFieldMap(
		types.FieldPair{Key: "x", Value: types.Number{}},
	)}

	t.Run("numbers stay primitive", func(t *testing.T) {
		l := newEqualLowerer()
		out, err := l.Run(equalityOver(types.Number{}), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertPrinted(t, bodyOf(t, out, "f"), "(== a b)")
	})

	t.Run("strings stay primitive", func(t *testing.T) {
		l := newEqualLowerer()
		out, err := l.Run(equalityOver(types.String{}), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertPrinted(t, bodyOf(t, out, "f"), "(== a b)")
	})

	t.Run("none is literally true", func(t *testing.T) {
		l := newEqualLowerer()
		out, err := l.Run(equalityOver(types.None{}), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertPrinted(t, bodyOf(t, out, "f"), "true")
	})

	t.Run("booleans expand to nested if", func(t *testing.T) {
		l := newEqualLowerer()
		out, err := l.Run(equalityOver(types.Boolean{}), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertPrinted(t, bodyOf(t, out, "f"), "(if a then b else (if b then false else true))")
	})

	t.Run("records dispatch to synthesized equality", func(t *testing.T) {
		l := newEqualLowerer(types.Definition{Name: "Point", Type: point})
		out, err := l.Run(equalityOver(point), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertPrinted(t, bodyOf(t, out, "f"), "((Point.$equal a) b)")
	})

	t.Run("lists call the configured equal", func(t *testing.T) {
		l := newEqualLowerer()
		out, err := l.Run(equalityOver(types.List{Element: types.Number{}}), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		assertPrinted(t, bodyOf(t, out, "f"), "((erc_runtime.list.equal a) b)")
	})

	t.Run("unions become nested case dispatch", func(t *testing.T) {
		union := types.Union{Members: []types.Type{types.Number{}, types.None{}}}
		l := newEqualLowerer()
		out, err := l.Run(equalityOver(union), nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		outer, ok := bodyOf(t, out, "f").(ast.Case)
		if !ok {
			t.Fatalf("body is %T, want Case", bodyOf(t, out, "f"))
		}
		if len(outer.Alternatives) != 2 {
			t.Fatalf("outer case has %d alternatives, want 2", len(outer.Alternatives))
		}
		inner, ok := outer.Alternatives[0].Body.(ast.Case)
		if !ok {
			t.Fatalf("outer alternative body is %T, want Case", outer.Alternatives[0].Body)
		}
		if len(inner.Alternatives) != 2 {
			t.Errorf("inner case has %d alternatives, want 2", len(inner.Alternatives))
		}
	})

	t.Run("union-typed if operand gets union dispatch", func(t *testing.T) {
		dog := types.Record{Name: "Dog", Fields: types.NewFieldMap(
			types.FieldPair{Key: "n", Value: types.Number{}},
		)}
		cat := types.Record{Name: "Cat", Fields: types.NewFieldMap(
			types.FieldPair{Key: "n", Value: types.Number{}},
		)}
		union := types.Union{Members: []types.Type{dog, cat}}

		dogElems := ast.NewElementMap()
		dogElems.Set("n", ast.NumberLiteral{Value: 1})
		catElems := ast.NewElementMap()
		catElems.Set("n", ast.NumberLiteral{Value: 2})

		m := singleDefModule(&ast.Definition{
			Name: "f",
			Arguments: []ast.Argument{
				{Name: "c", Type: types.Boolean{}},
				{Name: "other", Type: union},
			},
			Type: types.Function{
				Argument: types.Boolean{},
				Result:   types.Function{Argument: union, Result: types.Boolean{}},
			},
			Body: ast.Operation{
				Operator: ast.OpEqual,
				LHS: ast.If{
					Condition: ast.Variable{Name: "c"},
					Then:      ast.RecordConstruction{Type: dog, Elements: dogElems},
					Else:      ast.RecordConstruction{Type: cat, Elements: catElems},
				},
				RHS: ast.Variable{Name: "other"},
			},
		})

		l := newEqualLowerer(
			types.Definition{Name: "Dog", Type: dog},
			types.Definition{Name: "Cat", Type: cat},
		)
		out, err := l.Run(m, nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		// The operand's type is the union of both branches, so the
		// lowering must dispatch on both sides, never straight to one
		// record's equality function.
		outer, ok := bodyOf(t, out, "f").(ast.Case)
		if !ok {
			t.Fatalf("body is %T, want Case", bodyOf(t, out, "f"))
		}
		if len(outer.Alternatives) != 2 {
			t.Errorf("outer case has %d alternatives, want 2", len(outer.Alternatives))
		}
	})

	t.Run("equality on any is rejected", func(t *testing.T) {
		l := newEqualLowerer()
		_, err := l.Run(equalityOver(types.Any{}), nil)
		if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC004 {
			t.Errorf("got %v, want %s", err, ercerrors.TC004)
		}
	})

	t.Run("equality on functions is rejected", func(t *testing.T) {
		l := newEqualLowerer()
		fn := types.Function{Argument: types.Number{}, Result: types.Number{}}
		_, err := l.Run(equalityOver(fn), nil)
		if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC005 {
			t.Errorf("got %v, want %s", err, ercerrors.TC005)
		}
	})
}

package infer

import (
	"testing"

	"github.com/sunholo/erc/internal/ast"
	ercerrors "github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

func testCheckers(defs ...types.Definition) (*types.Resolver, *types.EqualityChecker, *types.Canonicalizer) {
	resolver := types.NewResolver(types.NewEnvironment(defs...))
	equality := types.NewEqualityChecker(resolver)
	return resolver, equality, types.NewCanonicalizer(resolver, equality)
}

func valueDef(name string, typ types.Type, body ast.Expr) *ast.Definition {
	return &ast.Definition{Name: name, Type: typ, Body: body}
}

func runModule(t *testing.T, m *ast.Module, defs ...types.Definition) (*ast.Module, error) {
	t.Helper()
	resolver, equality, canon := testCheckers(defs...)
	return Run(m, resolver, equality, canon, "")
}

func TestRunInfersUnknownTypes(t *testing.T) {
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		valueDef("x", types.Unknown{}, ast.NumberLiteral{Value: 42}),
	}}

	out, err := runModule(t, m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Definitions[0].Type.String() != "Number" {
		t.Errorf("x : %s, want Number", out.Definitions[0].Type.String())
	}
}

func TestRunAcceptsWideningAscription(t *testing.T) {
	union := types.Union{Members: []types.Type{types.Number{}, types.None{}}}
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		valueDef("x", union, ast.NumberLiteral{Value: 42}),
	}}

	out, err := runModule(t, m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Definitions[0].Type.String() != "Union{Number, None}" {
		t.Errorf("x : %s", out.Definitions[0].Type.String())
	}
}

func TestRunRejectsMismatchedAscription(t *testing.T) {
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		valueDef("x", types.String{}, ast.NumberLiteral{Value: 42}),
	}}

	_, err := runModule(t, m)
	if err == nil {
		t.Fatal("expected TypesNotMatched")
	}
	if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC001 {
		t.Errorf("got %v, want %s", err, ercerrors.TC001)
	}
}

func TestRunRejectsUnboundVariable(t *testing.T) {
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		valueDef("x", types.Unknown{}, ast.Variable{Name: "nope"}),
	}}

	_, err := runModule(t, m)
	if err == nil {
		t.Fatal("expected VariableNotFound")
	}
	if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC002 {
		t.Errorf("got %v, want %s", err, ercerrors.TC002)
	}
}

func TestRunInfersFunctionBodies(t *testing.T) {
	fnType := types.Function{Argument: types.Number{}, Result: types.Number{}}
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		{
			Name:      "inc",
			Arguments: []ast.Argument{{Name: "n", Type: types.Number{}}},
			Type:      fnType,
			Body: ast.Operation{
				Operator: ast.OpAdd,
				LHS:      ast.Variable{Name: "n"},
				RHS:      ast.NumberLiteral{Value: 1},
			},
		},
	}}

	out, err := runModule(t, m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Definitions[0].Type.String() != "(Number -> Number)" {
		t.Errorf("inc : %s", out.Definitions[0].Type.String())
	}
}

func TestRunResolvesNamedUnionSupertype(t *testing.T) {
	// A named alias to a union must behave exactly like the union it
	// names when the solver checks an argument against it.
	union := types.Union{Members: []types.Type{types.Number{}, types.None{}}}
	animal := types.Reference{Name: "Animal"}
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		{
			Name:      "wrap",
			Arguments: []ast.Argument{{Name: "a", Type: animal}},
			Type:      types.Function{Argument: animal, Result: types.Number{}},
			Body:      ast.NumberLiteral{Value: 0},
		},
		valueDef("x", types.Number{}, ast.Application{
			Function: ast.Variable{Name: "wrap"},
			Argument: ast.NumberLiteral{Value: 42},
		}),
	}}

	if _, err := runModule(t, m, types.Definition{Name: "Animal", Type: union}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunIsIdempotentOnTypedModules(t *testing.T) {
	union := types.Union{Members: []types.Type{types.Number{}, types.None{}}}
	m := &ast.Module{Path: "Test", Definitions: []*ast.Definition{
		valueDef("x", union, ast.NumberLiteral{Value: 42}),
	}}

	once, err := runModule(t, m)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	twice, err := runModule(t, once)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if once.Definitions[0].Type.String() != twice.Definitions[0].Type.String() {
		t.Errorf("not idempotent: %s vs %s",
			once.Definitions[0].Type.String(), twice.Definitions[0].Type.String())
	}
}

func TestRunValidatesCaseArgument(t *testing.T) {
	union := types.Union{Members: []types.Type{types.Number{}, types.None{}}}
	caseOf := func(argType types.Type, alts ...*ast.Alternative) *ast.Module {
		return &ast.Module{Path: "Test", Definitions: []*ast.Definition{
			{
				Name:      "f",
				Arguments: []ast.Argument{{Name: "v", Type: argType}},
				Type:      types.Function{Argument: argType, Result: types.Number{}},
				Body:      ast.Case{Argument: ast.Variable{Name: "v"}, Alternatives: alts},
			},
		}}
	}

	t.Run("union argument with full coverage passes", func(t *testing.T) {
		m := caseOf(union,
			&ast.Alternative{Name: "n", Type: types.Number{}, Body: ast.Variable{Name: "n"}},
			&ast.Alternative{Name: "u", Type: types.None{}, Body: ast.NumberLiteral{Value: 0}},
		)
		if _, err := runModule(t, m); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})

	t.Run("missing member fails", func(t *testing.T) {
		m := caseOf(union,
			&ast.Alternative{Name: "n", Type: types.Number{}, Body: ast.Variable{Name: "n"}},
		)
		_, err := runModule(t, m)
		if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC008 {
			t.Errorf("got %v, want %s", err, ercerrors.TC008)
		}
	})

	t.Run("non-union argument fails", func(t *testing.T) {
		m := caseOf(types.Number{},
			&ast.Alternative{Name: "n", Type: types.Number{}, Body: ast.Variable{Name: "n"}},
		)
		_, err := runModule(t, m)
		if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC007 {
			t.Errorf("got %v, want %s", err, ercerrors.TC007)
		}
	})

	t.Run("any argument requires an any alternative", func(t *testing.T) {
		m := caseOf(types.Any{},
			&ast.Alternative{Name: "n", Type: types.Number{}, Body: ast.Variable{Name: "n"}},
		)
		_, err := runModule(t, m)
		if ce, ok := err.(*ercerrors.CompileError); !ok || ce.Code != ercerrors.TC008 {
			t.Errorf("got %v, want %s", err, ercerrors.TC008)
		}
	})
}

func TestIntroduceVariables(t *testing.T) {
	gen := &VarGen{}
	in := types.Function{
		Argument: types.Unknown{SourceInfo: source.Information{Path: "t", Line: 1}},
		Result:   types.List{Element: types.Unknown{}},
	}
	out := IntroduceVariables(in, gen)

	fn := out.(types.Function)
	if _, ok := fn.Argument.(types.Variable); !ok {
		t.Errorf("argument is %T, want Variable", fn.Argument)
	}
	lst := fn.Result.(types.List)
	if _, ok := lst.Element.(types.Variable); !ok {
		t.Errorf("list element is %T, want Variable", lst.Element)
	}
	if fn.Argument.(types.Variable).ID == lst.Element.(types.Variable).ID {
		t.Error("distinct unknowns should get distinct variables")
	}
}

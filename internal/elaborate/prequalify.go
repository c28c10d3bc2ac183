package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// Prequalifier runs the record synthesis rules (elementless values,
// field accessors, per-record equality) plus the main-definition check,
// all scheduled before global-name qualification so the qualifier treats
// synthesized names uniformly with user-written ones.
type Prequalifier struct {
	Resolver   *types.Resolver
	Comparable *types.ComparabilityChecker
}

func NewPrequalifier(resolver *types.Resolver, comparable *types.ComparabilityChecker) *Prequalifier {
	return &Prequalifier{Resolver: resolver, Comparable: comparable}
}

// Run applies elementless-record synthesis, accessor synthesis, and
// $equal synthesis to every record type defined in m, appending the
// synthesized definitions after the module's own.
func (p *Prequalifier) Run(m *ast.Module) (*ast.Module, error) {
	var synthesized []*ast.Definition

	for _, td := range m.TypeDefinitions {
		rec, ok := td.Type.(types.Record)
		if !ok {
			continue
		}

		if rec.Fields.Len() == 0 {
			synthesized = append(synthesized, synthesizeEmptyRecordValue(rec, td.SourceInfo))
		}

		for _, k := range rec.Fields.Keys() {
			fieldType, _ := rec.Fields.Get(k)
			synthesized = append(synthesized, synthesizeAccessor(rec, k, fieldType, td.SourceInfo))
		}

		comparable, err := p.Comparable.Comparable(rec)
		if err != nil {
			return nil, err
		}
		if comparable {
			synthesized = append(synthesized, synthesizeEqual(rec, td.SourceInfo))
		}
	}

	defs := append(append([]*ast.Definition{}, m.Definitions...), synthesized...)
	return m.WithDefinitions(defs), nil
}

// synthesizeEmptyRecordValue adds a top-level variable definition
// `R = record R{}` for every zero-field record type R, so the bare type
// name is usable as a value.
func synthesizeEmptyRecordValue(rec types.Record, at source.Information) *ast.Definition {
	return &ast.Definition{
		Name: rec.Name,
		Type: rec,
		Body: ast.RecordConstruction{
			Type:       rec,
			Elements:   ast.NewElementMap(),
			SourceInfo: at,
		},
		SourceInfo: at,
	}
}

// synthesizeAccessor adds a function `R.k : R -> fieldType` whose body
// reads field k off its bound parameter.
func synthesizeAccessor(rec types.Record, field string, fieldType types.Type, at source.Information) *ast.Definition {
	paramName := "$accessor_arg"
	fnType := types.Function{Argument: rec, Result: fieldType, SourceInfo: at}
	return &ast.Definition{
		Name:      rec.Name + "." + field,
		Arguments: []ast.Argument{{Name: paramName, Type: rec}},
		Type:      fnType,
		Body: ast.RecordElementOperation{
			Argument:   ast.Variable{Name: paramName, SourceInfo: at},
			Key:        field,
			SourceInfo: at,
		},
		SourceInfo: at,
	}
}

// synthesizeEqual adds a binary function `R.$equal : R -> R -> Boolean`
// that ANDs field-wise equality; a zero-field record's body is the
// literal `true`. The And/Equal operations here flow through the ordinary
// downstream lowering passes like any other surface operator use, so this
// synthesis needn't pre-lower them itself.
func synthesizeEqual(rec types.Record, at source.Information) *ast.Definition {
	lhsName, rhsName := "$equal_lhs", "$equal_rhs"
	fnType := types.Function{
		Argument:   rec,
		Result:     types.Function{Argument: rec, Result: types.Boolean{SourceInfo: at}, SourceInfo: at},
		SourceInfo: at,
	}

	var body ast.Expr = ast.BooleanLiteral{Value: true, SourceInfo: at}
	keys := rec.Fields.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		fieldEq := ast.Operation{
			Operator: ast.OpEqual,
			LHS: ast.RecordElementOperation{
				Argument:   ast.Variable{Name: lhsName, SourceInfo: at},
				Key:        k,
				SourceInfo: at,
			},
			RHS: ast.RecordElementOperation{
				Argument:   ast.Variable{Name: rhsName, SourceInfo: at},
				Key:        k,
				SourceInfo: at,
			},
			SourceInfo: at,
		}
		if i == len(keys)-1 {
			body = fieldEq
		} else {
			body = ast.Operation{Operator: ast.OpAnd, LHS: fieldEq, RHS: body, SourceInfo: at}
		}
	}

	return &ast.Definition{
		Name:       rec.Name + ".$equal",
		Arguments:  []ast.Argument{{Name: lhsName, Type: rec}, {Name: rhsName, Type: rec}},
		Type:       fnType,
		Body:       body,
		SourceInfo: at,
	}
}

// RequireMainDefinition validates that the module configured as the
// program entry point actually defines its designated main function.
// Library modules (cfg.IsMainModule == false) skip this check entirely.
func RequireMainDefinition(m *ast.Module, cfg *config.Configuration) error {
	if cfg == nil || !cfg.IsMainModule {
		return nil
	}
	for _, d := range m.Definitions {
		if d.Name == cfg.MainModule.FunctionName {
			return nil
		}
	}
	return &errors.CompileError{
		Code:    errors.IFACE001,
		Message: "main module " + m.Path + " has no definition named " + cfg.MainModule.FunctionName,
		Primary: source.Dummy(),
	}
}

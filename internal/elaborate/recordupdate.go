package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/types"
)

// RecordUpdateDesugarer expands record-update into let-of-construction,
// run after global-name qualification and before type inference:
// `{ r | f = v, ... }` becomes `let record_update_argument_N = r in
// R{ f0 = record_update_argument_N.f0, ..., f = v, ... }`, reading every
// field not named in the update straight off the bound original value.
type RecordUpdateDesugarer struct {
	resolver *types.Resolver
	gen      *NameGenerator
}

func NewRecordUpdateDesugarer(resolver *types.Resolver) *RecordUpdateDesugarer {
	return &RecordUpdateDesugarer{resolver: resolver, gen: NewNameGenerator("record_update_argument_")}
}

// Run rewrites every RecordUpdate node in m into Let + RecordConstruction.
func (d *RecordUpdateDesugarer) Run(m *ast.Module) (*ast.Module, error) {
	defs := make([]*ast.Definition, len(m.Definitions))
	for i, def := range m.Definitions {
		body, err := d.rewrite(def.Body)
		if err != nil {
			return nil, err
		}
		nd := *def
		nd.Body = body
		defs[i] = &nd
	}
	return m.WithDefinitions(defs), nil
}

func (d *RecordUpdateDesugarer) rewrite(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, d.rewrite)
	if err != nil {
		return nil, err
	}
	update, ok := e.(ast.RecordUpdate)
	if !ok {
		return e, nil
	}
	if update.Type == nil {
		return nil, &errors.CompileError{
			Code:    errors.TC001,
			Message: "record update has no resolvable record type",
			Primary: update.SourceInfo,
		}
	}
	resolved, err := d.resolver.Resolve(update.Type)
	if err != nil {
		return nil, err
	}
	rec, ok := resolved.(types.Record)
	if !ok {
		return nil, &errors.CompileError{
			Code:    errors.TC001,
			Message: "record update's static type is not a Record",
			Primary: update.SourceInfo,
		}
	}

	name := d.gen.Generate()
	at := update.SourceInfo

	elements := ast.NewElementMap()
	for _, k := range rec.Fields.Keys() {
		if overridden, ok := update.Elements.Get(k); ok {
			elements.Set(k, overridden)
			continue
		}
		elements.Set(k, ast.RecordElementOperation{
			Argument:   ast.Variable{Name: name, SourceInfo: at},
			Key:        k,
			SourceInfo: at,
		})
	}

	return ast.Let{
		Name:  name,
		Type:  update.Type,
		Value: update.Argument,
		Body: ast.RecordConstruction{
			Type:       update.Type,
			Elements:   elements,
			SourceInfo: at,
		},
		SourceInfo: at,
	}, nil
}

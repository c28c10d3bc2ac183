package elaborate

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/types"
)

// ArgumentOmissionTransformer saturates partially-applied definitions,
// run before list-literal lowering since the later passes assume full
// application.
//
// Since ast.Application is strictly unary and currying falls out of
// nested single-argument calls for free, the one place "fewer arguments
// than arity" is observable in this AST is a Definition itself: a
// point-free binding whose Arguments list is shorter than the number of
// arrows in its Type (e.g. `let twice f = compose f` where twice's Type
// is `Function -> Function -> Function` but only one Argument is bound).
// This pass eta-expands such a definition by appending one fresh
// `omitted_argument_N` per missing arrow and applying the old body to
// each in turn, so every later pass can assume Arguments fully saturate
// the arrows of Type.
type ArgumentOmissionTransformer struct {
	names *NameGenerator
}

func NewArgumentOmissionTransformer() *ArgumentOmissionTransformer {
	return &ArgumentOmissionTransformer{names: NewNameGenerator("omitted_argument_")}
}

func (t *ArgumentOmissionTransformer) Run(m *ast.Module) (*ast.Module, error) {
	defs := make([]*ast.Definition, len(m.Definitions))
	for i, d := range m.Definitions {
		nd, err := t.expandDefinition(d)
		if err != nil {
			return nil, err
		}
		nd.Body, err = t.rewrite(nd.Body)
		if err != nil {
			return nil, err
		}
		defs[i] = nd
	}
	return m.WithDefinitions(defs), nil
}

// expandDefinition appends omitted_argument_N bindings until d.Arguments
// saturates every arrow named by d.Type, applying the prior body to each
// new argument as it's introduced.
func (t *ArgumentOmissionTransformer) expandDefinition(d *ast.Definition) (*ast.Definition, error) {
	if d.Type == nil {
		return d, nil
	}
	remaining := d.Type
	for i := 0; i < len(d.Arguments); i++ {
		fn, ok := remaining.(types.Function)
		if !ok {
			// Arguments outnumber arrows; nothing to omit, leave as-is
			// for the inferrer to have already rejected upstream.
			return d, nil
		}
		remaining = fn.Result
	}

	nd := *d
	for {
		fn, ok := remaining.(types.Function)
		if !ok {
			break
		}
		name := t.names.Generate()
		at := nd.Body.Info()
		nd.Arguments = append(nd.Arguments, ast.Argument{Name: name, Type: fn.Argument})
		nd.Body = ast.Application{
			Function:   nd.Body,
			Argument:   ast.Variable{Name: name, SourceInfo: at},
			SourceInfo: at,
		}
		remaining = fn.Result
	}
	return &nd, nil
}

// rewrite recurses into every nested Definition (LetRecursive-bound local
// functions) so the same saturation invariant holds module-wide.
func (t *ArgumentOmissionTransformer) rewrite(e ast.Expr) (ast.Expr, error) {
	e, err := mapChildren(e, t.rewrite)
	if err != nil {
		return nil, err
	}
	letrec, ok := e.(ast.LetRecursive)
	if !ok {
		return e, nil
	}
	defs := make([]*ast.Definition, len(letrec.Definitions))
	for i, d := range letrec.Definitions {
		nd, err := t.expandDefinition(d)
		if err != nil {
			return nil, err
		}
		defs[i] = nd
	}
	letrec.Definitions = defs
	return letrec, nil
}

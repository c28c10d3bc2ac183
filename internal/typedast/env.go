// Package typedast operates on a fully-inferred, substituted module: it
// provides the expression-type extractor (recompute any expression's
// type from its surrounding scope without re-running inference) and the
// free-variable computation the function-type-coercion pass needs to
// decide what an eta-expansion wrapper must capture.
package typedast

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// Env is an immutable snapshot of term-variable bindings, mirroring
// infer.TermEnv but kept as a separate, smaller type so this package has
// no dependency on internal/infer (which is only needed during the
// inference stage itself).
type Env struct {
	parent *Env
	name   string
	typ    types.Type
}

func (e *Env) Extend(name string, typ types.Type) *Env {
	return &Env{parent: e, name: name, typ: typ}
}

func (e *Env) Lookup(name string, at source.Information) (types.Type, error) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.typ, nil
		}
	}
	return nil, errors.NewVariableNotFound(name, at)
}

// ModuleEnv builds the base environment for re-walking a module's bodies:
// every imported interface definition, foreign import, and top-level
// definition bound by name to its declared type. Passes that need more
// (e.g. configured runtime-library functions) extend the result.
func ModuleEnv(m *ast.Module) *Env {
	var env *Env
	for _, imp := range m.Imports {
		for i := range imp.Definitions {
			d := &imp.Definitions[i]
			env = env.Extend(d.Name, d.Type)
		}
	}
	for _, fi := range m.ForeignImports {
		env = env.Extend(fi.Name, fi.Type)
	}
	for _, d := range m.Definitions {
		env = env.Extend(d.Name, d.Type)
	}
	return env
}

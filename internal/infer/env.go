// Package infer implements bidirectional type inference over the ast
// package's expression sum, extended with a subsumption relation over
// unions and Any: variable introduction, constraint collection, a
// bounds-accumulating solver, substitution, and post-hoc constraint
// checking. It is kept separate from internal/types (which knows nothing
// about internal/ast) so that the type model stays usable by the
// reference resolver and canonicalizer without pulling in the expression
// grammar.
package infer

import (
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// TermEnv binds term-level variable names to their (possibly still
// variable-containing) types during constraint collection. Scopes are
// immutable snapshots: Extend returns a new TermEnv, never mutates the
// parent.
type TermEnv struct {
	parent *TermEnv
	name   string
	typ    types.Type
}

// Extend returns a new environment with name bound to typ, shadowing any
// outer binding of the same name.
func (e *TermEnv) Extend(name string, typ types.Type) *TermEnv {
	return &TermEnv{parent: e, name: name, typ: typ}
}

// ExtendAll binds several names at once, used by LetRecursive to bind
// every mutually-recursive name simultaneously.
func (e *TermEnv) ExtendAll(names []string, typs []types.Type) *TermEnv {
	cur := e
	for i := range names {
		cur = cur.Extend(names[i], typs[i])
	}
	return cur
}

// Lookup finds name's type, walking outward through enclosing scopes.
// Fails with errors.VariableNotFound if name is unbound anywhere.
func (e *TermEnv) Lookup(name string, at source.Information) (types.Type, error) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.typ, nil
		}
	}
	return nil, errors.NewVariableNotFound(name, at)
}

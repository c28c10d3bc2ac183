package types

import "github.com/sunholo/erc/internal/errors"

// Resolver maps a named type reference to its definition: given a Type,
// it returns the structurally equivalent type with the outermost Reference
// replaced. It is deliberately one-level: callers (the equality checker,
// the canonicalizer, the comparability checker) resolve iteratively where
// needed and protect themselves from cyclic type graphs with their own
// visited sets, rather than Resolver looping internally.
type Resolver struct {
	env *Environment
}

// NewResolver builds a Resolver over the given environment.
func NewResolver(env *Environment) *Resolver {
	return &Resolver{env: env}
}

// Resolve returns t unchanged unless t is a Reference, in which case it
// looks up the name in the environment and returns its definition. Fails
// with errors.TypeNotFound if the reference is unbound.
func (r *Resolver) Resolve(t Type) (Type, error) {
	ref, ok := t.(Reference)
	if !ok {
		return t, nil
	}
	def, ok := r.env.Lookup(ref.Name)
	if !ok {
		return nil, errors.NewTypeNotFound(ref.Name, ref.SourceInfo)
	}
	return def, nil
}

// ResolveToDepth resolves repeatedly until a non-Reference type is reached
// or maxDepth references have been followed, guarding against a reference
// cycle that a caller's own visited set didn't already catch. Used by
// call sites that need a fully unwrapped head type (e.g. deciding whether
// something is "a Union" after following an alias chain).
func (r *Resolver) ResolveToDepth(t Type, maxDepth int) (Type, error) {
	cur := t
	for i := 0; i < maxDepth; i++ {
		next, err := r.Resolve(cur)
		if err != nil {
			return nil, err
		}
		if _, ok := next.(Reference); !ok {
			return next, nil
		}
		if next.(Reference).Name == cur.(Reference).Name {
			return next, nil
		}
		cur = next
	}
	return cur, nil
}

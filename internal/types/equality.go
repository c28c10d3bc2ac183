package types

// EqualityChecker decides structural equality modulo reference
// resolution. Nominal records compare equal iff their names match; unions
// compare equal as multisets of members; Variables compare equal only by
// identity, never structurally, since unification assigns each a unique
// identity. Source info never participates in equality.
type EqualityChecker struct {
	resolver *Resolver
}

func NewEqualityChecker(resolver *Resolver) *EqualityChecker {
	return &EqualityChecker{resolver: resolver}
}

// Equal reports whether two types are structurally equal, resolving
// references on both sides first.
func (c *EqualityChecker) Equal(a, b Type) (bool, error) {
	ra, err := c.resolver.Resolve(a)
	if err != nil {
		return false, err
	}
	rb, err := c.resolver.Resolve(b)
	if err != nil {
		return false, err
	}
	return c.equalResolved(ra, rb)
}

func (c *EqualityChecker) equalResolved(a, b Type) (bool, error) {
	switch x := a.(type) {
	case Number:
		_, ok := b.(Number)
		return ok, nil
	case Boolean:
		_, ok := b.(Boolean)
		return ok, nil
	case None:
		_, ok := b.(None)
		return ok, nil
	case String:
		_, ok := b.(String)
		return ok, nil
	case Any:
		_, ok := b.(Any)
		return ok, nil
	case Reference:
		// Only reached if resolution left a Reference (e.g. resolving to
		// another Reference one level is allowed by Resolver); compare
		// by name as a fallback before giving up structurally.
		y, ok := b.(Reference)
		return ok && x.Name == y.Name, nil
	case Function:
		y, ok := b.(Function)
		if !ok {
			return false, nil
		}
		argEq, err := c.Equal(x.Argument, y.Argument)
		if err != nil || !argEq {
			return false, err
		}
		return c.Equal(x.Result, y.Result)
	case List:
		y, ok := b.(List)
		if !ok {
			return false, nil
		}
		return c.Equal(x.Element, y.Element)
	case Record:
		y, ok := b.(Record)
		if !ok {
			return false, nil
		}
		// Nominal: names alone decide record equality.
		return x.Name == y.Name, nil
	case Union:
		y, ok := b.(Union)
		if !ok {
			return false, nil
		}
		return c.unionsEqual(x, y)
	case Variable:
		y, ok := b.(Variable)
		return ok && x.ID == y.ID, nil
	case Unknown:
		_, ok := b.(Unknown)
		return ok, nil
	}
	return false, nil
}

// unionsEqual compares two unions as multisets under this same equality
// relation: every member of a must have a distinct equal in b and vice
// versa. Assumes both unions are already canonicalized (deduplicated) by
// the caller, which is true everywhere past canonicalization.
func (c *EqualityChecker) unionsEqual(a, b Union) (bool, error) {
	if len(a.Members) != len(b.Members) {
		return false, nil
	}
	used := make([]bool, len(b.Members))
	for _, am := range a.Members {
		found := false
		for i, bm := range b.Members {
			if used[i] {
				continue
			}
			eq, err := c.Equal(am, bm)
			if err != nil {
				return false, err
			}
			if eq {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// IsSubtype decides subsumption: Any on top, unions by member inclusion,
// functions contravariant in the argument and covariant in the result,
// lists covariant in the element. Used both by the constraint solver and
// directly by the coercion-insertion pass to decide whether a
// TypeCoercion is needed. It does not handle Variable; by the time this
// is called variables have already been substituted away.
func (c *EqualityChecker) IsSubtype(sub, super Type) (bool, error) {
	rsub, err := c.resolver.Resolve(sub)
	if err != nil {
		return false, err
	}
	rsuper, err := c.resolver.Resolve(super)
	if err != nil {
		return false, err
	}

	if _, ok := rsuper.(Any); ok {
		return true, nil
	}

	if superUnion, ok := rsuper.(Union); ok {
		if subUnion, ok := rsub.(Union); ok {
			for _, sm := range subUnion.Members {
				ok, err := c.isSubtypeOfSomeMember(sm, superUnion.Members)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}
		return c.isSubtypeOfSomeMember(rsub, superUnion.Members)
	}

	if subFunc, ok := rsub.(Function); ok {
		superFunc, ok := rsuper.(Function)
		if !ok {
			return false, nil
		}
		// Contravariant in the argument, covariant in the result.
		argOK, err := c.IsSubtype(superFunc.Argument, subFunc.Argument)
		if err != nil || !argOK {
			return false, err
		}
		return c.IsSubtype(subFunc.Result, superFunc.Result)
	}

	if subList, ok := rsub.(List); ok {
		superList, ok := rsuper.(List)
		if !ok {
			return false, nil
		}
		return c.IsSubtype(subList.Element, superList.Element)
	}

	return c.Equal(rsub, rsuper)
}

func (c *EqualityChecker) isSubtypeOfSomeMember(sub Type, members []Type) (bool, error) {
	for _, m := range members {
		ok, err := c.IsSubtype(sub, m)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

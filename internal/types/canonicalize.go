package types

// Canonicalizer rebuilds a type so that every Union it contains is
// flattened, deduplicated, and Any-absorbed. Traversal is bottom-up:
// inner types are canonicalized before the Union rule is applied to an
// outer Union.
type Canonicalizer struct {
	resolver *Resolver
	equality *EqualityChecker
}

func NewCanonicalizer(resolver *Resolver, equality *EqualityChecker) *Canonicalizer {
	return &Canonicalizer{resolver: resolver, equality: equality}
}

// Canonicalize rebuilds t so every contained Union is canonical: at
// least two distinct members, no nested Union, no Any member.
func (c *Canonicalizer) Canonicalize(t Type) (Type, error) {
	switch x := t.(type) {
	case Function:
		arg, err := c.Canonicalize(x.Argument)
		if err != nil {
			return nil, err
		}
		res, err := c.Canonicalize(x.Result)
		if err != nil {
			return nil, err
		}
		return Function{Argument: arg, Result: res, SourceInfo: x.SourceInfo}, nil
	case List:
		elem, err := c.Canonicalize(x.Element)
		if err != nil {
			return nil, err
		}
		return List{Element: elem, SourceInfo: x.SourceInfo}, nil
	case Record:
		if x.Fields.Len() == 0 {
			return x, nil
		}
		fm := NewFieldMap()
		for _, k := range x.Fields.Keys() {
			v, _ := x.Fields.Get(k)
			cv, err := c.Canonicalize(v)
			if err != nil {
				return nil, err
			}
			fm.Set(k, cv)
		}
		return Record{Name: x.Name, Fields: fm, SourceInfo: x.SourceInfo}, nil
	case Union:
		members := make([]Type, len(x.Members))
		for i, m := range x.Members {
			cm, err := c.Canonicalize(m)
			if err != nil {
				return nil, err
			}
			members[i] = cm
		}
		return c.canonicalizeUnionShallowly(Union{Members: members, SourceInfo: x.SourceInfo})
	default:
		return t, nil
	}
}

// canonicalizeUnionShallowly assumes its members are already
// canonicalized and rebuilds the union: flatten, absorb Any,
// deduplicate, collapse singletons.
func (c *Canonicalizer) canonicalizeUnionShallowly(u Union) (Type, error) {
	all, err := c.flattenMembers(u.Members)
	if err != nil {
		return nil, err
	}

	for _, m := range all {
		resolved, err := c.resolver.Resolve(m)
		if err != nil {
			return nil, err
		}
		if _, ok := resolved.(Any); ok {
			return m, nil
		}
	}

	deduped := make([]Type, 0, len(all))
outer:
	for _, m := range all {
		for _, existing := range deduped {
			eq, err := c.equality.Equal(m, existing)
			if err != nil {
				return nil, err
			}
			if eq {
				continue outer
			}
		}
		deduped = append(deduped, m)
	}

	switch len(deduped) {
	case 0:
		// Unreachable for any well-formed Union (it always has at least
		// one member going in).
		panic("canonicalize: union had no members")
	case 1:
		return deduped[0], nil
	default:
		return Union{Members: deduped, SourceInfo: u.SourceInfo}, nil
	}
}

// flattenMembers resolves each member one level and, if it turns out to
// be a (already-canonical, since callers canonicalize bottom-up) Union,
// recursively flattens it. Non-union members are kept as-is rather than
// replaced by their resolution, since resolved types might not be
// canonicalized yet.
func (c *Canonicalizer) flattenMembers(members []Type) ([]Type, error) {
	var out []Type
	for _, m := range members {
		resolved, err := c.resolver.Resolve(m)
		if err != nil {
			return nil, err
		}
		if u, ok := resolved.(Union); ok {
			nested, err := c.flattenMembers(u.Members)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		} else {
			out = append(out, m)
		}
	}
	return out, nil
}

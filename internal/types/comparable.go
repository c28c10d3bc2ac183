package types

// ComparabilityChecker decides whether "==" may legally be applied to a
// value of a given type. Any and Function are never
// comparable; records are comparable iff every field is, with a
// visited-name set so self- and mutually-recursive record definitions
// (e.g. a tree) are productive instead of looping forever.
type ComparabilityChecker struct {
	resolver *Resolver
}

func NewComparabilityChecker(resolver *Resolver) *ComparabilityChecker {
	return &ComparabilityChecker{resolver: resolver}
}

// Comparable reports whether t admits "==".
func (c *ComparabilityChecker) Comparable(t Type) (bool, error) {
	return c.comparable(t, map[string]bool{})
}

func (c *ComparabilityChecker) comparable(t Type, visited map[string]bool) (bool, error) {
	resolved, err := c.resolver.Resolve(t)
	if err != nil {
		return false, err
	}

	switch x := resolved.(type) {
	case Any:
		return false, nil
	case Function:
		return false, nil
	case Record:
		if visited[x.Name] {
			// Already assumed comparable while checking an enclosing
			// field of the same record; productive recursion.
			return true, nil
		}
		next := make(map[string]bool, len(visited)+1)
		for k := range visited {
			next[k] = true
		}
		next[x.Name] = true
		for _, k := range x.Fields.Keys() {
			field, _ := x.Fields.Get(k)
			ok, err := c.comparable(field, next)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case Union:
		for _, m := range x.Members {
			ok, err := c.comparable(m, visited)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case List:
		return c.comparable(x.Element, visited)
	default:
		// Number, Boolean, None, String, and (structurally) Variable /
		// Unknown are comparable leaves.
		return true, nil
	}
}

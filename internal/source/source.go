// Package source provides the position tag threaded through every type and
// expression node in the compiler core.
package source

import "fmt"

// Information marks the origin of a type or expression node: the file it
// came from and its line/column. Equality of types and expressions
// ignores Information entirely; it exists purely for diagnostics.
type Information struct {
	Path   string
	Line   int
	Column int
}

func (s Information) String() string {
	if s.Path == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.Path, s.Line, s.Column)
}

// Dummy returns an Information value for synthesized nodes that have no
// real source position (e.g. transform-inserted coercions, synthesized
// accessors).
func Dummy() Information {
	return Information{Path: "<generated>"}
}

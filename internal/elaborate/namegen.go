// Package elaborate implements the pre-name-qualification synthesis
// transforms and the ordered type-dependent transform pipeline: the
// sequenced desugaring passes that lower record updates, list literals,
// boolean/equality operators, the pipe operator, partial application, and
// let-error into a small core calculus, plus explicit type-coercion
// insertion and function-type eta-expansion.
package elaborate

import "fmt"

// NameGenerator is a monotonic, pass-local fresh-name counter. Each pass
// constructs its own generator; collisions between passes are prevented
// by disjoint prefixes.
type NameGenerator struct {
	prefix string
	next   int
}

// NewNameGenerator builds a generator with the given disjoint prefix.
func NewNameGenerator(prefix string) *NameGenerator {
	return &NameGenerator{prefix: prefix}
}

// Generate returns the next fresh name under this generator's prefix.
func (g *NameGenerator) Generate() string {
	g.next++
	return fmt.Sprintf("%s%d", g.prefix, g.next)
}

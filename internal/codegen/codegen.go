// Package codegen defines the code-generator collaborator boundary: the
// pipeline hands over a fully lowered module plus its interface and gets
// back a byte buffer. Real backends live with the host; the TextGenerator
// here is the reference stand-in used by the CLI and the integration
// tests.
package codegen

import (
	"fmt"
	"strings"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/config"
)

// Generator consumes the fully lowered module. Implementations may assume
// every invariant the pipeline guarantees: no Unknown or Variable types,
// canonical unions, explicit coercions, curried unary functions.
type Generator interface {
	Generate(m *ast.Module, iface *ast.ModuleInterface, cfg *config.Configuration) ([]byte, error)
}

// TextGenerator renders the module as a readable listing: one line per
// definition with its type and printed body, preceded by an allocator
// header naming the configured malloc/realloc entry points a real backend
// would link against.
type TextGenerator struct{}

func (TextGenerator) Generate(m *ast.Module, iface *ast.ModuleInterface, cfg *config.Configuration) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "; module %s\n", m.Path)
	if m.BuildID != "" {
		fmt.Fprintf(&b, "; build %s\n", m.BuildID)
	}
	if cfg != nil {
		fmt.Fprintf(&b, "; allocator %s / %s\n", cfg.MallocFunc, cfg.ReallocFunc)
	}
	for _, td := range m.TypeDefinitions {
		fmt.Fprintf(&b, "type %s = %s\n", td.Name, td.Type.String())
	}
	for _, d := range m.Definitions {
		typeStr := "<untyped>"
		if d.Type != nil {
			typeStr = d.Type.String()
		}
		args := make([]string, len(d.Arguments))
		for i, a := range d.Arguments {
			args[i] = a.Name
		}
		if len(args) > 0 {
			fmt.Fprintf(&b, "%s %s : %s = %s\n", d.Name, strings.Join(args, " "), typeStr, ast.Print(d.Body))
		} else {
			fmt.Fprintf(&b, "%s : %s = %s\n", d.Name, typeStr, ast.Print(d.Body))
		}
	}
	return []byte(b.String()), nil
}

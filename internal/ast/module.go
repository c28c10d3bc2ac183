package ast

import (
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// Argument is one formal parameter of a FunctionDefinition.
type Argument struct {
	Name string
	Type types.Type
}

// Definition is a top-level (or LetRecursive-bound) function or value
// definition.
type Definition struct {
	Name       string
	Arguments  []Argument // empty for a plain value definition
	Body       Expr
	Type       types.Type // the definition's full (possibly curried Function) type
	SourceInfo source.Information
}

// IsFunction reports whether this definition takes at least one argument.
func (d *Definition) IsFunction() bool { return len(d.Arguments) > 0 }

// TypeDefinition names a type (record, or any other Type) at module scope.
type TypeDefinition struct {
	Name       string
	Type       types.Type
	SourceInfo source.Information
}

// ForeignImport names an externally-defined (non-erc) function this
// module calls, along with its erc-visible type.
type ForeignImport struct {
	Name string
	Type types.Type
}

// ModuleInterface is the subset of a Module exposed to dependents
// : qualified type and variable signatures, with no
// expression bodies.
type ModuleInterface struct {
	Path            string
	TypeDefinitions []TypeDefinition
	Definitions     []Definition // Body is nil on interface copies
}

// Module bundles a compilation unit: path, export sets, imported
// interfaces, foreign imports, type definitions, and top-level
// definitions. Every pipeline stage returns a fresh Module rather than
// mutating one in place.
type Module struct {
	Path string
	// BuildID is a compilation-scoped correlation id assigned when the
	// module enters the pipeline. The reference text generator writes it
	// into its listing header; errors returned by the pipeline do not
	// carry it.
	BuildID         string
	Exports         map[string]bool
	ForeignExports  map[string]bool
	Imports         []*ModuleInterface
	ForeignImports  []ForeignImport
	TypeDefinitions []TypeDefinition
	Definitions     []*Definition
}

// Interface derives this module's ModuleInterface: every type definition
// (dependents need them to resolve exported signatures) and the exported
// definitions, with bodies stripped.
func (m *Module) Interface() *ModuleInterface {
	iface := &ModuleInterface{Path: m.Path}
	for _, td := range m.TypeDefinitions {
		iface.TypeDefinitions = append(iface.TypeDefinitions, td)
	}
	for _, d := range m.Definitions {
		if !m.Exports[d.Name] {
			continue
		}
		iface.Definitions = append(iface.Definitions, Definition{
			Name:      d.Name,
			Arguments: d.Arguments,
			Type:      d.Type,
		})
	}
	return iface
}

// WithDefinitions returns a copy of m with Definitions replaced, the
// standard "produce a fresh Module" idiom every stage uses.
func (m *Module) WithDefinitions(defs []*Definition) *Module {
	out := *m
	out.Definitions = defs
	return &out
}

// WithTypeDefinitions returns a copy of m with TypeDefinitions replaced.
func (m *Module) WithTypeDefinitions(tds []TypeDefinition) *Module {
	out := *m
	out.TypeDefinitions = tds
	return &out
}

// FindTypeDefinition looks up a type definition by name within this
// module only (not imports); used by the resolution environment
// builder.
func (m *Module) FindTypeDefinition(name string) (TypeDefinition, bool) {
	for _, td := range m.TypeDefinitions {
		if td.Name == name {
			return td, true
		}
	}
	return TypeDefinition{}, false
}

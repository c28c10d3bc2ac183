// Package iface derives a module's public interface (the qualified type
// definitions and variable signatures dependents are allowed to see) and
// serializes it for the host to persist alongside generated code.
package iface

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/source"
)

// Build validates the module's export sets and derives its
// ModuleInterface. Every exported or foreign-exported name must refer to
// a top-level definition or type definition; the first unknown name
// fails with ExportNotFound.
func Build(m *ast.Module) (*ast.ModuleInterface, error) {
	known := make(map[string]bool, len(m.Definitions)+len(m.TypeDefinitions))
	for _, d := range m.Definitions {
		known[d.Name] = true
	}
	for _, td := range m.TypeDefinitions {
		known[td.Name] = true
	}

	for _, name := range sortedNames(m.Exports) {
		if !known[name] {
			return nil, errors.NewExportNotFound(name, source.Dummy())
		}
	}
	for _, name := range sortedNames(m.ForeignExports) {
		if !known[name] {
			return nil, errors.NewExportNotFound(name, source.Dummy())
		}
	}

	return m.Interface(), nil
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// encoded is the on-disk shape of a ModuleInterface. Types are rendered
// as their display strings; the host owns the richer format it may want
// for cross-module type reconstruction.
type encoded struct {
	Path  string            `yaml:"path"`
	Types map[string]string `yaml:"types,omitempty"`
	Names map[string]string `yaml:"names,omitempty"`
}

// EncodeYAML serializes a ModuleInterface as a stable YAML document:
// exported type definitions and exported name signatures, both keyed by
// name.
func EncodeYAML(iface *ast.ModuleInterface) ([]byte, error) {
	out := encoded{Path: iface.Path}
	if len(iface.TypeDefinitions) > 0 {
		out.Types = make(map[string]string, len(iface.TypeDefinitions))
		for _, td := range iface.TypeDefinitions {
			out.Types[td.Name] = td.Type.String()
		}
	}
	if len(iface.Definitions) > 0 {
		out.Names = make(map[string]string, len(iface.Definitions))
		for _, d := range iface.Definitions {
			out.Names[d.Name] = d.Type.String()
		}
	}
	return yaml.Marshal(out)
}

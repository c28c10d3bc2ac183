package elaborate

import (
	"sort"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/typedast"
)

// InitializerSorter topologically orders a module's plain top-level
// value definitions by their free-variable dependencies on other plain
// value definitions, so the code generator can emit initializers in an
// order where every value is computed after the values it reads. A cycle
// among value initializers is CircularInitialization. Function
// definitions are exempt: their bodies only run when called, so forward
// references among them (including self-recursion) never need ordering.
type InitializerSorter struct{}

func NewInitializerSorter() *InitializerSorter { return &InitializerSorter{} }

// Run reorders m.Definitions so that every plain value definition appears
// after every other plain value definition it depends on, raising
// CircularInitialization if no such order exists. Function definitions
// keep their relative order and are placed after all value definitions.
func (s *InitializerSorter) Run(m *ast.Module) (*ast.Module, error) {
	byName := make(map[string]*ast.Definition, len(m.Definitions))
	isValue := make(map[string]bool, len(m.Definitions))
	for _, d := range m.Definitions {
		byName[d.Name] = d
		isValue[d.Name] = !d.IsFunction()
	}

	deps := make(map[string][]string, len(m.Definitions))
	for _, d := range m.Definitions {
		if d.IsFunction() {
			continue
		}
		free := typedast.FreeVariables(d.Body)
		var names []string
		for name := range free {
			// A value depending on itself is still a cycle.
			if isValue[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		deps[d.Name] = names
	}

	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var order []string
	var path []string

	var dfs func(name string) error
	dfs = func(name string) error {
		if visited[name] {
			return nil
		}
		if inPath[name] {
			cycle := cyclePathFrom(path, name)
			return errors.NewCircularInitialization(cycle, byName[name].SourceInfo)
		}
		inPath[name] = true
		path = append(path, name)
		for _, dep := range deps[name] {
			if err := dfs(dep); err != nil {
				return err
			}
		}
		inPath[name] = false
		path = path[:len(path)-1]
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, d := range m.Definitions {
		if !isValue[d.Name] {
			continue
		}
		if err := dfs(d.Name); err != nil {
			return nil, err
		}
	}

	sorted := make([]*ast.Definition, 0, len(m.Definitions))
	for _, name := range order {
		sorted = append(sorted, byName[name])
	}
	for _, d := range m.Definitions {
		if d.IsFunction() {
			sorted = append(sorted, d)
		}
	}
	return m.WithDefinitions(sorted), nil
}

func cyclePathFrom(path []string, repeated string) []string {
	start := 0
	for i, n := range path {
		if n == repeated {
			start = i
			break
		}
	}
	cycle := append([]string{}, path[start:]...)
	cycle = append(cycle, repeated)
	return cycle
}

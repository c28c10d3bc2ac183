package infer

import (
	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/types"
)

// VarGen is a monotonic, pass-local fresh-variable counter. Each
// inference run constructs its own VarGen, so concurrent compilations
// never share mutable state.
type VarGen struct{ next int }

func (g *VarGen) Fresh(at types.Type) types.Variable {
	g.next++
	return types.Variable{ID: g.next, SourceInfo: at.Info()}
}

// IntroduceVariables replaces every Unknown type in t with a fresh
// Variable. Non-Unknown leaves are returned unchanged; composite types
// recurse structurally.
func IntroduceVariables(t types.Type, gen *VarGen) types.Type {
	switch x := t.(type) {
	case types.Unknown:
		return gen.Fresh(x)
	case types.Function:
		return types.Function{
			Argument:   IntroduceVariables(x.Argument, gen),
			Result:     IntroduceVariables(x.Result, gen),
			SourceInfo: x.SourceInfo,
		}
	case types.List:
		return types.List{Element: IntroduceVariables(x.Element, gen), SourceInfo: x.SourceInfo}
	case types.Record:
		if x.Fields.Len() == 0 {
			return x
		}
		fm := types.NewFieldMap()
		for _, k := range x.Fields.Keys() {
			v, _ := x.Fields.Get(k)
			fm.Set(k, IntroduceVariables(v, gen))
		}
		return types.Record{Name: x.Name, Fields: fm, SourceInfo: x.SourceInfo}
	case types.Union:
		members := make([]types.Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = IntroduceVariables(m, gen)
		}
		return types.Union{Members: members, SourceInfo: x.SourceInfo}
	default:
		return t
	}
}

// IntroduceVariablesModule replaces every Unknown in the module with a
// fresh Variable: definition signatures, argument types, and the types
// embedded in expressions (let ascriptions, case alternative patterns,
// list element annotations).
func IntroduceVariablesModule(m *ast.Module, gen *VarGen) *ast.Module {
	apply := func(t types.Type) (types.Type, error) {
		if t == nil {
			return nil, nil
		}
		return IntroduceVariables(t, gen), nil
	}
	defs := make([]*ast.Definition, len(m.Definitions))
	for i, d := range m.Definitions {
		// apply never errors, so neither does substituteDefinition.
		nd, _ := substituteDefinition(d, apply)
		defs[i] = nd
	}
	return m.WithDefinitions(defs)
}

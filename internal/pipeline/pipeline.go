// Package pipeline wires the compiler core's stages into the single entry
// point Compile: pre-qualification synthesis, global-name qualification
// (a collaborator hook), name-independent desugaring, type inference, the
// ordered type-dependent transform passes, initializer ordering, export
// validation, and the hand-off to the code generator.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/sunholo/erc/internal/ast"
	"github.com/sunholo/erc/internal/codegen"
	"github.com/sunholo/erc/internal/config"
	"github.com/sunholo/erc/internal/elaborate"
	"github.com/sunholo/erc/internal/iface"
	"github.com/sunholo/erc/internal/infer"
	"github.com/sunholo/erc/internal/typedast"
	"github.com/sunholo/erc/internal/types"
)

// Qualifier rewrites every user-visible name to its fully-qualified form.
// The rules are owned by the host; the core only requires that the
// resulting names are globally unique strings.
type Qualifier func(*ast.Module) (*ast.Module, error)

// Options carries the collaborator implementations a compilation uses.
// Zero values select the identity qualifier and the reference text
// generator.
type Options struct {
	Qualifier Qualifier
	Generator codegen.Generator
}

// Compile runs the whole pipeline over a module and returns the generated
// bytes together with the module's interface. The input module is not
// mutated; every stage produces a fresh module.
func Compile(m *ast.Module, cfg *config.Configuration, opts Options) ([]byte, *ast.ModuleInterface, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	qualify := opts.Qualifier
	if qualify == nil {
		qualify = func(m *ast.Module) (*ast.Module, error) { return m, nil }
	}
	generator := opts.Generator
	if generator == nil {
		generator = codegen.TextGenerator{}
	}

	withID := *m
	withID.BuildID = uuid.NewString()
	m = &withID

	resolver, equality, canon, comparable := buildCheckers(m)

	prequalifier := elaborate.NewPrequalifier(resolver, comparable)
	m, err := prequalifier.Run(m)
	if err != nil {
		return nil, nil, err
	}
	if err := elaborate.RequireMainDefinition(m, cfg); err != nil {
		return nil, nil, err
	}

	m, err = qualify(m)
	if err != nil {
		return nil, nil, err
	}
	// Qualification may have renamed type definitions; rebuild the
	// resolution environment over the qualified names.
	resolver, equality, canon, comparable = buildCheckers(m)

	if m, err = elaborate.LowerPipe(m); err != nil {
		return nil, nil, err
	}
	if m, err = elaborate.NewRecordUpdateDesugarer(resolver).Run(m); err != nil {
		return nil, nil, err
	}

	if m, err = infer.Run(m, resolver, equality, canon, cfg.ErrorType.ErrorTypeName); err != nil {
		return nil, nil, err
	}

	if m, err = elaborate.NewArgumentOmissionTransformer().Run(m); err != nil {
		return nil, nil, err
	}
	if m, err = elaborate.NewListLiteralLowerer(cfg).Run(m); err != nil {
		return nil, nil, err
	}
	if m, err = elaborate.LowerBooleanOperations(m); err != nil {
		return nil, nil, err
	}
	if m, err = elaborate.LowerNotEqual(m); err != nil {
		return nil, nil, err
	}

	extract := typedast.NewExtractor(resolver, equality)
	extract.ListPrims = &typedast.ListPrimitives{
		Empty:       cfg.ListType.Empty,
		Prepend:     cfg.ListType.Prepend,
		Concatenate: cfg.ListType.Concatenate,
		Equal:       cfg.ListType.Equal,
		Map:         cfg.ListType.Map,
	}
	base := baseEnv(m, cfg)

	equalop := elaborate.NewEqualOperationLowerer(resolver, equality, comparable, canon, extract, cfg)
	if m, err = equalop.Run(m, base); err != nil {
		return nil, nil, err
	}

	coercer := elaborate.NewCoercionInserter(resolver, equality, canon, extract)
	coercer.ErrorTypeName = cfg.ErrorType.ErrorTypeName
	if m, err = coercer.Run(m, baseEnv(m, cfg)); err != nil {
		return nil, nil, err
	}

	if m, err = elaborate.NewFunctionCoercionTransformer(resolver, equality).Run(m); err != nil {
		return nil, nil, err
	}
	if m, err = elaborate.NewNonVariableApplicationTransformer().Run(m); err != nil {
		return nil, nil, err
	}
	if m, err = elaborate.NewListCoercionTransformer(resolver, cfg).Run(m); err != nil {
		return nil, nil, err
	}

	leterror := elaborate.NewLetErrorLowerer(resolver, equality, canon, extract, cfg)
	if m, err = leterror.Run(m, baseEnv(m, cfg)); err != nil {
		return nil, nil, err
	}

	if m, err = elaborate.NewInitializerSorter().Run(m); err != nil {
		return nil, nil, err
	}

	moduleIface, err := iface.Build(m)
	if err != nil {
		return nil, nil, err
	}

	bytes, err := generator.Generate(m, moduleIface, cfg)
	if err != nil {
		return nil, nil, err
	}
	return bytes, moduleIface, nil
}

// buildCheckers derives the type machinery from a module's resolution
// environment: type definitions of imported interfaces first, then the
// module's own type definitions (later entries shadow earlier ones).
// Foreign imports carry no type definitions and contribute nothing.
func buildCheckers(m *ast.Module) (*types.Resolver, *types.EqualityChecker, *types.Canonicalizer, *types.ComparabilityChecker) {
	var defs []types.Definition
	for _, imp := range m.Imports {
		for _, td := range imp.TypeDefinitions {
			defs = append(defs, types.Definition{Name: td.Name, Type: td.Type})
		}
	}
	for _, td := range m.TypeDefinitions {
		defs = append(defs, types.Definition{Name: td.Name, Type: td.Type})
	}
	env := types.NewEnvironment(defs...)
	resolver := types.NewResolver(env)
	equality := types.NewEqualityChecker(resolver)
	canon := types.NewCanonicalizer(resolver, equality)
	comparable := types.NewComparabilityChecker(resolver)
	return resolver, equality, canon, comparable
}

// baseEnv binds everything a body re-walk can see: imported interfaces,
// foreign imports, top-level definitions, the configured empty-list
// value, and the host's builtin table.
func baseEnv(m *ast.Module, cfg *config.Configuration) *typedast.Env {
	env := typedast.ModuleEnv(m)
	env = env.Extend(cfg.ListType.Empty, types.List{Element: types.Any{}})
	for name, typeName := range cfg.Builtins {
		env = env.Extend(name, types.Reference{Name: typeName})
	}
	return env
}

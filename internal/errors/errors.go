package errors

import (
	"fmt"

	"github.com/sunholo/erc/internal/source"
)

// CompileError is the common shape every stage function returns: a code
// from the taxonomy in codes.go, a human message, and at least one
// source.Information for the primary location. Every stage returns the
// first CompileError it encounters; there is no multi-diagnostic
// recovery.
type CompileError struct {
	Code    string
	Message string
	Primary source.Information
	Extra   []source.Information
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Primary)
}

// Sources returns every source.Information the error carries, primary
// first, for pretty-printing multi-span diagnostics (e.g. TypesNotMatched
// names two locations).
func (e *CompileError) Sources() []source.Information {
	return append([]source.Information{e.Primary}, e.Extra...)
}

// NewTypeNotFound builds the error the reference resolver raises for an
// unbound name.
func NewTypeNotFound(name string, at source.Information) error {
	return &CompileError{
		Code:    RES001,
		Message: fmt.Sprintf("type %q is not defined", name),
		Primary: at,
	}
}

// NewTypesNotMatched builds the subsumption-failure error, carrying both
// the offending subtype's and supertype's descriptions and source spans.
func NewTypesNotMatched(sub, super string, subAt, superAt source.Information) error {
	return &CompileError{
		Code:    TC001,
		Message: fmt.Sprintf("type %q does not match expected type %q", sub, super),
		Primary: subAt,
		Extra:   []source.Information{superAt},
	}
}

// NewVariableNotFound builds the error for an unbound term variable during
// constraint collection.
func NewVariableNotFound(name string, at source.Information) error {
	return &CompileError{
		Code:    TC002,
		Message: fmt.Sprintf("variable %q is not bound", name),
		Primary: at,
	}
}

// NewCircularInitialization builds the error for a dependency cycle
// among top-level, non-function value definitions.
func NewCircularInitialization(names []string, at source.Information) error {
	return &CompileError{
		Code:    TC003,
		Message: fmt.Sprintf("circular initialization among: %v", names),
		Primary: at,
	}
}

// NewAnyEqualOperation builds the error for "==" applied to a value of
// static type Any.
func NewAnyEqualOperation(at source.Information) error {
	return &CompileError{
		Code:    TC004,
		Message: "equality operation cannot be applied to a value of type Any",
		Primary: at,
	}
}

// NewFunctionEqualOperation builds the error for "==" applied to a
// function-typed value.
func NewFunctionEqualOperation(at source.Information) error {
	return &CompileError{
		Code:    TC005,
		Message: "equality operation cannot be applied to a function",
		Primary: at,
	}
}

// NewMixedDefinitionsInLet builds the error for a let block that mixes
// function and plain value bindings when the surrounding context forbids
// it.
func NewMixedDefinitionsInLet(at source.Information) error {
	return &CompileError{
		Code:    TC006,
		Message: "let cannot mix function and value definitions",
		Primary: at,
	}
}

// NewCaseArgumentNotUnion builds the error for a Case whose argument type
// is not a Union or Any after substitution.
func NewCaseArgumentNotUnion(argType string, at source.Information) error {
	return &CompileError{
		Code:    TC007,
		Message: fmt.Sprintf("case argument must be a union or Any type, got %q", argType),
		Primary: at,
	}
}

// NewCaseNotExhaustive builds the error for a Case whose alternatives do
// not cover every member of the argument union.
func NewCaseNotExhaustive(missing []string, at source.Information) error {
	return &CompileError{
		Code:    TC008,
		Message: fmt.Sprintf("case is not exhaustive, missing alternatives for: %v", missing),
		Primary: at,
	}
}

// NewListCaseArgumentNotList builds the error for a ListCase whose
// argument type is not a List after substitution.
func NewListCaseArgumentNotList(argType string, at source.Information) error {
	return &CompileError{
		Code:    TC009,
		Message: fmt.Sprintf("list-case argument must be a List type, got %q", argType),
		Primary: at,
	}
}

// NewExportNotFound builds the error for an export set entry that names no
// top-level definition.
func NewExportNotFound(name string, at source.Information) error {
	return &CompileError{
		Code:    IFACE001,
		Message: fmt.Sprintf("exported name %q has no corresponding definition", name),
		Primary: at,
	}
}

package typedast

import (
	"github.com/sunholo/erc/internal/types"
)

// ListPrimitives names the configured runtime-library list functions.
// These are the only element-polymorphic values the lowered IR refers
// to; every use is instantiated at its call site from the first
// argument's type, so the monomorphic type extractor can type lowered
// list code precisely instead of erasing element types.
type ListPrimitives struct {
	Empty       string
	Prepend     string
	Concatenate string
	Equal       string
	Map         string
}

// InstantiateListPrim returns the full (curried) function type of the
// named list primitive as instantiated by its first argument's type, or
// ok=false when name is not a known primitive or the argument type does
// not determine an instantiation.
func (x *Extractor) InstantiateListPrim(name string, firstArg types.Type) (types.Function, bool, error) {
	if x.ListPrims == nil {
		return types.Function{}, false, nil
	}
	resolved, err := x.Resolver.Resolve(firstArg)
	if err != nil {
		return types.Function{}, false, err
	}
	at := firstArg.Info()

	switch name {
	case x.ListPrims.Prepend:
		elem := resolved
		lst := types.List{Element: elem, SourceInfo: at}
		return types.Function{
			Argument:   elem,
			Result:     types.Function{Argument: lst, Result: lst, SourceInfo: at},
			SourceInfo: at,
		}, true, nil

	case x.ListPrims.Concatenate:
		lst, ok := resolved.(types.List)
		if !ok {
			return types.Function{}, false, nil
		}
		return types.Function{
			Argument:   lst,
			Result:     types.Function{Argument: lst, Result: lst, SourceInfo: at},
			SourceInfo: at,
		}, true, nil

	case x.ListPrims.Equal:
		lst, ok := resolved.(types.List)
		if !ok {
			return types.Function{}, false, nil
		}
		return types.Function{
			Argument:   lst,
			Result:     types.Function{Argument: lst, Result: types.Boolean{SourceInfo: at}, SourceInfo: at},
			SourceInfo: at,
		}, true, nil

	case x.ListPrims.Map:
		fn, ok := resolved.(types.Function)
		if !ok {
			return types.Function{}, false, nil
		}
		fromList := types.List{Element: fn.Argument, SourceInfo: at}
		toList := types.List{Element: fn.Result, SourceInfo: at}
		return types.Function{
			Argument:   fn,
			Result:     types.Function{Argument: fromList, Result: toList, SourceInfo: at},
			SourceInfo: at,
		}, true, nil
	}

	return types.Function{}, false, nil
}

// IsEmptyListName reports whether name is the configured empty-list
// value. The empty list inhabits every list type, so positions expecting
// `List T` accept it without a coercion.
func (x *Extractor) IsEmptyListName(name string) bool {
	return x.ListPrims != nil && name == x.ListPrims.Empty
}

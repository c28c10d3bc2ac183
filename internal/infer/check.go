package infer

import (
	"github.com/sunholo/erc/internal/errors"
	"github.com/sunholo/erc/internal/types"
)

func notMatched(sub, super types.Type) error {
	return errors.NewTypesNotMatched(sub.String(), super.String(), sub.Info(), super.Info())
}

// CheckConstraints re-walks the checked constraint set under the
// now-fully-substituted module and asserts each holds under subsumption.
// The constraints have already had the solver's substitution applied by
// the caller before this runs.
func CheckConstraints(equality *types.EqualityChecker, constraints []Constraint) error {
	for _, c := range constraints {
		ok, err := equality.IsSubtype(c.Sub, c.Super)
		if err != nil {
			return err
		}
		if !ok {
			return notMatched(c.Sub, c.Super)
		}
	}
	return nil
}

// SubstituteType applies a variable->type substitution to t, then
// canonicalizes the result so any union simplification the substitution
// enables (e.g. a variable bound to both Number and Any collapses to
// Any) happens immediately.
func SubstituteType(canon *types.Canonicalizer, subst map[int]types.Type, t types.Type) (types.Type, error) {
	substituted := applyFinal(subst, t)
	return canon.Canonicalize(substituted)
}

func applyFinal(subst map[int]types.Type, t types.Type) types.Type {
	switch x := t.(type) {
	case types.Variable:
		if r, ok := subst[x.ID]; ok {
			return applyFinal(subst, r)
		}
		return types.Any{SourceInfo: x.SourceInfo}
	case types.Function:
		return types.Function{Argument: applyFinal(subst, x.Argument), Result: applyFinal(subst, x.Result), SourceInfo: x.SourceInfo}
	case types.List:
		return types.List{Element: applyFinal(subst, x.Element), SourceInfo: x.SourceInfo}
	case types.Union:
		members := make([]types.Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = applyFinal(subst, m)
		}
		return types.Union{Members: members, SourceInfo: x.SourceInfo}
	case types.Record:
		if x.Fields.Len() == 0 {
			return x
		}
		fm := types.NewFieldMap()
		for _, k := range x.Fields.Keys() {
			v, _ := x.Fields.Get(k)
			fm.Set(k, applyFinal(subst, v))
		}
		return types.Record{Name: x.Name, Fields: fm, SourceInfo: x.SourceInfo}
	default:
		return t
	}
}

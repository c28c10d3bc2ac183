package infer

import (
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// Constraint is one ordered (subtype, supertype) pair produced during
// constraint collection. Checked constraints are only
// verified after substitution; Solved constraints additionally drive
// variable-bound accumulation during solving.
type Constraint struct {
	Sub, Super     types.Type
	SubAt, SuperAt source.Information
	Checked        bool
}

// CollectedConstraints is the output of constraint collection: two
// ordered sets, solved and checked.
type CollectedConstraints struct {
	Solved  []Constraint
	Checked []Constraint
}

func (c *CollectedConstraints) addSolved(sub, super types.Type) {
	c.Solved = append(c.Solved, Constraint{Sub: sub, Super: super, SubAt: sub.Info(), SuperAt: super.Info()})
}

func (c *CollectedConstraints) addChecked(sub, super types.Type) {
	c.Checked = append(c.Checked, Constraint{Sub: sub, Super: super, SubAt: sub.Info(), SuperAt: super.Info(), Checked: true})
}

// addAscription routes a declared-type constraint: a fully concrete
// ascription only needs post-hoc verification, but one that still
// contains inference variables (it was Unknown before variable
// introduction) must drive the solver so those variables get bounds.
func (c *CollectedConstraints) addAscription(sub, super types.Type) {
	if containsVariable(super) || containsVariable(sub) {
		c.addSolved(sub, super)
		return
	}
	c.addChecked(sub, super)
}

func containsVariable(t types.Type) bool {
	switch x := t.(type) {
	case types.Variable:
		return true
	case types.Function:
		return containsVariable(x.Argument) || containsVariable(x.Result)
	case types.List:
		return containsVariable(x.Element)
	case types.Union:
		for _, m := range x.Members {
			if containsVariable(m) {
				return true
			}
		}
		return false
	case types.Record:
		for _, k := range x.Fields.Keys() {
			v, _ := x.Fields.Get(k)
			if containsVariable(v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

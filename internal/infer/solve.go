package infer

import (
	"github.com/sunholo/erc/internal/source"
	"github.com/sunholo/erc/internal/types"
)

// bounds accumulates the lower (subtype) and upper (supertype) bounds
// discovered for one type variable during solving.
type bounds struct {
	lower []types.Type
	upper []types.Type
}

// Solver repeatedly converts solved constraints into variable
// constraints, accumulates lower and upper bounds, and substitutes a
// variable as soon as its bound set uniquely determines an assignment.
//
// The conversion rules (function contravariant/covariant split, union
// fan-out, Any-as-supertype trivial discharge) are applied eagerly so
// that only "atomic" constraints (one side a bare Variable) ever reach
// the bounds table. Each step either discharges a constraint, shrinks it
// structurally, or turns it into a strictly smaller one, so the work
// queue is bounded.
type Solver struct {
	equality *types.EqualityChecker
	resolver *types.Resolver
	gen      *VarGen

	boundsByVar map[int]*bounds
	subst       map[int]types.Type
}

func NewSolver(resolver *types.Resolver, equality *types.EqualityChecker, gen *VarGen) *Solver {
	return &Solver{
		equality:    equality,
		resolver:    resolver,
		gen:         gen,
		boundsByVar: map[int]*bounds{},
		subst:       map[int]types.Type{},
	}
}

// Solve consumes the solved constraint set and returns a substitution from
// variable ID to its resolved type. It mutates nothing on the input slice.
func (s *Solver) Solve(constraints []Constraint) (map[int]types.Type, error) {
	queue := append([]Constraint(nil), constraints...)

	for {
		progressed, err := s.pass(&queue)
		if err != nil {
			return nil, err
		}
		if !progressed {
			break
		}
	}

	// Any variable with at least one lower bound resolves to the
	// canonicalized union of its lower bounds. A variable with only
	// upper bounds, or none at all (an unused function argument),
	// defaults to Any, which satisfies every upper bound trivially.
	for id, b := range s.boundsByVar {
		if _, done := s.subst[id]; done {
			continue
		}
		assigned, err := s.assign(id, b)
		if err != nil {
			return nil, err
		}
		s.subst[id] = assigned
	}

	return s.subst, nil
}

func (s *Solver) assign(id int, b *bounds) (types.Type, error) {
	if len(b.lower) == 0 {
		return types.Any{}, nil
	}
	t := b.lower[0]
	for _, other := range b.lower[1:] {
		t = types.Union{Members: []types.Type{t, other}}
	}
	canon := types.NewCanonicalizer(s.resolver, s.equality)
	canonT, err := canon.Canonicalize(t)
	if err != nil {
		return nil, err
	}
	for _, upper := range b.upper {
		ok, err := s.equality.IsSubtype(canonT, upper)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notMatched(canonT, upper)
		}
	}
	return canonT, nil
}

// pass runs one sweep over the queue, applying substitutions already
// known, decomposing structural constraints, and recording atomic
// variable bounds. It returns whether any substitution became newly
// determined (in which case the caller should re-run a pass so the new
// binding propagates).
func (s *Solver) pass(queue *[]Constraint) (bool, error) {
	var remaining []Constraint
	progressed := false

	for _, c := range *queue {
		sub := s.applySubst(c.Sub)
		super := s.applySubst(c.Super)

		done, newConstraints, err := s.decompose(sub, super, c.SubAt, c.SuperAt)
		if err != nil {
			return false, err
		}
		if done {
			continue
		}
		remaining = append(remaining, newConstraints...)
	}

	*queue = remaining

	// After recording bounds this sweep, see if any variable's bound set
	// is now "uniquely determined" (has at least one lower bound and
	// every constraint mentioning it has been queued) and assign it
	// early so later constraints in the same sweep benefit on the next
	// pass.
	for id, b := range s.boundsByVar {
		if _, done := s.subst[id]; done {
			continue
		}
		if len(b.lower) == 0 {
			continue
		}
		assigned, err := s.assign(id, b)
		if err != nil {
			return false, err
		}
		s.subst[id] = assigned
		progressed = true
	}

	return progressed, nil
}

// applySubst replaces every Variable in t that already has a
// determined substitution, leaving unresolved variables alone.
func (s *Solver) applySubst(t types.Type) types.Type {
	switch x := t.(type) {
	case types.Variable:
		if r, ok := s.subst[x.ID]; ok {
			return r
		}
		return t
	case types.Function:
		return types.Function{Argument: s.applySubst(x.Argument), Result: s.applySubst(x.Result), SourceInfo: x.SourceInfo}
	case types.List:
		return types.List{Element: s.applySubst(x.Element), SourceInfo: x.SourceInfo}
	case types.Union:
		members := make([]types.Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = s.applySubst(m)
		}
		return types.Union{Members: members, SourceInfo: x.SourceInfo}
	case types.Record:
		if x.Fields.Len() == 0 {
			return x
		}
		fm := types.NewFieldMap()
		for _, k := range x.Fields.Keys() {
			v, _ := x.Fields.Get(k)
			fm.Set(k, s.applySubst(v))
		}
		return types.Record{Name: x.Name, Fields: fm, SourceInfo: x.SourceInfo}
	default:
		return t
	}
}

// decompose applies the constraint conversion rules. It returns
// done=true when the constraint is fully discharged (e.g. Any supertype,
// or a leaf<->leaf match recorded as a bound), or done=false with zero or
// more smaller constraints to requeue.
func (s *Solver) decompose(sub, super types.Type, subAt, superAt source.Information) (bool, []Constraint, error) {
	// Named aliases to unions, functions, and lists are first-class, so
	// unwrap references before switching on shape. Alias chains are
	// followed to a fixed depth; anything deeper falls through to the
	// equality check, which resolves by name.
	sub, err := s.resolver.ResolveToDepth(sub, 32)
	if err != nil {
		return false, nil, err
	}
	super, err = s.resolver.ResolveToDepth(super, 32)
	if err != nil {
		return false, nil, err
	}

	if _, ok := super.(types.Any); ok {
		return true, nil, nil
	}

	subVar, subIsVar := sub.(types.Variable)
	superVar, superIsVar := super.(types.Variable)

	if subIsVar && !superIsVar {
		s.recordUpper(subVar.ID, super)
		return true, nil, nil
	}
	if superIsVar && !subIsVar {
		s.recordLower(superVar.ID, sub)
		return true, nil, nil
	}
	if subIsVar && superIsVar {
		// Both sides unresolved: defer by requeuing unchanged until one
		// side gets a substitution from elsewhere in the system.
		return false, []Constraint{{Sub: sub, Super: super, SubAt: subAt, SuperAt: superAt}}, nil
	}

	if superFunc, ok := super.(types.Function); ok {
		subFunc, ok := sub.(types.Function)
		if !ok {
			return false, nil, notMatched(sub, super)
		}
		return false, []Constraint{
			{Sub: superFunc.Argument, Super: subFunc.Argument, SubAt: subAt, SuperAt: superAt},
			{Sub: subFunc.Result, Super: superFunc.Result, SubAt: subAt, SuperAt: superAt},
		}, nil
	}

	if superUnion, ok := super.(types.Union); ok {
		if subUnion, ok := sub.(types.Union); ok {
			var out []Constraint
			for _, m := range subUnion.Members {
				out = append(out, Constraint{Sub: m, Super: superUnion, SubAt: subAt, SuperAt: superAt})
			}
			return false, out, nil
		}
		ok, err := s.equality.IsSubtype(sub, superUnion)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			return false, nil, notMatched(sub, super)
		}
		return true, nil, nil
	}

	if subList, ok := sub.(types.List); ok {
		superList, ok := super.(types.List)
		if !ok {
			return false, nil, notMatched(sub, super)
		}
		return false, []Constraint{{Sub: subList.Element, Super: superList.Element, SubAt: subAt, SuperAt: superAt}}, nil
	}

	ok, err := s.equality.Equal(sub, super)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, notMatched(sub, super)
	}
	return true, nil, nil
}

func (s *Solver) recordUpper(id int, t types.Type) {
	b := s.boundsByVar[id]
	if b == nil {
		b = &bounds{}
		s.boundsByVar[id] = b
	}
	b.upper = append(b.upper, t)
}

func (s *Solver) recordLower(id int, t types.Type) {
	b := s.boundsByVar[id]
	if b == nil {
		b = &bounds{}
		s.boundsByVar[id] = b
	}
	b.lower = append(b.lower, t)
}

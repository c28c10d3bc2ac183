// Package types implements the compiler's type model: the tagged type
// variants, reference resolution, structural equality, canonicalization of
// unions, and the comparability check that gates "==".
package types

import (
	"sort"
	"strings"

	"github.com/sunholo/erc/internal/source"
)

// Type is the sum of every type the language can express. Every variant
// below implements it.
type Type interface {
	// String renders the type for diagnostics.
	String() string
	// Info returns the node's source tag.
	Info() source.Information
	isType()
}

// Number, Boolean, None and String are the scalar leaf types.
type Number struct{ SourceInfo source.Information }
type Boolean struct{ SourceInfo source.Information }
type None struct{ SourceInfo source.Information }
type String struct{ SourceInfo source.Information }

func (Number) isType()  {}
func (Boolean) isType() {}
func (None) isType()    {}
func (String) isType()  {}

func (t Number) String() string  { return "Number" }
func (t Boolean) String() string { return "Boolean" }
func (t None) String() string    { return "None" }
func (t String) String() string  { return "String" }

func (t Number) Info() source.Information  { return t.SourceInfo }
func (t Boolean) Info() source.Information { return t.SourceInfo }
func (t None) Info() source.Information    { return t.SourceInfo }
func (t String) Info() source.Information  { return t.SourceInfo }

// Function is a curried single-argument function type; multi-argument
// functions are represented as nested Functions.
type Function struct {
	Argument   Type
	Result     Type
	SourceInfo source.Information
}

func (Function) isType() {}
func (t Function) String() string {
	return "(" + t.Argument.String() + " -> " + t.Result.String() + ")"
}
func (t Function) Info() source.Information { return t.SourceInfo }

// List is a homogeneous list type.
type List struct {
	Element    Type
	SourceInfo source.Information
}

func (List) isType()                    {}
func (t List) String() string           { return "List " + t.Element.String() }
func (t List) Info() source.Information { return t.SourceInfo }

// Record is nominal: two record types are the same type iff their Name
// matches. Fields is an ordered
// map so field declaration order is stable for accessor synthesis and
// equal-function generation.
type Record struct {
	Name       string
	Fields     *FieldMap
	SourceInfo source.Information
}

func (Record) isType() {}
func (t Record) String() string {
	if t.Fields == nil || t.Fields.Len() == 0 {
		return "Record " + t.Name + " {}"
	}
	parts := make([]string, 0, t.Fields.Len())
	for _, k := range t.Fields.Keys() {
		v, _ := t.Fields.Get(k)
		parts = append(parts, k+": "+v.String())
	}
	return "Record " + t.Name + " {" + strings.Join(parts, ", ") + "}"
}
func (t Record) Info() source.Information { return t.SourceInfo }

// Union is a canonical union once it has passed through Canonicalize: at
// least two distinct members, no nested Union, no Any member.
// Pre-canonicalization unions may violate these and are rebuilt by
// Canonicalize.
type Union struct {
	Members    []Type
	SourceInfo source.Information
}

func (Union) isType() {}
func (t Union) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return "Union{" + strings.Join(parts, ", ") + "}"
}
func (t Union) Info() source.Information { return t.SourceInfo }

// Any is the top type: every type is a subtype of Any, and Any absorbs any
// union it participates in.
type Any struct{ SourceInfo source.Information }

func (Any) isType()                    {}
func (t Any) String() string           { return "Any" }
func (t Any) Info() source.Information { return t.SourceInfo }

// Reference names a type defined elsewhere; resolved via Resolve.
// Equality treats a reference and its resolved definition as equal.
type Reference struct {
	Name       string
	SourceInfo source.Information
}

func (Reference) isType()                    {}
func (t Reference) String() string           { return t.Name }
func (t Reference) Info() source.Information { return t.SourceInfo }

// Unknown is the surface placeholder for an omitted annotation. It never
// appears past variable introduction, which replaces it with a fresh
// Variable.
type Unknown struct{ SourceInfo source.Information }

func (Unknown) isType()                    {}
func (t Unknown) String() string           { return "Unknown" }
func (t Unknown) Info() source.Information { return t.SourceInfo }

// Variable is an inference-only unification hole with a process-unique
// identity. It must never survive into the final IR; EqualityChecker.Equal treats two Variables as equal only if their IDs
// match, never by structure.
type Variable struct {
	ID         int
	SourceInfo source.Information
}

func (Variable) isType()                    {}
func (t Variable) String() string           { return "$t" + itoa(t.ID) }
func (t Variable) Info() source.Information { return t.SourceInfo }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// FieldMap is an insertion-ordered string->Type map, used for record field
// declarations and record-construction element lists so that field order
// is deterministic (accessor synthesis order, $equal conjunction order,
// error messages).
type FieldMap struct {
	keys   []string
	values map[string]Type
}

// NewFieldMap builds a FieldMap from ordered key/value pairs.
func NewFieldMap(pairs ...FieldPair) *FieldMap {
	fm := &FieldMap{values: make(map[string]Type, len(pairs))}
	for _, p := range pairs {
		fm.Set(p.Key, p.Value)
	}
	return fm
}

// FieldPair is one (name, type) entry used to build a FieldMap.
type FieldPair struct {
	Key   string
	Value Type
}

func (fm *FieldMap) Set(key string, value Type) {
	if _, ok := fm.values[key]; !ok {
		fm.keys = append(fm.keys, key)
	}
	fm.values[key] = value
}

func (fm *FieldMap) Get(key string) (Type, bool) {
	v, ok := fm.values[key]
	return v, ok
}

func (fm *FieldMap) Keys() []string {
	out := make([]string, len(fm.keys))
	copy(out, fm.keys)
	return out
}

func (fm *FieldMap) SortedKeys() []string {
	out := fm.Keys()
	sort.Strings(out)
	return out
}

func (fm *FieldMap) Len() int {
	if fm == nil {
		return 0
	}
	return len(fm.keys)
}

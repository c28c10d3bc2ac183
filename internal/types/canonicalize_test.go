package types

import (
	"testing"
)

func newCheckers(defs ...Definition) (*Resolver, *EqualityChecker, *Canonicalizer) {
	resolver := NewResolver(NewEnvironment(defs...))
	equality := NewEqualityChecker(resolver)
	return resolver, equality, NewCanonicalizer(resolver, equality)
}

func TestCanonicalizeUnion(t *testing.T) {
	_, _, canon := newCheckers()

	tests := []struct {
		name string
		in   Type
		want string
	}{
		{
			name: "flattens nested unions",
			in: Union{Members: []Type{
				Number{},
				Union{Members: []Type{None{}, String{}}},
			}},
			want: "Union{Number, None, String}",
		},
		{
			name: "deduplicates members",
			in:   Union{Members: []Type{Number{}, Number{}, None{}}},
			want: "Union{Number, None}",
		},
		{
			name: "singleton collapses to its member",
			in:   Union{Members: []Type{Number{}, Number{}}},
			want: "Number",
		},
		{
			name: "any absorbs the union",
			in:   Union{Members: []Type{Number{}, Any{}, None{}}},
			want: "Any",
		},
		{
			name: "nested any absorbs through flattening",
			in: Union{Members: []Type{
				Number{},
				Union{Members: []Type{None{}, Any{}}},
			}},
			want: "Any",
		},
		{
			name: "non-union passes through",
			in:   Number{},
			want: "Number",
		},
		{
			name: "union inside a function result",
			in: Function{
				Argument: Number{},
				Result:   Union{Members: []Type{Number{}, Number{}, None{}}},
			},
			want: "(Number -> Union{Number, None})",
		},
		{
			name: "union inside a list element",
			in:   List{Element: Union{Members: []Type{Boolean{}, Boolean{}}}},
			want: "List Boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canon.Canonicalize(tt.in)
			if err != nil {
				t.Fatalf("Canonicalize: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got.String(), tt.want)
			}
		})
	}
}

func TestCanonicalizeResolvesReferences(t *testing.T) {
	_, _, canon := newCheckers(
		Definition{Name: "NumberOrNone", Type: Union{Members: []Type{Number{}, None{}}}},
	)

	got, err := canon.Canonicalize(Union{Members: []Type{
		Reference{Name: "NumberOrNone"},
		String{},
	}})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got.String() != "Union{Number, None, String}" {
		t.Errorf("got %s", got.String())
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	_, _, canon := newCheckers()

	in := Union{Members: []Type{
		Number{},
		Union{Members: []Type{None{}, String{}, Number{}}},
	}}
	once, err := canon.Canonicalize(in)
	if err != nil {
		t.Fatalf("first Canonicalize: %v", err)
	}
	twice, err := canon.Canonicalize(once)
	if err != nil {
		t.Fatalf("second Canonicalize: %v", err)
	}
	if once.String() != twice.String() {
		t.Errorf("not idempotent: %s vs %s", once.String(), twice.String())
	}
}

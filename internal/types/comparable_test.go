package types

import "testing"

func TestComparable(t *testing.T) {
	// Tree is self-recursive through a union with None, the shape the
	// visited-name set exists for.
	tree := Record{Name: "Tree", Fields: NewFieldMap(
		FieldPair{Key: "value", Value: Number{}},
		FieldPair{Key: "left", Value: Union{Members: []Type{Reference{Name: "Tree"}, None{}}}},
		FieldPair{Key: "right", Value: Union{Members: []Type{Reference{Name: "Tree"}, None{}}}},
	)}

	holder := Record{Name: "Holder", Fields: NewFieldMap(
		FieldPair{Key: "callback", Value: Function{Argument: Number{}, Result: Number{}}},
	)}

	resolver := NewResolver(NewEnvironment(
		Definition{Name: "Tree", Type: tree},
		Definition{Name: "Holder", Type: holder},
	))
	checker := NewComparabilityChecker(resolver)

	tests := []struct {
		name string
		in   Type
		want bool
	}{
		{"number", Number{}, true},
		{"boolean", Boolean{}, true},
		{"none", None{}, true},
		{"string", String{}, true},
		{"any is never comparable", Any{}, false},
		{"functions are never comparable", Function{Argument: Number{}, Result: Number{}}, false},
		{"list of comparable elements", List{Element: Number{}}, true},
		{"list of functions", List{Element: Function{Argument: Number{}, Result: Number{}}}, false},
		{"union of comparable members", Union{Members: []Type{Number{}, None{}}}, true},
		{"union containing any", Union{Members: []Type{Number{}, Any{}}}, false},
		{"zero-field record", Record{Name: "Unit", Fields: NewFieldMap()}, true},
		{"self-recursive record", Reference{Name: "Tree"}, true},
		{"record with a function field", Reference{Name: "Holder"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.Comparable(tt.in)
			if err != nil {
				t.Fatalf("Comparable: %v", err)
			}
			if got != tt.want {
				t.Errorf("Comparable(%s) = %v, want %v", tt.in.String(), got, tt.want)
			}
		})
	}
}

func TestComparableMutualRecursion(t *testing.T) {
	a := Record{Name: "A", Fields: NewFieldMap(
		FieldPair{Key: "b", Value: Union{Members: []Type{Reference{Name: "B"}, None{}}}},
	)}
	b := Record{Name: "B", Fields: NewFieldMap(
		FieldPair{Key: "a", Value: Union{Members: []Type{Reference{Name: "A"}, None{}}}},
	)}
	resolver := NewResolver(NewEnvironment(
		Definition{Name: "A", Type: a},
		Definition{Name: "B", Type: b},
	))
	checker := NewComparabilityChecker(resolver)

	got, err := checker.Comparable(Reference{Name: "A"})
	if err != nil {
		t.Fatalf("Comparable: %v", err)
	}
	if !got {
		t.Error("mutually recursive records should be comparable")
	}
}

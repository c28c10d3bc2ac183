package types

import "testing"

func TestEqual(t *testing.T) {
	_, equality, _ := newCheckers(
		Definition{Name: "Alias", Type: Number{}},
	)

	rec := func(name string) Record {
		return Record{Name: name, Fields: NewFieldMap(FieldPair{Key: "n", Value: Number{}})}
	}

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same leaf", Number{}, Number{}, true},
		{"different leaves", Number{}, Boolean{}, false},
		{"reference resolves to its definition", Reference{Name: "Alias"}, Number{}, true},
		{"records are nominal", rec("Foo"), rec("Bar"), false},
		{"records equal by name", rec("Foo"), rec("Foo"), true},
		{
			"unions compare as multisets",
			Union{Members: []Type{Number{}, None{}}},
			Union{Members: []Type{None{}, Number{}}},
			true,
		},
		{
			"unions with different members",
			Union{Members: []Type{Number{}, None{}}},
			Union{Members: []Type{Number{}, String{}}},
			false,
		},
		{
			"functions compare componentwise",
			Function{Argument: Number{}, Result: Boolean{}},
			Function{Argument: Number{}, Result: Boolean{}},
			true,
		},
		{
			"functions differ in argument",
			Function{Argument: Number{}, Result: Boolean{}},
			Function{Argument: String{}, Result: Boolean{}},
			false,
		},
		{"lists compare by element", List{Element: Number{}}, List{Element: Number{}}, true},
		{"variables equal only by identity", Variable{ID: 1}, Variable{ID: 2}, false},
		{"same variable identity", Variable{ID: 7}, Variable{ID: 7}, true},
		{"any equals any", Any{}, Any{}, true},
		{"any is not number", Any{}, Number{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := equality.Equal(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Equal: %v", err)
			}
			if got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a.String(), tt.b.String(), got, tt.want)
			}
		})
	}
}

func TestIsSubtype(t *testing.T) {
	_, equality, _ := newCheckers()

	tests := []struct {
		name       string
		sub, super Type
		want       bool
	}{
		{"everything is a subtype of any", Number{}, Any{}, true},
		{"member is a subtype of its union", Number{}, Union{Members: []Type{Number{}, None{}}}, true},
		{"non-member is not", String{}, Union{Members: []Type{Number{}, None{}}}, false},
		{
			"smaller union is a subtype of a larger one",
			Union{Members: []Type{Number{}, None{}}},
			Union{Members: []Type{Number{}, None{}, String{}}},
			true,
		},
		{
			"larger union is not a subtype of a smaller one",
			Union{Members: []Type{Number{}, String{}}},
			Union{Members: []Type{Number{}, None{}}},
			false,
		},
		{
			"functions are contravariant in arguments",
			Function{Argument: Union{Members: []Type{Number{}, None{}}}, Result: Number{}},
			Function{Argument: Number{}, Result: Number{}},
			true,
		},
		{
			"functions are covariant in results",
			Function{Argument: Number{}, Result: Number{}},
			Function{Argument: Number{}, Result: Union{Members: []Type{Number{}, None{}}}},
			true,
		},
		{
			"argument covariance is rejected",
			Function{Argument: Number{}, Result: Number{}},
			Function{Argument: Union{Members: []Type{Number{}, None{}}}, Result: Number{}},
			false,
		},
		{"lists are covariant", List{Element: Number{}}, List{Element: Any{}}, true},
		{"subtype is reflexive", Number{}, Number{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := equality.IsSubtype(tt.sub, tt.super)
			if err != nil {
				t.Fatalf("IsSubtype: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.sub.String(), tt.super.String(), got, tt.want)
			}
		})
	}
}

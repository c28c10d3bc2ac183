package errors

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sunholo/erc/internal/source"
)

func TestReport(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	err := &CompileError{
		Code:    TC001,
		Message: "type \"Number\" does not match expected type \"String\"",
		Primary: source.Information{Path: "main.erc", Line: 3, Column: 5},
		Extra:   []source.Information{{Path: "main.erc", Line: 1, Column: 1}},
	}

	out := Report(err, "x : String = 42")

	for _, want := range []string{
		"Error[TC001]:",
		"main.erc:3:5",
		"x : String = 42",
		"also see:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// The caret sits under the reported column.
	lines := strings.Split(out, "\n")
	var caretLine string
	for _, l := range lines {
		if strings.Contains(l, "^") {
			caretLine = l
		}
	}
	if caretLine == "" {
		t.Fatal("no caret line")
	}
	if got := strings.Index(caretLine, "^"); got != 2+4 {
		t.Errorf("caret at offset %d, want %d", got, 2+4)
	}
}

func TestEncode(t *testing.T) {
	err := &CompileError{
		Code:    RES001,
		Message: "type \"Foo\" is not defined",
		Primary: source.Information{Path: "lib.erc", Line: 7, Column: 2},
	}

	encoded := Encode(err).WithBuildID("build-123")
	if encoded.Phase != "resolve" {
		t.Errorf("phase = %q", encoded.Phase)
	}
	if encoded.Schema != SchemaVersion {
		t.Errorf("schema = %q", encoded.Schema)
	}

	s, jerr := encoded.MarshalJSONString()
	if jerr != nil {
		t.Fatalf("MarshalJSONString: %v", jerr)
	}
	var decoded map[string]interface{}
	if uerr := json.Unmarshal([]byte(s), &decoded); uerr != nil {
		t.Fatalf("round trip: %v", uerr)
	}
	if decoded["code"] != "RES001" || decoded["build_id"] != "build-123" {
		t.Errorf("decoded %v", decoded)
	}
}

func TestRegistryCoversEveryConstructor(t *testing.T) {
	at := source.Dummy()
	constructed := []error{
		NewTypeNotFound("T", at),
		NewTypesNotMatched("a", "b", at, at),
		NewVariableNotFound("v", at),
		NewCircularInitialization([]string{"x"}, at),
		NewAnyEqualOperation(at),
		NewFunctionEqualOperation(at),
		NewMixedDefinitionsInLet(at),
		NewCaseArgumentNotUnion("Number", at),
		NewCaseNotExhaustive([]string{"None"}, at),
		NewListCaseArgumentNotList("Number", at),
		NewExportNotFound("main", at),
	}
	for _, err := range constructed {
		ce := err.(*CompileError)
		if _, ok := Registry[ce.Code]; !ok {
			t.Errorf("code %s has no registry entry", ce.Code)
		}
	}
}

package errors

import (
	"encoding/json"

	"github.com/sunholo/erc/internal/source"
)

// Encoded is the structured, machine-readable form of a CompileError.
// The CLI emits this with --json so that tooling (CI, editors) can parse
// diagnostics without scraping formatted text.
type Encoded struct {
	Schema  string               `json:"schema"`
	Code    string               `json:"code"`
	Phase   string               `json:"phase"`
	Message string               `json:"message"`
	BuildID string               `json:"build_id,omitempty"`
	Primary source.Information   `json:"primary"`
	Extra   []source.Information `json:"extra,omitempty"`
}

// SchemaVersion tags the wire shape of Encoded so downstream tooling can
// detect breaking changes.
const SchemaVersion = "erc.error/v1"

// Encode converts a CompileError into its structured form.
func Encode(err *CompileError) Encoded {
	phase := "unknown"
	if info, ok := Registry[err.Code]; ok {
		phase = info.Phase
	}
	return Encoded{
		Schema:  SchemaVersion,
		Code:    err.Code,
		Phase:   phase,
		Message: err.Message,
		Primary: err.Primary,
		Extra:   err.Extra,
	}
}

// WithBuildID stamps the compilation's correlation id onto the encoded
// diagnostic so a host CI system can tie it back to one compile run.
func (e Encoded) WithBuildID(id string) Encoded {
	e.BuildID = id
	return e
}

// MarshalJSONString renders the encoded diagnostic as compact JSON for
// --json CLI output.
func (e Encoded) MarshalJSONString() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

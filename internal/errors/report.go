package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/unicode/norm"
)

var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	locationFmt = color.New(color.FgCyan).SprintFunc()
	caretFmt    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// Report formats a CompileError for terminal output: a bold red
// "Error[CODE]" label, a cyan location, and, when the offending source
// line is available, an NFC-normalized copy of that line with a caret
// under the column. Normalizing first keeps the caret aligned with
// column offsets computed over normalized source.
//
// sourceLine is the raw text of err.Primary's line, or "" if unavailable
// (e.g. for synthesized nodes carrying source.Dummy()).
func Report(err *CompileError, sourceLine string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", errorLabel(fmt.Sprintf("Error[%s]:", err.Code)), err.Message)
	fmt.Fprintf(&b, "  %s %s\n", locationFmt("-->"), locationFmt(err.Primary.String()))

	if sourceLine != "" {
		normalized := string(norm.NFC.Bytes([]byte(sourceLine)))
		fmt.Fprintf(&b, "  %s\n", normalized)
		col := err.Primary.Column
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(&b, "  %s%s\n", strings.Repeat(" ", col-1), caretFmt("^"))
	}

	for _, extra := range err.Extra {
		fmt.Fprintf(&b, "  %s %s\n", locationFmt("also see:"), locationFmt(extra.String()))
	}

	return b.String()
}

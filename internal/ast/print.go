package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an expression as a single-line s-expression-ish form,
// stable enough to diff in tests and snapshot the lowered IR.
func Print(e Expr) string {
	switch x := e.(type) {
	case NumberLiteral:
		return strconv.FormatFloat(x.Value, 'g', -1, 64)
	case BooleanLiteral:
		return strconv.FormatBool(x.Value)
	case NoneLiteral:
		return "none"
	case StringLiteral:
		return strconv.Quote(x.Value)
	case Variable:
		return x.Name
	case ListLiteral:
		parts := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			parts[i] = Print(el)
		}
		if x.Rest != nil {
			return "[" + strings.Join(parts, ", ") + ", ..." + Print(x.Rest) + "]"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Application:
		return fmt.Sprintf("(%s %s)", Print(x.Function), Print(x.Argument))
	case Let:
		return fmt.Sprintf("(let %s = %s in %s)", x.Name, Print(x.Value), Print(x.Body))
	case LetRecursive:
		names := make([]string, len(x.Definitions))
		for i, d := range x.Definitions {
			names[i] = d.Name
		}
		return fmt.Sprintf("(letrec [%s] in %s)", strings.Join(names, ", "), Print(x.Body))
	case LetError:
		return fmt.Sprintf("(let-error %s = %s in %s)", x.Name, Print(x.Value), Print(x.Body))
	case If:
		return fmt.Sprintf("(if %s then %s else %s)", Print(x.Condition), Print(x.Then), Print(x.Else))
	case Case:
		parts := make([]string, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			parts[i] = fmt.Sprintf("(%s: %s -> %s)", alt.Name, alt.Type.String(), Print(alt.Body))
		}
		return fmt.Sprintf("(case %s of %s)", Print(x.Argument), strings.Join(parts, " "))
	case ListCase:
		return fmt.Sprintf("(list-case %s empty=%s (%s::%s)=%s)",
			Print(x.Argument), Print(x.EmptyAlternative), x.FirstName, x.RestName, Print(x.NonEmptyAlternative))
	case Operation:
		return fmt.Sprintf("(%s %s %s)", operatorSymbol(x.Operator), Print(x.LHS), Print(x.RHS))
	case RecordConstruction:
		parts := make([]string, 0, x.Elements.Len())
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			parts = append(parts, fmt.Sprintf("%s=%s", k, Print(v)))
		}
		return fmt.Sprintf("(%s{%s})", x.Type.String(), strings.Join(parts, ", "))
	case RecordElementOperation:
		return fmt.Sprintf("%s.%s", Print(x.Argument), x.Key)
	case RecordUpdate:
		parts := make([]string, 0, x.Elements.Len())
		for _, k := range x.Elements.Keys() {
			v, _ := x.Elements.Get(k)
			parts = append(parts, fmt.Sprintf("%s=%s", k, Print(v)))
		}
		return fmt.Sprintf("{%s | %s}", Print(x.Argument), strings.Join(parts, ", "))
	case TypeCoercion:
		return fmt.Sprintf("coerce(%s, %s, %s)", Print(x.Argument), x.From.String(), x.To.String())
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}

func operatorSymbol(op OperatorKind) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "/="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpPipe:
		return "|>"
	default:
		return "?op"
	}
}

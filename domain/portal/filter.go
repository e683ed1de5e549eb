package portal

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Operator is a CAML comparison element name.
type Operator string

const (
	OpEq         Operator = "Eq"
	OpNeq        Operator = "Neq"
	OpGt         Operator = "Gt"
	OpGeq        Operator = "Geq"
	OpLt         Operator = "Lt"
	OpLeq        Operator = "Leq"
	OpIsNull     Operator = "IsNull"
	OpIsNotNull  Operator = "IsNotNull"
	OpBeginsWith Operator = "BeginsWith"
	OpContains   Operator = "Contains"
	OpIncludes   Operator = "Includes"
)

var operators = []Operator{
	OpEq, OpNeq, OpGt, OpGeq, OpLt, OpLeq,
	OpIsNull, OpIsNotNull, OpBeginsWith, OpContains, OpIncludes,
}

// IsNullCheck reports whether the operator takes no value.
func (o Operator) IsNullCheck() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// ParseOperator resolves an operator name case-insensitively.
func ParseOperator(s string) (Operator, error) {
	for _, op := range operators {
		if strings.EqualFold(string(op), s) {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown filter operator %q", s)
}

// ValueType is the CAML Value Type attribute.
type ValueType string

const (
	TypeText     ValueType = "Text"
	TypeNumber   ValueType = "Number"
	TypeInteger  ValueType = "Integer"
	TypeBoolean  ValueType = "Boolean"
	TypeDateTime ValueType = "DateTime"
	TypeLookup   ValueType = "Lookup"
	TypeUser     ValueType = "User"
	TypeChoice   ValueType = "Choice"
	TypeCounter  ValueType = "Counter"
)

var valueTypes = []ValueType{
	TypeText, TypeNumber, TypeInteger, TypeBoolean, TypeDateTime,
	TypeLookup, TypeUser, TypeChoice, TypeCounter,
}

// ParseValueType resolves a value type name case-insensitively. Empty means Text.
func ParseValueType(s string) (ValueType, error) {
	if s == "" {
		return TypeText, nil
	}
	for _, vt := range valueTypes {
		if strings.EqualFold(string(vt), s) {
			return vt, nil
		}
	}
	return "", fmt.Errorf("unknown filter value type %q", s)
}

// FilterExpression is a CAML predicate placed inside a query's Where element.
// The zero value matches every row.
type FilterExpression struct {
	caml string
}

// RawFilter wraps caller-supplied CAML. It is embedded as-is, so malformed input
// is only detected by the portal.
func RawFilter(caml string) FilterExpression {
	return FilterExpression{caml: strings.TrimSpace(caml)}
}

// IsEmpty reports whether the filter matches everything.
func (f FilterExpression) IsEmpty() bool {
	return f.caml == ""
}

// CAML returns the predicate markup.
func (f FilterExpression) CAML() string {
	return f.caml
}

func (f FilterExpression) String() string {
	return f.caml
}

// Compare builds a single term. Null checks ignore vt and value.
func Compare(op Operator, field string, vt ValueType, value any) FilterExpression {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(string(op))
	b.WriteString(">")
	b.WriteString("<FieldRef Name='")
	b.WriteString(escape(field))
	if op == OpIncludes && (vt == TypeLookup || vt == TypeUser) {
		b.WriteString("' LookupId='TRUE")
	}
	b.WriteString("'/>")
	if !op.IsNullCheck() {
		if vt == "" {
			vt = TypeText
		}
		b.WriteString("<Value Type='")
		b.WriteString(string(vt))
		if vt == TypeDateTime {
			b.WriteString("' IncludeTimeValue='TRUE")
		}
		b.WriteString("'>")
		b.WriteString(escape(formatValue(value)))
		b.WriteString("</Value>")
	}
	b.WriteString("</")
	b.WriteString(string(op))
	b.WriteString(">")
	return FilterExpression{caml: b.String()}
}

func Eq(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpEq, field, vt, value)
}

func Neq(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpNeq, field, vt, value)
}

func Gt(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpGt, field, vt, value)
}

func Geq(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpGeq, field, vt, value)
}

func Lt(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpLt, field, vt, value)
}

func Leq(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpLeq, field, vt, value)
}

func IsNull(field string) FilterExpression {
	return Compare(OpIsNull, field, "", nil)
}

func IsNotNull(field string) FilterExpression {
	return Compare(OpIsNotNull, field, "", nil)
}

func BeginsWith(field string, value string) FilterExpression {
	return Compare(OpBeginsWith, field, TypeText, value)
}

func Contains(field string, value string) FilterExpression {
	return Compare(OpContains, field, TypeText, value)
}

func Includes(field string, vt ValueType, value any) FilterExpression {
	return Compare(OpIncludes, field, vt, value)
}

// And joins terms into nested binary And nodes. Empty terms are skipped.
func And(terms ...FilterExpression) FilterExpression {
	return join("And", terms)
}

// Or joins terms into nested binary Or nodes. Empty terms are skipped.
func Or(terms ...FilterExpression) FilterExpression {
	return join("Or", terms)
}

func join(node string, terms []FilterExpression) FilterExpression {
	nonEmpty := make([]FilterExpression, 0, len(terms))
	for _, t := range terms {
		if !t.IsEmpty() {
			nonEmpty = append(nonEmpty, t)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return FilterExpression{}
	case 1:
		return nonEmpty[0]
	}
	// CAML logical nodes take exactly two children; fold from the right.
	acc := nonEmpty[len(nonEmpty)-1].caml
	for i := len(nonEmpty) - 2; i >= 0; i-- {
		acc = "<" + node + ">" + nonEmpty[i].caml + acc + "</" + node + ">"
	}
	return FilterExpression{caml: acc}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format("2006-01-02T15:04:05Z")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func escape(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer fails.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

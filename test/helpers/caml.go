package helpers

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"spportal/domain/portal"
)

// camlNode is a generic CAML element.
type camlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []camlNode `xml:",any"`
}

func (n camlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n camlNode) child(name string) (camlNode, bool) {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c, true
		}
	}
	return camlNode{}, false
}

// EvaluateView applies a CAML view envelope to rows the way the portal would:
// rows matching the Where clause, in source order, capped by RowLimit.
// Malformed markup and unknown elements are errors.
func EvaluateView(viewXML string, rows []portal.Row) ([]portal.Row, error) {
	var view camlNode
	if err := xml.Unmarshal([]byte(viewXML), &view); err != nil {
		return nil, fmt.Errorf("malformed view: %w", err)
	}
	if view.XMLName.Local != "View" {
		return nil, fmt.Errorf("root element is %q, want View", view.XMLName.Local)
	}

	limit := -1
	if rl, ok := view.child("RowLimit"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rl.Text))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RowLimit %q", rl.Text)
		}
		limit = n
	}

	var where *camlNode
	if q, ok := view.child("Query"); ok {
		if w, ok := q.child("Where"); ok {
			if len(w.Children) != 1 {
				return nil, fmt.Errorf("Where takes one predicate, got %d", len(w.Children))
			}
			where = &w.Children[0]
		}
	}

	out := make([]portal.Row, 0)
	for _, row := range rows {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if where != nil {
			ok, err := evalPredicate(*where, row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func evalPredicate(n camlNode, row portal.Row) (bool, error) {
	op := n.XMLName.Local
	switch op {
	case "And", "Or":
		if len(n.Children) != 2 {
			return false, fmt.Errorf("%s takes two operands, got %d", op, len(n.Children))
		}
		left, err := evalPredicate(n.Children[0], row)
		if err != nil {
			return false, err
		}
		right, err := evalPredicate(n.Children[1], row)
		if err != nil {
			return false, err
		}
		if op == "And" {
			return left && right, nil
		}
		return left || right, nil
	}

	parsed, err := portal.ParseOperator(op)
	if err != nil {
		return false, err
	}
	ref, ok := n.child("FieldRef")
	if !ok || ref.attr("Name") == "" {
		return false, fmt.Errorf("%s has no FieldRef", op)
	}
	actual, present := row[ref.attr("Name")]
	if present && (actual == nil || actual == "") {
		present = false
	}

	if parsed.IsNullCheck() {
		if parsed == portal.OpIsNull {
			return !present, nil
		}
		return present, nil
	}

	value, ok := n.child("Value")
	if !ok {
		return false, fmt.Errorf("%s has no Value", op)
	}
	if !present {
		return false, nil
	}
	return compareValue(parsed, actual, value.attr("Type"), value.Text)
}

func compareValue(op portal.Operator, actual any, valueType, want string) (bool, error) {
	switch op {
	case portal.OpBeginsWith:
		return strings.HasPrefix(fmt.Sprint(actual), want), nil
	case portal.OpContains:
		return strings.Contains(fmt.Sprint(actual), want), nil
	case portal.OpIncludes:
		if items, ok := actual.([]any); ok {
			for _, item := range items {
				if fmt.Sprint(item) == want {
					return true, nil
				}
			}
			return false, nil
		}
		return fmt.Sprint(actual) == want, nil
	}

	cmp, err := order(actual, valueType, want)
	if err != nil {
		return false, err
	}
	switch op {
	case portal.OpEq:
		return cmp == 0, nil
	case portal.OpNeq:
		return cmp != 0, nil
	case portal.OpGt:
		return cmp > 0, nil
	case portal.OpGeq:
		return cmp >= 0, nil
	case portal.OpLt:
		return cmp < 0, nil
	case portal.OpLeq:
		return cmp <= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %s", op)
}

// order compares actual with want, numerically for numeric value types.
func order(actual any, valueType, want string) (int, error) {
	switch valueType {
	case "Number", "Integer", "Counter", "Lookup":
		w, err := strconv.ParseFloat(want, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", want)
		}
		a, err := strconv.ParseFloat(fmt.Sprint(actual), 64)
		if err != nil {
			return 0, fmt.Errorf("field value %v is not a number", actual)
		}
		switch {
		case a < w:
			return -1, nil
		case a > w:
			return 1, nil
		}
		return 0, nil
	case "Boolean":
		a := "0"
		if b, ok := actual.(bool); ok && b {
			a = "1"
		}
		return strings.Compare(a, want), nil
	}
	return strings.Compare(fmt.Sprint(actual), want), nil
}

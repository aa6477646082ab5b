package assertion

import (
	"fmt"
	"strings"
)

// ParseCondition parses a compact condition string of the form
// "[path=]type[:value]". Without a colon the value is nil; without
// "=" the condition applies to the whole payload.
//
// Examples:
//
//	"not_empty"           -> {Type: "not_empty"}
//	"contains:hello"      -> {Type: "contains", Value: "hello"}
//	"user.name=regex:^L"  -> {Path: "user.name", Type: "regex", Value: "^L"}
func ParseCondition(s string) Condition {
	var c Condition

	expr := s
	if path, rest, ok := strings.Cut(s, "="); ok &&
		!strings.Contains(path, ":") {
		c.Path = path
		expr = rest
	}

	parts := strings.SplitN(expr, ":", 2)
	c.Type = parts[0]
	if len(parts) > 1 {
		c.Value = parts[1]
	}
	return c
}

// ParseQuery parses every string with ParseCondition.
func ParseQuery(specs ...string) Query {
	q := make(Query, 0, len(specs))
	for _, s := range specs {
		q = append(q, ParseCondition(s))
	}
	return q
}

// String renders the condition in the compact ParseCondition form.
// Values of multi-value conditions are joined with "|".
func (c Condition) String() string {
	var b strings.Builder
	if c.Path != "" {
		b.WriteString(c.Path)
		b.WriteByte('=')
	}
	b.WriteString(c.Type)
	switch {
	case len(c.Values) > 0:
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			vals[i] = fmt.Sprint(v)
		}
		b.WriteByte(':')
		b.WriteString(strings.Join(vals, "|"))
	case c.Value != nil:
		fmt.Fprintf(&b, ":%v", c.Value)
	}
	return b.String()
}

// String renders the conditions joined by ", ".
func (q Query) String() string {
	parts := make([]string, len(q))
	for i, c := range q {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

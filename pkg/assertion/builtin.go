package assertion

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/stretchr/testify/assert"
)

// evaluateExists passes for any value the path resolved to,
// including nil.
func evaluateExists(_ Condition, _ any) (bool, string) {
	return true, "value exists"
}

// evaluateNotEmpty checks that a value is non-nil and non-empty.
func evaluateNotEmpty(_ Condition, value any) (bool, string) {
	if value == nil {
		return false, "value is nil"
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return false, "string is empty"
		}
	default:
		if isCollection(v) && reflect.ValueOf(v).Len() == 0 {
			return false, "collection is empty"
		}
	}

	return true, "value is not empty"
}

// evaluateEquals compares with type conversion, so a decoded
// float64 equals an int literal of the same value.
func evaluateEquals(c Condition, value any) (bool, string) {
	if assert.ObjectsAreEqualValues(c.Value, value) {
		return true, fmt.Sprintf("equals %v", c.Value)
	}
	return false, fmt.Sprintf("%v does not equal %v", value, c.Value)
}

func evaluateNotEquals(c Condition, value any) (bool, string) {
	if assert.ObjectsAreEqualValues(c.Value, value) {
		return false, fmt.Sprintf("%v equals %v", value, c.Value)
	}
	return true, fmt.Sprintf("does not equal %v", c.Value)
}

// evaluateOneOf checks that a value equals one of Values.
func evaluateOneOf(c Condition, value any) (bool, string) {
	for _, candidate := range c.Values {
		if assert.ObjectsAreEqualValues(candidate, value) {
			return true, fmt.Sprintf("%v is one of %v", value, c.Values)
		}
	}
	return false, fmt.Sprintf("%v is not one of %v", value, c.Values)
}

// evaluateContains checks that a string contains the expected
// substring (case-insensitive), or that a slice holds the
// expected element.
func evaluateContains(c Condition, value any) (bool, string) {
	if str, ok := value.(string); ok {
		expected, ok := c.Value.(string)
		if !ok {
			return false, "expected value is not a string"
		}
		if strings.Contains(
			strings.ToLower(str),
			strings.ToLower(expected),
		) {
			return true, fmt.Sprintf("contains '%s'", expected)
		}
		return false, fmt.Sprintf("does not contain '%s'", expected)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, "value is not a string or a list"
	}
	for i := 0; i < rv.Len(); i++ {
		if assert.ObjectsAreEqualValues(c.Value, rv.Index(i).Interface()) {
			return true, fmt.Sprintf("contains %v", c.Value)
		}
	}
	return false, fmt.Sprintf("does not contain %v", c.Value)
}

// evaluateContainsAny checks that a string contains at least one
// of the expected substrings.
func evaluateContainsAny(c Condition, value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}

	var values []string
	switch v := c.Value.(type) {
	case string:
		values = strings.Split(v, ",")
	case []string:
		values = v
	}
	for _, item := range c.Values {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}

	lower := strings.ToLower(str)
	for _, expected := range values {
		trimmed := strings.TrimSpace(expected)
		if strings.Contains(lower, strings.ToLower(trimmed)) {
			return true, fmt.Sprintf("contains '%s'", trimmed)
		}
	}

	return false, fmt.Sprintf("does not contain any of: %v", values)
}

// evaluateRegex checks that a string matches the expected
// regular expression.
func evaluateRegex(c Condition, value any) (bool, string) {
	str, ok := value.(string)
	if !ok {
		return false, "value is not a string"
	}
	pattern, ok := c.Value.(string)
	if !ok {
		return false, "expected value is not a string"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err)
	}
	if re.MatchString(str) {
		return true, fmt.Sprintf("matches /%s/", pattern)
	}
	return false, fmt.Sprintf("does not match /%s/", pattern)
}

// evaluateType checks the JSON-like type name of a value: one of
// "nil", "string", "number", "bool", "object" or "array".
func evaluateType(c Condition, value any) (bool, string) {
	want, ok := c.Value.(string)
	if !ok {
		return false, "expected value is not a string"
	}
	got := TypeName(value)
	if got == want {
		return true, fmt.Sprintf("is %s", want)
	}
	return false, fmt.Sprintf("is %s, not %s", got, want)
}

// evaluateMinLength checks that a string, list or map has at least
// the expected length.
func evaluateMinLength(c Condition, value any) (bool, string) {
	length, ok := lengthOf(value)
	if !ok {
		return false, "value has no length"
	}
	minLength, ok := toInt(c.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if length >= minLength {
		return true, fmt.Sprintf("length %d >= %d", length, minLength)
	}
	return false, fmt.Sprintf("length %d < %d", length, minLength)
}

func evaluateMaxLength(c Condition, value any) (bool, string) {
	length, ok := lengthOf(value)
	if !ok {
		return false, "value has no length"
	}
	maxLength, ok := toInt(c.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if length <= maxLength {
		return true, fmt.Sprintf("length %d <= %d", length, maxLength)
	}
	return false, fmt.Sprintf("length %d > %d", length, maxLength)
}

// evaluateMin checks that a number is at least the expected
// value.
func evaluateMin(c Condition, value any) (bool, string) {
	n, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}
	limit, ok := toFloat64(c.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if n >= limit {
		return true, fmt.Sprintf("%g >= %g", n, limit)
	}
	return false, fmt.Sprintf("%g < %g", n, limit)
}

// evaluateMax checks that a number does not exceed the expected
// value.
func evaluateMax(c Condition, value any) (bool, string) {
	n, ok := toFloat64(value)
	if !ok {
		return false, "value is not a number"
	}
	limit, ok := toFloat64(c.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if n <= limit {
		return true, fmt.Sprintf("%g <= %g", n, limit)
	}
	return false, fmt.Sprintf("%g > %g", n, limit)
}

// evaluateMinCount checks that a countable value (number, list or
// map) meets a minimum count.
func evaluateMinCount(c Condition, value any) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}
	minCount, ok := toInt(c.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if count >= minCount {
		return true, fmt.Sprintf("count %d >= %d", count, minCount)
	}
	return false, fmt.Sprintf("count %d < %d", count, minCount)
}

// evaluateExactCount checks that a countable value exactly
// matches the expected count.
func evaluateExactCount(c Condition, value any) (bool, string) {
	count, ok := toCount(value)
	if !ok {
		return false, "value is not countable"
	}
	want, ok := toInt(c.Value)
	if !ok {
		return false, "expected value is not a number"
	}
	if count == want {
		return true, fmt.Sprintf("count %d == %d", count, want)
	}
	return false, fmt.Sprintf("count %d != %d", count, want)
}

// evaluateAllValid checks that every item of a list is non-nil and
// not an empty string.
func evaluateAllValid(_ Condition, value any) (bool, string) {
	items, ok := toList(value)
	if !ok {
		return false, "value is not a list"
	}
	for i, item := range items {
		if item == nil {
			return false, fmt.Sprintf("item %d is nil", i)
		}
		if str, ok := item.(string); ok && str == "" {
			return false, fmt.Sprintf("item %d is empty", i)
		}
	}
	return true, "all items are valid"
}

// evaluateNoDuplicates checks that a list contains no duplicate
// values (compared via fmt.Sprintf("%v")).
func evaluateNoDuplicates(_ Condition, value any) (bool, string) {
	items, ok := toList(value)
	if !ok {
		return false, "value is not a list"
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := fmt.Sprintf("%v", item)
		if seen[key] {
			return false, fmt.Sprintf("duplicate found: %s", key)
		}
		seen[key] = true
	}
	return true, "no duplicates found"
}

// --- helpers ---

// TypeName returns the JSON-like type name of v.
func TypeName(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "nil"
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Float32,
		reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Func:
		return "function"
	}
	return rv.Kind().String()
}

func isCollection(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// lengthOf returns the length of a string, list or map.
func lengthOf(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return len([]rune(s)), true
	}
	if !isCollection(v) {
		return 0, false
	}
	return reflect.ValueOf(v).Len(), true
}

// toList converts any slice or array to []any.
func toList(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// toInt converts a numeric value to int.
func toInt(v any) (int, bool) {
	f, ok := toFloat64(v)
	return int(f), ok
}

// toFloat64 converts any integer or float kind, or a numeric
// string as produced by ParseCondition, to float64.
func toFloat64(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// toCount extracts an integer count from a number, list or map.
func toCount(v any) (int, bool) {
	if n, ok := toInt(v); ok {
		return n, true
	}
	if isCollection(v) {
		return reflect.ValueOf(v).Len(), true
	}
	return 0, false
}

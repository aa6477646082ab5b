// Package value provides the fluent value assertion scope used for
// event payloads, response results and standalone values. Checks
// are registered, not run: the owner of the scope decides when and
// against which value they execute.
package value

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"

	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/failure"
)

// Check verifies one captured value. detail is appended to the
// scope name to form the subject of the failure message, e.g.
// "Channel: 0 event: publish -> data".
type Check func(value any, detail string) error

// Asserter is a value assertion scope. Every check method adds one
// Check through the owner's add function and returns the scope;
// End returns to the parent builder.
type Asserter[P any] struct {
	parent P
	name   string
	add    func(Check)
}

// New creates a scope named name that hands its checks to add.
func New[P any](parent P, name string, add func(Check)) *Asserter[P] {
	return &Asserter[P]{parent: parent, name: name, add: add}
}

// End closes the scope and returns the parent builder.
func (a *Asserter[P]) End() P {
	return a.parent
}

func (a *Asserter[P]) check(
	passes func(v any) bool,
	format string,
	args ...any,
) *Asserter[P] {
	a.add(func(v any, detail string) error {
		if passes(v) {
			return nil
		}
		subject := a.name + detail
		return failure.Failf("%s "+format, append([]any{subject}, args...)...)
	})
	return a
}

// IsNil asserts that the value is nil, including typed nil
// pointers, maps, slices, channels and funcs.
func (a *Asserter[P]) IsNil() *Asserter[P] {
	return a.check(func(v any) bool {
		return assert.Nil(&recorder{}, v)
	}, "should be nil.")
}

// IsNotNil asserts that the value is not nil.
func (a *Asserter[P]) IsNotNil() *Asserter[P] {
	return a.check(func(v any) bool {
		return assert.NotNil(&recorder{}, v)
	}, "should not be nil.")
}

// TypeOf asserts the JSON-like type name of the value: "nil",
// "string", "number", "bool", "object", "array" or "function".
func (a *Asserter[P]) TypeOf(typeName string) *Asserter[P] {
	return a.check(func(v any) bool {
		return assertion.TypeName(v) == typeName
	}, "should be type of %s.", typeName)
}

// NotTypeOf asserts that the value is not of the given type name.
func (a *Asserter[P]) NotTypeOf(typeName string) *Asserter[P] {
	return a.check(func(v any) bool {
		return assertion.TypeName(v) != typeName
	}, "should not be type of %s.", typeName)
}

// Equal asserts strict equality: same dynamic type and equal
// value, identity for maps, slices and funcs.
func (a *Asserter[P]) Equal(expected any) *Asserter[P] {
	return a.check(func(v any) bool {
		return strictEqual(expected, v)
	}, "should be strict equal with %v.", expected)
}

// NotEqual is the negation of Equal.
func (a *Asserter[P]) NotEqual(expected any) *Asserter[P] {
	return a.check(func(v any) bool {
		return !strictEqual(expected, v)
	}, "should not be strict equal with %v.", expected)
}

// ContentEqual asserts loose equality: numbers of different kinds
// and convertible types compare by value.
func (a *Asserter[P]) ContentEqual(expected any) *Asserter[P] {
	return a.check(func(v any) bool {
		return assert.ObjectsAreEqualValues(expected, v)
	}, "should be content equal with %v.", expected)
}

// NotContentEqual is the negation of ContentEqual.
func (a *Asserter[P]) NotContentEqual(expected any) *Asserter[P] {
	return a.check(func(v any) bool {
		return !assert.ObjectsAreEqualValues(expected, v)
	}, "should not be content equal with %v.", expected)
}

// DeepEqual asserts structural equality.
func (a *Asserter[P]) DeepEqual(expected any) *Asserter[P] {
	return a.check(func(v any) bool {
		return assert.ObjectsAreEqual(expected, v)
	}, "should be deep equal with %v.", expected)
}

// NotDeepEqual is the negation of DeepEqual.
func (a *Asserter[P]) NotDeepEqual(expected any) *Asserter[P] {
	return a.check(func(v any) bool {
		return !assert.ObjectsAreEqual(expected, v)
	}, "should not be deep equal with %v.", expected)
}

// Matches asserts that the value satisfies every condition of q.
func (a *Asserter[P]) Matches(q assertion.Query) *Asserter[P] {
	a.add(func(v any, detail string) error {
		ok, msg := assertion.Matches(q, v)
		if ok {
			return nil
		}
		return failure.Failf(
			"%s should match with the query (%s).", a.name+detail, msg,
		)
	})
	return a
}

// NotMatches asserts that at least one condition of q fails.
func (a *Asserter[P]) NotMatches(q assertion.Query) *Asserter[P] {
	return a.check(func(v any) bool {
		ok, _ := assertion.Matches(q, v)
		return !ok
	}, "should not match with the query.")
}

// ContainsAllKeys asserts that the value is a map or struct
// holding every key.
func (a *Asserter[P]) ContainsAllKeys(keys ...string) *Asserter[P] {
	return a.check(func(v any) bool {
		present, ok := keySet(v)
		if !ok {
			return false
		}
		for _, k := range keys {
			if !present[k] {
				return false
			}
		}
		return true
	}, "should contain all following keys: %s.", strings.Join(keys, ","))
}

// HasAnyKeys asserts that the value holds at least one key.
func (a *Asserter[P]) HasAnyKeys(keys ...string) *Asserter[P] {
	return a.check(func(v any) bool {
		present, ok := keySet(v)
		if !ok {
			return false
		}
		for _, k := range keys {
			if present[k] {
				return true
			}
		}
		return false
	}, "should contain at least one of these keys: %s.",
		strings.Join(keys, ","))
}

// DoesNotHaveAnyKeys asserts that the value holds none of keys.
func (a *Asserter[P]) DoesNotHaveAnyKeys(keys ...string) *Asserter[P] {
	return a.check(func(v any) bool {
		present, ok := keySet(v)
		if !ok {
			return false
		}
		for _, k := range keys {
			if present[k] {
				return false
			}
		}
		return true
	}, "should not contain any of these keys: %s.",
		strings.Join(keys, ","))
}

// Include asserts that a string contains a substring, a list
// contains an element, or a map contains every entry of a subset
// map.
func (a *Asserter[P]) Include(subset any) *Asserter[P] {
	return a.check(func(v any) bool {
		return includes(v, subset)
	}, "should include %v.", subset)
}

// NotInclude is the negation of Include.
func (a *Asserter[P]) NotInclude(subset any) *Asserter[P] {
	return a.check(func(v any) bool {
		return !includes(v, subset)
	}, "should not include %v.", subset)
}

// OwnInclude asserts that the value's own keys (map entries or
// struct fields) hold every entry of subset.
func (a *Asserter[P]) OwnInclude(subset map[string]any) *Asserter[P] {
	return a.check(func(v any) bool {
		return ownIncludes(v, subset)
	}, "should own include %v.", subset)
}

// NotOwnInclude is the negation of OwnInclude.
func (a *Asserter[P]) NotOwnInclude(subset map[string]any) *Asserter[P] {
	return a.check(func(v any) bool {
		return !ownIncludes(v, subset)
	}, "should not own include %v.", subset)
}

// LengthOf asserts the length of a string, list, map or channel.
func (a *Asserter[P]) LengthOf(length int) *Asserter[P] {
	return a.check(func(v any) bool {
		return assert.Len(&recorder{}, v, length)
	}, "should have a length of %d.", length)
}

// Assert runs a custom predicate. An empty message defaults to
// "Custom assertion should return true."
func (a *Asserter[P]) Assert(fn func(v any) bool, message string) *Asserter[P] {
	if message == "" {
		message = "Custom assertion should return true."
	}
	a.add(func(v any, detail string) error {
		if fn(v) {
			return nil
		}
		return failure.Failf("%s: %s", a.name+detail, message)
	})
	return a
}

// recorder satisfies assert.TestingT so testify comparisons can be
// used as predicates.
type recorder struct{}

func (*recorder) Errorf(string, ...any) {}

func strictEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}
	et, at := reflect.TypeOf(expected), reflect.TypeOf(actual)
	if et != at {
		return false
	}
	if et.Comparable() {
		if eq, ok := compare(expected, actual); ok {
			return eq
		}
		// Interface fields holding slices or maps.
		return assert.ObjectsAreEqual(expected, actual)
	}
	ev, av := reflect.ValueOf(expected), reflect.ValueOf(actual)
	switch et.Kind() {
	case reflect.Slice:
		return ev.Pointer() == av.Pointer() && ev.Len() == av.Len()
	case reflect.Map, reflect.Func:
		return ev.Pointer() == av.Pointer()
	}
	return false
}

// compare reports expected == actual. ok is false when the
// comparison panicked on uncomparable dynamic content.
func compare(expected, actual any) (eq, ok bool) {
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return expected == actual, true
}

func includes(v, subset any) bool {
	if s, ok := v.(string); ok {
		sub, ok := subset.(string)
		return ok && strings.Contains(s, sub)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return assert.Contains(&recorder{}, v, subset)
	case reflect.Map:
		if reflect.ValueOf(subset).Kind() != reflect.Map {
			return false
		}
		return assert.Subset(&recorder{}, v, subset)
	}
	return false
}

func ownIncludes(v any, subset map[string]any) bool {
	for k, want := range subset {
		got, found := assertion.Lookup(v, k)
		if !found || !assert.ObjectsAreEqual(want, got) {
			return false
		}
	}
	return true
}

// keySet lists the keys of a string keyed map, or the exported
// field names and json names of a struct.
func keySet(v any) (map[string]bool, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	keys := map[string]bool{}
	switch rv.Kind() {
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			keys[fmt.Sprint(k.Interface())] = true
		}
		return keys, true
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			keys[f.Name] = true
			if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
				keys[tag] = true
			}
		}
		return keys, true
	}
	return nil, false
}

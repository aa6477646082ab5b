package assertion

import (
	"reflect"
	"strconv"
	"strings"
)

// Lookup resolves a dot separated path inside payload. Segments
// select map keys, exported struct fields or slice indices. An
// empty path returns payload itself.
func Lookup(payload any, path string) (any, bool) {
	if path == "" {
		return payload, true
	}

	current := payload
	for _, segment := range strings.Split(path, ".") {
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(v any, segment string) (any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		next, ok := typed[segment]
		return next, ok
	case []any:
		i, err := strconv.Atoi(segment)
		if err != nil || i < 0 || i >= len(typed) {
			return nil, false
		}
		return typed[i], true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		key := reflect.ValueOf(segment).Convert(rv.Type().Key())
		next := rv.MapIndex(key)
		if !next.IsValid() {
			return nil, false
		}
		return next.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(segment)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		field, ok := structField(rv, segment)
		if !ok {
			return nil, false
		}
		return field.Interface(), true
	}
	return nil, false
}

// structField matches segment against the exported field name or
// its json tag name.
func structField(rv reflect.Value, segment string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if f.Name == segment || tag == segment {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

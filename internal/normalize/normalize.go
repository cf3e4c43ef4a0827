// Package normalize converts arbitrary Go value graphs into trees made of
// nothing but nil, bool, number, string, []any and map[string]any, so any
// provider response object can be handed straight to a JSON encoder.
package normalize

import (
	"fmt"
	"reflect"
	"strings"
)

// Linker is the capability exposed by link-wrapper values. A value that
// implements it (and does not expose an enumerable field set) normalizes to
// its href string directly.
type Linker interface {
	Href() string
}

// Value normalizes v recursively. It is total: anything it does not
// recognize degrades to its fmt string form rather than failing. The input
// must be acyclic; a cyclic graph does not terminate.
//
// Precedence matters: a struct that also implements Linker is treated as a
// field set, not a link. The link shortcut only applies to values whose
// fields cannot be enumerated.
func Value(v any) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Value(el)
		}
		return out
	case []byte:
		return string(t)
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = Value(iter.Value().Interface())
			}
			return out
		}
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Value(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		if fields, ok := structFields(rv); ok {
			return fields
		}
	}

	if l, ok := v.(Linker); ok {
		return l.Href()
	}
	return fmt.Sprint(v)
}

// structFields enumerates the exported fields of a struct value as a
// mapping. It reports false when there is nothing to enumerate, so values
// like time.Time fall through to the string fallback instead of becoming
// empty maps.
func structFields(rv reflect.Value) (map[string]any, bool) {
	rt := rv.Type()
	out := make(map[string]any)
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = Value(rv.Field(i).Interface())
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

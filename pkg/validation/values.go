package validation

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ----------------------------------------------------------------------------
// Value helpers
// ----------------------------------------------------------------------------

// truthy reports whether a value counts as present. nil, false, zero
// numbers, NaN and the empty string are falsy; everything else is truthy.
func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	}
	if f, ok := asNumber(value); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// asNumber returns the float64 value of any Go numeric type.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// toNumber converts a value to a number the way arithmetic operators do:
// nil and the empty string are 0, booleans are 0 or 1, strings are parsed
// and anything else is NaN.
func toNumber(value any) float64 {
	if value == nil {
		return 0
	}
	if f, ok := asNumber(value); ok {
		return f
	}
	switch v := value.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// stringify renders a value as text. Slices join their elements with a
// comma, nil renders as the empty string.
func stringify(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("%v", value)
}

// length returns the length of strings (in characters), slices, arrays and
// maps. ok is false for values without a length.
func length(value any) (n int, ok bool) {
	if s, isString := value.(string); isString {
		return utf8.RuneCountInString(s), true
	}
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// isPrimitive reports whether a value is nil, a boolean, a number or a
// string.
func isPrimitive(value any) bool {
	switch value.(type) {
	case nil, bool, string:
		return true
	}
	_, ok := asNumber(value)
	return ok
}

// strictEqual compares two values without conversion. Numbers compare by
// value regardless of their Go type; other values must have the same
// dynamic type and be equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := asNumber(a); ok {
		fb, ok := asNumber(b)
		return ok && fa == fb
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// primitiveEqual reports whether a write of b over a is a no-op: only
// primitives can be equal, composite values always count as a change.
func primitiveEqual(a, b any) bool {
	if !isPrimitive(a) {
		return false
	}
	return strictEqual(a, b)
}

// compare orders two values the way relational operators do: two strings
// compare lexically, anything else numerically. ok is false when either
// side is not a number.
func compare(a, b any) (cmp int, ok bool) {
	if sa, isString := a.(string); isString {
		if sb, isString := b.(string); isString {
			return strings.Compare(sa, sb), true
		}
	}
	fa, fb := toNumber(a), toNumber(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}

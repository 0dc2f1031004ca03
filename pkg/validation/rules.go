package validation

import (
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
)

// builtinRules is the catalog every registry starts with.
var builtinRules = []RuleDefinition{
	{Name: "required", Validate: validateRequired, Message: "This field is required."},
	{Name: "min", Validate: validateMin, Message: "Please enter a value greater than or equal to {0}."},
	{Name: "max", Validate: validateMax, Message: "Please enter a value less than or equal to {0}."},
	{Name: "minLength", Validate: validateMinLength, Message: "Please enter at least {0} characters."},
	{Name: "maxLength", Validate: validateMaxLength, Message: "Please enter no more than {0} characters."},
	{Name: "pattern", Validate: validatePattern, Message: "Please check this value."},
	{Name: "step", Validate: validateStep, Message: "The value must increment by {0}"},
	{Name: "email", Validate: validateEmail, Message: "{0} is not a proper email address"},
	{Name: "date", Validate: validateDate, Message: "Please enter a proper date"},
	{Name: "dateISO", Validate: validateDateISO, Message: "Please enter a proper date"},
	{Name: "number", Validate: validateNumber, Message: "Please enter a number"},
	{Name: "digits", Validate: validateDigits, Message: "Please enter a digit"},
	{Name: "phoneUS", Validate: validatePhoneUS, Message: "Please specify a valid phone number"},
	{Name: "equal", Validate: validateEqual, Message: "values must equal"},
	{Name: "notEqual", Validate: validateNotEqual, Message: "please choose another value."},
	{Name: "unique", Validate: validateUnique, Message: "Please make sure the value is unique."},
}

// ----------------------------------------------------------------------------
// Presence and size
// ----------------------------------------------------------------------------

func validateRequired(value, required any) bool {
	if value == nil {
		return !truthy(required)
	}
	s := stringify(value)
	if _, ok := value.(string); ok {
		s = strings.TrimSpace(s)
	}
	return !truthy(required) || len(s) > 0
}

func validateMin(value, min any) bool {
	if !truthy(value) {
		return true
	}
	c, ok := compare(value, min)
	return ok && c >= 0
}

func validateMax(value, max any) bool {
	if !truthy(value) {
		return true
	}
	c, ok := compare(value, max)
	return ok && c <= 0
}

func validateMinLength(value, minLength any) bool {
	if !truthy(value) {
		return false
	}
	n, ok := length(value)
	return ok && float64(n) >= toNumber(minLength)
}

func validateMaxLength(value, maxLength any) bool {
	if !truthy(value) {
		return true
	}
	n, ok := length(value)
	return ok && float64(n) <= toNumber(maxLength)
}

// validateStep treats a nil value as 0, so an empty field passes. Pair it
// with required to reject empty input.
func validateStep(value, step any) bool {
	return math.Mod(toNumber(value), toNumber(step)) == 0
}

// ----------------------------------------------------------------------------
// Patterns
// ----------------------------------------------------------------------------

var patternCache sync.Map // string -> *regexp.Regexp

func compilePattern(expr string) (*regexp.Regexp, bool) {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp), true
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		log().Warn("invalid pattern", "pattern", expr, "error", err)
		return nil, false
	}
	patternCache.Store(expr, re)
	return re, true
}

func validatePattern(value, pattern any) bool {
	if !truthy(value) {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	var re *regexp.Regexp
	switch p := pattern.(type) {
	case *regexp.Regexp:
		re = p
	case string:
		if re, ok = compilePattern(p); !ok {
			return false
		}
	default:
		return false
	}
	return re.MatchString(s)
}

// emailUnicode stands for the non-ASCII letter ranges accepted in every
// part of an address.
const emailUnicode = `\x{00A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}`

var emailPattern = regexp.MustCompile(strings.ReplaceAll(
	`(?i)^(`+
		// dot-atom local part
		"(([a-z]|\\d|[!#\\$%&'\\*\\+\\-\\/=\\?\\^_`{\\|}~]|[UNI])+(\\.([a-z]|\\d|[!#\\$%&'\\*\\+\\-\\/=\\?\\^_`{\\|}~]|[UNI])+)*)"+
		`|`+
		// quoted local part
		`((\x22)((((\x20|\x09)*(\x0d\x0a))?(\x20|\x09)+)?(([\x01-\x08\x0b\x0c\x0e-\x1f\x7f]|\x21|[\x23-\x5b]|[\x5d-\x7e]|[UNI])|(\\([\x01-\x09\x0b\x0c\x0d-\x7f]|[UNI]))))*(((\x20|\x09)*(\x0d\x0a))?(\x20|\x09)+)?(\x22))`+
		`)@(`+
		// domain labels
		`(([a-z]|\d|[UNI])|(([a-z]|\d|[UNI])([a-z]|\d|-|\.|_|~|[UNI])*([a-z]|\d|[UNI])))\.`+
		`)+(`+
		// top level label
		`([a-z]|[UNI])|(([a-z]|[UNI])([a-z]|\d|-|\.|_|~|[UNI])*([a-z]|[UNI]))`+
		`)$`,
	"UNI", emailUnicode))

var (
	dateISOPattern = regexp.MustCompile(`^\d{4}[/-]\d{1,2}[/-]\d{1,2}$`)
	numberPattern  = regexp.MustCompile(`^-?(?:\d+|\d{1,3}(?:,\d{3})+)(?:\.\d+)?$`)
	digitsPattern  = regexp.MustCompile(`^\d+$`)
	phoneUSPattern = regexp.MustCompile(`^(1-?)?(\([2-9]\d{2}\)|[2-9]\d{2})-?[2-9]\d{2}-?\d{4}$`)
	whitespace     = regexp.MustCompile(`\s+`)
)

func validateEmail(value, enabled any) bool {
	if !truthy(value) {
		return true
	}
	return truthy(enabled) && emailPattern.MatchString(stringify(value))
}

// dateLayouts are the textual date forms accepted by the date rule.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon Jan 2 2006",
}

func parsesAsDate(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return !v.IsZero()
	case *time.Time:
		return v != nil && !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	}
	if f, ok := asNumber(value); ok {
		// Milliseconds since the epoch
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return false
}

func validateDate(value, enabled any) bool {
	return truthy(enabled) && parsesAsDate(value)
}

func validateDateISO(value, enabled any) bool {
	return truthy(enabled) && dateISOPattern.MatchString(stringify(value))
}

func validateNumber(value, enabled any) bool {
	return truthy(enabled) && numberPattern.MatchString(stringify(value))
}

func validateDigits(value, enabled any) bool {
	return truthy(enabled) && digitsPattern.MatchString(stringify(value))
}

func validatePhoneUS(value, enabled any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	s = whitespace.ReplaceAllString(s, "")
	return truthy(enabled) && len(s) > 9 && phoneUSPattern.MatchString(s)
}

// ----------------------------------------------------------------------------
// Comparison
// ----------------------------------------------------------------------------

func validateEqual(value, other any) bool {
	return strictEqual(value, other)
}

func validateNotEqual(value, other any) bool {
	return !strictEqual(value, other)
}

// UniqueParams configures the unique rule.
type UniqueParams struct {
	// Collection holds the values the cell must be unique among. It is a
	// slice or a parameter source resolving to one.
	Collection any

	// ValueAccessor extracts the compared value from a collection item.
	// Items are compared directly when nil.
	ValueAccessor func(item any) any

	// ExternalValue, when set, is the value the cell's own entry in the
	// collection currently holds. It may be a parameter source. When it
	// differs from the cell's value the collection does not contain the
	// cell yet, so a single match is already a duplicate.
	ExternalValue any
}

// uniqueParams accepts UniqueParams, a pointer to one, or a map with the
// keys collection, externalValue, valueKey and valueAccessor.
func uniqueParams(params any) (UniqueParams, bool) {
	switch p := params.(type) {
	case UniqueParams:
		return p, true
	case *UniqueParams:
		if p == nil {
			return UniqueParams{}, false
		}
		return *p, true
	case map[string]any:
		u := UniqueParams{
			Collection:    p["collection"],
			ExternalValue: p["externalValue"],
		}
		if fn, ok := p["valueAccessor"].(func(any) any); ok {
			u.ValueAccessor = fn
		} else if key, ok := p["valueKey"].(string); ok && key != "" {
			u.ValueAccessor = fieldAccessor(key)
		}
		return u, true
	}
	return UniqueParams{}, false
}

// fieldAccessor reads key from map items, unwrapping cells.
func fieldAccessor(key string) func(any) any {
	return func(item any) any {
		if k, ok := item.(interface{ Lookup(string) any }); ok {
			return resolveValue(k.Lookup(key))
		}
		if m, ok := item.(map[string]any); ok {
			return resolveValue(m[key])
		}
		return nil
	}
}

func validateUnique(value, params any) bool {
	opts, ok := uniqueParams(params)
	if !ok {
		return false
	}
	collection := resolveValue(opts.Collection)
	if !truthy(value) || !truthy(collection) {
		return true
	}
	external := resolveValue(opts.ExternalValue)

	counter := 0
	for _, item := range items(collection) {
		if opts.ValueAccessor != nil {
			item = opts.ValueAccessor(item)
		}
		if strictEqual(value, item) {
			counter++
		}
	}

	threshold := 2
	if external != nil && !strictEqual(value, external) {
		threshold = 1
	}
	return counter < threshold
}

// items lists the elements of a slice or array.
func items(collection any) []any {
	if s, ok := collection.([]any); ok {
		return s
	}
	if k, ok := collection.(Keyed); ok {
		return k.Values()
	}
	rv := reflect.ValueOf(collection)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

package validation

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		required any
		want     bool
	}{
		{"nil required", nil, true, false},
		{"nil not required", nil, false, true},
		{"blank string", "  ", true, false},
		{"empty string", "", true, false},
		{"text", "x", true, true},
		{"disabled passes anything", "x", false, true},
		{"disabled passes blank", "", false, true},
		{"zero is present", 0, true, true},
		{"false is present", false, true, true},
		{"empty slice", []any{}, true, false},
		{"slice", []any{1}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateRequired(tt.value, tt.required))
		})
	}
}

func TestMinMax(t *testing.T) {
	assert.True(t, validateMin(nil, 3), "absent value passes")
	assert.True(t, validateMin(0, 3), "falsy value passes")
	assert.True(t, validateMin(5, 3))
	assert.True(t, validateMin(3, 3))
	assert.False(t, validateMin(2, 3))
	assert.True(t, validateMin("5", 3), "numeric strings compare as numbers")
	assert.False(t, validateMin("abc", 3), "non-numeric strings never compare")
	assert.True(t, validateMin("b", "a"), "two strings compare lexically")
	assert.True(t, validateMin(3.5, int64(3)))

	assert.True(t, validateMax(nil, 3))
	assert.True(t, validateMax(3, 3))
	assert.False(t, validateMax(4, 3))
	assert.True(t, validateMax(2.5, 3))
}

func TestLength(t *testing.T) {
	assert.False(t, validateMinLength(nil, 3), "minLength requires a value")
	assert.False(t, validateMinLength("", 3))
	assert.False(t, validateMinLength("ab", 3))
	assert.True(t, validateMinLength("abc", 3))
	assert.True(t, validateMinLength("héé", 3), "length counts characters")
	assert.True(t, validateMinLength([]any{1, 2, 3}, 3))
	assert.False(t, validateMinLength(12345, 3), "numbers have no length")

	assert.True(t, validateMaxLength(nil, 3))
	assert.True(t, validateMaxLength("", 3))
	assert.True(t, validateMaxLength("abc", 3))
	assert.False(t, validateMaxLength("abcd", 3))
	assert.False(t, validateMaxLength(12345, 3))
}

func TestPattern(t *testing.T) {
	assert.True(t, validatePattern("", `^\d+$`))
	assert.True(t, validatePattern(nil, `^\d+$`))
	assert.True(t, validatePattern("123", `^\d+$`))
	assert.False(t, validatePattern("12a", `^\d+$`))
	assert.True(t, validatePattern("abc", regexp.MustCompile(`^[a-c]+$`)))
	assert.False(t, validatePattern("abc", `(`), "an invalid expression never matches")
	assert.False(t, validatePattern(42, `^\d+$`), "non-strings fail instead of panicking")
}

func TestStep(t *testing.T) {
	assert.True(t, validateStep(10, 5))
	assert.False(t, validateStep(11, 5))
	assert.True(t, validateStep(nil, 5), "nil counts as 0")
	assert.True(t, validateStep("15", 5))
	assert.False(t, validateStep("abc", 5))
	assert.False(t, validateStep(10, 0))
	assert.True(t, validateStep(0.5, 0.25))
}

func TestEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.org",
		"USER+tag@Example.COM",
		`"quoted name"@example.com`,
		"jörg@exämple.de",
	}
	for _, addr := range valid {
		assert.True(t, validateEmail(addr, true), addr)
	}

	invalid := []string{
		"plain",
		"@example.com",
		"user@",
		"user@example",
		"a..b@example.com",
		"user@-example.com",
	}
	for _, addr := range invalid {
		assert.False(t, validateEmail(addr, true), addr)
	}

	assert.True(t, validateEmail("", true), "empty address is allowed")
	assert.False(t, validateEmail("user@example.com", false), "disabled rule fails present values")
}

func TestDates(t *testing.T) {
	assert.True(t, validateDate("2024-02-29", true))
	assert.True(t, validateDate("2024-02-29T10:00:00Z", true))
	assert.True(t, validateDate("02/29/2024", true))
	assert.True(t, validateDate("Jan 2, 2024", true))
	assert.True(t, validateDate(time.Now(), true))
	assert.True(t, validateDate(1700000000000, true))
	assert.False(t, validateDate("not a date", true))
	assert.False(t, validateDate("", true))
	assert.False(t, validateDate(nil, true))
	assert.False(t, validateDate("2024-02-29", false))

	assert.True(t, validateDateISO("2024-02-29", true))
	assert.True(t, validateDateISO("2024/2/9", true))
	assert.False(t, validateDateISO("24-02-29", true))
	assert.False(t, validateDateISO("2024-02-29T00:00", true))
	assert.False(t, validateDateISO("2024-02-29", false))
}

func TestNumberAndDigits(t *testing.T) {
	for _, v := range []any{"1", "-1", "1.5", "1,000", "12,345.67", 42, 3.25} {
		assert.True(t, validateNumber(v, true), "%v", v)
	}
	for _, v := range []any{"", "1,00", "abc", "1.", "--1", nil} {
		assert.False(t, validateNumber(v, true), "%v", v)
	}
	assert.False(t, validateNumber("1", false))

	assert.True(t, validateDigits("0123", true))
	assert.True(t, validateDigits(7, true))
	assert.False(t, validateDigits("-1", true))
	assert.False(t, validateDigits("1.0", true))
	assert.False(t, validateDigits("1", false))
}

func TestPhoneUS(t *testing.T) {
	for _, v := range []string{"212-555-1234", "(212) 555-1234", "1-212-555-1234", "2125551234"} {
		assert.True(t, validatePhoneUS(v, true), v)
	}
	for _, v := range []string{"112-555-1234", "212-155-1234", "555-1234", ""} {
		assert.False(t, validatePhoneUS(v, true), v)
	}
	assert.False(t, validatePhoneUS(2125551234, true), "numbers are not phone numbers")
	assert.False(t, validatePhoneUS("2125551234", false))
}

func TestEqual(t *testing.T) {
	assert.True(t, validateEqual("a", "a"))
	assert.False(t, validateEqual("1", 1), "no conversion between strings and numbers")
	assert.True(t, validateEqual(1, 1.0), "numbers compare by value")
	assert.True(t, validateEqual(nil, nil))
	assert.False(t, validateEqual(nil, false))
	assert.True(t, validateEqual([]any{1}, []any{1}))

	assert.True(t, validateNotEqual("a", "b"))
	assert.False(t, validateNotEqual(3, 3))
}

func TestUnique(t *testing.T) {
	collection := []any{1, 2, 2, 3}

	assert.False(t, validateUnique(2, UniqueParams{Collection: collection}),
		"two matches reach the threshold of two")
	assert.False(t, validateUnique(2, UniqueParams{Collection: collection, ExternalValue: 5}),
		"an external value that differs lowers the threshold to one")
	assert.True(t, validateUnique(4, UniqueParams{Collection: collection}))
	assert.True(t, validateUnique(3, UniqueParams{Collection: collection}),
		"a single match is the cell itself")
	assert.True(t, validateUnique(3, UniqueParams{Collection: collection, ExternalValue: 3}),
		"an external value equal to the value keeps the threshold at two")
	assert.False(t, validateUnique(3, UniqueParams{Collection: collection, ExternalValue: 9}))

	assert.True(t, validateUnique(nil, UniqueParams{Collection: collection}), "absent value passes")
	assert.True(t, validateUnique(2, UniqueParams{}), "missing collection passes")
	assert.False(t, validateUnique(2, "not params"))
}

func TestUniqueSourcesAndAccessors(t *testing.T) {
	people := []any{
		map[string]any{"name": "ann"},
		map[string]any{"name": "bob"},
		map[string]any{"name": "ann"},
	}

	assert.False(t, validateUnique("ann", UniqueParams{
		Collection:    func() any { return people },
		ValueAccessor: func(item any) any { return item.(map[string]any)["name"] },
	}))

	assert.True(t, validateUnique("bob", map[string]any{
		"collection": NewObservable(people),
		"valueKey":   "name",
	}))

	assert.False(t, validateUnique("bob", &UniqueParams{
		Collection:    people,
		ExternalValue: NewObservable("carl"),
		ValueAccessor: fieldAccessor("name"),
	}))
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "Please enter at least 3 characters.",
		FormatMessage("Please enter at least {0} characters.", 3))
	assert.Equal(t, "between 1 and {0}", FormatMessage("between {0} and {0}", 1),
		"only the first placeholder is replaced")
	assert.Equal(t, "no placeholder", FormatMessage("no placeholder", 3))
	assert.Equal(t, "true is not a proper email address",
		FormatMessage("{0} is not a proper email address", true))
}

func TestValueHelpers(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(""))
	assert.False(t, truthy(0))
	assert.False(t, truthy(0.0))
	assert.False(t, truthy(math.NaN()))
	assert.False(t, truthy(false))
	assert.False(t, truthy([]any(nil)))
	assert.True(t, truthy([]any{}))
	assert.True(t, truthy("0"))
	assert.True(t, truthy(struct{}{}))

	assert.Equal(t, "1,2,3", stringify([]any{1, 2, 3}))
	assert.Equal(t, "1.5", stringify(1.5))
	assert.Equal(t, "", stringify(nil))

	assert.True(t, primitiveEqual("a", "a"))
	assert.False(t, primitiveEqual([]any{1}, []any{1}), "composite values always change")
	assert.False(t, primitiveEqual(1, "1"))
}

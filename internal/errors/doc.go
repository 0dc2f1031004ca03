// Package errors provides structured, coded errors for rvalid.
//
// Configuration mistakes (an unknown rule name, an anonymous rule without
// a validator, a malformed rule set) are programmer errors and are
// reported loudly through *Error values. Rule violations are not errors:
// they are data carried by the validated cell.
//
// # Error Codes
//
// Each error has a unique code (e.g., "V001") that maps to a category,
// a short message and a detailed explanation:
//
//	err := errors.New("V001").
//	    WithDetail(`rule "minLen" is not registered`).
//	    WithSuggestion(`did you mean "minLength"?`)
//
//	fmt.Println(err.Format())
//
// Two *Error values match under errors.Is when their codes are equal, so
// package-level sentinels built with New can be compared against errors
// enriched with detail or a source location.
//
// # Source Locations
//
// Errors raised while parsing rule-set documents carry the file, line and
// column of the offending node; Format prints the surrounding lines.
package errors

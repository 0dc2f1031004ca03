package validation

import (
	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// Sentinel configuration errors. Errors returned by this package carry the
// same code as one of these and match it with errors.Is.
var (
	// ErrUnknownRule is returned when a rule name is not registered.
	ErrUnknownRule = verrors.New("V001")

	// ErrMissingValidator is returned when a rule has no validator function.
	ErrMissingValidator = verrors.New("V002")

	// ErrUnknownExtender is returned by Extend for a name with no extender.
	ErrUnknownExtender = verrors.New("V003")

	// ErrInvalidExtenderArg is returned when an extender cannot use its argument.
	ErrInvalidExtenderArg = verrors.New("V004")
)

func unknownRule(name string) *verrors.Error {
	return verrors.New("V001").WithDetailf("rule %q is not registered", name)
}

func unknownExtender(name string) *verrors.Error {
	return verrors.New("V003").WithDetailf("no extender named %q", name)
}

func invalidExtenderArg(name string, arg any) *verrors.Error {
	return verrors.New("V004").WithDetailf("extender %q cannot use %T", name, arg)
}

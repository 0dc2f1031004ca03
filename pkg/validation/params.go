package validation

// Source is a reactive value that can be read as a rule parameter.
// *Observable implements it, as do reactive.Signal[any] and
// reactive.Memo[any]. Reading a Source while a cell is evaluated makes
// the cell depend on it.
type Source interface {
	Get() any
}

// RuleContext binds a registered rule to the parameters it is evaluated
// with and an optional message override.
type RuleContext struct {
	// Rule is the registered rule name.
	Rule string

	// Params is a literal value, a func() any callback or a Source. It is
	// resolved every time the rule is evaluated. nil means true.
	Params any

	// Message overrides the rule's default message when non-empty.
	Message string
}

// resolveParams turns a parameter source into the value passed to the
// validator. A callback may itself return a Source. Only absent params
// become true; a source that currently yields nil passes nil.
func resolveParams(params any) any {
	if params == nil {
		return true
	}
	return resolveValue(params)
}

// resolveValue resolves a parameter source without applying the default,
// for nested sources such as UniqueParams.Collection.
func resolveValue(v any) any {
	if fn, ok := v.(func() any); ok {
		v = fn()
	}
	if src, ok := v.(Source); ok {
		v = src.Get()
	}
	return v
}

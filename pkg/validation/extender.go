package validation

import (
	"github.com/google/uuid"

	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// AnonymousRule is an inline rule that is not registered by the caller.
type AnonymousRule struct {
	Validate ValidatorFunc
	Message  string
	Params   any
}

// RuleOptions is the structured argument accepted by rule shortcuts. When
// Message is set and Params is nil, the rule is evaluated with true.
type RuleOptions struct {
	Message string
	Params  any
}

// Extension names an extender and the argument to apply it with.
type Extension struct {
	Name string
	Arg  any
}

// AddRule makes o validatable with r if needed and appends ctx to its
// rules. The rule name must be registered in the registry of o's state.
func (r *Registry) AddRule(o *Observable, ctx RuleContext) error {
	s := Attach(o, WithRegistry(r))
	if !s.registry.Has(ctx.Rule) {
		err := unknownRule(ctx.Rule)
		log().Error("rule rejected", "rule", ctx.Rule, "error", err)
		return err
	}
	s.rules.Update(func(rules []RuleContext) []RuleContext {
		next := make([]RuleContext, len(rules), len(rules)+1)
		copy(next, rules)
		return append(next, ctx)
	})
	return nil
}

// AddAnonymousRule registers rule under a generated name and adds it to o.
func (r *Registry) AddAnonymousRule(o *Observable, rule AnonymousRule) error {
	if rule.Validate == nil {
		err := verrors.New("V002").WithDetail("anonymous rule")
		log().Error("anonymous rule rejected", "error", err)
		return err
	}
	message := rule.Message
	if message == "" {
		message = "Error"
	}

	// The rule lives in the registry the cell evaluates against.
	reg := Attach(o, WithRegistry(r)).registry
	name := AnonymousPrefix + uuid.NewString()
	if err := reg.Register(name, rule.Validate, message); err != nil {
		return err
	}
	return reg.AddRule(o, RuleContext{Rule: name, Params: rule.Params})
}

// InstallShortcut creates an extender named after rule that adds the rule
// to a cell. The argument is either the parameters or a RuleOptions.
// Installing over an existing extender does nothing.
func (r *Registry) InstallShortcut(rule string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.extenders[rule]; exists {
		return
	}
	r.extenders[rule] = extenderEntry{fn: r.shortcut(rule), shortcut: true}
	log().Debug("shortcut installed", "rule", rule)
}

// InstallAllShortcuts installs a shortcut for every registered rule that
// has no extender yet.
func (r *Registry) InstallAllShortcuts() {
	for _, name := range r.Names() {
		r.InstallShortcut(name)
	}
}

// RegisterExtender installs or replaces a custom extender.
func (r *Registry) RegisterExtender(name string, fn Extender) {
	r.mu.Lock()
	r.extenders[name] = extenderEntry{fn: fn}
	r.mu.Unlock()
}

// HasExtender reports whether an extender is installed under name.
func (r *Registry) HasExtender(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extenders[name]
	return ok
}

// Extend applies the named extender to o.
func (r *Registry) Extend(o *Observable, name string, arg any) error {
	r.mu.RLock()
	e, ok := r.extenders[name]
	r.mu.RUnlock()
	if !ok {
		err := unknownExtender(name)
		log().Error("extend failed", "extender", name, "error", err)
		return err
	}
	return e.fn(o, arg)
}

func (r *Registry) shortcut(rule string) Extender {
	return func(o *Observable, arg any) error {
		switch opts := arg.(type) {
		case RuleOptions:
			return r.AddRule(o, shortcutContext(rule, opts))
		case *RuleOptions:
			if opts != nil {
				return r.AddRule(o, shortcutContext(rule, *opts))
			}
		}
		return r.AddRule(o, RuleContext{Rule: rule, Params: arg})
	}
}

func shortcutContext(rule string, opts RuleOptions) RuleContext {
	params := opts.Params
	if opts.Message != "" && params == nil {
		params = true
	}
	return RuleContext{Rule: rule, Params: params, Message: opts.Message}
}

// validatableExtender attaches on true and detaches on false.
func (r *Registry) validatableExtender(o *Observable, arg any) error {
	enable, ok := arg.(bool)
	if !ok {
		return invalidExtenderArg("validatable", arg)
	}
	if enable {
		Attach(o, WithRegistry(r))
	} else {
		Detach(o)
	}
	return nil
}

// validationExtender adds one or more anonymous rules.
func (r *Registry) validationExtender(o *Observable, arg any) error {
	switch rules := arg.(type) {
	case AnonymousRule:
		return r.AddAnonymousRule(o, rules)
	case *AnonymousRule:
		if rules != nil {
			return r.AddAnonymousRule(o, *rules)
		}
	case []AnonymousRule:
		for _, rule := range rules {
			if err := r.AddAnonymousRule(o, rule); err != nil {
				return err
			}
		}
		return nil
	}
	return invalidExtenderArg("validation", arg)
}

// AddRule adds a rule from the Default registry to o.
func AddRule(o *Observable, ctx RuleContext) error {
	return registryFor(o).AddRule(o, ctx)
}

// AddAnonymousRule adds an inline rule to o.
func AddAnonymousRule(o *Observable, rule AnonymousRule) error {
	return registryFor(o).AddAnonymousRule(o, rule)
}

// InstallShortcut installs a shortcut in the Default registry.
func InstallShortcut(rule string) {
	Default.InstallShortcut(rule)
}

// InstallAllShortcuts installs shortcuts for every rule in the Default
// registry.
func InstallAllShortcuts() {
	Default.InstallAllShortcuts()
}

// Extend applies an extender from the registry o is attached to, or from
// Default for plain cells.
func Extend(o *Observable, name string, arg any) error {
	return registryFor(o).Extend(o, name, arg)
}

// ExtendAll applies extensions in order and stops at the first error.
func ExtendAll(o *Observable, exts ...Extension) error {
	for _, ext := range exts {
		if err := Extend(o, ext.Name, ext.Arg); err != nil {
			return err
		}
	}
	return nil
}

func registryFor(o *Observable) *Registry {
	if s := o.State(); s != nil {
		return s.registry
	}
	return Default
}

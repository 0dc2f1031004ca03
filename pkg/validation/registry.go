package validation

import (
	"sort"
	"sync"

	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// ValidatorFunc reports whether value satisfies a rule with the given
// resolved parameters.
type ValidatorFunc func(value, params any) bool

// RuleDefinition is a named validator with its default message template.
// The template may contain one "{0}" placeholder for the parameters.
type RuleDefinition struct {
	Name     string
	Validate ValidatorFunc
	Message  string
}

// Extender attaches behavior to a cell from a single argument.
type Extender func(o *Observable, arg any) error

type extenderEntry struct {
	fn Extender

	// shortcut marks extenders created by InstallShortcut; they are bound
	// to the registry that created them and are rebuilt by Clone.
	shortcut bool
}

// Registry maps rule names to definitions and extender names to extenders.
// It is safe for concurrent use; writes are expected to happen at setup.
type Registry struct {
	mu        sync.RWMutex
	rules     map[string]RuleDefinition
	extenders map[string]extenderEntry
}

// NewRegistry creates a registry holding the built-in rules and the
// validatable and validation extenders.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.rules = make(map[string]RuleDefinition, len(builtinRules))
	for _, def := range builtinRules {
		r.rules[def.Name] = def
	}
	r.extenders = map[string]extenderEntry{
		"validatable": {fn: r.validatableExtender},
		"validation":  {fn: r.validationExtender},
	}
}

// Register inserts or overwrites a rule.
func (r *Registry) Register(name string, validate ValidatorFunc, message string) error {
	if validate == nil {
		err := verrors.New("V002").WithDetailf("rule %q", name)
		log().Error("rule registration rejected", "rule", name, "error", err)
		return err
	}

	r.mu.Lock()
	_, existed := r.rules[name]
	r.rules[name] = RuleDefinition{Name: name, Validate: validate, Message: message}
	r.mu.Unlock()

	if existed {
		log().Debug("rule overridden", "rule", name)
	} else {
		log().Debug("rule registered", "rule", name)
	}
	return nil
}

// Lookup returns the named rule or an error matching ErrUnknownRule.
func (r *Registry) Lookup(name string) (RuleDefinition, error) {
	r.mu.RLock()
	def, ok := r.rules[name]
	r.mu.RUnlock()
	if !ok {
		return RuleDefinition{}, unknownRule(name)
	}
	return def, nil
}

// Has reports whether a rule is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[name]
	return ok
}

// Names returns the registered rule names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Unregister removes a rule. Cells still referencing it fail loudly on
// their next evaluation.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.rules, name)
	r.mu.Unlock()
}

// Reset restores the built-in rules and extenders, discarding everything
// registered or installed since.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
	log().Debug("registry reset")
}

// Clone returns an independent copy of the registry. Shortcut extenders
// are rebound to the copy.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		rules:     make(map[string]RuleDefinition, len(r.rules)),
		extenders: make(map[string]extenderEntry, len(r.extenders)),
	}
	for name, def := range r.rules {
		c.rules[name] = def
	}
	for name, e := range r.extenders {
		switch {
		case name == "validatable":
			c.extenders[name] = extenderEntry{fn: c.validatableExtender}
		case name == "validation":
			c.extenders[name] = extenderEntry{fn: c.validationExtender}
		case e.shortcut:
			c.extenders[name] = extenderEntry{fn: c.shortcut(name), shortcut: true}
		default:
			c.extenders[name] = e
		}
	}
	return c
}

// Default is the process-wide registry used by the package-level helpers.
// It holds the built-in catalog from package initialization on.
var Default *Registry

func init() {
	Default = NewRegistry()
}

// Register inserts or overwrites a rule in the Default registry.
func Register(name string, validate ValidatorFunc, message string) error {
	return Default.Register(name, validate, message)
}

// Lookup returns a rule from the Default registry.
func Lookup(name string) (RuleDefinition, error) {
	return Default.Lookup(name)
}

// ResetRegistry restores the Default registry to its built-in state.
func ResetRegistry() {
	Default.Reset()
}

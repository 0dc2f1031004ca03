package validation

import (
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/rvalid/pkg/reactive"
)

// AnonymousPrefix starts the generated names of anonymous rules.
const AnonymousPrefix = "anon-"

// State is the validation side-record of a cell.
type State struct {
	cell     *Observable
	registry *Registry

	rules    *reactive.Signal[[]RuleContext]
	modified *reactive.Signal[bool]
	valid    *reactive.Memo[bool]
	change   *reactive.Subscription

	mu  sync.Mutex
	err string
}

// Registry returns the registry the state resolves rule names against.
func (s *State) Registry() *Registry {
	return s.registry
}

func (s *State) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *State) setMessage(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

// evaluate runs the rules in order against the current value and stops at
// the first failure.
func (s *State) evaluate() bool {
	value := s.cell.value.Get()
	rules := s.rules.Get()
	obs := currentObserver()

	for _, ctx := range rules {
		params := resolveParams(ctx.Params)

		def, err := s.registry.Lookup(ctx.Rule)
		if err != nil {
			log().Error("rule lookup failed during evaluation", "rule", ctx.Rule, "error", err)
			panic(err)
		}

		start := time.Now()
		ok := def.Validate(value, params)
		if obs != nil {
			obs.RuleEvaluated(ruleLabel(ctx.Rule), ok, time.Since(start))
		}

		if !ok {
			msg := ctx.Message
			if msg == "" {
				msg = def.Message
			}
			s.setMessage(FormatMessage(msg, params))
			return false
		}
	}

	s.setMessage("")
	return true
}

// Option configures Attach and NewGroup.
type Option func(*options)

type options struct {
	registry *Registry
	deep     bool
	mode     Mode
}

func buildOptions(opts []Option) options {
	o := options{registry: Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = Default
	}
	return o
}

// WithRegistry resolves rule names against r instead of Default.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// Attach makes o validatable and returns its State. Attaching an already
// validatable cell returns the existing State untouched.
func Attach(o *Observable, opts ...Option) *State {
	cfg := buildOptions(opts)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != nil {
		return o.state
	}

	s := &State{
		cell:     o,
		registry: cfg.registry,
		rules: reactive.NewSignal[[]RuleContext](nil).
			WithEquals(func(a, b []RuleContext) bool { return false }),
		modified: reactive.NewSignal(false),
	}
	s.valid = reactive.NewMemo(s.evaluate)
	s.change = o.value.Subscribe(func(any) {
		s.modified.Set(true)
	})
	o.state = s

	log().Debug("cell attached", "cell", o.ID())
	return s
}

// Detach removes validation from o and disposes its derived computation
// and change subscription. Detaching a plain cell does nothing.
func Detach(o *Observable) {
	o.mu.Lock()
	s := o.state
	o.state = nil
	o.mu.Unlock()

	if s == nil {
		return
	}
	s.valid.Dispose()
	s.change.Dispose()
	s.rules.Set(nil)
	s.setMessage("")

	log().Debug("cell detached", "cell", o.ID())
}

// ruleLabel names a rule for observers. Generated anonymous names are
// collapsed into one label.
func ruleLabel(rule string) string {
	if strings.HasPrefix(rule, AnonymousPrefix) {
		return "anonymous"
	}
	return rule
}

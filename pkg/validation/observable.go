package validation

import (
	"sync"

	"github.com/vango-dev/rvalid/pkg/reactive"
)

// Observable is a reactive cell holding a value of any type. Writing a
// primitive equal to the current value is a no-op; writing any other value
// always notifies dependents.
//
// An Observable is validatable while a State is attached to it.
type Observable struct {
	value *reactive.Signal[any]

	mu    sync.RWMutex
	state *State
}

// NewObservable creates a plain, non-validatable cell.
func NewObservable(initial any) *Observable {
	return &Observable{
		value: reactive.NewSignal[any](initial).WithEquals(primitiveEqual),
	}
}

// Get returns the current value and tracks the read.
func (o *Observable) Get() any {
	if o == nil {
		return nil
	}
	return o.value.Get()
}

// Peek returns the current value without tracking.
func (o *Observable) Peek() any {
	if o == nil {
		return nil
	}
	return o.value.Peek()
}

// Set writes a new value.
func (o *Observable) Set(v any) {
	o.value.Set(v)
}

// Update replaces the value with fn applied to it.
func (o *Observable) Update(fn func(any) any) {
	o.value.Update(fn)
}

// Subscribe calls fn with the new value after every change.
func (o *Observable) Subscribe(fn func(any)) *reactive.Subscription {
	return o.value.Subscribe(fn)
}

// ID returns the identifier of the underlying signal.
func (o *Observable) ID() uint64 {
	return o.value.ID()
}

// State returns the attached validation state, or nil.
func (o *Observable) State() *State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// IsValidatable reports whether a State is attached.
func (o *Observable) IsValidatable() bool {
	return o.State() != nil
}

// IsValid reports whether every rule passes for the current value.
// Cells without validation state are always valid.
func (o *Observable) IsValid() bool {
	s := o.State()
	if s == nil {
		return true
	}
	return s.valid.Get()
}

// IsModified reports whether the value was written since attachment.
func (o *Observable) IsModified() bool {
	s := o.State()
	if s == nil {
		return false
	}
	return s.modified.Get()
}

// SetModified overrides the modified flag. Groups use it to reveal
// messages for untouched cells.
func (o *Observable) SetModified(modified bool) {
	if s := o.State(); s != nil {
		s.modified.Set(modified)
	}
}

// Error returns the message of the first failing rule, or "" when the
// cell is valid or not validatable.
func (o *Observable) Error() string {
	s := o.State()
	if s == nil {
		return ""
	}
	s.valid.Get()
	return s.message()
}

// Rules returns a copy of the attached rule contexts in evaluation order.
func (o *Observable) Rules() []RuleContext {
	s := o.State()
	if s == nil {
		return nil
	}
	return append([]RuleContext(nil), s.rules.Get()...)
}

// ClearRules removes every rule while keeping the cell validatable.
func (o *Observable) ClearRules() {
	if s := o.State(); s != nil {
		s.rules.Set(nil)
	}
}

// Extend applies extensions in order and stops at the first error.
func (o *Observable) Extend(exts ...Extension) error {
	return ExtendAll(o, exts...)
}

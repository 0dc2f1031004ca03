package validation

import (
	"reflect"

	"github.com/vango-dev/rvalid/pkg/reactive"
)

// Validated is a cell whose value is an object graph. It keeps a group
// over the current value and a validity signal in sync with it.
//
// A Validated created from a primitive without options has no group and
// behaves like a validatable cell.
type Validated struct {
	*Observable

	group *Group
	valid *reactive.Signal[bool]
	subs  []*reactive.Subscription
	watch *reactive.Memo[[]string]
}

// NewValidated creates a Validated holding initial.
func NewValidated(initial any, opts ...Option) *Validated {
	v := &Validated{Observable: NewObservable(initial)}
	if !isObject(initial) && len(opts) == 0 {
		Attach(v.Observable)
		return v
	}

	root := initial
	if !isObject(root) {
		root = map[string]any{}
	}
	v.group = NewGroup(root, opts...)
	v.valid = reactive.NewSignal(v.group.IsValid())

	v.subs = append(v.subs, v.Observable.Subscribe(func(next any) {
		if !isObject(next) {
			next = map[string]any{}
		}
		v.group.Refresh(next)
		if v.group.Mode() == ModePull {
			v.watch.MarkDirty()
		}
		v.valid.Set(v.group.IsValid())
	}))

	v.watch = reactive.NewMemo(v.group.trackedErrors)
	v.subs = append(v.subs, v.watch.Subscribe(func(errs []string) {
		v.valid.Set(len(errs) == 0)
	}))
	return v
}

// Group returns the group over the current value, or nil for a primitive
// Validated.
func (v *Validated) Group() *Group {
	return v.group
}

// IsValid reports whether every cell in the current value is valid.
func (v *Validated) IsValid() bool {
	if v.group == nil {
		return v.Observable.IsValid()
	}
	return v.valid.Get()
}

// Errors returns the group's errors, or the cell's own error for a
// primitive Validated.
func (v *Validated) Errors() []string {
	if v.group == nil {
		if v.Observable.IsValid() {
			return []string{}
		}
		return []string{v.Observable.Error()}
	}
	return v.group.Errors()
}

// Dispose stops keeping the validity signal in sync.
func (v *Validated) Dispose() {
	for _, sub := range v.subs {
		sub.Dispose()
	}
	if v.watch != nil {
		v.watch.Dispose()
	}
	if v.group != nil {
		v.group.Dispose()
	}
}

// isObject reports whether v can hold cells.
func isObject(v any) bool {
	if isNil(v) {
		return false
	}
	switch v.(type) {
	case Keyed, *Observable:
		return true
	}
	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

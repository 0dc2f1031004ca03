package validation

import (
	"slices"
	"sync"

	"github.com/vango-dev/rvalid/pkg/reactive"
)

// Mode selects how a group evaluates.
type Mode int

const (
	// ModePush walks the graph once and derives the error list from the
	// members' validity, recomputing when any member changes.
	ModePush Mode = iota

	// ModePull walks the graph again on every query.
	ModePull
)

// String returns "push" or "pull".
func (m Mode) String() string {
	if m == ModePull {
		return "pull"
	}
	return "push"
}

// WithDeep makes a group recurse past the root's direct children.
func WithDeep(deep bool) Option {
	return func(o *options) {
		o.deep = deep
	}
}

// WithMode sets the group evaluation mode.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// Group aggregates the validity of every cell reachable from a root. It
// does not own its members.
type Group struct {
	opts options

	mu      sync.Mutex
	root    any
	members []*Observable

	// errors is the derived error list in push mode.
	errors *reactive.Memo[[]string]
}

// NewGroup creates a group over root. Cells found without validation
// state are made validatable.
func NewGroup(root any, opts ...Option) *Group {
	g := &Group{
		opts: buildOptions(opts),
		root: root,
	}
	if g.opts.mode == ModePush {
		reactive.Untracked(func() {
			g.members = collect(root, g.opts.deep, g.opts.registry)
		})
		g.errors = reactive.NewMemo(g.computeErrors)
	}

	log().Debug("group created",
		"mode", g.opts.mode.String(),
		"deep", g.opts.deep,
		"members", len(g.members),
	)
	return g
}

// Mode returns the evaluation mode.
func (g *Group) Mode() Mode {
	return g.opts.mode
}

// Deep reports whether the group recurses without bound.
func (g *Group) Deep() bool {
	return g.opts.deep
}

// Root returns the current root.
func (g *Group) Root() any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.root
}

// Errors returns the messages of the invalid members in traversal order.
// In push mode the read is tracked; in pull mode it is not.
func (g *Group) Errors() []string {
	if g.opts.mode == ModePull {
		var errs []string
		reactive.Untracked(func() {
			errs = g.pull()
		})
		return errs
	}
	return slices.Clone(g.errors.Get())
}

// IsValid reports whether no member is invalid.
func (g *Group) IsValid() bool {
	return len(g.Errors()) == 0
}

// Members returns the cells found by the latest traversal. Pull groups
// traverse first.
func (g *Group) Members() []*Observable {
	if g.opts.mode == ModePull {
		reactive.Untracked(g.retraverse)
	}
	return g.snapshot()
}

// ShowAllMessages marks every member as modified.
func (g *Group) ShowAllMessages() {
	if g.opts.mode == ModePull {
		reactive.Untracked(g.retraverse)
	}
	members := g.snapshot()
	reactive.Batch(func() {
		for _, m := range members {
			m.SetModified(true)
		}
	})
}

// Refresh replaces the root and traverses it again. Push groups then
// recompute their error list.
func (g *Group) Refresh(root any) {
	g.mu.Lock()
	g.root = root
	g.mu.Unlock()

	if g.opts.mode == ModePull {
		return
	}
	reactive.Untracked(g.retraverse)
	g.errors.MarkDirty()
}

// Dispose releases the derived error list of a push group. The group keeps
// answering with its last result.
func (g *Group) Dispose() {
	if g.errors != nil {
		g.errors.Dispose()
	}
}

func (g *Group) snapshot() []*Observable {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.members)
}

func (g *Group) retraverse() {
	g.mu.Lock()
	root := g.root
	g.mu.Unlock()

	members := collect(root, g.opts.deep, g.opts.registry)

	g.mu.Lock()
	g.members = members
	g.mu.Unlock()
}

func (g *Group) pull() []string {
	g.retraverse()
	return g.evaluate(g.snapshot())
}

func (g *Group) computeErrors() []string {
	return g.evaluate(g.snapshot())
}

// trackedErrors evaluates the group inside the caller's tracking scope.
func (g *Group) trackedErrors() []string {
	if g.opts.mode == ModePull {
		return g.pull()
	}
	return g.errors.Get()
}

func (g *Group) evaluate(members []*Observable) []string {
	errs := make([]string, 0)
	for _, m := range members {
		if !m.IsValid() {
			errs = append(errs, m.Error())
		}
	}
	if obs := currentObserver(); obs != nil {
		obs.GroupEvaluated(g.opts.mode, len(members), len(errs))
	}
	return errs
}

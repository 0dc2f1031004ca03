package ruleset

import (
	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/validation"
)

// Model is a document bound to a rule set. It holds one cell per leaf
// field and one nested Model per container field, in declaration order.
// Groups traverse a Model through its Values method.
type Model struct {
	set    *RuleSet
	keys   []string
	values map[string]any

	// cells indexes every leaf cell by dotted path; paths keeps their
	// declaration order.
	cells map[string]*validation.Observable
	paths []string
}

// FieldError is the message of one invalid field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Bind creates a Model for doc. Rule names are resolved in reg, or in
// validation.Default when reg is nil.
func Bind(rs *RuleSet, doc map[string]any, reg *validation.Registry) (*Model, error) {
	if reg == nil {
		reg = validation.Default
	}
	if err := rs.Validate(reg); err != nil {
		return nil, err
	}

	root := &Model{set: rs, cells: make(map[string]*validation.Observable)}
	root.build(rs.Fields, "", doc, root)

	var err error
	walkFields(rs.Fields, "", func(path string, f Field) {
		if err != nil || f.IsContainer() {
			return
		}
		cell := root.cells[path]
		validation.Attach(cell, validation.WithRegistry(reg))
		for _, r := range f.Rules {
			ctx := validation.RuleContext{
				Rule:    r.Rule,
				Params:  root.bindParams(r.Params),
				Message: r.Message,
			}
			if addErr := reg.AddRule(cell, ctx); addErr != nil {
				err = addErr
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (m *Model) build(fields []Field, prefix string, doc map[string]any, root *Model) {
	m.values = make(map[string]any, len(fields))
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		m.keys = append(m.keys, f.Name)

		if f.IsContainer() {
			nested, _ := doc[f.Name].(map[string]any)
			child := &Model{set: m.set, cells: root.cells}
			child.build(f.Fields, path, nested, root)
			m.values[f.Name] = child
			continue
		}

		cell := validation.NewObservable(doc[f.Name])
		m.values[f.Name] = cell
		root.cells[path] = cell
		root.paths = append(root.paths, path)
	}
}

// bindParams replaces {ref: path} parameters, at any depth, with the cell
// at path.
func (m *Model) bindParams(params any) any {
	if path, ok := refPath(params); ok {
		return m.cells[path]
	}
	switch p := params.(type) {
	case map[string]any:
		out := make(map[string]any, len(p))
		for k, v := range p {
			out[k] = m.bindParams(v)
		}
		return out
	case []any:
		out := make([]any, len(p))
		for i, v := range p {
			out[i] = m.bindParams(v)
		}
		return out
	}
	return params
}

// RuleSet returns the rule set the model was bound to.
func (m *Model) RuleSet() *RuleSet {
	return m.set
}

// Values returns the fields in declaration order.
func (m *Model) Values() []any {
	out := make([]any, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.values[k]
	}
	return out
}

// Lookup returns the cell or nested model named key.
func (m *Model) Lookup(key string) any {
	return m.values[key]
}

// Field returns the cell at a dotted path, or nil.
func (m *Model) Field(path string) *validation.Observable {
	return m.cells[path]
}

// Paths returns the leaf paths in declaration order.
func (m *Model) Paths() []string {
	return append([]string(nil), m.paths...)
}

// Set writes the value of the field at path.
func (m *Model) Set(path string, value any) error {
	cell, ok := m.cells[path]
	if !ok {
		return verrors.New("V012").WithDetailf("no field %q", path)
	}
	cell.Set(value)
	return nil
}

// FieldErrors returns the message of every invalid field in declaration
// order.
func (m *Model) FieldErrors() []FieldError {
	errs := make([]FieldError, 0)
	for _, path := range m.paths {
		cell := m.cells[path]
		if !cell.IsValid() {
			errs = append(errs, FieldError{Path: path, Message: cell.Error()})
		}
	}
	return errs
}

// ShowAll marks every field as modified.
func (m *Model) ShowAll() {
	for _, path := range m.paths {
		m.cells[path].SetModified(true)
	}
}

// Document returns the current field values as a nested map.
func (m *Model) Document() map[string]any {
	doc := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		switch v := m.values[k].(type) {
		case *Model:
			doc[k] = v.Document()
		case *validation.Observable:
			doc[k] = v.Peek()
		}
	}
	return doc
}

// GroupOptions returns the grouping options of the rule set, falling back
// to the process configuration.
func (m *Model) GroupOptions() []validation.Option {
	cfg := validation.CurrentConfig()
	if m.set != nil && m.set.Grouping != nil {
		cfg.Grouping = *m.set.Grouping
	}
	return cfg.GroupOptions()
}

// Group creates a group over the model. opts override the rule set's
// grouping options.
func (m *Model) Group(opts ...validation.Option) *validation.Group {
	return validation.NewGroup(m, append(m.GroupOptions(), opts...)...)
}

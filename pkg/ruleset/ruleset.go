package ruleset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/validation"
)

// RuleSet is a parsed rule set document.
type RuleSet struct {
	Name     string                     `yaml:"name" json:"name"`
	Grouping *validation.GroupingConfig `yaml:"grouping,omitempty" json:"grouping,omitempty"`
	Fields   []Field                    `yaml:"fields" json:"fields"`

	// Source is the file or URI the rule set was read from.
	Source string `yaml:"-" json:"-"`
}

// Field declares one field of a form. A field with nested fields is a
// container; its own rules are ignored.
type Field struct {
	Name   string  `yaml:"name" json:"name"`
	Rules  []Rule  `yaml:"rules,omitempty" json:"rules,omitempty"`
	Fields []Field `yaml:"fields,omitempty" json:"fields,omitempty"`

	Line   int `yaml:"-" json:"-"`
	Column int `yaml:"-" json:"-"`
}

// Rule attaches one registered rule to a field.
type Rule struct {
	Rule    string `yaml:"rule" json:"rule"`
	Params  any    `yaml:"params,omitempty" json:"params,omitempty"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`

	Line   int `yaml:"-" json:"-"`
	Column int `yaml:"-" json:"-"`
}

// UnmarshalYAML records the position of the field in the document.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	type plain Field
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = Field(p)
	f.Line, f.Column = node.Line, node.Column
	return nil
}

// UnmarshalYAML records the position of the rule in the document.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	type plain Rule
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Rule(p)
	r.Line, r.Column = node.Line, node.Column
	return nil
}

// IsContainer reports whether the field groups nested fields.
func (f Field) IsContainer() bool {
	return len(f.Fields) > 0
}

// Parse reads a YAML or JSON rule set.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, verrors.New("V010").Wrap(err)
	}
	return &rs, nil
}

// Paths returns the dotted path of every field in declaration order,
// containers before their children.
func (rs *RuleSet) Paths() []string {
	var paths []string
	walkFields(rs.Fields, "", func(path string, _ Field) {
		paths = append(paths, path)
	})
	return paths
}

// Validate checks that field names are unique per level, that every rule
// is registered in reg and that every reference names a field.
// A nil registry means validation.Default.
func (rs *RuleSet) Validate(reg *validation.Registry) error {
	if reg == nil {
		reg = validation.Default
	}

	declared := make(map[string]bool)
	var err error
	walkFields(rs.Fields, "", func(path string, f Field) {
		if err != nil {
			return
		}
		if f.Name == "" || strings.Contains(f.Name, ".") {
			err = rs.locate(verrors.New("V010").WithDetailf("invalid field name %q", f.Name), f.Line, f.Column)
			return
		}
		if declared[path] {
			err = rs.locate(verrors.New("V013").WithDetailf("field %q is declared twice", path), f.Line, f.Column)
			return
		}
		declared[path] = true
	})
	if err != nil {
		return err
	}

	walkFields(rs.Fields, "", func(path string, f Field) {
		if err != nil || f.IsContainer() {
			return
		}
		for _, r := range f.Rules {
			if !reg.Has(r.Rule) {
				err = rs.locate(verrors.New("V001").WithDetailf("field %q uses rule %q", path, r.Rule), r.Line, r.Column)
				return
			}
			for _, ref := range references(r.Params) {
				if !declared[ref] || ref == path {
					err = rs.locate(verrors.New("V012").WithDetailf("%s -> %s", path, ref), r.Line, r.Column)
					return
				}
			}
		}
	})
	return err
}

// locate adds the document position to err when the rule set came from a
// file.
func (rs *RuleSet) locate(err *verrors.Error, line, column int) *verrors.Error {
	if rs.Source == "" || line == 0 {
		return err
	}
	return err.WithLocation(rs.Source, line, column)
}

func walkFields(fields []Field, prefix string, fn func(path string, f Field)) {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		fn(path, f)
		walkFields(f.Fields, path, fn)
	}
}

// refPath returns the path of a {ref: path} parameter.
func refPath(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	path, ok := m["ref"].(string)
	return path, ok
}

// references lists the paths referenced anywhere in params.
func references(params any) []string {
	if path, ok := refPath(params); ok {
		return []string{path}
	}
	var refs []string
	switch p := params.(type) {
	case map[string]any:
		for _, v := range p {
			refs = append(refs, references(v)...)
		}
	case []any:
		for _, v := range p {
			refs = append(refs, references(v)...)
		}
	}
	return refs
}

// Set is a collection of rule sets keyed by name.
type Set map[string]*RuleSet

// Add inserts rs, rejecting a second rule set with the same name.
func (s Set) Add(rs *RuleSet) error {
	if _, exists := s[rs.Name]; exists {
		return errors.Newf("rule set %q loaded twice", rs.Name)
	}
	s[rs.Name] = rs
	return nil
}

// Names returns the rule set names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String implements fmt.Stringer.
func (rs *RuleSet) String() string {
	return fmt.Sprintf("%s (%d fields)", rs.Name, len(rs.Paths()))
}

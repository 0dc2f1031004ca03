// Package validation attaches rule-based validation to reactive cells and
// aggregates validity across object graphs.
//
// A cell is an *Observable. It becomes validatable when a State side-record
// is attached to it, either explicitly with Attach or implicitly by adding
// a rule:
//
//	name := validation.NewObservable("")
//	validation.AddRule(name, validation.RuleContext{Rule: "required"})
//	validation.AddRule(name, validation.RuleContext{Rule: "minLength", Params: 3})
//
//	name.IsValid() // false
//	name.Error()   // "This field is required."
//
// Validity is a derived computation over the cell's value and its rules.
// Rules evaluate in insertion order and stop at the first failure; Error
// holds the formatted message of that rule only.
//
// # Registry
//
// Rules are looked up by name in a Registry. The process-wide Default
// registry is populated with the built-in catalog when the package is
// loaded. Register custom rules next, then install extenders:
//
//	validation.Register("even", func(v, _ any) bool { ... }, "Must be even")
//	validation.InstallAllShortcuts()
//	validation.Extend(count, "even", true)
//
// Init installs all shortcuts when Config.RegisterExtenders is set.
//
// # Groups
//
// NewGroup walks an object graph and collects every *Observable it finds.
// In push mode (the default) the graph is walked once and the error list is
// a memo over the members' validity. In pull mode every query walks the
// graph again, so cells added to or removed from the graph are picked up.
//
//	g := validation.NewGroup(form, validation.WithDeep(true))
//	g.IsValid()
//	g.ShowAllMessages()
package validation

// Package ruleset reads declarative rule sets and binds them to documents.
//
// A rule set names the fields of a form and the rules each field carries:
//
//	name: signup
//	grouping: {deep: true, observable: false}
//	fields:
//	  - name: password
//	    rules: [{rule: required}]
//	  - name: confirm
//	    rules:
//	      - {rule: equal, params: {ref: password}, message: "Passwords must match"}
//
// Bind turns a rule set and a data document into a Model: one validation
// cell per field, nested fields grouped under their parent. Parameters of
// the form {ref: path} are bound to the cell at that dotted path, so the
// rule follows the other field's value.
package ruleset

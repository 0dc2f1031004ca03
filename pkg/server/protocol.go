package server

import (
	"maps"
	"slices"

	"github.com/vango-dev/rvalid/pkg/validation"
)

// Frame types exchanged on live sessions.
const (
	// FrameSet writes one field: {"type":"set","field":"user.name","value":"x"}.
	FrameSet = "set"

	// FrameLoad writes every field of a document in one step:
	// {"type":"load","document":{...}}.
	FrameLoad = "load"

	// FrameShowAll reveals the messages of untouched fields.
	FrameShowAll = "showAll"

	// FrameState is sent by the server whenever the visible state changes.
	FrameState = "state"

	// FrameError reports a rejected client frame.
	FrameError = "error"
)

// ValidateRequest is the body of POST /v1/validate/{ruleset}.
type ValidateRequest struct {
	Document map[string]any `json:"document"`

	// ShowAll reports the messages of every field, not only modified ones.
	ShowAll bool `json:"showAll"`
}

// ValidateResponse is the result of validating a document.
type ValidateResponse struct {
	Valid bool `json:"valid"`

	// Errors holds the messages of the invalid group members in traversal
	// order, whether visible or not.
	Errors []string `json:"errors"`

	// Fields maps the dotted path of every field with a visible message to
	// that message.
	Fields map[string]string `json:"fields"`
}

// ClientFrame is a frame sent by a live client.
type ClientFrame struct {
	Type     string         `json:"type"`
	Field    string         `json:"field,omitempty"`
	Value    any            `json:"value,omitempty"`
	Document map[string]any `json:"document,omitempty"`
}

// StateFrame is the validation state of a live session.
type StateFrame struct {
	Type   string            `json:"type"`
	Seq    uint64            `json:"seq"`
	Valid  bool              `json:"valid"`
	Errors []string          `json:"errors"`
	Fields map[string]string `json:"fields"`
}

func (f StateFrame) sameState(other StateFrame) bool {
	return f.Valid == other.Valid &&
		slices.Equal(f.Errors, other.Errors) &&
		maps.Equal(f.Fields, other.Fields)
}

// ErrorFrame reports a rejected client frame. The session stays open.
type ErrorFrame struct {
	Type  string        `json:"type"`
	Error ErrorResponse `json:"error"`
}

// RuleInfo describes a registered rule.
type RuleInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RuleSetInfo describes a loaded rule set.
type RuleSetInfo struct {
	Name     string                     `json:"name"`
	Fields   []string                   `json:"fields"`
	Grouping *validation.GroupingConfig `json:"grouping,omitempty"`
}

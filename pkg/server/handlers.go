package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/ruleset"
	"github.com/vango-dev/rvalid/pkg/validation"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	rules := make([]RuleInfo, 0, len(names))
	for _, name := range names {
		def, err := s.registry.Lookup(name)
		if err != nil {
			// unregistered since Names
			continue
		}
		rules = append(rules, RuleInfo{Name: name, Message: def.Message})
	}
	s.writeJSON(w, r, http.StatusOK, rules)
}

func (s *Server) handleRuleSets(w http.ResponseWriter, r *http.Request) {
	names := s.rulesets.Names()
	infos := make([]RuleSetInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, ruleSetInfo(s.rulesets[name]))
	}
	s.writeJSON(w, r, http.StatusOK, infos)
}

func (s *Server) handleRuleSet(w http.ResponseWriter, r *http.Request) {
	rs, err := s.lookupRuleSet(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, ruleSetInfo(rs))
}

func ruleSetInfo(rs *ruleset.RuleSet) RuleSetInfo {
	return RuleSetInfo{Name: rs.Name, Fields: rs.Paths(), Grouping: rs.Grouping}
}

// handleValidate validates one document with a pull group over a fresh
// model.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	rs, err := s.lookupRuleSet(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req ValidateRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, verrors.New("V021").WithDetail(err.Error()).Wrap(err))
		return
	}
	if req.Document == nil {
		req.Document = map[string]any{}
	}

	model, err := ruleset.Bind(rs, req.Document, s.registry)
	if err != nil {
		s.writeError(w, r, errors.Wrapf(err, "bind rule set %s", rs.Name))
		return
	}

	group := model.Group(validation.WithMode(validation.ModePull))
	if req.ShowAll {
		group.ShowAllMessages()
	}
	errs := group.Errors()
	resp := ValidateResponse{
		Valid:  len(errs) == 0,
		Errors: errs,
		Fields: visibleFields(model, validation.CurrentConfig()),
	}

	SpanFromContext(r.Context()).SetAttributes(
		attribute.String("rvalid.ruleset", rs.Name),
		attribute.Bool("rvalid.valid", resp.Valid),
		attribute.Int("rvalid.errors", len(errs)),
	)
	s.writeJSON(w, r, http.StatusOK, resp)
}

// visibleFields returns the visible message of every leaf field of m.
func visibleFields(m *ruleset.Model, cfg validation.Config) map[string]string {
	fields := make(map[string]string)
	for _, path := range m.Paths() {
		if msg := validation.VisibleMessage(m.Field(path), cfg); msg != "" {
			fields[path] = msg
		}
	}
	return fields
}

func (s *Server) lookupRuleSet(r *http.Request) (*ruleset.RuleSet, error) {
	name := chi.URLParam(r, "ruleset")
	rs, ok := s.rulesets[name]
	if !ok {
		return nil, verrors.New("V020").WithDetailf("no rule set named %q", name)
	}
	return rs, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "encode response", "error", err, "path", r.URL.Path)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp, status := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "error", err, "path", r.URL.Path)
	}
	s.writeJSON(w, r, status, resp)
}

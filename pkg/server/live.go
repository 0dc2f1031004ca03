package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	verrors "github.com/vango-dev/rvalid/internal/errors"
)

// handleLive upgrades to a websocket and serves one live session on the
// request goroutine.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	rs, err := s.lookupRuleSet(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Reserve(); err != nil {
		s.writeJSON(w, r, http.StatusServiceUnavailable, ErrorResponse{Message: err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sess, err := newSession(conn, rs, s.registry, s.config, s.collector, s.logger)
	if err != nil {
		s.logger.Error("bind failed", "error", err, "ruleset", rs.Name)
		conn.WriteJSON(ErrorFrame{Type: FrameError, Error: frameError(verrors.FromError(err, "V010"))})
		conn.Close()
		return
	}
	if err := s.sessions.Add(sess); err != nil {
		sess.CloseWithReason(websocket.CloseTryAgainLater, err.Error())
		return
	}
	defer s.sessions.Close(sess.ID)

	SpanFromContext(r.Context()).SetAttributes(
		attribute.String("rvalid.ruleset", rs.Name),
		attribute.String("rvalid.session_id", sess.ID),
	)
	sess.Serve()
}

package server

import (
	"encoding/json"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/metrics"
	"github.com/vango-dev/rvalid/pkg/reactive"
	"github.com/vango-dev/rvalid/pkg/ruleset"
	"github.com/vango-dev/rvalid/pkg/validation"
)

// Session is one live validation connection. It owns a model bound to a
// rule set, a push group over it and an effect that tracks the visible
// state. Frames are read, applied and answered on the goroutine that
// calls Serve, so the model has a single writer.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// RuleSet is the name of the bound rule set.
	RuleSet string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	conn   *websocket.Conn
	model  *ruleset.Model
	group  *validation.Group
	owner  *reactive.Owner
	effect *reactive.Effect

	config    Config
	collector *metrics.Collector
	logger    *slog.Logger

	// pending is the state computed by the effect; last is the state most
	// recently sent.
	pending StateFrame
	last    *StateFrame
	seq     uint64

	done        chan struct{}
	closeOnce   sync.Once
	disposeOnce sync.Once
	closed      bool
	mu          sync.Mutex
}

// newSession binds an empty document to rs and computes the initial state.
// It must be called on the goroutine that will call Serve.
func newSession(conn *websocket.Conn, rs *ruleset.RuleSet, reg *validation.Registry, config Config, collector *metrics.Collector, logger *slog.Logger) (*Session, error) {
	model, err := ruleset.Bind(rs, map[string]any{}, reg)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		ID:        id,
		RuleSet:   rs.Name,
		CreatedAt: time.Now(),
		conn:      conn,
		model:     model,
		owner:     reactive.NewOwner(nil),
		config:    config,
		collector: collector,
		logger:    logger.With("session_id", id, "ruleset", rs.Name),
		done:      make(chan struct{}),
	}

	reactive.WithOwner(s.owner, func() {
		s.group = model.Group(validation.WithMode(validation.ModePush))
		s.effect = reactive.CreateEffect(func() reactive.Cleanup {
			s.pending = s.snapshot()
			return nil
		})
	})
	s.owner.OnCleanup(s.group.Dispose)
	return s, nil
}

// snapshot reads the visible state. Called inside the effect, so every
// read is tracked.
func (s *Session) snapshot() StateFrame {
	errs := s.group.Errors()
	return StateFrame{
		Type:   FrameState,
		Valid:  len(errs) == 0,
		Errors: errs,
		Fields: visibleFields(s.model, validation.CurrentConfig()),
	}
}

// Serve sends the initial state and then handles client frames until the
// connection fails or the session is closed.
func (s *Session) Serve() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	deadline := 2 * s.config.HeartbeatInterval
	s.conn.SetReadDeadline(time.Now().Add(deadline))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(deadline))
	})
	go s.heartbeat()

	if err := s.flush(); err != nil {
		return
	}

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(deadline))

		if err := s.handleMessage(msg); err != nil {
			if !s.write(ErrorFrame{Type: FrameError, Error: frameError(err)}, FrameError) {
				return
			}
		}
		if err := s.flush(); err != nil {
			return
		}
	}
}

// handleMessage applies one client frame to the model.
func (s *Session) handleMessage(msg []byte) error {
	var frame ClientFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		s.received("invalid")
		return verrors.New("V021").WithDetail("frame is not valid JSON").Wrap(err)
	}

	switch frame.Type {
	case FrameSet:
		s.received(frame.Type)
		return s.model.Set(frame.Field, frame.Value)

	case FrameLoad:
		s.received(frame.Type)
		return s.load(frame.Document)

	case FrameShowAll:
		s.received(frame.Type)
		s.group.ShowAllMessages()
		return nil

	default:
		s.received("unknown")
		return verrors.New("V021").WithDetailf("unknown frame type %q", frame.Type)
	}
}

// load writes every field present in doc in one batch. Unknown paths are
// reported after the known ones are written.
func (s *Session) load(doc map[string]any) error {
	values := flatten(doc, "")
	paths := make([]string, 0, len(values))
	for path := range values {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var unknown []string
	reactive.Batch(func() {
		for _, path := range paths {
			if s.model.Field(path) == nil {
				unknown = append(unknown, path)
				continue
			}
			_ = s.model.Set(path, values[path])
		}
	})
	if len(unknown) > 0 {
		return verrors.New("V012").WithDetailf("no fields %v", unknown)
	}
	return nil
}

// flatten maps nested documents to dotted paths.
func flatten(doc map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			maps.Copy(out, flatten(nested, path))
			continue
		}
		out[path] = v
	}
	return out
}

// flush sends the pending state when it differs from the last one sent.
func (s *Session) flush() error {
	if s.last != nil && s.pending.sameState(*s.last) {
		return nil
	}
	s.seq++
	frame := s.pending
	frame.Seq = s.seq
	if !s.write(frame, FrameState) {
		return ErrSessionClosed
	}
	s.last = &frame
	return nil
}

// write sends v as JSON. It reports false when the connection is unusable.
func (s *Session) write(v any, frameType string) bool {
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(v); err != nil {
		s.logger.Debug("write error", "error", err)
		return false
	}
	if s.collector != nil {
		s.collector.FrameSent(frameType)
	}
	return true
}

func (s *Session) received(frameType string) {
	if s.collector != nil {
		s.collector.FrameReceived(frameType)
	}
}

// heartbeat pings the client until the session closes. WriteControl may
// run concurrently with the writes of Serve.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.conn.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Close disposes the session's reactive state and closes the connection.
// It runs on the goroutine that serves the session and is safe to call
// more than once.
func (s *Session) Close() {
	s.stop()
	s.disposeOnce.Do(s.owner.Dispose)
}

// stop marks the session closed and closes the connection, which ends
// the read loop in Serve. It leaves the owner alone so that disposal
// stays on the serving goroutine.
func (s *Session) stop() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)
		s.conn.Close()
		s.logger.Debug("session closed")
	})
}

// CloseWithReason sends a close frame before closing. Like Close it must
// run on the goroutine that serves the session.
func (s *Session) CloseWithReason(code int, reason string) {
	s.sendClose(code, reason)
	s.Close()
}

// Shutdown sends a close frame and stops the session from any goroutine.
// Serve disposes the owner on its way out.
func (s *Session) Shutdown(code int, reason string) {
	s.sendClose(code, reason)
	s.stop()
}

func (s *Session) sendClose(code int, reason string) {
	deadline := time.Now().Add(s.config.WriteTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Model returns the bound model.
func (s *Session) Model() *ruleset.Model {
	return s.model
}

func frameError(err error) ErrorResponse {
	resp, _ := errorResponse(err)
	return resp
}

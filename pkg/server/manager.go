package server

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// SessionManager tracks the open live sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	// maxSessions of zero means unlimited.
	maxSessions int

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	// Callbacks
	onSessionCreate func(*Session)
	onSessionClose  func(*Session)

	logger *slog.Logger
}

// ManagerStats is a point-in-time view of the manager.
type ManagerStats struct {
	Active       int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(maxSessions int, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Reserve reports whether another session may be opened. It is checked
// before the websocket upgrade; Add enforces the limit again.
func (sm *SessionManager) Reserve() error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		return ErrMaxSessionsReached
	}
	return nil
}

// Add registers an open session.
func (sm *SessionManager) Add(s *Session) error {
	sm.mu.Lock()
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		return ErrMaxSessionsReached
	}
	sm.sessions[s.ID] = s
	if len(sm.sessions) > sm.peakSessions {
		sm.peakSessions = len(sm.sessions)
	}
	onCreate := sm.onSessionCreate
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	sm.logger.Debug("session opened", "session_id", s.ID, "ruleset", s.RuleSet)
	if onCreate != nil {
		onCreate(s)
	}
	return nil
}

// Get returns the session with the given ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Close closes and forgets the session with the given ID.
func (sm *SessionManager) Close(id string) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	onClose := sm.onSessionClose
	sm.mu.Unlock()

	if !ok {
		return
	}
	s.Close()
	sm.totalClosed.Add(1)
	if onClose != nil {
		onClose(s)
	}
}

// Count returns the number of open sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ForEach calls fn for every open session until fn returns false.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	for _, s := range sessions {
		if !fn(s) {
			return
		}
	}
}

// Shutdown stops every session with a going-away close frame. Each Serve
// loop then returns and disposes its own session.
func (sm *SessionManager) Shutdown() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	onClose := sm.onSessionClose
	sm.mu.Unlock()

	for _, s := range sessions {
		s.Shutdown(websocket.CloseGoingAway, "server shutting down")
		sm.totalClosed.Add(1)
		if onClose != nil {
			onClose(s)
		}
	}
	if len(sessions) > 0 {
		sm.logger.Info("closed live sessions", "count", len(sessions))
	}
}

// Stats returns the current statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		Peak:         sm.peakSessions,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
	}
}

// SetOnSessionCreate sets the callback run after a session is added.
func (sm *SessionManager) SetOnSessionCreate(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onSessionCreate = fn
}

// SetOnSessionClose sets the callback run after a session is closed.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onSessionClose = fn
}

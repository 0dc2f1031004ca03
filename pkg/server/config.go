package server

import (
	"net/http"
	"net/url"
	"slices"
	"time"
)

// Config configures the validation service.
type Config struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string

	// ReadTimeout, WriteTimeout and IdleTimeout configure the HTTP server.
	// WriteTimeout is also the deadline for each websocket write.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration

	// MaxBodyBytes limits the size of validate requests.
	// Default: 1MB
	MaxBodyBytes int64

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxSessions limits concurrent live sessions. Zero means unlimited.
	MaxSessions int

	// MaxMessageSize limits one client frame.
	// Default: 64KB
	MaxMessageSize int64

	// HeartbeatInterval is the ping period of live sessions. A session
	// without a pong for two intervals is closed.
	// Default: 30s
	HeartbeatInterval time.Duration

	// CheckOrigin validates websocket upgrade origins.
	// Default: SameOriginCheck
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		MaxBodyBytes:      1 << 20,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MaxMessageSize:    64 * 1024,
		HeartbeatInterval: 30 * time.Second,
		CheckOrigin:       SameOriginCheck,
	}
}

// withDefaults fills in unset fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	return c
}

// SameOriginCheck accepts websocket upgrades without an Origin header or
// whose origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}

// AllowOrigins returns an origin check accepting same-origin requests and
// the listed origins. An empty list is SameOriginCheck.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return SameOriginCheck
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return slices.Contains(origins, r.Header.Get("Origin"))
	}
}

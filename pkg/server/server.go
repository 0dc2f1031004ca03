package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/rvalid/pkg/metrics"
	"github.com/vango-dev/rvalid/pkg/ruleset"
	"github.com/vango-dev/rvalid/pkg/validation"
)

// TracerName is the default OpenTelemetry tracer name.
const TracerName = "github.com/vango-dev/rvalid/pkg/server"

// Server is the HTTP/WebSocket validation service.
type Server struct {
	config   Config
	rulesets ruleset.Set
	registry *validation.Registry

	router   chi.Router
	upgrader websocket.Upgrader
	sessions *SessionManager

	collector *metrics.Collector
	gatherer  prometheus.Gatherer
	tracer    trace.Tracer

	mu         sync.Mutex
	httpServer *http.Server

	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry resolves rule names in reg instead of validation.Default.
func WithRegistry(reg *validation.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithCollector records request and live session metrics in c.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Server) {
		s.collector = c
	}
}

// WithGatherer serves g on /metrics. A nil gatherer removes the endpoint.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithTracerProvider creates request spans with tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		if tp != nil {
			s.tracer = tp.Tracer(TracerName)
		}
	}
}

// New creates a Server serving rulesets.
func New(config Config, rulesets ruleset.Set, opts ...Option) *Server {
	config = config.withDefaults()
	if rulesets == nil {
		rulesets = ruleset.Set{}
	}

	s := &Server{
		config:   config,
		rulesets: rulesets,
		registry: validation.Default,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		gatherer: prometheus.DefaultGatherer,
		tracer:   otel.Tracer(TracerName),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.sessions = NewSessionManager(config.MaxSessions, s.logger)
	if s.collector != nil {
		s.sessions.SetOnSessionCreate(func(*Session) { s.collector.SessionOpened() })
		s.sessions.SetOnSessionClose(func(*Session) { s.collector.SessionClosed() })
	}
	s.router = s.routes()

	s.logger.Debug("server created", "rulesets", rulesets.Names(), "address", config.Addr)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.tracing)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/rulesets", s.handleRuleSets)
		r.Get("/rulesets/{ruleset}", s.handleRuleSet)
		r.Post("/validate/{ruleset}", s.handleValidate)
		r.Get("/live/{ruleset}", s.handleLive)
	})
	return r
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is done, SIGINT or SIGTERM
// arrives, or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server: already running")
	}
	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	case <-stop:
	}

	s.logger.Info("shutting down...")
	return s.Shutdown(context.Background())
}

// Shutdown closes every live session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Close all sessions first
	s.sessions.Shutdown()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the live session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/rvalid/pkg/validation"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "rvalid").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for rule duration.
	// Default: exponential from 1µs to ~16ms.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "rvalid",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 8),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records validation events. It is safe for concurrent use.
type Collector struct {
	ruleEvaluations  *prometheus.CounterVec
	ruleDuration     *prometheus.HistogramVec
	groupEvaluations *prometheus.CounterVec
	groupMembers     *prometheus.GaugeVec
	groupInvalid     *prometheus.GaugeVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	liveSessions    prometheus.Gauge
	framesTotal     *prometheus.CounterVec
}

var _ validation.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics. It panics if the
// metrics are already registered with the chosen registry.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		ruleEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rule_evaluations_total",
			Help:        "Total number of validator calls by rule and result",
			ConstLabels: config.ConstLabels,
		}, []string{"rule", "result"}),

		ruleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rule_duration_seconds",
			Help:        "Validator call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"rule"}),

		groupEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "group_evaluations_total",
			Help:        "Total number of group error list recomputations",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		groupMembers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "group_members",
			Help:        "Number of members in the most recently evaluated group",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		groupInvalid: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "group_invalid_members",
			Help:        "Number of invalid members in the most recently evaluated group",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by route and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"route"}),

		liveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_sessions",
			Help:        "Number of open live validation sessions",
			ConstLabels: config.ConstLabels,
		}),

		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_frames_total",
			Help:        "Total number of live session frames by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"}),
	}
}

// RuleEvaluated implements validation.Observer.
func (c *Collector) RuleEvaluated(rule string, valid bool, elapsed time.Duration) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	c.ruleEvaluations.WithLabelValues(rule, result).Inc()
	c.ruleDuration.WithLabelValues(rule).Observe(elapsed.Seconds())
}

// GroupEvaluated implements validation.Observer.
func (c *Collector) GroupEvaluated(mode validation.Mode, members, invalid int) {
	m := mode.String()
	c.groupEvaluations.WithLabelValues(m).Inc()
	c.groupMembers.WithLabelValues(m).Set(float64(members))
	c.groupInvalid.WithLabelValues(m).Set(float64(invalid))
}

// RequestHandled records one HTTP request. route should be the route
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) RequestHandled(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SessionOpened records a live session start.
func (c *Collector) SessionOpened() {
	c.liveSessions.Inc()
}

// SessionClosed records a live session end.
func (c *Collector) SessionClosed() {
	c.liveSessions.Dec()
}

// FrameReceived records a client frame of the given type.
func (c *Collector) FrameReceived(frameType string) {
	c.framesTotal.WithLabelValues("in", frameType).Inc()
}

// FrameSent records a server frame of the given type.
func (c *Collector) FrameSent(frameType string) {
	c.framesTotal.WithLabelValues("out", frameType).Inc()
}

package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for baram. It satisfies the workspace
// Metrics interface. A Metrics built with Enabled=false is a valid no-op.
type Metrics struct {
	config MetricsConfig

	teardownsCompleted *prometheus.CounterVec
	teardownDuration   *prometheus.HistogramVec
	replacesCompleted  *prometheus.CounterVec
	pollTicks          prometheus.Histogram
	apiErrors          *prometheus.CounterVec

	registry *prometheus.Registry
}

// MetricsConfig configures metrics collection.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// ListenAddress is the address for the metrics HTTP endpoint.
	ListenAddress string

	// Path is the HTTP path for metrics (default: /metrics).
	Path string
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}

	const namespace = "baram"
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		teardownsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "teardowns_completed_total",
				Help:      "Total number of teardowns by final phase",
			},
			[]string{"phase"},
		),
		teardownDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "teardown_duration_seconds",
				Help:      "Duration of teardown runs in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"phase"},
		),
		replacesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "replaces_completed_total",
				Help:      "Total number of profile replacements by status",
			},
			[]string{"status"},
		),
		pollTicks: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "poll_ticks",
				Help:      "Status rounds one convergence poll used before finishing",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60},
			},
		),
		apiErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of control plane errors by failure class",
			},
			[]string{"class"},
		),
	}

	registry.MustRegister(
		m.teardownsCompleted,
		m.teardownDuration,
		m.replacesCompleted,
		m.pollTicks,
		m.apiErrors,
	)

	return m
}

// RecordTeardown records a completed teardown with its final phase.
func (m *Metrics) RecordTeardown(phase string, seconds float64) {
	if m.teardownsCompleted == nil {
		return
	}
	m.teardownsCompleted.WithLabelValues(phase).Inc()
	m.teardownDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordPollTicks records the number of ticks one convergence poll used.
func (m *Metrics) RecordPollTicks(n int) {
	if m.pollTicks == nil {
		return
	}
	m.pollTicks.Observe(float64(n))
}

// RecordReplace records a completed per-profile replace.
func (m *Metrics) RecordReplace(status string) {
	if m.replacesCompleted == nil {
		return
	}
	m.replacesCompleted.WithLabelValues(status).Inc()
}

// RecordAPIError records a classified control plane failure.
func (m *Metrics) RecordAPIError(class string) {
	if m.apiErrors == nil {
		return
	}
	m.apiErrors.WithLabelValues(class).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer(errLog func(error)) error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if errLog != nil {
				errLog(err)
			}
		}
	}()

	return nil
}

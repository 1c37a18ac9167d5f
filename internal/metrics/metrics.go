// Package metrics exposes monitor counters over a Prometheus endpoint.
//
// Collectors live in a private registry so tests and the one-shot check
// command can build throwaway instances. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marquee"

// Metrics holds the monitor collectors.
type Metrics struct {
	registry *prometheus.Registry

	cycles             *prometheus.CounterVec
	fetchFailures      *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	escalations        *prometheus.CounterVec
	suppressed         prometheus.Counter
	seenKeys           prometheus.Gauge
	cycleDuration      prometheus.Histogram
	lastCycleTimestamp prometheus.Gauge
	expressionFailures prometheus.Counter
}

// New registers all collectors in a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.cycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Poll cycles by final state",
	}, []string{"state"})
	m.fetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Failed HTTP calls by endpoint (listing or theatres)",
	}, []string{"endpoint"})
	m.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notifications by kind and result",
	}, []string{"kind", "result"})
	m.escalations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escalations_total",
		Help:      "Voice escalations by result",
	}, []string{"result"})
	m.suppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escalations_suppressed_total",
		Help:      "Escalations skipped because the match key was already seen",
	})
	m.seenKeys = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dedup_seen_keys",
		Help:      "Distinct match keys remembered by the deduplicator; grows for the process lifetime",
	})
	m.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of one poll cycle",
		Buckets:   prometheus.DefBuckets,
	})
	m.lastCycleTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_cycle_timestamp_seconds",
		Help:      "Unix timestamp of the last finished cycle",
	})
	m.expressionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expression_failures_total",
		Help:      "Condition compile or evaluation failures treated as not met",
	})
	m.registry.MustRegister(
		m.cycles, m.fetchFailures, m.notifications, m.escalations,
		m.suppressed, m.seenKeys, m.cycleDuration, m.lastCycleTimestamp,
		m.expressionFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// CycleFinished records one cycle's final state and duration.
func (m *Metrics) CycleFinished(state string, duration time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(state).Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.lastCycleTimestamp.Set(float64(at.Unix()))
}

// FetchFailed records a failed listing or theatre call.
func (m *Metrics) FetchFailed(endpoint string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(endpoint).Inc()
}

// Notified records a notification attempt.
func (m *Metrics) Notified(kind string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result(err)).Inc()
}

// Escalated records a voice escalation attempt.
func (m *Metrics) Escalated(err error) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(result(err)).Inc()
}

// EscalationSuppressed records a repeat match that did not escalate.
func (m *Metrics) EscalationSuppressed() {
	if m == nil {
		return
	}
	m.suppressed.Inc()
}

// SetSeenKeys publishes the deduplicator size.
func (m *Metrics) SetSeenKeys(n int) {
	if m == nil {
		return
	}
	m.seenKeys.Set(float64(n))
}

// ExpressionFailed records a condition failure.
func (m *Metrics) ExpressionFailed() {
	if m == nil {
		return
	}
	m.expressionFailures.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Server serves /metrics and /healthz.
type Server struct {
	server *http.Server
}

// NewServer builds the HTTP server for m on addr.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{server: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Handler returns the server mux (useful for tests).
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Serve blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Serve() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

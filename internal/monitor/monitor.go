package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marquee/internal/condition"
	"marquee/internal/dedup"
	"marquee/internal/httpx"
	"marquee/internal/journal"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/notifications"
	"marquee/internal/theatres"
	"marquee/internal/voice"
)

// Fetcher retrieves the listing payload.
type Fetcher interface {
	Do(ctx context.Context, req httpx.Request) httpx.Result
}

// TheatreCollector performs the per-film theatre lookups.
type TheatreCollector interface {
	Collect(ctx context.Context, infos []listing.FilmInfo, now time.Time) theatres.Collection
}

// Recorder persists finished cycles.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Monitor evaluates the listing on each poll and drives notifications.
type Monitor struct {
	opts Options
	rule Rule

	program    *condition.Program
	compileErr error

	fetcher   Fetcher
	collector TheatreCollector
	notifier  notifications.Service
	caller    voice.Caller
	dedup     *dedup.Deduplicator
	journal   Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	dryRun    bool

	mu     sync.Mutex
	last   *Outcome
	cycles int
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source used for cycle timing and "today".
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDeduplicator shares an existing deduplicator.
func WithDeduplicator(d *dedup.Deduplicator) Option {
	return func(m *Monitor) {
		if d != nil {
			m.dedup = d
		}
	}
}

// WithJournal records every finished cycle.
func WithJournal(r Recorder) Option {
	return func(m *Monitor) { m.journal = r }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) { m.metrics = mt }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithIDGenerator overrides cycle ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Monitor) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithDryRun evaluates matches without notifying or escalating.
func WithDryRun(enabled bool) Option {
	return func(m *Monitor) { m.dryRun = enabled }
}

// WithEscalation overrides whether matches may escalate to a voice call.
func WithEscalation(enabled bool) Option {
	return func(m *Monitor) { m.opts.EscalationEnabled = enabled }
}

// New constructs a Monitor. The condition, when it is the active rule, is
// compiled once here; a compile failure is reported on every cycle as an
// unmet condition rather than failing construction.
func New(opts Options, fetcher Fetcher, collector TheatreCollector, notifier notifications.Service, caller voice.Caller, options ...Option) *Monitor {
	m := &Monitor{
		opts:      opts,
		rule:      opts.Rule(),
		fetcher:   fetcher,
		collector: collector,
		notifier:  notifier,
		caller:    caller,
		dedup:     dedup.New(),
		logger:    logging.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range options {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "monitor")

	switch m.rule {
	case RuleCondition:
		m.program, m.compileErr = condition.Compile(opts.Condition)
	case RuleDefault:
		m.program, m.compileErr = condition.Compile(condition.DefaultExpression)
	}
	return m
}

// Rule reports the active matching path.
func (m *Monitor) Rule() Rule { return m.rule }

// Deduplicator exposes the escalation dedup state.
func (m *Monitor) Deduplicator() *dedup.Deduplicator { return m.dedup }

// LastOutcome returns the most recently finished cycle.
func (m *Monitor) LastOutcome() (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return Outcome{}, false
	}
	return *m.last, true
}

// Cycles returns the number of finished cycles.
func (m *Monitor) Cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

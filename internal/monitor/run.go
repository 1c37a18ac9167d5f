package monitor

import (
	"context"
	"time"

	"marquee/internal/logging"
)

// DefaultPollInterval applies when Options.PollInterval is not positive.
const DefaultPollInterval = 60 * time.Second

// Run performs an immediate cycle and then one per poll interval until ctx is
// cancelled. An in-flight cycle observes the same cancellation.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	m.logger.Info("monitor started",
		logging.String("rule", m.rule.String()),
		logging.Duration("poll_interval", interval),
		logging.Bool("escalation_enabled", m.opts.EscalationEnabled),
		logging.Bool("dry_run", m.dryRun),
	)

	m.RunCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped", logging.Int("cycles", m.Cycles()))
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			m.RunCycle(ctx)
		}
	}
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/monitor"
)

const shutdownTimeout = 5 * time.Second

// Daemon owns the poll loop and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	monitor *monitor.Monitor
	metrics *metrics.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Rule         string
	Cycles       int
	SeenKeys     int
	LastState    string
	LastCycleAt  time.Time
	LockFilePath string
}

// New constructs a daemon. srv may be nil when metrics are disabled.
func New(cfg *config.Config, logger *slog.Logger, mon *monitor.Monitor, srv *metrics.Server) (*Daemon, error) {
	if cfg == nil || mon == nil {
		return nil, errors.New("daemon requires config and monitor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		monitor:  mon,
		metrics:  srv,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the poll loop and, when
// configured, the metrics endpoint.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.monitor.Run(runCtx); err != nil {
			d.logger.Error("monitor exited", logging.Error(err))
		}
	}()

	if d.metrics != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.metrics.Serve(); err != nil {
				logging.WarnWithContext(d.logger, "metrics server stopped", "metrics_server_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check metrics.bind is free"),
					logging.String(logging.FieldImpact, "metrics and health endpoints unavailable"),
				)
			}
		}()
	}

	d.logger.Info("marquee daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels the poll loop, waits for it to exit, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := d.metrics.Shutdown(ctx); err != nil {
			d.logger.Warn("metrics shutdown failed", logging.Error(err))
		}
		cancel()
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("marquee daemon stopped", logging.Int("cycles", d.monitor.Cycles()))
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Rule:         d.monitor.Rule().String(),
		Cycles:       d.monitor.Cycles(),
		SeenKeys:     d.monitor.Deduplicator().Size(),
		LockFilePath: d.lockPath,
	}
	if last, ok := d.monitor.LastOutcome(); ok {
		status.LastState = string(last.State)
		status.LastCycleAt = last.StartedAt
	}
	return status
}

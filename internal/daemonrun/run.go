package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"marquee/internal/config"
	"marquee/internal/daemon"
	"marquee/internal/journal"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/monitor"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	DryRun   bool
}

// Run starts the marquee poll loop and blocks until SIGINT, SIGTERM, or
// cancellation of cmdCtx.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if strings.TrimSpace(opts.LogLevel) != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logConfigSnapshot(logger, cfg)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	monitorOpts := []monitor.Option{monitor.WithDryRun(opts.DryRun)}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg)
		if err != nil {
			logger.Error("open cycle journal", logging.Error(err))
			return err
		}
		defer store.Close()
		monitorOpts = append(monitorOpts, monitor.WithJournal(store))
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		m := metrics.New()
		metricsServer = metrics.NewServer(cfg.Metrics.Bind, m)
		monitorOpts = append(monitorOpts, monitor.WithMetrics(m))
	}

	mon := monitor.FromConfig(cfg, logger, monitorOpts...)
	d, err := daemon.New(cfg, logger, mon, metricsServer)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	<-signalCtx.Done()
	logger.Info("marquee shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	rule := monitor.OptionsFromConfig(cfg).Rule()
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("rule", rule.String()),
		logging.Int("film_keyword_sets", len(cfg.Match.FilmKeywordSets)),
		logging.Int("cinema_keyword_sets", len(cfg.Cinema.KeywordSets)),
		logging.Bool("theatre_lookup_configured", strings.TrimSpace(cfg.Theatres.URL) != ""),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Bool("voice_enabled", cfg.Voice.Enabled),
		logging.Bool("metrics_enabled", cfg.Metrics.Enabled),
		logging.Bool("journal_enabled", cfg.Journal.Enabled),
		logging.Int("poll_interval_seconds", cfg.PollInterval()),
	)
}

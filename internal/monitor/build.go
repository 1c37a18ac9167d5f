package monitor

import (
	"log/slog"
	"time"

	"marquee/internal/config"
	"marquee/internal/httpx"
	"marquee/internal/notifications"
	"marquee/internal/theatres"
	"marquee/internal/voice"
)

// FromConfig wires a Monitor with the production collaborators described by
// cfg: a retrying HTTP client, the theatre orchestrator, the ntfy notifier and
// the voice caller.
func FromConfig(cfg *config.Config, logger *slog.Logger, options ...Option) *Monitor {
	opts := OptionsFromConfig(cfg)
	timeout := time.Duration(cfg.Listing.RequestTimeoutSeconds) * time.Second
	client := httpx.NewClient(timeout, httpx.WithComponent("listing"))
	collector := theatres.NewOrchestrator(client, opts.Theatres, logger)

	all := append([]Option{WithLogger(logger)}, options...)
	return New(opts, client, collector, notifications.NewService(cfg), voice.New(cfg), all...)
}

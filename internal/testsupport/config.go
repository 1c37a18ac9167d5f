package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The listing URL points at a placeholder host; tests that poll replace it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")
	cfgVal.Listing.URL = "https://listing.invalid/movies"
	cfgVal.Metrics.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithListingURL overrides the primary listing endpoint.
func WithListingURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Listing.URL = url
	}
}

// WithFilmKeywordSets configures the keyword-set film rule and the theatre
// lookup endpoint it requires.
func WithFilmKeywordSets(theatresURL string, sets ...[]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Match.FilmKeywordSets = sets
		b.cfg.Theatres.URL = theatresURL
	}
}

// WithCinemaKeywordSets configures theatre-name filtering.
func WithCinemaKeywordSets(sets ...[]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cinema.KeywordSets = sets
	}
}

// WithNtfyTopic sets the full ntfy topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithVoice enables voice escalation against baseURL with dummy credentials.
func WithVoice(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Voice.Enabled = true
		b.cfg.Voice.BaseURL = baseURL
		b.cfg.Voice.AccountSID = "AC123"
		b.cfg.Voice.AuthToken = "token"
		b.cfg.Voice.From = "+15550001111"
		b.cfg.Voice.To = "+15552223333"
	}
}

// WithPollInterval sets the poll interval in seconds.
func WithPollInterval(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Listing.PollIntervalSeconds = seconds
	}
}

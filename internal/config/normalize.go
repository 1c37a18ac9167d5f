package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeListing()
	c.normalizeMatch()
	c.normalizeTheatres()
	c.normalizeNotifications()
	c.normalizeVoice()
	c.normalizeMetrics()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeListing() {
	c.Listing.URL = strings.TrimSpace(c.Listing.URL)
	if c.Listing.URL == "" {
		if value, ok := os.LookupEnv("MARQUEE_LISTING_URL"); ok {
			c.Listing.URL = strings.TrimSpace(value)
		}
	}
	c.Listing.Method = strings.ToUpper(strings.TrimSpace(c.Listing.Method))
	if c.Listing.Method == "" {
		c.Listing.Method = defaultListingMethod
	}
	c.Listing.Headers = normalizeHeaders(c.Listing.Headers)
	if c.Listing.RequestTimeoutSeconds <= 0 {
		c.Listing.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	c.Listing.MoviesPath = strings.TrimSpace(c.Listing.MoviesPath)
	if c.Listing.MoviesPath == "" {
		c.Listing.MoviesPath = defaultMoviesPath
	}
}

func (c *Config) normalizeMatch() {
	c.Match.FilmKeywordSets = normalizeKeywordSets(c.Match.FilmKeywordSets)
	c.Match.TargetName = strings.TrimSpace(c.Match.TargetName)
	c.Match.Condition = strings.TrimSpace(c.Match.Condition)
	c.Cinema.KeywordSets = normalizeKeywordSets(c.Cinema.KeywordSets)
}

func (c *Config) normalizeTheatres() {
	c.Theatres.URL = strings.TrimSpace(c.Theatres.URL)
	if c.Theatres.URL == "" {
		if value, ok := os.LookupEnv("MARQUEE_THEATRES_URL"); ok {
			c.Theatres.URL = strings.TrimSpace(value)
		}
	}
	c.Theatres.Method = strings.ToUpper(strings.TrimSpace(c.Theatres.Method))
	if c.Theatres.Method == "" {
		c.Theatres.Method = defaultTheatresMethod
	}
	c.Theatres.Headers = normalizeHeaders(c.Theatres.Headers)
	c.Theatres.TheatresPath = strings.TrimSpace(c.Theatres.TheatresPath)
	if c.Theatres.TheatresPath == "" {
		c.Theatres.TheatresPath = defaultTheatresPath
	}
	if c.Theatres.Concurrency <= 0 {
		c.Theatres.Concurrency = defaultTheatreConcurrency
	}
	if c.Theatres.RequestsPerSecond < 0 {
		c.Theatres.RequestsPerSecond = 0
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("MARQUEE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	c.Notifications.Priority = strings.ToLower(strings.TrimSpace(c.Notifications.Priority))
	if c.Notifications.Priority == "" {
		c.Notifications.Priority = defaultNotifyPriority
	}
}

func (c *Config) normalizeVoice() {
	c.Voice.BaseURL = strings.TrimRight(strings.TrimSpace(c.Voice.BaseURL), "/")
	if c.Voice.BaseURL == "" {
		c.Voice.BaseURL = defaultVoiceBaseURL
	}
	c.Voice.AccountSID = envFallback(c.Voice.AccountSID, "TWILIO_ACCOUNT_SID")
	c.Voice.AuthToken = envFallback(c.Voice.AuthToken, "TWILIO_AUTH_TOKEN")
	c.Voice.From = envFallback(c.Voice.From, "TWILIO_FROM_NUMBER")
	c.Voice.To = envFallback(c.Voice.To, "TWILIO_TO_NUMBER")
	c.Voice.Message = strings.TrimSpace(c.Voice.Message)
	if c.Voice.Message == "" {
		c.Voice.Message = defaultVoiceMessage
	}
	if c.Voice.RequestTimeout <= 0 {
		c.Voice.RequestTimeout = defaultVoiceTimeout
	}
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	if c.Metrics.Bind == "" {
		c.Metrics.Bind = defaultMetricsBind
	}
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.StateDir, defaultJournalName)
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

// normalizeKeywordSets trims keywords and drops blank ones. Sets are kept even
// when they end up empty so configured set numbering stays stable.
func normalizeKeywordSets(sets [][]string) [][]string {
	if len(sets) == 0 {
		return nil
	}
	out := make([][]string, 0, len(sets))
	for _, set := range sets {
		cleaned := make([]string, 0, len(set))
		for _, keyword := range set {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				cleaned = append(cleaned, keyword)
			}
		}
		out = append(out, cleaned)
	}
	return out
}

func normalizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

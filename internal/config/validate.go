package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateListing(); err != nil {
		return err
	}
	if err := c.validateTheatres(); err != nil {
		return err
	}
	if err := c.validateVoice(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateListing() error {
	if c.Listing.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("listing.url is required. Set MARQUEE_LISTING_URL env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	if err := validateURL("listing.url", c.Listing.URL); err != nil {
		return err
	}
	if c.Listing.PollIntervalSeconds <= 0 {
		return errors.New("listing.poll_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTheatres() error {
	if !c.HasFilmKeywordSets() {
		return nil
	}
	if c.Theatres.URL == "" {
		return errors.New("theatres.url must be set when match.film_keyword_sets is configured")
	}
	return validateURL("theatres.url", c.Theatres.URL)
}

func (c *Config) validateVoice() error {
	if !c.Voice.Enabled {
		return nil
	}
	required := []struct {
		key   string
		value string
	}{
		{"voice.account_sid", c.Voice.AccountSID},
		{"voice.auth_token", c.Voice.AuthToken},
		{"voice.from", c.Voice.From},
		{"voice.to", c.Voice.To},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s must be set when voice.enabled is true", field.key)
		}
	}
	return validateURL("voice.base_url", c.Voice.BaseURL)
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"listing.request_timeout_seconds": c.Listing.RequestTimeoutSeconds,
		"notifications.request_timeout":   c.Notifications.RequestTimeout,
		"voice.request_timeout":           c.Voice.RequestTimeout,
		"theatres.concurrency":            c.Theatres.Concurrency,
	})
}

func validateURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL", key)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", key)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

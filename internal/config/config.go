package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	EnvFile  string `toml:"env_file"`
}

// Listing describes the primary cinema-listing endpoint that is polled every cycle.
type Listing struct {
	URL                   string            `toml:"url"`
	Method                string            `toml:"method"`
	Headers               map[string]string `toml:"headers"`
	Body                  string            `toml:"body"`
	PollIntervalSeconds   int               `toml:"poll_interval_seconds"`
	RequestTimeoutSeconds int               `toml:"request_timeout_seconds"`
	// MoviesPath is the JSON path of the movie record list inside the response.
	MoviesPath string `toml:"movies_path"`
}

// Match contains the film matching rule. Keyword sets take precedence over
// the free-form condition, which takes precedence over the legacy target name.
type Match struct {
	FilmKeywordSets [][]string `toml:"film_keyword_sets"`
	TargetName      string     `toml:"target_name"`
	Condition       string     `toml:"condition"`
}

// Cinema contains the theatre-name keyword sets. Empty means every theatre passes.
type Cinema struct {
	KeywordSets [][]string `toml:"keyword_sets"`
}

// Theatres describes the secondary per-film theatre listing endpoint.
type Theatres struct {
	URL               string            `toml:"url"`
	Method            string            `toml:"method"`
	Headers           map[string]string `toml:"headers"`
	BodyTemplate      string            `toml:"body_template"`
	TheatresPath      string            `toml:"theatres_path"`
	Concurrency       int               `toml:"concurrency"`
	RequestsPerSecond float64           `toml:"requests_per_second"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Priority       string `toml:"priority"`
}

// Voice contains configuration for the escalation phone call.
type Voice struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	AccountSID     string `toml:"account_sid"`
	AuthToken      string `toml:"auth_token"`
	From           string `toml:"from"`
	To             string `toml:"to"`
	Message        string `toml:"message"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Metrics contains configuration for the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

// Journal contains configuration for the cycle history database.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: state (lock, pid, journal) and log directories
//   - Listing: primary endpoint, request shape, and poll interval
//   - Match: film keyword sets, free-form condition, or legacy target name
//   - Cinema: theatre-name keyword sets
//   - Theatres: secondary per-film theatre lookup endpoint
//   - Notifications: ntfy push notification settings
//   - Voice: escalation phone call settings
//   - Metrics: Prometheus endpoint
//   - Journal: cycle history database
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Listing       Listing       `toml:"listing"`
	Match         Match         `toml:"match"`
	Cinema        Cinema        `toml:"cinema"`
	Theatres      Theatres      `toml:"theatres"`
	Notifications Notifications `toml:"notifications"`
	Voice         Voice         `toml:"voice"`
	Metrics       Metrics       `toml:"metrics"`
	Journal       Journal       `toml:"journal"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFiles(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFiles reads .env style files without overriding variables that are
// already present in the process environment.
func loadEnvFiles(explicit string) error {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return fmt.Errorf("paths.env_file: %w", err)
		}
		if err := godotenv.Load(expanded); err != nil {
			return fmt.Errorf("load env file %s: %w", expanded, err)
		}
		return nil
	}
	if info, err := os.Stat(".env"); err == nil && !info.IsDir() {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "marquee.lock")
}

// PIDPath returns the pid file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "marquee.pid")
}

// PollInterval returns the listing poll interval in seconds.
func (c *Config) PollInterval() int {
	return c.Listing.PollIntervalSeconds
}

// HasFilmKeywordSets reports whether the keyword-set film rule is configured.
func (c *Config) HasFilmKeywordSets() bool {
	return len(c.Match.FilmKeywordSets) > 0
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

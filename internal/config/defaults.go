package config

const (
	defaultStateDir              = "~/.local/share/marquee"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultListingMethod         = "GET"
	defaultPollIntervalSeconds   = 60
	defaultRequestTimeoutSeconds = 20
	defaultMoviesPath            = "data.movies"
	defaultTheatresMethod        = "POST"
	defaultTheatresPath          = "data.theatres"
	defaultTheatreConcurrency    = 1
	defaultTheatreRPS            = 2.0
	defaultNotifyTimeout         = 10
	defaultNotifyPriority        = "high"
	defaultVoiceBaseURL          = "https://api.twilio.com"
	defaultVoiceMessage          = "Tickets for your film are now on sale."
	defaultVoiceTimeout          = 15
	defaultMetricsBind           = "127.0.0.1:9477"
	defaultJournalName           = "journal.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Listing: Listing{
			Method:                defaultListingMethod,
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			MoviesPath:            defaultMoviesPath,
		},
		Theatres: Theatres{
			Method:            defaultTheatresMethod,
			TheatresPath:      defaultTheatresPath,
			Concurrency:       defaultTheatreConcurrency,
			RequestsPerSecond: defaultTheatreRPS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Priority:       defaultNotifyPriority,
		},
		Voice: Voice{
			BaseURL:        defaultVoiceBaseURL,
			Message:        defaultVoiceMessage,
			RequestTimeout: defaultVoiceTimeout,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package monitor

import (
	"time"

	"marquee/internal/config"
	"marquee/internal/httpx"
	"marquee/internal/keywords"
	"marquee/internal/theatres"
)

// Rule identifies which matching path a Monitor runs.
type Rule int

const (
	RuleKeywords Rule = iota
	RuleCondition
	RuleTargetName
	RuleDefault
)

func (r Rule) String() string {
	switch r {
	case RuleKeywords:
		return "keyword sets"
	case RuleCondition:
		return "condition"
	case RuleTargetName:
		return "target name"
	default:
		return "default condition"
	}
}

// Options is the immutable monitor configuration.
type Options struct {
	Listing      httpx.Request
	MoviesPath   string
	PollInterval time.Duration

	FilmKeywords   keywords.Config
	TargetName     string
	Condition      string
	CinemaKeywords keywords.Config

	Theatres theatres.Options

	EscalationEnabled bool
}

// OptionsFromConfig snapshots the monitor-relevant parts of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Listing: httpx.Request{
			Method:  cfg.Listing.Method,
			URL:     cfg.Listing.URL,
			Headers: copyHeaders(cfg.Listing.Headers),
			Body:    cfg.Listing.Body,
		},
		MoviesPath:     cfg.Listing.MoviesPath,
		PollInterval:   time.Duration(cfg.PollInterval()) * time.Second,
		FilmKeywords:   keywords.FromStrings(cfg.Match.FilmKeywordSets),
		TargetName:     cfg.Match.TargetName,
		Condition:      cfg.Match.Condition,
		CinemaKeywords: keywords.FromStrings(cfg.Cinema.KeywordSets),
		Theatres: theatres.Options{
			URL:               cfg.Theatres.URL,
			Method:            cfg.Theatres.Method,
			Headers:           copyHeaders(cfg.Theatres.Headers),
			BodyTemplate:      cfg.Theatres.BodyTemplate,
			Path:              cfg.Theatres.TheatresPath,
			Concurrency:       cfg.Theatres.Concurrency,
			RequestsPerSecond: cfg.Theatres.RequestsPerSecond,
		},
		EscalationEnabled: cfg.Voice.Enabled,
	}
}

// Rule returns the matching path selected by these options.
func (o Options) Rule() Rule {
	switch {
	case len(o.FilmKeywords) > 0:
		return RuleKeywords
	case o.Condition != "":
		return RuleCondition
	case o.TargetName != "":
		return RuleTargetName
	default:
		return RuleDefault
	}
}

func copyHeaders(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

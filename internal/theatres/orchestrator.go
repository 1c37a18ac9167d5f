package theatres

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"marquee/internal/httpx"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/releasedate"
)

// DefaultBodyTemplate is sent when no template is configured.
const DefaultBodyTemplate = `{"filmId":"{filmId}","date":"{date}"}`

// Fetcher performs one HTTP call and reports the outcome as a Result.
type Fetcher interface {
	Do(ctx context.Context, req httpx.Request) httpx.Result
}

// Options configure the secondary lookup endpoint.
type Options struct {
	URL               string
	Method            string
	Headers           map[string]string
	BodyTemplate      string
	Path              string
	Concurrency       int
	RequestsPerSecond float64
}

// Lookup records one per-film lookup.
type Lookup struct {
	Code       string
	Date       string
	DateSource releasedate.Source
	Found      int
	Err        error
}

// Collection is the merged outcome of one cycle's lookups.
type Collection struct {
	Theatres []Theatre
	Lookups  []Lookup
}

// Failed returns the lookups that did not succeed.
func (c Collection) Failed() []Lookup {
	var out []Lookup
	for _, l := range c.Lookups {
		if l.Err != nil {
			out = append(out, l)
		}
	}
	return out
}

// Orchestrator fans lookups out over a Fetcher.
type Orchestrator struct {
	fetcher Fetcher
	opts    Options
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewOrchestrator builds an orchestrator. A non-positive rate disables pacing.
func NewOrchestrator(fetcher Fetcher, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if strings.TrimSpace(opts.BodyTemplate) == "" {
		opts.BodyTemplate = DefaultBodyTemplate
	}
	if strings.TrimSpace(opts.Method) == "" {
		opts.Method = "POST"
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Orchestrator{
		fetcher: fetcher,
		opts:    opts,
		limiter: limiter,
		logger:  logging.NewComponentLogger(logger, "theatres"),
	}
}

// Collect looks up theatres for every info. It always returns; per-film
// failures are recorded in Lookups and logged.
func (o *Orchestrator) Collect(ctx context.Context, infos []listing.FilmInfo, now time.Time) Collection {
	if len(infos) == 0 {
		return Collection{}
	}
	logger := logging.WithContext(ctx, o.logger)
	lookups := make([]Lookup, len(infos))
	found := make([][]Theatre, len(infos))

	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, info := range infos {
		date, source := releasedate.LookupDate(info.ReleaseDate, now)
		lookups[i] = Lookup{Code: info.Code, Date: date, DateSource: source}
		if source == releasedate.SourceUnresolved {
			logger.Info("release date unresolved; using today for lookup",
				logging.String(logging.FieldFilmID, info.Code),
				logging.String("raw_release_date", info.ReleaseDate),
				logging.String("lookup_date", date),
				logging.String(logging.FieldDecisionType, "lookup_date"),
			)
		}
		g.Go(func() error {
			if o.limiter != nil {
				if err := o.limiter.Wait(ctx); err != nil {
					lookups[i].Err = err
					return nil
				}
			}
			res := o.fetcher.Do(ctx, o.request(info.Code, date))
			if !res.Success {
				lookups[i].Err = res.Err
				logging.WarnWithContext(logger, "theatre lookup failed; skipping film",
					"theatre_lookup_failed",
					logging.String(logging.FieldFilmID, info.Code),
					logging.String("lookup_date", date),
					logging.Int("status", res.Status),
					logging.Error(res.Err),
					logging.String(logging.FieldErrorHint, "check theatres.url and request headers"),
					logging.String(logging.FieldImpact, "theatres for this film are missing from the cycle"),
				)
				return nil
			}
			found[i] = Parse(res.Body, o.opts.Path)
			lookups[i].Found = len(found[i])
			logger.Debug("theatre lookup complete",
				logging.String(logging.FieldFilmID, info.Code),
				logging.String("lookup_date", date),
				logging.Int("theatres", len(found[i])),
			)
			return nil
		})
	}
	_ = g.Wait()

	var all []Theatre
	for _, list := range found {
		all = append(all, list...)
	}
	return Collection{Theatres: Dedupe(all), Lookups: lookups}
}

func (o *Orchestrator) request(code, date string) httpx.Request {
	target := strings.NewReplacer(
		"{filmId}", url.QueryEscape(code),
		"{date}", url.QueryEscape(date),
	).Replace(o.opts.URL)
	body := strings.NewReplacer(
		"{filmId}", jsonEscape(code),
		"{date}", jsonEscape(date),
	).Replace(o.opts.BodyTemplate)
	return httpx.Request{
		Method:  o.opts.Method,
		URL:     target,
		Headers: o.opts.Headers,
		Body:    body,
	}
}

// jsonEscape returns s escaped for use inside a JSON string literal.
func jsonEscape(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return s
	}
	return string(data[1 : len(data)-1])
}

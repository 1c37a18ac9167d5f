package monitor

import (
	"context"
	"errors"
	"log/slog"

	"marquee/internal/condition"
	"marquee/internal/dedup"
	"marquee/internal/keywords"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/theatres"
)

// RunCycle performs one poll cycle and returns its outcome. Failures are
// contained in the outcome; RunCycle never panics on bad input.
func (m *Monitor) RunCycle(ctx context.Context) Outcome {
	out := Outcome{
		CycleID:   m.newID(),
		StartedAt: m.now(),
		Rule:      m.rule,
	}
	ctx = services.WithCycleID(ctx, out.CycleID)
	logger := logging.WithContext(ctx, m.logger)

	out.enter(StateFetching)
	res := m.fetcher.Do(ctx, m.opts.Listing)
	if !res.Success {
		if ctx.Err() != nil {
			out.Err = ctx.Err()
			out.Reason = "shutdown during fetch"
			out.enter(StateIdle)
			return m.finish(ctx, logger, out)
		}
		out.Err = res.Err
		out.Reason = "listing fetch failed"
		m.metrics.FetchFailed("listing")
		logging.WarnWithContext(logger, "listing fetch failed", "listing_fetch_failed",
			logging.Error(res.Err),
			logging.Int("status", res.Status),
			logging.String(logging.FieldErrorHint, "check listing.url and network connectivity"),
			logging.String(logging.FieldImpact, "this cycle was skipped"),
		)
		m.notifyFetchError(ctx, logger, res.Err)
		out.enter(StateIdle)
		return m.finish(ctx, logger, out)
	}

	out.enter(StateEvaluating)
	catalog := listing.Extract(res.Body, m.opts.MoviesPath)
	logger.Debug("listing fetched",
		logging.Int("movie_count", catalog.MovieCount()),
		logging.Int("film_names", len(catalog.Names())),
	)

	switch m.rule {
	case RuleKeywords:
		m.evaluateKeywords(ctx, logger, catalog, &out)
	case RuleTargetName:
		m.evaluateTargetName(ctx, logger, catalog, &out)
	default:
		m.evaluateCondition(ctx, logger, catalog, &out)
	}
	return m.finish(ctx, logger, out)
}

func (m *Monitor) evaluateKeywords(ctx context.Context, logger *slog.Logger, catalog listing.Catalog, out *Outcome) {
	matches := keywords.MatchAll(m.opts.FilmKeywords, catalog.Names())
	if len(matches) == 0 {
		out.Reason = "no film keyword set matched"
		out.enter(StateNoMatch)
		return
	}
	out.FilmMatches = matches
	out.MatchedFilms = keywords.MatchedNames(matches)
	out.FilmInfos = catalog.ResolveFilmInfo(out.MatchedFilms)

	for _, match := range matches {
		logger.Info("film keyword set matched",
			logging.String("set", match.Label()),
			logging.Strings("films", match.Names),
		)
	}

	var collection theatres.Collection
	if m.collector != nil {
		collection = m.collector.Collect(ctx, out.FilmInfos, m.now())
	}
	out.Lookups = collection.Lookups
	for range collection.Failed() {
		m.metrics.FetchFailed("theatres")
	}
	if ctx.Err() != nil {
		out.Err = ctx.Err()
		out.Reason = "shutdown during theatre lookups"
		out.enter(StateIdle)
		return
	}

	out.Cinema = theatres.MatchCinemas(m.opts.CinemaKeywords, collection.Theatres)
	if !out.Cinema.Matched {
		out.Reason = "no theatre matched the cinema keyword sets"
		logger.Info("match suppressed",
			logging.Args(logging.DecisionAttrs("cinema_filter", "suppressed", out.Reason)...)...,
		)
		out.enter(StateSkipped)
		return
	}

	key, ok := dedup.Key(listing.Codes(out.FilmInfos), theatres.Names(out.Cinema.Theatres), out.Cinema.All)
	m.notifyAndEscalate(ctx, logger, out, key, ok)
}

func (m *Monitor) evaluateTargetName(ctx context.Context, logger *slog.Logger, catalog listing.Catalog, out *Outcome) {
	matches := keywords.MatchAll(keywords.Single(m.opts.TargetName), catalog.Names())
	if len(matches) == 0 {
		out.Reason = "target name not listed"
		out.enter(StateNoMatch)
		return
	}
	out.FilmMatches = matches
	out.MatchedFilms = keywords.MatchedNames(matches)
	logger.Info("target name matched",
		logging.String("target", m.opts.TargetName),
		logging.Strings("films", out.MatchedFilms),
	)
	m.notifyAndEscalate(ctx, logger, out, dedup.LegacyKey(m.opts.TargetName), true)
}

func (m *Monitor) evaluateCondition(ctx context.Context, logger *slog.Logger, catalog listing.Catalog, out *Outcome) {
	if m.compileErr != nil {
		m.conditionFailed(logger, out, m.compileErr)
		return
	}
	env := condition.Env{
		Raw:        catalog.Raw(),
		MovieCount: catalog.MovieCount(),
		FilmNames:  catalog.Names(),
		TargetName: m.opts.TargetName,
	}
	met, err := m.program.Eval(env)
	if err != nil {
		m.conditionFailed(logger, out, err)
		return
	}
	if !met {
		out.Reason = "condition not met"
		out.enter(StateNoMatch)
		return
	}
	logger.Info("condition met", logging.String("condition", m.program.Source()))
	m.notifyAndEscalate(ctx, logger, out, "", false)
}

func (m *Monitor) conditionFailed(logger *slog.Logger, out *Outcome, err error) {
	m.metrics.ExpressionFailed()
	out.Err = err
	out.Reason = "condition could not be evaluated"
	logging.WarnWithContext(logger, "condition evaluation failed", "condition_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check match.condition syntax"),
		logging.String(logging.FieldImpact, "treated as not met"),
	)
	out.enter(StateNoMatch)
}

func (m *Monitor) finish(ctx context.Context, logger *slog.Logger, out Outcome) Outcome {
	out.Duration = m.now().Sub(out.StartedAt)
	if out.Duration < 0 {
		out.Duration = 0
	}
	m.metrics.CycleFinished(string(out.State), out.Duration, out.StartedAt.Add(out.Duration))
	m.metrics.SetSeenKeys(m.dedup.Size())

	if m.journal != nil {
		// The journal write must survive cancellation of the cycle context.
		if err := m.journal.Record(context.WithoutCancel(ctx), journalEntry(out)); err != nil {
			logging.WarnWithContext(logger, "journal write failed", "journal_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check journal.path permissions and disk space"),
				logging.String(logging.FieldImpact, "cycle history incomplete"),
			)
		}
	}

	attrs := []logging.Attr{
		logging.String("state", string(out.State)),
		logging.String("rule", out.Rule.String()),
		logging.Duration("duration", out.Duration),
	}
	if out.Reason != "" {
		attrs = append(attrs, logging.String("reason", out.Reason))
	}
	if out.MatchKey != "" {
		attrs = append(attrs, logging.String(logging.FieldMatchKey, out.MatchKey))
	}
	if out.Err != nil && !errors.Is(out.Err, context.Canceled) {
		attrs = append(attrs, logging.String("error_kind", services.Kind(out.Err)))
	}
	logger.Info("cycle finished", logging.Args(attrs...)...)

	m.mu.Lock()
	m.cycles++
	last := out
	m.last = &last
	m.mu.Unlock()
	return out
}

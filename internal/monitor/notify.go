package monitor

import (
	"context"
	"log/slog"

	"marquee/internal/journal"
	"marquee/internal/keywords"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/notifications"
	"marquee/internal/releasedate"
	"marquee/internal/theatres"
)

func (m *Monitor) notifyAndEscalate(ctx context.Context, logger *slog.Logger, out *Outcome, key string, hasKey bool) {
	out.enter(StateNotifying)
	out.MatchKey = key
	if m.dryRun {
		out.Reason = "dry run"
		logger.Info("match found (dry run, notification suppressed)")
		return
	}

	if m.notifier != nil {
		err := m.notifier.NotifyMatch(ctx, buildMatch(*out))
		m.metrics.Notified("match", err)
		out.NotifyErr = err
		out.Notified = err == nil
		if err != nil {
			logging.WarnWithContext(logger, "match notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and connectivity"),
				logging.String(logging.FieldImpact, "match was not delivered"),
			)
		}
	}

	if !m.opts.EscalationEnabled || m.caller == nil || !m.caller.Enabled() {
		return
	}

	out.enter(StateEscalationCheck)
	if hasKey && !m.dedup.ShouldEscalate(key) {
		out.Reason = "repeat match, escalation suppressed"
		m.metrics.EscalationSuppressed()
		logger.Info("escalation suppressed",
			logging.Args(append(logging.DecisionAttrs("escalation_dedup", "suppressed", "match key already escalated"),
				logging.String(logging.FieldMatchKey, key))...)...,
		)
		out.enter(StateSkipped)
		return
	}
	if !hasKey {
		logger.Debug("no match key available, escalating unconditionally")
	}

	out.enter(StateEscalating)
	callID, err := m.caller.Call(ctx)
	m.metrics.Escalated(err)
	if err != nil {
		out.EscalationErr = err
		logging.WarnWithContext(logger, "voice escalation failed", "escalation_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check voice credentials and phone numbers"),
			logging.String(logging.FieldImpact, "no call was placed"),
		)
		return
	}
	out.Escalated = true
	out.CallID = callID
	logger.Info("voice escalation placed", logging.String("call_id", callID))
}

func (m *Monitor) notifyFetchError(ctx context.Context, logger *slog.Logger, cause error) {
	if m.dryRun || m.notifier == nil {
		return
	}
	err := m.notifier.NotifyFetchError(ctx, cause)
	m.metrics.Notified("fetch_error", err)
	if err != nil {
		logging.WarnWithContext(logger, "fetch error notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "listing failure was not reported"),
		)
	}
}

func buildMatch(out Outcome) notifications.Match {
	match := notifications.Match{
		Rule:        out.Rule.String(),
		Films:       out.MatchedFilms,
		AllTheatres: out.Cinema.All,
	}
	for _, fm := range out.FilmMatches {
		match.Sets = append(match.Sets, fm.Label())
	}
	for _, lookup := range out.Lookups {
		match.Dates = append(match.Dates, dateLine(lookup))
	}
	for _, th := range out.Cinema.Theatres {
		match.Theatres = append(match.Theatres, notifications.Theatre{
			Name:    th.Name,
			City:    th.CityName,
			Address: th.Address,
			Shows:   th.ShowCount,
		})
	}
	for _, set := range out.Cinema.Sets {
		match.CinemaSets = append(match.CinemaSets, keywords.SetLabel(set.Index, set.Keywords))
	}
	return match
}

func dateLine(l theatres.Lookup) string {
	line := l.Code + ": " + l.Date
	switch l.DateSource {
	case releasedate.SourcePast:
		line += " (release passed, using today)"
	case releasedate.SourceUnresolved:
		line += " (release date unknown, using today)"
	}
	if l.Err != nil {
		line += " (lookup failed)"
	}
	return line
}

func journalEntry(out Outcome) journal.Entry {
	entry := journal.Entry{
		CycleID:   out.CycleID,
		StartedAt: out.StartedAt,
		Duration:  out.Duration,
		State:     string(out.State),
		Rule:      out.Rule.String(),
		Films:     out.MatchedFilms,
		Codes:     listing.Codes(out.FilmInfos),
		Theatres:  theatres.Names(out.Cinema.Theatres),
		MatchKey:  out.MatchKey,
		Notified:  out.Notified,
		Escalated: out.Escalated,
		CallID:    out.CallID,
	}
	switch {
	case out.Err != nil:
		entry.Error = out.Err.Error()
	case out.EscalationErr != nil:
		entry.Error = out.EscalationErr.Error()
	case out.NotifyErr != nil:
		entry.Error = out.NotifyErr.Error()
	}
	return entry
}

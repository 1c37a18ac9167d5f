package monitor

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"marquee/internal/httpx"
	"marquee/internal/journal"
	"marquee/internal/keywords"
	"marquee/internal/logging"
	"marquee/internal/notifications"
	"marquee/internal/services"
	"marquee/internal/theatres"
)

const (
	listingURL = "https://listing.test/movies"
	theatreURL = "https://theatres.test/lookup"
)

const spiderListing = `{"data":{"movies":[
  {"name":"Spider-Man: Across the Spider-Verse","films":[
    {"name":"Spider-Man: Across the Spider-Verse (IMAX)","code":"SV-IMAX","releaseDate":"2099-06-02"}
  ]},
  {"name":"Dune","code":"DUNE-1","releaseDate":"Jan 5, 2020"}
]}}`

const theatreBody = `{"data":{"theatres":[
  {"name":"CGV IMAX Hall","showCount":3,"cityName":"Seoul"},
  {"name":"Lotte Cinema","showCount":1}
]}}`

var fixedNow = time.Date(2025, time.December, 1, 9, 0, 0, 0, time.Local)

type routeFetcher struct {
	mu       sync.Mutex
	listing  func() httpx.Result
	requests []httpx.Request
	onList   func(n int)
	listed   int
}

func newRouteFetcher(body string) *routeFetcher {
	return &routeFetcher{listing: func() httpx.Result {
		return httpx.Result{Success: true, Status: 200, Body: []byte(body)}
	}}
}

func (f *routeFetcher) Do(_ context.Context, req httpx.Request) httpx.Result {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	isListing := req.URL == listingURL
	if isListing {
		f.listed++
	}
	n := f.listed
	f.mu.Unlock()

	if !isListing {
		return httpx.Result{Success: true, Status: 200, Body: []byte(theatreBody)}
	}
	if f.onList != nil {
		f.onList(n)
	}
	return f.listing()
}

func (f *routeFetcher) theatreRequests() []httpx.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []httpx.Request
	for _, r := range f.requests {
		if r.URL != listingURL {
			out = append(out, r)
		}
	}
	return out
}

type fakeNotifier struct {
	mu          sync.Mutex
	matches     []notifications.Match
	fetchErrors []error
	err         error
}

func (n *fakeNotifier) NotifyMatch(_ context.Context, m notifications.Match) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, m)
	return n.err
}

func (n *fakeNotifier) NotifyFetchError(_ context.Context, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fetchErrors = append(n.fetchErrors, err)
	return nil
}

func (n *fakeNotifier) TestNotification(context.Context) error { return nil }

type fakeCaller struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *fakeCaller) Enabled() bool { return true }

func (c *fakeCaller) Call(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "CA-1", nil
}

type fakeRecorder struct {
	entries []journal.Entry
}

func (r *fakeRecorder) Record(_ context.Context, e journal.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

type harness struct {
	fetcher  *routeFetcher
	notifier *fakeNotifier
	caller   *fakeCaller
	monitor  *Monitor
}

func newHarness(t *testing.T, opts Options, body string, extra ...Option) *harness {
	t.Helper()
	opts.Listing = httpx.Request{Method: "GET", URL: listingURL}
	opts.Theatres.URL = theatreURL
	opts.EscalationEnabled = true
	h := &harness{
		fetcher:  newRouteFetcher(body),
		notifier: &fakeNotifier{},
		caller:   &fakeCaller{},
	}
	collector := theatres.NewOrchestrator(h.fetcher, opts.Theatres, logging.NewNop())
	options := append([]Option{WithClock(func() time.Time { return fixedNow })}, extra...)
	h.monitor = New(opts, h.fetcher, collector, h.notifier, h.caller, options...)
	return h
}

func spiderOptions() Options {
	return Options{FilmKeywords: keywords.Config{{"spider", "man"}}}
}

func TestRepeatedMatchNotifiesEveryCycleButEscalatesOnce(t *testing.T) {
	h := newHarness(t, spiderOptions(), spiderListing)

	first := h.monitor.RunCycle(context.Background())
	second := h.monitor.RunCycle(context.Background())

	if len(h.notifier.matches) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(h.notifier.matches))
	}
	if h.caller.calls != 1 {
		t.Fatalf("expected exactly one call, got %d", h.caller.calls)
	}
	if first.MatchKey != "SV-IMAX|all" || second.MatchKey != first.MatchKey {
		t.Fatalf("unexpected match keys %q / %q", first.MatchKey, second.MatchKey)
	}
	if !first.Escalated || first.CallID != "CA-1" || first.State != StateEscalating {
		t.Fatalf("first cycle should escalate, got %+v", first)
	}
	wantPath := []State{StateFetching, StateEvaluating, StateNotifying, StateEscalationCheck, StateSkipped}
	if !reflect.DeepEqual(second.Path, wantPath) {
		t.Fatalf("second path = %v, want %v", second.Path, wantPath)
	}
	if second.Escalated {
		t.Fatalf("second cycle must not escalate")
	}
	if h.monitor.Deduplicator().Size() != 1 {
		t.Fatalf("expected one seen key, got %d", h.monitor.Deduplicator().Size())
	}
	if h.monitor.Cycles() != 2 {
		t.Fatalf("expected 2 cycles, got %d", h.monitor.Cycles())
	}
}

func TestCinemaKeywordsNarrowTheatresAndKey(t *testing.T) {
	opts := spiderOptions()
	opts.CinemaKeywords = keywords.Config{{"imax"}}
	h := newHarness(t, opts, spiderListing)

	out := h.monitor.RunCycle(context.Background())
	if out.MatchKey != "SV-IMAX|CGV IMAX Hall" {
		t.Fatalf("unexpected match key %q", out.MatchKey)
	}
	if len(h.notifier.matches) != 1 {
		t.Fatalf("expected one notification, got %d", len(h.notifier.matches))
	}
	match := h.notifier.matches[0]
	if len(match.Theatres) != 1 || match.Theatres[0].Name != "CGV IMAX Hall" || match.Theatres[0].Shows != 3 {
		t.Fatalf("unexpected notified theatres %+v", match.Theatres)
	}
	if match.AllTheatres {
		t.Fatalf("cinema filter should not report all theatres")
	}
	if !reflect.DeepEqual(match.CinemaSets, []string{"#1 [imax]"}) {
		t.Fatalf("unexpected cinema sets %v", match.CinemaSets)
	}
	if !reflect.DeepEqual(match.Sets, []string{"#1 [spider + man]"}) {
		t.Fatalf("unexpected film sets %v", match.Sets)
	}
}

func TestCinemaKeywordsWithoutTheatreSuppressMatch(t *testing.T) {
	opts := spiderOptions()
	opts.CinemaKeywords = keywords.Config{{"dolby"}}
	h := newHarness(t, opts, spiderListing)

	out := h.monitor.RunCycle(context.Background())
	if out.State != StateSkipped {
		t.Fatalf("expected skipped, got %s", out.State)
	}
	if len(h.notifier.matches) != 0 || h.caller.calls != 0 {
		t.Fatalf("suppressed match must not notify or call")
	}
	if out.Matched() {
		t.Fatalf("suppressed match should not report Matched")
	}
}

func TestBlankCinemaKeywordSetSuppressesMatch(t *testing.T) {
	opts := spiderOptions()
	opts.CinemaKeywords = keywords.Config{{}}
	h := newHarness(t, opts, spiderListing)

	out := h.monitor.RunCycle(context.Background())
	if out.State != StateSkipped {
		t.Fatalf("expected skipped, got %s (path %v)", out.State, out.Path)
	}
	if out.Cinema.All || out.MatchKey != "" {
		t.Fatalf("blank cinema set must not pass every theatre: all=%v key=%q", out.Cinema.All, out.MatchKey)
	}
	if len(h.notifier.matches) != 0 || h.caller.calls != 0 {
		t.Fatalf("blank cinema set must not notify or call")
	}
}

func TestListingFailureNotifiesAndLeavesDedupUntouched(t *testing.T) {
	h := newHarness(t, spiderOptions(), spiderListing)
	h.fetcher.listing = func() httpx.Result {
		return httpx.Result{Err: services.Wrap(services.ErrTransport, "httpx", "get", "dial failed", errors.New("connection refused"))}
	}

	out := h.monitor.RunCycle(context.Background())
	if !reflect.DeepEqual(out.Path, []State{StateFetching, StateIdle}) {
		t.Fatalf("unexpected path %v", out.Path)
	}
	if !errors.Is(out.Err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", out.Err)
	}
	if len(h.notifier.fetchErrors) != 1 {
		t.Fatalf("expected one fetch error notification, got %d", len(h.notifier.fetchErrors))
	}
	if len(h.notifier.matches) != 0 || h.caller.calls != 0 {
		t.Fatalf("failed fetch must not notify a match or call")
	}
	if h.monitor.Deduplicator().Size() != 0 {
		t.Fatalf("failed fetch must not touch dedup state")
	}

	h.fetcher.listing = func() httpx.Result {
		return httpx.Result{Success: true, Status: 200, Body: []byte(spiderListing)}
	}
	if next := h.monitor.RunCycle(context.Background()); !next.Escalated {
		t.Fatalf("next cycle should run normally, got %+v", next)
	}
}

func TestUnresolvedAndPastDatesFallBackToToday(t *testing.T) {
	body := `{"data":{"movies":[
	  {"name":"Spider-Man","films":[{"name":"Spider-Man (2D)","code":"S2D"}]},
	  {"name":"Spider-Man Classic","code":"SC","releaseDate":"Jan 5, 2020"}
	]}}`
	h := newHarness(t, spiderOptions(), body)

	out := h.monitor.RunCycle(context.Background())
	requests := h.fetcher.theatreRequests()
	if len(requests) != 2 {
		t.Fatalf("expected two theatre lookups, got %d", len(requests))
	}
	for _, req := range requests {
		if !strings.Contains(req.Body, `"date":"2025-12-01"`) {
			t.Fatalf("lookup should use today, got body %s", req.Body)
		}
	}
	dates := h.notifier.matches[0].Dates
	if len(dates) != 2 {
		t.Fatalf("expected two date lines, got %v", dates)
	}
	joined := strings.Join(dates, "\n")
	if !strings.Contains(joined, "release date unknown") || !strings.Contains(joined, "release passed") {
		t.Fatalf("date lines should explain fallback, got %v", dates)
	}
	if out.MatchKey != "S2D,SC|all" {
		t.Fatalf("unexpected key %q", out.MatchKey)
	}
}

func TestNoKeywordMatchEndsInNoMatch(t *testing.T) {
	h := newHarness(t, Options{FilmKeywords: keywords.Config{{"batman"}}}, spiderListing)
	out := h.monitor.RunCycle(context.Background())
	if out.State != StateNoMatch {
		t.Fatalf("expected no_match, got %s", out.State)
	}
	if len(h.fetcher.theatreRequests()) != 0 {
		t.Fatalf("no match must not trigger theatre lookups")
	}
}

func TestConditionRuleEscalatesEveryTime(t *testing.T) {
	h := newHarness(t, Options{Condition: `movieCount > 1 && anyFilmContains("dune")`}, spiderListing)
	if h.monitor.Rule() != RuleCondition {
		t.Fatalf("expected condition rule, got %s", h.monitor.Rule())
	}
	for i := 0; i < 2; i++ {
		out := h.monitor.RunCycle(context.Background())
		if out.MatchKey != "" || !out.Escalated {
			t.Fatalf("cycle %d: expected unkeyed escalation, got %+v", i, out)
		}
	}
	if h.caller.calls != 2 {
		t.Fatalf("condition matches are not deduplicated, expected 2 calls got %d", h.caller.calls)
	}
}

func TestInvalidConditionIsTreatedAsNotMet(t *testing.T) {
	h := newHarness(t, Options{Condition: "movieCount >"}, spiderListing)
	out := h.monitor.RunCycle(context.Background())
	if out.State != StateNoMatch {
		t.Fatalf("expected no_match, got %s", out.State)
	}
	if !errors.Is(out.Err, services.ErrExpression) {
		t.Fatalf("expected expression error, got %v", out.Err)
	}
	if len(h.notifier.matches) != 0 {
		t.Fatalf("invalid condition must not notify")
	}
}

func TestDefaultConditionUsesMovieCount(t *testing.T) {
	h := newHarness(t, Options{}, `{"data":{"movies":[]}}`)
	if h.monitor.Rule() != RuleDefault {
		t.Fatalf("expected default rule")
	}
	if out := h.monitor.RunCycle(context.Background()); out.State != StateNoMatch {
		t.Fatalf("empty listing should not match, got %s", out.State)
	}
	h.fetcher.listing = func() httpx.Result {
		return httpx.Result{Success: true, Status: 200, Body: []byte(spiderListing)}
	}
	if out := h.monitor.RunCycle(context.Background()); !out.Matched() {
		t.Fatalf("non-empty listing should match, got %+v", out)
	}
}

func TestTargetNameDedupsOnLegacyKey(t *testing.T) {
	h := newHarness(t, Options{TargetName: "dune"}, spiderListing)
	first := h.monitor.RunCycle(context.Background())
	h.monitor.RunCycle(context.Background())
	if first.MatchKey != "legacy:dune" {
		t.Fatalf("unexpected key %q", first.MatchKey)
	}
	if h.caller.calls != 1 || len(h.notifier.matches) != 2 {
		t.Fatalf("expected 2 notifications and 1 call, got %d/%d", len(h.notifier.matches), h.caller.calls)
	}
}

func TestNotificationFailureStillEscalates(t *testing.T) {
	h := newHarness(t, spiderOptions(), spiderListing)
	h.notifier.err = errors.New("ntfy down")
	out := h.monitor.RunCycle(context.Background())
	if out.Notified || out.NotifyErr == nil {
		t.Fatalf("expected notify failure recorded, got %+v", out)
	}
	if !out.Escalated {
		t.Fatalf("escalation should proceed after notify failure")
	}
}

func TestEscalationDisabledStopsAtNotifying(t *testing.T) {
	opts := spiderOptions()
	h := newHarness(t, opts, spiderListing)
	h.monitor.opts.EscalationEnabled = false
	out := h.monitor.RunCycle(context.Background())
	if out.State != StateNotifying || h.caller.calls != 0 {
		t.Fatalf("expected notifying without call, got %s / %d calls", out.State, h.caller.calls)
	}
	if h.monitor.Deduplicator().Size() != 0 {
		t.Fatalf("dedup should not record keys when escalation is off")
	}
}

func TestDryRunSuppressesDelivery(t *testing.T) {
	h := newHarness(t, spiderOptions(), spiderListing, WithDryRun(true))
	out := h.monitor.RunCycle(context.Background())
	if out.State != StateNotifying || out.Reason != "dry run" {
		t.Fatalf("unexpected dry run outcome %+v", out)
	}
	if len(h.notifier.matches) != 0 || h.caller.calls != 0 {
		t.Fatalf("dry run must not deliver")
	}
}

func TestCycleIsJournaled(t *testing.T) {
	rec := &fakeRecorder{}
	h := newHarness(t, spiderOptions(), spiderListing,
		WithJournal(rec),
		WithIDGenerator(func() string { return "cycle-1" }),
	)
	h.monitor.RunCycle(context.Background())
	if len(rec.entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.CycleID != "cycle-1" || e.State != string(StateEscalating) || e.MatchKey != "SV-IMAX|all" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if !e.Notified || !e.Escalated || e.CallID != "CA-1" {
		t.Fatalf("delivery flags not journaled: %+v", e)
	}
	if !reflect.DeepEqual(e.Codes, []string{"SV-IMAX"}) || !reflect.DeepEqual(e.Theatres, []string{"CGV IMAX Hall", "Lotte Cinema"}) {
		t.Fatalf("unexpected codes/theatres %v %v", e.Codes, e.Theatres)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	opts := spiderOptions()
	opts.PollInterval = 5 * time.Millisecond
	h := newHarness(t, opts, spiderListing)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.fetcher.onList = func(n int) {
		if n >= 2 {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() { done <- h.monitor.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if h.monitor.Cycles() < 2 {
		t.Fatalf("expected at least two cycles, got %d", h.monitor.Cycles())
	}
	if h.caller.calls != 1 {
		t.Fatalf("expected one call across cycles, got %d", h.caller.calls)
	}
}

func TestRulePrecedence(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Rule
	}{
		{"keywords win", Options{FilmKeywords: keywords.Config{{"a"}}, Condition: "true", TargetName: "x"}, RuleKeywords},
		{"condition over target", Options{Condition: "true", TargetName: "x"}, RuleCondition},
		{"target name", Options{TargetName: "x"}, RuleTargetName},
		{"default", Options{}, RuleDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Rule(); got != tt.want {
				t.Fatalf("Rule() = %s, want %s", got, tt.want)
			}
		})
	}
}

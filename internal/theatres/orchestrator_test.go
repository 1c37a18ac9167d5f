package theatres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"marquee/internal/httpx"
	"marquee/internal/listing"
	"marquee/internal/logging"
	"marquee/internal/releasedate"
)

type fakeFetcher struct {
	mu       sync.Mutex
	requests []httpx.Request
	respond  func(req httpx.Request) httpx.Result
}

func (f *fakeFetcher) Do(_ context.Context, req httpx.Request) httpx.Result {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

func theatresBody(names ...string) []byte {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, `{"name":"`+n+`","showCount":2}`)
	}
	return []byte(`{"data":{"theatres":[` + strings.Join(parts, ",") + `]}}`)
}

func TestCollectMergesAndIsolatesFailures(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(req httpx.Request) httpx.Result {
		switch {
		case strings.Contains(req.Body, `"F1"`):
			return httpx.Result{Success: true, Status: 200, Body: theatresBody("A", "B")}
		case strings.Contains(req.Body, `"F2"`):
			return httpx.Result{Status: 500, Err: errors.New("boom")}
		default:
			return httpx.Result{Success: true, Status: 200, Body: theatresBody("B", "C")}
		}
	}}
	orch := NewOrchestrator(fetcher, Options{URL: "https://example.test/theatres", Concurrency: 3}, logging.NewNop())
	now := time.Date(2025, time.December, 1, 9, 0, 0, 0, time.Local)
	coll := orch.Collect(context.Background(), []listing.FilmInfo{
		{Code: "F1", ReleaseDate: "2025-12-24"},
		{Code: "F2"},
		{Code: "F3", ReleaseDate: "Nov 14, 2025"},
	}, now)

	if got := Names(coll.Theatres); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected theatres %v", got)
	}
	if len(coll.Lookups) != 3 {
		t.Fatalf("expected 3 lookups, got %d", len(coll.Lookups))
	}
	failed := coll.Failed()
	if len(failed) != 1 || failed[0].Code != "F2" {
		t.Fatalf("expected F2 to fail, got %+v", failed)
	}
	wantDates := []struct {
		date   string
		source releasedate.Source
	}{
		{"2025-12-24", releasedate.SourceRelease},
		{"2025-12-01", releasedate.SourceUnresolved},
		{"2025-12-01", releasedate.SourcePast},
	}
	for i, want := range wantDates {
		if coll.Lookups[i].Date != want.date || coll.Lookups[i].DateSource != want.source {
			t.Fatalf("lookup %d: got %s/%s want %s/%s", i, coll.Lookups[i].Date, coll.Lookups[i].DateSource, want.date, want.source)
		}
	}
}

func TestCollectBuildsRequestsFromTemplates(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(httpx.Request) httpx.Result {
		return httpx.Result{Success: true, Status: 200, Body: theatresBody()}
	}}
	orch := NewOrchestrator(fetcher, Options{
		URL:     "https://example.test/films/{filmId}/theatres?date={date}",
		Method:  "GET",
		Headers: map[string]string{"X-Key": "k"},
	}, nil)
	now := time.Date(2025, time.December, 1, 9, 0, 0, 0, time.Local)
	orch.Collect(context.Background(), []listing.FilmInfo{{Code: "A B", ReleaseDate: "2025-12-05"}}, now)

	if len(fetcher.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(fetcher.requests))
	}
	req := fetcher.requests[0]
	if req.URL != "https://example.test/films/A+B/theatres?date=2025-12-05" {
		t.Fatalf("unexpected url %s", req.URL)
	}
	if req.Body != `{"filmId":"A B","date":"2025-12-05"}` {
		t.Fatalf("unexpected body %s", req.Body)
	}
	if req.Method != "GET" || req.Headers["X-Key"] != "k" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestCollectEscapesBodyValues(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(httpx.Request) httpx.Result {
		return httpx.Result{Success: true, Status: 200, Body: theatresBody()}
	}}
	orch := NewOrchestrator(fetcher, Options{URL: "https://example.test"}, nil)
	orch.Collect(context.Background(), []listing.FilmInfo{{Code: `a"b`}}, time.Now())
	if !strings.Contains(fetcher.requests[0].Body, `"filmId":"a\"b"`) {
		t.Fatalf("expected escaped id, got %s", fetcher.requests[0].Body)
	}
}

func TestCollectCancelledContextRecordsFailures(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(httpx.Request) httpx.Result {
		return httpx.Result{Success: true, Status: 200, Body: theatresBody("A")}
	}}
	orch := NewOrchestrator(fetcher, Options{URL: "https://example.test", RequestsPerSecond: 0.001}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	coll := orch.Collect(ctx, []listing.FilmInfo{{Code: "F1"}, {Code: "F2"}}, time.Now())
	if len(coll.Failed()) != 2 {
		t.Fatalf("expected both lookups to fail on cancelled context, got %+v", coll.Lookups)
	}
	if len(coll.Theatres) != 0 {
		t.Fatalf("expected no theatres, got %+v", coll.Theatres)
	}
}

func TestCollectEmptyInfos(t *testing.T) {
	orch := NewOrchestrator(&fakeFetcher{}, Options{}, nil)
	if coll := orch.Collect(context.Background(), nil, time.Now()); len(coll.Lookups) != 0 {
		t.Fatalf("expected empty collection, got %+v", coll)
	}
}

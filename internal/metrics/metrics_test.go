package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersUpdateCollectors(t *testing.T) {
	m := New()
	m.CycleFinished("notifying", 2*time.Second, time.Unix(1700000000, 0))
	m.CycleFinished("no_match", time.Second, time.Unix(1700000060, 0))
	m.FetchFailed("listing")
	m.Notified("match", nil)
	m.Notified("match", errors.New("boom"))
	m.Escalated(nil)
	m.EscalationSuppressed()
	m.SetSeenKeys(3)
	m.ExpressionFailed()

	if got := testutil.ToFloat64(m.cycles.WithLabelValues("notifying")); got != 1 {
		t.Fatalf("expected 1 notifying cycle, got %v", got)
	}
	if got := testutil.ToFloat64(m.fetchFailures.WithLabelValues("listing")); got != 1 {
		t.Fatalf("expected 1 listing failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("match", "error")); got != 1 {
		t.Fatalf("expected 1 failed notification, got %v", got)
	}
	if got := testutil.ToFloat64(m.seenKeys); got != 3 {
		t.Fatalf("expected seen keys gauge 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastCycleTimestamp); got != 1700000060 {
		t.Fatalf("unexpected last cycle timestamp %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CycleFinished("idle", time.Second, time.Now())
	m.FetchFailed("theatres")
	m.Notified("error", nil)
	m.Escalated(nil)
	m.EscalationSuppressed()
	m.SetSeenKeys(1)
	m.ExpressionFailed()
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestServerEndpoints(t *testing.T) {
	m := New()
	m.EscalationSuppressed()
	srv := httptest.NewServer(NewServer("127.0.0.1:0", m).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "marquee_escalations_suppressed_total 1") {
		t.Fatalf("expected suppressed counter in output:\n%s", body)
	}
}

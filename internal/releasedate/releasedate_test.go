package releasedate

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2025-11-14", "2025-11-14", true},
		{"Nov 14, 2025", "2025-11-14", true},
		{"November 14, 2025", "2025-11-14", true},
		{"Sept 5, 2025", "2025-09-05", true},
		{"nov 14 2025", "2025-11-14", true},
		{"2025-11-14T19:30:00Z", "2025-11-14", true},
		{"2025/11/14", "2025-11-14", true},
		{"2025.11.14", "2025-11-14", true},
		{"20251114", "2025-11-14", true},
		{"11/14/2025", "2025-11-14", true},
		{"14 Nov 2025", "2025-11-14", true},
		{"2025-13-40", "", false},
		{"Foo 14, 2025", "", false},
		{"Feb 30, 2025", "", false},
		{"coming soon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Normalize(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"Nov 14, 2025", "2025/01/02", "2024-02-29"} {
		first, ok := Normalize(in)
		if !ok {
			t.Fatalf("Normalize(%q) failed", in)
		}
		second, ok := Normalize(first)
		if !ok || second != first {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, first, second)
		}
	}
}

func TestLookupDate(t *testing.T) {
	now := time.Date(2025, time.December, 1, 10, 0, 0, 0, time.Local)

	if date, src := LookupDate("Nov 14, 2025", now); date != "2025-12-01" || src != SourcePast {
		t.Fatalf("past release: got %s %s", date, src)
	}
	if date, src := LookupDate("2025-12-24", now); date != "2025-12-24" || src != SourceRelease {
		t.Fatalf("future release: got %s %s", date, src)
	}
	if date, src := LookupDate("2025-12-01", now); date != "2025-12-01" || src != SourceRelease {
		t.Fatalf("release today: got %s %s", date, src)
	}
	for i := 0; i < 3; i++ {
		if date, src := LookupDate("TBA", now); date != "2025-12-01" || src != SourceUnresolved {
			t.Fatalf("unresolved: got %s %s", date, src)
		}
	}
}

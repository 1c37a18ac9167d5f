package notifications

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatMatchLimitsTheatres(t *testing.T) {
	var theatres []Theatre
	for i := 0; i < 13; i++ {
		theatres = append(theatres, Theatre{Name: fmt.Sprintf("Screen %d", i), Shows: i})
	}
	text := FormatMatch(Match{
		Rule:       "keyword sets",
		Theatres:   theatres,
		CinemaSets: []string{"#1 [Screen]"},
	})
	if strings.Contains(text, "Screen 10") {
		t.Fatalf("expected list to stop after ten theatres:\n%s", text)
	}
	if !strings.Contains(text, "... and 3 more") {
		t.Fatalf("expected remainder summary:\n%s", text)
	}
	if !strings.Contains(text, "Matching theatres (13) for #1 [Screen]") {
		t.Fatalf("expected cinema header:\n%s", text)
	}
}

func TestFormatMatchConditionOnly(t *testing.T) {
	text := FormatMatch(Match{})
	if text != "Match found (condition)" {
		t.Fatalf("unexpected text %q", text)
	}
	text = FormatMatch(Match{Rule: "keyword sets", Dates: []string{"F1: 2025-12-01"}})
	if !strings.HasSuffix(text, "No theatres listed yet.") {
		t.Fatalf("unexpected text %q", text)
	}
}

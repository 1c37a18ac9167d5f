package keywords

import (
	"reflect"
	"testing"
)

func TestMatchSetRequiresEveryKeyword(t *testing.T) {
	names := []string{"Spider-Man: No Way Home", "Spider-Man: Far From Home", "No Way Out"}
	got := MatchSet(Set{"spider", "NO WAY HOME"}, names)
	want := []string{"Spider-Man: No Way Home"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchSet = %v, want %v", got, want)
	}
}

func TestMatchSetEmptyOrBlankMatchesNothing(t *testing.T) {
	names := []string{"Dune"}
	if got := MatchSet(nil, names); got != nil {
		t.Fatalf("expected nil for empty set, got %v", got)
	}
	if got := MatchSet(Set{" ", "\t"}, names); got != nil {
		t.Fatalf("expected nil for all-blank set, got %v", got)
	}
}

func TestMatchSetIgnoresBlankKeywords(t *testing.T) {
	names := []string{"Dune", "Dune: Part Two", "Arrival"}
	got := MatchSet(Set{"dune", "  "}, names)
	want := MatchSet(Set{"dune"}, names)
	if !reflect.DeepEqual(got, want) || len(got) != 2 {
		t.Fatalf("blank keyword changed the match: got %v, want %v", got, want)
	}
	if !(Set{"", "part two"}).Matches("Dune: Part Two") {
		t.Fatal("expected blank keyword to be ignored by Matches")
	}
	if (Config{{"  ", "dune"}}).Empty() {
		t.Fatal("set with one real keyword must be usable")
	}
}

func TestMatchAllPreservesIndicesAndOmitsEmpty(t *testing.T) {
	cfg := Config{
		{"Avatar"},
		{},
		{"Spider", "No Way Home"},
		{"Dune"},
	}
	names := []string{"Dune: Part Two", "Spider-Man: No Way Home", "Dune"}
	got := MatchAll(cfg, names)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	if got[0].SetIndex != 2 || got[1].SetIndex != 3 {
		t.Fatalf("unexpected set order: %+v", got)
	}
	if !reflect.DeepEqual(got[1].Names, []string{"Dune", "Dune: Part Two"}) {
		t.Fatalf("unexpected names: %v", got[1].Names)
	}
	if got[0].Label() != "#3 [Spider + No Way Home]" {
		t.Fatalf("unexpected label %q", got[0].Label())
	}
}

func TestMatchAllNeverReturnsEmptyNames(t *testing.T) {
	configs := []Config{
		nil,
		{{}},
		{{"x"}, {"y", "z"}},
		{{"a"}, {"b"}, {"a", "b"}, {""}},
	}
	nameSets := [][]string{
		nil,
		{"a"},
		{"ab", "ba", "xyz"},
		{"", " "},
	}
	for _, cfg := range configs {
		for _, names := range nameSets {
			for _, m := range MatchAll(cfg, names) {
				if len(m.Names) == 0 {
					t.Fatalf("empty match for cfg=%v names=%v", cfg, names)
				}
			}
		}
	}
}

func TestSingleIsLegacyTarget(t *testing.T) {
	cfg := Single("  no way home ")
	if len(cfg) != 1 || len(cfg[0]) != 1 || cfg[0][0] != "no way home" {
		t.Fatalf("unexpected config %v", cfg)
	}
	if Single(" ") != nil {
		t.Fatal("blank target must produce empty config")
	}
	if m := MatchAll(cfg, []string{"Spider-Man: No Way Home"}); len(m) != 1 {
		t.Fatalf("expected legacy match, got %v", m)
	}
}

func TestConfigMatchesReportsSets(t *testing.T) {
	cfg := Config{{"IMAX"}, {"Dolby"}, {"City", "IMAX"}}
	hits, ok := cfg.Matches("City Mall - IMAX")
	if !ok || !reflect.DeepEqual(hits, []int{0, 2}) {
		t.Fatalf("unexpected hits %v %v", hits, ok)
	}
	if _, ok := cfg.Matches("City Mall - Digital"); ok {
		t.Fatal("unexpected match")
	}
	if !(Config{{}, {" "}}).Empty() {
		t.Fatal("expected config without usable keywords to be empty")
	}
}

func TestMatchedNamesUnion(t *testing.T) {
	matches := []FilmMatch{
		{Names: []string{"b", "a"}},
		{Names: []string{"a", "c"}},
	}
	if got := MatchedNames(matches); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected union %v", got)
	}
}

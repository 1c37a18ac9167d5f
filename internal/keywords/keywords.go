package keywords

import (
	"sort"
	"strconv"
	"strings"

	"marquee/internal/textutil"
)

// Set is an AND-combination of keywords. Blank keywords are ignored, the same
// way configuration loading drops them, so {"dune", " "} behaves like
// {"dune"}. A set with no non-blank keyword matches nothing.
type Set []string

// Config is an ordered OR-combination of keyword sets. Set positions are
// stable: empty sets keep their index and simply never match.
type Config []Set

// FilmMatch records one configured set that matched at least one name.
type FilmMatch struct {
	SetIndex int
	Keywords Set
	Names    []string
}

// Label renders the set for display as "#N [a + b]", numbering from one.
func (m FilmMatch) Label() string {
	return SetLabel(m.SetIndex, m.Keywords)
}

// SetLabel renders a set index and its keywords for display.
func SetLabel(index int, set Set) string {
	var b strings.Builder
	b.WriteByte('#')
	b.WriteString(strconv.Itoa(index + 1))
	b.WriteString(" [")
	b.WriteString(strings.Join(set, " + "))
	b.WriteByte(']')
	return b.String()
}

// FromStrings converts a decoded configuration value into a Config.
func FromStrings(raw [][]string) Config {
	if len(raw) == 0 {
		return nil
	}
	cfg := make(Config, 0, len(raw))
	for _, set := range raw {
		cfg = append(cfg, Set(set))
	}
	return cfg
}

// Single builds the one-set, one-keyword Config used for a legacy target name.
func Single(keyword string) Config {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	return Config{{keyword}}
}

// Empty reports whether the configuration contains no usable keyword.
func (c Config) Empty() bool {
	for _, set := range c {
		if set.usable() {
			return false
		}
	}
	return true
}

func (s Set) usable() bool {
	return len(s.terms()) > 0
}

// terms returns the non-blank keywords of the set.
func (s Set) terms() []string {
	out := make([]string, 0, len(s))
	for _, kw := range s {
		if strings.TrimSpace(kw) != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Matches reports whether name contains every non-blank keyword of the set.
func (s Set) Matches(name string) bool {
	terms := s.terms()
	if len(terms) == 0 {
		return false
	}
	return textutil.ContainsAllFold(name, terms)
}

// MatchSet returns the names, sorted, that satisfy every keyword in set.
func MatchSet(set Set, names []string) []string {
	if !set.usable() {
		return nil
	}
	var out []string
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		if set.Matches(name) {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// MatchAll evaluates every set in configuration order. Sets that match no
// name are omitted, so every returned FilmMatch has at least one name.
func MatchAll(cfg Config, names []string) []FilmMatch {
	var matches []FilmMatch
	for idx, set := range cfg {
		found := MatchSet(set, names)
		if len(found) == 0 {
			continue
		}
		matches = append(matches, FilmMatch{SetIndex: idx, Keywords: set, Names: found})
	}
	return matches
}

// Matches reports whether name satisfies at least one set, returning the
// indices of the sets it satisfied.
func (c Config) Matches(name string) ([]int, bool) {
	var hits []int
	for idx, set := range c {
		if set.Matches(name) {
			hits = append(hits, idx)
		}
	}
	return hits, len(hits) > 0
}

// MatchedNames returns the union of names across matches, sorted.
func MatchedNames(matches []FilmMatch) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range matches {
		for _, name := range m.Names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

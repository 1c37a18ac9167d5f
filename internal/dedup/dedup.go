// Package dedup remembers which match situations have already escalated.
//
// The seen set lives for the life of the process and is never pruned: it
// grows by one entry per distinct film-set and theatre-set combination, which
// Size exposes so the growth stays observable.
package dedup

import (
	"sort"
	"strings"
	"sync"
)

// LegacyPrefix marks keys produced for the single target name rule.
const LegacyPrefix = "legacy:"

// AllTheatres replaces the theatre part of a key when no cinema keywords are set.
const AllTheatres = "all"

// Deduplicator is safe for concurrent use. ShouldEscalate is an atomic
// check-then-set per key.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// New returns an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// ShouldEscalate returns true and records key the first time it is seen, and
// false on every later call with the same key.
func (d *Deduplicator) ShouldEscalate(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Seen reports whether key has been recorded without recording it.
func (d *Deduplicator) Seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[key]
	return ok
}

// Size returns the number of recorded keys.
func (d *Deduplicator) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Key builds the canonical match key "codes|theatres" from sorted film codes
// and sorted matching theatre names. When allTheatres is set the theatre part
// is the literal "all". It reports false when no film code is available, in
// which case no key is computable and escalation is not deduplicated.
func Key(codes, theatreNames []string, allTheatres bool) (string, bool) {
	sortedCodes := sortedUnique(codes)
	if len(sortedCodes) == 0 {
		return "", false
	}
	theatrePart := AllTheatres
	if !allTheatres {
		theatrePart = strings.Join(sortedUnique(theatreNames), ",")
	}
	return strings.Join(sortedCodes, ",") + "|" + theatrePart, true
}

// LegacyKey builds the key for the single target name rule.
func LegacyKey(target string) string {
	return LegacyPrefix + target
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

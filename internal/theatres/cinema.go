package theatres

import (
	"sort"

	"marquee/internal/keywords"
)

// MatchedSet identifies a cinema keyword set that matched at least one theatre.
type MatchedSet struct {
	Index    int
	Keywords keywords.Set
}

// CinemaMatch is the result of applying cinema keyword sets to a theatre set.
// All is true only when no cinema keyword set is configured at all, in which
// case every theatre passes and Matched is true even for an empty theatre
// list. Configured sets that hold no usable keyword match no theatre.
type CinemaMatch struct {
	Matched  bool
	All      bool
	Theatres []Theatre
	Sets     []MatchedSet
}

// MatchCinemas filters theatres with cfg. A theatre is kept when it satisfies
// at least one set.
func MatchCinemas(cfg keywords.Config, theatres []Theatre) CinemaMatch {
	unique := Dedupe(theatres)
	if len(cfg) == 0 {
		return CinemaMatch{Matched: true, All: true, Theatres: unique}
	}
	var result CinemaMatch
	hitSets := make(map[int]struct{})
	for _, th := range unique {
		hits, ok := cfg.Matches(th.Name)
		if !ok {
			continue
		}
		result.Theatres = append(result.Theatres, th)
		for _, idx := range hits {
			hitSets[idx] = struct{}{}
		}
	}
	indices := make([]int, 0, len(hitSets))
	for idx := range hitSets {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		result.Sets = append(result.Sets, MatchedSet{Index: idx, Keywords: cfg[idx]})
	}
	result.Matched = len(result.Theatres) > 0
	return result
}

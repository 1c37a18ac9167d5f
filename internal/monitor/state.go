package monitor

import (
	"time"

	"marquee/internal/keywords"
	"marquee/internal/listing"
	"marquee/internal/theatres"
)

// State is a poll cycle state.
type State string

const (
	StateIdle            State = "idle"
	StateFetching        State = "fetching"
	StateEvaluating      State = "evaluating"
	StateNoMatch         State = "no_match"
	StateNotifying       State = "notifying"
	StateEscalationCheck State = "escalation_check"
	StateEscalating      State = "escalating"
	StateSkipped         State = "skipped"
)

// Outcome describes one finished cycle. State is the last state entered and
// Path lists every state in order.
type Outcome struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration
	Rule      Rule
	State     State
	Path      []State
	Reason    string

	FilmMatches  []keywords.FilmMatch
	MatchedFilms []string
	FilmInfos    []listing.FilmInfo
	Lookups      []theatres.Lookup
	Cinema       theatres.CinemaMatch

	MatchKey      string
	Notified      bool
	NotifyErr     error
	Escalated     bool
	CallID        string
	EscalationErr error

	// Err is the failure that ended or degraded the cycle, if any.
	Err error
}

func (o *Outcome) enter(state State) {
	o.State = state
	o.Path = append(o.Path, state)
}

// Matched reports whether the cycle reached Notifying.
func (o Outcome) Matched() bool {
	for _, s := range o.Path {
		if s == StateNotifying {
			return true
		}
	}
	return false
}

// Package releasedate normalizes heterogeneous release date hints to
// YYYY-MM-DD and picks the date used for theatre lookups.
package releasedate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical calendar date form.
const Layout = "2006-01-02"

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthDayYear     = regexp.MustCompile(`^([A-Za-z]{3})[A-Za-z]*\.?\s+(\d{1,2}),?\s+(\d{4})$`)

	monthAbbrev = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}

	// Tried in order after the canonical check.
	layouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-1-2",
		"2006/01/02",
		"2006/1/2",
		"2006.01.02",
		"20060102",
		"01/02/2006",
		"1/2/2006",
		"January 2, 2006",
		"January 2 2006",
		"2 January 2006",
		"2 Jan 2006",
		"Mon, 02 Jan 2006",
		time.RFC1123,
		time.RFC1123Z,
	}
)

// Normalize converts raw to YYYY-MM-DD. It reports false when no form matched.
// Normalizing an already canonical date returns it unchanged.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if canonicalPattern.MatchString(s) {
		if _, err := time.Parse(Layout, s); err == nil {
			return s, true
		}
		return "", false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), true
		}
	}
	if m := monthDayYear.FindStringSubmatch(s); m != nil {
		month, ok := monthAbbrev[strings.ToLower(m[1])]
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || t.Month() != month {
			return "", false
		}
		return t.Format(Layout), true
	}
	return "", false
}

// Source explains which date a lookup used.
type Source string

const (
	// SourceRelease means the normalized release date was today or later.
	SourceRelease Source = "release"
	// SourcePast means the release date had passed and today was used instead.
	SourcePast Source = "past_release"
	// SourceUnresolved means no release date could be resolved and today was used.
	SourceUnresolved Source = "unresolved"
)

// LookupDate returns the date for a theatre lookup given a raw release hint
// and the current time. Today is now's local calendar date.
func LookupDate(raw string, now time.Time) (string, Source) {
	today := now.Format(Layout)
	date, ok := Normalize(raw)
	if !ok {
		return today, SourceUnresolved
	}
	// Canonical dates order lexically.
	if date < today {
		return today, SourcePast
	}
	return date, SourceRelease
}

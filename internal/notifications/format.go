package notifications

import (
	"fmt"
	"strings"
)

// FormatMatch renders the plain-text body of a match notification. At most
// ten theatres are listed; the remainder is summarized as a count.
func FormatMatch(m Match) string {
	var b strings.Builder
	rule := strings.TrimSpace(m.Rule)
	if rule == "" {
		rule = "condition"
	}
	fmt.Fprintf(&b, "Match found (%s)\n", rule)

	if len(m.Sets) > 0 {
		b.WriteString("Keyword sets: ")
		b.WriteString(strings.Join(m.Sets, ", "))
		b.WriteByte('\n')
	}
	if len(m.Films) > 0 {
		b.WriteString("Films:\n")
		for _, film := range m.Films {
			b.WriteString("- ")
			b.WriteString(film)
			b.WriteByte('\n')
		}
	}
	if len(m.Dates) > 0 {
		b.WriteString("Lookup dates: ")
		b.WriteString(strings.Join(m.Dates, ", "))
		b.WriteByte('\n')
	}

	switch {
	case len(m.Theatres) > 0:
		if m.AllTheatres {
			fmt.Fprintf(&b, "Theatres (%d):\n", len(m.Theatres))
		} else {
			fmt.Fprintf(&b, "Matching theatres (%d) for %s:\n", len(m.Theatres), strings.Join(m.CinemaSets, ", "))
		}
		for i, th := range m.Theatres {
			if i == maxListedTheatres {
				fmt.Fprintf(&b, "... and %d more\n", len(m.Theatres)-maxListedTheatres)
				break
			}
			b.WriteString("- ")
			b.WriteString(th.Name)
			fmt.Fprintf(&b, " (%d shows)", th.Shows)
			if th.City != "" {
				b.WriteString(", ")
				b.WriteString(th.City)
			}
			if th.Address != "" {
				b.WriteString(", ")
				b.WriteString(th.Address)
			}
			b.WriteByte('\n')
		}
	case len(m.Dates) > 0:
		b.WriteString("No theatres listed yet.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

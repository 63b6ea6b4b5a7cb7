// Package score recovers a "marks awarded / marks possible" pair from a
// free-form evaluation report.
package score

import (
	"regexp"
)

// NotAvailable is returned when no rule matches.
const NotAvailable = "N/A"

var (
	totalScorePattern = regexp.MustCompile(`(?i)\b(?:total\s+)?score\b[^\d\n]*?(\d+)\s*/\s*(\d+)`)
	marksPattern      = regexp.MustCompile(`(?i)\bmarks\b[^\d\n]*?(\d+)\s*/\s*(\d+)`)
	barePairPattern   = regexp.MustCompile(`\b(\d+)/(\d+)\b`)
)

// Extract returns the normalized "X/Y" score found in report, or
// NotAvailable. Labelled scores win over labelled marks; otherwise the
// last bare pair in the text is taken as the total.
func Extract(report string) string {
	for _, p := range []*regexp.Regexp{totalScorePattern, marksPattern} {
		if m := p.FindStringSubmatch(report); m != nil {
			return m[1] + "/" + m[2]
		}
	}

	all := barePairPattern.FindAllStringSubmatch(report, -1)
	if len(all) == 0 {
		return NotAvailable
	}
	last := all[len(all)-1]
	return last[1] + "/" + last[2]
}

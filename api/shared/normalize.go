/* normalize.go
 * Shared normalisation helpers. Tournament deduplication and team-name orientation checks both
 * key off NormalizeName, so the merge-priority behaviour stays consistent everywhere it is used
 */

package shared

import (
	"fmt"
	"strings"
)

// NormalizeName lowercases, collapses internal whitespace and trims. Used as the dedupe key
// when merging tournaments across sources, since no stable cross-source id exists
func NormalizeName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, " ")
}

// NamesOverlap reports whether either normalised name contains the other. This is the fuzzy
// entity check used to cross reference wiki sourced matches, where ids are not reliable
func NamesOverlap(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Ordinal converts 1 -> "1st", 2 -> "2nd", 3 -> "3rd", 4 -> "4th" and so on
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatStanding renders a rank inside a field, e.g. (3, 10) -> "3rd / 10"
func FormatStanding(rank, total int) string {
	return fmt.Sprintf("%s / %d", Ordinal(rank), total)
}

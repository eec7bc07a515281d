/* models.go
 * Intermediate types produced while parsing wiki pages, before they are shaped into the
 * unified domain model
 */

package scraper

import "time"

// resultRow is one parsed line of a team achievements table
type resultRow struct {
	Date           time.Time
	Tournament     string
	TournamentLink string
	Player         string
	Placement      int
	Prize          float64
}

// SeasonEvent is one tournament link found on a season/circuit schedule page
type SeasonEvent struct {
	Name   string
	Link   string
	Region string
	Start  time.Time
	End    time.Time // zero for single day events
}

// MapResult is one map of a team match as parsed from a bracket or match page. Scores are in
// the page's own team order; WinnerTag is 1 or 2 in that same order, 0 when undecided
type MapResult struct {
	Number     int
	Map        string
	Mode       string
	Team1Score int
	Team2Score int
	WinnerTag  int
}

// PageMatch is one match found on a tournament page, kept with its raw HTML so map detail can
// be parsed lazily once the right match has been cross referenced
type PageMatch struct {
	Team1 string
	Team2 string
	HTML  string
}

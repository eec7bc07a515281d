/* results.go
 * Parses a team achievements page: a results table of past placements per player. Rows are
 * grouped by tournament name into one Tournament per event, participants being the grouped
 * rows. Parsing failures skip the row or table; this parser never errors
 */

package scraper

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"koi-tracker/api/htmlparse"
	"koi-tracker/api/shared"
)

var (
	strictDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	ordinalRe    = regexp.MustCompile(`^(\d+)\s*(?:st|nd|rd|th)?`)
	linkRe       = regexp.MustCompile(`(?is)<a[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	moneyRe      = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
)

// parseResultsRows extracts the achievement rows from a page. The results table is located by
// a header-content heuristic: it must mention "Player", which guards against the many
// unrelated tables wiki templates emit
func parseResultsRows(html string) []resultRow {
	var rows []resultRow
	for _, table := range htmlparse.Tables(html) {
		trs := htmlparse.Rows(table)
		if len(trs) < 2 {
			continue
		}
		header := headerColumns(trs[0])
		if header == nil {
			continue
		}
		for _, tr := range trs[1:] {
			if row, ok := parseResultRow(tr, header); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// columns maps the header labels this parser cares about onto cell indices
type columns struct {
	date       int
	place      int
	tournament int
	player     int
	prize      int
}

// headerColumns reads the header row and returns the column layout, or nil when the table is
// not an achievements table (no "Player" column)
func headerColumns(headerRow string) *columns {
	cells := htmlparse.Cells(headerRow)
	cols := &columns{date: -1, place: -1, tournament: -1, player: -1, prize: -1}
	for i, cell := range cells {
		label := strings.ToLower(htmlparse.StripTags(cell))
		switch {
		case strings.Contains(label, "date"):
			cols.date = i
		case strings.Contains(label, "place"):
			cols.place = i
		case strings.Contains(label, "tournament") || strings.Contains(label, "event"):
			cols.tournament = i
		case strings.Contains(label, "player"):
			cols.player = i
		case strings.Contains(label, "prize"):
			cols.prize = i
		}
	}
	if cols.player < 0 {
		return nil
	}
	if cols.date < 0 {
		cols.date = 0
	}
	return cols
}

// parseResultRow parses one data row. Hidden/secondary rows are skipped; a row needs at least
// 6 cells and a strict YYYY-MM-DD first cell, which guards against unrelated nested tables
func parseResultRow(tr string, cols *columns) (resultRow, bool) {
	var row resultRow
	cells := htmlparse.Cells(tr)
	if len(cells) < 6 {
		return row, false
	}

	dateText := htmlparse.StripTags(cells[cols.date])
	if !strictDateRe.MatchString(dateText) {
		return row, false
	}
	date, err := time.Parse("2006-01-02", dateText)
	if err != nil {
		return row, false
	}
	row.Date = date

	if cols.tournament >= 0 && cols.tournament < len(cells) {
		row.Tournament, row.TournamentLink = firstLink(cells[cols.tournament])
	}
	if row.Tournament == "" {
		// Some templates put the icon and the name link in adjacent cells; take the first
		// non-empty link anywhere in the row
		row.Tournament, row.TournamentLink = firstLink(tr)
	}
	if row.Tournament == "" {
		return row, false
	}

	if cols.player < len(cells) {
		row.Player = htmlparse.StripTags(cells[cols.player])
	}
	if row.Player == "" {
		return row, false
	}

	if cols.place >= 0 && cols.place < len(cells) {
		if m := ordinalRe.FindStringSubmatch(htmlparse.StripTags(cells[cols.place])); m != nil {
			row.Placement, _ = strconv.Atoi(m[1])
		}
	}
	if cols.prize >= 0 && cols.prize < len(cells) {
		row.Prize = parsePrize(htmlparse.StripTags(cells[cols.prize]))
	}
	return row, true
}

// firstLink returns the text and href of the first link with non-empty text
func firstLink(fragment string) (text, href string) {
	for _, m := range linkRe.FindAllStringSubmatch(fragment, -1) {
		t := htmlparse.StripTags(m[2])
		if t != "" {
			return t, m[1]
		}
	}
	return "", ""
}

// parsePrize strips currency symbols and separators from amounts like "$12,500"
func parsePrize(text string) float64 {
	m := moneyRe.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// groupResults folds achievement rows into one finished Tournament per event name
func groupResults(rows []resultRow, game shared.Game, teamID string) []shared.Tournament {
	byName := make(map[string]*shared.Tournament)
	var order []string

	for _, row := range rows {
		key := shared.NormalizeName(row.Tournament)
		t, ok := byName[key]
		if !ok {
			t = &shared.Tournament{
				ID:     "wiki-" + slugify(row.Tournament),
				TeamID: teamID,
				Game:   game,
				Name:   row.Tournament,
				Status: shared.StatusFinished,
				Format: shared.FormatOther,
			}
			byName[key] = t
			order = append(order, key)
		}
		if t.StartDate.IsZero() || row.Date.Before(t.StartDate) {
			t.StartDate = row.Date
		}
		if row.Date.After(t.EndDate) {
			t.EndDate = row.Date
		}
		t.PrizePool += row.Prize
		t.Participants = append(t.Participants, shared.TournamentParticipant{
			PlayerName: row.Player,
			Placement:  row.Placement,
		})
	}

	tournaments := make([]shared.Tournament, 0, len(order))
	for _, key := range order {
		t := byName[key]
		sort.SliceStable(t.Participants, func(i, j int) bool {
			pi, pj := t.Participants[i].Placement, t.Participants[j].Placement
			if pi == 0 {
				return false
			}
			if pj == 0 {
				return true
			}
			return pi < pj
		})
		tournaments = append(tournaments, *t)
	}
	return tournaments
}

func slugify(name string) string {
	return strings.ReplaceAll(shared.NormalizeName(name), " ", "-")
}

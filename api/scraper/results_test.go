/* results_test.go
 * Contains unit tests for results.go
 */

package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koi-tracker/api/shared"
)

func resultsTable(rows ...string) string {
	html := `<table class="wikitable sortable">` +
		`<tr><th>Date</th><th>Place</th><th>Tier</th><th>Tournament</th><th>Player</th><th>Prize</th></tr>`
	for _, r := range rows {
		html += r
	}
	return html + `</table>`
}

func resultsRow(date, place, tournament, player, prize string) string {
	return `<tr><td>` + date + `</td><td>` + place + `</td><td>S</td>` +
		`<td><a href="/tft/` + tournament + `" title="` + tournament + `">` + tournament + `</a></td>` +
		`<td>` + player + `</td><td>` + prize + `</td></tr>`
}

func TestParseResultsRows(t *testing.T) {
	html := resultsTable(
		resultsRow("2026-03-15", "1st", "Golden_Cup", "Alice", "$12,500"),
		resultsRow("2026-03-14", "4th", "Golden_Cup", "Bob", "$1,000"),
		resultsRow("not a date", "2nd", "Broken_Row", "Carol", "$500"),
	)

	rows := parseResultsRows(html)
	require.Len(t, rows, 2)
	assert.Equal(t, "Golden_Cup", rows[0].Tournament)
	assert.Equal(t, "Alice", rows[0].Player)
	assert.Equal(t, 1, rows[0].Placement)
	assert.Equal(t, 12500.0, rows[0].Prize)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), rows[0].Date)
}

// A table whose header carries no Player column is not an achievements table
func TestParseResultsRows_IgnoresUnrelatedTables(t *testing.T) {
	html := `<table><tr><th>Date</th><th>Score</th></tr>` +
		`<tr><td>2026-03-15</td><td>3-1</td></tr></table>`
	assert.Empty(t, parseResultsRows(html))
}

func TestGroupResults(t *testing.T) {
	rows := []resultRow{
		{Date: date(2026, time.March, 15), Tournament: "Golden Cup", Player: "Bob", Placement: 4, Prize: 1000},
		{Date: date(2026, time.March, 12), Tournament: "Golden Cup", Player: "Alice", Placement: 1, Prize: 12500},
		{Date: date(2026, time.March, 14), Tournament: "Golden Cup", Player: "Dave"},
		{Date: date(2026, time.February, 2), Tournament: "Winter Open", Player: "Alice", Placement: 2, Prize: 4000},
	}

	tournaments := groupResults(rows, shared.GamePokemon, "static-pokemon")
	require.Len(t, tournaments, 2)

	cup := tournaments[0]
	assert.Equal(t, "wiki-golden-cup", cup.ID)
	assert.Equal(t, "static-pokemon", cup.TeamID)
	assert.Equal(t, shared.StatusFinished, cup.Status)
	assert.Equal(t, date(2026, time.March, 12), cup.StartDate)
	assert.Equal(t, date(2026, time.March, 15), cup.EndDate)
	assert.Equal(t, 13500.0, cup.PrizePool)

	// sorted by placement, placement-less rows last
	require.Len(t, cup.Participants, 3)
	assert.Equal(t, "Alice", cup.Participants[0].PlayerName)
	assert.Equal(t, "Bob", cup.Participants[1].PlayerName)
	assert.Equal(t, "Dave", cup.Participants[2].PlayerName)

	assert.Equal(t, "Winter Open", tournaments[1].Name)
}

func TestParsePrize(t *testing.T) {
	assert.Equal(t, 12500.0, parsePrize("$12,500"))
	assert.Equal(t, 750.5, parsePrize("€750.50"))
	assert.Equal(t, 0.0, parsePrize("-"))
}

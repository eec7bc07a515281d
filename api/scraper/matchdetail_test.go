/* matchdetail_test.go
 * Contains unit tests for matchdetail.go
 */

package scraper

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameBlock(mapLink, mode, score string) string {
	return `<div class="brkts-popup-body-game">` +
		`<a href="/cod/` + mapLink + `" title="` + mapLink + `">` + mapLink + `</a>` +
		`<span>` + mode + `</span><span>` + score + `</span></div>`
}

func TestParseMapResults_PopupBlocks(t *testing.T) {
	html := gameBlock("Hacienda", "Hardpoint", "250-197") +
		gameBlock("Protocol", "Search and Destroy", "6-3") +
		gameBlock("Vault", "Control", "2-3")

	maps := parseMapResults(html)
	require.Len(t, maps, 3)

	assert.Equal(t, MapResult{Number: 1, Map: "Hacienda", Mode: "Hardpoint", Team1Score: 250, Team2Score: 197, WinnerTag: 1}, maps[0])
	assert.Equal(t, "Search and Destroy", maps[1].Mode)
	assert.Equal(t, 2, maps[2].Team1Score)
	assert.Equal(t, 2, maps[2].WinnerTag)
}

// A Hardpoint-shaped score inside a Search and Destroy block is template noise and must not
// be taken as the map score
func TestParseMapResults_ScoreRange(t *testing.T) {
	html := gameBlock("Protocol", "Search and Destroy", "100-88") // out of range for SnD
	assert.Empty(t, parseMapResults(html))

	html = `<div class="brkts-popup-body-game">` +
		`<a href="/cod/Protocol" title="Protocol">Protocol</a>` +
		`<span>Search and Destroy</span><span>100-88</span><span>6-4</span></div>`
	maps := parseMapResults(html)
	require.Len(t, maps, 1)
	assert.Equal(t, 6, maps[0].Team1Score)
	assert.Equal(t, 4, maps[0].Team2Score)
}

// Popup blocks outrank the table and prose fallbacks when present
func TestParseMapResults_StrategyOrder(t *testing.T) {
	html := gameBlock("Hacienda", "Hardpoint", "250-197") +
		`<p>Map 1: Hardpoint on Skyline (180-250)</p>`

	maps := parseMapResults(html)
	require.Len(t, maps, 1)
	assert.Equal(t, "Hacienda", maps[0].Map)
}

func TestParseMapTable(t *testing.T) {
	html := `<table class="wikitable">` +
		`<tr><th>Map</th><th>Mode</th><th>Score</th></tr>` +
		`<tr><td>Rewind</td><td>Hardpoint</td><td>250-213</td></tr>` +
		`<tr><td>Red Card</td><td>Control</td><td>3-1</td></tr>` +
		`</table>`

	maps := parseMapResults(html)
	require.Len(t, maps, 2)
	assert.Equal(t, "Rewind", maps[0].Map)
	assert.Equal(t, "Hardpoint", maps[0].Mode)
	assert.Equal(t, "Control", maps[1].Mode)
	assert.Equal(t, 1, maps[1].Team2Score)
}

func TestParseProseMaps(t *testing.T) {
	html := `<p>Map 1: Hardpoint on Skyline (250-214). Map 2: Search and Destroy on Protocol (4-6).</p>`

	maps := parseMapResults(html)
	require.Len(t, maps, 2)
	assert.Equal(t, "Skyline", maps[0].Map)
	assert.Equal(t, 250, maps[0].Team1Score)
	assert.Equal(t, 2, maps[1].Number)
	assert.Equal(t, 2, maps[1].WinnerTag)
}

func TestFlipMapResults(t *testing.T) {
	maps := []MapResult{
		{Number: 1, Map: "Hacienda", Mode: "Hardpoint", Team1Score: 250, Team2Score: 200, WinnerTag: 1},
		{Number: 2, Map: "Protocol", Mode: "Search and Destroy", Team1Score: 3, Team2Score: 3},
	}

	flipped := flipMapResults(maps)
	assert.Equal(t, 200, flipped[0].Team1Score)
	assert.Equal(t, 250, flipped[0].Team2Score)
	assert.Equal(t, 2, flipped[0].WinnerTag)
	assert.Equal(t, 0, flipped[1].WinnerTag)

	// input untouched
	assert.Equal(t, 250, maps[0].Team1Score)
}

func popupMatch(team1, team2 string) string {
	return `<div class="brkts-popup">` +
		`<span class="team-template-text">` + team1 + `</span>` +
		`<span class="team-template-text">` + team2 + `</span>` +
		gameBlock("Hacienda", "Hardpoint", "250-197") +
		`</div>`
}

func TestPageMatches(t *testing.T) {
	html := popupMatch("Movistar KOI", "OpTic Texas") + popupMatch("FaZe", "Cloud9")
	bundle := pageMatches(html)
	require.Len(t, bundle, 2)
	assert.Equal(t, "Movistar KOI", bundle[0].Team1)
	assert.Equal(t, "OpTic Texas", bundle[0].Team2)
	assert.Equal(t, "FaZe", bundle[1].Team1)
}

func TestCrossReference(t *testing.T) {
	bundle := []PageMatch{
		{Team1: "FaZe", Team2: "Cloud9"},
		{Team1: "Movistar KOI", Team2: "OpTic Texas"},
	}
	logger := zerolog.Nop()

	pm, flipped, ok := crossReference(bundle, "KOI", "OpTic Texas", logger)
	require.True(t, ok)
	assert.False(t, flipped)
	assert.Equal(t, "Movistar KOI", pm.Team1)

	// caller's home is the page's second team
	pm, flipped, ok = crossReference(bundle, "OpTic Texas", "KOI", logger)
	require.True(t, ok)
	assert.True(t, flipped)
	assert.Equal(t, "Movistar KOI", pm.Team1)

	_, _, ok = crossReference(bundle, "Heretics", "G2", logger)
	assert.False(t, ok)
}

// Two candidates scoring equally: the first in document order wins deterministically
func TestCrossReference_Tie(t *testing.T) {
	bundle := []PageMatch{
		{Team1: "Movistar KOI", Team2: "OpTic Texas"},
		{Team1: "Movistar KOI", Team2: "OpTic Texas"},
	}
	pm, _, ok := crossReference(bundle, "KOI", "OpTic Texas", zerolog.Nop())
	require.True(t, ok)
	assert.Same(t, &bundle[0], pm)
}

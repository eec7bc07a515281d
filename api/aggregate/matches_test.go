/* matches_test.go
 * Orientation and match shaping tests
 */

package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koi-tracker/api/external"
	"koi-tracker/api/scraper"
	"koi-tracker/api/shared"
)

// The organisation's team is always the home side, regardless of which side the source
// ordered first
func TestBuildMatch_OrientationStable(t *testing.T) {
	s := newTestService(&fakeSports{}, &fakeWiki{})
	ids := map[int]bool{128: true}
	begin := time.Date(2026, time.September, 5, 18, 0, 0, 0, time.UTC)

	pm := pandaMatch(900, 128, 999, "not_started", &begin)
	m, meta, ok := s.buildMatch(pm, shared.GameLoL, "upcoming", ids)
	require.True(t, ok)
	assert.Equal(t, "panda-128", m.Home.ID)
	assert.Equal(t, "panda-999", m.Away.ID)
	assert.Equal(t, 128, meta.orgPandaID)

	// same match with the source ordering reversed
	pm.Opponents[0], pm.Opponents[1] = pm.Opponents[1], pm.Opponents[0]
	m2, _, ok := s.buildMatch(pm, shared.GameLoL, "upcoming", ids)
	require.True(t, ok)
	assert.Equal(t, "panda-128", m2.Home.ID)
	assert.Equal(t, "panda-999", m2.Away.ID)
}

// Without an id hit, orientation falls back to alias substring matching for sources that
// lack reliable ids
func TestBuildMatch_AliasFallback(t *testing.T) {
	s := newTestService(&fakeSports{}, &fakeWiki{})
	begin := time.Date(2026, time.September, 5, 18, 0, 0, 0, time.UTC)

	pm := pandaMatch(901, 128, 999, "not_started", &begin)
	m, _, ok := s.buildMatch(pm, shared.GameLoL, "upcoming", nil)
	require.True(t, ok)
	assert.Equal(t, "Movistar KOI", m.Home.Name)
}

// A match between two third-party teams is dropped
func TestBuildMatch_NeitherSide(t *testing.T) {
	s := newTestService(&fakeSports{}, &fakeWiki{})
	pm := external.PandaMatch{
		ID: 902,
		Opponents: []external.PandaOpponent{
			{Opponent: external.PandaTeam{ID: 1, Name: "Fnatic"}},
			{Opponent: external.PandaTeam{ID: 2, Name: "G2 Esports"}},
		},
	}
	_, _, ok := s.buildMatch(pm, shared.GameLoL, "upcoming", map[int]bool{128: true})
	assert.False(t, ok)
}

func TestBuildMatch_ScoresAndStatus(t *testing.T) {
	s := newTestService(&fakeSports{}, &fakeWiki{})
	ids := map[int]bool{128: true}
	begin := time.Date(2026, time.August, 20, 17, 0, 0, 0, time.UTC)

	pm := pandaMatch(903, 128, 999, "finished", &begin)
	pm.Results = []external.PandaResult{{TeamID: 128, Score: 3}, {TeamID: 999, Score: 1}}
	pm.Games = []external.PandaGame{
		{ID: 1, Position: 1, Length: 1810, Winner: struct {
			ID int `json:"id"`
		}{ID: 128}},
	}

	m, _, ok := s.buildMatch(pm, shared.GameLoL, "past", ids)
	require.True(t, ok)
	assert.Equal(t, shared.StatusFinished, m.Status)
	require.NotNil(t, m.Home.Score)
	assert.Equal(t, 3, *m.Home.Score)
	require.NotNil(t, m.Away.Score)
	assert.Equal(t, 1, *m.Away.Score)
	require.Len(t, m.Games, 1)
	assert.Equal(t, "panda-128", m.Games[0].WinnerID)
	assert.Equal(t, "LEC Summer 2026", m.Tournament)
	assert.Equal(t, "Regular Season", m.Stage)
}

func TestApplyGameDetail_Drafts(t *testing.T) {
	s := newTestService(&fakeSports{}, &fakeWiki{})
	m := shared.Match{
		Home:  shared.MatchTeam{ID: "panda-128"},
		Away:  shared.MatchTeam{ID: "panda-999"},
		Games: []shared.MatchGame{{Number: 1}},
	}

	detail := []external.PandaGameDetail{{
		Position:   1,
		Length:     2100,
		BlueTeamID: 128,
		RedTeamID:  999,
		Draft: []external.PandaDraftAction{
			{Type: "ban", TeamID: 128, Character: struct {
				Name string `json:"name"`
			}{Name: "Azir"}},
			{Type: "pick", TeamID: 999, Character: struct {
				Name string `json:"name"`
			}{Name: "Jinx"}},
		},
	}}

	s.applyGameDetail(&m, matchMeta{orgPandaID: 128, oppPandaID: 999}, detail)
	require.NotNil(t, m.Games[0].Draft)
	assert.Equal(t, "panda-128", m.Games[0].Draft.BlueTeamID)
	require.Len(t, m.Games[0].Draft.Actions, 2)
	assert.Equal(t, shared.DraftAction{Type: "ban", Side: "blue", Character: "Azir"}, m.Games[0].Draft.Actions[0])
	assert.Equal(t, "red", m.Games[0].Draft.Actions[1].Side)
	assert.Equal(t, 2100, m.Games[0].DurationSeconds)
}

func TestApplyMapResults(t *testing.T) {
	m := shared.Match{
		Home: shared.MatchTeam{ID: "panda-128"},
		Away: shared.MatchTeam{ID: "panda-999"},
	}
	maps := []scraper.MapResult{
		{Number: 1, Map: "Hacienda", Mode: "Hardpoint", Team1Score: 250, Team2Score: 197, WinnerTag: 1},
		{Number: 2, Map: "Protocol", Mode: "Search and Destroy", Team1Score: 2, Team2Score: 6, WinnerTag: 2},
	}

	applyMapResults(&m, maps)
	require.Len(t, m.Games, 2)
	assert.Equal(t, "Hacienda", m.Games[0].Map)
	assert.Equal(t, "panda-128", m.Games[0].WinnerID)
	require.NotNil(t, m.Games[0].HomeScore)
	assert.Equal(t, 250, *m.Games[0].HomeScore)
	assert.Equal(t, "panda-999", m.Games[1].WinnerID)
}

// The cod enrichment race must not block past its timeout and keeps pre-enrichment data on
// expiry
func TestEnrichCoDMaps_AppliesWikiDetail(t *testing.T) {
	wiki := &fakeWiki{maps: []scraper.MapResult{
		{Number: 1, Map: "Vault", Mode: "Control", Team1Score: 3, Team2Score: 1, WinnerTag: 1},
	}}
	s := newTestService(&fakeSports{}, wiki)

	m := shared.Match{
		ID:   "panda-904",
		Game: shared.GameCoD,
		Home: shared.MatchTeam{ID: "panda-300", Name: "Movistar KOI"},
		Away: shared.MatchTeam{ID: "panda-400", Name: "OpTic Texas"},
	}
	s.enrichCoDMaps(context.Background(), &m)
	require.Len(t, m.Games, 1)
	assert.Equal(t, "Vault", m.Games[0].Map)
	assert.Equal(t, "panda-300", m.Games[0].WinnerID)
}

/* aggregate_test.go
 * Shared fakes for the service tests plus discovery and caching behaviour tests
 */

package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koi-tracker/api/external"
	"koi-tracker/api/scraper"
	"koi-tracker/api/shared"
	"koi-tracker/config"
)

type fakeSports struct {
	mu             sync.Mutex
	searchCalls    int
	matchCalls     int
	standingsCalls int
	gate           chan struct{} // when non-nil, SearchTeams blocks until it is closed

	teams            map[shared.Game][]external.PandaTeam
	players          map[int]external.PandaPlayer
	matches          map[string][]external.PandaMatch
	detail           map[int]*external.PandaMatchDetail
	standings        map[int][]external.PandaStanding
	serieTournaments map[int][]external.PandaTournament
	searchErr        error
}

func (f *fakeSports) SearchTeams(ctx context.Context, game shared.Game, name string) ([]external.PandaTeam, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.teams[game], nil
}

func (f *fakeSports) GetTeam(ctx context.Context, game shared.Game, id int) (*external.PandaTeam, error) {
	for _, t := range f.teams[game] {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, &external.APIError{Status: 404}
}

func (f *fakeSports) GetPlayer(ctx context.Context, id int) (*external.PandaPlayer, error) {
	if p, ok := f.players[id]; ok {
		return &p, nil
	}
	return nil, &external.APIError{Status: 404}
}

func (f *fakeSports) MatchesByStatus(ctx context.Context, game shared.Game, status string, opponentIDs []int, page int) ([]external.PandaMatch, error) {
	f.mu.Lock()
	f.matchCalls++
	f.mu.Unlock()
	return f.matches[status], nil
}

func (f *fakeSports) MatchDetail(ctx context.Context, game shared.Game, id int) (*external.PandaMatchDetail, error) {
	if d, ok := f.detail[id]; ok {
		return d, nil
	}
	return nil, &external.APIError{Status: 404}
}

func (f *fakeSports) TournamentStandings(ctx context.Context, tournamentID int) ([]external.PandaStanding, error) {
	f.mu.Lock()
	f.standingsCalls++
	f.mu.Unlock()
	return f.standings[tournamentID], nil
}

func (f *fakeSports) SeriesTournaments(ctx context.Context, serieID int) ([]external.PandaTournament, error) {
	return f.serieTournaments[serieID], nil
}

type fakeWiki struct {
	upcoming map[shared.Game][]shared.Tournament
	results  map[shared.Game][]shared.Tournament
	maps     []scraper.MapResult
}

func (f *fakeWiki) TeamResults(ctx context.Context, pageSlug string, game shared.Game, teamID string) []shared.Tournament {
	return f.results[game]
}

func (f *fakeWiki) UpcomingEvents(ctx context.Context, pageSlug string, game shared.Game, teamID string) []shared.Tournament {
	return f.upcoming[game]
}

func (f *fakeWiki) MatchMaps(ctx context.Context, pageSlug, homeName, awayName string) []scraper.MapResult {
	return f.maps
}

func testConfig() *config.Config {
	return &config.Config{
		OrgAliases:     []string{"KOI"},
		CoDSeasonPage:  "callofduty/Call_of_Duty_League/2026",
		TFTSeasonPage:  "tft/EMEA_Golden_Spatula/2026",
		AllowedRegions: []string{"Europe"},
	}
}

func koiTeam(id int) external.PandaTeam {
	return external.PandaTeam{
		ID: id, Name: "Movistar KOI", Acronym: "KOI",
		Players: []external.PandaPlayer{
			{ID: 1, Name: "Topa"}, {ID: 2, Name: "Vora"}, {ID: 3, Name: "Nix"},
			{ID: 4, Name: "Cai"}, {ID: 5, Name: "Lur"},
		},
	}
}

func newTestService(sports SportsAPI, wiki WikiSource) *Service {
	s := New(testConfig(), sports, nil, wiki, zerolog.Nop())
	s.retryBackoff = nil
	return s
}

func TestDiscovery_Singleflight(t *testing.T) {
	fake := &fakeSports{
		gate:  make(chan struct{}),
		teams: map[shared.Game][]external.PandaTeam{shared.GameLoL: {koiTeam(128)}},
	}
	s := newTestService(fake, &fakeWiki{})

	const callers = 8
	results := make([]map[int]discoveredTeam, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.discoverTeams(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(fake.gate)
	wg.Wait()

	// one search per API covered title, not per caller
	assert.Equal(t, len(shared.APIGames), fake.searchCalls)
	for _, r := range results {
		require.Len(t, r, 1)
		assert.Equal(t, shared.GameLoL, r[128].game)
	}
}

// A failed discovery is not cached: the next caller retries instead of reading a stale
// empty set
func TestDiscovery_FailEmptyThenRetry(t *testing.T) {
	fake := &fakeSports{searchErr: errors.New("boom")}
	s := newTestService(fake, &fakeWiki{})

	assert.Empty(t, s.discoverTeams(context.Background()))
	callsAfterFirst := fake.searchCalls

	fake.searchErr = nil
	fake.teams = map[shared.Game][]external.PandaTeam{shared.GameLoL: {koiTeam(128)}}
	second := s.discoverTeams(context.Background())
	assert.Len(t, second, 1)
	assert.Greater(t, fake.searchCalls, callsAfterFirst)
}

func TestAliasMatch(t *testing.T) {
	aliases := []string{"KOI", "Movistar KOI"}
	assert.True(t, aliasMatch("Movistar KOI", "KOI", aliases))
	assert.True(t, aliasMatch("BLJ Esports", "KOI.", aliases)) // acronym one edit from "KOI"
	assert.False(t, aliasMatch("Karmine Corp", "KC", aliases))
	assert.False(t, aliasMatch("Team Heretics", "TH", aliases))
}

// Calling a public query twice within its TTL issues no additional source calls and returns
// identical data
func TestUpcomingMatches_IdempotentWithinTTL(t *testing.T) {
	begin := time.Date(2026, time.September, 5, 18, 0, 0, 0, time.UTC)
	fake := &fakeSports{
		teams: map[shared.Game][]external.PandaTeam{shared.GameLoL: {koiTeam(128)}},
		matches: map[string][]external.PandaMatch{
			"upcoming": {pandaMatch(900, 128, 999, "not_started", &begin)},
		},
	}
	s := newTestService(fake, &fakeWiki{})

	first := s.UpcomingMatches(context.Background())
	require.Len(t, first, 1)
	matchCalls, standingsCalls := fake.matchCalls, fake.standingsCalls

	second := s.UpcomingMatches(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, matchCalls, fake.matchCalls)
	assert.Equal(t, standingsCalls, fake.standingsCalls)
}

func pandaMatch(id, orgID, oppID int, status string, beginAt *time.Time) external.PandaMatch {
	return external.PandaMatch{
		ID:            id,
		Status:        status,
		BeginAt:       beginAt,
		NumberOfGames: 5,
		League:        external.PandaLeague{ID: 10, Name: "LEC"},
		Serie:         external.PandaSerie{ID: 20, FullName: "Summer 2026"},
		Tournament:    external.PandaTournament{ID: 30, Name: "Regular Season"},
		Opponents: []external.PandaOpponent{
			{Opponent: external.PandaTeam{ID: orgID, Name: "Movistar KOI", Acronym: "KOI"}},
			{Opponent: external.PandaTeam{ID: oppID, Name: "Fnatic", Acronym: "FNC"}},
		},
	}
}

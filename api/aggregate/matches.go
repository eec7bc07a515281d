/* matches.go
 * Builds unified matches from structured API payloads and exposes the match query surface.
 * Orientation is resolved once at construction: the organisation's side is home, the
 * opponent away, and every later enrichment pass preserves that framing
 */

package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"koi-tracker/api/external"
	"koi-tracker/api/shared"
)

// matchMeta carries source facts the unified model does not expose but later pipeline stages
// need: numeric ids for standings lookups and the serie for the regular season heuristic
type matchMeta struct {
	tournamentID int
	serieID      int
	stage        string
	game         shared.Game
	matchID      int
	orgPandaID   int
	oppPandaID   int
}

func pandaMatchStatus(raw, fallback string) shared.MatchStatus {
	switch raw {
	case "not_started", "postponed":
		return shared.StatusUpcoming
	case "running":
		return shared.StatusLive
	case "finished":
		return shared.StatusFinished
	}
	switch fallback {
	case "upcoming":
		return shared.StatusUpcoming
	case "running":
		return shared.StatusLive
	}
	return shared.StatusFinished
}

// buildMatch shapes one structured API match. ok is false when neither side belongs to the
// organisation, which happens when the opponent filter matched a shared tournament page
func (s *Service) buildMatch(pm external.PandaMatch, game shared.Game, status string, ids map[int]bool) (shared.Match, matchMeta, bool) {
	if len(pm.Opponents) < 2 {
		return shared.Match{}, matchMeta{}, false
	}
	a, b := pm.Opponents[0].Opponent, pm.Opponents[1].Opponent

	var org, opp external.PandaTeam
	switch {
	case orgSide(a.ID, a.Name, ids, s.cfg.OrgAliases):
		org, opp = a, b
	case orgSide(b.ID, b.Name, ids, s.cfg.OrgAliases):
		org, opp = b, a
	default:
		return shared.Match{}, matchMeta{}, false
	}

	scores := make(map[int]int, len(pm.Results))
	for _, r := range pm.Results {
		scores[r.TeamID] = r.Score
	}

	m := shared.Match{
		ID:           "panda-" + strconv.Itoa(pm.ID),
		TeamID:       "panda-" + strconv.Itoa(org.ID),
		Game:         game,
		Tournament:   strings.TrimSpace(pm.League.Name + " " + pm.Serie.FullName),
		TournamentID: strconv.Itoa(pm.Tournament.ID),
		Stage:        pm.Tournament.Name,
		Status:       pandaMatchStatus(pm.Status, status),
		Home:         matchTeam(org, pm.Results, scores),
		Away:         matchTeam(opp, pm.Results, scores),
		BestOf:       pm.NumberOfGames,
		StreamURL:    mainStream(pm.StreamsList),
	}
	if pm.BeginAt != nil {
		m.Date = *pm.BeginAt
	}
	for _, g := range pm.Games {
		mg := shared.MatchGame{Number: g.Position, DurationSeconds: g.Length}
		if g.Winner.ID != 0 {
			mg.WinnerID = "panda-" + strconv.Itoa(g.Winner.ID)
		}
		m.Games = append(m.Games, mg)
	}

	meta := matchMeta{
		tournamentID: pm.Tournament.ID,
		serieID:      pm.Serie.ID,
		stage:        pm.Tournament.Name,
		game:         game,
		matchID:      pm.ID,
		orgPandaID:   org.ID,
		oppPandaID:   opp.ID,
	}
	return m, meta, true
}

func matchTeam(t external.PandaTeam, results []external.PandaResult, scores map[int]int) shared.MatchTeam {
	mt := shared.MatchTeam{
		ID:      "panda-" + strconv.Itoa(t.ID),
		Name:    t.Name,
		Tag:     t.Acronym,
		LogoURL: t.ImageURL,
	}
	if len(results) > 0 {
		if score, ok := scores[t.ID]; ok {
			mt.Score = &score
		}
	}
	return mt
}

func mainStream(streams []external.PandaStream) string {
	for _, st := range streams {
		if st.Main {
			return st.RawURL
		}
	}
	if len(streams) > 0 {
		return streams[0].RawURL
	}
	return ""
}

// matchesByStatus fetches and shapes one status class across every API covered title, one
// title per goroutine with per title isolation. The result is sorted by date ascending
func (s *Service) matchesByStatus(ctx context.Context, status string) ([]shared.Match, []matchMeta) {
	discovered := s.discoverTeams(ctx)
	if len(discovered) == 0 || s.sports == nil {
		return nil, nil
	}
	ids := idSet(discovered)

	var mu sync.Mutex
	var matches []shared.Match
	var metas []matchMeta

	g, gctx := errgroup.WithContext(ctx)
	for _, game := range shared.APIGames {
		gameIDs := s.gameIDs(discovered, game)
		if len(gameIDs) == 0 {
			continue
		}
		g.Go(func() error {
			pms, err := s.sports.MatchesByStatus(gctx, game, status, gameIDs, 1)
			if err != nil {
				s.logger.Warn().Err(err).Str("game", string(game)).Str("status", status).
					Msg("match fetch failed, continuing without this title")
				return nil
			}
			for _, pm := range pms {
				m, meta, ok := s.buildMatch(pm, game, status, ids)
				if !ok {
					continue
				}
				mu.Lock()
				matches = append(matches, m)
				metas = append(metas, meta)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	// matches[i] and metas[i] must stay paired through the sort; standings attachment and
	// enrichment address both slices by the same index
	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return matches[order[i]].Date.Before(matches[order[j]].Date) })
	sortedMatches := make([]shared.Match, len(matches))
	sortedMetas := make([]matchMeta, len(metas))
	for i, from := range order {
		sortedMatches[i] = matches[from]
		sortedMetas[i] = metas[from]
	}
	return sortedMatches, sortedMetas
}

// UpcomingMatches returns the organisation's scheduled matches across all API covered titles
func (s *Service) UpcomingMatches(ctx context.Context) []shared.Match {
	return s.cachedMatches("matches:upcoming", ttlUpcoming, func() []shared.Match {
		matches, metas := s.matchesByStatus(ctx, "upcoming")
		s.attachStandings(ctx, matches, metas)
		return matches
	})
}

// LiveMatches returns the matches currently being played
func (s *Service) LiveMatches(ctx context.Context) []shared.Match {
	return s.cachedMatches("matches:live", ttlLive, func() []shared.Match {
		matches, metas := s.matchesByStatus(ctx, "running")
		s.attachStandings(ctx, matches, metas)
		return matches
	})
}

// PastMatches returns finished matches, enriched with draft and per-map detail
func (s *Service) PastMatches(ctx context.Context) []shared.Match {
	return s.cachedMatches("matches:past", ttlPast, func() []shared.Match {
		matches, metas := s.matchesByStatus(ctx, "past")
		s.attachStandings(ctx, matches, metas)
		s.enrichMatches(ctx, matches, metas)
		return matches
	})
}

// TeamMatches returns every match of one team across status classes, sorted by date. The
// team's matches are filtered out of the cached global lists, so a per-team query costs no
// extra source fetches. Static-roster titles play individual tournaments, not team matches,
// so their teams resolve to an empty list
func (s *Service) TeamMatches(ctx context.Context, teamID string) []shared.Match {
	if !strings.HasPrefix(teamID, "panda-") {
		return nil
	}
	var out []shared.Match
	for _, list := range [][]shared.Match{s.LiveMatches(ctx), s.UpcomingMatches(ctx), s.PastMatches(ctx)} {
		for _, m := range list {
			if m.TeamID == teamID {
				out = append(out, m)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// MatchDetail fetches one match with full per game detail and runs the deep enrichment pass
// on it. Returns nil when the match cannot be fetched or does not involve the organisation
func (s *Service) MatchDetail(ctx context.Context, game shared.Game, matchID string) *shared.Match {
	numeric, ok := strings.CutPrefix(matchID, "panda-")
	if !ok || s.sports == nil {
		return nil
	}
	id, err := strconv.Atoi(numeric)
	if err != nil {
		return nil
	}

	key := fmt.Sprintf("match:detail:%s", matchID)
	if v, ok := s.cache.Get(key, ttlMatchDetail); ok {
		m := v.(shared.Match)
		return &m
	}

	detail, err := s.sports.MatchDetail(ctx, game, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("match", matchID).Msg("match detail fetch failed")
		return nil
	}

	discovered := s.discoverTeams(ctx)
	m, meta, ok := s.buildMatch(detail.PandaMatch, game, "past", idSet(discovered))
	if !ok {
		return nil
	}
	s.applyGameDetail(&m, meta, detail.DetailedGames)
	s.attachStandings(ctx, []shared.Match{m}, []matchMeta{meta})
	if game == shared.GameCoD {
		s.enrichCoDMaps(ctx, &m)
	}

	s.cache.Set(key, m)
	return &m
}

// cachedMatches is the shared cache wrapper of the list queries
func (s *Service) cachedMatches(key string, ttl time.Duration, fetch func() []shared.Match) []shared.Match {
	if v, ok := s.cache.Get(key, ttl); ok {
		return v.([]shared.Match)
	}
	matches := fetch()
	s.cache.Set(key, matches)
	return matches
}

/* tournaments.go
 * The tournament query surface for titles scored by placement. Results are assembled source
 * by source in fixed priority order and deduplicated by normalised name, first occurrence
 * wins: wiki scraped first, curated static second, GraphQL sourced third. Zero wiki results
 * means the wiki is unreachable or unpublished, in which case the curated dataset is used
 * wholesale instead of merged
 */

package aggregate

import (
	"context"
	"sort"
	"strconv"
	"time"

	"koi-tracker/api/external"
	"koi-tracker/api/shared"
)

// tournamentGames are the titles whose events are individual-competitor tournaments
var tournamentGames = []shared.Game{shared.GameTFT, shared.GamePokemon}

// mergeTournaments applies the merge policy for one title
func mergeTournaments(wiki, static, gg []shared.Tournament) []shared.Tournament {
	if len(wiki) == 0 {
		return static
	}

	var out []shared.Tournament
	seen := make(map[string]bool)
	for _, src := range [][]shared.Tournament{wiki, static, gg} {
		for _, t := range src {
			key := shared.NormalizeName(t.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) seasonPageSlug(game shared.Game) string {
	switch game {
	case shared.GameTFT:
		return s.cfg.TFTSeasonPage
	case shared.GamePokemon:
		return s.cfg.PokemonSeasonPage
	}
	return ""
}

// gameTournaments assembles the merged tournament list for one title. upcoming selects the
// season schedule path; otherwise the achievements/results path is used
func (s *Service) gameTournaments(ctx context.Context, game shared.Game, upcoming bool) []shared.Tournament {
	team := staticTeam(game)
	if team == nil {
		return nil
	}
	now := s.now()

	var wiki []shared.Tournament
	if s.wiki != nil {
		if upcoming {
			wiki = s.wiki.UpcomingEvents(ctx, s.seasonPageSlug(game), game, team.ID)
		} else {
			wiki = s.wiki.TeamResults(ctx, resultsPages[game], game, team.ID)
		}
	}

	var static []shared.Tournament
	for _, t := range staticGameTournaments(game, now) {
		if upcoming == (t.Status != shared.StatusFinished) {
			static = append(static, t)
		}
	}

	var gg []shared.Tournament
	if s.gg != nil {
		gg = s.ggTournaments(ctx, game, upcoming)
	}

	merged := mergeTournaments(wiki, static, gg)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].StartDate.Before(merged[j].StartDate) })
	return merged
}

// ggTournaments lists GraphQL sourced tournaments for one title: the videogame query plus
// any explicitly tracked player registrations and page slugs
func (s *Service) ggTournaments(ctx context.Context, game shared.Game, upcoming bool) []shared.Tournament {
	team := staticTeam(game)
	videogameID := ggVideogameIDs[game]
	if team == nil || videogameID == 0 {
		return nil
	}

	var raw []external.GGTournament
	nodes, err := s.gg.TournamentsByVideogame(ctx, videogameID, upcoming, 1)
	if err != nil {
		s.logger.Debug().Err(err).Str("game", string(game)).Msg("tournament query failed")
	} else {
		raw = append(raw, nodes...)
	}
	for _, userID := range s.cfg.StartGGUserIDs {
		nodes, err := s.gg.TournamentsByUser(ctx, userID)
		if err != nil {
			s.logger.Debug().Err(err).Str("user", userID).Msg("user tournaments query failed")
			continue
		}
		raw = append(raw, nodes...)
	}
	for _, slug := range s.cfg.StartGGSlugs {
		t, err := s.gg.TournamentBySlug(ctx, slug)
		if err != nil || t == nil {
			continue
		}
		raw = append(raw, *t)
	}

	now := s.now()
	var out []shared.Tournament
	for _, node := range raw {
		t := s.shapeGGTournament(node, game, team.ID, now)
		if upcoming == (t.Status != shared.StatusFinished) {
			out = append(out, t)
		}
	}
	return out
}

// shapeGGTournament converts one GraphQL node into the unified model and remembers the raw
// node so TournamentByID can enrich it with standings later
func (s *Service) shapeGGTournament(node external.GGTournament, game shared.Game, teamID string, now time.Time) shared.Tournament {
	t := shared.Tournament{
		ID:                "gg-" + strconv.Itoa(node.ID),
		TeamID:            teamID,
		Game:              game,
		Name:              node.Name,
		Location:          node.City,
		Format:            staticFormats[game],
		TotalParticipants: node.NumAttendees,
	}
	if node.StartAt > 0 {
		t.StartDate = time.Unix(node.StartAt, 0).UTC()
	}
	if node.EndAt > 0 {
		t.EndDate = time.Unix(node.EndAt, 0).UTC()
	}
	last := t.EndDate
	if last.IsZero() {
		last = t.StartDate
	}
	switch {
	case now.Before(t.StartDate):
		t.Status = shared.StatusUpcoming
	case !last.IsZero() && now.After(last.AddDate(0, 0, 1)):
		t.Status = shared.StatusFinished
	default:
		t.Status = shared.StatusLive
	}

	s.mu.Lock()
	s.ggIndex[t.ID] = node
	s.mu.Unlock()
	return t
}

// UpcomingTournaments returns upcoming and live individual-competitor events across titles
func (s *Service) UpcomingTournaments(ctx context.Context) []shared.Tournament {
	return s.cachedTournaments("tournaments:upcoming", ttlUpcoming, func() []shared.Tournament {
		var out []shared.Tournament
		for _, game := range tournamentGames {
			for _, t := range s.gameTournaments(ctx, game, true) {
				if t.Status == shared.StatusUpcoming {
					out = append(out, t)
				}
			}
		}
		return out
	})
}

// LiveTournaments returns the events currently running
func (s *Service) LiveTournaments(ctx context.Context) []shared.Tournament {
	return s.cachedTournaments("tournaments:live", ttlLive, func() []shared.Tournament {
		var out []shared.Tournament
		for _, game := range tournamentGames {
			for _, t := range s.gameTournaments(ctx, game, true) {
				if t.Status == shared.StatusLive {
					out = append(out, t)
				}
			}
		}
		return out
	})
}

// PastTournaments returns finished events with their per player placements
func (s *Service) PastTournaments(ctx context.Context) []shared.Tournament {
	return s.cachedTournaments("tournaments:past", ttlPast, func() []shared.Tournament {
		var out []shared.Tournament
		for _, game := range tournamentGames {
			out = append(out, s.gameTournaments(ctx, game, false)...)
		}
		return out
	})
}

// TournamentsByTeam returns the events of one static roster team
func (s *Service) TournamentsByTeam(ctx context.Context, teamID string) []shared.Tournament {
	team := staticTeamByID(teamID)
	if team == nil {
		return nil
	}
	return s.cachedTournaments("tournaments:team:"+teamID, ttlTournaments, func() []shared.Tournament {
		out := s.gameTournaments(ctx, team.Game, true)
		out = append(out, s.gameTournaments(ctx, team.Game, false)...)
		return out
	})
}

// TournamentByID finds one event by id across the upcoming and past lists. GraphQL sourced
// events are additionally enriched with participant standings
func (s *Service) TournamentByID(ctx context.Context, id string) *shared.Tournament {
	lists := [][]shared.Tournament{
		s.UpcomingTournaments(ctx),
		s.LiveTournaments(ctx),
		s.PastTournaments(ctx),
	}
	for _, list := range lists {
		for _, t := range list {
			if t.ID == id {
				if s.gg != nil {
					s.enrichGGParticipants(ctx, &t)
				}
				return &t
			}
		}
	}
	return nil
}

// enrichGGParticipants fills participant placements and set win counts from the GraphQL
// source's first event. Best effort; absence leaves the participant list empty
func (s *Service) enrichGGParticipants(ctx context.Context, t *shared.Tournament) {
	s.mu.RLock()
	node, ok := s.ggIndex[t.ID]
	s.mu.RUnlock()
	if !ok || len(node.Events) == 0 || len(t.Participants) > 0 {
		return
	}
	eventID := node.Events[0].ID

	standings, err := s.gg.EventStandings(ctx, eventID)
	if err != nil {
		s.logger.Debug().Err(err).Str("tournament", t.ID).Msg("event standings query failed")
		return
	}

	wins := make(map[int]int)
	sets, err := s.gg.EventSets(ctx, eventID)
	if err == nil {
		for _, set := range sets {
			if set.WinnerID != 0 {
				wins[set.WinnerID]++
			}
		}
	}

	for _, st := range standings {
		t.Participants = append(t.Participants, shared.TournamentParticipant{
			PlayerID:   "gg-" + strconv.Itoa(st.Entrant.ID),
			PlayerName: st.Entrant.Name,
			Placement:  st.Placement,
			Wins:       wins[st.Entrant.ID],
		})
	}
	sort.SliceStable(t.Participants, func(i, j int) bool {
		return t.Participants[i].Placement < t.Participants[j].Placement
	})
}

func (s *Service) cachedTournaments(key string, ttl time.Duration, fetch func() []shared.Tournament) []shared.Tournament {
	if v, ok := s.cache.Get(key, ttl); ok {
		return v.([]shared.Tournament)
	}
	tournaments := fetch()
	s.cache.Set(key, tournaments)
	return tournaments
}

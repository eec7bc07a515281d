/* teams.go
 * The team query surface. API covered titles use the discovered structured API payloads;
 * the remaining titles come from the curated static dataset. Division labels are resolved
 * lazily per team from a recent match, in a parallel fan-out with per team isolation
 */

package aggregate

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"koi-tracker/api/external"
	"koi-tracker/api/shared"
)

// convertTeam shapes one structured API team into the unified model
func (s *Service) convertTeam(pt external.PandaTeam, game shared.Game) shared.Team {
	team := shared.Team{
		ID:       "panda-" + strconv.Itoa(pt.ID),
		Name:     pt.Name,
		Game:     game,
		Division: staticDivisions[game],
	}
	for _, p := range pt.Players {
		team.Roster = append(team.Roster, shared.Player{
			ID:          "panda-" + strconv.Itoa(p.ID),
			Nickname:    p.Name,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Role:        p.Role,
			Nationality: p.Nationality,
			PhotoURL:    p.ImageURL,
			Age:         p.Age,
		})
	}
	if len(team.Roster) < minRosterSizes[game] {
		s.logger.Warn().Str("team", team.ID).Str("game", string(game)).
			Int("roster", len(team.Roster)).Msg("roster smaller than expected for this title")
	}
	return team
}

// AllTeams returns every organisation team across all titles
func (s *Service) AllTeams(ctx context.Context) []shared.Team {
	if v, ok := s.cache.Get("teams:all", ttlTeams); ok {
		return v.([]shared.Team)
	}

	var teams []shared.Team
	discovered := s.discoverTeams(ctx)
	for _, d := range discovered {
		teams = append(teams, s.convertTeam(d.team, d.game))
	}
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Game != teams[j].Game {
			return teams[i].Game < teams[j].Game
		}
		return teams[i].ID < teams[j].ID
	})
	teams = append(teams, staticTeams...)

	s.resolveDivisions(ctx, teams)
	s.cache.Set("teams:all", teams)
	return teams
}

// TeamByID returns one team, routed by id prefix to its origin source
func (s *Service) TeamByID(ctx context.Context, id string) *shared.Team {
	if strings.HasPrefix(id, "static-") {
		return staticTeamByID(id)
	}
	numeric, ok := strings.CutPrefix(id, "panda-")
	if !ok || s.sports == nil {
		return nil
	}
	pandaID, err := strconv.Atoi(numeric)
	if err != nil {
		return nil
	}

	key := "teams:" + id
	if v, ok := s.cache.Get(key, ttlTeams); ok {
		t := v.(shared.Team)
		return &t
	}

	discovered := s.discoverTeams(ctx)
	d, known := discovered[pandaID]
	if !known {
		return nil
	}
	pt, err := s.sports.GetTeam(ctx, d.game, pandaID)
	if err != nil {
		s.logger.Warn().Err(err).Str("team", id).Msg("team fetch failed")
		return nil
	}
	team := s.convertTeam(*pt, d.game)
	s.fillRoster(ctx, &team)
	teams := []shared.Team{team}
	s.resolveDivisions(ctx, teams)
	s.cache.Set(key, teams[0])
	return &teams[0]
}

// fillRoster backfills sparse roster entries from the per-player endpoint. Team payloads
// routinely ship players with role and nationality omitted; the single-team view is the
// one place the extra fetches are worth it. A failed fetch leaves that player as delivered
func (s *Service) fillRoster(ctx context.Context, team *shared.Team) {
	g, gctx := errgroup.WithContext(ctx)
	for i := range team.Roster {
		if team.Roster[i].Role != "" && team.Roster[i].Nationality != "" {
			continue
		}
		numeric, ok := strings.CutPrefix(team.Roster[i].ID, "panda-")
		if !ok {
			continue
		}
		playerID, err := strconv.Atoi(numeric)
		if err != nil {
			continue
		}
		g.Go(func() error {
			pp, err := s.sports.GetPlayer(gctx, playerID)
			if err != nil || pp == nil {
				return nil
			}
			p := &team.Roster[i]
			if p.Role == "" {
				p.Role = pp.Role
			}
			if p.Nationality == "" {
				p.Nationality = pp.Nationality
			}
			if p.FirstName == "" {
				p.FirstName = pp.FirstName
			}
			if p.LastName == "" {
				p.LastName = pp.LastName
			}
			if p.PhotoURL == "" {
				p.PhotoURL = pp.ImageURL
			}
			if p.Age == 0 {
				p.Age = pp.Age
			}
			return nil
		})
	}
	g.Wait()
}

// resolveDivisions fills each team's division label from its most recent match's league
// name, falling back to an upcoming match, then to the static per title label. One team's
// failure never affects another
func (s *Service) resolveDivisions(ctx context.Context, teams []shared.Team) {
	if s.sports == nil {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range teams {
		numeric, ok := strings.CutPrefix(teams[i].ID, "panda-")
		if !ok {
			continue
		}
		pandaID, err := strconv.Atoi(numeric)
		if err != nil {
			continue
		}
		g.Go(func() error {
			if label := s.divisionFromMatches(gctx, teams[i].Game, pandaID); label != "" {
				teams[i].Division = label
			}
			return nil
		})
	}
	g.Wait()
}

func (s *Service) divisionFromMatches(ctx context.Context, game shared.Game, pandaID int) string {
	for _, status := range []string{"past", "upcoming"} {
		matches, err := s.sports.MatchesByStatus(ctx, game, status, []int{pandaID}, 1)
		if err != nil {
			s.logger.Debug().Err(err).Int("team", pandaID).Str("status", status).
				Msg("division lookup fetch failed")
			continue
		}
		for _, m := range matches {
			if m.League.Name != "" {
				return m.League.Name
			}
		}
	}
	return ""
}

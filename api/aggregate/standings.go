/* standings.go
 * Attaches "rank / total" standing strings to both sides of each match. Fetches are grouped
 * by tournament and chunked to a fixed concurrency width to bound burst load. Playoff
 * brackets rarely publish standings tables, so those fall back to the serie's regular season
 * tournament located by a name heuristic
 */

package aggregate

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"koi-tracker/api/external"
	"koi-tracker/api/shared"
)

const standingsBatchWidth = 5

// attachStandings resolves and attaches standings for a batch of matches. Tournaments
// without standings leave both fields unset; nothing here ever fails the batch
func (s *Service) attachStandings(ctx context.Context, matches []shared.Match, metas []matchMeta) {
	if s.sports == nil || len(matches) == 0 {
		return
	}

	type group struct {
		meta    matchMeta
		indexes []int
	}
	groups := make(map[int]*group)
	for i, meta := range metas {
		if meta.tournamentID == 0 {
			continue
		}
		g, ok := groups[meta.tournamentID]
		if !ok {
			g = &group{meta: meta}
			groups[meta.tournamentID] = g
		}
		g.indexes = append(g.indexes, i)
	}

	var mu sync.Mutex
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(standingsBatchWidth)

	for _, grp := range groups {
		eg.Go(func() error {
			standings := s.tournamentStandings(gctx, grp.meta)
			if len(standings) == 0 {
				return nil
			}
			mu.Lock()
			for _, i := range grp.indexes {
				applyStandings(&matches[i], metas[i], standings)
			}
			mu.Unlock()
			return nil
		})
	}
	eg.Wait()
}

// tournamentStandings fetches a tournament's standings, falling back to the serie's regular
// season tournament for playoff stages
func (s *Service) tournamentStandings(ctx context.Context, meta matchMeta) []external.PandaStanding {
	standings, err := s.sports.TournamentStandings(ctx, meta.tournamentID)
	if err != nil {
		s.logger.Debug().Err(err).Int("tournament", meta.tournamentID).Msg("standings fetch failed")
		return nil
	}
	if len(standings) > 0 {
		return standings
	}
	if !strings.Contains(strings.ToLower(meta.stage), "playoff") || meta.serieID == 0 {
		return nil
	}

	tournaments, err := s.sports.SeriesTournaments(ctx, meta.serieID)
	if err != nil {
		s.logger.Debug().Err(err).Int("serie", meta.serieID).Msg("serie tournaments fetch failed")
		return nil
	}
	for _, t := range tournaments {
		if !strings.Contains(strings.ToLower(t.Name), "regular") {
			continue
		}
		standings, err = s.sports.TournamentStandings(ctx, t.ID)
		if err != nil {
			return nil
		}
		return standings
	}
	return nil
}

func applyStandings(m *shared.Match, meta matchMeta, standings []external.PandaStanding) {
	total := len(standings)
	for _, st := range standings {
		switch st.Team.ID {
		case meta.orgPandaID:
			m.Standing = shared.FormatStanding(st.Rank, total)
		case meta.oppPandaID:
			m.OpponentStanding = shared.FormatStanding(st.Rank, total)
		}
	}
}
